package knowledge

import (
	"context"

	domkn "github.com/kailas-cloud/remedex/internal/domain/knowledge"
)

type record struct {
	failure, rootCause, solution string
}

var builtinRecords = []record{
	{
		"Docker Build Failure - Permission Denied",
		"Docker build fails with permission denied error when user lacks proper Docker daemon access rights",
		"1. Add user to docker group: sudo usermod -aG docker $USER 2. Restart Docker service: sudo systemctl restart docker 3. Check Docker daemon permissions: sudo chmod 666 /var/run/docker.sock",
	},
	{
		"Jenkins Build Timeout",
		"Jenkins builds exceed configured timeout limits due to resource constraints or inefficient build processes",
		"1. Increase build timeout in Jenkins job configuration 2. Optimize build steps and remove unnecessary operations 3. Check system resources (CPU, memory, disk) 4. Review build logs for bottlenecks",
	},
	{
		"Kubernetes Pod CrashLoopBackOff",
		"Pod continuously crashes and restarts due to application errors, resource limits, or misconfiguration",
		"1. Check pod logs: kubectl logs <pod-name> 2. Verify resource limits and requests 3. Check liveness/readiness probes 4. Review container startup command and environment variables",
	},
	{
		"GitLab CI Pipeline Failure - Dependency Issues",
		"Pipeline fails due to missing, incompatible, or outdated dependencies in the build environment",
		"1. Update package versions in requirements/package files 2. Clear dependency cache: rm -rf node_modules, pip cache purge 3. Lock dependency versions 4. Verify package registry connectivity",
	},
	{
		"Unable to find image 'nginx:latest' locally docker: Error response from daemon: toomanyrequests",
		"Docker Hub rate limiting exceeded. Anonymous pulls limited to 100 per 6 hours, authenticated users get 200 per 6 hours",
		"1. Login to Docker Hub: docker login 2. Use Docker Hub Pro/Team account for higher limits 3. Implement image caching strategy 4. Use alternative registries or mirrors",
	},
	{
		"Branch not set issue - HEAD detached from FETCH_HEAD",
		"Git repository is in detached HEAD state, usually after pulling changes without proper branch checkout",
		"1. Create and switch to branch: git checkout -b <branch-name> 2. Or switch to existing branch: git checkout <branch-name> 3. Push changes: git push origin <branch-name>",
	},
	{
		"Ansible Playbook Failed - SSH Connection Timeout",
		"Ansible cannot establish SSH connection to target hosts due to network issues, authentication problems, or firewall restrictions",
		"1. Verify SSH connectivity: ssh user@host 2. Check SSH keys: ssh-add -l 3. Update inventory with correct IPs/hostnames 4. Configure SSH timeout in ansible.cfg",
	},
	{
		"Terraform Apply Failed - Resource Already Exists",
		"Terraform tries to create resources that already exist, usually due to state file mismatch or manual resource creation outside Terraform",
		"1. Import existing resources: terraform import 2. Update state file: terraform refresh 3. Use terraform plan to review changes 4. Consider using data sources for existing resources",
	},
}

// Builtin serves the demo knowledge base compiled into the binary.
type Builtin struct{}

// NewBuiltin creates the built-in source.
func NewBuiltin() Builtin { return Builtin{} }

// Name implements Source.
func (Builtin) Name() string { return "builtin" }

// Load returns the built-in entries with positional ids.
func (Builtin) Load(context.Context) ([]domkn.Entry, error) {
	out := make([]domkn.Entry, len(builtinRecords))
	for i, r := range builtinRecords {
		out[i] = domkn.Reconstruct(i, r.failure, r.rootCause, r.solution)
	}
	return out, nil
}
