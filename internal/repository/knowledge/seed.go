package knowledge

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
)

const createIssues = `CREATE TABLE devops_issues (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    failure TEXT NOT NULL,
    root_cause TEXT NOT NULL,
    solution TEXT NOT NULL
)`

var seedRecords = []record{
	{
		"ERROR :: Command(git am <path>/6715314649237516733_patch/*.patch --keep-cr --3way) failed after maximum retry ... script returned exit code 255",
		"Git patch application failure due to merge conflicts or corrupted patches. The git am command with 3-way merge strategy exhausted retry attempts.",
		"If there are merge conflicts during git am --3way, rebase your workspace, resolve conflicts if any. Afterwards push the changes and retrigger.",
	},
	{
		"Unable to find image 'docker.io/library/hello-world:latest' locally\ndocker: Error response from daemon: pull access denied for hello-world, repository does not exist or may require 'docker login'.",
		"This error occurs because Docker couldn't pull the image from the private registry due to network timeout, connectivity issues, missing permissions, or an invalid image/tag.",
		"First check manual docker pull from artifactory. If manual pull also fails, check for the same image and tag in artifactory to verify if it exists.",
	},
	{
		"{'Commit issue (Dev)': 'Dynamic Code Coverage Threshold(70%) not met', 'Environment issue': []} INFO :: Environment variables :: {'FAIL_CATEGORY': 'Commit issue (Dev)', 'FAIL_REASON': 'Dynamic Code Coverage Threshold(70%) not met'} script returned exit code 1",
		"Dynamic Code Coverage Threshold(70%) not is met and minimum requirement set for dynamic code coverage is 70 percent.",
		"Kindly maintain the minimum coverage and write necessary testcase to increase the coverage.",
	},
	{
		"Failure: Stage failed due to error: hudson.AbortException: script returned exit code 1",
		"This error indicates that script or command within your pipeline stage executed and failed. Jenkins throws this exception when a build step fails. It's Jenkins' way of saying \"something went wrong and we're stopping the build\"",
		"Examine the console logs. The key is to look at the console output right before this error to see what specific command or script actually failed!",
	},
	{
		"Branch not set issue in pool git status HEAD detached from FETCH_HEAD Untracked files: nothing added to commit but untracked files present (use \"git add\" to track)",
		"Head detached from master.",
		"checkout to your branch <your_branch> and then retrigger pool mt.",
	},
	{
		"Jenkins Build Timeout",
		"Jenkins build timing out during execution phase",
		"1. Increase build timeout 2. Optimize build steps 3. Check system resources",
	},
	{
		"Kubernetes Pod CrashLoopBackOff",
		"Pod continuously crashes and restarts in Kubernetes cluster",
		"1. Check pod logs kubectl logs pod-name 2. Verify resource limits 3. Check probes",
	},
	{
		"Jenkins Build Timeout",
		"Jenkins build timing out during execution phase",
		"1. Increase build timeout 2. Optimize build steps 3. Check system resources",
	},
	{
		"GitLab CI Pipeline Failure - Dependency Issues",
		"Pipeline fails due to missing or incompatible dependencies",
		"1. Update dependency versions 2. Clear pipeline cache 3. Check lock files",
	},
	{
		"Deployment Rollback Required",
		"Production deployment causing issues requiring immediate rollback",
		"1. Identify failed deployment 2. Execute rollback 3. Verify service health",
	},
}

// Seed recreates the database at path with the reference incident set
// and returns the number of inserted rows.
func Seed(ctx context.Context, path string) (int, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("create data dir: %w", err)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return 0, fmt.Errorf("remove existing database: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return 0, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	defer func() { _ = db.Close() }()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, createIssues); err != nil {
		return 0, fmt.Errorf("create devops_issues: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO devops_issues (id, failure, root_cause, solution) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, r := range seedRecords {
		if _, err := stmt.ExecContext(ctx, i+1, r.failure, r.rootCause, r.solution); err != nil {
			return 0, fmt.Errorf("insert row %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(seedRecords), nil
}
