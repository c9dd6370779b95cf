package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status       Status
	Checks       map[string]CheckResult
	IndexEntries int
}

// Deps lists the components to check. Nil components are skipped.
type Deps struct {
	Index     IndexReader
	Embedding ProviderChecker
	LLM       ProviderChecker
	Cache     Pinger
	Notify    Pinger
}

// Service coordinates health checks.
type Service struct {
	deps Deps
}

// New creates a Service.
func New(deps Deps) *Service {
	return &Service{deps: deps}
}

// Check runs health checks against all components. A missing index makes the
// service unhealthy since no query can return candidates; every other failure
// only degrades it.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	var entries int

	if s.deps.Index != nil {
		if snap := s.deps.Index.Current(); snap != nil {
			checks["index"] = CheckOK
			entries = snap.Len()
		} else {
			checks["index"] = CheckError
		}
	}
	if s.deps.Embedding != nil {
		checks["embedding"] = result(s.deps.Embedding.HealthCheck(ctx))
	}
	if s.deps.LLM != nil {
		checks["llm"] = result(s.deps.LLM.HealthCheck(ctx))
	}
	if s.deps.Cache != nil {
		checks["cache"] = result(s.deps.Cache.Ping(ctx))
	}
	if s.deps.Notify != nil {
		checks["notify"] = result(s.deps.Notify.Ping(ctx))
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	if checks["index"] == CheckError {
		status = Unhealthy
	}

	return Report{Status: status, Checks: checks, IndexEntries: entries}
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
