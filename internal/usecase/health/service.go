package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates an optional component is failing.
	Degraded Status = "degraded"
	// Unhealthy indicates storage is unreachable.
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

// Component names used as keys of Report.Checks.
const (
	ComponentDatabase  = "database"
	ComponentAssistant = "assistant"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db        DBPinger
	assistant AssistantChecker
}

// New creates a Service. assistant can be nil.
func New(db DBPinger, assistant AssistantChecker) *Service {
	return &Service{db: db, assistant: assistant}
}

// Check runs health checks against all components.
// Storage failure makes the service unhealthy; assistant failure only degrades it.
func (s *Service) Check(ctx context.Context) Report {
	checks := map[string]CheckResult{ComponentDatabase: CheckOK}
	status := Healthy

	if s.assistant != nil {
		checks[ComponentAssistant] = CheckOK
		if err := s.assistant.HealthCheck(ctx); err != nil {
			checks[ComponentAssistant] = CheckError
			status = Degraded
		}
	}

	if err := s.db.Ping(ctx); err != nil {
		checks[ComponentDatabase] = CheckError
		status = Unhealthy
	}

	return Report{Status: status, Checks: checks}
}
