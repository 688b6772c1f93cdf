package health

import "context"

// DBPinger checks storage availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// AssistantChecker checks text generation provider availability.
type AssistantChecker interface {
	HealthCheck(ctx context.Context) error
}
