package worklog

// Service is the orchestration layer that drives the remote content service
// to create, duplicate and archive work log entries.
//
// All remote traffic is sequential: the service never issues concurrent
// calls, because the remote side rate-limits per integration and the client
// already paces every mutation.
type Service struct {
	client ContentClient
	logger Logger
	clock  Clock
}

// NewService creates a Service with the provided dependencies.
func NewService(client ContentClient, logger Logger, clock Clock) *Service {
	return &Service{
		client: client,
		logger: logger,
		clock:  clock,
	}
}
