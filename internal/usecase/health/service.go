package health

import (
	"context"

	"go.uber.org/zap"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates the index is down; curation still works.
	Degraded Status = "degraded"
	// Unhealthy indicates the store is down.
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
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	store  StorePinger
	index  IndexChecker
	logger *zap.Logger
}

// New creates a Service. index can be nil.
func New(store StorePinger, index IndexChecker, logger *zap.Logger) *Service {
	return &Service{store: store, index: index, logger: logger}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	status := Healthy

	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warn("Store health check failed", zap.Error(err))
		checks["store"] = CheckError
		status = Unhealthy
	} else {
		checks["store"] = CheckOK
	}

	if s.index != nil {
		if err := s.index.Check(ctx); err != nil {
			s.logger.Warn("Index health check failed", zap.Error(err))
			checks["index"] = CheckError
			if status == Healthy {
				status = Degraded
			}
		} else {
			checks["index"] = CheckOK
		}
	}

	return Report{Status: status, Checks: checks}
}
