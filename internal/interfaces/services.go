package interfaces

import (
	"context"

	"site-checker/internal/domain"
)

// Runner probes a single URL
type Runner interface {
	Run(ctx context.Context, rawURL string) (domain.SiteReport, error)
}

// Assessor produces single-site assessments and comparisons
type Assessor interface {
	Assess(ctx context.Context, rawURL string) (*domain.Assessment, error)
	Compare(ctx context.Context, first, second string) (*domain.Comparison, error)
}

// WorkerPool defines the interface for worker pool management
type WorkerPool interface {
	Start(context.Context) error
	Stop() error
}

// Scheduler defines the interface for job scheduling
type Scheduler interface {
	Start(context.Context, chan<- domain.WatchedSite)
	Stop() error
	IsHealthy() bool
}
