package checker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"site-checker/internal/config"
	"site-checker/internal/domain"
	"site-checker/internal/probe"
	"site-checker/internal/target"
)

// Runner executes every probe of a Set against one URL and assembles the
// SiteReport. A probe failure never prevents the others from completing.
type Runner struct {
	probes  probe.Set
	timeout time.Duration
	metrics domain.MetricsCollector
	logger  *zap.Logger
}

func NewRunner(
	probes probe.Set,
	cfg *config.Config,
	metrics domain.MetricsCollector,
	logger *zap.Logger,
) *Runner {
	return &Runner{
		probes:  probes,
		timeout: cfg.Probes.Timeout,
		metrics: metrics,
		logger:  logger.With(zap.String("component", "runner")),
	}
}

// Run parses rawURL and probes it. Only an invalid URL is returned as an error;
// in that case no probe runs.
func (r *Runner) Run(ctx context.Context, rawURL string) (domain.SiteReport, error) {
	t, err := target.Parse(rawURL)
	if err != nil {
		return domain.SiteReport{}, err
	}

	report := domain.SiteReport{URL: t.Raw}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		report.Transport = runProbe(gctx, r, r.probes.Transport, t)
		return nil
	})
	g.Go(func() error {
		report.Certificate = runProbe(gctx, r, r.probes.Certificate, t)
		return nil
	})
	g.Go(func() error {
		report.Origin = runProbe(gctx, r, r.probes.Origin, t)
		return nil
	})
	g.Go(func() error {
		report.Reputation = runProbe(gctx, r, r.probes.Reputation, t)
		return nil
	})
	if r.probes.DomainAge != nil {
		age := new(domain.Outcome[domain.DomainAge])
		report.DomainAge = age
		g.Go(func() error {
			*age = runProbe(gctx, r, r.probes.DomainAge, t)
			return nil
		})
	}

	_ = g.Wait()

	r.logger.Debug("Probes finished",
		zap.String("url", report.URL),
		zap.Int("failures", len(report.Failures())))

	return report, nil
}

type checkResult[T any] struct {
	value T
	err   error
}

// runProbe runs p under the runner's timeout and always returns a resolved
// outcome. A probe that has not returned by the deadline is abandoned.
func runProbe[T any](ctx context.Context, r *Runner, p probe.Probe[T], t domain.Target) domain.Outcome[T] {
	start := time.Now()
	value, err := checkWithTimeout(ctx, r.timeout, p, t)
	duration := time.Since(start)

	if err != nil {
		classified := probe.Classify(err)
		r.logger.Debug("Probe failed",
			zap.String("probe", string(p.Name())),
			zap.String("url", t.Raw),
			zap.String("kind", string(classified.Kind)),
			zap.Duration("duration", duration),
			zap.Error(err))
		r.metrics.RecordProbe(p.Name(), classified.Kind, duration)
		return domain.Failure[T](classified.Kind, classified.Message)
	}

	r.metrics.RecordProbe(p.Name(), "", duration)
	return domain.Success(value)
}

func checkWithTimeout[T any](ctx context.Context, timeout time.Duration, p probe.Probe[T], t domain.Target) (T, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	ch := make(chan checkResult[T], 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				var zero T
				ch <- checkResult[T]{zero, probe.NewError(domain.KindInternal, "check failed unexpectedly", fmt.Errorf("panic: %v", rec))}
			}
		}()
		value, err := p.Check(ctx, t)
		ch <- checkResult[T]{value, err}
	}()

	return awaitResult(ctx, ch)
}

// awaitResult prefers a result that is already available over the deadline.
func awaitResult[T any](ctx context.Context, ch <-chan checkResult[T]) (T, error) {
	select {
	case <-ctx.Done():
		select {
		case result := <-ch:
			return result.value, result.err
		default:
		}
		var zero T
		return zero, probe.NewError(domain.KindTimeout, "check timed out", ctx.Err())
	case result := <-ch:
		return result.value, result.err
	}
}
