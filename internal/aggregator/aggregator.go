package aggregator

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"site-checker/internal/config"
	"site-checker/internal/domain"
	"site-checker/internal/interfaces"
	"site-checker/internal/narrative"
	"site-checker/internal/target"
)

var Module = fx.Options(
	fx.Provide(
		fx.Annotate(New, fx.As(new(interfaces.Assessor))),
	),
)

const (
	ModeSingle      = "single"
	ModeComparative = "comparative"

	IssueGenerationFailed = "generation_failed"
	IssueMissingVerdict   = "missing_verdict"
)

// Aggregator runs the probes for one or two URLs and asks the narrative
// client to describe the resulting reports.
type Aggregator struct {
	runner                interfaces.Runner
	narrator              narrative.Client
	includeSiteNarratives bool
	metrics               domain.MetricsCollector
	logger                *zap.Logger
	now                   func() time.Time
}

func New(
	runner interfaces.Runner,
	narrator narrative.Client,
	cfg *config.Config,
	metrics domain.MetricsCollector,
	logger *zap.Logger,
) *Aggregator {
	return &Aggregator{
		runner:                runner,
		narrator:              narrator,
		includeSiteNarratives: cfg.Narrative.IncludeSiteNarratives,
		metrics:               metrics,
		logger:                logger.With(zap.String("component", "aggregator")),
		now:                   time.Now,
	}
}

// Assess probes rawURL and describes the report. Only an invalid URL is
// returned as an error; narrative problems are reported as warnings.
func (a *Aggregator) Assess(ctx context.Context, rawURL string) (*domain.Assessment, error) {
	started := a.now()

	report, err := a.runner.Run(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if !report.Complete() {
		return nil, fmt.Errorf("probe runner returned an incomplete report for %s", report.URL)
	}

	text, verdict, warnings := a.describe(ctx, report)

	assessment := &domain.Assessment{
		URL:         report.URL,
		Verdict:     verdict,
		Narrative:   text,
		Report:      report,
		Warnings:    warnings,
		StartedAt:   started,
		CompletedAt: a.now(),
	}
	a.metrics.RecordAssessment(ModeSingle, verdict, assessment.Duration())

	a.logger.Info("Assessment completed",
		zap.String("url", assessment.URL),
		zap.String("verdict", string(verdict)),
		zap.Int("failed_probes", len(report.Failures())),
		zap.Duration("duration", assessment.Duration()))

	return assessment, nil
}

// Compare validates both URLs before probing anything, then probes them
// concurrently and produces a comparative narrative.
func (a *Aggregator) Compare(ctx context.Context, first, second string) (*domain.Comparison, error) {
	started := a.now()

	if _, err := target.Parse(first); err != nil {
		return nil, fmt.Errorf("first URL: %w", err)
	}
	if _, err := target.Parse(second); err != nil {
		return nil, fmt.Errorf("second URL: %w", err)
	}

	var report domain.ComparativeReport
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		report.First, err = a.runner.Run(gctx, first)
		return err
	})
	g.Go(func() (err error) {
		report.Second, err = a.runner.Run(gctx, second)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if !report.Complete() {
		return nil, fmt.Errorf("probe runner returned an incomplete report")
	}

	comparison := &domain.Comparison{
		FirstURL:  report.First.URL,
		SecondURL: report.Second.URL,
		Report:    report,
		StartedAt: started,
	}

	if a.includeSiteNarratives {
		var firstWarnings, secondWarnings []string
		sides, sctx := errgroup.WithContext(ctx)
		sides.Go(func() error {
			comparison.FirstNarrative, _, firstWarnings = a.describe(sctx, report.First)
			return nil
		})
		sides.Go(func() error {
			comparison.SecondNarrative, _, secondWarnings = a.describe(sctx, report.Second)
			return nil
		})
		_ = sides.Wait()

		for _, w := range firstWarnings {
			comparison.Warnings = append(comparison.Warnings, "first site: "+w)
		}
		for _, w := range secondWarnings {
			comparison.Warnings = append(comparison.Warnings, "second site: "+w)
		}
	}

	text, err := a.narrator.CompareSites(ctx, report, comparison.FirstNarrative, comparison.SecondNarrative)
	if err != nil {
		a.logger.Warn("Comparative narrative failed", zap.Error(err))
		a.metrics.RecordNarrativeIssue(IssueGenerationFailed)
		comparison.Warnings = append(comparison.Warnings, "comparative narrative could not be generated")
	} else {
		comparison.Narrative = text
	}

	comparison.CompletedAt = a.now()
	a.metrics.RecordAssessment(ModeComparative, "", comparison.CompletedAt.Sub(started))

	a.logger.Info("Comparison completed",
		zap.String("first", comparison.FirstURL),
		zap.String("second", comparison.SecondURL),
		zap.Duration("duration", comparison.CompletedAt.Sub(started)))

	return comparison, nil
}

// describe asks for a single-site narrative and extracts its verdict.
func (a *Aggregator) describe(ctx context.Context, report domain.SiteReport) (string, domain.Verdict, []string) {
	text, err := a.narrator.DescribeSite(ctx, report)
	if err != nil {
		a.logger.Warn("Narrative failed",
			zap.String("url", report.URL),
			zap.Error(err))
		a.metrics.RecordNarrativeIssue(IssueGenerationFailed)
		return "", domain.VerdictUnknown, []string{"narrative could not be generated"}
	}

	verdict := domain.ParseVerdict(text)
	if verdict == domain.VerdictUnknown {
		a.logger.Warn("Narrative has no verdict",
			zap.String("url", report.URL))
		a.metrics.RecordNarrativeIssue(IssueMissingVerdict)
		return text, verdict, []string{"narrative does not begin with a Safe or Unsafe verdict"}
	}

	return text, verdict, nil
}
