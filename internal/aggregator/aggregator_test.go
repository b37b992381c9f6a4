package aggregator

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"site-checker/internal/config"
	"site-checker/internal/domain"
	"site-checker/internal/target"
)

type fakeRunner struct {
	calls atomic.Int32
}

func (f *fakeRunner) Run(_ context.Context, rawURL string) (domain.SiteReport, error) {
	t, err := target.Parse(rawURL)
	if err != nil {
		return domain.SiteReport{}, err
	}
	f.calls.Add(1)
	return domain.SiteReport{
		URL:         t.Raw,
		Transport:   domain.Success(t.Scheme == "https"),
		Certificate: domain.Success(domain.CertificateInfo{Subject: "CN=" + t.Host}),
		Origin:      domain.Failure[domain.GeoRecord](domain.KindUpstreamAPI, "geolocation service is not configured"),
		Reputation:  domain.Success(domain.ReputationVerdict{Matches: []domain.ThreatMatch{}}),
	}, nil
}

type mockNarrator struct {
	mock.Mock
}

func (m *mockNarrator) DescribeSite(ctx context.Context, report domain.SiteReport) (string, error) {
	args := m.Called(ctx, report)
	return args.String(0), args.Error(1)
}

func (m *mockNarrator) CompareSites(ctx context.Context, report domain.ComparativeReport, first, second string) (string, error) {
	args := m.Called(ctx, report, first, second)
	return args.String(0), args.Error(1)
}

type recordingMetrics struct {
	mu          sync.Mutex
	assessments []string
	issues      []string
}

func (m *recordingMetrics) RecordProbe(domain.ProbeName, domain.ErrorKind, time.Duration) {}
func (m *recordingMetrics) RecordAssessment(mode string, verdict domain.Verdict, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assessments = append(m.assessments, mode+":"+string(verdict))
}
func (m *recordingMetrics) RecordNarrativeIssue(issue string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.issues = append(m.issues, issue)
}
func (m *recordingMetrics) RecordCheck(domain.CheckResult) {}
func (m *recordingMetrics) RecordWorkerStart(string)       {}
func (m *recordingMetrics) RecordWorkerStop(string)        {}
func (m *recordingMetrics) RecordSchedulerJob(string)      {}

func newTestAggregator(narrator *mockNarrator, includeSite bool) (*Aggregator, *fakeRunner, *recordingMetrics) {
	runner := &fakeRunner{}
	metrics := &recordingMetrics{}
	cfg := &config.Config{Narrative: config.Narrative{IncludeSiteNarratives: includeSite}}
	return New(runner, narrator, cfg, metrics, zap.NewNop()), runner, metrics
}

func TestAssess(t *testing.T) {
	tests := []struct {
		name         string
		narrative    string
		narrativeErr error
		verdict      domain.Verdict
		warnings     int
		issues       []string
	}{
		{name: "safe", narrative: "Safe. Looks fine.", verdict: domain.VerdictSafe},
		{name: "unsafe with punctuation", narrative: "**UNSAFE**: flagged.", verdict: domain.VerdictUnsafe},
		{name: "missing verdict", narrative: "This website appears fine.", verdict: domain.VerdictUnknown, warnings: 1, issues: []string{IssueMissingVerdict}},
		{name: "narrative failure", narrativeErr: errors.New("503"), verdict: domain.VerdictUnknown, warnings: 1, issues: []string{IssueGenerationFailed}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			narrator := &mockNarrator{}
			narrator.On("DescribeSite", mock.Anything, mock.MatchedBy(func(r domain.SiteReport) bool {
				return r.Complete() && r.URL == "https://example.com"
			})).Return(tt.narrative, tt.narrativeErr).Once()

			agg, _, metrics := newTestAggregator(narrator, true)
			assessment, err := agg.Assess(context.Background(), "https://example.com")
			require.NoError(t, err)

			assert.Equal(t, "https://example.com", assessment.URL)
			assert.Equal(t, tt.verdict, assessment.Verdict)
			assert.Len(t, assessment.Warnings, tt.warnings)
			assert.Equal(t, tt.issues, metrics.issues)
			assert.Equal(t, []string{"single:" + string(tt.verdict)}, metrics.assessments)
			assert.True(t, assessment.Report.Complete())
			if tt.narrativeErr != nil {
				assert.Empty(t, assessment.Narrative)
			}
			narrator.AssertExpectations(t)
		})
	}
}

func TestAssessInvalidURL(t *testing.T) {
	narrator := &mockNarrator{}
	agg, runner, _ := newTestAggregator(narrator, true)

	_, err := agg.Assess(context.Background(), "not a url")

	assert.ErrorIs(t, err, target.ErrInvalidURL)
	assert.Zero(t, runner.calls.Load())
	narrator.AssertNotCalled(t, "DescribeSite", mock.Anything, mock.Anything)
}

func TestCompare(t *testing.T) {
	narrator := &mockNarrator{}
	narrator.On("DescribeSite", mock.Anything, mock.MatchedBy(func(r domain.SiteReport) bool {
		return r.URL == "https://a.example"
	})).Return("Safe. A is fine.", nil).Once()
	narrator.On("DescribeSite", mock.Anything, mock.MatchedBy(func(r domain.SiteReport) bool {
		return r.URL == "http://b.example"
	})).Return("Unsafe. B uses HTTP.", nil).Once()
	narrator.On("CompareSites", mock.Anything, mock.MatchedBy(func(r domain.ComparativeReport) bool {
		return r.Complete() && r.First.URL == "https://a.example" && r.Second.URL == "http://b.example"
	}), "Safe. A is fine.", "Unsafe. B uses HTTP.").Return("Website 1 is safer.", nil).Once()

	agg, runner, metrics := newTestAggregator(narrator, true)
	comparison, err := agg.Compare(context.Background(), "https://a.example", "http://b.example")
	require.NoError(t, err)

	assert.Equal(t, "https://a.example", comparison.FirstURL)
	assert.Equal(t, "http://b.example", comparison.SecondURL)
	assert.Equal(t, "https://a.example", comparison.Report.First.URL)
	assert.Equal(t, "http://b.example", comparison.Report.Second.URL)
	assert.True(t, comparison.Report.First.Complete())
	assert.True(t, comparison.Report.Second.Complete())
	assert.Equal(t, "Website 1 is safer.", comparison.Narrative)
	assert.Equal(t, "Safe. A is fine.", comparison.FirstNarrative)
	assert.Empty(t, comparison.Warnings)
	assert.EqualValues(t, 2, runner.calls.Load())
	assert.Equal(t, []string{ModeComparative + ":"}, metrics.assessments)
	narrator.AssertExpectations(t)
}

func TestCompareWithoutSiteNarratives(t *testing.T) {
	narrator := &mockNarrator{}
	narrator.On("CompareSites", mock.Anything, mock.Anything, "", "").Return("Both equally safe.", nil).Once()

	agg, _, _ := newTestAggregator(narrator, false)
	comparison, err := agg.Compare(context.Background(), "https://a.example", "https://b.example")
	require.NoError(t, err)

	assert.Equal(t, "Both equally safe.", comparison.Narrative)
	narrator.AssertNotCalled(t, "DescribeSite", mock.Anything, mock.Anything)
	narrator.AssertExpectations(t)
}

func TestCompareValidatesBothURLsFirst(t *testing.T) {
	narrator := &mockNarrator{}
	agg, runner, _ := newTestAggregator(narrator, true)

	_, err := agg.Compare(context.Background(), "https://a.example", "ftp://b.example")

	assert.ErrorIs(t, err, target.ErrInvalidURL)
	assert.ErrorContains(t, err, "second URL")
	assert.Zero(t, runner.calls.Load())
}

func TestCompareNarrativeFailureKeepsReport(t *testing.T) {
	narrator := &mockNarrator{}
	narrator.On("CompareSites", mock.Anything, mock.Anything, "", "").Return("", errors.New("timeout")).Once()

	agg, _, metrics := newTestAggregator(narrator, false)
	comparison, err := agg.Compare(context.Background(), "https://a.example", "https://b.example")
	require.NoError(t, err)

	assert.Empty(t, comparison.Narrative)
	assert.True(t, comparison.Report.Complete())
	assert.Equal(t, []string{"comparative narrative could not be generated"}, comparison.Warnings)
	assert.Equal(t, []string{IssueGenerationFailed}, metrics.issues)
}
