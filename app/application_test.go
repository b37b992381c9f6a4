package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"site-checker/internal/common"
	"site-checker/internal/config"
	"site-checker/internal/domain"
	"site-checker/internal/interfaces"
	"site-checker/internal/server"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Server.Listen = "127.0.0.1:0"
	cfg.Probes.Timeout = 5 * time.Second
	cfg.Probes.ConnectTimeout = time.Second
	cfg.Geolocation.APIKey = ""
	cfg.Reputation.APIKey = ""
	return cfg
}

func TestApplicationGraph(t *testing.T) {
	var (
		assessor interfaces.Assessor
		srv      *server.Server
	)
	ta := NewTestApplication(t, common.WithConfig(testConfig(t))).Populate(&assessor, &srv)

	ctx := context.Background()
	require.NoError(t, ta.Start(ctx))
	t.Cleanup(func() { _ = ta.Stop(ctx) })

	require.NotNil(t, srv)
	require.NotNil(t, assessor)

	assessment, err := assessor.Assess(ctx, "http://127.0.0.1")
	require.NoError(t, err)

	assert.True(t, assessment.Report.Complete())
	assert.Equal(t, domain.VerdictUnsafe, assessment.Verdict)

	https, ok := assessment.Report.Transport.Value()
	require.True(t, ok)
	assert.False(t, https)

	detail, failed := assessment.Report.Reputation.Err()
	require.True(t, failed)
	assert.Equal(t, domain.KindUpstreamAPI, detail.Kind)
}

func TestRun(t *testing.T) {
	called := false
	err := Run(context.Background(), func(ctx context.Context, assessor interfaces.Assessor) error {
		called = true
		_, err := assessor.Assess(ctx, "")
		assert.Error(t, err)
		return nil
	}, common.WithConfig(testConfig(t)))

	require.NoError(t, err)
	assert.True(t, called)
}

func TestRunRejectsUnknownNarrativeProvider(t *testing.T) {
	cfg := testConfig(t)
	cfg.Narrative.Provider = "unknown"

	err := Run(context.Background(), func(context.Context, interfaces.Assessor) error {
		t.Fatal("callback must not run")
		return nil
	}, common.WithConfig(cfg))

	assert.ErrorContains(t, err, "unknown narrative provider")
}

func TestNewApplicationInvalidConfigPath(t *testing.T) {
	application := NewApplication(common.WithConfigPath("/nonexistent/site-checker.yaml"))
	assert.Error(t, application.Err())
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(EnvProduction, false)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = NewLogger("development", true)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}
