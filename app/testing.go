package app

import (
	"context"
	"testing"
	"time"

	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"site-checker/internal/common"
)

// TestApplication runs the full service graph under fxtest so tests can swap
// individual dependencies with fx.Decorate or fx.Replace.
type TestApplication struct {
	tb      testing.TB
	testApp *fxtest.App
	service *common.ServiceOptions
	options []fx.Option
}

func NewTestApplication(tb testing.TB, opts ...common.Option) *TestApplication {
	return &TestApplication{
		tb:      tb,
		service: common.Apply(opts...),
	}
}

func (ta *TestApplication) WithOption(opt fx.Option) *TestApplication {
	ta.options = append(ta.options, opt)
	return ta
}

// Populate fills targets from the graph once the application is built.
func (ta *TestApplication) Populate(targets ...interface{}) *TestApplication {
	return ta.WithOption(fx.Populate(targets...))
}

func (ta *TestApplication) Start(ctx context.Context) error {
	testOptions := []fx.Option{
		coreModules(ta.service),
		serviceModules,
		fx.Invoke(registerHooks),
	}
	testOptions = append(testOptions, ta.options...)
	testOptions = append(testOptions,
		fx.StartTimeout(10*time.Second),
		fx.StopTimeout(10*time.Second),
	)

	ta.testApp = fxtest.New(ta.tb, testOptions...)
	return ta.testApp.Start(ctx)
}

func (ta *TestApplication) Stop(ctx context.Context) error {
	if ta.testApp != nil {
		return ta.testApp.Stop(ctx)
	}
	return nil
}
