package checker

import (
	"go.uber.org/fx"
	"site-checker/internal/interfaces"
)

// Module exports the probe runner
var Module = fx.Options(
	fx.Provide(
		fx.Annotate(NewRunner, fx.As(new(interfaces.Runner))),
	),
)
