package providers

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/km-arc/go-verdure/framework/config"
	"github.com/km-arc/go-verdure/framework/container"
	gohttp "github.com/km-arc/go-verdure/framework/http"
	"github.com/km-arc/go-verdure/framework/routing"
)

// ── LoggingProvider ───────────────────────────────────────────────────────────

// LoggingConfig is bound from the "logging" configuration section.
type LoggingConfig struct {
	Level  string   `config:"level" default:"info" validate:"in:debug,info,warn,error,dpanic,panic,fatal"`
	Format string   `config:"format" default:"json" validate:"in:json,console"`
	Output []string `config:"output" default:"stderr"`
}

// LoggingProvider builds the *zap.Logger handed to components from
// configuration. The container and config manager keep the logger given to
// app.Builder.WithLogger; to share one logger, build it with NewLogger and
// register it as an instance instead.
//
// Provides:
//   - *zap.Logger
//
// Configuration keys:
//   - logging.level  (default: "info")
//   - logging.format "json" or "console" (default: "json")
//   - logging.output comma separated zap sinks (default: "stderr")
type LoggingProvider struct {
	container.BaseProvider
}

func (p *LoggingProvider) Register(reg *container.Registry) error {
	return container.Singleton(reg, func(d container.Dependencies) (*zap.Logger, error) {
		m, err := container.Dep[*config.Manager](d)
		if err != nil {
			return nil, err
		}
		var cfg LoggingConfig
		if err := config.Bind(m, "logging", &cfg); err != nil {
			return nil, err
		}
		return NewLogger(cfg)
	}, container.KeyOf[*config.Manager]())
}

// NewLogger builds a logger: json selects zap's production encoder settings,
// console the development ones.
func NewLogger(cfg LoggingConfig) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("logging level: %w", err)
	}

	var zc zap.Config
	switch cfg.Format {
	case "console":
		zc = zap.NewDevelopmentConfig()
	default:
		zc = zap.NewProductionConfig()
	}
	zc.Level = level
	if len(cfg.Output) > 0 {
		zc.OutputPaths = cfg.Output
	}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}

// ── InspectorProvider ─────────────────────────────────────────────────────────

// InspectorProvider registers the router serving the read-only inspection
// endpoints. It depends on a *zap.Logger component, either built by
// LoggingProvider or registered as an instance before Initialize.
//
// Provides:
//   - *routing.Router
type InspectorProvider struct {
	container.BaseProvider
}

func (p *InspectorProvider) Register(reg *container.Registry) error {
	return container.Singleton(reg, func(d container.Dependencies) (*routing.Router, error) {
		c, err := container.Dep[*container.Container](d)
		if err != nil {
			return nil, err
		}
		m, err := container.Dep[*config.Manager](d)
		if err != nil {
			return nil, err
		}
		logger, err := container.Dep[*zap.Logger](d)
		if err != nil {
			return nil, err
		}
		r := routing.New(logger)
		gohttp.NewInspector(c, m).Routes(r)
		return r, nil
	},
		container.KeyOf[*container.Container](),
		container.KeyOf[*config.Manager](),
		container.KeyOf[*zap.Logger](),
	)
}
