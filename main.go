package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/km-arc/go-verdure/framework/app"
	"github.com/km-arc/go-verdure/framework/config"
	"github.com/km-arc/go-verdure/framework/container"
	"github.com/km-arc/go-verdure/framework/providers"
)

// GreeterConfig is bound from the "greeter" section.
type GreeterConfig struct {
	Greeting string   `config:"greeting" default:"Hi" validate:"required|alpha"`
	Audience []string `config:"audience" default:"world"`
}

type Greeter struct {
	cfg    *GreeterConfig
	logger *zap.Logger
}

func (g *Greeter) Greet() []string {
	out := make([]string, 0, len(g.cfg.Audience))
	for _, who := range g.cfg.Audience {
		out = append(out, fmt.Sprintf("%s, %s!", g.cfg.Greeting, who))
	}
	return out
}

// GreeterProvider wires the Greeter from its config module and the logger.
type GreeterProvider struct {
	container.BaseProvider
}

func (p *GreeterProvider) Register(reg *container.Registry) error {
	return container.Singleton(reg, func(d container.Dependencies) (*Greeter, error) {
		cfg, err := container.Dep[*GreeterConfig](d)
		if err != nil {
			return nil, err
		}
		logger, err := container.Dep[*zap.Logger](d)
		if err != nil {
			return nil, err
		}
		return &Greeter{cfg: cfg, logger: logger.Named("greeter")}, nil
	}, container.KeyOf[*GreeterConfig](), container.KeyOf[*zap.Logger]())
}

func (p *GreeterProvider) Boot(c *container.Container) error {
	g, _ := container.Get[*Greeter](c)
	for _, line := range g.Greet() {
		g.logger.Info(line)
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

const configFile = "config/app.toml"

var profiles = []config.Profile{
	config.NewProfile("dev", map[string]string{
		"logging.level":    "debug",
		"greeter.greeting": "Howdy",
	}),
	config.NewProfile("prod", map[string]string{
		"logging.format": "json",
	}),
}

func run() error {
	args := os.Args[1:]

	// The container and the config manager take their logger at Build, so
	// the logging section is resolved up front from the same layers.
	boot, err := bootstrapConfig(args)
	if err != nil {
		return err
	}
	var logCfg providers.LoggingConfig
	if err := config.Bind(boot, "logging", &logCfg); err != nil {
		return err
	}
	logger, err := providers.NewLogger(logCfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	b := app.NewBuilder().
		WithLogger(logger).
		WithConfigFile(configFile).
		WithDotenv().
		WithEnvironment("VERDURE").
		WithArgs(args).
		WithSubscriber(func(a *app.Application) {
			app.Subscribe(a, func(e app.ProfileActivated) {
				a.Logger().Info("profile activated",
					zap.String("profile", e.ProfileName),
					zap.Int("properties", e.PropertiesCount))
			})
		}).
		WithConfigModule(app.ConfigModule[GreeterConfig]("greeter")).
		WithProvider(&providers.InspectorProvider{}).
		WithProvider(&GreeterProvider{})
	for _, p := range profiles {
		b.WithProfile(p)
	}
	for _, name := range boot.ActiveProfiles() {
		b.WithActiveProfile(name)
	}

	a, err := b.Build()
	if err != nil {
		return err
	}
	// Components share the bootstrap logger instead of a second one from
	// providers.LoggingProvider.
	a.Container().Register(logger)

	if err := a.Initialize(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.Serve(ctx)
}

// bootstrapConfig layers the same sources as the application and activates
// the profiles named by profiles.active (e.g. --profiles.active=dev or
// VERDURE_PROFILES_ACTIVE=dev).
func bootstrapConfig(args []string) (*config.Manager, error) {
	m := config.NewManager()
	if err := m.AddConfigFile(configFile); err != nil {
		return nil, err
	}
	if err := config.LoadDotenv(); err != nil {
		return nil, err
	}
	m.AddSource(config.NewEnvSource(""))
	m.AddSource(config.NewEnvSource("VERDURE"))
	m.AddSource(config.NewArgsSource(args))

	for _, p := range profiles {
		if err := m.AddProfile(p); err != nil {
			return nil, err
		}
	}
	for _, n := range strings.Split(m.GetStringOrDefault("profiles.active", ""), ",") {
		if n = strings.TrimSpace(n); n != "" {
			if err := m.ActivateProfile(n); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}
