package app

import (
	"time"

	"go.uber.org/zap"

	"github.com/km-arc/go-verdure/framework/config"
	"github.com/km-arc/go-verdure/framework/container"
)

// Builder collects configuration sources, profiles and providers and turns
// them into an Application. Sources are added in call order, so later ones
// take precedence; properties set with WithProperty form a final source on
// top of all of them.
type Builder struct {
	steps       []func(*config.Manager) error
	properties  map[string]string
	profiles    []config.Profile
	active      []string
	registry    *container.Registry
	providers   []container.ServiceProvider
	modules     []ConfigFactory
	subscribers []func(*Application)
	logger      *zap.Logger
}

func NewBuilder() *Builder {
	return &Builder{properties: make(map[string]string)}
}

// ── Sources ───────────────────────────────────────────────────────────────────

func (b *Builder) WithConfigSource(src config.Source) *Builder {
	b.steps = append(b.steps, func(m *config.Manager) error {
		m.AddSource(src)
		return nil
	})
	return b
}

func (b *Builder) WithTOMLFile(path string) *Builder {
	b.steps = append(b.steps, func(m *config.Manager) error { return m.AddTOMLFile(path) })
	return b
}

func (b *Builder) WithYAMLFile(path string) *Builder {
	b.steps = append(b.steps, func(m *config.Manager) error { return m.AddYAMLFile(path) })
	return b
}

func (b *Builder) WithPropertiesFile(path string) *Builder {
	b.steps = append(b.steps, func(m *config.Manager) error { return m.AddPropertiesFile(path) })
	return b
}

// WithConfigFile adds a file whose format is detected from its extension
// or, failing that, its content.
func (b *Builder) WithConfigFile(path string) *Builder {
	b.steps = append(b.steps, func(m *config.Manager) error { return m.AddConfigFile(path) })
	return b
}

// WithDotenv loads the given .env files (".env" when none) into the process
// environment without overriding variables that are already set, then adds
// an unprefixed environment source.
func (b *Builder) WithDotenv(files ...string) *Builder {
	b.steps = append(b.steps, func(m *config.Manager) error {
		if err := config.LoadDotenv(files...); err != nil {
			return err
		}
		m.AddSource(config.NewEnvSource(""))
		return nil
	})
	return b
}

// WithEnvironment adds the process environment under prefix, so with
// prefix "APP" the key server.port reads APP_SERVER_PORT.
func (b *Builder) WithEnvironment(prefix string) *Builder {
	return b.WithConfigSource(config.NewEnvSource(prefix))
}

// WithArgs adds --key=value command-line arguments.
func (b *Builder) WithArgs(args []string) *Builder {
	return b.WithConfigSource(config.NewArgsSource(args))
}

func (b *Builder) WithProperty(key, value string) *Builder {
	b.properties[key] = value
	return b
}

// ── Profiles ──────────────────────────────────────────────────────────────────

func (b *Builder) WithProfile(p config.Profile) *Builder {
	b.profiles = append(b.profiles, p)
	return b
}

func (b *Builder) WithActiveProfile(name string) *Builder {
	b.active = append(b.active, name)
	return b
}

// ── Components ────────────────────────────────────────────────────────────────

// WithRegistry resolves components from reg instead of an empty registry.
func (b *Builder) WithRegistry(reg *container.Registry) *Builder {
	b.registry = reg
	return b
}

func (b *Builder) WithProvider(p container.ServiceProvider) *Builder {
	b.providers = append(b.providers, p)
	return b
}

func (b *Builder) WithConfigModule(m ConfigFactory) *Builder {
	b.modules = append(b.modules, m)
	return b
}

// WithSubscriber runs fn on the new application before profiles are
// activated, so listeners see the ProfileActivated events of Build.
func (b *Builder) WithSubscriber(fn func(*Application)) *Builder {
	b.subscribers = append(b.subscribers, fn)
	return b
}

func (b *Builder) WithLogger(l *zap.Logger) *Builder {
	b.logger = l
	return b
}

// ── Build ─────────────────────────────────────────────────────────────────────

// Build creates the application. Any failing source, duplicate profile or
// unknown active profile is returned as a Configuration error.
func (b *Builder) Build() (*Application, error) {
	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	reg := b.registry
	if reg == nil {
		reg = container.NewRegistry()
	}
	a := newApplication(reg, logger)

	for _, step := range b.steps {
		if err := step(a.config); err != nil {
			return nil, newError(KindConfiguration, "add config source", err)
		}
	}
	if len(b.properties) > 0 {
		a.config.AddSource(config.NewMapSource("builder", b.properties))
	}
	for _, p := range b.profiles {
		if err := a.config.AddProfile(p); err != nil {
			return nil, newError(KindConfiguration, "add profile", err)
		}
	}

	for _, fn := range b.subscribers {
		fn(a)
	}

	for _, name := range b.active {
		if err := a.config.ActivateProfile(name); err != nil {
			return nil, newError(KindConfiguration, "activate profile", err)
		}
		a.events.PublishWithContext(ProfileActivated{
			ProfileName:     name,
			PropertiesCount: a.config.Profiles().PropertiesCount(name),
			Timestamp:       time.Now(),
		}, a)
	}

	a.pending = append(a.pending, b.providers...)
	a.modules = append(a.modules, b.modules...)

	a.logger.Debug("application built",
		zap.Int("sources", a.config.SourcesCount()),
		zap.Strings("profiles", a.config.ActiveProfiles()),
		zap.Int("providers", len(b.providers)))
	return a, nil
}
