package app

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/km-arc/go-verdure/framework/config"
	"github.com/km-arc/go-verdure/framework/container"
	"github.com/km-arc/go-verdure/framework/event"
)

// DefaultEnvironment is reported by Environment when no profile is active.
const DefaultEnvironment = "default"

// Application ties the container, the configuration manager and the
// application event publisher together. It is created by Builder.Build and
// becomes usable once Initialize returns.
//
//	a, err := app.NewBuilder().
//	    WithTOMLFile("config/app.toml").
//	    WithEnvironment("APP").
//	    WithActiveProfile("dev").
//	    WithProvider(&providers.LoggingProvider{}).
//	    Build()
//	if err != nil { ... }
//	if err := a.Initialize(); err != nil { ... }
type Application struct {
	container *container.Container
	providers *container.ProviderRegistry
	config    *config.Manager
	events    *event.Publisher[*Application]
	logger    *zap.Logger

	pending []container.ServiceProvider
	modules []ConfigFactory

	mu          sync.Mutex // serializes Initialize and RegisterProvider
	initialized atomic.Bool
}

func newApplication(reg *container.Registry, logger *zap.Logger) *Application {
	c := container.New(container.WithRegistry(reg), container.WithLogger(logger))
	a := &Application{
		container: c,
		providers: container.NewProviderRegistry(c),
		config:    config.NewManager(config.WithLogger(logger)),
		events:    event.NewPublisher[*Application](),
		logger:    logger.Named("app"),
	}
	c.Register(a)
	return a
}

// ── Lifecycle ─────────────────────────────────────────────────────────────────

// Initialize builds the object graph. The configuration manager and every
// config module are stored first, then providers register their definitions,
// the container resolves them and providers boot. A successful Initialize
// makes further calls no-ops; a failed one may be retried. Listeners of the
// context events must not call Initialize or RegisterProvider.
func (a *Application) Initialize() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.initialized.Load() {
		return nil
	}

	a.container.Register(a.config)
	for _, m := range a.modules {
		inst, err := m.Create(a.config)
		if err != nil {
			return newError(KindConfiguration, "config module "+m.Key().String(), err)
		}
		a.container.RegisterAs(m.Key(), inst)
	}

	a.events.PublishWithContext(ContextInitializing{
		ConfigSourcesCount:  a.config.SourcesCount(),
		ActiveProfilesCount: len(a.config.ActiveProfiles()),
		Timestamp:           time.Now(),
	}, a)

	for len(a.pending) > 0 {
		p := a.pending[0]
		if err := a.providers.Register(p); err != nil {
			return newError(KindInitializationFailed, "", err)
		}
		a.pending = a.pending[1:]
	}
	if err := a.container.Initialize(); err != nil {
		return newError(KindInitializationFailed, "", err)
	}
	if err := a.providers.Boot(); err != nil {
		return newError(KindInitializationFailed, "", err)
	}

	a.initialized.Store(true)
	a.events.PublishWithContext(ContextInitialized{
		ConfigSourcesCount:  a.config.SourcesCount(),
		ActiveProfilesCount: len(a.config.ActiveProfiles()),
		Timestamp:           time.Now(),
	}, a)
	a.logger.Info("application initialized",
		zap.String("environment", a.Environment()),
		zap.Int("components", a.container.Store().Len()),
		zap.Int("providers", len(a.providers.Providers())))
	return nil
}

// Initialized reports whether Initialize has completed successfully.
func (a *Application) Initialized() bool { return a.initialized.Load() }

// RegisterProvider adds a provider. Before Initialize it is queued; after
// Initialize it registers and boots immediately, but its definitions are
// only built by an explicit Container().Initialize().
func (a *Application) RegisterProvider(p container.ServiceProvider) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.initialized.Load() {
		a.pending = append(a.pending, p)
		return nil
	}
	if err := a.providers.Register(p); err != nil {
		return newError(KindInitializationFailed, "", err)
	}
	return nil
}

// ── Accessors ─────────────────────────────────────────────────────────────────

func (a *Application) Container() *container.Container { return a.container }

func (a *Application) Config() *config.Manager { return a.config }

func (a *Application) Events() *event.Publisher[*Application] { return a.events }

func (a *Application) Logger() *zap.Logger { return a.logger }

// Get returns the stored component of type T.
func Get[T any](a *Application) (T, bool) {
	return container.Get[T](a.container)
}

// Resolve returns the stored singleton or a fresh prototype of type T.
func Resolve[T any](a *Application) (T, error) {
	return container.Resolve[T](a.container)
}

// ── Configuration ─────────────────────────────────────────────────────────────

// GetConfig returns the string form of key, or "" when it does not resolve.
func (a *Application) GetConfig(key string) string {
	return a.config.GetStringOrDefault(key, "")
}

func (a *Application) GetConfigOrDefault(key, def string) string {
	return a.config.GetStringOrDefault(key, def)
}

// ConfigAs parses key into T with the same rules as struct binding.
//
//	port, err := app.ConfigAs[int](a, "server.port")
//	timeout, err := app.ConfigAs[time.Duration](a, "server.timeout")
func ConfigAs[T any](a *Application, key string) (T, error) {
	v, err := config.As[T](a.config, key)
	if err != nil {
		return v, newError(KindConfiguration, "key "+key, err)
	}
	return v, nil
}

// SetConfig overrides key and publishes ConfigurationChanged.
func (a *Application) SetConfig(key, value string) {
	old, had := a.config.Get(key)
	a.config.Set(key, config.String(value))

	ev := ConfigurationChanged{Key: key, NewValue: value, HadOldValue: had, Timestamp: time.Now()}
	if had {
		ev.OldValue = old.String()
	}
	a.events.PublishWithContext(ev, a)
	a.logger.Debug("configuration changed", zap.String("key", key))
}

func (a *Application) AddConfigSource(src config.Source) {
	a.config.AddSource(src)
}

// ── Profiles ──────────────────────────────────────────────────────────────────

func (a *Application) ActiveProfiles() []string { return a.config.ActiveProfiles() }

func (a *Application) IsProfileActive(name string) bool { return a.config.IsProfileActive(name) }

// ActivateProfile activates a registered profile and publishes
// ProfileActivated.
func (a *Application) ActivateProfile(name string) error {
	if err := a.config.ActivateProfile(name); err != nil {
		return newError(KindConfiguration, "activate profile", err)
	}
	a.events.PublishWithContext(ProfileActivated{
		ProfileName:     name,
		PropertiesCount: a.config.Profiles().PropertiesCount(name),
		Timestamp:       time.Now(),
	}, a)
	return nil
}

func (a *Application) DeactivateProfile(name string) { a.config.DeactivateProfile(name) }

// Environment returns the active profiles joined by commas, or
// DefaultEnvironment when none is active.
func (a *Application) Environment() string {
	active := a.config.ActiveProfiles()
	if len(active) == 0 {
		return DefaultEnvironment
	}
	return strings.Join(active, ",")
}

// ── Events ────────────────────────────────────────────────────────────────────

// PublishEvent dispatches ev to plain listeners, then to context-aware
// listeners with the application as context.
func (a *Application) PublishEvent(ev event.Event) {
	a.events.PublishWithContext(ev, a)
}

func Subscribe[T event.Event](a *Application, fn func(T)) {
	event.Subscribe(a.events, fn)
}

func SubscribeWithContext[T event.Event](a *Application, fn func(T, *Application)) {
	event.SubscribeWithContext(a.events, fn)
}
