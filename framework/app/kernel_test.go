package app_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/km-arc/go-verdure/framework/app"
	"github.com/km-arc/go-verdure/framework/config"
	"github.com/km-arc/go-verdure/framework/container"
	"github.com/km-arc/go-verdure/framework/providers"
)

// ── fixtures ──────────────────────────────────────────────────────────────────

type DatabaseConfig struct {
	URL      string `config:"url" validate:"required|url"`
	PoolSize int    `config:"pool_size" default:"10"`
}

type repository struct{ cfg *DatabaseConfig }

type repoProvider struct {
	container.BaseProvider
	booted bool
}

func (p *repoProvider) Register(reg *container.Registry) error {
	return container.Singleton(reg, func(d container.Dependencies) (*repository, error) {
		cfg, err := container.Dep[*DatabaseConfig](d)
		if err != nil {
			return nil, err
		}
		return &repository{cfg: cfg}, nil
	}, container.KeyOf[*DatabaseConfig]())
}

func (p *repoProvider) Boot(c *container.Container) error {
	_, p.booted = container.Get[*repository](c)
	return nil
}

type orderPlaced struct{ ID int }

func (orderPlaced) EventName() string { return "OrderPlaced" }

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// ── Build ─────────────────────────────────────────────────────────────────────

func TestBuild_SourcePrecedence(t *testing.T) {
	toml := writeFile(t, "app.toml", "[server]\nport = 8080\nhost = \"localhost\"\n")
	yaml := writeFile(t, "app.yaml", "server:\n  port: 9000\n")

	a, err := app.NewBuilder().
		WithTOMLFile(toml).
		WithYAMLFile(yaml).
		WithArgs([]string{"--server.host=0.0.0.0"}).
		WithProperty("server.name", "verdure").
		Build()
	require.NoError(t, err)

	assert.Equal(t, "9000", a.GetConfig("server.port"), "later source wins")
	assert.Equal(t, "0.0.0.0", a.GetConfig("server.host"))
	assert.Equal(t, "verdure", a.GetConfig("server.name"))
	assert.Equal(t, "", a.GetConfig("server.missing"))
	assert.Equal(t, "fallback", a.GetConfigOrDefault("server.missing", "fallback"))
	assert.Equal(t, 4, a.Config().SourcesCount())
}

func TestBuild_ProfilesActivateInOrderAndPublish(t *testing.T) {
	var activated []app.ProfileActivated
	a, err := app.NewBuilder().
		WithProperty("server.port", "8080").
		WithProfile(config.NewProfile("dev", map[string]string{"server.port": "3000", "debug": "true"})).
		WithProfile(config.NewProfile("local", map[string]string{"server.port": "4000"})).
		WithActiveProfile("dev").
		WithActiveProfile("local").
		WithSubscriber(func(a *app.Application) {
			app.Subscribe(a, func(e app.ProfileActivated) { activated = append(activated, e) })
		}).
		Build()
	require.NoError(t, err)

	require.Len(t, activated, 2)
	assert.Equal(t, "dev", activated[0].ProfileName)
	assert.Equal(t, 2, activated[0].PropertiesCount)
	assert.False(t, activated[0].Timestamp.IsZero())
	assert.Equal(t, "local", activated[1].ProfileName)

	assert.Equal(t, "4000", a.GetConfig("server.port"), "most recently activated profile wins")
	assert.Equal(t, "true", a.GetConfig("debug"))
	assert.Equal(t, []string{"dev", "local"}, a.ActiveProfiles())
	assert.Equal(t, "dev,local", a.Environment())
	assert.True(t, a.IsProfileActive("dev"))
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name string
		b    *app.Builder
	}{
		{"missing file", app.NewBuilder().WithTOMLFile(filepath.Join(t.TempDir(), "nope.toml"))},
		{"unknown active profile", app.NewBuilder().WithActiveProfile("ghost")},
		{"duplicate profile", app.NewBuilder().
			WithProfile(config.NewProfile("dev", nil)).
			WithProfile(config.NewProfile("dev", nil))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := tt.b.Build()
			assert.Nil(t, a)
			assert.True(t, errors.Is(err, app.ErrConfiguration), "got %v", err)
		})
	}
}

func TestBuild_DotenvAndEnvironment(t *testing.T) {
	t.Cleanup(func() { _ = os.Unsetenv("VERDURE_DOTENV_GREETING") })
	t.Setenv("MYAPP_SERVER_PORT", "7070")
	env := writeFile(t, ".env", "VERDURE_DOTENV_GREETING=hello\n")

	a, err := app.NewBuilder().
		WithDotenv(env).
		WithEnvironment("MYAPP").
		Build()
	require.NoError(t, err)

	assert.Equal(t, "hello", a.GetConfig("verdure.dotenv.greeting"))
	assert.Equal(t, "7070", a.GetConfig("server.port"))
}

func TestEnvironment_DefaultWithoutProfiles(t *testing.T) {
	a, err := app.NewBuilder().Build()
	require.NoError(t, err)
	assert.Equal(t, app.DefaultEnvironment, a.Environment())
}

// ── Initialize ────────────────────────────────────────────────────────────────

func TestInitialize_WiresConfigModulesAndProviders(t *testing.T) {
	p := &repoProvider{}
	a, err := app.NewBuilder().
		WithProperty("database.url", "postgres://db.local/app").
		WithConfigModule(app.ConfigModule[DatabaseConfig]("database")).
		WithProvider(p).
		Build()
	require.NoError(t, err)
	require.False(t, a.Initialized())

	require.NoError(t, a.Initialize())
	assert.True(t, a.Initialized())
	assert.True(t, p.booted)

	repo, ok := app.Get[*repository](a)
	require.True(t, ok)
	assert.Equal(t, "postgres://db.local/app", repo.cfg.URL)
	assert.Equal(t, 10, repo.cfg.PoolSize)

	m, ok := app.Get[*config.Manager](a)
	require.True(t, ok)
	assert.Same(t, a.Config(), m)

	self, ok := app.Get[*app.Application](a)
	require.True(t, ok)
	assert.Same(t, a, self)
}

func TestInitialize_EventsAndIdempotence(t *testing.T) {
	var seq []string
	a, err := app.NewBuilder().
		WithProperty("k", "v").
		WithProfile(config.NewProfile("dev", nil)).
		WithActiveProfile("dev").
		Build()
	require.NoError(t, err)

	app.Subscribe(a, func(e app.ContextInitializing) {
		seq = append(seq, "initializing")
		assert.Equal(t, 1, e.ConfigSourcesCount)
		assert.Equal(t, 1, e.ActiveProfilesCount)
	})
	app.SubscribeWithContext(a, func(e app.ContextInitialized, ctx *app.Application) {
		seq = append(seq, "initialized")
		assert.True(t, ctx.Initialized())
	})

	require.NoError(t, a.Initialize())
	require.NoError(t, a.Initialize())
	assert.Equal(t, []string{"initializing", "initialized"}, seq)
}

func TestInitialize_ConfigModuleValidationFails(t *testing.T) {
	a, err := app.NewBuilder().
		WithProperty("database.url", "not a url").
		WithConfigModule(app.ConfigModule[DatabaseConfig]("database")).
		Build()
	require.NoError(t, err)

	err = a.Initialize()
	require.Error(t, err)
	assert.True(t, errors.Is(err, app.ErrConfiguration))
	assert.True(t, errors.Is(err, config.ErrBinding))
	assert.False(t, a.Initialized())
}

func TestInitialize_ContainerFailureIsWrapped(t *testing.T) {
	a, err := app.NewBuilder().WithProvider(&repoProvider{}).Build()
	require.NoError(t, err)

	err = a.Initialize()
	require.Error(t, err)
	assert.True(t, errors.Is(err, app.ErrInitializationFailed))
	assert.True(t, errors.Is(err, container.ErrNotFound), "missing *DatabaseConfig surfaces: %v", err)
}

type bootOnceFails struct {
	container.BaseProvider
	failed bool
}

func (p *bootOnceFails) Register(*container.Registry) error { return nil }

func (p *bootOnceFails) Boot(*container.Container) error {
	if !p.failed {
		p.failed = true
		return errors.New("warming up")
	}
	return nil
}

func TestInitialize_RetryBootsRemainingProviders(t *testing.T) {
	first := &bootOnceFails{}
	second := &repoProvider{}
	a, err := app.NewBuilder().
		WithProperty("database.url", "https://db.example.com").
		WithConfigModule(app.ConfigModule[DatabaseConfig]("database")).
		WithProvider(first).
		WithProvider(second).
		Build()
	require.NoError(t, err)

	err = a.Initialize()
	require.Error(t, err)
	assert.True(t, errors.Is(err, app.ErrInitializationFailed))
	assert.False(t, a.Initialized())
	assert.False(t, second.booted)

	require.NoError(t, a.Initialize())
	assert.True(t, a.Initialized())
	assert.True(t, second.booted, "retry must boot the providers after the failed one")
}

func TestWithLogger_ReachesContainerAndConfig(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	a, err := app.NewBuilder().
		WithLogger(zap.New(core)).
		WithProperty("database.url", "https://db.example.com").
		WithConfigModule(app.ConfigModule[DatabaseConfig]("database")).
		WithProvider(&repoProvider{}).
		Build()
	require.NoError(t, err)
	require.NoError(t, a.Initialize())

	created := logs.FilterMessage("component created").All()
	require.Len(t, created, 1)
	assert.Equal(t, "container", created[0].LoggerName)
	assert.Equal(t, "*app_test.repository", created[0].ContextMap()["component"])

	assert.NotEmpty(t, logs.FilterLoggerName("config").All(), "config manager logs through the same logger")
	assert.Len(t, logs.FilterMessage("application initialized").All(), 1)
}

func TestInitialize_CustomRegistry(t *testing.T) {
	reg := container.NewRegistry()
	require.NoError(t, container.Prototype(reg, func(container.Dependencies) (*orderPlaced, error) {
		return &orderPlaced{ID: 1}, nil
	}))
	a, err := app.NewBuilder().WithRegistry(reg).Build()
	require.NoError(t, err)
	require.NoError(t, a.Initialize())

	first, err := app.Resolve[*orderPlaced](a)
	require.NoError(t, err)
	second, err := app.Resolve[*orderPlaced](a)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}

func TestRegisterProvider_BeforeAndAfterInitialize(t *testing.T) {
	a, err := app.NewBuilder().
		WithProperty("database.url", "https://db.example.com").
		WithConfigModule(app.ConfigModule[DatabaseConfig]("database")).
		Build()
	require.NoError(t, err)

	early := &repoProvider{}
	require.NoError(t, a.RegisterProvider(early))
	require.NoError(t, a.Initialize())
	assert.True(t, early.booted)

	late := &repoProvider{}
	err = a.RegisterProvider(late)
	assert.True(t, errors.Is(err, app.ErrInitializationFailed), "duplicate definition: %v", err)
}

// ── Configuration at runtime ──────────────────────────────────────────────────

func TestConfigAs(t *testing.T) {
	a, err := app.NewBuilder().
		WithProperty("server.port", "8080").
		WithProperty("server.timeout", "1m30s").
		WithProperty("server.debug", "yes").
		Build()
	require.NoError(t, err)

	port, err := app.ConfigAs[int](a, "server.port")
	require.NoError(t, err)
	assert.Equal(t, 8080, port)

	timeout, err := app.ConfigAs[time.Duration](a, "server.timeout")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, timeout)

	debug, err := app.ConfigAs[bool](a, "server.debug")
	require.NoError(t, err)
	assert.True(t, debug)

	_, err = app.ConfigAs[int](a, "server.missing")
	assert.True(t, errors.Is(err, app.ErrConfiguration))
	assert.True(t, errors.Is(err, config.ErrNotFound))
}

func TestSetConfig_PublishesChange(t *testing.T) {
	a, err := app.NewBuilder().WithProperty("feature.enabled", "false").Build()
	require.NoError(t, err)

	var changes []app.ConfigurationChanged
	app.Subscribe(a, func(e app.ConfigurationChanged) { changes = append(changes, e) })

	a.SetConfig("feature.enabled", "true")
	a.SetConfig("feature.new", "x")

	require.Len(t, changes, 2)
	assert.Equal(t, "feature.enabled", changes[0].Key)
	assert.Equal(t, "false", changes[0].OldValue)
	assert.True(t, changes[0].HadOldValue)
	assert.Equal(t, "true", changes[0].NewValue)
	assert.False(t, changes[1].HadOldValue)
	assert.Equal(t, "", changes[1].OldValue)

	assert.Equal(t, "true", a.GetConfig("feature.enabled"))
}

func TestAddConfigSource_TakesPrecedence(t *testing.T) {
	a, err := app.NewBuilder().WithProperty("mode", "builder").Build()
	require.NoError(t, err)

	a.AddConfigSource(config.NewMapSource("late", map[string]string{"mode": "late"}))
	assert.Equal(t, "late", a.GetConfig("mode"))
}

func TestActivateAndDeactivateProfileAtRuntime(t *testing.T) {
	a, err := app.NewBuilder().
		WithProperty("mode", "base").
		WithProfile(config.NewProfile("test", map[string]string{"mode": "test"})).
		Build()
	require.NoError(t, err)

	var names []string
	app.Subscribe(a, func(e app.ProfileActivated) { names = append(names, e.ProfileName) })

	require.NoError(t, a.ActivateProfile("test"))
	assert.Equal(t, "test", a.GetConfig("mode"))
	assert.Equal(t, []string{"test"}, names)

	a.DeactivateProfile("test")
	assert.Equal(t, "base", a.GetConfig("mode"))

	err = a.ActivateProfile("ghost")
	assert.True(t, errors.Is(err, app.ErrConfiguration))
	assert.True(t, errors.Is(err, config.ErrProfileNotFound))
}

// ── Events ────────────────────────────────────────────────────────────────────

func TestPublishEvent_PlainAndContextListeners(t *testing.T) {
	a, err := app.NewBuilder().Build()
	require.NoError(t, err)

	var seq []string
	app.SubscribeWithContext(a, func(e orderPlaced, ctx *app.Application) {
		assert.Same(t, a, ctx)
		seq = append(seq, "ctx")
	})
	app.Subscribe(a, func(e orderPlaced) { seq = append(seq, "plain") })

	a.PublishEvent(orderPlaced{ID: 1})
	assert.Equal(t, []string{"plain", "ctx"}, seq)
}

// ── Serve ─────────────────────────────────────────────────────────────────────

func TestServe_RequiresRouter(t *testing.T) {
	a, err := app.NewBuilder().Build()
	require.NoError(t, err)

	err = a.Serve(context.Background())
	assert.True(t, errors.Is(err, app.ErrConfiguration))
}

func TestServe_StopsOnContextCancel(t *testing.T) {
	a, err := app.NewBuilder().
		WithProperty("inspector.addr", "127.0.0.1:0").
		WithProvider(&providers.InspectorProvider{}).
		Build()
	require.NoError(t, err)
	a.Container().Register(zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
