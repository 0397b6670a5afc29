package providers_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/km-arc/go-verdure/framework/config"
	"github.com/km-arc/go-verdure/framework/container"
	"github.com/km-arc/go-verdure/framework/providers"
	"github.com/km-arc/go-verdure/framework/routing"
)

func boot(t *testing.T, props map[string]string, ps ...container.ServiceProvider) (*container.Container, error) {
	t.Helper()
	c := container.New()
	m := config.NewManager()
	m.AddSource(config.NewMapSource("test", props))
	c.Register(m)

	reg := container.NewProviderRegistry(c)
	for _, p := range ps {
		require.NoError(t, reg.Register(p))
	}
	if err := c.Initialize(); err != nil {
		return c, err
	}
	return c, reg.Boot()
}

func TestLoggingProvider_Defaults(t *testing.T) {
	out := filepath.Join(t.TempDir(), "app.log")
	c, err := boot(t, map[string]string{"logging.output": out}, &providers.LoggingProvider{})
	require.NoError(t, err)

	logger, ok := container.Get[*zap.Logger](c)
	require.True(t, ok)
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestLoggingProvider_LevelAndFormatFromConfig(t *testing.T) {
	out := filepath.Join(t.TempDir(), "app.log")
	c, err := boot(t, map[string]string{
		"logging.level":  "debug",
		"logging.format": "console",
		"logging.output": out,
	}, &providers.LoggingProvider{})
	require.NoError(t, err)

	logger, _ := container.Get[*zap.Logger](c)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestLoggingProvider_InvalidFormatFailsInitialize(t *testing.T) {
	_, err := boot(t, map[string]string{"logging.format": "xml"}, &providers.LoggingProvider{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, container.ErrCreationFailed))
	assert.True(t, errors.Is(err, config.ErrBinding))
}

func TestNewLogger_RejectsUnknownLevel(t *testing.T) {
	_, err := providers.NewLogger(providers.LoggingConfig{Level: "loud", Format: "json"})
	assert.Error(t, err)
}

func TestInspectorProvider_ServesHealth(t *testing.T) {
	out := filepath.Join(t.TempDir(), "app.log")
	c, err := boot(t, map[string]string{"logging.output": out},
		&providers.LoggingProvider{}, &providers.InspectorProvider{})
	require.NoError(t, err)

	r, ok := container.Get[*routing.Router](c)
	require.True(t, ok)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"up"`)
}

func TestInspectorProvider_RequiresLogger(t *testing.T) {
	_, err := boot(t, nil, &providers.InspectorProvider{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, container.ErrNotFound))
}
