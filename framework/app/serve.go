package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/km-arc/go-verdure/framework/container"
	"github.com/km-arc/go-verdure/framework/routing"
)

const (
	// DefaultInspectorAddr is used when inspector.addr is not configured.
	DefaultInspectorAddr = ":8081"

	shutdownTimeout = 5 * time.Second
)

// Serve runs the inspection server until ctx is cancelled, then shuts it
// down gracefully. It initializes the application if needed and requires a
// *routing.Router in the container, normally provided by
// providers.InspectorProvider. The address is read from inspector.addr.
func (a *Application) Serve(ctx context.Context) error {
	if err := a.Initialize(); err != nil {
		return err
	}
	router, ok := container.Get[*routing.Router](a.container)
	if !ok {
		return newError(KindConfiguration, "no *routing.Router registered; add providers.InspectorProvider", nil)
	}
	addr := a.GetConfigOrDefault("inspector.addr", DefaultInspectorAddr)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return newError(KindConfiguration, "listen on "+addr, err)
	}
	return a.serve(ctx, ln, router)
}

func (a *Application) serve(ctx context.Context, ln net.Listener, h http.Handler) error {
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("inspector listening",
			zap.String("addr", ln.Addr().String()),
			zap.String("environment", a.Environment()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	a.logger.Info("inspector shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
