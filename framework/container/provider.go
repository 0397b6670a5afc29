package container

import "fmt"

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider groups the definitions of one feature.
//
// Register adds definitions to the registry and must not resolve anything.
// Boot runs after the container has been initialized, so every singleton is
// available from the container inside it.
//
//	type MailProvider struct{ container.BaseProvider }
//
//	func (p *MailProvider) Register(reg *container.Registry) error {
//	    return container.Singleton(reg, func(d container.Dependencies) (*Mailer, error) {
//	        cfg, err := container.Dep[*config.Manager](d)
//	        if err != nil {
//	            return nil, err
//	        }
//	        return NewMailer(cfg.GetStringOrDefault("mail.host", "localhost")), nil
//	    }, container.KeyOf[*config.Manager]())
//	}
type ServiceProvider interface {
	Register(reg *Registry) error
	Boot(c *Container) error
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider is an embeddable no-op Boot.
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ *Container) error { return nil }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry registers providers into a container's registry and boots
// them once the container is initialized.
type ProviderRegistry struct {
	app        *Container
	providers  []ServiceProvider
	registered map[ServiceProvider]bool
	next       int // providers[:next] have booted
	booted     bool
}

// NewProviderRegistry creates a provider registry bound to app.
func NewProviderRegistry(app *Container) *ProviderRegistry {
	return &ProviderRegistry{
		app:        app,
		registered: make(map[ServiceProvider]bool),
	}
}

// Register calls provider.Register against the container's registry. The
// same provider value is only registered once. A provider registered after
// Boot is booted immediately.
func (r *ProviderRegistry) Register(provider ServiceProvider) error {
	if r.registered[provider] {
		return nil
	}
	if err := provider.Register(r.app.Registry()); err != nil {
		return fmt.Errorf("register provider %T: %w", provider, err)
	}
	r.registered[provider] = true
	r.providers = append(r.providers, provider)

	if r.booted {
		return r.Boot()
	}
	return nil
}

// Boot calls Boot on every registered provider in registration order. If a
// provider fails, the ones after it are not booted and the next call resumes
// with the failed provider. Once every provider has booted, further calls
// are no-ops.
func (r *ProviderRegistry) Boot() error {
	r.booted = false
	for r.next < len(r.providers) {
		provider := r.providers[r.next]
		if err := provider.Boot(r.app); err != nil {
			return fmt.Errorf("boot provider %T: %w", provider, err)
		}
		r.next++
	}
	r.booted = true
	return nil
}

// Booted reports whether every registered provider has booted.
func (r *ProviderRegistry) Booted() bool { return r.booted }

// Providers returns the registered providers in registration order.
func (r *ProviderRegistry) Providers() []ServiceProvider { return r.providers }
