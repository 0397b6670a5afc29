package app

import (
	"fmt"

	"github.com/km-arc/go-verdure/framework/config"
	"github.com/km-arc/go-verdure/framework/container"
)

// ConfigFactory turns a section of configuration into a component that is
// placed in the store before the container initializes, so other
// components can depend on it.
type ConfigFactory interface {
	Prefix() string
	Key() container.TypeKey
	Create(m *config.Manager) (any, error)
}

type configModule[T any] struct {
	prefix string
}

// ConfigModule binds keys under prefix into a *T using config.Bind.
//
//	type DatabaseConfig struct {
//	    URL      string `config:"url" validate:"required|url"`
//	    PoolSize int    `config:"pool_size" default:"10"`
//	}
//
//	app.NewBuilder().
//	    WithConfigModule(app.ConfigModule[DatabaseConfig]("database")).
//	    Build()
//
// Components then declare container.KeyOf[*DatabaseConfig]() as a dependency.
func ConfigModule[T any](prefix string) ConfigFactory {
	return configModule[T]{prefix: prefix}
}

func (m configModule[T]) Prefix() string { return m.prefix }

func (m configModule[T]) Key() container.TypeKey { return container.KeyOf[*T]() }

func (m configModule[T]) Create(cm *config.Manager) (any, error) {
	target := new(T)
	if err := config.Bind(cm, m.prefix, target); err != nil {
		return nil, fmt.Errorf("config module %q: %w", m.prefix, err)
	}
	return target, nil
}
