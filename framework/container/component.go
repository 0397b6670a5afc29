package container

import (
	"fmt"
	"reflect"
	"time"
)

// ── Type identity ─────────────────────────────────────────────────────────────

// TypeKey identifies a component type. It wraps reflect.Type so it can be
// used as a map key and printed without leaking reflection into user code.
//
//	key := container.KeyOf[*UserRepository]()
//	key.String() // "*repo.UserRepository"
type TypeKey struct {
	rt reflect.Type
}

// KeyOf returns the TypeKey of the static type T. Interface types are allowed,
// which makes it possible to register an implementation under its interface.
func KeyOf[T any]() TypeKey {
	return TypeKey{rt: reflect.TypeFor[T]()}
}

// KeyOfValue returns the TypeKey of v's dynamic type. A nil interface yields
// the zero TypeKey.
func KeyOfValue(v any) TypeKey {
	return TypeKey{rt: reflect.TypeOf(v)}
}

// IsZero reports whether k identifies no type at all.
func (k TypeKey) IsZero() bool { return k.rt == nil }

// Type returns the underlying reflect.Type.
func (k TypeKey) Type() reflect.Type { return k.rt }

func (k TypeKey) String() string {
	if k.rt == nil {
		return "<nil>"
	}
	return k.rt.String()
}

// ── Scope ─────────────────────────────────────────────────────────────────────

// Scope controls whether the container caches a component.
type Scope int

const (
	// ScopeSingleton components are created once and kept in the store.
	ScopeSingleton Scope = iota
	// ScopePrototype components are created on every resolution and never stored.
	ScopePrototype
)

func (s Scope) String() string {
	switch s {
	case ScopeSingleton:
		return "Singleton"
	case ScopePrototype:
		return "Prototype"
	default:
		return fmt.Sprintf("Scope(%d)", int(s))
	}
}

// ── Factories ─────────────────────────────────────────────────────────────────

// Dependencies carries the resolved instances handed to a Factory, keyed by
// the TypeKeys the factory declared.
type Dependencies map[TypeKey]any

// Factory builds a component from its declared dependencies.
//
// Dependencies must list every TypeKey Create reads; the resolver guarantees
// each of them is present in the map passed to Create.
type Factory interface {
	Dependencies() []TypeKey
	Create(deps Dependencies) (any, error)
}

type funcFactory struct {
	deps []TypeKey
	fn   func(Dependencies) (any, error)
}

func (f *funcFactory) Dependencies() []TypeKey { return f.deps }

func (f *funcFactory) Create(deps Dependencies) (any, error) { return f.fn(deps) }

// NewFactory adapts a plain function into a Factory.
//
//	f := container.NewFactory(func(d container.Dependencies) (any, error) {
//	    db, err := container.Dep[*sql.DB](d)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return &UserRepository{DB: db}, nil
//	}, container.KeyOf[*sql.DB]())
func NewFactory(fn func(Dependencies) (any, error), deps ...TypeKey) Factory {
	return &funcFactory{deps: deps, fn: fn}
}

// Dep extracts dependency T from deps. It never panics: a missing entry is
// NotFound, an entry of another type is TypeCastFailed.
func Dep[T any](deps Dependencies) (T, error) {
	var zero T
	key := KeyOf[T]()
	raw, ok := deps[key]
	if !ok {
		return zero, newError(KindNotFound, "dependency "+key.String()+" was not provided", nil)
	}
	typed, ok := raw.(T)
	if !ok {
		return zero, newError(KindTypeCastFailed,
			fmt.Sprintf("dependency %s holds %T", key, raw), nil)
	}
	return typed, nil
}

// ── Definitions ───────────────────────────────────────────────────────────────

// Definition describes one registrable component. It is immutable once added
// to a Registry.
type Definition struct {
	Type    TypeKey
	Name    string
	Scope   Scope
	Factory Factory
}

// Descriptor addresses an instance slot in the store. An empty Qualifier
// means the unqualified slot for Type.
type Descriptor struct {
	Type      TypeKey
	Qualifier string
}

// DescriptorFor returns the unqualified descriptor for T.
func DescriptorFor[T any]() Descriptor {
	return Descriptor{Type: KeyOf[T]()}
}

func (d Descriptor) String() string {
	if d.Qualifier == "" {
		return d.Type.String()
	}
	return d.Type.String() + "#" + d.Qualifier
}

// Stats is informational and never consulted by the resolver.
type Stats struct {
	CreatedAt    time.Time     `json:"created_at"`
	LastAccessed time.Time     `json:"last_accessed"`
	AccessCount  uint64        `json:"access_count"`
	CreationTime time.Duration `json:"creation_time"`
}
