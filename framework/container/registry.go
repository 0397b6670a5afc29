package container

import (
	"sync"
)

// Registry is the explicit, append-only collection of component definitions.
// It is populated once at startup (usually by service providers) and handed
// to the Container, which snapshots it during Initialize.
type Registry struct {
	mu    sync.RWMutex
	defs  []Definition
	index map[TypeKey]int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[TypeKey]int)}
}

// Register appends def. A second definition for the same type is rejected,
// so every TypeKey has exactly one factory.
func (r *Registry) Register(def Definition) error {
	if def.Type.IsZero() {
		return newError(KindOther, "definition has no type", nil)
	}
	if def.Factory == nil {
		return newError(KindOther, "definition "+def.Type.String()+" has a nil factory", nil)
	}
	if def.Name == "" {
		def.Name = def.Type.String()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.index[def.Type]; exists {
		return newError(KindOther, "component "+def.Type.String()+" is already registered", nil)
	}
	r.index[def.Type] = len(r.defs)
	r.defs = append(r.defs, def)
	return nil
}

// MustRegister is Register for composition roots that treat wiring mistakes
// as programmer errors.
func (r *Registry) MustRegister(def Definition) {
	if err := r.Register(def); err != nil {
		panic(err)
	}
}

// Definitions returns a copy of all definitions in registration order.
func (r *Registry) Definitions() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Definition, len(r.defs))
	copy(out, r.defs)
	return out
}

// Lookup returns the definition registered for key.
func (r *Registry) Lookup(key TypeKey) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[key]
	if !ok {
		return Definition{}, false
	}
	return r.defs[i], true
}

// Len returns the number of definitions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.defs)
}

// ── Generic registration helpers ──────────────────────────────────────────────

// Singleton registers a cached component of type T.
//
//	container.Singleton(reg, func(d container.Dependencies) (*Cache, error) {
//	    cfg, err := container.Dep[*config.Manager](d)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return NewCache(cfg), nil
//	}, container.KeyOf[*config.Manager]())
func Singleton[T any](r *Registry, fn func(Dependencies) (T, error), deps ...TypeKey) error {
	return register(r, ScopeSingleton, fn, deps)
}

// Prototype registers a component of type T that is rebuilt on every resolution.
func Prototype[T any](r *Registry, fn func(Dependencies) (T, error), deps ...TypeKey) error {
	return register(r, ScopePrototype, fn, deps)
}

func register[T any](r *Registry, scope Scope, fn func(Dependencies) (T, error), deps []TypeKey) error {
	if fn == nil {
		return newError(KindOther, "nil factory for "+KeyOf[T]().String(), nil)
	}
	key := KeyOf[T]()
	return r.Register(Definition{
		Type:  key,
		Name:  key.String(),
		Scope: scope,
		Factory: NewFactory(func(d Dependencies) (any, error) {
			v, err := fn(d)
			if err != nil {
				return nil, err
			}
			return v, nil
		}, deps...),
	})
}
