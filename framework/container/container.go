package container

import (
	"fmt"
	"reflect"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/km-arc/go-verdure/framework/event"
)

// ── Container ─────────────────────────────────────────────────────────────────

// Container resolves the definitions of a Registry into a live object graph
// and keeps the resulting singletons in a Store.
//
// Reads (Lookup, GetByType, Get[T]) and manual registration are safe from any
// goroutine. Initialize is not: it must not run concurrently with itself on
// the same container, because its in-flight bookkeeping and the store
// mutations it drives are not isolated across goroutines.
type Container struct {
	registry  *Registry
	store     *Store
	stats     sync.Map // Descriptor → *statsEntry
	lifecycle *event.Publisher[*Container]
	logger    *zap.Logger
}

type statsEntry struct {
	mu sync.Mutex
	s  Stats
}

// Option configures a Container.
type Option func(*Container)

// WithRegistry makes the container resolve definitions from r.
func WithRegistry(r *Registry) Option {
	return func(c *Container) {
		if r != nil {
			c.registry = r
		}
	}
}

// WithLogger sets the logger used for resolution diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(c *Container) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a container with an empty registry unless WithRegistry is given.
// The container registers itself, so factories may depend on *Container.
func New(opts ...Option) *Container {
	c := &Container{
		registry:  NewRegistry(),
		store:     NewStore(),
		lifecycle: event.NewPublisher[*Container](),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("container")
	c.store.Register(c)
	return c
}

// Registry returns the registry the container resolves from.
func (c *Container) Registry() *Registry { return c.registry }

// Store returns the instance store.
func (c *Container) Store() *Store { return c.store }

// ── Manual registration ───────────────────────────────────────────────────────

// Register stores a pre-built instance under its dynamic type. Initialize
// never re-creates a component that is already present this way.
//
//	c.Register(&Config{Path: "/etc/app.toml"})
func (c *Container) Register(instance any) {
	c.store.Register(instance)
}

// RegisterAs stores instance under key, e.g. an interface it implements.
func (c *Container) RegisterAs(key TypeKey, instance any) {
	c.store.RegisterAs(key, instance)
}

// ── Initialization ────────────────────────────────────────────────────────────

// Initialize builds every registered definition that is not yet in the store.
// Dependencies are always built before their dependents. The first error
// aborts the walk and is returned as is; singletons stored before the
// failure stay in the store.
func (c *Container) Initialize() error {
	defs := c.registry.Definitions()
	c.publish(InitializationStarted{ComponentCount: len(defs)})
	start := time.Now()

	byType := make(map[TypeKey]Definition, len(defs))
	for _, def := range defs {
		byType[def.Type] = def
	}

	visiting := make(map[TypeKey]struct{})
	for _, def := range defs {
		if c.store.Has(Descriptor{Type: def.Type}) {
			c.logger.Debug("component already present, keeping existing instance",
				zap.String("component", def.Name))
			continue
		}
		if _, err := c.resolve(def.Type, byType, visiting); err != nil {
			c.logger.Error("initialization failed",
				zap.String("component", def.Name), zap.Error(err))
			return err
		}
	}

	elapsed := time.Since(start)
	count := c.store.Len()
	c.publish(InitializationCompleted{ComponentCount: count, Duration: elapsed})
	c.logger.Info("container initialized",
		zap.Int("definitions", len(defs)),
		zap.Int("instances", count),
		zap.Duration("duration", elapsed))
	return nil
}

// frame is one pending component on the explicit resolution stack.
type frame struct {
	def  Definition
	deps []TypeKey
	next int
	got  Dependencies
}

// resolve builds the component for key and, transitively, every dependency
// that is not yet stored. It walks an explicit stack instead of recursing so
// long dependency chains cannot exhaust the goroutine stack. visiting holds
// the types currently on the stack; every entry pushed by this call is
// removed before it returns, on success and on failure.
func (c *Container) resolve(key TypeKey, defs map[TypeKey]Definition, visiting map[TypeKey]struct{}) (any, error) {
	var stack []*frame

	unwind := func() {
		for _, f := range stack {
			delete(visiting, f.def.Type)
		}
		stack = nil
	}

	enter := func(k TypeKey) error {
		if _, busy := visiting[k]; busy {
			return newError(KindCircularDependency, displayName(k, defs), nil)
		}
		def, ok := defs[k]
		if !ok {
			return newError(KindNotFound, "no definition for "+k.String(), nil)
		}
		deps := def.Factory.Dependencies()
		visiting[k] = struct{}{}
		stack = append(stack, &frame{def: def, deps: deps, got: make(Dependencies, len(deps))})
		return nil
	}

	if err := enter(key); err != nil {
		return nil, err
	}

	for {
		top := stack[len(stack)-1]

		if top.next < len(top.deps) {
			dep := top.deps[top.next]
			if inst, ok := c.store.GetByType(dep); ok {
				top.got[dep] = inst
				top.next++
				continue
			}
			if _, known := defs[dep]; !known {
				err := newError(KindNotFound,
					fmt.Sprintf("dependency %s of %q is not registered", dep, top.def.Name), nil)
				unwind()
				return nil, err
			}
			if err := enter(dep); err != nil {
				unwind()
				return nil, err
			}
			continue
		}

		inst, err := c.create(top.def, top.got)
		delete(visiting, top.def.Type)
		stack = stack[:len(stack)-1]
		if err != nil {
			unwind()
			return nil, err
		}

		if len(stack) == 0 {
			return inst, nil
		}
		parent := stack[len(stack)-1]
		parent.got[parent.deps[parent.next]] = inst
		parent.next++
	}
}

// create runs the factory, stores singletons and records statistics.
func (c *Container) create(def Definition, deps Dependencies) (any, error) {
	start := time.Now()
	inst, err := def.Factory.Create(deps)
	if err != nil {
		return nil, newError(KindCreationFailed, fmt.Sprintf("failed to create %q", def.Name), err)
	}
	if isNil(inst) {
		return nil, newError(KindCreationFailed, fmt.Sprintf("factory for %q returned nil", def.Name), nil)
	}
	elapsed := time.Since(start)

	desc := Descriptor{Type: def.Type}
	if def.Scope == ScopeSingleton {
		c.store.put(desc, inst)
	}

	now := time.Now()
	c.stats.Store(desc, &statsEntry{s: Stats{
		CreatedAt:    now,
		LastAccessed: now,
		AccessCount:  1,
		CreationTime: elapsed,
	}})

	c.publish(ComponentCreated{
		ComponentName: def.Name,
		ComponentType: def.Type,
		Scope:         def.Scope,
		Duration:      elapsed,
	})
	c.logger.Debug("component created",
		zap.String("component", def.Name),
		zap.Stringer("scope", def.Scope),
		zap.Duration("duration", elapsed))
	return inst, nil
}

// isNil reports a nil interface or a typed nil pointer, map, slice, func,
// channel or interface held in it.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func displayName(k TypeKey, defs map[TypeKey]Definition) string {
	if def, ok := defs[k]; ok {
		return def.Name
	}
	return k.String()
}

// ── Resolution after startup ──────────────────────────────────────────────────

// Make returns the stored instance for key or, for a prototype definition,
// a freshly built one owned by the caller. Singletons are only ever built by
// Initialize (or by being pulled in as a dependency); Make reports NotFound
// for a singleton that is not in the store.
func (c *Container) Make(key TypeKey) (any, error) {
	if inst, ok := c.Lookup(Descriptor{Type: key}); ok {
		return inst, nil
	}
	def, ok := c.registry.Lookup(key)
	if !ok {
		return nil, newError(KindNotFound, "no definition for "+key.String(), nil)
	}
	if def.Scope == ScopeSingleton {
		return nil, newError(KindNotFound, fmt.Sprintf("singleton %q has not been initialized", def.Name), nil)
	}

	defs := c.registry.Definitions()
	byType := make(map[TypeKey]Definition, len(defs))
	for _, d := range defs {
		byType[d.Type] = d
	}
	return c.resolve(key, byType, make(map[TypeKey]struct{}))
}

// Resolve is the generic form of Make.
//
//	handler, err := container.Resolve[*RequestHandler](c)
func Resolve[T any](c *Container) (T, error) {
	var zero T
	inst, err := c.Make(KeyOf[T]())
	if err != nil {
		return zero, err
	}
	typed, ok := inst.(T)
	if !ok {
		return zero, newError(KindTypeCastFailed,
			fmt.Sprintf("%s resolved to %T", KeyOf[T](), inst), nil)
	}
	return typed, nil
}

// ── Lookup ────────────────────────────────────────────────────────────────────

// Lookup implements ComponentFactory and updates access statistics.
func (c *Container) Lookup(desc Descriptor) (any, bool) {
	inst, ok := c.store.Lookup(desc)
	if ok {
		c.touch(desc)
	}
	return inst, ok
}

// GetByType returns the unqualified instance stored for key.
func (c *Container) GetByType(key TypeKey) (any, bool) {
	return c.Lookup(Descriptor{Type: key})
}

// Bound reports whether key has a definition or a stored instance.
func (c *Container) Bound(key TypeKey) bool {
	if _, ok := c.registry.Lookup(key); ok {
		return true
	}
	return c.store.Has(Descriptor{Type: key})
}

// Resolved reports whether key has a stored instance.
func (c *Container) Resolved(key TypeKey) bool {
	return c.store.Has(Descriptor{Type: key})
}

// ── Statistics ────────────────────────────────────────────────────────────────

func (c *Container) touch(desc Descriptor) {
	v, ok := c.stats.Load(desc)
	if !ok {
		return
	}
	e := v.(*statsEntry)
	e.mu.Lock()
	e.s.AccessCount++
	e.s.LastAccessed = time.Now()
	e.mu.Unlock()
}

// Stats returns a copy of the statistics recorded for desc.
func (c *Container) Stats(desc Descriptor) (Stats, bool) {
	v, ok := c.stats.Load(desc)
	if !ok {
		return Stats{}, false
	}
	e := v.(*statsEntry)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.s, true
}

// AllStats returns a snapshot of every recorded statistic.
func (c *Container) AllStats() map[Descriptor]Stats {
	out := make(map[Descriptor]Stats)
	c.stats.Range(func(k, v any) bool {
		e := v.(*statsEntry)
		e.mu.Lock()
		out[k.(Descriptor)] = e.s
		e.mu.Unlock()
		return true
	})
	return out
}
