// Package event implements a synchronous, type-keyed event publisher.
//
// Listeners subscribe to one concrete event type and receive only events of
// exactly that dynamic type: there is no wildcard or interface matching.
// A Publisher is parameterised by the context type C handed to
// context-aware listeners, so the same machinery serves the container's
// lifecycle events (C = *container.Container) and the application's
// context events (C = *app.Application).
//
//	pub := event.NewPublisher[*app.Application]()
//	event.Subscribe(pub, func(e app.ProfileActivated) { log.Println(e.ProfileName) })
//	event.SubscribeWithContext(pub, func(e app.ContextInitialized, a *app.Application) {
//	    a.Config().GetString("app.name")
//	})
//	pub.PublishWithContext(app.ContextInitialized{}, application)
package event

import (
	"reflect"
	"sort"
	"sync"
)

// Event is implemented by every publishable value.
type Event interface {
	EventName() string
}

type handler func(ev any)

type contextHandler[C any] func(ev any, ctx C)

// Publisher dispatches events to listeners registered per concrete type.
// It is safe for concurrent use; listeners run on the publishing goroutine,
// in registration order, outside the publisher's lock.
type Publisher[C any] struct {
	mu         sync.RWMutex
	plain      map[reflect.Type][]handler
	contextual map[reflect.Type][]contextHandler[C]
}

// NewPublisher creates a publisher with no listeners.
func NewPublisher[C any]() *Publisher[C] {
	return &Publisher[C]{
		plain:      make(map[reflect.Type][]handler),
		contextual: make(map[reflect.Type][]contextHandler[C]),
	}
}

// ── Subscription ──────────────────────────────────────────────────────────────

// Subscribe registers fn for events of type T.
func Subscribe[T Event, C any](p *Publisher[C], fn func(T)) {
	if fn == nil {
		return
	}
	t := reflect.TypeFor[T]()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.plain[t] = append(p.plain[t], func(ev any) { fn(ev.(T)) })
}

// SubscribeWithContext registers fn for events of type T; fn additionally
// receives the context passed to PublishWithContext.
func SubscribeWithContext[T Event, C any](p *Publisher[C], fn func(T, C)) {
	if fn == nil {
		return
	}
	t := reflect.TypeFor[T]()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.contextual[t] = append(p.contextual[t], func(ev any, ctx C) { fn(ev.(T), ctx) })
}

// ── Publishing ────────────────────────────────────────────────────────────────

// Publish delivers ev to the plain listeners of its dynamic type.
// Context-aware listeners are skipped because there is no context to give them.
func (p *Publisher[C]) Publish(ev Event) {
	if ev == nil {
		return
	}
	t := reflect.TypeOf(ev)
	p.mu.RLock()
	hs := p.plain[t]
	p.mu.RUnlock()

	for _, h := range hs {
		h(ev)
	}
}

// PublishWithContext delivers ev to plain listeners first, then to
// context-aware listeners together with ctx.
func (p *Publisher[C]) PublishWithContext(ev Event, ctx C) {
	if ev == nil {
		return
	}
	t := reflect.TypeOf(ev)
	p.mu.RLock()
	hs := p.plain[t]
	chs := p.contextual[t]
	p.mu.RUnlock()

	for _, h := range hs {
		h(ev)
	}
	for _, h := range chs {
		h(ev, ctx)
	}
}

// ── Introspection ─────────────────────────────────────────────────────────────

// ListenerCount returns the number of plain listeners for T.
func ListenerCount[T Event, C any](p *Publisher[C]) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.plain[reflect.TypeFor[T]()])
}

// ContextListenerCount returns the number of context-aware listeners for T.
func ContextListenerCount[T Event, C any](p *Publisher[C]) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.contextual[reflect.TypeFor[T]()])
}

// Clear drops every listener of both flavours.
func (p *Publisher[C]) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.plain = make(map[reflect.Type][]handler)
	p.contextual = make(map[reflect.Type][]contextHandler[C])
}

// Statistics maps event type names to their total listener count.
func (p *Publisher[C]) Statistics() map[string]int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	stats := make(map[string]int, len(p.plain)+len(p.contextual))
	for t, hs := range p.plain {
		stats[t.String()] += len(hs)
	}
	for t, hs := range p.contextual {
		stats[t.String()] += len(hs)
	}
	return stats
}

// EventTypes returns the sorted names of all event types with listeners.
func (p *Publisher[C]) EventTypes() []string {
	stats := p.Statistics()
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
