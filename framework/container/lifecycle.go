package container

import (
	"time"

	"github.com/km-arc/go-verdure/framework/event"
)

// ── Lifecycle events ──────────────────────────────────────────────────────────

// InitializationStarted fires before the resolver walks the registry.
type InitializationStarted struct {
	ComponentCount int
}

// ComponentCreated fires after each successful factory call.
type ComponentCreated struct {
	ComponentName string
	ComponentType TypeKey
	Scope         Scope
	Duration      time.Duration
}

// InitializationCompleted fires once every definition has been resolved.
// ComponentCount is the number of instances in the store afterwards.
type InitializationCompleted struct {
	ComponentCount int
	Duration       time.Duration
}

func (InitializationStarted) EventName() string   { return "InitializationStarted" }
func (ComponentCreated) EventName() string        { return "ComponentCreated" }
func (InitializationCompleted) EventName() string { return "InitializationCompleted" }

// Lifecycle returns the publisher carrying container lifecycle events.
// Context-aware listeners receive the container itself.
//
//	event.Subscribe(c.Lifecycle(), func(e container.ComponentCreated) {
//	    log.Printf("built %s in %s", e.ComponentName, e.Duration)
//	})
func (c *Container) Lifecycle() *event.Publisher[*Container] {
	return c.lifecycle
}

func (c *Container) publish(ev event.Event) {
	c.lifecycle.PublishWithContext(ev, c)
}
