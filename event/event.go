package event

import (
	"time"

	"github.com/google/uuid"
)

// Kind identifies an event type on the bus. Modules declare their own
// kinds as typed constants; the runtime reserves the "registry." and
// "module." prefixes for lifecycle events.
type Kind string

// Lifecycle event kinds published by the module registry
const (
	// KindModuleInitialized is published after a module completes initialization
	KindModuleInitialized Kind = "module.initialized"
	// KindModuleFailed is published when a module fails to initialize
	KindModuleFailed Kind = "module.failed"
	// KindModuleUnregistered is published when a module is removed from the registry
	KindModuleUnregistered Kind = "module.unregistered"
	// KindRegistryReady is published once all modules have been driven through initialization
	KindRegistryReady Kind = "registry.ready"
)

// Event is the envelope delivered to every subscriber.
type Event struct {
	ID      string    `json:"id"`
	Kind    Kind      `json:"kind"`
	Source  string    `json:"source,omitempty"`
	Time    time.Time `json:"time"`
	Payload any       `json:"payload,omitempty"`
}

// newEvent builds an envelope for the given kind and payload
func newEvent(kind Kind, source string, payload any) Event {
	return Event{
		ID:      uuid.NewString(),
		Kind:    kind,
		Source:  source,
		Time:    time.Now(),
		Payload: payload,
	}
}
