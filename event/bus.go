package event

import (
	"context"
	"reflect"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/jalgreatworks0/ClientForge-sub014/logging/logger"
)

// DefaultMaxListeners is the per-kind subscriber count above which the bus
// logs a leak warning. One event may legitimately have dozens of module
// subscribers, so the cap is advisory and well above typical defaults.
const DefaultMaxListeners = 100

// Handler processes a delivered event. A returned error is logged against
// the owning module and never reaches the emitter or sibling handlers.
type Handler func(ctx context.Context, evt Event) error

type subscriber struct {
	owner   string
	handler Handler
}

// Bus is the in-process pub/sub used by modules to communicate without
// importing each other. Dispatch is asynchronous: every handler runs in
// its own goroutine under a recover boundary, so a panicking or failing
// handler cannot affect siblings, the dispatcher, or the process.
type Bus struct {
	mu           sync.RWMutex
	subscribers  map[Kind][]subscriber
	maxListeners int

	metrics struct {
		processed atomic.Int64
		failed    atomic.Int64
	}
}

// Option configures a Bus
type Option func(*Bus)

// WithMaxListeners overrides the advisory per-kind listener cap
func WithMaxListeners(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.maxListeners = n
		}
	}
}

// NewBus creates a new Bus
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		subscribers:  make(map[Kind][]subscriber),
		maxListeners: DefaultMaxListeners,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SubscribeOption configures a single subscription
type SubscribeOption func(*subscriber)

// WithOwner attributes the subscription to a module name so handler
// failures can be traced back to their module in the logs
func WithOwner(name string) SubscribeOption {
	return func(s *subscriber) { s.owner = name }
}

// Subscribe adds a handler for the given kind. Nil handlers are ignored.
func (b *Bus) Subscribe(kind Kind, handler Handler, opts ...SubscribeOption) {
	if handler == nil {
		return
	}

	sub := subscriber{handler: handler}
	for _, opt := range opts {
		opt(&sub)
	}

	b.mu.Lock()
	b.subscribers[kind] = append(b.subscribers[kind], sub)
	count := len(b.subscribers[kind])
	b.mu.Unlock()

	if count > b.maxListeners {
		logger.Warnf(nil, "event %q has %d subscribers (cap %d), possible subscription leak",
			kind, count, b.maxListeners)
	}
}

// On registers a typed handler for the given kind. The payload is asserted
// to T before the handler runs; a mismatched payload is logged and dropped
// without affecting other subscribers.
func On[T any](b *Bus, kind Kind, owner string, handler func(ctx context.Context, payload T) error) {
	b.Subscribe(kind, func(ctx context.Context, evt Event) error {
		payload, ok := evt.Payload.(T)
		if !ok {
			logger.Warnf(ctx, "event %q payload is %T, handler for module %q expects %T; dropping",
				kind, evt.Payload, owner, payload)
			return nil
		}
		return handler(ctx, payload)
	}, WithOwner(owner))
}

// EmitAsync publishes an event to all subscribers of the kind and returns
// once dispatch has been scheduled. Only the payload's top-level key names
// are logged, never its values.
func (b *Bus) EmitAsync(kind Kind, payload any) {
	b.mu.RLock()
	subs := make([]subscriber, len(b.subscribers[kind]))
	copy(subs, b.subscribers[kind])
	b.mu.RUnlock()

	logger.Debugf(nil, "emit event %q keys=%v subscribers=%d", kind, payloadKeys(payload), len(subs))

	if len(subs) == 0 {
		return
	}

	evt := newEvent(kind, "", payload)
	for _, sub := range subs {
		go b.dispatch(sub, evt)
	}
}

// EmitFrom is EmitAsync with an explicit source module recorded on the envelope
func (b *Bus) EmitFrom(source string, kind Kind, payload any) {
	b.mu.RLock()
	subs := make([]subscriber, len(b.subscribers[kind]))
	copy(subs, b.subscribers[kind])
	b.mu.RUnlock()

	logger.Debugf(nil, "emit event %q source=%q keys=%v subscribers=%d",
		kind, source, payloadKeys(payload), len(subs))

	if len(subs) == 0 {
		return
	}

	evt := newEvent(kind, source, payload)
	for _, sub := range subs {
		go b.dispatch(sub, evt)
	}
}

// dispatch runs one handler under its own error boundary
func (b *Bus) dispatch(sub subscriber, evt Event) {
	defer func() {
		if r := recover(); r != nil {
			b.metrics.failed.Add(1)
			logger.Errorf(nil, "panic in event handler (module=%q event=%q): %v",
				sub.owner, evt.Kind, r)
		}
	}()

	if err := sub.handler(context.Background(), evt); err != nil {
		b.metrics.failed.Add(1)
		logger.Errorf(nil, "event handler error (module=%q event=%q): %v",
			sub.owner, evt.Kind, err)
		return
	}
	b.metrics.processed.Add(1)
}

// Stats returns the current subscriber count for every kind with at least
// one subscriber
func (b *Bus) Stats() map[Kind]int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	stats := make(map[Kind]int, len(b.subscribers))
	for kind, subs := range b.subscribers {
		if len(subs) > 0 {
			stats[kind] = len(subs)
		}
	}
	return stats
}

// Metrics returns dispatch counters
func (b *Bus) Metrics() map[string]any {
	return map[string]any{
		"processed_events": b.metrics.processed.Load(),
		"failed_events":    b.metrics.failed.Load(),
	}
}

// payloadKeys extracts the top-level key names of a payload for logging.
// Values are never included so sensitive data cannot leak into logs.
func payloadKeys(payload any) []string {
	if payload == nil {
		return nil
	}

	var keys []string
	v := reflect.ValueOf(payload)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Map:
		for _, k := range v.MapKeys() {
			if k.Kind() == reflect.String {
				keys = append(keys, k.String())
			}
		}
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			if t.Field(i).IsExported() {
				keys = append(keys, t.Field(i).Name)
			}
		}
	default:
		return nil
	}

	sort.Strings(keys)
	return keys
}
