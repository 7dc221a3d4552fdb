package event

import (
	"reflect"
	"sync"
)

// Handle identifies one subscription so it can be removed later.
type Handle struct {
	typ reflect.Type
	id  uint64
}

type subscription struct {
	id uint64
	fn any
}

type queued struct {
	typ reflect.Type
	ev  any
}

// Bus is a double-buffered event bus. Events emitted in tick N are readable
// in tick N+1, in emission order across all types. SwapBuffers() is called
// at tick start by the event system.
type Bus struct {
	mu       sync.Mutex // only protects handler registration
	front    []queued
	back     []queued
	handlers map[reflect.Type][]subscription
	nextID   uint64
}

func NewBus() *Bus {
	return &Bus{
		handlers: make(map[reflect.Type][]subscription),
	}
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Emit queues an event into the back buffer (will be readable next tick).
func Emit[T any](b *Bus, event T) {
	b.back = append(b.back, queued{typ: typeOf[T](), ev: event})
}

// Subscribe registers a typed handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) Handle {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := typeOf[T]()
	b.nextID++
	b.handlers[t] = append(b.handlers[t], subscription{id: b.nextID, fn: fn})
	return Handle{typ: t, id: b.nextID}
}

// Unsubscribe removes the handler registered under h. Unknown or already
// removed handles are ignored.
func (b *Bus) Unsubscribe(h Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.handlers[h.typ]
	for i, s := range subs {
		if s.id == h.id {
			b.handlers[h.typ] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Pending returns the number of events of type T queued for next tick.
func Pending[T any](b *Bus) int {
	t := typeOf[T]()
	n := 0
	for _, q := range b.back {
		if q.typ == t {
			n++
		}
	}
	return n
}

// SwapBuffers rotates back→front and clears the new back buffer.
// Called once at tick start.
func (b *Bus) SwapBuffers() {
	clear(b.front)
	b.front, b.back = b.back, b.front[:0]
}

// DispatchAll delivers all front-buffer events to their subscribed handlers.
func (b *Bus) DispatchAll() {
	for _, q := range b.front {
		b.mu.Lock()
		subs := b.handlers[q.typ]
		b.mu.Unlock()
		for _, s := range subs {
			// Subscribe and Emit key on the same type, so the call is safe.
			callHandler(s.fn, q.ev)
		}
	}
}

func callHandler(handler any, event any) {
	reflect.ValueOf(handler).Call([]reflect.Value{reflect.ValueOf(event)})
}
