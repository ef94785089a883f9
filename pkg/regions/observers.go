package regions

import "sync"

// Event is delivered to flow listeners.
type Event struct {
	Type string
	Flow *NamedFlow
}

type Listener func(Event)

// Subscription identifies a registered listener for removal.
type Subscription uint64

type subscriber struct {
	id Subscription
	fn Listener
}

// Observers is a per-type listener list. It is safe for concurrent use and
// listeners may subscribe or unsubscribe while an event is being fired.
type Observers struct {
	mu        sync.Mutex
	next      Subscription
	listeners map[string][]subscriber

	// onSubscribe runs after every successful Subscribe, outside the lock.
	onSubscribe func()
}

func newObservers(onSubscribe func()) *Observers {
	return &Observers{
		listeners:   make(map[string][]subscriber),
		onSubscribe: onSubscribe,
	}
}

// Subscribe adds fn for events of the given type.
func (o *Observers) Subscribe(typ string, fn Listener) Subscription {
	if fn == nil {
		return 0
	}
	o.mu.Lock()
	o.next++
	id := o.next
	o.listeners[typ] = append(o.listeners[typ], subscriber{id: id, fn: fn})
	o.mu.Unlock()

	if o.onSubscribe != nil {
		o.onSubscribe()
	}
	return id
}

// Unsubscribe removes a listener. It reports whether one was removed.
func (o *Observers) Unsubscribe(typ string, id Subscription) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	subs := o.listeners[typ]
	for i, s := range subs {
		if s.id == id {
			o.listeners[typ] = append(subs[:i:i], subs[i+1:]...)
			return true
		}
	}
	return false
}

// Count returns the number of listeners for a type.
func (o *Observers) Count(typ string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.listeners[typ])
}

// Fire calls the listeners registered for ev.Type, in subscription order.
func (o *Observers) Fire(ev Event) {
	o.mu.Lock()
	subs := append([]subscriber(nil), o.listeners[ev.Type]...)
	o.mu.Unlock()
	for _, s := range subs {
		s.fn(ev)
	}
}
