package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

var ErrClosed = errors.New("bus: closed")

// Handler handles one envelope.
type Handler func(Envelope)

type subscription struct {
	id      string
	event   string
	handler Handler
}

// Bus is the per-session endpoint of the realtime channel.
type Bus struct {
	session string
	relay   Relay

	mu            sync.RWMutex
	subscriptions map[string][]subscription
	nextID        atomic.Uint64

	closed    atomic.Bool
	startOnce sync.Once
	cancel    context.CancelFunc
	done      chan struct{}
}

// New creates the bus of one session. A nil relay keeps delivery local.
func New(sessionID string, relay Relay) *Bus {
	if relay == nil {
		relay = NopRelay{}
	}
	return &Bus{
		session:       sessionID,
		relay:         relay,
		subscriptions: make(map[string][]subscription),
	}
}

// SessionID returns the origin stamped on envelopes published here.
func (b *Bus) SessionID() string { return b.session }

// Subscribe registers handler for event and returns an id for Unsubscribe.
func (b *Bus) Subscribe(event string, handler Handler) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := fmt.Sprintf("sub-%d", b.nextID.Add(1))
	b.subscriptions[event] = append(b.subscriptions[event], subscription{
		id:      id,
		event:   event,
		handler: handler,
	})
	return id
}

// Unsubscribe removes a subscription. Returns false when id is unknown.
func (b *Bus) Unsubscribe(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for event, subs := range b.subscriptions {
		for i, sub := range subs {
			if sub.id == id {
				kept := make([]subscription, 0, len(subs)-1)
				kept = append(kept, subs[:i]...)
				kept = append(kept, subs[i+1:]...)
				b.subscriptions[event] = kept
				return true
			}
		}
	}
	return false
}

// SubscriptionCount returns the number of live subscriptions.
func (b *Bus) SubscriptionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	count := 0
	for _, subs := range b.subscriptions {
		count += len(subs)
	}
	return count
}

// Publish encodes payload once, runs the local handlers for event, then
// forwards the envelope to the relay. Relay failures are logged, not
// returned: cross-session delivery is fire-and-forget.
func (b *Bus) Publish(ctx context.Context, event string, payload any) error {
	if b.closed.Load() {
		return ErrClosed
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("bus: encode %s: %w", event, err)
	}
	env := Envelope{Event: event, Data: data, Origin: b.session}

	b.deliver(env)

	if err := b.relay.Broadcast(ctx, env); err != nil {
		log.Printf("[bus] %s: relay %s failed: %v", b.session, event, err)
	}
	return nil
}

// Start begins receiving envelopes published by other sessions. It returns
// immediately; Close stops the receiver.
func (b *Bus) Start(ctx context.Context) {
	b.startOnce.Do(func() {
		ctx, cancel := context.WithCancel(ctx)
		b.cancel = cancel
		b.done = make(chan struct{})

		go func() {
			defer close(b.done)
			if err := b.relay.Listen(ctx, b.receive); err != nil && ctx.Err() == nil {
				log.Printf("[bus] %s: relay listen stopped: %v", b.session, err)
			}
		}()
	})
}

// Close stops remote delivery and rejects further publishes. A relay that
// is also an io.Closer is closed too, whether or not Start ran. Safe to
// call more than once.
func (b *Bus) Close() {
	if b.closed.Swap(true) {
		return
	}
	if b.cancel != nil {
		b.cancel()
		<-b.done
	}
	if c, ok := b.relay.(io.Closer); ok {
		if err := c.Close(); err != nil {
			log.Printf("[bus] %s: close relay: %v", b.session, err)
		}
	}
}

func (b *Bus) receive(env Envelope) {
	if env.Origin == b.session || b.closed.Load() {
		return
	}
	b.deliver(env)
}

func (b *Bus) deliver(env Envelope) {
	b.mu.RLock()
	subs := make([]subscription, len(b.subscriptions[env.Event]))
	copy(subs, b.subscriptions[env.Event])
	b.mu.RUnlock()

	for _, sub := range subs {
		b.safeCall(sub.handler, env)
	}
}

// safeCall keeps one panicking handler from starving the rest.
func (b *Bus) safeCall(handler Handler, env Envelope) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[bus] %s: handler panicked for %s: %v\n%s",
				b.session, env.Event, r, debug.Stack())
		}
	}()
	handler(env)
}
