package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Relay moves envelopes between sessions.
type Relay interface {
	// Broadcast forwards env to the other sessions on the channel.
	Broadcast(ctx context.Context, env Envelope) error
	// Listen calls deliver for every envelope received, one at a time,
	// until ctx is done.
	Listen(ctx context.Context, deliver func(Envelope)) error
}

// NopRelay keeps a bus local to its session.
type NopRelay struct{}

func (NopRelay) Broadcast(context.Context, Envelope) error { return nil }

func (NopRelay) Listen(ctx context.Context, _ func(Envelope)) error {
	<-ctx.Done()
	return nil
}

const hubBuffer = 64

// Hub links sessions living in the same process.
type Hub struct {
	mu      sync.RWMutex
	members map[*HubRelay]struct{}
}

func NewHub() *Hub {
	return &Hub{members: make(map[*HubRelay]struct{})}
}

// Join adds a member. Envelopes broadcast from now on are buffered for it
// until its Listen drains them. The member leaves when Listen returns or
// when it is closed; a bus built on it must be started or closed.
func (h *Hub) Join() *HubRelay {
	r := &HubRelay{hub: h, inbox: make(chan Envelope, hubBuffer)}
	h.mu.Lock()
	h.members[r] = struct{}{}
	h.mu.Unlock()
	return r
}

// Members returns the number of joined relays.
func (h *Hub) Members() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.members)
}

func (h *Hub) leave(r *HubRelay) {
	h.mu.Lock()
	delete(h.members, r)
	h.mu.Unlock()
}

func (h *Hub) broadcast(from *HubRelay, env Envelope) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for m := range h.members {
		if m == from {
			continue
		}
		select {
		case m.inbox <- env:
		default:
			log.Printf("[bus] hub member slow, dropping %s from %s", env.Event, env.Origin)
		}
	}
}

// HubRelay is one session's membership in a Hub.
type HubRelay struct {
	hub   *Hub
	inbox chan Envelope
}

func (r *HubRelay) Broadcast(_ context.Context, env Envelope) error {
	r.hub.broadcast(r, env)
	return nil
}

// Close leaves the hub. Safe to call more than once.
func (r *HubRelay) Close() error {
	r.hub.leave(r)
	return nil
}

func (r *HubRelay) Listen(ctx context.Context, deliver func(Envelope)) error {
	defer r.hub.leave(r)
	for {
		select {
		case <-ctx.Done():
			return nil
		case env := <-r.inbox:
			deliver(env)
		}
	}
}

// RedisRelay uses Redis Pub/Sub as the shared channel, so sessions in
// separate processes see each other's events.
type RedisRelay struct {
	client  *redis.Client
	channel string
}

func NewRedisRelay(client *redis.Client, channel string) *RedisRelay {
	return &RedisRelay{client: client, channel: channel}
}

func (r *RedisRelay) Broadcast(ctx context.Context, env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("bus: encode envelope: %w", err)
	}
	return r.client.Publish(ctx, r.channel, data).Err()
}

func (r *RedisRelay) Listen(ctx context.Context, deliver func(Envelope)) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("bus: subscribe %s: %w", r.channel, err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var env Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				log.Printf("[bus] bad envelope on %s: %v", r.channel, err)
				continue
			}
			deliver(env)
		}
	}
}
