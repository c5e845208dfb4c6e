package bus

import (
	"context"
	"encoding/json"
	"log"

	"backend-medcall/internal/models"
)

// Event names carried on the channel.
const (
	EventNewCall      = "new_call"
	EventQueueUpdated = "queue_updated"
)

// Envelope is the wire shape of one event. Origin is the publishing
// session; it lets a session ignore its own echo coming back from a relay.
type Envelope struct {
	Event  string          `json:"event"`
	Data   json.RawMessage `json:"data"`
	Origin string          `json:"origin,omitempty"`
}

// On subscribes fn to event, decoding the payload into a T. Payloads that
// do not decode are logged and dropped.
func On[T any](b *Bus, event string, fn func(T)) string {
	return b.Subscribe(event, func(env Envelope) {
		var v T
		if err := json.Unmarshal(env.Data, &v); err != nil {
			log.Printf("[bus] %s: decode payload from %s: %v", event, env.Origin, err)
			return
		}
		fn(v)
	})
}

func OnNewCall(b *Bus, fn func(models.PatientCall)) string {
	return On(b, EventNewCall, fn)
}

func OnQueueUpdated(b *Bus, fn func([]models.WaitingPatient)) string {
	return On(b, EventQueueUpdated, fn)
}

func PublishNewCall(ctx context.Context, b *Bus, call models.PatientCall) error {
	return b.Publish(ctx, EventNewCall, call)
}

// PublishQueueUpdated always sends the full list, never a delta.
func PublishQueueUpdated(ctx context.Context, b *Bus, queue []models.WaitingPatient) error {
	if queue == nil {
		queue = []models.WaitingPatient{}
	}
	return b.Publish(ctx, EventQueueUpdated, queue)
}
