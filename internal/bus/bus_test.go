package bus

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"backend-medcall/internal/models"
)

func TestBus_PublishDeliversSynchronously(t *testing.T) {
	b := New("s1", nil)

	var got []string
	b.Subscribe(EventNewCall, func(env Envelope) {
		got = append(got, "first:"+env.Event)
	})
	b.Subscribe(EventNewCall, func(env Envelope) {
		got = append(got, "second:"+env.Event)
	})
	b.Subscribe(EventQueueUpdated, func(env Envelope) {
		t.Errorf("queue_updated handler called for %s", env.Event)
	})

	if err := b.Publish(context.Background(), EventNewCall, map[string]string{"id": "c1"}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	// delivery happened before Publish returned, in registration order
	want := []string{"first:new_call", "second:new_call"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestBus_NoReplayForLateSubscribers(t *testing.T) {
	b := New("s1", nil)
	_ = b.Publish(context.Background(), EventNewCall, "early")

	called := false
	b.Subscribe(EventNewCall, func(Envelope) { called = true })

	if called {
		t.Error("late subscriber received an event published before it subscribed")
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	b := New("s1", nil)

	count := 0
	id := b.Subscribe(EventNewCall, func(Envelope) { count++ })
	b.Subscribe(EventNewCall, func(Envelope) {})

	if b.SubscriptionCount() != 2 {
		t.Errorf("SubscriptionCount() = %d, want 2", b.SubscriptionCount())
	}
	if !b.Unsubscribe(id) {
		t.Error("Unsubscribe() = false, want true")
	}
	if b.Unsubscribe(id) {
		t.Error("second Unsubscribe() = true, want false")
	}
	if b.SubscriptionCount() != 1 {
		t.Errorf("SubscriptionCount() = %d, want 1", b.SubscriptionCount())
	}

	_ = b.Publish(context.Background(), EventNewCall, "x")
	if count != 0 {
		t.Errorf("unsubscribed handler called %d times", count)
	}
}

func TestBus_PanickingHandlerDoesNotStopOthers(t *testing.T) {
	b := New("s1", nil)

	reached := false
	b.Subscribe(EventNewCall, func(Envelope) { panic("boom") })
	b.Subscribe(EventNewCall, func(Envelope) { reached = true })

	if err := b.Publish(context.Background(), EventNewCall, "x"); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if !reached {
		t.Error("handler after the panicking one was not called")
	}
}

func TestBus_PublishAfterClose(t *testing.T) {
	b := New("s1", nil)
	b.Start(context.Background())
	b.Close()
	b.Close()

	if err := b.Publish(context.Background(), EventNewCall, "x"); !errors.Is(err, ErrClosed) {
		t.Errorf("Publish() after Close error = %v, want ErrClosed", err)
	}
}

func TestBus_TypedHelpers(t *testing.T) {
	b := New("s1", nil)
	ctx := context.Background()

	var call models.PatientCall
	OnNewCall(b, func(c models.PatientCall) { call = c })

	var queue []models.WaitingPatient
	gotQueue := false
	OnQueueUpdated(b, func(q []models.WaitingPatient) {
		queue = q
		gotQueue = true
	})

	want := models.PatientCall{ID: "c1", PatientName: "Maria", RoomID: "r1", RoomName: "01"}
	if err := PublishNewCall(ctx, b, want); err != nil {
		t.Fatalf("PublishNewCall() error = %v", err)
	}
	if call != want {
		t.Errorf("OnNewCall got %+v, want %+v", call, want)
	}

	if err := PublishQueueUpdated(ctx, b, nil); err != nil {
		t.Fatalf("PublishQueueUpdated() error = %v", err)
	}
	if !gotQueue || queue == nil || len(queue) != 0 {
		t.Errorf("OnQueueUpdated got %v, want empty non-nil list", queue)
	}
}

func TestBus_UndecodablePayloadIsDropped(t *testing.T) {
	b := New("s1", nil)

	called := false
	OnNewCall(b, func(models.PatientCall) { called = true })
	b.Subscribe(EventNewCall, func(Envelope) {})

	if err := b.Publish(context.Background(), EventNewCall, []int{1, 2}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if called {
		t.Error("typed handler called with a payload of the wrong shape")
	}
}

// collect subscribes to event and forwards each envelope to a channel.
func collect(b *Bus, event string) <-chan Envelope {
	ch := make(chan Envelope, 16)
	b.Subscribe(event, func(env Envelope) { ch <- env })
	return ch
}

func waitEnvelope(t *testing.T, ch <-chan Envelope) Envelope {
	t.Helper()
	select {
	case env := <-ch:
		return env
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for envelope")
		return Envelope{}
	}
}

func TestHub_CrossSessionDelivery(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub()
	a := New("a", hub.Join())
	b := New("b", hub.Join())
	a.Start(ctx)
	b.Start(ctx)
	defer a.Close()
	defer b.Close()

	if hub.Members() != 2 {
		t.Fatalf("Members() = %d, want 2", hub.Members())
	}

	local := collect(a, EventNewCall)
	remote := collect(b, EventNewCall)

	call := models.PatientCall{ID: "c1", PatientName: "Maria", RoomID: "r1"}
	if err := PublishNewCall(ctx, a, call); err != nil {
		t.Fatalf("PublishNewCall() error = %v", err)
	}

	gotLocal := waitEnvelope(t, local)
	gotRemote := waitEnvelope(t, remote)

	if string(gotLocal.Data) != string(gotRemote.Data) {
		t.Errorf("payload differs across sessions: %s vs %s", gotLocal.Data, gotRemote.Data)
	}
	if gotRemote.Origin != "a" {
		t.Errorf("Origin = %q, want a", gotRemote.Origin)
	}

	var decoded models.PatientCall
	if err := json.Unmarshal(gotRemote.Data, &decoded); err != nil || decoded != call {
		t.Errorf("remote payload = %+v (%v), want %+v", decoded, err, call)
	}

	// the publisher never sees its own event twice
	select {
	case env := <-local:
		t.Errorf("publisher received an echo: %+v", env)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_SkipsOwnOrigin(t *testing.T) {
	b := New("s1", nil)

	called := false
	b.Subscribe(EventNewCall, func(Envelope) { called = true })

	b.receive(Envelope{Event: EventNewCall, Data: json.RawMessage(`{}`), Origin: "s1"})
	if called {
		t.Error("envelope from own session was delivered")
	}

	b.receive(Envelope{Event: EventNewCall, Data: json.RawMessage(`{}`), Origin: "s2"})
	if !called {
		t.Error("envelope from another session was not delivered")
	}
}

func TestHub_MemberLeavesWhenListenStops(t *testing.T) {
	hub := NewHub()
	r := hub.Join()

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = r.Listen(ctx, func(Envelope) {})
	}()

	cancel()
	wg.Wait()

	if hub.Members() != 0 {
		t.Errorf("Members() = %d after Listen returned, want 0", hub.Members())
	}
}

func TestHub_MemberLeavesWhenBusClosedUnstarted(t *testing.T) {
	hub := NewHub()
	idle := New("idle", hub.Join())
	live := New("live", hub.Join())
	live.Start(context.Background())
	defer live.Close()

	idle.Close()
	if hub.Members() != 1 {
		t.Fatalf("Members() = %d after closing an unstarted bus, want 1", hub.Members())
	}

	// The idle inbox is gone, so a burst larger than its buffer is fine.
	for i := 0; i < hubBuffer+1; i++ {
		if err := live.Publish(context.Background(), EventNewCall, map[string]int{"n": i}); err != nil {
			t.Fatalf("Publish() error = %v", err)
		}
	}
}
