// Package dispatch turns a patient and a destination room into a
// persisted, broadcast PatientCall.
//
// Dispatch is the only entry point that mutates the call history and the
// latest-call pointer. Calling the next patient, calling someone without a
// queue entry and recalling an old call all funnel through it.
package dispatch

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"backend-medcall/internal/bus"
	"backend-medcall/internal/models"
	"backend-medcall/internal/queue"
	"backend-medcall/internal/store"

	"github.com/google/uuid"
)

// HistoryLimit bounds the persisted history; older calls are evicted.
const HistoryLimit = 100

var (
	ErrQueueEmpty   = errors.New("dispatch: no patient waiting for this room")
	ErrCallNotFound = errors.New("dispatch: call not found in history")
	ErrNameRequired = errors.New("dispatch: patient name is required")
	ErrRoomRequired = errors.New("dispatch: room is required")
)

// RoomLookup resolves a room id. Inactive rooms are still returned.
type RoomLookup interface {
	Room(ctx context.Context, id string) (models.Room, bool)
}

// ManualCall is a call made without a queue entry, typically from the
// reception desk.
type ManualCall struct {
	PatientName  string
	TicketNumber string
	RoomID       string
}

type Dispatcher struct {
	store store.Store
	bus   *bus.Bus
	rooms RoomLookup
	queue *queue.Manager

	// mu serialises history updates of this session.
	mu sync.Mutex

	now   func() time.Time
	newID func() string
}

func NewDispatcher(s store.Store, b *bus.Bus, rooms RoomLookup, q *queue.Manager) *Dispatcher {
	return &Dispatcher{
		store: s,
		bus:   b,
		rooms: rooms,
		queue: q,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// History returns the persisted calls, newest first.
func (d *Dispatcher) History(ctx context.Context) []models.PatientCall {
	return store.Read(ctx, d.store, store.KeyHistory, []models.PatientCall{})
}

// RoomHistory returns up to limit calls made to roomID, newest first.
// limit <= 0 means no limit.
func (d *Dispatcher) RoomHistory(ctx context.Context, roomID string, limit int) []models.PatientCall {
	out := []models.PatientCall{}
	for _, c := range d.History(ctx) {
		if c.RoomID != roomID {
			continue
		}
		out = append(out, c)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// Latest returns the most recently dispatched call, or nil.
func (d *Dispatcher) Latest(ctx context.Context) *models.PatientCall {
	return store.Read[*models.PatientCall](ctx, d.store, store.KeyLatestCall, nil)
}

// FindCall looks a call up in the retained history.
func (d *Dispatcher) FindCall(ctx context.Context, id string) (models.PatientCall, bool) {
	for _, c := range d.History(ctx) {
		if c.ID == id {
			return c, true
		}
	}
	return models.PatientCall{}, false
}

// Dispatch prepends call to the history, truncates it, records it as the
// latest call and publishes new_call. It never touches the queue.
func (d *Dispatcher) Dispatch(ctx context.Context, call models.PatientCall) error {
	if err := d.persist(ctx, call); err != nil {
		return err
	}

	log.Printf("[dispatch] %s -> room %s (%s)", call.PatientName, call.RoomName, call.ID)
	// Published outside d.mu; new_call handlers may dispatch again.
	return bus.PublishNewCall(ctx, d.bus, call)
}

func (d *Dispatcher) persist(ctx context.Context, call models.PatientCall) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	history := d.History(ctx)
	next := make([]models.PatientCall, 0, min(len(history)+1, HistoryLimit))
	next = append(next, call)
	next = append(next, history...)
	if len(next) > HistoryLimit {
		next = next[:HistoryLimit]
	}

	if err := store.Write(ctx, d.store, store.KeyHistory, next); err != nil {
		return err
	}
	return store.Write(ctx, d.store, store.KeyLatestCall, call)
}

// CallNext calls the earliest queued patient for roomID and then removes
// the entry. The two writes are independent: another session reading the
// queue in between can call the same patient.
func (d *Dispatcher) CallNext(ctx context.Context, roomID string) (models.PatientCall, error) {
	patient, ok := d.queue.NextForRoom(ctx, roomID)
	if !ok {
		return models.PatientCall{}, ErrQueueEmpty
	}

	call := d.newCall(ctx, patient.Name, patient.TicketNumber, roomID)
	if err := d.Dispatch(ctx, call); err != nil {
		return models.PatientCall{}, err
	}
	if err := d.queue.DequeueByID(ctx, patient.ID); err != nil {
		return call, err
	}
	return call, nil
}

// CallManual dispatches a call that has no queue entry.
func (d *Dispatcher) CallManual(ctx context.Context, req ManualCall) (models.PatientCall, error) {
	name := strings.TrimSpace(req.PatientName)
	if name == "" {
		return models.PatientCall{}, ErrNameRequired
	}
	if req.RoomID == "" {
		return models.PatientCall{}, ErrRoomRequired
	}

	call := d.newCall(ctx, name, strings.TrimSpace(req.TicketNumber), req.RoomID)
	if err := d.Dispatch(ctx, call); err != nil {
		return models.PatientCall{}, err
	}
	return call, nil
}

// Recall re-dispatches a past call under a new id and timestamp.
func (d *Dispatcher) Recall(ctx context.Context, callID string) (models.PatientCall, error) {
	past, ok := d.FindCall(ctx, callID)
	if !ok {
		return models.PatientCall{}, ErrCallNotFound
	}

	call := past.Recall(d.newID(), d.now().UTC())
	if err := d.Dispatch(ctx, call); err != nil {
		return models.PatientCall{}, err
	}
	return call, nil
}

// newCall fills room details, falling back to placeholders when the room
// is unknown.
func (d *Dispatcher) newCall(ctx context.Context, name, ticket, roomID string) models.PatientCall {
	roomName, doctor := models.UnknownRoomName, models.UnknownDoctor
	if room, ok := d.rooms.Room(ctx, roomID); ok {
		roomName, doctor = room.Number, room.DoctorName
	}

	return models.PatientCall{
		ID:           d.newID(),
		PatientName:  name,
		TicketNumber: ticket,
		RoomID:       roomID,
		RoomName:     roomName,
		DoctorName:   doctor,
		Timestamp:    d.now().UTC(),
	}
}
