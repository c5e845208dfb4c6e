// Package queue owns the waiting list: ticket issuance, enqueue,
// removal by id and per-room views.
//
// The list is strictly insertion ordered. Priority is a descriptive tag
// printed on the ticket; it never reorders the queue.
package queue

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"backend-medcall/internal/bus"
	"backend-medcall/internal/models"
	"backend-medcall/internal/store"

	"github.com/google/uuid"
)

var (
	ErrNameRequired = errors.New("queue: patient name is required")
	ErrRoomRequired = errors.New("queue: target room is required")
)

// Manager mutates the persisted waiting list and announces every change
// with the full list on queue_updated.
type Manager struct {
	store store.Store
	bus   *bus.Bus

	// mu serialises read-modify-write cycles of this session only.
	mu sync.Mutex

	now   func() time.Time
	newID func() string
}

func NewManager(s store.Store, b *bus.Bus) *Manager {
	return &Manager{
		store: s,
		bus:   b,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// List returns the persisted waiting list in insertion order.
func (m *Manager) List(ctx context.Context) []models.WaitingPatient {
	return store.Read(ctx, m.store, store.KeyWaitingList, []models.WaitingPatient{})
}

// ListForRoom filters the waiting list by target room without touching
// the global order.
func (m *Manager) ListForRoom(ctx context.Context, roomID string) []models.WaitingPatient {
	all := m.List(ctx)
	out := make([]models.WaitingPatient, 0, len(all))
	for _, p := range all {
		if p.TargetRoomID == roomID {
			out = append(out, p)
		}
	}
	return out
}

// NextForRoom returns the earliest inserted entry for roomID, whatever
// its priority.
func (m *Manager) NextForRoom(ctx context.Context, roomID string) (models.WaitingPatient, bool) {
	for _, p := range m.List(ctx) {
		if p.TargetRoomID == roomID {
			return p, true
		}
	}
	return models.WaitingPatient{}, false
}

// NextTicket computes the ticket the next registration would receive.
func (m *Manager) NextTicket(ctx context.Context, p models.Priority) string {
	return FormatTicket(p, len(m.List(ctx))+1)
}

// Register builds a new entry for a patient and enqueues it.
func (m *Manager) Register(ctx context.Context, name string, p models.Priority, roomID string) (models.WaitingPatient, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.WaitingPatient{}, ErrNameRequired
	}
	if roomID == "" {
		return models.WaitingPatient{}, ErrRoomRequired
	}
	p = p.Normalize()
	if !p.Valid() {
		p = models.PriorityNormal
	}

	m.mu.Lock()
	current := m.List(ctx)
	patient := models.WaitingPatient{
		ID:           m.newID(),
		Name:         name,
		TicketNumber: FormatTicket(p, len(current)+1),
		Priority:     p,
		TargetRoomID: roomID,
		CreatedAt:    m.now().UTC(),
	}

	list := append(current, patient)
	err := m.write(ctx, list)
	m.mu.Unlock()
	if err != nil {
		return models.WaitingPatient{}, err
	}

	log.Printf("[queue] %s registered for room %s", patient.TicketNumber, roomID)
	return patient, m.publish(ctx, list)
}

// Enqueue appends an entry built by the caller to the end of the list.
// An entry whose id is already queued is left where it is.
func (m *Manager) Enqueue(ctx context.Context, patient models.WaitingPatient) error {
	m.mu.Lock()
	current := m.List(ctx)
	for _, p := range current {
		if p.ID == patient.ID {
			m.mu.Unlock()
			return nil
		}
	}
	list := append(current, patient)
	err := m.write(ctx, list)
	m.mu.Unlock()
	if err != nil {
		return err
	}
	return m.publish(ctx, list)
}

// DequeueByID removes the entry with id. An unknown id still persists and
// publishes the unchanged list.
func (m *Manager) DequeueByID(ctx context.Context, id string) error {
	m.mu.Lock()
	current := m.List(ctx)
	remaining := make([]models.WaitingPatient, 0, len(current))
	for _, p := range current {
		if p.ID != id {
			remaining = append(remaining, p)
		}
	}
	err := m.write(ctx, remaining)
	m.mu.Unlock()
	if err != nil {
		return err
	}
	return m.publish(ctx, remaining)
}

// write runs under m.mu. publish must not: local handlers run
// synchronously and may call back into the Manager.
func (m *Manager) write(ctx context.Context, list []models.WaitingPatient) error {
	return store.Write(ctx, m.store, store.KeyWaitingList, list)
}

func (m *Manager) publish(ctx context.Context, list []models.WaitingPatient) error {
	return bus.PublishQueueUpdated(ctx, m.bus, list)
}
