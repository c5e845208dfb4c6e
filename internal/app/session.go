// Package app wires one session: the shared store, the session's bus, the
// queue manager and the call dispatcher. Session exposes the read/write
// surface that the dashboards, the TV panel and the reports call into.
package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"backend-medcall/internal/bus"
	"backend-medcall/internal/config"
	"backend-medcall/internal/dispatch"
	"backend-medcall/internal/models"
	"backend-medcall/internal/queue"
	"backend-medcall/internal/store"
)

type Session struct {
	ID        string
	Store     store.Store
	Bus       *bus.Bus
	Directory *Directory
	Queue     *queue.Manager
	Calls     *dispatch.Dispatcher

	closers []func() error
}

// New assembles a session on top of an existing store and relay. The bus
// starts receiving remote events immediately.
func New(ctx context.Context, id string, s store.Store, relay bus.Relay, seed config.Seed) *Session {
	b := bus.New(id, relay)
	dir := NewDirectory(s, seed)
	q := queue.NewManager(s, b)

	sess := &Session{
		ID:        id,
		Store:     s,
		Bus:       b,
		Directory: dir,
		Queue:     q,
		Calls:     dispatch.NewDispatcher(s, b, dir, q),
	}
	b.Start(ctx)
	return sess
}

// Open builds the store and relay selected by cfg and returns a running
// session. Close releases everything Open created.
func Open(ctx context.Context, cfg config.Config) (*Session, error) {
	seed, err := config.LoadSeed(cfg.SeedFile)
	if err != nil {
		return nil, err
	}

	var closers []func() error
	fail := func(err error) (*Session, error) {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i]()
		}
		return nil, err
	}

	var rdb redisClient
	if cfg.NeedsRedis() {
		client, err := config.NewRedis(ctx, cfg)
		if err != nil {
			return fail(err)
		}
		rdb = client
		closers = append(closers, client.Close)
	}

	s, err := openStore(ctx, cfg, rdb)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, s.Close)

	var relay bus.Relay
	switch cfg.RelayDriver {
	case "redis":
		relay = bus.NewRedisRelay(rdb, cfg.Channel)
	case "memory", "":
		relay = bus.NopRelay{}
	default:
		return fail(fmt.Errorf("unknown relay driver %q", cfg.RelayDriver))
	}

	sess := New(ctx, cfg.SessionID, s, relay, seed)
	sess.closers = closers
	log.Printf("[app] session %s open (store=%s relay=%s)", cfg.SessionID, cfg.StoreDriver, cfg.RelayDriver)
	return sess, nil
}

// Close stops the bus and releases the resources Open created.
func (s *Session) Close() error {
	s.Bus.Close()

	var first error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	s.closers = nil
	return first
}

/*
|--------------------------------------------------------------------------
| Collaborator surface
|--------------------------------------------------------------------------
*/

func (s *Session) GetHistory(ctx context.Context) []models.PatientCall {
	return s.Calls.History(ctx)
}

func (s *Session) GetLatestCall(ctx context.Context) *models.PatientCall {
	return s.Calls.Latest(ctx)
}

func (s *Session) GetWaitingList(ctx context.Context) []models.WaitingPatient {
	return s.Queue.List(ctx)
}

// GetRoomQueue returns the waiting list of one room in insertion order.
func (s *Session) GetRoomQueue(ctx context.Context, roomID string) []models.WaitingPatient {
	return s.Queue.ListForRoom(ctx, roomID)
}

// GetRoomHistory returns up to limit calls made to one room, newest first.
func (s *Session) GetRoomHistory(ctx context.Context, roomID string, limit int) []models.PatientCall {
	return s.Calls.RoomHistory(ctx, roomID, limit)
}

func (s *Session) SaveCall(ctx context.Context, call models.PatientCall) error {
	return s.Calls.Dispatch(ctx, call)
}

func (s *Session) AddToQueue(ctx context.Context, patient models.WaitingPatient) error {
	return s.Queue.Enqueue(ctx, patient)
}

func (s *Session) RemoveFromQueue(ctx context.Context, id string) error {
	return s.Queue.DequeueByID(ctx, id)
}

func (s *Session) SaveRooms(ctx context.Context, rooms []models.Room) error {
	return s.Directory.SaveRooms(ctx, rooms)
}

func (s *Session) GetRooms(ctx context.Context) []models.Room {
	return s.Directory.Rooms(ctx)
}

// ActiveRooms are the rooms that can originate new calls.
func (s *Session) ActiveRooms(ctx context.Context) []models.Room {
	return models.ActiveRooms(s.Directory.Rooms(ctx))
}

func (s *Session) GetUsers(ctx context.Context) []models.User {
	return s.Directory.Users(ctx)
}

func (s *Session) SaveUsers(ctx context.Context, users []models.User) error {
	return s.Directory.SaveUsers(ctx, users)
}

// Stats - ringkasan untuk dashboard admin
type Stats struct {
	TotalCalls  int `json:"totalCalls"`
	ActiveRooms int `json:"activeRooms"`
	CallsToday  int `json:"callsToday"`
	Waiting     int `json:"waiting"`
}

// Stats counts over the retained history, so TotalCalls never exceeds
// dispatch.HistoryLimit. "Today" is the local calendar day of now.
func (s *Session) Stats(ctx context.Context, now time.Time) Stats {
	history := s.GetHistory(ctx)

	y, m, d := now.Date()
	today := 0
	for _, c := range history {
		cy, cm, cd := c.Timestamp.In(now.Location()).Date()
		if cy == y && cm == m && cd == d {
			today++
		}
	}

	return Stats{
		TotalCalls:  len(history),
		ActiveRooms: len(s.ActiveRooms(ctx)),
		CallsToday:  today,
		Waiting:     len(s.GetWaitingList(ctx)),
	}
}
