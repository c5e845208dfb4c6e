package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"backend-medcall/internal/bus"
	"backend-medcall/internal/config"
	"backend-medcall/internal/dispatch"
	"backend-medcall/internal/display"
	"backend-medcall/internal/models"
	"backend-medcall/internal/store"
)

var testSeed = config.Seed{
	Rooms: []models.Room{
		{ID: "r1", Number: "01", DoctorName: "Dr. Lucas Silva", Specialty: "Cardiologia", Active: true},
		{ID: "r2", Number: "02", DoctorName: "Dra. Ana Maria", Specialty: "Clínica Geral", Active: true},
	},
	Users: []models.User{
		{ID: "u1", Username: "admin", Role: models.RoleAdmin, Name: "Administrador", Active: true},
	},
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSessions_ShareStoreAndEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shared := store.NewMemoryStore()
	hub := bus.NewHub()

	reception := New(ctx, "reception", shared, hub.Join(), testSeed)
	clinic := New(ctx, "clinic", shared, hub.Join(), testSeed)
	tv := New(ctx, "tv", shared, hub.Join(), testSeed)
	defer reception.Close()
	defer clinic.Close()
	defer tv.Close()

	panel := display.NewPanel(tv, tv.Bus, time.Second)
	panel.Mount(ctx)
	defer panel.Unmount()

	room := display.NewBoard(clinic, clinic.Bus, "r1")
	room.Mount(ctx)
	defer room.Unmount()

	patient, err := reception.Queue.Register(ctx, "Maria Souza", models.PriorityNormal, "r1")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if patient.TicketNumber != "N-001" {
		t.Errorf("TicketNumber = %s, want N-001", patient.TicketNumber)
	}

	eventually(t, "room board to see the patient", func() bool {
		v := room.View()
		return len(v.Queue) == 1 && v.Queue[0].ID == patient.ID
	})

	call, err := clinic.Calls.CallNext(ctx, "r1")
	if err != nil {
		t.Fatalf("CallNext() error = %v", err)
	}
	if call.RoomName != "01" || call.DoctorName != "Dr. Lucas Silva" {
		t.Errorf("call room = %s/%s", call.RoomName, call.DoctorName)
	}

	eventually(t, "tv panel to show the call", func() bool {
		v := panel.View()
		return v.Current != nil && v.Current.ID == call.ID && v.Highlighted
	})

	// every session reads the same durable state
	for _, s := range []*Session{reception, clinic, tv} {
		if latest := s.GetLatestCall(ctx); latest == nil || latest.ID != call.ID {
			t.Errorf("%s: latest = %v, want %s", s.ID, latest, call.ID)
		}
		if q := s.GetWaitingList(ctx); len(q) != 0 {
			t.Errorf("%s: waiting list = %+v, want empty", s.ID, q)
		}
	}
}

func TestSession_DirectoryFallsBackToSeed(t *testing.T) {
	ctx := context.Background()
	s := New(ctx, "s1", store.NewMemoryStore(), nil, testSeed)
	defer s.Close()

	rooms := s.GetRooms(ctx)
	if len(rooms) != 2 {
		t.Fatalf("GetRooms() = %+v, want the seed", rooms)
	}

	// mutating the result does not leak into the seed
	rooms[0].Active = false
	if !s.GetRooms(ctx)[0].Active {
		t.Error("seed changed through a returned slice")
	}

	rooms = []models.Room{testSeed.Rooms[0], {ID: "r2", Number: "02", Active: false}}
	if err := s.SaveRooms(ctx, rooms); err != nil {
		t.Fatalf("SaveRooms() error = %v", err)
	}
	if active := s.ActiveRooms(ctx); len(active) != 1 || active[0].ID != "r1" {
		t.Errorf("ActiveRooms() = %+v, want [r1]", active)
	}

	// an inactive room still resolves for calls already in flight
	if r, ok := s.Directory.Room(ctx, "r2"); !ok || r.Number != "02" {
		t.Errorf("Room(r2) = %+v, %v", r, ok)
	}

	users := s.GetUsers(ctx)
	users[0].Active = false
	if err := s.SaveUsers(ctx, users); err != nil {
		t.Fatalf("SaveUsers() error = %v", err)
	}
	if u, ok := s.Directory.User(ctx, "u1"); !ok || u.Active {
		t.Errorf("User(u1) = %+v, %v, want inactive", u, ok)
	}
}

func TestSession_CollaboratorSurface(t *testing.T) {
	ctx := context.Background()
	s := New(ctx, "s1", store.NewMemoryStore(), nil, testSeed)
	defer s.Close()

	var events []string
	s.Bus.Subscribe(bus.EventNewCall, func(env bus.Envelope) { events = append(events, env.Event) })
	s.Bus.Subscribe(bus.EventQueueUpdated, func(env bus.Envelope) { events = append(events, env.Event) })

	p := models.WaitingPatient{ID: "p1", Name: "Maria", TicketNumber: "N-001", Priority: models.PriorityNormal, TargetRoomID: "r1"}
	if err := s.AddToQueue(ctx, p); err != nil {
		t.Fatalf("AddToQueue() error = %v", err)
	}
	call := models.PatientCall{ID: "c1", PatientName: "Maria", RoomID: "r1", RoomName: "01", Timestamp: time.Now().UTC()}
	if err := s.SaveCall(ctx, call); err != nil {
		t.Fatalf("SaveCall() error = %v", err)
	}
	if err := s.RemoveFromQueue(ctx, "p1"); err != nil {
		t.Fatalf("RemoveFromQueue() error = %v", err)
	}

	want := []string{bus.EventQueueUpdated, bus.EventNewCall, bus.EventQueueUpdated}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("events[%d] = %s, want %s", i, events[i], want[i])
		}
	}

	if h := s.GetHistory(ctx); len(h) != 1 || !h[0].Timestamp.Equal(call.Timestamp) {
		t.Errorf("GetHistory() = %+v", h)
	}
}

func TestSession_Stats(t *testing.T) {
	ctx := context.Background()
	s := New(ctx, "s1", store.NewMemoryStore(), nil, testSeed)
	defer s.Close()

	now := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	for i, ts := range []time.Time{
		now.Add(-time.Hour),
		now.Add(-2 * time.Hour),
		now.Add(-26 * time.Hour),
	} {
		call := models.PatientCall{ID: string(rune('a' + i)), RoomID: "r1", Timestamp: ts}
		if err := s.SaveCall(ctx, call); err != nil {
			t.Fatalf("SaveCall() error = %v", err)
		}
	}
	_, _ = s.Queue.Register(ctx, "Maria", models.PriorityNormal, "r2")

	got := s.Stats(ctx, now)
	want := Stats{TotalCalls: 3, ActiveRooms: 2, CallsToday: 2, Waiting: 1}
	if got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}
}

func TestOpen_FileStoreAndMemoryRelay(t *testing.T) {
	ctx := context.Background()
	cfg := config.Config{
		SessionID:   "cli",
		StoreDriver: "file",
		DataDir:     filepath.Join(t.TempDir(), "data"),
		RelayDriver: "memory",
	}

	s, err := Open(ctx, cfg)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, err := s.Queue.Register(ctx, "Maria", models.PriorityNormal, "r1"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// a later session on the same directory sees the entry
	again, err := Open(ctx, cfg)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer again.Close()
	if q := again.GetWaitingList(ctx); len(q) != 1 || q[0].Name != "Maria" {
		t.Errorf("GetWaitingList() = %+v, want Maria", q)
	}
	if len(again.GetUsers(ctx)) != 3 {
		t.Error("default seed users not served")
	}
}

func TestOpen_SQLite(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, config.Config{
		SessionID:   "sqlite",
		StoreDriver: "sqlite",
		SQLitePath:  filepath.Join(t.TempDir(), "medcall.db"),
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	if _, err := s.Calls.CallManual(ctx, dispatchManual("Maria", "r1")); err != nil {
		t.Fatalf("CallManual() error = %v", err)
	}
	if latest := s.GetLatestCall(ctx); latest == nil || latest.PatientName != "Maria" {
		t.Errorf("GetLatestCall() = %v", latest)
	}
}

func TestOpen_UnknownDrivers(t *testing.T) {
	ctx := context.Background()

	if _, err := Open(ctx, config.Config{StoreDriver: "mongo"}); err == nil {
		t.Error("Open() with unknown store driver succeeded")
	}
	if _, err := Open(ctx, config.Config{StoreDriver: "memory", RelayDriver: "kafka"}); err == nil {
		t.Error("Open() with unknown relay driver succeeded")
	}
}

func dispatchManual(name, room string) dispatch.ManualCall {
	return dispatch.ManualCall{PatientName: name, RoomID: room}
}
