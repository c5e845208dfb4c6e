package display

import (
	"context"
	"sync"

	"backend-medcall/internal/bus"
	"backend-medcall/internal/models"
)

// RoomHistoryLimit is how many past calls a room board lists.
const RoomHistoryLimit = 10

// QueueSource is the read side a queue board needs.
type QueueSource interface {
	GetWaitingList(ctx context.Context) []models.WaitingPatient
	GetHistory(ctx context.Context) []models.PatientCall
	GetRoomQueue(ctx context.Context, roomID string) []models.WaitingPatient
	GetRoomHistory(ctx context.Context, roomID string, limit int) []models.PatientCall
}

// BoardView is what a reception or room board shows.
type BoardView struct {
	Queue    []models.WaitingPatient `json:"queue"`
	History  []models.PatientCall    `json:"history"`
	LastCall *models.PatientCall     `json:"lastCall"`
}

// Board follows the waiting list. With a room id it is a physician room
// board: queue and history are scoped to that room. Without one it shows
// the whole queue and the overall history.
type Board struct {
	src    QueueSource
	bus    *bus.Bus
	roomID string

	OnChange func(BoardView)

	// refresh keeps a slow reload from overwriting a newer one.
	refresh sync.Mutex
	mu      sync.Mutex
	view    BoardView
	subs    []string
}

func NewBoard(src QueueSource, b *bus.Bus, roomID string) *Board {
	return &Board{src: src, bus: b, roomID: roomID}
}

// Mount loads the board and refreshes it on queue_updated and new_call.
// Every refresh replaces the lists outright.
func (b *Board) Mount(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)

	b.reload(ctx)
	b.subs = append(b.subs,
		b.bus.Subscribe(bus.EventQueueUpdated, func(bus.Envelope) { b.reload(ctx) }),
		b.bus.Subscribe(bus.EventNewCall, func(bus.Envelope) { b.reload(ctx) }),
	)
}

func (b *Board) Unmount() {
	for _, id := range b.subs {
		b.bus.Unsubscribe(id)
	}
	b.subs = nil
}

func (b *Board) View() BoardView {
	b.mu.Lock()
	defer b.mu.Unlock()
	return copyBoard(b.view)
}

func (b *Board) reload(ctx context.Context) {
	b.refresh.Lock()
	defer b.refresh.Unlock()

	var (
		queue   []models.WaitingPatient
		history []models.PatientCall
	)
	if b.roomID != "" {
		queue = b.src.GetRoomQueue(ctx, b.roomID)
		history = b.src.GetRoomHistory(ctx, b.roomID, RoomHistoryLimit)
	} else {
		queue = b.src.GetWaitingList(ctx)
		history = b.src.GetHistory(ctx)
		if len(history) > RoomHistoryLimit {
			history = history[:RoomHistoryLimit]
		}
	}

	v := BoardView{Queue: queue, History: history}
	if len(history) > 0 {
		last := history[0]
		v.LastCall = &last
	}

	b.mu.Lock()
	b.view = v
	b.mu.Unlock()

	if b.OnChange != nil {
		b.OnChange(copyBoard(v))
	}
}

func copyBoard(v BoardView) BoardView {
	out := BoardView{
		Queue:   append([]models.WaitingPatient{}, v.Queue...),
		History: append([]models.PatientCall{}, v.History...),
	}
	if v.LastCall != nil {
		c := *v.LastCall
		out.LastCall = &c
	}
	return out
}
