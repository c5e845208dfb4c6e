// Package display holds the consumers of the realtime channel: the TV
// panel that announces calls and the queue boards of the reception desk
// and the physician rooms.
//
// Consumers hydrate from the store when mounted and re-read it whenever an
// event arrives. Event payloads only trigger a refresh (the panel also
// adopts the announced call), so out-of-order delivery across sessions
// cannot leave a stale view behind.
package display

import (
	"context"
	"log"
	"sync"
	"time"

	"backend-medcall/internal/bus"
	"backend-medcall/internal/models"
)

// RecentLimit is how many calls the panel lists under the current one.
const RecentLimit = 5

// CallSource is the read side the panel needs.
type CallSource interface {
	GetLatestCall(ctx context.Context) *models.PatientCall
	GetHistory(ctx context.Context) []models.PatientCall
}

// View is a snapshot of what the panel shows.
type View struct {
	Current     *models.PatientCall  `json:"current"`
	Recent      []models.PatientCall `json:"recent"`
	Highlighted bool                 `json:"highlighted"`
}

// Panel is the public TV display.
type Panel struct {
	src       CallSource
	bus       *bus.Bus
	highlight time.Duration

	// OnChange, when set, receives every new view. It runs outside the
	// panel's lock.
	OnChange func(View)

	mu          sync.Mutex
	current     *models.PatientCall
	recent      []models.PatientCall
	highlighted bool
	timer       *time.Timer
	generation  uint64
	subID       string
}

func NewPanel(src CallSource, b *bus.Bus, highlight time.Duration) *Panel {
	return &Panel{src: src, bus: b, highlight: highlight}
}

// Mount loads the latest call and the calls after it, then listens for
// new_call.
func (p *Panel) Mount(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)

	p.mu.Lock()
	p.current = p.src.GetLatestCall(ctx)
	p.recent = Trailing(p.src.GetHistory(ctx))
	p.mu.Unlock()

	p.subID = bus.OnNewCall(p.bus, func(call models.PatientCall) {
		p.announce(ctx, call)
	})
	p.notify()
}

// Unmount stops listening and cancels a pending highlight.
func (p *Panel) Unmount() {
	if p.subID != "" {
		p.bus.Unsubscribe(p.subID)
		p.subID = ""
	}

	p.mu.Lock()
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.highlighted = false
	p.mu.Unlock()
}

func (p *Panel) View() View {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.viewLocked()
}

func (p *Panel) announce(ctx context.Context, call models.PatientCall) {
	recent := Trailing(p.src.GetHistory(ctx))

	p.mu.Lock()
	p.current = &call
	p.recent = recent
	p.highlighted = true
	p.generation++
	gen := p.generation
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(p.highlight, func() { p.endHighlight(gen) })
	p.mu.Unlock()

	log.Printf("[display] calling %s -> room %s", call.PatientName, call.RoomName)
	p.notify()
}

// endHighlight ignores timers superseded by a newer call.
func (p *Panel) endHighlight(gen uint64) {
	p.mu.Lock()
	if gen != p.generation || !p.highlighted {
		p.mu.Unlock()
		return
	}
	p.highlighted = false
	p.timer = nil
	p.mu.Unlock()

	p.notify()
}

func (p *Panel) notify() {
	if p.OnChange == nil {
		return
	}
	p.OnChange(p.View())
}

func (p *Panel) viewLocked() View {
	v := View{
		Recent:      append([]models.PatientCall{}, p.recent...),
		Highlighted: p.highlighted,
	}
	if p.current != nil {
		c := *p.current
		v.Current = &c
	}
	return v
}

// Trailing skips history[0], which is already shown as the current call.
func Trailing(history []models.PatientCall) []models.PatientCall {
	if len(history) <= 1 {
		return []models.PatientCall{}
	}
	end := min(len(history), RecentLimit+1)
	return append([]models.PatientCall{}, history[1:end]...)
}
