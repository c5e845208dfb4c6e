package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"backend-medcall/internal/display"
	"backend-medcall/internal/models"
	"backend-medcall/internal/realtime"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const (
	pongWait     = 60 * time.Second
	pingInterval = 20 * time.Second
)

var clientCounter uint64

// Snapshot is the first frame every display client receives.
type Snapshot struct {
	Type   string                  `json:"type"`
	Latest *models.PatientCall     `json:"latest"`
	Recent []models.PatientCall    `json:"recent"`
	Queue  []models.WaitingPatient `json:"queue"`
}

// UpgradeCheck - hanya request websocket yang boleh lewat
func UpgradeCheck(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

func (h *Handler) snapshot() ([]byte, error) {
	ctx := context.Background()
	history := h.sess.GetHistory(ctx)

	return json.Marshal(Snapshot{
		Type:   "snapshot",
		Latest: h.sess.GetLatestCall(ctx),
		Recent: display.Trailing(history),
		Queue:  h.sess.GetWaitingList(ctx),
	})
}

// joinDisplay registers client on the hub and only then sends the
// snapshot, so no event published in between is lost. An event frame may
// arrive before the snapshot.
func (h *Handler) joinDisplay(client *realtime.Client) bool {
	if !h.hub.Add(client) {
		return false
	}

	msg, err := h.snapshot()
	if err != nil {
		log.Printf("[ws] %s snapshot: %v", client.ID, err)
		h.hub.Remove(client)
		return false
	}
	if err := client.Write(msg); err != nil {
		log.Printf("[ws] %s snapshot write: %v", client.ID, err)
		h.hub.Remove(client)
		return false
	}
	return true
}

// DisplayWebSocket - GET /ws/display. Daftar ke hub, snapshot, lalu setiap event bus.
func (h *Handler) DisplayWebSocket(c *websocket.Conn) {
	id := atomic.AddUint64(&clientCounter, 1)
	client := realtime.NewClient(fmt.Sprintf("display-%d", id), c)

	log.Printf("[ws] %s connecting from %s", client.ID, c.RemoteAddr())

	if !h.joinDisplay(client) {
		return
	}
	defer h.hub.Remove(client)

	_ = c.SetReadDeadline(time.Now().Add(pongWait))
	c.SetPongHandler(func(string) error {
		return c.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)

	go func() {
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := client.WritePing(); err != nil {
					log.Printf("[ws] %s ping error: %v", client.ID, err)
					return
				}
			case <-done:
				return
			}
		}
	}()

	// Read loop
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure,
			) {
				log.Printf("[ws] %s unexpected close: %v", client.ID, err)
			} else {
				log.Printf("[ws] %s closed normally", client.ID)
			}
			return
		}
	}
}
