package realtime

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"backend-medcall/internal/bus"

	"github.com/gofiber/websocket/v2"
)

const (
	writeTimeout = 3 * time.Second
	// maxWorkers caps concurrent writes during one broadcast.
	maxWorkers = 20
)

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Client - satu koneksi display yang terdaftar di hub
type Client struct {
	ID   string
	conn Conn

	writeMux sync.Mutex
	closed   bool
}

func NewClient(id string, conn Conn) *Client {
	return &Client{ID: id, conn: conn}
}

// Write sends one text frame. After the first failure the client is
// marked closed and further writes are no-ops.
func (c *Client) Write(msg []byte) error {
	c.writeMux.Lock()
	defer c.writeMux.Unlock()

	if c.closed {
		return nil
	}

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		c.closed = true
		return err
	}
	return nil
}

// WritePing sends a ping control frame.
func (c *Client) WritePing() error {
	c.writeMux.Lock()
	defer c.writeMux.Unlock()

	if c.closed {
		return nil
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(websocket.PingMessage, nil)
}

func (c *Client) close() {
	c.writeMux.Lock()
	c.closed = true
	c.writeMux.Unlock()
	_ = c.conn.Close()
}

// Hub fans bus envelopes out to every connected display client.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client
	Broadcast  chan []byte

	clients map[*Client]bool
	count   atomic.Int64
	done    chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Broadcast:  make(chan []byte, 64),
		clients:    make(map[*Client]bool),
		done:       make(chan struct{}),
	}
}

// Add registers c. It returns false once the hub has stopped.
func (h *Hub) Add(c *Client) bool {
	select {
	case h.Register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Remove unregisters and closes c. After the hub has stopped it only
// closes c.
func (h *Hub) Remove(c *Client) {
	select {
	case h.Unregister <- c:
	case <-h.done:
		c.close()
	}
}

// Clients returns the number of registered clients.
func (h *Hub) Clients() int {
	return int(h.count.Load())
}

// Run owns the client set until ctx is done; then every client is closed.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				c.close()
				delete(h.clients, c)
			}
			h.count.Store(0)
			return
		case c := <-h.Register:
			h.clients[c] = true
			h.count.Store(int64(len(h.clients)))
			log.Printf("[ws] %s registered, total: %d", c.ID, len(h.clients))
		case c := <-h.Unregister:
			if h.clients[c] {
				delete(h.clients, c)
				c.close()
				h.count.Store(int64(len(h.clients)))
				log.Printf("[ws] %s unregistered, total: %d", c.ID, len(h.clients))
			}
		case msg := <-h.Broadcast:
			for _, c := range h.fanOut(msg) {
				delete(h.clients, c)
				c.close()
				log.Printf("[ws] %s removed after write error", c.ID)
			}
			h.count.Store(int64(len(h.clients)))
		}
	}
}

// fanOut writes msg to all clients with a bounded worker pool and returns
// the clients whose write failed.
func (h *Hub) fanOut(msg []byte) []*Client {
	if len(h.clients) == 0 {
		return nil
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed []*Client
	)
	sem := make(chan struct{}, maxWorkers)

	for c := range h.clients {
		wg.Add(1)
		sem <- struct{}{}
		go func(c *Client) {
			defer wg.Done()
			defer func() { <-sem }()
			if err := c.Write(msg); err != nil {
				log.Printf("[ws] %s write error: %v", c.ID, err)
				mu.Lock()
				failed = append(failed, c)
				mu.Unlock()
			}
		}(c)
	}
	wg.Wait()
	return failed
}

// Attach forwards new_call and queue_updated from b to every client as
// the raw envelope. It returns the subscription ids.
func (h *Hub) Attach(b *bus.Bus) []string {
	forward := func(env bus.Envelope) {
		msg, err := json.Marshal(env)
		if err != nil {
			log.Printf("[ws] encode %s: %v", env.Event, err)
			return
		}
		select {
		case h.Broadcast <- msg:
		default:
			log.Printf("[ws] broadcast buffer full, dropping %s", env.Event)
		}
	}

	return []string{
		b.Subscribe(bus.EventNewCall, forward),
		b.Subscribe(bus.EventQueueUpdated, forward),
	}
}
