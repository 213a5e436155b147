// Package wspubsub streams the events of the escrow to websocket clients.
package wspubsub

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"github.com/zkramp/ramp-daemon/internal/core/ports"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 64
)

// Hub is an EventPublisher fanning out every published message to the
// connected clients subscribed to its topic. Clients that can't keep up
// are disconnected.
type Hub struct {
	upgrader websocket.Upgrader

	lock    *sync.RWMutex
	clients map[string]*client
	closed  bool
}

type client struct {
	id     string
	conn   *websocket.Conn
	topics map[string]struct{}
	send   chan []byte
	once   sync.Once
}

func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		lock:    &sync.RWMutex{},
		clients: make(map[string]*client),
	}
}

// Serve upgrades the request to a websocket connection receiving the
// messages of the given topics, or of all of them if none is given. It
// blocks until the connection is closed.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, topics []string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &client{
		id:     uuid.New().String(),
		conn:   conn,
		topics: make(map[string]struct{}),
		send:   make(chan []byte, sendBufferSize),
	}
	for _, t := range topics {
		if len(t) > 0 && t != ports.AnyTopic {
			c.topics[t] = struct{}{}
		}
	}

	if !h.register(c) {
		conn.Close()
		return nil
	}
	log.Debugf("websocket client %s connected", c.id)

	go h.writePump(c)
	h.readPump(c)
	return nil
}

func (h *Hub) Publish(topic string, message []byte) error {
	h.lock.RLock()
	slow := make([]*client, 0)
	for _, c := range h.clients {
		if !c.wants(topic) {
			continue
		}
		select {
		case c.send <- message:
		default:
			slow = append(slow, c)
		}
	}
	h.lock.RUnlock()

	for _, c := range slow {
		log.Debugf("dropping slow websocket client %s", c.id)
		h.unregister(c)
	}
	return nil
}

// NumClients ...
func (h *Hub) NumClients() int {
	h.lock.RLock()
	defer h.lock.RUnlock()
	return len(h.clients)
}

func (h *Hub) Close() {
	h.lock.Lock()
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.lock.Unlock()

	for _, c := range clients {
		h.unregister(c)
	}
}

func (h *Hub) register(c *client) bool {
	h.lock.Lock()
	defer h.lock.Unlock()

	if h.closed {
		return false
	}
	h.clients[c.id] = c
	return true
}

func (h *Hub) unregister(c *client) {
	h.lock.Lock()
	delete(h.clients, c.id)
	h.lock.Unlock()

	c.once.Do(func() {
		close(c.send)
	})
}

// readPump only serves to detect closed connections and to handle pongs.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
		log.Debugf("websocket client %s disconnected", c.id)
	}()

	c.conn.SetReadLimit(512)
	//nolint
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			//nolint
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				//nolint
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			//nolint
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *client) wants(topic string) bool {
	if len(c.topics) <= 0 {
		return true
	}
	_, ok := c.topics[topic]
	return ok
}
