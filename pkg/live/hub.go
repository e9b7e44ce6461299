// Package live streams readings to websocket clients as JSON telemetry.
package live

import (
	"context"
	"io"
	"net/http"
	"sync"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	"github.com/robotalks/tmon/pkg/msgs"
	"github.com/robotalks/tmon/pkg/reading"
)

// DefaultBacklog is the number of messages queued per client.
const DefaultBacklog = 16

type client struct {
	ch chan []byte
}

// Hub is a reading.Sink broadcasting to all connected clients. Slow
// clients lose messages instead of blocking the sink.
type Hub struct {
	Backlog int

	lock    sync.Mutex
	clients map[*client]struct{}
	dropped uint64
}

// NewHub creates a Hub.
func NewHub() *Hub {
	return &Hub{Backlog: DefaultBacklog, clients: make(map[*client]struct{})}
}

// Handler returns the websocket endpoint.
func (h *Hub) Handler() http.Handler {
	return websocket.Handler(h.serve)
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.lock.Lock()
	defer h.lock.Unlock()
	return len(h.clients)
}

// Dropped returns the number of messages dropped for slow clients.
func (h *Hub) Dropped() uint64 {
	h.lock.Lock()
	defer h.lock.Unlock()
	return h.dropped
}

// Insert implements reading.Sink.
func (h *Hub) Insert(ctx context.Context, r reading.Reading) error {
	data, err := msgs.Encode(r, msgs.JSON)
	if err != nil {
		return err
	}
	h.lock.Lock()
	defer h.lock.Unlock()
	for c := range h.clients {
		select {
		case c.ch <- data:
		default:
			h.dropped++
		}
	}
	return nil
}

func (h *Hub) add() *client {
	backlog := h.Backlog
	if backlog <= 0 {
		backlog = DefaultBacklog
	}
	c := &client{ch: make(chan []byte, backlog)}
	h.lock.Lock()
	if h.clients == nil {
		h.clients = make(map[*client]struct{})
	}
	h.clients[c] = struct{}{}
	h.lock.Unlock()
	return c
}

func (h *Hub) remove(c *client) {
	h.lock.Lock()
	delete(h.clients, c)
	h.lock.Unlock()
}

func (h *Hub) serve(ws *websocket.Conn) {
	c := h.add()
	defer h.remove(c)
	glog.V(2).Infof("live: %s connected", ws.Request().RemoteAddr)

	closed := make(chan struct{})
	go func() {
		io.Copy(io.Discard, ws)
		close(closed)
	}()
	for {
		select {
		case data := <-c.ch:
			if err := websocket.Message.Send(ws, string(data)); err != nil {
				glog.V(2).Infof("live: send: %v", err)
				return
			}
		case <-closed:
			glog.V(2).Infof("live: %s disconnected", ws.Request().RemoteAddr)
			return
		}
	}
}
