// Package monitor is a live websocket viewer for a running Intcode
// pipeline. It is the generalized form of the teacher project's own
// evolution-simulation visualizer (websocket.go there): the same
// register/unregister/broadcast Hub, the same per-connection read/write
// pump pair, now broadcasting decoded VM output values instead of soup
// color indices. Attaching a monitor never perturbs a VM's own
// backpressure contract (§5 of the spec) — see Tap, below, for why.
package monitor

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// writeWait is how long a single websocket write may take before the
	// connection is considered dead.
	writeWait = 10 * time.Second

	// maxMessageSize bounds inbound control messages from a viewer; the
	// monitor is broadcast-only so this is generous rather than load-bearing.
	maxMessageSize = 512

	// broadcastBuffer is the Hub's broadcast channel capacity. It absorbs
	// bursts of output values without ever blocking the goroutine that taps
	// a VM's port.
	broadcastBuffer = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Event is one observed value flowing out of a tapped VM, in the order the
// Hub's own broadcast channel received it (Seq is a per-tap monotonic
// counter, not a wall-clock timestamp, since the VM core stamps nothing
// that could mislead a viewer about real time).
type Event struct {
	VM    string `json:"vm"`
	Seq   int64  `json:"seq"`
	Value int64  `json:"value"`
}

// Hub fans broadcast messages out to every connected viewer. Exactly one
// goroutine should call Run.
type Hub struct {
	clients    map[*Client]bool
	Broadcast  chan []byte
	Register   chan *Client
	Unregister chan *Client
}

// NewHub constructs a Hub ready to have Run started on it.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		Broadcast:  make(chan []byte, broadcastBuffer),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Run drives the Hub's registration and broadcast loop until the process
// exits. Intended to be started once, with `go`.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.Register:
			h.clients[c] = true
		case c := <-h.Unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
		case msg := <-h.Broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// A slow viewer's buffer is full; drop the message
					// rather than block the Hub (and transitively, the
					// goroutine tapping the VM). The viewer just misses a
					// frame; a dead connection is caught by writePump's
					// write deadline instead.
				}
			}
		}
	}
}

// BroadcastEvent marshals ev to JSON and enqueues it on the Hub's broadcast
// channel without blocking the caller.
func (h *Hub) BroadcastEvent(ev Event) {
	b, err := json.Marshal(ev)
	if err != nil {
		log.Printf("monitor: error marshalling event: %v", err)
		return
	}
	select {
	case h.Broadcast <- b:
	default:
		log.Println("monitor: broadcast channel full, dropping event")
	}
}
