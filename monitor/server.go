package monitor

import (
	"context"
	"log"
	"net/http"

	"intcode/vm"
)

// Server wires a Hub to an HTTP mux exposing a single /ws upgrade endpoint,
// mirroring the teacher project's StartServer.
type Server struct {
	hub  *Hub
	addr string
	srv  *http.Server
}

// NewServer constructs a monitor server that will listen on addr once
// Start is called.
func NewServer(hub *Hub, addr string) *Server {
	mux := http.NewServeMux()
	s := &Server{hub: hub, addr: addr}
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ServeWS(hub, w, r)
	})
	s.srv = &http.Server{Addr: addr, Handler: mux}
	return s
}

// Start runs the Hub and the HTTP server. It blocks until the server stops
// (normally via Shutdown from another goroutine) and returns the server's
// final error, ignoring the expected http.ErrServerClosed.
func (s *Server) Start() error {
	go s.hub.Run()
	log.Printf("monitor: listening on %s (ws://%s/ws)", s.addr, s.addr)
	err := s.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Tap sits between a VM's output port and its downstream consumer,
// forwarding every value unchanged while broadcasting it to hub as an
// Event tagged with name. Forwarding is always a plain channel send or a
// non-blocking broadcast; the Hub's own internal drop-when-full policy
// (§5 of the spec) is what keeps a slow viewer from ever propagating
// backpressure into the tapped VM. Tap closes downstream when upstream
// closes, same as LoggingConnector.
func Tap(hub *Hub, name string, upstream <-chan vm.Cell, downstream chan<- vm.Cell) {
	var seq int64
	defer close(downstream)
	for v := range upstream {
		hub.BroadcastEvent(Event{VM: name, Seq: seq, Value: int64(v)})
		seq++
		downstream <- v
	}
}
