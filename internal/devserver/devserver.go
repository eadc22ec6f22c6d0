// Package devserver implements the watch/serve domain-stack component:
// an HTTP server that upgrades to a websocket per client and pushes a
// freshly compiled Tape Language program every time the watched .bas
// file's contents change.
//
// The client registry and broadcast-on-event shape are grounded on
// _teacher_network/websocket_server.go's WSServers/Clients maps and
// WebSocketBroadcast method; the poll loop is grounded on
// _teacher_build/builder.go's Watch() method, which only stubs "rebuild
// on change" -- this package actually implements the poll and the
// rebuild-diff check that stub never did.
package devserver

import (
	"encoding/json"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/RyanMarcus/basicaf/internal/compile"
)

// Result is what each client receives after a recompile: either Output
// holds the new Tape Language source, or Err holds the compile error's
// message -- never both.
type Result struct {
	BuildID string `json:"build_id"`
	Output  string `json:"output,omitempty"`
	Err     string `json:"error,omitempty"`
}

// Server watches one BASIC source file and recompiles it on change,
// broadcasting the Result to every connected websocket client.
type Server struct {
	Path string
	Opts compile.Options
	Poll time.Duration

	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]*websocket.Conn

	lastContent string
}

// New constructs a Server polling path every interval (a zero interval
// defaults to one second).
func New(path string, opts compile.Options, interval time.Duration) *Server {
	if interval <= 0 {
		interval = time.Second
	}
	return &Server{
		Path:    path,
		Opts:    opts,
		Poll:    interval,
		clients: make(map[string]*websocket.Conn),
	}
}

// ServeWS upgrades the request to a websocket connection and registers
// it as a broadcast target until the client disconnects.
func (s *Server) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	id := uuid.New().String()
	s.mu.Lock()
	s.clients[id] = conn
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.clients, id)
		s.mu.Unlock()
		conn.Close()
	}()

	// block reading until the client disconnects; this server never
	// expects client-to-server messages.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Broadcast sends result to every connected client, dropping and
// unregistering any client whose write fails.
func (s *Server) Broadcast(result Result) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return errors.Wrap(err, "devserver: marshal result")
	}

	s.mu.RLock()
	targets := make(map[string]*websocket.Conn, len(s.clients))
	for id, c := range s.clients {
		targets[id] = c
	}
	s.mu.RUnlock()

	var lastErr error
	for id, c := range targets {
		if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
			lastErr = err
			s.mu.Lock()
			delete(s.clients, id)
			s.mu.Unlock()
		}
	}
	return lastErr
}

// Recompile reads Path, compiles it, and returns the Result that would be
// broadcast -- exposed separately from the poll loop so callers (and
// tests) can trigger one recompile without a running ticker.
func (s *Server) Recompile() Result {
	buildID := uuid.New().String()

	content, err := os.ReadFile(s.Path)
	if err != nil {
		return Result{BuildID: buildID, Err: err.Error()}
	}

	out, err := compile.Compile(string(content), s.Opts)
	if err != nil {
		return Result{BuildID: buildID, Err: err.Error()}
	}

	return Result{BuildID: buildID, Output: out}
}

// Watch polls Path every s.Poll and broadcasts a fresh Result whenever
// its contents differ from the last seen version, until stop is closed.
func (s *Server) Watch(stop <-chan struct{}) error {
	ticker := time.NewTicker(s.Poll)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return nil
		case <-ticker.C:
			content, err := os.ReadFile(s.Path)
			if err != nil {
				continue
			}
			if string(content) == s.lastContent {
				continue
			}
			s.lastContent = string(content)
			s.Broadcast(s.Recompile())
		}
	}
}
