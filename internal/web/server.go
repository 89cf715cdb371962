// Package web provides an HTTP status server for the forcepad daemon.
package web

import (
	"context"
	"log/slog"
	"net"
	"net/http"

	"github.com/sweeney/forcepad/internal/status"
)

// EventSnapshot tags status messages pushed over the websocket.
const EventSnapshot = "SNAPSHOT"

// Server serves the status page over HTTP and pushes snapshots over /ws.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
	hub        *Hub
	logger     *slog.Logger
}

// New creates a Server that reads state from the given tracker.
// The hub must be started with Run before websocket clients receive pushes.
func New(addr string, tracker *status.Tracker, logger *slog.Logger) *Server {
	s := &Server{
		tracker: tracker,
		hub:     NewHub(logger, HubConfig{}),
		logger:  logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/index.html", s.handleIndex)
	mux.HandleFunc("/index.json", s.handleJSON)
	mux.HandleFunc("/ws", s.handleWS)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

// Hub returns the websocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Run runs the websocket hub until ctx is canceled.
func (s *Server) Run(ctx context.Context) {
	s.hub.Run(ctx)
}

// Broadcast pushes the current snapshot to every websocket client.
// It never blocks.
func (s *Server) Broadcast() {
	s.hub.BroadcastBytes(status.FormatStatusEvent(s.tracker.Snapshot(), EventSnapshot, ""))
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := renderHTML(w, snap); err != nil {
		s.logger.Warn("render status page", "error", err)
	}
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(snap))
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("ws upgrade failed", "error", err)
		return
	}

	client := newClient(s.hub, conn, r.RemoteAddr)
	// Queued before registration so the hub cannot have closed send yet.
	client.send <- status.FormatStatusEvent(s.tracker.Snapshot(), EventSnapshot, "")
	s.hub.register <- client

	// Pumps outlive the request; the hub and read/write errors end them.
	go client.writePump()
	go client.readPump()
}
