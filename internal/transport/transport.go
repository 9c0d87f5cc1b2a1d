// Package transport wires the HTTP/WebSocket surface: admission,
// upgrade, and static asset serving. Grounded on the teacher's
// backend/server/server.go (router setup, upgrader, handleWebSocket,
// Start), generalized from the adventure-voter's story/vote domain to
// the Planning Poker session domain described in spec.md §4.F.
package transport

import (
	"io/fs"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/lindqvist/pokerd/internal/admission"
	"github.com/lindqvist/pokerd/internal/game"
	"github.com/lindqvist/pokerd/internal/session"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// Server is the thin HTTP layer in front of the game actor: it admits
// and upgrades connections, then hands each one to its own Session.
type Server struct {
	router    *mux.Router
	handle    game.Handle
	admission *admission.Counter
	staticFS  fs.FS
	logger    *zap.Logger
}

// New builds a Server and wires its routes.
func New(handle game.Handle, adm *admission.Counter, staticFS fs.FS, logger *zap.Logger) *Server {
	s := &Server{
		router:    mux.NewRouter(),
		handle:    handle,
		admission: adm,
		staticFS:  staticFS,
		logger:    logger,
	}

	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/ws", s.handleWebSocket)

	fileServer := http.FileServer(http.FS(s.staticFS))
	s.router.PathPrefix("/").Handler(fileServer)
}

// handleWebSocket admits, then upgrades, then hands off to a Session.
// Admission happens before the upgrade so a denied client gets a plain
// 429 response rather than an upgraded-then-immediately-closed socket
// (spec.md §4.E/§6).
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	token, ok := s.admission.TryAcquire()
	if !ok {
		s.logger.Debug("admission denied", zap.String("limit", s.admission.String()))
		http.Error(w, "too many sessions", http.StatusTooManyRequests)

		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		token.Release()
		s.logger.Error("websocket upgrade failed", zap.Error(err))

		return
	}

	framing := session.ParseFraming(r.URL.Query().Get("mode"))
	sess := session.New(conn, framing, s.handle, s.logger)

	// Run synchronously: net/http cancels r.Context() the instant this
	// handler returns, and the session must outlive the request.
	// http.Server already serves each connection on its own goroutine.
	defer token.Release()

	sess.Run(r.Context())
}

// Start runs the HTTP server on addr until it errors or is shut down.
// Mirrors the teacher's Server.Start shape.
func (s *Server) Start(addr string) error {
	httpServer := http.Server{
		Addr:        addr,
		Handler:     s.router,
		IdleTimeout: time.Minute,
		ReadTimeout: 10 * time.Second,
	}

	return httpServer.ListenAndServe()
}
