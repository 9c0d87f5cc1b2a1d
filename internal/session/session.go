// Package session implements the per-connection coordinator: the
// state machine that turns a raw transport byte stream into typed
// game-actor commands, pumps outbound messages back out, and runs the
// heartbeat watchdog. Grounded on the triple-select loop in
// original_source/backend/src/session.rs, translated into Go's native
// select over three channels instead of tokio::select!.
package session

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/lindqvist/pokerd/internal/game"
	"github.com/lindqvist/pokerd/internal/protocol"
)

// Timing constants, pinned by spec.md §4.D and the Rust session.rs
// HEARTBEAT_INTERVAL/CLIENT_TIMEOUT constants.
const (
	heartbeatInterval = 5 * time.Second
	idleTimeout       = 10 * time.Second
)

// Framing selects how inbound/outbound bytes are encoded on the wire,
// fixed once per session by the ?mode= query parameter.
type Framing int

const (
	// FramingJSON is the round-trip-safe framing, selected by ?mode=json.
	FramingJSON Framing = iota
	// FramingText is the human-readable, intentionally lossy framing,
	// and the fallback for every other (or missing) mode value.
	FramingText
)

// ParseFraming maps a mode query value to a Framing: "json" opts into
// JSON framing, anything else (empty, missing, or unrecognized) falls
// back to line-text framing, matching spec.md §4.D and the Rust
// Option<Mode> match in session.rs (Some(Mode::Json) is the only
// explicit case; None and everything else render as text).
func ParseFraming(mode string) Framing {
	if mode == "json" {
		return FramingJSON
	}

	return FramingText
}

type state int

const (
	stateUnidentified state = iota
	stateIdentified
	stateClosed
)

// Conn is the subset of *websocket.Conn a Session needs. Abstracted so
// tests can drive a Session without a real network socket.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetReadDeadline(t time.Time) error
	SetPingHandler(h func(appData string) error)
	SetPongHandler(h func(appData string) error)
	Close() error
}

// Session is one connection's coordinator. One goroutine runs Run; a
// second goroutine (spawned by Run) only reads frames off the socket
// and forwards them, exactly the split the teacher's handleWebSocket
// uses (upgrade in one goroutine, blocking read loop in another).
type Session struct {
	conn    Conn
	framing Framing
	handle  game.Handle
	logger  *zap.Logger

	state  state
	connID game.ConnId

	tx           chan protocol.Outbound
	lastActivity time.Time
}

// New constructs a Session. tx is the outbound sink the game actor
// will be given at Connect time; it must be created before the
// session can identify, since game.Handle.Connect takes it as an
// argument.
func New(conn Conn, framing Framing, handle game.Handle, logger *zap.Logger) *Session {
	return &Session{
		conn:    conn,
		framing: framing,
		handle:  handle,
		logger:  logger,
		state:   stateUnidentified,
		tx:      game.NewOutboundSink(),
	}
}

type inboundFrame struct {
	data []byte
	err  error
}

// Run drives the session until the connection closes, a heartbeat
// timeout fires, or ctx is canceled. On close it issues a best-effort
// Disconnect if the session had identified; the admission token is
// released by the caller's defer.
func (s *Session) Run(ctx context.Context) {
	inbound := make(chan inboundFrame)

	go s.readLoop(inbound)

	s.conn.SetPingHandler(func(data string) error {
		s.lastActivity = time.Now()

		deadline := time.Now().Add(time.Second)

		return s.conn.WriteControl(websocket.PongMessage, []byte(data), deadline)
	})

	s.conn.SetPongHandler(func(string) error {
		s.lastActivity = time.Now()

		return nil
	})

	s.lastActivity = time.Now()

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for s.state != stateClosed {
		select {
		case frame, ok := <-inbound:
			if !ok {
				s.closeSession("")

				continue
			}

			if frame.err != nil {
				s.logger.Debug("read error, closing session", zap.Error(frame.err))
				s.closeSession("")

				continue
			}

			s.lastActivity = time.Now()
			s.handleFrame(frame.data)

		case msg, ok := <-s.tx:
			if !ok {
				s.closeSession("")

				continue
			}

			s.writeOutbound(msg)

		case <-ticker.C:
			if time.Since(s.lastActivity) > idleTimeout {
				s.logger.Debug("heartbeat timeout, closing session")
				s.closeSession("")

				continue
			}

			deadline := time.Now().Add(heartbeatInterval)
			if err := s.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				s.logger.Debug("ping failed, closing session", zap.Error(err))
				s.closeSession("")
			}

		case <-ctx.Done():
			s.closeSession("")
		}
	}
}

func (s *Session) readLoop(inbound chan<- inboundFrame) {
	defer close(inbound)

	for {
		messageType, data, err := s.conn.ReadMessage()
		if err != nil {
			inbound <- inboundFrame{err: err}

			return
		}

		if messageType == websocket.BinaryMessage {
			s.logger.Warn("ignoring unexpected binary frame")

			continue
		}

		inbound <- inboundFrame{data: data}
	}
}

func (s *Session) decode(data []byte) protocol.Inbound {
	if s.framing == FramingText {
		return protocol.DecodeLine(string(data))
	}

	return protocol.DecodeJSON(data)
}

func (s *Session) handleFrame(data []byte) {
	msg := s.decode(data)

	switch msg.Kind {
	case protocol.InboundConnect:
		s.handleConnect(msg.Nickname)
	case protocol.InboundVote:
		if s.state == stateIdentified {
			s.handle.Vote(s.connID, msg.Vote)
		} else {
			s.logger.Debug("ignoring vote before identification")
		}
	case protocol.InboundSetStatus:
		if s.state == stateIdentified {
			s.handle.SetStatus(s.connID, msg.Status)
		} else {
			s.logger.Debug("ignoring setstatus before identification")
		}
	case protocol.InboundUnknown:
		s.logger.Debug("ignoring unrecognized or malformed inbound frame")
	}
}

func (s *Session) handleConnect(nickname string) {
	if s.state == stateIdentified {
		s.logger.Debug("ignoring connect, already identified")

		return
	}

	id, err := s.handle.Connect(s.tx, nickname)
	if err != nil {
		s.closeSession(err.Error())

		return
	}

	s.connID = id
	s.state = stateIdentified
}

func (s *Session) writeOutbound(msg protocol.Outbound) {
	var (
		payload []byte
		err     error
	)

	if s.framing == FramingText {
		var text string

		text, err = protocol.EncodeLine(msg)
		payload = []byte(text)
	} else {
		payload, err = protocol.EncodeJSON(msg)
	}

	if err != nil {
		s.logger.Error("failed to encode outbound message", zap.Error(err))

		return
	}

	if werr := s.conn.WriteMessage(websocket.TextMessage, payload); werr != nil {
		s.logger.Debug("write failed, closing session", zap.Error(werr))
		s.closeSession("")
	}
}

// closeSession transitions to Closed, issues a best-effort Disconnect
// if the session had identified, and sends a close frame. reason, if
// non-empty, becomes the 1008 policy-violation description (nickname
// errors only); every other path closes with no description.
func (s *Session) closeSession(reason string) {
	if s.state == stateClosed {
		return
	}

	s.state = stateClosed

	if s.connID != (game.ConnId{}) {
		s.handle.Disconnect(s.connID)
	}

	var closeMsg []byte
	if reason != "" {
		closeMsg = websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason)
	} else {
		closeMsg = websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	}

	deadline := time.Now().Add(time.Second)
	_ = s.conn.WriteControl(websocket.CloseMessage, closeMsg, deadline)
	_ = s.conn.Close()
}
