package game

import (
	"github.com/lindqvist/pokerd/internal/protocol"
	"github.com/lindqvist/pokerd/internal/vote"
)

// Command is one unit of work submitted to the game actor's queue.
// Mirrors the Rust Command enum in original_source/backend/src/game/game_handle.rs,
// translated into Go as an interface with one concrete type per
// variant instead of a tagged enum — each variant carries its own
// optional reply channel (nil for fire-and-forget, matching the
// Rust Option<oneshot::Sender<_>>).
type Command interface {
	execute(s *GameServer)
}

// ConnectResult is the synchronous reply to a ConnectCmd.
type ConnectResult struct {
	ID  ConnId
	Err error
}

// ConnectCmd registers a new user under nickname, wiring tx as its
// exclusive outbound sink.
type ConnectCmd struct {
	Tx       chan protocol.Outbound
	Nickname string
	Reply    chan ConnectResult
}

func (c *ConnectCmd) execute(s *GameServer) {
	id, err := s.connect(c.Tx, c.Nickname)
	if c.Reply != nil {
		c.Reply <- ConnectResult{ID: id, Err: err}
	}
}

// DisconnectCmd removes a user. Idempotent: a stale or unknown ID is
// silently ignored.
type DisconnectCmd struct {
	ID    ConnId
	Reply chan struct{}
}

func (c *DisconnectCmd) execute(s *GameServer) {
	s.disconnect(c.ID)
	if c.Reply != nil {
		close(c.Reply)
	}
}

// VoteCmd casts or clears a vote for an identified user.
type VoteCmd struct {
	ID    ConnId
	Vote  vote.Vote
	Reply chan struct{}
}

func (c *VoteCmd) execute(s *GameServer) {
	s.vote(c.ID, c.Vote)
	if c.Reply != nil {
		close(c.Reply)
	}
}

// SetStatusCmd changes a user's presence.
type SetStatusCmd struct {
	ID     ConnId
	Status protocol.UserStatus
	Reply  chan struct{}
}

func (c *SetStatusCmd) execute(s *GameServer) {
	s.setStatus(c.ID, c.Status)
	if c.Reply != nil {
		close(c.Reply)
	}
}
