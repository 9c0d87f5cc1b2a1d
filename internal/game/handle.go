package game

import (
	"github.com/lindqvist/pokerd/internal/protocol"
	"github.com/lindqvist/pokerd/internal/vote"
)

// Handle is the clonable, channel-backed client sessions use to talk
// to the single game actor goroutine. Mirrors the Rust GameHandle in
// original_source/backend/src/game/game_handle.rs.
type Handle struct {
	cmdCh chan<- Command
}

// Connect issues a Connect command and waits for the actor's
// synchronous reply: the caller needs the ConnId (or error) before it
// can transition out of Unidentified.
func (h Handle) Connect(tx chan protocol.Outbound, nickname string) (ConnId, error) {
	reply := make(chan ConnectResult, 1)
	h.cmdCh <- &ConnectCmd{Tx: tx, Nickname: nickname, Reply: reply}
	res := <-reply

	return res.ID, res.Err
}

// Disconnect issues a fire-and-forget Disconnect command.
func (h Handle) Disconnect(id ConnId) {
	h.cmdCh <- &DisconnectCmd{ID: id}
}

// Vote issues a fire-and-forget Vote command.
func (h Handle) Vote(id ConnId, v vote.Vote) {
	h.cmdCh <- &VoteCmd{ID: id, Vote: v}
}

// SetStatus issues a fire-and-forget SetStatus command.
func (h Handle) SetStatus(id ConnId, status protocol.UserStatus) {
	h.cmdCh <- &SetStatusCmd{ID: id, Status: status}
}
