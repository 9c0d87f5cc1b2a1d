// Package game implements the single-owner game actor: the state
// machine that holds the entire Planning Poker room and serializes
// every mutation through a command queue, as spec.md §4.C describes.
// Grounded throughout on original_source/backend/src/game/game.rs.
package game

import (
	"context"
	"sort"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/lindqvist/pokerd/internal/protocol"
	"github.com/lindqvist/pokerd/internal/vote"
)

// maxNicknameBytes is the truncation limit from spec.md §4.C step 4.
const maxNicknameBytes = 20

// outboundBuffer bounds each user's outbound sink. A slow or wedged
// session drops further messages rather than ever stalling the actor
// (spec.md §9 "Back-pressure" — see DESIGN.md for the policy choice).
const outboundBuffer = 64

// User is one room member, keyed by ConnId in the actor's room map.
type User struct {
	Nickname string
	Status   protocol.UserStatus
	Vote     vote.Vote
	Ord      uint64
	tx       chan protocol.Outbound
}

// GameServer owns the entire room: nothing outside its own goroutine
// ever reads or writes a User. All mutation arrives as a Command on
// cmdCh and is processed strictly in FIFO order.
type GameServer struct {
	users  map[ConnId]*User
	cmdCh  chan Command
	logger *zap.Logger
}

// NewGameServer creates an unstarted actor and the Handle sessions use
// to reach it. Call Run to start consuming commands.
func NewGameServer(logger *zap.Logger) (*GameServer, Handle) {
	cmdCh := make(chan Command)
	s := &GameServer{
		users:  make(map[ConnId]*User),
		cmdCh:  cmdCh,
		logger: logger,
	}

	return s, Handle{cmdCh: cmdCh}
}

// Run consumes commands until ctx is canceled. It never returns early
// for any other reason — a panic here would take the whole room down,
// so every command handler below is infallible by construction.
func (s *GameServer) Run(ctx context.Context) {
	for {
		select {
		case cmd := <-s.cmdCh:
			cmd.execute(s)
		case <-ctx.Done():
			return
		}
	}
}

// NewOutboundSink allocates a fresh per-connection outbound channel,
// sized per outboundBuffer. Sessions call this once at connection
// start, before they have a ConnId, and pass the channel into Connect.
func NewOutboundSink() chan protocol.Outbound {
	return make(chan protocol.Outbound, outboundBuffer)
}

func truncateNickname(nickname string) string {
	if len(nickname) <= maxNicknameBytes {
		return nickname
	}

	n := maxNicknameBytes
	for n > 0 && !utf8.RuneStart(nickname[n]) {
		n--
	}

	return nickname[:n]
}

func (s *GameServer) validateNickname(nickname string) (string, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		s.logger.Error("nickname cannot be empty")

		return "", ErrNicknameEmpty
	}

	for _, u := range s.users {
		if u.Nickname == nickname {
			s.logger.Error("nickname already in use", zap.String("nickname", nickname))

			return "", &NicknameTakenError{Nickname: nickname}
		}
	}

	if len(nickname) > maxNicknameBytes {
		truncated := truncateNickname(nickname)
		s.logger.Warn("nickname too long, truncating",
			zap.String("nickname", nickname), zap.String("truncated", truncated))
		nickname = truncated
	}

	return nickname, nil
}

func (s *GameServer) connect(tx chan protocol.Outbound, nickname string) (ConnId, error) {
	nickname, err := s.validateNickname(nickname)
	if err != nil {
		return ConnId{}, err
	}

	id := NewConnId()
	s.users[id] = &User{
		Nickname: nickname,
		Status:   protocol.Active,
		Vote:     vote.Null,
		Ord:      0,
		tx:       tx,
	}

	s.logger.Info("user identified", zap.String("nickname", nickname), zap.Stringer("conn", id))

	s.broadcast(s.userListSummary())
	if s.anyoneVoted() {
		s.broadcast(s.votesSummary())
	}

	return id, nil
}

func (s *GameServer) disconnect(id ConnId) {
	if u, ok := s.users[id]; ok {
		s.logger.Info("user disconnected", zap.String("nickname", u.Nickname), zap.Stringer("conn", id))
		close(u.tx)
		delete(s.users, id)
	}

	s.broadcast(s.userListSummary())
}

func (s *GameServer) vote(id ConnId, v vote.Vote) {
	var maxOrd uint64
	for _, u := range s.users {
		if u.Ord > maxOrd {
			maxOrd = u.Ord
		}
	}

	if u, ok := s.users[id]; ok {
		u.Vote = v
		u.Ord = maxOrd + 1
		s.send(id, protocol.YourVote(v))
	}

	s.broadcast(s.votesSummary())

	if s.allVoted() {
		s.resetVotes()
	}
}

func (s *GameServer) setStatus(id ConnId, status protocol.UserStatus) {
	if u, ok := s.users[id]; ok {
		u.Status = status
	}

	s.send(id, protocol.YourStatus(status))
	s.broadcast(s.userListSummary())
}

// allVoted reports whether every Active user currently holds a valid
// vote. True (vacuously) for the empty room — spec.md §8 invariant 4.
func (s *GameServer) allVoted() bool {
	for _, u := range s.users {
		if u.Status == protocol.Away {
			continue
		}

		if !u.Vote.IsValid() {
			return false
		}
	}

	return true
}

// anyoneVoted reports whether some Active user already holds a valid
// vote — used to decide whether a newcomer gets an immediate votes
// summary on top of the roster.
func (s *GameServer) anyoneVoted() bool {
	for _, u := range s.users {
		if u.Status == protocol.Active && u.Vote.IsValid() {
			return true
		}
	}

	return false
}

func (s *GameServer) userListSummary() protocol.Outbound {
	users := make([]string, 0, len(s.users))
	for _, u := range s.users {
		if u.Status == protocol.Active {
			users = append(users, u.Nickname)
		}
	}

	sort.Strings(users)

	return protocol.UserList(users)
}

func (s *GameServer) votesSummary() protocol.Outbound {
	if s.allVoted() {
		return s.voteResultSummary()
	}

	return s.voteStatusSummary()
}

func (s *GameServer) voteStatusSummary() protocol.Outbound {
	type row struct {
		nickname string
		status   vote.Status
		ord      uint64
	}

	var rows []row

	for _, u := range s.users {
		if u.Status != protocol.Active {
			continue
		}

		rows = append(rows, row{nickname: u.Nickname, status: u.Vote.Status(), ord: u.Ord})
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.status != b.status {
			return a.status == vote.Voted
		}

		if a.status == vote.Voted {
			return a.ord < b.ord
		}

		return a.nickname < b.nickname
	})

	out := make([]protocol.NickStatus, len(rows))
	for i, r := range rows {
		out[i] = protocol.NickStatus{Nickname: r.nickname, Status: r.status}
	}

	return protocol.VotesStatus(out)
}

func (s *GameServer) voteResultSummary() protocol.Outbound {
	type row struct {
		nickname string
		vote     vote.Vote
		ord      uint64
	}

	var rows []row

	for _, u := range s.users {
		if u.Status != protocol.Active {
			continue
		}

		rows = append(rows, row{nickname: u.Nickname, vote: u.Vote, ord: u.Ord})
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].ord < rows[j].ord })

	out := make([]protocol.NickVote, len(rows))
	for i, r := range rows {
		out[i] = protocol.NickVote{Nickname: r.nickname, Vote: r.vote}
	}

	return protocol.VotesResult(out)
}

func (s *GameServer) resetVotes() {
	for _, u := range s.users {
		u.Vote = vote.Null
		u.Ord = 0
	}
}

// broadcast enqueues msg on every current user's sink. A full sink is
// logged and skipped — one bad recipient must never abort the broadcast
// (spec.md §7). Sinks are closed only by disconnect, which removes the
// user in the same step, so no closed sink is ever sent on.
func (s *GameServer) broadcast(msg protocol.Outbound) {
	for id, u := range s.users {
		s.sendTo(id, u, msg)
	}
}

// send enqueues msg on a single user's sink; an unknown ID is
// silently ignored (spec.md §7 UserNotFound disposition).
func (s *GameServer) send(id ConnId, msg protocol.Outbound) {
	u, ok := s.users[id]
	if !ok {
		return
	}

	s.sendTo(id, u, msg)
}

func (s *GameServer) sendTo(id ConnId, u *User, msg protocol.Outbound) {
	select {
	case u.tx <- msg:
	default:
		s.logger.Warn("dropping message to slow or full sink", zap.Stringer("conn", id))
	}
}
