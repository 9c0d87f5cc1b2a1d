package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/lindqvist/pokerd/internal/protocol"
	"github.com/lindqvist/pokerd/internal/vote"
)

func newTestServer(t *testing.T) (*GameServer, Handle) {
	t.Helper()

	s, h := NewGameServer(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	go s.Run(ctx)

	return s, h
}

func recv(t *testing.T, ch chan protocol.Outbound) protocol.Outbound {
	t.Helper()

	select {
	case msg, ok := <-ch:
		if !ok {
			t.Fatal("sink closed while waiting for a message")
		}

		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}

	return protocol.Outbound{}
}

func TestConnectJoinSequence(t *testing.T) {
	_, h := newTestServer(t)

	tx := NewOutboundSink()
	id, err := h.Connect(tx, "Player1")
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	msg := recv(t, tx)
	if msg.Kind != protocol.OutboundUserList {
		t.Fatalf("Kind = %v, want OutboundUserList", msg.Kind)
	}

	if len(msg.Users) != 1 || msg.Users[0] != "Player1" {
		t.Fatalf("Users = %v, want [Player1]", msg.Users)
	}

	if id == (ConnId{}) {
		t.Fatal("Connect() returned zero ConnId")
	}
}

func TestConnectEmptyNickname(t *testing.T) {
	_, h := newTestServer(t)

	_, err := h.Connect(NewOutboundSink(), "   ")
	if !errors.Is(err, ErrNicknameEmpty) {
		t.Fatalf("err = %v, want ErrNicknameEmpty", err)
	}
}

func TestConnectDuplicateNickname(t *testing.T) {
	_, h := newTestServer(t)

	tx1 := NewOutboundSink()
	if _, err := h.Connect(tx1, "Alice"); err != nil {
		t.Fatalf("first Connect() error = %v", err)
	}

	recv(t, tx1) // drain the user_list from the first join

	_, err := h.Connect(NewOutboundSink(), "Alice")

	var taken *NicknameTakenError
	if !errors.As(err, &taken) {
		t.Fatalf("err = %v, want *NicknameTakenError", err)
	}

	if taken.Nickname != "Alice" {
		t.Fatalf("taken.Nickname = %q, want Alice", taken.Nickname)
	}

	if taken.Error() != "Nickname Alice is already in use" {
		t.Fatalf("Error() = %q", taken.Error())
	}
}

func TestVotePartialThenComplete(t *testing.T) {
	_, h := newTestServer(t)

	txA := NewOutboundSink()
	idA, _ := h.Connect(txA, "a")
	recv(t, txA)

	txB := NewOutboundSink()
	idB, _ := h.Connect(txB, "b")
	recv(t, txA) // roster update from b joining
	recv(t, txB)

	h.Vote(idA, vote.Option(5))

	statusA := recv(t, txA)
	if statusA.Kind != protocol.OutboundYourVote {
		t.Fatalf("Kind = %v, want OutboundYourVote", statusA.Kind)
	}

	votesA := recv(t, txA)
	votesB := recv(t, txB)

	for _, msg := range []protocol.Outbound{votesA, votesB} {
		if msg.Kind != protocol.OutboundVotesStatus {
			t.Fatalf("Kind = %v, want OutboundVotesStatus", msg.Kind)
		}

		if len(msg.Statuses) != 2 {
			t.Fatalf("Statuses = %v, want 2 rows", msg.Statuses)
		}

		if msg.Statuses[0].Nickname != "a" || msg.Statuses[0].Status != vote.Voted {
			t.Fatalf("Statuses[0] = %+v, want a/voted first", msg.Statuses[0])
		}

		if msg.Statuses[1].Nickname != "b" || msg.Statuses[1].Status != vote.NotVoted {
			t.Fatalf("Statuses[1] = %+v, want b/not voted", msg.Statuses[1])
		}
	}

	h.Vote(idB, vote.Option(8))

	recv(t, txB) // YourVote

	resultA := recv(t, txA)
	resultB := recv(t, txB)

	for _, msg := range []protocol.Outbound{resultA, resultB} {
		if msg.Kind != protocol.OutboundVotesResult {
			t.Fatalf("Kind = %v, want OutboundVotesResult", msg.Kind)
		}

		if len(msg.Results) != 2 {
			t.Fatalf("Results = %v, want 2 rows", msg.Results)
		}

		if msg.Results[0].Nickname != "a" || msg.Results[0].Vote != vote.Option(5) {
			t.Fatalf("Results[0] = %+v", msg.Results[0])
		}

		if msg.Results[1].Nickname != "b" || msg.Results[1].Vote != vote.Option(8) {
			t.Fatalf("Results[1] = %+v", msg.Results[1])
		}
	}
}

func TestVoteInvalidClearsToNull(t *testing.T) {
	_, h := newTestServer(t)

	tx := NewOutboundSink()
	id, _ := h.Connect(tx, "a")
	recv(t, tx)

	h.Vote(id, vote.Parse("not-a-number"))

	your := recv(t, tx)
	if your.Kind != protocol.OutboundYourVote || your.Vote != vote.Null {
		t.Fatalf("YourVote = %+v, want Null", your)
	}
}

func TestDisconnectRemovesUserAndBroadcasts(t *testing.T) {
	_, h := newTestServer(t)

	txA := NewOutboundSink()
	idA, _ := h.Connect(txA, "a")
	recv(t, txA)

	txB := NewOutboundSink()
	_, _ = h.Connect(txB, "b")
	recv(t, txA)
	recv(t, txB)

	h.Disconnect(idA)

	left := recv(t, txB)
	if left.Kind != protocol.OutboundUserList {
		t.Fatalf("Kind = %v, want OutboundUserList", left.Kind)
	}

	if len(left.Users) != 1 || left.Users[0] != "b" {
		t.Fatalf("Users = %v, want [b]", left.Users)
	}

	if _, ok := <-txA; ok {
		t.Fatal("disconnected user's sink should be closed")
	}
}

func TestAwayExcludedFromRosterAndCompletion(t *testing.T) {
	_, h := newTestServer(t)

	txA := NewOutboundSink()
	idA, _ := h.Connect(txA, "a")
	recv(t, txA)

	txB := NewOutboundSink()
	idB, _ := h.Connect(txB, "b")
	recv(t, txA)
	recv(t, txB)

	h.SetStatus(idB, protocol.Away)
	recv(t, txB) // YourStatus

	roster := recv(t, txA)
	if len(roster.Users) != 1 || roster.Users[0] != "a" {
		t.Fatalf("Users = %v, want [a] (b is away)", roster.Users)
	}

	recv(t, txB) // same roster broadcast to b

	h.Vote(idA, vote.Option(3))

	recv(t, txA) // YourVote

	result := recv(t, txA)
	if result.Kind != protocol.OutboundVotesResult {
		t.Fatalf("Kind = %v, want OutboundVotesResult (away user shouldn't block completion)", result.Kind)
	}

	if len(result.Results) != 1 || result.Results[0].Nickname != "a" {
		t.Fatalf("Results = %v, want only a", result.Results)
	}
}

func TestNicknameTruncation(t *testing.T) {
	s, _ := NewGameServer(zap.NewNop())

	long := "abcdefghijklmnopqrstuvwxyz"
	got, err := s.validateNickname(long)
	if err != nil {
		t.Fatalf("validateNickname() error = %v", err)
	}

	if len(got) > maxNicknameBytes {
		t.Fatalf("truncated nickname length = %d, want <= %d", len(got), maxNicknameBytes)
	}
}

func TestAllVotedVacuouslyTrueForEmptyRoom(t *testing.T) {
	s, _ := NewGameServer(zap.NewNop())

	if !s.allVoted() {
		t.Fatal("allVoted() = false, want true for an empty room")
	}
}
