// Package protocol translates the wire-level message stream (JSON or
// line-text, chosen per connection) into the typed Inbound/Outbound
// values the session and game actor operate on.
package protocol

import (
	"github.com/lindqvist/pokerd/internal/vote"
)

// UserStatus is a user's presence flag.
type UserStatus int

const (
	// Active users appear on the roster and count toward completion.
	Active UserStatus = iota
	// Away users are connected but excluded from roster and completion.
	Away
)

// String renders the status the way both framings expect it.
func (s UserStatus) String() string {
	if s == Away {
		return "Away"
	}

	return "Active"
}

// ParseUserStatus is the inverse of String; anything else defaults to
// Active, matching the permissive inbound decoding rule in spec.md §4.B.
func ParseUserStatus(text string) UserStatus {
	if text == "Away" {
		return Away
	}

	return Active
}

// InboundKind tags the variant of an Inbound message.
type InboundKind int

const (
	// InboundUnknown covers malformed or unrecognized input.
	InboundUnknown InboundKind = iota
	// InboundConnect carries a nickname to join the room.
	InboundConnect
	// InboundVote carries a cast ballot.
	InboundVote
	// InboundSetStatus carries a presence change.
	InboundSetStatus
)

// Inbound is a single parsed client message.
type Inbound struct {
	Kind     InboundKind
	Nickname string
	Vote     vote.Vote
	Status   UserStatus
}

// Connect constructs an Inbound Connect message.
func Connect(nickname string) Inbound {
	return Inbound{Kind: InboundConnect, Nickname: nickname}
}

// VoteMsg constructs an Inbound Vote message.
func VoteMsg(v vote.Vote) Inbound {
	return Inbound{Kind: InboundVote, Vote: v}
}

// SetStatus constructs an Inbound SetStatus message.
func SetStatus(s UserStatus) Inbound {
	return Inbound{Kind: InboundSetStatus, Status: s}
}

// NickVote is one row of a votes-result table: a nickname paired with
// its revealed vote.
type NickVote struct {
	Nickname string
	Vote     vote.Vote
}

// NickStatus is one row of an in-progress votes-status table.
type NickStatus struct {
	Nickname string
	Status   vote.Status
}

// OutboundKind tags the variant of an Outbound message.
type OutboundKind int

const (
	// OutboundUserList carries the active roster.
	OutboundUserList OutboundKind = iota
	// OutboundVotesStatus carries the in-progress voted/not-voted table.
	OutboundVotesStatus
	// OutboundVotesResult carries the revealed round result.
	OutboundVotesResult
	// OutboundYourVote echoes the caller's own vote.
	OutboundYourVote
	// OutboundYourStatus echoes the caller's own presence.
	OutboundYourStatus
	// OutboundError carries an in-band error message.
	OutboundError
)

// Outbound is a single message the actor emits to a session.
type Outbound struct {
	Kind     OutboundKind
	Users    []string
	Statuses []NickStatus
	Results  []NickVote
	Vote     vote.Vote
	Status   UserStatus
	Error    string
}

// UserList constructs an Outbound UserList message.
func UserList(users []string) Outbound {
	return Outbound{Kind: OutboundUserList, Users: users}
}

// VotesStatus constructs an Outbound VotesStatus message.
func VotesStatus(statuses []NickStatus) Outbound {
	return Outbound{Kind: OutboundVotesStatus, Statuses: statuses}
}

// VotesResult constructs an Outbound VotesResult message.
func VotesResult(results []NickVote) Outbound {
	return Outbound{Kind: OutboundVotesResult, Results: results}
}

// YourVote constructs an Outbound YourVote message.
func YourVote(v vote.Vote) Outbound {
	return Outbound{Kind: OutboundYourVote, Vote: v}
}

// YourStatus constructs an Outbound YourStatus message.
func YourStatus(s UserStatus) Outbound {
	return Outbound{Kind: OutboundYourStatus, Status: s}
}

// Error constructs an Outbound Error message.
func Error(msg string) Outbound {
	return Outbound{Kind: OutboundError, Error: msg}
}
