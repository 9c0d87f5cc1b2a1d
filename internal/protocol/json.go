package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/lindqvist/pokerd/internal/vote"
)

// jsonConnectBody is the payload of an inbound {"connect": {...}}.
type jsonConnectBody struct {
	Nickname string `json:"nickname"`
}

// jsonVoteBody is the payload of an inbound {"vote": {...}}.
type jsonVoteBody struct {
	Value string `json:"value"`
}

// jsonInboundEnvelope is the single-key tagged-union shape every
// inbound JSON message takes. Only one field is ever set.
type jsonInboundEnvelope struct {
	Connect   *jsonConnectBody `json:"connect,omitempty"`
	Vote      *jsonVoteBody    `json:"vote,omitempty"`
	SetStatus *string          `json:"setstatus,omitempty"`
}

// DecodeJSON parses a single inbound JSON frame. Malformed or
// unrecognized JSON decodes to an Unknown message rather than an error,
// per spec.md §4.B: the caller logs and ignores it, the session never
// sees a parse error bubble up.
func DecodeJSON(data []byte) Inbound {
	var env jsonInboundEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Inbound{Kind: InboundUnknown}
	}

	switch {
	case env.Connect != nil:
		return Connect(env.Connect.Nickname)
	case env.Vote != nil:
		return VoteMsg(vote.Parse(env.Vote.Value))
	case env.SetStatus != nil:
		return SetStatus(ParseUserStatus(*env.SetStatus))
	default:
		return Inbound{Kind: InboundUnknown}
	}
}

// nickStatusPair and nickVotePair give the [nickname, rendered] array
// shape the wire format uses for votes-status/votes-result rows.
type nickStatusPair [2]string
type nickVotePair [2]string

// EncodeJSON renders a single outbound message as its JSON frame.
func EncodeJSON(out Outbound) ([]byte, error) {
	switch out.Kind {
	case OutboundUserList:
		users := out.Users
		if users == nil {
			users = []string{}
		}

		return json.Marshal(map[string]any{"user_list": users})

	case OutboundVotesStatus:
		pairs := make([]nickStatusPair, len(out.Statuses))
		for i, s := range out.Statuses {
			pairs[i] = nickStatusPair{s.Nickname, s.Status.String()}
		}

		return json.Marshal(map[string]any{"votes_status": pairs})

	case OutboundVotesResult:
		pairs := make([]nickVotePair, len(out.Results))
		for i, r := range out.Results {
			pairs[i] = nickVotePair{r.Nickname, r.Vote.Render()}
		}

		return json.Marshal(map[string]any{"votes_result": pairs})

	case OutboundYourVote:
		return json.Marshal(map[string]any{"your_vote": out.Vote.Render()})

	case OutboundYourStatus:
		return json.Marshal(map[string]any{"your_status": out.Status.String()})

	case OutboundError:
		return json.Marshal(map[string]any{"error": out.Error})

	default:
		return nil, fmt.Errorf("protocol: cannot encode outbound kind %d", out.Kind)
	}
}

// jsonOutboundEnvelope mirrors jsonInboundEnvelope for decoding; it
// exists so the encoder's own output can be decoded back (the JSON
// framing round-trip property in spec.md §4.B).
type jsonOutboundEnvelope struct {
	UserList    []string          `json:"user_list,omitempty"`
	VotesStatus []nickStatusPair  `json:"votes_status,omitempty"`
	VotesResult []nickVotePair    `json:"votes_result,omitempty"`
	YourVote    *string           `json:"your_vote,omitempty"`
	YourStatus  *string           `json:"your_status,omitempty"`
	Error       *string           `json:"error,omitempty"`
}

// DecodeOutboundJSON parses a JSON frame previously produced by
// EncodeJSON. Used by tests to assert the round-trip property and by
// any future peer wanting to speak the same framing.
func DecodeOutboundJSON(data []byte) (Outbound, error) {
	var env jsonOutboundEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Outbound{}, err
	}

	switch {
	case env.UserList != nil:
		return UserList(env.UserList), nil
	case env.VotesStatus != nil:
		statuses := make([]NickStatus, len(env.VotesStatus))
		for i, p := range env.VotesStatus {
			st := vote.NotVoted
			if p[1] == "voted" {
				st = vote.Voted
			}

			statuses[i] = NickStatus{Nickname: p[0], Status: st}
		}

		return VotesStatus(statuses), nil
	case env.VotesResult != nil:
		results := make([]NickVote, len(env.VotesResult))
		for i, p := range env.VotesResult {
			results[i] = NickVote{Nickname: p[0], Vote: vote.Parse(p[1])}
		}

		return VotesResult(results), nil
	case env.YourVote != nil:
		return YourVote(vote.Parse(*env.YourVote)), nil
	case env.YourStatus != nil:
		return YourStatus(ParseUserStatus(*env.YourStatus)), nil
	case env.Error != nil:
		return Error(*env.Error), nil
	default:
		return Outbound{}, fmt.Errorf("protocol: unrecognized outbound JSON: %s", data)
	}
}
