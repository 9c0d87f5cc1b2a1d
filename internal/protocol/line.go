package protocol

import (
	"fmt"
	"strings"

	"github.com/lindqvist/pokerd/internal/vote"
)

// DecodeLine parses a single inbound line-text frame (spec.md §4.B):
// "/join <nickname>", "/setaway", "/setback", or a bare vote token.
func DecodeLine(line string) Inbound {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Inbound{Kind: InboundUnknown}
	}

	switch fields[0] {
	case "/join":
		nickname := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "/join"))

		return Connect(nickname)
	case "/setaway":
		return SetStatus(Away)
	case "/setback":
		return SetStatus(Active)
	default:
		return VoteMsg(vote.Parse(fields[0]))
	}
}

// EncodeLine renders a single outbound message as a human-readable
// line (spec.md §4.B).
func EncodeLine(out Outbound) (string, error) {
	switch out.Kind {
	case OutboundUserList:
		if len(out.Users) == 0 {
			return "Users: nobody is active", nil
		}

		return "Users: " + strings.Join(out.Users, ", "), nil

	case OutboundVotesStatus:
		parts := make([]string, len(out.Statuses))
		for i, s := range out.Statuses {
			parts[i] = fmt.Sprintf("%s: %s", s.Nickname, s.Status)
		}

		return "Votes: " + strings.Join(parts, ", "), nil

	case OutboundVotesResult:
		parts := make([]string, len(out.Results))
		for i, r := range out.Results {
			parts[i] = fmt.Sprintf("%s: %s", r.Nickname, r.Vote.Render())
		}

		return "Votes: " + strings.Join(parts, ", "), nil

	case OutboundYourVote:
		return "You voted: " + out.Vote.Render(), nil

	case OutboundYourStatus:
		if out.Status == Away {
			return "You are away", nil
		}

		return "You are active", nil

	case OutboundError:
		return out.Error, nil

	default:
		return "", fmt.Errorf("protocol: cannot render outbound kind %d", out.Kind)
	}
}
