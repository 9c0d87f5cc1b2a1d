package game

import "fmt"

// ErrNicknameEmpty is returned by Connect when the trimmed nickname is
// empty. Its text is pinned by spec.md §7 — it becomes the 1008
// close-frame description verbatim.
var ErrNicknameEmpty = nicknameEmptyError{}

type nicknameEmptyError struct{}

func (nicknameEmptyError) Error() string { return "Nickname cannot be empty" }

// NicknameTakenError is returned by Connect when another current user
// already holds the nickname. Its text is pinned by spec.md §7/§8
// scenario 5.
type NicknameTakenError struct {
	Nickname string
}

func (e *NicknameTakenError) Error() string {
	return fmt.Sprintf("Nickname %s is already in use", e.Nickname)
}
