package game

import "github.com/google/uuid"

// ConnId is a server-minted, opaque 128-bit identifier for one
// connection, minted fresh on every successful Connect. Grounded on
// the Rust ConnId(Uuid) wrapper in original_source/backend/src/game/game.rs.
type ConnId uuid.UUID

// NewConnId mints a new random ConnId.
func NewConnId() ConnId {
	return ConnId(uuid.New())
}

// String renders the ConnId the way it would appear in log lines.
func (id ConnId) String() string {
	return uuid.UUID(id).String()
}
