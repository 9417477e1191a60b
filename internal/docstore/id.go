package docstore

import (
	"encoding/hex"

	"github.com/google/uuid"
)

const idLen = 12

// NewID returns a 24 character hex identifier drawn from a random UUID.
func NewID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:idLen])
}
