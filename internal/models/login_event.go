package models

import (
	"time"

	"github.com/google/uuid"
)

// UnknownOrigin is stored when the caller's address or client cannot be determined.
const UnknownOrigin = "unknown"

// LoginEvent is an append-only record of one successful authentication.
type LoginEvent struct {
	ID               uuid.UUID `db:"id"`
	AccountID        string    `db:"account_id"`
	OccurredAt       time.Time `db:"occurred_at"`
	SourceAddress    string    `db:"source_address"`
	ClientDescriptor string    `db:"client_descriptor"`
}
