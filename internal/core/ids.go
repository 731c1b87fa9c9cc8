package core

import "github.com/google/uuid"

// TaskId, JobId, DataId, and DriverId are opaque 128-bit identifiers
// (spec.md §3: "opaque byte strings of fixed width 16"). uuid.UUID is
// already a [16]byte array, so it satisfies that shape directly.
type (
	TaskId   = uuid.UUID
	JobId    = uuid.UUID
	DataId   = uuid.UUID
	DriverId = uuid.UUID
)

// NewId generates a fresh random 128-bit id.
func NewId() uuid.UUID {
	return uuid.New()
}
