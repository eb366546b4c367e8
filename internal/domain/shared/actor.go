package shared

import "github.com/google/uuid"

// Actor identifies the authenticated caller on whose behalf an operation runs.
// It is resolved by the request layer (authentication and permission checks
// happen before the engine is entered) and threaded through every mutating
// operation for audit attribution.
type Actor struct {
	TenantID    uuid.UUID
	UserID      uuid.UUID
	DisplayName string
	IP          string
	UserAgent   string
}

// Valid reports whether the actor carries the minimum required identity
func (a Actor) Valid() bool {
	return a.TenantID != uuid.Nil && a.UserID != uuid.Nil
}
