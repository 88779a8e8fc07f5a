package xid

import "github.com/google/uuid"

// New returns a random UUID string used as a record identifier.
func New() string {
	return uuid.NewString()
}
