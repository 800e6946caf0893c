package model

import "github.com/google/uuid"

// NewID returns a UUIDv7 string. Version 7 ids embed a millisecond timestamp,
// so they sort by creation time.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}
