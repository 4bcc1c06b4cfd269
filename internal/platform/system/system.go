package system

import (
	"time"

	"github.com/google/uuid"
)

// Clock reads the wall clock in UTC
type Clock struct{}

func (Clock) Now() time.Time {
	return time.Now().UTC()
}

// UUIDGenerator issues random version 4 UUIDs
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}
