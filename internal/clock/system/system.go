// Package system provides a real clock implementation.
package system

import "time"

// Clock implements gateway.Clock using time.Now.
type Clock struct{}

// New creates a new Clock.
func New() *Clock {
	return &Clock{}
}

// Now returns the current time in UTC, so audit record timestamps are
// timezone-stable regardless of host configuration.
func (Clock) Now() time.Time {
	return time.Now().UTC()
}
