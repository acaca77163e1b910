// ABOUTME: Caller identity type.
// ABOUTME: Users live outside this module; only their opaque ID is stored.
package models

import "strings"

// UserID identifies the authenticated caller. It always comes from the
// execution context (config, auth layer), never from a request payload.
type UserID string

// Valid reports whether the ID is non-blank.
func (u UserID) Valid() bool {
	return strings.TrimSpace(string(u)) != ""
}

func (u UserID) String() string { return string(u) }
