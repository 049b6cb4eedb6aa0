// Package profile holds the user-local identity grouping that ties
// together one human's multiple platform accounts, independent of any
// platform.
//
// Purpose: Local annotation layer above the platform-specific accounts.
// Domain: Identity
package profile

import (
	"github.com/onlivfe/corevr/id"
)

// ID is a random 128-bit profile identifier, independent of any platform.
type ID [16]byte

// New mints a fresh, random profile id.
func New() ID { return ID(id.NewV4()) }

func (p ID) String() string { return id.String(p) }

// Profile is a user-controlled identity grouping. It carries no platform
// tag and no server-fetched metadata: it exists only because the user
// created it.
type Profile struct {
	ID       ID
	Nickname string
	Notes    string
	PictureURL string
}

// NewProfile constructs a Profile with a freshly minted id.
func NewProfile(nickname string) Profile {
	return Profile{ID: New(), Nickname: nickname}
}
