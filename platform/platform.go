// Copyright 2026 The OpenTrusty Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package platform holds the cross-platform identity model shared by every
// other component: the platform tag, the per-platform account id, and the
// data-with-metadata envelope that every fetched entity is wrapped in.
//
// Purpose: Discriminated-union substitute for the three social-VR platforms.
// Domain: Identity
package platform

import (
	"encoding/json"
	"fmt"
	"time"
)

// Tag discriminates which external platform an id, entity, or credential
// belongs to. It is the Go substitute for the source's tagged enum: every
// cross-platform union carries one of these instead of a separate Rust
// variant per platform.
type Tag string

const (
	VRChat     Tag = "vrchat"
	ChilloutVR Tag = "chilloutvr"
	Resonite   Tag = "resonite"
)

// All returns the three platform tags in a fixed order, used by callers
// that fan out over every platform (e.g. enumerating all authenticated
// clients).
func All() []Tag {
	return []Tag{VRChat, ChilloutVR, Resonite}
}

func (t Tag) String() string { return string(t) }

// Valid reports whether t is one of the three known platform tags.
func (t Tag) Valid() bool {
	switch t {
	case VRChat, ChilloutVR, Resonite:
		return true
	default:
		return false
	}
}

// AccountID is a hashable, comparable, serializable cross-platform account
// identifier: (platform tag, platform-specific user id). It is used as a
// map key throughout the session manager and storage repository.
type AccountID struct {
	Platform Tag
	ID       string
}

// NewAccountID constructs an AccountID, the Go equivalent of the source's
// per-platform From<id> conversions collapsed into one constructor since
// every platform's user id is carried as an opaque string here.
func NewAccountID(p Tag, rawID string) AccountID {
	return AccountID{Platform: p, ID: rawID}
}

// AccountIDFromVRChat, AccountIDFromChilloutVR and AccountIDFromResonite
// mirror the From<platform-id> for PlatformAccountId conversions in the
// upstream source's vrchat.rs/cvr.rs/resonite.rs, one per platform so a
// caller holding a platform-specific id type cannot accidentally tag it
// wrong.
func AccountIDFromVRChat(userID string) AccountID     { return NewAccountID(VRChat, userID) }
func AccountIDFromChilloutVR(userID string) AccountID { return NewAccountID(ChilloutVR, userID) }
func AccountIDFromResonite(userID string) AccountID   { return NewAccountID(Resonite, userID) }

// String is id_as_string(): a stable textual form used in human-facing
// messages and as a map/database key.
func (a AccountID) String() string {
	return fmt.Sprintf("%s:%s", a.Platform, a.ID)
}

// MarshalText implements encoding.TextMarshaler so AccountID round-trips as
// a JSON object key (e.g. in a map[AccountID]T). The persisted files do not
// use it as a key: the mappings file stores a list of {Account, Profile}
// objects, where AccountID goes through MarshalJSON.
func (a AccountID) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, the inverse of
// MarshalText.
func (a *AccountID) UnmarshalText(text []byte) error {
	s := string(text)
	for i := 0; i < len(s); i++ {
		if s[i] == ':' {
			a.Platform = Tag(s[:i])
			a.ID = s[i+1:]
			return nil
		}
	}
	return fmt.Errorf("platform: malformed account id %q", s)
}

var (
	_ json.Marshaler   = AccountID{}
	_ json.Unmarshaler = (*AccountID)(nil)
)

// MarshalJSON keeps the structured {platform,id} shape for the primary
// authentication/account records (MarshalText above is only used when
// AccountID appears as a map/object key, per encoding/json's rules).
func (a AccountID) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Platform Tag    `json:"platform"`
		ID       string `json:"id"`
	}{a.Platform, a.ID})
}

func (a *AccountID) UnmarshalJSON(data []byte) error {
	var aux struct {
		Platform Tag    `json:"platform"`
		ID       string `json:"id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	a.Platform = aux.Platform
	a.ID = aux.ID
	return nil
}

// InstanceID, WorldID, AvatarID are the cross-platform ids for the
// remaining entity kinds that carry a platform tag of their own (needed so
// the Session Manager can reject a mismatched (as, id) pair without a
// network call, per the PlatformMismatch invariant).
type InstanceID struct {
	Platform Tag
	ID       string
}

func NewInstanceID(p Tag, rawID string) InstanceID { return InstanceID{Platform: p, ID: rawID} }
func (i InstanceID) String() string                { return fmt.Sprintf("%s:%s", i.Platform, i.ID) }

type WorldID struct {
	Platform Tag
	ID       string
}

func NewWorldID(p Tag, rawID string) WorldID { return WorldID{Platform: p, ID: rawID} }
func (w WorldID) String() string             { return fmt.Sprintf("%s:%s", w.Platform, w.ID) }

type AvatarID struct {
	Platform Tag
	ID       string
}

func NewAvatarID(p Tag, rawID string) AvatarID { return AvatarID{Platform: p, ID: rawID} }
func (a AvatarID) String() string              { return fmt.Sprintf("%s:%s", a.Platform, a.ID) }

// Metadata is attached to every fetched entity: the timestamp of the last
// refresh and the account used to fetch it. Metadata is always generalized
// to AccountID regardless of the id type of the entity it describes.
//
// Invariant: Metadata.UpdatedBy.Platform == the owning entity's Platform.
type Metadata struct {
	UpdatedAt time.Time
	UpdatedBy AccountID
}

// NewNow builds Metadata stamped with the current instant, the constructor
// named after the source's PlatformDataAndMetadata::new_now.
func NewNow(as AccountID) Metadata {
	return Metadata{UpdatedAt: time.Now().UTC(), UpdatedBy: as}
}

// DataAndMetadata wraps any platform entity payload with its Metadata
// envelope, the generic substitute for the source's
// PlatformDataAndMetadata<T>.
type DataAndMetadata[T any] struct {
	Data     T
	Metadata Metadata
}

// NewDataAndMetadataNow is the generic equivalent of new_now for any
// payload type.
func NewDataAndMetadataNow[T any](data T, as AccountID) DataAndMetadata[T] {
	return DataAndMetadata[T]{Data: data, Metadata: NewNow(as)}
}
