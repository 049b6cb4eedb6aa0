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

// Package session owns every live authenticated per-platform client and
// implements the login/reauthenticate/logout protocols. Three tables, one
// per platform, each guarded by its own reader/writer lock, so operations on
// different platforms never contend. Within one platform, ChilloutVR and
// Resonite login, VRChat second-factor verification and every
// reauthenticate hold that table's writer lock across the platform call, so
// those operations run one at a time per platform; VRChat Initial login,
// logout and the typed queries do not hold the lock while calling out.
//
// Purpose: Live per-platform client registry and login/reauth/logout state
// machine.
// Domain: Session
// Invariants: each table has at most one row per account id.
package session

import (
	"github.com/onlivfe/corevr/auth"
	"github.com/onlivfe/corevr/platform"
	"github.com/onlivfe/corevr/platformclient"
)

// vrchatState discriminates the two VRChat row substates; every other
// platform's row is implicitly Authenticated (it has no intermediate
// stage), so only VRChat needs this tag.
type vrchatState int

const (
	vrchatAuthenticating vrchatState = iota
	vrchatAuthenticated
)

// vrchatRow is a VRChat table entry. During vrchatAuthenticating, token is
// the partial first-factor token and requiredFactors lists what the caller
// must still supply; once vrchatAuthenticated, token is the client's
// first-factor token and secondFactorToken (if any) completes it.
type vrchatRow struct {
	accountID         platform.AccountID
	state             vrchatState
	client            platformclient.VRChatClient
	token             string
	secondFactorToken string
	requiredFactors   []auth.FactorKind
}

// cvrRow is a ChilloutVR table entry; CVR has no intermediate stage.
type cvrRow struct {
	accountID platform.AccountID
	client    platformclient.ChilloutVRClient
}

// resoniteRow is a Resonite table entry; Resonite has no intermediate stage.
type resoniteRow struct {
	accountID platform.AccountID
	client    platformclient.ResoniteClient
}
