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

// Package crypto holds the one-way helper used to talk about a secret
// without exposing it: a fingerprint short enough to put in a log line or
// a support ticket, never reversible back to the token it was computed
// from. Durable tokens themselves are stored as the platform issued them;
// nothing in this package encrypts or decrypts them.
package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

const fingerprintLen = 12

// TokenFingerprint computes a keyed HMAC-SHA256 fingerprint of a durable
// token or session token, truncated to a short, log-safe hex string. Two
// calls with the same key and token always agree, which is what makes it
// useful for correlating "this is the same token" across log lines without
// the token itself ever appearing in them.
//
// Purpose: Log-safe, one-way correlation handle for a secret token.
// Domain: Observability
func TokenFingerprint(key, token string) string {
	h := hmac.New(sha256.New, []byte(key))
	h.Write([]byte(token))
	sum := hex.EncodeToString(h.Sum(nil))
	if len(sum) > fingerprintLen {
		return sum[:fingerprintLen]
	}
	return sum
}
