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

// Package corelog builds the module's root structured logger: a
// slog.JSONHandler whose level is driven by a LOG_FILTER-style string and
// whose ReplaceAttr redacts any attribute key that looks like a secret, as
// a second line of defense behind auth.Authentication and
// auth.LoginCredentials' own slog.LogValuer implementations.
//
// Purpose: Structured logging setup and secret redaction.
// Domain: Observability
package corelog

import (
	"log/slog"
	"os"
	"strings"
)

const redacted = "[REDACTED]"

// secretKeywords mirrors the substring list a caller would otherwise have
// to remember to avoid logging: any attribute key containing one of these,
// case-insensitively, is redacted regardless of value type.
var secretKeywords = []string{
	"password",
	"secret",
	"token",
	"durable_token",
	"session_token",
	"code",
	"authorization",
	"credential",
}

func isSecretKey(key string) bool {
	k := strings.ToLower(key)
	for _, s := range secretKeywords {
		if strings.Contains(k, s) {
			return true
		}
	}
	return false
}

// redactAttr is the slog.HandlerOptions.ReplaceAttr hook.
func redactAttr(_ []string, a slog.Attr) slog.Attr {
	if isSecretKey(a.Key) {
		a.Value = slog.StringValue(redacted)
	}
	return a
}

// ParseLevel maps a LOG_FILTER string (DEBUG, INFO, WARN, ERROR,
// case-insensitive) to a slog.Level, defaulting to Info for an empty or
// unrecognized value rather than failing startup over a logging typo.
func ParseLevel(filter string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(filter)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds the root logger, writing JSON-formatted records to stderr at
// the level named by filter.
func New(filter string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:       ParseLevel(filter),
		ReplaceAttr: redactAttr,
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}
