package auth

import "log/slog"

// LogValue implements slog.LogValuer so a handler resolving an
// Authentication never emits its token fields: only the platform and
// account id are safe to put in a log line.
func (a Authentication) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("platform", string(a.Platform)),
		slog.String("account", a.AccountID().String()),
		slog.Time("updated_at", a.Metadata.UpdatedAt),
	)
}

// LogValue implements slog.LogValuer for LoginCredentials: the identifying
// field (username/email/account) is safe to log, the password and any
// second-factor code are not.
func (c LoginCredentials) LogValue() slog.Value {
	id, _ := c.Identifier()
	return slog.GroupValue(
		slog.String("platform", string(c.Platform)),
		slog.String("identifier", id),
	)
}
