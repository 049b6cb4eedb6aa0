package onlivfe

import (
	"context"
	"fmt"

	"github.com/onlivfe/corevr/auth"
	"github.com/onlivfe/corevr/crypto"
	"github.com/onlivfe/corevr/id"
)

// Login authenticates creds through the session manager and persists the
// resulting Authentication. A persistence failure is surfaced to the caller
// but does not roll back the now-live session: the caller already holds a
// usable, authenticated client even if the durable record failed to save.
func (o *Onlivfe) Login(ctx context.Context, creds auth.LoginCredentials) (auth.Authentication, error) {
	attempt := id.NewV7()

	a, err := o.sessions.Login(ctx, creds)
	if err != nil {
		return auth.Authentication{}, err
	}

	fingerprint := crypto.TokenFingerprint(a.AccountID().String(), a.TokenMaterial())
	o.logger.Info("onlivfe: login succeeded",
		"attempt", id.String(attempt), "account", a.AccountID(), "fingerprint", fingerprint)

	if _, err := o.repo.UpsertAuthentication(ctx, a); err != nil {
		return a, fmt.Errorf("onlivfe: persist authentication for %s: %w", a.AccountID(), err)
	}
	return a, nil
}

// Logout ends the live session for aid and drops its durable record. The
// live session is torn down even if removing the durable record fails.
func (o *Onlivfe) Logout(ctx context.Context, aid auth.Authentication) error {
	if err := o.sessions.Logout(ctx, aid.AccountID()); err != nil {
		return fmt.Errorf("onlivfe: logout %s: %w", aid.AccountID(), err)
	}
	if _, err := o.repo.RemoveAuthentication(ctx, aid.AccountID()); err != nil {
		return fmt.Errorf("onlivfe: forget authentication for %s: %w", aid.AccountID(), err)
	}
	return nil
}
