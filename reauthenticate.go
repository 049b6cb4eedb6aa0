package onlivfe

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/onlivfe/corevr/corerr"
	"github.com/onlivfe/corevr/platform"
)

// reauthenticateConcurrency bounds the number of in-flight reauthenticate
// calls so a large authentication store doesn't open hundreds of
// simultaneous platform connections at once.
const reauthenticateConcurrency = 8

// ReauthenticateAll restores a live session for every persisted
// authentication, skipping accounts already live unless includeAlreadyLive
// is set. It never fails fast: every account is attempted, the ids that
// succeeded are returned alongside a *corerr.AggregateError naming the ones
// that didn't (nil if none failed).
func (o *Onlivfe) ReauthenticateAll(ctx context.Context, includeAlreadyLive bool) ([]platform.AccountID, error) {
	ids, err := o.repo.ListAuthenticationIDs(ctx, unlimited)
	if err != nil {
		return nil, fmt.Errorf("onlivfe: list authentications: %w", err)
	}

	live := map[string]struct{}{}
	if !includeAlreadyLive {
		for _, p := range []platform.Tag{platform.VRChat, platform.ChilloutVR, platform.Resonite} {
			for _, id := range o.sessions.AuthenticatedClients(p) {
				live[id.String()] = struct{}{}
			}
		}
	}

	var (
		mu        sync.Mutex
		succeeded []platform.AccountID
		failures  = map[string]error{}
	)

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(reauthenticateConcurrency)

	for _, id := range ids {
		id := id
		if _, ok := live[id.String()]; ok {
			continue
		}
		group.Go(func() error {
			if err := o.restoreLogin(gctx, id); err != nil {
				mu.Lock()
				failures[id.String()] = err
				mu.Unlock()
				return nil
			}
			mu.Lock()
			succeeded = append(succeeded, id)
			mu.Unlock()
			return nil
		})
	}

	// The group's own error is always nil (every goroutine above returns nil
	// unconditionally); this call only exists to wait for completion.
	_ = group.Wait()

	if len(failures) == 0 {
		return succeeded, nil
	}
	return succeeded, &corerr.AggregateError{Failures: failures}
}

// restoreLogin is a single account's reauthenticate-then-persist step,
// shared by ReauthenticateAll's fan-out.
func (o *Onlivfe) restoreLogin(ctx context.Context, id platform.AccountID) error {
	stored, err := o.repo.GetAuthentication(ctx, id)
	if err != nil {
		return fmt.Errorf("load stored authentication: %w", err)
	}

	refreshed, err := o.sessions.Reauthenticate(ctx, stored)
	if err != nil {
		return fmt.Errorf("reauthenticate: %w", err)
	}

	if _, err := o.repo.UpsertAuthentication(ctx, refreshed); err != nil {
		return fmt.Errorf("persist refreshed authentication: %w", err)
	}
	return nil
}
