package onlivfe

import (
	"context"
	"errors"
	"fmt"

	"github.com/onlivfe/corevr/corerr"
	"github.com/onlivfe/corevr/platform"
	"github.com/onlivfe/corevr/storage"
)

// User returns the account record for id, serving a cached copy when it is
// younger than the configured refresh interval and otherwise fetching fresh
// through as's live client, per the freshness policy: cache if fresh, else
// fetch-and-persist, else fall back to a stale cached value (logged), else
// storage.ErrNotFound. as and id must share a platform: checked up front, so
// a mismatch is reported as corerr.ErrPlatformMismatch rather than being
// discovered only once a cache-miss fetch through as's client fails.
func (o *Onlivfe) User(ctx context.Context, as, id platform.AccountID) (platform.DataAndMetadata[platform.Account], error) {
	if as.Platform != id.Platform {
		return platform.DataAndMetadata[platform.Account]{}, fmt.Errorf("onlivfe: account platform %q, queried platform %q: %w", as.Platform, id.Platform, corerr.ErrPlatformMismatch)
	}

	cached, cacheErr := o.repo.GetAccount(ctx, id)
	if cacheErr == nil && o.isFresh(cached.Metadata.UpdatedAt) {
		return cached, nil
	}

	key := "account:" + id.String()
	v, err, _ := o.fetchGroup.Do(key, func() (any, error) {
		fresh, err := o.sessions.User(ctx, as, id)
		if err != nil {
			return nil, err
		}
		if _, err := o.repo.UpsertAccount(ctx, fresh); err != nil {
			o.logger.Warn("onlivfe: persist refreshed account failed", "account", id, "error", err)
		}
		return fresh, nil
	})
	if err == nil {
		return v.(platform.DataAndMetadata[platform.Account]), nil
	}

	if cacheErr == nil {
		o.logger.Warn("onlivfe: account refresh failed, serving stale cache", "account", id, "error", err)
		return cached, nil
	}
	if errors.Is(cacheErr, storage.ErrNotFound) {
		return platform.DataAndMetadata[platform.Account]{}, fmt.Errorf("onlivfe: account %s: %w", id, storage.ErrNotFound)
	}
	return platform.DataAndMetadata[platform.Account]{}, fmt.Errorf("onlivfe: account %s: %w", id, err)
}
