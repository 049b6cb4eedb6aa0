package onlivfe

import (
	"context"
	"errors"
	"fmt"

	"github.com/onlivfe/corevr/corerr"
	"github.com/onlivfe/corevr/platform"
	"github.com/onlivfe/corevr/storage"
)

// Instance returns the instance/room record for id under the same freshness
// policy as User. as and id must share a platform: checked up front, before
// any cache read, so a mismatch is reported as corerr.ErrPlatformMismatch
// rather than surfacing as a cache miss once the fetch it would have
// triggered fails.
func (o *Onlivfe) Instance(ctx context.Context, as platform.AccountID, id platform.InstanceID) (platform.DataAndMetadata[platform.Instance], error) {
	if as.Platform != id.Platform {
		return platform.DataAndMetadata[platform.Instance]{}, fmt.Errorf("onlivfe: account platform %q, instance platform %q: %w", as.Platform, id.Platform, corerr.ErrPlatformMismatch)
	}

	cached, cacheErr := o.repo.GetInstance(ctx, id)
	if cacheErr == nil && o.isFresh(cached.Metadata.UpdatedAt) {
		return cached, nil
	}

	key := "instance:" + id.String()
	v, err, _ := o.fetchGroup.Do(key, func() (any, error) {
		fresh, err := o.sessions.Instance(ctx, as, id)
		if err != nil {
			return nil, err
		}
		if _, err := o.repo.UpsertInstance(ctx, fresh); err != nil {
			o.logger.Warn("onlivfe: persist refreshed instance failed", "instance", id, "error", err)
		}
		return fresh, nil
	})
	if err == nil {
		return v.(platform.DataAndMetadata[platform.Instance]), nil
	}

	if cacheErr == nil {
		o.logger.Warn("onlivfe: instance refresh failed, serving stale cache", "instance", id, "error", err)
		return cached, nil
	}
	if errors.Is(cacheErr, storage.ErrNotFound) {
		return platform.DataAndMetadata[platform.Instance]{}, fmt.Errorf("onlivfe: instance %s: %w", id, storage.ErrNotFound)
	}
	return platform.DataAndMetadata[platform.Instance]{}, fmt.Errorf("onlivfe: instance %s: %w", id, err)
}
