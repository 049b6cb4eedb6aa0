package onlivfe

import (
	"context"

	"github.com/onlivfe/corevr/platform"
)

// Friends returns as's friends list under the freshness policy: the
// previously fetched list is served as-is while every record it contains is
// still fresh, otherwise one network call refreshes the whole list and
// persists each record.
func (o *Onlivfe) Friends(ctx context.Context, as platform.AccountID) ([]platform.DataAndMetadata[platform.Friend], error) {
	cached, staleOrEmpty := o.cachedFriendsOf(ctx, as)
	if !staleOrEmpty {
		return cached, nil
	}

	key := "friends:" + as.String()
	v, err, _ := o.fetchGroup.Do(key, func() (any, error) {
		fresh, err := o.sessions.Friends(ctx, as)
		if err != nil {
			return nil, err
		}
		if _, err := o.repo.UpsertFriends(ctx, fresh); err != nil {
			o.logger.Warn("onlivfe: persist refreshed friends failed", "account", as, "error", err)
		}
		return fresh, nil
	})
	if err == nil {
		return v.([]platform.DataAndMetadata[platform.Friend]), nil
	}

	if len(cached) > 0 {
		o.logger.Warn("onlivfe: friends refresh failed, serving stale cache", "account", as, "error", err)
		return cached, nil
	}
	return nil, err
}

// cachedFriendsOf collects the repository's friend records last fetched by
// as, reporting whether that set is empty or contains at least one entry
// stale enough to require a full refetch.
func (o *Onlivfe) cachedFriendsOf(ctx context.Context, as platform.AccountID) ([]platform.DataAndMetadata[platform.Friend], bool) {
	ids, err := o.repo.ListFriendIDs(ctx, unlimited)
	if err != nil {
		return nil, true
	}

	var out []platform.DataAndMetadata[platform.Friend]
	for _, id := range ids {
		f, err := o.repo.GetFriend(ctx, id)
		if err != nil || f.Metadata.UpdatedBy != as {
			continue
		}
		out = append(out, f)
	}

	if len(out) == 0 {
		return nil, true
	}
	for _, f := range out {
		if !o.isFresh(f.Metadata.UpdatedAt) {
			return out, true
		}
	}
	return out, false
}
