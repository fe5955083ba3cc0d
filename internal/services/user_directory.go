package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"helping-hands/shiftdesk/internal/common"
	"helping-hands/shiftdesk/internal/constants"
	"helping-hands/shiftdesk/internal/db/repositories"
	"helping-hands/shiftdesk/internal/logging"
	"helping-hands/shiftdesk/internal/metrics"
)

// UserRecord is the identity view the lifecycle needs.
type UserRecord struct {
	Username string         `json:"username"`
	Role     constants.Role `json:"role"`
	Credits  int            `json:"credits"`
}

// UserDirectory answers lookup_user with a short-lived cache in front of
// the users table.
type UserDirectory struct {
	users   *repositories.UserRepositoryGORM
	cache   common.CacheInterface
	ttl     time.Duration
	metrics *metrics.MetricsRegistry
}

func NewUserDirectory(users *repositories.UserRepositoryGORM, cache common.CacheInterface, ttl time.Duration, m *metrics.MetricsRegistry) *UserDirectory {
	return &UserDirectory{users: users, cache: cache, ttl: ttl, metrics: m}
}

func userCacheKey(username string) string {
	return string(constants.CachePrefixUser) + username
}

// LookupUser returns the user or an ErrNotFound-kind error.
func (d *UserDirectory) LookupUser(ctx context.Context, username string) (*UserRecord, error) {
	if d.cache == nil {
		return d.load(ctx, username)
	}

	key := userCacheKey(username)
	loaded := false
	cached, err := d.cache.GetOrSet(key, d.ttl, func() (any, error) {
		loaded = true
		rec, err := d.load(ctx, username)
		if err != nil {
			return nil, err
		}
		return *rec, nil
	})
	if err != nil {
		return nil, err
	}

	if loaded {
		d.metrics.CacheMiss(string(constants.CachePrefixUser))
	} else {
		d.metrics.CacheHit(string(constants.CachePrefixUser))
	}

	if rec, ok := decodeUserRecord(cached); ok {
		return rec, nil
	}

	// unreadable entry, replace it from the store
	d.cache.Delete(key)
	rec, err := d.load(ctx, username)
	if err != nil {
		return nil, err
	}
	d.cache.Set(key, *rec, d.ttl)
	return rec, nil
}

func (d *UserDirectory) load(ctx context.Context, username string) (*UserRecord, error) {
	user, err := d.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, newError(KindNotFound, constants.MsgUserNotFound)
		}
		return nil, storeError(constants.MsgStoreFailure, err)
	}
	return &UserRecord{Username: user.Username, Role: user.Role, Credits: user.Credits}, nil
}

// Invalidate drops the cached entry, called after credits change.
func (d *UserDirectory) Invalidate(username string) {
	if d.cache != nil {
		d.cache.Delete(userCacheKey(username))
	}
}

// StaffUsernames lists managers and admins.
func (d *UserDirectory) StaffUsernames(ctx context.Context) ([]string, error) {
	names, err := d.users.StaffUsernames(ctx)
	if err != nil {
		return nil, storeError(constants.MsgStoreFailure, err)
	}
	return names, nil
}

// decodeUserRecord accepts both the in-process value and the generic JSON
// form a Redis-backed cache hands back.
func decodeUserRecord(v interface{}) (*UserRecord, bool) {
	switch rec := v.(type) {
	case UserRecord:
		return &rec, true
	case *UserRecord:
		return rec, rec != nil
	case map[string]interface{}:
		data, err := json.Marshal(rec)
		if err != nil {
			return nil, false
		}
		var out UserRecord
		if err := json.Unmarshal(data, &out); err != nil {
			logging.Warn("Discarding malformed cached user", "error", err)
			return nil, false
		}
		return &out, out.Username != ""
	}
	return nil, false
}
