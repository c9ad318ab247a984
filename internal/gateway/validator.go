package gateway

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/garrettladley/marine/internal/client/marine"
	"github.com/garrettladley/marine/internal/storage"
	"github.com/garrettladley/marine/internal/xslog"
)

const DefaultCacheTTL = 30 * time.Second

var (
	ErrNoSession      = errors.New("no session cookie")
	ErrInvalidSession = errors.New("session rejected by api")
)

// SessionChecker asks the API whose session a Cookie header carries.
type SessionChecker interface {
	CheckSession(ctx context.Context, cookieHeader string) (*marine.Profile, error)
}

// Validator resolves a Cookie header to a username, caching positive answers.
type Validator struct {
	checker SessionChecker
	cache   storage.SessionCache
	ttl     time.Duration
}

func NewValidator(checker SessionChecker, cache storage.SessionCache, ttl time.Duration) *Validator {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Validator{checker: checker, cache: cache, ttl: ttl}
}

func (v *Validator) Validate(ctx context.Context, cookieHeader string) (string, error) {
	logger := xslog.FromContext(ctx)

	cookieHeader = strings.TrimSpace(cookieHeader)
	if cookieHeader == "" {
		return "", ErrNoSession
	}

	key := hashCookies(cookieHeader)

	username, err := v.cache.GetUsername(ctx, key)
	if err == nil {
		logger.DebugContext(ctx, "session cache hit")
		return username, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		logger.WarnContext(ctx, "session cache error", xslog.ErrorGroup(err))
	}

	logger.DebugContext(ctx, "session cache miss, checking with api")

	profile, err := v.checker.CheckSession(ctx, cookieHeader)
	if err != nil {
		if marine.StatusCode(err) != 0 {
			return "", fmt.Errorf("%w: %w", ErrInvalidSession, err)
		}
		return "", fmt.Errorf("checking session: %w", err)
	}

	if cacheErr := v.cache.SetUsername(ctx, key, profile.Username, v.ttl); cacheErr != nil {
		logger.WarnContext(ctx, "failed to cache session", xslog.ErrorGroup(cacheErr))
	}

	return profile.Username, nil
}

func hashCookies(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}
