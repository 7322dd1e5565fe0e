// Package auth works out which user the sync client acts for.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/username/finapp/finsync/src/logger"
)

// DefaultUserID is used when neither configuration nor token names a user.
const DefaultUserID int64 = 1

var (
	ErrNoToken     = errors.New("no access token configured")
	ErrNoUserClaim = errors.New("token has no usable user claim")
)

// TokenInfo is what the client reads from its own access token.
type TokenInfo struct {
	UserID    int64
	ExpiresAt time.Time
}

// Expired reports whether the token carries an expiry that has passed.
func (t TokenInfo) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && now.After(t.ExpiresAt)
}

// ParseToken reads the claims of an access token without verifying its signature.
// The backend verifies the token; the client only needs to know whose it is.
func ParseToken(tokenStr string) (TokenInfo, error) {
	if tokenStr == "" {
		return TokenInfo{}, ErrNoToken
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil {
		return TokenInfo{}, fmt.Errorf("parsing access token: %w", err)
	}

	var info TokenInfo
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}

	for _, key := range []string{"user_id", "sub"} {
		if id, ok := claimAsID(claims[key]); ok {
			info.UserID = id
			return info, nil
		}
	}
	return info, ErrNoUserClaim
}

func claimAsID(v any) (int64, bool) {
	switch id := v.(type) {
	case float64:
		if id > 0 && id == float64(int64(id)) {
			return int64(id), true
		}
	case string:
		if n, err := strconv.ParseInt(id, 10, 64); err == nil && n > 0 {
			return n, true
		}
	}
	return 0, false
}

// ResolveUserID picks the user id: explicit configuration first, then the token, then DefaultUserID.
func ResolveUserID(configured int64, token string) int64 {
	if configured > 0 {
		return configured
	}

	info, err := ParseToken(token)
	if info.Expired(time.Now()) {
		logger.L.Warn("Access token has expired, backend requests will likely be rejected", "expiredAt", info.ExpiresAt.Format(time.RFC3339))
	}
	if err == nil {
		logger.L.Info("Resolved user from access token", "userID", info.UserID)
		return info.UserID
	}
	if !errors.Is(err, ErrNoToken) {
		logger.L.Warn("Could not read user from access token", "error", err)
	}

	logger.L.Warn("No user configured, falling back to default user", "userID", DefaultUserID)
	return DefaultUserID
}
