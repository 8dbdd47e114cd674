package auth

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"loanbook-backend/internal/platform/apierr"
)

const (
	CtxUserIDKey = "user_id"

	HeaderUserID = "X-User-Id"
	QueryUserID  = "user_id"
)

// Identity resolves the acting user for every request, in order:
// a valid Bearer token, the X-User-Id header, the user_id query parameter,
// then defaultUserID. It identifies the caller; it does not authorize.
func Identity(tokens *Tokens, defaultUserID int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if h := c.GetHeader("Authorization"); h != "" {
			parts := strings.SplitN(h, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				apierr.Abort(c, apierr.ErrUnauthenticated("invalid Authorization header"))
				return
			}
			id, err := tokens.Parse(strings.TrimSpace(parts[1]))
			if err != nil {
				apierr.Abort(c, apierr.ErrUnauthenticated("invalid token"))
				return
			}
			c.Set(CtxUserIDKey, id)
			c.Next()
			return
		}

		raw := c.GetHeader(HeaderUserID)
		if raw == "" {
			raw = c.Query(QueryUserID)
		}
		if raw == "" {
			c.Set(CtxUserIDKey, defaultUserID)
			c.Next()
			return
		}

		id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil || id <= 0 {
			apierr.Abort(c, apierr.ErrInvalid("user id must be a positive integer"))
			return
		}
		c.Set(CtxUserIDKey, id)
		c.Next()
	}
}

// UserID returns the id stored by Identity (0 when the middleware did not run).
func UserID(c *gin.Context) int64 {
	v, ok := c.Get(CtxUserIDKey)
	if !ok {
		return 0
	}
	id, _ := v.(int64)
	return id
}
