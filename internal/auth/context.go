package auth

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	userIDKey   = "userID"
	identityKey = "identity"
)

// SetIdentity stores id for later handlers. The user id is also kept under
// "userID" for middleware that only needs the key.
func SetIdentity(c *gin.Context, id Identity) {
	c.Set(userIDKey, id.UserID)
	c.Set(identityKey, id)
}

// GetIdentity returns the authenticated identity, if any.
func GetIdentity(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}

// GetUserID returns the authenticated user's ID or empty string.
func GetUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// Location returns the caller's zone from the token, or def when the token
// carries none or an unknown one.
func Location(c *gin.Context, def *time.Location) *time.Location {
	id, ok := GetIdentity(c)
	if !ok || id.Timezone == "" {
		return def
	}
	loc, err := time.LoadLocation(id.Timezone)
	if err != nil {
		return def
	}
	return loc
}
