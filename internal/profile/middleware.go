package profile

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	Header        = "X-Profile-ID"
	CtxProfileKey = "profile_id"
	maxIDLength   = 128
)

// Middleware requires the X-Profile-ID header that scopes cart, favorites
// and book state to one client profile.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(Header))
		if id == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing " + Header + " header"})
			c.Abort()
			return
		}
		if len(id) > maxIDLength {
			c.JSON(http.StatusBadRequest, gin.H{"error": "profile id too long"})
			c.Abort()
			return
		}
		c.Set(CtxProfileKey, id)
		c.Next()
	}
}

func MustGetID(c *gin.Context) string {
	return c.GetString(CtxProfileKey)
}
