package middleware

import (
	"net/http"
	"strings"

	"mealchange_service/pkg"

	"github.com/gin-gonic/gin"
)

// HeaderUserID carries the caller identity set by the upstream auth proxy.
const HeaderUserID = "X-User-ID"

const userIDKey = "user_id"

var errMissingUser = pkg.NewDomainErrorSimple("UNAUTHENTICATED", "Missing "+HeaderUserID+" header", http.StatusUnauthorized)

// RequireUser rejects requests without a caller identity.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(HeaderUserID))
		if userID == "" {
			c.AbortWithStatusJSON(errMissingUser.HTTPStatus, errMissingUser.ToHTTPError())
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserID returns the identity stored by RequireUser.
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
