package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/storefront/catalog-api/internal/apperr"
	"github.com/storefront/catalog-api/internal/auth"
	"github.com/storefront/catalog-api/internal/models"
)

// ContextUserKey is where the authenticated *models.User lives in the gin
// context.
const ContextUserKey = "user"

// UserResolver turns a bearer access token into an account.
type UserResolver interface {
	CurrentUser(ctx context.Context, accessToken string) (*models.User, error)
}

// RespondError writes err as a JSON error body and aborts the chain.
// Unknown errors are logged and answered with a generic 500.
func RespondError(c *gin.Context, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind == apperr.KindInternal {
		log.Printf("ERROR: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	body := gin.H{"error": appErr.Message}
	if len(appErr.Fields) > 0 {
		body["fields"] = appErr.Fields
	}
	c.AbortWithStatusJSON(appErr.Status(), body)
}

// AuthMiddleware resolves an optional bearer token. Requests without an
// Authorization header continue anonymously; a header that is present but
// malformed or invalid is rejected with 401.
func AuthMiddleware(users UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			RespondError(c, apperr.Authentication("Authorization header format must be Bearer {token}"))
			return
		}

		user, err := users.CurrentUser(c.Request.Context(), parts[1])
		if err != nil {
			RespondError(c, err)
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the authenticated caller, or nil when anonymous.
func CurrentUser(c *gin.Context) *models.User {
	v, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

// RequireAuth rejects anonymous callers.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			RespondError(c, apperr.Authentication("Authentication credentials were not provided."))
			return
		}
		c.Next()
	}
}

// Require enforces the access policy for a fixed action.
func Require(action auth.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := auth.Authorize(CurrentUser(c), action); err != nil {
			RespondError(c, err)
			return
		}
		c.Next()
	}
}

// StaffOrReadOnly lets safe methods through for everyone and requires
// write access for the rest.
func StaffOrReadOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		action := auth.ActionWrite
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			action = auth.ActionRead
		}
		if err := auth.Authorize(CurrentUser(c), action); err != nil {
			RespondError(c, err)
			return
		}
		c.Next()
	}
}
