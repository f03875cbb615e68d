package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shopit-dev/shopit-backend/internal/app/model"
	"github.com/shopit-dev/shopit-backend/internal/app/service"
	apperrors "github.com/shopit-dev/shopit-backend/internal/errors"
	"github.com/shopit-dev/shopit-backend/pkg/util"
)

// SessionCookieName is the cookie carrying the session token. HTTP-only,
// so client-side scripts cannot read it.
const SessionCookieName = "token"

// Context keys for the authenticated subject
const (
	UserKey   = "user"
	UserIDKey = "user_id"
)

type AuthMiddleware struct {
	authService service.AuthService
	jwtSecret   string
}

func NewAuthMiddleware(authService service.AuthService, jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		jwtSecret:   jwtSecret,
	}
}

// Authenticate validates the session token and resolves the full user from
// the store, so a deleted account is rejected even while its token is
// still cryptographically valid.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		token := m.extractToken(c)
		if token == "" {
			log.Warn("Missing session token", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			apperrors.Unauthorized(c, "Please log in to access this resource")
			c.Abort()
			return
		}

		claims, err := util.ValidateToken(token, m.jwtSecret)
		if err != nil {
			log.Warn("Token validation failed", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})

			if errors.Is(err, util.ErrExpiredToken) {
				apperrors.RespondWithError(c, 401, apperrors.AuthTokenExpired, "Your session has expired, please log in again")
			} else {
				apperrors.RespondWithError(c, 401, apperrors.AuthTokenInvalid, "Invalid session token")
			}
			c.Abort()
			return
		}

		user, err := m.authService.GetUserByID(claims.UserID)
		if err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				log.Warn("Token subject no longer exists", map[string]interface{}{
					"user_id": claims.UserID,
				})
				apperrors.RespondWithError(c, 401, apperrors.AuthTokenInvalid, "Invalid session token")
				c.Abort()
				return
			}
			log.Error("Failed to resolve authenticated user", err, map[string]interface{}{
				"user_id": claims.UserID,
			})
			apperrors.InternalError(c, "")
			c.Abort()
			return
		}

		c.Set(UserKey, user)
		c.Set(UserIDKey, user.ID)

		log.Debug("User authenticated successfully", map[string]interface{}{
			"user_id": user.ID,
			"email":   user.Email,
			"role":    user.Role,
		})

		c.Next()
	}
}

// RequireRole enforces a per-route role allow-list. The list is declared
// where the route is composed, not hard-coded here.
func (m *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		user, exists := GetUser(c)
		if !exists {
			log.Warn("Role check without authenticated user", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			apperrors.RespondWithError(c, 403, apperrors.AuthzRoleNotFound, "Role information not found")
			c.Abort()
			return
		}

		for _, r := range roles {
			if user.Role == model.UserRole(r) {
				c.Next()
				return
			}
		}

		log.Warn("Insufficient permissions", map[string]interface{}{
			"user_id":        user.ID,
			"user_role":      user.Role,
			"required_roles": roles,
			"path":           c.Request.URL.Path,
		})
		apperrors.Forbidden(c, "You do not have permission to access this resource")
		c.Abort()
	}
}

// extractToken reads the session token from the cookie, falling back to a
// bearer Authorization header for non-browser clients.
func (m *AuthMiddleware) extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie != "" {
		return cookie
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// GetUser extracts the authenticated user from context
func GetUser(c *gin.Context) (*model.User, bool) {
	value, exists := c.Get(UserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*model.User)
	return user, ok
}

// GetUserID extracts the authenticated user's ID from context
func GetUserID(c *gin.Context) (uint, bool) {
	value, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}
