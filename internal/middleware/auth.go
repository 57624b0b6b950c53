package middleware

import (
	"net/http"
	"strings"

	"projecthub/internal/service"
	"projecthub/pkg/response"

	"github.com/gin-gonic/gin"
)

// Context keys set by RequireAuth for downstream handlers
const (
	CtxUserID      = "userID"
	CtxUserEmail   = "userEmail"
	CtxUserRole    = "userRole"
	CtxPermissions = "userPermissions"
)

// Actions checked by RequireModulePermission
const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

func extractBearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// RequireAuth gates requests behind a two-stage token check: a cheap
// introspection first, then full validation whose claims populate the
// request context. Introspection failures return a generic 401 so the
// caller learns nothing about why the token was rejected.
func RequireAuth(tokens service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := extractBearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				response.Error(http.StatusUnauthorized, "Authorization is missing or malformed. Expected 'Bearer <token>'"))
			return
		}

		if introspect := tokens.Introspect(tokenString); !introspect.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				response.Error(http.StatusUnauthorized, "Unauthenticated"))
			return
		}

		claims, err := tokens.ValidateToken(tokenString)
		if err != nil {
			status, resp := response.FromError(err)
			c.AbortWithStatusJSON(status, resp)
			return
		}

		c.Set(CtxUserID, claims.ID)
		c.Set(CtxUserEmail, claims.Email)
		c.Set(CtxUserRole, claims.Role)
		c.Set(CtxPermissions, claims.Permissions)

		c.Next()
	}
}

// RequireRole checks that the authenticated user's role is one of
// allowedRoles. Must run after RequireAuth.
func RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := c.GetString(CtxUserRole)
		if userRole == "" {
			c.AbortWithStatusJSON(http.StatusForbidden,
				response.Error(http.StatusForbidden, "Role not found in token"))
			return
		}

		for _, role := range allowedRoles {
			if userRole == role {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden,
			response.Error(http.StatusForbidden, "Access denied: insufficient permissions"))
	}
}

// RequireModulePermission checks the flattened permission claims carried
// by the access token for the given module and action. No database hit;
// the token is the source of truth until it expires.
func RequireModulePermission(module, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(CtxPermissions)
		if !exists {
			c.AbortWithStatusJSON(http.StatusForbidden,
				response.Error(http.StatusForbidden, "Permissions not found in token"))
			return
		}

		perms, ok := value.([]service.PermissionClaim)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden,
				response.Error(http.StatusForbidden, "Permissions not found in token"))
			return
		}

		for _, perm := range perms {
			if perm.Module != module {
				continue
			}
			allowed := false
			switch action {
			case ActionView:
				allowed = perm.CanView
			case ActionCreate:
				allowed = perm.CanCreate
			case ActionUpdate:
				allowed = perm.CanUpdate
			case ActionDelete:
				allowed = perm.CanDelete
			}
			if allowed {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden,
			response.Error(http.StatusForbidden, "Access denied: missing permission '"+module+":"+action+"'"))
	}
}

// ActorID returns the authenticated user's ID from the request context
func ActorID(c *gin.Context) uint {
	value, exists := c.Get(CtxUserID)
	if !exists {
		return 0
	}
	id, _ := value.(uint)
	return id
}
