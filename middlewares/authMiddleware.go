package middlewares

import (
	"context"
	"net/http"
	"strings"

	"github.com/conjuntopoblado/registro_backend/models"
	"github.com/conjuntopoblado/registro_backend/utils"
	"github.com/gin-gonic/gin"
)

// SessionCookie carries the signed session token issued at login.
const SessionCookie = "session"

// AuthMiddleware resolves the session token (cookie first, bearer header as
// fallback for scripts) and puts the principal into the request context.
// Requests without a token pass through anonymously; the Require* guards
// decide per route.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token == "" {
			c.Next()
			return
		}

		validate, err := utils.JwtValidate(token)
		if err != nil || !validate.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "No autenticado"})
			c.Abort()
			return
		}

		claim, ok := validate.Claims.(*utils.JwtCustomClaim)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "No autenticado"})
			c.Abort()
			return
		}

		ctx := c.Request.Context()
		ctx = utils.SetTokenInContext(ctx, token)
		ctx = utils.SetUserIdInContext(ctx, claim.ID)
		ctx = utils.SetUsuarioInContext(ctx, claim.Usuario)
		ctx = utils.SetRolInContext(ctx, claim.Rol)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func tokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie
	}
	auth := c.Request.Header.Get("Authorization")
	const bearer = "Bearer "
	if strings.HasPrefix(auth, bearer) {
		return auth[len(bearer):]
	}
	return ""
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := utils.GetUserIdFromContext(c.Request.Context()); !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "No autenticado"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects anonymous requests with 401 and authenticated
// non-admins with 403. Every mutating route runs behind this guard.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if _, ok := utils.GetUserIdFromContext(ctx); !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "No autenticado"})
			c.Abort()
			return
		}
		if rol, _ := utils.GetRolFromContext(ctx); rol != models.RolAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "No autorizado"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// Principal rebuilds the session view (id, usuario, rol) from context.
func Principal(ctx context.Context) (gin.H, bool) {
	id, ok := utils.GetUserIdFromContext(ctx)
	if !ok {
		return nil, false
	}
	usuario, _ := utils.GetUsuarioFromContext(ctx)
	rol, _ := utils.GetRolFromContext(ctx)
	return gin.H{"id": id, "usuario": usuario, "rol": rol}, true
}
