package main

import (
	"net/http"
	"os"

	"github.com/conjuntopoblado/registro_backend/config"
	"github.com/conjuntopoblado/registro_backend/middlewares"
	"github.com/conjuntopoblado/registro_backend/models"
	"github.com/conjuntopoblado/registro_backend/utils"
	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Usuario    string `json:"usuario"`
	Contrasena string `json:"contrasena"`
}

func loginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()

		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Usuario == "" || req.Contrasena == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Usuario y contraseña requeridos"})
			return
		}

		usuario, err := models.VerifyLogin(c.Request.Context(), req.Usuario, req.Contrasena)
		if err != nil {
			config.LogError(logger, "auth.go", "loginHandler", "VerifyLogin", req.Usuario, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error en login"})
			return
		}
		if usuario == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Usuario o contraseña incorrectos"})
			return
		}

		token, err := utils.JwtGenerate(usuario.ID, usuario.Usuario, usuario.Rol)
		if err != nil {
			config.LogError(logger, "auth.go", "loginHandler", "JwtGenerate", usuario.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error en login"})
			return
		}

		setSessionCookie(c, token)
		c.JSON(http.StatusOK, gin.H{"ok": true, "usuario": usuario.Usuario, "rol": usuario.Rol})
	}
}

func meHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := middlewares.Principal(c.Request.Context())
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "No autenticado"})
			return
		}
		c.JSON(http.StatusOK, principal)
	}
}

func logoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		clearSessionCookie(c)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

type changePasswordRequest struct {
	ContrasenaActual string `json:"contrasenaActual"`
	ContrasenaNueva  string `json:"contrasenaNueva"`
	Confirmacion     string `json:"confirmacion"`
}

func changePasswordHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req changePasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil ||
			req.ContrasenaActual == "" || req.ContrasenaNueva == "" || req.Confirmacion == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Todos los campos son requeridos"})
			return
		}
		if req.ContrasenaNueva != req.Confirmacion {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Las contraseñas no coinciden"})
			return
		}

		userId, _ := utils.GetUserIdFromContext(c.Request.Context())
		if err := models.ChangePassword(c.Request.Context(), userId, req.ContrasenaActual, req.ContrasenaNueva); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Contraseña cambiada exitosamente"})
	}
}

type changeUsernameRequest struct {
	UsuarioNuevo string `json:"usuarioNuevo"`
}

func changeUsernameHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req changeUsernameRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.UsuarioNuevo == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "El nuevo usuario es requerido"})
			return
		}

		ctx := c.Request.Context()
		userId, _ := utils.GetUserIdFromContext(ctx)
		if err := models.ChangeUsername(ctx, userId, req.UsuarioNuevo); err != nil {
			respondError(c, err)
			return
		}

		// re-issue the session so the cookie carries the new name
		rol, _ := utils.GetRolFromContext(ctx)
		if token, err := utils.JwtGenerate(userId, req.UsuarioNuevo, rol); err == nil {
			setSessionCookie(c, token)
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Usuario cambiado exitosamente", "nuevoUsuario": req.UsuarioNuevo})
	}
}

func setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middlewares.SessionCookie, token, int(utils.TokenLifespan().Seconds()), "/", "", cookieSecure(), true)
}

func clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middlewares.SessionCookie, "", -1, "/", "", cookieSecure(), true)
}

func cookieSecure() bool {
	return os.Getenv("GIN_MODE") == "release"
}
