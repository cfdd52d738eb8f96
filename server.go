package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/conjuntopoblado/registro_backend/config"
	"github.com/conjuntopoblado/registro_backend/middlewares"
	"github.com/conjuntopoblado/registro_backend/models"
	"github.com/conjuntopoblado/registro_backend/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const defaultPort = "8080"

func main() {
	logger := config.GetLogger()

	// The frontend consumes deudaMoroso as a plain JSON number.
	decimal.MarshalJSONWithoutQuotes = true

	config.ConnectDatabaseWithRetry()
	models.MigrateTable()
	models.EnsureDefaultUsers(context.Background())

	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	r := buildRouter(logger)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	schedulerCtx, cancelScheduler := context.WithCancel(context.Background())
	startBackupScheduler(schedulerCtx, logger)

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	logger.WithFields(logrus.Fields{"port": port}).Info("servidor listo")

	select {
	case <-sigCtx.Done():
		// graceful shutdown below
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	// Stop the backup ticker before draining requests.
	cancelScheduler()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}
}

func buildRouter(logger *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(customErrorLogger(logger))
	r.Use(cors.New(corsConfig()))
	r.Use(requestIDMiddleware())
	r.Use(middlewares.AuthMiddleware())

	api := r.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/login", loginHandler())
	auth.GET("/me", meHandler())
	auth.POST("/logout", logoutHandler())
	auth.POST("/change-password", middlewares.RequireAuth(), changePasswordHandler())
	auth.POST("/change-username", middlewares.RequireAuth(), changeUsernameHandler())

	api.GET("/propietarios", middlewares.RequireAuth(), listPropietariosHandler())
	api.GET("/propietarios/:id", middlewares.RequireAuth(), getPropietarioHandler())
	api.POST("/propietarios", middlewares.RequireAdmin(), createPropietarioHandler())
	api.PUT("/propietarios/:id", middlewares.RequireAdmin(), updatePropietarioHandler())
	api.DELETE("/propietarios/:id", middlewares.RequireAdmin(), deletePropietarioHandler())

	api.POST("/importar-csv", middlewares.RequireAdmin(), importarCSVHandler())

	api.GET("/export/propietarios.csv", middlewares.RequireAuth(), exportPropietariosCSVHandler())
	api.GET("/export/propietarios.xlsx", middlewares.RequireAuth(), exportPropietariosXLSXHandler())
	api.GET("/export/historial.csv", middlewares.RequireAuth(), exportHistorialCSVHandler())

	api.GET("/historial", middlewares.RequireAdmin(), listHistorialHandler())
	api.POST("/backup", middlewares.RequireAdmin(), backupHandler())

	usuarios := api.Group("/usuarios", middlewares.RequireAdmin())
	usuarios.GET("", listUsuariosHandler())
	usuarios.POST("", createUsuarioHandler())
	usuarios.PUT("/:id", updateUsuarioHandler())
	usuarios.DELETE("/:id", deleteUsuarioHandler())

	r.NoRoute(staticHandler("./public"))

	return r
}

func corsConfig() cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-Id"}
	cfg.AllowCredentials = true
	origins := splitAndTrim(os.Getenv("CORS_ORIGINS"))
	if len(origins) == 0 {
		// same-origin deployment: the frontend is served from ./public
		cfg.AllowOriginFunc = func(origin string) bool { return true }
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// customErrorLogger logs only requests that accumulated errors.
func customErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			logger.Error(c.Errors.String())
		}
	}
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.Request.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx := utils.SetRequestIdInContext(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Writer.Header().Set("X-Request-Id", requestID)
		c.Next()
	}
}

// staticHandler serves the frontend from ./public; unknown /api paths stay JSON.
func staticHandler(root string) gin.HandlerFunc {
	fileServer := http.FileServer(http.Dir(root))
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "No encontrado."})
			return
		}
		fileServer.ServeHTTP(c.Writer, c.Request)
	}
}

// respondError maps the error taxonomy onto HTTP statuses. Anything
// untyped is a storage failure: generic message plus detail for diagnostics.
func respondError(c *gin.Context, err error) {
	var validationErr *utils.ValidationError
	var conflictErr *utils.ConflictError
	var importErr *utils.ImportError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, gin.H{"error": conflictErr.Message})
	case errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "No encontrado."})
	case errors.As(err, &importErr):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": importErr.Message, "detail": importErr.Detail})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error en la base de datos.", "detail": err.Error()})
	}
}

func splitAndTrim(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
