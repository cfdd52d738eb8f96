package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/conjuntopoblado/registro_backend/config"
	"github.com/conjuntopoblado/registro_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type backupResult struct {
	File   string
	Method string
	Warn   string
}

func backupDir() string {
	dir := strings.TrimSpace(os.Getenv("BACKUP_DIR"))
	if dir == "" {
		dir = "backups"
	}
	return dir
}

// createBackup snapshots the sqlite database. VACUUM INTO gives a
// consistent copy; if it fails we fall back to copying the raw files
// (including -wal/-shm) and surface the failure as a warning. Every run
// writes a uniquely stamped file, so overlapping runs never clobber each
// other.
func createBackup(ctx context.Context) (*backupResult, error) {
	if config.Driver() != config.DriverSqlite {
		return nil, fmt.Errorf("backup no soportado para el driver %s", config.Driver())
	}

	dir := backupDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	dest := filepath.Join(dir, fmt.Sprintf("database-%s.sqlite", utils.NowStamp()))

	// VACUUM INTO takes a literal path; single quotes must be doubled.
	safe := strings.ReplaceAll(dest, "'", "''")
	db := config.GetDB()
	vacuumErr := db.WithContext(ctx).Exec("VACUUM INTO '" + safe + "'").Error
	if vacuumErr == nil {
		return &backupResult{File: dest, Method: "VACUUM_INTO"}, nil
	}

	src := config.DatabasePath()
	if err := copyFile(src, dest); err != nil {
		return nil, err
	}
	copyIfExists(src+"-wal", dest+"-wal")
	copyIfExists(src+"-shm", dest+"-shm")

	return &backupResult{File: dest, Method: "COPY_FALLBACK", Warn: vacuumErr.Error()}, nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

func copyIfExists(src, dest string) {
	if _, err := os.Stat(src); err != nil {
		return
	}
	if err := copyFile(src, dest); err != nil {
		config.LogError(config.GetLogger(), "backup.go", "copyIfExists", src, nil, err)
	}
}

func backupHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := createBackup(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "No se pudo crear backup", "detail": err.Error()})
			return
		}

		resp := gin.H{"ok": true, "file": filepath.Base(result.File), "method": result.Method}
		if result.Warn != "" {
			resp["warn"] = result.Warn
		}
		c.JSON(http.StatusOK, resp)
	}
}

// startBackupScheduler runs periodic backups (default every 12 hours)
// without blocking request handling. It stops when ctx is cancelled.
func startBackupScheduler(ctx context.Context, logger *logrus.Logger) {
	hours := utils.ToInt(os.Getenv("BACKUP_INTERVAL_HOURS"), 12)
	if hours <= 0 {
		logger.Info("backup automático deshabilitado")
		return
	}
	interval := time.Duration(hours) * time.Hour

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				result, err := createBackup(ctx)
				if err != nil {
					config.LogError(logger, "backup.go", "startBackupScheduler", "createBackup", nil, err)
					continue
				}
				logger.WithFields(logrus.Fields{
					"file":   filepath.Base(result.File),
					"method": result.Method,
				}).Info("backup automático creado")
			}
		}
	}()
}
