package models_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/conjuntopoblado/registro_backend/config"
	"github.com/conjuntopoblado/registro_backend/models"
	"github.com/conjuntopoblado/registro_backend/utils"
)

// setupTestDB points the global connection at a throwaway sqlite file and
// returns a context carrying an admin principal, the way requests arrive
// after the auth middleware.
func setupTestDB(t *testing.T) context.Context {
	t.Helper()

	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "test.sqlite"))

	config.ConnectDatabaseWithRetry()
	models.MigrateTable()

	ctx := context.Background()
	ctx = utils.SetUserIdInContext(ctx, 1)
	ctx = utils.SetUsuarioInContext(ctx, "admin")
	ctx = utils.SetRolInContext(ctx, models.RolAdmin)
	return ctx
}
