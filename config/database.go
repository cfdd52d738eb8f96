package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

const (
	DriverSqlite   = "sqlite"
	DriverPostgres = "postgres"
)

var (
	db       *gorm.DB
	dbDriver string
	dbPath   string
)

func GetDB() *gorm.DB {
	return db
}

// Driver reports which storage backend was selected at startup.
func Driver() string {
	return dbDriver
}

// DatabasePath is the sqlite file backing the store. Empty on postgres.
func DatabasePath() string {
	return dbPath
}

func init() {
	// Load env from .env
	godotenv.Load()
}

// ConnectDatabaseWithRetry connects and sets the global DB. One storage
// interface, two drivers: DB_DRIVER picks sqlite (default) or postgres at
// startup. No SQL is rewritten at runtime.
func ConnectDatabaseWithRetry() {
	dbDriver = strings.TrimSpace(os.Getenv("DB_DRIVER"))
	if dbDriver == "" {
		dbDriver = DriverSqlite
	}

	var attempt int
	for {
		attempt++
		var err error
		switch dbDriver {
		case DriverPostgres:
			db, err = gorm.Open(postgres.Open(postgresDSN()), initConfig())
		default:
			dbDriver = DriverSqlite
			dbPath = sqlitePath()
			db, err = gorm.Open(sqlite.Open(sqliteDSN(dbPath)), initConfig())
		}
		if err == nil {
			tunePool()
			log.Printf("connected to %s database (attempt=%d)", dbDriver, attempt)
			return
		}

		sleep := time.Second * time.Duration(1<<min(attempt, 5))
		if sleep > 30*time.Second {
			sleep = 30 * time.Second
		}
		log.Printf("failed to connect database (attempt=%d): %v; retrying in %s", attempt, err, sleep)
		time.Sleep(sleep)
	}
}

func sqlitePath() string {
	path := strings.TrimSpace(os.Getenv("DB_PATH"))
	if path == "" {
		path = "database.sqlite"
	}
	return path
}

func sqliteDSN(path string) string {
	if strings.Contains(path, "?") || strings.Contains(path, ":memory:") {
		return path
	}
	// WAL keeps readers unblocked during import batches; busy_timeout
	// covers the single-writer window.
	return path + "?_journal_mode=WAL&_busy_timeout=5000"
}

func postgresDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)
}

// Env overrides (optional):
// - DB_MAX_OPEN_CONNS (default 10)
// - DB_MAX_IDLE_CONNS (default 5)
// - DB_CONN_MAX_LIFETIME_SECONDS (default 300)
func tunePool() {
	sqlDB, err := db.DB()
	if err != nil || sqlDB == nil {
		return
	}
	maxOpen := intFromEnv("DB_MAX_OPEN_CONNS", 10)
	maxIdle := intFromEnv("DB_MAX_IDLE_CONNS", 5)
	connMaxLife := time.Duration(intFromEnv("DB_CONN_MAX_LIFETIME_SECONDS", 300)) * time.Second

	if maxOpen > 0 {
		sqlDB.SetMaxOpenConns(maxOpen)
	}
	if maxIdle >= 0 {
		sqlDB.SetMaxIdleConns(maxIdle)
	}
	if connMaxLife > 0 {
		sqlDB.SetConnMaxLifetime(connMaxLife)
	}
}

func intFromEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func initConfig() *gorm.Config {
	return &gorm.Config{
		Logger:         initLog(),
		NamingStrategy: initNamingStrategy(),
		// Unique violations surface as gorm.ErrDuplicatedKey so the
		// cedula constraint is enforced by the engine, not by a racy
		// check-then-insert.
		TranslateError: true,
	}
}

func initLog() logger.Interface {
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			Colorful:      false,
			LogLevel:      logger.Error,
			SlowThreshold: time.Second,
		},
	)
	return newLogger
}

func initNamingStrategy() *schema.NamingStrategy {
	return &schema.NamingStrategy{
		SingularTable: false,
		TablePrefix:   "",
	}
}
