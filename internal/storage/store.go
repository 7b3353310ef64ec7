// Package storage implements the gorm-backed repositories.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// Store holds the DB handle and repositories.
type Store struct {
	db       *gorm.DB
	postgres bool

	Health        *HealthRepo
	Tasks         *TaskRepo
	Habits        *HabitRepo
	Progress      *ProgressRepo
	Achievements  *AchievementRepo
	People        *PeopleRepo
	Journal       *JournalRepo
	Conversations *ConversationRepo
}

// Options tunes Open.
type Options struct {
	// Silent disables gorm's SQL logger.
	Silent bool
}

// IsPostgresURL reports whether databaseURL selects the postgres driver.
func IsPostgresURL(databaseURL string) bool {
	return strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://")
}

// Open connects to PostgreSQL for postgres:// URLs and to a SQLite file otherwise.
func Open(ctx context.Context, databaseURL string, opts Options) (*Store, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database url cannot be empty")
	}

	isPostgres := IsPostgresURL(databaseURL)
	var dialector gorm.Dialector
	if isPostgres {
		dialector = postgres.Open(databaseURL)
	} else {
		dialector = sqlite.Open(sqliteDSN(databaseURL))
	}

	gormCfg := &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}
	if opts.Silent {
		gormCfg.Logger = gormLogger.Default.LogMode(gormLogger.Silent)
	} else {
		gormCfg.Logger = gormLogger.Default.LogMode(gormLogger.Warn)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := NewStore(db)
	store.postgres = isPostgres
	return store, nil
}

// NewStore wires repositories over an existing handle.
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:            db,
		postgres:      db.Dialector.Name() == "postgres",
		Health:        &HealthRepo{db: db},
		Tasks:         &TaskRepo{db: db},
		Habits:        &HabitRepo{db: db},
		Progress:      &ProgressRepo{db: db},
		Achievements:  &AchievementRepo{db: db},
		People:        &PeopleRepo{db: db},
		Journal:       &JournalRepo{db: db},
		Conversations: &ConversationRepo{db: db},
	}
}

func sqliteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?_busy_timeout=5000"
}

// DB exposes the underlying handle.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Postgres reports whether the store runs on PostgreSQL.
func (s *Store) Postgres() bool {
	return s.postgres
}

// Close releases the connection pool.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type txKey struct{}

// InTx runs fn in one transaction. Repositories called with the ctx passed to fn
// join it; a nested InTx reuses the outer transaction.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// conn returns the transaction bound to ctx, or db.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}

// Migrate creates or updates all application tables.
func (s *Store) Migrate(ctx context.Context) error {
	db := s.db.WithContext(ctx)
	if err := db.AutoMigrate(
		&dailyHealthModel{},
		&customMetricModel{},
		&taskModel{},
		&habitModel{},
		&habitLogModel{},
		&userProgressModel{},
		&expLogModel{},
		&achievementModel{},
		&achievementLogModel{},
		&learningLogModel{},
		&personModel{},
		&interactionModel{},
		&knowledgeModel{},
		&reflectionModel{},
	); err != nil {
		return fmt.Errorf("failed to auto migrate: %w", err)
	}

	if s.postgres {
		// Vector search needs the pgvector extension; without it, memory stays disabled.
		if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
			slog.Warn("pgvector extension unavailable, skipping conversation memory table", "error", err.Error())
			return nil
		}
	}
	if err := db.AutoMigrate(&conversationModel{}); err != nil {
		return fmt.Errorf("failed to migrate conversation memory: %w", err)
	}
	return nil
}
