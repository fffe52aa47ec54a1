// Package store is the gorm-backed persistence layer: the subjects table
// the decks are generated from, plus the run history.
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"

	"github.com/Fenix-Okami/language-learning-anki-generator/internal/common"
)

// Store wraps the database. The connection is established lazily on first
// use so that an unreachable database surfaces as a retryable persist-stage
// failure, not a startup crash.
type Store struct {
	cfg common.StorageConfig
	log *zap.Logger

	mu sync.Mutex
	db *gorm.DB
}

func New(cfg common.StorageConfig, log *zap.Logger) *Store {
	return &Store{cfg: cfg, log: log}
}

func (s *Store) conn(ctx context.Context) (*gorm.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return s.db.WithContext(ctx), nil
	}

	dialector, err := s.dialector()
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: glogger.Default.LogMode(glogger.Silent),
	})
	if err != nil {
		return nil, common.NewError(common.KindPersistence,
			"open %s database: %v", s.cfg.Driver, err)
	}
	if err := db.AutoMigrate(&Subject{}, &PipelineRun{}, &StageRun{}); err != nil {
		return nil, common.NewError(common.KindPersistence, "migrate schema: %v", err)
	}

	s.log.Info("database ready", zap.String("driver", s.cfg.Driver))
	s.db = db
	return s.db.WithContext(ctx), nil
}

func (s *Store) dialector() (gorm.Dialector, error) {
	switch s.cfg.Driver {
	case "sqlite":
		if dir := filepath.Dir(s.cfg.DSN); dir != "." && !strings.Contains(s.cfg.DSN, ":memory:") {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, common.NewError(common.KindPersistence, "create database dir: %v", err)
			}
		}
		return sqlite.Open(s.cfg.DSN), nil
	case "mysql":
		return mysql.Open(s.cfg.DSN), nil
	default:
		return nil, common.NewError(common.KindConfig, "unsupported storage driver %q", s.cfg.Driver)
	}
}

// Close releases the underlying connection pool, if one was opened.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("unwrap sql db: %w", err)
	}
	return sqlDB.Close()
}
