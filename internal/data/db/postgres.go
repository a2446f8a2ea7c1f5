package db

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/courseagent/backend/internal/domain"
	"github.com/courseagent/backend/internal/platform/envutil"
	"github.com/courseagent/backend/internal/platform/logger"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(logg *logger.Logger) (*PostgresService, error) {
	serviceLog := logg.With("service", "PostgresService")

	postgresHost := envutil.Get("POSTGRES_HOST", "localhost", logg)
	postgresPort := envutil.Get("POSTGRES_PORT", "5432", logg)
	postgresUser := envutil.Get("POSTGRES_USER", "postgres", logg)
	postgresPassword := envutil.Get("POSTGRES_PASSWORD", "", logg)
	postgresName := envutil.Get("POSTGRES_NAME", "courseagent", logg)

	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		postgresUser,
		postgresPassword,
		postgresHost,
		postgresPort,
		postgresName,
	)

	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLog,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	if err := gdb.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		return nil, fmt.Errorf("failed to enable uuid-ossp extension: %w", err)
	}
	if err := gdb.Exec(`CREATE EXTENSION IF NOT EXISTS vector;`).Error; err != nil {
		return nil, fmt.Errorf("failed to enable pgvector extension: %w", err)
	}

	return &PostgresService{db: gdb, log: serviceLog}, nil
}

func (s *PostgresService) DB() *gorm.DB { return s.db }

// AutoMigrateAll migrates the entity tables and builds the full-text
// index the lexical prefilter depends on.
func (s *PostgresService) AutoMigrateAll() error {
	if err := s.db.AutoMigrate(
		&domain.Course{},
		&domain.Lesson{},
		&domain.Chunk{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}

	if err := s.db.Exec(
		`CREATE INDEX IF NOT EXISTS idx_chunk_content_fts ON chunk USING gin (to_tsvector('english', content));`,
	).Error; err != nil {
		return fmt.Errorf("create full-text index: %w", err)
	}

	return nil
}
