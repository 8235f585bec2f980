package application

import (
	"context"
	"database/sql"
	"io/fs"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
)

// MigrationManager applies embedded goose migrations against the database.
type MigrationManager interface {
	RegisterSchema(fsys fs.FS, dir string)
	Up(ctx context.Context, dsn string) error
	Down(ctx context.Context, dsn string) error
	Status(ctx context.Context, dsn string) error
}

func NewMigrationManager(logger *logrus.Logger) MigrationManager {
	return &migrationManager{logger: logger}
}

type migrationManager struct {
	logger *logrus.Logger
	fsys   fs.FS
	dir    string
}

func (m *migrationManager) RegisterSchema(fsys fs.FS, dir string) {
	m.fsys = fsys
	m.dir = dir
}

func (m *migrationManager) open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	goose.SetBaseFS(m.fsys)
	if err := goose.SetDialect("postgres"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (m *migrationManager) Up(ctx context.Context, dsn string) error {
	db, err := m.open(dsn)
	if err != nil {
		return err
	}
	defer func() {
		if cErr := db.Close(); cErr != nil {
			m.logger.WithError(cErr).Warn("failed to close migration connection")
		}
	}()
	return goose.UpContext(ctx, db, m.dir)
}

func (m *migrationManager) Down(ctx context.Context, dsn string) error {
	db, err := m.open(dsn)
	if err != nil {
		return err
	}
	defer func() {
		if cErr := db.Close(); cErr != nil {
			m.logger.WithError(cErr).Warn("failed to close migration connection")
		}
	}()
	return goose.DownContext(ctx, db, m.dir)
}

func (m *migrationManager) Status(ctx context.Context, dsn string) error {
	db, err := m.open(dsn)
	if err != nil {
		return err
	}
	defer func() {
		if cErr := db.Close(); cErr != nil {
			m.logger.WithError(cErr).Warn("failed to close migration connection")
		}
	}()
	return goose.StatusContext(ctx, db, m.dir)
}
