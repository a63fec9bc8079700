package pg

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	_ "github.com/lib/pq"

	"github.com/drafthook/drafthook/shared/config"
)

// Querier is satisfied by both *sql.DB and *sql.Tx, so the core query logic
// works inside and outside transactions.
type Querier interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

type Storage struct {
	db *sql.DB
}

func New(cfg *config.Config) (*Storage, error) {
	log.Print("Connecting to db")
	db, err := Connect(cfg)
	if err != nil {
		return nil, err
	}
	log.Print("Succesfully connected to db")

	storage := &Storage{db}
	if err := storage.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return storage, nil
}

func Connect(cfg *config.Config) (*sql.DB, error) {
	pg := cfg.Public.Pg
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		pg.Host, pg.Port, pg.User, cfg.PgPassword(), pg.Dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}

// NewWithDB wraps an already-open connection; used by integration tests.
func NewWithDB(db *sql.DB) (*Storage, error) {
	storage := &Storage{db}
	if err := storage.ensureSchema(); err != nil {
		return nil, err
	}
	return storage, nil
}

func (s *Storage) Cleanup() error {
	return s.db.Close()
}

// Ping reports backend readiness.
func (s *Storage) Ping() error {
	return s.db.Ping()
}

func (s *Storage) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
