package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/geocoder89/learnhub/internal/observability"
	"github.com/geocoder89/learnhub/internal/repo"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx so reads can be
// shared between the pooled and transactional paths.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

var _ repo.Store = (*Store)(nil)

func New(pool *pgxpool.Pool, prom *observability.Prom) *Store {
	return &Store{pool: pool, prom: prom}
}

func (s *Store) observe(op string, fn func() error) error {
	if s.prom != nil {
		return s.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// WithinTx commits when fn returns nil. The deferred rollback runs on every
// path, including a panic in fn, and is a no-op after Commit.
func (s *Store) WithinTx(ctx context.Context, fn func(repo.Tx) error) (err error) {
	pgtx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() { _ = pgtx.Rollback(ctx) }()

	if err = fn(&tx{q: pgtx, s: s}); err != nil {
		return err
	}

	if err = pgtx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// tx implements repo.Tx on top of a pgx transaction.
type tx struct {
	q querier
	s *Store
}

var _ repo.Tx = (*tx)(nil)

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return false
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
