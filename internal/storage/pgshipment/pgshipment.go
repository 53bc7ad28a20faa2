package pgshipment

import (
	"context"

	"github.com/BearBump/EuroLink/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Storage struct {
	pool *pgxpool.Pool
	db   dbtx
	inTx bool
}

func New(connString string) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, errors.Wrap(err, "parse pg config")
	}

	db, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		return nil, errors.Wrap(err, "connect pg")
	}

	s := &Storage{pool: db, db: db}
	if err := s.initSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Storage) Close() {
	if s.pool != nil && !s.inTx {
		s.pool.Close()
	}
}

func (s *Storage) Ping(ctx context.Context) error {
	if s.pool == nil {
		return errors.New("pg pool is not initialized")
	}
	return errors.Wrap(s.pool.Ping(ctx), "ping pg")
}

// WithinTx runs fn against a transaction-scoped Storage. The transaction is
// committed when fn returns nil and rolled back otherwise.
func (s *Storage) WithinTx(ctx context.Context, fn func(ds storage.Datastore) error) error {
	if s.inTx {
		return fn(s)
	}
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&Storage{pool: s.pool, db: tx, inTx: true}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "commit tx")
	}
	return nil
}

// bestEffort runs fn inside a savepoint when a transaction is open, so a
// failing statement does not abort the enclosing transaction.
func (s *Storage) bestEffort(ctx context.Context, fn func(db dbtx) error) error {
	if !s.inTx {
		return fn(s.db)
	}
	sp, err := s.db.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "savepoint")
	}
	if err := fn(sp); err != nil {
		_ = sp.Rollback(ctx)
		return err
	}
	return errors.Wrap(sp.Commit(ctx), "release savepoint")
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.ErrNotFound
	}
	return err
}
