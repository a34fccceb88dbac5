// Package pgstore backs the allocation engine with Postgres. Aggregates live
// in one JSONB document table with a version column; the exclusive strategy
// maps to session advisory locks and the optimistic strategy to
// version-conditioned updates.
package pgstore

import (
	"context"
	"errors"
	"hash/fnv"
	"time"

	"commerce-core/internal/domain/coupon"
	"commerce-core/internal/engine"
	"commerce-core/internal/pkg/errs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgErrCodeUniqueViolation = "23505"

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Get(ctx context.Context, key engine.Key) (engine.Versioned, error) {
	var data []byte
	var version int64

	err := s.pool.QueryRow(ctx,
		`SELECT value, version FROM aggregates WHERE kind = $1 AND id = $2`,
		string(key.Kind), key.ID,
	).Scan(&data, &version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return engine.Versioned{}, engine.ErrNotFound
		}
		return engine.Versioned{}, errs.Wrap(err, "read aggregate")
	}

	value, err := decode(key.Kind, data)
	if err != nil {
		return engine.Versioned{}, err
	}
	return engine.Versioned{Value: value, Version: version}, nil
}

func (s *Store) CompareAndSwap(ctx context.Context, key engine.Key, value any, expected int64) error {
	data, err := encode(key.Kind, value)
	if err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE aggregates SET value = $3, version = version + 1
		 WHERE kind = $1 AND id = $2 AND version = $4`,
		string(key.Kind), key.ID, data, expected,
	)
	if err != nil {
		return errs.Wrap(err, "write aggregate")
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	// Zero rows: either the version moved or the row is gone.
	var exists bool
	err = s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM aggregates WHERE kind = $1 AND id = $2)`,
		string(key.Kind), key.ID,
	).Scan(&exists)
	if err != nil {
		return errs.Wrap(err, "check aggregate existence")
	}
	if !exists {
		return engine.ErrNotFound
	}
	return engine.ErrConflict
}

func (s *Store) Insert(ctx context.Context, key engine.Key, value any) error {
	data, err := encode(key.Kind, value)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO aggregates (kind, id, version, value) VALUES ($1, $2, 1, $3)`,
		string(key.Kind), key.ID, data,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrCodeUniqueViolation {
			return engine.ErrDuplicate
		}
		return errs.Wrap(err, "insert aggregate")
	}
	return nil
}

// Acquire implements engine.Locker with a session advisory lock held on a
// dedicated connection. The bounded wait comes from a context deadline
// cancelling the blocking pg_advisory_lock call.
func (s *Store) Acquire(ctx context.Context, key engine.Key, wait time.Duration) (func(), error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, errs.Wrap(err, "acquire connection for lock")
	}

	lockID := advisoryLockID(key)
	lockCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	if _, err := conn.Exec(lockCtx, `SELECT pg_advisory_lock($1)`, lockID); err != nil {
		conn.Release()
		if errors.Is(lockCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, engine.ErrBusy
		}
		return nil, errs.Wrap(err, "acquire advisory lock")
	}

	release := func() {
		// Unlock on a background context: the caller's context may already
		// be done, and an orphaned lock would serialize everyone forever.
		if _, unlockErr := conn.Exec(context.Background(), `SELECT pg_advisory_unlock($1)`, lockID); unlockErr != nil {
			conn.Conn().Close(context.Background())
		}
		conn.Release()
	}
	return release, nil
}

func advisoryLockID(key engine.Key) int64 {
	h := fnv.New64a()
	h.Write([]byte(key.Kind))
	h.Write(key.ID[:])
	return int64(h.Sum64())
}

// CouponSource lists issuable coupons for the queue drain.
type CouponSource struct {
	store *Store
}

func NewCouponSource(store *Store) *CouponSource {
	return &CouponSource{store: store}
}

func (s *CouponSource) ListIssuable(ctx context.Context, now time.Time) ([]*coupon.Coupon, error) {
	rows, err := s.store.pool.Query(ctx,
		`SELECT value FROM aggregates WHERE kind = $1`,
		string(engine.KindCoupon),
	)
	if err != nil {
		return nil, errs.Wrap(err, "list coupons")
	}
	defer rows.Close()

	var out []*coupon.Coupon
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, errs.Wrap(err, "scan coupon")
		}
		value, err := decode(engine.KindCoupon, data)
		if err != nil {
			return nil, err
		}
		cpn := value.(*coupon.Coupon)
		if cpn.IsIssuable(now) {
			out = append(out, cpn)
		}
	}
	return out, rows.Err()
}

// GrantSource lists grants for the expiry sweep.
type GrantSource struct {
	store *Store
}

func NewGrantSource(store *Store) *GrantSource {
	return &GrantSource{store: store}
}

func (s *GrantSource) ListGrants(ctx context.Context) ([]*coupon.Grant, error) {
	rows, err := s.store.pool.Query(ctx,
		`SELECT value FROM aggregates WHERE kind = $1`,
		string(engine.KindGrant),
	)
	if err != nil {
		return nil, errs.Wrap(err, "list grants")
	}
	defer rows.Close()

	var out []*coupon.Grant
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, errs.Wrap(err, "scan grant")
		}
		value, err := decode(engine.KindGrant, data)
		if err != nil {
			return nil, err
		}
		out = append(out, value.(*coupon.Grant))
	}
	return out, rows.Err()
}
