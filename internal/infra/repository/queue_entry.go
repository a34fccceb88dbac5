package repository

import (
	"context"
	"errors"
	"time"

	"commerce-core/internal/domain/coupon"
	"commerce-core/internal/pkg/errs"
	"commerce-core/internal/queue"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// queueAppendLockID namespaces the transaction advisory lock that serializes
// Append per coupon, so position assignment and the duplicate-pair check stay
// atomic without locking the whole table.
const queueAppendLockID = int64(0x71756575) // "queu"

const pgErrCodeUniqueViolation = "23505"

type QueueEntryRepository struct {
	pool *pgxpool.Pool
}

func NewQueueEntryRepository(pool *pgxpool.Pool) *QueueEntryRepository {
	return &QueueEntryRepository{pool: pool}
}

func (r *QueueEntryRepository) Append(ctx context.Context, e *coupon.QueueEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return errs.Wrap(err, "begin queue append")
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx,
		`SELECT pg_advisory_xact_lock($1, hashtext($2::text))`,
		queueAppendLockID, e.CouponID(),
	); err != nil {
		return errs.Wrap(err, "lock queue for append")
	}

	var active bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM coupon_queue_entries
		   WHERE account_id = $1 AND coupon_id = $2 AND status IN ('WAITING', 'PROCESSING')
		 )`,
		e.AccountID(), e.CouponID(),
	).Scan(&active)
	if err != nil {
		return errs.Wrap(err, "check active queue entry")
	}
	if active {
		return queue.ErrActiveEntryExists
	}

	var position int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) + 1 FROM coupon_queue_entries
		 WHERE coupon_id = $1 AND status = 'WAITING'`,
		e.CouponID(),
	).Scan(&position)
	if err != nil {
		return errs.Wrap(err, "assign queue position")
	}
	e.UpdatePosition(position)

	var pgErr *pgconn.PgError
	_, err = tx.Exec(ctx,
		`INSERT INTO coupon_queue_entries
		   (id, account_id, coupon_id, status, position, processed_at, failed_reason, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID(), e.AccountID(), e.CouponID(), string(e.Status()),
		e.Position(), e.ProcessedAt(), e.FailedReason(), e.CreatedAt(),
	)
	if err != nil {
		if errors.As(err, &pgErr) && pgErr.Code == pgErrCodeUniqueViolation {
			return queue.ErrActiveEntryExists
		}
		return errs.Wrap(err, "insert queue entry")
	}

	return errs.Wrap(tx.Commit(ctx), "commit queue append")
}

func (r *QueueEntryRepository) FindActive(ctx context.Context, accountID, couponID uuid.UUID) (*coupon.QueueEntry, error) {
	return r.findOne(ctx,
		`SELECT id, account_id, coupon_id, status, position, processed_at, failed_reason, created_at
		 FROM coupon_queue_entries
		 WHERE account_id = $1 AND coupon_id = $2 AND status IN ('WAITING', 'PROCESSING')
		 ORDER BY created_at DESC LIMIT 1`,
		accountID, couponID,
	)
}

func (r *QueueEntryRepository) FindLatest(ctx context.Context, accountID, couponID uuid.UUID) (*coupon.QueueEntry, error) {
	return r.findOne(ctx,
		`SELECT id, account_id, coupon_id, status, position, processed_at, failed_reason, created_at
		 FROM coupon_queue_entries
		 WHERE account_id = $1 AND coupon_id = $2
		 ORDER BY created_at DESC LIMIT 1`,
		accountID, couponID,
	)
}

func (r *QueueEntryRepository) ListWaiting(ctx context.Context, couponID uuid.UUID, limit int) ([]*coupon.QueueEntry, error) {
	query := `SELECT id, account_id, coupon_id, status, position, processed_at, failed_reason, created_at
	          FROM coupon_queue_entries
	          WHERE coupon_id = $1 AND status = 'WAITING'
	          ORDER BY position`
	args := []any{couponID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errs.Wrap(err, "list waiting entries")
	}
	defer rows.Close()

	var out []*coupon.QueueEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *QueueEntryRepository) Update(ctx context.Context, e *coupon.QueueEntry) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE coupon_queue_entries
		 SET status = $2, position = $3, processed_at = $4, failed_reason = $5
		 WHERE id = $1`,
		e.ID(), string(e.Status()), e.Position(), e.ProcessedAt(), e.FailedReason(),
	)
	if err != nil {
		return errs.Wrap(err, "update queue entry")
	}
	if tag.RowsAffected() == 0 {
		return queue.ErrEntryNotFound
	}
	return nil
}

func (r *QueueEntryRepository) CouponIDsWithWaiting(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT coupon_id FROM coupon_queue_entries WHERE status = 'WAITING'`,
	)
	if err != nil {
		return nil, errs.Wrap(err, "list coupons with waiting entries")
	}
	defer rows.Close()

	var out []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, errs.Wrap(err, "scan coupon id")
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *QueueEntryRepository) findOne(ctx context.Context, query string, args ...any) (*coupon.QueueEntry, error) {
	row := r.pool.QueryRow(ctx, query, args...)
	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, queue.ErrEntryNotFound
		}
		return nil, err
	}
	return e, nil
}

func scanEntry(row pgx.Row) (*coupon.QueueEntry, error) {
	var (
		id           uuid.UUID
		accountID    uuid.UUID
		couponID     uuid.UUID
		status       string
		position     int
		processedAt  *time.Time
		failedReason string
		createdAt    time.Time
	)
	err := row.Scan(&id, &accountID, &couponID, &status, &position, &processedAt, &failedReason, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, errs.Wrap(err, "scan queue entry")
	}
	return coupon.RestoreQueueEntry(
		id, accountID, couponID,
		coupon.QueueStatus(status), position, processedAt, failedReason, createdAt,
	), nil
}
