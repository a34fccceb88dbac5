// Package queue converts bursts of coupon issuance requests into a
// steady-rate stream of grants. Entries wait in FIFO order per coupon and are
// drained in batches on a fixed cadence through the same allocation engine
// direct issuance uses.
package queue

import (
	"context"
	"errors"
	"log/slog"

	"commerce-core/internal/domain/coupon"
	"commerce-core/internal/engine"
	"commerce-core/internal/pkg/clock"
	"commerce-core/internal/pkg/errs"
	"commerce-core/internal/usecase/commands"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var (
	ErrCouponNotFound = errs.New("coupon not found")
	ErrNotQueueCoupon = errs.New("coupon is issued directly, not through the queue")
)

type Service struct {
	entries EntryRepository
	coupons CouponSource
	issuer  Issuer
	store   engine.Store
	clock   clock.Clock
	logger  *slog.Logger
}

func NewService(
	entries EntryRepository,
	coupons CouponSource,
	issuer Issuer,
	store engine.Store,
	clk clock.Clock,
	logger *slog.Logger,
) *Service {
	return &Service{
		entries: entries,
		coupons: coupons,
		issuer:  issuer,
		store:   store,
		clock:   clk,
		logger:  logger,
	}
}

// Join appends the account to the coupon's waiting list. Joining a queue the
// account already waits in is idempotent: the existing entry comes back
// unchanged.
func (s *Service) Join(ctx context.Context, accountID, couponID uuid.UUID) (*coupon.QueueEntry, error) {
	cpn, err := s.getCoupon(ctx, couponID)
	if err != nil {
		return nil, err
	}
	if !cpn.UseQueue() {
		return nil, ErrNotQueueCoupon
	}

	if existing, err := s.entries.FindActive(ctx, accountID, couponID); err == nil {
		return existing, nil
	} else if !errors.Is(err, ErrEntryNotFound) {
		return nil, err
	}

	entry := coupon.NewQueueEntry(accountID, couponID, 0, s.clock.Now())
	if err := s.entries.Append(ctx, entry); err != nil {
		if errors.Is(err, ErrActiveEntryExists) {
			// Lost the join race to ourselves; surface the winner.
			return s.entries.FindActive(ctx, accountID, couponID)
		}
		return nil, err
	}
	return entry, nil
}

// Status returns the latest entry for the pair, terminal or not.
func (s *Service) Status(ctx context.Context, accountID, couponID uuid.UUID) (*coupon.QueueEntry, error) {
	return s.entries.FindLatest(ctx, accountID, couponID)
}

// DrainAll drains every issuable queue-mediated coupon once. Coupons drain
// independently: one coupon's failure never stops the others in the same tick.
func (s *Service) DrainAll(ctx context.Context, batchSize int) error {
	issuable, err := s.coupons.ListIssuable(ctx, s.clock.Now())
	if err != nil {
		return errs.Wrap(err, "list issuable coupons")
	}

	g := new(errgroup.Group)
	for _, cpn := range issuable {
		if !cpn.UseQueue() {
			continue
		}
		cpn := cpn
		g.Go(func() error {
			if drainErr := s.Drain(ctx, cpn.ID(), batchSize); drainErr != nil {
				s.logger.Error("coupon queue drain failed",
					"coupon_id", cpn.ID(), "error", drainErr.Error())
			}
			return nil
		})
	}
	return g.Wait()
}

// Drain processes up to batchSize WAITING entries in position order. Each
// entry's outcome is independent of the others in the batch.
func (s *Service) Drain(ctx context.Context, couponID uuid.UUID, batchSize int) error {
	waiting, err := s.entries.ListWaiting(ctx, couponID, batchSize)
	if err != nil {
		return errs.Wrap(err, "list waiting entries")
	}

	for _, entry := range waiting {
		s.drainEntry(ctx, entry)
	}
	return nil
}

func (s *Service) drainEntry(ctx context.Context, entry *coupon.QueueEntry) {
	e := entry.Clone()
	e.MarkProcessing()
	if err := s.entries.Update(ctx, e); err != nil {
		s.logger.Error("queue entry transition to processing failed",
			"entry_id", e.ID(), "error", err.Error())
		return
	}

	_, err := s.issuer.Issue(ctx, e.AccountID(), e.CouponID())
	now := s.clock.Now()

	switch {
	case err == nil:
		e.MarkCompleted(now)
	case engine.IsRetryable(err):
		// Transient contention; give the entry back to a later drain.
		e.ResetWaiting()
	default:
		e.MarkFailed(failureReason(err), now)
	}

	if err := s.entries.Update(ctx, e); err != nil {
		s.logger.Error("queue entry outcome update failed",
			"entry_id", e.ID(), "status", string(e.Status()), "error", err.Error())
	}
}

// RecomputePositions reassigns contiguous positions 1..K to the WAITING
// entries of every queued coupon, preserving relative order. Terminal entries
// are never touched.
func (s *Service) RecomputePositions(ctx context.Context) error {
	couponIDs, err := s.entries.CouponIDsWithWaiting(ctx)
	if err != nil {
		return errs.Wrap(err, "list queued coupons")
	}

	for _, couponID := range couponIDs {
		if err := s.recomputeCoupon(ctx, couponID); err != nil {
			s.logger.Error("queue position recompute failed",
				"coupon_id", couponID, "error", err.Error())
		}
	}
	return nil
}

func (s *Service) recomputeCoupon(ctx context.Context, couponID uuid.UUID) error {
	waiting, err := s.entries.ListWaiting(ctx, couponID, 0)
	if err != nil {
		return err
	}

	for i, entry := range waiting {
		if entry.Position() == i+1 {
			continue
		}
		e := entry.Clone()
		e.UpdatePosition(i + 1)
		if err := s.entries.Update(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) getCoupon(ctx context.Context, couponID uuid.UUID) (*coupon.Coupon, error) {
	snapshot, err := s.store.Get(ctx, engine.NewKey(engine.KindCoupon, couponID))
	if err != nil {
		if errors.Is(err, engine.ErrNotFound) {
			return nil, errs.Mark(err, ErrCouponNotFound)
		}
		return nil, err
	}
	cpn, ok := snapshot.Value.(*coupon.Coupon)
	if !ok {
		return nil, errs.Newf("unexpected aggregate type %T for coupon %s", snapshot.Value, couponID)
	}
	return cpn, nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, commands.ErrCouponExhausted):
		return "EXHAUSTED"
	case errors.Is(err, commands.ErrAlreadyGranted):
		return "ALREADY_GRANTED"
	case errors.Is(err, commands.ErrCouponNotInWindow):
		return "OUTSIDE_WINDOW"
	case errors.Is(err, commands.ErrCouponNotFound):
		return "COUPON_NOT_FOUND"
	default:
		return "INTERNAL"
	}
}
