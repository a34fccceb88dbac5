package commands

import (
	"context"
	"errors"

	"commerce-core/internal/domain/account"
	"commerce-core/internal/domain/vo"
	"commerce-core/internal/engine"
	"commerce-core/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrAccountNotFound     = errs.New("account not found")
	ErrInvalidAmount       = errs.New("amount must be a positive integer")
	ErrInsufficientBalance = errs.New("insufficient balance")
)

type BalanceCommands interface {
	Charge(ctx context.Context, accountID uuid.UUID, amount int64) (*account.Account, error)
	Deduct(ctx context.Context, accountID uuid.UUID, amount int64) (*account.Account, error)
	Get(ctx context.Context, accountID uuid.UUID) (*account.Account, error)
}

type balanceCommandsImpl struct {
	allocator engine.Allocator
	store     engine.Store
}

func NewBalanceCommands(allocator engine.Allocator, store engine.Store) BalanceCommands {
	return &balanceCommandsImpl{
		allocator: allocator,
		store:     store,
	}
}

func (c *balanceCommandsImpl) Charge(ctx context.Context, accountID uuid.UUID, amount int64) (*account.Account, error) {
	money, err := newPositiveMoney(amount)
	if err != nil {
		return nil, err
	}

	return c.mutate(ctx, accountID, func(a *account.Account) error {
		return a.Charge(money)
	})
}

func (c *balanceCommandsImpl) Deduct(ctx context.Context, accountID uuid.UUID, amount int64) (*account.Account, error) {
	money, err := newPositiveMoney(amount)
	if err != nil {
		return nil, err
	}

	return c.mutate(ctx, accountID, func(a *account.Account) error {
		return a.Deduct(money)
	})
}

func (c *balanceCommandsImpl) Get(ctx context.Context, accountID uuid.UUID) (*account.Account, error) {
	snapshot, err := c.store.Get(ctx, engine.NewKey(engine.KindAccount, accountID))
	if err != nil {
		if errors.Is(err, engine.ErrNotFound) {
			return nil, errs.Mark(err, ErrAccountNotFound)
		}
		return nil, err
	}
	acc, ok := snapshot.Value.(*account.Account)
	if !ok {
		return nil, errs.Newf("unexpected aggregate type %T for account %s", snapshot.Value, accountID)
	}
	return acc, nil
}

func (c *balanceCommandsImpl) mutate(ctx context.Context, accountID uuid.UUID, op func(*account.Account) error) (*account.Account, error) {
	key := engine.NewKey(engine.KindAccount, accountID)

	acc, err := engine.Allocate(ctx, c.allocator, key, func(current *account.Account) (*account.Account, error) {
		next := current.Clone()
		if opErr := op(next); opErr != nil {
			return nil, opErr
		}
		return next, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrNotFound):
			return nil, errs.Mark(err, ErrAccountNotFound)
		case errors.Is(err, account.ErrInsufficientBalance):
			return nil, errs.Mark(err, ErrInsufficientBalance)
		case errors.Is(err, account.ErrNonPositiveAmount):
			return nil, errs.Mark(err, ErrInvalidAmount)
		default:
			return nil, err
		}
	}
	return acc, nil
}

func newPositiveMoney(amount int64) (vo.Money, error) {
	if amount <= 0 {
		return vo.Money{}, ErrInvalidAmount
	}
	money, err := vo.NewMoney(amount)
	if err != nil {
		return vo.Money{}, errs.Mark(err, ErrInvalidAmount)
	}
	return money, nil
}
