package commands_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"commerce-core/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalanceCommands(t *testing.T) {
	ctx := context.Background()

	t.Run("charge and deduct round trip", func(t *testing.T) {
		f := newFixture(t)
		cmds := commands.NewBalanceCommands(f.allocator, f.store)
		accountID := f.seedAccount(t, 0)

		acc, err := cmds.Charge(ctx, accountID, 10000)
		require.NoError(t, err)
		assert.Equal(t, int64(10000), acc.Balance().Amount())

		acc, err = cmds.Deduct(ctx, accountID, 3000)
		require.NoError(t, err)
		assert.Equal(t, int64(7000), acc.Balance().Amount())

		acc, err = cmds.Get(ctx, accountID)
		require.NoError(t, err)
		assert.Equal(t, int64(7000), acc.Balance().Amount())
	})

	t.Run("unknown account", func(t *testing.T) {
		f := newFixture(t)
		cmds := commands.NewBalanceCommands(f.allocator, f.store)

		_, err := cmds.Charge(ctx, uuid.New(), 100)
		assert.ErrorIs(t, err, commands.ErrAccountNotFound)

		_, err = cmds.Get(ctx, uuid.New())
		assert.ErrorIs(t, err, commands.ErrAccountNotFound)
	})

	t.Run("non-positive amounts are rejected before allocation", func(t *testing.T) {
		f := newFixture(t)
		cmds := commands.NewBalanceCommands(f.allocator, f.store)
		accountID := f.seedAccount(t, 500)

		for _, amount := range []int64{0, -1} {
			_, err := cmds.Charge(ctx, accountID, amount)
			assert.ErrorIs(t, err, commands.ErrInvalidAmount)
			_, err = cmds.Deduct(ctx, accountID, amount)
			assert.ErrorIs(t, err, commands.ErrInvalidAmount)
		}
		assert.Equal(t, int64(500), f.getAccount(t, accountID).Balance().Amount())
	})

	t.Run("failed deduct leaves the balance unchanged", func(t *testing.T) {
		f := newFixture(t)
		cmds := commands.NewBalanceCommands(f.allocator, f.store)
		accountID := f.seedAccount(t, 100)

		_, err := cmds.Deduct(ctx, accountID, 101)
		assert.ErrorIs(t, err, commands.ErrInsufficientBalance)
		assert.Equal(t, int64(100), f.getAccount(t, accountID).Balance().Amount())
	})

	t.Run("concurrent charges are all applied", func(t *testing.T) {
		f := newFixture(t)
		cmds := commands.NewBalanceCommands(f.allocator, f.store)
		accountID := f.seedAccount(t, 0)

		const callers = 50
		var wg sync.WaitGroup
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := cmds.Charge(ctx, accountID, 100)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		assert.Equal(t, int64(callers*100), f.getAccount(t, accountID).Balance().Amount())
	})

	t.Run("concurrent deducts never overdraw", func(t *testing.T) {
		f := newFixture(t)
		cmds := commands.NewBalanceCommands(f.allocator, f.store)
		accountID := f.seedAccount(t, 1000)

		const callers = 30
		var wg sync.WaitGroup
		var mu sync.Mutex
		succeeded := 0

		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := cmds.Deduct(ctx, accountID, 100)
				if err == nil {
					mu.Lock()
					succeeded++
					mu.Unlock()
					return
				}
				if !errors.Is(err, commands.ErrInsufficientBalance) {
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 10, succeeded)
		assert.Equal(t, int64(0), f.getAccount(t, accountID).Balance().Amount())
	})
}
