package ledger

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"smm-bot/internal/apperr"
)

// memStorage keeps balances in a map. Atomic takes a global mutex and restores
// the previous map on error, which is enough to model commit/rollback.
type memStorage struct {
	txMu     sync.Mutex
	mu       sync.Mutex
	balances map[int64]decimal.Decimal
}

func newMemStorage() *memStorage {
	return &memStorage{balances: make(map[int64]decimal.Decimal)}
}

func (m *memStorage) Atomic(ctx context.Context, fn func(ctx context.Context) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	backup := make(map[int64]decimal.Decimal, len(m.balances))
	for k, v := range m.balances {
		backup[k] = v
	}
	m.mu.Unlock()

	if err := fn(ctx); err != nil {
		m.mu.Lock()
		m.balances = backup
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *memStorage) GetBalance(_ context.Context, userID int64) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[userID], nil
}

func (m *memStorage) SetBalance(_ context.Context, userID int64, balance decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[userID] = balance
	return nil
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCreditAndDebit(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemStorage(), slog.Default())

	balance, err := svc.Credit(ctx, 1, d("50"))
	require.NoError(t, err)
	require.True(t, balance.Equal(d("50")))

	balance, err = svc.Debit(ctx, 1, d("20.5"))
	require.NoError(t, err)
	require.True(t, balance.Equal(d("29.5")))

	got, err := svc.BalanceOf(ctx, 1)
	require.NoError(t, err)
	require.True(t, got.Equal(d("29.5")))
}

func TestDebitInsufficientFundsLeavesBalance(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemStorage(), slog.Default())

	_, err := svc.Credit(ctx, 7, d("5"))
	require.NoError(t, err)

	_, err = svc.Debit(ctx, 7, d("20"))
	require.ErrorIs(t, err, apperr.ErrInsufficientFunds)

	got, err := svc.BalanceOf(ctx, 7)
	require.NoError(t, err)
	require.True(t, got.Equal(d("5")))
}

func TestNonPositiveAmountsRejected(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemStorage(), slog.Default())

	for _, amount := range []string{"0", "-1"} {
		_, err := svc.Credit(ctx, 1, d(amount))
		require.ErrorIs(t, err, apperr.ErrValidation)
		_, err = svc.Debit(ctx, 1, d(amount))
		require.ErrorIs(t, err, apperr.ErrValidation)
	}
}

func TestTransactRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemStorage(), slog.Default())

	_, err := svc.Credit(ctx, 3, d("10"))
	require.NoError(t, err)

	boom := errors.New("order insert failed")
	err = svc.Transact(ctx, 3, func(_ context.Context, acc *Account) error {
		require.NoError(t, acc.Debit(d("10")))
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := svc.BalanceOf(ctx, 3)
	require.NoError(t, err)
	require.True(t, got.Equal(d("10")))
}

func TestBalanceEqualsCreditsMinusSuccessfulDebits(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemStorage(), slog.Default())
	rng := rand.New(rand.NewSource(42))

	expected := decimal.Zero
	for i := 0; i < 300; i++ {
		amount := decimal.New(rng.Int63n(5000)+1, -2)
		if rng.Intn(2) == 0 {
			_, err := svc.Credit(ctx, 11, amount)
			require.NoError(t, err)
			expected = expected.Add(amount)
			continue
		}
		_, err := svc.Debit(ctx, 11, amount)
		if expected.LessThan(amount) {
			require.ErrorIs(t, err, apperr.ErrInsufficientFunds)
			continue
		}
		require.NoError(t, err)
		expected = expected.Sub(amount)
	}

	got, err := svc.BalanceOf(ctx, 11)
	require.NoError(t, err)
	require.True(t, got.Equal(expected), "got %s, want %s", got, expected)
	require.False(t, got.IsNegative())
}

func TestConcurrentDebitsNeverOverdraw(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemStorage(), slog.Default())

	_, err := svc.Credit(ctx, 5, d("100"))
	require.NoError(t, err)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Debit(ctx, 5, d("7")); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 14, succeeded)
	got, err := svc.BalanceOf(ctx, 5)
	require.NoError(t, err)
	require.True(t, got.Equal(d("2")))
	require.Zero(t, svc.locks.size())
}
