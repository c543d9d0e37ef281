package orders_test

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smm-bot/internal/apperr"
	"smm-bot/internal/ids"
	"smm-bot/internal/infra/sqlite3"
	"smm-bot/internal/storage"
	"smm-bot/internal/stories/catalog"
	"smm-bot/internal/stories/ledger"
	"smm-bot/internal/stories/orders"
	"smm-bot/internal/stories/users"
)

const testCatalog = `
platforms:
  - name: Telegram
    categories:
      - name: Followers
        services:
          - id: tf1
            name: Standard Followers
            price_per_100: "10"
            min: 50
          - id: tx9
            name: Odd Price
            price_per_100: "0.333"
            min: 1
`

type fixture struct {
	orders *orders.Service
	ledger *ledger.Service
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite3.New(ctx, sqlite3.WithPath(filepath.Join(t.TempDir(), "smm.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	st := storage.New(db.DB)
	require.NoError(t, st.Migrate(ctx))
	_, err = st.CreateUser(ctx, users.User{ID: 1})
	require.NoError(t, err)

	cat, err := catalog.Parse([]byte(testCatalog))
	require.NoError(t, err)

	led := ledger.NewService(st, slog.Default())
	return fixture{
		orders: orders.NewService(st, led, cat, ids.NewGenerator(), slog.Default()),
		ledger: led,
	}
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeTotal(t *testing.T) {
	tests := []struct {
		name     string
		price    string
		quantity int64
		want     string
		display  string
	}{
		{name: "whole hundreds", price: "10", quantity: 100, want: "10", display: "10.00"},
		{name: "fractional quantity", price: "10", quantity: 150, want: "15", display: "15.00"},
		{name: "keeps full precision", price: "0.333", quantity: 7, want: "0.02331", display: "0.02"},
		{name: "truncates on display", price: "65", quantity: 201, want: "130.65", display: "130.65"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total := orders.ComputeTotal(orders.ServiceRef{PricePer100: d(tt.price)}, tt.quantity)
			require.True(t, total.Equal(d(tt.want)), "got %s", total)
			require.Equal(t, tt.display, total.Truncate(2).StringFixed(2))
		})
	}
}

func TestValidateQuantity(t *testing.T) {
	ref := orders.ServiceRef{Minimum: 50}
	require.ErrorIs(t, orders.ValidateQuantity(ref, 49), apperr.ErrValidation)
	require.ErrorIs(t, orders.ValidateQuantity(ref, 0), apperr.ErrValidation)
	require.NoError(t, orders.ValidateQuantity(ref, 50))
}

func TestSelectServiceSnapshotsCatalog(t *testing.T) {
	f := newFixture(t)

	ref, err := f.orders.SelectService("tf1")
	require.NoError(t, err)
	require.Equal(t, "Standard Followers", ref.Name)
	require.Equal(t, int64(50), ref.Minimum)
	require.True(t, ref.PricePer100.Equal(d("10")))

	_, err = f.orders.SelectService("nope")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestConfirmDebitsExactBalance(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.ledger.Credit(ctx, 1, d("10"))
	require.NoError(t, err)

	ref, err := f.orders.SelectService("tf1")
	require.NoError(t, err)

	placement, err := f.orders.Confirm(ctx, 1, orders.Draft{Service: ref, Quantity: 100, Link: "u/example"})
	require.NoError(t, err)
	require.Equal(t, "10.00", placement.Order.Total.StringFixed(2))
	require.Equal(t, orders.StatusPending, placement.Order.Status)
	require.Equal(t, "0.00", placement.NewBalance.StringFixed(2))

	balance, err := f.ledger.BalanceOf(ctx, 1)
	require.NoError(t, err)
	require.True(t, balance.IsZero())

	mine, err := f.orders.ListByUser(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, "u/example", mine[0].Link)
}

func TestConfirmInsufficientFunds(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.ledger.Credit(ctx, 1, d("5"))
	require.NoError(t, err)

	ref, err := f.orders.SelectService("tf1")
	require.NoError(t, err)

	_, err = f.orders.Confirm(ctx, 1, orders.Draft{Service: ref, Quantity: 200, Link: "u/example"})
	require.ErrorIs(t, err, apperr.ErrInsufficientFunds)

	balance, err := f.ledger.BalanceOf(ctx, 1)
	require.NoError(t, err)
	require.True(t, balance.Equal(d("5")))

	all, err := f.orders.List(ctx, orders.ListCriteria{})
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestConfirmIncompleteDraft(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	ref, err := f.orders.SelectService("tf1")
	require.NoError(t, err)

	tests := []struct {
		name  string
		draft orders.Draft
	}{
		{name: "no service", draft: orders.Draft{Quantity: 100, Link: "x"}},
		{name: "no quantity", draft: orders.Draft{Service: ref, Link: "x"}},
		{name: "no link", draft: orders.Draft{Service: ref, Quantity: 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.orders.Confirm(ctx, 1, tt.draft)
			require.ErrorIs(t, err, apperr.ErrStateConflict)
		})
	}
}

func TestConcurrentConfirmsNeverOverdraw(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.ledger.Credit(ctx, 1, d("35"))
	require.NoError(t, err)
	ref, err := f.orders.SelectService("tf1")
	require.NoError(t, err)

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		placed int
	)
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.orders.Confirm(ctx, 1, orders.Draft{Service: ref, Quantity: 100, Link: "u/example"})
			if err == nil {
				mu.Lock()
				placed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 3, placed)
	balance, err := f.ledger.BalanceOf(ctx, 1)
	require.NoError(t, err)
	require.True(t, balance.Equal(d("5")))
}

func TestUpdateStatusIsUnconstrainedAndDoesNotRefund(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.ledger.Credit(ctx, 1, d("20"))
	require.NoError(t, err)
	ref, err := f.orders.SelectService("tf1")
	require.NoError(t, err)
	placement, err := f.orders.Confirm(ctx, 1, orders.Draft{Service: ref, Quantity: 100, Link: "u/example"})
	require.NoError(t, err)

	updated, err := f.orders.UpdateStatus(ctx, placement.Order.ID, orders.StatusRejected)
	require.NoError(t, err)
	require.Equal(t, orders.StatusRejected, updated.Status)

	balance, err := f.ledger.BalanceOf(ctx, 1)
	require.NoError(t, err)
	require.True(t, balance.Equal(d("10")))

	updated, err = f.orders.UpdateStatus(ctx, placement.Order.ID, orders.StatusProcessing)
	require.NoError(t, err)
	require.Equal(t, orders.StatusProcessing, updated.Status)

	_, err = f.orders.UpdateStatus(ctx, placement.Order.ID, orders.StatusPending)
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.orders.UpdateStatus(ctx, "O-missing", orders.StatusCompleted)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestConcurrentStatusUpdatesReturnTheirOwnWrite(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.ledger.Credit(ctx, 1, d("10"))
	require.NoError(t, err)
	ref, err := f.orders.SelectService("tf1")
	require.NoError(t, err)
	placement, err := f.orders.Confirm(ctx, 1, orders.Draft{Service: ref, Quantity: 100, Link: "u/example"})
	require.NoError(t, err)

	statuses := []orders.Status{orders.StatusProcessing, orders.StatusCompleted, orders.StatusRejected}

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		want := statuses[i%len(statuses)]
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := f.orders.UpdateStatus(ctx, placement.Order.ID, want)
			if !assert.NoError(t, err) {
				return
			}
			assert.Equal(t, want, got.Status)
		}()
	}
	wg.Wait()
}
