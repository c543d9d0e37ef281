package storage

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"smm-bot/internal/infra/sqlite3"
	"smm-bot/internal/stories/deposits"
	"smm-bot/internal/stories/orders"
	"smm-bot/internal/stories/users"
)

func openTestStorage(t *testing.T, path string) *storageImpl {
	t.Helper()

	db, err := sqlite3.New(context.Background(), sqlite3.WithPath(path))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := New(db.DB)
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func newTestStorage(t *testing.T) *storageImpl {
	t.Helper()
	return openTestStorage(t, filepath.Join(t.TempDir(), "smm.db"))
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCreateUserIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	created, err := s.CreateUser(ctx, users.User{ID: 42, DisplayName: "Alice"})
	require.NoError(t, err)
	require.True(t, created)

	created, err = s.CreateUser(ctx, users.User{ID: 42, DisplayName: "Renamed"})
	require.NoError(t, err)
	require.False(t, created)

	id := int64(42)
	u, err := s.GetUser(ctx, users.GetCriteria{ID: &id})
	require.NoError(t, err)
	require.NotNil(t, u)
	require.Equal(t, "Alice", u.DisplayName)
	require.True(t, u.Balance.IsZero())

	missing := int64(7)
	u, err = s.GetUser(ctx, users.GetCriteria{ID: &missing})
	require.NoError(t, err)
	require.Nil(t, u)
}

func TestBalanceUpsert(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	balance, err := s.GetBalance(ctx, 1)
	require.NoError(t, err)
	require.True(t, balance.IsZero())

	require.NoError(t, s.SetBalance(ctx, 1, d("12.345")))
	balance, err = s.GetBalance(ctx, 1)
	require.NoError(t, err)
	require.True(t, balance.Equal(d("12.345")))

	_, err = s.CreateUser(ctx, users.User{ID: 2, DisplayName: "Bob"})
	require.NoError(t, err)
	require.NoError(t, s.SetBalance(ctx, 2, d("3")))

	id := int64(2)
	u, err := s.GetUser(ctx, users.GetCriteria{ID: &id})
	require.NoError(t, err)
	require.Equal(t, "Bob", u.DisplayName)
	require.True(t, u.Balance.Equal(d("3")))

	list, err := s.ListUsers(ctx, users.ListCriteria{})
	require.NoError(t, err)
	require.Len(t, list, 2)
}

func TestTransitionDepositIsCompareAndSet(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	_, err := s.CreateUser(ctx, users.User{ID: 1})
	require.NoError(t, err)
	_, err = s.CreateDeposit(ctx, deposits.Deposit{
		ID:       "D1",
		UserID:   1,
		Amount:   d("50"),
		Currency: deposits.CurrencyUSDT,
		Status:   deposits.StatusPending,
	})
	require.NoError(t, err)

	ok, err := s.TransitionDeposit(ctx, "D1", deposits.StatusWaitingApproval, deposits.StatusApproved)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = s.TransitionDeposit(ctx, "D1", deposits.StatusPending, deposits.StatusWaitingApproval)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.TransitionDeposit(ctx, "D1", deposits.StatusPending, deposits.StatusWaitingApproval)
	require.NoError(t, err)
	require.False(t, ok)

	dep, err := s.GetDeposit(ctx, "D1")
	require.NoError(t, err)
	require.Equal(t, deposits.StatusWaitingApproval, dep.Status)
	require.True(t, dep.Amount.Equal(d("50")))

	status := deposits.StatusWaitingApproval
	list, err := s.ListDeposits(ctx, deposits.ListCriteria{Status: &status})
	require.NoError(t, err)
	require.Len(t, list, 1)

	dep, err = s.GetDeposit(ctx, "nope")
	require.NoError(t, err)
	require.Nil(t, dep)
}

func TestAwaitingApprovalFiltersOnClaimTime(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	require.NoError(t, s.EnsureUser(ctx, 1))

	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	create := func(id string, createdAt, claimedAt time.Time) {
		s.now = func() time.Time { return createdAt }
		_, err := s.CreateDeposit(ctx, deposits.Deposit{
			ID:       id,
			UserID:   1,
			Amount:   d("20"),
			Currency: deposits.CurrencyBTC,
			Status:   deposits.StatusPending,
		})
		require.NoError(t, err)

		s.now = func() time.Time { return claimedAt }
		ok, err := s.TransitionDeposit(ctx, id, deposits.StatusPending, deposits.StatusWaitingApproval)
		require.NoError(t, err)
		require.True(t, ok)
	}

	// Old deposit, claimed just now.
	create("D-fresh-claim", base.Add(-72*time.Hour), base.Add(-time.Minute))
	create("D-stale-1", base.Add(-3*time.Hour), base.Add(-2*time.Hour))
	create("D-stale-2", base.Add(-5*time.Hour), base.Add(-time.Hour))

	status := deposits.StatusWaitingApproval
	cutoff := base.Add(-30 * time.Minute)
	list, err := s.ListDeposits(ctx, deposits.ListCriteria{Status: &status, UpdatedBefore: &cutoff})
	require.NoError(t, err)

	got := make([]string, 0, len(list))
	for _, dep := range list {
		got = append(got, dep.ID)
	}
	require.Equal(t, []string{"D-stale-2", "D-stale-1"}, got)
}

func TestAtomicRollsBackEveryWrite(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	require.NoError(t, s.SetBalance(ctx, 1, d("10")))

	err := s.Atomic(ctx, func(ctx context.Context) error {
		if err := s.SetBalance(ctx, 1, d("0")); err != nil {
			return err
		}
		// Duplicate id fails and must undo the balance write above.
		order := orders.Order{ID: "O1", UserID: 1, Service: orders.ServiceRef{Name: "x"}, Quantity: 1, Link: "l", Total: d("10"), Status: orders.StatusPending}
		if _, err := s.CreateOrder(ctx, order); err != nil {
			return err
		}
		_, err := s.CreateOrder(ctx, order)
		return err
	})
	require.Error(t, err)

	balance, err := s.GetBalance(ctx, 1)
	require.NoError(t, err)
	require.True(t, balance.Equal(d("10")))

	o, err := s.GetOrder(ctx, "O1")
	require.NoError(t, err)
	require.Nil(t, o)
}

func TestOrdersStatusAndListing(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	_, err := s.CreateUser(ctx, users.User{ID: 1})
	require.NoError(t, err)

	created, err := s.CreateOrder(ctx, orders.Order{
		ID:       "O1",
		UserID:   1,
		Service:  orders.ServiceRef{ID: "tf1", Name: "Standard Followers", PricePer100: d("10")},
		Quantity: 100,
		Link:     "u/example",
		Total:    d("10"),
		Status:   orders.StatusPending,
	})
	require.NoError(t, err)
	require.Equal(t, "Standard Followers", created.Service.Name)
	require.True(t, created.Service.PricePer100.Equal(d("10")))

	found, err := s.UpdateOrderStatus(ctx, "O1", orders.StatusRejected)
	require.NoError(t, err)
	require.True(t, found)

	found, err = s.UpdateOrderStatus(ctx, "O404", orders.StatusRejected)
	require.NoError(t, err)
	require.False(t, found)

	uid := int64(1)
	list, err := s.ListOrders(ctx, orders.ListCriteria{UserID: &uid})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, orders.StatusRejected, list[0].Status)
}

func TestSnapshotSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "smm.db")

	state := NewState()
	state.Users[1] = UserState{Balance: d("50.5"), DisplayName: "Alice"}
	state.Users[2] = UserState{Balance: d("0"), DisplayName: "Bob"}
	state.Deposits["D1"] = DepositState{UserID: 1, Amount: d("50.5"), Currency: "USDT", Status: "approved"}
	state.Deposits["D2"] = DepositState{UserID: 3, Amount: d("10"), Currency: "BTC", Status: "pending"}
	state.Orders["O1"] = OrderState{UserID: 2, ServiceID: "tf1", ServiceName: "Standard Followers", Quantity: 150, Link: "u/bob", Total: d("15"), Status: "pending"}

	first := openTestStorage(t, path)
	require.NoError(t, first.Restore(ctx, state))
	before, err := first.Snapshot(ctx)
	require.NoError(t, err)
	require.NoError(t, first.db.Close())

	second := openTestStorage(t, path)
	after, err := second.Snapshot(ctx)
	require.NoError(t, err)

	require.Equal(t, before, after)
	require.Len(t, after.Users, 3, "user referenced only by a deposit is created")
	require.True(t, after.Users[1].Balance.Equal(d("50.5")))
	require.Equal(t, "u/bob", after.Orders["O1"].Link)
}

func TestSnapshotRestoreKeepsWrittenState(t *testing.T) {
	ctx := context.Background()
	src := newTestStorage(t)
	created := time.Date(2024, 3, 2, 10, 30, 0, 0, time.UTC)
	src.now = func() time.Time { return created }

	_, err := src.CreateUser(ctx, users.User{ID: 1, DisplayName: "Alice"})
	require.NoError(t, err)
	require.NoError(t, src.SetBalance(ctx, 1, d("35")))
	_, err = src.CreateDeposit(ctx, deposits.Deposit{ID: "D1", UserID: 1, Amount: d("50"), Currency: deposits.CurrencyUSDT, Status: deposits.StatusPending})
	require.NoError(t, err)
	_, err = src.CreateOrder(ctx, orders.Order{
		ID:       "O1",
		UserID:   1,
		Service:  orders.ServiceRef{ID: "tf1", Name: "Standard Followers", PricePer100: d("10")},
		Quantity: 150,
		Link:     "u/alice",
		Total:    d("15"),
		Status:   orders.StatusPending,
	})
	require.NoError(t, err)

	before, err := src.Snapshot(ctx)
	require.NoError(t, err)

	dst := newTestStorage(t)
	dst.now = func() time.Time { return created.Add(24 * time.Hour) }
	require.NoError(t, dst.Restore(ctx, before))
	after, err := dst.Snapshot(ctx)
	require.NoError(t, err)

	require.Equal(t, before, after)
	require.True(t, after.Orders["O1"].PricePer100.Equal(d("10")))
	require.True(t, after.Orders["O1"].CreatedAt.Equal(created))
	require.True(t, after.Deposits["D1"].CreatedAt.Equal(created))

	order, err := dst.GetOrder(ctx, "O1")
	require.NoError(t, err)
	require.True(t, order.Service.PricePer100.Equal(d("10")))
}

func TestDecodeLegacy(t *testing.T) {
	raw := `{
  "users": {"100": {"balance": 12.5, "name": "Alice"}, "200": {"balance": 0}},
  "deposits": {"D1700000000000": {"userId": 100, "amount": 50, "crypto": "USDT", "status": "waiting_approval"}},
  "orders": {"O1700000000001": {"userId": 100, "svc": "Premium Members", "qty": 100, "link": "t.me/x", "total": 50, "status": "Pending"}}
}`

	state, err := DecodeLegacy(strings.NewReader(raw))
	require.NoError(t, err)

	require.Len(t, state.Users, 2)
	require.Equal(t, "Alice", state.Users[100].DisplayName)
	require.True(t, state.Users[100].Balance.Equal(d("12.5")))
	require.Equal(t, "USDT", state.Deposits["D1700000000000"].Currency)
	require.Equal(t, "pending", state.Orders["O1700000000001"].Status)
	require.Equal(t, "Premium Members", state.Orders["O1700000000001"].ServiceName)

	_, err = DecodeLegacy(strings.NewReader(`{"users": {"abc": {}}}`))
	require.Error(t, err)
}
