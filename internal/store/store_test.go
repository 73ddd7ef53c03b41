package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto_wallet/internal/db/dbtest"
	"crypto_wallet/internal/domain"
)

func newStore(t *testing.T) *Store {
	return New(dbtest.New(t))
}

func createUser(t *testing.T, s *Store, email string) *domain.User {
	t.Helper()
	u := &domain.User{Name: "A", Email: email, PasswordHash: "hash"}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func TestUsers(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	u := createUser(t, s, " A@X.com ")
	assert.NotEqual(t, uuid.Nil, u.ID)
	assert.Equal(t, "a@x.com", u.Email)
	assert.Equal(t, domain.RoleUser, u.Role)
	assert.False(t, u.EmailVerified)

	err := s.CreateUser(ctx, &domain.User{Name: "B", Email: "a@x.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	found, err := s.FindUserByEmail(ctx, "A@x.COM")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	_, err = s.FindUserByEmail(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.MarkEmailVerified(ctx, u.ID))
	found, err = s.FindUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, found.EmailVerified)

	createUser(t, s, "b@x.com")
	users, total, err := s.ListUsers(ctx, 0, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, users, 1)
}

func TestFindOrCreateWallet_OneRowPerCoin(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	u := createUser(t, s, "a@x.com")

	w1, created, err := s.FindOrCreateWallet(ctx, u.ID, "btc", false)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, domain.CoinBTC, w1.Coin)
	assert.True(t, w1.BalanceCoin.IsZero())

	for _, coin := range []string{"BTC", "Btc", "btc"} {
		w, created, err := s.FindOrCreateWallet(ctx, u.ID, coin, false)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, w1.ID, w.ID)
	}

	wallets, err := s.ListWallets(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, wallets, 1)
}

func TestSaveBalances(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	u := createUser(t, s, "a@x.com")

	wallets, err := s.CreateWallets(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, wallets, 2)

	w, err := s.FindWallet(ctx, u.ID, "eth", false)
	require.NoError(t, err)
	w.BalanceCoin = decimal.RequireFromString("1.5")
	require.NoError(t, s.SaveBalanceCoin(ctx, w))
	w.BalanceUSD = decimal.RequireFromString("4500.456")
	require.NoError(t, s.SaveBalanceUSD(ctx, w))

	got, err := s.FindWallet(ctx, u.ID, "ETH", true)
	require.NoError(t, err)
	assert.Equal(t, "1.50000000", got.BalanceCoin.StringFixed(domain.CoinPlaces))
	assert.Equal(t, "4500.46", got.BalanceUSD.StringFixed(domain.USDPlaces))

	_, err = s.FindWallet(ctx, uuid.New(), "ETH", false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTransactions(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	u := createUser(t, s, "a@x.com")

	for i, coin := range []string{"BTC", "ETH", "BTC"} {
		require.NoError(t, s.CreateTransaction(ctx, &domain.Transaction{
			UserID:          u.ID,
			ActivityKey:     domain.KindDeposit,
			ActivityTitle:   "Deposit",
			ActivityName:    "Deposit",
			AccountName:     coin,
			Amount:          decimal.NewFromInt(int64(i + 1)),
			TransactionDate: int64(1000 + i),
			Status:          domain.StatusCompleted,
		}))
	}

	all, err := s.ListTransactions(ctx, u.ID, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.EqualValues(t, 1002, all[0].TransactionDate)
	assert.EqualValues(t, 1000, all[2].TransactionDate)

	btc, err := s.ListTransactions(ctx, u.ID, "btc")
	require.NoError(t, err)
	assert.Len(t, btc, 2)
}

func TestTransactionRollback(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	u := createUser(t, s, "a@x.com")
	boom := errors.New("boom")

	err := s.Transaction(ctx, func(tx *Store) error {
		if _, _, err := tx.FindOrCreateWallet(ctx, u.ID, "BTC", true); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	wallets, err := s.ListWallets(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, wallets)
}

func TestListAllTransactions(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	a := createUser(t, s, "a@x.com")
	b := createUser(t, s, "b@x.com")

	rows := []struct {
		user *domain.User
		kind string
		coin string
		at   int64
	}{
		{a, domain.KindDeposit, "BTC", 1000},
		{a, domain.KindWithdrawal, "BTC", 2000},
		{b, domain.KindDeposit, "ETH", 3000},
		{b, domain.KindReward, "BTC", 4000},
	}
	for _, r := range rows {
		require.NoError(t, s.CreateTransaction(ctx, &domain.Transaction{
			UserID:          r.user.ID,
			ActivityKey:     r.kind,
			ActivityTitle:   domain.TitleFor(r.kind),
			ActivityName:    domain.TitleFor(r.kind),
			AccountName:     r.coin,
			Amount:          decimal.NewFromInt(1),
			TransactionDate: r.at,
			Status:          domain.StatusCompleted,
		}))
	}

	tests := []struct {
		name   string
		filter TransactionFilter
		total  int64
		first  int64
	}{
		{name: "everything", filter: TransactionFilter{}, total: 4, first: 4000},
		{name: "by user", filter: TransactionFilter{UserID: a.ID}, total: 2, first: 2000},
		{name: "by kind", filter: TransactionFilter{Kind: "DEPOSIT"}, total: 2, first: 3000},
		{name: "by coin", filter: TransactionFilter{Coin: "btc"}, total: 3, first: 4000},
		{name: "by range", filter: TransactionFilter{From: 2000, To: 3000}, total: 2, first: 3000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txs, total, err := s.ListAllTransactions(ctx, tt.filter, 0, 1)
			require.NoError(t, err)
			assert.Equal(t, tt.total, total)
			require.Len(t, txs, 1)
			assert.Equal(t, tt.first, txs[0].TransactionDate)
		})
	}
}
