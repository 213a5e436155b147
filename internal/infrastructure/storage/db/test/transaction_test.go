package db_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zkramp/ramp-daemon/internal/core/domain"
)

func TestRunTransaction(t *testing.T) {
	repositories := createRepoManagers(t)

	for i := range repositories {
		repo := repositories[i]

		t.Run(repo.Name, func(t *testing.T) {
			t.Run("commit", func(t *testing.T) {
				testCommittedTransaction(t, repo)
			})
			t.Run("rollback_on_error", func(t *testing.T) {
				testRolledBackTransaction(t, repo, 100, func() error {
					return fmt.Errorf("boom")
				})
			})
			t.Run("rollback_on_panic", func(t *testing.T) {
				testRolledBackTransaction(t, repo, 101, func() error {
					panic("boom")
				})
			})
		})
	}
}

func testCommittedTransaction(t *testing.T, repo repoManager) {
	ctx := context.Background()
	deposit := makeRandomDeposit(t, 1)

	res, err := repo.Manager.RunTransaction(
		ctx, false,
		func(ctx context.Context) (interface{}, error) {
			if err := repo.Manager.DepositRepository().AddDeposit(ctx, deposit); err != nil {
				return nil, err
			}
			nullifier, _ := domain.NewNullifier(randomHash(), venmo, 1)
			if err := repo.Manager.NullifierRepository().AddNullifier(ctx, nullifier); err != nil {
				return nil, err
			}
			return deposit.ID, nil
		},
	)
	require.NoError(t, err)
	require.Equal(t, deposit.ID, res)

	_, err = repo.Manager.DepositRepository().GetDeposit(ctx, deposit.ID)
	require.NoError(t, err)
}

// testRolledBackTransaction makes a bunch of changes to different
// repositories within a transaction, then fails and checks that none of the
// changes has been persisted.
func testRolledBackTransaction(
	t *testing.T, repo repoManager, depositID uint64, fail func() error,
) {
	ctx := context.Background()
	deposit := makeRandomDeposit(t, depositID)
	require.NoError(t, repo.Manager.DepositRepository().AddDeposit(ctx, deposit))

	intent := makeRandomIntent(t, deposit.ID, 0, 10)
	nullifier, err := domain.NewNullifier(randomHash(), venmo, 10)
	require.NoError(t, err)
	lastSequence, err := repo.Manager.EventRepository().LastSequence(ctx)
	require.NoError(t, err)

	_, err = repo.Manager.RunTransaction(
		ctx, false,
		func(ctx context.Context) (interface{}, error) {
			if err := repo.Manager.DepositRepository().UpdateDeposit(
				ctx, deposit.ID,
				func(d *domain.Deposit) (*domain.Deposit, error) {
					if err := d.Lock(intent.ID, intent.Amount); err != nil {
						return nil, err
					}
					return d, nil
				},
			); err != nil {
				return nil, err
			}
			if err := repo.Manager.IntentRepository().AddIntent(ctx, intent); err != nil {
				return nil, err
			}
			if err := repo.Manager.NullifierRepository().AddNullifier(ctx, nullifier); err != nil {
				return nil, err
			}
			if err := repo.Manager.BalanceRepository().UpdateBalance(
				ctx, intent.Taker, deposit.Token,
				func(b *domain.Balance) (*domain.Balance, error) {
					b.Credit(intent.Amount)
					return b, nil
				},
			); err != nil {
				return nil, err
			}
			if _, err := repo.Manager.EventRepository().AddEvents(
				ctx, domain.NewEvent(domain.EventIntentSignalled, 10),
			); err != nil {
				return nil, err
			}
			return nil, fail()
		},
	)
	require.Error(t, err)

	d, err := repo.Manager.DepositRepository().GetDeposit(ctx, deposit.ID)
	require.NoError(t, err)
	require.Zero(t, d.LockedAmount)
	require.Empty(t, d.IntentIDs)

	_, err = repo.Manager.IntentRepository().GetIntent(ctx, intent.ID)
	require.ErrorIs(t, err, domain.ErrIntentNotFound)

	ok, err := repo.Manager.NullifierRepository().IsNullified(ctx, nullifier.Hash)
	require.NoError(t, err)
	require.False(t, ok)

	balance, err := repo.Manager.BalanceRepository().GetBalance(
		ctx, intent.Taker, deposit.Token,
	)
	require.NoError(t, err)
	require.Zero(t, balance.Amount)

	sequence, err := repo.Manager.EventRepository().LastSequence(ctx)
	require.NoError(t, err)
	require.Equal(t, lastSequence, sequence)
}
