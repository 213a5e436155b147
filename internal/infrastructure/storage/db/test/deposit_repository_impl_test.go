package db_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/zkramp/ramp-daemon/internal/core/domain"
)

func TestDepositRepositoryImplementations(t *testing.T) {
	repositories := createRepoManagers(t)

	for i := range repositories {
		repo := repositories[i]

		t.Run(repo.Name, func(t *testing.T) {
			t.Run("add_and_get_deposits", func(t *testing.T) {
				testAddAndGetDeposits(t, repo.Manager.DepositRepository())
			})
			t.Run("update_deposit", func(t *testing.T) {
				testUpdateDeposit(t, repo.Manager.DepositRepository())
			})
		})
	}
}

func testAddAndGetDeposits(t *testing.T, repo domain.DepositRepository) {
	ctx := context.Background()

	allDeposits, err := repo.GetAllDeposits(ctx)
	require.NoError(t, err)
	require.Empty(t, allDeposits)

	count, err := repo.CountDeposits(ctx)
	require.NoError(t, err)
	require.Zero(t, count)

	deposits := make([]*domain.Deposit, 0, 5)
	for i := 5; i > 0; i-- {
		deposit := makeRandomDeposit(t, uint64(i))
		deposits = append(deposits, deposit)
		require.NoError(t, repo.AddDeposit(ctx, deposit))
	}

	err = repo.AddDeposit(ctx, deposits[0])
	require.ErrorIs(t, err, domain.ErrDepositAlreadyExists)

	count, err = repo.CountDeposits(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(5), count)

	allDeposits, err = repo.GetAllDeposits(ctx)
	require.NoError(t, err)
	require.Len(t, allDeposits, 5)
	for i, d := range allDeposits {
		require.Equal(t, uint64(i+1), d.ID)
	}

	deposit, err := repo.GetDeposit(ctx, deposits[0].ID)
	require.NoError(t, err)
	require.Equal(t, deposits[0].Depositor, deposit.Depositor)
	require.Equal(t, deposits[0].Token, deposit.Token)
	require.Equal(t, deposits[0].RemainingAmount, deposit.RemainingAmount)
	require.Equal(t, deposits[0].Verifiers, deposit.Verifiers)
	rate, ok := deposit.ConversionRate(usd)
	require.True(t, ok)
	require.True(t, rate.Equal(decimal.RequireFromString("1.05")))

	_, err = repo.GetDeposit(ctx, 100)
	require.ErrorIs(t, err, domain.ErrDepositNotFound)

	depositsForDepositor, err := repo.GetDepositsForDepositor(
		ctx, deposits[1].Depositor,
	)
	require.NoError(t, err)
	require.Len(t, depositsForDepositor, 1)
	require.Equal(t, deposits[1].ID, depositsForDepositor[0].ID)

	depositsForDepositor, err = repo.GetDepositsForDepositor(ctx, randomAddress())
	require.NoError(t, err)
	require.Empty(t, depositsForDepositor)
}

func testUpdateDeposit(t *testing.T, repo domain.DepositRepository) {
	ctx := context.Background()
	deposit := makeRandomDeposit(t, 1000)
	require.NoError(t, repo.AddDeposit(ctx, deposit))

	err := repo.UpdateDeposit(
		ctx, deposit.ID,
		func(d *domain.Deposit) (*domain.Deposit, error) {
			if err := d.Lock("intent", 300); err != nil {
				return nil, err
			}
			return d, nil
		},
	)
	require.NoError(t, err)

	updated, err := repo.GetDeposit(ctx, deposit.ID)
	require.NoError(t, err)
	require.Equal(t, uint64(300), updated.LockedAmount)
	require.Equal(t, uint64(700), updated.AvailableLiquidity())
	require.Equal(t, []string{"intent"}, updated.IntentIDs)

	err = repo.UpdateDeposit(
		ctx, deposit.ID,
		func(d *domain.Deposit) (*domain.Deposit, error) {
			if err := d.Lock("other", 800); err != nil {
				return nil, err
			}
			return d, nil
		},
	)
	require.ErrorIs(t, err, domain.ErrInsufficientLiquidity)

	updated, err = repo.GetDeposit(ctx, deposit.ID)
	require.NoError(t, err)
	require.Equal(t, uint64(300), updated.LockedAmount)

	err = repo.UpdateDeposit(
		ctx, 2000,
		func(d *domain.Deposit) (*domain.Deposit, error) { return d, nil },
	)
	require.ErrorIs(t, err, domain.ErrDepositNotFound)
}
