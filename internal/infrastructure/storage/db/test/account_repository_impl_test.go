package db_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zkramp/ramp-daemon/internal/core/domain"
)

func TestAccountRepositoryImplementations(t *testing.T) {
	repositories := createRepoManagers(t)

	for i := range repositories {
		repo := repositories[i]

		t.Run(repo.Name, func(t *testing.T) {
			testAccountRepository(t, repo.Manager.AccountRepository())
		})
	}
}

func testAccountRepository(t *testing.T, repo domain.AccountRepository) {
	ctx := context.Background()

	accounts := []*domain.Account{
		makeRandomAccount(t, 10),
		makeRandomAccount(t, 20),
	}
	for _, a := range accounts {
		require.NoError(t, repo.AddAccount(ctx, a))
	}
	err := repo.AddAccount(ctx, accounts[0])
	require.ErrorIs(t, err, domain.ErrAccountAlreadyExists)

	account, err := repo.GetAccount(ctx, accounts[0].Address)
	require.NoError(t, err)
	require.Equal(t, accounts[0].IDHash, account.IDHash)

	account, err = repo.GetAccountByIDHash(ctx, accounts[1].IDHash)
	require.NoError(t, err)
	require.Equal(t, accounts[1].Address, account.Address)

	_, err = repo.GetAccount(ctx, randomAddress())
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
	_, err = repo.GetAccountByIDHash(ctx, randomHash())
	require.ErrorIs(t, err, domain.ErrAccountNotFound)

	all, err := repo.GetAllAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	deniedIDHash := randomHash()
	newIDHash := randomHash()
	err = repo.UpdateAccount(
		ctx, accounts[0].Address,
		func(a *domain.Account) (*domain.Account, error) {
			if _, err := a.Deny(deniedIDHash); err != nil {
				return nil, err
			}
			if err := a.Rebind(newIDHash, venmo, 30); err != nil {
				return nil, err
			}
			a.RecordSettlement(venmo, 30)
			return a, nil
		},
	)
	require.NoError(t, err)

	account, err = repo.GetAccountByIDHash(ctx, newIDHash)
	require.NoError(t, err)
	require.Equal(t, accounts[0].Address, account.Address)
	require.True(t, account.IsDenied(deniedIDHash))
	require.Equal(t, int64(30), account.LastSettlement[venmo])

	_, err = repo.GetAccountByIDHash(ctx, accounts[0].IDHash)
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}
