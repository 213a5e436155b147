package db_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zkramp/ramp-daemon/internal/core/domain"
	"github.com/zkramp/ramp-daemon/internal/core/ports"
)

func TestNullifierRepositoryImplementations(t *testing.T) {
	repositories := createRepoManagers(t)

	for i := range repositories {
		repo := repositories[i]

		t.Run(repo.Name, func(t *testing.T) {
			t.Run("nullifiers", func(t *testing.T) {
				testNullifiers(t, repo.Manager.NullifierRepository())
			})
			t.Run("writers", func(t *testing.T) {
				testNullifierWriters(t, repo.Manager.NullifierRepository())
			})
			t.Run("seeded writers", func(t *testing.T) {
				testSeedNullifierWriter(t, repo.Manager)
			})
		})
	}
}

func testNullifiers(t *testing.T, repo domain.NullifierRepository) {
	ctx := context.Background()

	nullifier, err := domain.NewNullifier(randomHash(), venmo, 10)
	require.NoError(t, err)

	ok, err := repo.IsNullified(ctx, nullifier.Hash)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, repo.AddNullifier(ctx, nullifier))

	ok, err = repo.IsNullified(ctx, nullifier.Hash)
	require.NoError(t, err)
	require.True(t, ok)

	err = repo.AddNullifier(ctx, nullifier)
	require.ErrorIs(t, err, domain.ErrNullifierAlreadyUsed)

	stored, err := repo.GetNullifier(ctx, nullifier.Hash)
	require.NoError(t, err)
	require.Equal(t, *nullifier, *stored)

	_, err = repo.GetNullifier(ctx, randomHash())
	require.ErrorIs(t, err, domain.ErrNullifierNotFound)
}

func testNullifierWriters(t *testing.T, repo domain.NullifierRepository) {
	ctx := context.Background()

	writers, err := repo.GetWriters(ctx)
	require.NoError(t, err)
	require.Empty(t, writers)

	require.NoError(t, repo.AddWriter(ctx, venmo))
	require.NoError(t, repo.AddWriter(ctx, "garanti"))
	require.NoError(t, repo.AddWriter(ctx, venmo))

	writers, err = repo.GetWriters(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"garanti", venmo}, writers)

	require.NoError(t, repo.RemoveWriter(ctx, "garanti"))
	require.NoError(t, repo.RemoveWriter(ctx, "unknown"))

	writers, err = repo.GetWriters(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{venmo}, writers)
}

func testSeedNullifierWriter(t *testing.T, manager ports.RepoManager) {
	ctx := context.Background()
	repo := manager.NullifierRepository()
	writer := "seeded-" + randomHash()[2:10]

	// A rolled back seed leaves no trace.
	_, err := manager.RunTransaction(
		ctx, false, func(ctx context.Context) (interface{}, error) {
			added, err := repo.SeedWriter(ctx, writer)
			require.NoError(t, err)
			require.True(t, added)
			return nil, fmt.Errorf("rollback")
		},
	)
	require.Error(t, err)
	writers, err := repo.GetWriters(ctx)
	require.NoError(t, err)
	require.NotContains(t, writers, writer)

	added, err := repo.SeedWriter(ctx, writer)
	require.NoError(t, err)
	require.True(t, added)
	writers, err = repo.GetWriters(ctx)
	require.NoError(t, err)
	require.Contains(t, writers, writer)

	require.NoError(t, repo.RemoveWriter(ctx, writer))
	added, err = repo.SeedWriter(ctx, writer)
	require.NoError(t, err)
	require.False(t, added)
	writers, err = repo.GetWriters(ctx)
	require.NoError(t, err)
	require.NotContains(t, writers, writer)
}
