package db_test

import (
	"crypto/rand"
	"encoding/hex"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/zkramp/ramp-daemon/internal/core/domain"
	"github.com/zkramp/ramp-daemon/internal/core/ports"
	dbbadger "github.com/zkramp/ramp-daemon/internal/infrastructure/storage/db/badger"
	"github.com/zkramp/ramp-daemon/internal/infrastructure/storage/db/inmemory"
)

const (
	venmo = "venmo"
	usd   = "USD"
)

type repoManager struct {
	Name    string
	Manager ports.RepoManager
}

// createRepoManagers returns a fresh instance of every storage
// implementation, badger running in memory.
func createRepoManagers(t *testing.T) []repoManager {
	badgerRepoManager, err := dbbadger.NewRepoManager("", nil)
	require.NoError(t, err)
	t.Cleanup(badgerRepoManager.Close)

	return []repoManager{
		{
			Name:    "badger",
			Manager: badgerRepoManager,
		},
		{
			Name:    "inmemory",
			Manager: inmemory.NewRepoManager(),
		},
	}
}

func makeRandomDeposit(t *testing.T, id uint64) *domain.Deposit {
	deposit, err := domain.NewDeposit(
		id, randomAddress(), randomAddress(), 1000,
		map[string]decimal.Decimal{usd: decimal.RequireFromString("1.05")},
		map[string]string{venmo: usd}, 0, 100,
	)
	require.NoError(t, err)
	return deposit
}

func makeRandomIntent(
	t *testing.T, depositID uint64, nonce uint64, createdAt int64,
) *domain.Intent {
	taker := randomAddress()
	intent, err := domain.NewIntent(
		depositID, taker, taker, 100, venmo, usd, decimal.NewFromInt(1),
		nonce, createdAt, createdAt+60,
	)
	require.NoError(t, err)
	return intent
}

func makeRandomAccount(t *testing.T, registeredAt int64) *domain.Account {
	account, err := domain.NewAccount(
		randomAddress(), randomHash(), venmo, registeredAt,
	)
	require.NoError(t, err)
	return account
}

func randomAddress() string {
	return common.BytesToAddress(randomBytes(20)).Hex()
}

func randomHash() string {
	return "0x" + hex.EncodeToString(randomBytes(32))
}

func randomBytes(len int) []byte {
	b := make([]byte, len)
	//nolint
	rand.Read(b)
	return b
}
