package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zkramp/ramp-daemon/internal/core/domain"
)

func TestEventFilter(t *testing.T) {
	t.Parallel()

	e := domain.NewEvent(domain.EventIntentSignalled, 10)
	e.Sequence = 5
	e.DepositID = 1
	e.IntentID = "intent"
	require.NotEmpty(t, e.ID)

	tests := []struct {
		name    string
		filter  domain.EventFilter
		isMatch bool
	}{
		{"empty", domain.EventFilter{}, true},
		{"type", domain.EventFilter{Type: domain.EventIntentSignalled}, true},
		{"other_type", domain.EventFilter{Type: domain.EventIntentExpired}, false},
		{"deposit", domain.EventFilter{DepositID: 1}, true},
		{"other_deposit", domain.EventFilter{DepositID: 2}, false},
		{"intent", domain.EventFilter{IntentID: "intent"}, true},
		{"other_intent", domain.EventFilter{IntentID: "other"}, false},
		{"after_sequence", domain.EventFilter{AfterSequence: 4}, true},
		{"not_after_sequence", domain.EventFilter{AfterSequence: 5}, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.isMatch, tt.filter.Match(e))
		})
	}
}

func TestBalance(t *testing.T) {
	t.Parallel()

	b := domain.Balance{Owner: depositor, Token: token}
	b.Credit(100)
	require.NoError(t, b.Debit(40))
	require.Equal(t, uint64(60), b.Amount)
	require.ErrorIs(t, b.Debit(61), domain.ErrInsufficientBalance)
	require.Equal(t, domain.BalanceKey(depositor, token), b.Key())
}

func TestPageBounds(t *testing.T) {
	t.Parallel()

	page := domain.NewPage(2, 10)
	from, to := page.Bounds(15)
	require.Equal(t, 10, from)
	require.Equal(t, 15, to)

	from, to = page.Bounds(5)
	require.Equal(t, 5, from)
	require.Equal(t, 5, to)
}
