package inmemory

import (
	"github.com/shopspring/decimal"
	"github.com/zkramp/ramp-daemon/internal/core/domain"
)

// Entities are stored by value and deep copied in and out of the stores so
// that callers never share maps or slices with them.

func cloneDeposit(d domain.Deposit) domain.Deposit {
	rates := make(map[string]decimal.Decimal, len(d.ConversionRates))
	for k, v := range d.ConversionRates {
		rates[k] = v
	}
	d.ConversionRates = rates
	d.Verifiers = append([]string{}, d.Verifiers...)
	d.IntentIDs = append([]string{}, d.IntentIDs...)
	return d
}

func cloneAccount(a domain.Account) domain.Account {
	settlements := make(map[string]int64, len(a.LastSettlement))
	for k, v := range a.LastSettlement {
		settlements[k] = v
	}
	a.LastSettlement = settlements
	a.Denylist = append([]string{}, a.Denylist...)
	a.Allowlist = append([]string{}, a.Allowlist...)
	return a
}

func cloneEvent(e domain.Event) domain.Event {
	data := make(map[string]string, len(e.Data))
	for k, v := range e.Data {
		data[k] = v
	}
	e.Data = data
	return e
}
