package httpinterface

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/zkramp/ramp-daemon/internal/core/application"
	"github.com/zkramp/ramp-daemon/internal/core/domain"
	"github.com/zkramp/ramp-daemon/internal/core/ports"
)

// Requests

type createDepositRequest struct {
	Token     string            `json:"token" binding:"required"`
	Amount    uint64            `json:"amount" binding:"required"`
	Rates     map[string]string `json:"rates" binding:"required"`
	Verifiers []string          `json:"verifiers" binding:"required"`
}

type amountRequest struct {
	Amount uint64 `json:"amount" binding:"required"`
}

type withdrawRequest struct {
	AllowPending bool `json:"allow_pending"`
}

type rateRequest struct {
	Rate string `json:"rate" binding:"required"`
}

type signalIntentRequest struct {
	DepositID uint64 `json:"deposit_id" binding:"required"`
	Amount    uint64 `json:"amount" binding:"required"`
	Recipient string `json:"recipient"`
	Verifier  string `json:"verifier" binding:"required"`
}

type proofRequest struct {
	Proof proofBundle `json:"proof" binding:"required"`
}

type registerRequest struct {
	Verifier string      `json:"verifier" binding:"required"`
	Proof    proofBundle `json:"proof" binding:"required"`
}

type allowlistRequest struct {
	Enabled bool `json:"enabled"`
}

// updateParamsRequest carries only the params to change.
type updateParamsRequest struct {
	IntentExpirationPeriod *int64  `json:"intent_expiration_period"`
	CooldownPeriod         *int64  `json:"cooldown_period"`
	MinDepositAmount       *uint64 `json:"min_deposit_amount"`
	MinIntentAmount        *uint64 `json:"min_intent_amount"`
	MaxIntentAmount        *uint64 `json:"max_intent_amount"`
	MaxIntentsPerDeposit   *int    `json:"max_intents_per_deposit"`
	MaxDepositsPerAccount  *int    `json:"max_deposits_per_account"`
	SustainabilityFee      *uint32 `json:"sustainability_fee"`
	FeeRecipient           *string `json:"fee_recipient"`
}

func (r updateParamsRequest) apply(p *domain.Params) {
	if r.IntentExpirationPeriod != nil {
		p.IntentExpirationPeriod = *r.IntentExpirationPeriod
	}
	if r.CooldownPeriod != nil {
		p.CooldownPeriod = *r.CooldownPeriod
	}
	if r.MinDepositAmount != nil {
		p.MinDepositAmount = *r.MinDepositAmount
	}
	if r.MinIntentAmount != nil {
		p.MinIntentAmount = *r.MinIntentAmount
	}
	if r.MaxIntentAmount != nil {
		p.MaxIntentAmount = *r.MaxIntentAmount
	}
	if r.MaxIntentsPerDeposit != nil {
		p.MaxIntentsPerDeposit = *r.MaxIntentsPerDeposit
	}
	if r.MaxDepositsPerAccount != nil {
		p.MaxDepositsPerAccount = *r.MaxDepositsPerAccount
	}
	if r.SustainabilityFee != nil {
		p.SustainabilityFee = *r.SustainabilityFee
	}
	if r.FeeRecipient != nil {
		p.FeeRecipient = *r.FeeRecipient
	}
}

type fundRequest struct {
	To     string `json:"to" binding:"required"`
	Token  string `json:"token" binding:"required"`
	Amount uint64 `json:"amount" binding:"required"`
}

type senderRequest struct {
	Sender string `json:"sender" binding:"required"`
}

type bufferRequest struct {
	Buffer int64 `json:"buffer"`
}

type webhookRequest struct {
	Topic    string `json:"topic" binding:"required"`
	Endpoint string `json:"endpoint" binding:"required"`
	Secret   string `json:"secret"`
}

// proof is a groth16 proof as exported by snarkjs: every number is a
// decimal or 0x prefixed hex string.
type proof struct {
	A       [2]string    `json:"a"`
	B       [2][2]string `json:"b"`
	C       [2]string    `json:"c"`
	Signals []string     `json:"signals"`
}

type proofBundle struct {
	proof
	BodyHash *proof `json:"body_hash,omitempty"`
}

func (p proof) parse() (*ports.ZkProof, error) {
	a, err := parseBigInts(p.A[:])
	if err != nil {
		return nil, fmt.Errorf("a: %s", err)
	}
	b0, err := parseBigInts(p.B[0][:])
	if err != nil {
		return nil, fmt.Errorf("b: %s", err)
	}
	b1, err := parseBigInts(p.B[1][:])
	if err != nil {
		return nil, fmt.Errorf("b: %s", err)
	}
	c, err := parseBigInts(p.C[:])
	if err != nil {
		return nil, fmt.Errorf("c: %s", err)
	}
	signals, err := parseBigInts(p.Signals)
	if err != nil {
		return nil, fmt.Errorf("signals: %s", err)
	}

	return &ports.ZkProof{
		A:       [2]*big.Int{a[0], a[1]},
		B:       [2][2]*big.Int{{b0[0], b0[1]}, {b1[0], b1[1]}},
		C:       [2]*big.Int{c[0], c[1]},
		Signals: signals,
	}, nil
}

func (b proofBundle) parse() (ports.ProofBundle, error) {
	main, err := b.proof.parse()
	if err != nil {
		return ports.ProofBundle{}, err
	}
	bundle := ports.ProofBundle{Main: *main}
	if b.BodyHash != nil {
		bodyHash, err := b.BodyHash.parse()
		if err != nil {
			return ports.ProofBundle{}, fmt.Errorf("body hash %s", err)
		}
		bundle.BodyHash = bodyHash
	}
	return bundle, nil
}

func parseBigInts(list []string) ([]*big.Int, error) {
	nums := make([]*big.Int, 0, len(list))
	for i, s := range list {
		n, ok := new(big.Int).SetString(strings.TrimSpace(s), 0)
		if !ok || n.Sign() < 0 {
			return nil, fmt.Errorf("invalid number at index %d", i)
		}
		nums = append(nums, n)
	}
	return nums, nil
}

func parseRates(rates map[string]string) (map[string]decimal.Decimal, error) {
	parsed := make(map[string]decimal.Decimal, len(rates))
	for currency, r := range rates {
		rate, err := decimal.NewFromString(r)
		if err != nil {
			return nil, fmt.Errorf("invalid rate for %s: %s", currency, err)
		}
		parsed[strings.ToUpper(currency)] = rate
	}
	return parsed, nil
}

// Responses

type depositInfo struct {
	ID                 uint64            `json:"id"`
	Depositor          string            `json:"depositor"`
	Token              string            `json:"token"`
	Amount             uint64            `json:"amount"`
	RemainingAmount    uint64            `json:"remaining_amount"`
	LockedAmount       uint64            `json:"locked_amount"`
	WithdrawnAmount    uint64            `json:"withdrawn_amount"`
	SettledAmount      uint64            `json:"settled_amount"`
	AvailableLiquidity *uint64           `json:"available_liquidity,omitempty"`
	Reclaimable        *uint64           `json:"reclaimable_liquidity,omitempty"`
	ConversionRates    map[string]string `json:"conversion_rates"`
	Verifiers          []string          `json:"verifiers"`
	IntentIDs          []string          `json:"intent_ids"`
	MaxIntents         int               `json:"max_intents"`
	Status             string            `json:"status"`
	CreatedAt          int64             `json:"created_at"`
	ClosedAt           int64             `json:"closed_at,omitempty"`
}

func newDepositInfo(d *domain.Deposit) depositInfo {
	rates := make(map[string]string, len(d.ConversionRates))
	for currency, rate := range d.ConversionRates {
		rates[currency] = rate.String()
	}
	return depositInfo{
		ID:              d.ID,
		Depositor:       d.Depositor,
		Token:           d.Token,
		Amount:          d.Amount,
		RemainingAmount: d.RemainingAmount,
		LockedAmount:    d.LockedAmount,
		WithdrawnAmount: d.WithdrawnAmount,
		SettledAmount:   d.SettledAmount,
		ConversionRates: rates,
		Verifiers:       d.Verifiers,
		IntentIDs:       d.IntentIDs,
		MaxIntents:      d.MaxIntents,
		Status:          d.Status.String(),
		CreatedAt:       d.CreatedAt,
		ClosedAt:        d.ClosedAt,
	}
}

func newDepositInfoWithLiquidity(info *application.DepositInfo) depositInfo {
	d := newDepositInfo(info.Deposit)
	available, reclaimable := info.AvailableLiquidity, info.ReclaimableLiquidity
	d.AvailableLiquidity = &available
	d.Reclaimable = &reclaimable
	return d
}

type intentInfo struct {
	ID                 string `json:"id"`
	DepositID          uint64 `json:"deposit_id"`
	Taker              string `json:"taker"`
	Recipient          string `json:"recipient"`
	Amount             uint64 `json:"amount"`
	Verifier           string `json:"verifier"`
	Currency           string `json:"currency"`
	ConversionRate     string `json:"conversion_rate"`
	FiatAmountExpected uint64 `json:"fiat_amount_expected"`
	Nonce              uint64 `json:"nonce"`
	Status             string `json:"status"`
	CreatedAt          int64  `json:"created_at"`
	ExpiresAt          int64  `json:"expires_at"`
	ClosedAt           int64  `json:"closed_at,omitempty"`
	Fee                uint64 `json:"fee,omitempty"`
	Nullifier          string `json:"nullifier,omitempty"`
	SettledBy          string `json:"settled_by,omitempty"`
}

func newIntentInfo(i *domain.Intent) intentInfo {
	settledBy := ""
	switch i.SettledBy {
	case domain.SettlementProof:
		settledBy = "proof"
	case domain.SettlementRelease:
		settledBy = "release"
	}
	return intentInfo{
		ID:                 i.ID,
		DepositID:          i.DepositID,
		Taker:              i.Taker,
		Recipient:          i.Recipient,
		Amount:             i.Amount,
		Verifier:           i.Verifier,
		Currency:           i.Currency,
		ConversionRate:     i.ConversionRate.String(),
		FiatAmountExpected: i.FiatAmountExpected,
		Nonce:              i.Nonce,
		Status:             i.Status.String(),
		CreatedAt:          i.CreatedAt,
		ExpiresAt:          i.ExpiresAt,
		ClosedAt:           i.ClosedAt,
		Fee:                i.Fee,
		Nullifier:          i.Nullifier,
		SettledBy:          settledBy,
	}
}

func newIntentInfoList(intents []*domain.Intent) []intentInfo {
	list := make([]intentInfo, 0, len(intents))
	for _, i := range intents {
		list = append(list, newIntentInfo(i))
	}
	return list
}

type accountInfo struct {
	Address          string           `json:"address"`
	IDHash           string           `json:"id_hash"`
	Verifier         string           `json:"verifier"`
	Denylist         []string         `json:"denylist"`
	Allowlist        []string         `json:"allowlist"`
	AllowlistEnabled bool             `json:"allowlist_enabled"`
	OpenIntentID     string           `json:"open_intent_id,omitempty"`
	LastSettlement   map[string]int64 `json:"last_settlement,omitempty"`
	RegisteredAt     int64            `json:"registered_at"`
}

func newAccountInfo(a *domain.Account) accountInfo {
	return accountInfo{
		Address:          a.Address,
		IDHash:           a.IDHash,
		Verifier:         a.Verifier,
		Denylist:         a.Denylist,
		Allowlist:        a.Allowlist,
		AllowlistEnabled: a.AllowlistEnabled,
		OpenIntentID:     a.OpenIntentID,
		LastSettlement:   a.LastSettlement,
		RegisteredAt:     a.RegisteredAt,
	}
}

type balanceInfo struct {
	Token  string `json:"token"`
	Amount uint64 `json:"amount"`
}

type paramsInfo struct {
	IntentExpirationPeriod int64  `json:"intent_expiration_period"`
	CooldownPeriod         int64  `json:"cooldown_period"`
	MinDepositAmount       uint64 `json:"min_deposit_amount"`
	MinIntentAmount        uint64 `json:"min_intent_amount"`
	MaxIntentAmount        uint64 `json:"max_intent_amount"`
	MaxIntentsPerDeposit   int    `json:"max_intents_per_deposit"`
	MaxDepositsPerAccount  int    `json:"max_deposits_per_account"`
	SustainabilityFee      uint32 `json:"sustainability_fee"`
	FeeRecipient           string `json:"fee_recipient,omitempty"`
}

func newParamsInfo(p domain.Params) paramsInfo {
	return paramsInfo{
		IntentExpirationPeriod: p.IntentExpirationPeriod,
		CooldownPeriod:         p.CooldownPeriod,
		MinDepositAmount:       p.MinDepositAmount,
		MinIntentAmount:        p.MinIntentAmount,
		MaxIntentAmount:        p.MaxIntentAmount,
		MaxIntentsPerDeposit:   p.MaxIntentsPerDeposit,
		MaxDepositsPerAccount:  p.MaxDepositsPerAccount,
		SustainabilityFee:      p.SustainabilityFee,
		FeeRecipient:           p.FeeRecipient,
	}
}

type processorInfo struct {
	ID              string   `json:"id"`
	KeyHashes       []string `json:"key_hashes"`
	SenderAddress   string   `json:"sender_address"`
	TimestampBuffer int64    `json:"timestamp_buffer"`
}

type eventInfo struct {
	ID        string            `json:"id"`
	Sequence  uint64            `json:"sequence"`
	Type      string            `json:"type"`
	Timestamp int64             `json:"timestamp"`
	DepositID uint64            `json:"deposit_id,omitempty"`
	IntentID  string            `json:"intent_id,omitempty"`
	Account   string            `json:"account,omitempty"`
	Amount    uint64            `json:"amount,omitempty"`
	Data      map[string]string `json:"data,omitempty"`
}

func newEventInfo(e domain.Event) eventInfo {
	return eventInfo{
		ID:        e.ID,
		Sequence:  e.Sequence,
		Type:      string(e.Type),
		Timestamp: e.Timestamp,
		DepositID: e.DepositID,
		IntentID:  e.IntentID,
		Account:   e.Account,
		Amount:    e.Amount,
		Data:      e.Data,
	}
}
