package httpinterface_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/zkramp/ramp-daemon/internal/core/application"
	"github.com/zkramp/ramp-daemon/internal/core/application/nullifier"
	"github.com/zkramp/ramp-daemon/internal/core/application/processor"
	"github.com/zkramp/ramp-daemon/internal/core/domain"
	"github.com/zkramp/ramp-daemon/internal/core/ports"
	"github.com/zkramp/ramp-daemon/internal/infrastructure/storage/db/inmemory"
	httpinterface "github.com/zkramp/ramp-daemon/internal/interfaces/http"
	"github.com/zkramp/ramp-daemon/pkg/jwtauth"
)

const (
	rail = "venmo"

	owner     = "0x0000000000000000000000000000000000000a11"
	escrow    = "0x000000000000000000000000000000000000e5c0"
	token     = "0x00000000000000000000000000000000000000a1"
	depositor = "0x1000000000000000000000000000000000000001"
	taker     = "0x2000000000000000000000000000000000000002"
)

var (
	secret = []byte("test-secret")

	depositorIDHash = "0x" + strings.Repeat("11", 32)
	takerIDHash     = "0x" + strings.Repeat("22", 32)
)

type fixedClock struct{}

func (fixedClock) Now() time.Time { return time.Unix(1700000000, 0) }

// signalsRail reads the proven facts straight from the public signals of
// the proof.
type signalsRail struct {
	nullifiers ports.NullifierRegistry
}

func (signalsRail) ID() string       { return rail }
func (signalsRail) Currency() string { return "USD" }

func (r signalsRail) ProcessProof(
	ctx context.Context, bundle ports.ProofBundle,
) (*domain.SettlementFacts, error) {
	s := bundle.Main.Signals
	if len(s) != 6 {
		return nil, domain.ErrInvalidSignals
	}
	nullifier := domain.HashFromBigInt(s[5])
	if err := r.nullifiers.Consume(ctx, rail, nullifier); err != nil {
		return nil, err
	}
	return &domain.SettlementFacts{
		IntentHash:  domain.HashFromBigInt(s[0]),
		PayeeIDHash: domain.HashFromBigInt(s[1]),
		PayerIDHash: domain.HashFromBigInt(s[2]),
		Amount:      s[3].Uint64(),
		Timestamp:   s[4].Int64(),
		Nullifier:   nullifier,
	}, nil
}

type signalsRegistration struct{}

func (signalsRegistration) ID() string { return rail }

func (signalsRegistration) ProcessProof(
	_ context.Context, bundle ports.ProofBundle,
) (*domain.RegistrationFacts, error) {
	if len(bundle.Main.Signals) != 1 {
		return nil, domain.ErrInvalidSignals
	}
	return &domain.RegistrationFacts{
		IDHash: domain.HashFromBigInt(bundle.Main.Signals[0]),
	}, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	ctx := context.Background()
	repoManager := inmemory.NewRepoManager()
	clock := fixedClock{}
	lock := &sync.Mutex{}

	nullifiers, err := nullifier.NewRegistry(repoManager, clock)
	require.NoError(t, err)
	require.NoError(t, nullifiers.AddWriter(ctx, rail))

	processors := processor.NewRegistry()
	require.NoError(t, processors.AddPaymentProcessor(signalsRail{nullifiers}))
	require.NoError(t, processors.AddRegistrationProcessor(signalsRegistration{}))

	pubsubSvc := application.NewPubSubService()
	params := domain.Params{
		IntentExpirationPeriod: 3600,
		MinDepositAmount:       100,
		MinIntentAmount:        10,
	}
	escrowSvc, err := application.NewEscrowService(
		repoManager, processors, pubsubSvc, clock, lock, escrow, params,
	)
	require.NoError(t, err)
	accountSvc, err := application.NewAccountService(
		repoManager, processors, pubsubSvc, clock, lock,
	)
	require.NoError(t, err)
	adminSvc, err := application.NewAdminService(
		owner, escrowSvc, processors, nullifiers, repoManager, pubsubSvc, clock, lock,
	)
	require.NoError(t, err)

	router, err := httpinterface.NewRouter(httpinterface.ServiceOpts{
		Address:    ":0",
		JWTSecret:  secret,
		EscrowSvc:  escrowSvc,
		AccountSvc: accountSvc,
		AdminSvc:   adminSvc,
	})
	require.NoError(t, err)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

type client struct {
	t   *testing.T
	url string
}

func (c client) do(
	method, path, caller string, body interface{}, out interface{},
) int {
	var reader *bytes.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(buf)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, c.url+path, reader)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if caller != "" {
		token, err := jwtauth.NewToken(secret, caller, time.Minute)
		require.NoError(c.t, err)
		req.Header.Set("Authorization", jwtauth.Header(token))
	}

	res, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer res.Body.Close()

	if out != nil && res.StatusCode < 300 {
		require.NoError(c.t, json.NewDecoder(res.Body).Decode(out))
	}
	return res.StatusCode
}

func proofWithSignals(signals ...string) map[string]interface{} {
	return map[string]interface{}{
		"a":       []string{"1", "2"},
		"b":       [][]string{{"3", "4"}, {"5", "6"}},
		"c":       []string{"7", "8"},
		"signals": signals,
	}
}

func registrationRequest(idHash string) map[string]interface{} {
	return map[string]interface{}{
		"verifier": rail,
		"proof":    proofWithSignals(idHash),
	}
}

func TestEscrowFlow(t *testing.T) {
	srv := newTestServer(t)
	c := client{t, srv.URL}

	status := c.do(http.MethodPost, "/v1/admin/fund", owner, map[string]interface{}{
		"to": depositor, "token": token, "amount": 1000,
	}, nil)
	require.Equal(t, http.StatusOK, status)

	for caller, idHash := range map[string]string{
		depositor: depositorIDHash,
		taker:     takerIDHash,
	} {
		var account map[string]interface{}
		status := c.do(
			http.MethodPost, "/v1/accounts/register", caller,
			registrationRequest(idHash), &account,
		)
		require.Equal(t, http.StatusOK, status)
		require.Equal(t, idHash, account["id_hash"])
	}

	var deposit struct {
		ID              uint64            `json:"id"`
		RemainingAmount uint64            `json:"remaining_amount"`
		ConversionRates map[string]string `json:"conversion_rates"`
	}
	status = c.do(http.MethodPost, "/v1/deposits", depositor, map[string]interface{}{
		"token":     token,
		"amount":    1000,
		"rates":     map[string]string{"usd": "1.5"},
		"verifiers": []string{rail},
	}, &deposit)
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, uint64(1000), deposit.RemainingAmount)
	require.Equal(t, "1.5", deposit.ConversionRates["USD"])

	var intent struct {
		ID                 string `json:"id"`
		FiatAmountExpected uint64 `json:"fiat_amount_expected"`
		Status             string `json:"status"`
		Fee                uint64 `json:"fee"`
	}
	status = c.do(http.MethodPost, "/v1/intents", taker, map[string]interface{}{
		"deposit_id": deposit.ID,
		"amount":     400,
		"verifier":   rail,
	}, &intent)
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, uint64(600), intent.FiatAmountExpected)
	require.Equal(t, "OPEN", intent.Status)

	var liquidity struct {
		AvailableLiquidity uint64 `json:"available_liquidity"`
	}
	status = c.do(
		http.MethodGet, fmt.Sprintf("/v1/deposits/%d/liquidity", deposit.ID), "",
		nil, &liquidity,
	)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, uint64(600), liquidity.AvailableLiquidity)

	intentHash, _ := new(big.Int).SetString(intent.ID[2:], 16)
	proof := map[string]interface{}{
		"proof": proofWithSignals(
			intentHash.String(), depositorIDHash, takerIDHash, "600",
			fmt.Sprint(fixedClock{}.Now().Unix()), "0x1234",
		),
	}
	status = c.do(
		http.MethodPost, "/v1/intents/"+intent.ID+"/fulfill", depositor, proof,
		&intent,
	)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "FULFILLED", intent.Status)

	status = c.do(
		http.MethodPost, "/v1/intents/"+intent.ID+"/fulfill", depositor, proof, nil,
	)
	require.Equal(t, http.StatusConflict, status)

	var balances struct {
		Balances []struct {
			Token  string `json:"token"`
			Amount uint64 `json:"amount"`
		} `json:"balances"`
	}
	status = c.do(http.MethodGet, "/v1/balances/"+taker, "", nil, &balances)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, balances.Balances, 1)
	require.Equal(t, uint64(400), balances.Balances[0].Amount)

	var events struct {
		Events []struct {
			Type     string `json:"type"`
			IntentID string `json:"intent_id"`
		} `json:"events"`
	}
	status = c.do(
		http.MethodGet, "/v1/events?type=intent_fulfilled", "", nil, &events,
	)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, events.Events, 1)
	require.Equal(t, intent.ID, events.Events[0].IntentID)
}

func TestFailingRequests(t *testing.T) {
	srv := newTestServer(t)
	c := client{t, srv.URL}

	tests := []struct {
		name           string
		method         string
		path           string
		caller         string
		body           interface{}
		expectedStatus int
	}{
		{
			name:           "missing token",
			method:         http.MethodPost,
			path:           "/v1/deposits",
			body:           map[string]interface{}{},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "caller not an address",
			method:         http.MethodPost,
			path:           "/v1/intents/prune",
			caller:         "alice",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "not the owner",
			method:         http.MethodPut,
			path:           "/v1/admin/params",
			caller:         depositor,
			body:           map[string]interface{}{"cooldown_period": 10},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "invalid params",
			method:         http.MethodPut,
			path:           "/v1/admin/params",
			caller:         owner,
			body:           map[string]interface{}{"sustainability_fee": 10000},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "malformed deposit id",
			method:         http.MethodGet,
			path:           "/v1/deposits/abc",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown deposit",
			method:         http.MethodGet,
			path:           "/v1/deposits/42",
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "unknown verifier",
			method:         http.MethodPost,
			path:           "/v1/accounts/register",
			caller:         taker,
			body:           map[string]interface{}{"verifier": "sepa", "proof": proofWithSignals("1")},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "malformed proof",
			method:         http.MethodPost,
			path:           "/v1/accounts/register",
			caller:         taker,
			body:           map[string]interface{}{"verifier": rail, "proof": proofWithSignals("nope")},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid signals",
			method:         http.MethodPost,
			path:           "/v1/accounts/register",
			caller:         taker,
			body:           map[string]interface{}{"verifier": rail, "proof": proofWithSignals("1", "2")},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "deposit from unregistered account",
			method:         http.MethodPost,
			path:           "/v1/deposits",
			caller:         depositor,
			body:           map[string]interface{}{"token": token, "amount": 500, "rates": map[string]string{"USD": "1"}, "verifiers": []string{rail}},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "webhooks disabled",
			method:         http.MethodGet,
			path:           "/v1/admin/webhooks",
			caller:         owner,
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := c.do(tt.method, tt.path, tt.caller, tt.body, nil)
			require.Equal(t, tt.expectedStatus, status)
		})
	}
}

func TestInfoAndHealth(t *testing.T) {
	srv := newTestServer(t)
	c := client{t, srv.URL}

	var info struct {
		EscrowAddress string `json:"escrow_address"`
		Owner         string `json:"owner"`
		Params        struct {
			MinDepositAmount uint64 `json:"min_deposit_amount"`
		} `json:"params"`
		Processors []string `json:"processors"`
	}
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/v1/info", "", nil, &info))
	require.True(t, domain.SameAddress(escrow, info.EscrowAddress))
	require.True(t, domain.SameAddress(owner, info.Owner))
	require.Equal(t, uint64(100), info.Params.MinDepositAmount)
	require.Contains(t, info.Processors, rail)

	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/healthz", "", nil, nil))
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/metrics", "", nil, nil))
}
