package messenger

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, url string) (*Client, solana.PrivateKey) {
	t.Helper()
	custodian, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	client := NewClient(Config{BaseURL: url, Timeout: 5 * time.Second}, custodian, zap.NewNop())
	return client, custodian
}

func burnParams() DepositForBurnParams {
	return DepositForBurnParams{
		Amount:            999_900,
		DestinationDomain: DomainEthereum,
		MintRecipient:     solana.NewWallet().PublicKey(),
	}
}

func TestDepositForBurn(t *testing.T) {
	receipt := BurnReceipt{
		MessageAccount: solana.NewWallet().PublicKey(),
		MessageHash:    "0xdeadbeef",
		BurnTxHash:     "burn-tx",
	}
	var gotParams DepositForBurnParams
	var gotCustodian, gotSignature string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/depositForBurn", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		gotCustodian = r.Header.Get("X-Custodian")
		gotSignature = r.Header.Get("X-Custodian-Signature")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotParams))
		json.NewEncoder(w).Encode(receipt)
	}))
	defer server.Close()

	client, custodian := newTestClient(t, server.URL)
	params := burnParams()

	got, err := client.DepositForBurn(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, receipt, *got)
	assert.Equal(t, params, gotParams)

	// The custodian signature must cover the canonical Borsh bytes.
	assert.Equal(t, custodian.PublicKey().String(), gotCustodian)
	payload, err := params.Serialize()
	require.NoError(t, err)
	signature, err := solana.SignatureFromBase58(gotSignature)
	require.NoError(t, err)
	pub := custodian.PublicKey()
	assert.True(t, ed25519.Verify(ed25519.PublicKey(pub[:]), payload, signature[:]))
}

func TestDepositForBurnRetriesServerErrors(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(BurnReceipt{MessageAccount: solana.NewWallet().PublicKey()})
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL)

	got, err := client.DepositForBurn(context.Background(), burnParams())
	require.NoError(t, err)
	assert.False(t, got.MessageAccount.IsZero())
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestDepositForBurnClientErrorIsNotRetried(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(ErrorResponse{Code: "INSUFFICIENT_CUSTODY", Message: "custody balance too low"})
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL)

	_, err := client.DepositForBurn(context.Background(), burnParams())
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))

	var apiErr *ErrorResponse
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "INSUFFICIENT_CUSTODY", apiErr.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.False(t, apiErr.IsRateLimited())
}

func TestNewClientDefaultsBaseURL(t *testing.T) {
	custodian, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	sandbox := NewClient(Config{Environment: "sandbox"}, custodian, zap.NewNop())
	assert.Equal(t, MessengerSandboxURL, sandbox.config.BaseURL)

	mainnet := NewClient(Config{Environment: "mainnet"}, custodian, zap.NewNop())
	assert.Equal(t, MessengerMainnetURL, mainnet.config.BaseURL)
}
