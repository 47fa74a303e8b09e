package entities

import (
	"time"

	"github.com/gagliardetto/solana-go"
)

const (
	// LocalDomain is the CCTP domain identifier of the ledger this service
	// settles on (Solana).
	LocalDomain uint32 = 5

	// MaxDomains bounds the per-domain native gas-drop limit table.
	MaxDomains = 32

	// MaxFeeBasisPoints is 100% expressed in basis points.
	MaxFeeBasisPoints uint64 = 10000

	// DefaultFeeBasisPoints is the fee applied until an operator sets one.
	DefaultFeeBasisPoints uint64 = 1

	// DefaultMaxUSDCGasDrop is the initial USDC gas-drop cap in micro-USDC
	// (100 USDC).
	DefaultMaxUSDCGasDrop uint64 = 100_000_000
)

// Currency identifies one of the two settlement currencies.
type Currency string

const (
	CurrencyNative Currency = "SOL"
	CurrencyUSDC   Currency = "USDC"
)

// BridgeConfig is the configuration singleton: fee policy, collector
// addresses, gas-drop limits, the authorization signer key, and the local
// transfer nonce.
type BridgeConfig struct {
	Owner                  solana.PublicKey   `json:"owner"`
	FeeCollectorNative     solana.PublicKey   `json:"fee_collector_native"`
	FeeCollectorUSDC       solana.PublicKey   `json:"fee_collector_usdc"`
	GasDropCollectorNative solana.PublicKey   `json:"gas_drop_collector_native"`
	GasDropCollectorUSDC   solana.PublicKey   `json:"gas_drop_collector_usdc"`
	FeeBp                  uint64             `json:"fee_bp"`
	Nonce                  uint64             `json:"nonce"`
	SignerKey              solana.PublicKey   `json:"signer_key"`
	MaxUSDCGasDrop         uint64             `json:"max_usdc_gas_drop"`
	MaxNativeGasDrop       [MaxDomains]uint64 `json:"max_native_gas_drop"`
	CreatedAt              time.Time          `json:"created_at"`
	UpdatedAt              time.Time          `json:"updated_at"`
}

// NativeGasDropLimit returns the native gas-drop cap for a destination
// domain. Domain bounds are validated by the caller.
func (c *BridgeConfig) NativeGasDropLimit(domain uint32) uint64 {
	return c.MaxNativeGasDrop[domain]
}

// Custodian is the service-controlled signing authority. It holds no funds;
// its key authorizes exactly the custody debit behind a deposit-for-burn
// delegation and nothing else.
type Custodian struct {
	Authority solana.PublicKey `json:"authority"`
	CreatedAt time.Time        `json:"created_at"`
}

// TokenAccount is a balance row in one of the two settlement currencies.
// Custody accounts are transient: created, consumed and deleted inside a
// single transfer transaction.
type TokenAccount struct {
	Address   solana.PublicKey `json:"address"`
	Currency  Currency         `json:"currency"`
	Balance   uint64           `json:"balance"`
	Custody   bool             `json:"custody"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}
