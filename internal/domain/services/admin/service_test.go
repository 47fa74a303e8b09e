package admin

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cashmere-labs/settlement-service/internal/domain/entities"
	domainerrors "github.com/cashmere-labs/settlement-service/internal/domain/errors"
)

type fakeConfigRepo struct {
	cfg       *entities.BridgeConfig
	custodian *entities.Custodian
}

func (r *fakeConfigRepo) GetConfig(ctx context.Context) (*entities.BridgeConfig, error) {
	if r.cfg == nil {
		return nil, domainerrors.ErrNotInitialized
	}
	cfg := *r.cfg
	return &cfg, nil
}

func (r *fakeConfigRepo) CreateConfig(ctx context.Context, cfg *entities.BridgeConfig, custodian *entities.Custodian) error {
	if r.cfg != nil {
		return domainerrors.ErrAlreadyInitialized
	}
	c := *cfg
	r.cfg = &c
	cust := *custodian
	r.custodian = &cust
	return nil
}

func (r *fakeConfigRepo) UpdateConfig(ctx context.Context, cfg *entities.BridgeConfig) error {
	if r.cfg == nil {
		return domainerrors.ErrNotInitialized
	}
	c := *cfg
	c.Nonce = r.cfg.Nonce
	r.cfg = &c
	return nil
}

func (r *fakeConfigRepo) GetCustodian(ctx context.Context) (*entities.Custodian, error) {
	if r.custodian == nil {
		return nil, domainerrors.ErrNotInitialized
	}
	return r.custodian, nil
}

func newTestService() (*Service, *fakeConfigRepo, solana.PublicKey) {
	repo := &fakeConfigRepo{}
	custodian := solana.NewWallet().PublicKey()
	return NewService(repo, custodian, zap.NewNop()), repo, custodian
}

func initialized(t *testing.T) (*Service, *fakeConfigRepo, solana.PublicKey) {
	t.Helper()
	svc, repo, _ := newTestService()
	owner := solana.NewWallet().PublicKey()
	_, err := svc.Initialize(context.Background(), owner, InitializeParams{
		FeeCollectorNative:     solana.NewWallet().PublicKey(),
		FeeCollectorUSDC:       solana.NewWallet().PublicKey(),
		GasDropCollectorNative: solana.NewWallet().PublicKey(),
		GasDropCollectorUSDC:   solana.NewWallet().PublicKey(),
	})
	require.NoError(t, err)
	return svc, repo, owner
}

func TestInitializeDefaults(t *testing.T) {
	svc, repo, custodian := newTestService()
	owner := solana.NewWallet().PublicKey()

	cfg, err := svc.Initialize(context.Background(), owner, InitializeParams{})
	require.NoError(t, err)

	assert.Equal(t, owner, cfg.Owner)
	assert.Equal(t, entities.DefaultFeeBasisPoints, cfg.FeeBp)
	assert.Equal(t, entities.DefaultMaxUSDCGasDrop, cfg.MaxUSDCGasDrop)
	assert.Equal(t, uint64(0), cfg.Nonce)
	assert.True(t, cfg.SignerKey.IsZero(), "signer key must start zeroed")
	for _, limit := range cfg.MaxNativeGasDrop {
		assert.Equal(t, uint64(0), limit)
	}
	assert.Equal(t, custodian, repo.custodian.Authority)
}

func TestInitializeOnlyOnce(t *testing.T) {
	svc, _, _ := newTestService()
	owner := solana.NewWallet().PublicKey()

	_, err := svc.Initialize(context.Background(), owner, InitializeParams{})
	require.NoError(t, err)

	_, err = svc.Initialize(context.Background(), owner, InitializeParams{})
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyInitialized)
}

func TestSettersRequireOwner(t *testing.T) {
	svc, repo, _ := initialized(t)
	intruder := solana.NewWallet().PublicKey()
	key := solana.NewWallet().PublicKey()
	before := *repo.cfg

	calls := map[string]error{
		"fee_bp":              svc.SetFeeBp(context.Background(), intruder, 5),
		"signer_key":          svc.SetSignerKey(context.Background(), intruder, key),
		"fee_collector":       svc.SetFeeCollector(context.Background(), intruder, key, key),
		"gas_drop_collector":  svc.SetGasDropCollector(context.Background(), intruder, key, key),
		"max_usdc_gas_drop":   svc.SetMaxUSDCGasDrop(context.Background(), intruder, 1),
		"max_native_gas_drop": svc.SetMaxNativeGasDrop(context.Background(), intruder, 0, 1),
		"transfer_ownership":  svc.TransferOwnership(context.Background(), intruder, intruder),
	}
	for name, err := range calls {
		assert.ErrorIs(t, err, domainerrors.ErrUnauthorized, name)
	}
	assert.Equal(t, before, *repo.cfg, "rejected calls must not mutate the config")
}

func TestSetFeeBp(t *testing.T) {
	svc, repo, owner := initialized(t)

	require.NoError(t, svc.SetFeeBp(context.Background(), owner, 25))
	assert.Equal(t, uint64(25), repo.cfg.FeeBp)

	err := svc.SetFeeBp(context.Background(), owner, entities.MaxFeeBasisPoints+1)
	assert.ErrorIs(t, err, domainerrors.ErrFeeTooHigh)
	assert.Equal(t, uint64(25), repo.cfg.FeeBp)
}

func TestSetSignerKey(t *testing.T) {
	svc, repo, owner := initialized(t)
	key := solana.NewWallet().PublicKey()

	require.NoError(t, svc.SetSignerKey(context.Background(), owner, key))
	assert.Equal(t, key, repo.cfg.SignerKey)
}

func TestSetMaxNativeGasDrop(t *testing.T) {
	svc, repo, owner := initialized(t)

	require.NoError(t, svc.SetMaxNativeGasDrop(context.Background(), owner, 7, 123))
	assert.Equal(t, uint64(123), repo.cfg.MaxNativeGasDrop[7])

	err := svc.SetMaxNativeGasDrop(context.Background(), owner, entities.MaxDomains, 1)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidDomain)
}

func TestTransferOwnership(t *testing.T) {
	svc, repo, owner := initialized(t)
	newOwner := solana.NewWallet().PublicKey()

	require.NoError(t, svc.TransferOwnership(context.Background(), owner, newOwner))
	assert.Equal(t, newOwner, repo.cfg.Owner)

	// The previous owner is locked out; the new one is in charge.
	err := svc.SetFeeBp(context.Background(), owner, 2)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
	require.NoError(t, svc.SetFeeBp(context.Background(), newOwner, 2))
}

func TestGetFee(t *testing.T) {
	svc, _, owner := initialized(t)
	require.NoError(t, svc.SetFeeBp(context.Background(), owner, 10))

	// 10 bp of 1,000,000 plus the echoed flat fee.
	fee, err := svc.GetFee(context.Background(), 40, 1_000_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_040), fee)
}

func TestGetFeeRequiresInitialization(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.GetFee(context.Background(), 0, 1_000_000)
	assert.ErrorIs(t, err, domainerrors.ErrNotInitialized)
}
