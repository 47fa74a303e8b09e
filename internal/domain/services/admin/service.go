// Package admin owns the configuration surface: initialization, the
// owner-gated setters and the public fee quote.
package admin

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/cashmere-labs/settlement-service/internal/domain/entities"
	domainerrors "github.com/cashmere-labs/settlement-service/internal/domain/errors"
	"github.com/cashmere-labs/settlement-service/internal/domain/services/fees"
)

// ConfigRepository defines persistence operations for the configuration
// singleton and the custodian record.
type ConfigRepository interface {
	GetConfig(ctx context.Context) (*entities.BridgeConfig, error)
	CreateConfig(ctx context.Context, cfg *entities.BridgeConfig, custodian *entities.Custodian) error
	UpdateConfig(ctx context.Context, cfg *entities.BridgeConfig) error
	GetCustodian(ctx context.Context) (*entities.Custodian, error)
}

// Service handles configuration management
type Service struct {
	repo               ConfigRepository
	custodianAuthority solana.PublicKey
	logger             *zap.Logger
}

// NewService creates a new admin service
func NewService(repo ConfigRepository, custodianAuthority solana.PublicKey, logger *zap.Logger) *Service {
	return &Service{
		repo:               repo,
		custodianAuthority: custodianAuthority,
		logger:             logger,
	}
}

// InitializeParams carries the two collector-address pairs.
type InitializeParams struct {
	FeeCollectorNative     solana.PublicKey
	FeeCollectorUSDC       solana.PublicKey
	GasDropCollectorNative solana.PublicKey
	GasDropCollectorUSDC   solana.PublicKey
}

// Initialize creates the configuration singleton and the custodian record.
// The authenticated caller becomes the owner. The signer key starts zeroed:
// no transfer can pass authorization until an owner sets it.
func (s *Service) Initialize(ctx context.Context, caller solana.PublicKey, params InitializeParams) (*entities.BridgeConfig, error) {
	cfg := &entities.BridgeConfig{
		Owner:                  caller,
		FeeCollectorNative:     params.FeeCollectorNative,
		FeeCollectorUSDC:       params.FeeCollectorUSDC,
		GasDropCollectorNative: params.GasDropCollectorNative,
		GasDropCollectorUSDC:   params.GasDropCollectorUSDC,
		FeeBp:                  entities.DefaultFeeBasisPoints,
		Nonce:                  0,
		SignerKey:              solana.PublicKey{},
		MaxUSDCGasDrop:         entities.DefaultMaxUSDCGasDrop,
	}
	custodian := &entities.Custodian{Authority: s.custodianAuthority}

	if err := s.repo.CreateConfig(ctx, cfg, custodian); err != nil {
		return nil, err
	}

	s.logger.Info("Settlement configuration initialized",
		zap.String("owner", caller.String()),
		zap.String("custodian", custodian.Authority.String()))
	return cfg, nil
}

// ownedConfig loads the configuration and enforces the ownership gate.
func (s *Service) ownedConfig(ctx context.Context, caller solana.PublicKey) (*entities.BridgeConfig, error) {
	cfg, err := s.repo.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	if !cfg.Owner.Equals(caller) {
		return nil, domainerrors.ErrUnauthorized
	}
	return cfg, nil
}

// SetFeeBp updates the percentage fee.
func (s *Service) SetFeeBp(ctx context.Context, caller solana.PublicKey, feeBp uint64) error {
	if feeBp > entities.MaxFeeBasisPoints {
		return domainerrors.ErrFeeTooHigh
	}
	cfg, err := s.ownedConfig(ctx, caller)
	if err != nil {
		return err
	}
	cfg.FeeBp = feeBp
	if err := s.repo.UpdateConfig(ctx, cfg); err != nil {
		return err
	}
	s.logger.Info("Fee basis points updated", zap.Uint64("fee_bp", feeBp))
	return nil
}

// SetSignerKey updates the authorization signer key.
func (s *Service) SetSignerKey(ctx context.Context, caller solana.PublicKey, signerKey solana.PublicKey) error {
	cfg, err := s.ownedConfig(ctx, caller)
	if err != nil {
		return err
	}
	cfg.SignerKey = signerKey
	if err := s.repo.UpdateConfig(ctx, cfg); err != nil {
		return err
	}
	s.logger.Info("Signer key updated", zap.String("signer_key", signerKey.String()))
	return nil
}

// SetFeeCollector updates the fee collector pair.
func (s *Service) SetFeeCollector(ctx context.Context, caller solana.PublicKey, native, usdc solana.PublicKey) error {
	cfg, err := s.ownedConfig(ctx, caller)
	if err != nil {
		return err
	}
	cfg.FeeCollectorNative = native
	cfg.FeeCollectorUSDC = usdc
	if err := s.repo.UpdateConfig(ctx, cfg); err != nil {
		return err
	}
	s.logger.Info("Fee collectors updated",
		zap.String("native", native.String()), zap.String("usdc", usdc.String()))
	return nil
}

// SetGasDropCollector updates the gas-drop collector pair.
func (s *Service) SetGasDropCollector(ctx context.Context, caller solana.PublicKey, native, usdc solana.PublicKey) error {
	cfg, err := s.ownedConfig(ctx, caller)
	if err != nil {
		return err
	}
	cfg.GasDropCollectorNative = native
	cfg.GasDropCollectorUSDC = usdc
	if err := s.repo.UpdateConfig(ctx, cfg); err != nil {
		return err
	}
	s.logger.Info("Gas drop collectors updated",
		zap.String("native", native.String()), zap.String("usdc", usdc.String()))
	return nil
}

// SetMaxUSDCGasDrop updates the USDC gas-drop cap. Zero means unlimited.
func (s *Service) SetMaxUSDCGasDrop(ctx context.Context, caller solana.PublicKey, max uint64) error {
	cfg, err := s.ownedConfig(ctx, caller)
	if err != nil {
		return err
	}
	cfg.MaxUSDCGasDrop = max
	if err := s.repo.UpdateConfig(ctx, cfg); err != nil {
		return err
	}
	s.logger.Info("Max USDC gas drop updated", zap.Uint64("max", max))
	return nil
}

// SetMaxNativeGasDrop updates the per-domain native gas-drop cap. Zero means
// unlimited for that domain.
func (s *Service) SetMaxNativeGasDrop(ctx context.Context, caller solana.PublicKey, domain uint32, max uint64) error {
	if domain >= entities.MaxDomains {
		return domainerrors.ErrInvalidDomain
	}
	cfg, err := s.ownedConfig(ctx, caller)
	if err != nil {
		return err
	}
	cfg.MaxNativeGasDrop[domain] = max
	if err := s.repo.UpdateConfig(ctx, cfg); err != nil {
		return err
	}
	s.logger.Info("Max native gas drop updated",
		zap.Uint32("domain", domain), zap.Uint64("max", max))
	return nil
}

// TransferOwnership hands the configuration to a new owner. It mutates
// nothing else.
func (s *Service) TransferOwnership(ctx context.Context, caller solana.PublicKey, newOwner solana.PublicKey) error {
	cfg, err := s.ownedConfig(ctx, caller)
	if err != nil {
		return err
	}
	cfg.Owner = newOwner
	if err := s.repo.UpdateConfig(ctx, cfg); err != nil {
		return err
	}
	s.logger.Info("Ownership transferred",
		zap.String("previous", caller.String()), zap.String("owner", newOwner.String()))
	return nil
}

// GetFee quotes the fee for an amount under the current configuration.
// Public, read-only: the flat fee is echoed into the quote the same way the
// transfer path charges it.
func (s *Service) GetFee(ctx context.Context, flatFee, amount uint64) (uint64, error) {
	cfg, err := s.repo.GetConfig(ctx)
	if err != nil {
		return 0, err
	}
	return fees.Calculate(amount, cfg.FeeBp, flatFee), nil
}

// GetConfig returns the current configuration.
func (s *Service) GetConfig(ctx context.Context) (*entities.BridgeConfig, error) {
	cfg, err := s.repo.GetConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("get config: %w", err)
	}
	return cfg, nil
}
