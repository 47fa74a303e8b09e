// Package transfer orchestrates a settlement: authorization check, pricing,
// fee and gas-drop settlement, principal custody, deposit-for-burn
// delegation and bookkeeping — all inside one database transaction.
package transfer

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cashmere-labs/settlement-service/internal/domain/entities"
	domainerrors "github.com/cashmere-labs/settlement-service/internal/domain/errors"
	"github.com/cashmere-labs/settlement-service/internal/domain/services/fees"
	"github.com/cashmere-labs/settlement-service/internal/domain/services/sigverify"
	"github.com/cashmere-labs/settlement-service/internal/infrastructure/adapters/messenger"
	"github.com/cashmere-labs/settlement-service/pkg/metrics"
)

// Store defines the persistence operations the orchestrator needs. All
// methods called between WithinTransaction's entry and exit run on the same
// database transaction.
type Store interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	ConfigForUpdate(ctx context.Context) (*entities.BridgeConfig, error)
	MoveFunds(ctx context.Context, from, to solana.PublicKey, currency entities.Currency, amount uint64) error
	CreateCustodyAccount(ctx context.Context) (solana.PublicKey, error)
	CloseCustodyAccount(ctx context.Context, account solana.PublicKey, amount uint64) error
	IncrementNonce(ctx context.Context) (uint64, error)
	InsertEvent(ctx context.Context, event *entities.TransferEvent) error
	GetEventByNonce(ctx context.Context, nonce uint64) (*entities.TransferEvent, error)
}

// Service executes transfers against the shared configuration snapshot.
type Service struct {
	store     Store
	messenger messenger.TokenMessenger
	now       func() time.Time
	logger    *zap.Logger
}

// NewService creates a new transfer service
func NewService(store Store, tokenMessenger messenger.TokenMessenger, logger *zap.Logger) *Service {
	return &Service{
		store:     store,
		messenger: tokenMessenger,
		now:       time.Now,
		logger:    logger,
	}
}

// Execute runs the full settlement state machine for one request. Either
// every step commits or none does: fee, gas drop, custody and bookkeeping
// all ride the same transaction, and the deposit-for-burn delegation happens
// before that transaction commits.
func (s *Service) Execute(ctx context.Context, req *entities.TransferRequest) (*entities.TransferEvent, error) {
	var event *entities.TransferEvent
	var burnRef solana.PublicKey
	delegated := false

	err := s.store.WithinTransaction(ctx, func(ctx context.Context) error {
		cfg, err := s.store.ConfigForUpdate(ctx)
		if err != nil {
			return err
		}

		// Validating
		if !req.TokenProgram.Equals(solana.TokenProgramID) {
			return domainerrors.ErrInvalidTokenProgram
		}
		if req.DestinationDomain >= entities.MaxDomains {
			return domainerrors.ErrInvalidDomain
		}
		message, err := req.Authorization().Serialize()
		if err != nil {
			return err
		}
		if err := sigverify.Verify(req.SignatureInstruction, message, cfg.SignerKey); err != nil {
			return err
		}
		if uint64(s.now().Unix()) > req.Deadline {
			return domainerrors.ErrDeadlineExpired
		}

		// Pricing. The flat fee is charged in USDC only when the caller did
		// not opt to pay it natively.
		flatFee := req.Fee
		if req.FeeIsNative {
			flatFee = 0
		}
		usdcFee := fees.Calculate(req.USDCAmount, cfg.FeeBp, flatFee)
		if usdcFee > req.USDCAmount {
			return domainerrors.ErrFeeExceedsAmount
		}
		var gasDropLimit uint64
		if req.FeeIsNative {
			gasDropLimit = cfg.NativeGasDropLimit(req.DestinationDomain)
		} else {
			gasDropLimit = cfg.MaxUSDCGasDrop
		}
		if gasDropLimit != 0 && req.GasDropAmount > gasDropLimit {
			return domainerrors.ErrGasDropLimitExceeded
		}

		// FeeSettlement
		if err := s.store.MoveFunds(ctx, req.OwnerTokenAccount, cfg.FeeCollectorUSDC, entities.CurrencyUSDC, usdcFee); err != nil {
			return fmt.Errorf("collect usdc fee: %w", err)
		}
		if req.FeeIsNative {
			if err := s.store.MoveFunds(ctx, req.Owner, cfg.FeeCollectorNative, entities.CurrencyNative, req.Fee); err != nil {
				return fmt.Errorf("collect native fee: %w", err)
			}
		}

		// GasDropSettlement
		if req.GasDropAmount > 0 {
			if req.FeeIsNative {
				if err := s.store.MoveFunds(ctx, req.Owner, cfg.GasDropCollectorNative, entities.CurrencyNative, req.GasDropAmount); err != nil {
					return fmt.Errorf("collect native gas drop: %w", err)
				}
			} else {
				if err := s.store.MoveFunds(ctx, req.OwnerTokenAccount, cfg.GasDropCollectorUSDC, entities.CurrencyUSDC, req.GasDropAmount); err != nil {
					return fmt.Errorf("collect usdc gas drop: %w", err)
				}
			}
		}

		// PrincipalCustody
		netAmount := req.USDCAmount - usdcFee
		custody, err := s.store.CreateCustodyAccount(ctx)
		if err != nil {
			return err
		}
		if err := s.store.MoveFunds(ctx, req.OwnerTokenAccount, custody, entities.CurrencyUSDC, netAmount); err != nil {
			return fmt.Errorf("move principal to custody: %w", err)
		}

		// BridgeDelegation
		receipt, err := s.messenger.DepositForBurn(ctx, messenger.DepositForBurnParams{
			Amount:            netAmount,
			DestinationDomain: req.DestinationDomain,
			MintRecipient:     req.Recipient,
		})
		if err != nil {
			return fmt.Errorf("deposit for burn: %w", err)
		}
		delegated = true
		burnRef = receipt.MessageAccount

		// Bookkeeping
		nonce, err := s.store.IncrementNonce(ctx)
		if err != nil {
			return err
		}
		event = &entities.TransferEvent{
			ID:                uuid.New(),
			DestinationDomain: req.DestinationDomain,
			Nonce:             nonce,
			Recipient:         req.Recipient,
			SolanaOwner:       req.SolanaOwner,
			User:              req.Owner,
			Amount:            netAmount,
			GasDropAmount:     req.GasDropAmount,
			FeeIsNative:       req.FeeIsNative,
			CCTPNonce:         -1,
			CCTPMessage:       receipt.MessageAccount,
			CreatedAt:         s.now(),
		}
		if err := s.store.InsertEvent(ctx, event); err != nil {
			return err
		}

		// Done: reclaim the transient custody account.
		if err := s.store.CloseCustodyAccount(ctx, custody, netAmount); err != nil {
			return err
		}

		metrics.FeesCollected.WithLabelValues(string(entities.CurrencyUSDC)).Add(float64(usdcFee))
		return nil
	})
	if err != nil {
		metrics.TransfersFailed.Inc()
		if delegated {
			// The bridge accepted the burn but local bookkeeping did not
			// commit. This needs operator reconciliation against the
			// messenger's message record.
			s.logger.Error("Transfer aborted after bridge delegation",
				zap.String("cctp_message", burnRef.String()),
				zap.String("user", req.Owner.String()),
				zap.Error(err))
		}
		return nil, err
	}

	metrics.TransfersCompleted.Inc()
	s.logger.Info("Transfer settled",
		zap.Uint64("nonce", event.Nonce),
		zap.Uint32("destination_domain", event.DestinationDomain),
		zap.Uint64("amount", event.Amount),
		zap.Uint64("gas_drop_amount", event.GasDropAmount),
		zap.Bool("fee_is_native", event.FeeIsNative),
		zap.String("user", event.User.String()))
	return event, nil
}

// EventByNonce returns the emitted event for a completed transfer.
func (s *Service) EventByNonce(ctx context.Context, nonce uint64) (*entities.TransferEvent, error) {
	return s.store.GetEventByNonce(ctx, nonce)
}
