package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"math/big"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/cashmere-labs/settlement-service/internal/domain/entities"
	domainerrors "github.com/cashmere-labs/settlement-service/internal/domain/errors"
)

// SettlementRepository is the single writer for the settlement schema:
// the configuration singleton, the custodian record, token-account balances
// and the emitted transfer events.
type SettlementRepository struct {
	db *sqlx.DB
}

// NewSettlementRepository creates a new settlement repository
func NewSettlementRepository(db *sqlx.DB) *SettlementRepository {
	return &SettlementRepository{db: db}
}

type txKey struct{}

// WithinTransaction runs fn inside one database transaction. Any error from
// fn rolls back every write made through the derived context.
func (r *SettlementRepository) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// execer returns the enclosing transaction when one is present.
func (r *SettlementRepository) execer(ctx context.Context) sqlx.ExtContext {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return r.db
}

// --- configuration singleton ---

type configRow struct {
	Owner                  string          `db:"owner"`
	FeeCollectorNative     string          `db:"fee_collector_native"`
	FeeCollectorUSDC       string          `db:"fee_collector_usdc"`
	GasDropCollectorNative string          `db:"gas_drop_collector_native"`
	GasDropCollectorUSDC   string          `db:"gas_drop_collector_usdc"`
	FeeBp                  int64           `db:"fee_bp"`
	Nonce                  int64           `db:"nonce"`
	SignerKey              string          `db:"signer_key"`
	MaxUSDCGasDrop         decimal.Decimal `db:"max_usdc_gas_drop"`
	MaxNativeGasDrop       pq.Int64Array   `db:"max_native_gas_drop"`
	CreatedAt              time.Time       `db:"created_at"`
	UpdatedAt              time.Time       `db:"updated_at"`
}

const configColumns = `owner, fee_collector_native, fee_collector_usdc,
	gas_drop_collector_native, gas_drop_collector_usdc, fee_bp, nonce,
	signer_key, max_usdc_gas_drop, max_native_gas_drop, created_at, updated_at`

func (row *configRow) toEntity() (*entities.BridgeConfig, error) {
	cfg := &entities.BridgeConfig{
		FeeBp:          uint64(row.FeeBp),
		Nonce:          uint64(row.Nonce),
		MaxUSDCGasDrop: decimalToUint64(row.MaxUSDCGasDrop),
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
	for i, v := range row.MaxNativeGasDrop {
		if i >= entities.MaxDomains {
			break
		}
		cfg.MaxNativeGasDrop[i] = uint64(v)
	}
	var err error
	for _, field := range []struct {
		dst *solana.PublicKey
		src string
	}{
		{&cfg.Owner, row.Owner},
		{&cfg.FeeCollectorNative, row.FeeCollectorNative},
		{&cfg.FeeCollectorUSDC, row.FeeCollectorUSDC},
		{&cfg.GasDropCollectorNative, row.GasDropCollectorNative},
		{&cfg.GasDropCollectorUSDC, row.GasDropCollectorUSDC},
		{&cfg.SignerKey, row.SignerKey},
	} {
		if *field.dst, err = solana.PublicKeyFromBase58(field.src); err != nil {
			return nil, fmt.Errorf("decode config key %q: %w", field.src, err)
		}
	}
	return cfg, nil
}

func limitsToArray(limits [entities.MaxDomains]uint64) pq.Int64Array {
	arr := make(pq.Int64Array, entities.MaxDomains)
	for i, v := range limits {
		arr[i] = int64(v)
	}
	return arr
}

// GetConfig loads the configuration singleton.
func (r *SettlementRepository) GetConfig(ctx context.Context) (*entities.BridgeConfig, error) {
	return r.getConfig(ctx, false)
}

// ConfigForUpdate loads the configuration singleton under a row lock,
// pinning one consistent snapshot for the enclosing transaction and
// serializing against concurrent nonce or admin updates.
func (r *SettlementRepository) ConfigForUpdate(ctx context.Context) (*entities.BridgeConfig, error) {
	return r.getConfig(ctx, true)
}

func (r *SettlementRepository) getConfig(ctx context.Context, forUpdate bool) (*entities.BridgeConfig, error) {
	query := `SELECT ` + configColumns + ` FROM bridge_config WHERE id`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var row configRow
	if err := sqlx.GetContext(ctx, r.execer(ctx), &row, query); err != nil {
		if err == sql.ErrNoRows {
			return nil, domainerrors.ErrNotInitialized
		}
		return nil, fmt.Errorf("get config: %w", err)
	}
	return row.toEntity()
}

// CreateConfig inserts the configuration singleton and the custodian record.
func (r *SettlementRepository) CreateConfig(ctx context.Context, cfg *entities.BridgeConfig, custodian *entities.Custodian) error {
	query := `
		INSERT INTO bridge_config (
			id, owner, fee_collector_native, fee_collector_usdc,
			gas_drop_collector_native, gas_drop_collector_usdc,
			fee_bp, nonce, signer_key, max_usdc_gas_drop, max_native_gas_drop
		) VALUES (TRUE, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.execer(ctx).ExecContext(ctx, query,
		cfg.Owner.String(), cfg.FeeCollectorNative.String(), cfg.FeeCollectorUSDC.String(),
		cfg.GasDropCollectorNative.String(), cfg.GasDropCollectorUSDC.String(),
		int64(cfg.FeeBp), int64(cfg.Nonce), cfg.SignerKey.String(),
		uint64ToDecimal(cfg.MaxUSDCGasDrop), limitsToArray(cfg.MaxNativeGasDrop),
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return domainerrors.ErrAlreadyInitialized
		}
		return fmt.Errorf("create config: %w", err)
	}

	_, err = r.execer(ctx).ExecContext(ctx,
		`INSERT INTO custodian (id, authority) VALUES (TRUE, $1)
		 ON CONFLICT (id) DO NOTHING`,
		custodian.Authority.String(),
	)
	if err != nil {
		return fmt.Errorf("create custodian: %w", err)
	}
	return nil
}

// UpdateConfig persists the administrative fields. The nonce is deliberately
// excluded: it only moves through IncrementNonce.
func (r *SettlementRepository) UpdateConfig(ctx context.Context, cfg *entities.BridgeConfig) error {
	query := `
		UPDATE bridge_config SET
			owner = $1, fee_collector_native = $2, fee_collector_usdc = $3,
			gas_drop_collector_native = $4, gas_drop_collector_usdc = $5,
			fee_bp = $6, signer_key = $7, max_usdc_gas_drop = $8,
			max_native_gas_drop = $9, updated_at = now()
		WHERE id`

	res, err := r.execer(ctx).ExecContext(ctx, query,
		cfg.Owner.String(), cfg.FeeCollectorNative.String(), cfg.FeeCollectorUSDC.String(),
		cfg.GasDropCollectorNative.String(), cfg.GasDropCollectorUSDC.String(),
		int64(cfg.FeeBp), cfg.SignerKey.String(),
		uint64ToDecimal(cfg.MaxUSDCGasDrop), limitsToArray(cfg.MaxNativeGasDrop),
	)
	if err != nil {
		return fmt.Errorf("update config: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domainerrors.ErrNotInitialized
	}
	return nil
}

// IncrementNonce advances the local transfer sequence number by exactly one.
func (r *SettlementRepository) IncrementNonce(ctx context.Context) (uint64, error) {
	var nonce int64
	err := sqlx.GetContext(ctx, r.execer(ctx), &nonce,
		`UPDATE bridge_config SET nonce = nonce + 1, updated_at = now() WHERE id RETURNING nonce`)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, domainerrors.ErrNotInitialized
		}
		return 0, fmt.Errorf("increment nonce: %w", err)
	}
	return uint64(nonce), nil
}

// GetCustodian loads the custodian record.
func (r *SettlementRepository) GetCustodian(ctx context.Context) (*entities.Custodian, error) {
	var row struct {
		Authority string    `db:"authority"`
		CreatedAt time.Time `db:"created_at"`
	}
	err := sqlx.GetContext(ctx, r.execer(ctx), &row,
		`SELECT authority, created_at FROM custodian WHERE id`)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domainerrors.ErrNotInitialized
		}
		return nil, fmt.Errorf("get custodian: %w", err)
	}
	authority, err := solana.PublicKeyFromBase58(row.Authority)
	if err != nil {
		return nil, fmt.Errorf("decode custodian authority: %w", err)
	}
	return &entities.Custodian{Authority: authority, CreatedAt: row.CreatedAt}, nil
}

// --- token accounts ---

// MoveFunds moves amount between two token accounts in the given currency.
// The debit is guarded against overdraw at the database level; the credit
// upserts the destination account.
func (r *SettlementRepository) MoveFunds(ctx context.Context, from, to solana.PublicKey, currency entities.Currency, amount uint64) error {
	if amount == 0 {
		return nil
	}
	ex := r.execer(ctx)
	value := uint64ToDecimal(amount)

	res, err := ex.ExecContext(ctx, `
		UPDATE token_accounts
		SET balance = balance - $3, updated_at = now()
		WHERE address = $1 AND currency = $2 AND balance >= $3`,
		from.String(), currency, value)
	if err != nil {
		return fmt.Errorf("debit %s: %w", from, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("debit %s %s %d: %w", from, currency, amount, domainerrors.ErrInsufficientFunds)
	}

	_, err = ex.ExecContext(ctx, `
		INSERT INTO token_accounts (address, currency, balance)
		VALUES ($1, $2, $3)
		ON CONFLICT (address, currency)
		DO UPDATE SET balance = token_accounts.balance + EXCLUDED.balance, updated_at = now()`,
		to.String(), currency, value)
	if err != nil {
		return fmt.Errorf("credit %s: %w", to, err)
	}
	return nil
}

// CreateCustodyAccount creates the transient custody account for a single
// transfer. It lives and dies inside the enclosing transaction.
func (r *SettlementRepository) CreateCustodyAccount(ctx context.Context) (solana.PublicKey, error) {
	address := solana.NewWallet().PublicKey()
	_, err := r.execer(ctx).ExecContext(ctx, `
		INSERT INTO token_accounts (address, currency, balance, custody)
		VALUES ($1, $2, 0, TRUE)`,
		address.String(), entities.CurrencyUSDC)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("create custody account: %w", err)
	}
	return address, nil
}

// CloseCustodyAccount burns the custody balance and removes the account.
// The balance must equal the burned amount exactly.
func (r *SettlementRepository) CloseCustodyAccount(ctx context.Context, account solana.PublicKey, amount uint64) error {
	res, err := r.execer(ctx).ExecContext(ctx, `
		DELETE FROM token_accounts
		WHERE address = $1 AND currency = $2 AND custody AND balance = $3`,
		account.String(), entities.CurrencyUSDC, uint64ToDecimal(amount))
	if err != nil {
		return fmt.Errorf("close custody account: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("close custody account %s: balance does not match burn amount %d", account, amount)
	}
	return nil
}

// --- transfer events ---

type eventRow struct {
	ID                uuid.UUID       `db:"id"`
	DestinationDomain int64           `db:"destination_domain"`
	Nonce             int64           `db:"nonce"`
	Recipient         string          `db:"recipient"`
	SolanaOwner       string          `db:"solana_owner"`
	UserKey           string          `db:"user_key"`
	Amount            decimal.Decimal `db:"amount"`
	GasDropAmount     decimal.Decimal `db:"gas_drop_amount"`
	FeeIsNative       bool            `db:"fee_is_native"`
	CCTPNonce         int64           `db:"cctp_nonce"`
	CCTPMessage       string          `db:"cctp_message"`
	CreatedAt         time.Time       `db:"created_at"`
}

// InsertEvent persists an emitted transfer event.
func (r *SettlementRepository) InsertEvent(ctx context.Context, event *entities.TransferEvent) error {
	query := `
		INSERT INTO transfer_events (
			id, destination_domain, nonce, recipient, solana_owner, user_key,
			amount, gas_drop_amount, fee_is_native, cctp_nonce, cctp_message, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.execer(ctx).ExecContext(ctx, query,
		event.ID, int64(event.DestinationDomain), int64(event.Nonce),
		event.Recipient.String(), event.SolanaOwner.String(), event.User.String(),
		uint64ToDecimal(event.Amount), uint64ToDecimal(event.GasDropAmount),
		event.FeeIsNative, event.CCTPNonce, event.CCTPMessage.String(), event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transfer event: %w", err)
	}
	return nil
}

// GetEventByNonce loads one emitted transfer event by local nonce.
func (r *SettlementRepository) GetEventByNonce(ctx context.Context, nonce uint64) (*entities.TransferEvent, error) {
	var row eventRow
	err := sqlx.GetContext(ctx, r.execer(ctx), &row,
		`SELECT * FROM transfer_events WHERE nonce = $1`, int64(nonce))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("transfer event %d: %w", nonce, domainerrors.ErrNotFound)
		}
		return nil, fmt.Errorf("get transfer event: %w", err)
	}
	return row.toEntity()
}

func (row *eventRow) toEntity() (*entities.TransferEvent, error) {
	ev := &entities.TransferEvent{
		ID:                row.ID,
		DestinationDomain: uint32(row.DestinationDomain),
		Nonce:             uint64(row.Nonce),
		Amount:            decimalToUint64(row.Amount),
		GasDropAmount:     decimalToUint64(row.GasDropAmount),
		FeeIsNative:       row.FeeIsNative,
		CCTPNonce:         row.CCTPNonce,
		CreatedAt:         row.CreatedAt,
	}
	var err error
	if ev.Recipient, err = solana.PublicKeyFromBase58(row.Recipient); err != nil {
		return nil, fmt.Errorf("decode recipient: %w", err)
	}
	if ev.SolanaOwner, err = solana.PublicKeyFromBase58(row.SolanaOwner); err != nil {
		return nil, fmt.Errorf("decode solana owner: %w", err)
	}
	if ev.User, err = solana.PublicKeyFromBase58(row.UserKey); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	if ev.CCTPMessage, err = solana.PublicKeyFromBase58(row.CCTPMessage); err != nil {
		return nil, fmt.Errorf("decode cctp message: %w", err)
	}
	return ev, nil
}

// --- numeric helpers ---

// Balances and amounts are unsigned 64-bit micro-units stored as NUMERIC.
func uint64ToDecimal(v uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0)
}

func decimalToUint64(d decimal.Decimal) uint64 {
	return d.BigInt().Uint64()
}
