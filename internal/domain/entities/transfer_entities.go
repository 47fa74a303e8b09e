package entities

import (
	"bytes"
	"fmt"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
)

// TransferAuthorization is the tuple the off-chain authorizer signs. It is
// rebuilt locally from request parameters and compared byte-for-byte against
// the authenticated message, so the serialization must be deterministic:
// canonical Borsh, field order as declared.
type TransferAuthorization struct {
	LocalDomain       uint32
	DestinationDomain uint32
	Fee               uint64
	Deadline          uint64
	FeeIsNative       bool
}

// Serialize returns the canonical Borsh encoding of the authorization.
func (a TransferAuthorization) Serialize() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := bin.NewBorshEncoder(buf).Encode(a); err != nil {
		return nil, fmt.Errorf("encode transfer authorization: %w", err)
	}
	return buf.Bytes(), nil
}

// TransferRequest carries everything a transfer execution needs. Owner is
// the authenticated caller identity; SignatureInstruction is the companion
// ed25519-instruction payload produced by the off-chain authorizer.
type TransferRequest struct {
	Owner                solana.PublicKey
	OwnerTokenAccount    solana.PublicKey
	TokenProgram         solana.PublicKey
	USDCAmount           uint64
	DestinationDomain    uint32
	Recipient            solana.PublicKey
	SolanaOwner          solana.PublicKey
	Fee                  uint64
	Deadline             uint64
	GasDropAmount        uint64
	FeeIsNative          bool
	SignatureInstruction []byte
}

// Authorization rebuilds the canonical authorization for this request.
func (r *TransferRequest) Authorization() TransferAuthorization {
	return TransferAuthorization{
		LocalDomain:       LocalDomain,
		DestinationDomain: r.DestinationDomain,
		Fee:               r.Fee,
		Deadline:          r.Deadline,
		FeeIsNative:       r.FeeIsNative,
	}
}

// TransferEvent is emitted (and persisted) once per completed transfer.
// CCTPNonce is -1 at emission time: the bridge's own sequence number is not
// known synchronously, only the message account reference is.
type TransferEvent struct {
	ID                uuid.UUID        `json:"id"`
	DestinationDomain uint32           `json:"destination_domain"`
	Nonce             uint64           `json:"nonce"`
	Recipient         solana.PublicKey `json:"recipient"`
	SolanaOwner       solana.PublicKey `json:"solana_owner"`
	User              solana.PublicKey `json:"user"`
	Amount            uint64           `json:"amount"`
	GasDropAmount     uint64           `json:"gas_drop_amount"`
	FeeIsNative       bool             `json:"fee_is_native"`
	CCTPNonce         int64            `json:"cctp_nonce"`
	CCTPMessage       solana.PublicKey `json:"cctp_message"`
	CreatedAt         time.Time        `json:"created_at"`
}
