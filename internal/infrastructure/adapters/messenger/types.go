package messenger

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// DepositForBurnParams are the burn parameters delegated to the token
// messenger. Field order is the messenger's canonical Borsh layout; the
// custodian signature is computed over exactly these bytes.
type DepositForBurnParams struct {
	Amount            uint64           `json:"amount"`
	DestinationDomain uint32           `json:"destination_domain"`
	MintRecipient     solana.PublicKey `json:"mint_recipient"`
}

// Serialize returns the canonical Borsh encoding of the burn parameters.
func (p DepositForBurnParams) Serialize() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := bin.NewBorshEncoder(buf).Encode(p); err != nil {
		return nil, fmt.Errorf("encode deposit-for-burn params: %w", err)
	}
	return buf.Bytes(), nil
}

// BurnReceipt is the messenger's synchronous acknowledgement. The cross-chain
// sequence number is not part of it; MessageAccount is the reference to the
// message record the bridge emitted.
type BurnReceipt struct {
	MessageAccount solana.PublicKey `json:"message_account"`
	MessageHash    string           `json:"message_hash"`
	BurnTxHash     string           `json:"burn_tx_hash"`
}
