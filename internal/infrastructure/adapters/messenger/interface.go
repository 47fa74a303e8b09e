package messenger

import "context"

// TokenMessenger defines the deposit-for-burn entry point of the external
// bridge. The call is atomic and opaque: success means the bridge accepted
// the burn and emitted its own cross-chain message.
type TokenMessenger interface {
	DepositForBurn(ctx context.Context, params DepositForBurnParams) (*BurnReceipt, error)
}

// Ensure Client implements TokenMessenger interface
var _ TokenMessenger = (*Client)(nil)
