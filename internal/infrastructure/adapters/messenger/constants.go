package messenger

const (
	// API hosts for the token-messenger gateway
	MessengerMainnetURL = "https://messenger-api.circle.com"
	MessengerSandboxURL = "https://messenger-api-sandbox.circle.com"

	// Domain IDs - only chains we support
	DomainEthereum uint32 = 0
	DomainSolana   uint32 = 5
	DomainPolygon  uint32 = 7
	DomainStarknet uint32 = 25

	// Rate limiting
	MaxRequestsPerSecond = 35
)

// DomainNames maps domain IDs to human-readable names
var DomainNames = map[uint32]string{
	DomainEthereum: "Ethereum",
	DomainSolana:   "Solana",
	DomainPolygon:  "Polygon",
	DomainStarknet: "Starknet",
}
