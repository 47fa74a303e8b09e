// Package errors provides standardized error types for the domain layer.
// Every failure aborts the request it belongs to; handlers map these
// sentinels to HTTP status codes, services wrap them with fmt.Errorf("%w").
package errors

import "errors"

// Signature verification errors. The companion-instruction payload either
// does not parse, references data outside itself, or carries a triple that
// does not match the transfer being executed.
var (
	// ErrNotSigVerified indicates the Ed25519 signature itself is invalid.
	ErrNotSigVerified = errors.New("signature not verified")

	// ErrInvalidSignatureData indicates the offsets header references data
	// outside the companion instruction.
	ErrInvalidSignatureData = errors.New("invalid signature data")

	// ErrInvalidDataFormat indicates a malformed or internally inconsistent
	// offsets header.
	ErrInvalidDataFormat = errors.New("invalid data format")

	// ErrLessDataThanExpected indicates the payload is shorter than the
	// fixed offsets header.
	ErrLessDataThanExpected = errors.New("less data than expected")

	// ErrInvalidMessageData indicates the declared message is out of bounds
	// or does not match the transfer parameters.
	ErrInvalidMessageData = errors.New("invalid message data")

	// ErrInvalidSignature indicates the signing key is not the configured
	// authorization signer.
	ErrInvalidSignature = errors.New("invalid signer")
)

// Transfer policy errors. The caller must resubmit with corrected
// parameters (and a fresh authorization where applicable).
var (
	// ErrDeadlineExpired indicates the authorization deadline has passed.
	ErrDeadlineExpired = errors.New("deadline expired")

	// ErrInvalidTokenProgram indicates the caller-specified token program
	// is not the bridged-asset token program.
	ErrInvalidTokenProgram = errors.New("invalid token program")

	// ErrGasDropLimitExceeded indicates the gas-drop amount is above the
	// configured limit for the selected settlement currency.
	ErrGasDropLimitExceeded = errors.New("gas drop limit exceeded")

	// ErrFeeExceedsAmount indicates the computed fee is larger than the
	// transfer principal.
	ErrFeeExceedsAmount = errors.New("insufficient USDC amount")

	// ErrInvalidDomain indicates a destination domain outside the supported
	// table.
	ErrInvalidDomain = errors.New("invalid destination domain")

	// ErrInsufficientFunds indicates a fund movement would overdraw the
	// source account.
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// ErrNotFound indicates the requested resource was not found.
var ErrNotFound = errors.New("resource not found")

// Configuration errors, raised on the administrative paths.
var (
	// ErrFeeTooHigh indicates a fee above 10000 basis points.
	ErrFeeTooHigh = errors.New("fee basis points too high")

	// ErrUnauthorized indicates the caller is not the configuration owner.
	ErrUnauthorized = errors.New("caller is not the configuration owner")

	// ErrAlreadyInitialized indicates the configuration singleton exists.
	ErrAlreadyInitialized = errors.New("configuration already initialized")

	// ErrNotInitialized indicates the configuration singleton is missing.
	ErrNotInitialized = errors.New("configuration not initialized")
)
