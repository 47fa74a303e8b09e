package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"

	"github.com/cashmere-labs/settlement-service/internal/api/middleware"
	"github.com/cashmere-labs/settlement-service/internal/domain/entities"
	domainerrors "github.com/cashmere-labs/settlement-service/internal/domain/errors"
)

// getCaller extracts the authenticated caller identity from context
func getCaller(c *gin.Context) (solana.PublicKey, error) {
	caller, ok := middleware.Caller(c)
	if !ok {
		return solana.PublicKey{}, fmt.Errorf("caller identity not found in context")
	}
	return caller, nil
}

// parseKey parses a base58 public key from a request field
func parseKey(field, value string) (solana.PublicKey, error) {
	key, err := solana.PublicKeyFromBase58(value)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%s: %w", field, err)
	}
	return key, nil
}

// respondError sends a standardized error response
func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, entities.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// respondBadRequest sends a bad request error
func respondBadRequest(c *gin.Context, message string) {
	respondError(c, http.StatusBadRequest, "INVALID_REQUEST", message)
}

// domainStatus maps a domain error to its HTTP status and code. Exactly one
// failure code per aborted request.
func domainStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domainerrors.ErrNotSigVerified):
		return http.StatusUnauthorized, "NOT_SIG_VERIFIED"
	case errors.Is(err, domainerrors.ErrInvalidSignatureData):
		return http.StatusUnauthorized, "INVALID_SIGNATURE_DATA"
	case errors.Is(err, domainerrors.ErrInvalidDataFormat):
		return http.StatusUnauthorized, "INVALID_DATA_FORMAT"
	case errors.Is(err, domainerrors.ErrLessDataThanExpected):
		return http.StatusUnauthorized, "LESS_DATA_THAN_EXPECTED"
	case errors.Is(err, domainerrors.ErrInvalidMessageData):
		return http.StatusUnauthorized, "INVALID_MESSAGE_DATA"
	case errors.Is(err, domainerrors.ErrInvalidSignature):
		return http.StatusUnauthorized, "INVALID_SIGNER"
	case errors.Is(err, domainerrors.ErrDeadlineExpired):
		return http.StatusUnprocessableEntity, "DEADLINE_EXPIRED"
	case errors.Is(err, domainerrors.ErrInvalidTokenProgram):
		return http.StatusUnprocessableEntity, "INVALID_TOKEN_PROGRAM"
	case errors.Is(err, domainerrors.ErrGasDropLimitExceeded):
		return http.StatusUnprocessableEntity, "GAS_DROP_LIMIT_EXCEEDED"
	case errors.Is(err, domainerrors.ErrFeeExceedsAmount):
		return http.StatusUnprocessableEntity, "FEE_EXCEEDS_AMOUNT"
	case errors.Is(err, domainerrors.ErrInvalidDomain):
		return http.StatusUnprocessableEntity, "INVALID_DOMAIN"
	case errors.Is(err, domainerrors.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity, "INSUFFICIENT_FUNDS"
	case errors.Is(err, domainerrors.ErrFeeTooHigh):
		return http.StatusBadRequest, "FEE_TOO_HIGH"
	case errors.Is(err, domainerrors.ErrUnauthorized):
		return http.StatusForbidden, "NOT_OWNER"
	case errors.Is(err, domainerrors.ErrAlreadyInitialized):
		return http.StatusConflict, "ALREADY_INITIALIZED"
	case errors.Is(err, domainerrors.ErrNotInitialized):
		return http.StatusNotFound, "NOT_INITIALIZED"
	case errors.Is(err, domainerrors.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

// respondDomainError maps a service error to the response envelope
func respondDomainError(c *gin.Context, err error) {
	status, code := domainStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}
	respondError(c, status, code, message)
}
