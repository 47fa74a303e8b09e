package handlers

import (
	"encoding/base64"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cashmere-labs/settlement-service/internal/domain/entities"
	"github.com/cashmere-labs/settlement-service/internal/domain/services/admin"
	"github.com/cashmere-labs/settlement-service/internal/domain/services/transfer"
)

// TransferHandlers exposes transfer execution and the public reads.
type TransferHandlers struct {
	transferSvc *transfer.Service
	adminSvc    *admin.Service
	logger      *zap.Logger
}

// NewTransferHandlers creates new transfer handlers
func NewTransferHandlers(transferSvc *transfer.Service, adminSvc *admin.Service, logger *zap.Logger) *TransferHandlers {
	return &TransferHandlers{
		transferSvc: transferSvc,
		adminSvc:    adminSvc,
		logger:      logger,
	}
}

type transferRequest struct {
	USDCAmount           uint64 `json:"usdc_amount" binding:"required"`
	DestinationDomain    uint32 `json:"destination_domain"`
	Recipient            string `json:"recipient" binding:"required"`
	SolanaOwner          string `json:"solana_owner" binding:"required"`
	Fee                  uint64 `json:"fee"`
	Deadline             uint64 `json:"deadline" binding:"required"`
	GasDropAmount        uint64 `json:"gas_drop_amount"`
	FeeIsNative          bool   `json:"fee_is_native"`
	TokenProgram         string `json:"token_program" binding:"required"`
	OwnerTokenAccount    string `json:"owner_token_account" binding:"required"`
	SignatureInstruction string `json:"signature_instruction" binding:"required"`
}

// Transfer executes a settlement and returns the emitted event.
func (h *TransferHandlers) Transfer(c *gin.Context) {
	caller, err := getCaller(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
		return
	}

	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	recipient, err := parseKey("recipient", req.Recipient)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	solanaOwner, err := parseKey("solana_owner", req.SolanaOwner)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	tokenProgram, err := parseKey("token_program", req.TokenProgram)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	ownerTokenAccount, err := parseKey("owner_token_account", req.OwnerTokenAccount)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	signatureInstruction, err := base64.StdEncoding.DecodeString(req.SignatureInstruction)
	if err != nil {
		respondBadRequest(c, "signature_instruction: invalid base64")
		return
	}

	event, err := h.transferSvc.Execute(c.Request.Context(), &entities.TransferRequest{
		Owner:                caller,
		OwnerTokenAccount:    ownerTokenAccount,
		TokenProgram:         tokenProgram,
		USDCAmount:           req.USDCAmount,
		DestinationDomain:    req.DestinationDomain,
		Recipient:            recipient,
		SolanaOwner:          solanaOwner,
		Fee:                  req.Fee,
		Deadline:             req.Deadline,
		GasDropAmount:        req.GasDropAmount,
		FeeIsNative:          req.FeeIsNative,
		SignatureInstruction: signatureInstruction,
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

// GetFee quotes the fee for an amount. Public, read-only.
func (h *TransferHandlers) GetFee(c *gin.Context) {
	amount, err := strconv.ParseUint(c.Query("amount"), 10, 64)
	if err != nil {
		respondBadRequest(c, "amount: expected unsigned integer")
		return
	}
	flatFee := uint64(0)
	if raw := c.Query("fee"); raw != "" {
		if flatFee, err = strconv.ParseUint(raw, 10, 64); err != nil {
			respondBadRequest(c, "fee: expected unsigned integer")
			return
		}
	}

	fee, err := h.adminSvc.GetFee(c.Request.Context(), flatFee, amount)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fee": fee})
}

// GetConfig returns the current configuration. Public, read-only.
func (h *TransferHandlers) GetConfig(c *gin.Context) {
	cfg, err := h.adminSvc.GetConfig(c.Request.Context())
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// GetTransferEvent returns the emitted event for a settled transfer.
func (h *TransferHandlers) GetTransferEvent(c *gin.Context) {
	nonce, err := strconv.ParseUint(c.Param("nonce"), 10, 64)
	if err != nil {
		respondBadRequest(c, "nonce: expected unsigned integer")
		return
	}
	event, err := h.transferSvc.EventByNonce(c.Request.Context(), nonce)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}
