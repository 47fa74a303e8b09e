package handlers

import (
	"context"
	"net/http"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cashmere-labs/settlement-service/internal/domain/services/admin"
)

// AdminHandlers exposes initialization and the owner-gated setters.
type AdminHandlers struct {
	svc    *admin.Service
	logger *zap.Logger
}

// NewAdminHandlers creates new admin handlers
func NewAdminHandlers(svc *admin.Service, logger *zap.Logger) *AdminHandlers {
	return &AdminHandlers{svc: svc, logger: logger}
}

type initializeRequest struct {
	FeeCollectorNative     string `json:"fee_collector_native" binding:"required"`
	FeeCollectorUSDC       string `json:"fee_collector_usdc" binding:"required"`
	GasDropCollectorNative string `json:"gas_drop_collector_native" binding:"required"`
	GasDropCollectorUSDC   string `json:"gas_drop_collector_usdc" binding:"required"`
}

// Initialize creates the configuration singleton; the caller becomes owner.
func (h *AdminHandlers) Initialize(c *gin.Context) {
	caller, err := getCaller(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
		return
	}

	var req initializeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	var params admin.InitializeParams
	for _, field := range []struct {
		dst  *[32]byte
		name string
		src  string
	}{
		{(*[32]byte)(&params.FeeCollectorNative), "fee_collector_native", req.FeeCollectorNative},
		{(*[32]byte)(&params.FeeCollectorUSDC), "fee_collector_usdc", req.FeeCollectorUSDC},
		{(*[32]byte)(&params.GasDropCollectorNative), "gas_drop_collector_native", req.GasDropCollectorNative},
		{(*[32]byte)(&params.GasDropCollectorUSDC), "gas_drop_collector_usdc", req.GasDropCollectorUSDC},
	} {
		key, err := parseKey(field.name, field.src)
		if err != nil {
			respondBadRequest(c, err.Error())
			return
		}
		*field.dst = key
	}

	cfg, err := h.svc.Initialize(c.Request.Context(), caller, params)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cfg)
}

type setFeeBpRequest struct {
	FeeBp uint64 `json:"fee_bp"`
}

// SetFeeBp updates the percentage fee.
func (h *AdminHandlers) SetFeeBp(c *gin.Context) {
	caller, err := getCaller(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
		return
	}
	var req setFeeBpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	if err := h.svc.SetFeeBp(c.Request.Context(), caller, req.FeeBp); err != nil {
		respondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type setSignerKeyRequest struct {
	SignerKey string `json:"signer_key" binding:"required"`
}

// SetSignerKey updates the authorization signer key.
func (h *AdminHandlers) SetSignerKey(c *gin.Context) {
	caller, err := getCaller(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
		return
	}
	var req setSignerKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	key, err := parseKey("signer_key", req.SignerKey)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	if err := h.svc.SetSignerKey(c.Request.Context(), caller, key); err != nil {
		respondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type setCollectorRequest struct {
	Native string `json:"native" binding:"required"`
	USDC   string `json:"usdc" binding:"required"`
}

// SetFeeCollector updates the fee collector pair.
func (h *AdminHandlers) SetFeeCollector(c *gin.Context) {
	h.setCollectorPair(c, h.svc.SetFeeCollector)
}

// SetGasDropCollector updates the gas-drop collector pair.
func (h *AdminHandlers) SetGasDropCollector(c *gin.Context) {
	h.setCollectorPair(c, h.svc.SetGasDropCollector)
}

func (h *AdminHandlers) setCollectorPair(c *gin.Context, set func(ctx context.Context, caller, native, usdc solana.PublicKey) error) {
	caller, err := getCaller(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
		return
	}
	var req setCollectorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	native, err := parseKey("native", req.Native)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	usdc, err := parseKey("usdc", req.USDC)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	if err := set(c.Request.Context(), caller, native, usdc); err != nil {
		respondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type setMaxUSDCGasDropRequest struct {
	Max uint64 `json:"max"`
}

// SetMaxUSDCGasDrop updates the USDC gas-drop cap.
func (h *AdminHandlers) SetMaxUSDCGasDrop(c *gin.Context) {
	caller, err := getCaller(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
		return
	}
	var req setMaxUSDCGasDropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	if err := h.svc.SetMaxUSDCGasDrop(c.Request.Context(), caller, req.Max); err != nil {
		respondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type setMaxNativeGasDropRequest struct {
	DestinationDomain uint32 `json:"destination_domain"`
	Max               uint64 `json:"max"`
}

// SetMaxNativeGasDrop updates the per-domain native gas-drop cap.
func (h *AdminHandlers) SetMaxNativeGasDrop(c *gin.Context) {
	caller, err := getCaller(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
		return
	}
	var req setMaxNativeGasDropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	if err := h.svc.SetMaxNativeGasDrop(c.Request.Context(), caller, req.DestinationDomain, req.Max); err != nil {
		respondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type transferOwnershipRequest struct {
	NewOwner string `json:"new_owner" binding:"required"`
}

// TransferOwnership hands the configuration to a new owner.
func (h *AdminHandlers) TransferOwnership(c *gin.Context) {
	caller, err := getCaller(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
		return
	}
	var req transferOwnershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	newOwner, err := parseKey("new_owner", req.NewOwner)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	if err := h.svc.TransferOwnership(c.Request.Context(), caller, newOwner); err != nil {
		respondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
