package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/cashmere-labs/settlement-service/internal/api/handlers"
	"github.com/cashmere-labs/settlement-service/internal/api/middleware"
	"github.com/cashmere-labs/settlement-service/internal/domain/services/admin"
	"github.com/cashmere-labs/settlement-service/internal/domain/services/transfer"
	"github.com/cashmere-labs/settlement-service/pkg/metrics"
)

// SetupRoutes configures all application routes
func SetupRoutes(db *sqlx.DB, adminSvc *admin.Service, transferSvc *transfer.Service, logger *zap.Logger) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Metrics())
	router.Use(middleware.RequestSizeLimit())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))

	coreHandlers := handlers.NewCoreHandlers(db, logger)
	adminHandlers := handlers.NewAdminHandlers(adminSvc, logger)
	transferHandlers := handlers.NewTransferHandlers(transferSvc, adminSvc, logger)

	// Health checks and metrics (no auth required)
	router.GET("/health", coreHandlers.Health)
	router.GET("/ready", coreHandlers.Ready)
	router.GET("/metrics", metrics.Handler())

	v1 := router.Group("/api/v1")

	// Public reads
	v1.GET("/fee", transferHandlers.GetFee)
	v1.GET("/config", transferHandlers.GetConfig)
	v1.GET("/transfers/:nonce", transferHandlers.GetTransferEvent)

	// Signature-authenticated surface. The ownership gate itself lives in
	// the admin service; the middleware only proves who is calling.
	signed := v1.Group("")
	signed.Use(middleware.SignatureAuth())
	signed.POST("/initialize", adminHandlers.Initialize)
	signed.POST("/transfer", transferHandlers.Transfer)

	adminGroup := signed.Group("/admin")
	adminGroup.POST("/fee-bp", adminHandlers.SetFeeBp)
	adminGroup.POST("/signer-key", adminHandlers.SetSignerKey)
	adminGroup.POST("/fee-collector", adminHandlers.SetFeeCollector)
	adminGroup.POST("/gas-drop-collector", adminHandlers.SetGasDropCollector)
	adminGroup.POST("/max-usdc-gas-drop", adminHandlers.SetMaxUSDCGasDrop)
	adminGroup.POST("/max-native-gas-drop", adminHandlers.SetMaxNativeGasDrop)
	adminGroup.POST("/transfer-ownership", adminHandlers.TransferOwnership)

	return router
}
