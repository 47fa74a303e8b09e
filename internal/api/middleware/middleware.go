package middleware

import (
	"bytes"
	"crypto/ed25519"
	"encoding/base64"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cashmere-labs/settlement-service/pkg/metrics"
)

const (
	// MaxRequestSize bounds request bodies; settlement payloads are small.
	MaxRequestSize = 1 << 20 // 1MB

	callerKey = "caller"
)

// RequestID adds a unique request ID to each request
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// Logger logs each request with latency and status
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("Request handled",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.GetString("request_id")))
	}
}

// Recovery converts panics into 500 responses
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("Panic recovered",
					zap.Any("panic", rec),
					zap.String("path", c.Request.URL.Path))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"code":    "INTERNAL_ERROR",
					"message": "internal server error",
				})
			}
		}()
		c.Next()
	}
}

// Metrics counts requests by method, route and status
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(
			c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// RequestSizeLimit rejects oversized bodies
func RequestSizeLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxRequestSize)
		c.Next()
	}
}

// SignatureAuth authenticates the caller: X-Signer carries a base58 Ed25519
// public key, X-Signature a base64 signature over the raw request body. The
// verified key becomes the caller identity for the handler chain. This
// mirrors the chain runtime's signer model; there are no sessions or tokens.
func SignatureAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		signer, err := solana.PublicKeyFromBase58(c.GetHeader("X-Signer"))
		if err != nil {
			abortUnauthorized(c, "missing or malformed X-Signer header")
			return
		}
		signature, err := base64.StdEncoding.DecodeString(c.GetHeader("X-Signature"))
		if err != nil || len(signature) != ed25519.SignatureSize {
			abortUnauthorized(c, "missing or malformed X-Signature header")
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			abortUnauthorized(c, "unreadable request body")
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		if !ed25519.Verify(ed25519.PublicKey(signer[:]), body, signature) {
			abortUnauthorized(c, "request signature verification failed")
			return
		}

		c.Set(callerKey, signer)
		c.Next()
	}
}

// Caller returns the authenticated caller identity set by SignatureAuth.
func Caller(c *gin.Context) (solana.PublicKey, bool) {
	v, ok := c.Get(callerKey)
	if !ok {
		return solana.PublicKey{}, false
	}
	key, ok := v.(solana.PublicKey)
	return key, ok
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code":    "UNAUTHORIZED",
		"message": message,
	})
}
