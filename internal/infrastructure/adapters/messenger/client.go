package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout = 30 * time.Second
	maxRetries     = 3
)

// Config represents token-messenger client configuration
type Config struct {
	BaseURL     string
	Environment string // "sandbox" or "mainnet"
	Timeout     time.Duration
}

// Client calls the token-messenger gateway. Every deposit-for-burn request
// is signed with the custodian key; the gateway only burns from the custody
// account when the custodian authorized it.
type Client struct {
	config         Config
	custodian      solana.PrivateKey
	httpClient     *http.Client
	circuitBreaker *gobreaker.CircuitBreaker
	rateLimiter    *rate.Limiter
	logger         *zap.Logger
}

// NewClient creates a new token-messenger client
func NewClient(config Config, custodian solana.PrivateKey, logger *zap.Logger) *Client {
	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}
	if config.BaseURL == "" {
		if config.Environment == "mainnet" {
			config.BaseURL = MessengerMainnetURL
		} else {
			config.BaseURL = MessengerSandboxURL
		}
	}

	cbSettings := gobreaker.Settings{
		Name:        "TokenMessenger",
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("Token messenger circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	return &Client{
		config:         config,
		custodian:      custodian,
		httpClient:     &http.Client{Timeout: config.Timeout},
		circuitBreaker: gobreaker.NewCircuitBreaker(cbSettings),
		rateLimiter:    rate.NewLimiter(rate.Limit(MaxRequestsPerSecond), 1),
		logger:         logger,
	}
}

// DepositForBurn burns the custody balance and requests a re-mint on the
// destination domain. Failure means the bridge did nothing; the caller's
// surrounding transaction must roll back.
func (c *Client) DepositForBurn(ctx context.Context, params DepositForBurnParams) (*BurnReceipt, error) {
	payload, err := params.Serialize()
	if err != nil {
		return nil, err
	}
	signature, err := c.custodian.Sign(payload)
	if err != nil {
		return nil, fmt.Errorf("custodian sign: %w", err)
	}

	body, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("marshal params: %w", err)
	}

	var receipt BurnReceipt
	headers := map[string]string{
		"X-Custodian":           c.custodian.PublicKey().String(),
		"X-Custodian-Signature": signature.String(),
	}
	if err := c.doRequest(ctx, "/v1/depositForBurn", body, headers, &receipt); err != nil {
		return nil, fmt.Errorf("deposit for burn failed: %w", err)
	}

	c.logger.Info("Deposit-for-burn accepted",
		zap.Uint64("amount", params.Amount),
		zap.Uint32("destination_domain", params.DestinationDomain),
		zap.String("message_account", receipt.MessageAccount.String()))
	return &receipt, nil
}

func (c *Client) doRequest(ctx context.Context, endpoint string, body []byte, headers map[string]string, response interface{}) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	_, err := c.circuitBreaker.Execute(func() (interface{}, error) {
		return nil, c.doRequestInternal(ctx, endpoint, body, headers, response)
	})
	return err
}

func (c *Client) doRequestInternal(ctx context.Context, endpoint string, body []byte, headers map[string]string, response interface{}) error {
	fullURL := c.config.BaseURL + endpoint

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<(attempt-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read body: %w", err)
			continue
		}

		// Retry on 5xx
		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("server error: status %d", resp.StatusCode)
			continue
		}

		if resp.StatusCode >= 400 {
			var errResp ErrorResponse
			if json.Unmarshal(respBody, &errResp) == nil && errResp.Message != "" {
				errResp.StatusCode = resp.StatusCode
				return &errResp
			}
			return fmt.Errorf("API error: status %d, body: %s", resp.StatusCode, string(respBody))
		}

		if response != nil && len(respBody) > 0 {
			if err := json.Unmarshal(respBody, response); err != nil {
				return fmt.Errorf("unmarshal response: %w", err)
			}
		}
		return nil
	}
	return lastErr
}
