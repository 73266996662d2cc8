package verification

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"karigar/internal/config"

	"github.com/rs/zerolog"
)

// Client talks to the external identity verification service. Verification
// fails closed: any transport or decode error is reported as an error, never
// as a pass.
type Client struct {
	url        string
	apiKey     string
	httpClient *http.Client
	logger     *zerolog.Logger
}

func NewClient(cfg config.VerificationConfig, logger *zerolog.Logger) *Client {
	return &Client{
		url:    cfg.URL,
		apiKey: cfg.APIKey,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		logger: logger,
	}
}

type verifyRequest struct {
	IDNumber string `json:"id_number"`
}

type verifyResponse struct {
	Verified bool   `json:"verified"`
	Reason   string `json:"reason,omitempty"`
}

// Verify submits the id number and returns the outcome plus a reason on
// rejection.
func (c *Client) Verify(ctx context.Context, idNumber string) (bool, string, error) {
	body, err := json.Marshal(verifyRequest{IDNumber: idNumber})
	if err != nil {
		return false, "", fmt.Errorf("failed to marshal verification request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return false, "", fmt.Errorf("failed to build verification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, "", fmt.Errorf("verification request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, "", fmt.Errorf("verification service returned status %d", resp.StatusCode)
	}

	var result verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, "", fmt.Errorf("failed to decode verification response: %w", err)
	}

	c.logger.Info().Bool("verified", result.Verified).Msg("identity verification completed")
	return result.Verified, result.Reason, nil
}

// HashID returns the hex SHA-256 of an id number. Raw id numbers are never
// stored.
func HashID(idNumber string) string {
	sum := sha256.Sum256([]byte(idNumber))
	return hex.EncodeToString(sum[:])
}
