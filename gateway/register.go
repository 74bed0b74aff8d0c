package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/dicemill/outgunned"
)

// DefaultAPIBase is the Discord REST API root.
const DefaultAPIBase = "https://discord.com/api/v10"

// Registrar bulk-overwrites the application's global slash commands. The
// overwrite endpoint is idempotent, so it is safe to run on every startup.
type Registrar struct {
	Client        *http.Client
	ApplicationID string
	Token         string // Bot token
	BaseURL       string // Defaults to DefaultAPIBase; tests point it elsewhere
	Logger        *slog.Logger
}

// NewRegistrar creates a Registrar with sane defaults.
func NewRegistrar(applicationID, token string, logger *slog.Logger) *Registrar {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registrar{
		Client:        &http.Client{Timeout: 15 * time.Second},
		ApplicationID: applicationID,
		Token:         token,
		BaseURL:       DefaultAPIBase,
		Logger:        logger,
	}
}

// RegisterCommands PUTs the full command list. Rate limits and server
// errors are retried with exponential backoff; any other API error is
// final.
func (registrar *Registrar) RegisterCommands(ctx context.Context, commands []outgunned.CommandDefinition) error {
	payload, err := json.Marshal(commands)
	if err != nil {
		return fmt.Errorf("marshalling commands : %w", err)
	}

	url := fmt.Sprintf("%s/applications/%s/commands", registrar.BaseURL, registrar.ApplicationID)

	backoff := retry.WithMaxRetries(5, retry.NewExponential(500*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("building request : %w", err)
		}
		req.Header.Set("Authorization", "Bot "+registrar.Token)
		req.Header.Set("Content-Type", "application/json")

		resp, err := registrar.Client.Do(req)
		if err != nil {
			return retry.RetryableError(fmt.Errorf("sending request : %w", err))
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			registrar.Logger.Warn("command registration throttled", "status", resp.StatusCode)
			return retry.RetryableError(fmt.Errorf("discord api status %d", resp.StatusCode))
		}
		if resp.StatusCode >= 400 {
			detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			return fmt.Errorf("discord api status %d : %s", resp.StatusCode, detail)
		}

		registrar.Logger.Info("registered commands", "count", len(commands))
		return nil
	})
	if err != nil {
		return fmt.Errorf("registering commands : %w", err)
	}
	return nil
}
