package authority

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/iho/gosettle/internal/domain"
)

const defaultTimeout = 10 * time.Second

// Client submits intent creation requests to the external settlement
// authority over HTTP. The authority rejects duplicate instruction ids with
// 409, which the client treats as success: the intent is already registered
// there, which is all the caller needs.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	maxElapsed time.Duration
}

// Config configures the authority client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	MaxElapsed time.Duration // total budget across retries
	Logger     *slog.Logger
}

// NewClient creates a new authority client.
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxElapsed == 0 {
		cfg.MaxElapsed = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     cfg.Logger,
		maxElapsed: cfg.MaxElapsed,
	}
}

type submitRequest struct {
	InstructionID string `json:"instruction_id"`
	Payer         string `json:"payer"`
	Payee         string `json:"payee"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	ValueDate     string `json:"value_date"`
}

// SubmitIntent registers the intent with the authority, retrying transient
// failures with exponential backoff.
func (c *Client) SubmitIntent(ctx context.Context, intent *domain.SettlementIntent) error {
	body, err := json.Marshal(submitRequest{
		InstructionID: intent.InstructionID,
		Payer:         intent.Payer,
		Payee:         intent.Payee,
		Amount:        intent.Amount.String(),
		Currency:      intent.Currency,
		ValueDate:     intent.ValueDate.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = c.maxElapsed

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := c.post(ctx, body)
		if err == nil {
			return nil
		}

		var transient *transientError
		if !errors.As(err, &transient) {
			return backoff.Permanent(err)
		}

		c.logger.Warn("authority submit failed, retrying",
			slog.String("instruction_id", intent.InstructionID),
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()))
		return err
	}, backoff.WithContext(b, ctx))
}

func (c *Client) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/intents", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &transientError{err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusConflict:
		// Duplicate instruction id: already registered.
		return nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 500:
		return &transientError{err: fmt.Errorf("authority returned %d", resp.StatusCode)}
	default:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("authority rejected intent: %d %s", resp.StatusCode, msg)
	}
}

type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }
