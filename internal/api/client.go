// Package api implements the REST contract of the finance backend consumed
// by the sync engine. Each engine package declares its own narrow interface;
// this client satisfies all of them.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/momentfin/ledgersync/internal/domain"
	"github.com/momentfin/ledgersync/internal/logging"
)

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// RemoteError is a request the server answered but rejected. The raw server
// message is kept for pattern-matching into friendlier errors.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote rejection (%d): %s", e.Status, e.Message)
}

func (e *RemoteError) Unwrap() error { return domain.ErrRemoteRejected }

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	log := logging.FromContext(ctx)

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("do: marshal: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("do: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do: send: %w", err)
	}
	defer resp.Body.Close()

	log.Debug("api response",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	var env envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&env); err != nil {
		return fmt.Errorf("do: decode: %w", err)
	}
	if resp.StatusCode >= 400 || !env.Success {
		return fmt.Errorf("do: %w", &RemoteError{Status: resp.StatusCode, Message: env.Message})
	}
	if out != nil && env.Data != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("do: decode data: %w", err)
		}
	}
	return nil
}

func (c *Client) CreateTransaction(ctx context.Context, data TransactionData) (*domain.Transaction, error) {
	var w transactionWire
	if err := c.do(ctx, http.MethodPost, "/transactions", data, &w); err != nil {
		return nil, fmt.Errorf("CreateTransaction: %w", err)
	}
	tx, err := w.toDomain()
	if err != nil {
		return nil, fmt.Errorf("CreateTransaction: %w", err)
	}
	return tx, nil
}

func (c *Client) UpdateTransaction(ctx context.Context, id uuid.UUID, partial map[string]any) (*domain.Transaction, error) {
	var w transactionWire
	if err := c.do(ctx, http.MethodPatch, "/transactions/"+id.String(), partial, &w); err != nil {
		return nil, fmt.Errorf("UpdateTransaction: %w", err)
	}
	tx, err := w.toDomain()
	if err != nil {
		return nil, fmt.Errorf("UpdateTransaction: %w", err)
	}
	return tx, nil
}

// DeleteTransaction soft-deletes; the record survives server-side.
func (c *Client) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	if err := c.do(ctx, http.MethodDelete, "/transactions/"+id.String(), nil, nil); err != nil {
		return fmt.Errorf("DeleteTransaction: %w", err)
	}
	return nil
}

func (c *Client) RestoreTransaction(ctx context.Context, id uuid.UUID) error {
	if err := c.do(ctx, http.MethodPost, "/transactions/"+id.String()+"/restore", nil, nil); err != nil {
		return fmt.Errorf("RestoreTransaction: %w", err)
	}
	return nil
}

func (c *Client) PermanentDeleteTransaction(ctx context.Context, id uuid.UUID) error {
	if err := c.do(ctx, http.MethodDelete, "/transactions/"+id.String()+"/permanent", nil, nil); err != nil {
		return fmt.Errorf("PermanentDeleteTransaction: %w", err)
	}
	return nil
}

func (c *Client) GetTransactions(ctx context.Context, filters TransactionFilters) ([]*domain.Transaction, error) {
	q := url.Values{}
	if filters.AssetID != nil {
		q.Set("asset_id", filters.AssetID.String())
	}
	if filters.From != nil {
		q.Set("from", filters.From.Format(dateLayout))
	}
	if filters.To != nil {
		q.Set("to", filters.To.Format(dateLayout))
	}
	if filters.IncludeDeleted {
		q.Set("include_deleted", "true")
	}
	path := "/transactions"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var wires []transactionWire
	if err := c.do(ctx, http.MethodGet, path, nil, &wires); err != nil {
		return nil, fmt.Errorf("GetTransactions: %w", err)
	}
	out := make([]*domain.Transaction, 0, len(wires))
	for _, w := range wires {
		tx, err := w.toDomain()
		if err != nil {
			return nil, fmt.Errorf("GetTransactions: %w", err)
		}
		out = append(out, tx)
	}
	return out, nil
}

func (c *Client) GetAssets(ctx context.Context) ([]*domain.Asset, error) {
	var wires []assetWire
	if err := c.do(ctx, http.MethodGet, "/assets", nil, &wires); err != nil {
		return nil, fmt.Errorf("GetAssets: %w", err)
	}
	out := make([]*domain.Asset, 0, len(wires))
	for _, w := range wires {
		out = append(out, w.toDomain())
	}
	return out, nil
}

func (c *Client) CreateAsset(ctx context.Context, data AssetData) (*domain.Asset, error) {
	var w assetWire
	if err := c.do(ctx, http.MethodPost, "/assets", data, &w); err != nil {
		return nil, fmt.Errorf("CreateAsset: %w", friendlyAssetError(err))
	}
	return w.toDomain(), nil
}

func (c *Client) UpdateAsset(ctx context.Context, id uuid.UUID, data AssetData) (*domain.Asset, error) {
	var w assetWire
	if err := c.do(ctx, http.MethodPut, "/assets/"+id.String(), data, &w); err != nil {
		return nil, fmt.Errorf("UpdateAsset: %w", friendlyAssetError(err))
	}
	return w.toDomain(), nil
}

// UpdateAssetBalance is the narrow single-field write used by the fallback
// recovery path. It bypasses the full asset validation of UpdateAsset.
func (c *Client) UpdateAssetBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	body := map[string]decimal.Decimal{"balance": balance}
	if err := c.do(ctx, http.MethodPatch, "/assets/"+id.String()+"/balance", body, nil); err != nil {
		return fmt.Errorf("UpdateAssetBalance: %w", err)
	}
	return nil
}

func (c *Client) CreateAssetTransfer(ctx context.Context, data TransferData) (*domain.AssetTransfer, error) {
	var w transferWire
	if err := c.do(ctx, http.MethodPost, "/transfers", data, &w); err != nil {
		return nil, fmt.Errorf("CreateAssetTransfer: %w", err)
	}
	tr, err := w.toDomain()
	if err != nil {
		return nil, fmt.Errorf("CreateAssetTransfer: %w", err)
	}
	return tr, nil
}

func (c *Client) GetAssetTransfers(ctx context.Context) ([]*domain.AssetTransfer, error) {
	var wires []transferWire
	if err := c.do(ctx, http.MethodGet, "/transfers", nil, &wires); err != nil {
		return nil, fmt.Errorf("GetAssetTransfers: %w", err)
	}
	out := make([]*domain.AssetTransfer, 0, len(wires))
	for _, w := range wires {
		tr, err := w.toDomain()
		if err != nil {
			return nil, fmt.Errorf("GetAssetTransfers: %w", err)
		}
		out = append(out, tr)
	}
	return out, nil
}

func (c *Client) GetUserCurrencyPreference(ctx context.Context, userID string) (string, error) {
	var out struct {
		Currency string `json:"currency"`
	}
	if err := c.do(ctx, http.MethodGet, "/preferences/currency?user="+url.QueryEscape(userID), nil, &out); err != nil {
		return "", fmt.Errorf("GetUserCurrencyPreference: %w", err)
	}
	return out.Currency, nil
}

// SaveUserCurrencyPreference persists the preference server-side. The server
// broadcasts the new value to the user's other sessions over the push
// channel as a side effect; the client never broadcasts it itself.
func (c *Client) SaveUserCurrencyPreference(ctx context.Context, code, userID string) error {
	body := map[string]string{"currency": code, "user": userID}
	if err := c.do(ctx, http.MethodPut, "/preferences/currency", body, nil); err != nil {
		return fmt.Errorf("SaveUserCurrencyPreference: %w", err)
	}
	return nil
}

// friendlyAssetError maps known server rejection messages onto sentinel
// errors with user-presentable text.
func friendlyAssetError(err error) error {
	var re *RemoteError
	if !errors.As(err, &re) {
		return err
	}
	msg := strings.ToLower(re.Message)
	if strings.Contains(msg, "already exists") || strings.Contains(msg, "duplicate") {
		return domain.ErrAssetNameTaken
	}
	return err
}
