package forecast

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/pandoralabs/stockline-backend/pkg/errors"
)

const requestBodyReadLimit int64 = 1024

// Client wraps the external forecast service. The numbers it returns
// are advisory only; nothing in the consumption engine depends on them.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient builds a forecast client for the given base URL.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "forecast base URL is required")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &Client{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: timeout},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// PredictRequest carries the component stats the forecast service scores.
type PredictRequest struct {
	ItemName     string           `json:"item_name"`
	CurrentStock int              `json:"current_stock"`
	MinRequired  int              `json:"min_required"`
	ScrapRate    decimal.Decimal  `json:"scrap_rate"`
	UnitCost     *decimal.Decimal `json:"cost,omitempty"`
	Day          int              `json:"day"`
	Month        int              `json:"month"`
	Week         int              `json:"week"`
}

// Prediction is the advisory payload returned by the forecast service.
type Prediction struct {
	Item     string  `json:"item"`
	Forecast float64 `json:"forecast"`
	Advice   string  `json:"friday_advice"`
	Engine   string  `json:"engine"`
}

// Predict posts component stats and returns the advisory forecast.
func (c *Client) Predict(ctx context.Context, req PredictRequest) (*Prediction, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "forecast client not configured")
	}
	if strings.TrimSpace(req.ItemName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item name is required")
	}

	now := time.Now()
	if req.Day == 0 {
		req.Day = now.Day()
	}
	if req.Month == 0 {
		req.Month = int(now.Month())
	}
	if req.Week == 0 {
		req.Week = (now.Day() + 6) / 7
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal predict request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build predict request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute predict request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, requestBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "predict request failed")
	}

	var prediction Prediction
	if err := json.NewDecoder(resp.Body).Decode(&prediction); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode predict response")
	}

	return &prediction, nil
}
