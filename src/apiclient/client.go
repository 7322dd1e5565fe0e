// Package apiclient talks to the finance REST backend, the resource of record.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/username/finapp/finsync/src/logger"
	"github.com/username/finapp/finsync/src/models"
	"golang.org/x/oauth2"
)

const (
	// APIPrefix is the versioned prefix of every resource endpoint.
	APIPrefix = "/api/v1"
	// DefaultTimeout matches the request timeout of the mobile clients.
	DefaultTimeout = 30 * time.Second

	maxErrorBodyBytes = 64 << 10
)

// Options configures a Client.
type Options struct {
	// AccessToken, when set, is sent as a bearer token on every request.
	AccessToken string
	// Timeout bounds each request. Zero means DefaultTimeout.
	Timeout time.Duration
	// HTTPClient overrides the underlying client (tests). AccessToken is ignored when set.
	HTTPClient *http.Client
}

// Client manages all endpoints of the finance API. It holds no state besides its configuration
// and never retries; callers decide what to do with a failure.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
}

// TransactionFilter narrows ListTransactions. Zero fields are not sent.
type TransactionFilter struct {
	UserID    int64
	AccountID int64
}

// New creates a Client for the backend at baseURL, for example "http://localhost:8000".
func New(baseURL string, opts Options) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid API base URL %q: scheme must be http or https", baseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
		if opts.AccessToken != "" {
			src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.AccessToken, TokenType: "Bearer"})
			httpClient.Transport = &oauth2.Transport{Source: src, Base: http.DefaultTransport}
		}
	}

	return &Client{httpClient: httpClient, baseURL: u}, nil
}

// BaseURL returns the backend base URL the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// ListAccounts returns the accounts of a user.
func (c *Client) ListAccounts(ctx context.Context, userID int64) ([]models.Account, error) {
	return listFor[models.Account](ctx, c, "/accounts", userID)
}

// CreateAccount creates an account and returns it as stored by the server.
func (c *Client) CreateAccount(ctx context.Context, in models.AccountCreate) (*models.Account, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("invalid account: %w", err)
	}
	body, endpoint, err := c.do(ctx, http.MethodPost, APIPrefix+"/accounts", nil, in)
	if err != nil {
		return nil, err
	}
	created, err := decodeOne[models.Account](body)
	if err != nil {
		return nil, &DecodeError{URL: endpoint, Err: err}
	}
	return &created, nil
}

// ListTransactions returns transactions matching the filter.
func (c *Client) ListTransactions(ctx context.Context, filter TransactionFilter) ([]models.Transaction, error) {
	q := url.Values{}
	if filter.UserID > 0 {
		q.Set("user_id", strconv.FormatInt(filter.UserID, 10))
	}
	if filter.AccountID > 0 {
		q.Set("account_id", strconv.FormatInt(filter.AccountID, 10))
	}
	body, endpoint, err := c.do(ctx, http.MethodGet, APIPrefix+"/transactions", q, nil)
	if err != nil {
		return nil, err
	}
	items, err := decodeList[models.Transaction](body)
	if err != nil {
		return nil, &DecodeError{URL: endpoint, Err: err}
	}
	return items, nil
}

// CreateTransaction records a transaction and returns it as stored by the server.
func (c *Client) CreateTransaction(ctx context.Context, in models.TransactionCreate) (*models.Transaction, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("invalid transaction: %w", err)
	}
	body, endpoint, err := c.do(ctx, http.MethodPost, APIPrefix+"/transactions", nil, in)
	if err != nil {
		return nil, err
	}
	created, err := decodeOne[models.Transaction](body)
	if err != nil {
		return nil, &DecodeError{URL: endpoint, Err: err}
	}
	return &created, nil
}

// ListInvestments returns the holdings of a user.
func (c *Client) ListInvestments(ctx context.Context, userID int64) ([]models.Investment, error) {
	return listFor[models.Investment](ctx, c, "/investments", userID)
}

// ListPayroll returns the pay stubs of a user.
func (c *Client) ListPayroll(ctx context.Context, userID int64) ([]models.PayrollRecord, error) {
	return listFor[models.PayrollRecord](ctx, c, "/payroll", userID)
}

// ListRetirementAccounts returns the retirement accounts of a user.
func (c *Client) ListRetirementAccounts(ctx context.Context, userID int64) ([]models.RetirementAccount, error) {
	return listFor[models.RetirementAccount](ctx, c, "/retirement", userID)
}

// ListTaxRecords returns the tax records of a user.
func (c *Client) ListTaxRecords(ctx context.Context, userID int64) ([]models.TaxRecord, error) {
	return listFor[models.TaxRecord](ctx, c, "/taxes", userID)
}

// GetDashboardStats returns the server-computed dashboard aggregates.
func (c *Client) GetDashboardStats(ctx context.Context, userID int64) (*models.DashboardStats, error) {
	body, endpoint, err := c.do(ctx, http.MethodGet, APIPrefix+"/dashboard/stats", userQuery(userID), nil)
	if err != nil {
		return nil, err
	}
	stats, err := decodeOne[models.DashboardStats](body)
	if err != nil {
		return nil, &DecodeError{URL: endpoint, Err: err}
	}
	return &stats, nil
}

// CheckHealth probes GET /health. Only a 200 counts as healthy; the body is ignored.
func (c *Client) CheckHealth(ctx context.Context) error {
	endpoint := c.endpoint("/health", nil)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Method: http.MethodGet, URL: endpoint, Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBodyBytes))

	if resp.StatusCode != http.StatusOK {
		return &ServerError{Method: http.MethodGet, URL: endpoint, StatusCode: resp.StatusCode}
	}
	return nil
}

func listFor[T validatable](ctx context.Context, c *Client, path string, userID int64) ([]T, error) {
	body, endpoint, err := c.do(ctx, http.MethodGet, APIPrefix+path, userQuery(userID), nil)
	if err != nil {
		return nil, err
	}
	items, err := decodeList[T](body)
	if err != nil {
		return nil, &DecodeError{URL: endpoint, Err: err}
	}
	return items, nil
}

func userQuery(userID int64) url.Values {
	q := url.Values{}
	if userID > 0 {
		q.Set("user_id", strconv.FormatInt(userID, 10))
	}
	return q
}

func (c *Client) endpoint(path string, q url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	u.RawQuery = ""
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// do sends one request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, method, path string, q url.Values, payload any) ([]byte, string, error) {
	endpoint := c.endpoint(path, q)

	var reqBody io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, endpoint, fmt.Errorf("error marshaling request body: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, endpoint, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, endpoint, &TransportError{Method: method, URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	logger.FromContext(ctx).Debug("API request completed",
		"method", method, "url", endpoint, "status", resp.StatusCode, "duration", time.Since(start).String())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, endpoint, &ServerError{Method: method, URL: endpoint, StatusCode: resp.StatusCode, Detail: errorDetail(raw)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, endpoint, &TransportError{Method: method, URL: endpoint, Err: fmt.Errorf("error reading response body: %w", err)}
	}
	return body, endpoint, nil
}

// errorDetail extracts the message of a FastAPI style {"detail": ...} body.
func errorDetail(raw []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || len(body.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(body.Detail, &s); err == nil {
		return s
	}
	// Validation errors carry a list of objects.
	return string(body.Detail)
}
