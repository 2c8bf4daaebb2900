package httpgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"marcenaria_mdf/internal/adapter/http/dto/response"
	"marcenaria_mdf/internal/domain/entities"
	"marcenaria_mdf/internal/domain/errs"
	"marcenaria_mdf/pkg"
)

const (
	defaultTimeout = 15 * time.Second
	maxBodySize    = 4 << 20
	userAgent      = "marcenaria-budgetctl/1.0"
)

var errNotLoggedIn = &errs.AuthError{Detail: "no session token, run login first"}

// Client talks to the /v1 API. Budgets and Customers expose it as repositories.
type Client struct {
	baseURL string
	session *Session
	http    *http.Client

	mu       sync.Mutex
	warnings []response.WarningResponse
}

// NewClient builds a client for baseURL (e.g. http://localhost:8080/v1).
// A zero timeout falls back to 15s.
func NewClient(baseURL string, session *Session, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		session: session,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Budgets() *BudgetRepository {
	return &BudgetRepository{c: c}
}

func (c *Client) Customers() *CustomerRepository {
	return &CustomerRepository{c: c}
}

// TakeWarnings returns the notification warnings reported by the server since
// the last call, and forgets them.
func (c *Client) TakeWarnings() []response.WarningResponse {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.warnings
	c.warnings = nil
	return out
}

func (c *Client) addWarnings(w []response.WarningResponse) {
	if len(w) == 0 {
		return
	}
	c.mu.Lock()
	c.warnings = append(c.warnings, w...)
	c.mu.Unlock()
}

// do sends one JSON request. 401 tears the session down; any other non-2xx
// becomes a *errs.PersistenceError carrying the server's detail.
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	token := ""
	if c.session != nil {
		token = c.session.Token()
	}
	if token == "" {
		return errNotLoggedIn
	}

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errs.Persistence(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		log.Printf("[gateway][http] request failed method=%s path=%s err=%v", method, path, err)
		return errs.Persistence(err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return errs.Persistence(fmt.Errorf("reading response: %w", err))
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		if c.session != nil {
			c.session.Invalidate()
		}
		return &errs.AuthError{Detail: errorDetail(resp.StatusCode, raw)}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		log.Printf("[gateway][http] non-2xx method=%s path=%s status=%d", method, path, resp.StatusCode)
		pe := &errs.PersistenceError{StatusCode: resp.StatusCode, Detail: errorDetail(resp.StatusCode, raw)}
		if resp.StatusCode == http.StatusConflict && errorCode(raw) == pkg.CodeBudgetConflict {
			pe.Err = entities.ErrStaleBudget
		}
		return pe
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errs.Persistence(fmt.Errorf("decoding response: %w", err))
	}
	return nil
}

// errorDetail prefers the "detail" field of an error body, then the raw text.
func errorDetail(status int, raw []byte) string {
	var he pkg.HTTPError
	if err := json.Unmarshal(raw, &he); err == nil && he.Detail != "" {
		return he.Detail
	}
	if s := strings.TrimSpace(string(raw)); s != "" {
		return s
	}
	return http.StatusText(status)
}

func errorCode(raw []byte) string {
	var he pkg.HTTPError
	if err := json.Unmarshal(raw, &he); err != nil {
		return ""
	}
	return he.Code
}

func isNotFound(err error) bool {
	var pe *errs.PersistenceError
	return errors.As(err, &pe) && pe.StatusCode == http.StatusNotFound
}
