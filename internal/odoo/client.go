// Package odoo implements the ERP's JSON-RPC transport over HTTP.
package odoo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"palletscan/internal/logging"

	"golang.org/x/net/publicsuffix"
)

const (
	authenticateRoute = "/web/session/authenticate"
	barcodeDataRoute  = "/stock_barcode/get_barcode_data"

	// PackageDestinationModel is the record type pallet scans are applied to.
	PackageDestinationModel = "stock.package.destination"

	maxErrorBody = 512
)

// Client calls type='json' routes on the ERP web server.
// The session cookie set by Authenticate is reused on every call.
type Client struct {
	baseURL string
	client  *http.Client
	nextID  atomic.Int64

	mu      sync.RWMutex
	session *Session
}

// NewClient creates a JSON-RPC client for the ERP at baseURL.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
	}, nil
}

// BaseURL returns the server root.
func (c *Client) BaseURL() string { return c.baseURL }

// Call posts params to route and decodes the JSON-RPC result into out.
// out may be nil to discard the result.
func (c *Client) Call(ctx context.Context, route string, params, out interface{}) error {
	if params == nil {
		params = map[string]interface{}{}
	}
	req := rpcRequest{
		JSONRPC: "2.0",
		Method:  "call",
		ID:      c.nextID.Add(1),
		Params:  params,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+route, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		logging.Get(logging.CategoryRPC).Warn("POST %s failed after %s: %v", route, time.Since(start), err)
		return fmt.Errorf("request failed: %w", err)
	}
	defer httpResp.Body.Close()

	logging.RPCDebug("POST %s -> %d in %s", route, httpResp.StatusCode, time.Since(start))

	if httpResp.StatusCode >= 400 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(httpResp.Body, maxErrorBody))
		return &HTTPError{StatusCode: httpResp.StatusCode, Body: strings.TrimSpace(string(bodyBytes))}
	}

	var resp rpcResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if resp.Error != nil {
		logging.Get(logging.CategoryRPC).Warn("POST %s returned rpc error %d: %s", route, resp.Error.Code, resp.Error.Error())
		return resp.Error
	}

	if out == nil || len(resp.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return fmt.Errorf("failed to parse result: %w", err)
	}
	return nil
}

// Authenticate opens a web session. The session cookie is kept in the
// client's jar for subsequent calls.
func (c *Client) Authenticate(ctx context.Context, db, login, password string) (*Session, error) {
	var result struct {
		UID  json.RawMessage `json:"uid"`
		Name string          `json:"name"`
		DB   string          `json:"db"`
	}
	params := map[string]interface{}{
		"db":       db,
		"login":    login,
		"password": password,
	}
	if err := c.Call(ctx, authenticateRoute, params, &result); err != nil {
		return nil, fmt.Errorf("failed to authenticate %s@%s: %w", login, db, err)
	}

	var uid int64
	if err := json.Unmarshal(result.UID, &uid); err != nil || uid <= 0 {
		// uid is false on bad credentials
		return nil, fmt.Errorf("failed to authenticate %s@%s: %w", login, db, ErrAccessDenied)
	}

	session := &Session{UID: uid, Name: result.Name, Database: db}
	if session.Database == "" {
		session.Database = result.DB
	}

	c.mu.Lock()
	c.session = session
	c.mu.Unlock()

	logging.RPC("authenticated as %s (uid=%d) on %s", login, uid, db)
	return session, nil
}

// Session returns the current session, or nil before Authenticate.
func (c *Client) Session() *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return nil
	}
	s := *c.session
	return &s
}

// PalletScanningEnabled asks the barcode controller whether the picking type
// behind a package destination record has pallet scanning turned on.
func (c *Client) PalletScanningEnabled(ctx context.Context, resID int64) (bool, error) {
	var data BarcodeData
	params := map[string]interface{}{
		"model":  PackageDestinationModel,
		"res_id": resID,
	}
	if err := c.Call(ctx, barcodeDataRoute, params, &data); err != nil {
		return false, fmt.Errorf("failed to load barcode data for %d: %w", resID, err)
	}
	return data.Data.EnablePalletScanning, nil
}
