package odoo

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Session-level error codes returned by the ERP in the JSON-RPC error object.
const (
	CodeSessionExpired = 100
	CodeServerError    = 200
)

// ErrSessionExpired is matched by RPCErrors carrying CodeSessionExpired.
var ErrSessionExpired = errors.New("odoo session expired")

// ErrAccessDenied is returned when authentication is rejected.
var ErrAccessDenied = errors.New("access denied")

// rpcRequest is the JSON-RPC 2.0 envelope used by type='json' routes.
type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	ID      int64       `json:"id"`
	Params  interface{} `json:"params"`
}

// rpcResponse is the JSON-RPC 2.0 reply envelope.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is the error object of a failed JSON-RPC call.
type RPCError struct {
	Code    int       `json:"code"`
	Message string    `json:"message"`
	Data    ErrorData `json:"data"`
}

// ErrorData carries the server-side exception.
type ErrorData struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	Debug   string `json:"debug,omitempty"`
}

func (e *RPCError) Error() string {
	if e.Data.Message != "" {
		return e.Data.Message
	}
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("rpc error %d", e.Code)
}

// Is lets errors.Is(err, ErrSessionExpired) match expired-session replies.
func (e *RPCError) Is(target error) bool {
	return target == ErrSessionExpired && e.Code == CodeSessionExpired
}

// HTTPError is a non-2xx reply from the ERP web server.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("server returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned status %d: %s", e.StatusCode, e.Body)
}

// Session is the result of /web/session/authenticate.
type Session struct {
	UID      int64
	Name     string
	Database string
}

// BarcodeData is the subset of /stock_barcode/get_barcode_data used by the station.
type BarcodeData struct {
	Data struct {
		EnablePalletScanning bool `json:"enable_pallet_scanning"`
	} `json:"data"`
}
