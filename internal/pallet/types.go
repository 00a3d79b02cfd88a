// Package pallet implements the pallet scan workflow: prompt the operator for
// a pallet barcode, submit it against the active package destination, and
// reconcile the line and notification surface with the server's reply.
package pallet

import (
	"context"
	"time"
)

// Level is the severity of an operator notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelDanger  Level = "danger"
)

// Prompter acquires a barcode from the operator. It blocks until a value is
// supplied or the prompt is cancelled; cancellation returns "".
type Prompter interface {
	PromptBarcode(ctx context.Context, title, placeholder string) (string, error)
}

// Notifier shows a user-visible toast.
type Notifier interface {
	Notify(message string, level Level)
}

// Caller is the JSON-RPC transport.
type Caller interface {
	Call(ctx context.Context, route string, params, out interface{}) error
}

// Line is the package line a workflow is bound to.
type Line interface {
	ContextID() int64
	SetDisplayName(name string)
	Refresh()
}

// Recorder persists finished scans. Errors are logged, never surfaced.
type Recorder interface {
	Record(ctx context.Context, rec Record) error
}

// ScanRequest is one user-initiated submission.
type ScanRequest struct {
	Token         string
	PalletBarcode string
	ContextID     int64
}

// Params returns the RPC payload. res_id is the field the update controller
// reads; the older package_id spelling is not sent.
func (r ScanRequest) Params() map[string]interface{} {
	return map[string]interface{}{
		"pallet_barcode": r.PalletBarcode,
		"res_id":         r.ContextID,
	}
}

// ScanResult is the normalized server reply.
type ScanResult struct {
	Success     bool
	Message     string
	PackageName string
	PackageID   int64
}

// WorkflowState is what the UI renders for a line. Revision increases on
// every change so observers can drop out-of-order snapshots.
type WorkflowState struct {
	Loading  bool
	Result   *ScanResult
	Revision uint64
}

// Record is one journaled scan.
type Record struct {
	Token         string
	PalletBarcode string
	ContextID     int64
	Success       bool
	Kind          string
	Message       string
	PackageName   string
	Stale         bool
	StartedAt     time.Time
	Duration      time.Duration
}
