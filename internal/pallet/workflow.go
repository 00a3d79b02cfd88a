package pallet

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"palletscan/internal/i18n"
	"palletscan/internal/logging"

	"github.com/google/uuid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// DefaultRoute is the update route on the ERP.
	DefaultRoute = "/stock_barcode/update_pallet"
	// DefaultResultTTL is how long a successful result stays displayed.
	DefaultResultTTL = 5 * time.Second
)

// Option configures a Workflow.
type Option func(*Workflow)

// WithRoute overrides the update route.
func WithRoute(route string) Option {
	return func(w *Workflow) {
		if route != "" {
			w.route = route
		}
	}
}

// WithResultTTL overrides how long a successful result is kept.
func WithResultTTL(d time.Duration) Option {
	return func(w *Workflow) {
		if d > 0 {
			w.resultTTL = d
		}
	}
}

// WithRecorder journals every finished scan.
func WithRecorder(r Recorder) Option {
	return func(w *Workflow) { w.recorder = r }
}

// WithPrinter sets the printer used for operator-facing text.
func WithPrinter(p *message.Printer) Option {
	return func(w *Workflow) {
		if p != nil {
			w.printer = p
		}
	}
}

// Workflow drives scan → submit → reconcile for one package line.
//
// Every scan gets a token. The clear timer and late RPC replies only touch
// the workflow state when their token is still current, so an older scan
// never overwrites the state of a newer one. A late success still renames
// the line, since the server has applied it. Scans are not serialized: starting a scan while
// another is in flight is allowed and supersedes it.
type Workflow struct {
	line     Line
	caller   Caller
	notifier Notifier
	prompter Prompter
	recorder Recorder
	printer  *message.Printer

	route     string
	resultTTL time.Duration

	mu         sync.Mutex
	state      WorkflowState
	token      string
	clearTimer *time.Timer
	listeners  []func(WorkflowState)
}

// NewWorkflow creates a workflow bound to line.
func NewWorkflow(line Line, caller Caller, notifier Notifier, prompter Prompter, opts ...Option) *Workflow {
	w := &Workflow{
		line:      line,
		caller:    caller,
		notifier:  notifier,
		prompter:  prompter,
		printer:   message.NewPrinter(language.English),
		route:     DefaultRoute,
		resultTTL: DefaultResultTTL,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Line returns the bound package line.
func (w *Workflow) Line() Line { return w.line }

// State returns a snapshot of the current state.
func (w *Workflow) State() WorkflowState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

// OnChange registers a listener called after every state change.
// Listeners run on the goroutine that made the change.
func (w *Workflow) OnChange(fn func(WorkflowState)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listeners = append(w.listeners, fn)
}

func (w *Workflow) snapshotLocked() WorkflowState {
	s := w.state
	if s.Result != nil {
		r := *s.Result
		s.Result = &r
	}
	return s
}

// commitLocked bumps the revision and returns the snapshot plus listeners to
// notify once the lock is released.
func (w *Workflow) commitLocked() (WorkflowState, []func(WorkflowState)) {
	w.state.Revision++
	return w.snapshotLocked(), slices.Clone(w.listeners)
}

func emit(s WorkflowState, listeners []func(WorkflowState)) {
	for _, fn := range listeners {
		fn(s)
	}
}

func (w *Workflow) stopTimerLocked() {
	if w.clearTimer != nil {
		w.clearTimer.Stop()
		w.clearTimer = nil
	}
}

// begin starts a new scan generation and returns its token.
func (w *Workflow) begin(loading bool) string {
	w.mu.Lock()
	w.stopTimerLocked()
	w.token = uuid.NewString()
	token := w.token
	w.state.Loading = loading
	w.state.Result = nil
	s, ls := w.commitLocked()
	w.mu.Unlock()

	emit(s, ls)
	return token
}

// settle applies result if token is still current. It reports false for
// stale scans.
func (w *Workflow) settle(token string, result ScanResult) bool {
	w.mu.Lock()
	if token != w.token {
		w.mu.Unlock()
		return false
	}
	w.state.Loading = false
	w.state.Result = &result
	if result.Success {
		w.clearTimer = time.AfterFunc(w.resultTTL, func() { w.clear(token) })
	}
	s, ls := w.commitLocked()
	w.mu.Unlock()

	emit(s, ls)
	return true
}

// clear drops the displayed result unless a newer scan has started.
func (w *Workflow) clear(token string) {
	w.mu.Lock()
	if token != w.token || w.state.Result == nil {
		w.mu.Unlock()
		return
	}
	w.clearTimer = nil
	w.state.Result = nil
	s, ls := w.commitLocked()
	w.mu.Unlock()

	emit(s, ls)
}

// TriggerScan prompts for a pallet barcode and submits it against the bound
// line. A cancelled or empty prompt emits a warning and returns ErrNoBarcode
// without calling the server.
func (w *Workflow) TriggerScan(ctx context.Context) error {
	w.begin(false)

	barcode, err := w.prompter.PromptBarcode(ctx,
		w.printer.Sprintf(i18n.PromptTitle),
		w.printer.Sprintf(i18n.PromptPlaceholder))
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil || strings.TrimSpace(barcode) == "" {
		w.notifier.Notify(w.printer.Sprintf(i18n.NoBarcode), LevelWarning)
		logging.Scan("line %d: no barcode (prompt error: %v)", w.line.ContextID(), err)
		if err != nil {
			return errors.Join(ErrNoBarcode, err)
		}
		return ErrNoBarcode
	}

	_, err = w.SubmitPallet(ctx, barcode, w.line.ContextID())
	return err
}

// SubmitPallet sends barcode for contextID and reconciles the reply.
// The returned error is nil, *TransportError, *ApplicationError or
// ErrNoBarcode for an empty barcode.
func (w *Workflow) SubmitPallet(ctx context.Context, barcode string, contextID int64) (ScanResult, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		w.notifier.Notify(w.printer.Sprintf(i18n.NoBarcode), LevelWarning)
		return ScanResult{}, ErrNoBarcode
	}

	req := ScanRequest{
		Token:         w.begin(true),
		PalletBarcode: barcode,
		ContextID:     contextID,
	}
	log := logging.Get(logging.CategoryScan).With("token", req.Token, "res_id", contextID)
	log.Info("submitting pallet %q", barcode)

	started := time.Now()
	var reply updateReply
	callErr := w.caller.Call(ctx, w.route, req.Params(), &reply)
	result, scanErr := w.reconcile(reply, callErr)

	current := w.settle(req.Token, result)
	w.record(ctx, req, result, scanErr, !current, started)

	// A newer scan owns the workflow state, but a successful reply has still
	// been applied on the server and the line must reflect it.
	if !current && scanErr != nil {
		log.Warn("dropping stale failure: %v", scanErr)
		return result, scanErr
	}
	if !current {
		log.Info("stale scan succeeded, updating line only")
	}

	if scanErr != nil {
		log.Warn("scan failed: %v", scanErr)
		w.notifier.Notify(result.Message, LevelDanger)
		return result, scanErr
	}

	if result.PackageName != "" {
		w.line.SetDisplayName(result.PackageName)
		w.line.Refresh()
	}
	log.Info("scan succeeded: package=%q", result.PackageName)
	w.notifier.Notify(w.printer.Sprintf(i18n.ScanSucceeded), LevelSuccess)
	return result, nil
}

// reconcile turns a reply or call error into the result to display.
func (w *Workflow) reconcile(reply updateReply, callErr error) (ScanResult, error) {
	if callErr != nil {
		return ScanResult{
			Success: false,
			Message: w.printer.Sprintf(i18n.ScanFailed, callErr.Error()),
		}, &TransportError{Err: callErr}
	}

	result := reply.result()
	if !result.Success {
		reason := result.Message
		if reason == "" {
			reason = w.printer.Sprintf(i18n.UnknownError)
		}
		return ScanResult{
			Success: false,
			Message: w.printer.Sprintf(i18n.ScanFailed, reason),
		}, &ApplicationError{Message: reason}
	}

	if result.Message == "" {
		result.Message = w.printer.Sprintf(i18n.ScanSucceeded)
	}
	return result, nil
}

func (w *Workflow) record(ctx context.Context, req ScanRequest, result ScanResult, scanErr error, stale bool, started time.Time) {
	if w.recorder == nil {
		return
	}
	rec := Record{
		Token:         req.Token,
		PalletBarcode: req.PalletBarcode,
		ContextID:     req.ContextID,
		Success:       result.Success,
		Kind:          Kind(scanErr),
		Message:       result.Message,
		PackageName:   result.PackageName,
		Stale:         stale,
		StartedAt:     started,
		Duration:      time.Since(started),
	}
	// The scan already happened; a cancelled caller context must not lose it.
	if err := w.recorder.Record(context.WithoutCancel(ctx), rec); err != nil {
		logging.Get(logging.CategoryJournal).Error("failed to journal scan %s: %v", req.Token, err)
	}
}
