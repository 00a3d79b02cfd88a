package ui

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"palletscan/internal/i18n"
	"palletscan/internal/pallet"
	"palletscan/internal/station"
)

type cannedCaller struct {
	reply string
	err   error
}

func (c cannedCaller) Call(_ context.Context, _ string, _, out interface{}) error {
	if c.err != nil {
		return c.err
	}
	return json.Unmarshal([]byte(c.reply), out)
}

type fixture struct {
	st      *station.Station
	bridge  *Bridge
	handler *pallet.Handler
	model   Model
}

func newFixture(t *testing.T, caller pallet.Caller, lines ...string) *fixture {
	t.Helper()
	st := station.New()
	for i, name := range lines {
		_, err := st.AddLine(int64(i+1), name)
		require.NoError(t, err)
	}

	bridge := NewBridge()
	t.Cleanup(bridge.Close)
	bridge.WatchStation(st)

	handler := pallet.NewHandler(func(l pallet.Line) *pallet.Workflow {
		return pallet.NewWorkflow(l, caller, bridge, bridge)
	})
	handler.OnWorkflow(bridge.Watch)

	model := NewModel(Options{
		Station:  st,
		Bridge:   bridge,
		Printer:  i18n.Printer("en"),
		Styles:   NewStyles(LightTheme()),
		ToastTTL: time.Minute,
	})
	return &fixture{st: st, bridge: bridge, handler: handler, model: model}
}

func update(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// next pulls one bridge event, failing the test if none arrives.
func (f *fixture) next(t *testing.T) tea.Msg {
	t.Helper()
	select {
	case msg := <-f.bridge.Events():
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for bridge event")
		return nil
	}
}

// pump feeds bridge events to the model until done reports true.
func (f *fixture) pump(t *testing.T, done func(tea.Msg) bool) {
	t.Helper()
	for {
		msg := f.next(t)
		f.model = update(f.model, msg)
		if done(msg) {
			return
		}
	}
}

// scan runs the command the model returned for the scan key in the
// background, like the bubbletea runtime would.
func (f *fixture) scan(t *testing.T) <-chan tea.Msg {
	t.Helper()
	next, cmd := f.model.Update(key("s"))
	f.model = next.(Model)
	require.NotNil(t, cmd)
	out := make(chan tea.Msg, 1)
	go func() { out <- cmd() }()
	return out
}

func TestView_ListsLines(t *testing.T) {
	f := newFixture(t, cannedCaller{}, "PACK-1", "PACK-2")

	view := f.model.View()
	assert.Contains(t, view, "Pallet scanning station")
	assert.Contains(t, view, "PACK-1")
	assert.Contains(t, view, "PACK-2")
	assert.Equal(t, 2, strings.Count(view, "Scan Pallet"))
}

func TestView_NoLines(t *testing.T) {
	f := newFixture(t, cannedCaller{})
	assert.Contains(t, f.model.View(), "No package lines")
}

func TestCursorMovement(t *testing.T) {
	f := newFixture(t, cannedCaller{}, "A", "B")

	m := update(f.model, key("down"))
	assert.Equal(t, int64(2), m.selectedLine().ID())
	m = update(m, key("down"))
	assert.Equal(t, int64(2), m.selectedLine().ID())
	m = update(m, key("k"))
	assert.Equal(t, int64(1), m.selectedLine().ID())
	m = update(m, key("up"))
	assert.Equal(t, int64(1), m.selectedLine().ID())
}

func TestScan_NotReadyShowsWarning(t *testing.T) {
	f := newFixture(t, cannedCaller{}, "PACK-1")

	done := f.scan(t)
	f.model = update(f.model, <-done)

	assert.Contains(t, f.model.View(), "Scanning station is not ready yet.")
}

func TestScan_DisabledLine(t *testing.T) {
	f := newFixture(t, cannedCaller{}, "PACK-1")
	line, _ := f.st.Line(1)
	line.SetScanEnabled(false)

	assert.NotContains(t, f.model.View(), "Scan Pallet")

	next, cmd := f.model.Update(key("s"))
	f.model = next.(Model)
	require.NotNil(t, cmd, "toast expiry tick")
	assert.Contains(t, f.model.View(), "Pallet scanning is disabled for this line.")
}

func TestScan_EndToEndSuccess(t *testing.T) {
	f := newFixture(t, cannedCaller{reply: `{"success": true, "package_name": "PACK-99"}`}, "PACK-1")
	f.st.Register(f.handler)
	f.st.MarkReady()
	f.model = update(f.model, readyMsg{})

	done := f.scan(t)

	f.pump(t, func(msg tea.Msg) bool { _, ok := msg.(promptRequestMsg); return ok })
	require.True(t, f.model.Prompting())
	assert.Contains(t, f.model.View(), "Pallet Scan")

	f.model = update(f.model, key("PAL-001"))
	f.model = update(f.model, key("enter"))
	assert.False(t, f.model.Prompting())

	f.pump(t, func(msg tea.Msg) bool { _, ok := msg.(toastMsg); return ok })
	f.model = update(f.model, <-done)

	view := f.model.View()
	assert.Contains(t, view, "PACK-99")
	assert.Contains(t, view, "(PACK-1)")
	assert.Contains(t, view, "Pallet barcode scanned successfully.")

	line, _ := f.st.Line(1)
	assert.Equal(t, "PACK-99", line.DisplayName())
}

func TestScan_EscapeCancelsPrompt(t *testing.T) {
	f := newFixture(t, cannedCaller{}, "PACK-1")
	f.st.Register(f.handler)
	f.st.MarkReady()

	done := f.scan(t)
	f.pump(t, func(msg tea.Msg) bool { _, ok := msg.(promptRequestMsg); return ok })

	f.model = update(f.model, key("esc"))
	f.pump(t, func(msg tea.Msg) bool { _, ok := msg.(toastMsg); return ok })

	result := (<-done).(scanDoneMsg)
	assert.ErrorIs(t, result.err, pallet.ErrNoBarcode)
	assert.ErrorIs(t, result.err, ErrPromptCancelled)

	f.model = update(f.model, result)
	assert.Contains(t, f.model.View(), "No barcode detected.")
}

func TestScan_FailureShowsDanger(t *testing.T) {
	f := newFixture(t, cannedCaller{err: errors.New("connection refused")}, "PACK-1")
	f.st.Register(f.handler)
	f.st.MarkReady()

	done := f.scan(t)
	f.pump(t, func(msg tea.Msg) bool { _, ok := msg.(promptRequestMsg); return ok })
	f.model = update(f.model, key("PAL-1"))
	f.model = update(f.model, key("enter"))
	f.pump(t, func(msg tea.Msg) bool { _, ok := msg.(toastMsg); return ok })
	f.model = update(f.model, <-done)

	assert.Contains(t, f.model.View(), "Pallet scan failed: connection refused")
}

func TestStateMsg_IgnoresOlderRevision(t *testing.T) {
	f := newFixture(t, cannedCaller{}, "PACK-1")

	m := update(f.model, stateMsg{lineID: 1, state: pallet.WorkflowState{Revision: 5, Result: &pallet.ScanResult{Success: true, Message: "new"}}})
	m = update(m, stateMsg{lineID: 1, state: pallet.WorkflowState{Revision: 3, Loading: true}})

	assert.Equal(t, uint64(5), m.states[1].Revision)
	assert.Contains(t, m.View(), "new")
}

func TestToastExpiry(t *testing.T) {
	f := newFixture(t, cannedCaller{}, "PACK-1")

	m := update(f.model, toastMsg{text: "hello", level: pallet.LevelSuccess})
	require.Len(t, m.toasts, 1)
	m = update(m, expireToastMsg{id: m.toasts[0].id})
	assert.Empty(t, m.toasts)
}

func TestToastsAreCapped(t *testing.T) {
	f := newFixture(t, cannedCaller{}, "PACK-1")

	m := f.model
	for _, text := range []string{"a", "b", "c", "d"} {
		m = update(m, toastMsg{text: text, level: pallet.LevelWarning})
	}
	require.Len(t, m.toasts, maxToasts)
	assert.Equal(t, "b", m.toasts[0].text)
}

func TestHelpToggle(t *testing.T) {
	f := newFixture(t, cannedCaller{}, "PACK-1")

	m := update(f.model, tea.WindowSizeMsg{Width: 80, Height: 24})
	m = update(m, key("?"))
	assert.True(t, m.showHelp)
	assert.NotContains(t, m.View(), "PACK-1")

	m = update(m, key("?"))
	assert.False(t, m.showHelp)
	assert.Contains(t, m.View(), "PACK-1")
}

func TestQuit(t *testing.T) {
	f := newFixture(t, cannedCaller{}, "PACK-1")
	_, cmd := f.model.Update(key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
