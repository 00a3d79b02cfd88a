package ui

import (
	"context"
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"palletscan/internal/pallet"
	"palletscan/internal/station"
)

// ErrPromptCancelled is returned when the operator dismisses the prompt.
var ErrPromptCancelled = errors.New("barcode prompt cancelled")

// ErrClosed is returned once the bridge has shut down.
var ErrClosed = errors.New("station ui closed")

// Messages delivered to the station model.
type (
	promptRequestMsg struct {
		title       string
		placeholder string
		reply       chan<- promptReply
	}
	promptReply struct {
		value     string
		cancelled bool
	}
	toastMsg struct {
		text  string
		level pallet.Level
	}
	stateMsg struct {
		lineID int64
		state  pallet.WorkflowState
	}
	renderMsg struct {
		lineID int64
	}
)

// Bridge connects workflow goroutines to the bubbletea loop. It implements
// pallet.Prompter and pallet.Notifier: both turn into messages on Events.
type Bridge struct {
	events    chan tea.Msg
	done      chan struct{}
	closeOnce sync.Once
}

// NewBridge creates a bridge with a small event buffer.
func NewBridge() *Bridge {
	return &Bridge{
		events: make(chan tea.Msg, 32),
		done:   make(chan struct{}),
	}
}

// Events is the stream the model listens to.
func (b *Bridge) Events() <-chan tea.Msg { return b.events }

// Send delivers msg to the model, dropping it after Close.
func (b *Bridge) Send(msg tea.Msg) {
	select {
	case b.events <- msg:
	case <-b.done:
	}
}

// Close unblocks every pending prompt and send.
func (b *Bridge) Close() {
	b.closeOnce.Do(func() { close(b.done) })
}

// PromptBarcode asks the model to show the barcode prompt and waits for the
// operator to confirm or dismiss it.
func (b *Bridge) PromptBarcode(ctx context.Context, title, placeholder string) (string, error) {
	reply := make(chan promptReply, 1)
	select {
	case b.events <- promptRequestMsg{title: title, placeholder: placeholder, reply: reply}:
	case <-ctx.Done():
		return "", ctx.Err()
	case <-b.done:
		return "", ErrClosed
	}

	select {
	case r := <-reply:
		if r.cancelled {
			return "", ErrPromptCancelled
		}
		return r.value, nil
	case <-ctx.Done():
		return "", ctx.Err()
	case <-b.done:
		return "", ErrClosed
	}
}

// Notify shows a toast.
func (b *Bridge) Notify(message string, level pallet.Level) {
	b.Send(toastMsg{text: message, level: level})
}

// Watch forwards every state change of w to the model.
func (b *Bridge) Watch(w *pallet.Workflow) {
	id := w.Line().ContextID()
	w.OnChange(func(s pallet.WorkflowState) {
		b.Send(stateMsg{lineID: id, state: s})
	})
}

// WatchStation forwards line re-render requests to the model.
func (b *Bridge) WatchStation(st *station.Station) {
	st.OnRender(func(l *station.PackageLine) {
		b.Send(renderMsg{lineID: l.ID()})
	})
}

// listen waits for the next bridge event.
func listen(events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-events
	}
}

var (
	_ pallet.Prompter = (*Bridge)(nil)
	_ pallet.Notifier = (*Bridge)(nil)
)
