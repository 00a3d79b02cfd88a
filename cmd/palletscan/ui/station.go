package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"palletscan/internal/i18n"
	"palletscan/internal/logging"
	"palletscan/internal/pallet"
	"palletscan/internal/station"
)

// DefaultToastTTL is how long a toast stays on screen.
const DefaultToastTTL = 4 * time.Second

const maxToasts = 3

type (
	scanDoneMsg struct {
		lineID int64
		err    error
	}
	readyMsg       struct{}
	expireToastMsg struct{ id int }
)

type toast struct {
	id    int
	text  string
	level pallet.Level
}

// Options configures the station model.
type Options struct {
	Station  *station.Station
	Bridge   *Bridge
	Printer  *message.Printer
	Styles   Styles
	Context  context.Context
	ToastTTL time.Duration
}

// Model is the bubbletea model of the scanning station: the package lines,
// their Scan Pallet controls, the barcode prompt and the toasts.
type Model struct {
	station *station.Station
	bridge  *Bridge
	printer *message.Printer
	styles  Styles
	ctx     context.Context

	spinner spinner.Model
	input   textinput.Model

	cursor   int
	states   map[int64]pallet.WorkflowState
	prompt   *promptRequestMsg
	toasts   []toast
	toastSeq int
	toastTTL time.Duration
	ready    bool
	showHelp bool
	help     string
	width    int
	height   int
}

// NewModel creates the station model.
func NewModel(o Options) Model {
	if o.Printer == nil {
		o.Printer = message.NewPrinter(language.English)
	}
	if o.Context == nil {
		o.Context = context.Background()
	}
	if o.ToastTTL <= 0 {
		o.ToastTTL = DefaultToastTTL
	}
	if o.Styles.Theme == (Theme{}) {
		o.Styles = DefaultStyles()
	}

	ti := textinput.New()
	ti.Prompt = "│ "
	ti.CharLimit = 128
	ti.Width = 40
	ti.PromptStyle = o.Styles.Prompt
	ti.TextStyle = o.Styles.Input

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = o.Styles.Spinner

	return Model{
		station:  o.Station,
		bridge:   o.Bridge,
		printer:  o.Printer,
		styles:   o.Styles,
		ctx:      o.Context,
		spinner:  sp,
		input:    ti,
		states:   make(map[int64]pallet.WorkflowState),
		toastTTL: o.ToastTTL,
		ready:    o.Station.IsReady(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		listen(m.bridge.Events()),
		waitReady(m.ctx, m.station),
	)
}

func waitReady(ctx context.Context, st *station.Station) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-st.Ready():
			return readyMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.prompt != nil {
			return m.handlePromptKey(msg)
		}
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-12, 20)
		if m.showHelp {
			m.help = renderHelp(m.width, m.styles.Theme.IsDark)
		}
		return m, nil

	case promptRequestMsg:
		if m.prompt != nil {
			m.prompt.reply <- promptReply{cancelled: true}
		}
		m.prompt = &msg
		m.input.Reset()
		m.input.Placeholder = msg.placeholder
		focus := m.input.Focus()
		return m, tea.Batch(focus, textinput.Blink, listen(m.bridge.Events()))

	case toastMsg:
		next, cmd := m.addToast(msg.text, msg.level)
		return next, tea.Batch(cmd, listen(next.bridge.Events()))

	case stateMsg:
		if prev, ok := m.states[msg.lineID]; !ok || msg.state.Revision > prev.Revision {
			m.states[msg.lineID] = msg.state
		}
		cmds := []tea.Cmd{listen(m.bridge.Events())}
		if msg.state.Loading {
			cmds = append(cmds, m.spinner.Tick)
		}
		return m, tea.Batch(cmds...)

	case renderMsg:
		logging.UI("line %d re-rendered", msg.lineID)
		return m, listen(m.bridge.Events())

	case scanDoneMsg:
		return m.handleScanDone(msg)

	case readyMsg:
		m.ready = true
		return m, nil

	case expireToastMsg:
		for i, t := range m.toasts {
			if t.id == msg.id {
				m.toasts = append(m.toasts[:i:i], m.toasts[i+1:]...)
				break
			}
		}
		return m, nil

	case spinner.TickMsg:
		if !m.anyLoading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		switch msg.String() {
		case "?", "esc", "q":
			m.showHelp = false
			return m, nil
		case "ctrl+c":
			return m, tea.Quit
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.station.Lines())-1 {
			m.cursor++
		}
	case "?":
		m.showHelp = true
		m.help = renderHelp(m.width, m.styles.Theme.IsDark)
	case "s", "enter":
		return m.startScan()
	}
	return m, nil
}

func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.prompt.reply <- promptReply{value: m.input.Value()}
		m.closePrompt()
		return m, nil
	case tea.KeyEsc:
		m.prompt.reply <- promptReply{cancelled: true}
		m.closePrompt()
		return m, nil
	case tea.KeyCtrlC:
		m.prompt.reply <- promptReply{cancelled: true}
		m.closePrompt()
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) closePrompt() {
	m.prompt = nil
	m.input.Blur()
	m.input.Reset()
}

// startScan dispatches the selected line to the station. The workflow runs
// in the returned command; it reaches back through the bridge.
func (m Model) startScan() (tea.Model, tea.Cmd) {
	line := m.selectedLine()
	if line == nil {
		return m, nil
	}
	if !line.ScanEnabled() {
		return m.addToast(m.printer.Sprintf(i18n.ScanDisabled), pallet.LevelWarning)
	}

	st, ctx := m.station, m.ctx
	logging.UI("scan requested for line %d", line.ID())
	return m, func() tea.Msg {
		return scanDoneMsg{lineID: line.ID(), err: st.PutInPack(ctx, line)}
	}
}

func (m Model) handleScanDone(msg scanDoneMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.err == nil:
		return m, nil
	case errors.Is(msg.err, station.ErrNotReady):
		return m.addToast(m.printer.Sprintf(i18n.StationNotReady), pallet.LevelWarning)
	case errors.Is(msg.err, station.ErrScanDisabled):
		return m.addToast(m.printer.Sprintf(i18n.ScanDisabled), pallet.LevelWarning)
	}

	// The workflow has already notified the operator for its own errors.
	if kind := pallet.Kind(msg.err); kind == pallet.KindUnknown {
		logging.Get(logging.CategoryUI).Error("scan on line %d failed: %v", msg.lineID, msg.err)
	} else {
		logging.UI("scan on line %d ended: %s", msg.lineID, kind)
	}
	return m, nil
}

func (m Model) addToast(text string, level pallet.Level) (Model, tea.Cmd) {
	m.toastSeq++
	id := m.toastSeq
	m.toasts = append(m.toasts, toast{id: id, text: text, level: level})
	if len(m.toasts) > maxToasts {
		m.toasts = m.toasts[len(m.toasts)-maxToasts:]
	}
	return m, tea.Tick(m.toastTTL, func(time.Time) tea.Msg { return expireToastMsg{id: id} })
}

func (m Model) selectedLine() *station.PackageLine {
	lines := m.station.Lines()
	if m.cursor < 0 || m.cursor >= len(lines) {
		return nil
	}
	return lines[m.cursor]
}

func (m Model) anyLoading() bool {
	for _, s := range m.states {
		if s.Loading {
			return true
		}
	}
	return false
}

// Prompting reports whether the barcode prompt is open.
func (m Model) Prompting() bool { return m.prompt != nil }

func (m Model) View() string {
	var sb strings.Builder

	header := m.printer.Sprintf(i18n.StationTitle)
	if !m.ready {
		header += "  " + m.styles.Badge.Render("…")
	}
	sb.WriteString(m.styles.Header.Render(header))
	sb.WriteString("\n\n")

	if m.showHelp {
		sb.WriteString(m.help)
		return sb.String()
	}

	lines := m.station.Lines()
	if len(lines) == 0 {
		sb.WriteString(m.styles.Muted.Render(m.printer.Sprintf(i18n.NoLines)))
		sb.WriteString("\n")
	}
	for i, line := range lines {
		sb.WriteString(m.renderLine(line, i == m.cursor))
		sb.WriteString("\n")
	}

	if m.prompt != nil {
		sb.WriteString("\n")
		box := lipgloss.JoinVertical(lipgloss.Left,
			m.styles.Title.Render(m.prompt.title),
			m.input.View())
		sb.WriteString(m.styles.PromptBox.Render(box))
		sb.WriteString("\n")
	}

	if len(m.toasts) > 0 {
		sb.WriteString("\n")
		for _, t := range m.toasts {
			sb.WriteString(m.styles.ForLevel(t.level).Render(t.text))
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n")
	sb.WriteString(m.styles.RenderDivider(m.width))
	sb.WriteString("\n")
	sb.WriteString(m.styles.Footer.Render(m.printer.Sprintf(i18n.StationHelp)))
	return sb.String()
}

func (m Model) renderLine(line *station.PackageLine, selected bool) string {
	name := line.DisplayName()
	if name != line.Name() {
		name = fmt.Sprintf("%s %s", name, m.styles.Muted.Render("("+line.Name()+")"))
	}

	parts := []string{name}
	if line.ScanEnabled() {
		button := m.styles.ButtonIdle
		if selected {
			button = m.styles.Button
		}
		parts = append(parts, button.Render(m.printer.Sprintf(i18n.ScanButton)))
	}

	if state, ok := m.states[line.ID()]; ok {
		switch {
		case state.Loading:
			parts = append(parts, m.spinner.View()+" "+m.styles.Muted.Render(m.printer.Sprintf(i18n.Updating)))
		case state.Result != nil:
			level := pallet.LevelDanger
			if state.Result.Success {
				level = pallet.LevelSuccess
			}
			parts = append(parts, m.styles.ForLevel(level).Render(state.Result.Message))
		}
	}

	row := strings.Join(parts, "  ")
	if selected {
		return m.styles.SelectedLine.Render(row)
	}
	return m.styles.Line.Render(row)
}
