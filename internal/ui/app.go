package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/formstate/internal/client"
	"github.com/five82/formstate/internal/config"
	"github.com/five82/formstate/internal/form"
	"github.com/five82/formstate/internal/prefs"
)

// Options configures the UI.
type Options struct {
	Context    context.Context
	Form       *form.Form
	Definition config.Definition
	ThemeName  string
	PrefsPath  string
	Logger     *slog.Logger
}

type statusKind int

const (
	statusInfo statusKind = iota
	statusSuccess
	statusError
)

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	form      *form.Form
	def       config.Definition
	prefsPath string
	logger    *slog.Logger
	keys      keyMap

	// UI state
	theme    Theme
	width    int
	height   int
	ready    bool
	showHelp bool

	// Form state
	fields     []fieldView
	focus      int
	snap       form.Snapshot
	pending    bool
	status     string
	statusKind statusKind

	// Subscriptions
	feed    *snapshotFeed
	results chan tea.Msg
	stop    func()
}

// New creates the model and subscribes it to the form.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = "Dracula"
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	m := Model{
		ctx:       ctx,
		form:      opts.Form,
		def:       opts.Definition,
		prefsPath: prefsPath,
		logger:    logger,
		keys:      DefaultKeyMap(),
		theme:     GetTheme(themeName),
		fields:    newFieldViews(opts.Definition),
		feed:      newSnapshotFeed(),
		results:   make(chan tea.Msg, 8),
		stop:      func() {},
	}
	m.syncInputs()
	m.setFocus(0)

	if m.form != nil {
		m.snap = m.form.Snapshot()
		m.stop = m.form.Watch(m.feed.push)
	}
	return m
}

// Close unsubscribes the model from its form.
func (m Model) Close() {
	m.stop()
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		waitForSnapshot(m.ctx, m.feed),
		waitForResult(m.ctx, m.results),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case snapshotMsg:
		m.snap = form.Snapshot(msg)
		return m, waitForSnapshot(m.ctx, m.feed)

	case submitResultMsg:
		m.applyResult(msg)
		return m, waitForResult(m.ctx, m.results)

	case prefsErrMsg:
		m.setStatus(statusError, "save preferences: "+msg.err.Error())
		return m, nil
	}

	return m.updateFocusedInput(msg)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.stop()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		return m, savePrefsCmd(m.prefsPath, m.theme.Name)

	case key.Matches(msg, m.keys.Next):
		m.setFocus(m.focus + 1)
		return m, nil

	case key.Matches(msg, m.keys.Prev):
		m.setFocus(m.focus - 1)
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		return m, m.submit()

	case key.Matches(msg, m.keys.ResetAll):
		if m.form != nil {
			m.form.Reset()
			m.afterReset()
			m.setStatus(statusInfo, "Form reset")
		}
		return m, nil

	case key.Matches(msg, m.keys.ResetField):
		if f, ok := m.focused(); ok && m.form != nil {
			m.form.Reset(f.def.Name)
			m.afterReset()
			m.setStatus(statusInfo, fmt.Sprintf("Reset %s", f.def.Label))
		}
		return m, nil

	case key.Matches(msg, m.keys.ClearErrors):
		if m.form != nil {
			m.form.ClearErrors()
			m.snap = m.form.Snapshot()
		}
		for i := range m.fields {
			m.fields[i].invalid = ""
		}
		return m, nil

	case key.Matches(msg, m.keys.Toggle):
		if f, ok := m.focused(); ok && f.isBool() {
			m.toggle(f.def.Name)
			return m, nil
		}
	}

	return m.updateFocusedInput(msg)
}

// updateFocusedInput forwards msg to the focused text input and writes the
// parsed value back to the form.
func (m Model) updateFocusedInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	f, ok := m.focused()
	if !ok || f.isBool() {
		return m, nil
	}

	before := f.input.Value()
	var cmd tea.Cmd
	m.fields[m.focus].input, cmd = f.input.Update(msg)
	if m.fields[m.focus].input.Value() != before {
		m.commitInput(m.focus)
	}
	return m, cmd
}

func (m *Model) commitInput(i int) {
	f := &m.fields[i]
	value, err := parseInput(f.def.Kind, f.input.Value())
	if err != nil {
		f.invalid = err.Error()
		return
	}
	f.invalid = ""
	if m.form == nil {
		return
	}
	if err := m.form.Set(f.def.Name, value); err != nil {
		m.logger.Warn("field not in form", "field", f.def.Name, "error", err)
		return
	}
	m.snap = m.form.Snapshot()
}

func (m *Model) toggle(name string) {
	if m.form == nil {
		return
	}
	current, _ := m.form.Value(name)
	checked, _ := current.(bool)
	if err := m.form.Set(name, !checked); err != nil {
		m.logger.Warn("field not in form", "field", name, "error", err)
		return
	}
	m.snap = m.form.Snapshot()
}

// afterReset copies restored values back into the inputs.
func (m *Model) afterReset() {
	m.syncInputs()
	for i := range m.fields {
		m.fields[i].invalid = ""
	}
	m.snap = m.form.Snapshot()
}

func (m *Model) syncInputs() {
	if m.form == nil {
		return
	}
	values := m.form.Fields()
	for i := range m.fields {
		f := &m.fields[i]
		if f.isBool() {
			continue
		}
		f.input.SetValue(formatValue(f.def.Kind, values[f.def.Name]))
	}
}

func (m *Model) setFocus(i int) {
	if len(m.fields) == 0 {
		return
	}
	i = (i%len(m.fields) + len(m.fields)) % len(m.fields)
	for j := range m.fields {
		if m.fields[j].isBool() {
			continue
		}
		if j == i {
			m.fields[j].input.Focus()
		} else {
			m.fields[j].input.Blur()
		}
	}
	m.focus = i
}

func (m Model) focused() (fieldView, bool) {
	if m.focus < 0 || m.focus >= len(m.fields) {
		return fieldView{}, false
	}
	return m.fields[m.focus], true
}

// submit sends the form with the definition's method without waiting. The
// outcome arrives as a submitResultMsg.
func (m *Model) submit() tea.Cmd {
	if m.form == nil {
		return nil
	}
	if m.pending || m.form.Processing() {
		m.setStatus(statusInfo, "Submission already in flight")
		return nil
	}
	for _, f := range m.fields {
		if f.invalid != "" {
			m.setStatus(statusError, fmt.Sprintf("%s: %s", f.def.Label, f.invalid))
			return nil
		}
	}

	results := m.results
	var result submitResultMsg
	settled := false
	hooks := form.Hooks{
		OnSuccess: func(_ context.Context, resp *client.Response) {
			if resp != nil {
				result.status = resp.StatusCode
			}
			settled = true
		},
		OnError: func(_ context.Context, err error) {
			result.err = err
			settled = true
		},
		OnFinish: func(context.Context) {
			if !settled {
				result.err = errSubmitAborted
			}
			deliver(results, result)
		},
	}

	m.pending = true
	action := m.def.Action
	switch m.def.Method {
	case form.MethodGet:
		m.form.Get(m.ctx, action, hooks)
	case form.MethodPut:
		m.form.Put(m.ctx, action, hooks)
	case form.MethodPatch:
		m.form.Patch(m.ctx, action, hooks)
	case form.MethodDelete:
		m.form.Delete(m.ctx, action, hooks)
	default:
		m.form.Post(m.ctx, action, hooks)
	}
	m.setStatus(statusInfo, "Submitting…")
	return nil
}

func (m *Model) applyResult(msg submitResultMsg) {
	m.pending = false
	if msg.err == nil {
		m.setStatus(statusSuccess, fmt.Sprintf("Saved (%d)", msg.status))
		return
	}
	if fields, ok := client.ValidationErrors(msg.err); ok {
		m.setStatus(statusError, fmt.Sprintf("Rejected: %d field(s) need attention", len(fields)))
		return
	}
	var respErr *client.ResponseError
	if errors.As(msg.err, &respErr) && respErr.Response != nil {
		m.setStatus(statusError, fmt.Sprintf("Server returned %d", respErr.Response.StatusCode))
		return
	}
	m.setStatus(statusError, msg.err.Error())
}

func (m *Model) setStatus(kind statusKind, text string) {
	m.statusKind = kind
	m.status = text
}

// renderMain renders the form, one block per field, between a header and a
// status bar.
func (m Model) renderMain() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(m.renderHeader(styles))
	b.WriteString("\n\n")

	for i, f := range m.fields {
		b.WriteString(m.renderField(styles, i, f))
		b.WriteString("\n")
	}

	b.WriteString(m.renderStatusBar(styles))
	return b.String()
}

func (m Model) renderHeader(styles Styles) string {
	title := m.def.Title
	if title == "" {
		title = "formstate"
	}
	target := fmt.Sprintf("%s %s", strings.ToUpper(m.def.Method.String()), m.def.Action)
	line := styles.Header.Render(title) + " " + styles.MutedText.Render(target)
	if m.width > 0 {
		return lipgloss.NewStyle().MaxWidth(m.width).Render(line)
	}
	return line
}

func (m Model) renderField(styles Styles, i int, f fieldView) string {
	labelStyle := styles.Label
	boxStyle := styles.Field
	if i == m.focus {
		labelStyle = styles.FocusedLabel
		boxStyle = styles.FocusedField
	}

	var b strings.Builder
	if f.isBool() {
		checked, _ := m.snap.Fields[f.def.Name].(bool)
		b.WriteString(labelStyle.Render(checkbox(checked) + " " + f.def.Label))
		b.WriteString("\n")
	} else {
		b.WriteString(labelStyle.Render(f.def.Label))
		b.WriteString("\n")
		b.WriteString(boxStyle.Render(f.input.View()))
		b.WriteString("\n")
	}

	if f.invalid != "" {
		b.WriteString(styles.WarningText.Render("  " + f.invalid))
		b.WriteString("\n")
	} else if msg := m.snap.Error(f.def.Name); msg != "" {
		b.WriteString(styles.DangerText.Render("  " + msg))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderStatusBar(styles Styles) string {
	var badges []string
	if m.snap.IsDirty {
		badges = append(badges, styles.Badge("modified", m.theme.Warning))
	} else {
		badges = append(badges, styles.Badge("saved", m.theme.Muted))
	}
	if m.snap.Processing {
		badges = append(badges, styles.Badge("sending", m.theme.Info))
	}
	if len(m.snap.Errors) > 0 {
		badges = append(badges, styles.Badge(fmt.Sprintf("%d errors", len(m.snap.Errors)), m.theme.Danger))
	}

	status := m.status
	switch m.statusKind {
	case statusSuccess:
		status = styles.SuccessText.Render(status)
	case statusError:
		status = styles.DangerText.Render(status)
	default:
		status = styles.MutedText.Render(status)
	}

	var hints []string
	for _, binding := range m.keys.ShortHelp() {
		h := binding.Help()
		hints = append(hints, h.Key+" "+h.Desc)
	}

	line := strings.Join(badges, " ") + "  " + status
	return line + "\n" + styles.Footer.Render(strings.Join(hints, " · "))
}

// Messages

type snapshotMsg form.Snapshot

var errSubmitAborted = errors.New("submission aborted")

// submitResultMsg is delivered once per submission after it settles.
type submitResultMsg struct {
	status int
	err    error
}

type prefsErrMsg struct{ err error }

// snapshotFeed holds the latest form snapshot. Older unread snapshots are
// dropped so a slow UI never blocks the goroutine mutating the form.
type snapshotFeed struct {
	mu sync.Mutex
	ch chan form.Snapshot
}

func newSnapshotFeed() *snapshotFeed {
	return &snapshotFeed{ch: make(chan form.Snapshot, 1)}
}

func (f *snapshotFeed) push(s form.Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	select {
	case <-f.ch:
	default:
	}
	f.ch <- s
}

func deliver(ch chan tea.Msg, msg tea.Msg) {
	select {
	case ch <- msg:
	default:
	}
}

// Commands

func waitForSnapshot(ctx context.Context, feed *snapshotFeed) tea.Cmd {
	return func() tea.Msg {
		select {
		case s := <-feed.ch:
			return snapshotMsg(s)
		case <-ctx.Done():
			return nil
		}
	}
}

func waitForResult(ctx context.Context, ch chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-ch:
			return msg
		case <-ctx.Done():
			return nil
		}
	}
}

func savePrefsCmd(path, theme string) tea.Cmd {
	return func() tea.Msg {
		if err := prefs.Update(path, func(p *prefs.Prefs) { p.Theme = theme }); err != nil {
			return prefsErrMsg{err: err}
		}
		return nil
	}
}

// Run starts the Bubble Tea program and blocks until it exits or ctx is
// cancelled.
func Run(opts Options) error {
	m := New(opts)
	defer m.Close()

	var programOpts []tea.ProgramOption
	programOpts = append(programOpts, tea.WithAltScreen())
	if opts.Context != nil {
		programOpts = append(programOpts, tea.WithContext(opts.Context))
	}

	_, err := tea.NewProgram(m, programOpts...).Run()
	if errors.Is(err, tea.ErrProgramKilled) && opts.Context != nil && opts.Context.Err() != nil {
		return nil
	}
	return err
}
