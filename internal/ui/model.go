package ui

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/travel-assistant/concierge/internal/adminapi"
	"github.com/travel-assistant/concierge/internal/logtail"
	"github.com/travel-assistant/concierge/internal/prefs"
	"github.com/travel-assistant/concierge/internal/state"
	"github.com/travel-assistant/concierge/internal/workspace"
)

// View represents the current active view.
type View int

const (
	ViewDashboard View = iota
	ViewUsers
	ViewInterests
	ViewEvents
	ViewPlans
	ViewTerms
	ViewLogs
)

var viewNames = []string{"dashboard", "users", "interests", "events", "plans", "terms", "logs"}

func (v View) String() string {
	if v < 0 || int(v) >= len(viewNames) {
		return "dashboard"
	}
	return viewNames[v]
}

// ParseView maps a view name to a View, falling back to the dashboard.
func ParseView(name string) View {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range viewNames {
		if n == name {
			return View(i)
		}
	}
	return ViewDashboard
}

var logLevels = []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Workspace *workspace.Workspace
	Prefs     prefs.Prefs
	PrefsPath string
	Tick      time.Duration
	LogPath   string
}

// listState is the per-view cursor and filter.
type listState struct {
	cursor    int
	statusIdx int
	search    string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx       context.Context
	ws        *workspace.Workspace
	prefs     prefs.Prefs
	prefsPath string
	tick      time.Duration
	logPath   string

	keys  keyMap
	help  help.Model
	theme Theme

	view   View
	width  int
	height int
	ready  bool

	sources []listSource
	lists   [ViewLogs]listState

	searching bool
	search    textinput.Model

	modal    *formModal
	modalSeq int

	confirmID string
	flash     string
	flashErr  bool
	flashAt   time.Time

	showHelp bool

	logs      viewport.Model
	logFloor  int // index into logLevels
	logErr    error
	logCount  int
	logLoaded bool
}

// New creates the console model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	tick := opts.Tick
	if tick <= 0 {
		tick = DefaultUIInterval
	}
	p := opts.Prefs
	if p.PageSize <= 0 {
		p.PageSize = prefs.Defaults().PageSize
	}

	search := textinput.New()
	search.Prompt = "/"
	search.Placeholder = "search"
	search.CharLimit = 100

	m := Model{
		ctx:       ctx,
		ws:        opts.Workspace,
		prefs:     p,
		prefsPath: opts.PrefsPath,
		tick:      tick,
		logPath:   opts.LogPath,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		theme:     GetTheme(p.Theme),
		view:      ParseView(p.DefaultView),
		search:    search,
		logFloor:  1,
		logs:      viewport.New(0, 0),
	}
	if opts.Workspace != nil {
		m.sources = newSources(opts.Workspace)
	}
	return m
}

type tickMsg time.Time

type refreshDoneMsg struct {
	name string
	err  error
}

type mutationDoneMsg struct {
	verb string
	err  error
}

type logsMsg struct {
	entries []logtail.Entry
	err     error
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(m.tick), m.refreshAllCmd())
}

func (m Model) refreshAllCmd() tea.Cmd {
	if m.ws == nil {
		return nil
	}
	ws, ctx := m.ws, m.ctx
	return func() tea.Msg {
		return refreshDoneMsg{name: "all", err: ws.RefreshAll(ctx)}
	}
}

// refreshCmd reloads whatever the current view shows.
func (m Model) refreshCmd() tea.Cmd {
	ctx := m.ctx
	switch {
	case m.view == ViewLogs:
		return m.loadLogsCmd()
	case m.view == ViewDashboard:
		if m.ws == nil {
			return nil
		}
		ws := m.ws
		return func() tea.Msg {
			return refreshDoneMsg{name: "dashboard", err: ws.RefreshDashboard(ctx)}
		}
	}
	src := m.source()
	if src == nil {
		return nil
	}
	return func() tea.Msg {
		return refreshDoneMsg{name: src.key(), err: src.refresh(ctx)}
	}
}

func (m Model) loadLogsCmd() tea.Cmd {
	path, floor := m.logPath, logLevels[m.logFloor]
	return func() tea.Msg {
		entries, err := logtail.Tail(path, LogTailLines, floor)
		return logsMsg{entries: entries, err: err}
	}
}

// source returns the list backing the current view, or nil.
func (m Model) source() listSource {
	i := int(m.view) - 1
	if i < 0 || i >= len(m.sources) {
		return nil
	}
	return m.sources[i]
}

func (m *Model) list() *listState {
	if m.view < ViewUsers || m.view >= ViewLogs {
		return nil
	}
	return &m.lists[m.view]
}

// filter returns the local filter for the current list.
func (m Model) filter() state.Filter {
	src := m.source()
	if src == nil {
		return state.Filter{}
	}
	ls := m.lists[m.view]
	f := state.Filter{Text: ls.search, Status: state.StatusAll}
	if st := src.statuses(); len(st) > 0 {
		f.Status = st[ls.statusIdx%len(st)]
	}
	return f
}

func (m Model) currentRows() []row {
	src := m.source()
	if src == nil {
		return nil
	}
	return src.rows(m.filter())
}

func (m Model) selectedID() string {
	rows := m.currentRows()
	ls := m.lists[m.view]
	if ls.cursor < 0 || ls.cursor >= len(rows) {
		return ""
	}
	return rows[ls.cursor].id
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.help.Width = msg.Width
		m.logs.Width = msg.Width
		m.logs.Height = max(1, msg.Height-chromeLines)
		return m, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd(m.tick)}
		if m.view == ViewLogs {
			cmds = append(cmds, m.loadLogsCmd())
		}
		if m.flash != "" && time.Since(m.flashAt) > 5*time.Second {
			m.flash = ""
		}
		m.clampCursor()
		return m, tea.Batch(cmds...)

	case refreshDoneMsg:
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			m.setFlash("Refresh failed: "+adminapi.Message(msg.err), true)
		}
		m.clampCursor()
		return m, nil

	case mutationDoneMsg:
		if msg.err != nil {
			m.setFlash(msg.verb+" failed: "+adminapi.Message(msg.err), true)
		} else {
			m.setFlash(msg.verb+" complete", false)
		}
		m.clampCursor()
		return m, nil

	case formResultMsg:
		if m.modal == nil || m.modal.id != msg.id {
			return m, nil
		}
		if m.modal.finish(msg.err) {
			m.setFlash(m.modal.title+" saved", false)
			m.modal = nil
		}
		m.clampCursor()
		return m, nil

	case logsMsg:
		m.applyLogs(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) setFlash(text string, isErr bool) {
	m.flash = text
	m.flashErr = isErr
	m.flashAt = time.Now()
}

func (m *Model) clampCursor() {
	ls := m.list()
	if ls == nil {
		return
	}
	n := len(m.currentRows())
	if ls.cursor >= n {
		ls.cursor = n - 1
	}
	if ls.cursor < 0 {
		ls.cursor = 0
	}
}

func (m *Model) openModal(f *formModal) {
	m.modalSeq++
	f.id = m.modalSeq
	m.modal = f
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.modal != nil {
		cmd, done := m.modal.handleKey(m.ctx, msg, m.keys)
		if done {
			m.modal = nil
		}
		return m, cmd
	}

	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if m.searching {
		return m.handleSearchKey(msg)
	}

	if m.confirmID != "" {
		id := m.confirmID
		m.confirmID = ""
		if key.Matches(msg, m.keys.ConfirmYes) {
			return m, m.deleteCmd(id)
		}
		m.setFlash("Delete cancelled", false)
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		m.savePrefs()
		return m, nil
	case key.Matches(msg, m.keys.Tab):
		return m.switchView(View((int(m.view) + 1) % len(viewNames)))
	case key.Matches(msg, m.keys.ShiftTab):
		return m.switchView(View((int(m.view) + len(viewNames) - 1) % len(viewNames)))
	case key.Matches(msg, m.keys.ViewDashboard):
		return m.switchView(ViewDashboard)
	case key.Matches(msg, m.keys.ViewUsers):
		return m.switchView(ViewUsers)
	case key.Matches(msg, m.keys.ViewInterests):
		return m.switchView(ViewInterests)
	case key.Matches(msg, m.keys.ViewEvents):
		return m.switchView(ViewEvents)
	case key.Matches(msg, m.keys.ViewPlans):
		return m.switchView(ViewPlans)
	case key.Matches(msg, m.keys.ViewTerms):
		return m.switchView(ViewTerms)
	case key.Matches(msg, m.keys.ViewLogs):
		return m.switchView(ViewLogs)
	case key.Matches(msg, m.keys.Refresh):
		return m, m.refreshCmd()
	case key.Matches(msg, m.keys.Profile):
		if m.ws == nil {
			return m, nil
		}
		if err := m.ws.OpenProfileForm(); err != nil {
			m.setFlash(adminapi.Message(err), true)
			return m, nil
		}
		m.openModal(profileModal(m.ws.ProfileForm))
		return m, nil
	}

	if m.view == ViewLogs {
		return m.handleLogsKey(msg)
	}
	if m.source() != nil {
		return m.handleListKey(msg)
	}
	return m, nil
}

func (m Model) switchView(v View) (tea.Model, tea.Cmd) {
	m.view = v
	m.confirmID = ""
	if v == ViewLogs {
		return m, m.loadLogsCmd()
	}
	return m, nil
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.setFlash("Could not save preferences: "+err.Error(), true)
	}
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ls := m.list()
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		if ls != nil {
			ls.search = ""
		}
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		m.searching = false
		m.search.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if ls != nil {
		ls.search = m.search.Value()
		ls.cursor = 0
	}
	return m, cmd
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	src := m.source()
	ls := m.list()
	rows := m.currentRows()

	switch {
	case key.Matches(msg, m.keys.Up):
		if ls.cursor > 0 {
			ls.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if ls.cursor < len(rows)-1 {
			ls.cursor++
		}
	case key.Matches(msg, m.keys.Top):
		ls.cursor = 0
	case key.Matches(msg, m.keys.Bottom):
		ls.cursor = max(0, len(rows)-1)
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.search.SetValue(ls.search)
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.CycleFilter):
		st := src.statuses()
		if len(st) == 0 {
			return m, nil
		}
		ls.statusIdx = (ls.statusIdx + 1) % len(st)
		ls.cursor = 0
		if src.setStatusFilter(st[ls.statusIdx]) {
			return m, m.refreshCmd()
		}
	case key.Matches(msg, m.keys.New):
		if !src.canCreate() {
			m.setFlash(src.title()+" cannot be created here", true)
			return m, nil
		}
		m.openModal(src.newForm())
	case key.Matches(msg, m.keys.Edit):
		id := m.selectedID()
		if id == "" {
			return m, nil
		}
		if !src.canEdit() {
			m.setFlash(src.title()+" are read-only", true)
			return m, nil
		}
		f, err := src.editForm(id)
		if err != nil {
			m.setFlash(adminapi.Message(err), true)
			return m, nil
		}
		m.openModal(f)
	case key.Matches(msg, m.keys.Toggle):
		id := m.selectedID()
		if id == "" || !src.canToggle() {
			return m, nil
		}
		ctx := m.ctx
		return m, func() tea.Msg {
			return mutationDoneMsg{verb: "Status change", err: src.toggle(ctx, id)}
		}
	case key.Matches(msg, m.keys.Delete):
		id := m.selectedID()
		if id == "" || !src.canDelete() {
			return m, nil
		}
		m.confirmID = id
		m.setFlash("Delete "+strings.TrimSuffix(strings.ToLower(src.title()), "s")+" "+id+"? press y to confirm", false)
	}
	return m, nil
}

func (m Model) deleteCmd(id string) tea.Cmd {
	src := m.source()
	if src == nil {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		return mutationDoneMsg{verb: "Delete", err: src.remove(ctx, id)}
	}
}

func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.CycleFilter):
		m.logFloor = (m.logFloor + 1) % len(logLevels)
		return m, m.loadLogsCmd()
	case key.Matches(msg, m.keys.Top):
		m.logs.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.logs.GotoBottom()
		return m, nil
	}
	var cmd tea.Cmd
	m.logs, cmd = m.logs.Update(msg)
	return m, cmd
}

func (m *Model) applyLogs(msg logsMsg) {
	m.logErr = msg.err
	m.logLoaded = true
	if msg.err != nil {
		return
	}
	follow := m.logs.AtBottom() || m.logCount == 0
	m.logCount = len(msg.entries)
	m.logs.SetContent(m.renderLogEntries(msg.entries))
	if follow {
		m.logs.GotoBottom()
	}
}

// Run starts the console and blocks until it exits or the context ends.
func Run(opts Options) error {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
		opts.Context = ctx
	}
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
