package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/promo/internal/models"
	"github.com/desertthunder/promo/internal/services"
	"github.com/desertthunder/promo/internal/tasks"
)

const (
	loadFailedMessage = "Failed to load user data"
	noReleasesMessage = "No releases found. Create your first release to get started!"
	frameInterval     = 100 * time.Millisecond
)

// mode is what the dashboard's keyboard input currently drives.
type mode int

const (
	browsing mode = iota
	editing
	adding
	confirming
)

// DashboardModel lists the logged-in user's releases as cards and routes key presses to
// the selected card's [tasks.Board].
type DashboardModel struct {
	ctx    context.Context
	api    services.PromotionAPI
	user   *models.User
	logger *log.Logger

	loading bool
	banner  string
	boards  []*tasks.Board
	rows    []row
	cursor  int
	mode    mode
	release int // card driven by the input or delete prompt
	target  int // task being edited

	input   textinput.Model
	toasts  *tasks.Latest
	spinner spinner.Model
	bar     progress.Model
	help    help.Model
	keys    keyMap

	now         func() time.Time
	celebration time.Duration
	openURL     func(string) error
	animating   bool
	width       int
}

// NewDashboardModel builds the dashboard for user. Releases are fetched by [DashboardModel.Init].
func NewDashboardModel(ctx context.Context, api services.PromotionAPI, user *models.User, opts Options) *DashboardModel {
	opts = opts.withDefaults()

	input := newInput("Task description")
	input.Width = 50

	return &DashboardModel{
		ctx:         ctx,
		api:         api,
		user:        user,
		logger:      opts.Logger,
		loading:     true,
		input:       input,
		toasts:      tasks.NewLatest(opts.NoticeTTL),
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot)),
		bar:         progress.New(progress.WithDefaultGradient(), progress.WithWidth(30)),
		help:        help.New(),
		keys:        newKeyMap(),
		now:         opts.Now,
		celebration: opts.Celebration,
		openURL:     opts.OpenURL,
	}
}

func (m *DashboardModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchUser())
}

// Loading reports whether the user fetch is still in flight.
func (m *DashboardModel) Loading() bool { return m.loading }

// Banner is the view-level error message, if any.
func (m *DashboardModel) Banner() string { return m.banner }

// Boards returns one board per visible release.
func (m *DashboardModel) Boards() []*tasks.Board { return m.boards }

func (m *DashboardModel) fetchUser() tea.Cmd {
	ctx, api, id := m.ctx, m.api, m.user.UserID
	return func() tea.Msg {
		user, err := api.GetUserByID(ctx, id)
		return userLoadedMsg{user: user, err: err}
	}
}

func (m *DashboardModel) Update(msg tea.Msg) (*DashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case userLoadedMsg:
		m.loading = false
		if msg.err != nil || msg.user == nil {
			m.logger.Error("failed to load user", "user_id", m.user.UserID, "error", msg.err)
			m.banner = loadFailedMessage
			return m, nil
		}
		m.load(msg.user)
		return m, nil

	case settledMsg:
		return m, m.settle(msg)

	case frameMsg:
		if m.active() {
			return m, m.frame()
		}
		m.animating = false
		return m, nil

	case artOpenedMsg:
		if msg.err != nil {
			m.logger.Warn("failed to open cover art", "error", msg.err)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case editing:
			return m.handleEditKeys(msg)
		case adding:
			return m.handleAddKeys(msg)
		case confirming:
			return m.handleConfirmKeys(msg)
		default:
			return m.handleKeys(msg)
		}
	}
	return m, nil
}

// load rebuilds every card from a freshly fetched user. Soft-deleted releases are skipped.
func (m *DashboardModel) load(user *models.User) {
	m.boards = m.boards[:0]
	handlers := tasks.HandlersFor(m.api)
	for _, release := range user.VisibleReleases() {
		m.boards = append(m.boards, tasks.NewBoard(release, handlers,
			tasks.WithNotifier(m.toasts),
			tasks.WithClock(m.now),
			tasks.WithCelebration(m.celebration),
		))
	}
	m.mode = browsing
	m.refreshRows()
	m.cursor = 0
}

// refreshRows rebuilds the rows after the boards change. The cursor stays on the task
// it was on, wherever a re-sort moved it, and falls back to the card header when the
// task is gone.
func (m *DashboardModel) refreshRows() {
	var selected row
	had := m.cursor < len(m.rows)
	if had {
		selected = m.rows[m.cursor]
	}

	m.rows = flatten(m.boards)
	if had && selected.board < len(m.boards) {
		m.cursor = locate(m.rows, selected.board, selected.taskID)
		return
	}
	if m.cursor >= len(m.rows) {
		m.cursor = max(0, len(m.rows)-1)
	}
}

// selection returns the board and task (0 for a header) under the cursor.
func (m *DashboardModel) selection() (*tasks.Board, int, bool) {
	if len(m.rows) == 0 {
		return nil, 0, false
	}
	r := m.rows[m.cursor]
	return m.boards[r.board], r.taskID, true
}

func (m *DashboardModel) boardFor(releaseID int) *tasks.Board {
	for _, b := range m.boards {
		if b.Release().ReleaseID == releaseID {
			return b
		}
	}
	return nil
}

func (m *DashboardModel) handleKeys(msg tea.KeyMsg) (*DashboardModel, tea.Cmd) {
	board, taskID, ok := m.selection()

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.logout):
		return m, func() tea.Msg { return loggedOutMsg{} }
	case key.Matches(msg, m.keys.refresh):
		m.loading = true
		m.banner = ""
		return m, tea.Batch(m.spinner.Tick, m.fetchUser())
	case key.Matches(msg, m.keys.showHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case key.Matches(msg, m.keys.down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
		return m, nil
	}

	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.toggle):
		index := m.rows[m.cursor].board
		board.Toggle()
		m.refreshRows()
		m.cursor = locate(m.rows, index, 0)
		return m, nil
	case key.Matches(msg, m.keys.add):
		board.SetExpanded(true)
		board.OpenDraft()
		m.refreshRows()
		m.release = board.Release().ReleaseID
		m.startInput(board.Draft().Description)
		m.mode = adding
		return m, nil
	case key.Matches(msg, m.keys.art):
		return m, m.openArt(board.Release())
	}

	if taskID == 0 {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.status):
		mut, err := board.AdvanceStatus(taskID)
		return m, m.dispatch(board, mut, err)
	case key.Matches(msg, m.keys.raise):
		mut, err := board.RaisePriority(taskID)
		return m, m.dispatch(board, mut, err)
	case key.Matches(msg, m.keys.lower):
		mut, err := board.LowerPriority(taskID)
		return m, m.dispatch(board, mut, err)
	case key.Matches(msg, m.keys.edit):
		task, _ := board.Task(taskID)
		m.release = board.Release().ReleaseID
		m.target = taskID
		m.startInput(task.Description)
		m.mode = editing
		return m, nil
	case key.Matches(msg, m.keys.remove):
		if err := board.RequestDelete(taskID); err == nil {
			m.release = board.Release().ReleaseID
			m.mode = confirming
		}
		return m, nil
	}
	return m, nil
}

func (m *DashboardModel) startInput(value string) {
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
}

func (m *DashboardModel) stopInput() {
	m.input.Blur()
	m.input.SetValue("")
	m.mode = browsing
}

func (m *DashboardModel) handleEditKeys(msg tea.KeyMsg) (*DashboardModel, tea.Cmd) {
	board := m.boardFor(m.release)
	if board == nil {
		m.stopInput()
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.back):
		m.stopInput()
		return m, nil
	case key.Matches(msg, m.keys.save):
		mut, err := board.EditDescription(m.target, m.input.Value())
		if errors.Is(err, models.ErrEmptyDescription) {
			return m, m.frame()
		}
		m.stopInput()
		return m, m.dispatch(board, mut, err)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *DashboardModel) handleAddKeys(msg tea.KeyMsg) (*DashboardModel, tea.Cmd) {
	board := m.boardFor(m.release)
	if board == nil {
		m.stopInput()
		return m, nil
	}
	if board.Submitting() {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.back):
		board.CancelDraft()
		m.stopInput()
		return m, nil
	case key.Matches(msg, m.keys.cycle):
		p, ok := board.Draft().Priority.Lower()
		if !ok {
			p = models.Urgent
		}
		board.SetDraftPriority(p)
		return m, nil
	case key.Matches(msg, m.keys.save):
		board.SetDraftDescription(m.input.Value())
		mut, err := board.Create()
		if err != nil {
			return m, m.frame()
		}
		return m, m.dispatch(board, mut, nil)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	board.SetDraftDescription(m.input.Value())
	return m, cmd
}

func (m *DashboardModel) handleConfirmKeys(msg tea.KeyMsg) (*DashboardModel, tea.Cmd) {
	board := m.boardFor(m.release)
	if board == nil {
		m.mode = browsing
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.yes):
		m.mode = browsing
		mut, err := board.ConfirmDelete()
		m.refreshRows()
		return m, m.dispatch(board, mut, err)
	case key.Matches(msg, m.keys.no):
		board.CancelDelete()
		m.mode = browsing
	}
	return m, nil
}

// dispatch runs an applied mutation's request off the UI loop and reports back with a settledMsg.
func (m *DashboardModel) dispatch(board *tasks.Board, mut *tasks.Mutation, err error) tea.Cmd {
	m.refreshRows()
	if err != nil {
		m.logger.Warn("task change rejected", "release", board.Release().ReleaseID, "error", err)
		return m.frame()
	}
	if mut == nil {
		return nil
	}

	ctx, releaseID := m.ctx, board.Release().ReleaseID
	run := func() tea.Msg {
		result, err := mut.Run(ctx)
		return settledMsg{releaseID: releaseID, mutationID: mut.ID, kind: mut.Kind, result: result, err: err}
	}
	return tea.Batch(run, m.frame())
}

// settle hands a finished request to its board. Failures also set the view-level banner.
func (m *DashboardModel) settle(msg settledMsg) tea.Cmd {
	board := m.boardFor(msg.releaseID)
	if board == nil {
		return nil
	}

	err := board.Settle(msg.mutationID, msg.result, msg.err)
	if msg.err != nil {
		m.banner = failureBanner(msg.kind)
		m.logger.Error("task change failed", "kind", msg.kind, "release", msg.releaseID, "error", err)
	}

	if m.mode == adding && m.release == msg.releaseID && !board.Adding() {
		m.stopInput()
	}
	m.refreshRows()
	return m.frame()
}

func failureBanner(kind tasks.Kind) string {
	switch kind {
	case tasks.StatusChange:
		return "Failed to update task status"
	case tasks.PriorityChange:
		return "Failed to update task priority"
	case tasks.Creation:
		return "Failed to create task"
	default:
		return "Failed to update task"
	}
}

func (m *DashboardModel) openArt(r models.Release) tea.Cmd {
	if r.CoverArt == "" || m.openURL == nil {
		return nil
	}
	open, url := m.openURL, r.CoverArt
	return func() tea.Msg { return artOpenedMsg{err: open(url)} }
}

// active reports whether anything on screen is still animating.
func (m *DashboardModel) active() bool {
	if _, ok := m.toasts.Current(m.now()); ok {
		return true
	}
	for _, b := range m.boards {
		if b.Celebrating() {
			return true
		}
	}
	return false
}

// frame starts the redraw ticker unless it is already running.
func (m *DashboardModel) frame() tea.Cmd {
	if m.animating {
		return nil
	}
	m.animating = true
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (m *DashboardModel) View() string {
	var b strings.Builder

	b.WriteString(styles.title.Render(fmt.Sprintf("Welcome, %s", m.user.Name)))
	b.WriteString("\n")

	if m.loading {
		b.WriteString(fmt.Sprintf("%s Loading...", m.spinner.View()))
		return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
	}

	b.WriteString(styles.accent.Render("YOUR RELEASES"))
	b.WriteString("\n")
	b.WriteString(styles.muted.Render("Manage your promotion tasks for each release"))
	b.WriteString("\n\n")

	if m.banner != "" {
		b.WriteString(styles.banner.Render(m.banner))
		b.WriteString("\n\n")
	}

	if len(m.boards) == 0 && m.banner != loadFailedMessage {
		b.WriteString(styles.card.Render(noReleasesMessage))
		b.WriteString("\n")
	}

	var current row
	if len(m.rows) > 0 {
		current = m.rows[m.cursor]
	}
	now := m.now()
	for i, board := range m.boards {
		view := cardView{
			board: board,
			bar:   m.bar,
			now:   now,
		}
		if len(m.rows) > 0 && current.board == i {
			view.selected = true
			view.cursorTask = current.taskID
		}
		if m.mode == editing && board.Release().ReleaseID == m.release {
			view.editing = m.target
			view.input = m.input.View()
		}
		if m.mode == adding && board.Release().ReleaseID == m.release {
			view.adding = true
			view.input = m.input.View()
		}
		view.confirming = board.AwaitingConfirmation()
		b.WriteString(renderCard(view))
		b.WriteString("\n")
	}

	if n, ok := m.toasts.Current(now); ok {
		b.WriteString("\n")
		b.WriteString(renderToast(n))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func renderToast(n tasks.Notice) string {
	if n.Level == tasks.Failure {
		return styles.toast.Render(styles.err.Render("✗ ") + n.Message)
	}
	return styles.toast.Render(styles.ok.Render("✓ ") + n.Message)
}
