package ui

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/promo/internal/services"
	"github.com/desertthunder/promo/internal/session"
	"github.com/desertthunder/promo/internal/shared"
	"github.com/desertthunder/promo/internal/tasks"
)

// Route names a top-level view.
type Route int

const (
	LoginRoute Route = iota
	DashboardRoute
)

func (r Route) String() string {
	if r == DashboardRoute {
		return "dashboard"
	}
	return "login"
}

// ParseRoute maps a start path to a route. "/" and unknown paths resolve to login.
func ParseRoute(path string) Route {
	switch strings.Trim(strings.ToLower(path), "/ ") {
	case "dashboard":
		return DashboardRoute
	default:
		return LoginRoute
	}
}

// Guard redirects between routes by authentication: the dashboard needs a session and
// the login view is skipped when one exists.
func Guard(r Route, authenticated bool) Route {
	switch {
	case r == DashboardRoute && !authenticated:
		return LoginRoute
	case r == LoginRoute && authenticated:
		return DashboardRoute
	}
	return r
}

// Options tunes the TUI. Zero values fall back to defaults.
type Options struct {
	Start       string
	Logger      *log.Logger
	NoticeTTL   time.Duration
	Celebration time.Duration
	Now         func() time.Time
	OpenURL     func(string) error
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	if o.NoticeTTL <= 0 {
		o.NoticeTTL = 2 * time.Second
	}
	if o.Celebration <= 0 {
		o.Celebration = tasks.DefaultCelebration
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.OpenURL == nil {
		o.OpenURL = shared.OpenBrowser
	}
	return o
}

// Model is the app shell. It owns routing and hands login and logout to the session manager.
type Model struct {
	ctx       context.Context
	api       services.PromotionAPI
	session   *session.Manager
	opts      Options
	route     Route
	login     *LoginModel
	dashboard *DashboardModel
	width     int
	height    int
}

// NewModel restores the session and resolves the start route through [Guard].
func NewModel(ctx context.Context, api services.PromotionAPI, sess *session.Manager, opts Options) *Model {
	opts = opts.withDefaults()
	m := &Model{ctx: ctx, api: api, session: sess, opts: opts}

	if _, err := sess.Restore(); err != nil {
		opts.Logger.Error("failed to restore session", "error", err)
	}
	m.route = ParseRoute(opts.Start)
	m.enter(m.route)
	return m
}

// Route is the view currently shown.
func (m *Model) Route() Route { return m.route }

// enter switches to r after applying the guard and builds a fresh view for it.
func (m *Model) enter(r Route) tea.Cmd {
	r = Guard(r, m.session.Authenticated())
	m.route = r

	switch r {
	case DashboardRoute:
		m.login = nil
		m.dashboard = NewDashboardModel(m.ctx, m.api, m.session.Current(), m.opts)
		if m.width > 0 {
			m.dashboard.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height})
		}
		return m.dashboard.Init()
	default:
		m.dashboard = nil
		m.login = NewLoginModel(m.ctx, m.api)
		return m.login.Init()
	}
}

func (m *Model) Init() tea.Cmd {
	if m.dashboard != nil {
		return m.dashboard.Init()
	}
	return m.login.Init()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case loggedInMsg:
		if err := m.session.Login(msg.user); err != nil {
			m.opts.Logger.Error("failed to save session", "error", err)
			if m.login != nil {
				m.login.state = LoginFailed
				m.login.errMsg = loginFailedMessage
			}
			return m, nil
		}
		m.opts.Logger.Info("logged in", "user", msg.user.Name)
		return m, m.enter(DashboardRoute)

	case loggedOutMsg:
		if err := m.session.Logout(); err != nil {
			m.opts.Logger.Error("failed to clear session", "error", err)
		}
		return m, m.enter(LoginRoute)
	}

	var cmd tea.Cmd
	switch m.route {
	case DashboardRoute:
		m.dashboard, cmd = m.dashboard.Update(msg)
	default:
		m.login, cmd = m.login.Update(msg)
	}
	return m, cmd
}

func (m *Model) View() string {
	if m.route == DashboardRoute {
		return m.dashboard.View()
	}
	return m.login.View()
}

var _ tea.Model = (*Model)(nil)
