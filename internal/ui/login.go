package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/promo/internal/services"
)

// LoginState is the login form's lifecycle.
type LoginState int

const (
	LoginIdle LoginState = iota
	LoginSubmitting
	LoginFailed
)

const (
	loginFailedMessage = "Invalid username or password"
	emptyNameMessage   = "Please enter a username"
)

// LoginModel asks for a username and password and looks the user up by name.
//
// The password is collected but never sent; there are no credential checks.
type LoginModel struct {
	ctx      context.Context
	api      services.PromotionAPI
	username textinput.Model
	password textinput.Model
	focus    int
	state    LoginState
	errMsg   string
	spinner  spinner.Model
}

func newInput(placeholder string) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = 100
	in.Width = 40
	in.Cursor.SetMode(cursor.CursorStatic)
	in.PlaceholderStyle = styles.muted
	return in
}

// NewLoginModel builds an idle login form with the username field focused.
func NewLoginModel(ctx context.Context, api services.PromotionAPI) *LoginModel {
	username := newInput("Test McApp")
	username.Focus()

	password := newInput("Enter anything!")
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return &LoginModel{
		ctx:      ctx,
		api:      api,
		username: username,
		password: password,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

func (m *LoginModel) State() LoginState { return m.state }

// Error is the message shown under the form, if any.
func (m *LoginModel) Error() string { return m.errMsg }

func (m *LoginModel) Init() tea.Cmd {
	return nil
}

func (m *LoginModel) Update(msg tea.Msg) (*LoginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeys(msg)

	case spinner.TickMsg:
		if m.state != LoginSubmitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loginResultMsg:
		if msg.err != nil || msg.user == nil {
			m.state = LoginFailed
			m.errMsg = loginFailedMessage
			return m, nil
		}
		m.state = LoginIdle
		m.errMsg = ""
		user := msg.user
		return m, func() tea.Msg { return loggedInMsg{user: user} }
	}
	return m, nil
}

func (m *LoginModel) handleKeys(msg tea.KeyMsg) (*LoginModel, tea.Cmd) {
	if m.state == LoginSubmitting {
		return m, nil
	}

	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		m.setFocus(1 - m.focus)
		return m, nil
	case "enter":
		if m.focus == 0 && m.password.Value() == "" {
			m.setFocus(1)
			return m, nil
		}
		return m, m.submit()
	}

	var cmd tea.Cmd
	if m.focus == 0 {
		m.username, cmd = m.username.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m *LoginModel) setFocus(i int) {
	m.focus = i
	if i == 0 {
		m.username.Focus()
		m.password.Blur()
	} else {
		m.password.Focus()
		m.username.Blur()
	}
}

// submit validates locally and starts the lookup. An empty name never reaches the network.
func (m *LoginModel) submit() tea.Cmd {
	name := strings.TrimSpace(m.username.Value())
	if name == "" {
		m.state = LoginFailed
		m.errMsg = emptyNameMessage
		return nil
	}

	m.state = LoginSubmitting
	m.errMsg = ""
	ctx, api := m.ctx, m.api
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		user, err := api.GetUserByName(ctx, name)
		return loginResultMsg{user: user, err: err}
	})
}

func (m *LoginModel) View() string {
	var b strings.Builder

	b.WriteString(styles.title.Render("Welcome to the Un:Hurd promotion portal"))
	b.WriteString("\n")
	b.WriteString(styles.muted.Render("Sign in to manage your releases"))
	b.WriteString("\n\n")

	b.WriteString(label("Username", m.focus == 0))
	b.WriteString(m.username.View())
	b.WriteString("\n\n")
	b.WriteString(label("Password", m.focus == 1))
	b.WriteString(m.password.View())
	b.WriteString("\n\n")

	if m.errMsg != "" {
		b.WriteString(styles.banner.Render(m.errMsg))
		b.WriteString("\n\n")
	}

	if m.state == LoginSubmitting {
		b.WriteString(fmt.Sprintf("%s Signing in...", m.spinner.View()))
	} else {
		b.WriteString(styles.accent.Render("[ Sign in ]"))
	}
	b.WriteString("\n\n")
	b.WriteString(styles.help.Render("tab switch field • enter sign in • ctrl+c quit"))

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func label(s string, focused bool) string {
	if focused {
		return styles.accent.Render(s) + "\n"
	}
	return styles.muted.Render(s) + "\n"
}
