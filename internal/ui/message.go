package ui

import (
	"time"

	"github.com/desertthunder/promo/internal/models"
	"github.com/desertthunder/promo/internal/tasks"
)

// loginResultMsg carries the outcome of the name lookup started by the login view.
type loginResultMsg struct {
	user *models.User
	err  error
}

// loggedInMsg asks the app shell to persist user and open the dashboard.
type loggedInMsg struct {
	user *models.User
}

// loggedOutMsg asks the app shell to clear the session and return to login.
type loggedOutMsg struct{}

// userLoadedMsg carries the dashboard's user-with-releases fetch.
type userLoadedMsg struct {
	user *models.User
	err  error
}

// settledMsg reports a finished mutation request back to the UI loop.
type settledMsg struct {
	releaseID  int
	mutationID string
	kind       tasks.Kind
	result     any
	err        error
}

// frameMsg redraws animations (celebrations and toasts).
type frameMsg time.Time

// artOpenedMsg reports the result of opening a release's cover art.
type artOpenedMsg struct {
	err error
}
