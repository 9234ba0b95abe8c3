// Package ui implements the interactive terminal client using bubbletea's Elm architecture.
//
// The app shell ([Model]) has two routes:
//  1. [LoginRoute] : [LoginModel] looks the user up by name
//  2. [DashboardRoute] : [DashboardModel] shows the user's releases as cards
//
// [Guard] keeps unauthenticated users on the login view and sends a restored session straight to
// the dashboard. Logging in and out goes through [session.Manager].
//
// Each release card is drawn from a [tasks.Board]. Key presses apply optimistic changes on the
// Update loop; the API request runs as a tea.Cmd and its settledMsg commits or reverts the change.
// Toasts and completion celebrations are redrawn by a frame ticker while they are visible.
package ui
