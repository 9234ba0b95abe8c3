package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/promo/internal/models"
	"github.com/desertthunder/promo/internal/tasks"
)

const (
	noTasksMessage = "No tasks found for this release"
	confirmMessage = "Delete this task? (y/n)"
)

var confetti = []string{"✦", "✧", "★", "✶", "✷", "✸"}

func statusIcon(s models.TaskStatus) string {
	switch s {
	case models.Done:
		return styles.ok.Render("●")
	case models.InProgress:
		return styles.warn.Render("◐")
	default:
		return styles.muted.Render("○")
	}
}

// cardView is everything needed to draw one release card.
type cardView struct {
	board      *tasks.Board
	selected   bool
	cursorTask int
	editing    int
	confirming int
	adding     bool
	input      string
	bar        progress.Model
	now        time.Time
}

// art draws the placeholder cover: a colored block with the release's label.
func art(r models.Release) string {
	return lipgloss.NewStyle().
		Background(hueColor(r.ArtHue())).
		Foreground(lipgloss.Color("#FFFFFF")).
		Bold(true).
		Width(5).
		Align(lipgloss.Center).
		Render(r.ArtLabel())
}

func renderCard(c cardView) string {
	release := c.board.Release()
	counts := c.board.Progress()

	var b strings.Builder

	header := fmt.Sprintf("%s %s  %s",
		art(release),
		styles.accent.Render(release.Title),
		styles.muted.Render(fmt.Sprintf("%s · %s", release.Type, release.ReleaseDate.Short())),
	)
	b.WriteString(header)
	b.WriteString("\n")

	if release.Description != "" {
		b.WriteString(styles.muted.Render(release.Description))
		b.WriteString("\n")
	}

	arrow := "▸"
	if c.board.Expanded() {
		arrow = "▾"
	}
	b.WriteString(fmt.Sprintf("%s Promotion Tasks", arrow))
	if counts.Total > 0 {
		b.WriteString("  ")
		b.WriteString(styles.muted.Render(counts.Badge()))
		b.WriteString("\n")
		b.WriteString(c.bar.ViewAs(float64(counts.Percent()) / 100))
	}

	if c.board.Expanded() {
		b.WriteString("\n")
		shown := c.board.Shown()
		if len(shown) == 0 {
			b.WriteString(styles.muted.Render("  " + noTasksMessage))
		}
		for i, task := range shown {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(c.renderTask(task))
		}
		if c.adding {
			b.WriteString("\n")
			b.WriteString(c.renderDraft())
		}
	}

	style := styles.card
	if c.selected {
		style = styles.selected
	}
	return style.Render(b.String())
}

func (c cardView) renderTask(task models.PromotionTask) string {
	cursor := "  "
	if task.TaskID == c.cursorTask {
		cursor = styles.accent.Render("› ")
	}

	desc := task.Description
	switch {
	case task.TaskID == c.editing:
		desc = c.input
	case task.Status == models.Done:
		desc = styles.muted.Strikethrough(true).Render(desc)
	}

	raise, lower := styles.muted.Render("▲"), styles.muted.Render("▼")
	if c.board.CanRaise(task.TaskID) {
		raise = styles.accent.Render("▲")
	}
	if c.board.CanLower(task.TaskID) {
		lower = styles.accent.Render("▼")
	}

	line := fmt.Sprintf("%s%s %s  %s%s %s",
		cursor, statusIcon(task.Status), desc, raise, lower,
		styles.muted.Render(fmt.Sprintf("Priority %d", task.Priority.Rank())),
	)

	if cel, ok := c.board.Celebration(task.TaskID); ok {
		frame := cel.Frame(c.now, len(confetti))
		line += " " + styles.warn.Render(strings.Repeat(confetti[frame], 3))
	}
	if task.TaskID == c.confirming {
		line += "\n    " + styles.err.Render(confirmMessage)
	}
	return line
}

func (c cardView) renderDraft() string {
	draft := c.board.Draft()
	if c.board.Submitting() {
		return styles.muted.Render("  Adding task...")
	}
	return fmt.Sprintf("  + %s  %s",
		c.input,
		styles.muted.Render(fmt.Sprintf("Priority %d (%s) · tab to change", draft.Priority.Rank(), draft.Priority)),
	)
}
