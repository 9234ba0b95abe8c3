package models

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
)

var (
	ErrEmptyDescription = errors.New("task description is required")
	ErrEmptyTitle       = errors.New("release title is required")
	ErrEmptyName        = errors.New("user name is required")
)

// User is an account holder. Releases are only populated by the by-id lookup.
type User struct {
	UserID         int       `json:"userId" yaml:"userId"`
	Name           string    `json:"name" yaml:"name"`
	CreatedDate    Date      `json:"createdDate" yaml:"createdDate"`
	LastActiveDate Date      `json:"lastActiveDate" yaml:"lastActiveDate"`
	Deleted        bool      `json:"deleted" yaml:"deleted"`
	Releases       []Release `json:"releases,omitempty" yaml:"releases,omitempty"`
}

// Validate checks the fields a user must carry.
func (u *User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

// VisibleReleases returns the user's releases that are not soft-deleted.
func (u *User) VisibleReleases() []Release {
	out := make([]Release, 0, len(u.Releases))
	for _, r := range u.Releases {
		if !r.Deleted {
			out = append(out, r)
		}
	}
	return out
}

// Release is a musical work that promotion tasks attach to.
type Release struct {
	ReleaseID      int             `json:"releaseId" yaml:"releaseId"`
	UserID         int             `json:"userId" yaml:"userId"`
	Title          string          `json:"title" yaml:"title"`
	Type           ReleaseType     `json:"type" yaml:"type"`
	ReleaseDate    Date            `json:"releaseDate" yaml:"releaseDate"`
	Description    string          `json:"description,omitempty" yaml:"description,omitempty"`
	CoverArt       string          `json:"coverArt,omitempty" yaml:"coverArt,omitempty"`
	Deleted        bool            `json:"deleted" yaml:"deleted"`
	PromotionTasks []PromotionTask `json:"promotionTasks,omitempty" yaml:"promotionTasks,omitempty"`
}

// Validate checks the fields a release must carry.
func (r *Release) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return ErrEmptyTitle
	}
	if !r.Type.Valid() {
		return fmt.Errorf("invalid release type: %d", r.Type)
	}
	return nil
}

// Tasks returns the release's visible tasks sorted by priority.
func (r *Release) Tasks() []PromotionTask {
	tasks := VisibleTasks(r.PromotionTasks)
	SortByPriority(tasks)
	return tasks
}

// Initials returns up to two leading letters of the title, used as placeholder art.
func (r *Release) Initials() string {
	var b strings.Builder
	for _, word := range strings.Fields(r.Title) {
		b.WriteString(strings.ToUpper(string([]rune(word)[0])))
		if b.Len() >= 2 {
			break
		}
	}
	return b.String()
}

// ArtLabel is the text shown on placeholder cover art: "EP" and "MIX" for those formats,
// the title initials otherwise.
func (r *Release) ArtLabel() string {
	switch r.Type {
	case EP:
		return "EP"
	case Mixtape:
		return "MIX"
	default:
		return r.Initials()
	}
}

// ArtHue spreads placeholder colors around the color wheel by release id.
func (r *Release) ArtHue() float64 {
	return math.Mod(float64(r.ReleaseID)*137.5, 360)
}

// PromotionTask is a unit of promotion work tracked against a release.
//
// Release is a non-owning back reference occasionally returned by the API.
type PromotionTask struct {
	TaskID      int          `json:"taskId" yaml:"taskId"`
	ReleaseID   int          `json:"releaseId" yaml:"releaseId"`
	Release     *Release     `json:"release,omitempty" yaml:"-"`
	Status      TaskStatus   `json:"status" yaml:"status"`
	Priority    TaskPriority `json:"priority" yaml:"priority"`
	Description string       `json:"description" yaml:"description"`
	DueDate     *Date        `json:"dueDate,omitempty" yaml:"dueDate,omitempty"`
	Deleted     bool         `json:"deleted" yaml:"deleted"`
}

// Validate checks a task before it is sent to the API.
func (t *PromotionTask) Validate() error {
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if !t.Status.Valid() {
		return fmt.Errorf("invalid task status: %d", t.Status)
	}
	if !t.Priority.Valid() {
		return fmt.Errorf("invalid task priority: %d", t.Priority)
	}
	if t.ReleaseID <= 0 {
		return fmt.Errorf("task must belong to a release")
	}
	return nil
}

// VisibleTasks returns the tasks whose soft-delete flag is unset.
func VisibleTasks(tasks []PromotionTask) []PromotionTask {
	out := make([]PromotionTask, 0, len(tasks))
	for _, t := range tasks {
		if !t.Deleted {
			out = append(out, t)
		}
	}
	return out
}

// SortByPriority stable-sorts tasks ascending by priority value in place.
func SortByPriority(tasks []PromotionTask) {
	slices.SortStableFunc(tasks, func(a, b PromotionTask) int {
		return int(a.Priority) - int(b.Priority)
	})
}

// IsSortedByPriority reports whether tasks is in ascending priority order.
func IsSortedByPriority(tasks []PromotionTask) bool {
	return slices.IsSortedFunc(tasks, func(a, b PromotionTask) int {
		return int(a.Priority) - int(b.Priority)
	})
}

// Progress summarizes completion of a task list.
type Progress struct {
	Completed int
	Total     int
}

// ProgressOf counts the tasks that are Done.
func ProgressOf(tasks []PromotionTask) Progress {
	p := Progress{Total: len(tasks)}
	for _, t := range tasks {
		if t.Status == Done {
			p.Completed++
		}
	}
	return p
}

// Percent is round(completed/total*100), 0 for an empty list.
func (p Progress) Percent() int {
	if p.Total == 0 {
		return 0
	}
	return int(math.Round(float64(p.Completed) / float64(p.Total) * 100))
}

// Badge renders the "{completed} / {total} completed" counter.
func (p Progress) Badge() string {
	return fmt.Sprintf("%d / %d completed", p.Completed, p.Total)
}
