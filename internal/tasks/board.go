package tasks

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/desertthunder/promo/internal/models"
	"github.com/desertthunder/promo/internal/services"
	"github.com/desertthunder/promo/internal/shared"
)

// Handlers persist board changes. The dashboard supplies them; a nil handler fails the request.
type Handlers struct {
	UpdateStatus   func(ctx context.Context, taskID int, status models.TaskStatus) error
	UpdatePriority func(ctx context.Context, taskID int, priority models.TaskPriority) error
	UpdateTask     func(ctx context.Context, task models.PromotionTask) error
	CreateTask     func(ctx context.Context, draft models.TaskDraft) (*models.PromotionTask, error)
}

// ErrUnconfirmedTask is returned when a create succeeds without echoing a usable task.
// The list cannot place the task until it is reloaded.
var ErrUnconfirmedTask = fmt.Errorf("%w: created task missing from response", shared.ErrAPIRequest)

// HandlersFor builds handlers that call api directly.
func HandlersFor(api services.PromotionAPI) Handlers {
	return Handlers{
		UpdateStatus: func(ctx context.Context, taskID int, status models.TaskStatus) error {
			_, err := api.UpdateTaskStatus(ctx, taskID, status)
			return err
		},
		UpdatePriority: func(ctx context.Context, taskID int, priority models.TaskPriority) error {
			_, err := api.UpdateTaskPriority(ctx, taskID, priority)
			return err
		},
		UpdateTask: func(ctx context.Context, task models.PromotionTask) error {
			_, err := api.UpdateTask(ctx, task)
			return err
		},
		CreateTask: api.CreatePromotionTask,
	}
}

// Board holds one release card's local task list and applies optimistic mutations to it.
//
// The list only ever contains non-deleted tasks sorted ascending by priority. A Board is not
// safe for concurrent use: mutate it from one goroutine (the UI loop) and run only
// [Mutation.Run] elsewhere.
type Board struct {
	release models.Release
	tasks   []models.PromotionTask

	expanded   bool
	adding     bool
	submitting bool
	draft      models.TaskDraft
	confirmID  int

	pending      map[string]*Mutation
	celebrations map[int]Celebration

	handlers    Handlers
	notifier    Notifier
	now         func() time.Time
	celebrateBy time.Duration
}

// BoardOption customizes a [Board].
type BoardOption func(*Board)

// WithNotifier sends the board's notices to n.
func WithNotifier(n Notifier) BoardOption {
	return func(b *Board) { b.notifier = n }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) BoardOption {
	return func(b *Board) { b.now = now }
}

// WithCelebration sets how long completion effects last.
func WithCelebration(d time.Duration) BoardOption {
	return func(b *Board) {
		if d > 0 {
			b.celebrateBy = d
		}
	}
}

// NewBoard builds a board from release, keeping its visible tasks in priority order.
func NewBoard(release models.Release, handlers Handlers, opts ...BoardOption) *Board {
	b := &Board{
		tasks:        release.Tasks(),
		pending:      map[string]*Mutation{},
		celebrations: map[int]Celebration{},
		handlers:     handlers,
		notifier:     NotifierFunc(func(Notice) {}),
		now:          time.Now,
		celebrateBy:  DefaultCelebration,
	}
	release.PromotionTasks = nil
	b.release = release
	b.draft = models.NewTaskDraft(release.ReleaseID)

	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Release returns the card's release without its tasks.
func (b *Board) Release() models.Release {
	return b.release
}

// Tasks returns a copy of the local list.
func (b *Board) Tasks() []models.PromotionTask {
	return slices.Clone(b.tasks)
}

// Shown returns the rows to render: the task list when expanded, nothing when collapsed.
func (b *Board) Shown() []models.PromotionTask {
	if !b.expanded {
		return nil
	}
	return b.Tasks()
}

// Progress counts completed and total tasks from the live list.
func (b *Board) Progress() models.Progress {
	return models.ProgressOf(b.tasks)
}

// Expanded reports whether the task panel is open.
func (b *Board) Expanded() bool { return b.expanded }

// Toggle opens or closes the task panel.
func (b *Board) Toggle() { b.expanded = !b.expanded }

// SetExpanded opens or closes the task panel.
func (b *Board) SetExpanded(v bool) { b.expanded = v }

// Pending is the number of mutations awaiting [Board.Settle].
func (b *Board) Pending() int { return len(b.pending) }

// Task returns the task with id from the local list.
func (b *Board) Task(id int) (models.PromotionTask, bool) {
	task, _, ok := b.find(id)
	return task, ok
}

func (b *Board) find(id int) (models.PromotionTask, int, bool) {
	for i, t := range b.tasks {
		if t.TaskID == id {
			return t, i, true
		}
	}
	return models.PromotionTask{}, -1, false
}

func (b *Board) notify(n Notice) {
	n.At = b.now()
	b.notifier.Notify(n)
}

func (b *Board) missing(id int) error {
	return fmt.Errorf("%w: %d", shared.ErrTaskNotFound, id)
}

// modify edits the task in place and restores priority order.
func (b *Board) modify(id int, fn func(*models.PromotionTask)) {
	for i := range b.tasks {
		if b.tasks[i].TaskID == id {
			fn(&b.tasks[i])
			break
		}
	}
	models.SortByPriority(b.tasks)
}

func (b *Board) remove(id int) {
	b.tasks = slices.DeleteFunc(b.tasks, func(t models.PromotionTask) bool { return t.TaskID == id })
}

// restore puts task back at index, falling back to a sort when that position breaks priority order.
func (b *Board) restore(task models.PromotionTask, index int) {
	b.remove(task.TaskID)
	index = max(0, min(index, len(b.tasks)))
	b.tasks = slices.Insert(b.tasks, index, task)
	if !models.IsSortedByPriority(b.tasks) {
		models.SortByPriority(b.tasks)
	}
}

// revertField undoes a single-field change, leaving the task absent if it disappeared meanwhile.
func (b *Board) revertField(id, index int, fn func(*models.PromotionTask)) {
	current, _, ok := b.find(id)
	if !ok {
		return
	}
	fn(&current)
	b.restore(current, index)
}

// insertSorted adds task after every task of equal or higher precedence.
func (b *Board) insertSorted(task models.PromotionTask) {
	i := slices.IndexFunc(b.tasks, func(t models.PromotionTask) bool { return t.Priority > task.Priority })
	if i < 0 {
		i = len(b.tasks)
	}
	b.tasks = slices.Insert(b.tasks, i, task)
}

func (b *Board) begin(m *Mutation) *Mutation {
	b.pending[m.ID] = m
	m.Begin()
	return m
}

// Settle completes the pending mutation id with the outcome of its request.
//
// It returns err so callers can propagate the failure.
func (b *Board) Settle(id string, result any, err error) error {
	m, ok := b.pending[id]
	if !ok {
		return fmt.Errorf("unknown mutation %s", id)
	}
	delete(b.pending, id)
	return m.Settle(result, err)
}

// Run performs m's request on the calling goroutine and settles it.
func (b *Board) Run(ctx context.Context, m *Mutation) error {
	if m == nil {
		return nil
	}
	result, err := m.Run(ctx)
	return b.Settle(m.ID, result, err)
}

// AdvanceStatus moves a task to its next status. Reaching Done starts a celebration.
func (b *Board) AdvanceStatus(id int) (*Mutation, error) {
	task, index, ok := b.find(id)
	if !ok {
		return nil, b.missing(id)
	}

	prev := task.Status
	next := prev.Next()

	m := NewMutation(StatusChange, id)
	m.Apply = func() {
		b.modify(id, func(t *models.PromotionTask) { t.Status = next })
		if next == models.Done {
			b.celebrate(id)
		}
	}
	m.Request = func(ctx context.Context) (any, error) {
		if b.handlers.UpdateStatus == nil {
			return nil, shared.ErrNotImplemented
		}
		return nil, b.handlers.UpdateStatus(ctx, id, next)
	}
	m.Commit = func(any) {
		b.notify(statusUpdatedNotice(id, next))
	}
	m.Revert = func() {
		b.revertField(id, index, func(t *models.PromotionTask) { t.Status = prev })
		b.DismissCelebration(id)
		b.notify(statusFailedNotice(id))
	}
	return b.begin(m), nil
}

// RaisePriority moves a task one step toward Urgent. It returns a nil mutation at the top.
func (b *Board) RaisePriority(id int) (*Mutation, error) {
	return b.shiftPriority(id, models.TaskPriority.Raise)
}

// LowerPriority moves a task one step toward Low. It returns a nil mutation at the bottom.
func (b *Board) LowerPriority(id int) (*Mutation, error) {
	return b.shiftPriority(id, models.TaskPriority.Lower)
}

// CanRaise and CanLower report whether the controls should be enabled.
func (b *Board) CanRaise(id int) bool {
	task, ok := b.Task(id)
	_, can := task.Priority.Raise()
	return ok && can
}

func (b *Board) CanLower(id int) bool {
	task, ok := b.Task(id)
	_, can := task.Priority.Lower()
	return ok && can
}

func (b *Board) shiftPriority(id int, shift func(models.TaskPriority) (models.TaskPriority, bool)) (*Mutation, error) {
	task, index, ok := b.find(id)
	if !ok {
		return nil, b.missing(id)
	}

	prev := task.Priority
	next, changed := shift(prev)
	if !changed {
		return nil, nil
	}

	m := NewMutation(PriorityChange, id)
	m.Apply = func() {
		b.modify(id, func(t *models.PromotionTask) { t.Priority = next })
	}
	m.Request = func(ctx context.Context) (any, error) {
		if b.handlers.UpdatePriority == nil {
			return nil, shared.ErrNotImplemented
		}
		return nil, b.handlers.UpdatePriority(ctx, id, next)
	}
	m.Commit = func(any) {
		b.notify(priorityUpdatedNotice(id, next))
	}
	m.Revert = func() {
		b.revertField(id, index, func(t *models.PromotionTask) { t.Priority = prev })
		b.notify(priorityFailedNotice(id))
	}
	return b.begin(m), nil
}

// EditDescription replaces a task's description. Unchanged text returns a nil mutation and
// empty text is rejected before any request.
func (b *Board) EditDescription(id int, text string) (*Mutation, error) {
	task, index, ok := b.find(id)
	if !ok {
		return nil, b.missing(id)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		b.notify(emptyDescriptionNotice(DescriptionEdit, id))
		return nil, models.ErrEmptyDescription
	}
	if text == task.Description {
		return nil, nil
	}

	prev := task.Description
	updated := task
	updated.Description = text

	m := NewMutation(DescriptionEdit, id)
	m.Apply = func() {
		b.modify(id, func(t *models.PromotionTask) { t.Description = text })
	}
	m.Request = func(ctx context.Context) (any, error) {
		if b.handlers.UpdateTask == nil {
			return nil, shared.ErrNotImplemented
		}
		return nil, b.handlers.UpdateTask(ctx, updated)
	}
	m.Commit = func(any) {
		b.notify(descriptionUpdatedNotice(id))
	}
	m.Revert = func() {
		b.revertField(id, index, func(t *models.PromotionTask) { t.Description = prev })
		b.notify(descriptionFailedNotice(id))
	}
	return b.begin(m), nil
}

// RequestDelete marks a task as awaiting confirmation. Nothing is removed yet.
func (b *Board) RequestDelete(id int) error {
	if _, _, ok := b.find(id); !ok {
		return b.missing(id)
	}
	b.confirmID = id
	return nil
}

// AwaitingConfirmation returns the task id pending delete confirmation, or 0.
func (b *Board) AwaitingConfirmation() int {
	return b.confirmID
}

// CancelDelete drops a pending confirmation.
func (b *Board) CancelDelete() {
	b.confirmID = 0
}

// ConfirmDelete soft-deletes the task passed to [Board.RequestDelete].
//
// The task leaves the list at once and is sent as a whole-task update with its deleted flag
// set. A failed request puts it back at its prior position.
func (b *Board) ConfirmDelete() (*Mutation, error) {
	id := b.confirmID
	if id == 0 {
		return nil, shared.ErrNotConfirmed
	}
	b.confirmID = 0

	task, index, ok := b.find(id)
	if !ok {
		return nil, b.missing(id)
	}

	deleted := task
	deleted.Deleted = true

	m := NewMutation(SoftDelete, id)
	m.Apply = func() {
		b.remove(id)
		b.DismissCelebration(id)
	}
	m.Request = func(ctx context.Context) (any, error) {
		if b.handlers.UpdateTask == nil {
			return nil, shared.ErrNotImplemented
		}
		return nil, b.handlers.UpdateTask(ctx, deleted)
	}
	m.Commit = func(any) {
		b.notify(deletedNotice(id))
	}
	m.Revert = func() {
		if _, _, present := b.find(id); !present {
			b.restore(task, index)
		}
		b.notify(deleteFailedNotice(id))
	}
	return b.begin(m), nil
}

// Adding reports whether the add-task form is open.
func (b *Board) Adding() bool { return b.adding }

// Submitting reports whether a create request is in flight.
func (b *Board) Submitting() bool { return b.submitting }

// Draft returns the add-task form contents.
func (b *Board) Draft() models.TaskDraft { return b.draft }

// OpenDraft shows the add-task form.
func (b *Board) OpenDraft() { b.adding = true }

// CancelDraft clears and hides the add-task form.
func (b *Board) CancelDraft() {
	b.adding = false
	b.draft = models.NewTaskDraft(b.release.ReleaseID)
}

// SetDraftDescription updates the draft text.
func (b *Board) SetDraftDescription(s string) { b.draft.Description = s }

// SetDraftPriority updates the draft priority.
func (b *Board) SetDraftPriority(p models.TaskPriority) {
	if p.Valid() {
		b.draft.Priority = p
	}
}

// Create submits the draft. Nothing is shown until the server answers; on success the
// returned task is inserted in priority order and the form is cleared and hidden.
func (b *Board) Create() (*Mutation, error) {
	if b.submitting {
		return nil, nil
	}

	draft := b.draft
	draft.ReleaseID = b.release.ReleaseID
	draft.Status = models.ToDo
	draft.Description = strings.TrimSpace(draft.Description)
	if err := draft.Validate(); err != nil {
		b.notify(emptyDescriptionNotice(Creation, 0))
		return nil, err
	}

	m := NewMutation(Creation, 0)
	m.Apply = func() {
		b.submitting = true
	}
	m.Request = func(ctx context.Context) (any, error) {
		if b.handlers.CreateTask == nil {
			return nil, shared.ErrNotImplemented
		}
		task, err := b.handlers.CreateTask(ctx, draft)
		if err != nil {
			return nil, err
		}
		if task == nil || task.TaskID == 0 || task.Deleted {
			return nil, ErrUnconfirmedTask
		}
		return task, nil
	}
	m.Commit = func(result any) {
		b.submitting = false
		if task, ok := result.(*models.PromotionTask); ok && task != nil {
			b.insertSorted(*task)
			b.notify(createdNotice(task))
		}
		b.CancelDraft()
	}
	m.Revert = func() {
		b.submitting = false
		b.notify(createFailedNotice())
	}
	return b.begin(m), nil
}

func (b *Board) celebrate(id int) {
	b.celebrations[id] = Celebration{TaskID: id, Start: b.now(), Duration: b.celebrateBy}
}

// Celebration returns the task's effect while it is still playing.
func (b *Board) Celebration(id int) (Celebration, bool) {
	c, ok := b.celebrations[id]
	if !ok {
		return Celebration{}, false
	}
	if !c.Active(b.now()) {
		delete(b.celebrations, id)
		return Celebration{}, false
	}
	return c, true
}

// Celebrating reports whether any effect is still playing.
func (b *Board) Celebrating() bool {
	now := b.now()
	for id, c := range b.celebrations {
		if c.Active(now) {
			return true
		}
		delete(b.celebrations, id)
	}
	return false
}

// DismissCelebration ends a task's effect early.
func (b *Board) DismissCelebration(id int) {
	delete(b.celebrations, id)
}
