package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/promo/internal/models"
	"github.com/desertthunder/promo/internal/shared"
	"github.com/desertthunder/promo/internal/tasks"
	"github.com/urfave/cli/v3"
)

// taskView is the output shape of tasks list.
type taskView struct {
	Release  models.Release         `json:"release" yaml:"release"`
	Progress models.Progress        `json:"progress" yaml:"progress"`
	Tasks    []models.PromotionTask `json:"tasks" yaml:"tasks"`
}

// boardFor loads the logged-in user's releases and returns a board for the release that holds
// taskID, or for releaseID when taskID is zero.
func (r *Runner) boardFor(ctx context.Context, releaseID, taskID int) (*tasks.Board, *tasks.NoticeLog, error) {
	user, err := r.userTree(ctx)
	if err != nil {
		return nil, nil, err
	}

	notices := &tasks.NoticeLog{}
	opts := []tasks.BoardOption{
		tasks.WithNotifier(notices),
		tasks.WithCelebration(r.config.UI.CelebrationDuration()),
	}
	api := r.client(ctx)

	if taskID == 0 {
		release, err := findRelease(user, releaseID)
		if err != nil {
			return nil, nil, err
		}
		return tasks.NewBoard(release, tasks.HandlersFor(api), opts...), notices, nil
	}

	for _, release := range user.VisibleReleases() {
		board := tasks.NewBoard(release, tasks.HandlersFor(api), opts...)
		if _, ok := board.Task(taskID); ok {
			return board, notices, nil
		}
	}
	return nil, nil, fmt.Errorf("%w: %d", shared.ErrTaskNotFound, taskID)
}

// settle runs m against the API and reports the board's last notice.
func (r *Runner) settle(ctx context.Context, board *tasks.Board, notices *tasks.NoticeLog, m *tasks.Mutation) error {
	if m == nil {
		return r.writePlain("Nothing to change\n")
	}

	err := board.Run(ctx, m)
	notice, ok := notices.Last()
	if err != nil {
		if ok {
			r.logger.Error(notice.Message, "task", notice.TaskID, "error", err)
		}
		return err
	}

	task, _ := board.Task(m.TaskID)
	return r.emit(task, func() error {
		if ok {
			return r.writePlain("✓ %s\n", notice.Message)
		}
		return nil
	})
}

func (r *Runner) TasksList(ctx context.Context, cmd *cli.Command) error {
	user, err := r.userTree(ctx)
	if err != nil {
		return err
	}

	releases := user.VisibleReleases()
	if id := int(cmd.Int("release")); id != 0 {
		release, err := findRelease(user, id)
		if err != nil {
			return err
		}
		releases = []models.Release{release}
	}

	views := make([]taskView, 0, len(releases))
	for _, release := range releases {
		visible := release.Tasks()
		release.PromotionTasks = nil
		views = append(views, taskView{Release: release, Progress: models.ProgressOf(visible), Tasks: visible})
	}

	return r.emit(views, func() error {
		for _, v := range views {
			r.writePlainHeader(fmt.Sprintf("%s (%s)  %s", v.Release.Title, v.Release.Type, v.Progress.Badge()))
			if len(v.Tasks) == 0 {
				r.writePlain("No tasks found for this release\n")
			}
			for _, t := range v.Tasks {
				r.writePlain("%4d  %-11s Priority %d  %s\n", t.TaskID, t.Status, t.Priority.Rank(), t.Description)
			}
			r.writePlain("\n")
		}
		return nil
	})
}

func (r *Runner) TasksAdd(ctx context.Context, cmd *cli.Command) error {
	description := strings.TrimSpace(cmd.StringArg("description"))
	if description == "" {
		return fmt.Errorf("%w: description", shared.ErrMissingArgument)
	}
	priority, err := models.ParseTaskPriority(cmd.String("priority"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	board, notices, err := r.boardFor(ctx, int(cmd.Int("release")), 0)
	if err != nil {
		return err
	}

	board.OpenDraft()
	board.SetDraftDescription(description)
	board.SetDraftPriority(priority)

	m, err := board.Create()
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	if err := board.Run(ctx, m); err != nil {
		return err
	}

	notice, _ := notices.Last()
	created, _ := board.Task(notice.TaskID)
	return r.emit(created, func() error {
		return r.writePlain("✓ %s (task %d, Priority %d)\n", notice.Message, created.TaskID, created.Priority.Rank())
	})
}

func (r *Runner) TasksStatus(ctx context.Context, cmd *cli.Command) error {
	id, err := idArg(cmd, "id")
	if err != nil {
		return err
	}

	board, notices, err := r.boardFor(ctx, 0, id)
	if err != nil {
		return err
	}

	m, err := board.AdvanceStatus(id)
	if err != nil {
		return err
	}
	return r.settle(ctx, board, notices, m)
}

func (r *Runner) TasksPriority(ctx context.Context, cmd *cli.Command) error {
	id, err := idArg(cmd, "id")
	if err != nil {
		return err
	}

	up, down := cmd.Bool("up"), cmd.Bool("down")
	if up == down {
		return fmt.Errorf("%w: pass exactly one of --up or --down", shared.ErrInvalidArgument)
	}

	board, notices, err := r.boardFor(ctx, 0, id)
	if err != nil {
		return err
	}

	var m *tasks.Mutation
	if up {
		m, err = board.RaisePriority(id)
	} else {
		m, err = board.LowerPriority(id)
	}
	if err != nil {
		return err
	}
	return r.settle(ctx, board, notices, m)
}

func (r *Runner) TasksEdit(ctx context.Context, cmd *cli.Command) error {
	id, err := idArg(cmd, "id")
	if err != nil {
		return err
	}

	board, notices, err := r.boardFor(ctx, 0, id)
	if err != nil {
		return err
	}

	m, err := board.EditDescription(id, cmd.String("description"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	return r.settle(ctx, board, notices, m)
}

func (r *Runner) TasksDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := idArg(cmd, "id")
	if err != nil {
		return err
	}
	if !cmd.Bool("yes") {
		return fmt.Errorf("%w: pass --yes to delete task %d", shared.ErrNotConfirmed, id)
	}

	board, notices, err := r.boardFor(ctx, 0, id)
	if err != nil {
		return err
	}

	if err := board.RequestDelete(id); err != nil {
		return err
	}
	m, err := board.ConfirmDelete()
	if err != nil {
		return err
	}
	if err := board.Run(ctx, m); err != nil {
		return err
	}

	notice, _ := notices.Last()
	return r.writePlain("✓ %s\n", notice.Message)
}
