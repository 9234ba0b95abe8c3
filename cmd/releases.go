package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/promo/internal/formatter"
	"github.com/desertthunder/promo/internal/models"
	"github.com/desertthunder/promo/internal/shared"
	"github.com/desertthunder/promo/internal/tasks"
	"github.com/urfave/cli/v3"
)

// idArg parses a positional id argument.
func idArg(cmd *cli.Command, name string) (int, error) {
	raw := strings.TrimSpace(cmd.StringArg(name))
	if raw == "" {
		return 0, fmt.Errorf("%w: %s", shared.ErrMissingArgument, name)
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", shared.ErrInvalidArgument, name, raw)
	}
	return id, nil
}

// userTree fetches the logged-in user with releases and tasks nested.
func (r *Runner) userTree(ctx context.Context) (*models.User, error) {
	user, err := r.currentUser()
	if err != nil {
		return nil, err
	}
	return r.client(ctx).GetUserByID(ctx, user.UserID)
}

// findRelease returns the visible release id of user.
func findRelease(user *models.User, id int) (models.Release, error) {
	for _, release := range user.VisibleReleases() {
		if release.ReleaseID == id {
			return release, nil
		}
	}
	return models.Release{}, fmt.Errorf("%w: %d", shared.ErrReleaseNotFound, id)
}

func (r *Runner) ReleasesList(ctx context.Context, cmd *cli.Command) error {
	user, err := r.userTree(ctx)
	if err != nil {
		return err
	}

	releases := user.VisibleReleases()
	return r.emit(releases, func() error {
		if len(releases) == 0 {
			return r.writePlain("No releases found. Create your first release to get started!\n")
		}

		r.writePlainHeader(fmt.Sprintf("Releases for %s", user.Name))
		for _, release := range releases {
			progress := models.ProgressOf(release.Tasks())
			r.writePlain("%4d  %-28s %-8s %s  %s\n",
				release.ReleaseID, release.Title, release.Type, release.ReleaseDate.Short(), progress.Badge())
		}
		return nil
	})
}

func (r *Runner) ReleasesShow(ctx context.Context, cmd *cli.Command) error {
	id, err := idArg(cmd, "id")
	if err != nil {
		return err
	}

	user, err := r.userTree(ctx)
	if err != nil {
		return err
	}
	release, err := findRelease(user, id)
	if err != nil {
		return err
	}

	export := formatter.NewReleaseExport(release)
	return r.emit(export, func() error {
		return formatter.Write(r.output, export, formatter.Text)
	})
}

// releaseFlags reads the shared release flags; only flags the user set end up in the patch.
func releaseFlags(cmd *cli.Command) (models.ReleasePatch, error) {
	var patch models.ReleasePatch

	if cmd.IsSet("title") {
		title := strings.TrimSpace(cmd.String("title"))
		patch.Title = &title
	}
	if cmd.IsSet("type") {
		t, err := models.ParseReleaseType(cmd.String("type"))
		if err != nil {
			return patch, fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
		}
		patch.Type = &t
	}
	if cmd.IsSet("date") {
		d, err := models.ParseDate(cmd.String("date"))
		if err != nil {
			return patch, fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
		}
		patch.ReleaseDate = &d
	}
	if cmd.IsSet("description") {
		s := cmd.String("description")
		patch.Description = &s
	}
	if cmd.IsSet("cover") {
		s := cmd.String("cover")
		patch.CoverArt = &s
	}
	return patch, nil
}

func (r *Runner) ReleasesCreate(ctx context.Context, cmd *cli.Command) error {
	user, err := r.currentUser()
	if err != nil {
		return err
	}

	patch, err := releaseFlags(cmd)
	if err != nil {
		return err
	}

	draft := models.ReleaseDraft{UserID: user.UserID, Type: models.Single}
	if patch.Title != nil {
		draft.Title = *patch.Title
	}
	if patch.Type != nil {
		draft.Type = *patch.Type
	}
	if patch.ReleaseDate != nil {
		draft.ReleaseDate = *patch.ReleaseDate
	}
	if err := draft.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	release, err := r.client(ctx).CreateRelease(ctx, draft)
	if err != nil {
		return err
	}

	return r.emit(release, func() error {
		return r.writePlain("✓ Created release %d: %s (%s)\n", release.ReleaseID, release.Title, release.Type)
	})
}

func (r *Runner) ReleasesUpdate(ctx context.Context, cmd *cli.Command) error {
	id, err := idArg(cmd, "id")
	if err != nil {
		return err
	}
	if _, err := r.currentUser(); err != nil {
		return err
	}

	patch, err := releaseFlags(cmd)
	if err != nil {
		return err
	}
	if patch.Empty() {
		return fmt.Errorf("%w: nothing to update", shared.ErrMissingArgument)
	}
	if patch.Title != nil && *patch.Title == "" {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, models.ErrEmptyTitle)
	}

	if err := r.client(ctx).UpdateRelease(ctx, id, patch); err != nil {
		return err
	}
	return r.writePlain("✓ Updated release %d\n", id)
}

func (r *Runner) ReleasesDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := idArg(cmd, "id")
	if err != nil {
		return err
	}
	if !cmd.Bool("yes") {
		return fmt.Errorf("%w: pass --yes to delete release %d", shared.ErrNotConfirmed, id)
	}
	if _, err := r.currentUser(); err != nil {
		return err
	}

	if err := r.client(ctx).DeleteRelease(ctx, id); err != nil {
		return err
	}
	return r.writePlain("✓ Deleted release %d\n", id)
}

// ReleasesExport writes a release's visible tasks to a file or stdout.
func (r *Runner) ReleasesExport(ctx context.Context, cmd *cli.Command) error {
	id, err := idArg(cmd, "id")
	if err != nil {
		return err
	}
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	user, err := r.userTree(ctx)
	if err != nil {
		return err
	}
	release, err := findRelease(user, id)
	if err != nil {
		return err
	}
	export := formatter.NewReleaseExport(release)

	if dir := cmd.String("dir"); dir != "" || (format == formatter.Markdown && cmd.Bool("cover")) {
		result, err := formatter.WriteMarkdownExport(export, dir, cmd.Bool("cover"))
		if err != nil {
			return err
		}
		r.logger.Info("markdown export written", "dir", result.Directory, "files", len(result.Files))
		for _, f := range result.Files {
			r.writePlain("✓ Wrote %s\n", f)
		}
		return nil
	}

	output := cmd.String("output")
	if output == "-" {
		return formatter.Write(r.output, export, format)
	}

	path, err := formatter.WriteExport(export, format, output)
	if err != nil {
		return err
	}
	r.logger.Info("export written", "release", id, "format", format, "path", path)
	return r.writePlain("✓ Exported %s to %s\n", export.Progress.Badge(), path)
}

// ReleasesExportAll exports every visible release concurrently and prints progress as it goes.
func (r *Runner) ReleasesExportAll(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	user, err := r.userTree(ctx)
	if err != nil {
		return err
	}
	releases := user.VisibleReleases()

	progressCh := make(chan tasks.ProgressUpdate, len(releases)+2)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.ExportStart:
				r.writePlain("📦 %s\n", update.Message)
			case tasks.ExportRelease:
				r.writePlain("   %s\n", update.Message)
			case tasks.ExportManifest:
				r.writePlain("📝 %s\n", update.Message)
			}
		}
	}()

	result, err := tasks.BulkExport(ctx, progressCh, releases, tasks.BulkExportOpts{
		Format:     format,
		OutputDir:  cmd.String("dir"),
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  r.config.API.RateLimit,
		WithCover:  cmd.Bool("cover"),
	})
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	r.logger.Info("bulk export finished", "dir", result.OutputDirectory,
		"ok", result.SuccessfulExports, "failed", result.FailedExports)
	r.writePlainHeader("Export Complete!")
	r.writePlain("Directory: %s\n", result.OutputDirectory)
	r.writePlain("Exported: %d/%d\n", result.SuccessfulExports, result.TotalReleases)
	if result.FailedExports > 0 {
		return fmt.Errorf("%d of %d releases failed to export", result.FailedExports, result.TotalReleases)
	}
	return nil
}
