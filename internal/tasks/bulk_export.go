package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/promo/internal/formatter"
	"github.com/desertthunder/promo/internal/models"
	"github.com/desertthunder/promo/internal/shared"
	"golang.org/x/time/rate"
)

const (
	defaultExportWorkers = 4
	maxExportWorkers     = 10
	ManifestFilename     = "export_manifest.json"
)

// BulkExportOpts contains configuration for exporting many releases at once.
type BulkExportOpts struct {
	Format     formatter.Format // Export format; Markdown writes one directory per release
	OutputDir  string           // Base output directory (default: promo_export_{epoch})
	NumWorkers int              // Concurrent workers (default: 4, max: 10)
	RateLimit  float64          // Cover downloads per second; 0 disables throttling
	WithCover  bool             // Download cover art for Markdown exports
}

// ReleaseExportResult is the outcome for one release.
type ReleaseExportResult struct {
	ReleaseID    int      `json:"releaseId"`
	Title        string   `json:"title"`
	Success      bool     `json:"success"`
	Files        []string `json:"files,omitempty"`
	Error        error    `json:"-"`
	ErrorMessage string   `json:"error,omitempty"`
}

// BulkExportResult summarizes a bulk export and is written as the manifest.
type BulkExportResult struct {
	Format            formatter.Format      `json:"format"`
	OutputDirectory   string                `json:"outputDirectory"`
	TotalReleases     int                   `json:"totalReleases"`
	SuccessfulExports int                   `json:"successfulExports"`
	FailedExports     int                   `json:"failedExports"`
	Results           []ReleaseExportResult `json:"results"`
	ManifestPath      string                `json:"-"`
}

// BulkExport writes every release to its own file under opts.OutputDir using a worker pool,
// reports progress on prog and finishes with a JSON manifest.
//
// A failed release is recorded in the result and does not stop the others.
func BulkExport(ctx context.Context, prog chan<- ProgressUpdate, releases []models.Release, opts BulkExportOpts) (*BulkExportResult, error) {
	if opts.Format == "" {
		opts.Format = formatter.JSON
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("promo_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = defaultExportWorkers
	}
	if opts.NumWorkers > maxExportWorkers {
		opts.NumWorkers = maxExportWorkers
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		Format:          opts.Format,
		OutputDirectory: opts.OutputDir,
		TotalReleases:   len(releases),
		Results:         make([]ReleaseExportResult, 0, len(releases)),
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	jobs := make(chan models.Release, len(releases))
	results := make(chan ReleaseExportResult, len(releases))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go exportWorker(ctx, &wg, jobs, results, limiter, opts)
	}

	sendProgress(prog, exportStartUpdate(len(releases), opts.OutputDir))
	for _, release := range releases {
		jobs <- release
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		if res.Success {
			result.SuccessfulExports++
			sendProgress(prog, exportCompletedUpdate(completed, len(releases), res))
		} else {
			result.FailedExports++
			res.ErrorMessage = res.Error.Error()
			sendProgress(prog, exportFailedUpdate(completed, len(releases), res))
		}
		result.Results = append(result.Results, res)
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	manifestPath := filepath.Join(opts.OutputDir, ManifestFilename)
	data, err := shared.MarshalJSON(result, true)
	if err != nil {
		return result, fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(manifestPath, data, 0644); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	sendProgress(prog, manifestUpdate(manifestPath))
	return result, nil
}

// exportWorker exports releases from jobs until it is closed or ctx is done.
func exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan models.Release,
	results chan<- ReleaseExportResult,
	limiter *rate.Limiter,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for release := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		results <- exportRelease(ctx, release, limiter, opts)
	}
}

func exportRelease(ctx context.Context, release models.Release, limiter *rate.Limiter, opts BulkExportOpts) ReleaseExportResult {
	result := ReleaseExportResult{ReleaseID: release.ReleaseID, Title: release.Title, Files: []string{}}
	export := formatter.NewReleaseExport(release)

	if opts.Format == formatter.Markdown {
		withCover := opts.WithCover && release.CoverArt != ""
		if withCover && limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				result.Error = err
				return result
			}
		}

		dir := filepath.Join(opts.OutputDir, fmt.Sprintf("release-%d", release.ReleaseID))
		md, err := formatter.WriteMarkdownExport(export, dir, withCover)
		if err != nil {
			result.Error = fmt.Errorf("markdown export failed: %w", err)
			return result
		}
		result.Files = md.Files
		result.Success = true
		return result
	}

	path := filepath.Join(opts.OutputDir, formatter.DefaultFilename(export, opts.Format))
	written, err := formatter.WriteExport(export, opts.Format, path)
	if err != nil {
		result.Error = fmt.Errorf("%s export failed: %w", opts.Format, err)
		return result
	}
	result.Files = []string{written}
	result.Success = true
	return result
}
