// package formatter exports a release and its promotion tasks to various formats (CSV, Markdown, plain text, JSON, YAML)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/promo/internal/models"
	"github.com/desertthunder/promo/internal/shared"
)

// Format is an export file format.
type Format string

const (
	CSV      Format = "csv"
	Markdown Format = "markdown"
	Text     Format = "text"
	JSON     Format = "json"
	YAML     Format = "yaml"
)

// ParseFormat accepts a format name or its usual file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return CSV, nil
	case "markdown", "md":
		return Markdown, nil
	case "text", "txt", "":
		return Text, nil
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	}
	return "", fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, s)
}

// Extension is the file suffix used for f.
func (f Format) Extension() string {
	switch f {
	case Markdown:
		return "md"
	case Text:
		return "txt"
	default:
		return string(f)
	}
}

// ReleaseExport is a release with its visible tasks in priority order.
type ReleaseExport struct {
	Release  models.Release         `json:"release" yaml:"release"`
	Tasks    []models.PromotionTask `json:"tasks" yaml:"tasks"`
	Progress models.Progress        `json:"progress" yaml:"progress"`
}

// NewReleaseExport drops soft-deleted tasks and sorts the rest by priority.
func NewReleaseExport(release models.Release) *ReleaseExport {
	tasks := release.Tasks()
	release.PromotionTasks = nil
	return &ReleaseExport{Release: release, Tasks: tasks, Progress: models.ProgressOf(tasks)}
}

func dueDate(t models.PromotionTask) string {
	if t.DueDate == nil {
		return ""
	}
	return t.DueDate.Short()
}

// ExportToCSV converts a ReleaseExport to CSV format with columns: ID, Description, Status, Priority, Due Date
func ExportToCSV(export *ReleaseExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Description", "Status", "Priority", "Due Date"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, task := range export.Tasks {
		record := []string{
			strconv.Itoa(task.TaskID),
			task.Description,
			task.Status.String(),
			strconv.Itoa(task.Priority.Rank()),
			dueDate(task),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a ReleaseExport to a Markdown checklist with optional cover image
func ExportToMarkdown(export *ReleaseExport, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer
	r := export.Release

	buf.WriteString(fmt.Sprintf("# %s\n\n", r.Title))

	if imageFilename != "" {
		buf.WriteString(fmt.Sprintf("![Cover](%s)\n\n", imageFilename))
	}

	if r.Description != "" {
		buf.WriteString(fmt.Sprintf("**Description**: %s\n\n", r.Description))
	}

	buf.WriteString(fmt.Sprintf("**Type**: %s\n", r.Type))
	buf.WriteString(fmt.Sprintf("**Release date**: %s\n", r.ReleaseDate.Short()))
	buf.WriteString(fmt.Sprintf("**Progress**: %s (%d%%)\n\n", export.Progress.Badge(), export.Progress.Percent()))

	buf.WriteString("## Promotion Tasks\n\n")
	if len(export.Tasks) == 0 {
		buf.WriteString("_No tasks found for this release_\n")
	}
	for _, task := range export.Tasks {
		check := " "
		if task.Status == models.Done {
			check = "x"
		}
		due := ""
		if d := dueDate(task); d != "" {
			due = fmt.Sprintf(", due %s", d)
		}
		buf.WriteString(fmt.Sprintf("- [%s] %s (Priority %d, %s%s)\n", check, task.Description, task.Priority.Rank(), task.Status, due))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a ReleaseExport to plain text format
func ExportToText(export *ReleaseExport) ([]byte, error) {
	var buf bytes.Buffer
	r := export.Release

	buf.WriteString(fmt.Sprintf("Release: %s (%s)\n", r.Title, r.Type))
	if r.Description != "" {
		buf.WriteString(fmt.Sprintf("Description: %s\n", r.Description))
	}
	buf.WriteString(fmt.Sprintf("Tasks: %s\n\n", export.Progress.Badge()))

	for i, task := range export.Tasks {
		buf.WriteString(fmt.Sprintf("%d. [%s] %s (Priority %d)\n", i+1, task.Status, task.Description, task.Priority.Rank()))
	}

	return buf.Bytes(), nil
}

// Render encodes export in format f. Markdown is rendered without a cover image.
func Render(export *ReleaseExport, f Format) ([]byte, error) {
	switch f {
	case CSV:
		return ExportToCSV(export)
	case Markdown:
		return ExportToMarkdown(export, "")
	case Text:
		return ExportToText(export)
	case JSON:
		return shared.MarshalJSON(export, true)
	case YAML:
		return shared.MarshalYAML(export)
	}
	return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, f)
}

// Write renders export and writes it to w.
func Write(w io.Writer, export *ReleaseExport, f Format) error {
	data, err := Render(export, f)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// DefaultFilename is {release_id}_tasks.{ext}.
func DefaultFilename(export *ReleaseExport, f Format) string {
	return fmt.Sprintf("%d_tasks.%s", export.Release.ReleaseID, f.Extension())
}

// WriteExport renders export to a file. Defaults to [DefaultFilename].
func WriteExport(export *ReleaseExport, f Format, path string) (string, error) {
	if path == "" {
		path = DefaultFilename(export, f)
	}

	data, err := Render(export, f)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", f, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", f, err)
	}
	return path, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
}

// WriteMarkdownExport exports a release to Markdown format in a dedicated directory.
//
// Directory name defaults to release-{id}. When withCover is set and the release has cover art,
// the image is downloaded next to the README; a failed download only drops the image.
func WriteMarkdownExport(export *ReleaseExport, outputDir string, withCover bool) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = fmt.Sprintf("release-%d", export.Release.ReleaseID)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	var coverImageFilename string
	if withCover && export.Release.CoverArt != "" {
		imageData, err := DownloadImage(export.Release.CoverArt)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to download cover image: %v\n", err)
		} else {
			coverImageFilename = "cover.jpg"
			coverImagePath := filepath.Join(outputDir, coverImageFilename)
			if err := os.WriteFile(coverImagePath, imageData, 0644); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to save cover image: %v\n", err)
				coverImageFilename = ""
			} else {
				result.CoverImage = coverImagePath
				result.Files = append(result.Files, coverImagePath)
			}
		}
	}

	mdData, err := ExportToMarkdown(export, coverImageFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)

	return result, nil
}
