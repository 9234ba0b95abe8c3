package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ExportStart Phase = iota
	ExportRelease
	ExportManifest
)

func (p Phase) String() string {
	switch p {
	case ExportStart:
		return "export_start"
	case ExportRelease:
		return "export_release"
	case ExportManifest:
		return "export_manifest"
	default:
		return ""
	}
}

// sendProgress sends without blocking; a full or nil channel drops the update.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func exportStartUpdate(total int, dir string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportStart,
		Total:   total,
		Message: fmt.Sprintf("Exporting %d releases to %s...", total, dir),
	}
}

func exportCompletedUpdate(step, total int, res ReleaseExportResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportRelease,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, res.Title, len(res.Files)),
		Data:    res,
	}
}

func exportFailedUpdate(step, total int, res ReleaseExportResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportRelease,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, res.Title, res.Error),
		Data:    res,
	}
}

func manifestUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportManifest,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Manifest written to %s", path),
	}
}
