// Package tasks applies optimistic changes to a release's promotion tasks and reports their outcome.
//
// # Boards
//
// A [Board] owns one release card's local task list. The list holds only non-deleted tasks and
// is kept sorted ascending by priority (Urgent first) after every change. A board also tracks
// the card's UI state: expanded or collapsed, the add-task draft, and a pending delete
// confirmation.
//
// # Mutations
//
// Every change is a [Mutation]:
//
//  1. Apply edits the local list at once
//  2. Request calls the API (see [Handlers] and [HandlersFor])
//  3. Commit runs on success; Revert runs on failure and restores the prior value
//
// Board methods such as [Board.AdvanceStatus] and [Board.RaisePriority] build the mutation and
// apply it before returning. Callers run [Mutation.Run] off the UI loop and hand the result to
// [Board.Settle] back on it. [Board.Run] does both in one call for the CLI and tests.
//
// Revert restores only the field the mutation changed, so concurrent changes to the same task
// resolve as last-write-wins. Task creation is not optimistic: the task appears only once the
// server returns it.
//
// # Notices
//
// Each settled mutation emits one [Notice] through the board's [Notifier]. [Latest] keeps the
// most recent notice for a toast, [ChannelNotifier] forwards without blocking, and [NoticeLog]
// records everything.
//
// # Celebrations
//
// Marking a task Done starts a short [Celebration]. It is cancelled when the change is reverted
// or the task is deleted.
//
// # Bulk export
//
// [BulkExport] writes many releases at once with a small worker pool, sending [ProgressUpdate]
// values without blocking and finishing with an export_manifest.json summary.
package tasks
