// Package models defines the promotion tracker's domain entities as the REST API serializes them.
//
// The entity tree is strictly owned:
//   - [User] : account holder; the by-id lookup embeds its releases
//   - [Release] : a single, EP, album or mixtape with its promotion tasks
//   - [PromotionTask] : one unit of promotion work with a [TaskStatus] and a [TaskPriority]
//
// Nothing is hard-deleted from the client's point of view. Releases and tasks carry a soft-delete flag and
// [VisibleTasks] filters them out before display.
//
// [TaskStatus] is a three-state cycle advanced only through [TaskStatus.Next].
// [TaskPriority] runs from [Urgent] (0) to [Low] (3); lists are kept in ascending priority order with [SortByPriority].
package models
