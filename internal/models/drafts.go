package models

import (
	"fmt"
	"strings"
)

// TaskDraft is the payload for creating a promotion task. New tasks always start as [ToDo].
type TaskDraft struct {
	ReleaseID   int          `json:"releaseId"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	Description string       `json:"description"`
}

// NewTaskDraft returns a draft for releaseID with the default priority.
func NewTaskDraft(releaseID int) TaskDraft {
	return TaskDraft{ReleaseID: releaseID, Status: ToDo, Priority: Medium}
}

// WithDescription returns a copy of d with its description set.
func (d TaskDraft) WithDescription(s string) TaskDraft {
	d.Description = s
	return d
}

// Validate checks the draft before any request is made.
func (d TaskDraft) Validate() error {
	if strings.TrimSpace(d.Description) == "" {
		return ErrEmptyDescription
	}
	if !d.Priority.Valid() {
		return fmt.Errorf("invalid task priority: %d", d.Priority)
	}
	if d.ReleaseID <= 0 {
		return fmt.Errorf("task must belong to a release")
	}
	return nil
}

// ReleaseDraft is the payload for creating a release.
type ReleaseDraft struct {
	UserID      int         `json:"userId"`
	Title       string      `json:"title"`
	Type        ReleaseType `json:"type"`
	ReleaseDate Date        `json:"releaseDate"`
}

// Validate checks the draft before any request is made.
func (d ReleaseDraft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return ErrEmptyTitle
	}
	if !d.Type.Valid() {
		return fmt.Errorf("invalid release type: %d", d.Type)
	}
	if d.UserID <= 0 {
		return fmt.Errorf("release must belong to a user")
	}
	return nil
}

// ReleasePatch is a partial release update; nil fields are left unchanged.
type ReleasePatch struct {
	Title       *string      `json:"title,omitempty"`
	Type        *ReleaseType `json:"type,omitempty"`
	ReleaseDate *Date        `json:"releaseDate,omitempty"`
	Description *string      `json:"description,omitempty"`
	CoverArt    *string      `json:"coverArt,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p ReleasePatch) Empty() bool {
	return p.Title == nil && p.Type == nil && p.ReleaseDate == nil && p.Description == nil && p.CoverArt == nil
}

// ApplyTo copies the set fields onto r.
func (p ReleasePatch) ApplyTo(r *Release) {
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.Type != nil {
		r.Type = *p.Type
	}
	if p.ReleaseDate != nil {
		r.ReleaseDate = *p.ReleaseDate
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.CoverArt != nil {
		r.CoverArt = *p.CoverArt
	}
}
