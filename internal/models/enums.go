package models

import (
	"fmt"
	"strconv"
	"strings"
)

// ReleaseType is the closed set of release formats.
type ReleaseType int

const (
	Single ReleaseType = iota
	EP
	Album
	Mixtape
)

func (t ReleaseType) String() string {
	switch t {
	case Single:
		return "Single"
	case EP:
		return "EP"
	case Album:
		return "Album"
	case Mixtape:
		return "Mixtape"
	default:
		return "Unknown"
	}
}

// Valid reports whether t is one of the known release types.
func (t ReleaseType) Valid() bool {
	return t >= Single && t <= Mixtape
}

// ParseReleaseType accepts a release type name (case-insensitive) or its numeric value.
func ParseReleaseType(s string) (ReleaseType, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if t := ReleaseType(n); t.Valid() {
			return t, nil
		}
		return 0, fmt.Errorf("unknown release type: %s", s)
	}

	for t := Single; t <= Mixtape; t++ {
		if strings.EqualFold(t.String(), s) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown release type: %s", s)
}

// TaskStatus is the three-state promotion task lifecycle.
//
// The only transition is [TaskStatus.Next]: ToDo → InProgress → Done → ToDo.
type TaskStatus int

const (
	ToDo TaskStatus = iota
	InProgress
	Done
)

// Next returns the status that follows s in the cycle.
func (s TaskStatus) Next() TaskStatus {
	switch s {
	case ToDo:
		return InProgress
	case InProgress:
		return Done
	default:
		return ToDo
	}
}

func (s TaskStatus) String() string {
	switch s {
	case Done:
		return "Done"
	case InProgress:
		return "In Progress"
	default:
		return "To Do"
	}
}

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	return s >= ToDo && s <= Done
}

// ParseTaskStatus accepts "todo", "in-progress", "done" (with common spellings) or the numeric value.
func ParseTaskStatus(s string) (TaskStatus, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "", "-", "", "_", "").Replace(norm)

	switch norm {
	case "todo", "0":
		return ToDo, nil
	case "inprogress", "doing", "1":
		return InProgress, nil
	case "done", "complete", "completed", "2":
		return Done, nil
	}
	return 0, fmt.Errorf("unknown task status: %s", s)
}

// TaskPriority orders promotion tasks; lower values sort first.
//
// Urgent is the minimum value and Low the maximum.
type TaskPriority int

const (
	Urgent TaskPriority = iota
	High
	Medium
	Low
)

const (
	MinPriority = Urgent
	MaxPriority = Low
)

func (p TaskPriority) String() string {
	switch p {
	case Urgent:
		return "Urgent"
	case High:
		return "High"
	case Medium:
		return "Medium"
	case Low:
		return "Low"
	default:
		return "Unknown"
	}
}

// Rank is the 1-based position shown to users ("Priority 1" is Urgent).
func (p TaskPriority) Rank() int {
	return int(p) + 1
}

// Valid reports whether p is within [MinPriority, MaxPriority].
func (p TaskPriority) Valid() bool {
	return p >= MinPriority && p <= MaxPriority
}

// Raise moves p one step toward Urgent. ok is false when p is already Urgent.
func (p TaskPriority) Raise() (TaskPriority, bool) {
	if p <= MinPriority {
		return p, false
	}
	return p - 1, true
}

// Lower moves p one step toward Low. ok is false when p is already Low.
func (p TaskPriority) Lower() (TaskPriority, bool) {
	if p >= MaxPriority {
		return p, false
	}
	return p + 1, true
}

// ParseTaskPriority accepts a priority name (case-insensitive) or its 1-based rank.
func ParseTaskPriority(s string) (TaskPriority, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if p := TaskPriority(n - 1); p.Valid() {
			return p, nil
		}
		return 0, fmt.Errorf("priority rank out of range: %s", s)
	}

	for p := MinPriority; p <= MaxPriority; p++ {
		if strings.EqualFold(p.String(), s) {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown task priority: %s", s)
}
