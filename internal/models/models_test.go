package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTaskStatus(t *testing.T) {
	t.Run("Next cycles through all three states", func(t *testing.T) {
		tests := []struct {
			from TaskStatus
			want TaskStatus
		}{
			{ToDo, InProgress},
			{InProgress, Done},
			{Done, ToDo},
		}

		for _, tt := range tests {
			if got := tt.from.Next(); got != tt.want {
				t.Errorf("%v.Next() = %v, want %v", tt.from, got, tt.want)
			}
		}
	})

	t.Run("Three advances return to the original status", func(t *testing.T) {
		for _, s := range []TaskStatus{ToDo, InProgress, Done} {
			if got := s.Next().Next().Next(); got != s {
				t.Errorf("advancing %v three times = %v", s, got)
			}
		}
	})

	t.Run("Parse", func(t *testing.T) {
		tests := []struct {
			in      string
			want    TaskStatus
			wantErr bool
		}{
			{"todo", ToDo, false},
			{"To Do", ToDo, false},
			{"in-progress", InProgress, false},
			{"In Progress", InProgress, false},
			{"done", Done, false},
			{"2", Done, false},
			{"blocked", 0, true},
		}

		for _, tt := range tests {
			got, err := ParseTaskStatus(tt.in)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseTaskStatus(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
				continue
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseTaskStatus(%q) = %v, want %v", tt.in, got, tt.want)
			}
		}
	})
}

func TestTaskPriority(t *testing.T) {
	t.Run("Raise is clamped at Urgent", func(t *testing.T) {
		if p, ok := Urgent.Raise(); ok || p != Urgent {
			t.Errorf("Urgent.Raise() = %v, %v; want Urgent, false", p, ok)
		}
		if p, ok := Low.Raise(); !ok || p != Medium {
			t.Errorf("Low.Raise() = %v, %v; want Medium, true", p, ok)
		}
	})

	t.Run("Lower is clamped at Low", func(t *testing.T) {
		if p, ok := Low.Lower(); ok || p != Low {
			t.Errorf("Low.Lower() = %v, %v; want Low, false", p, ok)
		}
		if p, ok := Urgent.Lower(); !ok || p != High {
			t.Errorf("Urgent.Lower() = %v, %v; want High, true", p, ok)
		}
	})

	t.Run("Rank is one-based", func(t *testing.T) {
		if Urgent.Rank() != 1 || Low.Rank() != 4 {
			t.Errorf("unexpected ranks: urgent=%d low=%d", Urgent.Rank(), Low.Rank())
		}
	})

	t.Run("Parse", func(t *testing.T) {
		tests := []struct {
			in      string
			want    TaskPriority
			wantErr bool
		}{
			{"high", High, false},
			{"URGENT", Urgent, false},
			{"1", Urgent, false},
			{"4", Low, false},
			{"5", 0, true},
			{"whenever", 0, true},
		}

		for _, tt := range tests {
			got, err := ParseTaskPriority(tt.in)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseTaskPriority(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
				continue
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseTaskPriority(%q) = %v, want %v", tt.in, got, tt.want)
			}
		}
	})
}

func TestReleaseType(t *testing.T) {
	if rt, err := ParseReleaseType("ep"); err != nil || rt != EP {
		t.Errorf("ParseReleaseType(ep) = %v, %v", rt, err)
	}
	if rt, err := ParseReleaseType("3"); err != nil || rt != Mixtape {
		t.Errorf("ParseReleaseType(3) = %v, %v", rt, err)
	}
	if _, err := ParseReleaseType("boxset"); err == nil {
		t.Error("expected error for unknown release type")
	}
}

func TestDate(t *testing.T) {
	t.Run("Decodes API shapes", func(t *testing.T) {
		for _, in := range []string{
			`"2023-05-15"`,
			`"2023-05-15T00:00:00"`,
			`"2023-05-15T00:00:00.1234567"`,
			`"2023-05-15T00:00:00Z"`,
		} {
			var d Date
			if err := json.Unmarshal([]byte(in), &d); err != nil {
				t.Errorf("Unmarshal(%s) error = %v", in, err)
				continue
			}
			if d.Short() != "2023-05-15" {
				t.Errorf("Unmarshal(%s) = %s, want 2023-05-15", in, d.Short())
			}
		}
	})

	t.Run("Null and empty decode to zero", func(t *testing.T) {
		for _, in := range []string{`null`, `""`} {
			d := NewDate(time.Now())
			if err := json.Unmarshal([]byte(in), &d); err != nil {
				t.Fatalf("Unmarshal(%s) error = %v", in, err)
			}
			if !d.IsZero() {
				t.Errorf("Unmarshal(%s) should be zero", in)
			}
		}
	})

	t.Run("Zero marshals to null", func(t *testing.T) {
		data, err := json.Marshal(Date{})
		if err != nil {
			t.Fatalf("Marshal error = %v", err)
		}
		if string(data) != "null" {
			t.Errorf("Marshal(zero) = %s, want null", data)
		}
	})

	t.Run("Rejects garbage", func(t *testing.T) {
		var d Date
		if err := json.Unmarshal([]byte(`"next tuesday"`), &d); err == nil {
			t.Error("expected error for unrecognized date")
		}
	})
}

func TestTaskLists(t *testing.T) {
	tasks := []PromotionTask{
		{TaskID: 1, Priority: Low, Description: "post teaser"},
		{TaskID: 2, Priority: Urgent, Description: "pitch playlists", Status: Done},
		{TaskID: 3, Priority: Medium, Description: "deleted", Deleted: true},
		{TaskID: 4, Priority: Low, Description: "press kit"},
		{TaskID: 5, Priority: High, Description: "radio"},
	}

	t.Run("VisibleTasks drops soft-deleted", func(t *testing.T) {
		visible := VisibleTasks(tasks)
		if len(visible) != 4 {
			t.Fatalf("expected 4 visible tasks, got %d", len(visible))
		}
		for _, task := range visible {
			if task.Deleted {
				t.Errorf("task %d should have been filtered", task.TaskID)
			}
		}
	})

	t.Run("SortByPriority is stable and ascending", func(t *testing.T) {
		visible := VisibleTasks(tasks)
		SortByPriority(visible)

		if !IsSortedByPriority(visible) {
			t.Fatal("tasks are not sorted by priority")
		}

		want := []int{2, 5, 1, 4}
		for i, id := range want {
			if visible[i].TaskID != id {
				t.Errorf("position %d: got task %d, want %d", i, visible[i].TaskID, id)
			}
		}
	})

	t.Run("Release.Tasks filters and sorts", func(t *testing.T) {
		r := Release{PromotionTasks: tasks}
		got := r.Tasks()
		if len(got) != 4 || got[0].TaskID != 2 {
			t.Errorf("unexpected release tasks: %+v", got)
		}
	})

	t.Run("Progress", func(t *testing.T) {
		tests := []struct {
			name    string
			tasks   []PromotionTask
			badge   string
			percent int
		}{
			{"empty", nil, "0 / 0 completed", 0},
			{"none done", []PromotionTask{{}, {}}, "0 / 2 completed", 0},
			{"all done", []PromotionTask{{Status: Done}, {Status: Done}}, "2 / 2 completed", 100},
			{"one of three", []PromotionTask{{Status: Done}, {}, {}}, "1 / 3 completed", 33},
			{"two of three", []PromotionTask{{Status: Done}, {Status: Done}, {}}, "2 / 3 completed", 67},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				p := ProgressOf(tt.tasks)
				if p.Badge() != tt.badge {
					t.Errorf("Badge() = %q, want %q", p.Badge(), tt.badge)
				}
				if p.Percent() != tt.percent {
					t.Errorf("Percent() = %d, want %d", p.Percent(), tt.percent)
				}
			})
		}
	})
}

func TestValidate(t *testing.T) {
	task := PromotionTask{ReleaseID: 1, Description: "   "}
	if err := task.Validate(); err != ErrEmptyDescription {
		t.Errorf("expected ErrEmptyDescription, got %v", err)
	}

	task.Description = "Submit to blogs"
	if err := task.Validate(); err != nil {
		t.Errorf("expected valid task, got %v", err)
	}

	task.ReleaseID = 0
	if err := task.Validate(); err == nil {
		t.Error("expected error for task without release")
	}

	r := Release{Title: "Night Drive", Type: ReleaseType(9)}
	if err := r.Validate(); err == nil {
		t.Error("expected error for invalid release type")
	}

	if got := (&Release{Title: "night drive sessions"}).Initials(); got != "ND" {
		t.Errorf("Initials() = %q, want ND", got)
	}
}

func TestReleaseArt(t *testing.T) {
	tests := []struct {
		name    string
		release Release
		label   string
		hue     float64
	}{
		{"single uses initials", Release{ReleaseID: 1, Title: "Night Drive", Type: Single}, "ND", 137.5},
		{"ep", Release{ReleaseID: 2, Title: "Night Drive", Type: EP}, "EP", 275},
		{"mixtape", Release{ReleaseID: 4, Title: "Tape", Type: Mixtape}, "MIX", 190},
		{"album wraps hue", Release{ReleaseID: 3, Title: "Deep Blue", Type: Album}, "DB", 52.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.release.ArtLabel(); got != tt.label {
				t.Errorf("ArtLabel() = %q, want %q", got, tt.label)
			}
			if got := tt.release.ArtHue(); got != tt.hue {
				t.Errorf("ArtHue() = %v, want %v", got, tt.hue)
			}
		})
	}
}
