package tasks

import "time"

// DefaultCelebration is how long the completion effect plays.
const DefaultCelebration = 2 * time.Second

// Celebration is a one-shot timed effect on a task row, evaluated when rendering.
type Celebration struct {
	TaskID   int
	Start    time.Time
	Duration time.Duration
}

// Active reports whether now falls inside the effect's window.
func (c Celebration) Active(now time.Time) bool {
	return !now.Before(c.Start) && now.Sub(c.Start) < c.Duration
}

// Progress is the elapsed fraction in [0, 1].
func (c Celebration) Progress(now time.Time) float64 {
	if c.Duration <= 0 {
		return 1
	}
	elapsed := now.Sub(c.Start)
	switch {
	case elapsed <= 0:
		return 0
	case elapsed >= c.Duration:
		return 1
	}
	return float64(elapsed) / float64(c.Duration)
}

// Frame maps the elapsed time onto one of n animation frames.
func (c Celebration) Frame(now time.Time, n int) int {
	if n <= 1 {
		return 0
	}
	f := int(c.Progress(now) * float64(n))
	if f >= n {
		f = n - 1
	}
	return f
}
