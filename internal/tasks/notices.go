package tasks

import (
	"fmt"
	"sync"
	"time"

	"github.com/desertthunder/promo/internal/models"
)

// Level classifies a [Notice].
type Level int

const (
	Success Level = iota
	Failure
	Info
)

func (l Level) String() string {
	switch l {
	case Success:
		return "success"
	case Failure:
		return "error"
	default:
		return "info"
	}
}

// Notice is a short-lived message for the user, shown as a toast.
type Notice struct {
	Level   Level
	Kind    Kind
	TaskID  int
	Message string
	At      time.Time
}

// Notifier receives notices. Implementations must not block.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to [Notifier].
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// ChannelNotifier forwards notices to a channel, dropping them when it is full.
type ChannelNotifier struct {
	ch chan<- Notice
}

// NewChannelNotifier wraps ch.
func NewChannelNotifier(ch chan<- Notice) *ChannelNotifier {
	return &ChannelNotifier{ch: ch}
}

func (c *ChannelNotifier) Notify(n Notice) {
	select {
	case c.ch <- n:
	default:
	}
}

// NoticeLog records every notice in order.
type NoticeLog struct {
	mu      sync.Mutex
	notices []Notice
}

func (l *NoticeLog) Notify(n Notice) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.notices = append(l.notices, n)
}

// All returns a copy of the recorded notices.
func (l *NoticeLog) All() []Notice {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Notice, len(l.notices))
	copy(out, l.notices)
	return out
}

// Last returns the most recent notice.
func (l *NoticeLog) Last() (Notice, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.notices) == 0 {
		return Notice{}, false
	}
	return l.notices[len(l.notices)-1], true
}

// Latest keeps only the newest notice and reports it while it is fresh.
type Latest struct {
	mu     sync.Mutex
	notice *Notice
	ttl    time.Duration
}

// NewLatest returns a sink whose notice expires after ttl.
func NewLatest(ttl time.Duration) *Latest {
	return &Latest{ttl: ttl}
}

func (l *Latest) Notify(n Notice) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.notice = &n
}

// Current returns the newest notice if it is younger than the ttl at now.
func (l *Latest) Current(now time.Time) (Notice, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.notice == nil || now.Sub(l.notice.At) >= l.ttl {
		return Notice{}, false
	}
	return *l.notice, true
}

// Multi fans a notice out to several notifiers.
type Multi []Notifier

func (m Multi) Notify(n Notice) {
	for _, notifier := range m {
		if notifier != nil {
			notifier.Notify(n)
		}
	}
}

func statusUpdatedNotice(taskID int, status models.TaskStatus) Notice {
	return Notice{
		Level:   Success,
		Kind:    StatusChange,
		TaskID:  taskID,
		Message: fmt.Sprintf("Task status updated to %s", status),
	}
}

func statusFailedNotice(taskID int) Notice {
	return Notice{Level: Failure, Kind: StatusChange, TaskID: taskID, Message: "Failed to update task status"}
}

func priorityUpdatedNotice(taskID int, priority models.TaskPriority) Notice {
	return Notice{
		Level:   Success,
		Kind:    PriorityChange,
		TaskID:  taskID,
		Message: fmt.Sprintf("Task priority updated to %d", priority.Rank()),
	}
}

func priorityFailedNotice(taskID int) Notice {
	return Notice{Level: Failure, Kind: PriorityChange, TaskID: taskID, Message: "Failed to update task priority"}
}

func descriptionUpdatedNotice(taskID int) Notice {
	return Notice{Level: Success, Kind: DescriptionEdit, TaskID: taskID, Message: "Task updated"}
}

func descriptionFailedNotice(taskID int) Notice {
	return Notice{Level: Failure, Kind: DescriptionEdit, TaskID: taskID, Message: "Failed to update task"}
}

func deletedNotice(taskID int) Notice {
	return Notice{Level: Success, Kind: SoftDelete, TaskID: taskID, Message: "Task deleted"}
}

func deleteFailedNotice(taskID int) Notice {
	return Notice{Level: Failure, Kind: SoftDelete, TaskID: taskID, Message: "Failed to delete task"}
}

func createdNotice(task *models.PromotionTask) Notice {
	n := Notice{Level: Success, Kind: Creation, Message: "Task created"}
	if task != nil {
		n.TaskID = task.TaskID
	}
	return n
}

func createFailedNotice() Notice {
	return Notice{Level: Failure, Kind: Creation, Message: "Failed to create task"}
}

func emptyDescriptionNotice(kind Kind, taskID int) Notice {
	return Notice{Level: Failure, Kind: kind, TaskID: taskID, Message: "Task description cannot be empty"}
}
