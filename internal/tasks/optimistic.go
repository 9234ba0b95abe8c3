package tasks

import (
	"context"

	"github.com/desertthunder/promo/internal/shared"
)

// Kind names the change a [Mutation] makes.
type Kind int

const (
	StatusChange Kind = iota
	PriorityChange
	DescriptionEdit
	SoftDelete
	Creation
)

func (k Kind) String() string {
	switch k {
	case StatusChange:
		return "status_change"
	case PriorityChange:
		return "priority_change"
	case DescriptionEdit:
		return "description_edit"
	case SoftDelete:
		return "soft_delete"
	case Creation:
		return "creation"
	default:
		return ""
	}
}

// Mutation is one optimistic change.
//
// Apply changes local state immediately. Request persists the change and may run on another
// goroutine. Commit runs on success with the request's result and Revert on failure; both run
// on the goroutine that owns the local state, as does Apply.
type Mutation struct {
	ID     string
	Kind   Kind
	TaskID int

	Apply   func()
	Request func(ctx context.Context) (any, error)
	Commit  func(result any)
	Revert  func()
}

// NewMutation returns a mutation with a fresh ID.
func NewMutation(kind Kind, taskID int) *Mutation {
	return &Mutation{ID: shared.GenerateID(), Kind: kind, TaskID: taskID}
}

// Begin applies the local change.
func (m *Mutation) Begin() {
	if m.Apply != nil {
		m.Apply()
	}
}

// Run issues the request. It touches no local state.
func (m *Mutation) Run(ctx context.Context) (any, error) {
	if m.Request == nil {
		return nil, shared.ErrNotImplemented
	}
	return m.Request(ctx)
}

// Settle commits or reverts according to err and returns err unchanged.
func (m *Mutation) Settle(result any, err error) error {
	if err != nil {
		if m.Revert != nil {
			m.Revert()
		}
		return err
	}
	if m.Commit != nil {
		m.Commit(result)
	}
	return nil
}

// Execute runs Begin, Run and Settle in sequence.
func (m *Mutation) Execute(ctx context.Context) error {
	m.Begin()
	result, err := m.Run(ctx)
	return m.Settle(result, err)
}
