package workflow

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/looplab/fsm"
)

// Run lifecycle states and events.
const (
	RunPending   = "pending"
	RunRunning   = "running"
	RunCompleted = "completed"
	RunFailed    = "failed"

	evStart    = "start"
	evComplete = "complete"
	evFail     = "fail"
)

// Run tracks the lifecycle of one workflow execution through a state
// machine: pending -> running -> completed|failed.
type Run struct {
	ID         uuid.UUID        `json:"id"`
	WorkflowID uuid.UUID        `json:"workflowId"`
	StartedAt  time.Time        `json:"startedAt"`
	FinishedAt time.Time        `json:"finishedAt,omitempty"`
	Error      string           `json:"error,omitempty"`
	Result     *ExecutionResult `json:"result,omitempty"`

	sm *fsm.FSM
}

func newRun(workflowID uuid.UUID) *Run {
	return &Run{
		ID:         uuid.New(),
		WorkflowID: workflowID,
		sm: fsm.NewFSM(
			RunPending,
			fsm.Events{
				{Name: evStart, Src: []string{RunPending}, Dst: RunRunning},
				{Name: evComplete, Src: []string{RunRunning}, Dst: RunCompleted},
				{Name: evFail, Src: []string{RunRunning}, Dst: RunFailed},
			},
			fsm.Callbacks{},
		),
	}
}

func (r *Run) Status() string { return r.sm.Current() }

func (r *Run) start(ctx context.Context) error {
	r.StartedAt = time.Now()
	return r.sm.Event(ctx, evStart)
}

func (r *Run) complete(ctx context.Context, result *ExecutionResult) error {
	r.FinishedAt = time.Now()
	r.Result = result
	return r.sm.Event(ctx, evComplete)
}

func (r *Run) fail(ctx context.Context, cause error) error {
	r.FinishedAt = time.Now()
	r.Error = cause.Error()
	return r.sm.Event(ctx, evFail)
}
