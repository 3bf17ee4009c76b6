package workflow

import (
	"time"

	"github.com/google/uuid"
)

// Step types understood by the executor.
const (
	StepCommand       = "command"
	StepFileOperation = "file_operation"
	StepAppOperation  = "app_operation"
	StepDelay         = "delay"
	StepCondition     = "condition"
)

// Trigger types. Scheduled workflows are registered with the scheduler's
// cron entry; everything else runs on demand.
const (
	TriggerManual    = "manual"
	TriggerVoice     = "voice"
	TriggerScheduled = "scheduled"
)

type Step struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Action     string         `json:"action"`
	Parameters map[string]any `json:"parameters,omitempty"`
	NextStep   string         `json:"nextStep,omitempty"`
}

type Workflow struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Steps       []Step    `json:"steps"`
	TriggerType string    `json:"triggerType"`
	CronSpec    string    `json:"cronSpec,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Analysis is the result of the optimizer pass over a proposed workflow.
type Analysis struct {
	WorkflowID        uuid.UUID `json:"workflowId"`
	OptimizedSteps    []Step    `json:"optimizedSteps"`
	EstimatedDuration float64   `json:"estimatedDuration"` // seconds
	ComplexityScore   float64   `json:"complexityScore"`
	Suggestions       []string  `json:"suggestions"`
}

// ExecutionResult summarizes one finished run. Truncated marks runs the
// step limit cut short before a terminal step was reached.
type ExecutionResult struct {
	WorkflowID    uuid.UUID      `json:"workflowId"`
	RunID         uuid.UUID      `json:"runId"`
	Status        string         `json:"status"`
	ExecutionSecs float64        `json:"executionTime"`
	StepsExecuted int            `json:"stepsExecuted"`
	Truncated     bool           `json:"truncated,omitempty"`
	Results       map[string]any `json:"results"`
}

// VoiceSuggestion maps a spoken request onto a workflow template.
type VoiceSuggestion struct {
	WorkflowType   string         `json:"workflowType"`
	SuggestedSteps []Step         `json:"suggestedSteps"`
	Confidence     float64        `json:"confidence"`
	Entities       map[string]any `json:"entities"`
}
