package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/auroradesk/aurora/pkg/Logger"
	"github.com/auroradesk/aurora/pkg/assistant/adapters"
	"github.com/auroradesk/aurora/pkg/assistant/router"
)

// maxStepsPerRun bounds a single execution so a bad nextStep cycle can't
// spin forever.
const maxStepsPerRun = 100

const maxSuggestions = 5

// Engine stores workflows and executes them sequentially. Storage is
// in-memory; scheduled runs go through the asynq-backed Scheduler so
// queued work survives restarts even though definitions do not.
type Engine struct {
	logger *Logger.Logger
	mux    *router.Mux // optional, powers AI suggestions

	mu        sync.RWMutex
	workflows map[uuid.UUID]Workflow
	runs      map[uuid.UUID]*Run
}

func NewEngine(mux *router.Mux, logger *Logger.Logger) *Engine {
	return &Engine{
		logger:    logger,
		mux:       mux,
		workflows: make(map[uuid.UUID]Workflow),
		runs:      make(map[uuid.UUID]*Run),
	}
}

// Create validates and stores a new workflow.
func (e *Engine) Create(name, description string, steps []Step, triggerType, cronSpec string) (*Workflow, error) {
	if name == "" {
		return nil, fmt.Errorf("workflow name is required")
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("workflow needs at least one step")
	}
	for i, s := range steps {
		if s.ID == "" || s.Type == "" {
			return nil, fmt.Errorf("step %d is missing id or type", i)
		}
	}
	if triggerType == "" {
		triggerType = TriggerManual
	}
	if triggerType == TriggerScheduled && cronSpec == "" {
		return nil, fmt.Errorf("scheduled workflows need a cron spec")
	}

	now := time.Now()
	wf := Workflow{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		Steps:       steps,
		TriggerType: triggerType,
		CronSpec:    cronSpec,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	e.mu.Lock()
	e.workflows[wf.ID] = wf
	e.mu.Unlock()
	return &wf, nil
}

func (e *Engine) Get(id uuid.UUID) (Workflow, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	wf, ok := e.workflows[id]
	return wf, ok
}

func (e *Engine) List() []Workflow {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Workflow, 0, len(e.workflows))
	for _, wf := range e.workflows {
		out = append(out, wf)
	}
	return out
}

func (e *Engine) Run(id uuid.UUID) (*Run, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	r, ok := e.runs[id]
	return r, ok
}

// Analyze scores complexity, optimizes the step list, and asks the model
// router for improvement suggestions when it is wired in.
func (e *Engine) Analyze(ctx context.Context, steps []Step, reqContext map[string]any) (*Analysis, error) {
	if len(steps) == 0 {
		return nil, fmt.Errorf("nothing to analyze")
	}

	optimized := optimizeSteps(steps)
	analysis := &Analysis{
		WorkflowID:        uuid.New(),
		OptimizedSteps:    optimized,
		EstimatedDuration: estimateDuration(optimized),
		ComplexityScore:   complexityScore(steps),
		Suggestions:       e.aiSuggestions(ctx, steps, reqContext),
	}
	return analysis, nil
}

// Execute runs a stored workflow to completion, chaining steps through
// their nextStep references.
func (e *Engine) Execute(ctx context.Context, id uuid.UUID, params map[string]any) (*ExecutionResult, error) {
	wf, ok := e.Get(id)
	if !ok {
		return nil, fmt.Errorf("workflow %s not found", id)
	}

	run := newRun(id)
	e.mu.Lock()
	e.runs[run.ID] = run
	e.mu.Unlock()

	if err := run.start(ctx); err != nil {
		return nil, err
	}

	execContext := make(map[string]any, len(params)+1)
	for k, v := range params {
		execContext[k] = v
	}
	execContext["workflow_start_time"] = run.StartedAt

	results := make(map[string]any)
	current := &wf.Steps[0]
	stepsExecuted := 0
	truncated := false

	for current != nil {
		stepResult, err := e.executeStep(ctx, *current, execContext)
		if err != nil {
			failErr := fmt.Errorf("step %s: %w", current.ID, err)
			if ferr := run.fail(ctx, failErr); ferr != nil {
				e.logger.Errorf("run %s state transition: %v", run.ID, ferr)
			}
			return nil, failErr
		}
		results[current.ID] = stepResult
		stepsExecuted++

		if stepsExecuted >= maxStepsPerRun {
			e.logger.Warnf("workflow %s exceeded step limit", id)
			truncated = true
			break
		}
		current = nextStep(wf.Steps, *current)
	}

	result := &ExecutionResult{
		WorkflowID:    id,
		RunID:         run.ID,
		Status:        RunCompleted,
		ExecutionSecs: time.Since(run.StartedAt).Seconds(),
		StepsExecuted: stepsExecuted,
		Truncated:     truncated,
		Results:       results,
	}
	if err := run.complete(ctx, result); err != nil {
		e.logger.Errorf("run %s state transition: %v", run.ID, err)
	}
	return result, nil
}

// AnalyzeVoiceCommand maps a spoken request onto one of the known
// workflow templates.
func (e *Engine) AnalyzeVoiceCommand(transcript string) VoiceSuggestion {
	lower := strings.ToLower(transcript)

	workflowType := "automation"
	var steps []Step
	switch {
	case strings.Contains(lower, "backup"):
		workflowType = "backup"
		steps = backupSteps()
	case strings.Contains(lower, "organize") && strings.Contains(lower, "file"):
		workflowType = "file_organization"
		steps = fileOrganizationSteps()
	case strings.Contains(lower, "work setup") || strings.Contains(lower, "start work"):
		workflowType = "work_setup"
		steps = workSetupSteps()
	}

	return VoiceSuggestion{
		WorkflowType:   workflowType,
		SuggestedSteps: steps,
		Confidence:     0.8,
		Entities:       map[string]any{"workflow_type": workflowType},
	}
}

func (e *Engine) executeStep(ctx context.Context, step Step, execContext map[string]any) (any, error) {
	params := resolveParameters(step.Parameters, execContext)

	switch step.Type {
	case StepCommand:
		return map[string]any{"command": step.Action, "parameters": params, "status": "executed"}, nil
	case StepFileOperation:
		return map[string]any{"operation": step.Action, "parameters": params, "status": "executed"}, nil
	case StepAppOperation:
		return map[string]any{"operation": step.Action, "parameters": params, "status": "executed"}, nil
	case StepDelay:
		duration := delaySeconds(params)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(duration * float64(time.Second))):
		}
		return map[string]any{"status": "delayed", "duration": duration}, nil
	default:
		return nil, fmt.Errorf("unknown step type: %s", step.Type)
	}
}

func (e *Engine) aiSuggestions(ctx context.Context, steps []Step, reqContext map[string]any) []string {
	if e.mux == nil {
		return nil
	}

	encoded, err := json.Marshal(steps)
	if err != nil {
		return nil
	}
	req := adapters.Request{
		ID:      uuid.New(),
		Prompt:  fmt.Sprintf("Analyze this workflow with %d steps and suggest improvements: %s", len(steps), encoded),
		Context: reqContext,
	}

	resp, err := e.mux.ProcessRequest(ctx, req)
	if err != nil {
		e.logger.Warnf("AI suggestion generation failed: %v", err)
		return nil
	}

	var suggestions []string
	for _, line := range strings.Split(resp.Text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			suggestions = append(suggestions, line)
		}
		if len(suggestions) == maxSuggestions {
			break
		}
	}
	return suggestions
}

func nextStep(steps []Step, current Step) *Step {
	if current.NextStep == "" {
		return nil
	}
	for i := range steps {
		if steps[i].ID == current.NextStep {
			return &steps[i]
		}
	}
	return nil
}

// resolveParameters substitutes ${key} templates with execution context
// values; unresolved templates pass through untouched.
func resolveParameters(params, execContext map[string]any) map[string]any {
	resolved := make(map[string]any, len(params))
	for key, value := range params {
		if s, ok := value.(string); ok && strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
			contextKey := s[2 : len(s)-1]
			if v, found := execContext[contextKey]; found {
				resolved[key] = v
				continue
			}
		}
		resolved[key] = value
	}
	return resolved
}

func complexityScore(steps []Step) float64 {
	var conditionals, external int
	for _, s := range steps {
		switch s.Type {
		case StepCondition:
			conditionals++
		case StepAppOperation, StepFileOperation:
			external++
		}
	}
	score := float64(len(steps))*0.1 + float64(conditionals)*0.4 + float64(external)*0.5
	if score > 1 {
		score = 1
	}
	// two decimal places, matching the reported precision
	return float64(int(score*100+0.5)) / 100
}

func optimizeSteps(steps []Step) []Step {
	optimized := make([]Step, 0, len(steps))
	for i := 0; i < len(steps); {
		current := steps[i]
		if current.Type == StepFileOperation && i+1 < len(steps) && steps[i+1].Type == StepFileOperation {
			optimized = append(optimized, mergeFileOperations(current, steps[i+1]))
			i += 2
			continue
		}
		optimized = append(optimized, current)
		i++
	}
	return optimized
}

func mergeFileOperations(a, b Step) Step {
	return Step{
		ID:     a.ID + "_merged",
		Type:   StepFileOperation,
		Action: "batch_operation",
		Parameters: map[string]any{
			"operations":  []Step{a, b},
			"description": fmt.Sprintf("Merged %s and %s", a.Action, b.Action),
		},
		NextStep: b.NextStep,
	}
}

func estimateDuration(steps []Step) float64 {
	var total float64
	for _, s := range steps {
		switch s.Type {
		case StepDelay:
			total += delaySeconds(s.Parameters)
		case StepAppOperation:
			total += 2
		case StepFileOperation:
			total += 1
		default:
			total += 0.5
		}
	}
	return total
}

func delaySeconds(params map[string]any) float64 {
	switch v := params["duration"].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 1
}

func backupSteps() []Step {
	return []Step{
		{
			ID: "1", Type: StepFileOperation, Action: "compress",
			Parameters: map[string]any{"source": "${backup_source}", "format": "zip"},
			NextStep:   "2",
		},
		{
			ID: "2", Type: StepFileOperation, Action: "copy",
			Parameters: map[string]any{"source": "${compressed_file}", "destination": "${backup_destination}"},
		},
	}
}

func fileOrganizationSteps() []Step {
	return []Step{
		{
			ID: "1", Type: StepFileOperation, Action: "categorize",
			Parameters: map[string]any{"directory": "${target_directory}", "strategy": "file_type"},
			NextStep:   "2",
		},
		{
			ID: "2", Type: StepFileOperation, Action: "move",
			Parameters: map[string]any{"files": "${categorized_files}", "destination": "${organized_directory}"},
		},
	}
}

func workSetupSteps() []Step {
	return []Step{
		{
			ID: "1", Type: StepAppOperation, Action: "launch",
			Parameters: map[string]any{"app_name": "slack"}, NextStep: "2",
		},
		{
			ID: "2", Type: StepAppOperation, Action: "launch",
			Parameters: map[string]any{"app_name": "vscode"}, NextStep: "3",
		},
		{
			ID: "3", Type: StepAppOperation, Action: "launch",
			Parameters: map[string]any{"app_name": "chrome"},
		},
	}
}
