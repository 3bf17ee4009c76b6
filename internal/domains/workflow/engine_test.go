package workflow

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/auroradesk/aurora/pkg/Logger"
)

func testEngine() *Engine {
	return NewEngine(nil, Logger.New(true))
}

func TestCreateValidation(t *testing.T) {
	e := testEngine()

	if _, err := e.Create("", "", []Step{{ID: "1", Type: StepCommand}}, "", ""); err == nil {
		t.Error("expected error for empty name")
	}
	if _, err := e.Create("wf", "", nil, "", ""); err == nil {
		t.Error("expected error for empty steps")
	}
	if _, err := e.Create("wf", "", []Step{{Type: StepCommand}}, "", ""); err == nil {
		t.Error("expected error for step without id")
	}
	if _, err := e.Create("wf", "", []Step{{ID: "1", Type: StepCommand}}, TriggerScheduled, ""); err == nil {
		t.Error("expected error for scheduled workflow without cron spec")
	}

	wf, err := e.Create("wf", "desc", []Step{{ID: "1", Type: StepCommand, Action: "noop"}}, "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wf.TriggerType != TriggerManual {
		t.Errorf("expected default trigger manual, got %s", wf.TriggerType)
	}
	if _, ok := e.Get(wf.ID); !ok {
		t.Error("created workflow not retrievable")
	}
}

func TestExecuteChainsSteps(t *testing.T) {
	e := testEngine()
	wf, err := e.Create("chain", "", []Step{
		{ID: "1", Type: StepCommand, Action: "first", NextStep: "2"},
		{ID: "2", Type: StepFileOperation, Action: "second"},
	}, "", "")
	if err != nil {
		t.Fatal(err)
	}

	result, err := e.Execute(context.Background(), wf.ID, nil)
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if result.StepsExecuted != 2 {
		t.Errorf("expected 2 steps executed, got %d", result.StepsExecuted)
	}
	if result.Status != RunCompleted {
		t.Errorf("expected completed status, got %s", result.Status)
	}
	if result.Truncated {
		t.Error("clean finish should not be marked truncated")
	}
	if _, ok := result.Results["1"]; !ok {
		t.Error("missing result for step 1")
	}
	if _, ok := result.Results["2"]; !ok {
		t.Error("missing result for step 2")
	}

	run, ok := e.Run(result.RunID)
	if !ok {
		t.Fatal("run not stored")
	}
	if run.Status() != RunCompleted {
		t.Errorf("expected run state completed, got %s", run.Status())
	}
}

func TestExecuteResolvesTemplates(t *testing.T) {
	e := testEngine()
	wf, err := e.Create("templated", "", []Step{
		{ID: "1", Type: StepFileOperation, Action: "copy", Parameters: map[string]any{
			"source":  "${src}",
			"keep_as": "${missing}",
			"literal": "plain",
		}},
	}, "", "")
	if err != nil {
		t.Fatal(err)
	}

	result, err := e.Execute(context.Background(), wf.ID, map[string]any{"src": "/tmp/a"})
	if err != nil {
		t.Fatal(err)
	}

	stepResult := result.Results["1"].(map[string]any)
	params := stepResult["parameters"].(map[string]any)
	if params["source"] != "/tmp/a" {
		t.Errorf("expected resolved source, got %v", params["source"])
	}
	if params["keep_as"] != "${missing}" {
		t.Errorf("unresolved template should pass through, got %v", params["keep_as"])
	}
	if params["literal"] != "plain" {
		t.Errorf("literal parameter changed: %v", params["literal"])
	}
}

func TestExecuteUnknownStepTypeFailsRun(t *testing.T) {
	e := testEngine()
	wf, err := e.Create("broken", "", []Step{
		{ID: "1", Type: "teleport", Action: "zap"},
	}, "", "")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := e.Execute(context.Background(), wf.ID, nil); err == nil {
		t.Fatal("expected error for unknown step type")
	}

	// The stored run should have transitioned to failed.
	var failedRun *Run
	e.mu.RLock()
	for _, r := range e.runs {
		failedRun = r
	}
	e.mu.RUnlock()
	if failedRun == nil || failedRun.Status() != RunFailed {
		t.Errorf("expected failed run state, got %+v", failedRun)
	}
}

func TestExecuteStopsAtStepLimit(t *testing.T) {
	e := testEngine()
	wf, err := e.Create("cycle", "", []Step{
		{ID: "1", Type: StepCommand, Action: "loop", NextStep: "1"},
	}, "", "")
	if err != nil {
		t.Fatal(err)
	}

	result, err := e.Execute(context.Background(), wf.ID, nil)
	if err != nil {
		t.Fatalf("cyclic workflow should stop, not error: %v", err)
	}
	if result.StepsExecuted != maxStepsPerRun {
		t.Errorf("expected %d steps before cutoff, got %d", maxStepsPerRun, result.StepsExecuted)
	}
	if !result.Truncated {
		t.Error("cut-off run should be marked truncated")
	}
}

func TestComplexityScore(t *testing.T) {
	simple := []Step{
		{ID: "1", Type: StepCommand},
		{ID: "2", Type: StepCommand},
	}
	if got := complexityScore(simple); got != 0.2 {
		t.Errorf("expected 0.2 for two commands, got %v", got)
	}

	heavy := []Step{
		{ID: "1", Type: StepCondition},
		{ID: "2", Type: StepFileOperation},
		{ID: "3", Type: StepAppOperation},
	}
	if got := complexityScore(heavy); got != 1 {
		t.Errorf("expected clamp at 1, got %v", got)
	}
}

func TestOptimizeMergesConsecutiveFileOperations(t *testing.T) {
	steps := []Step{
		{ID: "1", Type: StepFileOperation, Action: "copy", NextStep: "2"},
		{ID: "2", Type: StepFileOperation, Action: "move", NextStep: "3"},
		{ID: "3", Type: StepCommand, Action: "notify"},
	}

	optimized := optimizeSteps(steps)
	if len(optimized) != 2 {
		t.Fatalf("expected 2 steps after merge, got %d", len(optimized))
	}
	merged := optimized[0]
	if merged.ID != "1_merged" || merged.Action != "batch_operation" {
		t.Errorf("unexpected merged step: %+v", merged)
	}
	if merged.NextStep != "3" {
		t.Errorf("merged step should chain to 3, got %q", merged.NextStep)
	}
}

func TestAnalyzeWithoutRouter(t *testing.T) {
	e := testEngine()
	steps := []Step{
		{ID: "1", Type: StepDelay, Parameters: map[string]any{"duration": 3.0}, NextStep: "2"},
		{ID: "2", Type: StepAppOperation, Action: "launch"},
	}

	analysis, err := e.Analyze(context.Background(), steps, nil)
	if err != nil {
		t.Fatal(err)
	}
	if analysis.EstimatedDuration != 5 {
		t.Errorf("expected 5s estimate, got %v", analysis.EstimatedDuration)
	}
	if len(analysis.Suggestions) != 0 {
		t.Errorf("no router wired, suggestions should be empty: %v", analysis.Suggestions)
	}
	if _, err := e.Analyze(context.Background(), nil, nil); err == nil {
		t.Error("expected error for empty step list")
	}
}

func TestAnalyzeVoiceCommandTemplates(t *testing.T) {
	e := testEngine()

	cases := []struct {
		transcript string
		wantType   string
		wantSteps  int
	}{
		{"please backup my documents", "backup", 2},
		{"organize my file folders", "file_organization", 2},
		{"start work for the day", "work_setup", 3},
		{"do something else entirely", "automation", 0},
	}
	for _, tc := range cases {
		got := e.AnalyzeVoiceCommand(tc.transcript)
		if got.WorkflowType != tc.wantType {
			t.Errorf("%q: expected type %s, got %s", tc.transcript, tc.wantType, got.WorkflowType)
		}
		if len(got.SuggestedSteps) != tc.wantSteps {
			t.Errorf("%q: expected %d steps, got %d", tc.transcript, tc.wantSteps, len(got.SuggestedSteps))
		}
		if got.Confidence != 0.8 {
			t.Errorf("%q: expected confidence 0.8, got %v", tc.transcript, got.Confidence)
		}
	}
}

func TestRunLifecycle(t *testing.T) {
	run := newRun(uuid.New())
	if run.Status() != RunPending {
		t.Fatalf("new run should be pending, got %s", run.Status())
	}

	ctx := context.Background()
	if err := run.start(ctx); err != nil {
		t.Fatal(err)
	}
	if run.Status() != RunRunning {
		t.Errorf("expected running, got %s", run.Status())
	}

	// completing twice is an invalid transition
	if err := run.complete(ctx, &ExecutionResult{}); err != nil {
		t.Fatal(err)
	}
	if err := run.complete(ctx, &ExecutionResult{}); err == nil {
		t.Error("expected invalid transition error on double complete")
	}
}
