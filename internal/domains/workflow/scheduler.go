package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/auroradesk/aurora/pkg/Logger"
)

// Job type handled by the worker mux.
const TypeWorkflowExecute = "workflow:execute"

// JobPayload is the data carried by a queued workflow execution.
type JobPayload struct {
	WorkflowID uuid.UUID      `json:"workflow_id"`
	Parameters map[string]any `json:"parameters,omitempty"`
	EnqueuedAt time.Time      `json:"enqueued_at"`
}

// SchedulerConfig holds the asynq wiring for the workflow queue.
type SchedulerConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Concurrency   int
	Queues        map[string]int
}

// AsynqScheduler runs workflows off a Redis-backed queue. Deferred runs
// go through Enqueue; scheduled workflows get a cron entry per CronSpec.
type AsynqScheduler struct {
	client    *asynq.Client
	server    *asynq.Server
	scheduler *asynq.Scheduler
	mux       *asynq.ServeMux
	engine    *Engine
	logger    *Logger.Logger
}

func NewAsynqScheduler(config SchedulerConfig, engine *Engine, logger *Logger.Logger) *AsynqScheduler {
	redisOpt := asynq.RedisClientOpt{
		Addr:     config.RedisAddr,
		Password: config.RedisPassword,
		DB:       config.RedisDB,
	}

	if config.Concurrency <= 0 {
		config.Concurrency = 4
	}
	if config.Queues == nil {
		config.Queues = map[string]int{"default": 1}
	}

	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: config.Concurrency,
		Queues:      config.Queues,
		Logger:      NewAsynqLogger(logger),
	})

	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
		Logger: NewAsynqLogger(logger),
	})

	s := &AsynqScheduler{
		client:    asynq.NewClient(redisOpt),
		server:    server,
		scheduler: scheduler,
		mux:       asynq.NewServeMux(),
		engine:    engine,
		logger:    logger,
	}
	s.mux.HandleFunc(TypeWorkflowExecute, s.handleExecute)
	return s
}

// Enqueue queues a workflow run with an optional delay.
func (s *AsynqScheduler) Enqueue(ctx context.Context, workflowID uuid.UUID, params map[string]any, delay time.Duration) error {
	payload, err := json.Marshal(JobPayload{
		WorkflowID: workflowID,
		Parameters: params,
		EnqueuedAt: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal job payload: %w", err)
	}

	task := asynq.NewTask(TypeWorkflowExecute, payload)
	info, err := s.client.EnqueueContext(ctx, task, asynq.ProcessIn(delay))
	if err != nil {
		return fmt.Errorf("failed to enqueue workflow: %w", err)
	}

	s.logger.Infof("Queued workflow %s (queue: %s, id: %s)", workflowID, info.Queue, info.ID)
	return nil
}

// RegisterCron registers a cron entry for a scheduled workflow.
func (s *AsynqScheduler) RegisterCron(wf Workflow) error {
	if wf.TriggerType != TriggerScheduled || wf.CronSpec == "" {
		return fmt.Errorf("workflow %s has no schedule", wf.ID)
	}

	payload, err := json.Marshal(JobPayload{WorkflowID: wf.ID, EnqueuedAt: time.Now()})
	if err != nil {
		return fmt.Errorf("failed to marshal job payload: %w", err)
	}

	entryID, err := s.scheduler.Register(wf.CronSpec, asynq.NewTask(TypeWorkflowExecute, payload))
	if err != nil {
		return fmt.Errorf("failed to register cron entry: %w", err)
	}

	s.logger.Infof("Registered cron %q for workflow %s (entry: %s)", wf.CronSpec, wf.ID, entryID)
	return nil
}

// Start launches the worker server and the cron scheduler.
func (s *AsynqScheduler) Start() error {
	go func() {
		if err := s.server.Run(s.mux); err != nil {
			s.logger.Errorf("Asynq server error: %v", err)
		}
	}()
	go func() {
		if err := s.scheduler.Run(); err != nil {
			s.logger.Errorf("Asynq scheduler error: %v", err)
		}
	}()
	s.logger.Info("Workflow scheduler started")
	return nil
}

// Shutdown stops the workers and closes the queue client.
func (s *AsynqScheduler) Shutdown() {
	s.scheduler.Shutdown()
	s.server.Shutdown()
	if err := s.client.Close(); err != nil {
		s.logger.Errorf("Failed to close asynq client: %v", err)
	}
	s.logger.Info("Workflow scheduler stopped")
}

func (s *AsynqScheduler) handleExecute(ctx context.Context, t *asynq.Task) error {
	var payload JobPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal workflow payload: %w", err)
	}

	result, err := s.engine.Execute(ctx, payload.WorkflowID, payload.Parameters)
	if err != nil {
		s.logger.Errorf("Scheduled workflow %s failed: %v", payload.WorkflowID, err)
		return err
	}

	s.logger.Infof("Scheduled workflow %s completed (%d steps, %.2fs)",
		payload.WorkflowID, result.StepsExecuted, result.ExecutionSecs)
	return nil
}
