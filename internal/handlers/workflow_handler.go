package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/auroradesk/aurora/internal/domains/workflow"
	"github.com/auroradesk/aurora/pkg/Logger"
)

// WorkflowHandler handles workflow-related HTTP requests
type WorkflowHandler struct {
	engine    *workflow.Engine
	scheduler *workflow.AsynqScheduler // nil when Redis is not configured
	logger    *Logger.Logger
}

// NewWorkflowHandler creates a new workflow handler
func NewWorkflowHandler(engine *workflow.Engine, scheduler *workflow.AsynqScheduler, logger *Logger.Logger) *WorkflowHandler {
	return &WorkflowHandler{
		engine:    engine,
		scheduler: scheduler,
		logger:    logger,
	}
}

// Create handles workflow creation
// @Summary Create a workflow
// @Tags Workflows
// @Accept json
// @Produce json
// @Param request body CreateWorkflowRequest true "Workflow definition"
// @Success 201 {object} workflow.Workflow "Created workflow"
// @Failure 400 {object} ErrorResponse "Invalid request data"
// @Router /workflows [post]
func (h *WorkflowHandler) Create(c *gin.Context) {
	var req CreateWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request data",
			Details: err.Error(),
		})
		return
	}

	wf, err := h.engine.Create(req.Name, req.Description, req.Steps, req.TriggerType, req.CronSpec)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	if wf.TriggerType == workflow.TriggerScheduled && h.scheduler != nil {
		if err := h.scheduler.RegisterCron(*wf); err != nil {
			h.logger.Errorf("cron registration failed for workflow %s: %v", wf.ID, err)
		}
	}

	c.JSON(http.StatusCreated, wf)
}

// List handles workflow listing
// @Summary List workflows
// @Tags Workflows
// @Produce json
// @Success 200 {object} ListWorkflowsResponse "Stored workflows"
// @Router /workflows [get]
func (h *WorkflowHandler) List(c *gin.Context) {
	workflows := h.engine.List()
	c.JSON(http.StatusOK, ListWorkflowsResponse{
		Workflows: workflows,
		Count:     len(workflows),
	})
}

// Get handles getting a workflow by ID
// @Summary Get workflow by ID
// @Tags Workflows
// @Produce json
// @Param id path string true "Workflow ID"
// @Success 200 {object} workflow.Workflow "Workflow"
// @Failure 404 {object} ErrorResponse "Workflow not found"
// @Router /workflows/{id} [get]
func (h *WorkflowHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid workflow ID"})
		return
	}

	wf, ok := h.engine.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Workflow not found"})
		return
	}
	c.JSON(http.StatusOK, wf)
}

// Analyze handles workflow analysis
// @Summary Analyze a workflow
// @Description Score complexity, optimize steps, and gather AI improvement suggestions
// @Tags Workflows
// @Accept json
// @Produce json
// @Param request body AnalyzeWorkflowRequest true "Steps to analyze"
// @Success 200 {object} workflow.Analysis "Analysis result"
// @Failure 400 {object} ErrorResponse "Invalid request data"
// @Router /workflows/analyze [post]
func (h *WorkflowHandler) Analyze(c *gin.Context) {
	var req AnalyzeWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request data",
			Details: err.Error(),
		})
		return
	}

	analysis, err := h.engine.Analyze(c.Request.Context(), req.Steps, nil)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, analysis)
}

// Execute handles workflow execution
// @Summary Execute a workflow
// @Description Run a workflow synchronously, or queue it when a delay is requested
// @Tags Workflows
// @Accept json
// @Produce json
// @Param id path string true "Workflow ID"
// @Param request body ExecuteWorkflowRequest true "Execution parameters"
// @Success 200 {object} workflow.ExecutionResult "Execution result"
// @Success 202 {object} SuccessResponse "Execution queued"
// @Failure 400 {object} ErrorResponse "Invalid request data"
// @Failure 404 {object} ErrorResponse "Workflow not found"
// @Router /workflows/{id}/execute [post]
func (h *WorkflowHandler) Execute(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid workflow ID"})
		return
	}
	if _, ok := h.engine.Get(id); !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Workflow not found"})
		return
	}

	var req ExecuteWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request data",
			Details: err.Error(),
		})
		return
	}

	if req.DelaySecs > 0 {
		if h.scheduler == nil {
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Deferred execution not configured"})
			return
		}
		delay := time.Duration(req.DelaySecs) * time.Second
		if err := h.scheduler.Enqueue(c.Request.Context(), id, req.Parameters, delay); err != nil {
			h.logger.Errorf("enqueue failed for workflow %s: %v", id, err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
			return
		}
		c.JSON(http.StatusAccepted, SuccessResponse{Message: "Workflow execution queued"})
		return
	}

	result, err := h.engine.Execute(c.Request.Context(), id, req.Parameters)
	if err != nil {
		h.logger.Errorf("workflow %s execution failed: %v", id, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Workflow execution failed",
			Details: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, result)
}

// RunStatus handles run status queries
// @Summary Get run status
// @Tags Workflows
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} workflow.Run "Run state"
// @Failure 404 {object} ErrorResponse "Run not found"
// @Router /workflows/runs/{id} [get]
func (h *WorkflowHandler) RunStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid run ID"})
		return
	}

	run, ok := h.engine.Run(id)
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Run not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"run":    run,
		"status": run.Status(),
	})
}

// VoiceCommand handles voice-driven workflow suggestions
// @Summary Suggest a workflow from a transcript
// @Tags Workflows
// @Accept json
// @Produce json
// @Param request body VoiceWorkflowRequest true "Spoken request"
// @Success 200 {object} workflow.VoiceSuggestion "Suggested workflow"
// @Failure 400 {object} ErrorResponse "Invalid request data"
// @Router /workflows/voice-command [post]
func (h *WorkflowHandler) VoiceCommand(c *gin.Context) {
	var req VoiceWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request data",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, h.engine.AnalyzeVoiceCommand(req.Transcript))
}
