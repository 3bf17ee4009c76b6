package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/auroradesk/aurora/internal/domains/command"
	"github.com/auroradesk/aurora/internal/repository/usage"
	"github.com/auroradesk/aurora/pkg/Logger"
	"github.com/auroradesk/aurora/pkg/assistant/adapters"
	"github.com/auroradesk/aurora/pkg/assistant/router"
)

// AIHandler handles AI processing HTTP requests
type AIHandler struct {
	mux       *router.Mux
	processor *command.Processor
	usageRepo *usage.GormRepo // nil when the database is not configured
	logger    *Logger.Logger
}

// NewAIHandler creates a new AI handler
func NewAIHandler(mux *router.Mux, processor *command.Processor, usageRepo *usage.GormRepo, logger *Logger.Logger) *AIHandler {
	return &AIHandler{
		mux:       mux,
		processor: processor,
		usageRepo: usageRepo,
		logger:    logger,
	}
}

// ProcessRequest handles AI requests, short-circuiting system commands to
// the local command processor before touching any model.
// @Summary Process an AI request
// @Description Route a prompt to the best available model, or execute it locally when it is a system command
// @Tags AI
// @Accept json
// @Produce json
// @Param request body ProcessAIRequest true "AI request"
// @Success 200 {object} ProcessAIResponse "Processing result"
// @Failure 400 {object} ErrorResponse "Invalid request data"
// @Failure 503 {object} ErrorResponse "No adapter available"
// @Failure 502 {object} ErrorResponse "All adapters failed"
// @Router /ai/process [post]
func (h *AIHandler) ProcessRequest(c *gin.Context) {
	var req ProcessAIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request data",
			Details: err.Error(),
		})
		return
	}

	requestID := uuid.New()

	if h.processor.IsSystemCommand(req.Prompt) {
		result := h.processor.Execute(c.Request.Context(), req.Prompt, req.Context)
		c.JSON(http.StatusOK, ProcessAIResponse{
			RequestID:  requestID.String(),
			Response:   result.Response,
			LatencyMs:  result.ExecutionMs,
			Confidence: result.Confidence,
			Source:     "command_processor",
		})
		return
	}

	reqContext := req.Context
	if reqContext == nil {
		reqContext = map[string]any{}
	}
	if _, ok := reqContext["system_prompt"]; !ok {
		reqContext["system_prompt"] = systemPromptFor(reqContext)
	}

	resp, err := h.mux.ProcessRequest(c.Request.Context(), adapters.Request{
		ID:              requestID,
		Prompt:          req.Prompt,
		Context:         reqContext,
		ModelPreference: req.ModelPreference,
		MaxTokens:       req.MaxTokens,
		Temperature:     req.Temperature,
	})
	if err != nil {
		var allFailed *adapters.AllAdaptersFailedError
		switch {
		case errors.Is(err, adapters.ErrNoAdapterAvailable):
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "No model available for this request"})
		case errors.As(err, &allFailed):
			h.logger.Errorf("all adapters failed for request %s: %v", requestID, err)
			c.JSON(http.StatusBadGateway, ErrorResponse{
				Error:   "All models failed",
				Details: allFailed.Error(),
			})
		default:
			h.logger.Errorf("ai processing error: %v", err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, ProcessAIResponse{
		RequestID:  requestID.String(),
		Response:   resp.Text,
		ModelUsed:  resp.ModelUsed,
		TokensUsed: resp.TokensUsed,
		Cost:       resp.Cost,
		LatencyMs:  resp.Latency.Milliseconds(),
		Confidence: resp.Confidence,
		Source:     "model_router",
	})
}

// GetUsage handles usage reporting
// @Summary Get adapter usage
// @Description Return per-adapter usage aggregates and recent request records
// @Tags AI
// @Produce json
// @Param limit query int false "Recent record limit" default(20)
// @Success 200 {object} UsageResponse "Usage data"
// @Failure 503 {object} ErrorResponse "Usage tracking not configured"
// @Router /ai/usage [get]
func (h *AIHandler) GetUsage(c *gin.Context) {
	if h.usageRepo == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Usage tracking not configured"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	summary, err := h.usageRepo.Summary(c.Request.Context())
	if err != nil {
		h.logger.Errorf("usage summary error: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		return
	}
	recent, err := h.usageRepo.Recent(c.Request.Context(), limit)
	if err != nil {
		h.logger.Errorf("usage recent error: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, UsageResponse{Summary: summary, Recent: recent})
}

// systemPromptFor builds the default assistant persona; voice-sourced
// requests get a brevity note since the reply will be spoken aloud.
func systemPromptFor(reqContext map[string]any) string {
	prompt := "You are Aurora, a desktop assistant. Be concise and helpful."
	if src, ok := reqContext["source"].(string); ok && src == "voice" {
		prompt += " The reply will be read aloud, keep it to a sentence or two."
	}
	return prompt
}
