package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/auroradesk/aurora/internal/domains/apps"
	"github.com/auroradesk/aurora/internal/domains/command"
	"github.com/auroradesk/aurora/internal/domains/monitor"
	"github.com/auroradesk/aurora/pkg/Logger"
	"github.com/auroradesk/aurora/pkg/assistant/router"
	"github.com/auroradesk/aurora/pkg/voice"
)

// SystemHandler handles system monitoring and application control
type SystemHandler struct {
	monitor     *monitor.Monitor
	processor   *command.Processor
	apps        *apps.Manager
	mux         *router.Mux
	voiceClient *voice.Client
	logger      *Logger.Logger
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(mon *monitor.Monitor, processor *command.Processor, appManager *apps.Manager, mux *router.Mux, voiceClient *voice.Client, logger *Logger.Logger) *SystemHandler {
	return &SystemHandler{
		monitor:     mon,
		processor:   processor,
		apps:        appManager,
		mux:         mux,
		voiceClient: voiceClient,
		logger:      logger,
	}
}

// Metrics handles metric queries
// @Summary Get host metrics
// @Description Return a current resource snapshot plus retained history
// @Tags System
// @Produce json
// @Param history query bool false "Include retained history"
// @Success 200 {object} MetricsResponse "Host metrics"
// @Failure 500 {object} ErrorResponse "Sampling failed"
// @Router /system/metrics [get]
func (h *SystemHandler) Metrics(c *gin.Context) {
	snap, err := h.monitor.Sample(c.Request.Context())
	if err != nil {
		h.logger.Errorf("metric sample error: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to sample metrics"})
		return
	}

	resp := MetricsResponse{Current: snap}
	if c.Query("history") == "true" {
		resp.History = h.monitor.History()
	}
	c.JSON(http.StatusOK, resp)
}

// Processes handles process listing
// @Summary List processes
// @Description List running processes sorted by CPU usage
// @Tags System
// @Produce json
// @Param limit query int false "Maximum processes to return" default(20)
// @Success 200 {object} ProcessListResponse "Process listing"
// @Failure 500 {object} ErrorResponse "Listing failed"
// @Router /system/processes [get]
func (h *SystemHandler) Processes(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	procs, err := h.monitor.Processes(c.Request.Context(), limit)
	if err != nil {
		h.logger.Errorf("process listing error: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list processes"})
		return
	}
	c.JSON(http.StatusOK, ProcessListResponse{Processes: procs, Count: len(procs)})
}

// KillProcess handles process termination
// @Summary Kill a process
// @Tags System
// @Produce json
// @Param pid path int true "Process ID"
// @Success 200 {object} SuccessResponse "Process terminated"
// @Failure 400 {object} ErrorResponse "Invalid PID"
// @Failure 404 {object} ErrorResponse "Process not found"
// @Router /system/processes/{pid}/kill [post]
func (h *SystemHandler) KillProcess(c *gin.Context) {
	pid, err := strconv.ParseInt(c.Param("pid"), 10, 32)
	if err != nil || pid <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid PID"})
		return
	}

	if err := h.monitor.Kill(c.Request.Context(), int32(pid)); err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "Failed to kill process",
			Details: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Process terminated"})
}

// ExecuteCommand handles natural-language system commands
// @Summary Execute a system command
// @Description Run a natural-language command through the command processor
// @Tags System
// @Accept json
// @Produce json
// @Param request body SystemCommandRequest true "Command to execute"
// @Success 200 {object} SystemCommandResponse "Command outcome"
// @Failure 400 {object} ErrorResponse "Invalid request data"
// @Router /system/execute [post]
func (h *SystemHandler) ExecuteCommand(c *gin.Context) {
	var req SystemCommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request data",
			Details: err.Error(),
		})
		return
	}

	result := h.processor.Execute(c.Request.Context(), req.Command, req.Parameters)
	message := "Command executed successfully"
	if !result.Success {
		message = result.Response
	}
	c.JSON(http.StatusOK, SystemCommandResponse{
		Success: result.Success,
		Result:  result,
		Message: message,
	})
}

// LaunchApplication handles application launches
// @Summary Launch an application
// @Tags System
// @Produce json
// @Param app path string true "Application name or alias"
// @Success 200 {object} AppActionResponse "Launch outcome"
// @Failure 404 {object} ErrorResponse "Application not configured"
// @Failure 500 {object} ErrorResponse "Launch failed"
// @Router /system/applications/{app}/launch [post]
func (h *SystemHandler) LaunchApplication(c *gin.Context) {
	app := c.Param("app")
	pid, err := h.apps.Launch(app, nil)
	if err != nil {
		if errors.Is(err, apps.ErrUnknownApp) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Application not configured", Details: err.Error()})
			return
		}
		h.logger.Errorf("application launch failed: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to launch application", Details: err.Error()})
		return
	}
	c.JSON(http.StatusOK, AppActionResponse{
		Success:     true,
		Application: app,
		PID:         pid,
		Message:     "Application launched",
	})
}

// CloseApplication handles application closure
// @Summary Close an application
// @Tags System
// @Produce json
// @Param app path string true "Application name or alias"
// @Param force query bool false "Kill instead of terminating gracefully"
// @Success 200 {object} AppActionResponse "Close outcome"
// @Failure 404 {object} ErrorResponse "Application not configured"
// @Failure 500 {object} ErrorResponse "Close failed"
// @Router /system/applications/{app}/close [post]
func (h *SystemHandler) CloseApplication(c *gin.Context) {
	app := c.Param("app")
	force := c.Query("force") == "true"

	if err := h.apps.Close(c.Request.Context(), app, force); err != nil {
		if errors.Is(err, apps.ErrUnknownApp) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Application not configured", Details: err.Error()})
			return
		}
		h.logger.Errorf("application close failed: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to close application", Details: err.Error()})
		return
	}
	c.JSON(http.StatusOK, AppActionResponse{
		Success:     true,
		Application: app,
		Message:     "Application closed",
	})
}

// RunningApplications handles application listing
// @Summary List running applications
// @Description Managed applications plus user-level processes on the host
// @Tags System
// @Produce json
// @Success 200 {object} RunningAppsResponse "Running applications"
// @Failure 500 {object} ErrorResponse "Listing failed"
// @Router /system/applications [get]
func (h *SystemHandler) RunningApplications(c *gin.Context) {
	running, err := h.apps.Running(c.Request.Context())
	if err != nil {
		h.logger.Errorf("application listing failed: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list applications"})
		return
	}
	c.JSON(http.StatusOK, RunningAppsResponse{
		RunningApplications: running,
		Total:               len(running),
	})
}

// Info handles host info queries
// @Summary Get host info
// @Tags System
// @Produce json
// @Success 200 {object} monitor.HostInfo "Host information"
// @Failure 500 {object} ErrorResponse "Lookup failed"
// @Router /system/info [get]
func (h *SystemHandler) Info(c *gin.Context) {
	info, err := h.monitor.Host(c.Request.Context())
	if err != nil {
		h.logger.Errorf("host info error: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to read host info"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"host":    info,
		"runtime": h.processor.SystemInfo(),
	})
}

// Health handles gateway health checks
// @Summary Gateway health
// @Description Report gateway status, adapter availability and voice service reachability
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse "Health summary"
// @Router /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{Status: "ok"}

	if h.mux != nil {
		resp.Adapters = make(map[string]bool)
		for _, d := range h.mux.Adapters() {
			resp.Adapters[d.Name] = d.Enabled
		}
	}

	if h.voiceClient != nil {
		if _, err := h.voiceClient.Health(c.Request.Context()); err == nil {
			resp.Voice = true
		}
	}

	c.JSON(http.StatusOK, resp)
}
