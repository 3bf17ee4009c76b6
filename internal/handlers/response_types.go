package handlers

import (
	"github.com/auroradesk/aurora/internal/domains/apps"
	"github.com/auroradesk/aurora/internal/domains/command"
	"github.com/auroradesk/aurora/internal/domains/files"
	"github.com/auroradesk/aurora/internal/domains/intent"
	"github.com/auroradesk/aurora/internal/domains/monitor"
	"github.com/auroradesk/aurora/internal/domains/workflow"
	"github.com/auroradesk/aurora/internal/repository/usage"
	"github.com/auroradesk/aurora/pkg/voice"
)

// Response wrapper types for Swagger documentation

// SuccessResponse represents a generic success response
type SuccessResponse struct {
	Message string `json:"message" example:"Operation completed successfully"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error" example:"Something went wrong"`
	Details string `json:"details,omitempty" example:"Validation error details"`
}

// ProcessAIRequest is the request body for AI processing
type ProcessAIRequest struct {
	Prompt          string         `json:"prompt" binding:"required" example:"Summarize my meeting notes"`
	Context         map[string]any `json:"context,omitempty"`
	ModelPreference string         `json:"modelPreference,omitempty" example:"local-llama"`
	MaxTokens       int            `json:"maxTokens,omitempty" example:"1024"`
	Temperature     float64        `json:"temperature,omitempty" example:"0.7"`
}

// ProcessAIResponse represents the response for AI processing
type ProcessAIResponse struct {
	RequestID  string  `json:"requestId"`
	Response   string  `json:"response"`
	ModelUsed  string  `json:"modelUsed,omitempty"`
	TokensUsed int     `json:"tokensUsed,omitempty"`
	Cost       float64 `json:"cost,omitempty"`
	LatencyMs  int64   `json:"latencyMs"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source" example:"model_router"`
}

// UsageResponse represents adapter usage aggregates
type UsageResponse struct {
	Summary []usage.AdapterSummary `json:"summary"`
	Recent  []usage.Record         `json:"recent"`
}

// VoiceCommandRequest is the request body for end-to-end voice commands
type VoiceCommandRequest struct {
	AudioData string `json:"audioData" binding:"required"` // base64 encoded
	Language  string `json:"language,omitempty" example:"en"`
}

// VoiceCommandResponse represents the merged transcription and intent result
type VoiceCommandResponse struct {
	Transcription voice.TranscriptionResult `json:"transcription"`
	Intent        intent.Result             `json:"intent"`
	Confidence    float64                   `json:"confidence"`
	CommandResult *command.Result           `json:"commandResult,omitempty"`
}

// TranscribeRequest is the request body for transcription
type TranscribeRequest struct {
	AudioData string `json:"audioData" binding:"required"`
	Language  string `json:"language,omitempty" example:"en"`
}

// SynthesizeRequest is the request body for speech synthesis
type SynthesizeRequest struct {
	Text  string  `json:"text" binding:"required" example:"Workflow completed"`
	Voice string  `json:"voice,omitempty"`
	Speed float64 `json:"speed,omitempty" example:"1.0"`
}

// CreateWorkflowRequest is the request body for workflow creation
type CreateWorkflowRequest struct {
	Name        string          `json:"name" binding:"required" example:"nightly backup"`
	Description string          `json:"description,omitempty"`
	Steps       []workflow.Step `json:"steps" binding:"required"`
	TriggerType string          `json:"triggerType,omitempty" example:"manual"`
	CronSpec    string          `json:"cronSpec,omitempty" example:"0 2 * * *"`
}

// AnalyzeWorkflowRequest is the request body for workflow analysis
type AnalyzeWorkflowRequest struct {
	Steps   []workflow.Step `json:"steps" binding:"required"`
	Context map[string]any  `json:"context,omitempty"`
}

// ExecuteWorkflowRequest is the request body for workflow execution
type ExecuteWorkflowRequest struct {
	Parameters map[string]any `json:"parameters,omitempty"`
	DelaySecs  int            `json:"delaySecs,omitempty"`
}

// ListWorkflowsResponse represents the workflow listing
type ListWorkflowsResponse struct {
	Workflows []workflow.Workflow `json:"workflows"`
	Count     int                 `json:"count"`
}

// VoiceWorkflowRequest is the request body for voice-driven workflow analysis
type VoiceWorkflowRequest struct {
	Transcript string `json:"transcript" binding:"required" example:"back up my documents folder"`
}

// FileSearchRequest is the request body for file searches
type FileSearchRequest struct {
	Query         string   `json:"query" binding:"required" example:"quarterly report"`
	Directory     string   `json:"directory,omitempty" example:"/home/user/documents"`
	FileTypes     []string `json:"fileTypes,omitempty" example:"pdf,docx"`
	ContentSearch bool     `json:"contentSearch,omitempty"`
}

// FileSearchResponse represents ranked file search results
type FileSearchResponse struct {
	Query      string        `json:"query"`
	Results    []files.Match `json:"results"`
	TotalCount int           `json:"totalCount"`
	SearchType string        `json:"searchType" example:"filename"`
}

// OrganizeFilesRequest is the request body for directory organization
type OrganizeFilesRequest struct {
	Directory string `json:"directory" binding:"required" example:"/home/user/downloads"`
	Strategy  string `json:"strategy,omitempty" example:"type"`
}

// RecentFilesResponse represents the recent-file listing
type RecentFilesResponse struct {
	RecentFiles []files.RecentFile `json:"recentFiles"`
}

// SystemCommandRequest is the request body for direct command execution
type SystemCommandRequest struct {
	Command    string         `json:"command" binding:"required" example:"open chrome"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// SystemCommandResponse represents the command processor outcome
type SystemCommandResponse struct {
	Success bool           `json:"success"`
	Result  command.Result `json:"result"`
	Message string         `json:"message"`
}

// AppActionResponse represents an application launch or close outcome
type AppActionResponse struct {
	Success     bool   `json:"success"`
	Application string `json:"application"`
	PID         int32  `json:"pid,omitempty"`
	Message     string `json:"message"`
}

// RunningAppsResponse represents the running application listing
type RunningAppsResponse struct {
	RunningApplications []apps.RunningApp `json:"runningApplications"`
	Total               int               `json:"total"`
}

// MetricsResponse represents current and historical host metrics
type MetricsResponse struct {
	Current *monitor.Snapshot  `json:"current"`
	History []monitor.Snapshot `json:"history,omitempty"`
}

// ProcessListResponse represents the process listing
type ProcessListResponse struct {
	Processes []monitor.ProcessInfo `json:"processes"`
	Count     int                   `json:"count"`
}

// HealthResponse represents the gateway health summary
type HealthResponse struct {
	Status   string          `json:"status" example:"ok"`
	Adapters map[string]bool `json:"adapters,omitempty"`
	Voice    bool            `json:"voice"`
}
