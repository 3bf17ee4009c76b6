package server

import (
	"github.com/gin-gonic/gin"

	"github.com/auroradesk/aurora/internal/config"
	"github.com/auroradesk/aurora/internal/handlers"
	"github.com/auroradesk/aurora/pkg/Logger"
)

// Dependencies carries the wired handlers into route registration.
type Dependencies struct {
	AI       *handlers.AIHandler
	Voice    *handlers.VoiceHandler
	Workflow *handlers.WorkflowHandler
	Files    *handlers.FileHandler
	System   *handlers.SystemHandler
	Logger   *Logger.Logger
	Configs  *config.Settings
}

func NewServerDependencies(
	ai *handlers.AIHandler,
	voiceHandler *handlers.VoiceHandler,
	workflowHandler *handlers.WorkflowHandler,
	fileHandler *handlers.FileHandler,
	systemHandler *handlers.SystemHandler,
	logger *Logger.Logger,
	cfg *config.Settings,
) Dependencies {
	return Dependencies{
		AI:       ai,
		Voice:    voiceHandler,
		Workflow: workflowHandler,
		Files:    fileHandler,
		System:   systemHandler,
		Logger:   logger,
		Configs:  cfg,
	}
}

// InitializeRoutes registers middleware and the full /v1 API surface.
func InitializeRoutes(r *gin.Engine, dep Dependencies) {
	r.Use(handlers.CORSMiddleware())
	r.Use(handlers.RequestLoggerMiddleware(dep.Logger))
	r.Use(handlers.ErrorHandlerMiddleware(dep.Logger))

	r.GET("/", func(ctx *gin.Context) { ctx.JSON(200, gin.H{"message": "Server healthy"}) })
	r.GET("/health", dep.System.Health)

	v1 := r.Group("/v1")
	{
		v1.GET("/health", dep.System.Health)

		ai := v1.Group("/ai")
		{
			ai.POST("/process", dep.AI.ProcessRequest)
			ai.GET("/usage", dep.AI.GetUsage)
		}

		voice := v1.Group("/voice")
		{
			voice.POST("/command", dep.Voice.ProcessCommand)
			voice.POST("/transcribe", dep.Voice.Transcribe)
			voice.POST("/synthesize", dep.Voice.Synthesize)
			voice.GET("/stream", dep.Voice.HandleStream)
		}

		workflows := v1.Group("/workflows")
		{
			workflows.POST("", dep.Workflow.Create)
			workflows.GET("", dep.Workflow.List)
			workflows.POST("/analyze", dep.Workflow.Analyze)
			workflows.POST("/voice-command", dep.Workflow.VoiceCommand)
			workflows.GET("/runs/:id", dep.Workflow.RunStatus)
			workflows.GET("/:id", dep.Workflow.Get)
			workflows.POST("/:id/execute", dep.Workflow.Execute)
		}

		files := v1.Group("/files")
		{
			files.POST("/search", dep.Files.Search)
			files.POST("/organize", dep.Files.Organize)
			files.GET("/recent", dep.Files.Recent)
		}

		system := v1.Group("/system")
		{
			system.POST("/execute", dep.System.ExecuteCommand)
			system.GET("/applications", dep.System.RunningApplications)
			system.POST("/applications/:app/launch", dep.System.LaunchApplication)
			system.POST("/applications/:app/close", dep.System.CloseApplication)
			system.GET("/metrics", dep.System.Metrics)
			system.GET("/processes", dep.System.Processes)
			system.POST("/processes/:pid/kill", dep.System.KillProcess)
			system.GET("/info", dep.System.Info)
		}
	}
}
