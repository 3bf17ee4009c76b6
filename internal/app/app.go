package app

import (
	"context"
	"time"

	"github.com/go-redis/redis"
	"gorm.io/gorm"

	"github.com/auroradesk/aurora/internal/config"
	"github.com/auroradesk/aurora/internal/database"
	"github.com/auroradesk/aurora/internal/domains/apps"
	"github.com/auroradesk/aurora/internal/domains/command"
	"github.com/auroradesk/aurora/internal/domains/files"
	"github.com/auroradesk/aurora/internal/domains/intent"
	"github.com/auroradesk/aurora/internal/domains/monitor"
	"github.com/auroradesk/aurora/internal/domains/workflow"
	"github.com/auroradesk/aurora/internal/handlers"
	"github.com/auroradesk/aurora/internal/repository/usage"
	"github.com/auroradesk/aurora/internal/server"
	"github.com/auroradesk/aurora/pkg/Logger"
	"github.com/auroradesk/aurora/pkg/assistant/router"
	"github.com/auroradesk/aurora/pkg/voice"
)

// App represents the application with all its dependencies
type App struct {
	Config      *config.Settings
	Logger      *Logger.Logger
	DB          *gorm.DB      // nil when the database is not configured
	RC          *redis.Client // nil when Redis is not configured
	ModelRouter *router.Mux
	Scheduler   *workflow.AsynqScheduler
	Monitor     *monitor.Monitor
	UsageRepo   *usage.GormRepo
	ServerDeps  server.Dependencies
}

// NewApp creates a new application instance with all dependencies properly wired
func NewApp(ctx context.Context, cfg *config.Settings, logger *Logger.Logger, db *gorm.DB, rc *redis.Client) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
		DB:     db,
		RC:     rc,
	}

	if err := app.setupDependencies(ctx); err != nil {
		return nil, err
	}
	return app, nil
}

// setupDependencies initializes all application dependencies
func (a *App) setupDependencies(ctx context.Context) error {
	var routerOpts []router.Option

	if a.DB != nil {
		repo, err := usage.NewGormRepo(a.DB, a.Logger)
		if err != nil {
			return err
		}
		a.UsageRepo = repo
		routerOpts = append(routerOpts, router.WithSink(repo))
	}

	if a.RC != nil {
		ttl := time.Duration(a.Config.Redis.ProbeTTLSecs) * time.Second
		routerOpts = append(routerOpts, router.WithProbeCache(database.NewRedisProbeCache(a.RC, ttl)))
	}

	mux, err := NewAdapterFactory(a.Config, a.Logger).CreateRouter(ctx, routerOpts...)
	if err != nil {
		return err
	}
	a.ModelRouter = mux

	processor := command.New(a.Logger)
	analyzer := intent.New(a.Logger)
	engine := workflow.NewEngine(mux, a.Logger)
	fileController := files.New(a.Logger)
	appManager := apps.New(a.Logger)

	if a.Config.Scheduler.Enabled && a.Config.Redis.Addr != "" {
		a.Scheduler = workflow.NewAsynqScheduler(workflow.SchedulerConfig{
			RedisAddr:     a.Config.Redis.Addr,
			RedisPassword: a.Config.Redis.Pass,
			RedisDB:       a.Config.Redis.DB,
			Concurrency:   a.Config.Scheduler.Concurrency,
		}, engine, a.Logger)
	}

	a.Monitor = monitor.New(monitor.Config{
		Interval:    time.Duration(a.Config.Monitor.IntervalSecs) * time.Second,
		HistorySize: a.Config.Monitor.HistorySize,
	}, a.Logger)

	voiceClient := voice.NewClient(
		a.Config.Voice.URL,
		time.Duration(a.Config.Voice.TimeoutSecs)*time.Second,
		a.Logger,
	)

	a.ServerDeps = server.NewServerDependencies(
		handlers.NewAIHandler(mux, processor, a.UsageRepo, a.Logger),
		handlers.NewVoiceHandler(voiceClient, analyzer, processor, a.Logger),
		handlers.NewWorkflowHandler(engine, a.Scheduler, a.Logger),
		handlers.NewFileHandler(fileController, a.Logger),
		handlers.NewSystemHandler(a.Monitor, processor, appManager, mux, voiceClient, a.Logger),
		a.Logger,
		a.Config,
	)
	return nil
}

// Start launches background components.
func (a *App) Start(ctx context.Context) error {
	a.Monitor.Start(ctx)
	if a.Scheduler != nil {
		return a.Scheduler.Start()
	}
	return nil
}

// Stop shuts background components down.
func (a *App) Stop() {
	a.Monitor.Stop()
	if a.Scheduler != nil {
		a.Scheduler.Shutdown()
	}
}

// GetServerDependencies returns the server dependencies
func (a *App) GetServerDependencies() server.Dependencies {
	return a.ServerDeps
}
