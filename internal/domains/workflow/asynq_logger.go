package workflow

import (
	"github.com/hibiken/asynq"

	"github.com/auroradesk/aurora/pkg/Logger"
)

// AsynqLogger wraps our logger to implement asynq.Logger interface
type AsynqLogger struct {
	logger *Logger.Logger
}

// NewAsynqLogger creates a new asynq logger wrapper
func NewAsynqLogger(logger *Logger.Logger) asynq.Logger {
	return &AsynqLogger{logger: logger}
}

func (l *AsynqLogger) Debug(args ...interface{}) {
	l.logger.Debug(args...)
}

func (l *AsynqLogger) Info(args ...interface{}) {
	l.logger.Info(args...)
}

func (l *AsynqLogger) Warn(args ...interface{}) {
	l.logger.Warn(args...)
}

func (l *AsynqLogger) Error(args ...interface{}) {
	l.logger.Error(args...)
}

func (l *AsynqLogger) Fatal(args ...interface{}) {
	l.logger.Fatal(args...)
}
