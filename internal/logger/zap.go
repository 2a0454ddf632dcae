package logger

import (
	"go.uber.org/zap"
)

// Logger is the process-wide logger. It is a no-op until one of the Init
// functions runs, so packages and tests can log unconditionally.
var Logger = zap.NewNop()

func InitProductionLogger() {
	if l, err := zap.NewProduction(); err == nil {
		Logger = l
	}
}

func InitDevelopmentLogger() {
	if l, err := zap.NewDevelopment(); err == nil {
		Logger = l
	}
}

// Init picks the production JSON logger for APP_ENV=production and the
// console logger otherwise.
func Init(env string) {
	if env == "production" {
		InitProductionLogger()
		return
	}
	InitDevelopmentLogger()
}

// Named returns a child logger tagged with a component name ("ws", "session", ...).
func Named(name string) *zap.Logger {
	return Logger.Named(name)
}

func ErrorField(err error) zap.Field {
	return zap.Error(err)
}

func Sync() {
	_ = Logger.Sync()
}
