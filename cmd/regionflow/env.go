package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"regionflow/pkg/config"
)

type envKey struct{}

// localEnv keeps everything program needs in a single place.
type localEnv struct {
	Cfg *config.Config
	Log *zap.Logger

	closeLog      func() error
	start         time.Time
	restoreStdLog func()
}

func envFromContext(ctx context.Context) *localEnv {
	if env, ok := ctx.Value(envKey{}).(*localEnv); ok {
		return env
	}
	// this should never happen
	panic("localenv not found in context")
}

func contextWithEnv(ctx context.Context) context.Context {
	return context.WithValue(ctx, envKey{}, &localEnv{start: time.Now(), Log: zap.NewNop()})
}

func (e *localEnv) uptime() time.Duration {
	return time.Since(e.start)
}

func (e *localEnv) redirectStdLog() {
	e.restoreStdLog = zap.RedirectStdLog(e.Log)
}

// closeLogs flushes the logs and restores the standard logger.
func (e *localEnv) closeLogs() error {
	if e.restoreStdLog != nil {
		e.restoreStdLog()
		e.restoreStdLog = nil
	}
	if e.closeLog == nil {
		return nil
	}
	err := e.closeLog()
	e.closeLog = nil
	return err
}
