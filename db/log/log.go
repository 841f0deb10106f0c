// Package log provides the package-level structured logger every other
// db/* package logs through: a single zap.SugaredLogger, configurable once
// at process startup (see db/config) and named per subsystem thereafter.
package log

import "go.uber.org/zap"

var base = zap.NewNop().Sugar()

// Configure replaces the package-level logger, normally called once from
// cmd/nanodb or cmd/nanodbd's main after db/config has decided the level.
func Configure(logger *zap.Logger) {
	base = logger.Sugar()
}

// Named returns a child logger tagged with name, e.g. "engine" or
// "storage", so log lines can be filtered by subsystem.
func Named(name string) *zap.SugaredLogger {
	return base.Named(name)
}

// L returns the current package-level logger directly.
func L() *zap.SugaredLogger {
	return base
}
