// Copyright 2023 The acquirecloud Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logging provides the application logging facade. Every component
// requests its own named Logger via NewLogger(). The backend may be replaced
// by SetConfig(), the default one writes to the process stdout.
package logging

import "sync/atomic"

type (
	// Logger interface exposes the methods for application logging
	Logger interface {
		// Errorf prints an Error-level message
		Errorf(format string, args ...interface{})
		// Warnf prints a Warn-level message
		Warnf(format string, args ...interface{})
		// Infof prints an Info-level message
		Infof(format string, args ...interface{})
		// Debugf prints a Debug-level message
		Debugf(format string, args ...interface{})
		// Tracef prints a Trace-level message
		Tracef(format string, args ...interface{})
	}

	// Config describes the current logging backend
	Config struct {
		// NewLoggerF points to the function which constructs a new Logger
		NewLoggerF func(name string) Logger
		// SetLevelF points to the function which changes the log level
		SetLevelF func(lvl Level)
		// GetLevelF returns the current log level
		GetLevelF func() Level
	}

	// Level is one of ERROR, WARN, INFO, DEBUG or TRACE
	Level int32
)

const (
	ERROR Level = iota
	WARN
	INFO
	DEBUG
	TRACE
)

var settings atomic.Value

func init() {
	SetConfig(Config{NewLoggerF: stdNewLogger, SetLevelF: stdSetLevel, GetLevelF: stdGetLevel})
}

// NewLogger returns a new Logger instance for the name provided
func NewLogger(name string) Logger {
	return settings.Load().(Config).NewLoggerF(name)
}

// SetLevel changes the logging level
func SetLevel(lvl Level) {
	settings.Load().(Config).SetLevelF(lvl)
}

// GetLevel returns the current logging level
func GetLevel() Level {
	return settings.Load().(Config).GetLevelF()
}

// SetConfig overwrites the current logging backend
func SetConfig(cfg Config) {
	settings.Store(cfg)
}
