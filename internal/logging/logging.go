/*
SPDX-License-Identifier: Apache-2.0

Copyright 2026 Shepherd Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package logging builds the process-wide logr.Logger (spec §6), the
// same interface the teacher threads through every component, backed
// by zap via zapr rather than controller-runtime's zap.New wrapper —
// this system has no controller manager to install a global logger
// into, so the entrypoint builds and passes one down explicitly.
package logging

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the root logger for one process run. filterExpr is a
// RUST_LOG-style expression (spec §6): either a bare level (applied to
// every logger name) or a comma-separated list of
// `name=level` overrides, optionally with one bare default level,
// e.g. "info" or "info,gitrepo=debug,reconcile=debug".
func New(filterExpr string, development bool) (logr.Logger, error) {
	defaultLevel, overrides, err := ParseFilter(filterExpr)
	if err != nil {
		return logr.Logger{}, fmt.Errorf("invalid log filter %q: %w", filterExpr, err)
	}

	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	// The core must admit the most verbose level any override names;
	// nameFilteredCore then applies the per-name and default levels.
	coreLevel := defaultLevel
	for _, lvl := range overrides {
		if lvl < coreLevel {
			coreLevel = lvl
		}
	}
	cfg.Level = zap.NewAtomicLevelAt(coreLevel)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	base, err := cfg.Build()
	if err != nil {
		return logr.Logger{}, fmt.Errorf("failed to build zap logger: %w", err)
	}

	if len(overrides) > 0 {
		base = base.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return &nameFilteredCore{Core: core, overrides: overrides, fallback: defaultLevel}
		}))
	}

	return zapr.NewLogger(base), nil
}

// nameFilteredCore re-levels log entries based on the logr name
// (`logr.Logger.WithName`, recorded by zapr as the entry's LoggerName)
// matching one of the per-name overrides a filter expression named;
// entries from unmatched names fall back to the filter's default level.
type nameFilteredCore struct {
	zapcore.Core
	overrides map[string]zapcore.Level
	fallback  zapcore.Level
}

func (c *nameFilteredCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	level := c.fallback
	if lvl, ok := c.levelFor(entry.LoggerName); ok {
		level = lvl
	}
	if entry.Level < level {
		return checked
	}
	return c.Core.Check(entry, checked)
}

func (c *nameFilteredCore) levelFor(name string) (zapcore.Level, bool) {
	if lvl, ok := c.overrides[name]; ok {
		return lvl, true
	}
	return 0, false
}

func (c *nameFilteredCore) With(fields []zapcore.Field) zapcore.Core {
	return &nameFilteredCore{Core: c.Core.With(fields), overrides: c.overrides, fallback: c.fallback}
}
