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

package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"
)

// ParseFilter parses a RUST_LOG-style filter expression into a default
// zap level and a set of per-logger-name overrides. An empty
// expression defaults to info. Each comma-separated term is either a
// bare level (sets the default) or `name=level` (sets an override);
// at most one bare level is allowed, and it may appear anywhere in the
// list.
//
// Examples: "info", "debug", "info,gitrepo=debug,reconcile=debug".
func ParseFilter(expr string) (zapcore.Level, map[string]zapcore.Level, error) {
	defaultLevel := zapcore.InfoLevel
	overrides := make(map[string]zapcore.Level)

	expr = strings.TrimSpace(expr)
	if expr == "" {
		return defaultLevel, overrides, nil
	}

	sawBareLevel := false
	for _, term := range strings.Split(expr, ",") {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}

		name, levelStr, hasName := strings.Cut(term, "=")
		level, err := parseLevel(strings.TrimSpace(levelStr))
		if !hasName {
			level, err = parseLevel(strings.TrimSpace(name))
		}
		if err != nil {
			return defaultLevel, nil, err
		}

		if !hasName {
			if sawBareLevel {
				return defaultLevel, nil, fmt.Errorf("filter %q names more than one bare level", expr)
			}
			defaultLevel = level
			sawBareLevel = true
			continue
		}

		name = strings.TrimSpace(name)
		if name == "" {
			return defaultLevel, nil, fmt.Errorf("filter term %q has an empty logger name", term)
		}
		overrides[name] = level
	}

	return defaultLevel, overrides, nil
}

func parseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(s) {
	case "trace", "debug":
		return zapcore.DebugLevel, nil
	case "info":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	case "off", "silent":
		return zapcore.FatalLevel + 1, nil
	default:
		return 0, fmt.Errorf("unrecognized log level %q", s)
	}
}
