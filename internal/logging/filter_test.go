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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseFilter_EmptyDefaultsToInfo(t *testing.T) {
	level, overrides, err := ParseFilter("")
	require.NoError(t, err)
	assert.Equal(t, zapcore.InfoLevel, level)
	assert.Empty(t, overrides)
}

func TestParseFilter_BareLevel(t *testing.T) {
	level, overrides, err := ParseFilter("debug")
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, level)
	assert.Empty(t, overrides)
}

func TestParseFilter_DefaultWithPerNameOverrides(t *testing.T) {
	level, overrides, err := ParseFilter("info,gitrepo=debug,reconcile=debug")
	require.NoError(t, err)
	assert.Equal(t, zapcore.InfoLevel, level)
	assert.Equal(t, zapcore.DebugLevel, overrides["gitrepo"])
	assert.Equal(t, zapcore.DebugLevel, overrides["reconcile"])
}

func TestParseFilter_OverridesWithoutBareLevelKeepDefaultInfo(t *testing.T) {
	level, overrides, err := ParseFilter("rancherapi=error")
	require.NoError(t, err)
	assert.Equal(t, zapcore.InfoLevel, level)
	assert.Equal(t, zapcore.ErrorLevel, overrides["rancherapi"])
}

func TestParseFilter_RejectsMultipleBareLevels(t *testing.T) {
	_, _, err := ParseFilter("info,debug")
	require.Error(t, err)
}

func TestParseFilter_RejectsUnknownLevel(t *testing.T) {
	_, _, err := ParseFilter("verbose")
	require.Error(t, err)
}

func TestParseFilter_RejectsEmptyLoggerName(t *testing.T) {
	_, _, err := ParseFilter("=debug")
	require.Error(t, err)
}

func TestNew_BuildsAUsableLogger(t *testing.T) {
	log, err := New("info,gitrepo=debug", true)
	require.NoError(t, err)
	log.WithName("gitrepo").Info("hello")
}
