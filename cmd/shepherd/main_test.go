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

package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeusSeos/shepherd/internal/gitrepo"

	"github.com/DeusSeos/shepherd/internal/config"
)

func TestNewRootCmd_FlagDefaults(t *testing.T) {
	cmd := newRootCmd()

	logFilter, err := cmd.Flags().GetString("log-filter")
	require.NoError(t, err)
	assert.Equal(t, "info", logFilter)

	metricsAddr, err := cmd.Flags().GetString("metrics-address")
	require.NoError(t, err)
	assert.Equal(t, ":8080", metricsAddr)

	once, err := cmd.Flags().GetBool("once")
	require.NoError(t, err)
	assert.False(t, once)
}

func TestEnvOr_PrefersEnvironmentWhenSet(t *testing.T) {
	t.Setenv("SHEPHERD_LOG_TEST", "debug")
	assert.Equal(t, "debug", envOr("SHEPHERD_LOG_TEST", "info"))

	require.NoError(t, os.Unsetenv("SHEPHERD_LOG_TEST"))
	assert.Equal(t, "info", envOr("SHEPHERD_LOG_TEST", "info"))
}

func TestAuthConfigFor_MapsConfigFieldsToAuthConfig(t *testing.T) {
	cfg := &config.Config{
		AuthMethod:   "ssh_key",
		SSHKeyPath:   "/home/ops/.ssh/id_ed25519",
		GitToken:     "ignored-for-ssh",
		RemoteGitURL: "git@example.com:org/repo.git",
	}

	auth := authConfigFor(cfg)
	assert.Equal(t, gitrepo.AuthSSHKey, auth.Kind)
	assert.Equal(t, "/home/ops/.ssh/id_ed25519", auth.SSHKeyPath)
	assert.Equal(t, "git@example.com:org/repo.git", auth.RepoURL)
}
