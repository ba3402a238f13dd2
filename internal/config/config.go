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

// Package config loads the external configuration spec §6 describes:
// a file under $HOME/.config/shepherd, in whatever one of the three
// supported serialization formats is found, layered under defaults and
// under environment-variable overrides for the git authentication
// fields.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/DeusSeos/shepherd/internal/serialize"
	"github.com/DeusSeos/shepherd/internal/shepherderr"
)

// Config is the external configuration of one shepherd instance
// (spec §6). Every field has a json tag so the same struct drives
// YAML, JSON, and TOML decoding through internal/serialize.
type Config struct {
	RancherConfigPath string   `json:"rancher_config_path,omitempty"`
	EndpointURL       string   `json:"endpoint_url"`
	Token             string   `json:"token"`
	Insecure          bool     `json:"insecure,omitempty"`
	FileFormat        string   `json:"file_format,omitempty"`
	RemoteGitURL      string   `json:"remote_git_url"`
	Branch            string   `json:"branch,omitempty"`
	ClusterNames      []string `json:"cluster_names"`
	LoopIntervalSec   int      `json:"loop_interval,omitempty"`
	RetryDelayMs      int      `json:"retry_delay,omitempty"`
	AuthMethod        string   `json:"auth_method,omitempty"`
	SSHKeyPath        string   `json:"ssh_key_path,omitempty"`
	GitToken          string   `json:"git_token,omitempty"`
}

const configDirName = "shepherd"

func defaults() Config {
	return Config{
		FileFormat:      serialize.FormatYAML,
		Branch:          "main",
		LoopIntervalSec: 300,
		RetryDelayMs:    200,
		AuthMethod:      "ssh_agent",
	}
}

// Load reads configuration the way the running process sees it:
// explicitPath if given, else the first of
// $HOME/.config/shepherd/config.{yaml,json,toml} that exists, layered
// on defaults and overridden by the real process environment.
func Load(explicitPath string) (*Config, error) {
	return LoadWithEnv(explicitPath, os.Getenv)
}

// LoadWithEnv is Load with an injectable environment lookup, so tests
// can exercise override precedence without mutating the process
// environment.
func LoadWithEnv(explicitPath string, getenv func(string) string) (*Config, error) {
	cfg := defaults()

	path, format, err := resolvePath(explicitPath, getenv)
	if err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, shepherderr.IO("config.Load", fmt.Errorf("failed to read %s: %w", path, err))
		}
		if err := serialize.Decode(format, data, &cfg); err != nil {
			return nil, shepherderr.Decode("config.Load", fmt.Errorf("failed to parse %s: %w", path, err))
		}
		if cfg.FileFormat == "" {
			cfg.FileFormat = format
		}
	}

	cfg.applyEnv(getenv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// resolvePath picks the config file to read. An explicit path is used
// as given (its extension selects the decode format); otherwise the
// first existing $HOME/.config/shepherd/config.<ext> wins, trying
// yaml, json, then toml. No file found is not an error — defaults and
// environment overrides may be enough on their own.
func resolvePath(explicitPath string, getenv func(string) string) (path, format string, err error) {
	if explicitPath != "" {
		return explicitPath, formatFromExt(explicitPath), nil
	}

	home := getenv("HOME")
	if home == "" {
		if h, err := os.UserHomeDir(); err == nil {
			home = h
		}
	}
	if home == "" {
		return "", "", shepherderr.Config("config.resolvePath", fmt.Errorf("cannot resolve config directory: HOME is not set"))
	}

	for _, format := range []string{serialize.FormatYAML, serialize.FormatJSON, serialize.FormatTOML} {
		candidate := filepath.Join(home, ".config", configDirName, "config."+serialize.ExtForFormat(format))
		if _, err := os.Stat(candidate); err == nil {
			return candidate, format, nil
		}
	}
	return "", "", nil
}

func formatFromExt(path string) string {
	switch filepath.Ext(path) {
	case ".json":
		return serialize.FormatJSON
	case ".toml":
		return serialize.FormatTOML
	default:
		return serialize.FormatYAML
	}
}

// applyEnv overlays the git-auth environment overrides spec §6 names.
// Every other field is config-file-or-default only.
func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("GIT_AUTH_METHOD"); v != "" {
		c.AuthMethod = v
	}
	if v := getenv("GIT_SSH_KEY"); v != "" {
		c.SSHKeyPath = v
	}
	if v := getenv("GIT_TOKEN"); v != "" {
		c.GitToken = v
	}
}

// Validate rejects a Config missing any of the fields spec §6 marks
// required, or naming an unsupported file_format/auth_method.
func (c *Config) Validate() error {
	if c.RancherConfigPath == "" {
		return shepherderr.Config("config.Validate", fmt.Errorf("rancher_config_path is required"))
	}
	if c.EndpointURL == "" {
		return shepherderr.Config("config.Validate", fmt.Errorf("endpoint_url is required"))
	}
	if c.Token == "" {
		return shepherderr.Config("config.Validate", fmt.Errorf("token is required"))
	}
	if c.RemoteGitURL == "" {
		return shepherderr.Config("config.Validate", fmt.Errorf("remote_git_url is required"))
	}
	if len(c.ClusterNames) == 0 {
		return shepherderr.Config("config.Validate", fmt.Errorf("cluster_names must name at least one cluster"))
	}

	switch c.FileFormat {
	case serialize.FormatYAML, serialize.FormatJSON, serialize.FormatTOML:
	default:
		return shepherderr.Config("config.Validate", fmt.Errorf("unsupported file_format %q", c.FileFormat))
	}

	switch c.AuthMethod {
	case "ssh_key", "https_token", "ssh_agent", "git_credential_helper":
	default:
		return shepherderr.Config("config.Validate", fmt.Errorf("unsupported auth_method %q", c.AuthMethod))
	}

	return nil
}
