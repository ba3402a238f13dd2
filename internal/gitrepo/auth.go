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

package gitrepo

import (
	"bufio"
	"bytes"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	gitssh "github.com/go-git/go-git/v5/plumbing/transport/ssh"
	gossh "golang.org/x/crypto/ssh"
)

// AuthMethodKind names the four authentication strategies spec §4.3
// requires the worker to support.
type AuthMethodKind string

const (
	AuthSSHKey           AuthMethodKind = "ssh_key"
	AuthSSHAgent         AuthMethodKind = "ssh_agent"
	AuthHTTPSToken       AuthMethodKind = "https_token"
	AuthCredentialHelper AuthMethodKind = "git_credential_helper"
)

// AuthConfig carries whichever fields the selected Kind needs; unused
// fields are ignored.
type AuthConfig struct {
	Kind AuthMethodKind

	// AuthSSHKey
	SSHKeyPath string
	SSHKeyPass string
	KnownHosts string

	// AuthSSHAgent
	SSHUser string

	// AuthHTTPSToken
	Username string
	Token    string

	// AuthCredentialHelper
	RepoURL string
}

// BuildAuth resolves an AuthConfig into a go-git transport.AuthMethod,
// grounded on the teacher's internal/ssh.GetAuthMethod for the SSH-key
// path. Host key verification is disabled only when KnownHosts is
// empty, matching the teacher's insecure-fallback behavior.
func BuildAuth(cfg AuthConfig) (transport.AuthMethod, error) {
	switch cfg.Kind {
	case AuthSSHKey:
		return buildSSHKeyAuth(cfg)
	case AuthSSHAgent:
		user := cfg.SSHUser
		if user == "" {
			user = "git"
		}
		return gitssh.NewSSHAgentAuth(user)
	case AuthHTTPSToken:
		if cfg.Token == "" {
			return nil, fmt.Errorf("https_token auth requires a token")
		}
		user := cfg.Username
		if user == "" {
			user = "token"
		}
		return &githttp.BasicAuth{Username: user, Password: cfg.Token}, nil
	case AuthCredentialHelper:
		return credentialHelperAuth(cfg.RepoURL)
	default:
		return nil, fmt.Errorf("unknown auth method %q", cfg.Kind)
	}
}

func buildSSHKeyAuth(cfg AuthConfig) (transport.AuthMethod, error) {
	if cfg.SSHKeyPath == "" {
		return nil, fmt.Errorf("ssh_key auth requires a key path")
	}
	keyBytes, err := os.ReadFile(cfg.SSHKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read ssh key %s: %w", cfg.SSHKeyPath, err)
	}

	publicKeys, err := gitssh.NewPublicKeys("git", keyBytes, cfg.SSHKeyPass)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ssh key %s: %w", cfg.SSHKeyPath, err)
	}

	if cfg.KnownHosts == "" {
		//nolint:gosec // explicit fallback when no known_hosts is configured
		publicKeys.HostKeyCallback = gossh.InsecureIgnoreHostKey()
		return publicKeys, nil
	}

	callback, err := gitssh.NewKnownHostsCallback(cfg.KnownHosts)
	if err != nil {
		return nil, fmt.Errorf("failed to load known_hosts %s: %w", cfg.KnownHosts, err)
	}
	publicKeys.HostKeyCallback = callback
	return publicKeys, nil
}

// credentialHelperAuth shells out to the configured git credential
// helper using the "git credential fill" protocol (man gitcredentials)
// to retrieve a username/password pair for repoURL.
func credentialHelperAuth(repoURL string) (transport.AuthMethod, error) {
	u, err := url.Parse(repoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse repo url for credential helper: %w", err)
	}

	req := fmt.Sprintf("protocol=%s\nhost=%s\npath=%s\n\n", u.Scheme, u.Host, strings.TrimPrefix(u.Path, "/"))

	cmd := exec.Command("git", "credential", "fill")
	cmd.Stdin = strings.NewReader(req)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git credential fill failed: %w", err)
	}

	username, password := "", ""
	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "username="):
			username = strings.TrimPrefix(line, "username=")
		case strings.HasPrefix(line, "password="):
			password = strings.TrimPrefix(line, "password=")
		}
	}

	if username == "" || password == "" {
		return nil, fmt.Errorf("credential helper returned no usable credentials for %s", repoURL)
	}

	return &githttp.BasicAuth{Username: username, Password: password}, nil
}
