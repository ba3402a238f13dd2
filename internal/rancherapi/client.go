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

// Package rancherapi implements the API gateway of spec §4.5: typed
// list/read/create/update-via-patch/delete operations against the
// Rancher management API, with HTTP status codes mapped onto
// internal/shepherderr's typed API-error kinds, an identifying
// X-Client header on every request, and an opt-in (never
// default-on) TLS verification toggle.
package rancherapi

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-logr/logr"

	"github.com/DeusSeos/shepherd/internal/shepherderr"
)

// Config configures a Client.
type Config struct {
	// BaseURL is the root of the management API, e.g. "https://rancher.example.com/v3".
	BaseURL string
	// Token is the bearer token used on every request.
	Token string
	// Insecure disables TLS certificate verification. Must never be
	// defaulted to true by a caller; it exists for self-signed
	// development endpoints only.
	Insecure bool
	// ClientName and ClientVersion compose the X-Client header value.
	ClientName    string
	ClientVersion string
	// Timeout bounds a single request; zero uses a 30s default.
	Timeout time.Duration
}

// Client is the typed gateway to the Rancher management API.
type Client struct {
	http         *http.Client
	baseURL      string
	token        string
	clientHeader string
	log          logr.Logger
}

// New builds a Client from cfg. It never enables TLS verification
// skipping unless cfg.Insecure is explicitly true.
func New(cfg Config, log logr.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, shepherderr.Config("rancherapi.New", fmt.Errorf("base URL is required"))
	}
	if cfg.Token == "" {
		return nil, shepherderr.Config("rancherapi.New", fmt.Errorf("token is required"))
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	transport := &http.Transport{}
	if cfg.Insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // explicit opt-in only
	}

	return &Client{
		http:         &http.Client{Timeout: timeout, Transport: transport},
		baseURL:      cfg.BaseURL,
		token:        cfg.Token,
		clientHeader: fmt.Sprintf("%s/%s", cfg.ClientName, cfg.ClientVersion),
		log:          log,
	}, nil
}

// do executes a single request and decodes a successful JSON response
// into out (which may be nil for delete). Non-2xx responses are
// converted to a shepherderr API error classified by status.
func (c *Client) do(ctx context.Context, method, path string, contentType string, body []byte, out any) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return shepherderr.Transport(opLabel(method, path), fmt.Errorf("failed to build request: %w", err))
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("X-Client", c.clientHeader)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		if contentType == "" {
			contentType = "application/json"
		}
		req.Header.Set("Content-Type", contentType)
	}

	c.log.V(1).Info("rancher api request", "method", method, "path", path)

	resp, err := c.http.Do(req)
	if err != nil {
		return shepherderr.Transport(opLabel(method, path), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return shepherderr.Transport(opLabel(method, path), fmt.Errorf("failed to read response body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return shepherderr.API(opLabel(method, path), resp.StatusCode, string(respBody),
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return shepherderr.API(opLabel(method, path), resp.StatusCode, string(respBody),
			fmt.Errorf("failed to decode response: %w", err))
	}

	return nil
}

func opLabel(method, path string) string {
	return fmt.Sprintf("%s %s", method, path)
}
