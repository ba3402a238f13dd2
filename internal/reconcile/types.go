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

// Package reconcile implements the tick loop of spec §4.6: pull the
// working tree, commit and push whatever was already sitting in it,
// then bring the live Rancher side into line with the desired state
// recorded on disk — creating, updating, and deleting objects with
// bounded parallelism and per-object failure isolation, so that one
// bad object never aborts the rest of the tick.
package reconcile

import (
	"time"

	"github.com/go-logr/logr"

	"github.com/DeusSeos/shepherd/internal/gitrepo"
	"github.com/DeusSeos/shepherd/internal/rancherapi"
	"github.com/DeusSeos/shepherd/internal/resource"
	"github.com/DeusSeos/shepherd/internal/serialize"
)

// Config tunes one Reconciler's tick behavior. Zero values are
// replaced with spec §4.6's defaults by New.
type Config struct {
	// ClusterNames is the configured set of cluster ids this
	// reconciler is responsible for.
	ClusterNames []string
	// FileFormat is the on-disk serialization used for every record
	// (spec §6's file_format config key).
	FileFormat string
	// MaxParallelUpdates bounds in-flight update/create calls within a
	// single phase. Defaults to 8.
	MaxParallelUpdates int
	// ReadinessAttempts/ReadinessDelay configure the poll run between
	// create-phase barriers (spec §4.6: 10 attempts, 1s interval).
	ReadinessAttempts int
	ReadinessDelay    time.Duration
	// PRTBCreateAttempts/PRTBCreateDelay configure the PRTB-specific
	// creation retry (spec §4.6: at most 5 attempts, 200ms delay,
	// retrying only on not-found or server-error responses).
	PRTBCreateAttempts int
	PRTBCreateDelay    time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxParallelUpdates <= 0 {
		c.MaxParallelUpdates = 8
	}
	if c.ReadinessAttempts <= 0 {
		c.ReadinessAttempts = 10
	}
	if c.ReadinessDelay <= 0 {
		c.ReadinessDelay = time.Second
	}
	if c.PRTBCreateAttempts <= 0 {
		c.PRTBCreateAttempts = 5
	}
	if c.PRTBCreateDelay <= 0 {
		c.PRTBCreateDelay = 200 * time.Millisecond
	}
	if c.FileFormat == "" {
		c.FileFormat = serialize.FormatYAML
	}
	return c
}

// Reconciler drives one tick of convergence between a local working
// tree, its remote Git repository, and the live Rancher management
// API.
type Reconciler struct {
	repo *gitrepo.Repo
	api  *rancherapi.Client
	cfg  Config
	log  logr.Logger
}

// New builds a Reconciler. repo must already be open (see
// gitrepo.Open).
func New(repo *gitrepo.Repo, api *rancherapi.Client, cfg Config, log logr.Logger) *Reconciler {
	return &Reconciler{repo: repo, api: api, cfg: cfg.withDefaults(), log: log}
}

// ObjectFailure records one object's failed operation without
// aborting the tick that produced it.
type ObjectFailure struct {
	Kind resource.Kind
	ID   string
	Op   string // "create", "update", or "delete"
	Err  error
}

// TickSummary reports everything one Tick call did.
type TickSummary struct {
	PullConflicted bool
	Committed      bool
	Pushed         bool
	Created        []string
	Updated        []string
	Deleted        []string
	Failures       []ObjectFailure
}

// createdObject identifies a just-created object well enough to poll
// for its readiness afterward.
type createdObject struct {
	Kind      resource.Kind
	ID        string
	Namespace string
}
