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
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-logr/logr"

	"github.com/DeusSeos/shepherd/internal/config"
	"github.com/DeusSeos/shepherd/internal/gitrepo"
	"github.com/DeusSeos/shepherd/internal/logging"
	"github.com/DeusSeos/shepherd/internal/metrics"
	"github.com/DeusSeos/shepherd/internal/rancherapi"
	"github.com/DeusSeos/shepherd/internal/reconcile"
	"github.com/DeusSeos/shepherd/internal/version"
)

type runOptions struct {
	configPath  string
	logFilter   string
	development bool
	metricsAddr string
	once        bool
}

// run wires together config, logging, the git worker, the API
// gateway, and the reconciler, then drives the tick loop (spec §4.6)
// on a time.Ticker until the process receives SIGINT/SIGTERM — or, in
// --once mode, runs exactly one tick and returns.
func run(ctx context.Context, opts runOptions) error {
	log, err := logging.New(opts.logFilter, opts.development)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	setupLog := log.WithName("setup")

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	api, err := rancherapi.New(rancherapi.Config{
		BaseURL:       cfg.EndpointURL,
		Token:         cfg.Token,
		Insecure:      cfg.Insecure,
		ClientName:    "shepherd",
		ClientVersion: version.String(),
	}, log.WithName("rancherapi"))
	if err != nil {
		return fmt.Errorf("failed to build Rancher API client: %w", err)
	}

	auth, err := gitrepo.BuildAuth(authConfigFor(cfg))
	if err != nil {
		return fmt.Errorf("failed to configure git authentication: %w", err)
	}

	repo, err := gitrepo.Open(
		log.WithName("gitrepo"),
		cfg.RemoteGitURL,
		cfg.RancherConfigPath,
		cfg.Branch,
		auth,
		"shepherd/"+version.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to open working tree: %w", err)
	}

	reconciler := reconcile.New(repo, api, reconcile.Config{
		ClusterNames:    cfg.ClusterNames,
		FileFormat:      cfg.FileFormat,
		PRTBCreateDelay: time.Duration(cfg.RetryDelayMs) * time.Millisecond,
	}, log.WithName("reconcile"))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	metricsSrv := startMetricsServer(setupLog, opts.metricsAddr)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}()

	if opts.once {
		return runTick(ctx, reconciler, log)
	}

	interval := time.Duration(cfg.LoopIntervalSec) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	setupLog.Info("shepherd starting", "loopInterval", interval, "clusters", cfg.ClusterNames)

	if err := runTick(ctx, reconciler, log); err != nil {
		setupLog.Error(err, "initial tick failed; continuing loop")
	}

	for {
		select {
		case <-ctx.Done():
			setupLog.Info("shutdown signal received")
			return nil
		case <-ticker.C:
			if err := runTick(ctx, reconciler, log); err != nil {
				setupLog.Error(err, "tick failed; continuing loop")
			}
		}
	}
}

func runTick(ctx context.Context, reconciler *reconcile.Reconciler, log logr.Logger) error {
	start := time.Now()
	summary, err := reconciler.Tick(ctx)
	duration := time.Since(start)

	metrics.TickOutcome(duration, summary.PullConflicted, err != nil || len(summary.Failures) > 0)
	metrics.RecordCounts(len(summary.Created), len(summary.Updated), len(summary.Deleted))
	for _, failure := range summary.Failures {
		metrics.RecordFailure(failure.Kind.String(), failure.Op)
	}

	if err != nil {
		return err
	}

	log.Info("===== tick complete =====",
		"duration", duration,
		"created", len(summary.Created),
		"updated", len(summary.Updated),
		"deleted", len(summary.Deleted),
		"failures", len(summary.Failures),
	)
	return nil
}

func authConfigFor(cfg *config.Config) gitrepo.AuthConfig {
	return gitrepo.AuthConfig{
		Kind:       gitrepo.AuthMethodKind(cfg.AuthMethod),
		SSHKeyPath: cfg.SSHKeyPath,
		Token:      cfg.GitToken,
		RepoURL:    cfg.RemoteGitURL,
	}
}

func startMetricsServer(log logr.Logger, addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(err, "metrics server stopped unexpectedly")
		}
	}()
	return srv
}
