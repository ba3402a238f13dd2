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

// Package metrics exposes the tick-level counters spec §9's
// observability note asks for: success counts per operation, failure
// counts per kind and operation, plus the duration of each tick. Unlike the teacher's
// OpenTelemetry-to-controller-runtime-registry bridge (no controller
// manager exists here to own a registry), these are plain
// github.com/prometheus/client_golang collectors registered against
// the default registerer and served over plain net/http.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "shepherd"

var (
	ticksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Reconciliation ticks completed, labeled by outcome.",
		},
		[]string{"outcome"},
	)
	tickDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Wall-clock duration of one reconciliation tick.",
			Buckets:   prometheus.DefBuckets,
		},
	)
	pullConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pull_conflicts_total",
			Help:      "Git pulls that resolved a divergent local/remote history.",
		},
	)
	objectsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "objects_total",
			Help:      "Objects successfully created, updated, or deleted, labeled by operation.",
		},
		[]string{"op"},
	)
	objectFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "object_failures_total",
			Help:      "Per-object operation failures, labeled by resource kind and operation.",
		},
		[]string{"kind", "op"},
	)
)

// Handler serves the registered collectors in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// TickOutcome records one completed tick's duration and pull-conflict
// status. Call RecordCounts alongside it with the tick's create/update/
// delete counts.
func TickOutcome(duration time.Duration, pullConflicted bool, failed bool) {
	tickDurationSeconds.Observe(duration.Seconds())
	if pullConflicted {
		pullConflictsTotal.Inc()
	}
	outcome := "success"
	if failed {
		outcome = "failure"
	}
	ticksTotal.WithLabelValues(outcome).Inc()
}

// RecordCounts increments the per-operation object counters for one
// tick's results.
func RecordCounts(created, updated, deleted int) {
	if created > 0 {
		objectsTotal.WithLabelValues("create").Add(float64(created))
	}
	if updated > 0 {
		objectsTotal.WithLabelValues("update").Add(float64(updated))
	}
	if deleted > 0 {
		objectsTotal.WithLabelValues("delete").Add(float64(deleted))
	}
}

// RecordFailure increments the per-kind, per-operation failure counter.
func RecordFailure(kind, op string) {
	objectFailuresTotal.WithLabelValues(kind, op).Inc()
}
