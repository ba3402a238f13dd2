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

package reconcile

import (
	"context"
	"errors"
	"sort"

	"github.com/DeusSeos/shepherd/internal/gitrepo"
	"github.com/DeusSeos/shepherd/internal/rancherapi"
	"github.com/DeusSeos/shepherd/internal/resource"
	"github.com/DeusSeos/shepherd/internal/serialize"
	"github.com/DeusSeos/shepherd/internal/shepherderr"
)

var errUnknownKind = errors.New("unknown resource kind")

// deletionPriority orders deletions children first: PRTBs first, so a
// Project is never asked to delete out from under a binding that still
// references it, then Projects, then RoleTemplates, and Clusters last.
func deletionPriority(kind resource.Kind) int {
	switch kind {
	case resource.KindPRTB:
		return 0
	case resource.KindProject:
		return 1
	case resource.KindRoleTemplate:
		return 2
	case resource.KindCluster:
		return 3
	default:
		return 4
	}
}

// runDeletePhase deletes every object named in deletions, using the
// pre-deletion file contents gitrepo.Classify captured to recover each
// object's minimal identity (spec §4.3: the working tree no longer has
// the file to read at the moment of deletion). An already-gone object
// (a 404 from the delete call itself) is treated as success, not
// failure.
func (r *Reconciler) runDeletePhase(ctx context.Context, deletions []gitrepo.DeletedFile) ([]string, []ObjectFailure) {
	ordered := make([]gitrepo.DeletedFile, len(deletions))
	copy(ordered, deletions)
	sort.SliceStable(ordered, func(i, j int) bool {
		return deletionPriority(ordered[i].Kind) < deletionPriority(ordered[j].Kind)
	})

	var deleted []string
	var failures []ObjectFailure

	for _, d := range ordered {
		id, namespace, err := minimalIdentity(d.Kind, formatFromPath(d.Path), d.Contents)
		if err != nil {
			failures = append(failures, ObjectFailure{Kind: d.Kind, Op: "delete", Err: err})
			continue
		}

		if err := rancherapi.Delete(ctx, r.api, d.Kind, namespace, id); err != nil && !shepherderr.IsNotFound(err) {
			failures = append(failures, ObjectFailure{Kind: d.Kind, ID: id, Op: "delete", Err: err})
			continue
		}
		deleted = append(deleted, id)
	}

	return deleted, failures
}

// minimalIdentity recovers the id and (when applicable) namespace of a
// deleted object from its last-known file contents.
func minimalIdentity(kind resource.Kind, format string, contents []byte) (id, namespace string, err error) {
	switch kind {
	case resource.KindRoleTemplate:
		var rt resource.RoleTemplate
		if err := serialize.Decode(format, contents, &rt); err != nil {
			return "", "", shepherderr.Decode("reconcile.minimalIdentity.roletemplate", err)
		}
		return rt.ID, "", nil
	case resource.KindCluster:
		var c resource.Cluster
		if err := serialize.Decode(format, contents, &c); err != nil {
			return "", "", shepherderr.Decode("reconcile.minimalIdentity.cluster", err)
		}
		return c.ID, "", nil
	case resource.KindProject:
		var p resource.Project
		if err := serialize.Decode(format, contents, &p); err != nil {
			return "", "", shepherderr.Decode("reconcile.minimalIdentity.project", err)
		}
		return p.ID, p.ClusterName, nil
	case resource.KindPRTB:
		var b resource.PRTB
		if err := serialize.Decode(format, contents, &b); err != nil {
			return "", "", shepherderr.Decode("reconcile.minimalIdentity.prtb", err)
		}
		return b.ID, b.Namespace, nil
	default:
		return "", "", shepherderr.Decode("reconcile.minimalIdentity", errUnknownKind)
	}
}
