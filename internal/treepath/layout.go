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

// Package treepath implements the deterministic directory/filename
// scheme of spec §4.2: a cluster endpoint's working tree is keyed by
// resource id and type, using a double-suffix convention
// (".project.", ".prtb.", ".rt.", ".cluster.") to discriminate file
// type independent of the chosen serialization extension.
package treepath

import (
	"path"
	"strings"

	"github.com/DeusSeos/shepherd/internal/resource"
)

// SanitizeEndpoint turns a base API URL into the directory-safe form
// used as the root of a cluster endpoint's working tree: the scheme is
// stripped and every "/" becomes "_".
func SanitizeEndpoint(endpointURL string) string {
	s := endpointURL
	if idx := strings.Index(s, "://"); idx >= 0 {
		s = s[idx+3:]
	}
	return strings.ReplaceAll(s, "/", "_")
}

// RoleTemplatePath returns "roles/<rt-id>.rt.<ext>".
func RoleTemplatePath(root, id, ext string) string {
	return path.Join(root, "roles", id+".rt."+ext)
}

// ClusterPath returns "<cluster-id>/<cluster-id>.cluster.<ext>".
func ClusterPath(root, clusterID, ext string) string {
	return path.Join(root, clusterID, clusterID+".cluster."+ext)
}

// ProjectPath returns "<cluster-id>/<project-id>/<project-id>.project.<ext>".
func ProjectPath(root, clusterID, projectID, ext string) string {
	return path.Join(root, clusterID, projectID, projectID+".project."+ext)
}

// PRTBPath returns "<cluster-id>/<project-id>/<prtb-id>.prtb.<ext>".
func PRTBPath(root, clusterID, projectID, prtbID, ext string) string {
	return path.Join(root, clusterID, projectID, prtbID+".prtb."+ext)
}

// PathFor dispatches to the right builder for a kind, given the
// identifying ids needed to place it in the tree.
func PathFor(root string, kind resource.Kind, clusterID, projectID, id, ext string) string {
	switch kind {
	case resource.KindRoleTemplate:
		return RoleTemplatePath(root, id, ext)
	case resource.KindCluster:
		return ClusterPath(root, clusterID, ext)
	case resource.KindProject:
		return ProjectPath(root, clusterID, id, ext)
	case resource.KindPRTB:
		return PRTBPath(root, clusterID, projectID, id, ext)
	default:
		return ""
	}
}

// Classify discriminates a working-tree-relative path into a resource
// kind using the double-suffix convention, falling back to the exact
// chain codified in spec §4.2 and DESIGN NOTES (c) when the suffix is
// ambiguous or absent: a file inside a directory literally named
// "roles" is a RoleTemplate; a basename starting with "prtb-" is a
// PRTB; anything else defaults to Project.
func Classify(relPath string) resource.Kind {
	base := path.Base(relPath)
	switch {
	case strings.Contains(base, ".rt."):
		return resource.KindRoleTemplate
	case strings.Contains(base, ".cluster."):
		return resource.KindCluster
	case strings.Contains(base, ".prtb."):
		return resource.KindPRTB
	case strings.Contains(base, ".project."):
		return resource.KindProject
	}

	dir := path.Dir(relPath)
	for _, segment := range strings.Split(dir, "/") {
		if segment == "roles" {
			return resource.KindRoleTemplate
		}
	}
	if strings.HasPrefix(base, "prtb-") {
		return resource.KindPRTB
	}
	return resource.KindProject
}

// IDFromPath extracts the id (the filename stem before the double
// suffix) from a working-tree-relative path, per invariant 1: the id
// is the filename stem.
func IDFromPath(relPath string) string {
	base := path.Base(relPath)
	for _, suffix := range []string{".rt.", ".cluster.", ".prtb.", ".project."} {
		if idx := strings.Index(base, suffix); idx >= 0 {
			return base[:idx]
		}
	}
	// No recognized double suffix: strip the last extension only.
	ext := path.Ext(base)
	return strings.TrimSuffix(base, ext)
}

// Ext reports the serialization extension recognized in the three
// supported file formats.
func Ext(format string) string {
	switch format {
	case "json":
		return "json"
	case "toml":
		return "toml"
	default:
		return "yaml"
	}
}
