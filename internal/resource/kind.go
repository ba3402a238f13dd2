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

// Package resource holds the canonical domain records for the four
// Rancher management resource kinds, their wire-form counterparts, and
// the bidirectional, total-where-possible conversion between the two
// (spec §4.1). The canonical form is what gets stored on disk, diffed,
// and compared; the wire form mirrors the management API's nested
// metadata/spec shape.
package resource

// Kind identifies one of the four management resource kinds this
// system reconciles. Ordering of the iota values matches the creation
// priority RoleTemplate < Project < PRTB < Cluster used by the Git
// worker's working-tree classification (spec §4.3).
type Kind int

const (
	KindRoleTemplate Kind = iota
	KindProject
	KindPRTB
	KindCluster
)

// String returns the lower-case kind name used in log fields and diff
// keys (file suffixes come from FileSuffix).
func (k Kind) String() string {
	switch k {
	case KindRoleTemplate:
		return "roletemplate"
	case KindProject:
		return "project"
	case KindPRTB:
		return "prtb"
	case KindCluster:
		return "cluster"
	default:
		return "unknown"
	}
}

// FileSuffix returns the double-suffix token used in file names
// (spec §4.2), e.g. "rt" for RoleTemplate.
func (k Kind) FileSuffix() string {
	switch k {
	case KindRoleTemplate:
		return "rt"
	case KindProject:
		return "project"
	case KindPRTB:
		return "prtb"
	case KindCluster:
		return "cluster"
	default:
		return "unknown"
	}
}

// Metadata is the common, server-managed-aware metadata block shared
// by every wire-form record: name/namespace identify the object,
// labels/annotations are user-managed, resourceVersion and uid are
// server-assigned and must never be set by a client (spec invariant 4).
type Metadata struct {
	Name            string            `json:"name,omitempty"`
	Namespace       string            `json:"namespace,omitempty"`
	GenerateName    string            `json:"generateName,omitempty"`
	Labels          map[string]string `json:"labels,omitempty"`
	Annotations     map[string]string `json:"annotations,omitempty"`
	ResourceVersion string            `json:"resourceVersion,omitempty"`
	UID             string            `json:"uid,omitempty"`
}
