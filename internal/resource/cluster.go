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

package resource

import "fmt"

// Cluster is the canonical, on-disk form of a management Cluster
// (spec §3). It has no parent.
type Cluster struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName,omitempty"`
	Description string `json:"description,omitempty"`
}

type ClusterWire struct {
	APIVersion string      `json:"apiVersion"`
	Kind       string      `json:"kind"`
	Metadata   Metadata    `json:"metadata"`
	Spec       ClusterSpec `json:"spec"`
}

type ClusterSpec struct {
	DisplayName string `json:"displayName,omitempty"`
	Description string `json:"description,omitempty"`
}

const clusterAPIVersion = "management.cattle.io/v3"
const clusterKind = "Cluster"

func (c Cluster) ToWire() ClusterWire {
	return ClusterWire{
		APIVersion: clusterAPIVersion,
		Kind:       clusterKind,
		Metadata:   Metadata{Name: c.ID},
		Spec: ClusterSpec{
			DisplayName: c.DisplayName,
			Description: c.Description,
		},
	}
}

func ClusterFromWire(w ClusterWire) (Cluster, error) {
	if w.Metadata.Name == "" {
		return Cluster{}, fmt.Errorf("missing required field: metadata.name")
	}
	return Cluster{
		ID:          w.Metadata.Name,
		DisplayName: w.Spec.DisplayName,
		Description: w.Spec.Description,
	}, nil
}
