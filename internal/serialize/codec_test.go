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

package serialize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeusSeos/shepherd/internal/resource"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	rt := resource.RoleTemplate{
		ID:          "rt-view",
		DisplayName: "View",
		Context:     "project",
		Builtin:     true,
		Rules: []resource.PolicyRule{
			{APIGroups: []string{""}, Resources: []string{"pods"}, Verbs: []string{"get"}},
		},
		Labels: map[string]string{"team": "platform"},
	}

	for _, format := range []string{FormatYAML, FormatJSON, FormatTOML} {
		t.Run(format, func(t *testing.T) {
			data, err := Encode(format, rt)
			require.NoError(t, err)

			var got resource.RoleTemplate
			require.NoError(t, Decode(format, data, &got))
			assert.Equal(t, rt, got)
		})
	}
}

func TestDecodeUnsupportedFormat(t *testing.T) {
	var out resource.Cluster
	err := Decode("xml", []byte("<x/>"), &out)
	assert.ErrorContains(t, err, "unsupported file format")
}

func TestExtForFormat(t *testing.T) {
	assert.Equal(t, "json", ExtForFormat(FormatJSON))
	assert.Equal(t, "toml", ExtForFormat(FormatTOML))
	assert.Equal(t, "yaml", ExtForFormat(FormatYAML))
	assert.Equal(t, "yaml", ExtForFormat("unknown"))
}
