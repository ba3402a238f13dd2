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

// Package serialize encodes and decodes canonical resource records in
// the three file formats spec §4.2 requires support for. Every format
// round-trips through the record's JSON tags: YAML via sigs.k8s.io/yaml
// (which itself converts through JSON), TOML via an intermediate
// map[string]interface{} produced by encoding/json so that a single
// struct tag set (json) governs the on-disk key names in all three
// encodings.
package serialize

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/BurntSushi/toml"
	sigsyaml "sigs.k8s.io/yaml"
)

// Format names as they appear in the config file_format key and as
// file extensions (spec §6).
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
	FormatTOML = "toml"
)

// Encode marshals v into the given format.
func Encode(format string, v interface{}) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(v, "", "  ")
	case FormatYAML:
		return sigsyaml.Marshal(v)
	case FormatTOML:
		return encodeTOML(v)
	default:
		return nil, fmt.Errorf("unsupported file format %q", format)
	}
}

// Decode unmarshals data (in the given format) into out, which must be
// a pointer.
func Decode(format string, data []byte, out interface{}) error {
	switch format {
	case FormatJSON:
		return json.Unmarshal(data, out)
	case FormatYAML:
		return sigsyaml.Unmarshal(data, out)
	case FormatTOML:
		return decodeTOML(data, out)
	default:
		return fmt.Errorf("unsupported file format %q", format)
	}
}

func encodeTOML(v interface{}) ([]byte, error) {
	generic, err := toGenericMap(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(generic); err != nil {
		return nil, fmt.Errorf("toml encode: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeTOML(data []byte, out interface{}) error {
	var generic map[string]interface{}
	if _, err := toml.Decode(string(data), &generic); err != nil {
		return fmt.Errorf("toml decode: %w", err)
	}
	jsonBytes, err := json.Marshal(generic)
	if err != nil {
		return fmt.Errorf("toml intermediate re-encode: %w", err)
	}
	return json.Unmarshal(jsonBytes, out)
}

func toGenericMap(v interface{}) (map[string]interface{}, error) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("json encode for toml: %w", err)
	}
	var generic map[string]interface{}
	if err := json.Unmarshal(jsonBytes, &generic); err != nil {
		return nil, fmt.Errorf("json decode for toml: %w", err)
	}
	return generic, nil
}

// ExtForFormat returns the canonical file extension for a format name.
func ExtForFormat(format string) string {
	switch format {
	case FormatJSON:
		return "json"
	case FormatTOML:
		return "toml"
	default:
		return "yaml"
	}
}
