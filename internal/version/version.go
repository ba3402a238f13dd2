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

// Package version holds the build identifier baked in via -ldflags,
// used as the X-Client header value and the --version output.
package version

// gitVersion is set at build time via -ldflags
// "-X github.com/DeusSeos/shepherd/internal/version.gitVersion=...".
// A development build leaves it at "dev".
var gitVersion = "dev"

// String returns the running binary's version identifier.
func String() string {
	return gitVersion
}
