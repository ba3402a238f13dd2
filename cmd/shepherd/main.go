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
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/DeusSeos/shepherd/internal/version"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	var logFilter string
	var development bool
	var metricsAddr string
	var once bool

	cmd := &cobra.Command{
		Use:     "shepherd",
		Short:   "Reconciles a git-tracked Rancher resource tree against the live management API",
		Version: version.String(),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), runOptions{
				configPath:  configPath,
				logFilter:   logFilter,
				development: development,
				metricsAddr: metricsAddr,
				once:        once,
			})
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to the shepherd config file (default: $HOME/.config/shepherd/config.<ext>)")
	cmd.Flags().StringVar(&logFilter, "log-filter", envOr("SHEPHERD_LOG", "info"), "RUST_LOG-style verbosity filter, e.g. \"info\" or \"info,gitrepo=debug\"")
	cmd.Flags().BoolVar(&development, "dev", false, "use the development zap encoder (console output, stack traces on warn)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-address", ":8080", "address the /metrics endpoint listens on")
	cmd.Flags().BoolVar(&once, "once", false, "run a single tick and exit instead of looping")

	return cmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
