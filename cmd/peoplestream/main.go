// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	perrors "github.com/sirseerhq/peoplestream/internal/errors"
)

var version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(mapErrorToExitCode(err))
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "peoplestream",
		Short: "Stream people records over HTTP as NDJSON",
		Long: `peoplestream serves people records as newline-delimited JSON. Records are
pulled from the source one at a time and written to the client as they arrive,
so memory stays flat and the first record is sent before the query finishes.`,
		Version:       version,
		SilenceUsage:  true, // Don't show usage on error
		SilenceErrors: true, // We'll handle error printing ourselves
	}

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newFetchCommand())
	rootCmd.AddCommand(newSeedCommand())
	return rootCmd
}

// mapErrorToExitCode maps internal errors to appropriate exit codes
func mapErrorToExitCode(err error) int {
	if err == nil {
		return 0
	}

	if errors.Is(err, perrors.ErrValidation) ||
		errors.Is(err, perrors.ErrInvalidConfig) {
		return 2 // Invalid input or configuration
	}

	if errors.Is(err, perrors.ErrNetworkFailure) ||
		errors.Is(err, perrors.ErrSource) {
		return 3 // Network or source errors
	}

	return 1 // General error
}
