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
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sirseerhq/peoplestream/internal/config"
	perrors "github.com/sirseerhq/peoplestream/internal/errors"
	"github.com/sirseerhq/peoplestream/internal/source"
)

func newSeedCommand() *cobra.Command {
	var (
		configPath string
		dsn        string
		count      int
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create and populate a SQLite people database",
		Long: `Create the person table in a SQLite database and insert generated people.

Rows are inserted with ids 1..count; running seed again replaces them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("dsn") {
				cfg.Source.DSN = dsn
			}
			return runSeed(cmd.Context(), cfg.Source.DSN, count, cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to configuration file")
	cmd.Flags().StringVar(&dsn, "dsn", "", "SQLite database path (default people.db)")
	cmd.Flags().IntVar(&count, "count", 1000, "Number of people to insert")

	return cmd
}

// runSeed writes count demo people into the database at dsn.
func runSeed(ctx context.Context, dsn string, count int, errOut io.Writer) error {
	if count < 0 {
		return fmt.Errorf("count cannot be negative, got: %d: %w", count, perrors.ErrValidation)
	}

	db, err := source.OpenSQLite(ctx, dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Fprintf(errOut, "Seeding %d people into %s...", count, dsn)
	if err := db.Seed(ctx, source.DemoPeople(count)); err != nil {
		fmt.Fprintf(errOut, "\r\033[K") // Clear progress line
		return fmt.Errorf("%w: %w", perrors.ErrSource, err)
	}
	fmt.Fprintf(errOut, "\r\033[K") // Clear progress line
	fmt.Fprintf(errOut, "Successfully seeded %d people into %s\n", count, dsn)
	return nil
}
