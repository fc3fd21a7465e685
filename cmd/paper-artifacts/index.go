// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-artifacts/internal/convert"
	"github.com/pdiddy/paper-artifacts/internal/render"
	"github.com/pdiddy/paper-artifacts/internal/store"
	"github.com/pdiddy/paper-artifacts/pkg/types"
)

// --- index subcommand ---

var indexCmd = &cobra.Command{
	Use:   "index <input_csv_path>...",
	Short: "Group query logs and merge them into a SQLite index",
	Long: `Index groups each CSV query log the same way the root command does and
stores the result in a SQLite database. Papers seen in an earlier import are
replaced by the newer grouping and keep their position; new papers are
appended. Each file is imported in its own transaction.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIndex,
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := store.Open(ctx, storeConfig(cmd))
	if err != nil {
		return err
	}
	defer s.Close()

	cols := columnsFromConfig()
	w := cmd.OutOrStdout()
	for _, path := range args {
		papers, rows, err := convert.Load(ctx, path, cols, logger)
		if err != nil {
			return err
		}
		summary, err := s.Import(ctx, path, papers)
		if err != nil {
			return fmt.Errorf("importing %s: %w", path, err)
		}
		logger.Debug("imported", zap.String("source", path), zap.String("import_id", summary.ID))
		fmt.Fprintf(w, "indexed %s: %d rows, %d new papers, %d replaced, %d queries\n",
			path, rows, summary.Inserted, summary.Replaced, summary.Queries)
	}
	return nil
}

// --- export subcommand ---

var exportCmd = &cobra.Command{
	Use:   "export <output_path>",
	Short: "Write the indexed papers as a JSON or YAML document",
	Long: `Export reads every paper in the SQLite index, in index order, and writes
the same document shape the root command produces. The output file is
replaced atomically.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	out := args[0]
	formatFlag, _ := cmd.Flags().GetString("format")
	format, err := render.FormatFor(out, types.OutputFormat(formatFlag))
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	s, err := store.Open(ctx, storeConfig(cmd))
	if err != nil {
		return err
	}
	defer s.Close()

	papers, err := s.Papers(ctx)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := render.Render(&buf, papers, format); err != nil {
		return err
	}
	if err := convert.WriteFileAtomic(out, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("%w: %w", convert.ErrWrite, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "exported %d papers to %s\n", len(papers), out)
	return nil
}

// --- shared helpers ---

// storeConfig resolves the database path: --db, then the "db" config key
// or PAPER_ARTIFACTS_DB, then the default.
func storeConfig(cmd *cobra.Command) types.StoreConfig {
	path, _ := cmd.Flags().GetString("db")
	if !cmd.Flags().Changed("db") {
		if v := viper.GetString("db"); v != "" {
			path = v
		}
	}
	return types.StoreConfig{DBPath: path}
}

func init() {
	indexCmd.Flags().String("db", store.DefaultDBPath, "SQLite index file")
	exportCmd.Flags().String("db", store.DefaultDBPath, "SQLite index file")
	exportCmd.Flags().String("format", "", "output format: json or yaml (default: from output extension, else json)")

	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(exportCmd)
}
