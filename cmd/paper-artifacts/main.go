// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paper-artifacts CLI.
//
// The root command converts a query log CSV into a JSON document grouped by
// paper and artifact. Subcommands maintain a SQLite index of converted logs.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/paper-artifacts/internal/convert"
	"github.com/pdiddy/paper-artifacts/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// logger carries diagnostics; status lines go to stdout.
var logger = zap.NewNop()

// rootCmd converts one CSV file into one grouped document.
var rootCmd = &cobra.Command{
	Use:   "paper-artifacts <input_csv_path> <output_json_path>",
	Short: "Group a paper/artifact query log CSV into nested JSON",
	Long: `paper-artifacts reads a CSV query log with one row per query and writes a
JSON array with one object per paper (arxiv_id), each holding its artifacts
(artifact_id) and, for every artifact, the original rows that referenced it.

Papers and artifacts keep the order in which they first appear. The output is
written atomically: on any error the output file is left untouched.

Required columns: arxiv_id, artifact_id, artifact_text. Optional: arxiv_title.
Any other columns are carried through unchanged.`,
	Args:          cobra.ExactArgs(2),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		if !verbose {
			return nil
		}
		config := zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		l, err := config.Build()
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg := types.ConvertConfig{
		InputPath:  args[0],
		OutputPath: args[1],
		Format:     types.OutputFormat(viper.GetString("format")),
		Columns:    columnsFromConfig(),
	}
	_, err := convert.Run(cmd.Context(), cfg, logger, cmd.OutOrStdout())
	return err
}

// columnsFromConfig reads column names from flags, config file or
// PAPER_ARTIFACTS_COLUMNS_* variables.
func columnsFromConfig() types.Columns {
	return types.Columns{
		PaperID:      viper.GetString("columns.paper_id"),
		PaperTitle:   viper.GetString("columns.paper_title"),
		ArtifactID:   viper.GetString("columns.artifact_id"),
		ArtifactText: viper.GetString("columns.artifact_text"),
	}.WithDefaults()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./paper-artifacts.yaml or ~/.config/paper-artifacts/config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log diagnostics to stderr")
	rootCmd.PersistentFlags().String("paper-id-column", types.DefaultPaperIDColumn, "column holding the paper ID")
	rootCmd.PersistentFlags().String("paper-title-column", types.DefaultPaperTitleColumn, "column holding the paper title")
	rootCmd.PersistentFlags().String("artifact-id-column", types.DefaultArtifactIDColumn, "column holding the artifact ID")
	rootCmd.PersistentFlags().String("artifact-text-column", types.DefaultArtifactTextColumn, "column holding the artifact text")

	rootCmd.Flags().String("format", "", "output format: json or yaml (default: from output extension, else json)")

	_ = viper.BindPFlag("columns.paper_id", rootCmd.PersistentFlags().Lookup("paper-id-column"))
	_ = viper.BindPFlag("columns.paper_title", rootCmd.PersistentFlags().Lookup("paper-title-column"))
	_ = viper.BindPFlag("columns.artifact_id", rootCmd.PersistentFlags().Lookup("artifact-id-column"))
	_ = viper.BindPFlag("columns.artifact_text", rootCmd.PersistentFlags().Lookup("artifact-text-column"))
	_ = viper.BindPFlag("format", rootCmd.Flags().Lookup("format"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paper-artifacts")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paper-artifacts"))
		}
	}

	viper.SetEnvPrefix("PAPER_ARTIFACTS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
