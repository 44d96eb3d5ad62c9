// Package main is the crysknife CLI entry point and command registration
// hub. Each subcommand lives in its own cmd_*.go file:
//
//   - cmd_init.go     - initCmd, scaffolds Crysknife.ini/BaseCrysknife.ini
//   - cmd_generate.go - generateCmd, diffs engine edits into SourcePatch/
//   - cmd_apply.go    - applyCmd, fuzzy-applies patches onto the engine tree
//   - cmd_clear.go    - clearCmd, strips a plugin's guarded edits back out
//   - cmd_status.go   - statusCmd, reports managed-file state (text or YAML)
//   - cmd_watch.go    - watchCmd, re-runs generate on SourcePatch changes
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"crysknife/internal/logging"
)

var (
	verbose    bool
	engineRoot string
	workspace  string

	consoleLog *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "crysknife",
	Short: "crysknife manages fuzzy, versioned source patches against a large engine tree",
	Long: `crysknife registers, generates, serializes, applies, and clears a plugin's
source edits against an external engine tree, tolerating line-number drift
and minor content drift between engine versions.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		cfg.Encoding = "console"
		cfg.EncoderConfig.TimeKey = ""
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		consoleLog, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		ws := workspace
		if ws == "" {
			ws, _ = os.Getwd()
		}
		if err := logging.Initialize(ws); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to initialize file logging: %v\n", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if consoleLog != nil {
			_ = consoleLog.Sync()
		}
		logging.CloseAll()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&engineRoot, "engine-root", "", "Path to the engine source tree (required)")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory for .crysknife/logs (default: current)")
	rootCmd.MarkPersistentFlagRequired("engine-root")

	rootCmd.AddCommand(
		initCmd,
		generateCmd,
		applyCmd,
		clearCmd,
		statusCmd,
		watchCmd,
	)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fatal(err)
	}
}
