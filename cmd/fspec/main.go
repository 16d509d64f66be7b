package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/fang"
	charmLog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"fspec/internal/app"
	"fspec/internal/config"
	"fspec/internal/platform"
	"fspec/internal/storage/jsonfile"
)

var version = "dev"

var (
	// Global flags
	verbose   bool
	workspace string

	logger *charmLog.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "fspec",
	Short: "fspec - spec-driven work unit tracker",
	Long: `fspec tracks work units (stories, tasks, bugs) through a fixed
specify/test/implement/validate pipeline, with per-unit specification
ledgers, dependency tracking, and estimation analytics.

State lives in plain JSON files under a .fspec directory, safe for
concurrent use from multiple processes.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := charmLog.WarnLevel
		if verbose {
			level = charmLog.DebugLevel
		}
		logger = charmLog.NewWithOptions(os.Stderr, charmLog.Options{
			Level:           level,
			Prefix:          "fspec",
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
			Formatter:       charmLog.LogfmtFormatter,
		})
	},
}

// initCmd creates a workspace in the current directory
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a workspace in the current directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root := workspace
		if root == "" {
			root = "."
		}
		paths, err := platform.InitWorkspace(root)
		if err != nil {
			return err
		}
		logger.Info("workspace initialized", "root", paths.Root, "data_dir", paths.DataDir)
		fmt.Fprintf(cmd.OutOrStdout(), "initialized workspace at %s\n", paths.Root)
		return nil
	},
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := fang.Execute(ctx, rootCmd, fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}

// newService resolves the enclosing workspace and wires the
// application service over it.
func newService(cmd *cobra.Command) (*app.Service, error) {
	start := workspace
	if start == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve working dir: %w", err)
		}
		start = cwd
	}
	paths, err := platform.FindWorkspace(start)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(paths.ConfigPath, config.Default())
	if err != nil {
		return nil, fmt.Errorf("load config %q: %w", paths.ConfigPath, err)
	}
	// store.dir is documented as workspace-relative unless absolute.
	dataDir := cfg.Store.Dir
	if !filepath.IsAbs(dataDir) {
		dataDir = filepath.Join(paths.Root, dataDir)
	}
	logger.Debug("workspace resolved", "root", paths.Root, "data_dir", dataDir)

	store, err := jsonfile.Open(dataDir, jsonfile.Options{
		Logger:      logger,
		LockRetries: cfg.Store.LockRetries,
		LockBackoff: time.Duration(cfg.Store.LockBackoffMS) * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return app.NewService(store, time.Now, app.Config{
		TokensPerPoint:         cfg.Estimation.TokensPerPoint,
		GuideConfidenceSamples: cfg.Estimation.GuideConfidenceSamples,
	}), nil
}

// printJSON writes one command result as indented JSON.
func printJSON(cmd *cobra.Command, v any) error {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	encoded = append(encoded, '\n')
	if _, err := cmd.OutOrStdout().Write(encoded); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "workspace root (default: walk up from cwd)")

	rootCmd.AddCommand(initCmd)
}
