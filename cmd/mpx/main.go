// mpx is the mirepoix command line interface: a recipe step tracker with
// first-class step output dependencies.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"os/user"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mirepoix/mirepoix/internal/config"
	"github.com/mirepoix/mirepoix/internal/storage"
	"github.com/mirepoix/mirepoix/internal/storage/sqlite"
	"github.com/mirepoix/mirepoix/internal/telemetry"
)

// Version and Build are stamped by the release build (-ldflags).
var (
	Version = "dev"
	Build   = "unknown"
)

var (
	dbPath     string
	actor      string
	jsonOutput bool
	noColor    bool

	store storage.Storage

	// Signal-aware context for graceful cancellation
	rootCtx    context.Context
	rootCancel context.CancelFunc

	// Process exit code; refusals set this to 1 without aborting cleanup.
	exitCode int
)

var rootCmd = &cobra.Command{
	Use:   "mpx",
	Short: "mpx - Recipe step tracker with step output dependencies",
	Long: `Recipes as small dependency graphs. Steps are numbered 1..N and later
steps can consume the output of earlier steps; mpx keeps the numbering and
the dependency edges consistent through every edit.`,
	Run: func(cmd *cobra.Command, args []string) {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Printf("mpx version %s (%s)\n", Version, Build)
			return
		}
		_ = cmd.Help()
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupSignalContext()
		setupStyles()

		if err := telemetry.Init(rootCtx, "mpx", Version); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: telemetry init failed: %v\n", err)
		}

		if isNoDbCommand(cmd) {
			return nil
		}
		setupActor()
		return openStore(rootCtx)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if store != nil {
			if err := store.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
			}
			store = nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		telemetry.Shutdown(ctx)
		rootCancel()
	},
}

// isNoDbCommand reports whether cmd runs without an opened database.
func isNoDbCommand(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "mpx", "init", "version", "help", "completion":
		// The bare root command only prints help or the version.
		return true
	}
	return false
}

// setupSignalContext installs a context cancelled on SIGINT/SIGTERM so
// long-running queries abort cleanly instead of leaving the terminal hung.
func setupSignalContext() {
	rootCtx, rootCancel = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// setupActor resolves the audit actor: --actor flag, then MIREPOIX_AUTHOR,
// then the config file, then the OS user.
func setupActor() {
	if actor != "" {
		return
	}
	if a := viper.GetString("author"); a != "" {
		actor = a
		return
	}
	if u, err := user.Current(); err == nil && u.Username != "" {
		actor = u.Username
		return
	}
	actor = "unknown"
}

// openStore resolves the database path and opens the SQLite store, wrapped
// with telemetry when enabled. Path priority: --db flag, MIREPOIX_DB,
// config.yaml, then <configDir>/recipes.db.
func openStore(ctx context.Context) error {
	path := dbPath
	if path == "" {
		path = viper.GetString("database")
	}
	if path == "" {
		configDir, err := config.FindConfigDir()
		if err != nil {
			return fmt.Errorf("no database configured: run 'mpx init' first, or pass --db")
		}
		path = config.LoadLocalConfigWithEnv(configDir).DatabasePath(configDir)
	}

	s, err := sqlite.New(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to open database %s: %w", path, err)
	}

	// ID generation reads the prefix from the database config table, so the
	// configured value (flag, env, or config.yaml) must be pushed down here.
	if prefix := viper.GetString("recipe-prefix"); prefix != "" {
		if err := s.SetConfig(ctx, "recipe_prefix", prefix); err != nil {
			_ = s.Close()
			return fmt.Errorf("failed to apply recipe prefix: %w", err)
		}
	}

	store = telemetry.WrapStorage(s)
	return nil
}

func initViper() {
	viper.SetEnvPrefix("MIREPOIX")
	// Hyphenated config keys (recipe-prefix, no-color) map to underscored
	// env vars (MIREPOIX_RECIPE_PREFIX, MIREPOIX_NO_COLOR).
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if configDir, err := config.FindConfigDir(); err == nil {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(configDir)
		_ = viper.ReadInConfig() // missing config file is fine
	}
}

func init() {
	cobra.OnInitialize(initViper)

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database path (default: auto-discover .mirepoix/recipes.db)")
	rootCmd.PersistentFlags().StringVar(&actor, "actor", "", "Actor name for the audit trail (default: $MIREPOIX_AUTHOR, OS user)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.Flags().BoolP("version", "V", false, "Print version information")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	os.Exit(exitCode)
}
