package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mirepoix/mirepoix/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a .mirepoix directory in the current directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		configDir := filepath.Join(cwd, config.DirName)

		if _, err := os.Stat(filepath.Join(configDir, "config.yaml")); err == nil {
			fmt.Printf("%s already initialized\n", configDir)
			return nil
		}

		prefix, _ := cmd.Flags().GetString("prefix")
		authorFlag, _ := cmd.Flags().GetString("author")
		cfg := &config.LocalConfig{
			Database:     "recipes.db",
			RecipePrefix: prefix,
			Author:       authorFlag,
		}
		if err := config.WriteLocalConfig(configDir, cfg); err != nil {
			return err
		}

		successColor.Printf("Initialized %s\n", configDir)
		fmt.Printf("Database will be created at %s on first use\n", cfg.DatabasePath(configDir))
		return nil
	},
}

func init() {
	initCmd.Flags().String("prefix", "r", "Prefix for generated recipe IDs")
	initCmd.Flags().String("author", "", "Default author recorded on audit events")
	rootCmd.AddCommand(initCmd)
}
