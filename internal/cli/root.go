package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"orga-bot/internal/app"
	"orga-bot/internal/config"
	appLog "orga-bot/internal/log"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
	rootCmd    *cobra.Command
)

func init() {
	rootCmd = &cobra.Command{
		Use:   "orga",
		Short: "Personal organisation assistant",
		Long: `orga imports checklists from a markdown vault, tracks recurring tasks,
and posts a daily briefing with calendar events to Discord.

Run without a subcommand to open the interactive task menu.`,
		RunE:          runMenu,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "Path to the YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// Execute runs the root command
func Execute(version string) error {
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(todayCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(recurrenceCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(briefingCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(eventAddCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(hashPasswordCmd)

	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func defaultConfigPath() string {
	if p := os.Getenv("ORGA_CONFIG"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(dir, "orga-bot", "config.yaml")
}

// loadConfig reads the config file, overlays the environment and applies
// the log level.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.ApplyEnv()

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	appLog.SetLevel(appLog.ParseLevel(level))
	appLog.Debug("config loaded", "path", configPath, "db_driver", cfg.Database.Driver)
	return cfg, nil
}

// openApp loads config and opens the database. Callers must Close the app.
func openApp() (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	a, err := app.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return a, nil
}
