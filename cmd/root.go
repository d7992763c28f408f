package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lexivo/lexivo/internal/config"
	"github.com/lexivo/lexivo/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "lexivo",
	Short: "Adaptive language-learning scheduler",
	Long:  "Lexivo — spaced-repetition review scheduling and lesson session tracking for language learners.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides LEXIVO_DB env var)")
	rootCmd.PersistentFlags().String("user", "default", "Learner profile to operate on")

	rootCmd.AddCommand(dueCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(livesCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest
// priority), then the config file, then LEXIVO_DB / the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg *config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg != nil && cfg.Database.Path != "" {
		return cfg.Database.Path, store.EnsureDir(cfg.Database.Path)
	}
	return store.DefaultDBPath()
}

// openStore loads configuration and opens the backing database for a
// command invocation.
func openStore(cmd *cobra.Command) (*store.Store, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	path, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, nil, err
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return st, cfg, nil
}

// newLogger builds the logger handed to the session engine, honoring the
// configured level and format.
func newLogger(cfg *config.Config) *logrus.Logger {
	log := logrus.New()
	if cfg != nil {
		if lvl, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
			log.SetLevel(lvl)
		}
		if cfg.Log.Format == "json" {
			log.SetFormatter(&logrus.JSONFormatter{})
		}
	}
	return log
}

func userFlag(cmd *cobra.Command) string {
	u, _ := cmd.Flags().GetString("user")
	if u == "" {
		u = "default"
	}
	return u
}
