package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/framescope/framescope/internal/cache"
	"github.com/framescope/framescope/internal/model"
	"github.com/framescope/framescope/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "framescope",
	Short: "Framescope - Immigration framing analysis for interview transcripts",
	Long: `Framescope analyzes how broadcast interview and talk-show transcripts
frame immigration.

It ingests utterance-level transcript exports, filters episodes for
immigration relevance, extracts keyword-context snippets, reconciles
human coder annotations, labels snippets with an LLM in resumable
batches, and evaluates supervised classifiers against the human labels.

Results accumulate in a single SQLite dataset that the trends, topics,
quality and export commands read.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number and build information for Framescope.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("framescope v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.framescope/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("db", "framescope.db", "SQLite dataset path")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("store.path", rootCmd.PersistentFlags().Lookup("db"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(filepath.Join(home, ".framescope"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match FRAMESCOPE_*
	viper.SetEnvPrefix("FRAMESCOPE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig layers the config file, FRAMESCOPE_* environment variables and
// bound flags over the built-in defaults.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// openStore opens the SQLite dataset named by the configuration.
func openStore(cfg *model.Config) (*store.Store, error) {
	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("open dataset %s: %w", cfg.Store.Path, err)
	}
	return st, nil
}

// buildCache assembles the snippet cache, or nil when caching is disabled.
func buildCache(cfg *model.Config) cache.Cache {
	if !cfg.Cache.Enabled {
		return nil
	}

	ttl := time.Duration(cfg.Cache.TTLHours) * time.Hour
	dir := cfg.Cache.Dir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			// No resolvable disk location; cache in memory only
			return cache.NewMemoryCache(ttl, 10*time.Minute)
		}
		dir = filepath.Join(home, ".framescope", "cache")
	}
	return cache.NewLayeredCache(ttl, dir, ttl)
}
