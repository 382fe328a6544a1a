package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/revqdev/revq/internal/output"
	"github.com/revqdev/revq/internal/store"
	"github.com/revqdev/revq/internal/tasks"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui        *output.UI
	dataStore store.Store

	verbose bool
	dryRun  bool

	buildVersion = "dev"
	buildCommit  = "none"
	buildDate    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "revq",
	Short: "revq - persist review findings and track remediation tasks",
	Long: `revq stores structured code-review findings produced by a reviewing
agent and tracks their remediation as discrete, stateful tasks.
Reviews expand into tasks; tasks move through a pending / in_progress /
completed / cancelled lifecycle.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would happen without making changes")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/revq/config.yaml)")
}

func initConfig() {
	// If --config is explicitly set, use that file
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot find home directory: %v\n", err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".config", "revq")
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("REVQ")
	viper.AutomaticEnv()

	// Defaults via viper.SetDefault(). The data dir is resolved here,
	// once per process, and passed to the store explicitly.
	home, _ := os.UserHomeDir()
	defaultConfigDir := filepath.Join(home, ".config", "revq")

	viper.SetDefault("data_dir", filepath.Join(defaultConfigDir, "data"))
	viper.SetDefault("list.limit", store.DefaultListLimit)

	// Read config file if it exists (optional)
	_ = viper.ReadInConfig()
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose
	ui.DryRun = dryRun

	// The store is initialized lazily so config/version commands run
	// without touching the data dir.
}

// getStore returns the shared store, initializing it on first call.
func getStore() (store.Store, error) {
	if dataStore != nil {
		return dataStore, nil
	}

	dataDir := viper.GetString("data_dir")
	s, err := store.NewFileStore(dataDir)
	if err != nil {
		return nil, fmt.Errorf("open data dir: %w", err)
	}

	dataStore = s
	return dataStore, nil
}

// getService returns a task lifecycle service over the shared store.
func getService() (*tasks.Service, error) {
	s, err := getStore()
	if err != nil {
		return nil, err
	}
	return tasks.NewService(s), nil
}

// shortID returns a truncated identifier for display.
func shortID(id string) string {
	if len(id) > 16 {
		return id[:16]
	}
	return id
}
