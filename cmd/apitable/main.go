// Command apitable edits API tables stored in a configured record store.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/apitable/apitable-go-sdk/api"
	"github.com/apitable/apitable-go-sdk/apitable"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	configPath     string
	datasourceType string
	seqURL         string
	verbose        bool

	logger  *slog.Logger
	closeFn = func() {}
	client  *apitable.Client
)

var rootCmd = &cobra.Command{
	Use:           "apitable",
	Short:         "Edit API tables",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger, closeFn = setupLogger(seqURL, verbose)

		cfg, err := loadConfiguration(configPath)
		if err != nil {
			return err
		}
		if datasourceType != "" {
			cfg.DatasourceType = datasourceType
		}

		client, err = apitable.NewClient(
			apitable.WithConfiguration(cfg),
			apitable.WithLogger(printfLogger{logger: logger, level: slog.LevelDebug}),
			apitable.WithErrorLogger(printfLogger{logger: logger, level: slog.LevelError}),
			apitable.WithTracker(apitable.LogTracker{Logger: printfLogger{logger: logger, level: slog.LevelInfo}}),
		)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeFn()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("APITABLE_CONFIG"), "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&datasourceType, "datasource", "", "override the configured datasource type")
	rootCmd.PersistentFlags().StringVar(&seqURL, "seq", os.Getenv("APITABLE_SEQ_URL"), "Seq server to ship logs to")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug messages")

	rootCmd.AddCommand(loadCmd, editCmd, exportCmd, renameCmd, fieldCmd, tokenCmd, tablesCmd, recentCmd)
}

// loadConfiguration reads the YAML file at path. An empty path keeps every
// record in memory.
func loadConfiguration(path string) (*api.Configuration, error) {
	cfg := api.NewConfiguration("", "")
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		closeFn()
		stop()
		os.Exit(1)
	}
}
