package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"agentbuilder/internal/app"
)

type rootOptions struct {
	configPath    string
	listenAddress string
	catalogPath   string
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	root := newRootCmd(logger)
	if err := root.Execute(); err != nil {
		logger.Fatal("command failed", zap.Error(err))
	}
}

func newRootCmd(logger *zap.Logger) *cobra.Command {
	opts := rootOptions{}

	root := &cobra.Command{
		Use:           "agentbuilder",
		Short:         "Agent builder backend: tool catalog, agent deployment and chat proxy",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       app.Version + " (" + app.Build + ")",
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to agentbuilder.yaml (defaults to ./agentbuilder.yaml when present)")
	root.PersistentFlags().StringVar(&opts.listenAddress, "listen", "", "override listenAddress")
	root.PersistentFlags().StringVar(&opts.catalogPath, "catalog", "", "override catalogPath")

	root.AddCommand(
		newServeCmd(logger, &opts),
		newValidateCmd(logger, &opts),
		newToolsCmd(logger, &opts),
	)

	return root
}

func newServeCmd(logger *zap.Logger, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts, logger)
			if err != nil {
				return err
			}

			ctx, cancel := signalAwareContext(cmd.Context())
			defer cancel()

			logger.Info("starting agentbuilder", zap.String("version", app.Version), zap.String("build", app.Build))
			application, cleanup, err := app.InitializeApplication(ctx, cfg, app.LoggingConfig{Logger: logger})
			if err != nil {
				return err
			}
			defer cleanup()
			return application.Run(ctx)
		},
	}
}

func newValidateCmd(logger *zap.Logger, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration and the tool catalog without serving",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts, logger)
			if err != nil {
				return err
			}
			summary, err := app.ValidateCatalog(cfg, logger)
			if err != nil {
				return err
			}
			renderSummary(cmd.OutOrStdout(), summary)
			return nil
		},
	}
}

func newToolsCmd(logger *zap.Logger, opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Inspect catalog tools",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List catalog tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			toolbox, err := openToolbox(cmd, opts, logger)
			if err != nil {
				return err
			}
			renderTools(cmd.OutOrStdout(), toolbox.Catalog.List())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "check [id...]",
		Short: "Probe tool endpoints; all tools when no id is given",
		RunE: func(cmd *cobra.Command, args []string) error {
			toolbox, err := openToolbox(cmd, opts, logger)
			if err != nil {
				return err
			}
			ctx, cancel := signalAwareContext(cmd.Context())
			defer cancel()

			results := toolbox.CheckAll(ctx, args)
			if unhealthy := renderHealth(cmd.OutOrStdout(), results); unhealthy > 0 {
				return fmt.Errorf("%d of %d tools unhealthy", unhealthy, len(results))
			}
			return nil
		},
	})

	return cmd
}

func openToolbox(cmd *cobra.Command, opts *rootOptions, logger *zap.Logger) (*app.Toolbox, error) {
	cfg, err := loadConfig(cmd, opts, logger)
	if err != nil {
		return nil, err
	}
	return app.OpenToolbox(cfg, logger)
}

func loadConfig(cmd *cobra.Command, opts *rootOptions, logger *zap.Logger) (app.Config, error) {
	cfg, err := app.LoadConfig(resolveConfigPath(opts.configPath), logger)
	if err != nil {
		return app.Config{}, err
	}
	applyFlagOverrides(cmd, opts, &cfg)
	return cfg, nil
}

// applyFlagOverrides copies explicitly set flags over file and env values.
func applyFlagOverrides(cmd *cobra.Command, opts *rootOptions, cfg *app.Config) {
	cmd.Flags().Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "listen":
			cfg.ListenAddress = opts.listenAddress
		case "catalog":
			cfg.CatalogPath = opts.catalogPath
		}
	})
}

func resolveConfigPath(path string) string {
	if path != "" {
		return path
	}
	if _, err := os.Stat(app.DefaultConfigFile); errors.Is(err, fs.ErrNotExist) {
		return ""
	}
	return app.DefaultConfigFile
}

func signalAwareContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(signals)
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
