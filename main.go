package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/naseer2426/telegram-proxy/internal/api"
	"github.com/naseer2426/telegram-proxy/internal/bootstrap"
	"github.com/naseer2426/telegram-proxy/internal/config"
	"github.com/naseer2426/telegram-proxy/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		envFile    string
		port       string
	)

	cmd := &cobra.Command{
		Use:          "telegram-proxy",
		Short:        "Relay text and photos to a Telegram chat with client metadata attached",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadEnvFile(envFile); err != nil {
				return err
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}
			return serve(cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "optional YAML config file")
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (overrides PORT)")
	return cmd
}

func serve(cfg *config.Config) error {
	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	svc, cleanup, err := bootstrap.NewRelay(cfg, log)
	if err != nil {
		log.Errorw("failed to build relay", "error", err)
		return err
	}
	defer cleanup()

	router := api.NewRouter(&api.ProxyHandler{
		Relay:          svc,
		Log:            log,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})

	log.Infow("server running", "port", cfg.Port)
	if err := router.Run(cfg.Addr()); err != nil {
		log.Errorw("failed to start server", "error", err)
		return err
	}
	return nil
}
