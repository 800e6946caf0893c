package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	config "todo-list.com/todo-list/internal/configs"
)

var rootCmd = &cobra.Command{
	Use:           "todo-list",
	Short:         "Personal task tracker with a Telegram front end",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads .env and the configuration and builds the process logger.
func bootstrap() (config.Config, *zap.Logger, error) {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}

	logger := config.NewLogger(cfg.LogLevel, cfg.LogEncoding)
	if envErr != nil {
		logger.Debug(".env file not found, using environment variables")
	}
	return cfg, logger, nil
}
