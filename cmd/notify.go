package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	config "todo-list.com/todo-list/internal/configs"
	repository "todo-list.com/todo-list/internal/repositories"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Run one due-task sweep",
	Long:  "Queues reminders for every due task, waits for them to be dispatched and prints how many were scheduled",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := bootstrap()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		database, err := config.NewDatabaseClient(cfg.DatabaseDriver, cfg.DatabaseDSN)
		if err != nil {
			return err
		}

		redisClient, err := newRedis(cfg)
		if err != nil {
			return err
		}
		if redisClient != nil {
			defer redisClient.Close()
		}

		pool, scheduler := newNotifier(cfg, repository.NewTaskRepository(database), redisClient, logger)

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.ShutdownTimeout())
		defer cancel()

		count, err := scheduler.Sweep(ctx)
		pool.Shutdown(ctx)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Scheduled %d notifications\n", count)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(notifyCmd)
}
