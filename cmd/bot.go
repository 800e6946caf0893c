package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"todo-list.com/todo-list/internal/apiclient"
	"todo-list.com/todo-list/internal/dialog"
	"todo-list.com/todo-list/internal/telegram"
	"todo-list.com/todo-list/internal/wizard"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Start the Telegram bot",
	Long:  "Long-polls Telegram and drives the task wizards against the REST API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := bootstrap()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		if cfg.TelegramBotToken == "" {
			return errors.New("TELEGRAM_BOT_TOKEN is required to run the bot")
		}

		redisClient, err := newRedis(cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		g, gctx := errgroup.WithContext(ctx)

		dialogTTL := time.Duration(cfg.DialogTTLSeconds) * time.Second
		var dialogs dialog.Store
		if redisClient != nil {
			defer redisClient.Close()
			dialogs = dialog.NewRedisStore(redisClient, cfg.RedisKeyPrefix, dialogTTL)
		} else {
			memory := dialog.NewMemoryStore(dialogTTL)
			dialogs = memory
			g.Go(func() error {
				ticker := time.NewTicker(time.Minute)
				defer ticker.Stop()
				for {
					select {
					case <-gctx.Done():
						return nil
					case <-ticker.C:
						if n := memory.Sweep(); n > 0 {
							logger.Debug("expired conversations dropped", zap.Int("count", n))
						}
					}
				}
			})
		}

		store := apiclient.New(cfg.APIBaseURL, time.Duration(cfg.APITimeoutSeconds)*time.Second, logger.Named("api"))
		machine := wizard.NewMachine(store, cfg.Location(), logger.Named("wizard"))

		pollTimeout := time.Duration(cfg.TelegramPollTimeoutSeconds) * time.Second
		client := telegram.NewClient(cfg.TelegramBotToken, telegram.WithHTTPClient(&http.Client{
			Timeout: pollTimeout + 10*time.Second,
		}))
		bot := telegram.NewBot(client, machine, dialogs, logger.Named("bot"), pollTimeout, cfg.BotWorkers)

		g.Go(func() error {
			logger.Info("telegram bot started", zap.String("api", cfg.APIBaseURL))
			if err := bot.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})

		if err := g.Wait(); err != nil {
			return err
		}
		logger.Info("telegram bot stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(botCmd)
}
