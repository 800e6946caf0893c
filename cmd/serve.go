package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	config "todo-list.com/todo-list/internal/configs"
	httpapi "todo-list.com/todo-list/internal/http"
	repository "todo-list.com/todo-list/internal/repositories"
	"todo-list.com/todo-list/internal/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  "Starts the REST API together with the due-task notifier",
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

		userRepo := repository.NewUserRepository(database)
		categoryRepo := repository.NewCategoryRepository(database)
		taskRepo := repository.NewTaskRepository(database)

		pool, scheduler := newNotifier(cfg, taskRepo, redisClient, logger)
		scheduler.Start()

		handler := httpapi.NewHandler(
			services.NewUserService(userRepo),
			services.NewCategoryService(categoryRepo, userRepo),
			services.NewTaskService(taskRepo, userRepo),
		)

		e := echo.New()
		e.HideBanner = true
		e.HidePort = true
		httpapi.Register(e, handler, cfg.RateLimit, logger.Named("http"))

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			logger.Info("HTTP server listening", zap.String("addr", cfg.AppURL))
			if err := e.Start(cfg.AppURL); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
			defer cancel()

			err := e.Shutdown(shutdownCtx)
			scheduler.Stop(shutdownCtx)
			pool.Shutdown(shutdownCtx)
			return err
		})

		if err := g.Wait(); err != nil {
			return err
		}
		logger.Info("HTTP server and notifier shut down gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
