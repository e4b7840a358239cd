package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xavierca1/outreach-dashboard/internal/infra/database"
	"github.com/xavierca1/outreach-dashboard/internal/infra/http/handlers"
	"github.com/xavierca1/outreach-dashboard/internal/infra/http/middleware"
	"github.com/xavierca1/outreach-dashboard/internal/infra/http/server"
	"github.com/xavierca1/outreach-dashboard/internal/infra/mail"
	"github.com/xavierca1/outreach-dashboard/internal/infra/queue"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, the lead event worker and the daily trigger",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort > 0 {
			cfg.Server.Port = servePort
		}

		if cfg.Database.AutoMigrate {
			if err := database.RunMigrations(cfg.Database.URL, logger); err != nil {
				return err
			}
		}

		a, err := newApp(cfg, logger, true)
		if err != nil {
			return err
		}
		defer a.Close()

		var wg sync.WaitGroup

		if a.RabbitMQ.Configured() && cfg.RabbitMQ.ConsumerEnabled {
			sender := mail.NewEmailSender(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.User, cfg.Mail.Password,
				cfg.Mail.From, cfg.Mail.To, cfg.Mail.DashboardURL)
			w := queue.NewWorker(a.RabbitMQ.Ch, logger, mail.NewNotifier(sender, logger))
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := w.Start(ctx, queue.QueueName); err != nil {
					logger.Error("lead event worker stopped", zap.Error(err))
				}
			}()
		}

		if cfg.Scheduler.Enabled {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := a.Trigger.Start(ctx); err != nil {
					logger.Error("daily trigger stopped", zap.Error(err))
				}
			}()
		}

		limiter := middleware.NewRateLimiter(cfg.Webhook.RateLimitPerMinute)
		go limiter.Run(ctx.Done())

		router := server.NewRouter(server.RouterDeps{
			Leads:         handlers.NewLeadHandler(a.Query, a.Ingest, a.UpdateStatus, a.UpdateNotes, a.Delete, logger),
			Webhooks:      handlers.NewWebhookHandler(a.Ingest, logger),
			Health:        handlers.NewHealthHandler(a.Repo, a.RabbitMQ, cfg.Server.Version),
			RateLimiter:   limiter,
			WebhookSecret: cfg.Webhook.Secret,
			CORSOrigins:   cfg.Server.CORSOrigins,
			Log:           logger,
		})

		srv := server.New(fmt.Sprintf(":%d", cfg.Server.Port), router, cfg.Server.ReadTimeout(), cfg.Server.WriteTimeout())

		errCh := make(chan error, 1)
		go func() {
			logger.Info("http server listening", zap.Int("port", cfg.Server.Port))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		select {
		case <-ctx.Done():
			logger.Info("shutting down")
		case err := <-errCh:
			stop()
			wg.Wait()
			return eris.Wrap(err, "http server")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout())
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown", zap.Error(err))
		}
		wg.Wait()
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "override server.port")
}
