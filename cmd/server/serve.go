package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"gwi.com/induction-assistant/internal/api"
	"gwi.com/induction-assistant/internal/config"
	"gwi.com/induction-assistant/internal/logger"
	"gwi.com/induction-assistant/internal/scheduler"
	"gwi.com/induction-assistant/internal/watcher"
)

func newServeCmd() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.HTTPPort = port
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			if cfg.WatchKnowledgeBase && strings.ToLower(cfg.KnowledgeBackend) == config.BackendJSON {
				w, err := watcher.New(cfg.KnowledgeBasePath, a.knowledge, watcher.DefaultDebounce, logger.Component(log, "watcher"))
				if err != nil {
					log.Warn().Err(err).Msg("Knowledge base watcher disabled")
				} else {
					w.Start(ctx)
					a.closers = append(a.closers, w.Close)
				}
			}

			sched := scheduler.New(cfg.ReloadSchedule, a.knowledge.Load, logger.Component(log, "scheduler"))
			if err := sched.Start(); err != nil {
				return err
			}
			defer sched.Stop()

			handler := api.NewAPIHandler(api.Deps{
				Assistant: a.assistant,
				Knowledge: a.knowledge,
				Settings:  a.settings,
				Sessions:  a.sessions,
				Auth:      a.auth,
				Logger:    logger.Component(log, "api"),
			})
			router := api.NewRouter(handler, api.RouterOptions{
				CORSOrigins:    cfg.CORSOrigins,
				RequestTimeout: cfg.RequestTimeout,
				Logger:         logger.Component(log, "http"),
			})

			serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)
			srv := &http.Server{
				Addr:         serverAddr,
				Handler:      router,
				ReadTimeout:  15 * time.Second,
				WriteTimeout: cfg.RequestTimeout + 5*time.Second,
				IdleTimeout:  120 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("addr", serverAddr).Msg("Starting server")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			select {
			case err := <-errCh:
				return fmt.Errorf("could not listen on %s: %w", serverAddr, err)
			case <-ctx.Done():
			}
			log.Info().Msg("Shutting down server...")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server forced to shutdown: %w", err)
			}

			log.Info().Msg("Server exiting gracefully")
			return nil
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "HTTP port (overrides HTTP_PORT)")
	return cmd
}

