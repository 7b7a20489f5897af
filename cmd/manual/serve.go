package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/goliatone/go-manual/commands"
	markdowncmd "github.com/goliatone/go-manual/internal/commands/markdown"
	"github.com/goliatone/go-manual/internal/scheduler"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func (a *app) serveCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if addr != "" {
				a.cfg.HTTP.Addr = addr
			}
			module, logger, err := a.module(ctx)
			if err != nil {
				return err
			}
			defer module.Close()

			cron := scheduler.New(scheduler.WithLogger(logger))
			if _, err := commands.RegisterContainerCommands(module.Container(), commands.RegistrationOptions{
				CronRegistrar: cron.Register,
			}); err != nil {
				logger.Warn("serve.commands.partial", "error", err)
			}

			if a.cfg.Markdown.Enabled {
				handler := markdowncmd.NewImportHandler(module.Markdown(), logger)
				if err := dispatch(ctx, handler, markdowncmd.ImportMarkdownCommand{Directory: a.cfg.Markdown.ContentDir}); err != nil {
					return fmt.Errorf("import %s: %w", a.cfg.Markdown.ContentDir, err)
				}
			}

			server := &http.Server{
				Addr:              a.cfg.HTTP.Addr,
				Handler:           module.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			cron.Start()
			errc := make(chan error, 1)
			go func() {
				logger.Info("serve.listening", "addr", server.Addr)
				errc <- server.ListenAndServe()
			}()

			select {
			case err := <-errc:
				_ = cron.Stop(context.Background())
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			logger.Info("serve.shutdown")
			if err := server.Shutdown(shutdownCtx); err != nil {
				return err
			}
			return cron.Stop(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides http.addr)")
	return cmd
}
