package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zjrosen/gridclip/internal/log"
	"github.com/zjrosen/gridclip/internal/web"
)

func (a *app) serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the sheet over a JSON HTTP API",
		Long: `Serve exposes copy, paste and undo on the sheet over HTTP. Every
mutation is saved to the database before the response is written.`,
		Example: `  gridclip serve --addr :8089
  curl -s -XPOST localhost:8089/api/copy -d '{"ranges":["A1:B3"]}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.Server.Addr = addr
			}
			return a.runServe(cmd)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

func (a *app) runServe(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := a.openSession(ctx, true)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	srv := web.NewServer(s.sheet, s.copy, web.Options{
		Store:          s.repo,
		RequestTimeout: a.cfg.Server.RequestTimeout,
		MaxRows:        a.cfg.Server.MaxRows,
		MaxCols:        a.cfg.Server.MaxCols,
		ManagerOptions: s.managerOptions(nil),
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(a.cfg.Server.Addr)
	}()
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "serving %q on %s\n", s.sheet.Name(), a.cfg.Server.Addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info(log.CatWeb, "shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}
