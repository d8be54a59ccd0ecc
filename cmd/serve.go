/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"agrimaint/internal/adapters/http/api"
	"agrimaint/internal/bootstrap/logging"
	"agrimaint/internal/errs"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the fleet REST API",
	RunE: withApp(func(cmd *cobra.Command, svc *services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		addr := serveAddr
		if addr == "" {
			addr = svc.app.Config.API.Addr
		}

		server := &http.Server{
			Addr:              addr,
			Handler:           api.NewServer(svc.fleet).Router(),
			ReadHeaderTimeout: 5 * time.Second,
		}

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

		serveErr := make(chan error, 1)
		go func() {
			logging.Info(ctx, "api server listening", slog.String("addr", addr))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- err
			}
		}()

		fmt.Fprintf(cmd.OutOrStdout(), "api listening on %s\n", addr)

		select {
		case err := <-serveErr:
			return errs.Wrap(err, "serve api")
		case sig := <-shutdown:
			logging.Info(ctx, "shutting down", slog.String("signal", sig.String()))
		case <-ctx.Done():
			logging.Info(ctx, "shutting down", slog.String("reason", "context canceled"))
		}

		stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(stopCtx); err != nil {
			return errs.Wrap(err, "shutdown api server")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (defaults to api.addr from config)")
}
