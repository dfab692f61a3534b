package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"remoting-login/internal/loginform"
	"remoting-login/internal/observability"
	"remoting-login/internal/server"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the login form over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		shutdown, err := initTelemetry(ctx, cfg)
		if err != nil {
			return err
		}
		defer shutdown(ctx)

		form := loginform.New(cfg.GatewayURL)

		srv := &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           server.NewRouter(form),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			observability.Logger.Info("server started",
				zap.String("addr", cfg.ListenAddr),
				zap.String("gateway", cfg.GatewayURL),
			)

			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		return waitForShutdown(srv, errCh)
	},
}

func waitForShutdown(srv *http.Server, errCh <-chan error) error {

	stop := make(chan os.Signal, 1)

	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-errCh:
		return err
	case <-stop:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return srv.Shutdown(ctx)
}
