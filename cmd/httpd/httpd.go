// Package httpd implements the HTTP API server command.
package httpd

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

	"github.com/jonesrussell/tenderscan/cmd/common"
	"github.com/jonesrussell/tenderscan/internal/api"
)

const shutdownTimeout = 30 * time.Second

// Command returns the httpd command, which serves the query API until
// interrupted.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "httpd",
		Short: "Serve the tender query API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			deps, err := common.New(ctx, common.Options{NeedScanner: true})
			if err != nil {
				return err
			}
			defer deps.Close()

			apiDeps := api.Deps{
				Logger:  deps.Logger,
				Store:   deps.Store,
				Sources: deps.Sources,
				Trigger: deps.Scanner,
			}
			if deps.Indexer != nil {
				apiDeps.Searcher = deps.Indexer
			}

			srv := api.StartHTTPServer(deps.Config.GetServerConfig(), apiDeps)

			errCh := make(chan error, 1)
			go func() {
				deps.Logger.Info("http server listening", "address", srv.Addr)
				if serveErr := srv.ListenAndServe(); serveErr != nil &&
					!errors.Is(serveErr, http.ErrServerClosed) {
					errCh <- serveErr
				}
			}()

			select {
			case err = <-errCh:
				return fmt.Errorf("http server: %w", err)
			case <-ctx.Done():
			}

			deps.Logger.Info("shutting down http server")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err = srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutting down: %w", err)
			}

			return nil
		},
	}
}
