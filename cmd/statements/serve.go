package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	apiConfig "financial_statements/pkg/api/config"
	api "financial_statements/pkg/api/statements"
	"financial_statements/pkg/core/config"

	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the reconstruction API over HTTP",
	Long: `serve exposes two endpoints:

  POST /api/statements/reconstruct   body is a filing document; ?format=json|md|html
  GET  /api/statements/history       ?ticker=AAPL&limit=3
  GET  /api/config                   effective reconstruction settings`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr)")
}

func runServe(cmd *cobra.Command) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	cfg.Merge(&config.Config{Server: config.ServerConfig{Addr: serveAddr}})

	r, err := newReconstructor(cfg, logger)
	if err != nil {
		return err
	}
	extractor, err := newExtractor(cfg, r, logger)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	api.NewHandler(r, extractor, logger).Register(mux)
	apiConfig.NewHandler(cfg).Register(mux)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("[Server] listening", "addr", cfg.Server.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("[Server] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
