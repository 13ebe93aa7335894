//go:build !test

/* server.go
 * Contains the HTTP server Start function that listens for incoming connections.
 * Excluded from test coverage as it blocks and requires real network binding.
 */

package web

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// Start serves the HTTP API until ctx is cancelled, then shuts the server down gracefully
func Start(ctx context.Context, cfg Config) error {
	s := NewServer(cfg)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		// uploads and url imports parse whole workbooks
		ReadTimeout:  time.Minute,
		WriteTimeout: 2 * time.Minute,
	}

	errs := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", cfg.Addr)
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errs; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
