package voiceauth

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const shutdownTimeout = 10 * time.Second

// Run serves the authentication endpoints on addr and blocks until shutdown.
// SIGINT and SIGTERM trigger graceful shutdown; SIGHUP reloads the provider
// credential directory without dropping in-flight requests.
//
// Embedding applications that own their server should mount Router() instead.
func (s *Service) Run(ctx context.Context, addr string) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				if err := s.Reload(); err != nil {
					s.log.Error("reload auth configs", slog.Any("error", err))
					continue
				}
				s.log.Info("auth configs reloaded", slog.Any("providers", s.Providers()))
			}
		}
	}()

	server := &http.Server{
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Listen first to surface bind errors before reporting startup.
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server starting", slog.String("address", ln.Addr().String()))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		s.log.Error("shutdown failed", slog.Any("error", err))
		return err
	}

	s.log.Info("shutdown completed")
	return nil
}
