package main

import (
	"context"
	"errors"
	"flag"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AbdulRafayPython/AuraFlow-sub001/internal/devgateway"
	"github.com/AbdulRafayPython/AuraFlow-sub001/internal/log"
)

func main() {
	addr := flag.String("addr", ":8080", "HTTP listen address")
	secret := flag.String("jwt-secret", "dev-secret", "JWT signing secret")
	level := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	flag.Parse()

	logger := log.New(*level)

	gateway := devgateway.New(*secret, logger)
	for _, seed := range []struct{ user, pass, display string }{
		{"alice", "alice", "Alice"},
		{"bob", "bob", "Bob"},
	} {
		if err := gateway.Seed(seed.user, seed.pass, seed.display); err != nil {
			stdlog.Fatalf("seed user %s: %v", seed.user, err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:              *addr,
		Handler:           gateway.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	logger.Info().Str("addr", *addr).Msg("devserver listening")

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			stdlog.Fatalf("devserver exited with error: %v", err)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("shutdown")
		}
	}
	logger.Info().Msg("devserver stopped")
}
