// ams-placeholder answers on the legacy backend port so old clients get a
// clear pointer to the asset API instead of a connection error.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/five82/ams/internal/placeholder"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ams-placeholder: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	port := placeholder.DefaultPort
	if v, err := strconv.Atoi(os.Getenv("PORT")); err == nil && v > 0 {
		port = v
	}

	var (
		host   string
		apiURL string
		debug  bool
	)
	flagSet := pflag.NewFlagSet("ams-placeholder", pflag.ContinueOnError)
	flagSet.StringVar(&host, "host", "", "interface to listen on (default: all)")
	flagSet.IntVarP(&port, "port", "p", port, "port to listen on (env PORT)")
	flagSet.StringVar(&apiURL, "api-url", placeholder.DefaultAPIURL, "asset API advertised to callers")
	flagSet.BoolVar(&debug, "debug", false, "log every request")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv := &http.Server{
		Addr:              net.JoinHostPort(host, strconv.Itoa(port)),
		Handler:           placeholder.NewHandler(placeholder.Options{APIURL: apiURL, Logger: logger}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("placeholder listening", "addr", srv.Addr, "api_url", apiURL)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("placeholder stopped")
	return nil
}
