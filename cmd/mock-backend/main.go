// mock-backend is an in-memory stand-in for the finance API plus its push
// hub, for exercising the sync engine end to end without real
// infrastructure. Saved currency preferences are broadcast back to every
// session of the user, the saving one included, so echo suppression gets
// exercised for real.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/momentfin/ledgersync/internal/logging"
	"github.com/momentfin/ledgersync/internal/middleware"
)

func main() {
	port := 8081
	if p := os.Getenv("PORT"); p != "" {
		fmt.Sscanf(p, "%d", &port)
	}

	logging.Init("mock-backend", os.Getenv("LOG_LEVEL"), os.Getenv("APP_ENV"))

	srv := &server{
		store: newStore(),
		hub:   newHub(),
	}

	handler := middleware.RequestID(middleware.Logging(middleware.Recovery(srv.routes())))

	addr := fmt.Sprintf(":%d", port)
	// No Read/WriteTimeout: the /ws connections are long-lived and a
	// server-wide deadline would sever them.
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("mock backend started", "addr", addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		slog.Error("forced shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("stopped")
}
