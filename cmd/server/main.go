// Command server runs the pub/sub broker: `server <port>`.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/komurugov/publish-subscribe-assignment/internal/broker"
	"github.com/komurugov/publish-subscribe-assignment/internal/config"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "Usage: server <port>")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(cfg.LogLevel)}))

	addr := net.JoinHostPort("", os.Args[1])

	acceptor, err := broker.Listen(addr, logger)
	if err != nil {
		logger.Error("failed to bind listener", "error", err)
		os.Exit(1)
	}

	discovery, err := broker.Advertise(acceptor.Addr(), logger)
	if err != nil {
		logger.Warn("mDNS advertisement failed", "error", err)
		discovery = nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go acceptor.Serve()
	logger.Info("broker listening", "addr", acceptor.Addr())

	<-ctx.Done()

	logger.Info("shutting down")
	discovery.Shutdown()
	if err := acceptor.Close(); err != nil {
		logger.Error("error closing listener", "error", err)
		os.Exit(1)
	}
	acceptor.Wait()

	logger.Info("broker stopped cleanly")
}

func logLevel(level string) slog.Leveler {
	var lvl slog.Level

	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	lv := new(slog.LevelVar)
	lv.Set(lvl)
	return lv
}
