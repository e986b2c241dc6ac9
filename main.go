package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"lotbid/api"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Fail to load .env", slog.Any("error", err))
	}
	args, err := ParseArgs(os.Args[1:])
	if err != nil {
		slog.Error("Fail to parse arguments", slog.Any("error", err))
		os.Exit(2)
	}
	slog.SetDefault(newLogger(args.LogLevel, args.LogFormat))
	if err := args.Validate(); err != nil {
		slog.Error("Invalid arguments", slog.Any("error", err))
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	impl, err := api.NewServer(ctx, args.ServerConfig)
	if err != nil {
		panic(err)
	}
	defer impl.Close()
	impl.Start()

	server := &http.Server{
		Addr:              args.ServerURL,
		Handler:           impl.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Warn("Fail to shutdown server", slog.Any("error", err))
		}
	}()

	slog.Info("Server listening", slog.String("addr", args.ServerURL))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		panic(err)
	}
}

func newLogger(level, format string) *slog.Logger {
	var lv slog.Level
	if err := lv.UnmarshalText([]byte(level)); err != nil {
		lv = slog.LevelInfo
	}
	options := &slog.HandlerOptions{Level: lv}
	if strings.EqualFold(format, "text") {
		return slog.New(slog.NewTextHandler(os.Stdout, options))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, options))
}
