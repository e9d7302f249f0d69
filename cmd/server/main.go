package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Spok95/student-of-the-year/internal/config"
	"github.com/Spok95/student-of-the-year/internal/db"
	"github.com/Spok95/student-of-the-year/internal/httpapi"
	"github.com/Spok95/student-of-the-year/internal/jobs"
	"github.com/Spok95/student-of-the-year/internal/logging"
	"github.com/Spok95/student-of-the-year/internal/observability"
	"github.com/joho/godotenv"
)

var release = "dev"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	lg, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer lg.Closer()

	flush, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, release)
	if err != nil {
		lg.Sugar.Warnw("sentry init failed", "err", err)
	}
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		lg.Sugar.Fatalw("db connect failed", "err", err)
	}
	defer func() { _ = database.Close() }()

	if err := db.Migrate(database); err != nil {
		lg.Sugar.Fatalw("migrations failed", "err", err)
	}
	db.SetLogger(lg.Sugar)

	runner := jobs.New(ctx)
	runner.Every(time.Minute, "notification_stats", jobs.NotificationStats(database))

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httpapi.NewRouter(database, cfg, lg.Sugar),
	}

	go func() {
		lg.Sugar.Infow("http server starting", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Sugar.Fatalw("http server failed", "err", err)
		}
	}()

	<-ctx.Done()
	lg.Sugar.Info("shutting down")
	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		lg.Sugar.Warnw("shutdown incomplete", "err", err)
	}
}
