package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Spok95/academic-eval/internal/api"
	"github.com/Spok95/academic-eval/internal/config"
	"github.com/Spok95/academic-eval/internal/ctxutil"
	"github.com/Spok95/academic-eval/internal/db"
	"github.com/Spok95/academic-eval/internal/evaluation"
	"github.com/Spok95/academic-eval/internal/jobs"
	"github.com/Spok95/academic-eval/internal/logging"
	"github.com/Spok95/academic-eval/internal/notify"
	"github.com/Spok95/academic-eval/internal/observability"
	"github.com/Spok95/academic-eval/internal/schedule"
)

func main() {
	// Загрузка переменных окружения
	if err := godotenv.Load(); err != nil {
		log.Println("Не удалось загрузить .env файл, используем переменные окружения")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	lg, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer lg.Closer()
	logger := lg.Base

	flush, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, cfg.Release)
	if err != nil {
		logger.Warn("sentry init failed", zap.Error(err))
	}
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctxutil.DefaultDBTimeout = cfg.DBTimeout

	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("db connect failed", zap.Error(err))
	}
	defer func() { _ = database.Close() }()

	if err := db.Migrate(database); err != nil {
		observability.CaptureErr(err)
		logger.Fatal("migrations failed", zap.Error(err))
	}

	store := db.NewStore(database)
	if cfg.SeedDemo {
		if err := store.SeedDemo(ctx); err != nil {
			logger.Fatal("demo seed failed", zap.Error(err))
		}
	}

	notifier, err := notify.New(cfg.BotToken, cfg.AdminIDs, cfg.Location, logger.Named("notify"))
	if err != nil {
		// без уведомлений сервис работает
		observability.CaptureErr(err)
		logger.Warn("telegram notifications disabled", zap.Error(err))
		notifier = notify.Nop{}
	}

	sched := schedule.NewService(store, logger.Named("schedule"))
	evals := evaluation.NewService(store, logger.Named("evaluation"))

	runner := jobs.New(ctx, logger.Named("jobs"))
	runner.Every(cfg.SweepInterval, "event_status_sweep", jobs.EventStatusSweep(sched, nil, logger.Named("sweep")))

	srv := api.NewServer(api.Deps{
		Schedule:    sched,
		Evaluations: evals,
		Users:       store,
		DB:          store,
		Notifier:    notifier,
		Log:         logger.Named("http"),
		Location:    cfg.Location,
		DBTimeout:   cfg.DBTimeout,
	})
	hs := api.StartHTTP(ctx, cfg.HTTPAddr, srv.Handler(), logger)
	logger.Info("server started", zap.String("addr", cfg.HTTPAddr), zap.String("env", cfg.Env))

	<-ctx.Done()
	logger.Info("shutting down")
	hs.Wait()
	runner.Wait()
}
