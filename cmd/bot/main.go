package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"kazoeru/internal/analytics"
	"kazoeru/internal/command"
	"kazoeru/internal/config"
	"kazoeru/internal/counting"
	"kazoeru/internal/journal"
	"kazoeru/internal/praise"
	"kazoeru/internal/scheduler"
	"kazoeru/internal/storage"
	"kazoeru/internal/telegram"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg, err := config.New()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Error("bot stopped with error", zap.Error(err))
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = lvl
	return zc.Build()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	store, err := storage.Open(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()
	logger.Info("store opened", zap.String("path", cfg.DatabasePath))

	var rec journal.Recorder
	if cfg.JournalFilePath != "" {
		fr, err := journal.NewFileRecorder(cfg.JournalFilePath)
		if err != nil {
			logger.Warn("failed to init journal, activity will not be recorded", zap.Error(err))
		} else {
			rec = fr
		}
	}

	composer := praise.NewComposer(praise.NewFileProvider(cfg.PraiseFilePath), nil)
	if _, err := composer.Compose(); err != nil {
		// checked again on every milestone; a broken file only fails celebrations
		logger.Warn("celebration templates unusable", zap.String("path", cfg.PraiseFilePath), zap.Error(err))
	}

	engine := counting.New(store, store, composer, rec, logger.Named("counting"))
	router := command.NewRouter(command.DefaultRules(engine)...)

	bot, err := telegram.New(cfg.TelegramBotToken, cfg.TelegramDebug, router, logger.Named("telegram"))
	if err != nil {
		return fmt.Errorf("create bot: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched := scheduler.New(cfg.ReportSchedule, logger.Named("scheduler"))
	if cfg.AdminUserID != 0 && rec != nil {
		reporter := analytics.NewReporter(rec, func(text string) error {
			return bot.SendText(cfg.AdminUserID, text)
		}, logger.Named("report"))
		sched.SetReportFunction(reporter.Report)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := sched.Start(); err != nil {
			return err
		}
		<-gctx.Done()
		sched.Stop()
		return nil
	})
	g.Go(func() error {
		bot.Start(gctx)
		if gctx.Err() == nil {
			return errors.New("telegram updates channel closed")
		}
		return nil
	})
	logger.Info("bot started")
	return g.Wait()
}
