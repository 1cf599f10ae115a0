package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"birthday_notification_bot/internal/app"
	"birthday_notification_bot/internal/domain/greeting"
	"birthday_notification_bot/internal/infra/config"
	idb "birthday_notification_bot/internal/infra/database"
	"birthday_notification_bot/internal/infra/logger"
	"birthday_notification_bot/internal/infra/scheduler"
	"birthday_notification_bot/internal/infra/telegram"

	"gopkg.in/telebot.v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Get().WithError(err).Fatal("Could not load application configuration")
	}

	logger.Init(cfg)
	log := logger.Get()
	log.WithField("environment", cfg.Environment).Info("Birthday Notification Bot starting")

	// Initialize Database Connection
	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 15*time.Second)
	db, err := idb.NewPostgresConnection(connectCtx, cfg.DatabaseURL)
	cancelConnect()
	if err != nil {
		log.WithError(err).Fatal("Could not connect to database")
	}
	defer db.Close()
	log.Info("Database connection established successfully")

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	err = idb.RunMigrations(migrateCtx, db)
	cancelMigrate()
	if err != nil {
		log.WithError(err).Fatal("Could not run database migrations")
	}
	log.Info("Database migrations applied")

	// Initialize Repository
	birthdayRepo := idb.NewPostgresBirthdayRepository(db)
	log.Info("Birthday repository initialized")

	// Initialize Telegram Bot
	pref := telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{
			Timeout:        10 * time.Second,
			AllowedUpdates: telegram.SubscribedUpdates,
		},
		OnError: func(err error, c telebot.Context) { // Global error handler
			entry := log.WithError(err)
			if c != nil && c.Sender() != nil && c.Chat() != nil {
				entry = entry.WithField("sender_id", c.Sender().ID).WithField("chat_id", c.Chat().ID)
			}
			entry.Error("Unhandled telebot error")
		},
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		log.WithError(err).Fatal("Could not create Telegram bot")
	}

	// Initialize Services
	telegramClient := telegram.NewTelebotAdapter(bot)
	composer := greeting.NewComposer()

	birthdayService := app.NewBirthdayService(birthdayRepo, log.WithField("component", "birthday_service"))
	notificationService := app.NewNotificationService(
		birthdayRepo,
		telegramClient,
		composer,
		log.WithField("component", "notification_service"),
		cfg.NotifyConcurrency,
	)
	retentionService := app.NewRetentionService(
		birthdayRepo,
		cfg.RetentionDays,
		log.WithField("component", "retention_service"),
	)
	log.Info("Application services initialized")

	// Initialize SweepScheduler
	sweepScheduler := scheduler.NewSweepScheduler(
		notificationService,
		retentionService,
		log.WithField("component", "scheduler"),
		cfg.CronSpecNotify,
		cfg.CronSpecRetention,
	)
	sweepScheduler.Start()

	// Register Handlers
	handlerCtx, cancelHandlers := context.WithCancel(context.Background())
	defer cancelHandlers()
	telegram.RegisterBirthdayHandlers(handlerCtx, bot, birthdayService, log.WithField("component", "handlers"))
	telegram.RegisterMembershipHandlers(handlerCtx, bot, birthdayService, log.WithField("component", "handlers"))
	log.Info("Command and membership handlers registered")

	// Start bot in a goroutine so it doesn't block graceful shutdown handling
	go bot.Start()
	sweepScheduler.SignalReady() // delivery side is up; first sweep may proceed
	log.Info("Application setup complete. Bot and scheduler are running")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit // Block until a signal is received

	log.Info("Shutting down application")
	bot.Stop()
	sweepScheduler.Stop()
	log.Info("Application shut down gracefully")
}
