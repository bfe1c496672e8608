package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/kareem2099/FreeID/config"
	"github.com/kareem2099/FreeID/domains/analytics"
	"github.com/kareem2099/FreeID/infrastructure/mongodb"
	"github.com/kareem2099/FreeID/infrastructure/rediscache"
	"github.com/kareem2099/FreeID/infrastructure/telegram"
	"github.com/kareem2099/FreeID/ui/rest"
	"github.com/kareem2099/FreeID/usecase"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logrus.Errorf("Configuration error: %v", err)
		os.Exit(1)
	}
	logrus.Info("Configuration loaded successfully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	repo, err := mongodb.NewMongoRepository(ctx, cfg.MongoDBURI, cfg.MongoDBName)
	cancel()
	if err != nil {
		logrus.Errorf("Failed to initialize database: %v", err)
		os.Exit(1)
	}
	logrus.Info("Database connection established")

	var cache analytics.IStatsCache
	if cfg.CacheEnabled() {
		cache = rediscache.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		logrus.Infof("Stats cache enabled (redis %s)", cfg.RedisAddr)
	}

	analyticsService := usecase.NewAnalyticsService(repo, cache)
	healthService := usecase.NewHealthService(repo)

	tgBot := telegram.NewBot(cfg.TelegramBotToken)
	botService := usecase.NewBotService(analyticsService, tgBot, cfg.AdminUserID)
	tgBot.SetHandler(botService)

	var app *fiber.App
	if cfg.RESTPort > 0 {
		app = fiber.New(fiber.Config{DisableStartupMessage: true})
		rest.InitRestStats(app, analyticsService)
		rest.InitRestHealth(app, healthService)

		go func() {
			addr := fmt.Sprintf(":%d", cfg.RESTPort)
			logrus.Infof("Stats dashboard listening on %s", addr)
			if err := app.Listen(addr); err != nil {
				logrus.Errorf("REST server stopped: %v", err)
			}
		}()
	}

	botDone := make(chan error, 1)
	go func() {
		logrus.Info("Bot is starting...")
		botDone <- tgBot.Start(context.Background())
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logrus.Infof("Received signal %v, stopping bot gracefully", sig)
		tgBot.Stop()
		<-botDone
	case err := <-botDone:
		if err != nil {
			logrus.Errorf("Bot crashed: %v", err)
		}
	}

	if app != nil {
		if err := app.Shutdown(); err != nil {
			logrus.Errorf("Failed to shut down REST server: %v", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := repo.Close(shutdownCtx); err != nil {
		logrus.Errorf("Failed to close database connection: %v", err)
	} else {
		logrus.Info("Database connection closed")
	}
}
