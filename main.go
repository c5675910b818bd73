package main

import (
	"elk-bot/bot"
	"elk-bot/config"
	"elk-bot/handlers"
	"elk-bot/utils"
	"elk-bot/utils/database"
	"elk-bot/utils/translator"
	"log"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	logger, err := utils.NewLogger(cfg.LogLevel, cfg.DevelopmentMode)
	if err != nil {
		log.Fatalf("Error building logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.InitAuditDB(cfg.AuditDBPath)
	if err != nil {
		logger.Fatal("error initializing audit database", zap.Error(err))
	}
	defer db.Close()

	cities, err := utils.LoadCityStore(cfg.Siege.CitiesFile, utils.DefaultCities)
	if err != nil {
		logger.Fatal("error loading cities", zap.Error(err))
	}
	flags := utils.NewFlagStore(cfg.Translation.FlagsFile)

	client := utils.GlobalHTTPClient
	if cfg.Translation.RequestLimit > 0 {
		client = utils.NewHTTPClient(cfg.Translation.RequestLimit)
	}

	b, err := bot.New(cfg, logger)
	if err != nil {
		logger.Fatal("error creating bot", zap.Error(err))
	}
	defer b.Close()

	router, err := handlers.New(handlers.Deps{
		Messenger:  b.Messenger,
		Syncer:     b.Session,
		Config:     b.GetConfig,
		Reload:     b.ReloadConfig,
		Cities:     cities,
		Flags:      flags,
		Detector:   translator.Whatlang{},
		Translator: translator.NewGoogle(client, cfg.Translation.Endpoint),
		Scheduler:  b.Scheduler,
		DB:         db,
		Latency:    b.Latency,
		Logger:     logger,
	})
	if err != nil {
		logger.Fatal("error building handlers", zap.Error(err))
	}
	handlers.Register(b.Context(), b.Session, router)

	if err := b.Run(); err != nil {
		logger.Error("bot stopped", zap.Error(err))
	}
}
