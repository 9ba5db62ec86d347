package main

import (
	"github.com/caarlos0/env/v6"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/novalend/governance-storage/internal"
	"github.com/novalend/governance-storage/internal/config"
)

func main() {
	cfg := config.App{}
	if err := env.Parse(&cfg); err != nil {
		log.Fatal().Err(err).Msg("parse config")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	app, err := internal.NewApplication(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("bootstrap application")
	}

	log.Info().Msg("governance storage started")

	app.Run()
}
