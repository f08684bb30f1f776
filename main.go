package main

import (
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"medbill/m/internal/api"
	"medbill/m/internal/config"
	"medbill/m/internal/database"
	"medbill/m/internal/keepalive"
	"medbill/m/internal/migrations"
	"medbill/m/internal/seed"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	_ = godotenv.Load()

	cfg := config.Load()
	db := database.Connect(cfg.DatabaseDSN)
	defer db.Close()

	migrations.Run(db)
	if cfg.SeedCSV != "" {
		seed.LoadMedicines(db, cfg.SeedCSV)
	}

	keepalive.Start(cfg.KeepAliveEnabled, cfg.AppURL, cfg.KeepAliveInterval)

	handler := api.New(db, cfg.Secret, cfg.TokenTTL)

	log.Info().Str("port", cfg.HTTPPort).Msg("IMS server starting")
	if err := http.ListenAndServe(":"+cfg.HTTPPort, handler.Router()); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
