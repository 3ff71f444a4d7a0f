// Command tokengen mints an operator bearer token for the accounting API.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/josh-kwaku/accounting-service/internal/auth"
	"github.com/josh-kwaku/accounting-service/internal/logging"
)

type tokenConfig struct {
	Secret  string        `env:"JWT_SECRET,required"`
	Subject string        `env:"TOKEN_SUBJECT" envDefault:"operator"`
	Scope   string        `env:"TOKEN_SCOPE"`
	TTL     time.Duration `env:"TOKEN_TTL" envDefault:"12h"`
}

func main() {
	logging.Init("tokengen", "info", os.Getenv("APP_ENV"))

	// A missing .env is fine; the environment may carry everything.
	_ = godotenv.Load()

	cfg, err := env.ParseAs[tokenConfig]()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	token, err := auth.GenerateToken(cfg.Subject, cfg.Scope, cfg.Secret, cfg.TTL)
	if err != nil {
		slog.Error("failed to mint token", "error", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
