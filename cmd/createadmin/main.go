// Command createadmin provisions a user account directly in the database.
//
//	createadmin -username browndawg29 -password secret -role admin
package main

import (
	"flag"
	"os"

	"fishlog/internal/config"
	"fishlog/internal/logging"
	"fishlog/internal/repositories"
	"fishlog/internal/services"
)

func main() {
	username := flag.String("username", "", "account name (required)")
	password := flag.String("password", "", "account password (required)")
	role := flag.String("role", "admin", "one of read, write, admin")
	flag.Parse()

	if *username == "" || *password == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("invalid configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	db, err := repositories.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to open database")
	}
	if err := repositories.Migrate(db); err != nil {
		logging.Fatal().Err(err).Msg("failed to migrate database")
	}

	authService := services.NewAuthService(repositories.NewGORMUserRepository(db), cfg.JWTSecret, cfg.SessionTTL)
	user, err := authService.CreateUser(*username, *password, *role)
	if err != nil {
		logging.Fatal().Err(err).Str("username", *username).Msg("failed to create user")
	}
	logging.Info().Uint("id", user.ID).Str("username", user.Username).Str("role", string(user.Role)).Msg("user ready")
}
