// Command issue-token mints a clerk token for local development when
// AUTH_ENABLED is on. Production tokens come from the school's login service.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/stemsi/feedesk-backend/internal/config"
	"github.com/stemsi/feedesk-backend/internal/logger"
	"github.com/stemsi/feedesk-backend/internal/service"
)

func main() {
	var (
		subject string
		name    string
		ttl     time.Duration
	)
	flag.StringVar(&subject, "sub", "", "Clerk identifier (required)")
	flag.StringVar(&name, "name", "", "Display name")
	flag.DurationVar(&ttl, "ttl", 12*time.Hour, "Token lifetime")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	if subject == "" {
		flag.Usage()
		os.Exit(2)
	}

	token, err := service.NewAuthService(cfg.JWTSecret).SignToken(subject, name, ttl)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to sign token")
	}
	fmt.Println(token)
}
