// Command resetusers deletes user solve history, notes and favorites for
// one user or for everyone.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mind-engage/mindengage-taxexam/internal/config"
	"github.com/mind-engage/mindengage-taxexam/internal/db"
	"github.com/mind-engage/mindengage-taxexam/internal/logging"
	"github.com/mind-engage/mindengage-taxexam/internal/users"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	userID := flag.String("user-id", "", "reset only this user (default: all users)")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	driver, err := db.ParseDriver(cfg.DBDriver)
	if err != nil {
		logger.Fatal().Err(err).Msg("db driver")
	}
	dbh, err := db.Open(ctx, driver, cfg.DBDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("db open failed")
	}
	defer dbh.Close()

	res, err := users.Reset(ctx, dbh, strings.TrimSpace(*userID))
	if err != nil {
		logger.Fatal().Err(err).Msg("reset failed")
	}
	logger.Info().Str("scope", res.Scope).Interface("deleted", res.Deleted).Msg("user data reset")

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(res)
}
