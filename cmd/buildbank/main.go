// Command buildbank copies the quiz-ready subset of an authoring database
// into the service database.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mind-engage/mindengage-taxexam/internal/bank"
	"github.com/mind-engage/mindengage-taxexam/internal/config"
	"github.com/mind-engage/mindengage-taxexam/internal/db"
	"github.com/mind-engage/mindengage-taxexam/internal/logging"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	srcDriver := flag.String("source-driver", "sqlite", "authoring database driver (sqlite|postgres)")
	srcDSN := flag.String("source-dsn", "", "authoring database DSN")
	dstDriver := flag.String("target-driver", cfg.DBDriver, "service database driver")
	dstDSN := flag.String("target-dsn", cfg.DBDSN, "service database DSN")
	keep := flag.Bool("keep-existing", false, "do not clear the target bank first")
	timeout := flag.Duration("timeout", 10*time.Minute, "overall build timeout")
	flag.Parse()

	if *srcDSN == "" {
		logger.Fatal().Msg("-source-dsn is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	source, err := openDB(ctx, *srcDriver, *srcDSN, db.Dial)
	if err != nil {
		logger.Fatal().Err(err).Msg("open source")
	}
	defer source.Close()
	target, err := openDB(ctx, *dstDriver, *dstDSN, db.Open)
	if err != nil {
		logger.Fatal().Err(err).Msg("open target")
	}
	defer target.Close()

	im := bank.NewImporter(source, target, logger.With().Str("component", "buildbank").Logger())
	im.Overwrite = !*keep
	res, err := im.Build(ctx)
	if err != nil {
		logger.Fatal().Err(err).Str("run_id", res.RunID).Msg("build failed")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(res)
}

func openDB(ctx context.Context, driver, dsn string, open func(context.Context, db.Driver, string) (*sql.DB, error)) (*sql.DB, error) {
	d, err := db.ParseDriver(driver)
	if err != nil {
		return nil, err
	}
	return open(ctx, d, dsn)
}
