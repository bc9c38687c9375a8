// Command admin creates an account directly in the database, typically the
// first ADMIN of a fresh installation.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/dmitrijs2005/holocron/internal/admin"
	"github.com/dmitrijs2005/holocron/internal/dbx"
	"github.com/dmitrijs2005/holocron/internal/logging"
	"github.com/dmitrijs2005/holocron/internal/server/auth"
	"github.com/dmitrijs2005/holocron/internal/server/config"
	"github.com/dmitrijs2005/holocron/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/holocron/internal/server/services"
)

func main() {

	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	db, err := dbx.OpenPostgres(ctx, cfg.DatabaseDSN, 5*time.Second)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		log.Fatalf("%v", err)
	}

	logger := logging.NewJSONLogger(os.Stderr, cfg.LogLevel)
	svc := services.NewAccountService(db, rm, auth.NewBcryptHasher(cfg), auth.NewTokenIssuer(cfg), logger)

	prompter := admin.NewPrompter(os.Stdin, os.Stdout, int(os.Stdin.Fd()))
	if err := admin.Register(ctx, prompter, svc); err != nil {
		log.Fatalf("%v", err)
	}
}
