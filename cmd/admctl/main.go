package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/dmitrijs2005/admissions/internal/admctl"
	"github.com/dmitrijs2005/admissions/internal/logging"
	"github.com/dmitrijs2005/admissions/internal/server/config"
	"github.com/dmitrijs2005/admissions/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/admissions/internal/server/services"
	"github.com/joho/godotenv"
)

func main() {

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("load .env: %v", err)
	}

	command, args := admctl.SplitCommand(os.Args[1:])
	if command == "" {
		admctl.Usage(os.Stderr)
		os.Exit(2)
	}

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.NewJSONLogger(os.Stderr, cfg.LogLevel)

	db, err := repomanager.Open(ctx, cfg.DatabaseDSN, 10*time.Second)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	tool := admctl.NewTool(services.NewUserService(db, rm, logger), cfg.Seeds, os.Stdin, os.Stdout)
	if err := tool.Run(ctx, command, args); err != nil {
		log.Printf("%v", err)
		db.Close()
		os.Exit(1)
	}

}
