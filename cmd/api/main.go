package main

import (
	"log"

	"decorana/adapters/postgres"
	"decorana/app"
	"decorana/internal/config"
	"decorana/ports"
	"decorana/ui"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := config.Load()

	var repo ports.RunRepository
	if cfg.Database.URL != "" {
		db, err := sqlx.Connect("postgres", cfg.Database.URL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		repo = postgres.NewRunRepository(db)
		log.Println("Run store enabled")
	} else {
		log.Println("DATABASE_URL not set, running without run store")
	}

	service := app.NewOrdinationService(repo)
	a := ui.NewApp(service)
	if err := a.Serve(ui.Config{Port: cfg.Server.Port}); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
