package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"meme-wars/internal/config"
	"meme-wars/internal/db"
	"meme-wars/internal/server"

	"gorm.io/gorm"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	cfg := config.Load()

	var conn *gorm.DB
	if os.Getenv("DATABASE_URL") != "" {
		opened, err := db.Open()
		if err != nil {
			log.Fatalf("database connection failed: %v", err)
		}
		if err := db.ConfigurePool(
			opened,
			cfg.DBMaxOpenConns,
			cfg.DBMaxIdleConns,
			time.Duration(cfg.DBConnMaxLifetimeSeconds)*time.Second,
			time.Duration(cfg.DBConnMaxIdleTimeSeconds)*time.Second,
		); err != nil {
			log.Fatalf("database pool setup failed: %v", err)
		}
		if err := db.Migrate(opened); err != nil {
			log.Fatalf("database migration failed: %v", err)
		}
		conn = opened
	} else {
		log.Println("DATABASE_URL is not set, running without game archive")
	}

	addr := ":8080"
	if env := os.Getenv("PORT"); env != "" {
		addr = ":" + env
	}

	srv := server.New(conn, cfg)
	log.Printf("meme-wars server listening on %s", addr)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		log.Fatal(err)
	}
}
