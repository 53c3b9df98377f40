// Command dbtool creates or migrates the database schema without
// starting the API server.
package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/zeremonos/waste-collection/internal/config"
	"github.com/zeremonos/waste-collection/internal/database"
	"github.com/zeremonos/waste-collection/internal/repository"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	if err := repository.InitSchema(db); err != nil {
		log.Fatalf("schema: %v", err)
	}
	log.Println("schema is up to date")
}
