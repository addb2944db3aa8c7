package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/confideapp/confide/internal/server"
	"github.com/confideapp/confide/internal/server/config"
)

func main() {

	// optional .env file with local overrides; absence is fine
	_ = godotenv.Load()

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
