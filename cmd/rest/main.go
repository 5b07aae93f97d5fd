package main

import (
	"context"
	"log"

	"learning-hub-be/internal/bootstrap"
	"learning-hub-be/internal/config"
	"learning-hub-be/internal/server"
	"learning-hub-be/pkg/database"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start Background Workers
	go func() {
		log.Println("Background: Starting Index Worker...")
		if err := container.IngestService.Consume(context.Background()); err != nil {
			log.Printf("Background Index Worker Error: %v", err)
		}
	}()
	go func() {
		log.Println("Background: Starting Query Worker...")
		if err := container.QueryTaskService.Consume(context.Background()); err != nil {
			log.Printf("Background Query Worker Error: %v", err)
		}
	}()

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}
