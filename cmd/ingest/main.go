package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"learning-hub-be/internal/bootstrap"
	"learning-hub-be/internal/config"
	"learning-hub-be/internal/dto"
	"learning-hub-be/internal/entity"
	"learning-hub-be/pkg/database"
)

// Indexes a JSON file of documents synchronously, without going through
// the HTTP API or the task queue. Useful for bulk backfills.
//
// Usage: ingest -file documents.json
func main() {
	filePath := flag.String("file", "", "path to a JSON array of documents")
	flag.Parse()

	if *filePath == "" {
		log.Fatal("Error: -file is required")
	}

	raw, err := os.ReadFile(*filePath)
	if err != nil {
		log.Fatalf("Error: Failed to read %s: %v", *filePath, err)
	}

	var requests []dto.IngestDocumentRequest
	if err := json.Unmarshal(raw, &requests); err != nil {
		log.Fatalf("Error: Failed to parse %s: %v", *filePath, err)
	}
	if len(requests) == 0 {
		log.Fatal("Error: No documents in input file")
	}

	cfg := config.Load()

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("Error: Unable to connect to GORM DB: %v", err)
	}

	container := bootstrap.NewContainer(gormDB, cfg)

	documents := make([]entity.DocumentWithText, 0, len(requests))
	for _, req := range requests {
		documents = append(documents, req.ToEntity())
	}

	log.Printf("Indexing %d documents from %s...", len(documents), *filePath)
	if err := container.Index.IndexDocuments(context.Background(), documents); err != nil {
		log.Fatalf("Error: Indexing failed: %v", err)
	}

	log.Printf("✅ Success: %d documents indexed.", len(documents))
}
