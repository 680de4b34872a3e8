package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Batman16012001/Locally-Connector-New/internal/config"
	"github.com/Batman16012001/Locally-Connector-New/internal/controller"
	"github.com/Batman16012001/Locally-Connector-New/internal/database"
	"github.com/Batman16012001/Locally-Connector-New/internal/ingest"
	"github.com/Batman16012001/Locally-Connector-New/internal/model"
)

// One-shot ingestion of a local CSV with full job tracking, for operators
// who want to load a file without going through the HTTP API.
func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if len(os.Args) < 3 {
		fmt.Println("Usage: ingest <config_path> <csv_path>")
		fmt.Println("Example: ingest config.json products.csv")
		os.Exit(1)
	}

	configPath := os.Args[1]
	csvPath := os.Args[2]

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer db.Close(context.Background())

	jc := controller.NewJobController(db, nil, nil)
	pipeline := ingest.NewPipeline(db, jc, cfg.Ingest.ChunkSize)

	ctx := context.Background()
	job, err := jc.CreateJob(ctx, model.JobCreate{
		SourceType:   model.SourceTypeCSV,
		SourceConfig: map[string]any{"path": csvPath, "filename": filepath.Base(csvPath)},
		Description:  "CLI ingestion of " + csvPath,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create job")
	}

	result, err := pipeline.Run(ctx, csvPath, job.ID)
	if err != nil {
		log.Fatal().Err(err).Str("jobID", job.ID).Msg("Ingestion failed")
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to render result")
	}

	fmt.Println("Job:", job.ID)
	fmt.Println(string(out))
}
