package main

import (
	"flag"
	"os"

	"github.com/mantonx/cinelog/internal/config"
	"github.com/mantonx/cinelog/internal/database"
	"github.com/mantonx/cinelog/internal/logger"
	"github.com/mantonx/cinelog/internal/modules/moviemodule"
	"github.com/mantonx/cinelog/internal/modules/moviemodule/importer"
	"github.com/mantonx/cinelog/internal/modules/usermodule"
)

func main() {
	var (
		file       = flag.String("file", "", "path to the CSV file to import")
		configPath = flag.String("config", os.Getenv("CINELOG_CONFIG_PATH"), "path to the configuration file")
		reset      = flag.Bool("reset", false, "delete all movies before importing")
	)
	flag.Parse()

	if *file == "" && !*reset {
		flag.Usage()
		os.Exit(2)
	}

	if err := config.Load(*configPath); err != nil {
		logger.Error("Failed to load configuration: %v", err)
		os.Exit(1)
	}
	if err := database.Initialize(); err != nil {
		logger.Error("Failed to initialize database: %v", err)
		os.Exit(1)
	}
	db := database.GetDB()

	// Migrate directly instead of going through module loading; the importer
	// needs the schema but not handlers or routes.
	for _, migrate := range []func() error{
		func() error { return (&usermodule.Module{}).Migrate(db) },
		func() error { return (&moviemodule.Module{}).Migrate(db) },
	} {
		if err := migrate(); err != nil {
			logger.Error("Migration failed: %v", err)
			os.Exit(1)
		}
	}

	if *reset {
		if err := importer.Reset(db); err != nil {
			logger.Error("Reset failed: %v", err)
			os.Exit(1)
		}
		logger.Info("Existing movies deleted")
	}

	if *file == "" {
		return
	}

	f, err := os.Open(*file)
	if err != nil {
		logger.Error("Failed to open %s: %v", *file, err)
		os.Exit(1)
	}
	defer f.Close()

	summary, err := importer.Import(db, f)
	if err != nil {
		logger.Error("Import failed: %v", err)
		os.Exit(1)
	}
	logger.Info("Import finished: %d movies imported, %d rows skipped",
		summary.Movies, summary.Skipped)
}
