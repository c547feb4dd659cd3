// Command import-clz loads a CLZ export (xml or csv) or a JSON entry
// array into the local database, running the same dedupe and merge
// pipeline the API import endpoints use.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"noircollect/internal/clz"
	"noircollect/internal/comics"
	"noircollect/internal/importer"
	"noircollect/pkg/database"
	"noircollect/pkg/logger"
	"noircollect/pkg/models"
	"noircollect/pkg/utils"
)

func main() {
	var (
		file    = flag.String("file", "", "input file path")
		format  = flag.String("format", "xml", "input format: xml, csv or json")
		replace = flag.Bool("replace", false, "wipe existing rows before importing")
	)
	flag.Parse()

	if *file == "" {
		log.Fatal("-file is required")
	}

	cfg := utils.Load()
	slogger := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	records, err := readRecords(*file, *format)
	if err != nil {
		log.Fatalf("read %s failed: %v", *file, err)
	}

	res, err := importer.NewPipeline(db, slogger).Run(ctx, records, *replace)
	if err != nil {
		log.Fatalf("import failed: %v", err)
	}

	log.Printf("✅ imported %d of %d records from %s (replace=%v)",
		res.Inserted, res.Total, *file, res.Replaced)
}

func readRecords(path, format string) ([]models.ComicRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	switch format {
	case "xml":
		return clz.Parse(string(raw))
	case "csv":
		return clz.ParseCSV(bytes.NewReader(raw))
	case "json":
		var entries []comics.Entry
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, err
		}
		records := make([]models.ComicRecord, 0, len(entries))
		for i := range entries {
			records = append(records, entries[i].Record())
		}
		return records, nil
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}
