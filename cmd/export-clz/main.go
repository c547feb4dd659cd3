// Command export-clz writes the whole collection to a file in CLZ XML,
// CLZ CSV or plain JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"noircollect/internal/clz"
	"noircollect/internal/comics"
	"noircollect/pkg/database"
	"noircollect/pkg/models"
)

func main() {
	var (
		out    = flag.String("out", "data/collection.xml", "output file path")
		format = flag.String("format", "clz-xml", "output format: clz-xml, clz-csv or json")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	rows, err := comics.NewRepo(db).All(ctx)
	if err != nil {
		log.Fatalf("fetch comics failed: %v", err)
	}

	data, err := encode(rows, *format)
	if err != nil {
		log.Fatalf("encode failed: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		log.Fatalf("create output dir failed: %v", err)
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		log.Fatalf("write %s failed: %v", *out, err)
	}

	log.Printf("✅ exported %d records to %s as %s", len(rows), *out, *format)
}

func encode(rows []models.ComicRecord, format string) ([]byte, error) {
	switch format {
	case "clz-xml":
		return clz.Build(rows)
	case "clz-csv":
		return clz.BuildCSV(rows)
	case "json":
		return json.MarshalIndent(rows, "", "  ")
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}
