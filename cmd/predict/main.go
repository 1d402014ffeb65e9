package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gardenvision/internal/app"
	"gardenvision/internal/config"
	"gardenvision/internal/fusion"
	"gardenvision/internal/logger"
	"gardenvision/internal/models"
	"gardenvision/internal/repository/sqlite"
	"gardenvision/internal/services/ai"
	"gardenvision/internal/services/cache"
	"gardenvision/internal/services/media"
)

var imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

func main() {
	annotateDir := flag.String("annotate", "", "Write annotated JPEGs into this directory")
	store := flag.Bool("store", false, "Store results in the configured database")
	pretty := flag.Bool("pretty", false, "Indent JSON output")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: predict [flags] <image or directory>...")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.LogDirectory = filepath.Join(os.TempDir(), "gardenvision-predict")
	lg := logger.NewLogger(cfg)

	primary := ai.NewDetectorService("primary", cfg.Primary, lg)
	defer primary.Close()
	if !primary.Ready() {
		log.Fatalf("Primary model %s could not be loaded", cfg.Primary.ModelPath)
	}
	species := ai.NewDetectorService("species", cfg.Species, lg)
	defer species.Close()

	var speciesDetector fusion.Detector
	if species.Ready() {
		speciesDetector = species
	}
	engine, err := app.NewEngine(cfg, primary, speciesDetector)
	if err != nil {
		log.Fatalf("Failed to build engine: %v", err)
	}

	var db *sqlite.DB
	if *store {
		db, err = sqlite.New(cfg.DatabasePath)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer db.Close()
	}

	files := collect(flag.Args())
	enc := json.NewEncoder(os.Stdout)
	if *pretty {
		enc.SetIndent("", "  ")
	}

	failed := 0
	for _, path := range files {
		out, err := predictFile(context.Background(), engine, db, path, *annotateDir)
		if err != nil {
			log.Printf("Skipping %s: %v", path, err)
			failed++
			continue
		}
		if err := enc.Encode(out); err != nil {
			log.Fatalf("Failed to write output: %v", err)
		}
	}

	fmt.Fprintf(os.Stderr, "Processed %d file(s), %d failed\n", len(files)-failed, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

type fileResult struct {
	File string `json:"file"`
	models.Prediction
}

func predictFile(ctx context.Context, engine *fusion.Engine, db *sqlite.DB, path, annotateDir string) (*fileResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	img, err := media.Decode(data)
	if err != nil {
		return nil, err
	}

	records, err := engine.Run(ctx, img)
	if err != nil {
		return nil, err
	}

	result := &fileResult{
		File: path,
		Prediction: models.Prediction{
			Records: records,
			Hash:    cache.ImageHash(data),
			Width:   img.Bounds().Dx(),
			Height:  img.Bounds().Dy(),
		},
	}

	if db != nil {
		photo := &models.Photo{
			Hash:       result.Hash,
			Filename:   filepath.Base(path),
			Width:      result.Width,
			Height:     result.Height,
			FilePath:   path,
			FileSize:   int64(len(data)),
			PlantCount: len(records),
		}
		id, err := sqlite.NewPhotoRepository(db).Save(photo)
		if err != nil {
			return nil, err
		}
		plants := make([]models.Plant, len(records))
		for i, r := range records {
			plants[i] = models.NewPlant(id, i, r)
		}
		if err := sqlite.NewPlantRepository(db).ReplaceForPhoto(id, plants); err != nil {
			return nil, err
		}
		result.PhotoID = id
	}

	if annotateDir != "" {
		annotated, err := ai.Annotate(img, records)
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(annotateDir, 0755); err != nil {
			return nil, err
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + "_annotated.jpg"
		if err := os.WriteFile(filepath.Join(annotateDir, name), annotated, 0644); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// collect expands directories into the image files they contain.
func collect(args []string) []string {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			log.Printf("Skipping %s: %v", arg, err)
			continue
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			log.Printf("Failed to read %s: %v", arg, err)
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || !imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
				continue
			}
			files = append(files, filepath.Join(arg, entry.Name()))
		}
	}
	return files
}
