package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/raine/home-inventory/internal/config"
	"github.com/raine/home-inventory/internal/gcs"
	"github.com/raine/home-inventory/internal/inventory"
	"github.com/raine/home-inventory/internal/llm"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <media-path>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment variables:\n")
		fmt.Fprintf(os.Stderr, "  GEMINI_API_KEY - Required\n")
		fmt.Fprintf(os.Stderr, "  GCS_BUCKET     - Required\n")
		os.Exit(1)
	}

	config.LoadEnvFile()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read media: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	uploader, err := gcs.NewUploader(ctx, cfg.GCSBucket)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create uploader: %v\n", err)
		os.Exit(1)
	}
	defer uploader.Close()

	gemini, err := llm.NewClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create Gemini client: %v\n", err)
		os.Exit(1)
	}

	asset := inventory.MediaAsset{
		Bytes:    data,
		Filename: filepath.Base(os.Args[1]),
		Kind:     inventory.KindImage,
	}

	loc, err := uploader.Upload(ctx, asset.Bytes, asset.Filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Upload failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Uploaded: %s\n\n", loc.URI)

	raw, err := gemini.Extract(ctx, loc, asset.ResolveMIMEType())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Extraction failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Raw response:\n%s\n\n", raw)

	candidates, err := inventory.ValidateCandidates(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	for i, c := range candidates {
		fmt.Printf("[%d] %s (brand: %q, qty: %d, at: %s)\n    %s\n", i, c.Item, c.Brand, c.Quantity, c.Timestamp, c.Description)
	}
}
