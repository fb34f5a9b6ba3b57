package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/raine/home-inventory/internal/bq"
	"github.com/raine/home-inventory/internal/config"
	"github.com/raine/home-inventory/internal/gcs"
	"github.com/raine/home-inventory/internal/inventory"
	"github.com/raine/home-inventory/internal/llm"
	"github.com/raine/home-inventory/internal/market"
	"github.com/raine/home-inventory/internal/storage"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var videoExtensions = map[string]bool{
	".mp4": true,
	".mov": true,
	".avi": true,
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <media-file> [media-file...]\n", os.Args[0])
		os.Exit(1)
	}

	config.LoadEnvFile()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pipeline, store, cleanup, err := buildPipeline(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize pipeline")
	}
	defer cleanup()

	// Session table accumulates rows across all files in this invocation.
	var session inventory.Table

	for _, path := range os.Args[1:] {
		asset, err := readAsset(path)
		if err != nil {
			log.Error().Err(err).Str("path", path).Msg("failed to read media file")
			continue
		}

		result, err := pipeline.Run(ctx, asset)
		if err != nil {
			var pipelineErr *inventory.PipelineError
			if errors.As(err, &pipelineErr) {
				log.Error().Err(pipelineErr.Cause).Str("stage", string(pipelineErr.Stage)).Str("path", path).Msg("pipeline aborted")
			} else {
				log.Error().Err(err).Str("path", path).Msg("pipeline failed")
			}
			continue
		}
		if result.SinkErr != nil {
			log.Warn().Err(result.SinkErr).Msg("results were not fully persisted")
		}

		session = append(session, result.Table...)
	}

	printTable(session)

	if rows, err := store.RecentRows(10); err == nil && len(rows) > 0 {
		log.Info().Int("recent", len(rows)).Msg("store holds previous inventory rows")
	}
}

// buildPipeline wires the gateways into a pipeline from the configuration.
func buildPipeline(ctx context.Context, cfg config.Config) (*inventory.Pipeline, *storage.SQLiteStore, func(), error) {
	uploader, err := gcs.NewUploader(ctx, cfg.GCSBucket)
	if err != nil {
		return nil, nil, nil, err
	}

	gemini, err := llm.NewClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		uploader.Close()
		return nil, nil, nil, err
	}

	store, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		uploader.Close()
		return nil, nil, nil, err
	}
	log.Info().Str("dbPath", cfg.DBPath).Msg("local store initialized")

	var extractor inventory.Extractor = llm.NewCachedExtractor(gemini, store)

	var oracle inventory.PriceOracle = llm.NewPriceOracle(gemini)
	if cfg.MarketAPIURL != "" {
		marketOracle := market.NewOracle(market.NewClient(market.ClientOpts{BaseURL: cfg.MarketAPIURL}))
		oracle = llm.FallbackOracle{oracle, marketOracle}
		log.Info().Str("url", cfg.MarketAPIURL).Msg("marketplace price fallback enabled")
	}

	sinks := inventory.MultiSink{store}
	cleanup := func() {
		store.Close()
		uploader.Close()
	}
	if cfg.BQProjectID != "" {
		bqSink, err := bq.NewSink(ctx, cfg.BQProjectID, cfg.BQDataset, cfg.BQTable)
		if err != nil {
			cleanup()
			return nil, nil, nil, err
		}
		sinks = append(sinks, bqSink)
		inner := cleanup
		cleanup = func() {
			bqSink.Close()
			inner()
		}
		log.Info().Str("project", cfg.BQProjectID).Msg("BigQuery sink enabled")
	}

	pipeline := inventory.NewPipeline(inventory.PipelineOpts{
		BlobStore:          uploader,
		Extractor:          extractor,
		Oracle:             oracle,
		Sink:               sinks,
		PricingConcurrency: cfg.PricingConcurrency,
	})

	return pipeline, store, cleanup, nil
}

// readAsset loads a media file and classifies it by extension.
func readAsset(path string) (inventory.MediaAsset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return inventory.MediaAsset{}, err
	}

	kind := inventory.KindImage
	if videoExtensions[strings.ToLower(filepath.Ext(path))] {
		kind = inventory.KindVideo
	}

	return inventory.MediaAsset{
		Bytes:    data,
		Filename: filepath.Base(path),
		Kind:     kind,
	}, nil
}

func printTable(table inventory.Table) {
	if len(table) == 0 {
		fmt.Println("no inventory items detected")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(inventory.Columns, "\t"))
	for _, row := range table {
		price := "unknown"
		if row.Price.Known {
			price = fmt.Sprintf("%.2f", row.Price.Value)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
			row.Item, row.Brand, row.Quantity, price, row.Timestamp, row.Description, row.URI)
	}
	w.Flush()
}
