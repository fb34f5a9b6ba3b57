package bq

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"github.com/raine/home-inventory/internal/inventory"
	"github.com/rs/zerolog/log"
)

// Sink appends inventory tables to a BigQuery table. Appends are
// fire-and-forget relative to the rest of the pipeline: a failure here is
// reported but never discards the in-memory table.
type Sink struct {
	client  *bigquery.Client
	dataset string
	table   string
}

// NewSink creates a BigQuery sink. Credentials come from the application
// default chain.
func NewSink(ctx context.Context, projectID, dataset, table string) (*Sink, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create BigQuery client: %w", err)
	}
	return &Sink{client: client, dataset: dataset, table: table}, nil
}

// rowSaver adapts a PricedRow to the streaming insert API with the fixed
// column order [item, brand, quantity, price, timestamp, description, uri].
type rowSaver struct {
	row inventory.PricedRow
}

func (s rowSaver) Save() (map[string]bigquery.Value, string, error) {
	return map[string]bigquery.Value{
		"item":        s.row.Item,
		"brand":       s.row.Brand,
		"quantity":    s.row.Quantity,
		"price":       s.row.PriceOrZero(),
		"timestamp":   s.row.Timestamp,
		"description": s.row.Description,
		"uri":         s.row.URI,
	}, "", nil
}

// Append implements inventory.TabularSink.
func (s *Sink) Append(ctx context.Context, table inventory.Table) error {
	savers := make([]bigquery.ValueSaver, len(table))
	for i, row := range table {
		savers[i] = rowSaver{row: row}
	}

	inserter := s.client.Dataset(s.dataset).Table(s.table).Inserter()
	if err := inserter.Put(ctx, savers); err != nil {
		return &inventory.SinkError{Cause: err}
	}

	log.Info().Int("rows", len(table)).Str("dataset", s.dataset).Str("table", s.table).Msg("appended rows to BigQuery")
	return nil
}

// Close releases the underlying client.
func (s *Sink) Close() error {
	return s.client.Close()
}
