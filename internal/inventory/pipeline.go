package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// DefaultPricingConcurrency bounds concurrent price oracle calls per run.
const DefaultPricingConcurrency = 4

// Pipeline composes blob upload, structured extraction, validation, price
// enrichment and sink append into one request-scoped run.
type Pipeline struct {
	blobs              BlobStore
	extractor          Extractor
	oracle             PriceOracle
	sink               TabularSink
	pricingConcurrency int
}

// PipelineOpts configures a Pipeline. Sink may be nil, in which case the
// sinking stage is skipped.
type PipelineOpts struct {
	BlobStore BlobStore
	Extractor Extractor
	Oracle    PriceOracle
	Sink      TabularSink
	// PricingConcurrency bounds parallel price lookups. Zero means
	// DefaultPricingConcurrency.
	PricingConcurrency int
}

// NewPipeline creates a pipeline from the given collaborators.
func NewPipeline(opts PipelineOpts) *Pipeline {
	concurrency := opts.PricingConcurrency
	if concurrency <= 0 {
		concurrency = DefaultPricingConcurrency
	}
	return &Pipeline{
		blobs:              opts.BlobStore,
		extractor:          opts.Extractor,
		oracle:             opts.Oracle,
		sink:               opts.Sink,
		pricingConcurrency: concurrency,
	}
}

// RunResult is the outcome of a run that made it through pricing. SinkErr is
// non-nil when the append failed; the table is still valid in that case.
type RunResult struct {
	Table   Table
	SinkErr error
}

// Run processes one media asset through the full pipeline. A failure in the
// upload, extraction or validation stage aborts the run with a PipelineError.
// Price lookup failures degrade per row to an unknown estimate and a sink
// failure is reported in the result without discarding the table.
func (p *Pipeline) Run(ctx context.Context, asset MediaAsset) (*RunResult, error) {
	if asset.Filename == "" {
		return nil, fmt.Errorf("asset filename must not be empty")
	}
	if asset.Kind != KindImage && asset.Kind != KindVideo {
		return nil, fmt.Errorf("unknown media kind %q", asset.Kind)
	}

	runID := uuid.New().String()
	logger := log.With().Str("runID", runID).Str("filename", asset.Filename).Logger()

	loc, err := p.blobs.Upload(ctx, asset.Bytes, asset.Filename)
	if err != nil {
		logger.Error().Err(err).Msg("upload stage failed")
		return nil, &PipelineError{Stage: StageUpload, Cause: err}
	}
	logger.Info().Str("uri", loc.URI).Msg("media uploaded")

	mimeType := asset.ResolveMIMEType()
	raw, err := p.extractor.Extract(ctx, loc, mimeType)
	if err != nil {
		logger.Error().Err(err).Msg("extraction stage failed")
		return nil, &PipelineError{Stage: StageExtraction, Cause: err}
	}

	candidates, err := ValidateCandidates(raw)
	if err != nil {
		logger.Error().Err(err).Msg("validation stage failed")
		return nil, &PipelineError{Stage: StageValidation, Cause: err}
	}
	logger.Info().Int("items", len(candidates)).Msg("extraction validated")

	table := p.priceCandidates(ctx, logger, candidates, loc)

	result := &RunResult{Table: table}
	if p.sink != nil && len(table) > 0 {
		if err := p.sink.Append(ctx, table); err != nil {
			// The table was already computed; persistence failure must not
			// unwind it.
			logger.Error().Err(err).Msg("sink append failed, keeping table")
			var sinkErr *SinkError
			if !errors.As(err, &sinkErr) {
				err = &SinkError{Cause: err}
			}
			result.SinkErr = err
		} else {
			logger.Info().Int("rows", len(table)).Msg("table appended to sink")
		}
	}

	return result, nil
}

// priceCandidates resolves a price estimate for every candidate with bounded
// parallelism. Each row resolves independently; results are written into
// index-addressed slots so row order matches extraction order regardless of
// completion order. When ctx is cancelled, no new oracle calls are issued and
// unpriced rows stay Unknown.
func (p *Pipeline) priceCandidates(ctx context.Context, logger zerolog.Logger, candidates []ItemCandidate, loc BlobLocator) Table {
	table := make(Table, len(candidates))
	for i, c := range candidates {
		table[i] = PricedRow{ItemCandidate: c, Price: UnknownPrice(), URI: loc.URI}
	}

	g := new(errgroup.Group)
	g.SetLimit(p.pricingConcurrency)
	for i := range candidates {
		if ctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			c := candidates[i]
			estimate := p.oracle.Estimate(ctx, c.Item, c.Brand, c.Description)
			table[i].Price = estimate
			if !estimate.Known {
				logger.Warn().Str("item", c.Item).Msg("price unresolved")
			}
			return nil
		})
	}
	g.Wait()

	return table
}
