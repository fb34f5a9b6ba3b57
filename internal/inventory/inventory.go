package inventory

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// MediaKind is the declared kind of an uploaded media asset.
type MediaKind string

const (
	KindImage MediaKind = "image"
	KindVideo MediaKind = "video"
)

// MediaAsset is one media file as received at ingress. It is immutable and
// discarded after upload.
type MediaAsset struct {
	Bytes    []byte
	Filename string
	Kind     MediaKind
	MIMEType string
}

// ResolveMIMEType returns the asset's MIME type, deriving it from the
// filename extension when it was not declared. Videos default to video/mp4.
func (a MediaAsset) ResolveMIMEType() string {
	if a.MIMEType != "" {
		return a.MIMEType
	}
	if a.Kind == KindVideo {
		return "video/mp4"
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(a.Filename), "."))
	if ext == "" {
		return "application/octet-stream"
	}
	if ext == "jpg" {
		ext = "jpeg"
	}
	return "image/" + ext
}

// BlobLocator identifies uploaded content in the blob store.
type BlobLocator struct {
	URI string
}

// ItemCandidate is one detected-but-not-yet-priced inventory item, as
// extracted from the media.
type ItemCandidate struct {
	Item        string `json:"item"`
	Brand       string `json:"brand"`
	Model       string `json:"model,omitempty"`
	Quantity    int    `json:"quantity"`
	Description string `json:"description"`
	Timestamp   string `json:"timestamp"`
}

// PriceEstimate is a best-effort market price. Unknown is an explicit state
// rather than a zero value so consumers can tell "free" from "unresolved".
type PriceEstimate struct {
	Value float64
	Known bool
}

// KnownPrice returns an estimate with a resolved value.
func KnownPrice(value float64) PriceEstimate {
	return PriceEstimate{Value: value, Known: true}
}

// UnknownPrice returns an unresolved estimate.
func UnknownPrice() PriceEstimate {
	return PriceEstimate{}
}

// PricedRow is a validated candidate enriched with a price estimate and the
// source media locator. This is the shape appended to sinks.
type PricedRow struct {
	ItemCandidate
	Price PriceEstimate
	URI   string
}

// PriceOrZero collapses an unknown price to 0 for tabular storage. Sinks
// cannot distinguish an unresolved price from a zero-cost item; consumers of
// the table must treat 0 accordingly.
func (r PricedRow) PriceOrZero() float64 {
	if !r.Price.Known {
		return 0
	}
	return r.Price.Value
}

// Table is the ordered result of one pipeline run. Row order matches
// extraction order, which carries timestamp/location meaning for video.
type Table []PricedRow

// Columns is the fixed column order every sink must preserve.
var Columns = []string{"item", "brand", "quantity", "price", "timestamp", "description", "uri"}

// BlobStore uploads raw bytes under a stable key and returns a locator.
// Repeated uploads with the same name overwrite the object but return the
// same locator shape.
type BlobStore interface {
	Upload(ctx context.Context, data []byte, name string) (BlobLocator, error)
}

// Extractor asks a vision capability to enumerate visible items in the
// uploaded media as schema-constrained JSON text.
type Extractor interface {
	Extract(ctx context.Context, loc BlobLocator, mimeType string) (string, error)
}

// PriceOracle estimates the market price of an item. It never fails: any
// underlying error degrades to an Unknown estimate.
type PriceOracle interface {
	Estimate(ctx context.Context, item, brand, description string) PriceEstimate
}

// TabularSink appends a finished table to a persistent store. The sink must
// preserve the Columns order.
type TabularSink interface {
	Append(ctx context.Context, table Table) error
}

// MultiSink fans an append out to several sinks. All sinks are attempted;
// failures are joined.
type MultiSink []TabularSink

func (m MultiSink) Append(ctx context.Context, table Table) error {
	var errs []error
	for _, s := range m {
		if err := s.Append(ctx, table); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// PriceQuery builds the free-text price lookup query from the non-empty
// fields of an item.
func PriceQuery(item, brand, description string) string {
	var sb strings.Builder
	if strings.TrimSpace(brand) != "" {
		sb.WriteString(strings.TrimSpace(brand))
	}
	if item != "" {
		if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(fmt.Sprintf("(%s)", item))
	}
	if description != "" {
		if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(fmt.Sprintf("with the description: (%s)", description))
	}
	return sb.String()
}
