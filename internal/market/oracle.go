package market

import (
	"context"
	"sort"
	"strings"

	"github.com/raine/home-inventory/internal/inventory"
	"github.com/rs/zerolog/log"
)

// Oracle estimates an item's price as the median asking price of comparable
// marketplace listings. It implements inventory.PriceOracle and is meant as a
// fallback behind the grounded LLM lookup.
type Oracle struct {
	client *Client
}

// NewOracle creates a marketplace comparison oracle.
func NewOracle(client *Client) *Oracle {
	return &Oracle{client: client}
}

// Estimate searches for brand + item and takes the median of listed prices.
// Search failures and empty result sets degrade to Unknown.
func (o *Oracle) Estimate(ctx context.Context, item, brand, description string) inventory.PriceEstimate {
	query := strings.TrimSpace(strings.TrimSpace(brand) + " " + item)
	if query == "" {
		return inventory.UnknownPrice()
	}

	listings, err := o.client.Search(ctx, query)
	if err != nil {
		log.Warn().Err(err).Str("query", query).Msg("marketplace search failed")
		return inventory.UnknownPrice()
	}

	var prices []float64
	for _, l := range listings {
		if l.Price > 0 {
			prices = append(prices, l.Price)
		}
	}
	if len(prices) == 0 {
		return inventory.UnknownPrice()
	}

	median := medianPrice(prices)
	log.Debug().Str("query", query).Int("comparables", len(prices)).Float64("median", median).Msg("marketplace price estimate")
	return inventory.KnownPrice(median)
}

func medianPrice(prices []float64) float64 {
	sort.Float64s(prices)
	mid := len(prices) / 2
	if len(prices)%2 == 1 {
		return prices[mid]
	}
	return (prices[mid-1] + prices[mid]) / 2
}
