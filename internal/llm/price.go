package llm

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/raine/home-inventory/internal/inventory"
	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

const pricePromptFormat = `What is the typical price of a %s? If you aren't sure, give a reasonable estimate. Return only the price as a single number (e.g., 25.99).`

// PriceOracle estimates item prices with Gemini grounded in Google Search.
// It implements inventory.PriceOracle: failures never propagate, every error
// path degrades to an Unknown estimate.
type PriceOracle struct {
	client *genai.Client
}

// NewPriceOracle creates a grounded price oracle sharing the given client.
func NewPriceOracle(c *Client) *PriceOracle {
	return &PriceOracle{client: c.client}
}

// Estimate asks Gemini for a single numeric price at zero temperature to keep
// run-to-run variance down. Non-numeric or empty responses map to Unknown.
func (o *PriceOracle) Estimate(ctx context.Context, item, brand, description string) inventory.PriceEstimate {
	query := inventory.PriceQuery(item, brand, description)
	if query == "" {
		return inventory.UnknownPrice()
	}

	prompt := fmt.Sprintf(pricePromptFormat, query)

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0),
		Tools: []*genai.Tool{
			{GoogleSearch: &genai.GoogleSearch{}},
		},
	}

	result, err := o.client.Models.GenerateContent(ctx, geminiPriceModel, []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{genai.NewPartFromText(prompt)}, genai.RoleUser),
	}, config)
	if err != nil {
		log.Warn().Err(err).Str("item", item).Msg("price lookup failed")
		return inventory.UnknownPrice()
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		log.Warn().Str("item", item).Msg("empty price response")
		return inventory.UnknownPrice()
	}

	logUsage(result, geminiPriceModel, geminiLiteInputPricePerMillion, geminiLiteOutputPricePerMillion, "price estimation llm call")

	value, ok := parsePrice(result.Text())
	if !ok {
		log.Warn().Str("item", item).Str("response", result.Text()).Msg("non-numeric price response")
		return inventory.UnknownPrice()
	}
	return inventory.KnownPrice(value)
}

// parsePrice parses a model response expected to be a single decimal number.
// Currency symbols, thousands separators and surrounding markdown are
// tolerated; anything else fails the parse.
func parsePrice(text string) (float64, bool) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)
	text = strings.TrimLeft(text, "$€£")
	text = strings.ReplaceAll(text, ",", "")
	text = strings.TrimSpace(text)

	if text == "" {
		return 0, false
	}

	value, err := strconv.ParseFloat(text, 64)
	if err != nil || value < 0 {
		return 0, false
	}
	return value, true
}

// FallbackOracle chains oracles and returns the first Known estimate. It lets
// a marketplace comparison source back up the grounded LLM lookup.
type FallbackOracle []inventory.PriceOracle

func (f FallbackOracle) Estimate(ctx context.Context, item, brand, description string) inventory.PriceEstimate {
	for _, o := range f {
		if estimate := o.Estimate(ctx, item, brand, description); estimate.Known {
			return estimate
		}
	}
	return inventory.UnknownPrice()
}
