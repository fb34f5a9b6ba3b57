package llm

import (
	"context"
	"fmt"

	"github.com/lithammer/dedent"
	"github.com/raine/home-inventory/internal/inventory"
	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

const (
	geminiVisionModel = "gemini-3-flash-preview"
	geminiPriceModel  = "gemini-2.5-flash-lite"
)

// Gemini pricing (per million tokens)
const (
	geminiInputPricePerMillion      = 0.50
	geminiOutputPricePerMillion     = 3.00
	geminiLiteInputPricePerMillion  = 0.075
	geminiLiteOutputPricePerMillion = 0.30
)

var extractionPrompt = dedent.Dedent(`
	You are an insurance adjuster creating a home inventory. Analyze this media
	and return a JSON array of objects, each describing an item seen.

	Include item, brand, model (if possible), quantity, and a brief description
	of the item.

	Only include items that are clearly visible and fully within the frame.
	Exclude partially visible or ambiguous objects.

	For each item, include relevant information such as timestamps (for videos)
	or location within the image (for images) in the timestamp field.`)

// Client wraps the Gemini API for media extraction and price estimation.
type Client struct {
	client *genai.Client
}

// NewClient creates a Gemini client with an explicit API key.
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Client{client: client}, nil
}

// inventoryResponseSchema constrains generation to a JSON array of item
// objects. item, quantity, description and timestamp are required at the
// schema level; brand and model stay optional.
func inventoryResponseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"item":        {Type: genai.TypeString},
				"brand":       {Type: genai.TypeString},
				"model":       {Type: genai.TypeString},
				"quantity":    {Type: genai.TypeInteger},
				"description": {Type: genai.TypeString},
				"timestamp":   {Type: genai.TypeString},
			},
			Required: []string{"item", "quantity", "description", "timestamp"},
		},
	}
}

// Extract implements inventory.Extractor. It sends the uploaded media
// reference to Gemini with a strict response schema and returns the raw JSON
// text. It does not parse or repair the response; that is the validator's
// job.
func (c *Client) Extract(ctx context.Context, loc inventory.BlobLocator, mimeType string) (string, error) {
	parts := []*genai.Part{
		genai.NewPartFromText(extractionPrompt),
		{FileData: &genai.FileData{FileURI: loc.URI, MIMEType: mimeType}},
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   inventoryResponseSchema(),
	}

	result, err := c.client.Models.GenerateContent(ctx, geminiVisionModel, contents, config)
	if err != nil {
		return "", &inventory.ExtractionError{URI: loc.URI, Cause: err}
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", &inventory.ExtractionError{URI: loc.URI, Cause: fmt.Errorf("empty response from Gemini")}
	}

	logUsage(result, geminiVisionModel, geminiInputPricePerMillion, geminiOutputPricePerMillion, "media extraction llm call")

	return result.Text(), nil
}

// logUsage logs token usage and cost for one Gemini call.
func logUsage(result *genai.GenerateContentResponse, model string, inputPrice, outputPrice float64, msg string) {
	if result.UsageMetadata == nil {
		return
	}
	inputTokens := int64(result.UsageMetadata.PromptTokenCount)
	outputTokens := int64(result.UsageMetadata.CandidatesTokenCount)
	log.Info().
		Str("model", model).
		Int64("inputTokens", inputTokens).
		Int64("outputTokens", outputTokens).
		Float64("costUSD", calculateGeminiCost(inputTokens, outputTokens, inputPrice, outputPrice)).
		Msg(msg)
}

func calculateGeminiCost(inputTokens, outputTokens int64, inputPrice, outputPrice float64) float64 {
	inputCost := float64(inputTokens) / 1_000_000 * inputPrice
	outputCost := float64(outputTokens) / 1_000_000 * outputPrice
	return inputCost + outputCost
}
