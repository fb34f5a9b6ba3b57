package market

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// Listing is a single marketplace search result with an asking price.
type Listing struct {
	ID      string  `json:"id"`
	Heading string  `json:"heading"`
	Price   float64 `json:"price"`
}

// SearchResult is the response from the marketplace search API.
type SearchResult struct {
	Docs []Listing `json:"docs"`
}

// ClientOpts configures a marketplace search client.
type ClientOpts struct {
	BaseURL string
	Rows    int
}

const defaultRows = 20

// Client queries a marketplace search API for comparable listings.
type Client struct {
	httpClient *resty.Client
	rows       int
}

// NewClient creates a marketplace search client.
func NewClient(opts ClientOpts) *Client {
	rows := opts.Rows
	if rows <= 0 {
		rows = defaultRows
	}
	httpClient := resty.New().
		SetDebug(false).
		SetBaseURL(opts.BaseURL).
		SetHeader("Accept", "application/json")

	return &Client{httpClient: httpClient, rows: rows}
}

// Search returns listings matching the free-text query.
func (c *Client) Search(ctx context.Context, query string) ([]Listing, error) {
	result := &SearchResult{}

	res, err := c.httpClient.
		NewRequest().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":    query,
			"rows": fmt.Sprintf("%d", c.rows),
		}).
		SetResult(result).
		Get("/search")
	if err != nil {
		return nil, err
	}
	if res.IsError() {
		return nil, fmt.Errorf("search request failed: %s (status: %d)", res.Request.URL, res.StatusCode())
	}

	return result.Docs, nil
}
