// Package places implements the entity search client over the Google
// Places text-search API.
package places

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"googlemaps.github.io/maps"

	"github.com/belivan/prospect-discovery/internal/discovery"
)

// Client executes text searches and maps results to candidates.
type Client struct {
	mc     *maps.Client
	logger *zap.Logger
}

// Config holds the search provider settings.
type Config struct {
	APIKey string
	Logger *zap.Logger
}

// New creates a Places-backed search client.
func New(cfg *Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("places api key is required")
	}
	mc, err := maps.NewClient(maps.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create maps client: %w", err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{mc: mc, logger: logger}, nil
}

// Search implements discovery.SearchClient. One call fetches a single
// result page; transport and quota failures come back as *ProviderError so
// the controller can absorb them per query.
func (c *Client) Search(ctx context.Context, query string, minRating float64, maxResults int) ([]discovery.Candidate, error) {
	start := time.Now()
	resp, err := c.mc.TextSearch(ctx, &maps.TextSearchRequest{Query: query})
	if err != nil {
		return nil, &discovery.ProviderError{Query: query, Err: err}
	}
	candidates := convertResults(resp.Results, minRating, maxResults)
	c.logger.Debug("places search completed",
		zap.String("query", query),
		zap.Int("raw", len(resp.Results)),
		zap.Int("kept", len(candidates)),
		zap.Duration("dur", time.Since(start)),
	)
	return candidates, nil
}

// convertResults applies the quality filter and result cap while mapping
// provider rows into candidates. Provider attributes ride along unmodified
// in the attribute bag.
func convertResults(results []maps.PlacesSearchResult, minRating float64, maxResults int) []discovery.Candidate {
	out := make([]discovery.Candidate, 0, len(results))
	for _, r := range results {
		if r.PlaceID == "" {
			continue
		}
		if minRating > 0 && float64(r.Rating) < minRating {
			continue
		}
		out = append(out, convertResult(r))
		if maxResults > 0 && len(out) == maxResults {
			break
		}
	}
	return out
}

func convertResult(r maps.PlacesSearchResult) discovery.Candidate {
	attrs := map[string]any{
		"formatted_address":  r.FormattedAddress,
		"types":              r.Types,
		"user_ratings_total": r.UserRatingsTotal,
	}
	if r.BusinessStatus != "" {
		attrs["business_status"] = r.BusinessStatus
	}
	if r.PriceLevel > 0 {
		attrs["price_level"] = r.PriceLevel
	}
	if r.Vicinity != "" {
		attrs["vicinity"] = r.Vicinity
	}
	return discovery.Candidate{
		ID:         r.PlaceID,
		Name:       r.Name,
		Rating:     float64(r.Rating),
		Attributes: attrs,
	}
}
