// internal/marketdata/client.go

// Package marketdata resolves a (brand, model, year) to a market price
// band against a Reverb-style price-guide API. Fuzzy multi-query fallback
// lives here; downstream consumers only ever see a resolved band or an
// unresolved one, never a lookup error for "no data".
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"fretwatch/internal/common/config"
	apperrors "fretwatch/internal/common/errors"
	"fretwatch/internal/common/logger"
	"fretwatch/internal/common/metrics"
	"fretwatch/internal/models"
)

type priceGuideResponse struct {
	PriceGuides []struct {
		Make           string `json:"make"`
		EstimatedValue *struct {
			PriceLow struct {
				Amount string `json:"amount"`
			} `json:"price_low"`
			PriceHigh struct {
				Amount string `json:"amount"`
			} `json:"price_high"`
		} `json:"estimated_value"`
	} `json:"price_guides"`
}

// Client queries the price-guide API with most-specific-first fallback
// queries and averages the matching guide entries into one band.
type Client struct {
	baseURL   string
	http      *http.Client
	rateLimit time.Duration
	lastCall  time.Time
	logger    logger.Logger
}

func NewClient(cfg config.MarketDataConfig, log logger.Logger) *Client {
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		http:      &http.Client{Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond},
		rateLimit: time.Duration(cfg.RateLimitMS) * time.Millisecond,
		logger:    log.WithFields(map[string]interface{}{"component": "marketdata"}),
	}
}

var leadingPunct = regexp.MustCompile(`^[^a-zA-Z0-9]+`)

// buildQueries produces the candidate query strings, most specific first:
// with year before without, full brand before its last word, full model
// before its first two words.
func buildQueries(brand, model string, year *int) []string {
	model = strings.TrimSpace(leadingPunct.ReplaceAllString(model, ""))

	modelVariants := []string{model}
	if words := strings.Fields(model); len(words) > 2 {
		modelVariants = append(modelVariants, strings.Join(words[:2], " "))
	}

	brandVariants := []string{brand}
	if words := strings.Fields(brand); len(words) > 1 {
		short := words[len(words)-1]
		if !strings.EqualFold(short, brand) {
			brandVariants = append(brandVariants, short)
		}
	}

	yearVariants := []string{""}
	if year != nil {
		yearVariants = []string{strconv.Itoa(*year), ""}
	}

	var queries []string
	seen := make(map[string]bool)
	for _, y := range yearVariants {
		for _, b := range brandVariants {
			for _, m := range modelVariants {
				q := strings.TrimSpace(strings.Join(strings.Fields(b+" "+m+" "+y), " "))
				if q != "" && !seen[q] {
					seen[q] = true
					queries = append(queries, q)
				}
			}
		}
	}
	return queries
}

// brandsMatch is the bidirectional containment check applied to guide
// entries so a "Gibson Custom" guide row still counts for "Gibson".
func brandsMatch(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// Lookup resolves the market band, returning an unresolved range when no
// query produces a matching guide entry. Only a fully failed transport
// (every query errored) surfaces as an error.
func (c *Client) Lookup(ctx context.Context, brand, model string, year *int) (models.PriceRange, error) {
	queries := buildQueries(brand, model, year)

	var lastErr error
	for _, query := range queries {
		c.throttle()

		rng, found, err := c.query(ctx, brand, query)
		if err != nil {
			lastErr = err
			continue
		}
		if found {
			return rng, nil
		}
	}

	if lastErr != nil {
		metrics.MarketLookupFailures.WithLabelValues("priceguide").Inc()
		return models.PriceRange{}, apperrors.NewMarketLookupFailedError(brand, model, lastErr)
	}
	return models.PriceRange{}, nil
}

func (c *Client) throttle() {
	if c.rateLimit <= 0 {
		return
	}
	if wait := c.rateLimit - time.Since(c.lastCall); wait > 0 {
		time.Sleep(wait)
	}
	c.lastCall = time.Now()
}

func (c *Client) query(ctx context.Context, brand, query string) (models.PriceRange, bool, error) {
	u := fmt.Sprintf("%s/priceguide?%s", c.baseURL, url.Values{
		"query":    {query},
		"per_page": {"10"},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return models.PriceRange{}, false, err
	}
	req.Header.Set("Accept", "application/hal+json")
	req.Header.Set("Accept-Version", "3.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return models.PriceRange{}, false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.PriceRange{}, false, fmt.Errorf("price guide returned %s", resp.Status)
	}

	var body priceGuideResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return models.PriceRange{}, false, err
	}

	var lows, highs []float64
	for _, pg := range body.PriceGuides {
		if pg.EstimatedValue == nil || !brandsMatch(brand, pg.Make) {
			continue
		}
		lo, errLo := strconv.ParseFloat(pg.EstimatedValue.PriceLow.Amount, 64)
		hi, errHi := strconv.ParseFloat(pg.EstimatedValue.PriceHigh.Amount, 64)
		if errLo != nil || errHi != nil {
			continue
		}
		lows = append(lows, lo)
		highs = append(highs, hi)
	}

	if len(lows) == 0 {
		return models.PriceRange{}, false, nil
	}

	lo := mean(lows)
	hi := mean(highs)
	return models.PriceRange{Lo: &lo, Hi: &hi}, true, nil
}

func mean(vs []float64) float64 {
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}
