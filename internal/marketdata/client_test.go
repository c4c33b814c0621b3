// internal/marketdata/client_test.go
package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fretwatch/internal/common/config"
	"fretwatch/internal/common/logger"
)

func intPtr(v int) *int { return &v }

func newTestClient(t *testing.T, baseURL string) *Client {
	return NewClient(config.MarketDataConfig{
		BaseURL:   baseURL,
		TimeoutMS: 2000,
	}, logger.NewTestLogger(t))
}

func TestBuildQueries(t *testing.T) {
	t.Run("most specific first", func(t *testing.T) {
		queries := buildQueries("Gibson", "ES-335", intPtr(1964))
		require.NotEmpty(t, queries)
		assert.Equal(t, "Gibson ES-335 1964", queries[0])
		assert.Contains(t, queries, "Gibson ES-335")
	})

	t.Run("multi-word brand falls back to last word", func(t *testing.T) {
		queries := buildQueries("C. F. Martin", "D-28", nil)
		assert.Contains(t, queries, "C. F. Martin D-28")
		assert.Contains(t, queries, "Martin D-28")
	})

	t.Run("long model falls back to two words", func(t *testing.T) {
		queries := buildQueries("Gretsch", "6120 Chet Atkins Hollow Body", nil)
		assert.Contains(t, queries, "Gretsch 6120 Chet Atkins Hollow Body")
		assert.Contains(t, queries, "Gretsch 6120 Chet")
	})

	t.Run("leading punctuation stripped", func(t *testing.T) {
		queries := buildQueries("Gretsch", "/Duo Jet", nil)
		assert.Equal(t, "Gretsch Duo Jet", queries[0])
	})
}

func TestBrandsMatch(t *testing.T) {
	assert.True(t, brandsMatch("Gibson", "Gibson Custom"))
	assert.True(t, brandsMatch("C. f. martin", "c. f. martin"))
	assert.False(t, brandsMatch("Gibson", "Fender"))
	assert.False(t, brandsMatch("", "Gibson"))
}

func TestLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/priceguide", r.URL.Path)
		assert.Equal(t, "3.0", r.Header.Get("Accept-Version"))

		if r.URL.Query().Get("query") != "Gibson ES-335 1964" {
			w.Write([]byte(`{"price_guides": []}`))
			return
		}
		w.Write([]byte(`{"price_guides": [
			{"make": "Gibson", "estimated_value": {"price_low": {"amount": "8000"}, "price_high": {"amount": "12000"}}},
			{"make": "Gibson Custom", "estimated_value": {"price_low": {"amount": "9000"}, "price_high": {"amount": "14000"}}},
			{"make": "Fender", "estimated_value": {"price_low": {"amount": "100"}, "price_high": {"amount": "200"}}}
		]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	rng, err := c.Lookup(context.Background(), "Gibson", "ES-335", intPtr(1964))
	require.NoError(t, err)

	require.True(t, rng.Resolved())
	// Fender row filtered by brand match; remaining two averaged.
	assert.InDelta(t, 8500.0, *rng.Lo, 1e-9)
	assert.InDelta(t, 13000.0, *rng.Hi, 1e-9)
}

func TestLookup_FallbackQuery(t *testing.T) {
	var queries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("query")
		queries = append(queries, q)
		if q == "Martin D-28" {
			w.Write([]byte(`{"price_guides": [
				{"make": "Martin", "estimated_value": {"price_low": {"amount": "3000"}, "price_high": {"amount": "5000"}}}
			]}`))
			return
		}
		w.Write([]byte(`{"price_guides": []}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	rng, err := c.Lookup(context.Background(), "C. F. Martin", "D-28", nil)
	require.NoError(t, err)

	require.True(t, rng.Resolved())
	assert.Equal(t, []string{"C. F. Martin D-28", "Martin D-28"}, queries)
}

func TestLookup_NoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"price_guides": []}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	rng, err := c.Lookup(context.Background(), "Harmony", "Rocket", nil)
	require.NoError(t, err)
	assert.False(t, rng.Resolved())
}

func TestLookup_AllQueriesFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Lookup(context.Background(), "Gibson", "SG", nil)
	assert.Error(t, err)
}
