package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"shiftwise/internal/config"
	"shiftwise/internal/metrics"
	"shiftwise/pkg/memcache"
	"shiftwise/pkg/utils"
)

const leedsResponse = `{
	"status": "OK",
	"results": [{
		"address_components": [
			{"long_name": "1", "types": ["street_number"]},
			{"long_name": "Park Row", "types": ["route"]},
			{"long_name": "Leeds", "types": ["postal_town"]},
			{"long_name": "West Yorkshire", "types": ["administrative_area_level_2", "political"]},
			{"long_name": "England", "types": ["administrative_area_level_1", "political"]},
			{"long_name": "United Kingdom", "types": ["country", "political"]},
			{"long_name": "LS1 5HN", "types": ["postal_code"]}
		],
		"geometry": {"location": {"lat": 53.7986, "lng": -1.5451}}
	}]
}`

func newTestGeocoder(t *testing.T, body string, status int) (*GoogleGeocoder, *int32, *metrics.Metrics) {
	t.Helper()
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, "maps-key", r.URL.Query().Get("key"))
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)

	m := metrics.New()
	g := NewGoogleGeocoder(config.Geocoding{APIKey: "maps-key"}, memcache.NewInMemoryStore(), discardLogger(), m)
	g.Endpoint = server.URL
	return g, &hits, m
}

func TestGeocodeParsesAndCaches(t *testing.T) {
	g, hits, m := newTestGeocoder(t, leedsResponse, http.StatusOK)
	ctx := context.Background()

	res, err := g.Geocode(ctx, "1 Park Row,  Leeds")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.InDelta(t, 53.7986, res.Latitude, 1e-6)
	assert.InDelta(t, -1.5451, res.Longitude, 1e-6)
	assert.Equal(t, "1", res.StreetNumber)
	assert.Equal(t, "Park Row", res.Route)
	assert.Equal(t, "Leeds", res.City)
	assert.Equal(t, "West Yorkshire", res.County)
	assert.Equal(t, "England", res.State)
	assert.Equal(t, "United Kingdom", res.Country)
	assert.Equal(t, "LS1 5HN", res.Postcode)

	again, err := g.Geocode(ctx, "1 park row, leeds")
	require.NoError(t, err)
	assert.Equal(t, res, again)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))

	// One provider series and one cache series.
	series, err := testutil.GatherAndCount(m.Registry(), "shiftwise_geocode_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, series)
}

func TestGeocodeZeroResults(t *testing.T) {
	g, _, _ := newTestGeocoder(t, `{"status": "ZERO_RESULTS", "results": []}`, http.StatusOK)

	res, err := g.Geocode(context.Background(), "Nowhere Lane")
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestGeocodeProviderErrors(t *testing.T) {
	g, _, _ := newTestGeocoder(t, `{"status": "REQUEST_DENIED", "error_message": "bad key"}`, http.StatusOK)
	_, err := g.Geocode(context.Background(), "1 Park Row")
	assert.ErrorIs(t, err, utils.ErrGeocodingProvider)

	g, _, _ = newTestGeocoder(t, `oops`, http.StatusBadGateway)
	_, err = g.Geocode(context.Background(), "1 Park Row")
	assert.ErrorIs(t, err, utils.ErrGeocodingProvider)
}

func TestGeocodeWithoutKeyOrAddress(t *testing.T) {
	g, hits, _ := newTestGeocoder(t, leedsResponse, http.StatusOK)

	res, err := g.Geocode(context.Background(), "   ")
	require.NoError(t, err)
	assert.Nil(t, res)

	g.APIKey = ""
	res, err = g.Geocode(context.Background(), "1 Park Row")
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Zero(t, atomic.LoadInt32(hits))
}

func TestGeocodeSharedLookupIgnoresCallerCancellation(t *testing.T) {
	g, hits, _ := newTestGeocoder(t, leedsResponse, http.StatusOK)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := g.Geocode(ctx, "1 Park Row, Leeds")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "Leeds", res.City)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
}
