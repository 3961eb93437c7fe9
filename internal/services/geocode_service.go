package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
	"shiftwise/internal/config"
	"shiftwise/internal/metrics"
	"shiftwise/pkg/memcache"
	"shiftwise/pkg/utils"
)

const googleGeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"

// GeocodeResult is a resolved address. Empty components were absent from
// the provider response.
type GeocodeResult struct {
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	StreetNumber string  `json:"street_number,omitempty"`
	Route        string  `json:"route,omitempty"`
	City         string  `json:"city,omitempty"`
	County       string  `json:"county,omitempty"`
	State        string  `json:"state,omitempty"`
	Country      string  `json:"country,omitempty"`
	Postcode     string  `json:"postcode,omitempty"`
}

type GeocodingService interface {
	// Geocode returns nil without error when the provider found nothing.
	Geocode(ctx context.Context, address string) (*GeocodeResult, error)
}

type GoogleGeocoder struct {
	HTTP     *http.Client
	APIKey   string
	Endpoint string
	Cache    memcache.Store
	TTL      time.Duration

	group   singleflight.Group
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewGoogleGeocoder(cfg config.Geocoding, cache memcache.Store, logger *slog.Logger, m *metrics.Metrics) *GoogleGeocoder {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &GoogleGeocoder{
		HTTP:     &http.Client{Timeout: 10 * time.Second},
		APIKey:   cfg.APIKey,
		Endpoint: googleGeocodeURL,
		Cache:    cache,
		TTL:      ttl,
		logger:   logger.With(slog.String("component", "geocoder")),
		metrics:  m,
	}
}

func geocodeCacheKey(address string) string {
	return "geocode_" + strings.ToLower(strings.Join(strings.Fields(address), " "))
}

func (g *GoogleGeocoder) Geocode(ctx context.Context, address string) (*GeocodeResult, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, nil
	}
	if g.APIKey == "" {
		g.metrics.GeocodeRequest("disabled")
		return nil, nil
	}

	key := geocodeCacheKey(address)
	if raw, err := g.Cache.Get(ctx, key); err == nil {
		var cached GeocodeResult
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			g.metrics.GeocodeRequest("cache")
			return &cached, nil
		}
	} else if !errors.Is(err, memcache.ErrMiss) {
		g.logger.WarnContext(ctx, "geocode cache read", slog.Any("error", err))
	}

	// Callers share one lookup, so it must outlive any single caller's
	// cancellation. The client timeout bounds it.
	v, err, _ := g.group.Do(key, func() (interface{}, error) {
		return g.lookup(context.WithoutCancel(ctx), address)
	})
	if err != nil {
		g.metrics.GeocodeRequest("error")
		return nil, err
	}
	g.metrics.GeocodeRequest("provider")

	res, _ := v.(*GeocodeResult)
	if res == nil {
		return nil, nil
	}
	if raw, err := json.Marshal(res); err == nil {
		if err := g.Cache.Set(ctx, key, string(raw), g.TTL); err != nil {
			g.logger.WarnContext(ctx, "geocode cache write", slog.Any("error", err))
		}
	}
	return res, nil
}

type googleGeocodeResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		AddressComponents []struct {
			LongName string   `json:"long_name"`
			Types    []string `json:"types"`
		} `json:"address_components"`
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

func (g *GoogleGeocoder) lookup(ctx context.Context, address string) (*GeocodeResult, error) {
	q := url.Values{}
	q.Set("address", address)
	q.Set("key", g.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.Endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrGeocodingProvider, err)
	}
	resp, err := g.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrGeocodingProvider, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("%w: bad status %s", utils.ErrGeocodingProvider, resp.Status)
	}

	var payload googleGeocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", utils.ErrGeocodingProvider, err)
	}

	switch payload.Status {
	case "OK":
	case "ZERO_RESULTS":
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: status %s %s", utils.ErrGeocodingProvider, payload.Status, payload.ErrorMessage)
	}
	if len(payload.Results) == 0 {
		return nil, nil
	}

	first := payload.Results[0]
	res := &GeocodeResult{
		Latitude:  first.Geometry.Location.Lat,
		Longitude: first.Geometry.Location.Lng,
	}
	for _, c := range first.AddressComponents {
		for _, t := range c.Types {
			switch t {
			case "street_number":
				res.StreetNumber = c.LongName
			case "route":
				res.Route = c.LongName
			case "locality", "postal_town":
				if res.City == "" {
					res.City = c.LongName
				}
			case "administrative_area_level_2":
				res.County = c.LongName
			case "administrative_area_level_1":
				res.State = c.LongName
			case "country":
				res.Country = c.LongName
			case "postal_code":
				res.Postcode = c.LongName
			}
		}
	}
	return res, nil
}
