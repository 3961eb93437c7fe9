package geocode_fx

import (
	"log/slog"

	"go.uber.org/fx"
	"shiftwise/internal/config"
	"shiftwise/internal/metrics"
	"shiftwise/internal/services"
	mem "shiftwise/pkg/memcache"
)

var Module = fx.Provide(provideGeocoder)

func provideGeocoder(cfg config.Config, cache mem.Store, logger *slog.Logger, m *metrics.Metrics) services.GeocodingService {
	if cfg.Geocoding.APIKey == "" {
		logger.Warn("GEOCODING_API_KEY is empty, addresses will not be geocoded")
	}
	return services.NewGoogleGeocoder(cfg.Geocoding, cache, logger, m)
}
