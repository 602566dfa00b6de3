// Package app builds a ready Service from configuration. The server and
// the CLI share it.
package app

import (
	"fmt"

	"go.uber.org/zap"

	"go.ngs.io/panchanga-api/internal/adapter/ephemeris"
	"go.ngs.io/panchanga-api/internal/adapter/ephemeris/analytic"
	"go.ngs.io/panchanga-api/internal/adapter/ephemeris/csv"
	"go.ngs.io/panchanga-api/internal/adapter/ephemeris/netcdf"
	"go.ngs.io/panchanga-api/internal/adapter/store/rules"
	"go.ngs.io/panchanga-api/internal/config"
	"go.ngs.io/panchanga-api/internal/domain"
	"go.ngs.io/panchanga-api/internal/logging"
	"go.ngs.io/panchanga-api/internal/observability"
	"go.ngs.io/panchanga-api/internal/usecase"
)

// OpenSource opens the configured ephemeris source.
func OpenSource(cfg config.EphemerisConfig, log *zap.Logger) (ephemeris.Source, error) {
	log = logging.OrNop(log)

	switch cfg.Source {
	case config.SourceAnalytic, "":
		ayanamsa, err := analytic.ParseAyanamsa(cfg.Ayanamsa)
		if err != nil {
			return nil, err
		}
		node, err := analytic.ParseNodeMode(cfg.NodeMode)
		if err != nil {
			return nil, err
		}
		return analytic.New(analytic.WithAyanamsa(ayanamsa), analytic.WithNodeMode(node)), nil

	case config.SourceNetCDF:
		src, err := netcdf.Open(cfg.Path)
		if err != nil {
			return nil, err
		}
		attrs := src.Attrs()
		if a, ok := attrs["ayanamsa"]; ok && cfg.Ayanamsa != "" && a != cfg.Ayanamsa {
			log.Warn("ephemeris table ayanamsa differs from configuration",
				zap.String("table", a), zap.String("config", cfg.Ayanamsa))
		}
		first, last := src.Span()
		log.Info("NetCDF ephemeris loaded",
			zap.String("path", cfg.Path),
			zap.Time("first", domain.InstantFromJulianDay(first).Time()),
			zap.Time("last", domain.InstantFromJulianDay(last).Time()))
		return src, nil

	case config.SourceCSV:
		src, err := csv.Open(cfg.Path)
		if err != nil {
			return nil, err
		}
		log.Info("CSV ephemeris loaded", zap.String("path", cfg.Path), zap.Int("bodies", len(src.Bodies())))
		return src, nil

	default:
		return nil, fmt.Errorf("unsupported ephemeris source %q", cfg.Source)
	}
}

// NewService opens the ephemeris and rule table and returns the Service.
func NewService(cfg *config.Config, log *zap.Logger, metrics *observability.Collector) (*usecase.Service, error) {
	log = logging.OrNop(log)

	src, err := OpenSource(cfg.Ephemeris, log)
	if err != nil {
		return nil, fmt.Errorf("ephemeris: %w", err)
	}
	eph, err := ephemeris.New(src, ephemeris.WithSpeedStep(cfg.SpeedStep()))
	if err != nil {
		return nil, fmt.Errorf("ephemeris: %w", err)
	}

	store := rules.NewStore(cfg.Rules.Path)
	table, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("rules: %w", err)
	}
	log.Info("yoga rules loaded",
		zap.String("path", store.Path()),
		zap.String("version", table.Version()),
		zap.Int("count", table.Len()))

	finder := domain.NewFinder().
		WithStep(cfg.BoundaryStep()).
		WithPrecision(cfg.BoundaryPrecision())
	finder.MaxIterations = cfg.Boundary.MaxIterations

	node, err := analytic.ParseNodeMode(cfg.Ephemeris.NodeMode)
	if err != nil {
		return nil, err
	}
	return usecase.NewService(eph, table,
		usecase.WithLogger(log),
		usecase.WithMetrics(metrics),
		usecase.WithFinder(finder),
		usecase.WithMeanNodes(node == analytic.MeanNode),
	)
}
