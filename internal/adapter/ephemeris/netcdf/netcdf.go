// Package netcdf reads and writes tabulated ephemerides stored as NetCDF.
//
// A file has one "time" dimension and a "time" variable holding Julian Days
// (UTC). Each tabulated body has three 1-D variables named
// "<body>_longitude", "<body>_latitude" and "<body>_distance", with the body
// name in lower case. Global attributes describe how the table was made.
package netcdf

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fhs/go-netcdf/netcdf"

	"go.ngs.io/panchanga-api/internal/adapter/ephemeris"
	"go.ngs.io/panchanga-api/internal/domain"
)

// TimeVarName is the name of the time dimension and coordinate variable.
const TimeVarName = "time"

// VarName returns the variable name for one coordinate of a body.
func VarName(body domain.Body, quantity string) string {
	return strings.ToLower(body.String()) + "_" + quantity
}

// Source serves positions from a NetCDF table. Body series are read on
// first use and cached.
type Source struct {
	path  string
	times []float64
	attrs map[string]string
	cache map[domain.Body]*ephemeris.BodySeries // Cache loaded series.
	mu    sync.RWMutex                          // Protect cache.
}

// Open reads the time axis and global attributes of a table.
func Open(path string) (*Source, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: ephemeris file: %w", domain.ErrEphemerisUnavailable, err)
	}

	nc, err := netcdf.OpenFile(path, netcdf.NOWRITE)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open NetCDF file: %w", domain.ErrEphemerisUnavailable, err)
	}
	defer func() { _ = nc.Close() }()

	v, err := nc.Var(TimeVarName)
	if err != nil {
		return nil, fmt.Errorf("time variable not found in %s: %w", path, err)
	}
	times, err := readFloat64Var(v)
	if err != nil {
		return nil, fmt.Errorf("failed to read time axis: %w", err)
	}
	if len(times) < 2 {
		return nil, fmt.Errorf("time axis of %s has %d samples, need at least 2", path, len(times))
	}
	if !sort.Float64sAreSorted(times) {
		return nil, fmt.Errorf("time axis of %s is not increasing", path)
	}

	attrs := make(map[string]string)
	for _, name := range []string{"source", "ayanamsa", "node_mode", "generator"} {
		if s, ok := readTextAttr(nc.Attr(name)); ok {
			attrs[name] = s
		}
	}

	return &Source{
		path:  path,
		times: times,
		attrs: attrs,
		cache: make(map[domain.Body]*ephemeris.BodySeries),
	}, nil
}

// Name implements ephemeris.Source.
func (s *Source) Name() string {
	return "netcdf:" + filepath.Base(s.path)
}

// Attrs returns the table's global attributes.
func (s *Source) Attrs() map[string]string {
	out := make(map[string]string, len(s.attrs))
	for k, v := range s.attrs {
		out[k] = v
	}
	return out
}

// Span returns the first and last tabulated Julian Days.
func (s *Source) Span() (float64, float64) {
	return s.times[0], s.times[len(s.times)-1]
}

// Position implements ephemeris.Source.
func (s *Source) Position(ctx context.Context, jd float64, body domain.Body) (ephemeris.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return ephemeris.Coordinates{}, err
	}
	series, err := s.loadBody(body)
	if err != nil {
		return ephemeris.Coordinates{}, err
	}
	return series.At(jd)
}

// loadBody loads the three coordinate series of a body.
func (s *Source) loadBody(body domain.Body) (*ephemeris.BodySeries, error) {
	// Check cache first.
	s.mu.RLock()
	if series, ok := s.cache[body]; ok {
		s.mu.RUnlock()
		return series, nil
	}
	s.mu.RUnlock()

	nc, err := netcdf.OpenFile(s.path, netcdf.NOWRITE)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open NetCDF file: %w", domain.ErrEphemerisUnavailable, err)
	}
	defer func() { _ = nc.Close() }()

	columns := make(map[string][]float64, 3)
	fills := make(map[string]float64, 3)
	for _, q := range []string{"longitude", "latitude", "distance"} {
		name := VarName(body, q)
		v, err := nc.Var(name)
		if err != nil {
			return nil, fmt.Errorf("%w: variable %s not found for %s", domain.ErrUnknownBody, name, body)
		}
		data, err := readFloat64Var(v)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		if len(data) != len(s.times) {
			return nil, fmt.Errorf("%s has %d samples, time axis has %d", name, len(data), len(s.times))
		}
		columns[q] = data
		if fv, ok := getFillValue(v); ok {
			fills[q] = fv
		}
	}

	// Drop samples where any coordinate is missing.
	times := make([]float64, 0, len(s.times))
	coords := make([]ephemeris.Coordinates, 0, len(s.times))
	for i, jd := range s.times {
		c := ephemeris.Coordinates{
			Longitude: columns["longitude"][i],
			Latitude:  columns["latitude"][i],
			Distance:  columns["distance"][i],
		}
		if isMissing(c.Longitude, fills, "longitude") || isMissing(c.Latitude, fills, "latitude") ||
			isMissing(c.Distance, fills, "distance") {
			continue
		}
		times = append(times, jd)
		coords = append(coords, c)
	}

	series, err := ephemeris.NewBodySeries(times, coords)
	if err != nil {
		return nil, fmt.Errorf("invalid series for %s: %w", body, err)
	}

	// Cache the series.
	s.mu.Lock()
	s.cache[body] = series
	s.mu.Unlock()

	return series, nil
}

func isMissing(v float64, fills map[string]float64, q string) bool {
	if math.IsNaN(v) {
		return true
	}
	fv, ok := fills[q]
	return ok && v == fv
}

// getFillValue returns the _FillValue or missing_value attribute if present as float64.
func getFillValue(v netcdf.Var) (float64, bool) {
	for _, name := range []string{"_FillValue", "missing_value"} {
		a := v.Attr(name)
		if n, err := a.Len(); err != nil || n == 0 {
			continue
		}
		buf64 := make([]float64, 1)
		if err := a.ReadFloat64s(buf64); err == nil {
			return buf64[0], true
		}
		buf32 := make([]float32, 1)
		if err := a.ReadFloat32s(buf32); err == nil {
			return float64(buf32[0]), true
		}
	}
	return 0, false
}

// readTextAttr reads a text attribute.
func readTextAttr(a netcdf.Attr) (string, bool) {
	n, err := a.Len()
	if err != nil || n == 0 {
		return "", false
	}
	buf := make([]byte, n)
	if err := a.ReadBytes(buf); err != nil {
		return "", false
	}
	return strings.TrimRight(string(buf), "\x00"), true
}

// readFloat64Var reads a 1D variable of any numeric type as float64.
func readFloat64Var(v netcdf.Var) ([]float64, error) {
	dims, err := v.Dims()
	if err != nil {
		return nil, fmt.Errorf("failed to get dimensions: %w", err)
	}
	if len(dims) != 1 {
		return nil, fmt.Errorf("expected 1D variable, got %dD", len(dims))
	}

	length, err := dims[0].Len()
	if err != nil {
		return nil, err
	}

	t, err := v.Type()
	if err != nil {
		return nil, fmt.Errorf("failed to get var type: %w", err)
	}
	switch t {
	case netcdf.DOUBLE:
		data := make([]float64, length)
		if err := v.ReadFloat64s(data); err != nil {
			return nil, err
		}
		return data, nil
	case netcdf.FLOAT:
		tmp := make([]float32, length)
		if err := v.ReadFloat32s(tmp); err != nil {
			return nil, err
		}
		out := make([]float64, length)
		for i, val := range tmp {
			out[i] = float64(val)
		}
		return out, nil
	case netcdf.INT:
		tmp := make([]int32, length)
		if err := v.ReadInt32s(tmp); err != nil {
			return nil, err
		}
		out := make([]float64, length)
		for i, val := range tmp {
			out[i] = float64(val)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported var type: %v", t)
	}
}
