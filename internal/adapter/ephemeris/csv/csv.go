// Package csv reads and writes tabulated ephemerides as CSV.
//
// Files have the header "julian_day,body,longitude_deg,latitude_deg,distance_au"
// and one row per body per sample time.
package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.ngs.io/panchanga-api/internal/adapter/ephemeris"
	"go.ngs.io/panchanga-api/internal/domain"
)

// Header is the required column layout.
var Header = []string{"julian_day", "body", "longitude_deg", "latitude_deg", "distance_au"}

// Source serves positions from a CSV table loaded into memory.
type Source struct {
	path   string
	series map[domain.Body]*ephemeris.BodySeries
}

// Open reads and validates a CSV table.
func Open(path string) (*Source, error) {
	//nolint:gosec // G304: path comes from configuration.
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open CSV file: %w", domain.ErrEphemerisUnavailable, err)
	}
	defer func() { _ = file.Close() }()

	table, err := read(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	s := &Source{path: path, series: make(map[domain.Body]*ephemeris.BodySeries, len(table.bodies))}
	for body, coords := range table.bodies {
		bs, err := ephemeris.NewBodySeries(table.times[body], coords)
		if err != nil {
			return nil, fmt.Errorf("invalid series for %s: %w", body, err)
		}
		s.series[body] = bs
	}
	return s, nil
}

// Name implements ephemeris.Source.
func (s *Source) Name() string { return "csv:" + filepath.Base(s.path) }

// Bodies returns the bodies present in the table.
func (s *Source) Bodies() []domain.Body {
	out := make([]domain.Body, 0, len(s.series))
	for b := range s.series {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Position implements ephemeris.Source.
func (s *Source) Position(ctx context.Context, jd float64, body domain.Body) (ephemeris.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return ephemeris.Coordinates{}, err
	}
	series, ok := s.series[body]
	if !ok {
		return ephemeris.Coordinates{}, fmt.Errorf("%w: %s not tabulated in %s", domain.ErrUnknownBody, body, s.Name())
	}
	return series.At(jd)
}

// parsedTable keeps per-body time axes, which may differ between bodies.
type parsedTable struct {
	bodies map[domain.Body][]ephemeris.Coordinates
	times  map[domain.Body][]float64
}

type row struct {
	jd float64
	c  ephemeris.Coordinates
}

// read parses a CSV table. Rows may come in any order; they are sorted by time per body.
func read(r io.Reader) (*parsedTable, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	// Read header.
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	// Validate header.
	if len(header) != len(Header) {
		return nil, fmt.Errorf("invalid CSV header: expected %v, got %v", Header, header)
	}
	for i, h := range header {
		if strings.TrimSpace(h) != Header[i] {
			return nil, fmt.Errorf("invalid CSV header: expected column %d to be %s, got %s", i, Header[i], h)
		}
	}

	rows := make(map[domain.Body][]row)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}

		body, err := domain.ParseBody(record[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if body == domain.Ketu {
			// Ketu is always derived from Rahu.
			continue
		}

		var vals [4]float64
		for i, idx := range []int{0, 2, 3, 4} {
			v, err := strconv.ParseFloat(strings.TrimSpace(record[idx]), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid %s: %w", line, Header[idx], err)
			}
			vals[i] = v
		}
		rows[body] = append(rows[body], row{
			jd: vals[0],
			c:  ephemeris.Coordinates{Longitude: vals[1], Latitude: vals[2], Distance: vals[3]},
		})
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no ephemeris rows found")
	}

	t := &parsedTable{
		bodies: make(map[domain.Body][]ephemeris.Coordinates, len(rows)),
		times:  make(map[domain.Body][]float64, len(rows)),
	}
	for body, rs := range rows {
		sort.SliceStable(rs, func(i, j int) bool { return rs[i].jd < rs[j].jd })
		for _, r := range rs {
			t.times[body] = append(t.times[body], r.jd)
			t.bodies[body] = append(t.bodies[body], r.c)
		}
	}
	return t, nil
}

// Write stores a table as CSV.
func Write(path string, table *ephemeris.Table) error {
	if table == nil || len(table.Times) == 0 {
		return fmt.Errorf("empty ephemeris table")
	}

	//nolint:gosec // G304: path comes from the command line.
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	w := csv.NewWriter(file)
	if err := w.Write(Header); err != nil {
		_ = file.Close()
		return err
	}
	for i, jd := range table.Times {
		for _, body := range ephemeris.TabulatedBodies {
			coords, ok := table.Bodies[body]
			if !ok {
				continue
			}
			if len(coords) != len(table.Times) {
				_ = file.Close()
				return fmt.Errorf("%s has %d samples, table has %d times", body, len(coords), len(table.Times))
			}
			c := coords[i]
			record := []string{
				strconv.FormatFloat(jd, 'f', 8, 64),
				body.String(),
				strconv.FormatFloat(c.Longitude, 'f', 8, 64),
				strconv.FormatFloat(c.Latitude, 'f', 8, 64),
				strconv.FormatFloat(c.Distance, 'f', 10, 64),
			}
			if err := w.Write(record); err != nil {
				_ = file.Close()
				return err
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return file.Close()
}
