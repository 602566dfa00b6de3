package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/panchanga-api/internal/adapter/ephemeris/csv"
	"go.ngs.io/panchanga-api/internal/adapter/ephemeris/netcdf"
	"go.ngs.io/panchanga-api/internal/domain"
)

var start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestGenerate_NetCDF(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "ephemeris.nc")
	table, err := generate(context.Background(), options{
		Format:   "netcdf",
		Start:    start,
		End:      start.Add(24 * time.Hour),
		Step:     6 * time.Hour,
		Out:      out,
		Ayanamsa: "raman",
		NodeMode: "mean",
	})
	require.NoError(t, err)
	assert.Len(t, table.Times, 5)

	src, err := netcdf.Open(out)
	require.NoError(t, err)
	attrs := src.Attrs()
	assert.Equal(t, "raman", attrs["ayanamsa"])
	assert.Equal(t, "mean", attrs["node_mode"])
	assert.Equal(t, generatorName, attrs["generator"])
}

func TestGenerate_CSV(t *testing.T) {
	out := filepath.Join(t.TempDir(), "ephemeris.csv")
	_, err := generate(context.Background(), options{
		Format:   "csv",
		Start:    start,
		End:      start.Add(12 * time.Hour),
		Step:     time.Hour,
		Out:      out,
		Ayanamsa: "lahiri",
		NodeMode: "true",
	})
	require.NoError(t, err)

	src, err := csv.Open(out)
	require.NoError(t, err)
	assert.Contains(t, src.Bodies(), domain.Moon)
}

func TestGenerate_Errors(t *testing.T) {
	base := options{
		Format:   "netcdf",
		Start:    start,
		End:      start.Add(time.Hour),
		Step:     time.Hour,
		Out:      filepath.Join(t.TempDir(), "x.nc"),
		Ayanamsa: "lahiri",
		NodeMode: "true",
	}

	tests := []struct {
		name   string
		modify func(*options)
		errMsg string
	}{
		{"unknown format", func(o *options) { o.Format = "hdf5" }, "unknown format"},
		{"bad ayanamsa", func(o *options) { o.Ayanamsa = "kp" }, "ayanamsa"},
		{"bad node", func(o *options) { o.NodeMode = "osculating" }, "node"},
		{"end before start", func(o *options) { o.End = start.Add(-time.Hour) }, "must be after start"},
		{"zero step", func(o *options) { o.Step = 0 }, "step must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := base
			tt.modify(&opts)
			_, err := generate(context.Background(), opts)
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}

func TestParseTime(t *testing.T) {
	got, err := parseTime("2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), got)

	got, err = parseTime("2024-03-01T05:30:00+05:30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), got)

	_, err = parseTime("")
	assert.Error(t, err)
	_, err = parseTime("March 1")
	assert.Error(t, err)
}
