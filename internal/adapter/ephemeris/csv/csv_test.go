package csv

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/panchanga-api/internal/adapter/ephemeris"
	"go.ngs.io/panchanga-api/internal/adapter/ephemeris/analytic"
	"go.ngs.io/panchanga-api/internal/domain"
)

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ephemeris.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestOpen_InterpolatesAndWraps(t *testing.T) {
	path := writeFixture(t, `julian_day,body,longitude_deg,latitude_deg,distance_au
# rows may be out of order
2460310.5, Moon, 359.0, 1.0, 0.0025
2460310.0, Moon, 353.0, 1.2, 0.0026
2460311.0, Moon, 5.0, 0.8, 0.0024
2460310.0, Sun, 279.0, 0, 0.9833
2460311.0, Sun, 280.0, 0, 0.9833
`)

	src, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, "csv:ephemeris.csv", src.Name())
	assert.Equal(t, []domain.Body{domain.Sun, domain.Moon}, src.Bodies())

	c, err := src.Position(context.Background(), 2460310.75, domain.Moon)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, c.Longitude, 1e-9)
	assert.InDelta(t, 0.9, c.Latitude, 1e-9)

	sun, err := src.Position(context.Background(), 2460310.25, domain.Sun)
	require.NoError(t, err)
	assert.InDelta(t, 279.25, sun.Longitude, 1e-9)

	_, err = src.Position(context.Background(), 2460312, domain.Sun)
	assert.ErrorIs(t, err, domain.ErrEphemerisUnavailable)

	_, err = src.Position(context.Background(), 2460310.5, domain.Jupiter)
	assert.ErrorIs(t, err, domain.ErrUnknownBody)
}

func TestOpen_HeaderValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{"wrong column count", "julian_day,body,longitude_deg\n", "invalid CSV header"},
		{"wrong column name", "jd,body,longitude_deg,latitude_deg,distance_au\n", "expected column 0 to be julian_day"},
		{"no rows", "julian_day,body,longitude_deg,latitude_deg,distance_au\n", "no ephemeris rows"},
		{"bad body", "julian_day,body,longitude_deg,latitude_deg,distance_au\n1,Pluto,0,0,1\n", "line 2"},
		{"bad number", "julian_day,body,longitude_deg,latitude_deg,distance_au\n1,Sun,x,0,1\n", "invalid longitude_deg"},
		{"single sample", "julian_day,body,longitude_deg,latitude_deg,distance_au\n1,Sun,0,0,1\n", "at least 2 samples"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(writeFixture(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	_, err := Open(filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, domain.ErrEphemerisUnavailable)
}

func TestWriteOpen_RoundTrip(t *testing.T) {
	src := analytic.New()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	table, err := ephemeris.Tabulate(context.Background(), src, start, start.Add(24*time.Hour), 2*time.Hour)
	require.NoError(t, err)
	require.Len(t, table.Times, 13)

	path := filepath.Join(t.TempDir(), "table.csv")
	require.NoError(t, Write(path, table))

	loaded, err := Open(path)
	require.NoError(t, err)
	assert.Len(t, loaded.Bodies(), len(ephemeris.TabulatedBodies))

	jd := table.Times[3]
	want := table.Bodies[domain.Saturn][3]
	got, err := loaded.Position(context.Background(), jd, domain.Saturn)
	require.NoError(t, err)
	assert.InDelta(t, want.Longitude, got.Longitude, 1e-6)
	assert.InDelta(t, want.Distance, got.Distance, 1e-8)
}
