package netcdf

import (
	"fmt"
	"sort"

	"github.com/fhs/go-netcdf/netcdf"

	"go.ngs.io/panchanga-api/internal/adapter/ephemeris"
)

// Write stores a table as a NetCDF-4 file, replacing any existing file.
func Write(path string, table *ephemeris.Table) error {
	if table == nil || len(table.Times) == 0 {
		return fmt.Errorf("empty ephemeris table")
	}

	ds, err := netcdf.CreateFile(path, netcdf.CLOBBER|netcdf.NETCDF4)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() { _ = ds.Close() }()

	timeDim, err := ds.AddDim(TimeVarName, uint64(len(table.Times)))
	if err != nil {
		return fmt.Errorf("failed to add time dimension: %w", err)
	}
	dims := []netcdf.Dim{timeDim}

	timeVar, err := ds.AddVar(TimeVarName, netcdf.DOUBLE, dims)
	if err != nil {
		return fmt.Errorf("failed to add time variable: %w", err)
	}
	if err := timeVar.Attr("units").WriteBytes([]byte("julian_day_utc")); err != nil {
		return fmt.Errorf("failed to write time units: %w", err)
	}

	keys := make([]string, 0, len(table.Attrs))
	for k := range table.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := ds.Attr(k).WriteBytes([]byte(table.Attrs[k])); err != nil {
			return fmt.Errorf("failed to write attribute %s: %w", k, err)
		}
	}

	type column struct {
		v    netcdf.Var
		data []float64
	}
	var columns []column

	for _, body := range ephemeris.TabulatedBodies {
		coords, ok := table.Bodies[body]
		if !ok {
			continue
		}
		if len(coords) != len(table.Times) {
			return fmt.Errorf("%s has %d samples, table has %d times", body, len(coords), len(table.Times))
		}

		lon := make([]float64, len(coords))
		lat := make([]float64, len(coords))
		dist := make([]float64, len(coords))
		for i, c := range coords {
			lon[i], lat[i], dist[i] = c.Longitude, c.Latitude, c.Distance
		}

		for _, q := range []struct {
			name, units string
			data        []float64
		}{
			{"longitude", "degrees", lon},
			{"latitude", "degrees", lat},
			{"distance", "au", dist},
		} {
			v, err := ds.AddVar(VarName(body, q.name), netcdf.DOUBLE, dims)
			if err != nil {
				return fmt.Errorf("failed to add %s: %w", VarName(body, q.name), err)
			}
			if err := v.Attr("units").WriteBytes([]byte(q.units)); err != nil {
				return fmt.Errorf("failed to write units for %s: %w", VarName(body, q.name), err)
			}
			columns = append(columns, column{v: v, data: q.data})
		}
	}

	if err := ds.EndDef(); err != nil {
		return fmt.Errorf("failed to end define mode: %w", err)
	}

	if err := timeVar.WriteFloat64s(table.Times); err != nil {
		return fmt.Errorf("failed to write time axis: %w", err)
	}
	for _, c := range columns {
		if err := c.v.WriteFloat64s(c.data); err != nil {
			return fmt.Errorf("failed to write variable: %w", err)
		}
	}
	return nil
}
