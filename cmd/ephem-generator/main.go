// Command ephem-generator tabulates the analytic ephemeris into a NetCDF or
// CSV table that the server can load with EPHEMERIS_SOURCE=netcdf or csv.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"go.ngs.io/panchanga-api/internal/adapter/ephemeris"
	"go.ngs.io/panchanga-api/internal/adapter/ephemeris/analytic"
	"go.ngs.io/panchanga-api/internal/adapter/ephemeris/csv"
	"go.ngs.io/panchanga-api/internal/adapter/ephemeris/netcdf"
	"go.ngs.io/panchanga-api/internal/logging"
)

const generatorName = "ephem-generator/0.1.0"

// options are the generator's inputs.
type options struct {
	Format   string
	Start    time.Time
	End      time.Time
	Step     time.Duration
	Out      string
	Ayanamsa string
	NodeMode string
}

func main() {
	// Command line flags
	format := flag.String("format", "netcdf", "Output format: netcdf or csv")
	startStr := flag.String("start", "", "First sample, RFC3339 or YYYY-MM-DD (required)")
	endStr := flag.String("end", "", "Last sample, RFC3339 or YYYY-MM-DD (required)")
	step := flag.Duration("step", 6*time.Hour, "Sample interval")
	out := flag.String("out", "./data/ephemeris.nc", "Output file")
	ayanamsa := flag.String("ayanamsa", string(analytic.Lahiri), "Ayanamsa: lahiri, fagan_bradley or raman")
	node := flag.String("node", string(analytic.TrueNode), "Lunar node: true or mean")
	flag.Parse()

	log, err := logging.New("info", "console")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	start, err := parseTime(*startStr)
	if err != nil {
		log.Fatal("invalid -start", zap.Error(err))
	}
	end, err := parseTime(*endStr)
	if err != nil {
		log.Fatal("invalid -end", zap.Error(err))
	}

	opts := options{
		Format:   *format,
		Start:    start,
		End:      end,
		Step:     *step,
		Out:      *out,
		Ayanamsa: *ayanamsa,
		NodeMode: *node,
	}
	table, err := generate(context.Background(), opts)
	if err != nil {
		log.Fatal("generation failed", zap.Error(err))
	}

	log.Info("ephemeris table written",
		zap.String("file", opts.Out),
		zap.String("format", opts.Format),
		zap.Int("samples", len(table.Times)),
		zap.Int("bodies", len(table.Bodies)))
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("value is required")
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is neither YYYY-MM-DD nor RFC3339", s)
	}
	return t.UTC(), nil
}

// generate tabulates the analytic source and writes the table.
func generate(ctx context.Context, opts options) (*ephemeris.Table, error) {
	ayanamsa, err := analytic.ParseAyanamsa(opts.Ayanamsa)
	if err != nil {
		return nil, err
	}
	node, err := analytic.ParseNodeMode(opts.NodeMode)
	if err != nil {
		return nil, err
	}

	var write func(string, *ephemeris.Table) error
	switch opts.Format {
	case "netcdf":
		write = netcdf.Write
	case "csv":
		write = csv.Write
	default:
		return nil, fmt.Errorf("unknown format %q (use netcdf or csv)", opts.Format)
	}

	src := analytic.New(analytic.WithAyanamsa(ayanamsa), analytic.WithNodeMode(node))
	table, err := ephemeris.Tabulate(ctx, src, opts.Start, opts.End, opts.Step)
	if err != nil {
		return nil, err
	}
	table.Attrs["ayanamsa"] = string(ayanamsa)
	table.Attrs["node_mode"] = string(node)
	table.Attrs["generator"] = generatorName

	// Create output directory
	if dir := filepath.Dir(opts.Out); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := write(opts.Out, table); err != nil {
		return nil, err
	}
	return table, nil
}
