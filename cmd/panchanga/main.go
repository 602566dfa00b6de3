// Command panchanga computes panchanga values from the command line and
// prints them as JSON.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"go.ngs.io/panchanga-api/internal/adapter/store/rules"
	"go.ngs.io/panchanga-api/internal/app"
	"go.ngs.io/panchanga-api/internal/config"
	"go.ngs.io/panchanga-api/internal/domain"
	"go.ngs.io/panchanga-api/internal/logging"
	"go.ngs.io/panchanga-api/internal/usecase"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

// cli holds flag values and the service built before each subcommand.
type cli struct {
	out io.Writer

	configPath string
	verbose    bool
	timeStr    string
	lat        float64
	lon        float64
	tz         string

	svc *usecase.Service
	log *zap.Logger
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{out: out}

	root := &cobra.Command{
		Use:           "panchanga",
		Short:         "Compute panchanga elements, positions and yogas",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.log != nil {
				_ = c.log.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", os.Getenv("PANCHANGA_CONFIG"), "YAML configuration file")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "Log debug output to stderr")
	flags.StringVar(&c.timeStr, "time", "", "Instant, RFC3339 (default: now)")
	flags.Float64Var(&c.lat, "lat", 0, "Latitude in degrees")
	flags.Float64Var(&c.lon, "lon", 0, "Longitude in degrees")
	flags.StringVar(&c.tz, "tz", "UTC", "IANA time zone for the civil day")

	root.AddCommand(
		c.factsCmd(),
		c.windowsCmd(),
		c.positionsCmd(),
		c.motionCmd(),
		c.stationsCmd(),
		c.yogasCmd(),
		c.rulesCmd(),
		c.navataraCmd(),
	)
	return root
}

// setup loads configuration and builds the service.
func (c *cli) setup() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	level := "warn"
	if c.verbose {
		level = "debug"
	}
	c.log, err = logging.New(level, "console")
	if err != nil {
		return err
	}
	c.svc, err = app.NewService(cfg, c.log, nil)
	return err
}

func (c *cli) print(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *cli) instant() (time.Time, error) {
	if c.timeStr == "" {
		return time.Now().UTC(), nil
	}
	inst, err := domain.ParseInstant(c.timeStr)
	if err != nil {
		return time.Time{}, err
	}
	return inst.Time(), nil
}

func (c *cli) zone() (*time.Location, error) {
	zone, err := time.LoadLocation(c.tz)
	if err != nil {
		return nil, fmt.Errorf("%w: tz %q: %v", usecase.ErrInvalidRequest, c.tz, err)
	}
	return zone, nil
}

func (c *cli) point() (usecase.PointRequest, error) {
	t, err := c.instant()
	if err != nil {
		return usecase.PointRequest{}, err
	}
	zone, err := c.zone()
	if err != nil {
		return usecase.PointRequest{}, err
	}
	return usecase.PointRequest{
		Time:     t,
		Location: domain.Location{Latitude: c.lat, Longitude: c.lon},
		Zone:     zone,
	}, nil
}

// dateOrTime accepts YYYY-MM-DD in zone or RFC3339.
func dateOrTime(name, s string, zone *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("--%s is required", name)
	}
	if d, err := time.ParseInLocation(time.DateOnly, s, zone); err == nil {
		return d, nil
	}
	inst, err := domain.ParseInstant(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: %w", name, err)
	}
	return inst.Time(), nil
}

func (c *cli) factsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "facts",
		Short: "Tithi, nakshatra, yoga, karana and vara at an instant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := c.point()
			if err != nil {
				return err
			}
			resp, err := c.svc.Facts(cmd.Context(), req)
			if err != nil {
				return err
			}
			return c.print(resp)
		},
	}
}

func (c *cli) windowsCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "windows",
		Short: "Element transitions over a local civil day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := c.point()
			if err != nil {
				return err
			}
			if date != "" {
				d, err := time.ParseInLocation(time.DateOnly, date, req.Zone)
				if err != nil {
					return fmt.Errorf("--date %q: expected YYYY-MM-DD", date)
				}
				req.Time = d.Add(12 * time.Hour)
			}
			resp, err := c.svc.DayWindows(cmd.Context(), req)
			if err != nil {
				return err
			}
			return c.print(resp)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Civil date YYYY-MM-DD in --tz (default: date of --time)")
	return cmd
}

func (c *cli) positionsCmd() *cobra.Command {
	var bodies string
	cmd := &cobra.Command{
		Use:   "positions",
		Short: "Sidereal positions of the grahas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := c.instant()
			if err != nil {
				return err
			}
			list, err := domain.ParseBodies(bodies)
			if err != nil {
				return err
			}
			resp, err := c.svc.Positions(cmd.Context(), usecase.PositionsRequest{Time: t, Bodies: list})
			if err != nil {
				return err
			}
			return c.print(resp)
		},
	}
	cmd.Flags().StringVar(&bodies, "bodies", "", "Comma-separated bodies (default: all)")
	return cmd
}

func (c *cli) motionCmd() *cobra.Command {
	var bodies string
	cmd := &cobra.Command{
		Use:   "motion",
		Short: "Motion states of the grahas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := c.instant()
			if err != nil {
				return err
			}
			list, err := domain.ParseBodies(bodies)
			if err != nil {
				return err
			}
			resp, err := c.svc.Motion(cmd.Context(), usecase.MotionRequest{Time: t, Bodies: list})
			if err != nil {
				return err
			}
			return c.print(resp)
		},
	}
	cmd.Flags().StringVar(&bodies, "bodies", "", "Comma-separated bodies (default: all)")
	return cmd
}

func (c *cli) stationsCmd() *cobra.Command {
	var body, from, to string
	cmd := &cobra.Command{
		Use:   "stations",
		Short: "Retrograde and direct stations of a body",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := domain.ParseBody(body)
			if err != nil {
				return err
			}
			zone, err := c.zone()
			if err != nil {
				return err
			}
			f, err := dateOrTime("from", from, zone)
			if err != nil {
				return err
			}
			e, err := dateOrTime("to", to, zone)
			if err != nil {
				return err
			}
			resp, err := c.svc.Stations(cmd.Context(), usecase.StationsRequest{Body: b, From: f, To: e})
			if err != nil {
				return err
			}
			return c.print(resp)
		},
	}
	cmd.Flags().StringVar(&body, "body", "", "Body name (required)")
	cmd.Flags().StringVar(&from, "from", "", "Range start, YYYY-MM-DD or RFC3339 (required)")
	cmd.Flags().StringVar(&to, "to", "", "Range end, YYYY-MM-DD or RFC3339 (required)")
	_ = cmd.MarkFlagRequired("body")
	return cmd
}

func (c *cli) yogasCmd() *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "yogas",
		Short: "Yogas at an instant, or per civil day with --from and --to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if from == "" && to == "" {
				req, err := c.point()
				if err != nil {
					return err
				}
				resp, err := c.svc.Yogas(cmd.Context(), req)
				if err != nil {
					return err
				}
				return c.print(resp)
			}

			zone, err := c.zone()
			if err != nil {
				return err
			}
			f, err := dateOrTime("from", from, zone)
			if err != nil {
				return err
			}
			e, err := dateOrTime("to", to, zone)
			if err != nil {
				return err
			}
			resp, err := c.svc.YogasInRange(cmd.Context(), usecase.RangeRequest{
				From:     f,
				To:       e,
				Location: domain.Location{Latitude: c.lat, Longitude: c.lon},
				Zone:     zone,
			})
			if err != nil {
				return err
			}
			return c.print(resp)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "First civil day, YYYY-MM-DD or RFC3339")
	cmd.Flags().StringVar(&to, "to", "", "Last civil day, YYYY-MM-DD or RFC3339")
	return cmd
}

func (c *cli) rulesCmd() *cobra.Command {
	var export bool
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Print the loaded yoga rule table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !export {
				return c.print(c.svc.Rules())
			}
			doc, err := rules.DefaultDocument()
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(c.out)
			enc.SetIndent(2)
			if err := enc.Encode(doc); err != nil {
				return err
			}
			return enc.Close()
		},
	}
	cmd.Flags().BoolVar(&export, "export", false, "Write the built-in rule table as YAML, a starting point for YOGA_RULES_PATH")
	return cmd
}

func (c *cli) navataraCmd() *cobra.Command {
	var birth string
	cmd := &cobra.Command{
		Use:   "navatara",
		Short: "Tara cycle counted from a birth nakshatra",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := usecase.NavataraRequest{Birth: birth}
			if c.timeStr != "" {
				t, err := c.instant()
				if err != nil {
					return err
				}
				req.Time = t
			}
			resp, err := c.svc.Navatara(cmd.Context(), req)
			if err != nil {
				return err
			}
			return c.print(resp)
		},
	}
	cmd.Flags().StringVar(&birth, "birth", "", "Birth nakshatra name (required)")
	_ = cmd.MarkFlagRequired("birth")
	return cmd
}
