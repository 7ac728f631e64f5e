// internal/cli/options.go
package cli

import (
	"errors"
	"flag"
	"fmt"
	"math"
	"strings"

	"github.com/cxd309/stopping-engine/internal/conditions"
	"github.com/cxd309/stopping-engine/internal/config"
	"github.com/cxd309/stopping-engine/internal/engine"
	"github.com/cxd309/stopping-engine/internal/kinematics"
	"github.com/cxd309/stopping-engine/internal/vehicle"
	"github.com/cxd309/stopping-engine/internal/writers"
)

// Options holds all CLI flags.
type Options struct {
	// Vehicle
	Car  string
	Mass float64

	// Friction
	Surface   string
	Mu        float64 // 0 = not set
	Tyre      string
	ABS       string
	ABSFactor float64 // 0 = not set; use ABS

	// Driver and road
	Reaction     string
	ReactionTime float64 // 0 = not set; use Reaction
	Slope        string
	SlopeDir     string

	// Run
	Speed     float64
	Sweep     bool
	Profile   bool
	ProfileDt float64
	Input     string // JSON request file, or "-" for stdin

	// Output
	Format      string
	ListCars    bool
	MetricsFile string

	// Ambient
	LogLevel  string
	LogFormat string
	Trace     bool

	set map[string]bool
}

// NewFlagSet returns a configured FlagSet with custom usage/help.
func NewFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(),
			`%s: vehicle stopping-distance calculator

Computes reaction, braking and total stopping distance for a car, and
optionally a comparison sweep across speeds, surfaces, drivers and slopes.

Usage of %s:
`, name, name)
		fs.PrintDefaults()
	}
	return fs
}

// ParseArgs registers and parses all flags, returns an Options struct.
// Environment configuration in cfg supplies the flag defaults.
func ParseArgs(fs *flag.FlagSet, argv []string, cfg *config.Config) (Options, error) {
	if cfg == nil {
		cfg = config.Load()
	}
	var opt Options
	var help bool

	fs.StringVar(&opt.Car, "car", "", "preset car name (see -list-cars) [\""+vehicle.DefaultPreset+"\" unless -mass]")
	fs.Float64Var(&opt.Mass, "mass", 0, "manual vehicle mass in kg; no aerodynamic drag")

	fs.StringVar(&opt.Surface, "surface", string(conditions.SurfaceDryAsphalt), "road surface: dry-asphalt | wet-asphalt | snow | ice")
	fs.Float64Var(&opt.Mu, "mu", 0, "friction coefficient override in (0,1]; ignores -surface/-tyre/-abs")
	fs.StringVar(&opt.Tyre, "tyre", string(conditions.TyreDecent), "tyre condition: good | decent | poor")
	fs.StringVar(&opt.ABS, "abs", "no", "ABS fitted: yes | no")
	fs.Float64Var(&opt.ABSFactor, "abs-factor", 0, "explicit ABS braking multiplier (≥ 0)")

	fs.StringVar(&opt.Reaction, "reaction", string(conditions.ReactionNotTired), "driver state: not-tired | tired")
	fs.Float64Var(&opt.ReactionTime, "reaction-time", 0, "explicit reaction time in seconds")
	fs.StringVar(&opt.Slope, "slope", "flat", "slope: flat | slight | moderate | steep (optionally -incline/-decline)")
	fs.StringVar(&opt.SlopeDir, "slope-dir", string(conditions.Decline), "slope direction: incline | decline")

	fs.Float64Var(&opt.Speed, "speed", 0, "baseline speed in km/h [*]")
	fs.BoolVar(&opt.Sweep, "sweep", false, "add the comparison sweep around the baseline speed")
	fs.BoolVar(&opt.Profile, "profile", false, "add a time-stepped distance/speed profile")
	fs.Float64Var(&opt.ProfileDt, "profile-dt", cfg.Output.ProfileDt, "profile time step in seconds")
	fs.StringVar(&opt.Input, "input", "", "read a JSON request from file ('-' for stdin) instead of flags")

	fs.StringVar(&opt.Format, "format", cfg.Output.Format, "output format: "+strings.Join(writers.Formats(), " | "))
	fs.BoolVar(&opt.ListCars, "list-cars", false, "list preset cars and exit")
	fs.StringVar(&opt.MetricsFile, "metrics-file", cfg.Metrics.File, "write Prometheus metrics to this file")

	fs.StringVar(&opt.LogLevel, "log-level", cfg.Log.Level, "log level: debug | info | warn | error")
	fs.StringVar(&opt.LogFormat, "log-format", cfg.Log.Format, "log format: text | json")
	fs.BoolVar(&opt.Trace, "trace", cfg.Tracing.Enabled, "write OpenTelemetry spans to stderr")

	fs.BoolVar(&help, "h", false, "show this help message")

	if err := fs.Parse(argv); err != nil {
		return opt, err
	}
	if help {
		fs.Usage()
		return opt, flag.ErrHelp
	}
	opt.set = map[string]bool{}
	fs.Visit(func(f *flag.Flag) { opt.set[f.Name] = true })

	if opt.ListCars {
		return opt, nil
	}
	if fs.NArg() > 0 {
		return opt, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if _, ok := writers.Writers[opt.Format]; !ok {
		return opt, fmt.Errorf("invalid -format %q", opt.Format)
	}
	if opt.Profile && (!(opt.ProfileDt >= kinematics.MinProfileStep) || math.IsInf(opt.ProfileDt, 0)) {
		return opt, fmt.Errorf("-profile-dt must be a finite number of seconds ≥ %g", kinematics.MinProfileStep)
	}

	if opt.Input != "" {
		for _, name := range []string{"car", "mass", "surface", "mu", "tyre", "abs", "abs-factor", "reaction", "reaction-time", "slope", "slope-dir", "speed", "sweep"} {
			if opt.set[name] {
				return opt, fmt.Errorf("-input conflicts with -%s", name)
			}
		}
		return opt, nil
	}

	switch {
	case opt.set["car"] && opt.set["mass"]:
		return opt, errors.New("-car conflicts with -mass")
	case opt.set["abs"] && opt.set["abs-factor"]:
		return opt, errors.New("-abs conflicts with -abs-factor")
	case opt.set["reaction"] && opt.set["reaction-time"]:
		return opt, errors.New("-reaction conflicts with -reaction-time")
	case opt.set["mu"] && (opt.set["surface"] || opt.set["tyre"] || opt.set["abs"] || opt.set["abs-factor"]):
		return opt, errors.New("-mu conflicts with -surface/-tyre/-abs")
	}
	if !opt.set["speed"] {
		return opt, errors.New("-speed is required")
	}
	if !(opt.Speed > 0) {
		return opt, errors.New("-speed must be > 0")
	}
	if !opt.set["mass"] && opt.Car == "" {
		opt.Car = vehicle.DefaultPreset
	}
	return opt, nil
}

// Request turns flag options into an engine request.
func (o Options) Request() (engine.Request, error) {
	req := engine.Request{
		Vehicle:  engine.VehicleRequest{Preset: o.Car, MassKg: o.Mass},
		Surface:  o.Surface,
		Tyre:     o.Tyre,
		Reaction: o.Reaction,
		SpeedKmh: o.Speed,
		Sweep:    o.Sweep,
	}
	if o.set["mass"] {
		req.Vehicle.Preset = ""
	}
	if o.set["mu"] {
		mu := o.Mu
		req.FrictionOverride = &mu
	}
	if o.set["abs-factor"] {
		f := o.ABSFactor
		req.ABSFactor = &f
	} else {
		f, err := conditions.ParseABS(o.ABS)
		if err != nil {
			return req, err
		}
		req.ABSFactor = &f
	}
	if o.set["reaction-time"] {
		rt := o.ReactionTime
		req.ReactionTimeS = &rt
	}

	dir, err := conditions.ParseDirection(o.SlopeDir)
	if err != nil {
		return req, err
	}
	if req.Slope, err = conditions.ParseSlope(o.Slope, dir); err != nil {
		return req, err
	}
	if o.Profile {
		req.ProfileDt = o.ProfileDt
	}
	return req, nil
}
