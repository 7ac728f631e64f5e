package engine

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/cxd309/stopping-engine/internal/conditions"
	"github.com/cxd309/stopping-engine/internal/logging"
)

const tracerName = "github.com/cxd309/stopping-engine/internal/engine"

// SpeedOffsets are the comparison offsets around a baseline speed, km/h.
var SpeedOffsets = []float64{-20, -10, 0, 10, 20}

// Curve groups returned by ComparisonVariants.
const (
	GroupSurfaceReaction = "surface-reaction"
	GroupSlope           = "slope"
)

// Variant is one named parameter set to sweep across speeds.
type Variant struct {
	Label  string `json:"label"`
	Group  string `json:"group,omitempty"`
	Params Params `json:"-"`
}

// Point is one (speed, distance) sample of a curve. Undefined points are gaps:
// Defined is false, DistanceM is zero, and Reason says why.
//
// Profile holds the distance/speed trace for defined surface-reaction points
// when the comparison was run with a profile step. Gaps never carry one.
type Point struct {
	SpeedKmh  float64         `json:"speed_kmh"`
	DistanceM float64         `json:"distance_m"`
	Defined   bool            `json:"defined"`
	Reason    string          `json:"reason,omitempty"`
	Profile   []ProfileSample `json:"profile,omitempty"`
}

// Curve is the ordered sweep for one variant.
type Curve struct {
	Label  string  `json:"label"`
	Group  string  `json:"group,omitempty"`
	Points []Point `json:"points"`
}

// SweepResult holds one curve per variant, in variant order.
type SweepResult struct {
	Speeds []float64 `json:"speeds_kmh"`
	Curves []Curve   `json:"curves"`
}

// ByLabel maps variant label to its points.
func (s SweepResult) ByLabel() map[string][]Point {
	m := make(map[string][]Point, len(s.Curves))
	for _, c := range s.Curves {
		m[c.Label] = c.Points
	}
	return m
}

// Gaps counts undefined points across all curves.
func (s SweepResult) Gaps() int {
	n := 0
	for _, c := range s.Curves {
		for _, p := range c.Points {
			if !p.Defined {
				n++
			}
		}
	}
	return n
}

// Recorder observes sweep points as they are computed.
type Recorder interface {
	ObservePoint(variant string, defined bool, distanceM float64)
}

// Generator produces comparison sweeps.
type Generator struct {
	log      logging.Logger
	recorder Recorder
}

// Option configures a Generator.
type Option func(*Generator)

func WithLogger(l logging.Logger) Option { return func(g *Generator) { g.log = l } }

func WithRecorder(r Recorder) Option { return func(g *Generator) { g.recorder = r } }

// NewGenerator returns a Generator with a no-op logger and no recorder unless
// options say otherwise.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{log: logging.Noop()}
	for _, opt := range opts {
		opt(g)
	}
	if g.log == nil {
		g.log = logging.Noop()
	}
	return g
}

// GenerateOffsets returns baseline-20, -10, +0, +10, +20 km/h with negative
// values clamped to zero. Clamped duplicates are kept.
func GenerateOffsets(baselineKmh float64) []float64 {
	out := make([]float64, len(SpeedOffsets))
	for i, off := range SpeedOffsets {
		out[i] = math.Max(0, baselineKmh+off)
	}
	return out
}

// Sweep computes the total stopping distance for every variant at every speed
// using a default Generator.
func Sweep(speeds []float64, variants []Variant) SweepResult {
	return NewGenerator().Sweep(context.Background(), speeds, variants)
}

// Sweep computes the total stopping distance for every variant at every speed.
// A point that cannot be computed becomes a gap; the sweep always completes.
func (g *Generator) Sweep(ctx context.Context, speeds []float64, variants []Variant) SweepResult {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "engine.Sweep")
	defer span.End()

	res := SweepResult{
		Speeds: append([]float64(nil), speeds...),
		Curves: make([]Curve, 0, len(variants)),
	}
	for _, v := range variants {
		curve := Curve{Label: v.Label, Group: v.Group, Points: make([]Point, 0, len(speeds))}
		for _, s := range speeds {
			pt := Point{SpeedKmh: s}
			d, err := TotalStoppingDistance(s, v.Params)
			if err != nil {
				pt.Reason = err.Error()
				g.log.Warn(ctx, "no stopping distance for sweep point",
					logging.String("variant", v.Label),
					logging.Float("speed_kmh", s),
					logging.Err(err),
				)
				span.AddEvent("gap", gapEvent(v.Label, s, err))
			} else {
				pt.DistanceM = d
				pt.Defined = true
			}
			if g.recorder != nil {
				g.recorder.ObservePoint(v.Label, pt.Defined, pt.DistanceM)
			}
			curve.Points = append(curve.Points, pt)
		}
		res.Curves = append(res.Curves, curve)
	}

	gaps := res.Gaps()
	span.SetAttributes(
		attribute.Int("sweep.curves", len(res.Curves)),
		attribute.Int("sweep.speeds", len(speeds)),
		attribute.Int("sweep.gaps", gaps),
	)
	if gaps > 0 {
		span.SetStatus(codes.Error, fmt.Sprintf("%d undefined points", gaps))
	}
	g.log.Debug(ctx, "sweep complete",
		logging.Int("curves", len(res.Curves)),
		logging.Int("gaps", gaps),
	)
	return res
}

// Compare sweeps the standard comparison variants around baselineKmh.
func (g *Generator) Compare(ctx context.Context, baselineKmh float64, base Params) (SweepResult, error) {
	return g.compare(ctx, baselineKmh, base, 0)
}

// CompareWithProfiles is Compare plus a distance/speed trace, sampled every dt
// seconds, on each defined point of the surface-reaction curves.
func (g *Generator) CompareWithProfiles(ctx context.Context, baselineKmh float64, base Params, dt float64) (SweepResult, error) {
	if err := checkProfileStep(dt); err != nil {
		return SweepResult{}, err
	}
	return g.compare(ctx, baselineKmh, base, dt)
}

func (g *Generator) compare(ctx context.Context, baselineKmh float64, base Params, dt float64) (SweepResult, error) {
	if err := checkSpeed(baselineKmh); err != nil {
		return SweepResult{}, err
	}
	variants, err := ComparisonVariants(base)
	if err != nil {
		return SweepResult{}, err
	}
	res := g.Sweep(ctx, GenerateOffsets(baselineKmh), variants)
	if dt > 0 {
		if err := attachProfiles(res, variants, dt); err != nil {
			return SweepResult{}, err
		}
	}
	return res, nil
}

// attachProfiles fills Point.Profile for defined points of surface-reaction
// curves. res.Curves and variants share order.
func attachProfiles(res SweepResult, variants []Variant, dt float64) error {
	for i, c := range res.Curves {
		if c.Group != GroupSurfaceReaction {
			continue
		}
		for j, pt := range c.Points {
			if !pt.Defined {
				continue
			}
			prof, err := Profile(pt.SpeedKmh, variants[i].Params, dt)
			switch {
			case errors.Is(err, ErrUndefinedStopping):
				continue
			case err != nil:
				return fmt.Errorf("profile for %q at %g km/h: %w", c.Label, pt.SpeedKmh, err)
			}
			c.Points[j].Profile = prof
		}
	}
	return nil
}

func gapEvent(variant string, speed float64, err error) trace.EventOption {
	kind := "invalid"
	if errors.Is(err, ErrUndefinedStopping) {
		kind = "undefined"
	}
	return trace.WithAttributes(
		attribute.String("variant", variant),
		attribute.Float64("speed_kmh", speed),
		attribute.String("kind", kind),
	)
}

// comparisonSurfaces are the surfaces compared in the surface/reaction group.
var comparisonSurfaces = []struct {
	label   string
	surface conditions.Surface
}{
	{"Dry", conditions.SurfaceDryAsphalt},
	{"Wet", conditions.SurfaceWetAsphalt},
}

// comparisonSlopes are the slope cases compared in the slope group.
var comparisonSlopes = []conditions.Slope{
	conditions.Flat,
	{Magnitude: conditions.SlopeSlight, Direction: conditions.Incline},
	{Magnitude: conditions.SlopeModerate, Direction: conditions.Incline},
	{Magnitude: conditions.SlopeSlight, Direction: conditions.Decline},
	{Magnitude: conditions.SlopeModerate, Direction: conditions.Decline},
	{Magnitude: conditions.SlopeSteep, Direction: conditions.Decline},
}

// ComparisonVariants derives the standard comparison dataset from base:
//
//   - surface-reaction: {dry, wet} × {not tired, tired}, keeping base's tyre,
//     ABS, vehicle, and slope;
//   - slope: flat plus slight/moderate incline and slight/moderate/steep
//     decline, keeping everything else from base.
//
// In the surface-reaction group a friction override is replaced by the
// surface's base friction with good tyres and no ABS.
func ComparisonVariants(base Params) ([]Variant, error) {
	var out []Variant

	tyre, abs := 1.0, 1.0
	if c, ok := base.spec.Friction.(ComputedFriction); ok {
		tyre, abs = c.TyreModifier, c.ABSFactor
	}
	reactions := []conditions.Reaction{conditions.ReactionNotTired, conditions.ReactionTired}

	for _, s := range comparisonSurfaces {
		for _, r := range reactions {
			label := fmt.Sprintf("%s | %s", s.label, r.Label())
			p, err := base.With(func(sp *Spec) {
				sp.Label = label
				sp.Friction = ComputedFriction{
					Surface:      s.surface,
					Base:         s.surface.BaseFriction(),
					TyreModifier: tyre,
					ABSFactor:    abs,
				}
				sp.ReactionTime = r.Seconds()
			})
			if err != nil {
				return nil, fmt.Errorf("variant %q: %w", label, err)
			}
			out = append(out, Variant{Label: label, Group: GroupSurfaceReaction, Params: p})
		}
	}

	for _, sl := range comparisonSlopes {
		label := sl.Label()
		p, err := base.With(func(sp *Spec) {
			sp.Label = label
			sp.Slope = sl
		})
		if err != nil {
			return nil, fmt.Errorf("variant %q: %w", label, err)
		}
		out = append(out, Variant{Label: label, Group: GroupSlope, Params: p})
	}
	return out, nil
}
