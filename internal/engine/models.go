package engine

import (
	"fmt"
	"math"

	"github.com/cxd309/stopping-engine/internal/conditions"
	"github.com/cxd309/stopping-engine/internal/kinematics"
	"github.com/cxd309/stopping-engine/internal/vehicle"
)

// Friction is the tyre-road friction input: either FixedFriction (a user
// override) or ComputedFriction (surface × tyre × ABS). It is resolved to a
// single coefficient once, when Params is built.
type Friction interface {
	validate() error
	resolve() (float64, error)
	describe() string
}

// FixedFriction overrides the computed coefficient. Mu must be in (0, 1].
type FixedFriction struct {
	Mu float64 `json:"mu"`
}

func (f FixedFriction) validate() error {
	if !(f.Mu > 0 && f.Mu <= 1) {
		return invalid("friction override", f.Mu, "must be in (0, 1]")
	}
	return nil
}

func (f FixedFriction) resolve() (float64, error) { return f.Mu, nil }

func (f FixedFriction) describe() string { return fmt.Sprintf("override μ=%.2f", f.Mu) }

// ComputedFriction is Base × TyreModifier × ABSFactor.
type ComputedFriction struct {
	Surface      conditions.Surface `json:"surface,omitempty"`
	Base         float64            `json:"base"`
	TyreModifier float64            `json:"tyre_modifier"`
	ABSFactor    float64            `json:"abs_factor"`
}

// Computed resolves named conditions into a ComputedFriction.
func Computed(surface conditions.Surface, tyre conditions.Tyre, abs float64) ComputedFriction {
	return ComputedFriction{
		Surface:      surface,
		Base:         surface.BaseFriction(),
		TyreModifier: tyre.Modifier(),
		ABSFactor:    abs,
	}
}

func (c ComputedFriction) validate() error {
	if c.Surface != "" && !c.Surface.Valid() {
		return invalid("surface", c.Surface, "unknown surface")
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"base friction", c.Base},
		{"tyre modifier", c.TyreModifier},
		{"abs factor", c.ABSFactor},
	} {
		if !(f.v >= 0) || math.IsInf(f.v, 0) {
			return invalid(f.name, f.v, "must be a non-negative finite number")
		}
	}
	return nil
}

// resolve reports ErrUndefinedStopping rather than clamping a zero product.
func (c ComputedFriction) resolve() (float64, error) {
	mu := c.Base * c.TyreModifier * c.ABSFactor
	if mu <= 0 {
		return 0, undefined("effective friction %.3g (base %.2f × tyre %.2f × abs %.2f) is not positive",
			mu, c.Base, c.TyreModifier, c.ABSFactor)
	}
	return mu, nil
}

func (c ComputedFriction) describe() string {
	return fmt.Sprintf("%s μ=%.2f × tyre %.2f × abs %.2f", c.Surface.Label(), c.Base, c.TyreModifier, c.ABSFactor)
}

// Spec is the caller-supplied parameter record. Build a Params from it with
// NewParams before calculating.
type Spec struct {
	Label        string
	Vehicle      vehicle.Profile
	Friction     Friction
	ReactionTime float64 // seconds
	Slope        conditions.Slope
}

// Params is a validated, immutable parameter record with its friction already
// resolved. The zero value is not usable; build one with NewParams.
type Params struct {
	spec  Spec
	mu    float64
	muErr error
}

// NewParams validates s and resolves its friction. Invalid input fails here,
// before any calculation runs; a friction that resolves to zero is not invalid
// input and instead makes every calculation report ErrUndefinedStopping.
func NewParams(s Spec) (Params, error) {
	s.Vehicle = s.Vehicle.Clone()
	if s.Slope.Magnitude == "" {
		s.Slope.Magnitude = conditions.SlopeNone
	}

	if err := s.Vehicle.Validate(); err != nil {
		return Params{}, invalid("vehicle", s.Vehicle.Name, err.Error())
	}
	if s.Friction == nil {
		return Params{}, invalid("friction", nil, "missing")
	}
	if err := s.Friction.validate(); err != nil {
		return Params{}, err
	}
	if !(s.ReactionTime > 0) || math.IsInf(s.ReactionTime, 0) {
		return Params{}, invalid("reaction time", s.ReactionTime, "must be positive")
	}
	if err := s.Slope.Validate(); err != nil {
		return Params{}, invalid("slope", s.Slope, err.Error())
	}

	mu, muErr := s.Friction.resolve()
	return Params{spec: s, mu: mu, muErr: muErr}, nil
}

// Spec returns a copy of the record p was built from.
func (p Params) Spec() Spec {
	s := p.spec
	s.Vehicle = s.Vehicle.Clone()
	return s
}

func (p Params) Label() string { return p.spec.Label }

// With returns a new Params built from a modified copy of p's record.
func (p Params) With(fn func(*Spec)) (Params, error) {
	s := p.Spec()
	fn(&s)
	return NewParams(s)
}

// EffectiveFriction returns μ_eff, or ErrUndefinedStopping if it is not positive.
func (p Params) EffectiveFriction() (float64, error) { return p.mu, p.muErr }

func (p Params) model() kinematics.BrakingModel {
	return p.spec.Vehicle.BrakingModel(p.mu, p.spec.Slope.SignedGrade())
}

// Status is the outcome of a single calculation.
type Status string

const (
	StatusOK        Status = "ok"
	StatusUndefined Status = "undefined"
)

// Result is the full breakdown of one stopping-distance calculation.
// Distances and times are zero when Status is StatusUndefined.
type Result struct {
	SpeedKmh         float64 `json:"speed_kmh"`
	SpeedMs          float64 `json:"speed_ms"`
	Mu               float64 `json:"mu_eff"`
	Model            string  `json:"model"` // friction or aero
	ReactionTime     float64 `json:"reaction_time_s"`
	ReactionDistance float64 `json:"reaction_distance_m"`
	BrakingDistance  float64 `json:"braking_distance_m"`
	TotalDistance    float64 `json:"total_distance_m"`
	BrakingTime      float64 `json:"braking_time_s"`
	TotalTime        float64 `json:"total_time_s"`
	Status           Status  `json:"status"`
	Reason           string  `json:"reason,omitempty"`
}

// Defined reports whether a stopping distance exists.
func (r Result) Defined() bool { return r.Status == StatusOK }

// ProfileSample is one point of a distance/speed trace, speed in km/h for plotting.
type ProfileSample struct {
	Time      float64 `json:"t"`
	DistanceM float64 `json:"distance_m"`
	SpeedKmh  float64 `json:"speed_kmh"`
}
