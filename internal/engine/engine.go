// Package engine implements the stopping-distance calculation.
//
// A calculation has two phases:
//
//  1. Reaction phase - the vehicle travels at constant speed for the driver's
//     reaction time before the brakes are applied.
//
//  2. Braking phase - the vehicle decelerates under tyre friction, road grade,
//     and (for vehicles with known aerodynamics) air drag until it stops.
//
// Parameters are validated once when a Params is built; a combination with no
// net deceleration is reported as ErrUndefinedStopping, never as Inf.
package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/cxd309/stopping-engine/internal/kinematics"
)

// ConvertSpeed converts km/h to m/s.
func ConvertSpeed(kmh float64) float64 { return kinematics.KmhToMs(kmh) }

// ReactionDistance is the distance covered at speedMs during reactionTime.
func ReactionDistance(speedMs, reactionTime float64) float64 {
	return kinematics.ReactionDistance(speedMs, reactionTime)
}

// EffectiveFriction resolves f to μ_eff. An override is used as given;
// otherwise base × tyre × ABS. A non-positive result is ErrUndefinedStopping.
func EffectiveFriction(f Friction) (float64, error) {
	if f == nil {
		return 0, invalid("friction", nil, "missing")
	}
	if err := f.validate(); err != nil {
		return 0, err
	}
	return f.resolve()
}

// BrakingDistance is the flat-road or graded braking distance under friction alone:
// v² / 2g(μ cos α ± sin α), with the grade aiding braking uphill and hindering it downhill.
func BrakingDistance(speedMs, mu, gradePercent float64) (float64, error) {
	d, err := kinematics.FrictionBraking{Mu: mu, GradePercent: gradePercent}.BrakingDistance(speedMs)
	if err != nil {
		return 0, undefined("μ=%.3g on %+.1f%% grade gives no net deceleration", mu, gradePercent)
	}
	return d, nil
}

// TotalStoppingDistance returns reaction plus braking distance in metres for a
// vehicle travelling at speedKmh.
func TotalStoppingDistance(speedKmh float64, p Params) (float64, error) {
	r, err := calculate(speedKmh, p)
	if err != nil {
		return 0, err
	}
	return r.TotalDistance, nil
}

// Calculate returns the full breakdown for one speed. Invalid input is an
// error; an undefined stopping distance is reported through Result.Status.
func Calculate(speedKmh float64, p Params) (Result, error) {
	r, err := calculate(speedKmh, p)
	if errors.Is(err, ErrUndefinedStopping) {
		return r, nil
	}
	return r, err
}

func calculate(speedKmh float64, p Params) (Result, error) {
	if err := checkSpeed(speedKmh); err != nil {
		return Result{}, err
	}
	if p.spec.Friction == nil {
		return Result{}, invalid("params", nil, "not built with NewParams")
	}

	v := ConvertSpeed(speedKmh)
	r := Result{
		SpeedKmh:     speedKmh,
		SpeedMs:      v,
		Mu:           p.mu,
		Model:        modelName(p),
		ReactionTime: p.spec.ReactionTime,
		Status:       StatusUndefined,
	}

	if p.muErr != nil {
		r.Reason = p.muErr.Error()
		return r, p.muErr
	}

	m := p.model()
	braking, err := m.BrakingDistance(v)
	if err != nil {
		err = undefined("μ=%.3g on %s gives no net deceleration", p.mu, p.spec.Slope.Label())
		r.Reason = err.Error()
		return r, err
	}
	brakingTime, err := m.BrakingTime(v)
	if err != nil {
		return r, fmt.Errorf("braking time: %w", err)
	}
	if !isFinite(braking) || !isFinite(brakingTime) {
		err = undefined("braking distance %v over %v s is not finite", braking, brakingTime)
		r.Reason = err.Error()
		return r, err
	}

	r.ReactionDistance = ReactionDistance(v, p.spec.ReactionTime)
	r.BrakingDistance = braking
	r.TotalDistance = r.ReactionDistance + braking
	r.BrakingTime = brakingTime
	r.TotalTime = p.spec.ReactionTime + brakingTime
	r.Status = StatusOK
	return r, nil
}

// Profile samples distance travelled and speed every dt seconds from the moment
// a hazard appears until the vehicle stops.
func Profile(speedKmh float64, p Params, dt float64) ([]ProfileSample, error) {
	if err := checkSpeed(speedKmh); err != nil {
		return nil, err
	}
	if err := checkProfileStep(dt); err != nil {
		return nil, err
	}
	if p.muErr != nil {
		return nil, p.muErr
	}

	v := ConvertSpeed(speedKmh)
	pts, err := kinematics.Profile(p.model(), v, p.spec.ReactionTime, dt)
	switch {
	case errors.Is(err, kinematics.ErrNoDeceleration):
		return nil, undefined("μ=%.3g on %s gives no net deceleration", p.mu, p.spec.Slope.Label())
	case errors.Is(err, kinematics.ErrProfileTooLong):
		return nil, invalid("profile timestep", dt, err.Error())
	case err != nil:
		return nil, err
	}

	out := make([]ProfileSample, len(pts))
	for i, pt := range pts {
		kmh := kinematics.MsToKmh(pt.Speed)
		if pt.Speed == v {
			// Reaction-phase samples report the input speed unchanged.
			kmh = speedKmh
		}
		out[i] = ProfileSample{Time: pt.Time, DistanceM: pt.Distance, SpeedKmh: kmh}
	}
	return out, nil
}

// checkProfileStep rejects steps that are non-positive or finer than
// kinematics.MinProfileStep.
func checkProfileStep(dt float64) error {
	if !(dt >= kinematics.MinProfileStep) || math.IsInf(dt, 0) {
		return invalid("profile timestep", dt, fmt.Sprintf("must be a finite number of seconds ≥ %g", kinematics.MinProfileStep))
	}
	return nil
}

func checkSpeed(kmh float64) error {
	if !(kmh >= 0) || math.IsInf(kmh, 0) {
		return invalid("speed", kmh, "must be a non-negative finite km/h value")
	}
	return nil
}

func isFinite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

func modelName(p Params) string {
	if _, ok := p.model().(kinematics.AeroBraking); ok {
		return "aero"
	}
	return "friction"
}
