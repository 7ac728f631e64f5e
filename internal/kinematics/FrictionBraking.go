package kinematics

import "math"

// FrictionBraking implements BrakingModel using tyre-road friction and road grade only.
// This is the simplest model and is used when the vehicle's aerodynamics are unknown.
type FrictionBraking struct {
	Mu           float64 `json:"mu"`            // effective friction coefficient
	GradePercent float64 `json:"grade_percent"` // signed grade, positive = uphill
}

// Deceleration is g(μ cos α + sin α). Uphill grades add to it, downhill grades
// subtract from it.
func (f FrictionBraking) Deceleration(float64) float64 {
	alpha := GradeAngle(f.GradePercent)
	return G * (f.Mu*math.Cos(alpha) + math.Sin(alpha))
}

func (f FrictionBraking) BrakingDistance(v float64) (float64, error) {
	k := f.Deceleration(v)
	if k <= 0 {
		return 0, ErrNoDeceleration
	}
	return (v * v) / (2 * k), nil
}

func (f FrictionBraking) BrakingTime(v float64) (float64, error) {
	k := f.Deceleration(v)
	if k <= 0 {
		return 0, ErrNoDeceleration
	}
	return v / k, nil
}

func (f FrictionBraking) DecelerateStep(v, dt float64) (float64, float64) {
	return decelerateStep(f, v, dt)
}

// decelerateStep advances any BrakingModel by dt using the deceleration at the
// start of the step. If the vehicle would stop mid-step it stops exactly.
func decelerateStep(m BrakingModel, v, dt float64) (float64, float64) {
	if v <= 0 {
		return 0, 0
	}
	a := m.Deceleration(v)
	if a <= 0 {
		// Not braking: coast forward and accelerate under the net force.
		newV := v - a*dt
		return 0.5 * (v + newV) * dt, newV
	}
	tToStop := v / a
	if tToStop <= dt {
		return 0.5 * v * tToStop, 0
	}
	newV := v - a*dt
	return 0.5 * (v + newV) * dt, newV
}
