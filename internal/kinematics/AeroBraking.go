package kinematics

import "math"

// AeroBraking implements BrakingModel for a vehicle with known drag coefficient,
// frontal area, and mass. Aerodynamic drag ½ρCdAv²/m adds to the friction and
// grade deceleration of the embedded FrictionBraking.
type AeroBraking struct {
	FrictionBraking
	DragCoefficient float64 `json:"drag_coefficient"`
	FrontalArea     float64 `json:"frontal_area"` // m²
	MassKg          float64 `json:"mass_kg"`
}

// dragFactor returns c in a_drag = c·v².
func (a AeroBraking) dragFactor() float64 {
	if a.MassKg <= 0 {
		return 0
	}
	return 0.5 * AirDensity * a.DragCoefficient * a.FrontalArea / a.MassKg
}

func (a AeroBraking) Deceleration(v float64) float64 {
	return a.FrictionBraking.Deceleration(v) + a.dragFactor()*v*v
}

// BrakingDistance integrates dv/dx = -(k + cv²)/v exactly:
// d = ln(1 + cv²/k) / 2c.
func (a AeroBraking) BrakingDistance(v float64) (float64, error) {
	c := a.dragFactor()
	if c <= 0 {
		return a.FrictionBraking.BrakingDistance(v)
	}
	k := a.FrictionBraking.Deceleration(v)
	if k <= 0 {
		// Drag alone only slows the vehicle toward a terminal speed.
		return 0, ErrNoDeceleration
	}
	return math.Log1p(c*v*v/k) / (2 * c), nil
}

// BrakingTime integrates dv/dt = -(k + cv²) exactly:
// t = atan(v√(c/k)) / √(kc).
func (a AeroBraking) BrakingTime(v float64) (float64, error) {
	c := a.dragFactor()
	if c <= 0 {
		return a.FrictionBraking.BrakingTime(v)
	}
	k := a.FrictionBraking.Deceleration(v)
	if k <= 0 {
		return 0, ErrNoDeceleration
	}
	return math.Atan(v*math.Sqrt(c/k)) / math.Sqrt(k*c), nil
}

func (a AeroBraking) DecelerateStep(v, dt float64) (float64, float64) {
	return decelerateStep(a, v, dt)
}
