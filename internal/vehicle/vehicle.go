// Package vehicle defines vehicle profiles and the preset car table used by the
// stopping-distance engine.
package vehicle

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/cxd309/stopping-engine/internal/kinematics"
)

// ErrUnknownPreset is returned when a preset name is not in the table.
var ErrUnknownPreset = errors.New("vehicle: unknown preset")

// Profile holds the static physical parameters of a vehicle.
// DragCoefficient and FrontalArea are optional: when either is nil the vehicle
// is modelled by friction alone.
type Profile struct {
	Name            string   `json:"name"`
	MassKg          float64  `json:"mass_kg"`
	DragCoefficient *float64 `json:"drag_coefficient,omitempty"`
	FrontalArea     *float64 `json:"frontal_area,omitempty"` // m²
}

// Manual returns a friction-only profile for a user-entered mass.
func Manual(massKg float64) Profile {
	return Profile{Name: "Manual entry", MassKg: massKg}
}

// Clone returns a deep copy of p.
func (p Profile) Clone() Profile {
	if p.DragCoefficient != nil {
		cd := *p.DragCoefficient
		p.DragCoefficient = &cd
	}
	if p.FrontalArea != nil {
		area := *p.FrontalArea
		p.FrontalArea = &area
	}
	return p
}

// HasAero reports whether the aerodynamic term applies.
func (p Profile) HasAero() bool {
	return p.DragCoefficient != nil && p.FrontalArea != nil
}

// Validate checks mass is positive and finite and that any aero values are
// non-negative and finite.
func (p Profile) Validate() error {
	if !(p.MassKg > 0) || math.IsInf(p.MassKg, 0) {
		return fmt.Errorf("vehicle %q: mass must be positive, got %v", p.Name, p.MassKg)
	}
	if p.DragCoefficient != nil && !nonNegativeFinite(*p.DragCoefficient) {
		return fmt.Errorf("vehicle %q: drag coefficient must be non-negative and finite, got %v", p.Name, *p.DragCoefficient)
	}
	if p.FrontalArea != nil && !nonNegativeFinite(*p.FrontalArea) {
		return fmt.Errorf("vehicle %q: frontal area must be non-negative and finite, got %v", p.Name, *p.FrontalArea)
	}
	return nil
}

func nonNegativeFinite(f float64) bool { return f >= 0 && !math.IsInf(f, 0) }

// BrakingModel selects the physics model for this vehicle: aerodynamic braking
// when drag data is known, friction-only otherwise.
func (p Profile) BrakingModel(mu, gradePercent float64) kinematics.BrakingModel {
	f := kinematics.FrictionBraking{Mu: mu, GradePercent: gradePercent}
	if !p.HasAero() {
		return f
	}
	return kinematics.AeroBraking{
		FrictionBraking: f,
		DragCoefficient: *p.DragCoefficient,
		FrontalArea:     *p.FrontalArea,
		MassKg:          p.MassKg,
	}
}

func preset(name string, mass, cd, area float64) Profile {
	return Profile{Name: name, MassKg: mass, DragCoefficient: &cd, FrontalArea: &area}
}

// Approximations only; actual values vary by year, model, and trim.
var presets = []Profile{
	preset("Toyota HiLux", 2100, 0.40, 2.5),
	preset("Toyota Corolla", 1300, 0.29, 2.2),
	preset("Toyota RAV4", 1600, 0.33, 2.7),
	preset("Mazda CX-5", 1600, 0.33, 2.7),
	preset("Hyundai i30", 1300, 0.30, 2.2),
	preset("Toyota Camry", 1500, 0.28, 2.2),
	preset("Mazda3", 1300, 0.28, 2.2),
	preset("Mitsubishi Triton", 2000, 0.42, 2.7),
	preset("Nissan X-Trail", 1500, 0.35, 2.7),
	preset("Subaru Forester", 1500, 0.35, 2.7),
}

// DefaultPreset is the car used when a caller needs a fallback.
const DefaultPreset = "Toyota Corolla"

// Presets returns the preset car names in table order.
func Presets() []string {
	names := make([]string, len(presets))
	for i, p := range presets {
		names[i] = p.Name
	}
	return names
}

// Lookup finds a preset by case-insensitive name. The returned profile does not
// share state with the table.
func Lookup(name string) (Profile, error) {
	for _, p := range presets {
		if strings.EqualFold(p.Name, strings.TrimSpace(name)) {
			return p.Clone(), nil
		}
	}
	return Profile{}, fmt.Errorf("%w %q", ErrUnknownPreset, name)
}
