// Package conditions defines the road, tyre, driver, and slope conditions that
// feed a stopping-distance calculation, together with their numeric tables.
package conditions

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrUnknown is returned when a condition name cannot be parsed.
var ErrUnknown = errors.New("conditions: unknown value")

// Surface is a named road surface.
type Surface string

const (
	SurfaceDryAsphalt Surface = "dry-asphalt"
	SurfaceWetAsphalt Surface = "wet-asphalt"
	SurfaceSnow       Surface = "snow"
	SurfaceIce        Surface = "ice"
)

// Surfaces lists every surface in menu order.
var Surfaces = []Surface{SurfaceDryAsphalt, SurfaceWetAsphalt, SurfaceSnow, SurfaceIce}

var surfaceFriction = map[Surface]float64{
	SurfaceDryAsphalt: 0.85,
	SurfaceWetAsphalt: 0.55,
	SurfaceSnow:       0.20,
	SurfaceIce:        0.10,
}

var surfaceLabels = map[Surface]string{
	SurfaceDryAsphalt: "Dry asphalt",
	SurfaceWetAsphalt: "Wet asphalt",
	SurfaceSnow:       "Snow",
	SurfaceIce:        "Ice",
}

// BaseFriction returns the surface's tyre-road friction coefficient, or 0 for
// an unknown surface.
func (s Surface) BaseFriction() float64 { return surfaceFriction[s] }

// Label returns a human-readable name.
func (s Surface) Label() string {
	if l, ok := surfaceLabels[s]; ok {
		return l
	}
	return string(s)
}

func (s Surface) Valid() bool {
	_, ok := surfaceFriction[s]
	return ok
}

// ParseSurface accepts canonical names plus the short forms "dry" and "wet".
func ParseSurface(raw string) (Surface, error) {
	switch norm(raw) {
	case "dry", "dry-asphalt":
		return SurfaceDryAsphalt, nil
	case "wet", "wet-asphalt":
		return SurfaceWetAsphalt, nil
	case "snow":
		return SurfaceSnow, nil
	case "ice":
		return SurfaceIce, nil
	}
	return "", fmt.Errorf("%w: surface %q", ErrUnknown, raw)
}

// Tyre is the tread condition of the tyres.
type Tyre string

const (
	TyreGood   Tyre = "good"
	TyreDecent Tyre = "decent"
	TyrePoor   Tyre = "poor"
)

var tyreModifiers = map[Tyre]float64{
	TyreGood:   1.0,
	TyreDecent: 0.8,
	TyrePoor:   0.5,
}

// Modifier returns the multiplicative friction modifier, or 0 for an unknown tyre.
func (t Tyre) Modifier() float64 { return tyreModifiers[t] }

func (t Tyre) Valid() bool {
	_, ok := tyreModifiers[t]
	return ok
}

func ParseTyre(raw string) (Tyre, error) {
	t := Tyre(norm(raw))
	if !t.Valid() {
		return "", fmt.Errorf("%w: tyre %q", ErrUnknown, raw)
	}
	return t, nil
}

// ABS braking-efficiency multipliers applied to friction.
const (
	ABSNone   = 1.0
	ABSFitted = 1.1
)

// ParseABS accepts yes/no style answers or an explicit non-negative factor.
func ParseABS(raw string) (float64, error) {
	switch norm(raw) {
	case "y", "yes", "true", "fitted", "on":
		return ABSFitted, nil
	case "n", "no", "false", "none", "off", "":
		return ABSNone, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: abs %q", ErrUnknown, raw)
	}
	return f, nil
}

// Reaction describes how alert the driver is.
type Reaction string

const (
	ReactionNotTired Reaction = "not-tired"
	ReactionTired    Reaction = "tired"
)

var reactionSeconds = map[Reaction]float64{
	ReactionNotTired: 1.0,
	ReactionTired:    2.0,
}

// Seconds returns the reaction time, or 0 for an unknown profile.
func (r Reaction) Seconds() float64 { return reactionSeconds[r] }

func (r Reaction) Label() string {
	switch r {
	case ReactionNotTired:
		return "Alert (1s)"
	case ReactionTired:
		return "Tired (2s)"
	}
	return string(r)
}

func ParseReaction(raw string) (Reaction, error) {
	switch norm(raw) {
	case "not-tired", "alert", "rested":
		return ReactionNotTired, nil
	case "tired":
		return ReactionTired, nil
	}
	return "", fmt.Errorf("%w: reaction %q", ErrUnknown, raw)
}

// SlopeMagnitude is how steep the road is.
type SlopeMagnitude string

const (
	SlopeNone     SlopeMagnitude = "none"
	SlopeSlight   SlopeMagnitude = "slight"
	SlopeModerate SlopeMagnitude = "moderate"
	SlopeSteep    SlopeMagnitude = "steep"
)

// SlopeMagnitudes lists every magnitude from flat to steep.
var SlopeMagnitudes = []SlopeMagnitude{SlopeNone, SlopeSlight, SlopeModerate, SlopeSteep}

var slopeGrades = map[SlopeMagnitude]float64{
	SlopeNone:     0,
	SlopeSlight:   2,
	SlopeModerate: 5,
	SlopeSteep:    8,
}

// GradePercent returns the unsigned grade in percent.
func (m SlopeMagnitude) GradePercent() float64 { return slopeGrades[m] }

func (m SlopeMagnitude) Valid() bool {
	_, ok := slopeGrades[m]
	return ok
}

// SlopeDirection is whether the car brakes uphill or downhill.
type SlopeDirection string

const (
	Incline SlopeDirection = "incline"
	Decline SlopeDirection = "decline"
)

func (d SlopeDirection) Valid() bool { return d == Incline || d == Decline }

// Slope is a magnitude and a direction. The zero value is flat ground.
type Slope struct {
	Magnitude SlopeMagnitude `json:"magnitude"`
	Direction SlopeDirection `json:"direction,omitempty"`
}

// Flat is level ground.
var Flat = Slope{Magnitude: SlopeNone}

// Validate reports whether both parts are known. A flat slope needs no direction.
func (s Slope) Validate() error {
	mag := s.Magnitude
	if mag == "" {
		mag = SlopeNone
	}
	if !mag.Valid() {
		return fmt.Errorf("%w: slope magnitude %q", ErrUnknown, s.Magnitude)
	}
	if mag != SlopeNone && !s.Direction.Valid() {
		return fmt.Errorf("%w: slope direction %q", ErrUnknown, s.Direction)
	}
	return nil
}

// SignedGrade returns the grade in percent, positive uphill and negative downhill.
func (s Slope) SignedGrade() float64 {
	g := s.Magnitude.GradePercent()
	if s.Direction == Decline {
		return -g
	}
	return g
}

// Label returns a human-readable name, e.g. "Moderate decline (-5.0%)".
func (s Slope) Label() string {
	if s.Magnitude == SlopeNone || s.Magnitude == "" {
		return "Flat"
	}
	mag := string(s.Magnitude)
	return fmt.Sprintf("%s%s %s (%+.1f%%)", strings.ToUpper(mag[:1]), mag[1:], s.Direction, s.SignedGrade())
}

// ParseSlope accepts "none"/"flat", or "<magnitude>[-<direction>]" such as
// "moderate-decline". A missing direction defaults to dir.
func ParseSlope(raw string, dir SlopeDirection) (Slope, error) {
	v := norm(raw)
	if v == "" || v == "flat" || v == "none" {
		return Flat, nil
	}
	mag, d, found := strings.Cut(v, "-")
	s := Slope{Magnitude: SlopeMagnitude(mag), Direction: dir}
	if found {
		s.Direction = SlopeDirection(d)
		switch d {
		case "up", "uphill":
			s.Direction = Incline
		case "down", "downhill":
			s.Direction = Decline
		}
	}
	if err := s.Validate(); err != nil {
		return Slope{}, err
	}
	return s, nil
}

// ParseDirection accepts incline/decline and the uphill/downhill synonyms.
func ParseDirection(raw string) (SlopeDirection, error) {
	switch norm(raw) {
	case "incline", "up", "uphill":
		return Incline, nil
	case "decline", "down", "downhill":
		return Decline, nil
	}
	return "", fmt.Errorf("%w: slope direction %q", ErrUnknown, raw)
}

func norm(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("_", "-", " ", "-").Replace(s)
}
