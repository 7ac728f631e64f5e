package engine

import (
	"errors"
	"math"
	"testing"

	"github.com/cxd309/stopping-engine/internal/conditions"
	"github.com/cxd309/stopping-engine/internal/vehicle"
)

func mustParams(t *testing.T, s Spec) Params {
	t.Helper()
	p, err := NewParams(s)
	if err != nil {
		t.Fatalf("NewParams: %v", err)
	}
	return p
}

func manualSpec() Spec {
	return Spec{
		Label:        "manual",
		Vehicle:      vehicle.Manual(1400),
		Friction:     Computed(conditions.SurfaceDryAsphalt, conditions.TyreGood, conditions.ABSNone),
		ReactionTime: conditions.ReactionNotTired.Seconds(),
		Slope:        conditions.Flat,
	}
}

func presetSpec(t *testing.T) Spec {
	t.Helper()
	car, err := vehicle.Lookup("Toyota Corolla")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	s := manualSpec()
	s.Vehicle = car
	return s
}

func TestConvertSpeed(t *testing.T) {
	if got := ConvertSpeed(36); math.Abs(got-10.0) > 1e-9 {
		t.Fatalf("ConvertSpeed(36) = %v, want 10", got)
	}
}

func TestReactionDistanceDoubles(t *testing.T) {
	if got, want := ReactionDistance(15, 2.0), 2*ReactionDistance(15, 1.0); got != want {
		t.Fatalf("ReactionDistance doubled = %v, want %v", got, want)
	}
}

func TestBrakingDistanceFlat(t *testing.T) {
	got, err := BrakingDistance(20, 0.7, 0)
	if err != nil {
		t.Fatalf("BrakingDistance: %v", err)
	}
	if math.Abs(got-29.12) > 1e-2 {
		t.Fatalf("BrakingDistance(20, 0.7) = %v, want ≈29.12", got)
	}
	if _, err := BrakingDistance(20, 0.05, -8); !errors.Is(err, ErrUndefinedStopping) {
		t.Fatalf("steep decline err = %v, want ErrUndefinedStopping", err)
	}
}

func TestEffectiveFriction(t *testing.T) {
	cases := []struct {
		name    string
		f       Friction
		want    float64
		wantErr error
	}{
		{"override", FixedFriction{Mu: 0.42}, 0.42, nil},
		{"computed", Computed(conditions.SurfaceWetAsphalt, conditions.TyreDecent, 1.1), 0.55 * 0.8 * 1.1, nil},
		{"abs zero", Computed(conditions.SurfaceDryAsphalt, conditions.TyrePoor, 0), 0, ErrUndefinedStopping},
		{"tyre zero", ComputedFriction{Base: 0.85, TyreModifier: 0, ABSFactor: 1}, 0, ErrUndefinedStopping},
		{"override zero", FixedFriction{Mu: 0}, 0, ErrInvalidParameter},
		{"override above one", FixedFriction{Mu: 1.2}, 0, ErrInvalidParameter},
		{"negative abs", ComputedFriction{Base: 0.85, TyreModifier: 1, ABSFactor: -1}, 0, ErrInvalidParameter},
		{"nil", nil, 0, ErrInvalidParameter},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := EffectiveFriction(tc.f)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("err = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil || math.Abs(got-tc.want) > 1e-12 {
				t.Fatalf("EffectiveFriction = %v, %v; want %v", got, err, tc.want)
			}
		})
	}
}

func TestNewParamsRejectsInvalid(t *testing.T) {
	cases := []struct {
		name  string
		mod   func(*Spec)
		field string
	}{
		{"zero mass", func(s *Spec) { s.Vehicle = vehicle.Manual(0) }, "vehicle"},
		{"negative mass", func(s *Spec) { s.Vehicle = vehicle.Manual(-100) }, "vehicle"},
		{"override out of range", func(s *Spec) { s.Friction = FixedFriction{Mu: 1.5} }, "friction override"},
		{"zero reaction", func(s *Spec) { s.ReactionTime = 0 }, "reaction time"},
		{"nan reaction", func(s *Spec) { s.ReactionTime = math.NaN() }, "reaction time"},
		{"missing friction", func(s *Spec) { s.Friction = nil }, "friction"},
		{"unknown surface", func(s *Spec) { s.Friction = ComputedFriction{Surface: "lava", Base: 1, TyreModifier: 1, ABSFactor: 1} }, "surface"},
		{"slope without direction", func(s *Spec) { s.Slope = conditions.Slope{Magnitude: conditions.SlopeSteep} }, "slope"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := manualSpec()
			tc.mod(&s)
			_, err := NewParams(s)
			if !errors.Is(err, ErrInvalidParameter) {
				t.Fatalf("err = %v, want ErrInvalidParameter", err)
			}
			var pe *ParamError
			if !errors.As(err, &pe) || pe.Field != tc.field {
				t.Fatalf("ParamError field = %+v, want %q", pe, tc.field)
			}
		})
	}
}

func TestParamsAreIsolatedFromCaller(t *testing.T) {
	s := presetSpec(t)
	p := mustParams(t, s)
	before, _ := TotalStoppingDistance(80, p)

	*s.Vehicle.DragCoefficient = 5
	spec := p.Spec()
	*spec.Vehicle.DragCoefficient = 5

	after, _ := TotalStoppingDistance(80, p)
	if before != after {
		t.Fatalf("params changed through caller pointers: %v -> %v", before, after)
	}
}

func TestTotalStoppingDistanceMonotonicInSpeed(t *testing.T) {
	p := mustParams(t, manualSpec())
	prev := -1.0
	for kmh := 0.0; kmh <= 200; kmh += 5 {
		d, err := TotalStoppingDistance(kmh, p)
		if err != nil {
			t.Fatalf("speed %v: %v", kmh, err)
		}
		if !(d > prev) && kmh > 0 {
			t.Fatalf("distance not increasing at %v km/h: %v after %v", kmh, d, prev)
		}
		prev = d
	}
}

func TestTotalStoppingDistanceComposition(t *testing.T) {
	s := manualSpec()
	s.Friction = FixedFriction{Mu: 0.7}
	p := mustParams(t, s)

	got, err := TotalStoppingDistance(72, p) // 20 m/s
	if err != nil {
		t.Fatalf("TotalStoppingDistance: %v", err)
	}
	want := 20*1.0 + 20*20/(2*9.81*0.7)
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("total = %v, want %v", got, want)
	}
}

func TestWetExceedsDry(t *testing.T) {
	dry := mustParams(t, manualSpec())
	wet, err := dry.With(func(s *Spec) {
		s.Friction = Computed(conditions.SurfaceWetAsphalt, conditions.TyreGood, conditions.ABSNone)
	})
	if err != nil {
		t.Fatalf("With: %v", err)
	}
	dd, _ := TotalStoppingDistance(60, dry)
	wd, _ := TotalStoppingDistance(60, wet)
	if !(wd > dd) {
		t.Fatalf("wet %v should exceed dry %v", wd, dd)
	}
}

func TestTiredExceedsNotTired(t *testing.T) {
	alert := mustParams(t, presetSpec(t))
	tired, err := alert.With(func(s *Spec) { s.ReactionTime = conditions.ReactionTired.Seconds() })
	if err != nil {
		t.Fatalf("With: %v", err)
	}
	ad, _ := TotalStoppingDistance(60, alert)
	td, _ := TotalStoppingDistance(60, tired)
	if !(td > ad) {
		t.Fatalf("tired %v should exceed alert %v", td, ad)
	}
}

func TestAeroShortensPresetBraking(t *testing.T) {
	preset := mustParams(t, presetSpec(t))
	manual, err := preset.With(func(s *Spec) { s.Vehicle = vehicle.Manual(s.Vehicle.MassKg) })
	if err != nil {
		t.Fatalf("With: %v", err)
	}
	pr, _ := Calculate(110, preset)
	mr, _ := Calculate(110, manual)
	if pr.Model != "aero" || mr.Model != "friction" {
		t.Fatalf("models = %q/%q, want aero/friction", pr.Model, mr.Model)
	}
	if !(pr.BrakingDistance < mr.BrakingDistance) {
		t.Fatalf("aero braking %v should be shorter than friction-only %v", pr.BrakingDistance, mr.BrakingDistance)
	}
}

func TestSlopeOrdering(t *testing.T) {
	base := mustParams(t, manualSpec())
	dist := func(sl conditions.Slope) float64 {
		p, err := base.With(func(s *Spec) { s.Slope = sl })
		if err != nil {
			t.Fatalf("With: %v", err)
		}
		d, err := TotalStoppingDistance(70, p)
		if err != nil {
			t.Fatalf("%s: %v", sl.Label(), err)
		}
		return d
	}
	up := dist(conditions.Slope{Magnitude: conditions.SlopeModerate, Direction: conditions.Incline})
	flat := dist(conditions.Flat)
	down := dist(conditions.Slope{Magnitude: conditions.SlopeModerate, Direction: conditions.Decline})
	if !(up < flat && flat < down) {
		t.Fatalf("want incline < flat < decline, got %v, %v, %v", up, flat, down)
	}
}

func TestUndefinedStoppingIsSignalled(t *testing.T) {
	cases := []struct {
		name string
		mod  func(*Spec)
	}{
		{"abs zero", func(s *Spec) {
			s.Friction = Computed(conditions.SurfaceDryAsphalt, conditions.TyrePoor, 0)
		}},
		{"tyre zero", func(s *Spec) {
			s.Friction = ComputedFriction{Base: 0.85, TyreModifier: 0, ABSFactor: 1}
		}},
		{"steep decline on ice", func(s *Spec) {
			s.Friction = Computed(conditions.SurfaceIce, conditions.TyrePoor, conditions.ABSNone)
			s.Slope = conditions.Slope{Magnitude: conditions.SlopeSteep, Direction: conditions.Decline}
		}},
		{"overflowing drag", func(s *Spec) {
			huge := 1e308
			s.Vehicle = vehicle.Profile{Name: "brick", MassKg: 1000, DragCoefficient: &huge, FrontalArea: &huge}
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := manualSpec()
			tc.mod(&s)
			p := mustParams(t, s)

			d, err := TotalStoppingDistance(50, p)
			if !errors.Is(err, ErrUndefinedStopping) {
				t.Fatalf("err = %v, want ErrUndefinedStopping", err)
			}
			if d != 0 {
				t.Fatalf("distance = %v, want 0 alongside the error", d)
			}

			r, err := Calculate(50, p)
			if err != nil {
				t.Fatalf("Calculate should report through status, got err %v", err)
			}
			if r.Defined() || r.Reason == "" {
				t.Fatalf("result = %+v, want undefined with reason", r)
			}
			if math.IsInf(r.TotalDistance, 0) || math.IsNaN(r.TotalDistance) {
				t.Fatalf("non-finite distance leaked: %v", r.TotalDistance)
			}
		})
	}
}

func TestCalculateRejectsBadSpeed(t *testing.T) {
	p := mustParams(t, manualSpec())
	for _, s := range []float64{-1, math.NaN(), math.Inf(1)} {
		if _, err := Calculate(s, p); !errors.Is(err, ErrInvalidParameter) {
			t.Fatalf("speed %v err = %v, want ErrInvalidParameter", s, err)
		}
	}
	if _, err := TotalStoppingDistance(50, Params{}); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("zero Params err = %v, want ErrInvalidParameter", err)
	}
}

func TestCalculateBreakdown(t *testing.T) {
	p := mustParams(t, manualSpec())
	r, err := Calculate(90, p)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if r.Status != StatusOK || r.Model != "friction" {
		t.Fatalf("unexpected status/model: %+v", r)
	}
	if math.Abs(r.SpeedMs-25) > 1e-9 {
		t.Fatalf("SpeedMs = %v, want 25", r.SpeedMs)
	}
	if r.TotalDistance != r.ReactionDistance+r.BrakingDistance {
		t.Fatalf("total %v != reaction %v + braking %v", r.TotalDistance, r.ReactionDistance, r.BrakingDistance)
	}
	if want := 25 / (9.81 * 0.85); math.Abs(r.BrakingTime-want) > 1e-9 {
		t.Fatalf("BrakingTime = %v, want %v", r.BrakingTime, want)
	}
	if r.TotalTime != r.ReactionTime+r.BrakingTime {
		t.Fatalf("TotalTime = %v", r.TotalTime)
	}
}

func TestProfileEndsAtCalculatedDistance(t *testing.T) {
	p := mustParams(t, presetSpec(t))
	samples, err := Profile(60, p, 0.01)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	r, _ := Calculate(60, p)
	last := samples[len(samples)-1]
	if last.SpeedKmh != 0 {
		t.Fatalf("final speed = %v km/h, want 0", last.SpeedKmh)
	}
	if math.Abs(last.DistanceM-r.TotalDistance) > 0.05 {
		t.Fatalf("profile distance %v, calculated %v", last.DistanceM, r.TotalDistance)
	}
	for _, smp := range samples {
		if smp.Time >= r.ReactionTime {
			break
		}
		if smp.SpeedKmh != 60 {
			t.Fatalf("speed at t=%v = %v km/h, want 60 before braking", smp.Time, smp.SpeedKmh)
		}
	}
}

func TestProfileErrors(t *testing.T) {
	p := mustParams(t, manualSpec())
	if _, err := Profile(60, p, 0); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("dt=0 err = %v, want ErrInvalidParameter", err)
	}
	for _, dt := range []float64{1e-6, -0.1, math.NaN(), math.Inf(1)} {
		if _, err := Profile(60, p, dt); !errors.Is(err, ErrInvalidParameter) {
			t.Fatalf("dt=%v err = %v, want ErrInvalidParameter", dt, err)
		}
	}
	if _, err := Profile(60, p, 1e-3); err != nil {
		t.Fatalf("dt at the floor: %v", err)
	}
	s := manualSpec()
	s.Friction = Computed(conditions.SurfaceIce, conditions.TyrePoor, conditions.ABSNone)
	s.Slope = conditions.Slope{Magnitude: conditions.SlopeSteep, Direction: conditions.Decline}
	if _, err := Profile(60, mustParams(t, s), 0.1); !errors.Is(err, ErrUndefinedStopping) {
		t.Fatalf("steep ice err = %v, want ErrUndefinedStopping", err)
	}
}
