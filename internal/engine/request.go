package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cxd309/stopping-engine/internal/conditions"
	"github.com/cxd309/stopping-engine/internal/logging"
	"github.com/cxd309/stopping-engine/internal/vehicle"
)

// VehicleRequest selects a preset car or a manual mass. Exactly one must be set.
type VehicleRequest struct {
	Preset string  `json:"preset,omitempty"`
	MassKg float64 `json:"mass_kg,omitempty"`
}

// Request is the JSON-serialisable input to the engine: one fully specified
// calculation plus optional sweep and profile output. Empty condition names
// take the defaults dry-asphalt, decent tyres, no ABS, not tired, and flat.
type Request struct {
	RunID            string           `json:"run_id,omitempty"`
	Vehicle          VehicleRequest   `json:"vehicle"`
	Surface          string           `json:"surface,omitempty"`
	FrictionOverride *float64         `json:"friction_override,omitempty"`
	Tyre             string           `json:"tyre,omitempty"`
	ABSFactor        *float64         `json:"abs_factor,omitempty"`
	Reaction         string           `json:"reaction,omitempty"`
	ReactionTimeS    *float64         `json:"reaction_time_s,omitempty"`
	Slope            conditions.Slope `json:"slope"`
	SpeedKmh         float64          `json:"speed_kmh"`
	Sweep            bool             `json:"sweep,omitempty"`
	ProfileDt        float64          `json:"profile_dt,omitempty"` // seconds; 0 = no profile
}

// Summary echoes the resolved inputs of a run.
type Summary struct {
	Vehicle      string  `json:"vehicle"`
	MassKg       float64 `json:"mass_kg"`
	Friction     string  `json:"friction"`
	Mu           float64 `json:"mu_eff"`
	ReactionTime float64 `json:"reaction_time_s"`
	Slope        string  `json:"slope"`
	SpeedKmh     float64 `json:"speed_kmh"`
}

// Response is the JSON-serialisable output of a run.
type Response struct {
	RunID   string          `json:"run_id"`
	Summary Summary         `json:"summary"`
	Result  Result          `json:"result"`
	Sweep   *SweepResult    `json:"sweep,omitempty"`
	Profile []ProfileSample `json:"profile,omitempty"`
}

// Params resolves the request into a validated parameter record.
func (r Request) Params() (Params, error) {
	prof, err := r.Vehicle.resolve()
	if err != nil {
		return Params{}, err
	}

	var friction Friction
	if r.FrictionOverride != nil {
		friction = FixedFriction{Mu: *r.FrictionOverride}
	} else {
		surface := conditions.SurfaceDryAsphalt
		if r.Surface != "" {
			if surface, err = conditions.ParseSurface(r.Surface); err != nil {
				return Params{}, invalid("surface", r.Surface, err.Error())
			}
		}
		tyre := conditions.TyreDecent
		if r.Tyre != "" {
			if tyre, err = conditions.ParseTyre(r.Tyre); err != nil {
				return Params{}, invalid("tyre", r.Tyre, err.Error())
			}
		}
		abs := conditions.ABSNone
		if r.ABSFactor != nil {
			abs = *r.ABSFactor
		}
		friction = Computed(surface, tyre, abs)
	}

	reaction := conditions.ReactionNotTired.Seconds()
	switch {
	case r.ReactionTimeS != nil:
		reaction = *r.ReactionTimeS
	case r.Reaction != "":
		rp, err := conditions.ParseReaction(r.Reaction)
		if err != nil {
			return Params{}, invalid("reaction", r.Reaction, err.Error())
		}
		reaction = rp.Seconds()
	}

	return NewParams(Spec{
		Label:        prof.Name,
		Vehicle:      prof,
		Friction:     friction,
		ReactionTime: reaction,
		Slope:        r.Slope,
	})
}

func (v VehicleRequest) resolve() (vehicle.Profile, error) {
	switch {
	case v.Preset != "" && v.MassKg != 0:
		return vehicle.Profile{}, invalid("vehicle", v.Preset, "preset and mass_kg are mutually exclusive")
	case v.Preset != "":
		p, err := vehicle.Lookup(v.Preset)
		if err != nil {
			return vehicle.Profile{}, invalid("vehicle", v.Preset, err.Error())
		}
		return p, nil
	case v.MassKg != 0:
		return vehicle.Manual(v.MassKg), nil
	}
	return vehicle.Profile{}, invalid("vehicle", "", "preset or mass_kg is required")
}

// Run executes a request: the single calculation, then the comparison sweep and
// profile when asked for. Undefined stopping is reported in Result.Status and
// leaves sweep and profile to mark their own gaps.
func (g *Generator) Run(ctx context.Context, req Request) (Response, error) {
	if req.RunID != "" {
		ctx = logging.ContextWithRunID(ctx, req.RunID)
	}
	ctx, log := logging.WithRunLogger(ctx, g.log)
	runID := logging.RunIDFromContext(ctx)

	if !(req.SpeedKmh > 0) {
		return Response{RunID: runID}, invalid("speed", req.SpeedKmh, "baseline speed must be positive")
	}
	if req.ProfileDt != 0 {
		if err := checkProfileStep(req.ProfileDt); err != nil {
			return Response{RunID: runID}, err
		}
	}
	p, err := req.Params()
	if err != nil {
		return Response{RunID: runID}, err
	}

	res, err := Calculate(req.SpeedKmh, p)
	if err != nil {
		return Response{RunID: runID}, err
	}
	if !res.Defined() {
		log.Warn(ctx, "vehicle cannot stop", logging.String("reason", res.Reason))
	}

	spec := p.Spec()
	out := Response{
		RunID: runID,
		Summary: Summary{
			Vehicle:      spec.Vehicle.Name,
			MassKg:       spec.Vehicle.MassKg,
			Friction:     spec.Friction.describe(),
			Mu:           res.Mu,
			ReactionTime: spec.ReactionTime,
			Slope:        spec.Slope.Label(),
			SpeedKmh:     req.SpeedKmh,
		},
		Result: res,
	}

	if req.Sweep {
		sw, err := (&Generator{log: log, recorder: g.recorder}).compare(ctx, req.SpeedKmh, p, req.ProfileDt)
		if err != nil {
			return out, fmt.Errorf("comparison sweep: %w", err)
		}
		out.Sweep = &sw
	}

	if req.ProfileDt != 0 && res.Defined() {
		prof, err := Profile(req.SpeedKmh, p, req.ProfileDt)
		if err != nil && !errors.Is(err, ErrUndefinedStopping) {
			return out, fmt.Errorf("profile: %w", err)
		}
		out.Profile = prof
	}

	log.Info(ctx, "calculation complete",
		logging.String("vehicle", spec.Vehicle.Name),
		logging.String("status", string(res.Status)),
		logging.Float("total_distance_m", res.TotalDistance),
	)
	return out, nil
}

// RunJSON is the primary entry point for the CLI and WASM targets.
// It accepts a JSON-encoded Request and returns a JSON-encoded Response.
func RunJSON(jsonInput string) (string, error) {
	var req Request
	if err := json.Unmarshal([]byte(jsonInput), &req); err != nil {
		return "", fmt.Errorf("invalid input JSON: %w", err)
	}

	resp, err := NewGenerator().Run(context.Background(), req)
	if err != nil {
		return "", err
	}

	out, err := json.Marshal(resp)
	if err != nil {
		return "", fmt.Errorf("marshaling output: %w", err)
	}
	return string(out), nil
}
