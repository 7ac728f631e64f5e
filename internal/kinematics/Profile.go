package kinematics

import (
	"errors"
	"math"
)

const (
	// MaxProfileTime caps a braking trace, seconds.
	MaxProfileTime = 300.0
	// StopSpeed is the speed below which a trace treats the vehicle as stopped, m/s.
	StopSpeed = 0.01
	// MinProfileStep is the finest timestep a trace accepts, seconds.
	MinProfileStep = 1e-3
	// MaxProfilePoints bounds the length of a single trace.
	MaxProfilePoints = 100_000
)

var (
	// ErrInvalidStep is returned when a profile is requested with a timestep
	// below MinProfileStep.
	ErrInvalidStep = errors.New("kinematics: timestep below minimum")
	// ErrProfileTooLong is returned when a trace would exceed MaxProfilePoints.
	ErrProfileTooLong = errors.New("kinematics: profile would exceed the point limit")
)

// ProfilePoint is one sample of a stopping trace.
type ProfilePoint struct {
	Time     float64 `json:"t"`          // seconds since the hazard appeared
	Distance float64 `json:"distance_m"` // metres travelled so far
	Speed    float64 `json:"speed_ms"`   // m/s
}

// Profile samples distance and speed every dt seconds from the moment a hazard
// appears: a constant-speed reaction phase, then braking under m until the
// vehicle stops. The final point has zero speed unless MaxProfileTime is
// reached first.
func Profile(m BrakingModel, v0, reactionTime, dt float64) ([]ProfilePoint, error) {
	if !(dt >= MinProfileStep) {
		return nil, ErrInvalidStep
	}
	tb, err := m.BrakingTime(v0)
	if err != nil {
		return nil, err
	}
	if n := (reactionTime + math.Min(tb, MaxProfileTime)) / dt; !(n < MaxProfilePoints) {
		return nil, ErrProfileTooLong
	}

	var (
		points []ProfilePoint
		t, x   float64
		v      = v0
	)

	// Reaction phase: no deceleration.
	for t < reactionTime {
		points = append(points, ProfilePoint{Time: t, Distance: x, Speed: v})
		step := math.Min(dt, reactionTime-t)
		x += v * step
		t += step
	}

	// Braking phase.
	for {
		if v <= StopSpeed {
			points = append(points, ProfilePoint{Time: t, Distance: x, Speed: 0})
			break
		}
		points = append(points, ProfilePoint{Time: t, Distance: x, Speed: v})
		if t >= reactionTime+MaxProfileTime {
			break
		}
		dist, newV := m.DecelerateStep(v, dt)
		x += dist
		v = newV
		t += dt
	}
	return points, nil
}
