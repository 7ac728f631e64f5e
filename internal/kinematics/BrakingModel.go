// Package kinematics defines the BrakingModel interface for road-vehicle braking
// physics, along with built-in implementations and unit helpers.
//
// Adding a new physics model requires only implementing BrakingModel; the engine
// selects a model per vehicle and never depends on a concrete type.
package kinematics

import "errors"

const (
	// G is standard gravitational acceleration, m/s².
	G = 9.81
	// AirDensity is sea-level air density, kg/m³.
	AirDensity = 1.225
)

// ErrNoDeceleration is returned when the net braking deceleration is not
// positive, so the vehicle can never come to rest.
var ErrNoDeceleration = errors.New("kinematics: net deceleration is not positive")

// BrakingModel is the physics contract every braking implementation must satisfy.
// All distance values are in metres, velocities in m/s, and time in seconds.
type BrakingModel interface {
	// Deceleration returns the magnitude of braking deceleration at velocity v (m/s²).
	// A non-positive value means the vehicle cannot stop.
	Deceleration(v float64) float64

	// BrakingDistance returns the distance needed to stop from velocity v.
	// Returns ErrNoDeceleration when the vehicle cannot stop.
	BrakingDistance(v float64) (float64, error)

	// BrakingTime returns the time needed to stop from velocity v.
	BrakingTime(v float64) (float64, error)

	// DecelerateStep brakes the vehicle over dt seconds.
	// Handles mid-step transitions: if the vehicle stops before dt expires the
	// returned velocity is exactly 0.
	// Returns (distance travelled, new velocity).
	DecelerateStep(v, dt float64) (dist, newV float64)
}
