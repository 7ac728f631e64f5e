package kinematics

import "math"

// KmhToMs converts km/h to m/s.
func KmhToMs(kmh float64) float64 { return kmh / 3.6 }

// MsToKmh converts m/s to km/h.
func MsToKmh(ms float64) float64 { return ms * 3.6 }

// ReactionDistance is the distance covered at constant speed v (m/s) during
// reactionTime seconds before the brakes are applied.
func ReactionDistance(v, reactionTime float64) float64 { return v * reactionTime }

// GradeAngle converts a signed road grade in percent (positive = uphill in the
// direction of travel) to a signed angle in radians.
func GradeAngle(gradePercent float64) float64 { return math.Atan(gradePercent / 100) }
