// Package units provides shared constants and validation for the angle and
// distance units accepted on the command line and shown in reports.
package units

import "math"

// Angle unit constants
const (
	Radians = "rad"
	Degrees = "deg"
)

// Distance unit constants
const (
	Meters = "m"
	Feet   = "ft"
)

// ValidAngleUnits contains all valid angle unit values.
var ValidAngleUnits = []string{Radians, Degrees}

// ValidDistanceUnits contains all valid distance unit values.
var ValidDistanceUnits = []string{Meters, Feet}

// IsValidAngleUnit checks if the given unit is a known angle unit.
func IsValidAngleUnit(unit string) bool {
	for _, u := range ValidAngleUnits {
		if unit == u {
			return true
		}
	}
	return false
}

// IsValidDistanceUnit checks if the given unit is a known distance unit.
func IsValidDistanceUnit(unit string) bool {
	for _, u := range ValidDistanceUnits {
		if unit == u {
			return true
		}
	}
	return false
}

// ToRadians converts an angle in the given unit to radians. The engine works
// in radians internally; scan logs may record degrees.
func ToRadians(value float64, unit string) float64 {
	switch unit {
	case Degrees:
		return value * math.Pi / 180
	default:
		return value
	}
}

// FromRadians converts an angle in radians to the target unit.
func FromRadians(value float64, targetUnit string) float64 {
	switch targetUnit {
	case Degrees:
		return value * 180 / math.Pi
	default:
		return value
	}
}

// ConvertDistance converts a distance from meters to the target units.
// The engine and the store keep distances in meters.
func ConvertDistance(meters float64, targetUnits string) float64 {
	switch targetUnits {
	case Feet:
		return meters * 3.28084 // meters to feet
	default:
		return meters
	}
}
