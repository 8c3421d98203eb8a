package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Center represents the map center coordinate.
type Center struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CoordinateParseError indicates the center input did not parse as a
// "latitude, longitude" pair. This is a user input error.
type CoordinateParseError struct {
	Input string
}

func (e *CoordinateParseError) Error() string {
	return fmt.Sprintf("invalid coordinates %q: expected format \"latitude, longitude\"", e.Input)
}

// ParseCenter parses a "latitude, longitude" string into a Center.
func ParseCenter(input string) (Center, error) {
	parts := strings.Split(input, ",")
	if len(parts) != 2 {
		return Center{}, &CoordinateParseError{Input: input}
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Center{}, &CoordinateParseError{Input: input}
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Center{}, &CoordinateParseError{Input: input}
	}

	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return Center{}, &CoordinateParseError{Input: input}
	}

	return Center{Latitude: lat, Longitude: lon}, nil
}
