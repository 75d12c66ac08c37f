// Package geometry provides the grid primitives the rest of the
// planner builds on: coordinates, Manhattan distance, and corridor
// side classification (§4.1).
package geometry

import (
	"strings"

	"github.com/ch0002ic/balanced-corridor-planner/constants"
)

// Side identifies which corridor half of the terminal a cell or yard
// belongs to.
type Side int

const (
	West Side = iota
	East
)

func (s Side) String() string {
	if s == West {
		return "west"
	}
	return "east"
}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == West {
		return East
	}
	return West
}

// Coordinate is an integer grid cell.
type Coordinate struct {
	X, Y int
}

// Manhattan returns the L1 distance between two coordinates.
func Manhattan(a, b Coordinate) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// CorridorSide classifies a coordinate by its x position (§4.1).
func CorridorSide(c Coordinate) Side {
	if c.X <= constants.CorridorSplitX {
		return West
	}
	return East
}

// YardSide classifies a yard by its leading letter: west for
// {A,B,C,D}, east otherwise (§4.1). Yard names carry a "YD_" block
// prefix ahead of that letter, so it is stripped first; a name with
// nothing after the prefix, or an empty name, is treated as east
// (never matches a west initial).
func YardSide(yardName string) Side {
	name := strings.TrimPrefix(yardName, "YD_")
	if len(name) == 0 {
		return East
	}
	switch name[0] {
	case 'A', 'B', 'C', 'D':
		return West
	default:
		return East
	}
}
