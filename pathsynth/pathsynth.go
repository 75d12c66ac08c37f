// Package pathsynth builds the deterministic HT routes described in
// §4.4: four directed, route-kind-specific builders over the fixed
// corridor topology, with optional LRU memoisation keyed by route kind
// and endpoints. Unlike a time-varying flow field, these routes never
// go stale, so the cache is a plain keyed lookup rather than a
// throttled recompute.
package pathsynth

import (
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mitchellh/copystructure"

	"github.com/ch0002ic/balanced-corridor-planner/constants"
	"github.com/ch0002ic/balanced-corridor-planner/geometry"
	"github.com/ch0002ic/balanced-corridor-planner/sectormap"
)

// ErrUnknownSector is returned when the named QC or yard has no
// coordinates in the sector map (§4.4 "Failure").
var ErrUnknownSector = errors.New("pathsynth: unknown sector")

// kind tags which of the four route templates a cache entry holds.
type kind string

const (
	kindBufferToQCIn    kind = "buffer_qc_in"
	kindBufferToYardIn  kind = "buffer_yard_in"
	kindYardOutToBuffer kind = "yard_out_buffer"
	kindQCOutToBuffer   kind = "qc_out_buffer"
)

// Synthesiser constructs HT routes against a sector map, optionally
// memoising them in a bounded LRU (§4.4 "Memoisation").
type Synthesiser struct {
	sectors sectormap.Snapshot
	cache   *lru.Cache[string, []geometry.Coordinate]
	enabled bool
}

// New creates a Synthesiser. enableCache corresponds to the
// path_cache feature flag; when false the cache is never consulted
// and its map stays empty (testable property 4).
func New(sectors sectormap.Snapshot, enableCache bool) *Synthesiser {
	var c *lru.Cache[string, []geometry.Coordinate]
	if enableCache {
		c, _ = lru.New[string, []geometry.Coordinate](constants.PathCacheSize)
	}
	return &Synthesiser{sectors: sectors, cache: c, enabled: enableCache}
}

// CacheLen reports how many entries currently sit in the path cache,
// for tests asserting the "cache stays empty when disabled" property.
func (s *Synthesiser) CacheLen() int {
	if s.cache == nil {
		return 0
	}
	return s.cache.Len()
}

func cacheKey(k kind, endpoint string, buffer geometry.Coordinate) string {
	return fmt.Sprintf("%s|%s|%d|%d", k, endpoint, buffer.X, buffer.Y)
}

// resolve returns a cached path (deep-copied so the caller can never
// mutate the canonical cached slice) or computes and stores a fresh
// one via build.
func (s *Synthesiser) resolve(k kind, endpoint string, buffer geometry.Coordinate, build func() []geometry.Coordinate) []geometry.Coordinate {
	if !s.enabled || s.cache == nil {
		return build()
	}

	key := cacheKey(k, endpoint, buffer)
	if cached, ok := s.cache.Get(key); ok {
		return clonePath(cached)
	}

	fresh := build()
	s.cache.Add(key, fresh)
	return clonePath(fresh)
}

func clonePath(path []geometry.Coordinate) []geometry.Coordinate {
	copied, err := copystructure.Copy(path)
	if err != nil {
		// copystructure.Copy only errors on unsupported kinds; a slice of
		// plain structs never hits that path, so fall back defensively.
		out := make([]geometry.Coordinate, len(path))
		copy(out, path)
		return out
	}
	return copied.([]geometry.Coordinate)
}

// BufferToQCIn builds the buffer -> QC(in) route (§4.4 route 1).
func (s *Synthesiser) BufferToQCIn(buffer geometry.Coordinate, qcName string) ([]geometry.Coordinate, error) {
	qc, ok := s.sectors.QC(qcName)
	if !ok {
		return nil, fmt.Errorf("%w: QC %q", ErrUnknownSector, qcName)
	}
	return s.resolve(kindBufferToQCIn, qcName, buffer, func() []geometry.Coordinate {
		return buildBufferToQCIn(buffer, qc.In)
	}), nil
}

// BufferToYardIn builds the buffer -> yard(in) route (§4.4 route 2).
func (s *Synthesiser) BufferToYardIn(buffer geometry.Coordinate, yardName string) ([]geometry.Coordinate, error) {
	yard, ok := s.sectors.Yard(yardName)
	if !ok {
		return nil, fmt.Errorf("%w: yard %q", ErrUnknownSector, yardName)
	}
	return s.resolve(kindBufferToYardIn, yardName, buffer, func() []geometry.Coordinate {
		return buildBufferToYardIn(buffer, yard.In)
	}), nil
}

// YardOutToBuffer builds the yard(out) -> buffer route (§4.4 route 3).
func (s *Synthesiser) YardOutToBuffer(buffer geometry.Coordinate, yardName string) ([]geometry.Coordinate, error) {
	yard, ok := s.sectors.Yard(yardName)
	if !ok {
		return nil, fmt.Errorf("%w: yard %q", ErrUnknownSector, yardName)
	}
	return s.resolve(kindYardOutToBuffer, yardName, buffer, func() []geometry.Coordinate {
		return buildYardOutToBuffer(yard.Out, buffer)
	}), nil
}

// QCOutToBuffer builds the QC(out) -> buffer route (§4.4 route 4).
func (s *Synthesiser) QCOutToBuffer(buffer geometry.Coordinate, qcName string) ([]geometry.Coordinate, error) {
	qc, ok := s.sectors.QC(qcName)
	if !ok {
		return nil, fmt.Errorf("%w: QC %q", ErrUnknownSector, qcName)
	}
	return s.resolve(kindQCOutToBuffer, qcName, buffer, func() []geometry.Coordinate {
		return buildQCOutToBuffer(qc.Out, buffer)
	}), nil
}

// appendCell appends c unless it exactly repeats the last appended
// cell, so empty ranges collapse cleanly while the path stays
// orthogonally connected (§4.4 "Edge policies").
func appendCell(path []geometry.Coordinate, c geometry.Coordinate) []geometry.Coordinate {
	if len(path) > 0 && path[len(path)-1] == c {
		return path
	}
	return append(path, c)
}

// hrunTo steps x, one cell at a time, from path's last cell to toX at
// the same y as path's last cell. vrunTo is the vertical equivalent.
// Both degrade to a no-op append when the range is already covered,
// which is how "empty range" segments collapse per the edge policy.
func hrunTo(path []geometry.Coordinate, toX int) []geometry.Coordinate {
	cur := path[len(path)-1]
	step := 1
	if toX < cur.X {
		step = -1
	}
	for x := cur.X; ; x += step {
		path = appendCell(path, geometry.Coordinate{X: x, Y: cur.Y})
		if x == toX {
			return path
		}
	}
}

func vrunTo(path []geometry.Coordinate, toY int) []geometry.Coordinate {
	cur := path[len(path)-1]
	step := 1
	if toY < cur.Y {
		step = -1
	}
	for y := cur.Y; ; y += step {
		path = appendCell(path, geometry.Coordinate{X: cur.X, Y: y})
		if y == toY {
			return path
		}
	}
}

func buildBufferToQCIn(buffer, qcIn geometry.Coordinate) []geometry.Coordinate {
	path := []geometry.Coordinate{buffer}

	path = vrunTo(path, constants.LaneHighwayLeftY)   // move to highway-left lane
	path = hrunTo(path, constants.GridMinX)            // traverse west to x=1
	path = vrunTo(path, constants.LaneQCTravelY)       // climb north through y 6,5,4
	path = hrunTo(path, qcIn.X)                        // traverse east on QC lane
	path = vrunTo(path, qcIn.Y)                        // land on qc_in's row
	path = appendCell(path, qcIn)

	return path
}

func buildBufferToYardIn(buffer, yardIn geometry.Coordinate) []geometry.Coordinate {
	path := []geometry.Coordinate{buffer}

	path = vrunTo(path, constants.LaneQCBufferY)   // step north onto QC lane y=5
	path = hrunTo(path, constants.GridMaxX)         // traverse east to x=42
	path = vrunTo(path, constants.LaneHighwayY)     // descend south through y 6..11
	path = hrunTo(path, constants.GridMinX)         // traverse west to x=1
	path = vrunTo(path, constants.LaneYardApproachY) // step to (1,12)
	path = hrunTo(path, yardIn.X)                   // traverse east on yard-approach lane
	path = vrunTo(path, yardIn.Y)                   // land on yard_in's row
	path = appendCell(path, yardIn)

	return path
}

func buildYardOutToBuffer(yardOut, buffer geometry.Coordinate) []geometry.Coordinate {
	path := []geometry.Coordinate{yardOut}

	path = hrunTo(path, constants.GridMaxX-1)      // traverse east to x=41
	path = vrunTo(path, constants.LaneHighwayLeftY) // climb north through y 11..7
	path = hrunTo(path, buffer.X)                   // traverse west toward buffer
	path = vrunTo(path, buffer.Y)                   // land on buffer's row
	path = appendCell(path, buffer)

	return path
}

func buildQCOutToBuffer(qcOut, buffer geometry.Coordinate) []geometry.Coordinate {
	path := []geometry.Coordinate{qcOut}

	path = vrunTo(path, constants.LaneQCTravelY)    // step south to (qc_out.x, 4)
	path = hrunTo(path, constants.GridMaxX)          // traverse east to x=42
	path = vrunTo(path, constants.LaneHighwayLeftY)  // descend south through y 5,6,7
	path = hrunTo(path, buffer.X)                    // traverse west toward buffer
	path = vrunTo(path, buffer.Y)                    // land on buffer's row
	path = appendCell(path, buffer)

	return path
}
