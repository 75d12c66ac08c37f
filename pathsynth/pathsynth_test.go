package pathsynth

import (
	"errors"
	"testing"

	"github.com/ch0002ic/balanced-corridor-planner/geometry"
	"github.com/ch0002ic/balanced-corridor-planner/sectormap"
)

func testSectors() sectormap.Snapshot {
	return sectormap.NewStaticSnapshot(
		map[string]sectormap.Info{
			"QC01": {In: geometry.Coordinate{X: 10, Y: 4}, Out: geometry.Coordinate{X: 30, Y: 4}},
		},
		map[string]sectormap.Info{
			"YD_A": {In: geometry.Coordinate{X: 5, Y: 12}, Out: geometry.Coordinate{X: 5, Y: 12}},
		},
	)
}

func assertOrthogonal(t *testing.T, path []geometry.Coordinate) {
	t.Helper()
	if len(path) == 0 {
		t.Fatal("path must be non-empty")
	}
	for i := 1; i < len(path); i++ {
		if geometry.Manhattan(path[i-1], path[i]) != 1 {
			t.Fatalf("path[%d]=%v and path[%d]=%v are not orthogonally adjacent", i-1, path[i-1], i, path[i])
		}
	}
}

func TestBuildersOrthogonalAdjacency(t *testing.T) {
	sectors := testSectors()
	s := New(sectors, false)

	buffers := []geometry.Coordinate{
		{X: 20, Y: 7},
		{X: 1, Y: 7},
		{X: 42, Y: 7},
		{X: 10, Y: 4},
	}

	for _, buf := range buffers {
		p, err := s.BufferToQCIn(buf, "QC01")
		if err != nil {
			t.Fatalf("BufferToQCIn(%v): %v", buf, err)
		}
		assertOrthogonal(t, p)
		if p[0] != buf {
			t.Errorf("BufferToQCIn(%v): first cell = %v, want buffer", buf, p[0])
		}
		if last := p[len(p)-1]; last != (geometry.Coordinate{X: 10, Y: 4}) {
			t.Errorf("BufferToQCIn(%v): last cell = %v, want qc.in", buf, last)
		}

		p, err = s.BufferToYardIn(buf, "YD_A")
		if err != nil {
			t.Fatalf("BufferToYardIn(%v): %v", buf, err)
		}
		assertOrthogonal(t, p)

		p, err = s.YardOutToBuffer(buf, "YD_A")
		if err != nil {
			t.Fatalf("YardOutToBuffer(%v): %v", buf, err)
		}
		assertOrthogonal(t, p)
		if last := p[len(p)-1]; last != buf {
			t.Errorf("YardOutToBuffer(%v): last cell = %v, want buffer", buf, last)
		}

		p, err = s.QCOutToBuffer(buf, "QC01")
		if err != nil {
			t.Fatalf("QCOutToBuffer(%v): %v", buf, err)
		}
		assertOrthogonal(t, p)
		if last := p[len(p)-1]; last != buf {
			t.Errorf("QCOutToBuffer(%v): last cell = %v, want buffer", buf, last)
		}
	}
}

func TestUnknownSectorFails(t *testing.T) {
	s := New(testSectors(), false)
	buf := geometry.Coordinate{X: 20, Y: 7}

	if _, err := s.BufferToQCIn(buf, "QC99"); !errors.Is(err, ErrUnknownSector) {
		t.Errorf("expected ErrUnknownSector, got %v", err)
	}
	if _, err := s.BufferToYardIn(buf, "YD_Z"); !errors.Is(err, ErrUnknownSector) {
		t.Errorf("expected ErrUnknownSector, got %v", err)
	}
}

func TestCacheDisabledStaysEmpty(t *testing.T) {
	s := New(testSectors(), false)
	buf := geometry.Coordinate{X: 20, Y: 7}

	if _, err := s.BufferToQCIn(buf, "QC01"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.BufferToQCIn(buf, "QC01"); err != nil {
		t.Fatal(err)
	}
	if got := s.CacheLen(); got != 0 {
		t.Errorf("cache should stay empty when disabled, got %d entries", got)
	}
}

func TestCacheHitReturnsUnaliasedEqualPath(t *testing.T) {
	s := New(testSectors(), true)
	buf := geometry.Coordinate{X: 20, Y: 7}

	first, err := s.BufferToQCIn(buf, "QC01")
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.BufferToQCIn(buf, "QC01")
	if err != nil {
		t.Fatal(err)
	}

	if len(first) != len(second) {
		t.Fatalf("cache hit produced different length path: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("cache hit diverged at index %d: %v vs %v", i, first[i], second[i])
		}
	}

	second[0] = geometry.Coordinate{X: -1, Y: -1}
	third, err := s.BufferToQCIn(buf, "QC01")
	if err != nil {
		t.Fatal(err)
	}
	if third[0] == (geometry.Coordinate{X: -1, Y: -1}) {
		t.Fatal("mutating a returned path leaked into the cached canonical copy")
	}

	if got := s.CacheLen(); got != 1 {
		t.Errorf("expected 1 cache entry, got %d", got)
	}
}

func TestEdgePolicyEmptyRangeCollapses(t *testing.T) {
	s := New(testSectors(), false)
	buf := geometry.Coordinate{X: 1, Y: 4}

	p, err := s.BufferToQCIn(buf, "QC01")
	if err != nil {
		t.Fatal(err)
	}
	assertOrthogonal(t, p)
	if p[0] != buf {
		t.Errorf("first cell = %v, want buffer %v", p[0], buf)
	}
}
