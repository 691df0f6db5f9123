package ausgrid

import (
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/golang/geo/s2"
)

// coverageIndex finds the grids whose area of use contains a location.
type coverageIndex struct {
	rtree *rtreego.Rtree
}

type coverageEntry struct {
	grid *Grid
	rect rtreego.Rect
}

// Bounds implements rtreego.Spatial.
func (e coverageEntry) Bounds() rtreego.Rect {
	return e.rect
}

var coverage *coverageIndex

func newCoverageIndex(gs []*Grid) (*coverageIndex, error) {
	rtree := rtreego.NewTree(2, 2, 8)
	for _, g := range gs {
		ext := g.Extent
		rect, err := rtreego.NewRect(
			rtreego.Point{ext.MinLng, ext.MinLat},
			[]float64{ext.MaxLng - ext.MinLng, ext.MaxLat - ext.MinLat},
		)
		if err != nil {
			return nil, err
		}
		rtree.Insert(coverageEntry{grid: g, rect: rect})
	}
	return &coverageIndex{rtree: rtree}, nil
}

// GridsCovering returns the registered grids whose area of use contains the
// location (decimal degrees), ordered by grid code.
func GridsCovering(lat, lng float64) []*Grid {
	// zero-size rectangles are rejected by rtreego
	const pad = 1e-9
	rect, err := rtreego.NewRect(rtreego.Point{lng - pad, lat - pad}, []float64{2 * pad, 2 * pad})
	if err != nil {
		return nil
	}
	ll := s2.LatLngFromDegrees(lat, lng)
	var out []*Grid
	for _, s := range coverage.rtree.SearchIntersect(rect) {
		// the padded query may touch an extent the point is outside of
		if g := s.(coverageEntry).grid; g.Covers(ll) {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
