package ausgrid

import (
	"fmt"
	"math"
	"sort"

	"github.com/golang/geo/s2"
)

// GridKind selects the projection used by a grid.
type GridKind int

// Grid kinds
const (
	KindInvalid GridKind = iota
	KindTransverseMercator
	KindLambertConic
	KindGridReference
)

func (k GridKind) String() string {
	switch k {
	case KindTransverseMercator:
		return "transverse mercator"
	case KindLambertConic:
		return "lambert conformal conic"
	case KindGridReference:
		return "grid reference"
	}
	return "invalid"
}

// ZonedConstants are the constants of a UTM-style grid of equal-width zones.
// Zone numbers and central meridians are derived from them.
type ZonedConstants struct {
	FalseEasting         float64 // E0, metres
	FalseNorthing        float64 // N0, metres
	CentralScaleFactor   float64 // m0
	ZoneWidth            float64 // degrees of longitude
	CentralMeridianZone1 float64 // degrees
	EPSGBase             int     // zone CRS codes are EPSGBase*100 + zone
}

// westEdge is the western edge of zone 0.
func (z *ZonedConstants) westEdge() float64 {
	return z.CentralMeridianZone1 - 1.5*z.ZoneWidth
}

// Zones returns the number of zones around the globe.
func (z *ZonedConstants) Zones() int {
	return int(math.Round(360 / z.ZoneWidth))
}

// Zone returns the zone containing the longitude lng (degrees). Each zone
// covers [west, east): a longitude on an eastern edge belongs to the next zone.
func (z *ZonedConstants) Zone(lng float64) int {
	return int(math.Floor((lng - z.westEdge()) / z.ZoneWidth))
}

// CentralMeridian returns the central meridian (degrees) of a zone.
func (z *ZonedConstants) CentralMeridian(zone int) float64 {
	return z.CentralMeridianZone1 + float64(zone-1)*z.ZoneWidth
}

// ConicConstants are the constants of a Lambert conformal conic grid. Angles
// are decimal degrees.
type ConicConstants struct {
	StandardParallel1 float64 // φ1
	StandardParallel2 float64 // φ2
	CentralMeridian   float64 // λ0
	OriginLatitude    float64 // φ0
	FalseEasting      float64 // E0, metres
	FalseNorthing     float64 // N0, metres
}

// ReferenceConstants configure the alphanumeric grid reference codec.
type ReferenceConstants struct {
	// RowOrigin is the northing where the 2,000 km row letter window used to
	// resolve band-less references begins.
	RowOrigin float64
}

// Envelope is the valid rectangle of grid coordinates for points on a grid.
type Envelope struct {
	MinEasting, MaxEasting   float64
	MinNorthing, MaxNorthing float64
}

// Contains reports whether (e, n) lies inside the closed envelope.
func (v Envelope) Contains(e, n float64) bool {
	return e >= v.MinEasting && e <= v.MaxEasting && n >= v.MinNorthing && n <= v.MaxNorthing
}

// Bounds is a geographic rectangle in decimal degrees.
type Bounds struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// Rect returns the bounds as a closed s2.Rect.
func (b Bounds) Rect() s2.Rect {
	return s2.RectFromLatLng(s2.LatLngFromDegrees(b.MinLat, b.MinLng)).
		AddPoint(s2.LatLngFromDegrees(b.MaxLat, b.MaxLng))
}

// Grid is a projected coordinate system bound to one datum.
type Grid struct {
	Code  string
	Name  string
	Kind  GridKind
	Datum *Datum

	Zoned     *ZonedConstants
	Conic     *ConicConstants
	Reference *ReferenceConstants

	Envelope Envelope
	Extent   Bounds // geographic area of use
	epsg     int    // for grids with a single CRS
}

// Covers reports whether ll lies inside the grid's area of use.
func (g *Grid) Covers(ll s2.LatLng) bool {
	return g.Extent.Rect().ContainsLatLng(ll)
}

// EPSG returns the CRS code of the grid. Zoned grids have one code per zone;
// zone is ignored for single-CRS grids.
func (g *Grid) EPSG(zone int) int {
	if g.Zoned != nil {
		return g.Zoned.EPSGBase*100 + zone
	}
	return g.epsg
}

// CheckZone validates a zone number for a zoned grid.
func (g *Grid) CheckZone(zone int) error {
	if g.Zoned == nil {
		return domainErr("zone", float64(zone), g.Code+" is not a zoned grid")
	}
	if zone < 1 || zone > g.Zoned.Zones() {
		return domainErr("zone", float64(zone), fmt.Sprintf("must be between 1 and %d", g.Zoned.Zones()))
	}
	return nil
}

func (g *Grid) String() string {
	if g == nil {
		return "<nil grid>"
	}
	return g.Code
}

func (g *Grid) datum() *Datum {
	if g == nil {
		return nil
	}
	return g.Datum
}

func (g *Grid) targetName() string {
	return g.Code
}

// Supported grids.
var (
	MGA94     *Grid
	MGA2020   *Grid
	VICGRID   *Grid
	VICGRID94 *Grid
	MGRS      *Grid
)

var grids = map[string]*Grid{}

func registerGrid(g *Grid) *Grid {
	grids[g.Code] = g
	return g
}

// LookupGrid returns the registered grid with the given code.
func LookupGrid(code string) (*Grid, bool) {
	g, ok := grids[code]
	return g, ok
}

// Grids returns every registered grid ordered by code.
func Grids() []*Grid {
	out := make([]*Grid, 0, len(grids))
	for _, g := range grids {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

func mgaConstants(epsgBase int) *ZonedConstants {
	return &ZonedConstants{
		FalseEasting:         500000,
		FalseNorthing:        10000000,
		CentralScaleFactor:   0.9996,
		ZoneWidth:            6,
		CentralMeridianZone1: -177,
		EPSGBase:             epsgBase,
	}
}

func vicgridConstants(falseNorthing float64) *ConicConstants {
	return &ConicConstants{
		StandardParallel1: -36,
		StandardParallel2: -38,
		CentralMeridian:   145,
		OriginLatitude:    -37,
		FalseEasting:      2500000,
		FalseNorthing:     falseNorthing,
	}
}
