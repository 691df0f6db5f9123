package ausgrid

import (
	"fmt"
	"math"
	"sync"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// Point is a location in one of the supported representations.
type Point interface {
	Datum() *Datum
	String() string
}

// Target is a datum or grid a point can be transformed to. It is implemented
// by *Datum and *Grid.
type Target interface {
	fmt.Stringer
	targetName() string
}

// Invertible is a grid point that can be converted back to geographic
// coordinates on its own datum.
type Invertible interface {
	Point
	Geographic() (Geographic, error)
}

// Convergent is a point with a grid convergence (degrees).
type Convergent interface {
	GridConvergence() (float64, error)
}

// Scaled is a point with a point scale factor.
type Scaled interface {
	PointScaleFactor() (float64, error)
}

// errNoGrid and errNoDatum are returned for points built as struct literals.
var errNoGrid = &DomainError{Field: "grid", Reason: "point has no grid; use its constructor"}
var errNoDatum = &DomainError{Field: "datum", Reason: "point has no datum; use its constructor"}

// inversion caches the geographic equivalent of a grid point. Concurrent
// first calls may both compute it; the result is deterministic.
type inversion struct {
	once sync.Once
	geo  Geographic
	err  error
}

func (v *inversion) get(f func() (Geographic, error)) (Geographic, error) {
	if v == nil {
		return f()
	}
	v.once.Do(func() {
		v.geo, v.err = f()
	})
	return v.geo, v.err
}

// Geographic is a latitude and longitude in decimal degrees on a datum.
type Geographic struct {
	lat, lng float64
	datum    *Datum
}

// NewGeographic validates -90 < lat < 90 and -180 < lng < 180.
func NewGeographic(lat, lng float64, datum *Datum) (Geographic, error) {
	if datum == nil {
		return Geographic{}, domainErr("datum", 0, "missing datum")
	}
	if !(lat > -90 && lat < 90) {
		return Geographic{}, domainErr("latitude", lat, "must be in (-90, 90)")
	}
	if !(lng > -180 && lng < 180) {
		return Geographic{}, domainErr("longitude", lng, "must be in (-180, 180)")
	}
	return Geographic{lat: lat, lng: lng, datum: datum}, nil
}

// NewGeographicFromLatLng is NewGeographic for an s2.LatLng.
func NewGeographicFromLatLng(ll s2.LatLng, datum *Datum) (Geographic, error) {
	return NewGeographic(ll.Lat.Degrees(), ll.Lng.Degrees(), datum)
}

// Lat returns the latitude in decimal degrees.
func (g Geographic) Lat() float64 { return g.lat }

// Lng returns the longitude in decimal degrees.
func (g Geographic) Lng() float64 { return g.lng }

// LatLng returns the position as an s2.LatLng.
func (g Geographic) LatLng() s2.LatLng {
	return s2.LatLng{Lat: s1.Angle(g.lat * deg), Lng: s1.Angle(g.lng * deg)}
}

func (g Geographic) Datum() *Datum { return g.datum }

// Geographic returns g; geographic points are trivially invertible.
func (g Geographic) Geographic() (Geographic, error) { return g, nil }

// Equal reports whether both points have the same datum and coordinates.
func (g Geographic) Equal(o Geographic) bool {
	return g.datum == o.datum && g.lat == o.lat && g.lng == o.lng
}

func (g Geographic) String() string {
	return fmt.Sprintf("%s(%.9f, %.9f)", g.datum, g.lat, g.lng)
}

// ZonedGridPoint is a position on a zoned transverse Mercator grid.
type ZonedGridPoint struct {
	Zone     int
	Easting  float64
	Northing float64
	grid     *Grid
	inv      *inversion
}

// NewZonedGridPoint validates the zone and the grid envelope.
func NewZonedGridPoint(zone int, easting, northing float64, grid *Grid) (ZonedGridPoint, error) {
	if grid == nil || grid.Zoned == nil {
		return ZonedGridPoint{}, domainErr("grid", 0, "not a zoned grid")
	}
	if err := grid.CheckZone(zone); err != nil {
		return ZonedGridPoint{}, err
	}
	if err := checkEnvelope(grid, easting, northing); err != nil {
		return ZonedGridPoint{}, err
	}
	return ZonedGridPoint{Zone: zone, Easting: easting, Northing: northing, grid: grid, inv: &inversion{}}, nil
}

// Grid returns nil for a point not built by NewZonedGridPoint.
func (p ZonedGridPoint) Grid() *Grid   { return p.grid }
func (p ZonedGridPoint) Datum() *Datum { return p.grid.datum() }

// EPSG returns the CRS code of the point's zone.
func (p ZonedGridPoint) EPSG() int {
	if p.grid == nil {
		return 0
	}
	return p.grid.EPSG(p.Zone)
}

func (p ZonedGridPoint) Geographic() (Geographic, error) {
	if p.grid == nil {
		return Geographic{}, errNoGrid
	}
	return p.inv.get(func() (Geographic, error) {
		lat, lng, err := InverseTM(p.Zone, p.Easting, p.Northing, p.grid.Datum.Ellipsoid, p.grid)
		if err != nil {
			return Geographic{}, err
		}
		return NewGeographic(lat, lng, p.grid.Datum)
	})
}

// GridConvergence returns the convergence (degrees) in the point's own zone.
func (p ZonedGridPoint) GridConvergence() (float64, error) {
	res, err := reprojectTM(p, p.Zone, p.grid)
	return res.Convergence, err
}

func (p ZonedGridPoint) PointScaleFactor() (float64, error) {
	res, err := reprojectTM(p, p.Zone, p.grid)
	return res.ScaleFactor, err
}

// Equal reports whether both points are the same grid position.
func (p ZonedGridPoint) Equal(o ZonedGridPoint) bool {
	return p.grid == o.grid && p.Zone == o.Zone && p.Easting == o.Easting && p.Northing == o.Northing
}

func (p ZonedGridPoint) String() string {
	return fmt.Sprintf("%s zone %d (%.3f, %.3f)", p.grid, p.Zone, p.Easting, p.Northing)
}

// ConicGridPoint is a position on a Lambert conformal conic grid.
type ConicGridPoint struct {
	Easting  float64
	Northing float64
	grid     *Grid
	inv      *inversion
}

// NewConicGridPoint validates the grid envelope.
func NewConicGridPoint(easting, northing float64, grid *Grid) (ConicGridPoint, error) {
	if grid == nil || grid.Conic == nil {
		return ConicGridPoint{}, domainErr("grid", 0, "not a conic grid")
	}
	if err := checkEnvelope(grid, easting, northing); err != nil {
		return ConicGridPoint{}, err
	}
	return ConicGridPoint{Easting: easting, Northing: northing, grid: grid, inv: &inversion{}}, nil
}

// Grid returns nil for a point not built by NewConicGridPoint.
func (p ConicGridPoint) Grid() *Grid   { return p.grid }
func (p ConicGridPoint) Datum() *Datum { return p.grid.datum() }

// EPSG returns the CRS code of the grid.
func (p ConicGridPoint) EPSG() int {
	if p.grid == nil {
		return 0
	}
	return p.grid.EPSG(0)
}

func (p ConicGridPoint) Geographic() (Geographic, error) {
	if p.grid == nil {
		return Geographic{}, errNoGrid
	}
	return p.inv.get(func() (Geographic, error) {
		lat, lng, err := InverseLCC(p.Easting, p.Northing, p.grid.Datum.Ellipsoid, p.grid)
		if err != nil {
			return Geographic{}, err
		}
		return NewGeographic(lat, lng, p.grid.Datum)
	})
}

func (p ConicGridPoint) GridConvergence() (float64, error) {
	res, err := p.reproject()
	return res.Convergence, err
}

func (p ConicGridPoint) PointScaleFactor() (float64, error) {
	res, err := p.reproject()
	return res.ScaleFactor, err
}

func (p ConicGridPoint) reproject() (LCCResult, error) {
	geo, err := p.Geographic()
	if err != nil {
		return LCCResult{}, err
	}
	return ProjectLCC(geo.lat, geo.lng, p.grid.Datum.Ellipsoid, p.grid)
}

// Equal reports whether both points are the same grid position.
func (p ConicGridPoint) Equal(o ConicGridPoint) bool {
	return p.grid == o.grid && p.Easting == o.Easting && p.Northing == o.Northing
}

func (p ConicGridPoint) String() string {
	return fmt.Sprintf("%s (%.3f, %.3f)", p.grid, p.Easting, p.Northing)
}

// GridReference is an alphanumeric reference: zone, optional latitude band,
// 100 km square and truncated easting/northing digits.
type GridReference struct {
	Zone      int
	Band      byte // latitude band letter, 0 when unknown
	Square    string
	X, Y      string
	Precision int

	easting, northing float64 // decoded south-west corner
	grid              *Grid
	inv               *inversion
}

// NewGridReference validates and decodes a reference. The precision is the
// number of digits in x and y. A band of 0 resolves the row in the grid's
// RowOrigin window, see DecodeGridReference.
func NewGridReference(zone int, band byte, square, x, y string, grid *Grid) (GridReference, error) {
	ref := GridReference{
		Zone:      zone,
		Band:      toupper(band),
		Square:    square,
		X:         x,
		Y:         y,
		Precision: len(x),
		grid:      grid,
		inv:       &inversion{},
	}
	if len(square) == 2 {
		ref.Square = string([]byte{toupper(square[0]), toupper(square[1])})
	}
	e, n, err := ref.decode()
	if err != nil {
		return GridReference{}, err
	}
	if err := checkEnvelope(grid, e, n); err != nil {
		return GridReference{}, err
	}
	ref.easting, ref.northing = e, n
	return ref, nil
}

// Grid returns nil for a reference not built by NewGridReference,
// EncodeGridReference or ParseGridReference.
func (r GridReference) Grid() *Grid   { return r.grid }
func (r GridReference) Datum() *Datum { return r.grid.datum() }

// Easting returns the decoded easting of the south-west corner of the cell.
func (r GridReference) Easting() float64 { return r.easting }

// Northing returns the decoded northing of the south-west corner of the cell.
func (r GridReference) Northing() float64 { return r.northing }

func (r GridReference) Geographic() (Geographic, error) {
	if r.grid == nil {
		return Geographic{}, errNoGrid
	}
	return r.inv.get(func() (Geographic, error) {
		lat, lng, err := InverseTM(r.Zone, r.easting, r.northing, r.grid.Datum.Ellipsoid, r.grid)
		if err != nil {
			return Geographic{}, err
		}
		return NewGeographic(lat, lng, r.grid.Datum)
	})
}

func (r GridReference) GridConvergence() (float64, error) {
	res, err := reprojectTM(r, r.Zone, r.grid)
	return res.Convergence, err
}

func (r GridReference) PointScaleFactor() (float64, error) {
	res, err := reprojectTM(r, r.Zone, r.grid)
	return res.ScaleFactor, err
}

// Equal reports whether both references name the same cell.
func (r GridReference) Equal(o GridReference) bool {
	return r.grid == o.grid && r.Zone == o.Zone && r.Square == o.Square && r.X == o.X && r.Y == o.Y
}

// reprojectTM projects an invertible point back onto a zoned grid in the given
// zone, bypassing the neighbouring zone restriction of ProjectTMInZone.
func reprojectTM(p Invertible, zone int, grid *Grid) (TMResult, error) {
	geo, err := p.Geographic()
	if err != nil {
		return TMResult{}, err
	}
	if err := checkTMInputs(geo.lat, geo.lng, grid); err != nil {
		return TMResult{}, err
	}
	return projectTM(geo.lat, geo.lng, zone, grid.Datum.Ellipsoid, grid.Zoned), nil
}

func checkEnvelope(grid *Grid, easting, northing float64) error {
	if math.IsNaN(easting) || math.IsNaN(northing) || !grid.Envelope.Contains(easting, northing) {
		return domainErr("coordinate", easting, fmt.Sprintf("(%v, %v) outside the %s envelope", easting, northing, grid.Code))
	}
	return nil
}
