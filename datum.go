package ausgrid

import "sort"

// Datum is a geodetic datum: a reference ellipsoid plus a reference frame,
// identified to the external CRS service by its EPSG code.
type Datum struct {
	Code      string
	Name      string
	Ellipsoid *Ellipsoid
	EPSG      int
}

// SameEllipsoid reports whether both datums use ellipsoids with identical
// constants. Projections under such datums produce identical grid values.
func (d *Datum) SameEllipsoid(o *Datum) bool {
	return d.Ellipsoid.sameShape(o.Ellipsoid)
}

func (d *Datum) String() string {
	if d == nil {
		return "<nil datum>"
	}
	return d.Code
}

func (d *Datum) targetName() string {
	return d.Code
}

// Supported datums.
var (
	WGS84   *Datum
	GDA2020 *Datum
	GDA94   *Datum
	AGD84   *Datum
	AGD66   *Datum
)

var datums = map[string]*Datum{}

func registerDatum(code, name string, ellipsoid *Ellipsoid, epsg int) *Datum {
	d := &Datum{Code: code, Name: name, Ellipsoid: ellipsoid, EPSG: epsg}
	datums[code] = d
	return d
}

// LookupDatum returns the registered datum with the given code.
func LookupDatum(code string) (*Datum, bool) {
	d, ok := datums[code]
	return d, ok
}

// Datums returns every registered datum ordered by code.
func Datums() []*Datum {
	out := make([]*Datum, 0, len(datums))
	for _, d := range datums {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
