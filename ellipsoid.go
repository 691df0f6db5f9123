package ausgrid

import (
	"math"
	"sort"
)

// Ellipsoid is a reference ellipsoid defined by its semi-major axis and inverse
// flattening. All other shape constants are derived on demand.
type Ellipsoid struct {
	Code              string
	Name              string
	SemiMajorAxis     float64 // a, metres
	InverseFlattening float64 // 1/f
}

// NewEllipsoid constructs an ellipsoid, checking a > 0 and 0 < f < 1.
func NewEllipsoid(code, name string, semiMajorAxis, inverseFlattening float64) (*Ellipsoid, error) {
	if semiMajorAxis <= 0 {
		return nil, domainErr("semi-major axis", semiMajorAxis, "must be greater than zero")
	}
	if inverseFlattening <= 1 || math.IsInf(inverseFlattening, 0) || math.IsNaN(inverseFlattening) {
		return nil, domainErr("inverse flattening", inverseFlattening, "flattening must lie in (0, 1)")
	}
	return &Ellipsoid{
		Code:              code,
		Name:              name,
		SemiMajorAxis:     semiMajorAxis,
		InverseFlattening: inverseFlattening,
	}, nil
}

// Flattening returns f.
func (e *Ellipsoid) Flattening() float64 {
	return 1 / e.InverseFlattening
}

// SemiMinorAxis returns b = a(1-f).
func (e *Ellipsoid) SemiMinorAxis() float64 {
	return e.SemiMajorAxis * (1 - e.Flattening())
}

// EccentricitySquared returns e² = f(2-f).
func (e *Ellipsoid) EccentricitySquared() float64 {
	f := e.Flattening()
	return f * (2 - f)
}

// Eccentricity returns the first eccentricity.
func (e *Ellipsoid) Eccentricity() float64 {
	return math.Sqrt(e.EccentricitySquared())
}

// ThirdFlattening returns n = f/(2-f).
func (e *Ellipsoid) ThirdFlattening() float64 {
	f := e.Flattening()
	return f / (2 - f)
}

// EllipsoidConstants is the full set of shape constants of an ellipsoid.
type EllipsoidConstants struct {
	A, B, F, E, E2, N float64
}

// Constants computes every derived constant at once.
func (e *Ellipsoid) Constants() EllipsoidConstants {
	return EllipsoidConstants{
		A:  e.SemiMajorAxis,
		B:  e.SemiMinorAxis(),
		F:  e.Flattening(),
		E:  e.Eccentricity(),
		E2: e.EccentricitySquared(),
		N:  e.ThirdFlattening(),
	}
}

// sameShape reports whether two ellipsoids have identical defining constants.
func (e *Ellipsoid) sameShape(o *Ellipsoid) bool {
	return e.SemiMajorAxis == o.SemiMajorAxis && e.InverseFlattening == o.InverseFlattening
}

func (e *Ellipsoid) String() string {
	return e.Code
}

// Supported reference ellipsoids.
var (
	WGS84Ellipsoid *Ellipsoid
	GRS80          *Ellipsoid
	GRS67          *Ellipsoid
	ANS            *Ellipsoid
	Clarke1866     *Ellipsoid
)

var ellipsoids = map[string]*Ellipsoid{}

func mustEllipsoid(code, name string, a, invF float64) *Ellipsoid {
	e, err := NewEllipsoid(code, name, a, invF)
	if err != nil {
		panic("error constructing ellipsoid " + code + ": " + err.Error())
	}
	ellipsoids[code] = e
	return e
}

// LookupEllipsoid returns the registered ellipsoid with the given code.
func LookupEllipsoid(code string) (*Ellipsoid, bool) {
	e, ok := ellipsoids[code]
	return e, ok
}

// Ellipsoids returns every registered ellipsoid ordered by code.
func Ellipsoids() []*Ellipsoid {
	out := make([]*Ellipsoid, 0, len(ellipsoids))
	for _, e := range ellipsoids {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
