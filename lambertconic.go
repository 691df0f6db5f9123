package ausgrid

import (
	"math"
)

// LCCResult is the output of a Lambert conformal conic projection.
type LCCResult struct {
	Easting     float64
	Northing    float64
	ScaleFactor float64 // point scale factor
	Convergence float64 // grid convergence, degrees
}

// lambertCone holds the cone constants of a grid on one ellipsoid.
type lambertCone struct {
	a, e, e2 float64
	n        float64 // cone constant
	aF       float64 // sign(n)·a·F
	r0       float64 // polar radius of the true origin
	sign     float64 // sign(n)
	cc       *ConicConstants
}

// ProjectLCC projects geographic coordinates (decimal degrees) onto a Lambert
// conformal conic grid.
func ProjectLCC(lat, lng float64, ellipsoid *Ellipsoid, grid *Grid) (LCCResult, error) {
	if grid == nil || grid.Conic == nil {
		return LCCResult{}, domainErr("grid", 0, "lambert conformal conic needs a conic grid")
	}
	if err := checkLatitude("latitude", lat); err != nil {
		return LCCResult{}, err
	}
	if err := checkLongitude("longitude", lng); err != nil {
		return LCCResult{}, err
	}
	cone, err := newLambertCone(ellipsoid, grid.Conic)
	if err != nil {
		return LCCResult{}, err
	}

	phi := lat * deg
	r := cone.aF * math.Pow(cone.t(phi), cone.n)
	theta := cone.sign * cone.n * (lng - cone.cc.CentralMeridian) * deg

	x := r * math.Sin(theta)
	y := r*math.Cos(theta) - cone.r0

	// unity on both standard parallels
	m := -(r * cone.n) / (cone.v(phi) * math.Cos(phi))
	res := LCCResult{
		Easting:     x + cone.cc.FalseEasting,
		Northing:    y + cone.cc.FalseNorthing,
		ScaleFactor: m,
		Convergence: theta / deg,
	}
	if math.IsInf(res.Northing, 0) || math.IsNaN(res.Northing) {
		return LCCResult{}, domainErr("latitude", lat, "projection is undefined at this latitude")
	}
	return res, nil
}

// InverseLCC recovers geographic coordinates (decimal degrees) from a conic
// grid easting and northing.
func InverseLCC(easting, northing float64, ellipsoid *Ellipsoid, grid *Grid) (lat, lng float64, err error) {
	if grid == nil || grid.Conic == nil {
		return 0, 0, domainErr("grid", 0, "lambert conformal conic needs a conic grid")
	}
	if math.IsNaN(easting) || math.IsInf(easting, 0) {
		return 0, 0, domainErr("easting", easting, "must be finite")
	}
	if math.IsNaN(northing) || math.IsInf(northing, 0) {
		return 0, 0, domainErr("northing", northing, "must be finite")
	}
	cone, err := newLambertCone(ellipsoid, grid.Conic)
	if err != nil {
		return 0, 0, err
	}

	x := easting - cone.cc.FalseEasting
	y := northing - cone.cc.FalseNorthing + cone.r0
	r := math.Hypot(x, y)
	theta := math.Atan2(x, y)

	t := math.Pow(r/cone.aF, 1/cone.n)
	phi, err := cone.latitude(t)
	if err != nil {
		return 0, 0, err
	}
	return phi / deg, cone.cc.CentralMeridian + theta/(cone.sign*cone.n)/deg, nil
}

func newLambertCone(ellipsoid *Ellipsoid, cc *ConicConstants) (*lambertCone, error) {
	if err := checkLatitude("standard parallel 1", cc.StandardParallel1); err != nil {
		return nil, err
	}
	if err := checkLatitude("standard parallel 2", cc.StandardParallel2); err != nil {
		return nil, err
	}
	if err := checkLatitude("origin latitude", cc.OriginLatitude); err != nil {
		return nil, err
	}
	if err := checkLongitude("central meridian", cc.CentralMeridian); err != nil {
		return nil, err
	}
	if cc.StandardParallel1 == cc.StandardParallel2 {
		return nil, domainErr("standard parallel 2", cc.StandardParallel2, "must differ from standard parallel 1")
	}

	c := ellipsoid.Constants()
	cone := &lambertCone{a: c.A, e: c.E, e2: c.E2, cc: cc}

	phi1 := cc.StandardParallel1 * deg
	phi2 := cc.StandardParallel2 * deg
	m1 := cone.m(phi1)
	m2 := cone.m(phi2)
	t1 := cone.t(phi1)
	t2 := cone.t(phi2)

	cone.n = (math.Log(m1) - math.Log(m2)) / (math.Log(t1) - math.Log(t2))
	F := m1 / (cone.n * math.Pow(t1, cone.n))

	cone.sign = 1
	if cone.n < 0 {
		cone.sign = -1
	}
	cone.aF = cone.sign * c.A * F
	cone.r0 = cone.aF * math.Pow(cone.t(cc.OriginLatitude*deg), cone.n)
	return cone, nil
}

func (l *lambertCone) t(phi float64) float64 {
	s := math.Sin(phi)
	lhs := (1 - s) / (1 + s)
	rhs := (1 + l.e*s) / (1 - l.e*s)
	return math.Sqrt(lhs * math.Pow(rhs, l.e))
}

func (l *lambertCone) m(phi float64) float64 {
	s := math.Sin(phi)
	return math.Cos(phi) / math.Sqrt(1-l.e2*s*s)
}

func (l *lambertCone) v(phi float64) float64 {
	s := math.Sin(phi)
	return l.a / math.Sqrt(1-l.e2*s*s)
}

// latitude inverts t(φ) by fixed point iteration.
func (l *lambertCone) latitude(t float64) (float64, error) {
	const maxIterations = 30
	phi := math.Pi/2 - 2*math.Atan(t)
	for i := 0; i < maxIterations; i++ {
		es := l.e * math.Sin(phi)
		next := math.Pi/2 - 2*math.Atan(t*math.Pow((1-es)/(1+es), l.e/2))
		if math.Abs(next-phi) < 1e-12 {
			return next, nil
		}
		phi = next
	}
	return 0, &ConvergenceError{Op: "lambert conformal conic latitude", Iterations: maxIterations}
}

func checkLatitude(field string, lat float64) error {
	if !(lat > -90 && lat <= 90) {
		return domainErr(field, lat, "must be in (-90, 90]")
	}
	return nil
}

func checkLongitude(field string, lng float64) error {
	if !(lng > -180 && lng <= 180) {
		return domainErr(field, lng, "must be in (-180, 180]")
	}
	return nil
}
