package ausgrid

import (
	"math"
)

const kruegerOrder = 8

const deg = math.Pi / 180

// TMResult is the output of a transverse Mercator projection.
type TMResult struct {
	Zone        int
	Easting     float64
	Northing    float64
	ScaleFactor float64 // point scale factor
	Convergence float64 // grid convergence, degrees
}

// ProjectTM projects geographic coordinates (decimal degrees) onto a zoned
// transverse Mercator grid using the Krueger n-series to order 8. The zone is
// the natural zone of lng.
func ProjectTM(lat, lng float64, ellipsoid *Ellipsoid, grid *Grid) (TMResult, error) {
	if err := checkTMInputs(lat, lng, grid); err != nil {
		return TMResult{}, err
	}
	return projectTM(lat, lng, grid.Zoned.Zone(lng), ellipsoid, grid.Zoned), nil
}

// ProjectTMInZone is ProjectTM with the zone forced to one of the natural
// zone's immediate neighbours (or the natural zone itself).
func ProjectTMInZone(lat, lng float64, zone int, ellipsoid *Ellipsoid, grid *Grid) (TMResult, error) {
	if err := checkTMInputs(lat, lng, grid); err != nil {
		return TMResult{}, err
	}
	if err := grid.CheckZone(zone); err != nil {
		return TMResult{}, err
	}
	natural := grid.Zoned.Zone(lng)
	last := grid.Zoned.Zones()
	switch {
	case natural == 1 && zone == last:
	case natural == last && zone == 1:
	case natural-1 <= zone && zone <= natural+1:
	default:
		return TMResult{}, domainErr("zone", float64(zone), "more than one zone from the natural zone")
	}
	return projectTM(lat, lng, zone, ellipsoid, grid.Zoned), nil
}

func checkTMInputs(lat, lng float64, grid *Grid) error {
	if grid == nil || grid.Zoned == nil {
		return domainErr("grid", 0, "transverse mercator needs a zoned grid")
	}
	if !(lat > -90 && lat <= 90) {
		return domainErr("latitude", lat, "must be in (-90, 90]")
	}
	if !(lng > -180 && lng < 180) {
		return domainErr("longitude", lng, "must be in (-180, 180)")
	}
	return nil
}

func projectTM(lat, lng float64, zone int, ellipsoid *Ellipsoid, zc *ZonedConstants) TMResult {
	c := ellipsoid.Constants()
	A := rectifyingRadius(c.A, c.N)
	alpha := kruegerAlpha(c.N)

	phi := lat * deg
	t, tc := conformalLatitude(phi, c.E)

	omega := (lng - zc.CentralMeridian(zone)) * deg
	cosW := math.Cos(omega)
	sinW := math.Sin(omega)

	// Gauss-Schreiber coordinates, normalised by a
	xiP := math.Atan(tc / cosW)
	etaP := math.Asinh(sinW / math.Sqrt(tc*tc+cosW*cosW))

	var c2kxi, s2kxi, c2keta, s2keta [kruegerOrder]float64
	computeTrigSeries(2*xiP, c2kxi[:], s2kxi[:])
	computeHyperbolicSeries(2*etaP, c2keta[:], s2keta[:])

	// Gauss-Schreiber to transverse Mercator, smallest terms first
	xi := 0.0
	eta := 0.0
	p := 0.0
	q := 0.0
	for k := kruegerOrder - 1; k >= 0; k-- {
		twoR := float64(2 * (k + 1))
		xi += alpha[k] * s2kxi[k] * c2keta[k]
		eta += alpha[k] * c2kxi[k] * s2keta[k]
		p += twoR * alpha[k] * c2kxi[k] * c2keta[k]
		q += twoR * alpha[k] * s2kxi[k] * s2keta[k]
	}
	xi += xiP
	eta += etaP
	p++
	q = -q

	m0 := zc.CentralScaleFactor
	easting := m0*A*eta + zc.FalseEasting
	northing := m0*A*xi + zc.FalseNorthing

	sinPhi := math.Sin(phi)
	scale := m0 * (A / c.A) * math.Sqrt(q*q+p*p) *
		(math.Sqrt(1+t*t) * math.Sqrt(1-c.E2*sinPhi*sinPhi) / math.Sqrt(tc*tc+cosW*cosW))

	return TMResult{
		Zone:        zone,
		Easting:     easting,
		Northing:    northing,
		ScaleFactor: scale,
		Convergence: tmConvergence(q, p, tc, omega, lat) / deg,
	}
}

// tmConvergence returns the grid convergence in radians. The magnitude comes
// from the p, q series; the sign flips when the point's side of the central
// meridian matches its hemisphere. Latitude 0 counts as southern.
func tmConvergence(q, p, tc, omega, lat float64) float64 {
	g := math.Atan(math.Abs(q/p)) + math.Atan(math.Abs(tc*math.Tan(omega))/math.Sqrt(1+tc*tc))

	ew := -1
	if omega > 0 {
		ew = 1
	}
	ns := -1
	if lat > 0 {
		ns = 1
	}
	if ew == ns {
		return -g
	}
	return g
}

// InverseTM recovers geographic coordinates (decimal degrees) from a zone,
// easting and northing on a zoned transverse Mercator grid.
func InverseTM(zone int, easting, northing float64, ellipsoid *Ellipsoid, grid *Grid) (lat, lng float64, err error) {
	if grid == nil || grid.Zoned == nil {
		return 0, 0, domainErr("grid", 0, "transverse mercator needs a zoned grid")
	}
	if err := grid.CheckZone(zone); err != nil {
		return 0, 0, err
	}
	if math.IsNaN(easting) || math.IsInf(easting, 0) {
		return 0, 0, domainErr("easting", easting, "must be finite")
	}
	if math.IsNaN(northing) || math.IsInf(northing, 0) {
		return 0, 0, domainErr("northing", northing, "must be finite")
	}

	zc := grid.Zoned
	c := ellipsoid.Constants()
	A := rectifyingRadius(c.A, c.N)
	beta := kruegerBeta(c.N)

	// Undo offsets, scale and rectifying radius
	k0A := zc.CentralScaleFactor * A
	xi := (northing - zc.FalseNorthing) / k0A
	eta := (easting - zc.FalseEasting) / k0A

	var c2kxi, s2kxi, c2keta, s2keta [kruegerOrder]float64
	computeTrigSeries(2*xi, c2kxi[:], s2kxi[:])
	computeHyperbolicSeries(2*eta, c2keta[:], s2keta[:])

	// transverse Mercator to Gauss-Schreiber
	xiP := 0.0
	etaP := 0.0
	for k := kruegerOrder - 1; k >= 0; k-- {
		xiP += beta[k] * s2kxi[k] * c2keta[k]
		etaP += beta[k] * c2kxi[k] * s2keta[k]
	}
	xiP += xi
	etaP += eta

	coshEta := math.Cosh(etaP)
	sinhEta := math.Sinh(etaP)
	cosXi := math.Cos(xiP)
	sinXi := math.Sin(xiP)

	var lambda float64
	if math.Abs(cosXi) < 10e-12 && math.Abs(coshEta) < 10e-12 {
		lambda = 0
	} else {
		lambda = math.Atan2(sinhEta, cosXi)
	}

	phi, err := geodeticLat(sinXi/coshEta, c.E)
	if err != nil {
		return 0, 0, err
	}
	return phi / deg, zc.CentralMeridian(zone) + lambda/deg, nil
}

// conformalLatitude returns tan(φ) and the tangent of the conformal latitude.
func conformalLatitude(phi, e float64) (t, tc float64) {
	t = math.Tan(phi)
	sigma := math.Sinh(e * math.Atanh(e*t/math.Sqrt(1+t*t)))
	tc = t*math.Sqrt(1+sigma*sigma) - sigma*math.Sqrt(1+t*t)
	return t, tc
}

// rectifyingRadius returns the radius A of a circle with the same
// circumference as the meridian ellipse.
func rectifyingRadius(a, n float64) float64 {
	n2 := n * n
	n4 := n2 * n2
	n6 := n4 * n2
	n8 := n4 * n4
	return (a / (1 + n)) * (1 + n2/4 + n4/64 + n6/256 + 25*n8/16384)
}

// kruegerAlpha returns α2, α4, ..., α16 for the forward series.
func kruegerAlpha(n float64) [kruegerOrder]float64 {
	n2 := n * n
	n3 := n2 * n
	n4 := n3 * n
	n5 := n4 * n
	n6 := n5 * n
	n7 := n6 * n
	n8 := n7 * n

	var a [kruegerOrder]float64
	a[0] = 1.0/2.0*n -
		2.0/3.0*n2 +
		5.0/16.0*n3 +
		41.0/180.0*n4 -
		127.0/288.0*n5 +
		7891.0/37800.0*n6 +
		72161.0/387072.0*n7 -
		18975107.0/50803200.0*n8

	a[1] = 13.0/48.0*n2 -
		3.0/5.0*n3 +
		557.0/1440.0*n4 +
		281.0/630.0*n5 -
		1983433.0/1935360.0*n6 +
		13769.0/28800.0*n7 +
		148003883.0/174182400.0*n8

	a[2] = 61.0/240.0*n3 -
		103.0/140.0*n4 +
		15061.0/26880.0*n5 +
		167603.0/181440.0*n6 -
		67102379.0/29030400.0*n7 +
		79682431.0/79833600.0*n8

	a[3] = 49561.0/161280.0*n4 -
		179.0/168.0*n5 +
		6601661.0/7257600.0*n6 +
		97445.0/49896.0*n7 -
		40176129013.0/7664025600.0*n8

	a[4] = 34729.0/80640.0*n5 -
		3418889.0/1995840.0*n6 +
		14644087.0/9123840.0*n7 +
		2605413599.0/622702080.0*n8

	a[5] = 212378941.0/319334400.0*n6 -
		30705481.0/10378368.0*n7 +
		175214326799.0/58118860800.0*n8

	a[6] = 1522256789.0/1383782400.0*n7 -
		16759934899.0/3113510400.0*n8

	a[7] = 1424729850961.0 / 743921418240.0 * n8
	return a
}

// kruegerBeta returns the inverse series coefficients, negated so that they
// are added like the forward ones.
func kruegerBeta(n float64) [kruegerOrder]float64 {
	n2 := n * n
	n3 := n2 * n
	n4 := n3 * n
	n5 := n4 * n
	n6 := n5 * n
	n7 := n6 * n
	n8 := n7 * n

	var b [kruegerOrder]float64
	coeff := 0.0
	coeff += (-7944359.0) * n8 / 67737600.0
	coeff += (5406467.0) * n7 / 38707200.0
	coeff += (-96199.0) * n6 / 604800.0
	coeff += (81.0) * n5 / 512.0
	coeff += (1.0) * n4 / 360.0
	coeff += (-37.0) * n3 / 96.0
	coeff += (2.0) * n2 / 3.0
	coeff += (-1.0) * n / 2.0
	b[0] = coeff

	coeff = 0.0
	coeff += (-24749483.0) * n8 / 348364800.0
	coeff += (-51841.0) * n7 / 1209600.0
	coeff += (1118711.0) * n6 / 3870720.0
	coeff += (-46.0) * n5 / 105.0
	coeff += (437.0) * n4 / 1440.0
	coeff += (-1.0) * n3 / 15.0
	coeff += (-1.0) * n2 / 48.0
	b[1] = coeff

	coeff = 0.0
	coeff += (6457463.0) * n8 / 17740800.0
	coeff += (-9261899.0) * n7 / 58060800.0
	coeff += (-5569.0) * n6 / 90720.0
	coeff += (209.0) * n5 / 4480.0
	coeff += (37.0) * n4 / 840.0
	coeff += (-17.0) * n3 / 480.0
	b[2] = coeff

	coeff = 0.0
	coeff += (-324154477.0) * n8 / 7664025600.0
	coeff += (-466511.0) * n7 / 2494800.0
	coeff += (830251.0) * n6 / 7257600.0
	coeff += (11.0) * n5 / 504.0
	coeff += (-4397.0) * n4 / 161280.0
	b[3] = coeff

	coeff = 0.0
	coeff += (-22894433.0) * n8 / 124540416.0
	coeff += (8005831.0) * n7 / 63866880.0
	coeff += (108847.0) * n6 / 3991680.0
	coeff += (-4583.0) * n5 / 161280.0
	b[4] = coeff

	coeff = 0.0
	coeff += (2204645983.0) * n8 / 12915302400.0
	coeff += (16363163.0) * n7 / 518918400.0
	coeff += (-20648693.0) * n6 / 638668800.0
	b[5] = coeff

	coeff = 0.0
	coeff += (497323811.0) * n8 / 12454041600.0
	coeff += (-219941297.0) * n7 / 5535129600.0
	b[6] = coeff

	b[7] = (-191773887257.0) * n8 / 3719607091200.0
	return b
}

// geodeticLat iterates from the sine of the conformal latitude to the
// geodetic latitude (radians).
func geodeticLat(sinChi, e float64) (float64, error) {
	const maxIterations = 30
	sOld := 1.0e99
	s := sinChi
	onePlusSinChi := 1.0 + sinChi
	oneMinusSinChi := 1.0 - sinChi

	for n := 0; n < maxIterations; n++ {
		p := math.Exp(e * math.Atanh(e*s))
		pSq := p * p
		s = (onePlusSinChi*pSq - oneMinusSinChi) /
			(onePlusSinChi*pSq + oneMinusSinChi)

		if math.Abs(s-sOld) < 1.0e-12 {
			return math.Asin(s), nil
		}
		sOld = s
	}
	return 0, &ConvergenceError{Op: "conformal to geodetic latitude", Iterations: maxIterations}
}

func computeHyperbolicSeries(twoX float64, c2kx, s2kx []float64) {
	// Use trig identities to compute
	// c2kx[k] = cosh(2(k+1)X), s2kx[k] = sinh(2(k+1)X)   for k = 0 .. 7
	c2kx[0] = math.Cosh(twoX)
	s2kx[0] = math.Sinh(twoX)
	c2kx[1] = 2.0*c2kx[0]*c2kx[0] - 1.0
	s2kx[1] = 2.0 * c2kx[0] * s2kx[0]
	c2kx[2] = c2kx[0]*c2kx[1] + s2kx[0]*s2kx[1]
	s2kx[2] = c2kx[1]*s2kx[0] + c2kx[0]*s2kx[1]
	c2kx[3] = 2.0*c2kx[1]*c2kx[1] - 1.0
	s2kx[3] = 2.0 * c2kx[1] * s2kx[1]
	c2kx[4] = c2kx[0]*c2kx[3] + s2kx[0]*s2kx[3]
	s2kx[4] = c2kx[3]*s2kx[0] + c2kx[0]*s2kx[3]
	c2kx[5] = 2.0*c2kx[2]*c2kx[2] - 1.0
	s2kx[5] = 2.0 * c2kx[2] * s2kx[2]
	c2kx[6] = c2kx[0]*c2kx[5] + s2kx[0]*s2kx[5]
	s2kx[6] = c2kx[5]*s2kx[0] + c2kx[0]*s2kx[5]
	c2kx[7] = 2.0*c2kx[3]*c2kx[3] - 1.0
	s2kx[7] = 2.0 * c2kx[3] * s2kx[3]
}

func computeTrigSeries(twoY float64, c2ky, s2ky []float64) {
	// Use trig identities to compute
	// c2ky[k] = cos(2(k+1)Y), s2ky[k] = sin(2(k+1)Y)   for k = 0 .. 7
	c2ky[0] = math.Cos(twoY)
	s2ky[0] = math.Sin(twoY)
	c2ky[1] = 2.0*c2ky[0]*c2ky[0] - 1.0
	s2ky[1] = 2.0 * c2ky[0] * s2ky[0]
	c2ky[2] = c2ky[1]*c2ky[0] - s2ky[1]*s2ky[0]
	s2ky[2] = c2ky[1]*s2ky[0] + c2ky[0]*s2ky[1]
	c2ky[3] = 2.0*c2ky[1]*c2ky[1] - 1.0
	s2ky[3] = 2.0 * c2ky[1] * s2ky[1]
	c2ky[4] = c2ky[3]*c2ky[0] - s2ky[3]*s2ky[0]
	s2ky[4] = c2ky[3]*s2ky[0] + c2ky[0]*s2ky[3]
	c2ky[5] = 2.0*c2ky[2]*c2ky[2] - 1.0
	s2ky[5] = 2.0 * c2ky[2] * s2ky[2]
	c2ky[6] = c2ky[5]*c2ky[0] - s2ky[5]*s2ky[0]
	s2ky[6] = c2ky[5]*s2ky[0] + c2ky[0]*s2ky[5]
	c2ky[7] = 2.0*c2ky[3]*c2ky[3] - 1.0
	s2ky[7] = 2.0 * c2ky[3] * s2ky[3]
}
