package ausgrid

import (
	"math"
)

const vincentyTolerance = 1e-11
const vincentyMaxIterations = 15
const coincidentRadius = 1e-8

// GeodesicDistance returns the ellipsoidal arc length in metres between two
// points given in radians, using Vincenty's inverse formula on an ellipsoid
// with semi-axes a, b and flattening f.
//
// Near-antipodal points can fail to converge within the iteration cap; that is
// reported as a *ConvergenceError rather than an approximate distance.
func GeodesicDistance(lat1, lng1, lat2, lng2, a, b, f float64) (float64, error) {
	for _, v := range []float64{lat1, lng1, lat2, lng2} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, domainErr("coordinate", v, "must be finite")
		}
	}
	if math.Abs(lat1) > math.Pi/2 || math.Abs(lat2) > math.Pi/2 {
		return 0, domainErr("latitude", math.Max(math.Abs(lat1), math.Abs(lat2)), "must be within ±π/2")
	}
	if a <= 0 || b <= 0 || !(f >= 0 && f < 1) {
		return 0, domainErr("ellipsoid", f, "invalid ellipsoid constants")
	}

	if math.Hypot(lat1-lat2, lng1-lng2) < coincidentRadius {
		return 0, nil
	}

	// The iteration is not exactly symmetric in floating point, so always
	// solve from the same end.
	if lat1 > lat2 || (lat1 == lat2 && lng1 > lng2) {
		lat1, lng1, lat2, lng2 = lat2, lng2, lat1, lng1
	}

	u1 := math.Atan((1 - f) * math.Tan(lat1))
	u2 := math.Atan((1 - f) * math.Tan(lat2))
	sinU1, cosU1 := math.Sincos(u1)
	sinU2, cosU2 := math.Sincos(u2)

	L := lng2 - lng1
	lambda := L

	var sinSigma, cosSigma, sigma, cosSqAlpha, cos2SigmaM float64
	converged := false
	for i := 0; i < vincentyMaxIterations; i++ {
		sinLambda, cosLambda := math.Sincos(lambda)

		t := cosU2 * sinLambda
		u := cosU1*sinU2 - sinU1*cosU2*cosLambda
		sinSigma = math.Sqrt(t*t + u*u)
		if sinSigma == 0 {
			return 0, nil
		}
		cosSigma = sinU1*sinU2 + cosU1*cosU2*cosLambda
		sigma = math.Atan2(sinSigma, cosSigma)

		sinAlpha := cosU1 * cosU2 * sinLambda / sinSigma
		cosSqAlpha = 1 - sinAlpha*sinAlpha
		if cosSqAlpha != 0 {
			cos2SigmaM = cosSigma - 2*sinU1*sinU2/cosSqAlpha
		} else {
			// equatorial line
			cos2SigmaM = 0
		}
		C := f / 16 * cosSqAlpha * (4 + f*(4-3*cosSqAlpha))

		prev := lambda
		lambda = L + (1-C)*f*sinAlpha*
			(sigma+C*sinSigma*(cos2SigmaM+C*cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)))
		if math.Abs(lambda-prev) < vincentyTolerance {
			converged = true
			break
		}
	}
	if !converged {
		return 0, &ConvergenceError{Op: "vincenty inverse", Iterations: vincentyMaxIterations}
	}

	uSq := cosSqAlpha * (a*a - b*b) / (b * b)
	A := 1 + uSq/16384*(4096+uSq*(-768+uSq*(320-175*uSq)))
	B := uSq / 1024 * (256 + uSq*(-128+uSq*(74-47*uSq)))
	deltaSigma := B * sinSigma * (cos2SigmaM + B/4*(cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)-
		B/6*cos2SigmaM*(-3+4*sinSigma*sinSigma)*(-3+4*cos2SigmaM*cos2SigmaM)))

	return b * A * (sigma - deltaSigma), nil
}
