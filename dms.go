package ausgrid

import "math"

// DMSToDecimal converts degrees, minutes and seconds to decimal degrees. The
// sign is taken from the degrees field; minutes and seconds are magnitudes.
func DMSToDecimal(degrees, minutes, seconds float64) (float64, error) {
	if !(degrees >= -180 && degrees <= 180) {
		return 0, domainErr("degrees", degrees, "must be in [-180, 180]")
	}
	if !(minutes >= 0 && minutes < 60) {
		return 0, domainErr("minutes", minutes, "must be in [0, 60)")
	}
	if !(seconds >= 0 && seconds < 3600) {
		return 0, domainErr("seconds", seconds, "must be in [0, 3600)")
	}
	dd := math.Abs(degrees) + minutes/60 + seconds/3600
	if math.Signbit(degrees) {
		return -dd, nil
	}
	return dd, nil
}
