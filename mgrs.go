package ausgrid

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const gridSquare = 100000.0 // metres per lettered square
const rowCycle = 2000000.0  // row letters repeat every 20 squares
const maxPrecision = 5

// Row letters of the AA lettering pattern; I and O are never used.
const rowLetters = "ABCDEFGHJKLMNPQRSTUV"

type latitudeBand struct {
	letter         byte
	minNorthing    float64 // minimum northing for latitude band
	north          float64 // upper latitude for latitude band
	south          float64 // lower latitude for latitude band
	northingOffset float64 // latitude band northing offset
}

// Southern hemisphere bands; northings include the 10,000 km false northing.
var latitudeBands = [10]latitudeBand{
	{'C', 1100000.0, -72.0, -80.5, 0.0},
	{'D', 2000000.0, -64.0, -72.0, 2000000.0},
	{'E', 2800000.0, -56.0, -64.0, 2000000.0},
	{'F', 3700000.0, -48.0, -56.0, 2000000.0},
	{'G', 4600000.0, -40.0, -48.0, 4000000.0},
	{'H', 5500000.0, -32.0, -40.0, 4000000.0},
	{'J', 6400000.0, -24.0, -32.0, 6000000.0},
	{'K', 7300000.0, -16.0, -24.0, 6000000.0},
	{'L', 8200000.0, -8.0, -16.0, 8000000.0},
	{'M', 9100000.0, 0.0, -8.0, 8000000.0},
}

// EncodeGridReference converts a zone, easting and northing on a grid
// reference grid into a square identifier and digit offsets truncated to
// precision digits (1 = 10 km ... 5 = 1 m).
func EncodeGridReference(zone int, easting, northing float64, precision int, grid *Grid) (GridReference, error) {
	if err := checkReferenceGrid(grid); err != nil {
		return GridReference{}, err
	}
	if err := grid.CheckZone(zone); err != nil {
		return GridReference{}, err
	}
	if precision < 1 || precision > maxPrecision {
		return GridReference{}, domainErr("precision", float64(precision), "must be between 1 and 5")
	}
	if !grid.Envelope.Contains(easting, northing) {
		return GridReference{}, domainErr("coordinate", easting, fmt.Sprintf("(%v, %v) outside the %s envelope", easting, northing, grid.Code))
	}

	col := int(math.Floor(easting / gridSquare))
	columns := columnLetters(zone)
	if col < 1 || col > len(columns) {
		return GridReference{}, domainErr("easting", easting, "outside the lettered columns")
	}
	patternOffset := rowPatternOffset(zone)
	row := int(math.Floor(math.Mod(math.Mod(northing, rowCycle)+patternOffset, rowCycle) / gridSquare))

	divisor := computeScale(precision)
	east := int(math.Floor(math.Mod(easting, gridSquare) / divisor))
	north := int(math.Floor(math.Mod(northing, gridSquare) / divisor))

	lat, _, err := InverseTM(zone, easting, northing, grid.Datum.Ellipsoid, grid)
	if err != nil {
		return GridReference{}, domainErr("northing", northing, "no latitude at this position")
	}
	band, ok := latitudeLetter(lat)
	if !ok {
		return GridReference{}, domainErr("latitude", lat, "outside the southern latitude bands")
	}

	ref := GridReference{
		Zone:      zone,
		Band:      band,
		Square:    string([]byte{columns[col-1], rowLetters[row]}),
		X:         fmt.Sprintf("%0*d", precision, east),
		Y:         fmt.Sprintf("%0*d", precision, north),
		Precision: precision,
		grid:      grid,
		inv:       &inversion{},
	}
	ref.easting = float64(col)*gridSquare + float64(east)*divisor
	ref.northing = math.Floor(northing/gridSquare)*gridSquare + float64(north)*divisor

	// far from the central meridian in the polar bands the band table no
	// longer selects the right row cycle
	if e, n, err := ref.decode(); err != nil || e != ref.easting || n != ref.northing {
		return GridReference{}, domainErr("northing", northing, fmt.Sprintf("band %c cannot resolve the row cycle", band))
	}
	return ref, nil
}

// DecodeGridReference converts a square identifier and digit offsets back to
// an easting and northing. Offsets are placed at the south-west corner of
// their cell, so only 5-digit references decode to the metre. The latitude
// band selects the 2,000 km row cycle; with band 0 the rows resolve in the
// grid's window starting at RowOrigin.
func DecodeGridReference(zone int, band byte, square, x, y string, grid *Grid) (easting, northing float64, err error) {
	ref := GridReference{Zone: zone, Band: toupper(band), Square: square, X: x, Y: y, Precision: len(x), grid: grid}
	return ref.decode()
}

func (r GridReference) decode() (easting, northing float64, err error) {
	if err := checkReferenceGrid(r.grid); err != nil {
		return 0, 0, err
	}
	if err := r.grid.CheckZone(r.Zone); err != nil {
		return 0, 0, err
	}
	precision := len(r.X)
	if precision < 1 || precision > maxPrecision || len(r.Y) != precision || r.Precision != precision {
		return 0, 0, domainErr("precision", float64(r.Precision), "offsets must both have 1 to 5 digits")
	}
	east, err := parseDigits(r.X)
	if err != nil {
		return 0, 0, &InvalidGridReferenceError{Zone: r.Zone, Square: r.Square, Reason: err.Error()}
	}
	north, err := parseDigits(r.Y)
	if err != nil {
		return 0, 0, &InvalidGridReferenceError{Zone: r.Zone, Square: r.Square, Reason: err.Error()}
	}
	if len(r.Square) != 2 {
		return 0, 0, &InvalidGridReferenceError{Zone: r.Zone, Square: r.Square, Reason: "square identifier must be two letters"}
	}
	square := strings.ToUpper(r.Square)

	col := strings.IndexByte(columnLetters(r.Zone), square[0])
	if col < 0 {
		return 0, 0, &InvalidGridReferenceError{Zone: r.Zone, Square: r.Square, Reason: "column letter not used in this zone"}
	}
	row := strings.IndexByte(rowLetters, square[1])
	if row < 0 {
		return 0, 0, &InvalidGridReferenceError{Zone: r.Zone, Square: r.Square, Reason: "unknown row letter"}
	}

	gridEasting := float64(col+1) * gridSquare

	// northing of the row within its 2,000 km cycle
	gridNorthing := float64(row)*gridSquare - rowPatternOffset(r.Zone)
	if gridNorthing < 0 {
		gridNorthing += rowCycle
	}

	if r.Band != 0 {
		band, ok := lookupBand(r.Band)
		if !ok {
			return 0, 0, &InvalidGridReferenceError{Zone: r.Zone, Square: r.Square, Reason: fmt.Sprintf("unknown latitude band %q", r.Band)}
		}
		gridNorthing += band.northingOffset
		if gridNorthing < band.minNorthing {
			gridNorthing += rowCycle
		}
	} else {
		origin := r.grid.Reference.RowOrigin
		gridNorthing = origin + math.Mod(math.Mod(gridNorthing-origin, rowCycle)+rowCycle, rowCycle)
	}

	multiplier := computeScale(precision)
	return gridEasting + float64(east)*multiplier, gridNorthing + float64(north)*multiplier, nil
}

func checkReferenceGrid(grid *Grid) error {
	if grid == nil || grid.Zoned == nil || grid.Reference == nil {
		return domainErr("grid", 0, "not an alphanumeric grid reference system")
	}
	return nil
}

// columnLetters returns the eight column letters of a zone. The sets repeat
// every three zones.
func columnLetters(zone int) string {
	switch zone % 3 {
	case 1:
		return "ABCDEFGH"
	case 2:
		return "JKLMNPQR"
	}
	return "STUVWXYZ"
}

// rowPatternOffset is the northing of row letter A relative to the cycle
// start: odd zones start at A, even zones are shifted by 500 km.
func rowPatternOffset(zone int) float64 {
	if zone%2 == 0 {
		return 500000.0
	}
	return 0.0
}

// computeScale returns the size in metres of one unit of a precision digit.
func computeScale(prec int) float64 {
	scale := 1.0e5
	switch prec {
	case 1:
		scale = 1.0e4
	case 2:
		scale = 1.0e3
	case 3:
		scale = 1.0e2
	case 4:
		scale = 1.0e1
	case 5:
		scale = 1.0e0
	}
	return scale
}

func parseDigits(s string) (int, error) {
	for i := 0; i < len(s); i++ {
		if !isdigit(s[i]) {
			return 0, fmt.Errorf("offset %q is not numeric", s)
		}
	}
	return strconv.Atoi(s)
}

func lookupBand(letter byte) (latitudeBand, bool) {
	letter = toupper(letter)
	for _, b := range latitudeBands {
		if b.letter == letter {
			return b, true
		}
	}
	return latitudeBand{}, false
}

// latitudeLetter returns the band letter of a southern hemisphere latitude
// (degrees).
func latitudeLetter(lat float64) (byte, bool) {
	if lat <= -80.5 || lat >= 0 {
		return 0, false
	}
	band := int((lat+80)/8 + 1.0e-12)
	if band < 0 {
		band = 0
	}
	if band >= len(latitudeBands) {
		band = len(latitudeBands) - 1
	}
	return latitudeBands[band].letter, true
}

// ParseGridReference parses a reference such as "55HCV2203803258" or
// "55 CV 22038 03258" (the latitude band letter is optional).
func ParseGridReference(s string, grid *Grid) (GridReference, error) {
	buf := bytes.Buffer{}
	for _, b := range strings.Fields(s) {
		buf.WriteString(b)
	}
	str := buf.String()
	for i := 0; i < len(str); i++ {
		if !isdigit(str[i]) && !isalpha(str[i]) {
			return GridReference{}, &InvalidGridReferenceError{Square: s, Reason: "invalid character"}
		}
	}

	i := 0
	for i < len(str) && isdigit(str[i]) {
		i++
	}
	if i == 0 || i > 2 {
		return GridReference{}, &InvalidGridReferenceError{Square: s, Reason: "zone must have one or two digits"}
	}
	zone, _ := strconv.Atoi(str[:i])

	j := i
	for i < len(str) && isalpha(str[i]) {
		i++
	}
	letters := strings.ToUpper(str[j:i])
	var band byte
	switch len(letters) {
	case 3:
		band = letters[0]
		letters = letters[1:]
	case 2:
	default:
		return GridReference{}, &InvalidGridReferenceError{Zone: zone, Square: letters, Reason: "wrong number of letters"}
	}

	digits := str[i:]
	for k := 0; k < len(digits); k++ {
		if !isdigit(digits[k]) {
			return GridReference{}, &InvalidGridReferenceError{Zone: zone, Square: letters, Reason: "letters after offsets"}
		}
	}
	if len(digits)%2 != 0 {
		return GridReference{}, &InvalidGridReferenceError{Zone: zone, Square: letters, Reason: "easting and northing need the same number of digits"}
	}
	n := len(digits) / 2
	return NewGridReference(zone, band, letters, digits[:n], digits[n:], grid)
}

// GridReferenceFromSixFigure builds a 1 m reference from a six figure grid
// reference (100 m resolution) inside a known square. The band may be 0.
func GridReferenceFromSixFigure(zone int, band byte, square, gr6 string, grid *Grid) (GridReference, error) {
	if len(gr6) != 6 {
		return GridReference{}, &InvalidGridReferenceError{Zone: zone, Square: square, Reason: fmt.Sprintf("six figure reference %q must have 6 digits", gr6)}
	}
	return NewGridReference(zone, band, square, gr6[0:3]+"00", gr6[3:6]+"00", grid)
}

func (r GridReference) String() string {
	buf := bytes.Buffer{}
	fmt.Fprintf(&buf, "%2.2d", r.Zone)
	if r.Band != 0 {
		buf.WriteByte(r.Band)
	}
	buf.WriteString(r.Square)
	buf.WriteString(r.X)
	buf.WriteString(r.Y)
	return buf.String()
}

func isdigit(r byte) bool {
	return r >= '0' && r <= '9'
}

func isalpha(r byte) bool {
	return r >= 'a' && r <= 'z' ||
		r >= 'A' && r <= 'Z'
}

func toupper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}
