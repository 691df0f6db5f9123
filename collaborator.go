package ausgrid

import (
	"context"
	"time"
)

// Coordinate is a position in CRS axis order: X is longitude or easting, Y is
// latitude or northing.
type Coordinate struct {
	X, Y float64
}

// Transformer shifts coordinates between coordinate reference systems
// identified by EPSG code. Datum shifts are always delegated to a
// Transformer; they are never computed here.
type Transformer interface {
	Transform(ctx context.Context, coords []Coordinate, sourceEPSG, targetEPSG int) ([]Coordinate, error)
}

// TransformerFunc adapts a function to the Transformer interface.
type TransformerFunc func(ctx context.Context, coords []Coordinate, sourceEPSG, targetEPSG int) ([]Coordinate, error)

func (f TransformerFunc) Transform(ctx context.Context, coords []Coordinate, sourceEPSG, targetEPSG int) ([]Coordinate, error) {
	return f(ctx, coords, sourceEPSG, targetEPSG)
}

// Declinator evaluates a geomagnetic model, returning the magnetic
// declination in degrees (east positive).
type Declinator interface {
	Declination(ctx context.Context, lat, lng, elevation float64, date time.Time) (float64, error)
}

// DeclinatorFunc adapts a function to the Declinator interface.
type DeclinatorFunc func(ctx context.Context, lat, lng, elevation float64, date time.Time) (float64, error)

func (f DeclinatorFunc) Declination(ctx context.Context, lat, lng, elevation float64, date time.Time) (float64, error) {
	return f(ctx, lat, lng, elevation, date)
}
