package ausgrid

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tzneal/ausgrid/internal/metrics"
)

// ErrNoDeclinator is returned by declination queries on a Converter without
// a Declinator.
var ErrNoDeclinator = errors.New("no magnetic declination model configured")

// Converter moves points between datums and grids and answers distance and
// declination queries. Projections are computed locally; datum shifts and
// magnetic models are delegated to the collaborators. A zero Converter can
// project between grids sharing a datum.
type Converter struct {
	Transformer Transformer
	Declinator  Declinator
	Logger      *slog.Logger

	// Concurrency bounds TransformAll; GOMAXPROCS when zero.
	Concurrency int
}

// NewConverter returns a Converter using the given collaborators, either of
// which may be nil.
func NewConverter(transformer Transformer, declinator Declinator, logger *slog.Logger) *Converter {
	return &Converter{Transformer: transformer, Declinator: declinator, Logger: logger}
}

func (c *Converter) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return c.Logger
}

// Transform converts p to the target datum (yielding a Geographic) or grid
// (yielding the grid's point type, in the natural zone for zoned grids).
// A point already on the target is returned unchanged.
func (c *Converter) Transform(ctx context.Context, p Point, target Target) (Point, error) {
	out, err := c.transform(ctx, p, target)
	metrics.ObserveTransform(targetLabel(target), err)
	return out, err
}

func targetLabel(t Target) string {
	switch v := t.(type) {
	case nil:
		return "nil"
	case *Datum:
		if v == nil {
			return "nil"
		}
	case *Grid:
		if v == nil {
			return "nil"
		}
	}
	return t.targetName()
}

func (c *Converter) transform(ctx context.Context, p Point, target Target) (Point, error) {
	if p == nil {
		return nil, &UnsupportedTransformError{From: "nil", To: targetLabel(target), Reason: "no point"}
	}
	switch t := target.(type) {
	case *Datum:
		if t == nil {
			break
		}
		geo, err := toGeographic(p)
		if err != nil {
			return nil, err
		}
		return c.shift(ctx, geo, t)
	case *Grid:
		if t == nil {
			break
		}
		if g, ok := p.(interface{ Grid() *Grid }); ok && g.Grid() == t {
			return p, nil
		}
		geo, err := toGeographic(p)
		if err != nil {
			return nil, err
		}
		geo, err = c.shift(ctx, geo, t.Datum)
		if err != nil {
			return nil, err
		}
		return project(geo, t)
	}
	return nil, &UnsupportedTransformError{From: p.String(), To: targetLabel(target), Reason: "unknown target"}
}

// TransformAll transforms every point concurrently. The result preserves the
// input order; the first failure cancels the remaining work.
func (c *Converter) TransformAll(ctx context.Context, pts []Point, target Target) ([]Point, error) {
	out := make([]Point, len(pts))
	g, ctx := errgroup.WithContext(ctx)
	limit := c.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(limit)
	for i, p := range pts {
		i, p := i, p
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			q, err := c.Transform(ctx, p, target)
			if err != nil {
				return fmt.Errorf("point %d: %w", i, err)
			}
			out[i] = q
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Distance returns the distance in metres from p to q. A geographic origin
// gives the Vincenty geodesic on its datum's ellipsoid; a grid origin gives
// the planar distance with q projected into the same grid and zone.
func (c *Converter) Distance(ctx context.Context, p, q Point) (float64, error) {
	switch o := p.(type) {
	case Geographic:
		if o.datum == nil {
			return 0, errNoDatum
		}
		other, err := c.geographicOn(ctx, q, o.datum)
		if err != nil {
			return 0, err
		}
		ec := o.datum.Ellipsoid.Constants()
		return GeodesicDistance(o.lat*deg, o.lng*deg, other.lat*deg, other.lng*deg, ec.A, ec.B, ec.F)
	case ZonedGridPoint:
		if o.grid == nil {
			return 0, errNoGrid
		}
		e, n, err := c.zonedPosition(ctx, q, o.grid, o.Zone)
		if err != nil {
			return 0, err
		}
		return math.Hypot(e-o.Easting, n-o.Northing), nil
	case GridReference:
		if o.grid == nil {
			return 0, errNoGrid
		}
		e, n, err := c.zonedPosition(ctx, q, o.grid, o.Zone)
		if err != nil {
			return 0, err
		}
		return math.Hypot(e-o.easting, n-o.northing), nil
	case ConicGridPoint:
		if o.grid == nil {
			return 0, errNoGrid
		}
		e, n, err := c.conicPosition(ctx, q, o.grid)
		if err != nil {
			return 0, err
		}
		return math.Hypot(e-o.Easting, n-o.Northing), nil
	}
	return 0, &UnsupportedTransformError{From: fmt.Sprint(p), To: fmt.Sprint(q), Reason: "unsupported point type"}
}

// MagneticDeclination returns the magnetic declination (degrees) at p on date,
// evaluated at zero elevation.
func (c *Converter) MagneticDeclination(ctx context.Context, p Point, date time.Time) (float64, error) {
	if c.Declinator == nil {
		return 0, ErrNoDeclinator
	}
	geo, err := toGeographic(p)
	if err != nil {
		return 0, err
	}
	c.logger().Debug("magnetic declination", "lat", geo.lat, "lng", geo.lng, "date", date.Format(time.DateOnly))
	d, err := c.Declinator.Declination(ctx, geo.lat, geo.lng, 0, date)
	if err != nil {
		c.logger().Warn("magnetic declination failed", "point", p.String(), "error", err)
		return 0, fmt.Errorf("magnetic declination at %s: %w", p, err)
	}
	return d, nil
}

// GridMagneticAngle returns the angle from grid north to magnetic north
// (degrees): declination minus grid convergence. Geographic points have no
// convergence.
func (c *Converter) GridMagneticAngle(ctx context.Context, p Point, date time.Time) (float64, error) {
	decl, err := c.MagneticDeclination(ctx, p, date)
	if err != nil {
		return 0, err
	}
	conv := 0.0
	if cp, ok := p.(Convergent); ok {
		conv, err = cp.GridConvergence()
		if err != nil {
			return 0, err
		}
	}
	return decl - conv, nil
}

// shift moves geographic coordinates to another datum with the Transformer.
func (c *Converter) shift(ctx context.Context, geo Geographic, to *Datum) (Geographic, error) {
	if geo.datum == nil {
		return Geographic{}, errNoDatum
	}
	if geo.datum == to {
		return geo, nil
	}
	if c.Transformer == nil {
		return Geographic{}, &UnsupportedTransformError{From: geo.datum.Code, To: to.Code, Reason: "datum shift needs a Transformer"}
	}
	log := c.logger()
	log.Debug("datum shift", "from", geo.datum.Code, "to", to.Code, "lat", geo.lat, "lng", geo.lng)
	out, err := c.Transformer.Transform(ctx, []Coordinate{{X: geo.lng, Y: geo.lat}}, geo.datum.EPSG, to.EPSG)
	if err != nil {
		log.Warn("datum shift failed", "from", geo.datum.Code, "to", to.Code, "error", err)
		return Geographic{}, fmt.Errorf("shift %s to %s: %w", geo.datum, to, err)
	}
	if len(out) != 1 {
		return Geographic{}, fmt.Errorf("shift %s to %s: expected 1 coordinate, got %d", geo.datum, to, len(out))
	}
	return NewGeographic(out[0].Y, out[0].X, to)
}

// geographicOn returns q as geographic coordinates on datum.
func (c *Converter) geographicOn(ctx context.Context, q Point, datum *Datum) (Geographic, error) {
	geo, err := toGeographic(q)
	if err != nil {
		return Geographic{}, err
	}
	return c.shift(ctx, geo, datum)
}

func (c *Converter) zonedPosition(ctx context.Context, q Point, grid *Grid, zone int) (e, n float64, err error) {
	switch o := q.(type) {
	case ZonedGridPoint:
		if o.grid == grid && o.Zone == zone {
			return o.Easting, o.Northing, nil
		}
	case GridReference:
		if o.grid == grid && o.Zone == zone {
			return o.easting, o.northing, nil
		}
	}
	geo, err := c.geographicOn(ctx, q, grid.Datum)
	if err != nil {
		return 0, 0, err
	}
	res, err := ProjectTMInZone(geo.lat, geo.lng, zone, grid.Datum.Ellipsoid, grid)
	if err != nil {
		return 0, 0, err
	}
	return res.Easting, res.Northing, nil
}

func (c *Converter) conicPosition(ctx context.Context, q Point, grid *Grid) (e, n float64, err error) {
	if o, ok := q.(ConicGridPoint); ok && o.grid == grid {
		return o.Easting, o.Northing, nil
	}
	geo, err := c.geographicOn(ctx, q, grid.Datum)
	if err != nil {
		return 0, 0, err
	}
	res, err := ProjectLCC(geo.lat, geo.lng, grid.Datum.Ellipsoid, grid)
	if err != nil {
		return 0, 0, err
	}
	return res.Easting, res.Northing, nil
}

func toGeographic(p Point) (Geographic, error) {
	inv, ok := p.(Invertible)
	if !ok {
		return Geographic{}, &UnsupportedTransformError{From: p.String(), To: "geographic", Reason: "point cannot be inverted"}
	}
	return inv.Geographic()
}

// project converts geographic coordinates already on the grid's datum onto
// the grid.
func project(geo Geographic, grid *Grid) (Point, error) {
	ellipsoid := grid.Datum.Ellipsoid
	switch grid.Kind {
	case KindTransverseMercator:
		res, err := ProjectTM(geo.lat, geo.lng, ellipsoid, grid)
		if err != nil {
			return nil, err
		}
		return NewZonedGridPoint(res.Zone, res.Easting, res.Northing, grid)
	case KindLambertConic:
		res, err := ProjectLCC(geo.lat, geo.lng, ellipsoid, grid)
		if err != nil {
			return nil, err
		}
		return NewConicGridPoint(res.Easting, res.Northing, grid)
	case KindGridReference:
		res, err := ProjectTM(geo.lat, geo.lng, ellipsoid, grid)
		if err != nil {
			return nil, err
		}
		return EncodeGridReference(res.Zone, res.Easting, res.Northing, maxPrecision, grid)
	}
	return nil, &UnsupportedTransformError{From: geo.datum.Code, To: grid.Code, Reason: "grid kind " + grid.Kind.String()}
}
