package ausgrid_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tzneal/ausgrid"
)

// shiftTransformer moves GDA94 coordinates by a fixed offset into GDA2020.
type shiftTransformer struct {
	mu    sync.Mutex
	calls [][2]int
	err   error
}

const shiftLat = 1.2e-5
const shiftLng = 1.4e-5

func (s *shiftTransformer) Transform(ctx context.Context, coords []ausgrid.Coordinate, src, dst int) ([]ausgrid.Coordinate, error) {
	s.mu.Lock()
	s.calls = append(s.calls, [2]int{src, dst})
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	sign := 0.0
	switch {
	case src == ausgrid.GDA94.EPSG && dst == ausgrid.GDA2020.EPSG:
		sign = 1
	case src == ausgrid.GDA2020.EPSG && dst == ausgrid.GDA94.EPSG:
		sign = -1
	default:
		return nil, errors.New("unsupported pair")
	}
	out := make([]ausgrid.Coordinate, len(coords))
	for i, c := range coords {
		out[i] = ausgrid.Coordinate{X: c.X + sign*shiftLng, Y: c.Y + sign*shiftLat}
	}
	return out, nil
}

func mustGeographic(t *testing.T, lat, lng float64, datum *ausgrid.Datum) ausgrid.Geographic {
	t.Helper()
	g, err := ausgrid.NewGeographic(lat, lng, datum)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	return g
}

func TestTransformToGrids(t *testing.T) {
	conv := ausgrid.NewConverter(nil, nil, nil)
	ctx := context.Background()

	geo := mustGeographic(t, -37.5, 145.3, ausgrid.GDA2020)
	pt, err := conv.Transform(ctx, geo, ausgrid.MGA2020)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	zp, ok := pt.(ausgrid.ZonedGridPoint)
	if !ok {
		t.Fatalf("expected a ZonedGridPoint, got %T", pt)
	}
	res, _ := ausgrid.ProjectTM(-37.5, 145.3, ausgrid.GRS80, ausgrid.MGA2020)
	if zp.Zone != res.Zone || zp.Easting != res.Easting || zp.Northing != res.Northing {
		t.Fatalf("expected %+v, got %s", res, zp)
	}

	pt, err = conv.Transform(ctx, geo, ausgrid.MGRS)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	ref, ok := pt.(ausgrid.GridReference)
	if !ok {
		t.Fatalf("expected a GridReference, got %T", pt)
	}
	want, _ := ausgrid.EncodeGridReference(res.Zone, res.Easting, res.Northing, 5, ausgrid.MGRS)
	if !ref.Equal(want) || ref.Band != 'H' {
		t.Fatalf("expected %s, got %s", want, ref)
	}

	geo94 := mustGeographic(t, -37.5, 145.3, ausgrid.GDA94)
	pt, err = conv.Transform(ctx, geo94, ausgrid.VICGRID94)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	cp, ok := pt.(ausgrid.ConicGridPoint)
	if !ok {
		t.Fatalf("expected a ConicGridPoint, got %T", pt)
	}
	lres, _ := ausgrid.ProjectLCC(-37.5, 145.3, ausgrid.GRS80, ausgrid.VICGRID94)
	if cp.Easting != lres.Easting || cp.Northing != lres.Northing {
		t.Fatalf("expected %+v, got %s", lres, cp)
	}
}

func TestTransformBetweenGridsOnOneDatum(t *testing.T) {
	conv := ausgrid.NewConverter(nil, nil, nil)
	ctx := context.Background()

	p, _ := ausgrid.NewZonedGridPoint(55, 320000, 5812000, ausgrid.MGA94)
	pt, err := conv.Transform(ctx, p, ausgrid.VICGRID94)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	back, err := conv.Transform(ctx, pt, ausgrid.MGA94)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	zp := back.(ausgrid.ZonedGridPoint)
	assert.InDelta(t, 320000, zp.Easting, 1e-6)
	assert.InDelta(t, 5812000, zp.Northing, 1e-6)

	same, err := conv.Transform(ctx, p, ausgrid.MGA94)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !same.(ausgrid.ZonedGridPoint).Equal(p) {
		t.Fatalf("expected the point unchanged, got %s", same)
	}

	pt, err = conv.Transform(ctx, p, ausgrid.GDA94)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if pt.Datum() != ausgrid.GDA94 {
		t.Fatalf("expected GDA94, got %s", pt.Datum())
	}
}

func TestTransformNeedsTransformer(t *testing.T) {
	conv := ausgrid.NewConverter(nil, nil, nil)
	geo := mustGeographic(t, -37.5, 145.3, ausgrid.GDA94)

	_, err := conv.Transform(context.Background(), geo, ausgrid.MGA2020)
	var ue *ausgrid.UnsupportedTransformError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UnsupportedTransformError, got %v", err)
	}
	if _, err := conv.Transform(context.Background(), geo, ausgrid.AGD66); !errors.As(err, &ue) {
		t.Fatalf("expected UnsupportedTransformError, got %v", err)
	}
	var nilGrid *ausgrid.Grid
	if _, err := conv.Transform(context.Background(), geo, nilGrid); !errors.As(err, &ue) {
		t.Fatalf("expected UnsupportedTransformError for a nil target, got %v", err)
	}
}

func TestTransformWithTransformer(t *testing.T) {
	tr := &shiftTransformer{}
	conv := ausgrid.NewConverter(tr, nil, nil)
	ctx := context.Background()

	geo := mustGeographic(t, -37.5, 145.3, ausgrid.GDA94)
	pt, err := conv.Transform(ctx, geo, ausgrid.MGA2020)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(tr.calls) != 1 || tr.calls[0] != [2]int{4283, 7844} {
		t.Fatalf("expected one GDA94 to GDA2020 call, got %v", tr.calls)
	}
	res, _ := ausgrid.ProjectTM(-37.5+shiftLat, 145.3+shiftLng, ausgrid.GRS80, ausgrid.MGA2020)
	zp := pt.(ausgrid.ZonedGridPoint)
	if zp.Easting != res.Easting || zp.Northing != res.Northing {
		t.Fatalf("expected %+v, got %s", res, zp)
	}

	pt, err = conv.Transform(ctx, geo, ausgrid.GDA2020)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	g := pt.(ausgrid.Geographic)
	assert.InDelta(t, -37.5+shiftLat, g.Lat(), 1e-12)
	assert.InDelta(t, 145.3+shiftLng, g.Lng(), 1e-12)

	failure := errors.New("database unavailable")
	conv = ausgrid.NewConverter(&shiftTransformer{err: failure}, nil, nil)
	if _, err := conv.Transform(ctx, geo, ausgrid.GDA2020); !errors.Is(err, failure) {
		t.Fatalf("expected wrapped collaborator error, got %v", err)
	}
}

func TestTransformAll(t *testing.T) {
	conv := &ausgrid.Converter{Concurrency: 3}
	var pts []ausgrid.Point
	for i := 0; i < 20; i++ {
		pts = append(pts, mustGeographic(t, -30-float64(i)*0.4, 140+float64(i)*0.5, ausgrid.GDA2020))
	}
	out, err := conv.TransformAll(context.Background(), pts, ausgrid.MGA2020)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(out) != len(pts) {
		t.Fatalf("expected %d points, got %d", len(pts), len(out))
	}
	for i, p := range out {
		g := pts[i].(ausgrid.Geographic)
		res, _ := ausgrid.ProjectTM(g.Lat(), g.Lng(), ausgrid.GRS80, ausgrid.MGA2020)
		zp := p.(ausgrid.ZonedGridPoint)
		if zp.Easting != res.Easting || zp.Northing != res.Northing {
			t.Fatalf("point %d out of order", i)
		}
	}

	pts = append(pts, mustGeographic(t, -30, 140, ausgrid.AGD66))
	if _, err := conv.TransformAll(context.Background(), pts, ausgrid.MGA2020); err == nil {
		t.Fatalf("expected error for a point needing a datum shift")
	}
}

func TestDistanceGeographic(t *testing.T) {
	conv := ausgrid.NewConverter(nil, nil, nil)
	ctx := context.Background()

	flinders := mustGeographic(t, mustDMS(t, -37, 57, 3.72030), mustDMS(t, 144, 25, 29.52440), ausgrid.GDA2020)
	buninyong := mustGeographic(t, mustDMS(t, -37, 39, 10.15610), mustDMS(t, 143, 55, 35.38390), ausgrid.GDA2020)
	d, err := conv.Distance(ctx, flinders, buninyong)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	assert.InDelta(t, 54972.271, d, 1e-3)

	d, err = conv.Distance(ctx, flinders, flinders)
	if err != nil || d != 0 {
		t.Fatalf("expected 0, got %v (%v)", d, err)
	}

	// a grid point is inverted onto the origin's datum
	pt, _ := conv.Transform(ctx, buninyong, ausgrid.MGA2020)
	d, err = conv.Distance(ctx, flinders, pt)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	assert.InDelta(t, 54972.271, d, 1e-3)

	other := mustGeographic(t, buninyong.Lat(), buninyong.Lng(), ausgrid.GDA94)
	var ue *ausgrid.UnsupportedTransformError
	if _, err := conv.Distance(ctx, flinders, other); !errors.As(err, &ue) {
		t.Fatalf("expected UnsupportedTransformError, got %v", err)
	}
}

func TestDistanceGrid(t *testing.T) {
	conv := ausgrid.NewConverter(nil, nil, nil)
	ctx := context.Background()

	a, _ := ausgrid.NewZonedGridPoint(55, 320000, 5812000, ausgrid.MGA2020)
	b, _ := ausgrid.NewZonedGridPoint(55, 320600, 5812800, ausgrid.MGA2020)
	d, err := conv.Distance(ctx, a, b)
	if err != nil || d != 1000 {
		t.Fatalf("expected 1000, got %v (%v)", d, err)
	}

	ref, _ := ausgrid.GridReferenceFromSixFigure(55, 0, "FU", "275882", ausgrid.MGRS)
	zp, _ := ausgrid.NewZonedGridPoint(55, 627500, 5888200, ausgrid.MGA2020)
	d, err = conv.Distance(ctx, zp, ref)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	assert.InDelta(t, 0, d, 1e-6)
	d, err = conv.Distance(ctx, ref, zp)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	assert.InDelta(t, 0, d, 1e-6)

	c1, _ := ausgrid.NewConicGridPoint(2500000, 2500000, ausgrid.VICGRID94)
	c2, _ := ausgrid.NewConicGridPoint(2503000, 2504000, ausgrid.VICGRID94)
	d, err = conv.Distance(ctx, c1, c2)
	if err != nil || d != 5000 {
		t.Fatalf("expected 5000, got %v (%v)", d, err)
	}

	geo := mustGeographic(t, -37, 145, ausgrid.GDA94)
	d, err = conv.Distance(ctx, c1, geo)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	assert.InDelta(t, 0, d, 1e-6)
}

func TestMagneticDeclination(t *testing.T) {
	var gotLat, gotLng float64
	decl := ausgrid.DeclinatorFunc(func(ctx context.Context, lat, lng, elevation float64, date time.Time) (float64, error) {
		gotLat, gotLng = lat, lng
		return 11.5, nil
	})
	conv := ausgrid.NewConverter(nil, decl, nil)
	ctx := context.Background()
	date := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	p, _ := ausgrid.NewZonedGridPoint(54, 600000, 6200000, ausgrid.MGA2020)
	d, err := conv.MagneticDeclination(ctx, p, date)
	if err != nil || d != 11.5 {
		t.Fatalf("expected 11.5, got %v (%v)", d, err)
	}
	geo, _ := p.Geographic()
	if gotLat != geo.Lat() || gotLng != geo.Lng() {
		t.Fatalf("expected the declination model at %s, got (%v, %v)", geo, gotLat, gotLng)
	}

	gma, err := conv.GridMagneticAngle(ctx, p, date)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	assert.InDelta(t, 11.5-0.613256375, gma, 1e-3)

	gma, err = conv.GridMagneticAngle(ctx, geo, date)
	if err != nil || gma != 11.5 {
		t.Fatalf("expected 11.5 for a geographic point, got %v (%v)", gma, err)
	}

	if _, err := ausgrid.NewConverter(nil, nil, nil).MagneticDeclination(ctx, p, date); !errors.Is(err, ausgrid.ErrNoDeclinator) {
		t.Fatalf("expected ErrNoDeclinator, got %v", err)
	}

	failure := errors.New("model unavailable")
	conv = ausgrid.NewConverter(nil, ausgrid.DeclinatorFunc(func(context.Context, float64, float64, float64, time.Time) (float64, error) {
		return math.NaN(), failure
	}), nil)
	if _, err := conv.GridMagneticAngle(ctx, p, date); !errors.Is(err, failure) {
		t.Fatalf("expected wrapped declination error, got %v", err)
	}
}
