package ausgrid_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tzneal/ausgrid"
)

func TestEllipsoidConstants(t *testing.T) {
	tests := []struct {
		ellipsoid *ausgrid.Ellipsoid
		e2, e     float64
	}{
		{ausgrid.WGS84Ellipsoid, 0.006694380, 0.081819191},
		{ausgrid.GRS80, 0.006694380, 0.081819191},
		{ausgrid.ANS, 0.006694542, 0.08182018},
		{ausgrid.Clarke1866, 0.006785162, 0.082372092},
	}
	for _, tc := range tests {
		c := tc.ellipsoid.Constants()
		assert.InDelta(t, tc.e2, c.E2, 1e-9, tc.ellipsoid.Code)
		assert.InDelta(t, tc.e, c.E, 1e-8, tc.ellipsoid.Code)
		assert.InDelta(t, c.A*(1-c.F), c.B, 1e-9, tc.ellipsoid.Code)
		assert.InDelta(t, c.F/(2-c.F), c.N, 1e-15, tc.ellipsoid.Code)
		if c.B >= c.A {
			t.Fatalf("%s: expected b < a", tc.ellipsoid)
		}
	}
	assert.InDelta(t, 1.6792203946287448e-03, ausgrid.GRS80.ThirdFlattening(), 1e-15)
}

func TestNewEllipsoid(t *testing.T) {
	var de *ausgrid.DomainError
	if _, err := ausgrid.NewEllipsoid("X", "bad", 0, 298); !errors.As(err, &de) {
		t.Fatalf("expected DomainError for a zero semi-major axis, got %v", err)
	}
	if _, err := ausgrid.NewEllipsoid("X", "bad", 6378137, 1); !errors.As(err, &de) {
		t.Fatalf("expected DomainError for unit flattening, got %v", err)
	}
	e, err := ausgrid.NewEllipsoid("X", "sphere-ish", 6371000, 1e9)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if e.SemiMinorAxis() >= e.SemiMajorAxis {
		t.Fatalf("expected b < a")
	}
}

func TestEllipsoidRegistry(t *testing.T) {
	for _, code := range []string{"WGS84", "GRS80", "GRS67", "ANS", "CLARKE"} {
		if _, ok := ausgrid.LookupEllipsoid(code); !ok {
			t.Fatalf("expected ellipsoid %s to be registered", code)
		}
	}
	if len(ausgrid.Ellipsoids()) != 5 {
		t.Fatalf("expected 5 ellipsoids, got %d", len(ausgrid.Ellipsoids()))
	}
}

func TestDatums(t *testing.T) {
	tests := []struct {
		code      string
		ellipsoid *ausgrid.Ellipsoid
		epsg      int
	}{
		{"WGS84", ausgrid.WGS84Ellipsoid, 4326},
		{"GDA2020", ausgrid.GRS80, 7844},
		{"GDA94", ausgrid.GRS80, 4283},
		{"AGD84", ausgrid.ANS, 4203},
		{"AGD66", ausgrid.ANS, 4202},
	}
	for _, tc := range tests {
		d, ok := ausgrid.LookupDatum(tc.code)
		if !ok {
			t.Fatalf("expected datum %s to be registered", tc.code)
		}
		if d.Ellipsoid != tc.ellipsoid || d.EPSG != tc.epsg {
			t.Fatalf("%s: unexpected datum %+v", tc.code, d)
		}
	}
	if !ausgrid.GDA94.SameEllipsoid(ausgrid.GDA2020) {
		t.Fatalf("expected GDA94 and GDA2020 to share an ellipsoid")
	}
	if ausgrid.GDA94.SameEllipsoid(ausgrid.AGD66) {
		t.Fatalf("expected GDA94 and AGD66 to differ")
	}
	if len(ausgrid.Datums()) != 5 {
		t.Fatalf("expected 5 datums, got %d", len(ausgrid.Datums()))
	}
}
