package ausgrid_test

import (
	"errors"
	"testing"

	"github.com/golang/geo/s2"

	"github.com/tzneal/ausgrid"
)

func TestZonedConstants(t *testing.T) {
	zc := ausgrid.MGA2020.Zoned
	for zone := 49; zone <= 56; zone++ {
		want := 111 + float64(zone-49)*6
		if got := zc.CentralMeridian(zone); got != want {
			t.Fatalf("zone %d: expected central meridian %v, got %v", zone, want, got)
		}
		if got := zc.Zone(want); got != zone {
			t.Fatalf("central meridian %v: expected zone %d, got %d", want, zone, got)
		}
	}
	if zc.Zone(-177) != 1 || zc.Zone(-180) != 1 || zc.Zone(179.9) != 60 {
		t.Fatalf("unexpected zones at the antimeridian")
	}
	if zc.Zones() != 60 {
		t.Fatalf("expected 60 zones, got %d", zc.Zones())
	}
}

func TestGridEPSG(t *testing.T) {
	tests := []struct {
		grid *ausgrid.Grid
		zone int
		epsg int
	}{
		{ausgrid.MGA94, 55, 28355},
		{ausgrid.MGA94, 49, 28349},
		{ausgrid.MGA2020, 55, 7855},
		{ausgrid.MGA2020, 56, 7856},
		{ausgrid.VICGRID, 0, 3110},
		{ausgrid.VICGRID94, 0, 3111},
	}
	for _, tc := range tests {
		if got := tc.grid.EPSG(tc.zone); got != tc.epsg {
			t.Fatalf("%s zone %d: expected EPSG %d, got %d", tc.grid, tc.zone, tc.epsg, got)
		}
	}
}

func TestGridRegistry(t *testing.T) {
	for _, code := range []string{"MGA94", "MGA2020", "VICGRID", "VICGRID94", "MGRS"} {
		g, ok := ausgrid.LookupGrid(code)
		if !ok {
			t.Fatalf("expected grid %s to be registered", code)
		}
		if g.Kind == ausgrid.KindInvalid {
			t.Fatalf("%s: expected a valid kind", code)
		}
	}
	if ausgrid.VICGRID.Datum != ausgrid.AGD66 || ausgrid.VICGRID94.Datum != ausgrid.GDA94 {
		t.Fatalf("unexpected VICGRID datums")
	}
	if ausgrid.MGRS.Datum != ausgrid.GDA2020 {
		t.Fatalf("expected MGRS over GDA2020")
	}
	if len(ausgrid.Grids()) != 5 {
		t.Fatalf("expected 5 grids, got %d", len(ausgrid.Grids()))
	}
}

func TestCheckZone(t *testing.T) {
	var de *ausgrid.DomainError
	for _, zone := range []int{0, 61, -5} {
		if err := ausgrid.MGA2020.CheckZone(zone); !errors.As(err, &de) {
			t.Fatalf("zone %d: expected DomainError, got %v", zone, err)
		}
	}
	if err := ausgrid.VICGRID94.CheckZone(55); !errors.As(err, &de) {
		t.Fatalf("expected DomainError for a conic grid, got %v", err)
	}
}

func TestGridsCovering(t *testing.T) {
	codes := func(gs []*ausgrid.Grid) []string {
		var out []string
		for _, g := range gs {
			out = append(out, g.Code)
		}
		return out
	}

	// Melbourne is inside Victoria and the MGA grids
	got := codes(ausgrid.GridsCovering(-37.81, 144.96))
	want := []string{"MGA2020", "MGA94", "MGRS", "VICGRID", "VICGRID94"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}

	// Darwin is outside Victoria
	got = codes(ausgrid.GridsCovering(-12.46, 130.84))
	if len(got) != 3 {
		t.Fatalf("expected only the MGA grids, got %v", got)
	}

	if got := ausgrid.GridsCovering(51.5, -0.12); len(got) != 0 {
		t.Fatalf("expected no grids in London, got %v", codes(got))
	}
}

func TestGridCovers(t *testing.T) {
	tests := []struct {
		grid     *ausgrid.Grid
		lat, lng float64
		want     bool
	}{
		{ausgrid.VICGRID94, -37.81, 144.96, true},
		{ausgrid.VICGRID94, -39.2, 140.96, true}, // south-west corner
		{ausgrid.VICGRID94, -39.2000001, 145, false},
		{ausgrid.VICGRID94, -33.5, 145, false},
		{ausgrid.MGA2020, -8, 156, true},
		{ausgrid.MGA2020, -7.99, 130, false},
		{ausgrid.MGA2020, -30, 107.9, false},
	}
	for _, tc := range tests {
		if got := tc.grid.Covers(s2.LatLngFromDegrees(tc.lat, tc.lng)); got != tc.want {
			t.Fatalf("%s covers (%v, %v): expected %v, got %v", tc.grid, tc.lat, tc.lng, tc.want, got)
		}
	}

	// just outside the Victorian extent the padded index query still matches
	got := ausgrid.GridsCovering(-39.2000000005, 145)
	for _, g := range got {
		if g == ausgrid.VICGRID || g == ausgrid.VICGRID94 {
			t.Fatalf("expected no Victorian grid south of the extent, got %s", g)
		}
	}
	if len(got) != 3 {
		t.Fatalf("expected the three MGA grids, got %d", len(got))
	}
}
