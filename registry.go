package ausgrid

import "fmt"

const mgaMinEasting = 100000.0
const mgaMaxEasting = 900000.0
const mgaMinNorthing = 0.0
const mgaMaxNorthing = 10000000.0

var mgaExtent = Bounds{MinLat: -60, MaxLat: -8, MinLng: 108, MaxLng: 156}
var vicExtent = Bounds{MinLat: -39.2, MaxLat: -33.98, MinLng: 140.96, MaxLng: 150.04}

func init() {
	WGS84Ellipsoid = mustEllipsoid("WGS84", "World Geodetic System WGS84 Spheroid", 6378137, 298.257223563)
	GRS80 = mustEllipsoid("GRS80", "Geodetic Reference System 1980 Spheroid", 6378137, 298.257222101)
	GRS67 = mustEllipsoid("GRS67", "Geodetic Reference System 1967 Spheroid", 6378160, 298.247167427)
	ANS = mustEllipsoid("ANS", "Australian National Spheroid", 6378160, 298.25)
	Clarke1866 = mustEllipsoid("CLARKE", "Clarke 1866 Spheroid", 6378350.871924, 294.26)

	WGS84 = registerDatum("WGS84", "World Geodetic System 1984", WGS84Ellipsoid, 4326)
	GDA2020 = registerDatum("GDA2020", "Geocentric Datum of Australia 2020", GRS80, 7844)
	GDA94 = registerDatum("GDA94", "Geocentric Datum of Australia 1994", GRS80, 4283)
	AGD84 = registerDatum("AGD84", "Australian Geodetic Datum 1984", ANS, 4203)
	AGD66 = registerDatum("AGD66", "Australian Geodetic Datum 1966", ANS, 4202)

	mgaEnvelope := Envelope{
		MinEasting: mgaMinEasting, MaxEasting: mgaMaxEasting,
		MinNorthing: mgaMinNorthing, MaxNorthing: mgaMaxNorthing,
	}
	MGA94 = registerGrid(&Grid{
		Code: "MGA94", Name: "Map Grid of Australia (1994)",
		Kind: KindTransverseMercator, Datum: GDA94,
		Zoned: mgaConstants(283), Envelope: mgaEnvelope, Extent: mgaExtent,
	})
	MGA2020 = registerGrid(&Grid{
		Code: "MGA2020", Name: "Map Grid of Australia (2020)",
		Kind: KindTransverseMercator, Datum: GDA2020,
		Zoned: mgaConstants(78), Envelope: mgaEnvelope, Extent: mgaExtent,
	})
	VICGRID = registerGrid(&Grid{
		Code: "VICGRID", Name: "Victorian Grid (AGD66)",
		Kind: KindLambertConic, Datum: AGD66,
		Conic: vicgridConstants(4500000),
		Envelope: Envelope{
			MinEasting: 2100000, MaxEasting: 3000000,
			MinNorthing: 4200000, MaxNorthing: 4900000,
		},
		Extent: vicExtent, epsg: 3110,
	})
	VICGRID94 = registerGrid(&Grid{
		Code: "VICGRID94", Name: "Victorian Grid (GDA94)",
		Kind: KindLambertConic, Datum: GDA94,
		Conic: vicgridConstants(2500000),
		Envelope: Envelope{
			MinEasting: 2100000, MaxEasting: 3000000,
			MinNorthing: 2200000, MaxNorthing: 2900000,
		},
		Extent: vicExtent, epsg: 3111,
	})
	MGRS = registerGrid(&Grid{
		Code: "MGRS", Name: "Military Grid Reference System (MGA2020)",
		Kind: KindGridReference, Datum: GDA2020,
		Zoned:     mgaConstants(78),
		Reference: &ReferenceConstants{RowOrigin: 5500000},
		Envelope:  mgaEnvelope, Extent: mgaExtent,
	})

	var err error
	coverage, err = newCoverageIndex(Grids())
	if err != nil {
		panic(fmt.Sprintf("error constructing grid coverage index: %s", err))
	}
}
