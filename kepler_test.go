package aocssim

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestSolveEccentricAnomalyCircular(t *testing.T) {
	e, err := SolveEccentricAnomaly(1.2, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !scalar.EqualWithinAbs(e, 1.2, 1e-9) {
		t.Errorf("SolveEccentricAnomaly(M, 0) = %v, want M = 1.2", e)
	}
}

func TestSolveEccentricAnomalyConverges(t *testing.T) {
	eAnom, err := SolveEccentricAnomaly(1.0, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	// Verify Kepler's equation is satisfied by the returned root.
	residual := eAnom - 0.5*math.Sin(eAnom) - 1.0
	if !scalar.EqualWithinAbs(residual, 0, 1e-8) {
		t.Errorf("Kepler residual = %v, want ~0", residual)
	}
}

func TestToCartesianCircularOrbit(t *testing.T) {
	oe := OrbitalElements{SemiMajorAxis: 7.0e6, Eccentricity: 0, Inclination: 0, RAAN: 0, ArgPeriapsis: 0, MeanAnomaly: 0}
	r, v, err := oe.ToCartesian()
	if err != nil {
		t.Fatal(err)
	}
	if !scalar.EqualWithinAbs(Norm(r), oe.SemiMajorAxis, 1.0) {
		t.Errorf("||r|| = %v, want %v", Norm(r), oe.SemiMajorAxis)
	}
	wantSpeed := math.Sqrt(EarthMu / oe.SemiMajorAxis)
	if !scalar.EqualWithinAbs(Norm(v), wantSpeed, 1e-3) {
		t.Errorf("||v|| = %v, want %v", Norm(v), wantSpeed)
	}
	// Circular orbit: r and v must be perpendicular.
	if !scalar.EqualWithinAbs(Dot(r, v), 0, 1e-3) {
		t.Errorf("r.v = %v, want 0 for a circular orbit", Dot(r, v))
	}
}

func TestToCartesianEccentricityRoundTrip(t *testing.T) {
	oe := OrbitalElements{
		SemiMajorAxis: 7.0e6,
		Eccentricity:  0.05,
		Inclination:   0.9,
		RAAN:          0.5,
		ArgPeriapsis:  0.3,
		MeanAnomaly:   1.0,
	}
	r, v, err := oe.ToCartesian()
	if err != nil {
		t.Fatal(err)
	}
	got := EccentricityVectorMagnitude(r, v)
	if !scalar.EqualWithinAbs(got, oe.Eccentricity, 1e-6) {
		t.Errorf("recovered eccentricity = %v, want %v", got, oe.Eccentricity)
	}
}

func TestSpecificAngularMomentumMatchesCross(t *testing.T) {
	oe := OrbitalElements{
		SemiMajorAxis: 7.0e6,
		Eccentricity:  0.05,
		Inclination:   0.9,
		RAAN:          0.5,
		ArgPeriapsis:  0.3,
		MeanAnomaly:   1.0,
	}
	r, v, err := oe.ToCartesian()
	if err != nil {
		t.Fatal(err)
	}
	gotH := Norm(Cross(r, v))
	wantH := oe.SpecificAngularMomentum()
	if !scalar.EqualWithinAbs(gotH, wantH, 1.0) {
		t.Errorf("||r x v|| = %v, want %v", gotH, wantH)
	}
}
