package verify

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	aocssim "github.com/circumscriptor/attitude-orbit-simulator"
)

func testMaterial() aocssim.JAParams {
	return aocssim.JAParams{Ms: 159155, A: 12, K: 15, C: 0.2, Alpha: 0.001}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	var rows [][]string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		rows = append(rows, strings.Split(sc.Text(), ","))
	}
	return rows
}

func TestHysteresisTracesClosedLoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loop.csv")
	if err := Hysteresis(testMaterial(), 2, path); err != nil {
		t.Fatal(err)
	}
	rows := readCSV(t, path)
	if len(rows) < 3 {
		t.Fatalf("got %d rows, want header + samples", len(rows))
	}
	if rows[0][0] != "time" {
		t.Fatalf("header = %v", rows[0])
	}
	last := rows[len(rows)-1]
	m, err := strconv.ParseFloat(last[2], 64)
	if err != nil {
		t.Fatal(err)
	}
	if m > testMaterial().Ms || m < -testMaterial().Ms {
		t.Errorf("final M = %v exceeds Ms = %v", m, testMaterial().Ms)
	}
}

func TestHysteresisRejectsNonPositiveCycles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loop.csv")
	if err := Hysteresis(testMaterial(), 0, path); err == nil {
		t.Fatal("expected ConfigurationError for cycles <= 0")
	}
}

func testOrbit() aocssim.OrbitalElements {
	return aocssim.OrbitalElements{
		SemiMajorAxis: aocssim.WGS84SemiMajorAxis + 700000,
		Eccentricity:  0.001,
		Inclination:   1.7,
		RAAN:          0,
		ArgPeriapsis:  0,
		MeanAnomaly:   0,
	}
}

func TestOrbitWritesPlausibleTrajectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orbit.csv")
	if err := Orbit(testOrbit(), 600, path); err != nil {
		t.Fatal(err)
	}
	rows := readCSV(t, path)
	if len(rows) < 2 {
		t.Fatal("expected at least one data row")
	}
	rNorm, err := strconv.ParseFloat(rows[len(rows)-1][1], 64)
	if err != nil {
		t.Fatal(err)
	}
	if rNorm < aocssim.WGS84SemiMajorAxis || rNorm > 2*aocssim.WGS84SemiMajorAxis {
		t.Errorf("||r|| = %v, outside plausible LEO range", rNorm)
	}
}

func testSpacecraft(t *testing.T) *aocssim.Spacecraft {
	t.Helper()
	craft, err := aocssim.NewSpacecraft(aocssim.SpacecraftParams{
		MassG: 1200,
		DimXM: 0.1, DimYM: 0.1, DimZM: 0.2,
		Magnet: aocssim.MagnetParams{RemanenceT: 1.32, LengthM: 0.03, DiameterM: 0.01, OrientationBody: []float64{0, 0, 1}},
	})
	if err != nil {
		t.Fatal(err)
	}
	return craft
}

type verifyConstantField struct{}

func (verifyConstantField) ComputeFieldsAt(t float64, r, v []float64) ([]float64, []float64, []float64, error) {
	return []float64{0, 3e-5, 0}, []float64{0, 0, 0}, []float64{0, 0, 0}, nil
}

func TestAttitudeHoldsPositionFixed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attitude.csv")
	craft := testSpacecraft(t)
	if err := Attitude(craft, verifyConstantField{}, [3]float64{0.01, 0.02, 0.03}, 60, path); err != nil {
		t.Fatal(err)
	}
	rows := readCSV(t, path)
	if len(rows) < 2 {
		t.Fatal("expected at least one data row")
	}
	header := rows[0]
	rxCol := -1
	for i, h := range header {
		if h == "r_x" {
			rxCol = i
		}
	}
	if rxCol < 0 {
		t.Fatal("expected r_x column in attitude output")
	}
	first, err := strconv.ParseFloat(rows[1][rxCol], 64)
	if err != nil {
		t.Fatal(err)
	}
	last, err := strconv.ParseFloat(rows[len(rows)-1][rxCol], 64)
	if err != nil {
		t.Fatal(err)
	}
	if first != last {
		t.Errorf("r_x drifted from %v to %v, want fixed position", first, last)
	}
}
