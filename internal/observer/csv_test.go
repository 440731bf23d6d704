package observer

import (
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"gonum.org/v1/gonum/num/quat"

	aocssim "github.com/circumscriptor/attitude-orbit-simulator"
)

func sampleState(n int) aocssim.State {
	s := aocssim.NewState(n)
	s.R = [3]float64{1, 2, 3}
	s.V = [3]float64{4, 5, 6}
	s.Q = quat.Number{Real: 1, Imag: 0, Jmag: 0, Kmag: 0}
	s.Omega = [3]float64{0.1, 0.2, 0.3}
	for i := range s.MIrr {
		s.MIrr[i] = float64(i + 1)
	}
	return s
}

func TestCSVWriterCreatesNestedDirectories(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.csv")
	w, err := NewCSVWriter(path, Columns{Magnitudes: true, Elements: true}, 2, 3)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Observe(0, sampleState(2)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file at %s: %v", path, err)
	}
}

func TestCSVWriterHeaderMatchesColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	w, err := NewCSVWriter(path, Columns{Magnitudes: true, Elements: false}, 1, 3)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(contents)), "\n")
	want := "time,r,v,w,M_1"
	if lines[0] != want {
		t.Errorf("header = %q, want %q", lines[0], want)
	}
}

func TestCSVWriterRowColumnCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	w, err := NewCSVWriter(path, Columns{Magnitudes: true, Elements: true}, 3, 3)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Observe(1.5, sampleState(3)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(contents)), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2 (header + 1 row)", len(lines))
	}
	headerCols := strings.Split(lines[0], ",")
	rowCols := strings.Split(lines[1], ",")
	if len(headerCols) != len(rowCols) {
		t.Errorf("header has %d columns, row has %d", len(headerCols), len(rowCols))
	}
}

func TestHysteresisCSVWriterComputesB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hyst.csv")
	w, err := NewHysteresisCSVWriter(path, 3)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.WriteSample(0, 100, 50000); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(contents)), "\n")
	if lines[0] != "time,H_Am,M_Am,B_T" {
		t.Errorf("header = %q", lines[0])
	}
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	gotB, err := strconv.ParseFloat(strings.Split(lines[1], ",")[3], 64)
	if err != nil {
		t.Fatal(err)
	}
	wantB := aocssim.VacuumPermeability * (100 + 50000)
	if math.Abs(gotB-wantB) > 1e-6 {
		t.Errorf("B_T = %v, want %v", gotB, wantB)
	}
}
