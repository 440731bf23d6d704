package observer

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	aocssim "github.com/circumscriptor/attitude-orbit-simulator"
)

// HysteresisCSVWriter writes the B-H loop verification format of spec.md 6:
// header "time,H_Am,M_Am,B_T" with B = mu0*(H+M) per row, used by
// verify.Hysteresis (C11).
type HysteresisCSVWriter struct {
	f         *os.File
	w         *csv.Writer
	precision int
}

// NewHysteresisCSVWriter creates (or truncates) path, creating parent
// directories as needed, and writes the fixed header row.
func NewHysteresisCSVWriter(path string, precision int) (*HysteresisCSVWriter, error) {
	if precision <= 0 {
		precision = defaultPrecision
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, aocssim.ObserverFailure{Cause: err}
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, aocssim.ObserverFailure{Cause: err}
	}
	w := csv.NewWriter(f)
	if err := w.Write([]string{"time", "H_Am", "M_Am", "B_T"}); err != nil {
		f.Close()
		return nil, aocssim.ObserverFailure{Cause: err}
	}
	return &HysteresisCSVWriter{f: f, w: w, precision: precision}, nil
}

// WriteSample appends one (t, H, M) row, computing B = mu0*(H+M).
func (h *HysteresisCSVWriter) WriteSample(t, hField, m float64) error {
	b := aocssim.VacuumPermeability * (hField + m)
	row := []string{
		strconv.FormatFloat(t, 'f', h.precision, 64),
		strconv.FormatFloat(hField, 'f', h.precision, 64),
		strconv.FormatFloat(m, 'f', h.precision, 64),
		strconv.FormatFloat(b, 'f', h.precision+3, 64),
	}
	if err := h.w.Write(row); err != nil {
		return aocssim.ObserverFailure{Cause: err}
	}
	return nil
}

// Close flushes and closes the underlying file.
func (h *HysteresisCSVWriter) Close() error {
	h.w.Flush()
	if err := h.w.Error(); err != nil {
		h.f.Close()
		return aocssim.ObserverFailure{Cause: err}
	}
	if err := h.f.Close(); err != nil {
		return aocssim.ObserverFailure{Cause: err}
	}
	return nil
}
