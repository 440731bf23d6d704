package aocssim

import "math"

// PermanentMagnet is the spacecraft's single body-fixed dipole source
// (spec.md 3/4.3). Immutable post-construction.
type PermanentMagnet struct {
	moment []float64 // body-frame dipole moment, A*m^2
}

// NewPermanentMagnet builds a permanent magnet from remanence B_r [T],
// cylinder length L and diameter D [m], and a body-frame orientation unit
// vector. An empty orientation defaults to the +Z body axis (spec.md 6).
// Dipole magnitude = (B_r/mu_0) * pi*(D/2)^2*L; moment = magnitude*u.
// Rejects zero-volume or zero-orientation construction (spec.md 4.3).
func NewPermanentMagnet(remanenceT, lengthM, diameterM float64, orientation []float64) (*PermanentMagnet, error) {
	if lengthM <= 0 || diameterM <= 0 {
		return nil, ConfigurationError{Field: "magnet dimensions", Reason: "length and diameter must be positive"}
	}
	volume := math.Pi * (diameterM / 2) * (diameterM / 2) * lengthM
	if volume <= 0 {
		return nil, ConfigurationError{Field: "magnet volume", Reason: "computed cylinder volume is non-positive"}
	}
	if len(orientation) == 0 {
		orientation = []float64{0, 0, 1}
	}
	u := Unit(orientation)
	if Norm(u) == 0 {
		return nil, ConfigurationError{Field: "magnet orientation", Reason: "orientation vector must be non-zero"}
	}
	magnitude := (remanenceT / VacuumPermeability) * volume
	return &PermanentMagnet{moment: Scale3(magnitude, u)}, nil
}

// Moment returns the body-frame dipole moment vector, A*m^2.
func (m *PermanentMagnet) Moment() []float64 {
	return []float64{m.moment[0], m.moment[1], m.moment[2]}
}

// Torque returns m_p x B_body for the given body-frame field, N*m.
func (m *PermanentMagnet) Torque(bBody []float64) []float64 {
	return Cross(m.moment, bBody)
}
