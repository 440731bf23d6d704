package environment

import aocssim "github.com/circumscriptor/attitude-orbit-simulator"

// DipoleModel is a simplified tilted-dipole geomagnetic field plus
// point-mass gravity (SPEC_FULL.md 4.1.a), used by --verify-orbit /
// --verify-attitude and by unit tests that need a cheap, deterministic
// field without the ECEF/geodetic round trip of WMMEGMModel. The dipole
// axis and moment are fixed at construction rather than re-derived from
// Gauss coefficients each call.
type DipoleModel struct {
	moment []float64 // dipole moment direction scaled by B0*Re^3, inertial frame, T*m^3
}

// NewDipoleModel builds a DipoleModel whose field at the equator, at the
// surface, along -axis has magnitude equatorB0. axis need not be unit
// length; it is normalized.
func NewDipoleModel(equatorB0 float64, axis []float64) (*DipoleModel, error) {
	axisUnit := aocssim.Unit(axis)
	if aocssim.Norm(axisUnit) < 1e-12 {
		return nil, aocssim.ConfigurationError{Field: "axis", Reason: "dipole axis must be non-zero"}
	}
	scale := equatorB0 * aocssim.WGS84SemiMajorAxis * aocssim.WGS84SemiMajorAxis * aocssim.WGS84SemiMajorAxis
	return &DipoleModel{moment: aocssim.Scale3(scale, axisUnit)}, nil
}

// ComputeFieldsAt implements aocssim.FieldModel with a pure inertial-frame
// dipole (no Earth rotation) plus unperturbed point-mass gravity.
func (m *DipoleModel) ComputeFieldsAt(t float64, r, v []float64) (b, bDot, g []float64, err error) {
	rNorm := aocssim.Norm(r)
	if rNorm < aocssim.SingularityRadius {
		return nil, nil, nil, aocssim.NumericalAbort{T: t, Reason: "position singularity in dipole model"}
	}
	b = m.fieldAt(r)

	rStep := aocssim.Add3(r, aocssim.Scale3(gradStep, v))
	b2 := m.fieldAt(rStep)
	bDot = make([]float64, 3)
	for i := range bDot {
		bDot[i] = (b2[i] - b[i]) / gradStep
	}

	factor := -aocssim.EarthMu / (rNorm * rNorm * rNorm)
	g = aocssim.Scale3(factor, r)
	return b, bDot, g, nil
}

// fieldAt evaluates the standard vector dipole formula
// B(r) = (Re^3*B0) * (3*(m_hat.r_hat)*r_hat - m_hat) / |r|^3.
func (m *DipoleModel) fieldAt(r []float64) []float64 {
	rNorm := aocssim.Norm(r)
	rHat := aocssim.Unit(r)
	mHat := aocssim.Unit(m.moment)
	mScale := aocssim.Norm(m.moment)
	cosTheta := aocssim.Dot(rHat, mHat)
	factor := mScale / (rNorm * rNorm * rNorm)
	out := make([]float64, 3)
	for i := range out {
		out[i] = factor * (3*cosTheta*rHat[i] - mHat[i])
	}
	return out
}
