package environment

// ConstantModel returns a fixed inertial B and g with Bdot always zero,
// for the S1/S2 scenario tests of spec.md 8 and for isolating attitude
// dynamics from orbital/environmental motion entirely
// (SPEC_FULL.md 4.1.a, grounded on the original prototype's
// ConstantFieldEnvironment mock).
type ConstantModel struct {
	B, G []float64
}

// NewConstantModel builds a ConstantModel. b and g are copied, not aliased.
func NewConstantModel(b, g []float64) *ConstantModel {
	return &ConstantModel{B: append([]float64(nil), b...), G: append([]float64(nil), g...)}
}

// ComputeFieldsAt implements aocssim.FieldModel, ignoring t, r, and v.
func (m *ConstantModel) ComputeFieldsAt(t float64, r, v []float64) (b, bDot, g []float64, err error) {
	return m.B, []float64{0, 0, 0}, m.G, nil
}
