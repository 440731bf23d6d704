package aocssim

// FieldModel is the environment contract the dynamics functor consults
// (spec.md 4.1): given elapsed simulation time t (seconds) and the current
// inertial position/velocity, return the geomagnetic field, its material
// derivative along the trajectory, and the total inertial gravity
// acceleration. Implementations live in internal/environment; this package
// only depends on the interface so the dynamics functor stays decoupled
// from any concrete harmonic-model machinery.
type FieldModel interface {
	// ComputeFieldsAt returns B_eci [T], Bdot_eci [T/s], and g_eci [m/s^2].
	ComputeFieldsAt(t float64, r, v []float64) (b, bDot, g []float64, err error)
}
