package aocssim

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// State is the compound integration variable (spec.md 3/4.6): inertial
// position and velocity, attitude quaternion, body angular velocity, and one
// irreversible rod magnetization per hysteresis rod. It supports the
// vector-space operations the adaptive stepper requires: component-wise
// add/subtract, scalar multiply, component-wise absolute value, and an
// infinity norm. The quaternion is treated as a plain 4-vector for these
// operations; its unit-norm constraint is a physical invariant restored at
// checkpoints, not enforced here (spec.md 3, 9 "Quaternion drift").
type State struct {
	R, V  [3]float64
	Q     quat.Number
	Omega [3]float64
	MIrr  []float64
}

// NewState builds a zero-valued state sized for n rods.
func NewState(n int) State {
	return State{MIrr: make([]float64, n)}
}

// Clone returns a deep copy (MIrr has its own backing array).
func (s State) Clone() State {
	out := s
	out.MIrr = append([]float64(nil), s.MIrr...)
	return out
}

// Add returns the component-wise sum s + o, with s's rod count. Panics if o
// has fewer rods than s; extra rods in o are ignored. Callers own matching N
// for the duration of a run (spec.md 4.9).
func (s State) Add(o State) State {
	out := s.Clone()
	for i := 0; i < 3; i++ {
		out.R[i] += o.R[i]
		out.V[i] += o.V[i]
		out.Omega[i] += o.Omega[i]
	}
	out.Q = quat.Add(s.Q, o.Q)
	for i := range out.MIrr {
		out.MIrr[i] += o.MIrr[i]
	}
	return out
}

// AddScalar returns s with k added to every component, including the
// quaternion coefficients (spec.md 4.6 "scalar ... addition").
func (s State) AddScalar(k float64) State {
	out := s.Clone()
	for i := 0; i < 3; i++ {
		out.R[i] += k
		out.V[i] += k
		out.Omega[i] += k
	}
	out.Q = quat.Number{Real: s.Q.Real + k, Imag: s.Q.Imag + k, Jmag: s.Q.Jmag + k, Kmag: s.Q.Kmag + k}
	for i := range out.MIrr {
		out.MIrr[i] += k
	}
	return out
}

// Sub returns the component-wise difference s - o.
func (s State) Sub(o State) State {
	return s.Add(o.Scale(-1))
}

// Scale returns the component-wise product k*s, including the quaternion
// coefficients (treated as a 4-vector, spec.md 4.6).
func (s State) Scale(k float64) State {
	out := s.Clone()
	for i := 0; i < 3; i++ {
		out.R[i] *= k
		out.V[i] *= k
		out.Omega[i] *= k
	}
	out.Q = quat.Scale(k, s.Q)
	for i := range out.MIrr {
		out.MIrr[i] *= k
	}
	return out
}

// Abs returns the component-wise absolute value of every field.
func (s State) Abs() State {
	out := s.Clone()
	for i := 0; i < 3; i++ {
		out.R[i] = math.Abs(out.R[i])
		out.V[i] = math.Abs(out.V[i])
		out.Omega[i] = math.Abs(out.Omega[i])
	}
	out.Q = quat.Number{Real: math.Abs(s.Q.Real), Imag: math.Abs(s.Q.Imag), Jmag: math.Abs(s.Q.Jmag), Kmag: math.Abs(s.Q.Kmag)}
	for i := range out.MIrr {
		out.MIrr[i] = math.Abs(out.MIrr[i])
	}
	return out
}

// InfNorm returns max(|component|) across r, v, q-coefficients, omega, and
// (if N>0) M_irr (spec.md 4.6).
func (s State) InfNorm() float64 {
	m := 0.0
	consider := func(x float64) {
		if a := math.Abs(x); a > m {
			m = a
		}
	}
	for i := 0; i < 3; i++ {
		consider(s.R[i])
		consider(s.V[i])
		consider(s.Omega[i])
	}
	consider(s.Q.Real)
	consider(s.Q.Imag)
	consider(s.Q.Jmag)
	consider(s.Q.Kmag)
	for _, m_i := range s.MIrr {
		consider(m_i)
	}
	return m
}

// ResizeLike grows or shrinks MIrr to match a reference state's rod count,
// zero-filling new entries (spec.md 4.6 "resize hook").
func (s State) ResizeLike(ref State) State {
	out := s.Clone()
	n := len(ref.MIrr)
	if len(out.MIrr) == n {
		return out
	}
	resized := make([]float64, n)
	copy(resized, out.MIrr)
	out.MIrr = resized
	return out
}

// NormalizeQuaternion restores the unit-norm invariant, used at checkpoints
// (spec.md 4.9).
func (s State) NormalizeQuaternion() State {
	out := s.Clone()
	out.Q = QuatNormalize(s.Q)
	return out
}

// ClampMagnetizations clamps every M_irr to [-Ms, +Ms] for the corresponding
// rod's saturation magnetization, used at checkpoints (spec.md 4.9).
func (s State) ClampMagnetizations(rods []*Rod) State {
	out := s.Clone()
	for i, rod := range rods {
		if i >= len(out.MIrr) {
			break
		}
		ms := rod.params.Ms
		if out.MIrr[i] > ms {
			out.MIrr[i] = ms
		} else if out.MIrr[i] < -ms {
			out.MIrr[i] = -ms
		}
	}
	return out
}

// Rslice/Vslice/OmegaSlice give []float64 views for the helpers in
// geometry.go/dynamics.go that operate on plain 3-vectors.
func (s State) Rslice() []float64     { return []float64{s.R[0], s.R[1], s.R[2]} }
func (s State) Vslice() []float64     { return []float64{s.V[0], s.V[1], s.V[2]} }
func (s State) OmegaSlice() []float64 { return []float64{s.Omega[0], s.Omega[1], s.Omega[2]} }
