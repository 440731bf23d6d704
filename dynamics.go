package aocssim

import (
	"gonum.org/v1/gonum/num/quat"
)

// Dynamics is the C8 assembly: it turns a State at local time tau into
// dY/dtau by consulting the environment, the spacecraft's magnet and rods,
// gravity-gradient and gyroscopic torque, and quaternion kinematics
// (spec.md 4.8). It holds a fixed global-time offset so a stepper that
// always starts its own clock at zero can still resume from a checkpoint.
type Dynamics struct {
	craft *Spacecraft
	env   FieldModel
	t0    float64
}

// NewDynamics builds the functor for a spacecraft/environment pair, with
// global time t = t0 + tau.
func NewDynamics(craft *Spacecraft, env FieldModel, t0 float64) *Dynamics {
	return &Dynamics{craft: craft, env: env, t0: t0}
}

// SetOffset updates t0, used when a checkpointed run resumes the stepper's
// local clock at zero (spec.md 4.9).
func (d *Dynamics) SetOffset(t0 float64) { d.t0 = t0 }

// Offset returns the current global-time offset.
func (d *Dynamics) Offset() float64 { return d.t0 }

// Craft returns the spacecraft this functor evaluates against, for callers
// (the checkpointed integrator driver) that need the rod list to clamp
// magnetizations at a checkpoint boundary (spec.md 4.9).
func (d *Dynamics) Craft() *Spacecraft { return d.craft }

// Eval computes dY/dtau at local time tau for state y, per spec.md 4.8
// steps 1-12.
func (d *Dynamics) Eval(tau float64, y State) (State, error) {
	t := d.t0 + tau

	qNorm := QuatNormalize(y.Q)
	rEciBody := Transpose3(RotFromQuat(qNorm))

	r := y.Rslice()
	v := y.Vslice()
	omega := y.OmegaSlice()

	bEci, bDotEci, gEci, err := d.env.ComputeFieldsAt(t, r, v)
	if err != nil {
		return State{}, err
	}

	bBody := MxV33(rEciBody, bEci)
	omegaCrossB := Cross(omega, bBody)
	bDotBody := Sub3(MxV33(rEciBody, bDotEci), omegaCrossB)

	dy := NewState(len(y.MIrr))
	dy.R = [3]float64{v[0], v[1], v[2]}
	dy.V = [3]float64{gEci[0], gEci[1], gEci[2]}

	rods := d.craft.Rods()
	torqueRods := []float64{0, 0, 0}
	for i, rod := range rods {
		mIrr := 0.0
		if i < len(y.MIrr) {
			mIrr = y.MIrr[i]
		}
		dy.MIrr[i] = rod.DerivativeFromFields(mIrr, bBody, bDotBody)
		moment := rod.MagneticMoment(mIrr, bBody)
		torqueRods = Add3(torqueRods, Cross(moment, bBody))
	}

	torqueMagnet := d.craft.Magnet().Torque(bBody)

	inertia := d.craft.Inertia()
	rBody := MxV33(rEciBody, r)
	rBodyNorm := Norm(rBody)
	iR := MxV33(inertia, rBody)
	torqueGG := []float64{0, 0, 0}
	if rBodyNorm > SingularityRadius {
		gg := (3 * EarthMu) / (rBodyNorm * rBodyNorm * rBodyNorm * rBodyNorm * rBodyNorm)
		torqueGG = Scale3(gg, Cross(rBody, iR))
	}

	iOmega := MxV33(inertia, omega)
	torqueGyro := Scale3(-1, Cross(omega, iOmega))

	torqueNet := Add3(Add3(torqueMagnet, torqueRods), Add3(torqueGG, torqueGyro))

	inertiaInv := d.craft.InertiaInverse()
	dOmega := MxV33(inertiaInv, torqueNet)
	dy.Omega = [3]float64{dOmega[0], dOmega[1], dOmega[2]}

	omegaQuat := quat.Number{Imag: omega[0], Jmag: omega[1], Kmag: omega[2]}
	dy.Q = quat.Scale(0.5, quat.Mul(qNorm, omegaQuat))

	return dy, nil
}
