package aocssim

import (
	"math"
)

// OrbitalElements are the six classical Keplerian elements (spec.md 3),
// frozen at t=0 and converted once into inertial position/velocity.
type OrbitalElements struct {
	SemiMajorAxis       float64 // a, meters, > 0
	Eccentricity        float64 // e, [0, 1)
	Inclination         float64 // i, radians
	RAAN                float64 // Omega, radians
	ArgPeriapsis        float64 // omega_p, radians
	MeanAnomaly         float64 // M0, radians
}

// keplerTolerance and keplerMaxIter bound the Newton-Raphson eccentric
// anomaly solve (spec.md 4.2).
const (
	keplerTolerance = 1e-9
	keplerMaxIter   = 100
)

// SolveEccentricAnomaly solves Kepler's equation M = E - e*sin(E) for E by
// Newton-Raphson, starting at E=M, per spec.md 4.2. Returns a NumericalAbort
// if the iteration does not converge within keplerMaxIter steps.
func SolveEccentricAnomaly(meanAnomaly, eccentricity float64) (float64, error) {
	e := meanAnomaly
	for i := 0; i < keplerMaxIter; i++ {
		f := e - eccentricity*math.Sin(e) - meanAnomaly
		fPrime := 1 - eccentricity*math.Cos(e)
		delta := f / fPrime
		e -= delta
		if math.Abs(delta) < keplerTolerance {
			return e, nil
		}
	}
	return 0, NumericalAbort{Reason: "Kepler solver did not converge within iteration cap"}
}

// ToCartesian converts the elements to inertial position (meters) and
// velocity (m/s) about Earth, following spec.md 4.2: Newton-Raphson for the
// eccentric anomaly, the true-anomaly/perifocal-radius formulas, and a
// 3-1-3 (Omega, i, omega_p) Euler rotation into the inertial frame.
func (oe OrbitalElements) ToCartesian() (r, v []float64, err error) {
	eAnom, err := SolveEccentricAnomaly(oe.MeanAnomaly, oe.Eccentricity)
	if err != nil {
		return nil, nil, err
	}

	nu := 2 * math.Atan2(
		math.Sqrt(1+oe.Eccentricity)*math.Sin(eAnom/2),
		math.Sqrt(1-oe.Eccentricity)*math.Cos(eAnom/2),
	)

	sinNu, cosNu := math.Sincos(nu)
	rMag := oe.SemiMajorAxis * (1 - oe.Eccentricity*oe.Eccentricity) / (1 + oe.Eccentricity*cosNu)

	p := oe.SemiMajorAxis * (1 - oe.Eccentricity*oe.Eccentricity)
	h := math.Sqrt(EarthMu / p)

	rPqw := []float64{rMag * cosNu, rMag * sinNu, 0}
	vPqw := []float64{-h * sinNu, h * (oe.Eccentricity + cosNu), 0}

	rot := R313(-oe.RAAN, -oe.Inclination, -oe.ArgPeriapsis)
	r = MxV33(rot, rPqw)
	v = MxV33(rot, vPqw)
	return r, v, nil
}

// SpecificAngularMomentum returns sqrt(mu*a*(1-e^2)), used by the Kepler
// round-trip invariant in spec.md 8.
func (oe OrbitalElements) SpecificAngularMomentum() float64 {
	return math.Sqrt(EarthMu * oe.SemiMajorAxis * (1 - oe.Eccentricity*oe.Eccentricity))
}

// EccentricityVectorMagnitude recomputes |e| from a propagated (r, v) pair,
// used to validate the Kepler round-trip invariant in spec.md 8.
func EccentricityVectorMagnitude(r, v []float64) float64 {
	rNorm := Norm(r)
	vNorm := Norm(v)
	rDotV := Dot(r, v)
	eVec := make([]float64, 3)
	for i := 0; i < 3; i++ {
		eVec[i] = ((vNorm*vNorm-EarthMu/rNorm)*r[i] - rDotV*v[i]) / EarthMu
	}
	return Norm(eVec)
}
