package aocssim

import "math"

// JAParams are the shared Jiles-Atherton parameters for the spacecraft's
// hysteresis rods (spec.md 3): saturation magnetization Ms [A/m], anhysteretic
// shape parameter A [A/m], pinning energy density K [A/m], reversibility
// coefficient C [0,1], and inter-domain coupling Alpha.
type JAParams struct {
	Ms    float64
	A     float64
	K     float64
	C     float64
	Alpha float64
}

// Validate checks the invariants required by spec.md 4.4/4.5.
func (p JAParams) Validate() error {
	if p.Ms <= 0 {
		return ConfigurationError{Field: "hysteresis.ms", Reason: "must be positive"}
	}
	if p.A <= 0 {
		return ConfigurationError{Field: "hysteresis.a", Reason: "must be positive"}
	}
	if p.K <= 0 {
		return ConfigurationError{Field: "hysteresis.k", Reason: "must be positive"}
	}
	if p.C < 0 || p.C > 1 {
		return ConfigurationError{Field: "hysteresis.c", Reason: "must be within [0,1]"}
	}
	if p.Alpha < 0 {
		return ConfigurationError{Field: "hysteresis.alpha", Reason: "must be non-negative"}
	}
	return nil
}

const (
	hysteresisStaticEps  = 1e-9 // static-field suppression threshold on dH/dt, A/m/s
	hysteresisDenomEps   = 1e-9 // denominator-safety floor in chi_irr
	hysteresisCausEps    = 1e-9 // causality-clamp tolerance on rate
	hysteresisKFloor     = 1e-6 // floor for k in the chi_irr magnitude cap
)

// Rod is a single soft-magnetic hysteresis damping rod (spec.md 3/4.4/4.5).
type Rod struct {
	volume      float64
	orientation []float64 // body-frame unit vector
	params      JAParams
}

// NewRod constructs a rod, validating volume, orientation, and JA parameters
// per spec.md 4.4.a.
func NewRod(volumeM3 float64, orientation []float64, params JAParams) (*Rod, error) {
	if volumeM3 <= 0 {
		return nil, ConfigurationError{Field: "rod volume", Reason: "must be positive"}
	}
	u := Unit(orientation)
	if Norm(u) == 0 {
		return nil, ConfigurationError{Field: "rod orientation", Reason: "must be non-zero"}
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Rod{volume: volumeM3, orientation: u, params: params}, nil
}

// Orientation returns the rod's body-frame unit axis.
func (r *Rod) Orientation() []float64 { return []float64{r.orientation[0], r.orientation[1], r.orientation[2]} }

// clampMirr restores the |M_irr| <= Ms invariant (spec.md 3, checkpoints).
func (r *Rod) clampMirr(mIrr float64) float64 {
	if mIrr > r.params.Ms {
		return r.params.Ms
	}
	if mIrr < -r.params.Ms {
		return -r.params.Ms
	}
	return mIrr
}

// anhysteretic evaluates the Langevin anhysteretic magnetization M_an(Heff)
// and its derivative dM_an/dHeff, branch-matched near x=0 per spec.md 4.4
// step 5 (Taylor series for |x|<1e-6, closed form otherwise).
func (r *Rod) anhysteretic(hEff float64) (man, dManDHeff float64) {
	x := hEff / r.params.A
	if math.Abs(x) < 1e-6 {
		man = r.params.Ms * (x/3 - x*x*x/45)
		dManDHeff = (r.params.Ms / r.params.A) * (1.0/3.0 - x*x/15.0)
		return
	}
	cothX := 1.0 / math.Tanh(x)
	man = r.params.Ms * (cothX - 1.0/x)
	cschX := 1.0 / math.Sinh(x)
	dManDHeff = (r.params.Ms / r.params.A) * (1.0/(x*x) - cschX*cschX)
	return
}

// Derivative returns dM_irr/dt given the rod-axis field H [A/m] and its rate
// dH/dt [A/m/s], following spec.md 4.4 steps 3-10. The caller (the dynamics
// functor, or a verification driver prescribing H(t) directly) is
// responsible for projecting the body-frame field onto the rod axis via
// DerivativeFromFields.
func (r *Rod) Derivative(mIrr, h, dhdt float64) float64 {
	if math.Abs(dhdt) < hysteresisStaticEps {
		return 0
	}
	if (mIrr >= r.params.Ms && dhdt > 0) || (mIrr <= -r.params.Ms && dhdt < 0) {
		return 0
	}

	mTilde := r.clampMirr(mIrr)
	hEff := h + r.params.Alpha*mTilde

	man, dManDHeff := r.anhysteretic(hEff)

	delta := 1.0
	if dhdt < 0 {
		delta = -1.0
	}

	denom := r.params.K*delta - r.params.Alpha*(man-mTilde)
	var chiIrr float64
	if math.Abs(denom) < hysteresisDenomEps {
		kFloor := math.Max(r.params.K, hysteresisKFloor)
		capMag := r.params.Ms / kFloor
		chiIrr = math.Copysign(capMag, man-mTilde)
	} else {
		chiIrr = (man - mTilde) / denom
	}

	chi := (1-r.params.C)*chiIrr + r.params.C*dManDHeff
	rate := chi * dhdt

	if dhdt > 0 && rate < 0 && math.Abs(rate) <= hysteresisCausEps {
		return 0
	}
	if dhdt < 0 && rate > 0 && math.Abs(rate) <= hysteresisCausEps {
		return 0
	}
	return rate
}

// DerivativeFromFields projects the body-frame field and its rate onto the
// rod axis and evaluates Derivative (spec.md 4.4 step 1, 4.8 step 6).
func (r *Rod) DerivativeFromFields(mIrr float64, bBody, bDotBody []float64) float64 {
	h := Dot(bBody, r.orientation) / VacuumPermeability
	dhdt := Dot(bDotBody, r.orientation) / VacuumPermeability
	return r.Derivative(mIrr, h, dhdt)
}

// TotalMagnetization returns M_total = (1-c)*M~ + c*M_an(Heff), the full
// reversible-plus-irreversible sum spec.md 4.4/9 adopts as the dipole
// contract (as opposed to the M_irr-only approximation some source variants
// use).
func (r *Rod) TotalMagnetization(mIrr, h float64) float64 {
	mTilde := r.clampMirr(mIrr)
	hEff := h + r.params.Alpha*mTilde
	man, _ := r.anhysteretic(hEff)
	return (1-r.params.C)*mTilde + r.params.C*man
}

// MagneticMoment returns the rod's contribution to body torque,
// M_total*V*u_i (spec.md 4.4 "Dipole moment of a rod").
func (r *Rod) MagneticMoment(mIrr float64, bBody []float64) []float64 {
	h := Dot(bBody, r.orientation) / VacuumPermeability
	mTotal := r.TotalMagnetization(mIrr, h)
	return Scale3(mTotal*r.volume, r.orientation)
}
