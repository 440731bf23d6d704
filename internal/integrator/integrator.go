// Package integrator drives the compound state (spec.md 4.6) forward in
// time with an embedded adaptive Runge-Kutta pair and PI step-size control
// (spec.md 4.9). It knows nothing about spacecraft, environment, or
// magnetics: it only requires a derivative function and a state type
// supporting the vector-space operations aocssim.State already provides.
package integrator

import (
	"math"

	kitlog "github.com/go-kit/log"

	aocssim "github.com/circumscriptor/attitude-orbit-simulator"
)

// Deriv evaluates dY/dtau at local time tau, mirroring aocssim.Dynamics.Eval.
type Deriv func(tau float64, y aocssim.State) (aocssim.State, error)

// Observer receives an accepted sample at global time t (spec.md 4.9, C10).
type Observer func(t float64, y aocssim.State) error

// Stepper selects the embedded Runge-Kutta pair (spec.md 4.9).
type Stepper int

const (
	// Dopri54 is the default Dormand-Prince 5(4) pair.
	Dopri54 Stepper = iota
	// Fehlberg78 is the higher-order pair, selected by --higher-order.
	Fehlberg78
)

func (s Stepper) tableau() *butcherTableau {
	if s == Fehlberg78 {
		return fehlberg78
	}
	return dopri54
}

// Config bundles the driver's tolerances and safety limits (spec.md 4.9,
// SPEC_FULL.md 4.9.a).
type Config struct {
	Stepper     Stepper
	AbsTol      float64 // default 1e-6
	RelTol      float64 // default 1e-6
	InitialStep float64 // seconds; a sensible default is derived if <= 0
	MinStep     float64 // step-size underflow floor, seconds
	MaxStep     float64 // 0 disables the ceiling
	MaxSteps    int     // accepted+rejected step budget; 0 means DefaultMaxSteps
	Logger      kitlog.Logger
}

// DefaultMaxSteps implements spec.md 7's "sensible default ~1000*(t_end-t_start)".
func DefaultMaxSteps(tStart, tEnd float64) int {
	n := int(1000 * math.Abs(tEnd-tStart))
	if n < 1000 {
		n = 1000
	}
	return n
}

const (
	piAlpha      = 0.7 / 5 // PI controller gain on the current error ratio
	piBeta       = 0.4 / 5 // PI controller gain on the previous error ratio
	stepSafety   = 0.9
	stepShrinkLo = 0.2
	stepGrowHi   = 5.0
	defaultAbs   = 1e-6
	defaultRel   = 1e-6
	defaultMinH  = 1e-6
)

// Driver runs the adaptive Runge-Kutta loop (C9).
type Driver struct {
	tab      *butcherTableau
	cfg      Config
	prevErr  float64
	accepted int
	rejected int
}

// NewDriver validates cfg and returns a Driver ready to run.
func NewDriver(cfg Config) (*Driver, error) {
	if cfg.AbsTol <= 0 {
		cfg.AbsTol = defaultAbs
	}
	if cfg.RelTol <= 0 {
		cfg.RelTol = defaultRel
	}
	if cfg.MinStep <= 0 {
		cfg.MinStep = defaultMinH
	}
	if cfg.Logger == nil {
		cfg.Logger = kitlog.NewNopLogger()
	}
	return &Driver{tab: cfg.Stepper.tableau(), cfg: cfg, prevErr: 1}, nil
}

// AcceptedSteps and RejectedSteps report the running step counters.
func (d *Driver) AcceptedSteps() int { return d.accepted }
func (d *Driver) RejectedSteps() int { return d.rejected }

// evaluate runs one attempt of the tableau's stages, returning the
// propagated (higher-order) and embedded (lower-order) states.
func (d *Driver) evaluate(deriv Deriv, tau, h float64, y aocssim.State) (yHigh, yLow aocssim.State, err error) {
	k := make([]aocssim.State, d.tab.stages)
	for i := 0; i < d.tab.stages; i++ {
		yi := y
		for j := 0; j < i; j++ {
			if d.tab.a[i][j] == 0 {
				continue
			}
			yi = yi.Add(k[j].Scale(h * d.tab.a[i][j]))
		}
		ki, evalErr := deriv(tau+d.tab.c[i]*h, yi)
		if evalErr != nil {
			return aocssim.State{}, aocssim.State{}, evalErr
		}
		k[i] = ki
	}
	yHigh, yLow = y, y
	for i := 0; i < d.tab.stages; i++ {
		if d.tab.b[i] != 0 {
			yHigh = yHigh.Add(k[i].Scale(h * d.tab.b[i]))
		}
		if d.tab.bStar[i] != 0 {
			yLow = yLow.Add(k[i].Scale(h * d.tab.bStar[i]))
		}
	}
	return yHigh, yLow, nil
}

// errorRatio scales the local error estimate by the caller's tolerances,
// using the component-wise infinity norm from spec.md 4.6.
func (d *Driver) errorRatio(y, yHigh, yLow aocssim.State) float64 {
	errNorm := yHigh.Sub(yLow).Abs().InfNorm()
	scale := d.cfg.AbsTol + d.cfg.RelTol*math.Max(y.InfNorm(), yHigh.InfNorm())
	if scale <= 0 {
		scale = d.cfg.AbsTol
	}
	return errNorm / scale
}

// step attempts one adaptive step from (tau, y) with trial size h, shrinking
// on rejection until accepted or h underflows MinStep.
func (d *Driver) step(deriv Deriv, tau, h float64, y aocssim.State) (yNext aocssim.State, tauNext, hNext float64, err error) {
	for {
		if math.Abs(h) < d.cfg.MinStep {
			return aocssim.State{}, tau, h, aocssim.NumericalAbort{T: tau, Reason: "step size underflow"}
		}
		yHigh, yLow, evalErr := d.evaluate(deriv, tau, h, y)
		if evalErr != nil {
			return aocssim.State{}, tau, h, evalErr
		}
		ratio := d.errorRatio(y, yHigh, yLow)
		order := float64(d.tab.order)

		if ratio <= 1 {
			d.accepted++
			factor := stepSafety * math.Pow(ratio, -piAlpha) * math.Pow(d.prevErr, piBeta)
			factor = clamp(factor, stepShrinkLo, stepGrowHi)
			d.prevErr = math.Max(ratio, 1e-10)
			hNext = h * factor
			if d.cfg.MaxStep > 0 && math.Abs(hNext) > d.cfg.MaxStep {
				hNext = math.Copysign(d.cfg.MaxStep, hNext)
			}
			return yHigh, tau + h, hNext, nil
		}

		d.rejected++
		factor := clamp(stepSafety*math.Pow(ratio, -1/order), stepShrinkLo, 1.0)
		d.cfg.Logger.Log("level", "debug", "component", "integrator", "msg", "step rejected", "t", tau, "h", h, "ratio", ratio)
		h *= factor
	}
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func (d *Driver) budgetExceeded(maxSteps int) bool {
	return d.accepted+d.rejected > maxSteps
}

// RunFullSpan integrates continuously from tStart to tEnd, calling observe
// after every accepted step (spec.md 4.9 "Full-span"). The step budget
// (spec.md 4.9.a) is computed once from the full [tStart, tEnd] span.
func (d *Driver) RunFullSpan(deriv Deriv, tStart, tEnd float64, y0 aocssim.State, observe Observer) (aocssim.State, float64, error) {
	return d.runSpan(deriv, tStart, tEnd, y0, observe, d.effectiveMaxSteps(tStart, tEnd))
}

// runSpan is RunFullSpan parameterized by an externally-computed step
// budget, so a checkpointed run can share one budget across every slice
// instead of resetting it per checkpoint.
func (d *Driver) runSpan(deriv Deriv, tStart, tEnd float64, y0 aocssim.State, observe Observer, maxSteps int) (aocssim.State, float64, error) {
	if observe != nil {
		if err := observe(tStart, y0); err != nil {
			return aocssim.State{}, tStart, aocssim.ObserverFailure{Cause: err}
		}
	}
	t := tStart
	y := y0
	h := d.initialStep(tStart, tEnd)
	dir := math.Copysign(1, tEnd-tStart)
	for (dir > 0 && t < tEnd) || (dir < 0 && t > tEnd) {
		if d.budgetExceeded(maxSteps) {
			return y, t, aocssim.IntegrationNonConvergence{T: t, MaxSteps: maxSteps}
		}
		if remaining := tEnd - t; math.Abs(h) > math.Abs(remaining) {
			h = remaining
		}
		yNext, tNext, hNext, err := d.step(deriv, t, h, y)
		if err != nil {
			return y, t, err
		}
		y, t, h = yNext, tNext, hNext
		if observe != nil {
			if err := observe(t, y); err != nil {
				return y, t, aocssim.ObserverFailure{Cause: err}
			}
		}
	}
	return y, t, nil
}

// RunCheckpointed integrates in slices of up to ckpt seconds. At every
// checkpoint boundary it restores the unit-quaternion and magnetization
// invariants, emits one observation, and advances the dynamics functor's
// global-time offset so the stepper's local clock can restart at zero
// (spec.md 4.9 "Checkpointed").
func (d *Driver) RunCheckpointed(dyn *aocssim.Dynamics, tStart, tEnd, ckpt float64, y0 aocssim.State, observe Observer) (aocssim.State, float64, error) {
	if ckpt < 1 {
		return aocssim.State{}, tStart, aocssim.ConfigurationError{Field: "checkpoint-interval", Reason: "must be >= 1 second"}
	}
	if observe != nil {
		if err := observe(tStart, y0); err != nil {
			return aocssim.State{}, tStart, aocssim.ObserverFailure{Cause: err}
		}
	}
	tGlobal := tStart
	y := y0
	rods := dyn.Craft().Rods()
	maxSteps := d.effectiveMaxSteps(tStart, tEnd)
	for tGlobal < tEnd {
		sliceEnd := tGlobal + ckpt
		if sliceEnd > tEnd {
			sliceEnd = tEnd
		}
		dyn.SetOffset(tGlobal)
		yNext, tauEnd, err := d.runSpan(dyn.Eval, 0, sliceEnd-tGlobal, y, nil, maxSteps)
		if err != nil {
			return yNext, tGlobal + tauEnd, err
		}
		y = yNext.NormalizeQuaternion().ClampMagnetizations(rods)
		tGlobal += tauEnd
		if observe != nil {
			if err := observe(tGlobal, y); err != nil {
				return y, tGlobal, aocssim.ObserverFailure{Cause: err}
			}
		}
	}
	return y, tGlobal, nil
}

func (d *Driver) initialStep(tStart, tEnd float64) float64 {
	if d.cfg.InitialStep > 0 {
		return math.Copysign(d.cfg.InitialStep, tEnd-tStart)
	}
	span := math.Abs(tEnd - tStart)
	h := span / 100
	if h <= 0 {
		h = 1
	}
	return math.Copysign(h, tEnd-tStart)
}

func (d *Driver) effectiveMaxSteps(tStart, tEnd float64) int {
	if d.cfg.MaxSteps > 0 {
		return d.cfg.MaxSteps
	}
	return DefaultMaxSteps(tStart, tEnd)
}
