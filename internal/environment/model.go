// Package environment implements the aocssim.FieldModel contract: at a
// given simulation time and inertial position/velocity, it returns the
// geomagnetic field, its material derivative along the trajectory, and the
// total inertial gravity acceleration (spec.md 4.1).
package environment

import (
	"math"
	"time"

	kitlog "github.com/go-kit/log"
	"github.com/soniakeys/meeus/v3/julian"
	"gonum.org/v1/gonum/mat"

	aocssim "github.com/circumscriptor/attitude-orbit-simulator"
)

// gradStep is the fixed micro-step used for the forward-difference
// estimate of Bdot (spec.md 4.1, "recommended 1 s").
const gradStep = 1.0

// j2 is Earth's second zonal gravity harmonic (dimensionless).
const j2 = 1.08263e-3

// epochMin/epochMax bound the plausible decimal-year range; outside it the
// model logs a warning and proceeds rather than failing (spec.md 4.1
// "Failure").
const (
	epochMin = 1900.0
	epochMax = 2100.0
)

// DecimalYearFromTime converts a calendar time to a decimal year via
// Julian Day, for callers that configure the environment epoch from a
// calendar date rather than a bare float.
func DecimalYearFromTime(t time.Time) float64 {
	jd := julian.TimeToJD(t)
	const j2000 = 2451545.0
	return 2000.0 + (jd-j2000)/365.25
}

// WMMEGMModel is a World-Magnetic-Model-style degree-1 geomagnetic field
// plus an Earth-Gravitational-Model-style J2-perturbed gravity field
// (spec.md 4.1, SPEC_FULL.md 4.1.a). Degree-1 Gauss coefficients and their
// secular variation are the real WMM2025 epoch values. No coefficient files
// are read: the magnetic field is always the degree-1 dipole, and gravity is
// point mass plus J2 at most. A GravityDegree above 2 without a DataPath is
// rejected at construction with EnvironmentDataMissing; with a DataPath it
// is accepted and evaluated with the same point-mass plus J2 terms.
type WMMEGMModel struct {
	epochYear     float64
	gravityDegree int
	logger        kitlog.Logger
	warnedYear    bool
}

// WMMEGMConfig bundles the construction inputs for a WMMEGMModel.
type WMMEGMConfig struct {
	EpochYear     float64 // decimal year, e.g. 2025.0
	GravityDegree int     // 0 (point mass) or 2 (+ J2); >2 requires DataPath
	DataPath      string  // checked only for being non-empty when GravityDegree > 2; its contents are not read
	Logger        kitlog.Logger
}

// NewWMMEGMModel constructs the model, validating the gravity degree
// against the coefficients this module ships (spec.md 4.1.a).
func NewWMMEGMModel(cfg WMMEGMConfig) (*WMMEGMModel, error) {
	if cfg.GravityDegree > 2 && cfg.DataPath == "" {
		return nil, aocssim.EnvironmentDataMissing{Path: "higher-order gravity coefficients (GravityDegree > 2 requires --data)"}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	return &WMMEGMModel{epochYear: cfg.EpochYear, gravityDegree: cfg.GravityDegree, logger: logger}, nil
}

// ComputeFieldsAt implements aocssim.FieldModel (spec.md 4.1).
func (m *WMMEGMModel) ComputeFieldsAt(t float64, r, v []float64) (b, bDot, g []float64, err error) {
	b1, g1, err := m.evaluate(t, r)
	if err != nil {
		return nil, nil, nil, err
	}
	rStep := make([]float64, 3)
	for i := range rStep {
		rStep[i] = r[i] + v[i]*gradStep
	}
	b2, _, err := m.evaluate(t+gradStep, rStep)
	if err != nil {
		return nil, nil, nil, err
	}
	bDot = make([]float64, 3)
	for i := range bDot {
		bDot[i] = (b2[i] - b1[i]) / gradStep
	}
	return b1, bDot, g1, nil
}

// evaluate runs the single-epoch field algorithm of spec.md 4.1 steps 1-6.
func (m *WMMEGMModel) evaluate(t float64, rEci []float64) (bEci, gEci []float64, err error) {
	if aocssim.Norm(rEci) < aocssim.SingularityRadius {
		return nil, nil, aocssim.NumericalAbort{T: t, Reason: "position singularity in environment model"}
	}

	theta := aocssim.EarthRotationRate * t
	rEcefToEci := aocssim.R3(-theta) // Earth turns eastward by theta; R3(-theta) carries ECEF into ECI.
	rEcef := aocssim.MxV33(aocssim.Transpose3(rEcefToEci), rEci)

	geo := aocssim.ECEFToGeodetic(rEcef)
	year := decimalYear(m.epochYear, t)
	m.checkEpoch(year)

	bEnu := dipoleFieldENU(geo, year)
	gEnu := m.gravityENU(rEcef, geo)

	enuToEcef := aocssim.EnuToEcefRotation(geo.LatRad, geo.LonRad)
	enuToEci := matMul3(rEcefToEci, enuToEcef)

	bEci = aocssim.MxV33(enuToEci, bEnu)
	gEci = aocssim.MxV33(enuToEci, gEnu)
	return bEci, gEci, nil
}

func (m *WMMEGMModel) checkEpoch(year float64) {
	if m.warnedYear || (year >= epochMin && year <= epochMax) {
		return
	}
	m.warnedYear = true
	m.logger.Log("level", "warn", "component", "environment", "msg", "epoch outside [1900,2100]", "year", year)
}

func decimalYear(epochYear, t float64) float64 {
	return epochYear + t/aocssim.SecondsPerYear
}

// gravityENU evaluates point-mass (+J2 if configured) gravity at an ECEF
// position and rotates it into the ENU frame for that position, following
// spec.md 4.1 step 5's pipeline.
func (m *WMMEGMModel) gravityENU(rEcef []float64, geo aocssim.GeodeticPoint) []float64 {
	gEcef := gravityECEF(rEcef, m.gravityDegree)
	enuToEcef := aocssim.EnuToEcefRotation(geo.LatRad, geo.LonRad)
	return aocssim.MxV33(aocssim.Transpose3(enuToEcef), gEcef)
}

func gravityECEF(r []float64, degree int) []float64 {
	rNorm := aocssim.Norm(r)
	factor := -aocssim.EarthMu / (rNorm * rNorm * rNorm)
	if degree < 2 {
		return []float64{factor * r[0], factor * r[1], factor * r[2]}
	}
	z2r2 := (r[2] / rNorm) * (r[2] / rNorm)
	reOverR2 := (aocssim.WGS84SemiMajorAxis / rNorm) * (aocssim.WGS84SemiMajorAxis / rNorm)
	zFactor := 1.5 * j2 * reOverR2
	gx := factor * r[0] * (1 - zFactor*(5*z2r2-1))
	gy := factor * r[1] * (1 - zFactor*(5*z2r2-1))
	gz := factor * r[2] * (1 - zFactor*(5*z2r2-3))
	return []float64{gx, gy, gz}
}

// WMM2025 epoch degree-1 Gauss coefficients (nT) and their secular drift,
// giving the tilted-dipole axis (grounded on the pack's own WMM2025
// dipole-axis snippet).
const (
	g10Base  = -29351.8
	g11Base  = -1410.8
	h11Base  = 4545.4
	g10Dot   = 12.0
	g11Dot   = 9.7
	h11Dot   = -21.5
	wmmEpoch = 2025.0
)

// dipoleFieldENU evaluates the degree-1 tilted dipole field in ENU
// coordinates at the given geodetic point and decimal year.
func dipoleFieldENU(geo aocssim.GeodeticPoint, year float64) []float64 {
	delta := year - wmmEpoch
	g10 := g10Base + g10Dot*delta
	g11 := g11Base + g11Dot*delta
	h11 := h11Base + h11Dot*delta
	b0 := aocssim.Norm([]float64{g10, g11, h11}) * 1e-9 // nT -> T
	axis := aocssim.Unit([]float64{-g11, -h11, -g10})

	rEcef := geodeticToECEF(geo)
	rNorm := aocssim.Norm(rEcef)
	rHat := aocssim.Unit(rEcef)
	cosTheta := aocssim.Dot(rHat, axis)
	reOverR := aocssim.WGS84SemiMajorAxis / rNorm
	falloff := reOverR * reOverR * reOverR
	bEcef := make([]float64, 3)
	for i := range bEcef {
		bEcef[i] = b0 * falloff * (3*cosTheta*rHat[i] - axis[i])
	}
	enuToEcef := aocssim.EnuToEcefRotation(geo.LatRad, geo.LonRad)
	return aocssim.MxV33(aocssim.Transpose3(enuToEcef), bEcef)
}

func geodeticToECEF(geo aocssim.GeodeticPoint) []float64 {
	e2 := aocssim.WGS84EccentricitySquared()
	sinLat, cosLat := math.Sincos(geo.LatRad)
	sinLon, cosLon := math.Sincos(geo.LonRad)
	nRad := aocssim.WGS84SemiMajorAxis / math.Sqrt(1-e2*sinLat*sinLat)
	return []float64{
		(nRad + geo.HeightM) * cosLat * cosLon,
		(nRad + geo.HeightM) * cosLat * sinLon,
		(nRad*(1-e2) + geo.HeightM) * sinLat,
	}
}

// matMul3 multiplies two 3x3 matrices.
func matMul3(a, b *mat.Dense) *mat.Dense {
	var out mat.Dense
	out.Mul(a, b)
	return &out
}
