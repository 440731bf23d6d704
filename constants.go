package aocssim

// Physical and model constants shared across the core packages.
const (
	// EarthMu is Earth's standard gravitational parameter, m^3/s^2.
	EarthMu = 3.986004418e14

	// EarthRotationRate is Earth's sidereal rotation rate, rad/s.
	EarthRotationRate = 7.2921150e-5

	// VacuumPermeability is mu_0, in T*m/A (H/m).
	VacuumPermeability = 1.25663706212e-6

	// WGS84SemiMajorAxis is the WGS-84 ellipsoid semi-major axis, meters.
	WGS84SemiMajorAxis = 6378137.0

	// WGS84Flattening is the WGS-84 ellipsoid flattening.
	WGS84Flattening = 1.0 / 298.257223563

	// SecondsPerYear is the Julian year length used for decimal-year epoch math.
	SecondsPerYear = 365.25 * 86400.0

	// SingularityRadius is the position-vector magnitude below which the
	// environment model refuses to evaluate (spec.md 4.1 "Failure").
	SingularityRadius = 1e-6
)

// WGS84EccentricitySquared is the first eccentricity squared of the WGS-84 ellipsoid.
func WGS84EccentricitySquared() float64 {
	f := WGS84Flattening
	return f * (2 - f)
}
