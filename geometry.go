package aocssim

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
)

// Norm returns the Euclidean norm of a 3-vector.
func Norm(v []float64) float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

// Unit returns the unit vector of a, or the zero vector if a is (near) zero.
func Unit(a []float64) []float64 {
	n := Norm(a)
	if scalar.EqualWithinAbs(n, 0, 1e-12) {
		return []float64{0, 0, 0}
	}
	return []float64{a[0] / n, a[1] / n, a[2] / n}
}

// Dot is the 3-vector inner product.
func Dot(a, b []float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// Cross is the 3-vector cross product a x b.
func Cross(a, b []float64) []float64 {
	return []float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// Sub3 is the 3-vector difference a - b.
func Sub3(a, b []float64) []float64 {
	return []float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

// Add3 is the 3-vector sum a + b.
func Add3(a, b []float64) []float64 {
	return []float64{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

// Scale3 returns the 3-vector s*a.
func Scale3(s float64, a []float64) []float64 {
	return []float64{s * a[0], s * a[1], s * a[2]}
}

// R1 returns the rotation matrix about the 1st (x) axis.
func R1(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{1, 0, 0, 0, c, s, 0, -s, c})
}

// R2 returns the rotation matrix about the 2nd (y) axis.
func R2(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{c, 0, -s, 0, 1, 0, s, 0, c})
}

// R3 returns the rotation matrix about the 3rd (z) axis.
func R3(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{c, s, 0, -s, c, 0, 0, 0, 1})
}

// R313 returns the 3-1-3 Euler rotation matrix Rot = R3(theta1) R1(theta2) R3(theta3),
// applied right-to-left as in Schaub & Junkins. ToCartesian passes the
// negated (Omega, i, omega_p) to carry perifocal vectors into the inertial
// frame (spec.md 4.2).
func R313(theta1, theta2, theta3 float64) *mat.Dense {
	var tmp, out mat.Dense
	tmp.Mul(R1(theta2), R3(theta3))
	out.Mul(R3(theta1), &tmp)
	return &out
}

// MxV33 multiplies a 3x3 matrix by a 3-vector.
func MxV33(m *mat.Dense, v []float64) []float64 {
	vVec := mat.NewVecDense(3, v)
	var rVec mat.VecDense
	rVec.MulVec(m, vVec)
	return []float64{rVec.AtVec(0), rVec.AtVec(1), rVec.AtVec(2)}
}

// Transpose3 returns the transpose of a 3x3 matrix.
func Transpose3(m *mat.Dense) *mat.Dense {
	var t mat.Dense
	t.CloneFrom(m.T())
	return &t
}

// RotFromQuat builds the body-to-inertial direction-cosine matrix from a
// unit quaternion (scalar-first convention). Callers wanting the
// inertial-to-body rotation named by q (spec.md 3, 4.8 step 2) take its
// transpose, e.g. via Transpose3.
func RotFromQuat(q quat.Number) *mat.Dense {
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag
	n := w*w + x*x + y*y + z*z
	if n < 1e-20 {
		return mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
	}
	s := 2.0 / n
	wx, wy, wz := s*w*x, s*w*y, s*w*z
	xx, xy, xz := s*x*x, s*x*y, s*x*z
	yy, yz, zz := s*y*y, s*y*z, s*z*z
	return mat.NewDense(3, 3, []float64{
		1 - (yy + zz), xy - wz, xz + wy,
		xy + wz, 1 - (xx + zz), yz - wx,
		xz - wy, yz + wx, 1 - (xx + yy),
	})
}

// QuatNormalize returns q scaled to unit norm; the zero quaternion maps to identity.
func QuatNormalize(q quat.Number) quat.Number {
	n := quat.Abs(q)
	if n < 1e-15 {
		return quat.Number{Real: 1}
	}
	return quat.Scale(1/n, q)
}

// GeodeticPoint is a WGS-84 geodetic position.
type GeodeticPoint struct {
	LatRad, LonRad, HeightM float64
}

// ECEFToGeodetic converts an ECEF position (meters) to geodetic coordinates
// using the iterative Bowring method (grounded on the ECI/ECEF conversions
// in the example pack's satellite-tracking tooling), converging in a handful
// of iterations for any Earth-orbit altitude.
func ECEFToGeodetic(r []float64) GeodeticPoint {
	x, y, z := r[0], r[1], r[2]
	e2 := WGS84EccentricitySquared()
	lon := math.Atan2(y, x)
	p := math.Sqrt(x*x + y*y)
	lat := math.Atan2(z, p*(1-e2))
	for i := 0; i < 6; i++ {
		sinLat := math.Sin(lat)
		nRad := WGS84SemiMajorAxis / math.Sqrt(1-e2*sinLat*sinLat)
		lat = math.Atan2(z+e2*nRad*sinLat, p)
	}
	sinLat, cosLat := math.Sincos(lat)
	nRad := WGS84SemiMajorAxis / math.Sqrt(1-e2*sinLat*sinLat)
	var height float64
	if math.Abs(cosLat) > 1e-10 {
		height = p/cosLat - nRad
	} else {
		height = math.Abs(z) - nRad*(1-e2)
	}
	return GeodeticPoint{LatRad: lat, LonRad: lon, HeightM: height}
}

// EnuToEcefRotation returns R_enu->ecef at the given geodetic latitude/longitude:
// columns are the East, North, Up unit vectors expressed in ECEF.
func EnuToEcefRotation(latRad, lonRad float64) *mat.Dense {
	sLat, cLat := math.Sincos(latRad)
	sLon, cLon := math.Sincos(lonRad)
	return mat.NewDense(3, 3, []float64{
		-sLon, -sLat * cLon, cLat * cLon,
		cLon, -sLat * sLon, cLat * sLon,
		0, cLat, sLat,
	})
}
