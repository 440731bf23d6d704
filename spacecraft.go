package aocssim

import (
	"gonum.org/v1/gonum/mat"
)

// SpacecraftParams bundles the immutable construction inputs for a
// Spacecraft (spec.md 3).
type SpacecraftParams struct {
	MassG              float64   // mass, grams
	DimXM, DimYM, DimZM float64  // box dimensions, meters
	Magnet             MagnetParams
	RodVolumeM3        float64
	RodOrientations    [][]float64 // body-frame orientation per rod
	Hysteresis         JAParams
}

// MagnetParams bundles the permanent-magnet construction inputs.
type MagnetParams struct {
	RemanenceT      float64
	LengthM         float64
	DiameterM       float64
	OrientationBody []float64 // defaults to +Z body axis per spec.md 6
}

// Spacecraft is the rigid-body aggregate (spec.md 4.5): inertia tensor and
// its inverse (computed once), the permanent magnet, and the rod list.
// Immutable after construction.
type Spacecraft struct {
	inertia    *mat.Dense
	inertiaInv *mat.Dense
	magnet     *PermanentMagnet
	rods       []*Rod
}

// NewSpacecraft builds the aggregate from SpacecraftParams, applying the box
// inertia formula I_x = (1/12)m(a_y^2+a_z^2) (cyclic), constructing the
// magnet and the rod list. Returns ConfigurationError on any invalid input.
func NewSpacecraft(p SpacecraftParams) (*Spacecraft, error) {
	if p.MassG <= 0 {
		return nil, ConfigurationError{Field: "mass", Reason: "must be positive"}
	}
	if p.DimXM <= 0 || p.DimYM <= 0 || p.DimZM <= 0 {
		return nil, ConfigurationError{Field: "dimensions", Reason: "must be positive"}
	}
	massKg := p.MassG / 1000.0

	inertia := InertiaTensor(massKg, p.DimXM, p.DimYM, p.DimZM)
	var inertiaInv mat.Dense
	if err := inertiaInv.Inverse(inertia); err != nil {
		return nil, ConfigurationError{Field: "inertia tensor", Reason: "not invertible: " + err.Error()}
	}

	magnet, err := NewPermanentMagnet(p.Magnet.RemanenceT, p.Magnet.LengthM, p.Magnet.DiameterM, p.Magnet.OrientationBody)
	if err != nil {
		return nil, err
	}

	rods := make([]*Rod, 0, len(p.RodOrientations))
	for _, orientation := range p.RodOrientations {
		rod, err := NewRod(p.RodVolumeM3, orientation, p.Hysteresis)
		if err != nil {
			return nil, err
		}
		rods = append(rods, rod)
	}

	return &Spacecraft{inertia: inertia, inertiaInv: &inertiaInv, magnet: magnet, rods: rods}, nil
}

// InertiaTensor returns the diagonal box-inertia matrix for mass (kg) and
// dimensions (a,b,c) in meters (spec.md 3, S3 in spec.md 8).
func InertiaTensor(massKg, a, b, c float64) *mat.Dense {
	ix := (1.0 / 12.0) * massKg * (b*b + c*c)
	iy := (1.0 / 12.0) * massKg * (a*a + c*c)
	iz := (1.0 / 12.0) * massKg * (a*a + b*b)
	return mat.NewDense(3, 3, []float64{
		ix, 0, 0,
		0, iy, 0,
		0, 0, iz,
	})
}

// Inertia returns the body inertia tensor, I.
func (s *Spacecraft) Inertia() *mat.Dense { return s.inertia }

// InertiaInverse returns I^-1, cached at construction.
func (s *Spacecraft) InertiaInverse() *mat.Dense { return s.inertiaInv }

// Magnet returns the permanent magnet.
func (s *Spacecraft) Magnet() *PermanentMagnet { return s.magnet }

// Rods returns the rod list (read-only slice; callers must not mutate the
// backing Rod pointers).
func (s *Spacecraft) Rods() []*Rod { return s.rods }

// NumRods returns the rod count, the N fixing the State.MIrr length for a run.
func (s *Spacecraft) NumRods() int { return len(s.rods) }
