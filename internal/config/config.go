// Package config implements the A2 configuration layer: the CLI flag
// bundle of spec.md 6, defaulted and validated into the parameter
// structures internal/integrator, internal/observer, internal/verify, and
// the root package construct from (cmd/aocssim's sole collaborator).
// Env-var overrides for the data-bundle path and log verbosity are layered
// underneath explicit flags with viper, the way the teacher's
// cmd/mission/main.go layers a TOML scenario file underneath its flags.
package config

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	aocssim "github.com/circumscriptor/attitude-orbit-simulator"
)

// Mode selects the CLI entrypoint's run mode (spec.md 6 "Modes").
type Mode int

const (
	// ModeSimulate runs the full coupled propagation (the default).
	ModeSimulate Mode = iota
	ModeVerifyHysteresis
	ModeVerifyOrbit
	ModeVerifyAttitude
)

// Config is the fully defaulted, validated parameter bundle the CLI
// entrypoint builds from flags and hands to the root package and its
// internal collaborators.
type Config struct {
	Mode Mode

	Output string

	Spacecraft aocssim.SpacecraftParams
	Orbit      aocssim.OrbitalElements
	Omega0     [3]float64

	SimulationYear   float64
	GravityDegree    int
	DataPath         string
	TStart, TEnd, Dt float64
	AbsTol, RelTol   float64
	HigherOrder      bool
	CheckpointS      float64

	NoObserveElement   bool
	NoObserveMagnitude bool
	Precision          int

	LogLevel string
}

// vec3Flag accumulates repeated "x,y,z" flag occurrences, grounding
// --rod-orientation's repeatability (spec.md 6).
type vec3Flag struct {
	values *[][]float64
}

func (v vec3Flag) String() string {
	if v.values == nil {
		return ""
	}
	parts := make([]string, len(*v.values))
	for i, vec := range *v.values {
		parts[i] = fmt.Sprintf("%g,%g,%g", vec[0], vec[1], vec[2])
	}
	return strings.Join(parts, ";")
}

func (v vec3Flag) Set(s string) error {
	vec, err := parseVec3(s)
	if err != nil {
		return err
	}
	*v.values = append(*v.values, vec)
	return nil
}

func parseVec3(s string) ([]float64, error) {
	fields := strings.Split(s, ",")
	if len(fields) != 3 {
		return nil, fmt.Errorf("want \"x,y,z\", got %q", s)
	}
	out := make([]float64, 3)
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("component %d of %q: %w", i, s, err)
		}
		out[i] = v
	}
	return out, nil
}

// Flags bundles the flag.FlagSet along with the raw, not-yet-validated
// destinations flag.Parse populates. Build then call Parse, then Finalize.
type Flags struct {
	fs *flag.FlagSet

	output string

	massG                       float64
	dimX, dimY, dimZ            float64
	magnetRemanence             float64
	magnetLength, magnetDiam    float64
	rodVolume                   float64
	rodOrientations             [][]float64
	noRods                      bool
	hystMs, hystA, hystK        float64
	hystC, hystAlpha            float64
	orbitSMA, orbitEcc          float64
	orbitInc, orbitRAAN         float64
	orbitArgP, orbitMeanAnomaly float64
	omega0                      string
	simYear                     float64
	gravityDegree               int
	dataPath                    string
	tStart, tEnd, dt            float64
	absErr, relErr              float64
	higherOrder                 bool
	checkpoint                  float64
	noObserveElement            bool
	noObserveMagnitude          bool
	precision                   int
	verifyHysteresis            bool
	verifyOrbit                 bool
	verifyAttitude              bool
	logLevel                    string
}

// NewFlags registers spec.md 6's full flag table on a fresh FlagSet named
// for the executable (spec.md's --output through --verify-attitude).
func NewFlags(name string) *Flags {
	f := &Flags{fs: flag.NewFlagSet(name, flag.ContinueOnError)}

	f.fs.StringVar(&f.output, "output", "aocssim.csv", "CSV output destination")

	f.fs.Float64Var(&f.massG, "mass", 1000, "spacecraft mass, grams")
	f.fs.Float64Var(&f.dimX, "width", 0.1, "spacecraft box width, meters")
	f.fs.Float64Var(&f.dimY, "height", 0.1, "spacecraft box height, meters")
	f.fs.Float64Var(&f.dimZ, "length", 0.1, "spacecraft box length, meters")

	f.fs.Float64Var(&f.magnetRemanence, "magnet-remanence", 1.32, "permanent magnet remanence, tesla")
	f.fs.Float64Var(&f.magnetLength, "magnet-length", 0.03, "permanent magnet length, meters")
	f.fs.Float64Var(&f.magnetDiam, "magnet-diameter", 0.01, "permanent magnet diameter, meters")

	f.fs.Float64Var(&f.rodVolume, "rod-volume", 1.4e-7, "hysteresis rod volume, cubic meters")
	f.fs.Var(vec3Flag{values: &f.rodOrientations}, "rod-orientation", "body-frame rod orientation \"x,y,z\" (repeatable)")
	f.fs.BoolVar(&f.noRods, "no-rods", false, "disable all hysteresis rods")

	f.fs.Float64Var(&f.hystMs, "hysteresis-ms", 159155, "Jiles-Atherton saturation magnetization, A/m")
	f.fs.Float64Var(&f.hystA, "hysteresis-a", 12, "Jiles-Atherton anhysteretic shape parameter, A/m")
	f.fs.Float64Var(&f.hystK, "hysteresis-k", 15, "Jiles-Atherton pinning energy density, A/m")
	f.fs.Float64Var(&f.hystC, "hysteresis-c", 0.2, "Jiles-Atherton reversibility coefficient, [0,1]")
	f.fs.Float64Var(&f.hystAlpha, "hysteresis-alpha", 0.001, "Jiles-Atherton inter-domain coupling")

	f.fs.Float64Var(&f.orbitSMA, "orbit-semi-major-axis", aocssim.WGS84SemiMajorAxis+700000, "orbit semi-major axis, meters")
	f.fs.Float64Var(&f.orbitEcc, "orbit-eccentricity", 0.001, "orbit eccentricity")
	f.fs.Float64Var(&f.orbitInc, "orbit-inclination", 1.7017, "orbit inclination, radians")
	f.fs.Float64Var(&f.orbitRAAN, "orbit-raan", 0, "orbit right ascension of ascending node, radians")
	f.fs.Float64Var(&f.orbitArgP, "orbit-arg-periapsis", 0, "orbit argument of periapsis, radians")
	f.fs.Float64Var(&f.orbitMeanAnomaly, "orbit-mean-anomaly", 0, "orbit mean anomaly at t_start, radians")

	f.fs.StringVar(&f.omega0, "angular-velocity", "0,0,0", "initial body angular velocity \"x,y,z\", rad/s")

	f.fs.Float64Var(&f.simYear, "simulation-year", 2025.0, "decimal year of t_start, for the geomagnetic epoch")
	f.fs.IntVar(&f.gravityDegree, "gravity-model-degree", 2, "gravity harmonic degree (0, 2, or >2 with --data)")
	f.fs.StringVar(&f.dataPath, "data", "", "coefficient data bundle path, for gravity-model-degree > 2")
	f.fs.Float64Var(&f.tStart, "t-start", 0, "integration start time, seconds")
	f.fs.Float64Var(&f.tEnd, "t-end", 86400, "integration end time, seconds")
	f.fs.Float64Var(&f.dt, "dt", 1, "nominal/initial step size, seconds")
	f.fs.Float64Var(&f.absErr, "absolute-error", 1e-6, "absolute error tolerance")
	f.fs.Float64Var(&f.relErr, "relative-error", 1e-6, "relative error tolerance")
	f.fs.BoolVar(&f.higherOrder, "higher-order", false, "use the Fehlberg 7(8) pair instead of Dormand-Prince 5(4)")
	f.fs.Float64Var(&f.checkpoint, "checkpoint-interval", 60, "state-emission interval, seconds")

	f.fs.BoolVar(&f.noObserveElement, "no-observe-element", false, "omit r_x..w_z component columns")
	f.fs.BoolVar(&f.noObserveMagnitude, "no-observe-magnitude", false, "omit r,v,w magnitude columns")
	f.fs.IntVar(&f.precision, "precision", 3, "CSV decimal precision (3 default, 10 for higher precision)")

	f.fs.BoolVar(&f.verifyHysteresis, "verify-hysteresis", false, "run the isolated hysteresis-loop verification mode")
	f.fs.BoolVar(&f.verifyOrbit, "verify-orbit", false, "run the isolated two-body orbit verification mode")
	f.fs.BoolVar(&f.verifyAttitude, "verify-attitude", false, "run the isolated attitude verification mode (position held fixed)")

	f.fs.StringVar(&f.logLevel, "log-level", "", "log level (debug, info, warn, error); overrides AOCSSIM_LOG_LEVEL")

	return f
}

// Parse parses args (typically os.Args[1:]) against the registered flags.
func (f *Flags) Parse(args []string) error {
	return f.fs.Parse(args)
}

// Finalize layers AOCSSIM_DATA/AOCSSIM_LOG_LEVEL environment variables
// under whatever was explicitly set on the command line, defaults the mode,
// and validates the whole bundle, returning ConfigurationError on the first
// violation (spec.md 7).
func (f *Flags) Finalize() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("AOCSSIM")
	v.BindEnv("data")
	v.BindEnv("log_level")

	dataPath := f.dataPath
	if dataPath == "" {
		dataPath = v.GetString("data")
	}
	logLevel := f.logLevel
	if logLevel == "" {
		logLevel = v.GetString("log_level")
	}
	if logLevel == "" {
		logLevel = "info"
	}

	omega0, err := parseVec3(f.omega0)
	if err != nil {
		return Config{}, aocssim.ConfigurationError{Field: "angular-velocity", Reason: err.Error()}
	}

	if modesSet(f.verifyHysteresis, f.verifyOrbit, f.verifyAttitude) > 1 {
		return Config{}, aocssim.ConfigurationError{Field: "mode", Reason: "only one of --verify-hysteresis/--verify-orbit/--verify-attitude may be set"}
	}

	rodOrientations := f.rodOrientations
	if f.noRods {
		rodOrientations = nil
	}

	cfg := Config{
		Mode:   modeFromFlags(f.verifyHysteresis, f.verifyOrbit, f.verifyAttitude),
		Output: f.output,
		Spacecraft: aocssim.SpacecraftParams{
			MassG: f.massG,
			DimXM: f.dimX, DimYM: f.dimY, DimZM: f.dimZ,
			Magnet: aocssim.MagnetParams{
				RemanenceT: f.magnetRemanence,
				LengthM:    f.magnetLength,
				DiameterM:  f.magnetDiam,
			},
			RodVolumeM3:     f.rodVolume,
			RodOrientations: rodOrientations,
			Hysteresis: aocssim.JAParams{
				Ms: f.hystMs, A: f.hystA, K: f.hystK, C: f.hystC, Alpha: f.hystAlpha,
			},
		},
		Orbit: aocssim.OrbitalElements{
			SemiMajorAxis: f.orbitSMA,
			Eccentricity:  f.orbitEcc,
			Inclination:   f.orbitInc,
			RAAN:          f.orbitRAAN,
			ArgPeriapsis:  f.orbitArgP,
			MeanAnomaly:   f.orbitMeanAnomaly,
		},
		Omega0:             [3]float64{omega0[0], omega0[1], omega0[2]},
		SimulationYear:     f.simYear,
		GravityDegree:      f.gravityDegree,
		DataPath:           dataPath,
		TStart:             f.tStart,
		TEnd:               f.tEnd,
		Dt:                 f.dt,
		AbsTol:             f.absErr,
		RelTol:             f.relErr,
		HigherOrder:        f.higherOrder,
		CheckpointS:        f.checkpoint,
		NoObserveElement:   f.noObserveElement,
		NoObserveMagnitude: f.noObserveMagnitude,
		Precision:          f.precision,
		LogLevel:           logLevel,
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func modeFromFlags(hyst, orbit, attitude bool) Mode {
	switch {
	case hyst:
		return ModeVerifyHysteresis
	case orbit:
		return ModeVerifyOrbit
	case attitude:
		return ModeVerifyAttitude
	default:
		return ModeSimulate
	}
}

// Validate checks the cross-field invariants spec.md 6/7 require beyond
// what the root package's own constructors already check (those are also
// invoked, transitively, by cmd/aocssim via aocssim.NewSpacecraft).
func (c Config) Validate() error {
	if c.Output == "" {
		return aocssim.ConfigurationError{Field: "output", Reason: "must not be empty"}
	}
	if c.TEnd <= c.TStart {
		return aocssim.ConfigurationError{Field: "t-end", Reason: "must be greater than t-start"}
	}
	if c.Dt <= 0 {
		return aocssim.ConfigurationError{Field: "dt", Reason: "must be positive"}
	}
	if c.AbsTol <= 0 || c.RelTol <= 0 {
		return aocssim.ConfigurationError{Field: "absolute-error/relative-error", Reason: "must be positive"}
	}
	if c.GravityDegree < 0 {
		return aocssim.ConfigurationError{Field: "gravity-model-degree", Reason: "must be non-negative"}
	}
	if c.GravityDegree > 2 && c.DataPath == "" {
		return aocssim.ConfigurationError{Field: "gravity-model-degree", Reason: "degree > 2 requires --data or AOCSSIM_DATA"}
	}
	if c.CheckpointS < 1 {
		return aocssim.ConfigurationError{Field: "checkpoint-interval", Reason: "must be at least one second"}
	}
	if c.Orbit.SemiMajorAxis <= 0 {
		return aocssim.ConfigurationError{Field: "orbit-semi-major-axis", Reason: "must be positive"}
	}
	if c.Orbit.Eccentricity < 0 || c.Orbit.Eccentricity >= 1 {
		return aocssim.ConfigurationError{Field: "orbit-eccentricity", Reason: "must be within [0, 1)"}
	}
	if c.Precision != 3 && c.Precision != 10 {
		return aocssim.ConfigurationError{Field: "precision", Reason: "must be 3 or 10"}
	}
	return nil
}

func modesSet(hyst, orbit, attitude bool) int {
	n := 0
	for _, b := range []bool{hyst, orbit, attitude} {
		if b {
			n++
		}
	}
	return n
}
