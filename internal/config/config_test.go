package config

import (
	"os"
	"testing"
)

func TestFlagsFinalizeAppliesDefaults(t *testing.T) {
	f := NewFlags("aocssim")
	if err := f.Parse(nil); err != nil {
		t.Fatal(err)
	}
	cfg, err := f.Finalize()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Mode != ModeSimulate {
		t.Errorf("Mode = %v, want ModeSimulate", cfg.Mode)
	}
	if cfg.Output != "aocssim.csv" {
		t.Errorf("Output = %q", cfg.Output)
	}
	if cfg.Precision != 3 {
		t.Errorf("Precision = %d, want 3", cfg.Precision)
	}
}

func TestFlagsParsesRepeatedRodOrientations(t *testing.T) {
	f := NewFlags("aocssim")
	if err := f.Parse([]string{"--rod-orientation", "1,0,0", "--rod-orientation", "0,1,0"}); err != nil {
		t.Fatal(err)
	}
	cfg, err := f.Finalize()
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Spacecraft.RodOrientations) != 2 {
		t.Fatalf("got %d rod orientations, want 2", len(cfg.Spacecraft.RodOrientations))
	}
	if cfg.Spacecraft.RodOrientations[1][1] != 1 {
		t.Errorf("second orientation = %v", cfg.Spacecraft.RodOrientations[1])
	}
}

func TestFlagsNoRodsClearsOrientations(t *testing.T) {
	f := NewFlags("aocssim")
	if err := f.Parse([]string{"--rod-orientation", "1,0,0", "--no-rods"}); err != nil {
		t.Fatal(err)
	}
	cfg, err := f.Finalize()
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Spacecraft.RodOrientations) != 0 {
		t.Errorf("got %d rod orientations, want 0 with --no-rods", len(cfg.Spacecraft.RodOrientations))
	}
}

func TestFlagsRejectsBadAngularVelocity(t *testing.T) {
	f := NewFlags("aocssim")
	if err := f.Parse([]string{"--angular-velocity", "0,0"}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.Finalize(); err == nil {
		t.Fatal("expected ConfigurationError for malformed --angular-velocity")
	}
}

func TestFlagsRejectsTEndBeforeTStart(t *testing.T) {
	f := NewFlags("aocssim")
	if err := f.Parse([]string{"--t-start", "10", "--t-end", "5"}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.Finalize(); err == nil {
		t.Fatal("expected ConfigurationError when t-end <= t-start")
	}
}

func TestFlagsRejectsMultipleVerifyModes(t *testing.T) {
	f := NewFlags("aocssim")
	if err := f.Parse([]string{"--verify-orbit", "--verify-attitude"}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.Finalize(); err == nil {
		t.Fatal("expected ConfigurationError for conflicting verify modes")
	}
}

func TestFlagsRejectsHighGravityDegreeWithoutData(t *testing.T) {
	f := NewFlags("aocssim")
	if err := f.Parse([]string{"--gravity-model-degree", "4"}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.Finalize(); err == nil {
		t.Fatal("expected ConfigurationError for degree > 2 without --data")
	}
}

func TestFlagsLogLevelFallsBackToEnv(t *testing.T) {
	os.Setenv("AOCSSIM_LOG_LEVEL", "debug")
	defer os.Unsetenv("AOCSSIM_LOG_LEVEL")
	f := NewFlags("aocssim")
	if err := f.Parse(nil); err != nil {
		t.Fatal(err)
	}
	cfg, err := f.Finalize()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q (from AOCSSIM_LOG_LEVEL)", cfg.LogLevel, "debug")
	}
}

func TestFlagsExplicitLogLevelWinsOverEnv(t *testing.T) {
	os.Setenv("AOCSSIM_LOG_LEVEL", "debug")
	defer os.Unsetenv("AOCSSIM_LOG_LEVEL")
	f := NewFlags("aocssim")
	if err := f.Parse([]string{"--log-level", "error"}); err != nil {
		t.Fatal(err)
	}
	cfg, err := f.Finalize()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LogLevel != "error" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "error")
	}
}
