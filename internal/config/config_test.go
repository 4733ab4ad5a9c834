package config

import (
	"os"
	"testing"

	"github.com/ogkla/mongo/internal/planner"
)

func TestLoadAppliesDefaultsWithoutOverride(t *testing.T) {
	cfg, err := Load("DOCPLAN_TEST_UNSET")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxProjectionSize != Defaults().MaxProjectionSize {
		t.Errorf("expected default max projection size, got %d", cfg.MaxProjectionSize)
	}
}

func TestLoadOverridesFromEnv(t *testing.T) {
	const prefix = "DOCPLAN_CFG_TEST"
	os.Setenv(prefix+"_MAX_PROJECTION_SIZE", "42")
	os.Setenv(prefix+"_DATA_DIR", "/tmp/docplan-test")
	defer os.Unsetenv(prefix + "_MAX_PROJECTION_SIZE")
	defer os.Unsetenv(prefix + "_DATA_DIR")

	cfg, err := Load(prefix)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxProjectionSize != 42 {
		t.Errorf("expected overridden max projection size 42, got %d", cfg.MaxProjectionSize)
	}
	if cfg.DataDir != "/tmp/docplan-test" {
		t.Errorf("expected overridden data dir, got %q", cfg.DataDir)
	}
}

func TestApplyInstallsMaxProjectionSize(t *testing.T) {
	saved := planner.MaxProjectionSize
	defer func() { planner.MaxProjectionSize = saved }()

	Apply(Config{MaxProjectionSize: 7})
	if planner.MaxProjectionSize != 7 {
		t.Errorf("Apply should install MaxProjectionSize into the planner package, got %d", planner.MaxProjectionSize)
	}
}
