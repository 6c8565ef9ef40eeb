package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/banshee-data/occupancy.report/internal/testutil"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadTuningConfig_PartialOverride(t *testing.T) {
	path := writeConfig(t, "tuning.json", `{"cell_size": 0.5, "occupied_confidence": 0.8}`)
	cfg, err := LoadTuningConfig(path)
	if err != nil {
		t.Fatalf("LoadTuningConfig: %v", err)
	}
	if got := cfg.GetCellSize(); got != 0.5 {
		t.Errorf("cell size = %f, want override 0.5", got)
	}
	if got := cfg.GetOccupiedConfidence(); got != 0.8 {
		t.Errorf("occupied confidence = %f, want override 0.8", got)
	}
	// unset fields fall back to defaults
	if got := cfg.GetFreeConfidence(); got != 0.3 {
		t.Errorf("free confidence = %f, want default 0.3", got)
	}
	if got := cfg.GetMargin(); got != 1.0 {
		t.Errorf("margin = %f, want default 1.0", got)
	}
}

func TestLoadTuningConfig_RejectsNonJSONExtension(t *testing.T) {
	path := writeConfig(t, "tuning.yaml", `{}`)
	_, err := LoadTuningConfig(path)
	testutil.AssertError(t, err)
}

func TestLoadTuningConfig_MissingFile(t *testing.T) {
	_, err := LoadTuningConfig(filepath.Join(t.TempDir(), "missing.json"))
	testutil.AssertError(t, err)
}

func TestValidate_RejectsBadValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"zero cell size", `{"cell_size": 0}`},
		{"negative margin", `{"margin": -1}`},
		{"free confidence at 0.5", `{"free_confidence": 0.5}`},
		{"occupied confidence above 1", `{"occupied_confidence": 1.2}`},
		{"bad threshold", `{"free_threshold": 0}`},
		{"negative snapshot interval", `{"snapshot_every_steps": -5}`},
	}
	for _, tc := range cases {
		path := writeConfig(t, "tuning.json", tc.content)
		if _, err := LoadTuningConfig(path); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func TestValidate_EmptyConfigIsFine(t *testing.T) {
	cfg := &TuningConfig{}
	testutil.AssertNoError(t, cfg.Validate())
}
