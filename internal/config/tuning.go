// Package config loads mapping tuning parameters from JSON files.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// TuningConfig holds the tunable parameters of a mapping session. Fields are
// pointers so a partial JSON file only overrides what it names; the Get*
// accessors supply defaults for everything else.
type TuningConfig struct {
	// Grid params
	CellSize *float64 `json:"cell_size,omitempty"` // world units per cell
	Margin   *float64 `json:"margin,omitempty"`    // extra extent around the recorded endpoints

	// Inverse sensor model params
	FreeConfidence     *float64 `json:"free_confidence,omitempty"`
	OccupiedConfidence *float64 `json:"occupied_confidence,omitempty"`

	// Report params
	FreeThreshold     *float64 `json:"free_threshold,omitempty"`     // probability below which a cell counts free
	OccupiedThreshold *float64 `json:"occupied_threshold,omitempty"` // probability above which a cell counts occupied

	// Persistence params
	SnapshotEverySteps *int `json:"snapshot_every_steps,omitempty"` // 0 disables periodic snapshots
}

// LoadTuningConfig loads a TuningConfig from a JSON file. The file must have
// a .json extension and stay under the max file size; omitted fields keep
// their defaults, so partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &TuningConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that any set values are usable. Confidence bounds are
// re-checked by the sensor model at session construction; failing here gives
// the operator a config-file line of context instead.
func (c *TuningConfig) Validate() error {
	if c.CellSize != nil && *c.CellSize <= 0 {
		return fmt.Errorf("cell_size must be positive, got %f", *c.CellSize)
	}
	if c.Margin != nil && *c.Margin < 0 {
		return fmt.Errorf("margin must be non-negative, got %f", *c.Margin)
	}
	if c.FreeConfidence != nil {
		if *c.FreeConfidence <= 0 || *c.FreeConfidence >= 1 || *c.FreeConfidence == 0.5 {
			return fmt.Errorf("free_confidence must be in (0,1) and not 0.5, got %f", *c.FreeConfidence)
		}
	}
	if c.OccupiedConfidence != nil {
		if *c.OccupiedConfidence <= 0 || *c.OccupiedConfidence >= 1 || *c.OccupiedConfidence == 0.5 {
			return fmt.Errorf("occupied_confidence must be in (0,1) and not 0.5, got %f", *c.OccupiedConfidence)
		}
	}
	if c.FreeThreshold != nil && (*c.FreeThreshold <= 0 || *c.FreeThreshold >= 1) {
		return fmt.Errorf("free_threshold must be in (0,1), got %f", *c.FreeThreshold)
	}
	if c.OccupiedThreshold != nil && (*c.OccupiedThreshold <= 0 || *c.OccupiedThreshold >= 1) {
		return fmt.Errorf("occupied_threshold must be in (0,1), got %f", *c.OccupiedThreshold)
	}
	if c.SnapshotEverySteps != nil && *c.SnapshotEverySteps < 0 {
		return fmt.Errorf("snapshot_every_steps must be non-negative, got %d", *c.SnapshotEverySteps)
	}
	return nil
}

// GetCellSize returns the cell_size value or the default.
func (c *TuningConfig) GetCellSize() float64 {
	if c.CellSize == nil {
		return 0.2 // matches a typical indoor lidar resolution
	}
	return *c.CellSize
}

// GetMargin returns the margin value or the default.
func (c *TuningConfig) GetMargin() float64 {
	if c.Margin == nil {
		return 1.0
	}
	return *c.Margin
}

// GetFreeConfidence returns the free_confidence value or the default.
func (c *TuningConfig) GetFreeConfidence() float64 {
	if c.FreeConfidence == nil {
		return 0.3
	}
	return *c.FreeConfidence
}

// GetOccupiedConfidence returns the occupied_confidence value or the default.
func (c *TuningConfig) GetOccupiedConfidence() float64 {
	if c.OccupiedConfidence == nil {
		return 0.9
	}
	return *c.OccupiedConfidence
}

// GetFreeThreshold returns the free_threshold value or the default.
func (c *TuningConfig) GetFreeThreshold() float64 {
	if c.FreeThreshold == nil {
		return 0.35
	}
	return *c.FreeThreshold
}

// GetOccupiedThreshold returns the occupied_threshold value or the default.
func (c *TuningConfig) GetOccupiedThreshold() float64 {
	if c.OccupiedThreshold == nil {
		return 0.65
	}
	return *c.OccupiedThreshold
}

// GetSnapshotEverySteps returns the snapshot_every_steps value or the default.
func (c *TuningConfig) GetSnapshotEverySteps() int {
	if c.SnapshotEverySteps == nil {
		return 0 // periodic snapshots off; final snapshot always written
	}
	return *c.SnapshotEverySteps
}
