package mapping

import (
	"fmt"
	"math"
)

// SensorModel is the inverse sensor model: it maps a per-cell free/occupied
// classification to a bounded log-odds increment. The two confidence
// constants are fixed for a mapping session; a free confidence below 0.5
// yields a negative increment (evidence the cell is empty) and an occupied
// confidence above 0.5 a positive one.
type SensorModel struct {
	FreeConfidence     float64 // probability a traversed cell is occupied, typically ~0.3
	OccupiedConfidence float64 // probability a terminal cell is occupied, typically ~0.9

	freeIncrement float64
	occIncrement  float64
}

// NewSensorModel validates the confidence constants and precomputes the two
// increments. Values outside the open interval (0,1), or exactly 0.5 (which
// would contribute no evidence), are rejected at construction so the session
// fails before any grid mutation.
func NewSensorModel(pFree, pOccupied float64) (*SensorModel, error) {
	if err := validateConfidence("free", pFree); err != nil {
		return nil, err
	}
	if err := validateConfidence("occupied", pOccupied); err != nil {
		return nil, err
	}
	return &SensorModel{
		FreeConfidence:     pFree,
		OccupiedConfidence: pOccupied,
		freeIncrement:      math.Log(pFree / (1 - pFree)),
		occIncrement:       math.Log(pOccupied / (1 - pOccupied)),
	}, nil
}

// LogOddsIncrement returns the log-odds contribution of a single observation
// of a cell: ln(p/(1-p)) with p the confidence matching the classification.
func (m *SensorModel) LogOddsIncrement(occupied bool) float64 {
	if occupied {
		return m.occIncrement
	}
	return m.freeIncrement
}

func validateConfidence(name string, p float64) error {
	if math.IsNaN(p) || p <= 0 || p >= 1 {
		return fmt.Errorf("%s confidence must be in (0,1), got %f", name, p)
	}
	if p == 0.5 {
		return fmt.Errorf("%s confidence of 0.5 carries no evidence", name)
	}
	return nil
}
