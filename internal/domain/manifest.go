package domain

import (
	"time"

	"github.com/google/uuid"
)

// ModelManifest is persisted next to the model and scaler. it carries the
// frozen schema that serving uses to rebuild feature vectors
type ModelManifest struct {
	RunID          uuid.UUID     `json:"runID"`
	TrainedAt      time.Time     `json:"trainedAt"`
	Schema         FeatureSchema `json:"schema"`
	FeatureColumns []string      `json:"featureColumns"`
	LabelColumns   []string      `json:"labelColumns"`
	TrainRows      int           `json:"trainRows"`
	ValRows        int           `json:"valRows"`
	TestRows       int           `json:"testRows"`
	TestLoss       float64       `json:"testLoss"`
	TestAccuracy   float64       `json:"testAccuracy"`
}
