package l3_service

import (
	"context"
	"fmt"
	"time"

	"stocktagger/internal/data"
	"stocktagger/internal/domain"
	"stocktagger/internal/logger"
	"stocktagger/internal/ml"
	"stocktagger/internal/repository"
	l2_service "stocktagger/internal/service/l2"
	"stocktagger/internal/util"

	"github.com/google/uuid"
)

type TrainerService interface {
	Train(ctx context.Context) (*TrainResult, error)
}

type TrainResult struct {
	Manifest domain.ModelManifest
	History  []ml.EpochMetrics
}

type trainerServiceHandler struct {
	CombinedRepository repository.DatasetRepository
	ArtifactRepository repository.ArtifactRepository
	LabelService       l2_service.LabelService
	Config             util.TrainingConfig
}

func NewTrainerService(
	combinedRepository repository.DatasetRepository,
	artifactRepository repository.ArtifactRepository,
	labelService l2_service.LabelService,
	config util.TrainingConfig,
) TrainerService {
	return trainerServiceHandler{
		CombinedRepository: combinedRepository,
		ArtifactRepository: artifactRepository,
		LabelService:       labelService,
		Config:             config,
	}
}

// BuildTrainingMatrix builds the unscaled feature rows and the 0/1 label
// rows of a labeled dataset, both in schema order
func BuildTrainingMatrix(schema domain.FeatureSchema, labeled *data.Table) (features, labels [][]float64, err error) {
	if err := labeled.RequireColumns(schema.NumericColumns...); err != nil {
		return nil, nil, err
	}
	labelColumns := schema.LabelColumns()
	if err := labeled.RequireColumns(labelColumns...); err != nil {
		return nil, nil, err
	}

	features = make([][]float64, 0, labeled.Len())
	labels = make([][]float64, 0, labeled.Len())
	for _, row := range labeled.Rows() {
		features = append(features, schema.FeatureVector(row))

		y := make([]float64, len(labelColumns))
		for j, c := range labelColumns {
			v, ok := row.Float(c)
			if !ok {
				return nil, nil, fmt.Errorf("label %s is missing for %s", c, row.Get(domain.ColumnSymbol))
			}
			y[j] = v
		}
		labels = append(labels, y)
	}
	return features, labels, nil
}

func (h trainerServiceHandler) Train(ctx context.Context) (*TrainResult, error) {
	log := logger.FromContext(ctx)
	cfg := h.Config

	combined, err := h.CombinedRepository.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to load combined dataset: %w", err)
	}
	log.Infof("loaded %d rows from %s", combined.Len(), h.CombinedRepository.Path())

	labeled, err := h.LabelService.DeriveLabels(ctx, combined)
	if err != nil {
		return nil, fmt.Errorf("failed to derive labels: %w", err)
	}

	schema := domain.NewFeatureSchema(labeled.Vocabulary)
	x, y, err := BuildTrainingMatrix(schema, labeled.Table)
	if err != nil {
		return nil, fmt.Errorf("failed to build training matrix: %w", err)
	}

	trainIdx, valIdx, testIdx, err := ml.TrainValTestSplit(len(x), cfg.TestSize, cfg.ValSize, cfg.Seed)
	if err != nil {
		return nil, err
	}
	log.Infof("split %d rows into train=%d val=%d test=%d", len(x), len(trainIdx), len(valIdx), len(testIdx))

	scaler, err := ml.FitStandardScaler(schema.NumericColumns, ml.Take(x, trainIdx))
	if err != nil {
		return nil, fmt.Errorf("failed to fit scaler: %w", err)
	}
	scaled, err := scaler.TransformAll(x)
	if err != nil {
		return nil, err
	}

	featureColumns := schema.FeatureColumns()
	labelColumns := schema.LabelColumns()
	network, err := ml.NewNetwork(len(featureColumns), cfg.Hidden, cfg.Dropout, len(labelColumns), cfg.Seed)
	if err != nil {
		return nil, fmt.Errorf("failed to build network: %w", err)
	}

	history, err := ml.Fit(
		network,
		ml.Take(scaled, trainIdx),
		ml.Take(y, trainIdx),
		ml.Take(scaled, valIdx),
		ml.Take(y, valIdx),
		ml.FitConfig{
			Epochs:       cfg.Epochs,
			BatchSize:    cfg.BatchSize,
			LearningRate: cfg.LearningRate,
			Seed:         cfg.Seed,
		},
		func(m ml.EpochMetrics) {
			log.Infof(
				"epoch %d/%d loss=%.4f accuracy=%.4f val_loss=%.4f val_accuracy=%.4f",
				m.Epoch, cfg.Epochs, m.Loss, m.Accuracy, m.ValLoss, m.ValAccuracy,
			)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to train model: %w", err)
	}

	testLoss, testAccuracy, err := ml.Evaluate(network, ml.Take(scaled, testIdx), ml.Take(y, testIdx))
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate test set: %w", err)
	}
	log.Infof("test loss=%.4f accuracy=%.4f", testLoss, testAccuracy)

	manifest := domain.ModelManifest{
		RunID:          uuid.New(),
		TrainedAt:      time.Now().UTC(),
		Schema:         schema,
		FeatureColumns: featureColumns,
		LabelColumns:   labelColumns,
		TrainRows:      len(trainIdx),
		ValRows:        len(valIdx),
		TestRows:       len(testIdx),
		TestLoss:       testLoss,
		TestAccuracy:   testAccuracy,
	}

	if err := h.ArtifactRepository.SaveModel(network); err != nil {
		return nil, err
	}
	if err := h.ArtifactRepository.SaveScaler(scaler); err != nil {
		return nil, err
	}
	if err := h.ArtifactRepository.SaveManifest(manifest); err != nil {
		return nil, err
	}
	if err := h.ArtifactRepository.SaveHistory(history); err != nil {
		return nil, err
	}
	log.Infof("saved artifacts for run %s", manifest.RunID)

	return &TrainResult{
		Manifest: manifest,
		History:  history,
	}, nil
}
