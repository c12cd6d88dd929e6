package l3_service

import (
	"context"
	"fmt"
	"strings"

	"stocktagger/internal/data"
	"stocktagger/internal/domain"
	"stocktagger/internal/logger"
	"stocktagger/internal/ml"
	"stocktagger/internal/repository"
)

type Prediction struct {
	Ticker string          `json:"ticker"`
	Labels map[string]bool `json:"labels"`
}

//go:generate mockgen -source=inference.service.go -destination=mocks/mock_inference.service.go -package=mock_l3_service InferenceService

type InferenceService interface {
	Predict(ctx context.Context, ticker string) (*Prediction, error)
}

// InferenceContext is everything serving needs, loaded once at startup.
// it is never mutated or refreshed afterwards, so concurrent requests
// can share it
type InferenceContext struct {
	schema       domain.FeatureSchema
	labelColumns []string
	scaler       ml.StandardScaler
	model        ml.Classifier
	rows         map[string]data.Row
}

// NewInferenceContext checks that the artifacts agree with each other
// and indexes the feature store by uppercased symbol
func NewInferenceContext(manifest domain.ModelManifest, scaler ml.StandardScaler, model ml.Classifier, featureStore *data.Table) (*InferenceContext, error) {
	schema := manifest.Schema
	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model manifest: %w", err)
	}
	if err := scaler.Validate(schema.NumericColumns); err != nil {
		return nil, err
	}

	featureColumns := schema.FeatureColumns()
	labelColumns := schema.LabelColumns()
	if model.InputDim() != len(featureColumns) {
		return nil, domain.ShapeMismatchError{What: "model input", Expected: len(featureColumns), Got: model.InputDim()}
	}
	if model.OutputDim() != len(labelColumns) {
		return nil, domain.ShapeMismatchError{What: "model output", Expected: len(labelColumns), Got: model.OutputDim()}
	}

	if err := featureStore.RequireColumns(domain.ColumnSymbol); err != nil {
		return nil, err
	}
	rows := map[string]data.Row{}
	dups := []string{}
	for _, row := range featureStore.Rows() {
		symbol := strings.ToUpper(strings.TrimSpace(row.Get(domain.ColumnSymbol)))
		if _, ok := rows[symbol]; ok {
			dups = append(dups, symbol)
			continue
		}
		rows[symbol] = row
	}
	if len(dups) > 0 {
		return nil, domain.JoinCardinalityError{Side: "feature store", Key: domain.ColumnSymbol, Duplicates: dups}
	}

	return &InferenceContext{
		schema:       schema,
		labelColumns: labelColumns,
		scaler:       scaler,
		model:        model,
		rows:         rows,
	}, nil
}

// LoadInferenceContext reads the trained artifacts and the combined
// dataset used as the feature store
func LoadInferenceContext(ctx context.Context, artifactRepository repository.ArtifactRepository, combinedRepository repository.DatasetRepository) (*InferenceContext, error) {
	log := logger.FromContext(ctx)

	manifest, err := artifactRepository.GetManifest()
	if err != nil {
		return nil, err
	}
	scaler, err := artifactRepository.GetScaler()
	if err != nil {
		return nil, err
	}
	model, err := artifactRepository.GetModel()
	if err != nil {
		return nil, err
	}
	featureStore, err := combinedRepository.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to load feature store: %w", err)
	}

	ic, err := NewInferenceContext(*manifest, *scaler, model, featureStore)
	if err != nil {
		return nil, err
	}
	log.Infof("loaded model run %s with %d features, %d labels and %d tickers", manifest.RunID, len(manifest.FeatureColumns), len(ic.labelColumns), len(ic.rows))

	return ic, nil
}

func (c *InferenceContext) LabelColumns() []string {
	return append([]string{}, c.labelColumns...)
}

func normalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// rawFeatures returns the unscaled feature vector for a ticker
func (c *InferenceContext) rawFeatures(ticker string) ([]float64, error) {
	row, ok := c.rows[normalizeTicker(ticker)]
	if !ok {
		return nil, domain.TickerNotFoundError{Ticker: normalizeTicker(ticker)}
	}
	return c.schema.FeatureVector(row), nil
}

type inferenceServiceHandler struct {
	InferenceContext *InferenceContext
}

func NewInferenceService(inferenceContext *InferenceContext) InferenceService {
	return inferenceServiceHandler{
		InferenceContext: inferenceContext,
	}
}

func (h inferenceServiceHandler) Predict(ctx context.Context, ticker string) (*Prediction, error) {
	c := h.InferenceContext
	symbol := normalizeTicker(ticker)
	if symbol == "" {
		return nil, domain.InvalidTickerError{}
	}

	features, err := c.rawFeatures(symbol)
	if err != nil {
		return nil, err
	}
	scaled, err := c.scaler.Transform(features)
	if err != nil {
		return nil, fmt.Errorf("failed to scale features for %s: %w", symbol, err)
	}
	probabilities, err := c.model.Predict(scaled)
	if err != nil {
		return nil, fmt.Errorf("failed to run model for %s: %w", symbol, err)
	}
	if len(probabilities) != len(c.labelColumns) {
		return nil, domain.ShapeMismatchError{What: "model output", Expected: len(c.labelColumns), Got: len(probabilities)}
	}

	labels := make(map[string]bool, len(c.labelColumns))
	for i, label := range c.labelColumns {
		labels[label] = probabilities[i] >= ml.Threshold
	}
	logger.FromContext(ctx).Debugf("predicted %d labels for %s", len(labels), symbol)

	return &Prediction{
		Ticker: symbol,
		Labels: labels,
	}, nil
}
