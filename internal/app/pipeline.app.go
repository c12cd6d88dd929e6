package app

import (
	"context"
	"fmt"

	"stocktagger/internal/domain"
	"stocktagger/internal/logger"
	l1_service "stocktagger/internal/service/l1"
	l2_service "stocktagger/internal/service/l2"
	l3_service "stocktagger/internal/service/l3"
)

type Stage string

const (
	StagePriceFeatures Stage = "price-features"
	StageFundamentals  Stage = "fundamentals"
	StageCombine       Stage = "combine"
	StageTrain         Stage = "train"
)

// Stages lists every batch stage in dependency order
func Stages() []Stage {
	return []Stage{StagePriceFeatures, StageFundamentals, StageCombine, StageTrain}
}

// PipelineApp runs the batch stages. each stage reads the previous
// stage's output from disk, so stages can also be run one at a time
type PipelineApp interface {
	Run(ctx context.Context, stages ...Stage) error
}

type pipelineAppHandler struct {
	PriceFeatureService l1_service.PriceFeatureService
	FundamentalsService l1_service.FundamentalsService
	CombineService      l2_service.CombineService
	TrainerService      l3_service.TrainerService
}

func NewPipelineApp(
	priceFeatureService l1_service.PriceFeatureService,
	fundamentalsService l1_service.FundamentalsService,
	combineService l2_service.CombineService,
	trainerService l3_service.TrainerService,
) PipelineApp {
	return pipelineAppHandler{
		PriceFeatureService: priceFeatureService,
		FundamentalsService: fundamentalsService,
		CombineService:      combineService,
		TrainerService:      trainerService,
	}
}

func (h pipelineAppHandler) Run(ctx context.Context, stages ...Stage) error {
	log := logger.FromContext(ctx)
	if len(stages) == 0 {
		stages = Stages()
	}

	profile, endProfile := domain.NewProfile()

	for _, stage := range stages {
		span := profile.StartStage(string(stage))
		log.Infof("running %s", stage)

		rows, err := h.runStage(ctx, stage)
		if err != nil {
			return fmt.Errorf("%s stage failed: %w", stage, err)
		}
		span.End(rows)
		log.Infof("finished %s: %d rows in %dms", stage, rows, *span.Elapsed)
	}
	endProfile()

	if b, err := profile.ToJsonBytes(); err == nil {
		log.Debugf("pipeline profile: %s", string(b))
	}
	return nil
}

func (h pipelineAppHandler) runStage(ctx context.Context, stage Stage) (int, error) {
	switch stage {
	case StagePriceFeatures:
		features, err := h.PriceFeatureService.ExtractPriceFeatures(ctx)
		if err != nil {
			return 0, err
		}
		return len(features), nil
	case StageFundamentals:
		out, err := h.FundamentalsService.MergeFundamentals(ctx)
		if err != nil {
			return 0, err
		}
		return out.Len(), nil
	case StageCombine:
		out, err := h.CombineService.CombineFeatures(ctx)
		if err != nil {
			return 0, err
		}
		return out.Len(), nil
	case StageTrain:
		result, err := h.TrainerService.Train(ctx)
		if err != nil {
			return 0, err
		}
		return result.Manifest.TrainRows + result.Manifest.ValRows + result.Manifest.TestRows, nil
	}
	return 0, fmt.Errorf("unknown stage '%s'", stage)
}
