package cmd

import (
	"context"
	"fmt"

	"stocktagger/api"
	"stocktagger/internal/app"
	"stocktagger/internal/logger"
	"stocktagger/internal/repository"
	l1_service "stocktagger/internal/service/l1"
	l2_service "stocktagger/internal/service/l2"
	l3_service "stocktagger/internal/service/l3"
	"stocktagger/internal/util"
)

func CloseDependencies(handler *api.ApiHandler) {
	if handler.Logger != nil {
		_ = handler.Logger.Sync()
	}
}

func newArtifactRepository(cfg util.Config) repository.ArtifactRepository {
	return repository.NewArtifactRepository(repository.ArtifactPaths{
		Model:    cfg.ModelPath,
		Scaler:   cfg.ScalerPath(),
		Manifest: cfg.ManifestPath(),
		History:  cfg.HistoryPath(),
	})
}

// InitializePipeline wires every batch stage against the configured
// directories
func InitializePipeline(cfg util.Config) app.PipelineApp {
	priceFeatureRepository := repository.NewPriceFeatureRepository(cfg.PriceFeaturesPath())
	fundamentalsCleanRepository := repository.NewDatasetRepository(cfg.FundamentalsCleanPath(), string(app.StageFundamentals))
	combinedRepository := repository.NewDatasetRepository(cfg.CombinedPath(), string(app.StageCombine))

	priceFeatureService := l1_service.NewPriceFeatureService(
		repository.NewAdjustedPriceRepository(cfg.PricesPath()),
		priceFeatureRepository,
		cfg.VolWindow,
		cfg.MomWindow,
	)
	fundamentalsService := l1_service.NewFundamentalsService(
		repository.NewAssetFundamentalsRepository(repository.FundamentalsPaths{
			Indicators:       cfg.IndicatorsPath(),
			Companies:        cfg.CompaniesPath(),
			YearlyIndicators: cfg.YearlyIndicatorsPath(),
			CompaniesByID:    cfg.CompaniesByIDPath(),
		}),
		fundamentalsCleanRepository,
		l1_service.FundamentalsConfig{
			Schema:           cfg.FundamentalsSchema,
			AllowedExchanges: cfg.AllowedExchanges,
			Year:             cfg.FundamentalsYear,
		},
	)
	combineService := l2_service.NewCombineService(
		fundamentalsCleanRepository,
		priceFeatureRepository,
		combinedRepository,
	)
	trainerService := l3_service.NewTrainerService(
		combinedRepository,
		newArtifactRepository(cfg),
		l2_service.NewLabelService(),
		cfg.Training,
	)

	return app.NewPipelineApp(
		priceFeatureService,
		fundamentalsService,
		combineService,
		trainerService,
	)
}

// InitializeDependencies loads config and the trained artifacts once.
// the resulting handler serves from that snapshot until the process exits
func InitializeDependencies() (*api.ApiHandler, *util.Config, error) {
	cfg, err := util.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New()
	ctx := logger.WithLogger(context.Background(), log)

	inferenceContext, err := l3_service.LoadInferenceContext(
		ctx,
		newArtifactRepository(*cfg),
		repository.NewDatasetRepository(cfg.CombinedPath(), string(app.StageCombine)),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load inference context: %w", err)
	}

	apiHandler := &api.ApiHandler{
		InferenceService: l3_service.NewInferenceService(inferenceContext),
		Logger:           log,
	}

	return apiHandler, cfg, nil
}
