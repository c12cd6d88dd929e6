package repository

import (
	"fmt"
	"io"

	"stocktagger/internal/domain"
	"stocktagger/internal/util"

	"github.com/gocarina/gocsv"
)

//go:generate mockgen -source=price_feature.repository.go -destination=mocks/mock_price_feature.repository.go -package=mock_repository

type PriceFeatureRepository interface {
	Add(features []domain.PriceFeature) error
	List() ([]domain.PriceFeature, error)
}

func NewPriceFeatureRepository(path string) PriceFeatureRepository {
	return priceFeatureRepositoryHandler{Path: path}
}

type priceFeatureRepositoryHandler struct {
	Path string
}

func (h priceFeatureRepositoryHandler) Add(features []domain.PriceFeature) error {
	err := util.WriteFileAtomic(h.Path, func(w io.Writer) error {
		return gocsv.Marshal(&features, w)
	})
	if err != nil {
		return fmt.Errorf("failed to write price features to %s: %w", h.Path, err)
	}
	return nil
}

func (h priceFeatureRepositoryHandler) List() ([]domain.PriceFeature, error) {
	b, err := readInput(h.Path, "Ensure the price-features stage has run successfully.")
	if err != nil {
		return nil, err
	}
	if err := requireHeader(h.Path, b, domain.ColumnSymbol, domain.ColumnVolatility, domain.ColumnMomentum); err != nil {
		return nil, err
	}

	out := []domain.PriceFeature{}
	if err := gocsv.UnmarshalBytes(b, &out); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", h.Path, err)
	}
	return out, nil
}
