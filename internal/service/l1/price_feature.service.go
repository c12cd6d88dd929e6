package l1_service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"stocktagger/internal/domain"
	"stocktagger/internal/logger"
	"stocktagger/internal/repository"

	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"
)

// PriceFeatureService turns raw close history into the latest rolling
// volatility and momentum per symbol
type PriceFeatureService interface {
	ExtractPriceFeatures(ctx context.Context) ([]domain.PriceFeature, error)
}

type priceFeatureServiceHandler struct {
	AdjPriceRepository     repository.AdjustedPriceRepository
	PriceFeatureRepository repository.PriceFeatureRepository
	VolWindow              int
	MomWindow              int
}

func NewPriceFeatureService(
	adjPriceRepository repository.AdjustedPriceRepository,
	priceFeatureRepository repository.PriceFeatureRepository,
	volWindow int,
	momWindow int,
) PriceFeatureService {
	return priceFeatureServiceHandler{
		AdjPriceRepository:     adjPriceRepository,
		PriceFeatureRepository: priceFeatureRepository,
		VolWindow:              volWindow,
		MomWindow:              momWindow,
	}
}

func (h priceFeatureServiceHandler) ExtractPriceFeatures(ctx context.Context) ([]domain.PriceFeature, error) {
	log := logger.FromContext(ctx)

	prices, err := h.AdjPriceRepository.List()
	if err != nil {
		return nil, fmt.Errorf("failed to load prices: %w", err)
	}
	log.Infof("loaded %d price rows", len(prices))

	features, err := computePriceFeatures(prices, h.VolWindow, h.MomWindow)
	if err != nil {
		return nil, err
	}
	log.Infof("computed price features for %d symbols", len(features))

	if err := h.PriceFeatureRepository.Add(features); err != nil {
		return nil, err
	}

	return features, nil
}

// groupPrices buckets prices by symbol, sorted by date. a repeated
// (symbol, date) keeps the last row in input order
func groupPrices(prices []domain.AssetPrice) map[string][]domain.AssetPrice {
	bySymbolDate := map[string]map[time.Time]int{}
	out := map[string][]domain.AssetPrice{}
	for _, p := range prices {
		if _, ok := bySymbolDate[p.Symbol]; !ok {
			bySymbolDate[p.Symbol] = map[time.Time]int{}
		}
		if i, ok := bySymbolDate[p.Symbol][p.Date]; ok {
			out[p.Symbol][i] = p
			continue
		}
		bySymbolDate[p.Symbol][p.Date] = len(out[p.Symbol])
		out[p.Symbol] = append(out[p.Symbol], p)
	}
	for symbol := range out {
		series := out[symbol]
		sort.SliceStable(series, func(i, j int) bool {
			return series[i].Date.Before(series[j].Date)
		})
	}
	return out
}

// computePriceFeatures evaluates both rolling statistics at each symbol's
// latest date. symbols without volWindow returns or momWindow prior
// closes are left out
func computePriceFeatures(prices []domain.AssetPrice, volWindow, momWindow int) ([]domain.PriceFeature, error) {
	if volWindow < 2 || momWindow < 1 {
		return nil, fmt.Errorf("invalid windows vol=%d mom=%d", volWindow, momWindow)
	}

	out := []domain.PriceFeature{}
	for symbol, series := range groupPrices(prices) {
		n := len(series)
		if n < volWindow+1 || n < momWindow+1 {
			continue
		}

		returns := make([]float64, 0, volWindow)
		ok := true
		for t := n - volWindow; t < n; t++ {
			ret, defined := simpleReturn(series[t].Price, series[t-1].Price)
			if !defined {
				ok = false
				break
			}
			returns = append(returns, ret)
		}
		if !ok {
			continue
		}
		volatility, err := stats.StandardDeviationSample(returns)
		if err != nil {
			return nil, fmt.Errorf("failed to calculate volatility for %s: %w", symbol, err)
		}

		momentum, defined := simpleReturn(series[n-1].Price, series[n-1-momWindow].Price)
		if !defined {
			continue
		}

		out = append(out, domain.PriceFeature{
			Symbol:     symbol,
			Volatility: volatility,
			Momentum:   momentum,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Symbol < out[j].Symbol
	})
	return out, nil
}

// simpleReturn is end/start - 1, undefined for a zero start
func simpleReturn(end, start decimal.Decimal) (float64, bool) {
	if start.IsZero() {
		return 0, false
	}
	return end.Sub(start).Div(start).InexactFloat64(), true
}
