package internal

import (
	"context"
	"fmt"
	"sort"
	"time"

	"stocktagger/internal/domain"
	"stocktagger/internal/logger"
	"stocktagger/internal/repository"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
)

// PriceFetcher returns daily adjusted closes for a symbol
type PriceFetcher func(symbol string, start, end time.Time) ([]domain.AssetPrice, error)

func FetchYahooPrices(symbol string, start, end time.Time) ([]domain.AssetPrice, error) {
	params := &chart.Params{
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Symbol:   symbol,
		Interval: datetime.OneDay,
	}
	iter := chart.Get(params)

	prices := []domain.AssetPrice{}
	for iter.Next() {
		prices = append(prices, domain.AssetPrice{
			Symbol: symbol,
			Date:   time.Unix(int64(iter.Bar().Timestamp), 0).UTC(),
			Price:  iter.Bar().AdjClose,
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to get prices for %s: %w", symbol, err)
	}

	return prices, nil
}

// IngestPrices downloads history since 2018 for every symbol and
// overwrites the raw prices file. symbols that fail are logged and
// skipped; it only errors when nothing could be fetched
func IngestPrices(
	ctx context.Context,
	symbols []string,
	fetch PriceFetcher,
	adjPricesRepository repository.AdjustedPriceRepository,
) error {
	log := logger.FromContext(ctx)
	if len(symbols) == 0 {
		return fmt.Errorf("no symbols to ingest")
	}

	start := time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)
	now := time.Now().UTC()

	all := []domain.AssetPrice{}
	errors := []error{}
	for _, symbol := range symbols {
		prices, err := fetch(symbol, start, now)
		if err != nil {
			err = fmt.Errorf("failed to ingest historical prices for %s: %w", symbol, err)
			log.Warn(err.Error())
			errors = append(errors, err)
			continue
		}
		log.Infof("fetched %d prices for %s", len(prices), symbol)
		all = append(all, prices...)
	}

	if len(errors) == len(symbols) {
		return fmt.Errorf("failed to ingest %d/%d symbols. first err: %w", len(errors), len(symbols), errors[0])
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Symbol != all[j].Symbol {
			return all[i].Symbol < all[j].Symbol
		}
		return all[i].Date.Before(all[j].Date)
	})

	if err := adjPricesRepository.Add(all); err != nil {
		return err
	}
	if len(errors) > 0 {
		log.Warnf("ingested %d/%d symbols", len(symbols)-len(errors), len(symbols))
	}

	return nil
}
