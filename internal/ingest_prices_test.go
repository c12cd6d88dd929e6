package internal

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"stocktagger/internal/domain"
	"stocktagger/internal/repository"
	"stocktagger/internal/util"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func fakeFetcher(failing map[string]bool) PriceFetcher {
	return func(symbol string, start, end time.Time) ([]domain.AssetPrice, error) {
		if failing[symbol] {
			return nil, errors.New("no data")
		}
		return []domain.AssetPrice{
			{Symbol: symbol, Date: util.NewDate(2020, 1, 3), Price: decimal.NewFromFloat(11.5)},
			{Symbol: symbol, Date: util.NewDate(2020, 1, 2), Price: decimal.NewFromInt(10)},
		}, nil
	}
}

func TestIngestPrices(t *testing.T) {
	t.Run("happy path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "prices.csv")
		adjPricesRepository := repository.NewAdjustedPriceRepository(path)

		err := IngestPrices(context.Background(), []string{"MSFT", "AAPL", "BAD"}, fakeFetcher(map[string]bool{"BAD": true}), adjPricesRepository)
		require.NoError(t, err)

		prices, err := adjPricesRepository.List()
		require.NoError(t, err)
		require.Len(t, prices, 4)
		require.Equal(t, "AAPL", prices[0].Symbol)
		require.Equal(t, util.NewDate(2020, 1, 2), prices[0].Date)
		require.True(t, decimal.NewFromFloat(11.5).Equal(prices[1].Price))
		require.Equal(t, "MSFT", prices[3].Symbol)
	})

	t.Run("every symbol failing is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "prices.csv")
		err := IngestPrices(context.Background(), []string{"BAD"}, fakeFetcher(map[string]bool{"BAD": true}), repository.NewAdjustedPriceRepository(path))
		require.Error(t, err)
		require.False(t, util.FileExists(path))
	})
}
