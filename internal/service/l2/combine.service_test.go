package l2_service

import (
	"context"
	"strings"
	"testing"

	"stocktagger/internal/data"
	"stocktagger/internal/domain"
	mock_repository "stocktagger/internal/repository/mocks"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

func readTable(t *testing.T, name, csv string) *data.Table {
	tbl, err := data.ReadCSV(name, strings.NewReader(csv))
	require.NoError(t, err)
	return tbl
}

func Test_combineFeatures(t *testing.T) {
	log := zap.NewNop().Sugar()

	t.Run("happy path", func(t *testing.T) {
		fundamentals := readTable(t, "fundamentals_clean.csv", `symbol,MarketCapitalization,PERatio,Revenue,RevenuePriorYear,DividendYield,sector
MSFT,3e12,35,110,100,0.008,Technology
KO,2.6e11,,50,0,0.03,Consumer Staples
NOPX,1,1,1,1,0,Energy
`)
		prices := []domain.PriceFeature{
			{Symbol: "KO", Volatility: 0.01, Momentum: 0.02},
			{Symbol: "MSFT", Volatility: 0.02, Momentum: 0.1},
			{Symbol: "ONLYPX", Volatility: 0.03, Momentum: 0.3},
		}

		out, err := combineFeatures(log, fundamentals, prices)
		require.NoError(t, err)
		require.Equal(t, []string{
			"symbol", "MarketCapitalization", "PERatio", "Revenue", "RevenuePriorYear", "DividendYield", "sector",
			"MarketCap", "PE", "RevenueGrowth", "volatility", "momentum",
		}, out.Columns())
		require.Equal(t, 2, out.Len())

		msft := out.Row(0)
		require.Equal(t, "MSFT", msft.Get("symbol"))
		require.Equal(t, "3e+12", msft.Get("MarketCap"))
		require.Equal(t, "35", msft.Get("PE"))
		growth, ok := msft.Float("RevenueGrowth")
		require.True(t, ok)
		require.InDelta(t, 0.1, growth, 1e-12)
		require.Equal(t, "0.1", msft.Get("momentum"))

		ko := out.Row(1)
		require.Equal(t, "KO", ko.Get("symbol"))
		_, ok = ko.Float("RevenueGrowth")
		require.False(t, ok)
		_, ok = ko.Float("PE")
		require.False(t, ok)
	})

	t.Run("company_id keyed fundamentals", func(t *testing.T) {
		fundamentals := readTable(t, "fundamentals_clean.csv", `company_id,MarketCap
a,5
`)
		out, err := combineFeatures(log, fundamentals, []domain.PriceFeature{{Symbol: "a", Volatility: 1, Momentum: 2}})
		require.NoError(t, err)
		require.Equal(t, []string{"symbol", "MarketCap", "volatility", "momentum"}, out.Columns())
		require.Equal(t, 1, out.Len())
	})

	t.Run("aliased columns are written in shortest form", func(t *testing.T) {
		fundamentals := readTable(t, "fundamentals_clean.csv", `symbol,marketCap,peRatio,dividendYield
A,2.50E+09,012.0,n/a
`)
		out, err := combineFeatures(log, fundamentals, []domain.PriceFeature{{Symbol: "A"}})
		require.NoError(t, err)
		require.Equal(t, "2.5e+09", out.Row(0).Get("MarketCap"))
		require.Equal(t, "12", out.Row(0).Get("PE"))
		require.Equal(t, "", out.Row(0).Get("DividendYield"))
	})

	t.Run("without revenue inputs the growth column is absent", func(t *testing.T) {
		fundamentals := readTable(t, "fundamentals_clean.csv", `symbol,MarketCap
A,5
`)
		out, err := combineFeatures(log, fundamentals, []domain.PriceFeature{{Symbol: "A"}})
		require.NoError(t, err)
		require.False(t, out.HasColumn("RevenueGrowth"))
	})

	t.Run("duplicate fundamentals symbol fails", func(t *testing.T) {
		fundamentals := readTable(t, "fundamentals_clean.csv", `symbol,MarketCap
A,1
A,2
`)
		_, err := combineFeatures(log, fundamentals, []domain.PriceFeature{{Symbol: "A"}})
		joinErr := domain.JoinCardinalityError{}
		require.ErrorAs(t, err, &joinErr)
		require.Equal(t, "fundamentals", joinErr.Side)
		require.Equal(t, []string{"A"}, joinErr.Duplicates)
	})

	t.Run("duplicate price symbol fails", func(t *testing.T) {
		fundamentals := readTable(t, "fundamentals_clean.csv", `symbol,MarketCap
A,1
`)
		_, err := combineFeatures(log, fundamentals, []domain.PriceFeature{{Symbol: "B"}, {Symbol: "B"}})
		joinErr := domain.JoinCardinalityError{}
		require.ErrorAs(t, err, &joinErr)
		require.Equal(t, "price features", joinErr.Side)
	})
}

func Test_combineServiceHandler_CombineFeatures(t *testing.T) {
	t.Run("happy path", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		fundamentalsRepository := mock_repository.NewMockDatasetRepository(ctrl)
		priceFeatureRepository := mock_repository.NewMockPriceFeatureRepository(ctrl)
		combinedRepository := mock_repository.NewMockDatasetRepository(ctrl)

		handler := NewCombineService(fundamentalsRepository, priceFeatureRepository, combinedRepository)

		fundamentalsRepository.EXPECT().
			Get().
			Return(readTable(t, "fundamentals_clean.csv", "symbol,MarketCap\nA,1\n"), nil)
		priceFeatureRepository.EXPECT().
			List().
			Return([]domain.PriceFeature{{Symbol: "A", Volatility: 0.5, Momentum: 0.25}}, nil)

		var saved *data.Table
		combinedRepository.EXPECT().
			Save(gomock.Any()).
			DoAndReturn(func(tbl *data.Table) error {
				saved = tbl
				return nil
			})
		combinedRepository.EXPECT().
			Path().
			Return("combined_data.csv")

		out, err := handler.CombineFeatures(context.Background())
		require.NoError(t, err)
		require.Same(t, out, saved)

		diff := cmp.Diff(map[string]string{
			"symbol":     "A",
			"MarketCap":  "1",
			"volatility": "0.5",
			"momentum":   "0.25",
		}, out.Row(0).Values())
		require.Empty(t, diff)
	})
}
