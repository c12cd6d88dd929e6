package l1_service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"stocktagger/internal/data"
	"stocktagger/internal/domain"
	"stocktagger/internal/repository"
	"stocktagger/internal/util"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func floatPtr(f float64) *float64 {
	return &f
}

func tableValues(tbl *data.Table) []map[string]string {
	out := []map[string]string{}
	for _, r := range tbl.Rows() {
		out = append(out, r.Values())
	}
	return out
}

func Test_mergeLongFundamentals(t *testing.T) {
	log := zap.NewNop().Sugar()
	companies := []domain.Company{
		{Symbol: "AAPL", Name: "Apple", Exchange: "NASDAQ", Sector: "Technology", Industry: "Hardware"},
		{Symbol: "KO", Name: "Coca-Cola", Exchange: "NYSE", Sector: "Consumer Staples", Industry: "Beverages"},
		{Symbol: "OTC", Name: "Pink", Exchange: "OTC", Sector: "Energy", Industry: "Oil"},
		{Symbol: "KO", Name: "Duplicate", Exchange: "OTC"},
	}

	t.Run("keeps the latest record per symbol and indicator", func(t *testing.T) {
		indicators := []domain.IndicatorRecord{
			{Symbol: "AAPL", Indicator: "PE", PeriodEnding: util.NewDate(2023, 12, 31), Value: floatPtr(30)},
			{Symbol: "AAPL", Indicator: "PE", PeriodEnding: util.NewDate(2022, 12, 31), Value: floatPtr(20)},
			{Symbol: "AAPL", Indicator: "MarketCap", PeriodEnding: util.NewDate(2022, 12, 31), Value: floatPtr(3e12)},
			{Symbol: "KO", Indicator: "PE", PeriodEnding: util.NewDate(2023, 12, 31), Value: floatPtr(24)},
			{Symbol: "KO", Indicator: "PE", PeriodEnding: util.NewDate(2023, 12, 31), Value: floatPtr(25)},
		}

		out := mergeLongFundamentals(log, indicators, companies, []string{"NYSE", "NASDAQ"})
		require.Equal(t, []string{"symbol", "MarketCap", "PE", "name", "exchange", "sector", "industry"}, out.Columns())

		diff := cmp.Diff([]map[string]string{
			{"symbol": "AAPL", "MarketCap": "3e+12", "PE": "30", "name": "Apple", "exchange": "NASDAQ", "sector": "Technology", "industry": "Hardware"},
			{"symbol": "KO", "MarketCap": "", "PE": "25", "name": "Coca-Cola", "exchange": "NYSE", "sector": "Consumer Staples", "industry": "Beverages"},
		}, tableValues(out))
		require.Empty(t, diff)
	})

	t.Run("drops other exchanges and symbols without metadata", func(t *testing.T) {
		indicators := []domain.IndicatorRecord{
			{Symbol: "OTC", Indicator: "PE", PeriodEnding: util.NewDate(2023, 12, 31), Value: floatPtr(5)},
			{Symbol: "GHOST", Indicator: "PE", PeriodEnding: util.NewDate(2023, 12, 31), Value: floatPtr(5)},
			{Symbol: "KO", Indicator: "PE", PeriodEnding: util.NewDate(2023, 12, 31), Value: nil},
		}

		out := mergeLongFundamentals(log, indicators, companies, []string{"NYSE", "NASDAQ"})
		require.Equal(t, 1, out.Len())
		require.Equal(t, "KO", out.Row(0).Get("symbol"))
		_, ok := out.Row(0).Float("PE")
		require.False(t, ok)
	})

	t.Run("indicators named like company columns are skipped", func(t *testing.T) {
		indicators := []domain.IndicatorRecord{
			{Symbol: "AAPL", Indicator: "PE", PeriodEnding: util.NewDate(2023, 12, 31), Value: floatPtr(30)},
			{Symbol: "AAPL", Indicator: "sector", PeriodEnding: util.NewDate(2023, 12, 31), Value: floatPtr(5)},
			{Symbol: "AAPL", Indicator: "symbol", PeriodEnding: util.NewDate(2023, 12, 31), Value: floatPtr(7)},
		}

		out := mergeLongFundamentals(log, indicators, companies, []string{"NYSE", "NASDAQ"})
		require.Equal(t, []string{"symbol", "PE", "name", "exchange", "sector", "industry"}, out.Columns())
		require.Equal(t, 1, out.Len())
		require.Equal(t, "AAPL", out.Row(0).Get("symbol"))
		require.Equal(t, "Technology", out.Row(0).Get("sector"))
	})
}

const yearlyIndicatorsCsv = `company_id,indicator,2021,2022,2023
b,Revenue,80,90,100
a,Revenue,10,,50
a,PE,1,2,3
`

const companiesByIdCsv = `company_id,name,sector,industry
a,Alpha,Energy,Oil
b,Beta,Utilities,Power
`

func Test_mergeYearlyFundamentals(t *testing.T) {
	log := zap.NewNop().Sugar()
	indicators, err := data.ReadCSV("indicators_by_year.csv", strings.NewReader(yearlyIndicatorsCsv))
	require.NoError(t, err)
	companies, err := data.ReadCSV("companies_by_id.csv", strings.NewReader(companiesByIdCsv))
	require.NoError(t, err)

	t.Run("latest year with prior year columns", func(t *testing.T) {
		out, err := mergeYearlyFundamentals(log, indicators, companies, 0)
		require.NoError(t, err)
		require.Equal(t, []string{"company_id", "PE", "PEPriorYear", "Revenue", "RevenuePriorYear", "name", "sector", "industry"}, out.Columns())

		diff := cmp.Diff([]map[string]string{
			{"company_id": "a", "PE": "3", "PEPriorYear": "2", "Revenue": "50", "RevenuePriorYear": "", "name": "Alpha", "sector": "Energy", "industry": "Oil"},
			{"company_id": "b", "PE": "", "PEPriorYear": "", "Revenue": "100", "RevenuePriorYear": "90", "name": "Beta", "sector": "Utilities", "industry": "Power"},
		}, tableValues(out))
		require.Empty(t, diff)
	})

	t.Run("earliest year has no prior year columns", func(t *testing.T) {
		out, err := mergeYearlyFundamentals(log, indicators, companies, 2021)
		require.NoError(t, err)
		require.Equal(t, []string{"company_id", "PE", "Revenue", "name", "sector", "industry"}, out.Columns())
		require.Equal(t, "10", out.Row(0).Get("Revenue"))
	})

	t.Run("unknown year", func(t *testing.T) {
		_, err := mergeYearlyFundamentals(log, indicators, companies, 1999)
		require.ErrorAs(t, err, &domain.MissingColumnError{})
	})
}

func Test_fundamentalsServiceHandler_MergeFundamentals(t *testing.T) {
	t.Run("auto picks the yearly layout when it is the only one present", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "indicators_by_year.csv"), []byte(yearlyIndicatorsCsv), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "companies_by_id.csv"), []byte(companiesByIdCsv), 0o644))

		cleanPath := filepath.Join(dir, "processed", "fundamentals_clean.csv")
		handler := NewFundamentalsService(
			repository.NewAssetFundamentalsRepository(repository.FundamentalsPaths{
				Indicators:       filepath.Join(dir, "indicators_by_company.csv"),
				Companies:        filepath.Join(dir, "companies.csv"),
				YearlyIndicators: filepath.Join(dir, "indicators_by_year.csv"),
				CompaniesByID:    filepath.Join(dir, "companies_by_id.csv"),
			}),
			repository.NewDatasetRepository(cleanPath, "fundamentals"),
			FundamentalsConfig{Schema: domain.FundamentalsSchemaAuto},
		)

		out, err := handler.MergeFundamentals(context.Background())
		require.NoError(t, err)
		require.Equal(t, 2, out.Len())

		saved, err := repository.NewDatasetRepository(cleanPath, "").Get()
		require.NoError(t, err)
		require.Equal(t, out.Columns(), saved.Columns())
		require.Equal(t, tableValues(out), tableValues(saved))
	})

	t.Run("no raw fundamentals at all", func(t *testing.T) {
		dir := t.TempDir()
		handler := NewFundamentalsService(
			repository.NewAssetFundamentalsRepository(repository.FundamentalsPaths{
				Indicators:       filepath.Join(dir, "indicators_by_company.csv"),
				Companies:        filepath.Join(dir, "companies.csv"),
				YearlyIndicators: filepath.Join(dir, "indicators_by_year.csv"),
				CompaniesByID:    filepath.Join(dir, "companies_by_id.csv"),
			}),
			repository.NewDatasetRepository(filepath.Join(dir, "out.csv"), "fundamentals"),
			FundamentalsConfig{Schema: domain.FundamentalsSchemaAuto},
		)

		_, err := handler.MergeFundamentals(context.Background())
		require.ErrorAs(t, err, &domain.MissingInputFileError{})
	})
}
