package domain

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type mapRecord map[string]string

func (m mapRecord) Get(c string) string {
	return m[c]
}

func (m mapRecord) Float(c string) (float64, bool) {
	switch m[c] {
	case "":
		return 0, false
	case "1":
		return 1, true
	case "2":
		return 2, true
	}
	return 0, false
}

func TestSectorVocabulary(t *testing.T) {
	t.Run("sorted and deduped", func(t *testing.T) {
		v := NewSectorVocabulary([]string{"Utilities", "", "Consumer Staples", "Utilities", "Energy"})
		require.Equal(t, []string{"Consumer Staples", "Energy", "Utilities"}, v.Sectors)
		require.Equal(t, []string{"Sector_ConsumerStaples", "Sector_Energy", "Sector_Utilities"}, v.Columns())
	})

	t.Run("unseen sector is all zero", func(t *testing.T) {
		v := NewSectorVocabulary([]string{"Energy", "Utilities"})
		require.Equal(t, []float64{0, 0}, v.OneHot("Real Estate"))
		require.Equal(t, []float64{0, 0}, v.OneHot(""))
		require.Equal(t, []float64{0, 1}, v.OneHot("Utilities"))
	})
}

func TestFeatureSchema(t *testing.T) {
	schema := NewFeatureSchema(NewSectorVocabulary([]string{"Technology", "Energy"}))

	t.Run("feature and label order", func(t *testing.T) {
		require.Equal(t, "", cmp.Diff([]string{
			"MarketCap", "RevenueGrowth", "PE", "DividendYield", "volatility", "momentum",
			"Sector_Energy", "Sector_Technology",
		}, schema.FeatureColumns()))
		require.Equal(t, "", cmp.Diff([]string{
			"LargeCap", "MidCap", "SmallCap", "MicroCap",
			"GrowthStock", "ValueStock", "IncomeStock", "BlueChipStock",
			"Cyclical", "Defensive",
			"Sector_Energy", "Sector_Technology",
			"DividendStock", "NonDividendStock",
		}, schema.LabelColumns()))
	})

	t.Run("feature vector with missing numeric", func(t *testing.T) {
		v := schema.FeatureVector(mapRecord{
			"MarketCap": "2",
			"PE":        "1",
			"sector":    "Technology",
		})
		require.Len(t, v, 8)
		require.Equal(t, 2.0, v[0])
		require.True(t, math.IsNaN(v[1]))
		require.Equal(t, 1.0, v[2])
		require.Equal(t, []float64{0, 1}, v[6:])
	})

	t.Run("validate rejects other versions", func(t *testing.T) {
		require.NoError(t, schema.Validate())
		bad := schema
		bad.Version = 99
		require.Error(t, bad.Validate())
		bad = schema
		bad.NumericColumns = []string{"MarketCap"}
		require.Error(t, bad.Validate())
	})
}
