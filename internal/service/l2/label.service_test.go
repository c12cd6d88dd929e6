package l2_service

import (
	"context"
	"testing"

	"stocktagger/internal/domain"

	"github.com/stretchr/testify/require"
)

func labelsOf(t *testing.T, ds *LabeledDataset, i int) map[string]string {
	out := map[string]string{}
	row := ds.Table.Row(i)
	for _, c := range domain.NewFeatureSchema(ds.Vocabulary).LabelColumns() {
		out[c] = row.Get(c)
	}
	return out
}

func TestDeriveLabels(t *testing.T) {
	t.Run("acme", func(t *testing.T) {
		combined := readTable(t, "combined_data.csv", `symbol,MarketCap,RevenueGrowth,PE,DividendYield,sector,volatility,momentum
ACME,12e9,0.2,10,0.04,Technology,0.01,0.1
KO,2.6e11,0.01,24,0.03,Consumer Staples,0.01,0.1
`)
		ds, err := DeriveLabels(combined)
		require.NoError(t, err)
		require.Equal(t, []string{"Consumer Staples", "Technology"}, ds.Vocabulary.Sectors)

		require.Equal(t, map[string]string{
			"LargeCap":               "1",
			"MidCap":                 "0",
			"SmallCap":               "0",
			"MicroCap":               "0",
			"GrowthStock":            "1",
			"ValueStock":             "1",
			"IncomeStock":            "1",
			"BlueChipStock":          "1",
			"Cyclical":               "1",
			"Defensive":              "0",
			"Sector_ConsumerStaples": "0",
			"Sector_Technology":      "1",
			"DividendStock":          "1",
			"NonDividendStock":       "0",
		}, labelsOf(t, ds, 0))

		ko := labelsOf(t, ds, 1)
		require.Equal(t, "0", ko["Cyclical"])
		require.Equal(t, "1", ko["Defensive"])
		require.Equal(t, "0", ko["GrowthStock"])
		require.Equal(t, "1", ko["Sector_ConsumerStaples"])
	})

	t.Run("market cap tier boundaries", func(t *testing.T) {
		combined := readTable(t, "combined_data.csv", `symbol,MarketCap,RevenueGrowth,PE,DividendYield,sector
A,10e9,0,0,0,Energy
B,2e9,0,0,0,Energy
C,300e6,0,0,0,Energy
D,299999999,0,0,0,Energy
`)
		ds, err := DeriveLabels(combined)
		require.NoError(t, err)

		expected := []map[string]string{
			{"LargeCap": "1", "MidCap": "0", "SmallCap": "0", "MicroCap": "0"},
			{"LargeCap": "0", "MidCap": "1", "SmallCap": "0", "MicroCap": "0"},
			{"LargeCap": "0", "MidCap": "0", "SmallCap": "1", "MicroCap": "0"},
			{"LargeCap": "0", "MidCap": "0", "SmallCap": "0", "MicroCap": "1"},
		}
		for i, e := range expected {
			labels := labelsOf(t, ds, i)
			for k, v := range e {
				require.Equal(t, v, labels[k], "row %d %s", i, k)
			}
		}
	})

	t.Run("missing values use the fill policy", func(t *testing.T) {
		combined := readTable(t, "combined_data.csv", `symbol,MarketCap,RevenueGrowth,PE,DividendYield,sector
X,,,,,
`)
		ds, err := DeriveLabels(combined)
		require.NoError(t, err)
		require.Empty(t, ds.Vocabulary.Sectors)

		labels := labelsOf(t, ds, 0)
		require.Equal(t, "1", labels["MicroCap"])
		require.Equal(t, "0", labels["ValueStock"])
		require.Equal(t, "0", labels["GrowthStock"])
		require.Equal(t, "0", labels["IncomeStock"])
		require.Equal(t, "0", labels["Cyclical"])
		require.Equal(t, "1", labels["Defensive"])
		require.Equal(t, "0", labels["DividendStock"])
		require.Equal(t, "1", labels["NonDividendStock"])
	})

	t.Run("missing rule input fails fast", func(t *testing.T) {
		combined := readTable(t, "combined_data.csv", `symbol,MarketCap,PE,DividendYield,sector
X,1,1,1,Energy
`)
		_, err := DeriveLabels(combined)
		missing := domain.MissingColumnError{}
		require.ErrorAs(t, err, &missing)
		require.Equal(t, []string{"RevenueGrowth"}, missing.Expected)
	})
}

func Test_labelServiceHandler_DeriveLabels(t *testing.T) {
	t.Run("happy path", func(t *testing.T) {
		combined := readTable(t, "combined_data.csv", `symbol,MarketCap,RevenueGrowth,PE,DividendYield,sector
A,1,0,0,0,Utilities
`)
		ds, err := NewLabelService().DeriveLabels(context.Background(), combined)
		require.NoError(t, err)
		require.Equal(t, 1, ds.Table.Len())
		require.True(t, ds.Table.HasColumn("Sector_Utilities"))
	})
}
