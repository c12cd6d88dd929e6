package domain

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// SchemaVersion must be bumped whenever the numeric columns or the
// label layout change. artifacts written under another version are
// rejected at load time
const SchemaVersion = 1

const (
	ColumnSymbol    = "symbol"
	ColumnCompanyID = "company_id"
	ColumnSector    = "sector"
	ColumnExchange  = "exchange"
	ColumnName      = "name"
	ColumnIndustry  = "industry"

	ColumnMarketCap        = "MarketCap"
	ColumnRevenue          = "Revenue"
	ColumnRevenuePriorYear = "RevenuePriorYear"
	ColumnRevenueGrowth    = "RevenueGrowth"
	ColumnPE               = "PE"
	ColumnDividendYield    = "DividendYield"
	ColumnVolatility       = "volatility"
	ColumnMomentum         = "momentum"

	SectorPrefix = "Sector_"
)

const (
	LabelLargeCap         = "LargeCap"
	LabelMidCap           = "MidCap"
	LabelSmallCap         = "SmallCap"
	LabelMicroCap         = "MicroCap"
	LabelGrowthStock      = "GrowthStock"
	LabelValueStock       = "ValueStock"
	LabelIncomeStock      = "IncomeStock"
	LabelBlueChipStock    = "BlueChipStock"
	LabelCyclical         = "Cyclical"
	LabelDefensive        = "Defensive"
	LabelDividendStock    = "DividendStock"
	LabelNonDividendStock = "NonDividendStock"
)

// NumericColumns is the scaled prefix of every feature vector, in order
func NumericColumns() []string {
	return []string{
		ColumnMarketCap,
		ColumnRevenueGrowth,
		ColumnPE,
		ColumnDividendYield,
		ColumnVolatility,
		ColumnMomentum,
	}
}

func leadingLabels() []string {
	return []string{
		LabelLargeCap, LabelMidCap, LabelSmallCap, LabelMicroCap,
		LabelGrowthStock, LabelValueStock, LabelIncomeStock, LabelBlueChipStock,
		LabelCyclical, LabelDefensive,
	}
}

func trailingLabels() []string {
	return []string{LabelDividendStock, LabelNonDividendStock}
}

func SectorColumnName(sector string) string {
	return SectorPrefix + strings.ReplaceAll(sector, " ", "")
}

// SectorVocabulary is the set of sectors observed when the model was
// trained. it is frozen with the model and never recomputed from
// serving data
type SectorVocabulary struct {
	Sectors []string `json:"sectors"`
}

func NewSectorVocabulary(observed []string) SectorVocabulary {
	seen := map[string]struct{}{}
	out := []string{}
	for _, s := range observed {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return SectorVocabulary{Sectors: out}
}

// Columns returns the one-hot column names in sorted order
func (v SectorVocabulary) Columns() []string {
	seen := map[string]struct{}{}
	cols := []string{}
	for _, s := range v.Sectors {
		c := SectorColumnName(s)
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// OneHot encodes a sector against the vocabulary. sectors that were
// not seen at training time encode as all zeros
func (v SectorVocabulary) OneHot(sector string) []float64 {
	cols := v.Columns()
	out := make([]float64, len(cols))
	if sector == "" || !v.Contains(sector) {
		return out
	}
	target := SectorColumnName(sector)
	for i, c := range cols {
		if c == target {
			out[i] = 1
		}
	}
	return out
}

func (v SectorVocabulary) Contains(sector string) bool {
	for _, s := range v.Sectors {
		if s == sector {
			return true
		}
	}
	return false
}

// Record is a single row of the combined dataset
type Record interface {
	Get(column string) string
	Float(column string) (float64, bool)
}

// FeatureSchema is the one definition of feature and label layout shared
// by training and serving
type FeatureSchema struct {
	Version        int              `json:"version"`
	NumericColumns []string         `json:"numericColumns"`
	Vocabulary     SectorVocabulary `json:"sectorVocabulary"`
}

func NewFeatureSchema(vocabulary SectorVocabulary) FeatureSchema {
	return FeatureSchema{
		Version:        SchemaVersion,
		NumericColumns: NumericColumns(),
		Vocabulary:     vocabulary,
	}
}

func (s FeatureSchema) Validate() error {
	if s.Version != SchemaVersion {
		return fmt.Errorf("unsupported schema version %d, expected %d", s.Version, SchemaVersion)
	}
	expected := NumericColumns()
	if len(s.NumericColumns) != len(expected) {
		return ShapeMismatchError{What: "numeric columns", Expected: len(expected), Got: len(s.NumericColumns)}
	}
	for i := range expected {
		if s.NumericColumns[i] != expected[i] {
			return fmt.Errorf("numeric column %d is '%s', expected '%s'", i, s.NumericColumns[i], expected[i])
		}
	}
	return nil
}

func (s FeatureSchema) FeatureColumns() []string {
	cols := append([]string{}, s.NumericColumns...)
	return append(cols, s.Vocabulary.Columns()...)
}

func (s FeatureSchema) LabelColumns() []string {
	cols := leadingLabels()
	cols = append(cols, s.Vocabulary.Columns()...)
	return append(cols, trailingLabels()...)
}

// FeatureVector builds the unscaled feature vector for a row. missing
// numeric values are NaN
func (s FeatureSchema) FeatureVector(r Record) []float64 {
	out := make([]float64, 0, len(s.NumericColumns)+len(s.Vocabulary.Sectors))
	for _, c := range s.NumericColumns {
		v, ok := r.Float(c)
		if !ok {
			v = math.NaN()
		}
		out = append(out, v)
	}
	return append(out, s.Vocabulary.OneHot(r.Get(ColumnSector))...)
}
