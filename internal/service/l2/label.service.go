package l2_service

import (
	"context"
	"fmt"

	"stocktagger/internal/data"
	"stocktagger/internal/domain"
	"stocktagger/internal/logger"

	"github.com/maja42/goval"
)

// LabelService derives the multi-label targets and the sector vocabulary
// from the combined dataset
type LabelService interface {
	DeriveLabels(ctx context.Context, combined *data.Table) (*LabeledDataset, error)
}

type LabeledDataset struct {
	// combined columns followed by one 0/1 column per label
	Table      *data.Table
	Vocabulary domain.SectorVocabulary
}

func NewLabelService() LabelService {
	return labelServiceHandler{}
}

type labelServiceHandler struct{}

var cyclicalSectors = []interface{}{
	"Technology",
	"Consumer Discretionary",
	"Materials",
	"Industrials",
	"Energy",
	"Communication Services",
}

// rule thresholds are passed as variables rather than literals so that
// every comparison is float against float
var thresholds = map[string]interface{}{
	"largeCapMin":     10e9,
	"midCapMin":       2e9,
	"smallCapMin":     300e6,
	"growthMin":       0.15,
	"valueMaxPE":      15.0,
	"incomeMinYield":  0.03,
	"zero":            0.0,
	"cyclicalSectors": cyclicalSectors,
}

// fill policy applied before any comparison
var fillValues = map[string]float64{
	domain.ColumnMarketCap:     0,
	domain.ColumnRevenueGrowth: 0,
	domain.ColumnPE:            9999,
	domain.ColumnDividendYield: 0,
}

type labelRule struct {
	label      string
	expression string
}

// rules run in order; later rules may reference earlier labels
var labelRules = []labelRule{
	{domain.LabelLargeCap, "MarketCap >= largeCapMin"},
	{domain.LabelMidCap, "MarketCap >= midCapMin && MarketCap < largeCapMin"},
	{domain.LabelSmallCap, "MarketCap >= smallCapMin && MarketCap < midCapMin"},
	{domain.LabelMicroCap, "MarketCap < smallCapMin"},
	{domain.LabelGrowthStock, "RevenueGrowth >= growthMin"},
	{domain.LabelValueStock, "PE <= valueMaxPE"},
	{domain.LabelIncomeStock, "DividendYield >= incomeMinYield"},
	{domain.LabelBlueChipStock, "LargeCap && IncomeStock"},
	{domain.LabelCyclical, "sector in cyclicalSectors"},
	{domain.LabelDefensive, "!Cyclical"},
	{domain.LabelDividendStock, "DividendYield > zero"},
	{domain.LabelNonDividendStock, "!DividendStock"},
}

func (h labelServiceHandler) DeriveLabels(ctx context.Context, combined *data.Table) (*LabeledDataset, error) {
	out, err := DeriveLabels(combined)
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Infof(
		"derived %d labels for %d rows with %d sectors",
		len(labelRules)+len(out.Vocabulary.Sectors),
		out.Table.Len(),
		len(out.Vocabulary.Sectors),
	)
	return out, nil
}

// DeriveLabels is a pure function of the combined dataset. it fails when
// any column a rule depends on is absent
func DeriveLabels(combined *data.Table) (*LabeledDataset, error) {
	err := combined.RequireColumns(
		domain.ColumnMarketCap,
		domain.ColumnRevenueGrowth,
		domain.ColumnPE,
		domain.ColumnDividendYield,
		domain.ColumnSector,
	)
	if err != nil {
		return nil, err
	}

	sectors := []string{}
	for _, row := range combined.Rows() {
		sectors = append(sectors, row.Get(domain.ColumnSector))
	}
	vocabulary := domain.NewSectorVocabulary(sectors)
	schema := domain.NewFeatureSchema(vocabulary)

	labelColumns := schema.LabelColumns()
	columns := combined.Columns()
	for _, c := range labelColumns {
		if combined.HasColumn(c) {
			return nil, fmt.Errorf("combined dataset already has label column '%s'", c)
		}
	}
	columns = append(columns, labelColumns...)
	out := data.NewTable(combined.Name(), columns)

	eval := goval.NewEvaluator()
	sectorColumns := vocabulary.Columns()
	for _, row := range combined.Rows() {
		labels, err := evaluateRules(eval, row)
		if err != nil {
			return nil, fmt.Errorf("failed to label %s: %w", row.Get(domain.ColumnSymbol), err)
		}

		values := row.Values()
		for label, v := range labels {
			values[label] = boolCell(v)
		}
		for i, v := range vocabulary.OneHot(row.Get(domain.ColumnSector)) {
			values[sectorColumns[i]] = boolCell(v == 1)
		}
		out.Append(values)
	}

	return &LabeledDataset{
		Table:      out,
		Vocabulary: vocabulary,
	}, nil
}

func evaluateRules(eval *goval.Evaluator, row domain.Record) (map[string]bool, error) {
	variables := make(map[string]interface{}, len(thresholds)+len(fillValues)+len(labelRules)+1)
	for k, v := range thresholds {
		variables[k] = v
	}
	for column, fill := range fillValues {
		v, ok := row.Float(column)
		if !ok {
			v = fill
		}
		variables[column] = v
	}
	variables[domain.ColumnSector] = row.Get(domain.ColumnSector)

	out := make(map[string]bool, len(labelRules))
	for _, rule := range labelRules {
		result, err := eval.Evaluate(rule.expression, variables, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to evaluate %s rule: %w", rule.label, err)
		}
		b, ok := result.(bool)
		if !ok {
			return nil, fmt.Errorf("%s rule did not evaluate to a boolean", rule.label)
		}
		out[rule.label] = b
		variables[rule.label] = b
	}
	return out, nil
}

func boolCell(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
