package l2_service

import (
	"context"
	"fmt"

	"stocktagger/internal/data"
	"stocktagger/internal/domain"
	"stocktagger/internal/logger"
	"stocktagger/internal/repository"

	"go.uber.org/zap"
)

// CombineService joins cleaned fundamentals with price features into the
// dataset that labeling, training and serving all read
type CombineService interface {
	CombineFeatures(ctx context.Context) (*data.Table, error)
}

type combineServiceHandler struct {
	FundamentalsCleanRepository repository.DatasetRepository
	PriceFeatureRepository      repository.PriceFeatureRepository
	CombinedRepository          repository.DatasetRepository
}

func NewCombineService(
	fundamentalsCleanRepository repository.DatasetRepository,
	priceFeatureRepository repository.PriceFeatureRepository,
	combinedRepository repository.DatasetRepository,
) CombineService {
	return combineServiceHandler{
		FundamentalsCleanRepository: fundamentalsCleanRepository,
		PriceFeatureRepository:      priceFeatureRepository,
		CombinedRepository:          combinedRepository,
	}
}

// source columns tried, in order, when a canonical column is absent
var columnAliases = []struct {
	canonical string
	sources   []string
}{
	{domain.ColumnMarketCap, []string{"MarketCapitalization", "marketCap"}},
	{domain.ColumnPE, []string{"PERatio", "PriceToEarnings", "peRatio"}},
	{domain.ColumnDividendYield, []string{"DividendYieldRatio", "dividendYield"}},
}

func (h combineServiceHandler) CombineFeatures(ctx context.Context) (*data.Table, error) {
	log := logger.FromContext(ctx)

	fundamentals, err := h.FundamentalsCleanRepository.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to load cleaned fundamentals: %w", err)
	}
	prices, err := h.PriceFeatureRepository.List()
	if err != nil {
		return nil, fmt.Errorf("failed to load price features: %w", err)
	}
	log.Infof("loaded %d fundamentals rows and %d price feature rows", fundamentals.Len(), len(prices))

	combined, err := combineFeatures(log, fundamentals, prices)
	if err != nil {
		return nil, err
	}
	log.Infof("combined dataset has %d rows", combined.Len())

	if err := h.CombinedRepository.Save(combined); err != nil {
		return nil, err
	}
	log.Infof("saved combined dataset to %s", h.CombinedRepository.Path())

	return combined, nil
}

// combineFeatures inner joins on symbol, refusing duplicate keys on
// either side. columns are symbol, the fundamentals columns, then
// volatility and momentum
func combineFeatures(log *zap.SugaredLogger, fundamentals *data.Table, prices []domain.PriceFeature) (*data.Table, error) {
	if !fundamentals.HasColumn(domain.ColumnSymbol) && fundamentals.HasColumn(domain.ColumnCompanyID) {
		if err := fundamentals.RenameColumn(domain.ColumnCompanyID, domain.ColumnSymbol); err != nil {
			return nil, err
		}
	}
	if err := fundamentals.RequireColumns(domain.ColumnSymbol); err != nil {
		return nil, err
	}

	dups, err := fundamentals.Duplicates(domain.ColumnSymbol)
	if err != nil {
		return nil, err
	}
	if len(dups) > 0 {
		return nil, domain.JoinCardinalityError{Side: "fundamentals", Key: domain.ColumnSymbol, Duplicates: dups}
	}

	priceBySymbol := map[string]domain.PriceFeature{}
	priceDups := []string{}
	for _, p := range prices {
		if _, ok := priceBySymbol[p.Symbol]; ok {
			priceDups = append(priceDups, p.Symbol)
			continue
		}
		priceBySymbol[p.Symbol] = p
	}
	if len(priceDups) > 0 {
		return nil, domain.JoinCardinalityError{Side: "price features", Key: domain.ColumnSymbol, Duplicates: priceDups}
	}

	applyAliases(log, fundamentals)
	deriveRevenueGrowth(log, fundamentals)

	columns := []string{domain.ColumnSymbol}
	for _, c := range fundamentals.Columns() {
		switch c {
		case domain.ColumnSymbol, domain.ColumnVolatility, domain.ColumnMomentum:
			continue
		}
		columns = append(columns, c)
	}
	columns = append(columns, domain.ColumnVolatility, domain.ColumnMomentum)

	out := data.NewTable("combined_data", columns)
	for _, row := range fundamentals.Rows() {
		p, ok := priceBySymbol[row.Get(domain.ColumnSymbol)]
		if !ok {
			continue
		}
		values := row.Values()
		values[domain.ColumnVolatility] = data.FormatFloat(p.Volatility)
		values[domain.ColumnMomentum] = data.FormatFloat(p.Momentum)
		out.Append(values)
	}

	return out, nil
}

func applyAliases(log *zap.SugaredLogger, t *data.Table) {
	for _, alias := range columnAliases {
		if t.HasColumn(alias.canonical) {
			continue
		}
		for _, source := range alias.sources {
			if !t.HasColumn(source) {
				continue
			}
			log.Infof("deriving %s from %s", alias.canonical, source)
			t.AddColumn(alias.canonical)
			for _, row := range t.Rows() {
				if v, ok := row.Float(source); ok {
					t.SetFloat(row.Index(), alias.canonical, v)
				}
			}
			break
		}
	}
}

// deriveRevenueGrowth adds (Revenue - RevenuePriorYear) / RevenuePriorYear
// when both inputs exist. a row with either input missing, or a zero prior
// year, gets an empty cell
func deriveRevenueGrowth(log *zap.SugaredLogger, t *data.Table) {
	if t.HasColumn(domain.ColumnRevenueGrowth) {
		return
	}
	if !t.HasColumn(domain.ColumnRevenue) || !t.HasColumn(domain.ColumnRevenuePriorYear) {
		log.Warnf("cannot derive %s without %s and %s", domain.ColumnRevenueGrowth, domain.ColumnRevenue, domain.ColumnRevenuePriorYear)
		return
	}

	t.AddColumn(domain.ColumnRevenueGrowth)
	for _, row := range t.Rows() {
		revenue, ok := row.Float(domain.ColumnRevenue)
		if !ok {
			continue
		}
		prior, ok := row.Float(domain.ColumnRevenuePriorYear)
		if !ok || prior == 0 {
			continue
		}
		t.SetFloat(row.Index(), domain.ColumnRevenueGrowth, (revenue-prior)/prior)
	}
}
