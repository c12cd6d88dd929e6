package l1_service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"stocktagger/internal/data"
	"stocktagger/internal/domain"
	"stocktagger/internal/logger"
	"stocktagger/internal/repository"

	"go.uber.org/zap"
)

// FundamentalsService builds the cleaned, one-row-per-company
// fundamentals table from whichever raw layout is configured
type FundamentalsService interface {
	MergeFundamentals(ctx context.Context) (*data.Table, error)
}

type FundamentalsConfig struct {
	Schema           domain.FundamentalsSchema
	AllowedExchanges []string
	// 0 picks the latest year column
	Year int
}

type fundamentalsServiceHandler struct {
	AssetFundamentalsRepository repository.AssetFundamentalsRepository
	FundamentalsCleanRepository repository.DatasetRepository
	Config                      FundamentalsConfig
}

func NewFundamentalsService(
	assetFundamentalsRepository repository.AssetFundamentalsRepository,
	fundamentalsCleanRepository repository.DatasetRepository,
	config FundamentalsConfig,
) FundamentalsService {
	return fundamentalsServiceHandler{
		AssetFundamentalsRepository: assetFundamentalsRepository,
		FundamentalsCleanRepository: fundamentalsCleanRepository,
		Config:                      config,
	}
}

func (h fundamentalsServiceHandler) MergeFundamentals(ctx context.Context) (*data.Table, error) {
	log := logger.FromContext(ctx)

	schema, err := h.AssetFundamentalsRepository.DetectSchema(h.Config.Schema)
	if err != nil {
		return nil, err
	}
	log.Infof("using %s fundamentals schema", schema)

	var out *data.Table
	switch schema {
	case domain.FundamentalsSchemaLong:
		indicators, err := h.AssetFundamentalsRepository.ListIndicators()
		if err != nil {
			return nil, fmt.Errorf("failed to load indicators: %w", err)
		}
		companies, err := h.AssetFundamentalsRepository.ListCompanies()
		if err != nil {
			return nil, fmt.Errorf("failed to load companies: %w", err)
		}
		log.Infof("loaded %d indicator records and %d companies", len(indicators), len(companies))
		out = mergeLongFundamentals(log, indicators, companies, h.Config.AllowedExchanges)
	case domain.FundamentalsSchemaYearly:
		indicators, err := h.AssetFundamentalsRepository.GetYearlyIndicators()
		if err != nil {
			return nil, fmt.Errorf("failed to load yearly indicators: %w", err)
		}
		companies, err := h.AssetFundamentalsRepository.GetCompaniesByID()
		if err != nil {
			return nil, fmt.Errorf("failed to load companies: %w", err)
		}
		log.Infof("loaded %d yearly indicator rows and %d companies", indicators.Len(), companies.Len())
		out, err = mergeYearlyFundamentals(log, indicators, companies, h.Config.Year)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown fundamentals schema '%s'", schema)
	}

	log.Infof("cleaned fundamentals has %d rows and %d columns", out.Len(), len(out.Columns()))
	if err := h.FundamentalsCleanRepository.Save(out); err != nil {
		return nil, err
	}
	log.Infof("saved cleaned fundamentals to %s", h.FundamentalsCleanRepository.Path())

	return out, nil
}

// mergeLongFundamentals keeps the latest value per (symbol, indicator),
// pivots indicators into sorted columns, left joins company metadata and
// keeps only allowed exchanges
func mergeLongFundamentals(log *zap.SugaredLogger, indicators []domain.IndicatorRecord, companies []domain.Company, allowedExchanges []string) *data.Table {
	metaColumns := map[string]struct{}{
		domain.ColumnSymbol:   {},
		domain.ColumnName:     {},
		domain.ColumnExchange: {},
		domain.ColumnSector:   {},
		domain.ColumnIndustry: {},
	}
	shadowed := map[string]struct{}{}

	latest := map[string]map[string]domain.IndicatorRecord{}
	indicatorNames := map[string]struct{}{}
	for _, rec := range indicators {
		if rec.Symbol == "" || rec.Indicator == "" {
			continue
		}
		if _, clash := metaColumns[rec.Indicator]; clash {
			shadowed[rec.Indicator] = struct{}{}
			continue
		}
		indicatorNames[rec.Indicator] = struct{}{}
		if _, ok := latest[rec.Symbol]; !ok {
			latest[rec.Symbol] = map[string]domain.IndicatorRecord{}
		}
		current, ok := latest[rec.Symbol][rec.Indicator]
		// later rows win ties
		if !ok || !rec.PeriodEnding.Before(current.PeriodEnding) {
			latest[rec.Symbol][rec.Indicator] = rec
		}
	}

	for _, name := range sortedKeys(shadowed) {
		log.Warnf("indicator %s shadows a company column, skipping it", name)
	}

	columns := sortedKeys(indicatorNames)
	companyBySymbol := map[string]domain.Company{}
	for _, c := range companies {
		if _, ok := companyBySymbol[c.Symbol]; ok {
			log.Warnf("duplicate company record for %s, keeping the first", c.Symbol)
			continue
		}
		companyBySymbol[c.Symbol] = c
	}

	allowed := map[string]struct{}{}
	for _, e := range allowedExchanges {
		allowed[e] = struct{}{}
	}

	header := append([]string{domain.ColumnSymbol}, columns...)
	header = append(header, domain.ColumnName, domain.ColumnExchange, domain.ColumnSector, domain.ColumnIndustry)
	out := data.NewTable("fundamentals_clean", header)

	symbols := make([]string, 0, len(latest))
	for s := range latest {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	dropped := 0
	for _, symbol := range symbols {
		company := companyBySymbol[symbol]
		if _, ok := allowed[company.Exchange]; !ok {
			dropped++
			continue
		}
		row := map[string]string{
			domain.ColumnSymbol:   symbol,
			domain.ColumnName:     company.Name,
			domain.ColumnExchange: company.Exchange,
			domain.ColumnSector:   company.Sector,
			domain.ColumnIndustry: company.Industry,
		}
		for name, rec := range latest[symbol] {
			if rec.Value != nil {
				row[name] = data.FormatFloat(*rec.Value)
			}
		}
		out.Append(row)
	}
	log.Infof("excluded %d symbols outside exchanges %v", dropped, allowedExchanges)

	return out
}

// mergeYearlyFundamentals pivots company_id keyed indicators on a single
// year column, adding <indicator>PriorYear from the year before when that
// column exists, then left joins company metadata
func mergeYearlyFundamentals(log *zap.SugaredLogger, indicators *data.Table, companies *data.Table, year int) (*data.Table, error) {
	if err := indicators.RequireColumns(domain.ColumnCompanyID, "indicator"); err != nil {
		return nil, err
	}
	if err := companies.RequireColumns(domain.ColumnCompanyID); err != nil {
		return nil, err
	}

	years := map[int]string{}
	maxYear := 0
	for _, c := range indicators.Columns() {
		y, err := strconv.Atoi(strings.TrimSpace(c))
		if err != nil {
			continue
		}
		years[y] = c
		if y > maxYear {
			maxYear = y
		}
	}
	if len(years) == 0 {
		return nil, domain.MissingColumnError{
			Table:    indicators.Name(),
			Expected: []string{"<year>"},
			Found:    indicators.Columns(),
		}
	}
	if year == 0 {
		year = maxYear
	}
	yearCol, ok := years[year]
	if !ok {
		return nil, domain.MissingColumnError{
			Table:    indicators.Name(),
			Expected: []string{strconv.Itoa(year)},
			Found:    indicators.Columns(),
		}
	}
	priorCol, hasPrior := years[year-1]
	log.Infof("extracting fundamentals for %d (prior year available: %t)", year, hasPrior)

	values := map[string]map[string]string{}
	indicatorNames := map[string]struct{}{}
	for _, row := range indicators.Rows() {
		id := strings.TrimSpace(row.Get(domain.ColumnCompanyID))
		name := strings.TrimSpace(row.Get("indicator"))
		if id == "" || name == "" {
			continue
		}
		indicatorNames[name] = struct{}{}
		if _, ok := values[id]; !ok {
			values[id] = map[string]string{}
		}
		values[id][name] = cleanNumber(row.Get(yearCol))
		if hasPrior {
			values[id][name+"PriorYear"] = cleanNumber(row.Get(priorCol))
		}
	}

	header := []string{domain.ColumnCompanyID}
	for _, name := range sortedKeys(indicatorNames) {
		header = append(header, name)
		if hasPrior {
			header = append(header, name+"PriorYear")
		}
	}
	metaColumns := []string{}
	for _, c := range companies.Columns() {
		if c == domain.ColumnCompanyID {
			continue
		}
		if _, clash := indicatorNames[c]; clash {
			log.Warnf("company column %s shadows an indicator, skipping it", c)
			continue
		}
		metaColumns = append(metaColumns, c)
	}
	header = append(header, metaColumns...)

	companyByID := map[string]data.Row{}
	for _, row := range companies.Rows() {
		id := strings.TrimSpace(row.Get(domain.ColumnCompanyID))
		if _, ok := companyByID[id]; ok {
			log.Warnf("duplicate company record for %s, keeping the first", id)
			continue
		}
		companyByID[id] = row
	}

	ids := make([]string, 0, len(values))
	for id := range values {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := data.NewTable("fundamentals_clean", header)
	for _, id := range ids {
		row := map[string]string{domain.ColumnCompanyID: id}
		for k, v := range values[id] {
			row[k] = v
		}
		if company, ok := companyByID[id]; ok {
			for _, c := range metaColumns {
				row[c] = company.Get(c)
			}
		}
		out.Append(row)
	}

	return out, nil
}

// cleanNumber normalizes a numeric cell so missing values are empty
func cleanNumber(s string) string {
	v, ok := data.ParseFloat(s)
	if !ok {
		return ""
	}
	return data.FormatFloat(v)
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
