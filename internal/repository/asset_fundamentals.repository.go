package repository

import (
	"bytes"
	"fmt"
	"strings"

	"stocktagger/internal/data"
	"stocktagger/internal/domain"
	"stocktagger/internal/util"

	"github.com/gocarina/gocsv"
)

type AssetFundamentalsRepository interface {
	// DetectSchema resolves "auto" to whichever raw layout is on disk
	DetectSchema(requested domain.FundamentalsSchema) (domain.FundamentalsSchema, error)
	ListIndicators() ([]domain.IndicatorRecord, error)
	ListCompanies() ([]domain.Company, error)
	GetYearlyIndicators() (*data.Table, error)
	GetCompaniesByID() (*data.Table, error)
}

type FundamentalsPaths struct {
	Indicators       string
	Companies        string
	YearlyIndicators string
	CompaniesByID    string
}

func NewAssetFundamentalsRepository(paths FundamentalsPaths) AssetFundamentalsRepository {
	return assetFundamentalsRepositoryHandler{Paths: paths}
}

type assetFundamentalsRepositoryHandler struct {
	Paths FundamentalsPaths
}

type indicatorRow struct {
	Symbol       string `csv:"symbol"`
	Indicator    string `csv:"indicator"`
	PeriodEnding string `csv:"periodEnding"`
	Value        string `csv:"value"`
}

type companyRow struct {
	Symbol   string `csv:"symbol"`
	Name     string `csv:"name"`
	Exchange string `csv:"exchange"`
	Sector   string `csv:"sector"`
	Industry string `csv:"industry"`
}

func (h assetFundamentalsRepositoryHandler) DetectSchema(requested domain.FundamentalsSchema) (domain.FundamentalsSchema, error) {
	if requested != domain.FundamentalsSchemaAuto && requested != "" {
		return requested, nil
	}
	if util.FileExists(h.Paths.Indicators) {
		return domain.FundamentalsSchemaLong, nil
	}
	if util.FileExists(h.Paths.YearlyIndicators) {
		return domain.FundamentalsSchemaYearly, nil
	}
	return "", domain.MissingInputFileError{
		Path: h.Paths.Indicators,
		Hint: fmt.Sprintf("Neither it nor '%s' exists.", h.Paths.YearlyIndicators),
	}
}

func (h assetFundamentalsRepositoryHandler) ListIndicators() ([]domain.IndicatorRecord, error) {
	path := h.Paths.Indicators
	b, err := readInput(path, "")
	if err != nil {
		return nil, err
	}
	if err := requireHeader(path, b, "symbol", "indicator", "periodEnding", "value"); err != nil {
		return nil, err
	}

	rows := []indicatorRow{}
	if err := gocsv.UnmarshalBytes(b, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	out := make([]domain.IndicatorRecord, 0, len(rows))
	for i, row := range rows {
		periodEnding, err := util.ParseDate(strings.TrimSpace(row.PeriodEnding))
		if err != nil {
			return nil, fmt.Errorf("failed to parse periodEnding on line %d of %s: %w", i+2, path, err)
		}
		rec := domain.IndicatorRecord{
			Symbol:       strings.TrimSpace(row.Symbol),
			Indicator:    strings.TrimSpace(row.Indicator),
			PeriodEnding: periodEnding,
		}
		if v, ok := data.ParseFloat(row.Value); ok {
			rec.Value = &v
		}
		out = append(out, rec)
	}

	return out, nil
}

func (h assetFundamentalsRepositoryHandler) ListCompanies() ([]domain.Company, error) {
	path := h.Paths.Companies
	b, err := readInput(path, "")
	if err != nil {
		return nil, err
	}
	if err := requireHeader(path, b, "symbol", "name", "exchange", "sector", "industry"); err != nil {
		return nil, err
	}

	rows := []companyRow{}
	if err := gocsv.UnmarshalBytes(b, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	out := make([]domain.Company, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.Company{
			Symbol:   strings.TrimSpace(row.Symbol),
			Name:     row.Name,
			Exchange: strings.TrimSpace(row.Exchange),
			Sector:   strings.TrimSpace(row.Sector),
			Industry: row.Industry,
		})
	}
	return out, nil
}

func (h assetFundamentalsRepositoryHandler) GetYearlyIndicators() (*data.Table, error) {
	t, err := readTable(h.Paths.YearlyIndicators, "")
	if err != nil {
		return nil, err
	}
	if err := t.RequireColumns(domain.ColumnCompanyID, "indicator"); err != nil {
		return nil, err
	}
	return t, nil
}

func (h assetFundamentalsRepositoryHandler) GetCompaniesByID() (*data.Table, error) {
	t, err := readTable(h.Paths.CompaniesByID, "")
	if err != nil {
		return nil, err
	}
	if err := t.RequireColumns(domain.ColumnCompanyID); err != nil {
		return nil, err
	}
	return t, nil
}

func readTable(path, hint string) (*data.Table, error) {
	b, err := readInput(path, hint)
	if err != nil {
		return nil, err
	}
	t, err := data.ReadCSV(path, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	return t, nil
}
