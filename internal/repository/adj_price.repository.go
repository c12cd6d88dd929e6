package repository

import (
	"fmt"
	"io"
	"strings"

	"stocktagger/internal/domain"
	"stocktagger/internal/util"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=adj_price.repository.go -destination=mocks/mock_adj_price.repository.go -package=mock_repository

type AdjustedPriceRepository interface {
	Add(prices []domain.AssetPrice) error
	List() ([]domain.AssetPrice, error)
}

type priceRow struct {
	Date   string `csv:"Date"`
	Symbol string `csv:"Symbol"`
	Close  string `csv:"Close"`
}

func NewAdjustedPriceRepository(path string) AdjustedPriceRepository {
	return adjustedPriceRepositoryHandler{Path: path}
}

type adjustedPriceRepositoryHandler struct {
	Path string
}

// Add overwrites the raw price file with the given prices
func (h adjustedPriceRepositoryHandler) Add(prices []domain.AssetPrice) error {
	rows := make([]priceRow, 0, len(prices))
	for _, p := range prices {
		rows = append(rows, priceRow{
			Date:   p.Date.Format("2006-01-02"),
			Symbol: p.Symbol,
			Close:  p.Price.String(),
		})
	}

	err := util.WriteFileAtomic(h.Path, func(w io.Writer) error {
		return gocsv.Marshal(&rows, w)
	})
	if err != nil {
		return fmt.Errorf("failed to write prices to %s: %w", h.Path, err)
	}
	return nil
}

// List returns every priced row in file order. rows without a close are
// skipped
func (h adjustedPriceRepositoryHandler) List() ([]domain.AssetPrice, error) {
	b, err := readInput(h.Path, "Please ensure it exists under the raw data directory.")
	if err != nil {
		return nil, err
	}
	if err := requireHeader(h.Path, b, "Date", "Symbol", "Close"); err != nil {
		return nil, err
	}

	rows := []priceRow{}
	if err := gocsv.UnmarshalBytes(b, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", h.Path, err)
	}

	out := make([]domain.AssetPrice, 0, len(rows))
	for i, row := range rows {
		closeStr := strings.TrimSpace(row.Close)
		if closeStr == "" || strings.EqualFold(closeStr, "nan") {
			continue
		}
		price, err := decimal.NewFromString(closeStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse close on line %d of %s: %w", i+2, h.Path, err)
		}
		date, err := util.ParseDate(strings.TrimSpace(row.Date))
		if err != nil {
			return nil, fmt.Errorf("failed to parse date on line %d of %s: %w", i+2, h.Path, err)
		}
		out = append(out, domain.AssetPrice{
			Symbol: strings.TrimSpace(row.Symbol),
			Price:  price,
			Date:   date,
		})
	}

	return out, nil
}
