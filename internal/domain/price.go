package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type AssetPrice struct {
	Symbol string
	Price  decimal.Decimal
	Date   time.Time
}

// PriceFeature is the latest rolling price statistics for a symbol
type PriceFeature struct {
	Symbol     string  `csv:"symbol"`
	Volatility float64 `csv:"volatility"`
	Momentum   float64 `csv:"momentum"`
}
