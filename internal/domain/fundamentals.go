package domain

import "time"

// IndicatorRecord is one row of the long-format indicator file
type IndicatorRecord struct {
	Symbol       string
	Indicator    string
	PeriodEnding time.Time
	// nil when the source cell was empty
	Value *float64
}

type Company struct {
	Symbol   string
	Name     string
	Exchange string
	Sector   string
	Industry string
}

// FundamentalsSchema names the shape of the raw fundamentals files
type FundamentalsSchema string

const (
	FundamentalsSchemaAuto   FundamentalsSchema = "auto"
	FundamentalsSchemaLong   FundamentalsSchema = "long"
	FundamentalsSchemaYearly FundamentalsSchema = "yearly"
)
