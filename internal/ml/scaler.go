package ml

import (
	"fmt"
	"math"

	"stocktagger/internal/domain"

	"gonum.org/v1/gonum/stat"
)

// StandardScaler standardizes the leading numeric block of a feature
// vector. trailing columns (sector one-hot) pass through untouched
type StandardScaler struct {
	Columns  []string  `json:"columns"`
	Mean     []float64 `json:"mean"`
	Var      []float64 `json:"var"`
	Scale    []float64 `json:"scale"`
	NSamples []int     `json:"nSamples"`
}

// FitStandardScaler fits population mean/variance per column over the
// non-missing values of rows[i][:len(columns)]
func FitStandardScaler(columns []string, rows [][]float64) (*StandardScaler, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("cannot fit scaler on 0 rows")
	}
	s := &StandardScaler{
		Columns:  append([]string{}, columns...),
		Mean:     make([]float64, len(columns)),
		Var:      make([]float64, len(columns)),
		Scale:    make([]float64, len(columns)),
		NSamples: make([]int, len(columns)),
	}

	for j := range columns {
		values := make([]float64, 0, len(rows))
		for i, row := range rows {
			if len(row) < len(columns) {
				return nil, domain.ShapeMismatchError{What: fmt.Sprintf("scaler input row %d", i), Expected: len(columns), Got: len(row)}
			}
			if !math.IsNaN(row[j]) {
				values = append(values, row[j])
			}
		}
		s.NSamples[j] = len(values)
		s.Scale[j] = 1
		if len(values) == 0 {
			continue
		}
		s.Mean[j] = stat.Mean(values, nil)
		s.Var[j] = stat.PopVariance(values, nil)
		if s.Var[j] > 0 {
			s.Scale[j] = math.Sqrt(s.Var[j])
		}
	}

	return s, nil
}

// Transform returns a scaled copy of x. missing numeric values become 0,
// i.e. they are imputed with the fitted mean
func (s StandardScaler) Transform(x []float64) ([]float64, error) {
	if len(x) < len(s.Columns) {
		return nil, domain.ShapeMismatchError{What: "scaler input", Expected: len(s.Columns), Got: len(x)}
	}
	out := append([]float64{}, x...)
	for j := range s.Columns {
		if math.IsNaN(out[j]) {
			out[j] = 0
			continue
		}
		out[j] = (out[j] - s.Mean[j]) / s.Scale[j]
	}
	return out, nil
}

func (s StandardScaler) TransformAll(rows [][]float64) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		scaled, err := s.Transform(row)
		if err != nil {
			return nil, err
		}
		out[i] = scaled
	}
	return out, nil
}

func (s StandardScaler) Validate(numericColumns []string) error {
	if len(s.Columns) != len(numericColumns) {
		return domain.ShapeMismatchError{What: "scaler columns", Expected: len(numericColumns), Got: len(s.Columns)}
	}
	for i := range numericColumns {
		if s.Columns[i] != numericColumns[i] {
			return fmt.Errorf("scaler column %d is '%s', expected '%s'; refit the scaler", i, s.Columns[i], numericColumns[i])
		}
	}
	if len(s.Mean) != len(s.Columns) || len(s.Scale) != len(s.Columns) {
		return fmt.Errorf("scaler parameters do not match its columns")
	}
	return nil
}
