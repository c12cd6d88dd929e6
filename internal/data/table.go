package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"stocktagger/internal/domain"
)

// Table is a delimited table whose columns are only known at runtime,
// e.g. pivoted indicators. cells are kept as strings; numeric cells are
// parsed on access and written with shortest round-trip formatting so a
// file can be re-read into identical float64 values
type Table struct {
	name    string
	columns []string
	index   map[string]int
	rows    [][]string
}

func NewTable(name string, columns []string) *Table {
	t := &Table{
		name:  name,
		index: map[string]int{},
	}
	for _, c := range columns {
		t.columns = append(t.columns, c)
		t.index[c] = len(t.columns) - 1
	}
	return t
}

func (t *Table) Name() string {
	return t.name
}

func (t *Table) Columns() []string {
	return append([]string{}, t.columns...)
}

func (t *Table) HasColumn(column string) bool {
	_, ok := t.index[column]
	return ok
}

func (t *Table) Len() int {
	return len(t.rows)
}

func (t *Table) Row(i int) Row {
	return Row{table: t, i: i}
}

func (t *Table) Rows() []Row {
	out := make([]Row, len(t.rows))
	for i := range t.rows {
		out[i] = Row{table: t, i: i}
	}
	return out
}

// Append adds a row. columns not present in values are left empty
func (t *Table) Append(values map[string]string) {
	row := make([]string, len(t.columns))
	for c, v := range values {
		if i, ok := t.index[c]; ok {
			row[i] = v
		}
	}
	t.rows = append(t.rows, row)
}

func (t *Table) appendRaw(row []string) {
	t.rows = append(t.rows, row)
}

// AddColumn appends an empty column. it is a no-op when the column exists
func (t *Table) AddColumn(column string) {
	if t.HasColumn(column) {
		return
	}
	t.columns = append(t.columns, column)
	t.index[column] = len(t.columns) - 1
	for i := range t.rows {
		t.rows[i] = append(t.rows[i], "")
	}
}

func (t *Table) RenameColumn(from, to string) error {
	i, ok := t.index[from]
	if !ok {
		return t.missing(from)
	}
	if t.HasColumn(to) {
		return fmt.Errorf("cannot rename '%s' to existing column '%s' in %s", from, to, t.name)
	}
	delete(t.index, from)
	t.columns[i] = to
	t.index[to] = i
	return nil
}

func (t *Table) Set(i int, column, value string) {
	if c, ok := t.index[column]; ok {
		t.rows[i][c] = value
	}
}

func (t *Table) SetFloat(i int, column string, value float64) {
	t.Set(i, column, FormatFloat(value))
}

// RequireColumns fails with a MissingColumnError listing everything
// missing
func (t *Table) RequireColumns(columns ...string) error {
	missing := []string{}
	for _, c := range columns {
		if !t.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return domain.MissingColumnError{
			Table:    t.name,
			Expected: missing,
			Found:    t.Columns(),
		}
	}
	return nil
}

func (t *Table) missing(column string) error {
	return domain.MissingColumnError{
		Table:    t.name,
		Expected: []string{column},
		Found:    t.Columns(),
	}
}

// Duplicates returns the values of column that appear more than once,
// in order of first repetition
func (t *Table) Duplicates(column string) ([]string, error) {
	i, ok := t.index[column]
	if !ok {
		return nil, t.missing(column)
	}
	seen := map[string]int{}
	out := []string{}
	for _, row := range t.rows {
		seen[row[i]]++
		if seen[row[i]] == 2 {
			out = append(out, row[i])
		}
	}
	return out, nil
}

type Row struct {
	table *Table
	i     int
}

func (r Row) Index() int {
	return r.i
}

func (r Row) Get(column string) string {
	if c, ok := r.table.index[column]; ok {
		return r.table.rows[r.i][c]
	}
	return ""
}

// Float parses a numeric cell. empty, unparseable and NaN cells are
// reported as missing
func (r Row) Float(column string) (float64, bool) {
	return ParseFloat(r.Get(column))
}

func (r Row) Values() map[string]string {
	out := make(map[string]string, len(r.table.columns))
	for i, c := range r.table.columns {
		out[c] = r.table.rows[r.i][i]
	}
	return out
}

func ParseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

func FormatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func ReadCSV(name string, r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err == io.EOF {
		return NewTable(name, nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", name, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	t := NewTable(name, header)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		row := make([]string, len(header))
		copy(row, record)
		t.appendRaw(row)
	}
	return t, nil
}

func WriteCSV(w io.Writer, t *Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.columns); err != nil {
		return err
	}
	if err := writer.WriteAll(t.rows); err != nil {
		return fmt.Errorf("failed to write %s: %w", t.name, err)
	}
	return nil
}
