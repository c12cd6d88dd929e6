package data

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"stocktagger/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestTable_roundTrip(t *testing.T) {
	t.Run("floats survive write and read", func(t *testing.T) {
		tbl := NewTable("combined", []string{"symbol", "MarketCap", "volatility"})
		tbl.Append(map[string]string{"symbol": "ACME"})
		tbl.SetFloat(0, "MarketCap", 12e9)
		tbl.SetFloat(0, "volatility", 0.1+0.2)

		buf := &bytes.Buffer{}
		require.NoError(t, WriteCSV(buf, tbl))

		read, err := ReadCSV("combined", buf)
		require.NoError(t, err)
		require.Equal(t, tbl.Columns(), read.Columns())

		mc, ok := read.Row(0).Float("MarketCap")
		require.True(t, ok)
		require.Equal(t, 12e9, mc)
		vol, ok := read.Row(0).Float("volatility")
		require.True(t, ok)
		require.Equal(t, 0.1+0.2, vol)
	})

	t.Run("short records are padded", func(t *testing.T) {
		read, err := ReadCSV("x", strings.NewReader("a,b,c\n1,2\n"))
		require.NoError(t, err)
		require.Equal(t, "", read.Row(0).Get("c"))
		_, ok := read.Row(0).Float("c")
		require.False(t, ok)
	})
}

func TestTable_RequireColumns(t *testing.T) {
	tbl := NewTable("fundamentals", []string{"symbol", "PE"})
	err := tbl.RequireColumns("symbol", "MarketCap", "sector")

	target := domain.MissingColumnError{}
	require.True(t, errors.As(err, &target))
	require.Equal(t, []string{"MarketCap", "sector"}, target.Expected)
	require.Equal(t, []string{"symbol", "PE"}, target.Found)
}

func TestTable_Duplicates(t *testing.T) {
	tbl := NewTable("prices", []string{"symbol"})
	for _, s := range []string{"A", "B", "A", "C", "A", "B"} {
		tbl.Append(map[string]string{"symbol": s})
	}
	dups, err := tbl.Duplicates("symbol")
	require.NoError(t, err)
	require.Equal(t, []string{"A", "B"}, dups)
}

func TestTable_RenameColumn(t *testing.T) {
	tbl := NewTable("t", []string{"company_id", "x", "y"})
	tbl.Append(map[string]string{"company_id": "AAA", "x": "1", "y": "2"})

	require.NoError(t, tbl.RenameColumn("company_id", "symbol"))
	require.Error(t, tbl.RenameColumn("x", "y"))
	require.Error(t, tbl.RenameColumn("missing", "z"))

	require.Equal(t, []string{"symbol", "x", "y"}, tbl.Columns())
	require.Equal(t, map[string]string{"symbol": "AAA", "x": "1", "y": "2"}, tbl.Row(0).Values())
}
