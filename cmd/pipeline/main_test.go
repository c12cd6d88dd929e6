package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_parseSymbols(t *testing.T) {
	t.Run("happy path", func(t *testing.T) {
		require.Equal(t, []string{"AAPL", "MSFT"}, parseSymbols(" aapl, ,MSFT,"))
	})

	t.Run("empty", func(t *testing.T) {
		require.Empty(t, parseSymbols(""))
	})
}

func Test_rootCmd(t *testing.T) {
	names := []string{}
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	require.ElementsMatch(t, []string{"fetch-prices", "price-features", "fundamentals", "combine", "train", "all"}, names)
}
