package util

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigFile(t *testing.T) {
	t.Run("missing file uses defaults", func(t *testing.T) {
		cfg, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.json"))
		require.NoError(t, err)
		require.Equal(t, DefaultConfig(), *cfg)
		require.Equal(t, 252, cfg.VolWindow)
		require.Equal(t, 126, cfg.MomWindow)
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		err := os.WriteFile(path, []byte(`{"volWindow": 20, "training": {"epochs": 3}}`), 0o644)
		require.NoError(t, err)

		cfg, err := LoadConfigFile(path)
		require.NoError(t, err)
		require.Equal(t, 20, cfg.VolWindow)
		require.Equal(t, 3, cfg.Training.Epochs)
		require.Equal(t, 32, cfg.Training.BatchSize)
	})

	t.Run("invalid schema is rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		err := os.WriteFile(path, []byte(`{"fundamentalsSchema": "wide"}`), 0o644)
		require.NoError(t, err)

		_, err = LoadConfigFile(path)
		require.Error(t, err)
	})
}

func TestWriteFileAtomic(t *testing.T) {
	t.Run("failed write keeps previous file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out", "x.csv")
		require.NoError(t, WriteFileAtomic(path, func(w io.Writer) error {
			_, err := w.Write([]byte("first"))
			return err
		}))

		err := WriteFileAtomic(path, func(w io.Writer) error {
			w.Write([]byte("partial"))
			return errors.New("boom")
		})
		require.Error(t, err)

		b, err := os.ReadFile(path)
		require.NoError(t, err)
		require.Equal(t, "first", string(b))

		entries, err := os.ReadDir(filepath.Dir(path))
		require.NoError(t, err)
		require.Len(t, entries, 1)
	})
}
