package repository

import (
	"encoding/json"
	"fmt"
	"io"

	"stocktagger/internal/domain"
	"stocktagger/internal/ml"
	"stocktagger/internal/util"

	"github.com/gocarina/gocsv"
)

// ArtifactRepository persists everything training produces. serving only
// ever reads these
type ArtifactRepository interface {
	SaveModel(n *ml.Network) error
	GetModel() (*ml.Network, error)
	SaveScaler(s *ml.StandardScaler) error
	GetScaler() (*ml.StandardScaler, error)
	SaveManifest(m domain.ModelManifest) error
	GetManifest() (*domain.ModelManifest, error)
	SaveHistory(history []ml.EpochMetrics) error
}

type ArtifactPaths struct {
	Model    string
	Scaler   string
	Manifest string
	History  string
}

func NewArtifactRepository(paths ArtifactPaths) ArtifactRepository {
	return artifactRepositoryHandler{Paths: paths}
}

type artifactRepositoryHandler struct {
	Paths ArtifactPaths
}

const trainHint = "Run the train stage first."

func writeJSON(path string, v interface{}) error {
	return util.WriteFileAtomic(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	})
}

func readJSON(path string, v interface{}) error {
	b, err := readInput(path, trainHint)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func (h artifactRepositoryHandler) SaveModel(n *ml.Network) error {
	if err := writeJSON(h.Paths.Model, n); err != nil {
		return fmt.Errorf("failed to save model: %w", err)
	}
	return nil
}

func (h artifactRepositoryHandler) GetModel() (*ml.Network, error) {
	n := &ml.Network{}
	if err := readJSON(h.Paths.Model, n); err != nil {
		return nil, fmt.Errorf("failed to load model: %w", err)
	}
	return n, nil
}

func (h artifactRepositoryHandler) SaveScaler(s *ml.StandardScaler) error {
	if err := writeJSON(h.Paths.Scaler, s); err != nil {
		return fmt.Errorf("failed to save scaler: %w", err)
	}
	return nil
}

func (h artifactRepositoryHandler) GetScaler() (*ml.StandardScaler, error) {
	s := &ml.StandardScaler{}
	if err := readJSON(h.Paths.Scaler, s); err != nil {
		return nil, fmt.Errorf("failed to load scaler: %w", err)
	}
	return s, nil
}

func (h artifactRepositoryHandler) SaveManifest(m domain.ModelManifest) error {
	if err := writeJSON(h.Paths.Manifest, m); err != nil {
		return fmt.Errorf("failed to save manifest: %w", err)
	}
	return nil
}

func (h artifactRepositoryHandler) GetManifest() (*domain.ModelManifest, error) {
	m := &domain.ModelManifest{}
	if err := readJSON(h.Paths.Manifest, m); err != nil {
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	}
	return m, nil
}

func (h artifactRepositoryHandler) SaveHistory(history []ml.EpochMetrics) error {
	err := util.WriteFileAtomic(h.Paths.History, func(w io.Writer) error {
		return gocsv.Marshal(&history, w)
	})
	if err != nil {
		return fmt.Errorf("failed to save training history: %w", err)
	}
	return nil
}
