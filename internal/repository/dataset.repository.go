package repository

import (
	"fmt"
	"io"

	"stocktagger/internal/data"
	"stocktagger/internal/util"
)

//go:generate mockgen -source=dataset.repository.go -destination=mocks/mock_dataset.repository.go -package=mock_repository

// DatasetRepository stores one intermediate table (cleaned fundamentals,
// combined dataset) at a fixed path
type DatasetRepository interface {
	Get() (*data.Table, error)
	Save(t *data.Table) error
	Path() string
}

func NewDatasetRepository(path, producedBy string) DatasetRepository {
	return datasetRepositoryHandler{
		path:       path,
		producedBy: producedBy,
	}
}

type datasetRepositoryHandler struct {
	path       string
	producedBy string
}

func (h datasetRepositoryHandler) Path() string {
	return h.path
}

func (h datasetRepositoryHandler) Get() (*data.Table, error) {
	hint := ""
	if h.producedBy != "" {
		hint = fmt.Sprintf("Ensure the %s stage has run successfully.", h.producedBy)
	}
	return readTable(h.path, hint)
}

func (h datasetRepositoryHandler) Save(t *data.Table) error {
	err := util.WriteFileAtomic(h.path, func(w io.Writer) error {
		return data.WriteCSV(w, t)
	})
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", h.path, err)
	}
	return nil
}
