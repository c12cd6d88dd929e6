package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"stocktagger/internal/domain"
)

type Config struct {
	RawDir       string `json:"rawDir"`
	ProcessedDir string `json:"processedDir"`
	ModelPath    string `json:"modelPath"`

	VolWindow          int                       `json:"volWindow"`
	MomWindow          int                       `json:"momWindow"`
	AllowedExchanges   []string                  `json:"allowedExchanges"`
	FundamentalsSchema domain.FundamentalsSchema `json:"fundamentalsSchema"`
	// 0 picks the latest year column
	FundamentalsYear int `json:"fundamentalsYear"`

	Training TrainingConfig `json:"training"`
	Api      ApiConfig      `json:"api"`
}

type TrainingConfig struct {
	Epochs       int       `json:"epochs"`
	BatchSize    int       `json:"batchSize"`
	LearningRate float64   `json:"learningRate"`
	Seed         int64     `json:"seed"`
	Hidden       []int     `json:"hidden"`
	Dropout      []float64 `json:"dropout"`
	TestSize     float64   `json:"testSize"`
	ValSize      float64   `json:"valSize"`
}

type ApiConfig struct {
	Port int `json:"port"`
}

func DefaultConfig() Config {
	return Config{
		RawDir:             filepath.Join("data", "raw"),
		ProcessedDir:       filepath.Join("data", "processed"),
		ModelPath:          "model.json",
		VolWindow:          252,
		MomWindow:          126,
		AllowedExchanges:   []string{"NYSE", "NASDAQ"},
		FundamentalsSchema: domain.FundamentalsSchemaAuto,
		Training: TrainingConfig{
			Epochs:       50,
			BatchSize:    32,
			LearningRate: 0.001,
			Seed:         42,
			Hidden:       []int{128, 64},
			Dropout:      []float64{0.3, 0.2},
			TestSize:     0.20,
			ValSize:      0.10,
		},
		Api: ApiConfig{
			Port: 5000,
		},
	}
}

func configFile() string {
	if p := os.Getenv("STOCKTAGGER_CONFIG"); p != "" {
		return p
	}
	switch strings.ToLower(os.Getenv("STOCKTAGGER_ENV")) {
	case "dev":
		return "config-dev.json"
	case "test":
		return "config-test.json"
	}
	return "config.json"
}

// LoadConfig reads the env-selected config file over the defaults. a
// missing file means defaults
func LoadConfig() (*Config, error) {
	return LoadConfigFile(configFile())
}

func LoadConfigFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	f, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", path, err)
	}

	if err := json.Unmarshal(f, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return &cfg, nil
}

func (c Config) Validate() error {
	if c.VolWindow < 2 {
		return fmt.Errorf("volWindow must be at least 2, got %d", c.VolWindow)
	}
	if c.MomWindow < 1 {
		return fmt.Errorf("momWindow must be positive, got %d", c.MomWindow)
	}
	switch c.FundamentalsSchema {
	case domain.FundamentalsSchemaAuto, domain.FundamentalsSchemaLong, domain.FundamentalsSchemaYearly:
	default:
		return fmt.Errorf("unknown fundamentalsSchema '%s'", c.FundamentalsSchema)
	}
	t := c.Training
	if len(t.Hidden) != len(t.Dropout) {
		return fmt.Errorf("training.hidden and training.dropout must have the same length")
	}
	if t.Epochs <= 0 || t.BatchSize <= 0 || t.LearningRate <= 0 {
		return fmt.Errorf("training epochs, batchSize and learningRate must be positive")
	}
	if t.TestSize <= 0 || t.ValSize < 0 || t.TestSize+t.ValSize >= 1 {
		return fmt.Errorf("invalid split sizes test=%v val=%v", t.TestSize, t.ValSize)
	}
	return nil
}

func (c Config) PricesPath() string {
	return filepath.Join(c.RawDir, "prices.csv")
}

func (c Config) IndicatorsPath() string {
	return filepath.Join(c.RawDir, "indicators_by_company.csv")
}

func (c Config) CompaniesPath() string {
	return filepath.Join(c.RawDir, "companies.csv")
}

func (c Config) YearlyIndicatorsPath() string {
	return filepath.Join(c.RawDir, "indicators_by_year.csv")
}

func (c Config) CompaniesByIDPath() string {
	return filepath.Join(c.RawDir, "companies_by_id.csv")
}

func (c Config) PriceFeaturesPath() string {
	return filepath.Join(c.ProcessedDir, "price_features.csv")
}

func (c Config) FundamentalsCleanPath() string {
	return filepath.Join(c.ProcessedDir, "fundamentals_clean.csv")
}

func (c Config) CombinedPath() string {
	return filepath.Join(c.ProcessedDir, "combined_data.csv")
}

func (c Config) ScalerPath() string {
	return filepath.Join(c.ProcessedDir, "scaler.json")
}

func (c Config) ManifestPath() string {
	return filepath.Join(c.ProcessedDir, "schema.json")
}

func (c Config) HistoryPath() string {
	return filepath.Join(c.ProcessedDir, "training_history.csv")
}
