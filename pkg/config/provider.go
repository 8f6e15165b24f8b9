// Package config loads the automorph configuration from YAML with
// environment overrides.
package config

import (
	"errors"
	"fmt"

	"github.com/chrissnell/automorph/internal/morpho"
	"github.com/chrissnell/automorph/internal/profile"
)

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetAnalysis() (*AnalysisData, error)
	GetStorageConfig() (*StorageData, error)
	GetRESTServer() (*RESTServerData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Analysis AnalysisData    `json:"analysis"`
	Input    InputData       `json:"input"`
	Batch    BatchData       `json:"batch"`
	Output   OutputData      `json:"output"`
	Storage  StorageData     `json:"storage,omitempty"`
	REST     *RESTServerData `json:"rest,omitempty"`
}

// AnalysisData holds the morphometric thresholds and profile preparation
// settings
type AnalysisData struct {
	MHW              float64 `json:"mhw"`
	HeelThreshold    float64 `json:"heel_threshold"`
	CrestPct         float64 `json:"crest_pct"`
	RegressionPad    float64 `json:"regression_pad"`
	VerticalError    float64 `json:"vertical_error"`
	ScanAllPeaks     bool    `json:"scan_all_peaks"`
	GridStep         float64 `json:"grid_step"`
	SmoothingFrac    float64 `json:"smoothing_frac"`
	RobustIterations int     `json:"robust_iterations"`
}

// InputData locates the profile files
type InputData struct {
	Dir string `json:"dir"`
	Ext string `json:"ext,omitempty"`
}

// BatchData sizes the worker pool
type BatchData struct {
	Workers    int `json:"workers"`
	BufferSize int `json:"buffer_size"`
}

// OutputData enables the file and SQLite sinks. An empty value disables
// the sink.
type OutputData struct {
	CSVDir     string `json:"csv_dir,omitempty"`
	SQLitePath string `json:"sqlite_path,omitempty"`
	MsgpackDir string `json:"msgpack_dir,omitempty"`
}

// StorageData holds the configuration for database backends
type StorageData struct {
	Postgres *PostgresData `json:"postgres,omitempty"`
}

// PostgresData configures the PostgreSQL results sink
type PostgresData struct {
	ConnectionString string `json:"connection_string"`
}

// RESTServerData configures the REST API
type RESTServerData struct {
	Cert       string `json:"cert,omitempty"`
	Key        string `json:"key,omitempty"`
	Port       int    `json:"port,omitempty"`
	ListenAddr string `json:"listen_addr,omitempty"`
}

// Defaults applied to any setting the configuration leaves unset
const (
	DefaultMHW              = 0.34
	DefaultHeelThreshold    = 0.6
	DefaultCrestPct         = 0.1
	DefaultRegressionPad    = 0.5
	DefaultVerticalError    = 0.15
	DefaultGridStep         = 0.5
	DefaultRobustIterations = 3
	DefaultWorkers          = 4
	DefaultBufferSize       = 16
	DefaultRESTPort         = 8080
)

// Validate checks the configuration and names the offending key of the
// first problem found
func (c *ConfigData) Validate() error {
	a := c.Analysis
	switch {
	case a.HeelThreshold <= 0:
		return fieldError("analysis.heel_threshold", "must be positive")
	case a.CrestPct < 0 || a.CrestPct >= 1:
		return fieldError("analysis.crest_pct", "must be in [0, 1)")
	case a.RegressionPad <= 0:
		return fieldError("analysis.regression_pad", "must be positive")
	case a.VerticalError < 0:
		return fieldError("analysis.vertical_error", "must not be negative")
	case a.GridStep <= 0:
		return fieldError("analysis.grid_step", "must be positive")
	case a.SmoothingFrac < 0 || a.SmoothingFrac > 1:
		return fieldError("analysis.smoothing_frac", "must be in [0, 1]")
	case a.RobustIterations < 0:
		return fieldError("analysis.robust_iterations", "must not be negative")
	case c.Batch.Workers < 1:
		return fieldError("batch.workers", "must be at least 1")
	case c.Batch.BufferSize < 0:
		return fieldError("batch.buffer_size", "must not be negative")
	}

	if c.REST != nil && (c.REST.Port < 1 || c.REST.Port > 65535) {
		return fieldError("rest.port", "must be between 1 and 65535")
	}
	if c.REST != nil && (c.REST.Cert == "") != (c.REST.Key == "") {
		return fieldError("rest.cert", "cert and key must be set together")
	}
	if c.Storage.Postgres != nil && c.Storage.Postgres.ConnectionString == "" {
		return fieldError("storage.postgres.connection_string", "must not be empty")
	}

	return nil
}

// ErrInvalidConfig wraps every validation failure
var ErrInvalidConfig = errors.New("invalid configuration")

func fieldError(key, problem string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidConfig, key, problem)
}

// applyDefaults fills in unset input, batch, and REST settings
func (c *ConfigData) applyDefaults() {
	if c.Input.Dir == "" {
		c.Input.Dir = "."
	}
	if c.Input.Ext == "" {
		c.Input.Ext = ".txt"
	}
	if c.Batch.Workers == 0 {
		c.Batch.Workers = DefaultWorkers
	}
	if c.Batch.BufferSize == 0 {
		c.Batch.BufferSize = DefaultBufferSize
	}
	if c.REST != nil && c.REST.Port == 0 {
		c.REST.Port = DefaultRESTPort
	}
}

// Params converts the analysis section into morphometric thresholds
func (a AnalysisData) Params() morpho.Params {
	return morpho.Params{
		MHW:           a.MHW,
		HeelThreshold: a.HeelThreshold,
		CrestPct:      a.CrestPct,
		RegressionPad: a.RegressionPad,
		VerticalError: a.VerticalError,
		ScanAllPeaks:  a.ScanAllPeaks,
	}
}

// Options converts the analysis section into profile preparation options
func (a AnalysisData) Options() profile.Options {
	return profile.Options{
		GridStep:         a.GridStep,
		SmoothingFrac:    a.SmoothingFrac,
		RobustIterations: a.RobustIterations,
	}
}
