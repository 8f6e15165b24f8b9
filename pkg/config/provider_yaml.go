package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// analysisYAML uses pointers so an explicit zero survives defaulting
type analysisYAML struct {
	MHW              *float64 `yaml:"mhw"`
	HeelThreshold    *float64 `yaml:"heel_threshold"`
	CrestPct         *float64 `yaml:"crest_pct"`
	RegressionPad    *float64 `yaml:"regression_pad"`
	VerticalError    *float64 `yaml:"vertical_error"`
	ScanAllPeaks     bool     `yaml:"scan_all_peaks"`
	GridStep         *float64 `yaml:"grid_step"`
	SmoothingFrac    float64  `yaml:"smoothing_frac"`
	RobustIterations *int     `yaml:"robust_iterations"`
}

type configYAML struct {
	Analysis analysisYAML `yaml:"analysis"`
	Input    struct {
		Dir string `yaml:"dir"`
		Ext string `yaml:"ext,omitempty"`
	} `yaml:"input"`
	Batch struct {
		Workers    int `yaml:"workers"`
		BufferSize int `yaml:"buffer_size"`
	} `yaml:"batch"`
	Output struct {
		CSVDir     string `yaml:"csv_dir,omitempty"`
		SQLitePath string `yaml:"sqlite_path,omitempty"`
		MsgpackDir string `yaml:"msgpack_dir,omitempty"`
	} `yaml:"output"`
	Storage struct {
		Postgres *struct {
			ConnectionString string `yaml:"connection_string"`
		} `yaml:"postgres,omitempty"`
	} `yaml:"storage,omitempty"`
	REST *struct {
		Cert       string `yaml:"cert,omitempty"`
		Key        string `yaml:"key,omitempty"`
		Port       int    `yaml:"port,omitempty"`
		ListenAddr string `yaml:"listen_addr,omitempty"`
	} `yaml:"rest,omitempty"`
}

// LoadConfig loads the complete configuration from the YAML file, applies
// defaults and environment overrides, and validates the result. An empty
// filename yields the defaults.
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	var yamlConfig configYAML

	if y.filename != "" {
		cfgFile, err := os.ReadFile(y.filename)
		if err != nil {
			return nil, err
		}
		if err := yaml.UnmarshalStrict(cfgFile, &yamlConfig); err != nil {
			return nil, fmt.Errorf("could not parse %s: %w", y.filename, err)
		}
	}

	config := fromYAML(yamlConfig)
	config.applyDefaults()
	if err := applyEnv(config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	y.config = config
	return config, nil
}

func fromYAML(in configYAML) *ConfigData {
	a := in.Analysis
	config := &ConfigData{
		Analysis: AnalysisData{
			MHW:              floatOr(a.MHW, DefaultMHW),
			HeelThreshold:    floatOr(a.HeelThreshold, DefaultHeelThreshold),
			CrestPct:         floatOr(a.CrestPct, DefaultCrestPct),
			RegressionPad:    floatOr(a.RegressionPad, DefaultRegressionPad),
			VerticalError:    floatOr(a.VerticalError, DefaultVerticalError),
			ScanAllPeaks:     a.ScanAllPeaks,
			GridStep:         floatOr(a.GridStep, DefaultGridStep),
			SmoothingFrac:    a.SmoothingFrac,
			RobustIterations: DefaultRobustIterations,
		},
		Input: InputData{Dir: in.Input.Dir, Ext: in.Input.Ext},
		Batch: BatchData{Workers: in.Batch.Workers, BufferSize: in.Batch.BufferSize},
		Output: OutputData{
			CSVDir:     in.Output.CSVDir,
			SQLitePath: in.Output.SQLitePath,
			MsgpackDir: in.Output.MsgpackDir,
		},
	}
	if a.RobustIterations != nil {
		config.Analysis.RobustIterations = *a.RobustIterations
	}

	if in.Storage.Postgres != nil {
		config.Storage.Postgres = &PostgresData{
			ConnectionString: in.Storage.Postgres.ConnectionString,
		}
	}

	if in.REST != nil {
		config.REST = &RESTServerData{
			Cert:       in.REST.Cert,
			Key:        in.REST.Key,
			Port:       in.REST.Port,
			ListenAddr: in.REST.ListenAddr,
		}
	}

	return config
}

func floatOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func (y *YAMLProvider) loaded() (*ConfigData, error) {
	if y.config != nil {
		return y.config, nil
	}
	return y.LoadConfig()
}

// GetAnalysis returns the analysis section
func (y *YAMLProvider) GetAnalysis() (*AnalysisData, error) {
	config, err := y.loaded()
	if err != nil {
		return nil, err
	}
	return &config.Analysis, nil
}

// GetStorageConfig returns the storage configuration
func (y *YAMLProvider) GetStorageConfig() (*StorageData, error) {
	config, err := y.loaded()
	if err != nil {
		return nil, err
	}
	return &config.Storage, nil
}

// GetRESTServer returns the REST server configuration, or nil when the
// server is not configured
func (y *YAMLProvider) GetRESTServer() (*RESTServerData, error) {
	config, err := y.loaded()
	if err != nil {
		return nil, err
	}
	return config.REST, nil
}

// IsReadOnly returns true since YAML files are treated as read-only
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML provider
func (y *YAMLProvider) Close() error {
	return nil
}
