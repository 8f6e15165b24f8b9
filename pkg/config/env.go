package config

import (
	"fmt"
	"os"
	"strconv"
)

// EnvPrefix starts every environment override
const EnvPrefix = "AUTOMORPH_"

// applyEnv overrides settings from AUTOMORPH_* variables. Unset or empty
// variables leave the configured value alone.
func applyEnv(c *ConfigData) error {
	var err error

	if c.Analysis.MHW, err = getEnvFloat("MHW", c.Analysis.MHW); err != nil {
		return err
	}
	if c.Analysis.ScanAllPeaks, err = getEnvBool("SCAN_ALL_PEAKS", c.Analysis.ScanAllPeaks); err != nil {
		return err
	}
	if c.Batch.Workers, err = getEnvInt("WORKERS", c.Batch.Workers); err != nil {
		return err
	}

	c.Input.Dir = getEnv("INPUT_DIR", c.Input.Dir)
	c.Output.CSVDir = getEnv("CSV_DIR", c.Output.CSVDir)
	c.Output.SQLitePath = getEnv("SQLITE_PATH", c.Output.SQLitePath)
	c.Output.MsgpackDir = getEnv("MSGPACK_DIR", c.Output.MsgpackDir)

	if url := getEnv("POSTGRES_URL", ""); url != "" {
		c.Storage.Postgres = &PostgresData{ConnectionString: url}
	}

	addr := getEnv("REST_LISTEN_ADDR", "")
	port, err := getEnvInt("REST_PORT", 0)
	if err != nil {
		return err
	}
	if addr != "" || port != 0 {
		if c.REST == nil {
			c.REST = &RESTServerData{Port: DefaultRESTPort}
		}
		if addr != "" {
			c.REST.ListenAddr = addr
		}
		if port != 0 {
			c.REST.Port = port
		}
	}

	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(EnvPrefix + key)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal, fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
	}
	return i, nil
}

func getEnvFloat(key string, defaultVal float64) (float64, error) {
	val := os.Getenv(EnvPrefix + key)
	if val == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal, fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
	}
	return f, nil
}

func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(EnvPrefix + key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal, fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
	}
	return b, nil
}
