package managers

import (
	"fmt"

	"github.com/chrissnell/automorph/internal/controllers/restserver"
	"github.com/chrissnell/automorph/internal/storage"
	"github.com/chrissnell/automorph/internal/storage/postgres"
	"github.com/chrissnell/automorph/internal/storage/sqlite"
	"github.com/chrissnell/automorph/pkg/config"
	"go.uber.org/zap"
)

// StorageManager holds our active result sinks
type StorageManager struct {
	*storage.Manager

	// Store is the SQLite store, or nil when it is not configured. The REST
	// server reads runs back from it.
	Store *sqlite.Store
}

// NewStorageManager creates a StorageManager populated with every sink the
// configuration enables
func NewStorageManager(c *config.ConfigData, logger *zap.SugaredLogger) (*StorageManager, error) {
	s := &StorageManager{Manager: storage.NewManager(logger)}

	// Check the configuration for the supported sinks and enable them if found

	if c.Output.CSVDir != "" {
		if err := s.AddEngine("csv", c, logger); err != nil {
			s.Close()
			return nil, fmt.Errorf("could not add CSV sink: %v", err)
		}
	}

	if c.Output.MsgpackDir != "" {
		if err := s.AddEngine("msgpack", c, logger); err != nil {
			s.Close()
			return nil, fmt.Errorf("could not add MessagePack sink: %v", err)
		}
	}

	if c.Output.SQLitePath != "" {
		if err := s.AddEngine("sqlite", c, logger); err != nil {
			s.Close()
			return nil, fmt.Errorf("could not add SQLite sink: %v", err)
		}
	}

	if c.Storage.Postgres != nil {
		if err := s.AddEngine("postgres", c, logger); err != nil {
			s.Close()
			return nil, fmt.Errorf("could not add PostgreSQL sink: %v", err)
		}
	}

	if len(s.Sinks()) == 0 {
		logger.Warn("no output configured; results will only be logged")
	}

	return s, nil
}

// AddEngine adds the sink named engineName
func (s *StorageManager) AddEngine(engineName string, c *config.ConfigData, logger *zap.SugaredLogger) error {
	switch engineName {
	case "csv":
		sink, err := storage.NewCSVSink(c.Output.CSVDir)
		if err != nil {
			return err
		}
		s.Add(sink)
	case "msgpack":
		sink, err := storage.NewMsgpackSink(c.Output.MsgpackDir)
		if err != nil {
			return err
		}
		s.Add(sink)
	case "sqlite":
		store, err := sqlite.Open(c.Output.SQLitePath, logger)
		if err != nil {
			return err
		}
		s.Store = store
		s.Add(store)
	case "postgres":
		sink, err := postgres.New(c.Storage.Postgres.ConnectionString, logger)
		if err != nil {
			return err
		}
		s.Add(sink)
	default:
		return fmt.Errorf("unknown storage engine %q", engineName)
	}

	logger.Infof("enabled %s sink", engineName)
	return nil
}

// RunStore returns the SQLite store, or a nil interface when it is disabled
func (s *StorageManager) RunStore() restserver.RunStore {
	if s.Store == nil {
		return nil
	}
	return s.Store
}
