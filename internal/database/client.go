// Package database manages the PostgreSQL connection and schema of the
// optional results database.
package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/chrissnell/automorph/internal/log"
	"go.uber.org/zap"
)

// Client holds the connection to a PostgreSQL database
type Client struct {
	connectionString string
	DB               *gorm.DB // Exported so it can be accessed from other packages
	logger           *zap.SugaredLogger
}

// NewClient creates a new database client
func NewClient(connectionString string, logger *zap.SugaredLogger) *Client {
	return &Client{
		connectionString: connectionString,
		logger:           logger,
	}
}

// Connect connects to the database and brings the results schema up to date
func (c *Client) Connect() error {
	if c.connectionString == "" {
		return fmt.Errorf("no PostgreSQL connection string configured")
	}

	// Create a logger for gorm
	dbLogger := logger.New(
		zap.NewStdLog(log.GetZapLogger()),
		logger.Config{
			SlowThreshold:             time.Second, // Slow SQL threshold
			LogLevel:                  logger.Warn, // Log level
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	c.logger.Info("connecting to PostgreSQL...")
	db, err := gorm.Open(postgres.Open(c.connectionString), &gorm.Config{Logger: dbLogger})
	if err != nil {
		c.logger.Warn("warning: unable to create a PostgreSQL connection:", err)
		return err
	}

	if err := db.AutoMigrate(&RunModel{}, &MorphometricModel{}); err != nil {
		return fmt.Errorf("could not migrate results schema: %w", err)
	}

	c.DB = db
	c.logger.Info("PostgreSQL connection successful")
	return nil
}

// Close closes the underlying connection pool
func (c *Client) Close() error {
	if c.DB == nil {
		return nil
	}
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
