package database

import (
	"time"

	"github.com/chrissnell/automorph/internal/storage"
)

// RunModel is one analyzed location and year
type RunModel struct {
	ID        string    `gorm:"primaryKey;column:id"`
	Location  string    `gorm:"column:location;not null;index:idx_runs_location_year"`
	Year      int       `gorm:"column:year;not null;index:idx_runs_location_year"`
	StartedAt time.Time `gorm:"column:started_at;not null"`
	MHW       float64   `gorm:"column:mhw"`
	Profiles  int       `gorm:"column:profiles"`
	Failed    int       `gorm:"column:failed"`
}

// TableName specifies the table name for RunModel
func (RunModel) TableName() string {
	return "runs"
}

// MorphometricModel is one profile's exported row. PostgreSQL stores NaN
// natively, so absent values keep their export form.
type MorphometricModel struct {
	ID    uint   `gorm:"primaryKey;autoIncrement;column:id"`
	RunID string `gorm:"column:run_id;not null;index"`

	storage.Row `gorm:"embedded"`
}

// TableName specifies the table name for MorphometricModel
func (MorphometricModel) TableName() string {
	return "morphometrics"
}
