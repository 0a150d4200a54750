package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// BuildRecord is one persisted roster build
type BuildRecord struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	RequestHash  string         `gorm:"size:64;not null;index" json:"request_hash"`
	TotalBudget  int            `gorm:"not null" json:"total_budget"`
	TotalCost    int            `gorm:"not null" json:"total_cost"`
	TotalScore   float64        `gorm:"not null" json:"total_score"`
	WarningCount int            `gorm:"not null;default:0" json:"warning_count"`
	Degraded     bool           `gorm:"not null;default:false" json:"degraded"`
	Request      datatypes.JSON `gorm:"type:jsonb" json:"request"`
	Result       datatypes.JSON `gorm:"type:jsonb" json:"result"`
	DurationMs   int64          `json:"duration_ms"`
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for GORM
func (BuildRecord) TableName() string {
	return "build_records"
}

// BeforeCreate assigns an id when the caller did not
func (b *BuildRecord) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// BuildSummary is the list view of a build without its payloads
type BuildSummary struct {
	ID           uuid.UUID `json:"id"`
	RequestHash  string    `json:"request_hash"`
	TotalBudget  int       `json:"total_budget"`
	TotalCost    int       `json:"total_cost"`
	TotalScore   float64   `json:"total_score"`
	WarningCount int       `json:"warning_count"`
	Degraded     bool      `json:"degraded"`
	DurationMs   int64     `json:"duration_ms"`
	CreatedAt    time.Time `json:"created_at"`
}

// Summary drops the request and result payloads
func (b *BuildRecord) Summary() BuildSummary {
	return BuildSummary{
		ID:           b.ID,
		RequestHash:  b.RequestHash,
		TotalBudget:  b.TotalBudget,
		TotalCost:    b.TotalCost,
		TotalScore:   b.TotalScore,
		WarningCount: b.WarningCount,
		Degraded:     b.Degraded,
		DurationMs:   b.DurationMs,
		CreatedAt:    b.CreatedAt,
	}
}
