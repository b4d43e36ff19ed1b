package database

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// SignalRecord is one processed signal as stored in the audit log.
type SignalRecord struct {
	ID                 int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	ProcessedAt        time.Time  `gorm:"index" json:"processed_at"`
	Symbol             string     `gorm:"index;size:20" json:"symbol"`
	PatternID          string     `gorm:"uniqueIndex;size:64" json:"pattern_id"`
	Source             string     `gorm:"size:20" json:"source"` // WEBHOOK or FEED
	Direction          string     `gorm:"size:10" json:"direction"`
	RawConfidence      float64    `json:"raw_confidence"`
	EnhancedConfidence float64    `json:"enhanced_confidence"`
	FoodScore          float64    `json:"food_score"`
	Sustainability     string     `gorm:"size:20" json:"sustainability"`
	Recommendation     string     `json:"recommendation"`
	Outcome            *float64   `json:"outcome,omitempty"`
	OutcomeAt          *time.Time `json:"outcome_at,omitempty"`
}

// SignalRepository handles audit log persistence.
type SignalRepository struct {
	db *Database
}

// NewSignalRepository creates a repository over an open connection.
func NewSignalRepository(db *Database) *SignalRepository {
	return &SignalRepository{db: db}
}

// InitSchema performs auto-migration for the audit log tables.
func (r *SignalRepository) InitSchema() error {
	return r.db.db.AutoMigrate(&SignalRecord{})
}

// SaveSignalRecord inserts one processed signal.
func (r *SignalRepository) SaveSignalRecord(rec *SignalRecord) error {
	return r.db.db.Create(rec).Error
}

// UpdateOutcome attaches an observed outcome to the record for a pattern id.
// A missing record is not an error; reinforcement of unknown ids is a normal
// silent miss upstream too.
func (r *SignalRepository) UpdateOutcome(patternID string, outcome float64) error {
	now := time.Now()
	result := r.db.db.Model(&SignalRecord{}).
		Where("pattern_id = ?", patternID).
		Updates(map[string]interface{}{"outcome": outcome, "outcome_at": now})
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil
		}
		return result.Error
	}
	return nil
}

// RecentSignals returns the latest processed signals, optionally filtered by
// symbol, newest first.
func (r *SignalRepository) RecentSignals(symbol string, limit int) ([]SignalRecord, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := r.db.db.Order("processed_at DESC").Limit(limit)
	if symbol != "" {
		query = query.Where("symbol = ?", symbol)
	}

	var records []SignalRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
