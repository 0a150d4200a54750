package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/stitts-dev/fanta-optimizer/internal/models"
	"github.com/stitts-dev/fanta-optimizer/internal/optimizer"
	"github.com/stitts-dev/fanta-optimizer/pkg/database"
)

// ErrBuildNotFound is returned for unknown build ids
var ErrBuildNotFound = errors.New("build not found")

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// HistoryService persists finished builds
type HistoryService struct {
	db     *database.DB
	logger *logrus.Logger
}

func NewHistoryService(db *database.DB, logger *logrus.Logger) *HistoryService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &HistoryService{db: db, logger: logger}
}

// Save stores a successful build under id
func (s *HistoryService) Save(ctx context.Context, id uuid.UUID, requestHash string, req *optimizer.Request, result *optimizer.BuildResult, elapsed time.Duration) (*models.BuildRecord, error) {
	reqJSON, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	record := &models.BuildRecord{
		ID:           id,
		RequestHash:  requestHash,
		TotalBudget:  req.Config.TotalBudget,
		TotalCost:    result.TotalCost,
		TotalScore:   result.TotalScore,
		WarningCount: len(result.Warnings),
		Degraded:     result.Degraded(),
		Request:      datatypes.JSON(reqJSON),
		Result:       datatypes.JSON(resultJSON),
		DurationMs:   elapsed.Milliseconds(),
	}
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, fmt.Errorf("failed to save build: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"build_id":   record.ID,
		"total_cost": record.TotalCost,
	}).Debug("Build saved")
	return record, nil
}

// List returns the latest builds, newest first
func (s *HistoryService) List(ctx context.Context, limit int) ([]models.BuildRecord, int64, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.BuildRecord{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count builds: %w", err)
	}

	var records []models.BuildRecord
	err := s.db.WithContext(ctx).
		Omit("request", "result").
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list builds: %w", err)
	}
	return records, total, nil
}

// Get loads one build with its payloads
func (s *HistoryService) Get(ctx context.Context, id uuid.UUID) (*models.BuildRecord, error) {
	var record models.BuildRecord
	if err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBuildNotFound
		}
		return nil, fmt.Errorf("failed to get build: %w", err)
	}
	return &record, nil
}

// PurgeOlderThan deletes builds created before now minus age
func (s *HistoryService) PurgeOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-age)
	res := s.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.BuildRecord{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to purge builds: %w", res.Error)
	}
	return res.RowsAffected, nil
}
