package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/SAP-F-2025/scoring-service/internal/models"
	"github.com/SAP-F-2025/scoring-service/internal/repositories"
	"gorm.io/gorm"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type ScoreRunPostgreSQL struct {
	db *gorm.DB
}

func NewScoreRunPostgreSQL(db *gorm.DB) repositories.ScoreRunRepository {
	return &ScoreRunPostgreSQL{db: db}
}

// AutoMigrate creates or updates the score_runs table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.ScoreRun{})
}

func (r ScoreRunPostgreSQL) Create(ctx context.Context, run *models.ScoreRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r ScoreRunPostgreSQL) GetByID(ctx context.Context, id string) (*models.ScoreRun, error) {
	var run models.ScoreRun
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&run).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrRunNotFound
		}
		return nil, err
	}
	return &run, nil
}

func (r ScoreRunPostgreSQL) List(ctx context.Context, filters repositories.ScoreRunFilters) ([]*models.ScoreRun, int64, error) {
	var runs []*models.ScoreRun
	var total int64

	// apply filter first
	query := r.applyFilters(r.db.WithContext(ctx).Model(&models.ScoreRun{}), filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// then apply pagination and sorting
	if err := r.applyPaginationAndSort(query, filters).Find(&runs).Error; err != nil {
		return nil, 0, err
	}

	return runs, total, nil
}

func (r ScoreRunPostgreSQL) applyFilters(query *gorm.DB, filters repositories.ScoreRunFilters) *gorm.DB {
	if filters.SessionID != nil {
		query = query.Where("session_id = ?", *filters.SessionID)
	}
	if filters.Mode != nil {
		query = query.Where("mode = ?", *filters.Mode)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}
	return query
}

func (r ScoreRunPostgreSQL) applyPaginationAndSort(query *gorm.DB, filters repositories.ScoreRunFilters) *gorm.DB {
	order := "created_at DESC"
	if strings.EqualFold(filters.SortOrder, "asc") {
		order = "created_at ASC"
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	return query.Order(order).Limit(limit).Offset(max(filters.Offset, 0))
}
