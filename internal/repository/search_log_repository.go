package repository

import (
	"bridge-go/internal/model"

	"gorm.io/gorm"
)

// SearchLogRepository defines the persistence operations for search analytics.
type SearchLogRepository interface {
	Create(log *model.SearchLog) error
	FindRecent(limit int) ([]model.SearchLog, error)
	CountByProvider() (map[string]int64, error)
}

type searchLogRepository struct {
	db *gorm.DB
}

// NewSearchLogRepository creates a new SearchLogRepository instance.
func NewSearchLogRepository(db *gorm.DB) SearchLogRepository {
	return &searchLogRepository{db: db}
}

func (r *searchLogRepository) Create(log *model.SearchLog) error {
	return r.db.Create(log).Error
}

// FindRecent retrieves the most recent search logs, newest first.
func (r *searchLogRepository) FindRecent(limit int) ([]model.SearchLog, error) {
	var logs []model.SearchLog
	err := r.db.Order("created_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}

// CountByProvider aggregates log counts per provider tag.
func (r *searchLogRepository) CountByProvider() (map[string]int64, error) {
	type row struct {
		Provider string
		Total    int64
	}
	var rows []row
	err := r.db.Model(&model.SearchLog{}).
		Select("provider, count(*) as total").
		Group("provider").Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Provider] = r.Total
	}
	return counts, nil
}
