package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/linguabridge/learning-service/internal/models"
	"github.com/linguabridge/learning-service/internal/repositories"
)

type ProgressPostgreSQL struct {
	db *gorm.DB
}

func NewProgressPostgreSQL(db *gorm.DB) repositories.ProgressRepository {
	return &ProgressPostgreSQL{db: db}
}

func (p *ProgressPostgreSQL) Get(ctx context.Context, userID, unitID string) (*models.UnitProgress, error) {
	var progress models.UnitProgress
	if err := p.db.WithContext(ctx).
		Where("user_id = ? AND unit_id = ?", userID, unitID).
		First(&progress).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}
	return &progress, nil
}

func (p *ProgressPostgreSQL) Put(ctx context.Context, progress *models.UnitProgress) error {
	return p.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "unit_id"}},
			UpdateAll: true,
		}).
		Create(progress).Error
}

func (p *ProgressPostgreSQL) GetByUser(ctx context.Context, userID string) ([]*models.UnitProgress, error) {
	var docs []*models.UnitProgress
	if err := p.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("unit_id").
		Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

func (p *ProgressPostgreSQL) Delete(ctx context.Context, userID string) error {
	return p.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.UnitProgress{}).Error
}
