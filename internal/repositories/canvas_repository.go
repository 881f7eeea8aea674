package repositories

import (
	"canvasSync/internal/errs"
	"canvasSync/internal/models"

	"gorm.io/gorm"
)

type CanvasRepository struct {
	db *gorm.DB
}

func NewCanvasRepository(db *gorm.DB) *CanvasRepository {
	return &CanvasRepository{
		db: db,
	}
}

func (cr *CanvasRepository) CreateCanvas(canvas *models.Canvas) (*models.Canvas, error) {
	result := cr.db.Create(canvas)
	if err := result.Error; err != nil {
		return nil, err
	}
	if result.RowsAffected <= 0 {
		return nil, errs.ErrCanvasCreationFailed
	}
	return canvas, nil
}

func (cr *CanvasRepository) FindCanvas(canvasID uint) (*models.Canvas, error) {
	var canvas models.Canvas
	result := cr.db.First(&canvas, canvasID)
	if err := result.Error; err != nil {
		return nil, err
	}
	if result.RowsAffected == 0 {
		return nil, errs.ErrCanvasNotFound
	}
	return &canvas, nil
}
