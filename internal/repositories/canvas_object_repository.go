package repositories

import (
	"canvasSync/internal/errs"
	"canvasSync/internal/models"

	"gorm.io/gorm"
)

type CanvasObjectRepository struct {
	db *gorm.DB
}

func NewCanvasObjectRepository(db *gorm.DB) *CanvasObjectRepository {
	return &CanvasObjectRepository{
		db: db,
	}
}

func (cor *CanvasObjectRepository) CreateObject(object *models.CanvasObject) (*models.CanvasObject, error) {
	result := cor.db.Create(object)
	if err := result.Error; err != nil {
		return nil, err
	}
	if result.RowsAffected <= 0 {
		return nil, errs.ErrObjectCreationFailed
	}
	return object, nil
}

func (cor *CanvasObjectRepository) FindObject(objectID uint) (*models.CanvasObject, error) {
	var object models.CanvasObject
	result := cor.db.First(&object, objectID)
	if err := result.Error; err != nil {
		return nil, err
	}
	if result.RowsAffected == 0 {
		return nil, errs.ErrObjectNotFound
	}
	return &object, nil
}

func (cor *CanvasObjectRepository) UpdateObjectFields(objectID uint, fields map[string]any) (*models.CanvasObject, error) {
	result := cor.db.Model(&models.CanvasObject{}).Where("id = ?", objectID).Updates(fields)
	if err := result.Error; err != nil {
		return nil, err
	}
	if result.RowsAffected == 0 {
		return nil, errs.ErrObjectNotFound
	}
	return cor.FindObject(objectID)
}

func (cor *CanvasObjectRepository) DeleteObject(objectID uint) error {
	result := cor.db.Delete(&models.CanvasObject{}, objectID)
	if err := result.Error; err != nil {
		return err
	}
	if result.RowsAffected == 0 {
		return errs.ErrObjectNotFound
	}
	return nil
}

func (cor *CanvasObjectRepository) ListObjectsByCanvas(canvasID uint) ([]models.CanvasObject, error) {
	var objects []models.CanvasObject
	result := cor.db.Where("canvas_id = ?", canvasID).Order("z_index ASC").Find(&objects)
	if err := result.Error; err != nil {
		return nil, err
	}
	return objects, nil
}

func (cor *CanvasObjectRepository) MaxZIndex(canvasID uint) (int, error) {
	var max *int
	result := cor.db.Model(&models.CanvasObject{}).
		Where("canvas_id = ?", canvasID).
		Select("MAX(z_index)").
		Scan(&max)
	if err := result.Error; err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}
