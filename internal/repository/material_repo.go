package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ItalcolColombia/miit-api-sub000/internal/model"
)

type MaterialRepository interface {
	Create(ctx context.Context, m *model.Material) error
	FindByID(ctx context.Context, id int64) (*model.Material, error)
	FindByNombre(ctx context.Context, nombre string) (*model.Material, error)
	List(ctx context.Context) ([]model.Material, error)
}

type materialRepo struct{ db *gorm.DB }

func NewMaterialRepository(db *gorm.DB) MaterialRepository { return &materialRepo{db: db} }

func (r *materialRepo) Create(ctx context.Context, m *model.Material) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *materialRepo) FindByID(ctx context.Context, id int64) (*model.Material, error) {
	var m model.Material
	err := r.db.WithContext(ctx).First(&m, id).Error
	return &m, err
}

func (r *materialRepo) FindByNombre(ctx context.Context, nombre string) (*model.Material, error) {
	var m model.Material
	err := r.db.WithContext(ctx).Where("nombre = ?", nombre).First(&m).Error
	return &m, err
}

func (r *materialRepo) List(ctx context.Context) ([]model.Material, error) {
	var materiales []model.Material
	err := r.db.WithContext(ctx).Order("nombre").Find(&materiales).Error
	return materiales, err
}
