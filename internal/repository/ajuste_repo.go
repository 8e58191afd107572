package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ItalcolColombia/miit-api-sub000/internal/dto"
	"github.com/ItalcolColombia/miit-api-sub000/internal/model"
)

type AjusteRepository interface {
	CreateTx(ctx context.Context, tx *gorm.DB, a *model.Ajuste) error
	SetMovimientoTx(ctx context.Context, tx *gorm.DB, ajusteID, movimientoID int64) error
	FindByID(ctx context.Context, id int64) (*model.Ajuste, error)
	List(ctx context.Context, filter dto.AjusteFilter) ([]model.Ajuste, int64, error)
	DB() *gorm.DB
}

type ajusteRepo struct{ db *gorm.DB }

func NewAjusteRepository(db *gorm.DB) AjusteRepository { return &ajusteRepo{db: db} }

func (r *ajusteRepo) DB() *gorm.DB { return r.db }

func (r *ajusteRepo) CreateTx(ctx context.Context, tx *gorm.DB, a *model.Ajuste) error {
	return tx.WithContext(ctx).Create(a).Error
}

func (r *ajusteRepo) SetMovimientoTx(ctx context.Context, tx *gorm.DB, ajusteID, movimientoID int64) error {
	return tx.WithContext(ctx).Model(&model.Ajuste{}).
		Where("id = ?", ajusteID).Update("movimiento_id", movimientoID).Error
}

func (r *ajusteRepo) FindByID(ctx context.Context, id int64) (*model.Ajuste, error) {
	var a model.Ajuste
	err := r.db.WithContext(ctx).First(&a, id).Error
	return &a, err
}

func (r *ajusteRepo) List(ctx context.Context, filter dto.AjusteFilter) ([]model.Ajuste, int64, error) {
	var ajustes []model.Ajuste
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Ajuste{})
	if filter.AlmacenamientoID != 0 {
		q = q.Where("almacenamiento_id = ?", filter.AlmacenamientoID)
	}
	if filter.MaterialID != 0 {
		q = q.Where("material_id = ?", filter.MaterialID)
	}
	if filter.UsuarioID != 0 {
		q = q.Where("usuario_id = ?", filter.UsuarioID)
	}
	if filter.Desde != "" {
		q = q.Where("fecha_hora >= ?", filter.Desde)
	}
	if filter.Hasta != "" {
		q = q.Where("fecha_hora <= ?", filter.Hasta)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("fecha_hora DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&ajustes).Error
	return ajustes, total, err
}
