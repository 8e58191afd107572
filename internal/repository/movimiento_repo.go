package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ItalcolColombia/miit-api-sub000/internal/dto"
	"github.com/ItalcolColombia/miit-api-sub000/internal/model"
)

type MovimientoRepository interface {
	Create(ctx context.Context, m *model.Movimiento) error
	CreateTx(ctx context.Context, tx *gorm.DB, m *model.Movimiento) error
	FindByID(ctx context.Context, id int64) (*model.Movimiento, error)
	List(ctx context.Context, filter dto.MovimientoFilter) ([]model.Movimiento, int64, error)
}

type movimientoRepo struct{ db *gorm.DB }

func NewMovimientoRepository(db *gorm.DB) MovimientoRepository { return &movimientoRepo{db: db} }

func (r *movimientoRepo) Create(ctx context.Context, m *model.Movimiento) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *movimientoRepo) CreateTx(ctx context.Context, tx *gorm.DB, m *model.Movimiento) error {
	return tx.WithContext(ctx).Create(m).Error
}

func (r *movimientoRepo) FindByID(ctx context.Context, id int64) (*model.Movimiento, error) {
	var m model.Movimiento
	err := r.db.WithContext(ctx).First(&m, id).Error
	return &m, err
}

func (r *movimientoRepo) List(ctx context.Context, filter dto.MovimientoFilter) ([]model.Movimiento, int64, error) {
	var movs []model.Movimiento
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Movimiento{})
	if filter.TransaccionID != 0 {
		q = q.Where("transaccion_id = ?", filter.TransaccionID)
	}
	if filter.AlmacenamientoID != 0 {
		q = q.Where("almacenamiento_id = ?", filter.AlmacenamientoID)
	}
	if filter.MaterialID != 0 {
		q = q.Where("material_id = ?", filter.MaterialID)
	}
	if filter.Tipo != "" {
		q = q.Where("tipo = ?", filter.Tipo)
	}
	if filter.Accion != "" {
		q = q.Where("accion = ?", filter.Accion)
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
		Find(&movs).Error
	return movs, total, err
}
