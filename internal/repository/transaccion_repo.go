package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ItalcolColombia/miit-api-sub000/internal/dto"
	"github.com/ItalcolColombia/miit-api-sub000/internal/model"
)

type TransaccionRepository interface {
	Create(ctx context.Context, t *model.Transaccion) error
	CreateTx(ctx context.Context, tx *gorm.DB, t *model.Transaccion) error
	FindByID(ctx context.Context, id int64) (*model.Transaccion, error)
	// FindUltimaByViaje returns the most recent transacción of a viaje.
	FindUltimaByViaje(ctx context.Context, viajeID int64) (*model.Transaccion, error)
	UpdateEstado(ctx context.Context, id int64, estado string) error
	MarkLeido(ctx context.Context, id int64) error
	List(ctx context.Context, filter dto.TransaccionFilter) ([]model.Transaccion, int64, error)
	DB() *gorm.DB
}

type transaccionRepo struct{ db *gorm.DB }

func NewTransaccionRepository(db *gorm.DB) TransaccionRepository { return &transaccionRepo{db: db} }

func (r *transaccionRepo) DB() *gorm.DB { return r.db }

func (r *transaccionRepo) Create(ctx context.Context, t *model.Transaccion) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *transaccionRepo) CreateTx(ctx context.Context, tx *gorm.DB, t *model.Transaccion) error {
	return tx.WithContext(ctx).Create(t).Error
}

func (r *transaccionRepo) FindByID(ctx context.Context, id int64) (*model.Transaccion, error) {
	var t model.Transaccion
	err := r.db.WithContext(ctx).Preload("Material").First(&t, id).Error
	return &t, err
}

func (r *transaccionRepo) FindUltimaByViaje(ctx context.Context, viajeID int64) (*model.Transaccion, error) {
	var t model.Transaccion
	err := r.db.WithContext(ctx).
		Where("viaje_id = ?", viajeID).
		Order("id DESC").
		First(&t).Error
	return &t, err
}

func (r *transaccionRepo) UpdateEstado(ctx context.Context, id int64, estado string) error {
	return r.db.WithContext(ctx).Model(&model.Transaccion{}).
		Where("id = ?", id).Update("estado", estado).Error
}

func (r *transaccionRepo) MarkLeido(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&model.Transaccion{}).
		Where("id = ?", id).Update("leido", true).Error
}

func (r *transaccionRepo) List(ctx context.Context, filter dto.TransaccionFilter) ([]model.Transaccion, int64, error) {
	var trans []model.Transaccion
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Transaccion{})
	if filter.ViajeID != 0 {
		q = q.Where("viaje_id = ?", filter.ViajeID)
	}
	if filter.Estado != "" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.Tipo != "" {
		q = q.Where("tipo = ?", filter.Tipo)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Material").
		Order("id DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&trans).Error
	return trans, total, err
}
