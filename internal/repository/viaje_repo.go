package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ItalcolColombia/miit-api-sub000/internal/model"
)

type ViajeRepository interface {
	Create(ctx context.Context, v *model.Viaje) error
	CreateTx(ctx context.Context, tx *gorm.DB, v *model.Viaje) error
	FindByID(ctx context.Context, id int64) (*model.Viaje, error)
	FindByPuertoID(ctx context.Context, puertoID string) (*model.Viaje, error)
	Update(ctx context.Context, v *model.Viaje) error
	List(ctx context.Context, page, limit int) ([]model.Viaje, int64, error)
	DB() *gorm.DB
}

type viajeRepo struct{ db *gorm.DB }

func NewViajeRepository(db *gorm.DB) ViajeRepository { return &viajeRepo{db: db} }

func (r *viajeRepo) DB() *gorm.DB { return r.db }

func (r *viajeRepo) Create(ctx context.Context, v *model.Viaje) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *viajeRepo) CreateTx(ctx context.Context, tx *gorm.DB, v *model.Viaje) error {
	return tx.WithContext(ctx).Create(v).Error
}

func (r *viajeRepo) FindByID(ctx context.Context, id int64) (*model.Viaje, error) {
	var v model.Viaje
	err := r.db.WithContext(ctx).Preload("Flota").First(&v, id).Error
	return &v, err
}

func (r *viajeRepo) FindByPuertoID(ctx context.Context, puertoID string) (*model.Viaje, error) {
	var v model.Viaje
	err := r.db.WithContext(ctx).Preload("Flota").Where("puerto_id = ?", puertoID).First(&v).Error
	return &v, err
}

func (r *viajeRepo) Update(ctx context.Context, v *model.Viaje) error {
	return r.db.WithContext(ctx).Save(v).Error
}

func (r *viajeRepo) List(ctx context.Context, page, limit int) ([]model.Viaje, int64, error) {
	var viajes []model.Viaje
	var total int64
	offset := (page - 1) * limit

	q := r.db.WithContext(ctx).Model(&model.Viaje{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Flota").Order("id DESC").Offset(offset).Limit(limit).Find(&viajes).Error
	return viajes, total, err
}
