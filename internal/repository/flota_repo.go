package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ItalcolColombia/miit-api-sub000/internal/model"
)

type FlotaRepository interface {
	CreateTx(ctx context.Context, tx *gorm.DB, f *model.Flota) error
	FindByID(ctx context.Context, id int64) (*model.Flota, error)
	FindByReferencia(ctx context.Context, referencia string) (*model.Flota, error)
	Update(ctx context.Context, f *model.Flota) error
	UpdateEstadoOperador(ctx context.Context, id int64, estado bool) error

	CreateBuqueTx(ctx context.Context, tx *gorm.DB, b *model.Buque) error
	FindBuqueByNombre(ctx context.Context, nombre string) (*model.Buque, error)
	CreateCamionTx(ctx context.Context, tx *gorm.DB, c *model.Camion) error
	FindCamionByPlaca(ctx context.Context, placa string) (*model.Camion, error)
	DB() *gorm.DB
}

type flotaRepo struct{ db *gorm.DB }

func NewFlotaRepository(db *gorm.DB) FlotaRepository { return &flotaRepo{db: db} }

func (r *flotaRepo) DB() *gorm.DB { return r.db }

func (r *flotaRepo) CreateTx(ctx context.Context, tx *gorm.DB, f *model.Flota) error {
	return tx.WithContext(ctx).Create(f).Error
}

func (r *flotaRepo) FindByID(ctx context.Context, id int64) (*model.Flota, error) {
	var f model.Flota
	err := r.db.WithContext(ctx).First(&f, id).Error
	return &f, err
}

func (r *flotaRepo) FindByReferencia(ctx context.Context, referencia string) (*model.Flota, error) {
	var f model.Flota
	err := r.db.WithContext(ctx).Where("referencia = ?", referencia).First(&f).Error
	return &f, err
}

func (r *flotaRepo) Update(ctx context.Context, f *model.Flota) error {
	return r.db.WithContext(ctx).Save(f).Error
}

func (r *flotaRepo) UpdateEstadoOperador(ctx context.Context, id int64, estado bool) error {
	return r.db.WithContext(ctx).Model(&model.Flota{}).
		Where("id = ?", id).Update("estado_operador", estado).Error
}

func (r *flotaRepo) CreateBuqueTx(ctx context.Context, tx *gorm.DB, b *model.Buque) error {
	return tx.WithContext(ctx).Create(b).Error
}

func (r *flotaRepo) FindBuqueByNombre(ctx context.Context, nombre string) (*model.Buque, error) {
	var b model.Buque
	err := r.db.WithContext(ctx).Where("nombre = ?", nombre).First(&b).Error
	return &b, err
}

func (r *flotaRepo) CreateCamionTx(ctx context.Context, tx *gorm.DB, c *model.Camion) error {
	return tx.WithContext(ctx).Create(c).Error
}

func (r *flotaRepo) FindCamionByPlaca(ctx context.Context, placa string) (*model.Camion, error) {
	var c model.Camion
	err := r.db.WithContext(ctx).Where("placa = ?", placa).First(&c).Error
	return &c, err
}
