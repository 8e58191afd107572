package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ItalcolColombia/miit-api-sub000/internal/model"
)

type BlRepository interface {
	CreateTx(ctx context.Context, tx *gorm.DB, b *model.Bl) error
	FindByNoBl(ctx context.Context, noBl string) (*model.Bl, error)
	ListByViaje(ctx context.Context, viajeID int64) ([]model.Bl, error)
	UpdateEstadoOperador(ctx context.Context, id int64, estado bool) error
	UpdateEstadoPuerto(ctx context.Context, id int64, estado bool) error
	DB() *gorm.DB
}

type blRepo struct{ db *gorm.DB }

func NewBlRepository(db *gorm.DB) BlRepository { return &blRepo{db: db} }

func (r *blRepo) DB() *gorm.DB { return r.db }

func (r *blRepo) CreateTx(ctx context.Context, tx *gorm.DB, b *model.Bl) error {
	return tx.WithContext(ctx).Create(b).Error
}

func (r *blRepo) FindByNoBl(ctx context.Context, noBl string) (*model.Bl, error) {
	var b model.Bl
	err := r.db.WithContext(ctx).Where("no_bl = ?", noBl).First(&b).Error
	return &b, err
}

func (r *blRepo) ListByViaje(ctx context.Context, viajeID int64) ([]model.Bl, error) {
	var bls []model.Bl
	err := r.db.WithContext(ctx).Where("viaje_id = ?", viajeID).Order("no_bl").Find(&bls).Error
	return bls, err
}

func (r *blRepo) UpdateEstadoOperador(ctx context.Context, id int64, estado bool) error {
	return r.db.WithContext(ctx).Model(&model.Bl{}).
		Where("id = ?", id).Update("estado_operador", estado).Error
}

func (r *blRepo) UpdateEstadoPuerto(ctx context.Context, id int64, estado bool) error {
	return r.db.WithContext(ctx).Model(&model.Bl{}).
		Where("id = ?", id).Update("estado_puerto", estado).Error
}

// ClienteRepository resolves BL consignees.
type ClienteRepository interface {
	Create(ctx context.Context, c *model.Cliente) error
	FindByNombre(ctx context.Context, nombre string) (*model.Cliente, error)
	FindByID(ctx context.Context, id int64) (*model.Cliente, error)
}

type clienteRepo struct{ db *gorm.DB }

func NewClienteRepository(db *gorm.DB) ClienteRepository { return &clienteRepo{db: db} }

func (r *clienteRepo) Create(ctx context.Context, c *model.Cliente) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *clienteRepo) FindByNombre(ctx context.Context, nombre string) (*model.Cliente, error) {
	var c model.Cliente
	err := r.db.WithContext(ctx).Where("nombre = ?", nombre).First(&c).Error
	return &c, err
}

func (r *clienteRepo) FindByID(ctx context.Context, id int64) (*model.Cliente, error) {
	var c model.Cliente
	err := r.db.WithContext(ctx).First(&c, id).Error
	return &c, err
}
