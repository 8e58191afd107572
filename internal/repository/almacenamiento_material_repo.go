package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ItalcolColombia/miit-api-sub000/internal/model"
)

type AlmacenamientoMaterialRepository interface {
	// GetSaldoTx returns decimal.Zero (no error) when the pair has no row yet.
	GetSaldoTx(ctx context.Context, tx *gorm.DB, almacenamientoID, materialID int64) (decimal.Decimal, error)
	// UpdateSaldoTx returns the number of rows touched; 0 means the pair does
	// not exist yet and the caller must InsertTx.
	UpdateSaldoTx(ctx context.Context, tx *gorm.DB, almacenamientoID, materialID int64, saldo decimal.Decimal, usuarioID int64) (int64, error)
	InsertTx(ctx context.Context, tx *gorm.DB, am *model.AlmacenamientoMaterial) error
	ListSaldos(ctx context.Context, almacenamientoID int64) ([]model.AlmacenamientoMaterial, error)
	DB() *gorm.DB
}

type almacenamientoMaterialRepo struct{ db *gorm.DB }

func NewAlmacenamientoMaterialRepository(db *gorm.DB) AlmacenamientoMaterialRepository {
	return &almacenamientoMaterialRepo{db: db}
}

func (r *almacenamientoMaterialRepo) DB() *gorm.DB { return r.db }

func (r *almacenamientoMaterialRepo) GetSaldoTx(ctx context.Context, tx *gorm.DB, almacenamientoID, materialID int64) (decimal.Decimal, error) {
	var am model.AlmacenamientoMaterial
	err := tx.WithContext(ctx).
		Where("almacenamiento_id = ? AND material_id = ?", almacenamientoID, materialID).
		First(&am).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return am.Saldo, nil
}

func (r *almacenamientoMaterialRepo) UpdateSaldoTx(ctx context.Context, tx *gorm.DB, almacenamientoID, materialID int64, saldo decimal.Decimal, usuarioID int64) (int64, error) {
	res := tx.WithContext(ctx).Model(&model.AlmacenamientoMaterial{}).
		Where("almacenamiento_id = ? AND material_id = ?", almacenamientoID, materialID).
		Updates(map[string]any{
			"saldo":      saldo,
			"fecha_hora": time.Now(),
			"usuario_id": usuarioID,
		})
	return res.RowsAffected, res.Error
}

func (r *almacenamientoMaterialRepo) InsertTx(ctx context.Context, tx *gorm.DB, am *model.AlmacenamientoMaterial) error {
	return tx.WithContext(ctx).Create(am).Error
}

func (r *almacenamientoMaterialRepo) ListSaldos(ctx context.Context, almacenamientoID int64) ([]model.AlmacenamientoMaterial, error) {
	var saldos []model.AlmacenamientoMaterial
	q := r.db.WithContext(ctx)
	if almacenamientoID != 0 {
		q = q.Where("almacenamiento_id = ?", almacenamientoID)
	}
	err := q.Order("almacenamiento_id, material_id").Find(&saldos).Error
	return saldos, err
}
