package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ItalcolColombia/miit-api-sub000/internal/dto"
	"github.com/ItalcolColombia/miit-api-sub000/internal/model"
)

// PendienteAgregado is one row of the accumulation query: all unread pesadas
// of a transacción collapsed into a consecutive range plus a weight total.
type PendienteAgregado struct {
	TransaccionID int64
	PuertoID      string
	Material      string
	Pit           *int
	Primera       float64
	Ultima        float64
	Total         decimal.Decimal
	Cantidad      int64
}

type PesadaRepository interface {
	Create(ctx context.Context, p *model.Pesada) error
	CreateTx(ctx context.Context, tx *gorm.DB, p *model.Pesada) error
	FindByTransaccionConsecutivo(ctx context.Context, transaccionID int64, consecutivo float64) (*model.Pesada, error)
	SumarPendientes(ctx context.Context, puertoID string, tranID *int64) ([]PendienteAgregado, error)
	MarcarLeidasTx(ctx context.Context, tx *gorm.DB, transaccionID int64, primera, ultima float64) (int64, error)
	List(ctx context.Context, filter dto.PesadaFilter) ([]model.Pesada, int64, error)
	DB() *gorm.DB
}

type pesadaRepo struct{ db *gorm.DB }

func NewPesadaRepository(db *gorm.DB) PesadaRepository { return &pesadaRepo{db: db} }

func (r *pesadaRepo) DB() *gorm.DB { return r.db }

func (r *pesadaRepo) Create(ctx context.Context, p *model.Pesada) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *pesadaRepo) CreateTx(ctx context.Context, tx *gorm.DB, p *model.Pesada) error {
	return tx.WithContext(ctx).Create(p).Error
}

func (r *pesadaRepo) FindByTransaccionConsecutivo(ctx context.Context, transaccionID int64, consecutivo float64) (*model.Pesada, error) {
	var p model.Pesada
	err := r.db.WithContext(ctx).
		Where("transaccion_id = ? AND consecutivo = ?", transaccionID, consecutivo).
		First(&p).Error
	return &p, err
}

// SumarPendientes aggregates every unread pesada into one row per transacción:
// first and last consecutivo plus the summed real weight. When puertoID is
// non-empty only the viaje with that port identifier is considered; a non-nil
// tranID narrows the aggregation to that single transacción.
func (r *pesadaRepo) SumarPendientes(ctx context.Context, puertoID string, tranID *int64) ([]PendienteAgregado, error) {
	var rows []PendienteAgregado
	q := r.db.WithContext(ctx).
		Table("pesadas p").
		Select(`p.transaccion_id,
			v.puerto_id,
			m.nombre AS material,
			t.pit,
			MIN(p.consecutivo) AS primera,
			MAX(p.consecutivo) AS ultima,
			SUM(p.peso_real)   AS total,
			COUNT(*)           AS cantidad`).
		Joins("JOIN transacciones t ON t.id = p.transaccion_id").
		Joins("JOIN viajes v ON v.id = t.viaje_id").
		Joins("JOIN materiales m ON m.id = t.material_id").
		Where("p.leido = false")
	if puertoID != "" {
		q = q.Where("v.puerto_id = ?", puertoID)
	}
	if tranID != nil {
		q = q.Where("p.transaccion_id = ?", *tranID)
	}
	err := q.Group("p.transaccion_id, v.puerto_id, m.nombre, t.pit").
		Order("p.transaccion_id").
		Scan(&rows).Error
	return rows, err
}

// MarcarLeidasTx marks exactly the consecutive range that was snapshotted.
// Pesadas arriving after the aggregation keep leido=false for the next cut.
func (r *pesadaRepo) MarcarLeidasTx(ctx context.Context, tx *gorm.DB, transaccionID int64, primera, ultima float64) (int64, error) {
	res := tx.WithContext(ctx).Model(&model.Pesada{}).
		Where("transaccion_id = ? AND consecutivo BETWEEN ? AND ? AND leido = false",
			transaccionID, primera, ultima).
		Update("leido", true)
	return res.RowsAffected, res.Error
}

func (r *pesadaRepo) List(ctx context.Context, filter dto.PesadaFilter) ([]model.Pesada, int64, error) {
	var pesadas []model.Pesada
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Pesada{})
	if filter.TransaccionID != 0 {
		q = q.Where("transaccion_id = ?", filter.TransaccionID)
	}
	if filter.Leido != nil {
		q = q.Where("leido = ?", *filter.Leido)
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
		Find(&pesadas).Error
	return pesadas, total, err
}
