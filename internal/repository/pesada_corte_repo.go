package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/ItalcolColombia/miit-api-sub000/internal/model"
)

type PesadaCorteRepository interface {
	// CreatePendingTx inserts the corte with an empty Ref; the definitive
	// reference embeds the generated row id and is assigned afterwards.
	CreatePendingTx(ctx context.Context, tx *gorm.DB, c *model.PesadaCorte) error
	AssignRefTx(ctx context.Context, tx *gorm.DB, id int64, ref string) error
	CountByTransaccionTx(ctx context.Context, tx *gorm.DB, puertoID string, transaccion int64) (int64, error)
	FindByPuertoTransaccion(ctx context.Context, puertoID string, transaccion int64) ([]model.PesadaCorte, error)
	FindByRef(ctx context.Context, ref string) (*model.PesadaCorte, error)
	GetLastForTransaccion(ctx context.Context, puertoID string, transaccion int64) (*model.PesadaCorte, error)
	ListPendientesReenvio(ctx context.Context, now time.Time, limit int) ([]model.PesadaCorte, error)
	MarkEnviado(ctx context.Context, id int64) error
	RegistrarFallo(ctx context.Context, id int64, errMsg string, intentos int, proximo *time.Time) error
	DB() *gorm.DB
}

type pesadaCorteRepo struct{ db *gorm.DB }

func NewPesadaCorteRepository(db *gorm.DB) PesadaCorteRepository { return &pesadaCorteRepo{db: db} }

func (r *pesadaCorteRepo) DB() *gorm.DB { return r.db }

func (r *pesadaCorteRepo) CreatePendingTx(ctx context.Context, tx *gorm.DB, c *model.PesadaCorte) error {
	return tx.WithContext(ctx).Create(c).Error
}

func (r *pesadaCorteRepo) AssignRefTx(ctx context.Context, tx *gorm.DB, id int64, ref string) error {
	return tx.WithContext(ctx).Model(&model.PesadaCorte{}).
		Where("id = ?", id).Update("ref", ref).Error
}

func (r *pesadaCorteRepo) CountByTransaccionTx(ctx context.Context, tx *gorm.DB, puertoID string, transaccion int64) (int64, error) {
	var n int64
	err := tx.WithContext(ctx).Model(&model.PesadaCorte{}).
		Where("puerto_id = ? AND transaccion = ?", puertoID, transaccion).
		Count(&n).Error
	return n, err
}

func (r *pesadaCorteRepo) FindByPuertoTransaccion(ctx context.Context, puertoID string, transaccion int64) ([]model.PesadaCorte, error) {
	var cortes []model.PesadaCorte
	err := r.db.WithContext(ctx).
		Where("puerto_id = ? AND transaccion = ?", puertoID, transaccion).
		Order("consecutivo").
		Find(&cortes).Error
	return cortes, err
}

func (r *pesadaCorteRepo) FindByRef(ctx context.Context, ref string) (*model.PesadaCorte, error) {
	var c model.PesadaCorte
	err := r.db.WithContext(ctx).Where("ref = ?", ref).First(&c).Error
	return &c, err
}

// GetLastForTransaccion returns the most recent corte by fecha_hora, which is
// the one the final-batch suffix decorates.
func (r *pesadaCorteRepo) GetLastForTransaccion(ctx context.Context, puertoID string, transaccion int64) (*model.PesadaCorte, error) {
	var c model.PesadaCorte
	err := r.db.WithContext(ctx).
		Where("puerto_id = ? AND transaccion = ?", puertoID, transaccion).
		Order("fecha_hora DESC").
		First(&c).Error
	return &c, err
}

// ListPendientesReenvio returns cortes whose delivery failed and whose backoff
// window already elapsed. Served by the partial index idx_cortes_pendientes_reenvio.
func (r *pesadaCorteRepo) ListPendientesReenvio(ctx context.Context, now time.Time, limit int) ([]model.PesadaCorte, error) {
	var cortes []model.PesadaCorte
	err := r.db.WithContext(ctx).
		Where("enviado = false AND proximo_reenvio IS NOT NULL AND proximo_reenvio <= ?", now).
		Order("proximo_reenvio").
		Limit(limit).
		Find(&cortes).Error
	return cortes, err
}

func (r *pesadaCorteRepo) MarkEnviado(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&model.PesadaCorte{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"enviado":         true,
			"proximo_reenvio": nil,
			"ultimo_error":    nil,
		}).Error
}

func (r *pesadaCorteRepo) RegistrarFallo(ctx context.Context, id int64, errMsg string, intentos int, proximo *time.Time) error {
	return r.db.WithContext(ctx).Model(&model.PesadaCorte{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"reintentos_envio": intentos,
			"proximo_reenvio":  proximo,
			"ultimo_error":     errMsg,
		}).Error
}
