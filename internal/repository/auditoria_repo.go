package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ItalcolColombia/miit-api-sub000/internal/dto"
	"github.com/ItalcolColombia/miit-api-sub000/internal/model"
)

type AuditoriaRepository interface {
	Create(ctx context.Context, l *model.LogAuditoria) error
	CreateTx(ctx context.Context, tx *gorm.DB, l *model.LogAuditoria) error
	// CreateFresh writes on an independent session, detached from any
	// request-bound transaction that may already be poisoned.
	CreateFresh(ctx context.Context, l *model.LogAuditoria) error
	List(ctx context.Context, filter dto.AuditoriaFilter) ([]model.LogAuditoria, int64, error)
	DB() *gorm.DB
}

type auditoriaRepo struct{ db *gorm.DB }

func NewAuditoriaRepository(db *gorm.DB) AuditoriaRepository { return &auditoriaRepo{db: db} }

func (r *auditoriaRepo) DB() *gorm.DB { return r.db }

func (r *auditoriaRepo) Create(ctx context.Context, l *model.LogAuditoria) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *auditoriaRepo) CreateTx(ctx context.Context, tx *gorm.DB, l *model.LogAuditoria) error {
	return tx.WithContext(ctx).Create(l).Error
}

func (r *auditoriaRepo) CreateFresh(ctx context.Context, l *model.LogAuditoria) error {
	return r.db.Session(&gorm.Session{NewDB: true}).WithContext(ctx).Create(l).Error
}

func (r *auditoriaRepo) List(ctx context.Context, filter dto.AuditoriaFilter) ([]model.LogAuditoria, int64, error) {
	var logs []model.LogAuditoria
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.LogAuditoria{})
	if filter.Entidad != "" {
		q = q.Where("entidad = ?", filter.Entidad)
	}
	if filter.EntidadID != "" {
		q = q.Where("entidad_id = ?", filter.EntidadID)
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
		Find(&logs).Error
	return logs, total, err
}
