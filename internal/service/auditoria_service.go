package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/ItalcolColombia/miit-api-sub000/internal/dto"
	"github.com/ItalcolColombia/miit-api-sub000/internal/model"
	"github.com/ItalcolColombia/miit-api-sub000/internal/repository"
	"github.com/ItalcolColombia/miit-api-sub000/internal/worker"
)

// ── Auditoría ─────────────────────────────────────────────────────────────────
// Cadena de degradación: escritura dentro de la transacción de negocio →
// replay en sesión fresca tras el commit → outbox redis (jobs:auditoria) →
// DLQ. Un fallo de auditoría jamás revierte la operación principal.

type AuditoriaService interface {
	// RegistrarTx intenta escribir el log dentro de tx. Si falla, devuelve la
	// entrada para que el llamador la difiera tras el commit.
	RegistrarTx(ctx context.Context, tx *gorm.DB, entry model.LogAuditoria) *model.LogAuditoria
	// RegistrarDiferidos drena las entradas que no entraron en la transacción:
	// sesión fresca primero, outbox redis como último recurso.
	RegistrarDiferidos(ctx context.Context, entries []model.LogAuditoria)
	List(ctx context.Context, filter dto.AuditoriaFilter) (*dto.AuditoriaListResponse, error)
}

type auditoriaService struct {
	repo       repository.AuditoriaRepository
	dispatcher *worker.Dispatcher
}

func NewAuditoriaService(repo repository.AuditoriaRepository, dispatcher *worker.Dispatcher) AuditoriaService {
	return &auditoriaService{repo: repo, dispatcher: dispatcher}
}

// Snapshot serializes an entity for the audit payload. When the full value
// cannot be marshalled it degrades to a minimal {id, key: value} document so
// the audit row is never empty.
func Snapshot(full any, id any, key string, value any) []byte {
	if data, err := json.Marshal(full); err == nil {
		return data
	}
	minimal := map[string]any{"id": id, key: fmt.Sprint(value)}
	data, err := json.Marshal(minimal)
	if err != nil {
		return []byte(fmt.Sprintf(`{"id":%q}`, fmt.Sprint(id)))
	}
	return data
}

// NuevaEntrada builds a CREATE audit entry for an entity snapshot.
func NuevaEntrada(entidad string, entidadID int64, valorNuevo []byte, usuarioID *int64) model.LogAuditoria {
	return model.LogAuditoria{
		Entidad:    entidad,
		EntidadID:  fmt.Sprintf("%d", entidadID),
		Accion:     model.AuditCreate,
		ValorNuevo: valorNuevo,
		FechaHora:  time.Now(),
		UsuarioID:  usuarioID,
	}
}

func (s *auditoriaService) RegistrarTx(ctx context.Context, tx *gorm.DB, entry model.LogAuditoria) *model.LogAuditoria {
	if tx == nil {
		return &entry
	}
	if err := s.repo.CreateTx(ctx, tx, &entry); err != nil {
		log.Error().Err(err).
			Str("entidad", entry.Entidad).
			Str("entidad_id", entry.EntidadID).
			Msg("auditoría en transacción falló, se difiere")
		return &entry
	}
	return nil
}

func (s *auditoriaService) RegistrarDiferidos(ctx context.Context, entries []model.LogAuditoria) {
	for i := range entries {
		entry := entries[i]
		entry.ID = 0
		if err := s.repo.CreateFresh(ctx, &entry); err == nil {
			log.Info().
				Str("entidad", entry.Entidad).
				Str("entidad_id", entry.EntidadID).
				Msg("auditoría diferida registrada en sesión fresca")
			continue
		} else {
			log.Error().Err(err).
				Str("entidad", entry.Entidad).
				Str("entidad_id", entry.EntidadID).
				Msg("sesión fresca falló, se encola en outbox")
		}

		if s.dispatcher == nil {
			continue
		}
		payload := worker.AuditoriaJobPayload{
			Entidad:       entry.Entidad,
			EntidadID:     entry.EntidadID,
			Accion:        entry.Accion,
			ValorAnterior: entry.ValorAnterior,
			ValorNuevo:    entry.ValorNuevo,
			UsuarioID:     entry.UsuarioID,
			FechaHora:     entry.FechaHora.Format(time.RFC3339),
		}
		if err := s.dispatcher.EnqueueAuditoria(ctx, payload); err != nil {
			// Se pierde un registro de auditoría, nunca la operación.
			log.Error().Err(err).
				Str("entidad", entry.Entidad).
				Str("entidad_id", entry.EntidadID).
				Msg("outbox de auditoría falló, entrada perdida")
		}
	}
}

func (s *auditoriaService) List(ctx context.Context, filter dto.AuditoriaFilter) (*dto.AuditoriaListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	logs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.LogAuditoriaResponse, 0, len(logs))
	for _, l := range logs {
		items = append(items, dto.LogAuditoriaResponse{
			ID:            l.ID,
			Entidad:       l.Entidad,
			EntidadID:     l.EntidadID,
			Accion:        l.Accion,
			ValorAnterior: l.ValorAnterior,
			ValorNuevo:    l.ValorNuevo,
			UsuarioID:     l.UsuarioID,
			FechaHora:     l.FechaHora.Format(time.RFC3339),
		})
	}
	return &dto.AuditoriaListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}
