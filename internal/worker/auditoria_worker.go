package worker

// auditoria_worker.go
// Drains the audit outbox (QueueAuditoria). Entries land here only after the
// in-transaction write AND the fresh-session replay both failed, so this is
// the third and last automatic attempt before the DLQ.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/ItalcolColombia/miit-api-sub000/internal/model"
	"github.com/ItalcolColombia/miit-api-sub000/internal/repository"
)

const maxAuditoriaAttempts = 3

// AuditoriaJobPayload mirrors model.LogAuditoria for transport through Redis.
type AuditoriaJobPayload struct {
	Entidad       string          `json:"entidad"`
	EntidadID     string          `json:"entidad_id"`
	Accion        string          `json:"accion"`
	ValorAnterior json.RawMessage `json:"valor_anterior,omitempty"`
	ValorNuevo    json.RawMessage `json:"valor_nuevo,omitempty"`
	UsuarioID     *int64          `json:"usuario_id,omitempty"`
	FechaHora     string          `json:"fecha_hora"` // ISO 8601, original event time
}

type AuditoriaWorker struct {
	repo       repository.AuditoriaRepository
	rdb        *redis.Client
	dispatcher *Dispatcher
}

func NewAuditoriaWorker(repo repository.AuditoriaRepository, rdb *redis.Client, dispatcher *Dispatcher) *AuditoriaWorker {
	return &AuditoriaWorker{repo: repo, rdb: rdb, dispatcher: dispatcher}
}

// Process writes one outbox entry to logs_auditoria. Failures re-enqueue the
// job; after maxAuditoriaAttempts it moves to the DLQ.
func (w *AuditoriaWorker) Process(ctx context.Context, job Job) {
	var payload AuditoriaJobPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		log.Error().Err(err).Msg("auditoria_worker: invalid payload")
		return
	}

	fechaHora := time.Now()
	if t, err := time.Parse(time.RFC3339, payload.FechaHora); err == nil {
		fechaHora = t
	}

	entry := &model.LogAuditoria{
		Entidad:       payload.Entidad,
		EntidadID:     payload.EntidadID,
		Accion:        payload.Accion,
		ValorAnterior: payload.ValorAnterior,
		ValorNuevo:    payload.ValorNuevo,
		UsuarioID:     payload.UsuarioID,
		FechaHora:     fechaHora,
	}

	if err := w.repo.Create(ctx, entry); err != nil {
		if job.Attempts+1 >= maxAuditoriaAttempts {
			SendToDLQ(ctx, w.rdb, QueueAuditoria, job.Type, job.Payload,
				"db write failed after outbox retries: "+err.Error(), job.Attempts+1)
			return
		}
		if reqErr := w.dispatcher.requeue(ctx, QueueAuditoria, job); reqErr != nil {
			log.Error().Err(reqErr).
				Str("entidad", payload.Entidad).
				Str("entidad_id", payload.EntidadID).
				Msg("auditoria_worker: requeue failed, entry lost")
		}
		return
	}

	log.Info().
		Str("entidad", payload.Entidad).
		Str("entidad_id", payload.EntidadID).
		Int("attempts", job.Attempts+1).
		Msg("auditoria_worker: deferred audit entry persisted")
}
