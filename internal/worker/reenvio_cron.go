package worker

// reenvio_cron.go
// Background goroutine that periodically re-attempts the external delivery of
// cortes stuck with enviado=false and a proximo_reenvio in the past. Uses the
// Circuit Breaker to avoid hammering a downed operator API.

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/ItalcolColombia/miit-api-sub000/internal/dto"
	"github.com/ItalcolColombia/miit-api-sub000/internal/infra"
	"github.com/ItalcolColombia/miit-api-sub000/internal/model"
	"github.com/ItalcolColombia/miit-api-sub000/internal/repository"
)

const (
	reenvioTickInterval = 30 * time.Second
	reenvioBatchSize    = 10

	// MaxReenvioIntentos counts cron re-deliveries, not the in-call HTTP
	// retries (those are the client's own 3 attempts).
	MaxReenvioIntentos = 5

	// QueueEnvio exists only as a DLQ suffix; no worker drains jobs:envio.
	QueueEnvio = "jobs:envio"

	pathEnvioFinal = "/api/v1/Metalsoft/EnvioFinal"
)

// ReenvioCronConfig holds all dependencies for the resend goroutine.
type ReenvioCronConfig struct {
	CorteRepo   repository.PesadaCorteRepository
	UsuarioRepo repository.UsuarioRepository
	Client      *infra.ExternalClient
	CB          *infra.CircuitBreaker
	RDB         *redis.Client
}

// StartReenvioCron launches a background goroutine that ticks every 30s,
// queries pending cortes, and re-attempts delivery through the CB.
// It respects the context for graceful shutdown.
func StartReenvioCron(ctx context.Context, cfg ReenvioCronConfig) {
	go func() {
		ticker := time.NewTicker(reenvioTickInterval)
		defer ticker.Stop()

		log.Info().Msg("reenvio_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("reenvio_cron: shutting down")
				return
			case <-ticker.C:
				processReenvios(ctx, cfg)
			}
		}
	}()
}

func processReenvios(ctx context.Context, cfg ReenvioCronConfig) {
	// If CB is open, skip entirely — don't hammer a downed API
	if cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("reenvio_cron: circuit breaker is open, skipping tick")
		return
	}

	now := time.Now()
	cortes, err := cfg.CorteRepo.ListPendientesReenvio(ctx, now, reenvioBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("reenvio_cron: failed to query pending cortes")
		return
	}
	if len(cortes) == 0 {
		return
	}

	log.Info().Int("count", len(cortes)).Msg("reenvio_cron: processing pending cortes")

	for i := range cortes {
		corte := &cortes[i]

		// Check CB state before each call — it may have tripped mid-batch
		if cfg.CB.State() == infra.CBOpen {
			log.Debug().Msg("reenvio_cron: circuit breaker opened mid-batch, stopping")
			return
		}

		item := corteToEnvioItem(ctx, cfg, corte)
		key := fmt.Sprintf("%s-%d", corte.Ref, corte.Transaccion)

		cbErr := cfg.CB.Execute(func() error {
			return cfg.Client.Post(ctx, pathEnvioFinal, []dto.EnvioPesadaItem{item}, key)
		})

		if cbErr != nil {
			intentos := corte.ReintentosEnvio + 1
			if intentos >= MaxReenvioIntentos {
				// Stop scheduling; the corte stays enviado=false and
				// recoverable by hand from the DLQ entry.
				payload := fmt.Sprintf(`{"corte_id":%d,"ref":%q,"transaccion":%d}`,
					corte.ID, corte.Ref, corte.Transaccion)
				SendToDLQ(ctx, cfg.RDB, QueueEnvio, "envio_corte", []byte(payload),
					fmt.Sprintf("max reenvíos (%d): %v", MaxReenvioIntentos, cbErr), intentos)
				if err := cfg.CorteRepo.RegistrarFallo(ctx, corte.ID, cbErr.Error(), intentos, nil); err != nil {
					log.Error().Err(err).Int64("corte_id", corte.ID).Msg("reenvio_cron: update failed")
				}
				continue
			}

			proximo := now.Add(computeReenvioBackoff(intentos))
			if err := cfg.CorteRepo.RegistrarFallo(ctx, corte.ID, cbErr.Error(), intentos, &proximo); err != nil {
				log.Error().Err(err).Int64("corte_id", corte.ID).Msg("reenvio_cron: update failed")
			}
			log.Warn().
				Int64("corte_id", corte.ID).
				Int("intentos", intentos).
				Time("proximo_reenvio", proximo).
				Msg("reenvio_cron: delivery failed, rescheduled")
			continue
		}

		if err := cfg.CorteRepo.MarkEnviado(ctx, corte.ID); err != nil {
			log.Error().Err(err).Int64("corte_id", corte.ID).Msg("reenvio_cron: mark enviado failed")
			continue
		}
		log.Info().
			Int64("corte_id", corte.ID).
			Str("ref", corte.Ref).
			Int("reintentos", corte.ReintentosEnvio).
			Msg("reenvio_cron: corte delivered after retry")
	}
}

// computeReenvioBackoff doubles per attempt starting at one minute: 1m, 2m, 4m…
func computeReenvioBackoff(intentos int) time.Duration {
	if intentos < 1 {
		intentos = 1
	}
	if intentos > 6 {
		intentos = 6
	}
	return time.Duration(1<<(intentos-1)) * time.Minute
}

func corteToEnvioItem(ctx context.Context, cfg ReenvioCronConfig, corte *model.PesadaCorte) dto.EnvioPesadaItem {
	usuario := ""
	var usuarioID int64
	if corte.UsuarioID != nil {
		usuarioID = *corte.UsuarioID
		if u, err := cfg.UsuarioRepo.FindByID(ctx, usuarioID); err == nil {
			usuario = u.NickName
		}
	}
	material := ""
	if corte.Material != nil {
		material = *corte.Material
	}
	pit := 0
	if corte.Pit != nil {
		pit = *corte.Pit
	}
	peso := "0.00"
	if corte.Peso != nil {
		peso = corte.Peso.StringFixed(2)
	}
	return dto.EnvioPesadaItem{
		Voyage:      corte.PuertoID,
		Referencia:  corte.Ref,
		Consecutivo: corte.Consecutivo,
		Transaccion: corte.Transaccion,
		Pit:         pit,
		Material:    material,
		Peso:        peso,
		PuertoID:    corte.PuertoID,
		FechaHora:   corte.FechaHora.Format(time.RFC3339),
		UsuarioID:   usuarioID,
		Usuario:     usuario,
	}
}
