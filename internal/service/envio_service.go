package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ItalcolColombia/miit-api-sub000/internal/dto"
	"github.com/ItalcolColombia/miit-api-sub000/internal/infra"
	"github.com/ItalcolColombia/miit-api-sub000/internal/repository"
)

// Rutas del integrador externo.
const (
	PathEnvioFinal      = "/api/v1/Metalsoft/EnvioFinal"
	PathFinalizaCamion  = "/api/v1/Metalsoft/SendTruckFinalizationLoading"
	PathFinalizaBuque   = "/api/v1/Metalsoft/FinalizaBuque"
	defaultConcurrencia = 5
)

// Modos de entrega.
const (
	ModoList   = "list"
	ModoSingle = "single"
	ModoLast   = "last"
)

type EnvioService interface {
	// NotifyEnvioFinal delivers the items to the external operator in the
	// requested mode. Per-item failures never stop the remaining deliveries;
	// once every item was attempted they surface as one aggregate error with
	// the failure count, alongside the partial response.
	NotifyEnvioFinal(ctx context.Context, puertoID string, items []dto.PesadaAcumuladaResponse, modo string) (*dto.EnvioFinalResponse, error)
	// NotificarFinalizacionCamion / Buque push fleet-finalization events.
	NotificarFinalizacionCamion(ctx context.Context, payload any, referencia string) error
	NotificarFinalizacionBuque(ctx context.Context, payload any, referencia string) error
}

type envioService struct {
	client       *infra.ExternalClient
	cb           *infra.CircuitBreaker
	corteRepo    repository.PesadaCorteRepository
	usuarioRepo  repository.UsuarioRepository
	concurrencia int
}

func NewEnvioService(
	client *infra.ExternalClient,
	cb *infra.CircuitBreaker,
	corteRepo repository.PesadaCorteRepository,
	usuarioRepo repository.UsuarioRepository,
	concurrencia int,
) EnvioService {
	if concurrencia <= 0 {
		concurrencia = defaultConcurrencia
	}
	return &envioService{
		client:       client,
		cb:           cb,
		corteRepo:    corteRepo,
		usuarioRepo:  usuarioRepo,
		concurrencia: concurrencia,
	}
}

func (s *envioService) NotifyEnvioFinal(ctx context.Context, puertoID string, items []dto.PesadaAcumuladaResponse, modo string) (*dto.EnvioFinalResponse, error) {
	switch modo {
	case ModoList, ModoSingle, ModoLast:
	default:
		return nil, wrap(ErrOperacionInvalida, "modo inválido %q: use list|single|last", modo)
	}

	wire := make([]dto.EnvioPesadaItem, 0, len(items))
	for i := range items {
		wire = append(wire, s.toWire(ctx, puertoID, &items[i]))
	}

	// Sin pendientes igual se notifica: el consumidor espera un latido.
	if len(wire) == 0 {
		wire = append(wire, dto.EnvioPesadaItem{
			Voyage:    puertoID,
			Peso:      "0.00",
			PuertoID:  puertoID,
			FechaHora: time.Now().Format(time.RFC3339),
		})
	}

	var errores []string
	enviados := 0

	switch modo {
	case ModoList:
		key := fmt.Sprintf("%s-%d", puertoID, time.Now().Unix())
		if err := s.post(ctx, PathEnvioFinal, wire, key); err != nil {
			errores = append(errores, err.Error())
			s.programarReenvios(ctx, wire, err)
		} else {
			enviados = len(wire)
			s.marcarEnviados(ctx, wire)
		}

	case ModoSingle:
		sem := make(chan struct{}, s.concurrencia)
		var wg sync.WaitGroup
		var mu sync.Mutex
		for i := range wire {
			item := wire[i]
			wg.Add(1)
			sem <- struct{}{}
			go func() {
				defer wg.Done()
				defer func() { <-sem }()
				key := idempotencyKey(puertoID, item)
				if err := s.post(ctx, PathEnvioFinal, item, key); err != nil {
					mu.Lock()
					errores = append(errores, fmt.Sprintf("%s: %v", item.Referencia, err))
					mu.Unlock()
					s.programarReenvios(ctx, []dto.EnvioPesadaItem{item}, err)
					return
				}
				mu.Lock()
				enviados++
				mu.Unlock()
				s.marcarEnviados(ctx, []dto.EnvioPesadaItem{item})
			}()
		}
		wg.Wait()

	case ModoLast:
		last := ultimaPorFecha(wire)
		key := idempotencyKey(puertoID, last)
		if err := s.post(ctx, PathEnvioFinal, last, key); err != nil {
			errores = append(errores, err.Error())
			s.programarReenvios(ctx, []dto.EnvioPesadaItem{last}, err)
		} else {
			enviados = 1
			s.marcarEnviados(ctx, []dto.EnvioPesadaItem{last})
		}
	}

	// Los éxitos ya quedaron marcados enviados; cualquier fallo restante se
	// reporta como un único error agregado con el conteo.
	resp := &dto.EnvioFinalResponse{Enviados: enviados, Modo: modo, Errores: errores}
	if len(errores) > 0 {
		return resp, wrap(ErrEnvioExterno, "%d de %d envíos no llegaron al operador: %s",
			len(errores), len(wire), errores[0])
	}
	return resp, nil
}

func (s *envioService) NotificarFinalizacionCamion(ctx context.Context, payload any, referencia string) error {
	key := fmt.Sprintf("%s-%d", referencia, time.Now().Unix())
	if err := s.post(ctx, PathFinalizaCamion, payload, key); err != nil {
		return wrap(ErrEnvioExterno, "finalización de camión %s: %v", referencia, err)
	}
	return nil
}

func (s *envioService) NotificarFinalizacionBuque(ctx context.Context, payload any, referencia string) error {
	key := fmt.Sprintf("%s-%d", referencia, time.Now().Unix())
	if err := s.post(ctx, PathFinalizaBuque, payload, key); err != nil {
		return wrap(ErrEnvioExterno, "finalización de buque %s: %v", referencia, err)
	}
	return nil
}

// post routes every outbound call through the circuit breaker.
func (s *envioService) post(ctx context.Context, path string, payload any, key string) error {
	return s.cb.Execute(func() error {
		return s.client.Post(ctx, path, payload, key)
	})
}

// idempotencyKey is stable per business item so the receiver deduplicates
// retried deliveries. Placeholder items fall back to voyage+unix time.
func idempotencyKey(puertoID string, item dto.EnvioPesadaItem) string {
	if item.Referencia != "" {
		return fmt.Sprintf("%s-%d", item.Referencia, item.Transaccion)
	}
	return fmt.Sprintf("%s-%d", puertoID, time.Now().Unix())
}

// ultimaPorFecha picks the chronologically-last item; unparsable dates rank
// as epoch-min so any parseable date wins. On ties the first max stays.
func ultimaPorFecha(items []dto.EnvioPesadaItem) dto.EnvioPesadaItem {
	last := items[0]
	lastT := parseFecha(items[0].FechaHora)
	for _, it := range items[1:] {
		if t := parseFecha(it.FechaHora); t.After(lastT) {
			last = it
			lastT = t
		}
	}
	return last
}

func parseFecha(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}

func (s *envioService) toWire(ctx context.Context, puertoID string, a *dto.PesadaAcumuladaResponse) dto.EnvioPesadaItem {
	usuario := ""
	var usuarioID int64
	if a.UsuarioID != nil {
		usuarioID = *a.UsuarioID
		if u, err := s.usuarioRepo.FindByID(ctx, usuarioID); err == nil {
			usuario = u.NickName
		}
	}
	pit := 0
	if a.Pit != nil {
		pit = *a.Pit
	}
	return dto.EnvioPesadaItem{
		Voyage:      puertoID,
		Referencia:  a.Referencia,
		Consecutivo: a.Consecutivo,
		Transaccion: a.Transaccion,
		Pit:         pit,
		Material:    a.Material,
		Peso:        a.Peso.StringFixed(2),
		PuertoID:    a.PuertoID,
		FechaHora:   a.FechaHora,
		UsuarioID:   usuarioID,
		Usuario:     usuario,
	}
}

func (s *envioService) marcarEnviados(ctx context.Context, items []dto.EnvioPesadaItem) {
	for _, it := range items {
		if it.Referencia == "" {
			continue // placeholder heartbeat has no corte row
		}
		corte, err := s.corteRepo.FindByRef(ctx, it.Referencia)
		if err != nil {
			log.Warn().Err(err).Str("ref", it.Referencia).Msg("corte no encontrado al marcar enviado")
			continue
		}
		if err := s.corteRepo.MarkEnviado(ctx, corte.ID); err != nil {
			log.Error().Err(err).Str("ref", it.Referencia).Msg("no se pudo marcar corte enviado")
		}
	}
}

// programarReenvios schedules the failed items for the resend cron.
// Permanent 4xx rejections are not rescheduled.
func (s *envioService) programarReenvios(ctx context.Context, items []dto.EnvioPesadaItem, cause error) {
	var se *infra.StatusError
	if errors.As(cause, &se) && !se.Retryable() {
		log.Warn().Int("status", se.StatusCode).Msg("rechazo permanente del operador, sin reenvío")
		return
	}
	proximo := time.Now().Add(time.Minute)
	for _, it := range items {
		if it.Referencia == "" {
			continue
		}
		corte, err := s.corteRepo.FindByRef(ctx, it.Referencia)
		if err != nil {
			continue
		}
		if err := s.corteRepo.RegistrarFallo(ctx, corte.ID, cause.Error(), corte.ReintentosEnvio, &proximo); err != nil {
			log.Error().Err(err).Str("ref", it.Referencia).Msg("no se pudo programar reenvío")
		}
	}
}
