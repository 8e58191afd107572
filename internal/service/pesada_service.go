package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/ItalcolColombia/miit-api-sub000/internal/dto"
	"github.com/ItalcolColombia/miit-api-sub000/internal/model"
	"github.com/ItalcolColombia/miit-api-sub000/internal/repository"
)

type PesadaService interface {
	// CrearPesadaSiNoExiste rejects duplicates of (transaccion, consecutivo).
	CrearPesadaSiNoExiste(ctx context.Context, usuarioID *int64, req dto.CrearPesadaRequest) (*dto.PesadaResponse, error)
	// GetPesadasAcumuladas collapses every unread pesada of the port/voyage
	// into immutable cortes and marks the consumed ranges as read. A non-nil
	// tranID restricts the cut to that single transacción.
	GetPesadasAcumuladas(ctx context.Context, puertoID string, tranID *int64, usuarioID *int64) ([]dto.PesadaAcumuladaResponse, error)
	// GetPendientesUltimaTransaccion previews the undelivered cortes of the
	// voyage's most recent transacción.
	GetPendientesUltimaTransaccion(ctx context.Context, puertoID string) ([]dto.PesadaAcumuladaResponse, error)
	// GetLastCorteForTransaccion returns the last corte reference with the
	// final-batch suffix appended.
	GetLastCorteForTransaccion(ctx context.Context, puertoID string, transaccion int64) (string, error)
	// GenPesadaIdentificador builds a human-readable provisional identifier.
	// The disambiguator is a corte count, not a reserved id: two concurrent
	// calls can observe the same count. Durable uniqueness lives in the corte
	// reference, which embeds the row id.
	GenPesadaIdentificador(ctx context.Context, prefix, puertoID string, transaccion int64) (string, error)
	ListPesadas(ctx context.Context, filter dto.PesadaFilter) (*dto.PesadaListResponse, error)
}

type pesadaService struct {
	repo      repository.PesadaRepository
	corteRepo repository.PesadaCorteRepository
	viajeRepo repository.ViajeRepository
	tranRepo  repository.TransaccionRepository
}

func NewPesadaService(
	repo repository.PesadaRepository,
	corteRepo repository.PesadaCorteRepository,
	viajeRepo repository.ViajeRepository,
	tranRepo repository.TransaccionRepository,
) PesadaService {
	return &pesadaService{repo: repo, corteRepo: corteRepo, viajeRepo: viajeRepo, tranRepo: tranRepo}
}

func uuid8() string { return uuid.NewString()[:8] }

func (s *pesadaService) CrearPesadaSiNoExiste(ctx context.Context, usuarioID *int64, req dto.CrearPesadaRequest) (*dto.PesadaResponse, error) {
	if _, err := s.repo.FindByTransaccionConsecutivo(ctx, req.TransaccionID, req.Consecutivo); err == nil {
		return nil, wrap(ErrYaRegistrado, "pesada %v de la transacción %d ya existe", req.Consecutivo, req.TransaccionID)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	fechaHora := time.Now()
	if req.FechaHora != nil {
		if t, err := time.Parse(time.RFC3339, *req.FechaHora); err == nil {
			fechaHora = t
		}
	}

	tranID := req.TransaccionID
	p := model.Pesada{
		TransaccionID: &tranID,
		Consecutivo:   req.Consecutivo,
		BasculaID:     req.BasculaID,
		FechaHora:     fechaHora,
		PesoMeta:      req.PesoMeta,
		PesoVuelo:     req.PesoVuelo,
		PesoFino:      req.PesoFino,
		PesoReal:      req.PesoReal,
		UsuarioID:     usuarioID,
	}
	if err := s.repo.Create(ctx, &p); err != nil {
		return nil, err
	}
	return pesadaToResponse(&p), nil
}

// ── GetPesadasAcumuladas ──────────────────────────────────────────────────────
// Un ciclo de corte por transacción con pesadas sin leer:
//   1. agregar pesadas no leídas (MIN/MAX consecutivo, SUM peso)
//   2. por grupo, en una transacción: insertar corte con ref vacía,
//      asignar la referencia definitiva (embebe el id de fila) y marcar
//      leído exactamente el rango agregado
//   3. un grupo que falla se omite y el lote continúa; sus pesadas quedan
//      sin leer para el próximo ciclo (at-least-once)

func (s *pesadaService) GetPesadasAcumuladas(ctx context.Context, puertoID string, tranID *int64, usuarioID *int64) ([]dto.PesadaAcumuladaResponse, error) {
	grupos, err := s.repo.SumarPendientes(ctx, puertoID, tranID)
	if err != nil {
		return nil, err
	}
	if len(grupos) == 0 {
		return nil, wrap(ErrNoEncontrado, "no hay pesadas pendientes para %s", puertoID)
	}

	out := make([]dto.PesadaAcumuladaResponse, 0, len(grupos))
	for _, g := range grupos {
		var corte model.PesadaCorte
		txErr := runTx(ctx, s.corteRepo.DB(), func(tx *gorm.DB) error {
			n, err := s.corteRepo.CountByTransaccionTx(ctx, tx, g.PuertoID, g.TransaccionID)
			if err != nil {
				return err
			}

			material := g.Material
			peso := g.Total
			corte = model.PesadaCorte{
				PuertoID:    g.PuertoID,
				Transaccion: g.TransaccionID,
				Consecutivo: int(n) + 1,
				Pit:         g.Pit,
				Material:    &material,
				Peso:        &peso,
				Ref:         "",
				FechaHora:   time.Now(),
				UsuarioID:   usuarioID,
			}
			if err := s.corteRepo.CreatePendingTx(ctx, tx, &corte); err != nil {
				return err
			}

			// La referencia solo es derivable con el id ya asignado.
			corte.Ref = fmt.Sprintf("%s-%s-%d", g.PuertoID, uuid8(), corte.ID)
			if err := s.corteRepo.AssignRefTx(ctx, tx, corte.ID, corte.Ref); err != nil {
				return err
			}

			marcadas, err := s.repo.MarcarLeidasTx(ctx, tx, g.TransaccionID, g.Primera, g.Ultima)
			if err != nil {
				return err
			}
			if marcadas == 0 {
				return fmt.Errorf("ninguna pesada marcada para transacción %d", g.TransaccionID)
			}
			return nil
		})
		if txErr != nil {
			// El grupo queda sin leer y se recorta en el próximo ciclo.
			log.Error().Err(txErr).
				Int64("transaccion", g.TransaccionID).
				Str("puerto_id", g.PuertoID).
				Msg("corte falló, grupo omitido")
			continue
		}

		out = append(out, dto.PesadaAcumuladaResponse{
			Referencia:  corte.Ref,
			Transaccion: g.TransaccionID,
			Consecutivo: corte.Consecutivo,
			Primera:     g.Primera,
			Ultima:      g.Ultima,
			Pit:         g.Pit,
			Material:    g.Material,
			Peso:        g.Total,
			PuertoID:    g.PuertoID,
			FechaHora:   corte.FechaHora.Format(time.RFC3339),
			UsuarioID:   usuarioID,
		})
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("ningún corte pudo generarse para %s", puertoID)
	}
	return out, nil
}

func (s *pesadaService) GetPendientesUltimaTransaccion(ctx context.Context, puertoID string) ([]dto.PesadaAcumuladaResponse, error) {
	viaje, err := s.viajeRepo.FindByPuertoID(ctx, puertoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, wrap(ErrNoEncontrado, "viaje %s no existe", puertoID)
		}
		return nil, err
	}
	tran, err := s.tranRepo.FindUltimaByViaje(ctx, viaje.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, wrap(ErrNoEncontrado, "viaje %s no tiene transacciones", puertoID)
		}
		return nil, err
	}

	cortes, err := s.corteRepo.FindByPuertoTransaccion(ctx, puertoID, tran.ID)
	if err != nil {
		return nil, err
	}
	pendientes := make([]dto.PesadaAcumuladaResponse, 0, len(cortes))
	for _, c := range cortes {
		if c.Enviado {
			continue
		}
		pendientes = append(pendientes, corteToAcumulada(&c))
	}
	if len(pendientes) == 0 {
		return nil, wrap(ErrNoEncontrado, "sin cortes pendientes para %s", puertoID)
	}
	return pendientes, nil
}

// GetLastCorteForTransaccion marks the reference as final-batch with the "F"
// suffix the external operator expects.
func (s *pesadaService) GetLastCorteForTransaccion(ctx context.Context, puertoID string, transaccion int64) (string, error) {
	corte, err := s.corteRepo.GetLastForTransaccion(ctx, puertoID, transaccion)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", wrap(ErrNoEncontrado, "transacción %d sin cortes", transaccion)
		}
		return "", err
	}
	return corte.Ref + "F", nil
}

func (s *pesadaService) GenPesadaIdentificador(ctx context.Context, prefix, puertoID string, transaccion int64) (string, error) {
	n, err := s.corteRepo.CountByTransaccionTx(ctx, s.corteRepo.DB(), puertoID, transaccion)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%d", prefix, uuid8(), n+1), nil
}

func (s *pesadaService) ListPesadas(ctx context.Context, filter dto.PesadaFilter) (*dto.PesadaListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	pesadas, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.PesadaResponse, 0, len(pesadas))
	for i := range pesadas {
		items = append(items, *pesadaToResponse(&pesadas[i]))
	}
	return &dto.PesadaListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func pesadaToResponse(p *model.Pesada) *dto.PesadaResponse {
	return &dto.PesadaResponse{
		ID:            p.ID,
		TransaccionID: p.TransaccionID,
		Consecutivo:   p.Consecutivo,
		PesoReal:      p.PesoReal,
		Leido:         p.Leido,
		FechaHora:     p.FechaHora.Format(time.RFC3339),
	}
}

func corteToAcumulada(c *model.PesadaCorte) dto.PesadaAcumuladaResponse {
	material := ""
	if c.Material != nil {
		material = *c.Material
	}
	resp := dto.PesadaAcumuladaResponse{
		Referencia:  c.Ref,
		Transaccion: c.Transaccion,
		Consecutivo: c.Consecutivo,
		Pit:         c.Pit,
		Material:    material,
		PuertoID:    c.PuertoID,
		FechaHora:   c.FechaHora.Format(time.RFC3339),
		UsuarioID:   c.UsuarioID,
	}
	if c.Peso != nil {
		resp.Peso = *c.Peso
	}
	return resp
}
