package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/ItalcolColombia/miit-api-sub000/internal/dto"
	"github.com/ItalcolColombia/miit-api-sub000/internal/model"
	"github.com/ItalcolColombia/miit-api-sub000/internal/repository"
)

type TransaccionService interface {
	// CrearTransaccion attaches a new transacción to the viaje identified by
	// puerto_id. Duplicates by (viaje, ref1) are rejected.
	CrearTransaccion(ctx context.Context, req dto.CrearTransaccionRequest) (*dto.TransaccionResponse, error)
	// IniciarTransaccion moves Registrada -> Proceso and stamps fecha_inicio.
	IniciarTransaccion(ctx context.Context, id int64) error
	// FinalizarTransaccion moves Proceso -> Finalizada and stamps fecha_fin.
	FinalizarTransaccion(ctx context.Context, id int64) error
	GetTransaccion(ctx context.Context, id int64) (*dto.TransaccionResponse, error)
	ListTransacciones(ctx context.Context, filter dto.TransaccionFilter) (*dto.TransaccionListResponse, error)
}

type transaccionService struct {
	repo      repository.TransaccionRepository
	viajeRepo repository.ViajeRepository
}

func NewTransaccionService(repo repository.TransaccionRepository, viajeRepo repository.ViajeRepository) TransaccionService {
	return &transaccionService{repo: repo, viajeRepo: viajeRepo}
}

func (s *transaccionService) CrearTransaccion(ctx context.Context, req dto.CrearTransaccionRequest) (*dto.TransaccionResponse, error) {
	viaje, err := s.viajeRepo.FindByPuertoID(ctx, req.PuertoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, wrap(ErrNoEncontrado, "viaje %s no existe", req.PuertoID)
		}
		return nil, err
	}

	if req.Ref1 != nil {
		if prev, err := s.repo.FindUltimaByViaje(ctx, viaje.ID); err == nil &&
			prev.Ref1 != nil && *prev.Ref1 == *req.Ref1 && prev.Estado != model.TransaccionFinalizada {
			return nil, wrap(ErrYaRegistrado, "transacción %s del viaje %s ya está abierta", *req.Ref1, req.PuertoID)
		}
	}

	now := time.Now()
	t := model.Transaccion{
		ViajeID:       &viaje.ID,
		MaterialID:    req.MaterialID,
		Tipo:          req.Tipo,
		Ref1:          req.Ref1,
		Ref2:          req.Ref2,
		OrigenID:      req.OrigenID,
		DestinoID:     req.DestinoID,
		Pit:           req.Pit,
		Estado:        model.TransaccionRegistrada,
		FechaCreacion: &now,
	}
	if err := s.repo.Create(ctx, &t); err != nil {
		return nil, err
	}
	return transaccionToResponse(&t), nil
}

func (s *transaccionService) IniciarTransaccion(ctx context.Context, id int64) error {
	return s.cambiarEstado(ctx, id, model.TransaccionRegistrada, model.TransaccionProceso)
}

func (s *transaccionService) FinalizarTransaccion(ctx context.Context, id int64) error {
	return s.cambiarEstado(ctx, id, model.TransaccionProceso, model.TransaccionFinalizada)
}

// cambiarEstado enforces the Registrada -> Proceso -> Finalizada ladder.
func (s *transaccionService) cambiarEstado(ctx context.Context, id int64, desde, hacia string) error {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return wrap(ErrNoEncontrado, "transacción %d no existe", id)
		}
		return err
	}
	if t.Estado != desde {
		return wrap(ErrOperacionInvalida, "transacción %d está en estado %s, se esperaba %s", id, t.Estado, desde)
	}
	return s.repo.UpdateEstado(ctx, id, hacia)
}

func (s *transaccionService) GetTransaccion(ctx context.Context, id int64) (*dto.TransaccionResponse, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, wrap(ErrNoEncontrado, "transacción %d no existe", id)
		}
		return nil, err
	}
	return transaccionToResponse(t), nil
}

func (s *transaccionService) ListTransacciones(ctx context.Context, filter dto.TransaccionFilter) (*dto.TransaccionListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	trans, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.TransaccionResponse, 0, len(trans))
	for i := range trans {
		items = append(items, *transaccionToResponse(&trans[i]))
	}
	return &dto.TransaccionListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func transaccionToResponse(t *model.Transaccion) *dto.TransaccionResponse {
	material := ""
	if t.Material != nil {
		material = t.Material.Nombre
	}
	return &dto.TransaccionResponse{
		ID:         t.ID,
		ViajeID:    t.ViajeID,
		MaterialID: t.MaterialID,
		Material:   material,
		Tipo:       t.Tipo,
		Estado:     t.Estado,
		Pit:        t.Pit,
		Leido:      t.Leido,
	}
}
