package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/ItalcolColombia/miit-api-sub000/internal/dto"
	"github.com/ItalcolColombia/miit-api-sub000/internal/model"
	"github.com/ItalcolColombia/miit-api-sub000/internal/repository"
)

type BlService interface {
	// CrearBl registers a bill of lading against the viaje identified by
	// puerto_id, resolving material by name and creating the cliente row
	// when unknown. Duplicate no_bl is rejected.
	CrearBl(ctx context.Context, req dto.CrearBlRequest) (*dto.BlResponse, error)
	ChgEstadoOperador(ctx context.Context, req dto.ChgEstadoBlRequest) error
	ChgEstadoPuerto(ctx context.Context, req dto.ChgEstadoBlRequest) error
	ListByPuertoID(ctx context.Context, puertoID string) ([]dto.BlResponse, error)
}

type blService struct {
	repo         repository.BlRepository
	viajeRepo    repository.ViajeRepository
	materialRepo repository.MaterialRepository
	clienteRepo  repository.ClienteRepository
}

func NewBlService(
	repo repository.BlRepository,
	viajeRepo repository.ViajeRepository,
	materialRepo repository.MaterialRepository,
	clienteRepo repository.ClienteRepository,
) BlService {
	return &blService{repo: repo, viajeRepo: viajeRepo, materialRepo: materialRepo, clienteRepo: clienteRepo}
}

func (s *blService) CrearBl(ctx context.Context, req dto.CrearBlRequest) (*dto.BlResponse, error) {
	if _, err := s.repo.FindByNoBl(ctx, req.NoBl); err == nil {
		return nil, wrap(ErrYaRegistrado, "BL %s ya existe", req.NoBl)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	viaje, err := s.viajeRepo.FindByPuertoID(ctx, req.PuertoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, wrap(ErrNoEncontrado, "viaje %s no existe", req.PuertoID)
		}
		return nil, err
	}

	material, err := s.materialRepo.FindByNombre(ctx, req.Material)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, wrap(ErrNoEncontrado, "material %s no existe", req.Material)
		}
		return nil, err
	}

	cliente, err := s.clienteRepo.FindByNombre(ctx, req.Cliente)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		cliente = &model.Cliente{Nombre: req.Cliente}
		if err := s.clienteRepo.Create(ctx, cliente); err != nil {
			return nil, err
		}
	}

	peso := req.Peso
	bl := model.Bl{
		NoBl:       req.NoBl,
		ViajeID:    viaje.ID,
		MaterialID: material.ID,
		ClienteID:  cliente.ID,
		Peso:       &peso,
	}
	if err := s.repo.CreateTx(ctx, s.repo.DB(), &bl); err != nil {
		return nil, err
	}
	return blToResponse(&bl), nil
}

func (s *blService) ChgEstadoOperador(ctx context.Context, req dto.ChgEstadoBlRequest) error {
	bl, err := s.findBl(ctx, req.NoBl)
	if err != nil {
		return err
	}
	return s.repo.UpdateEstadoOperador(ctx, bl.ID, req.Estado)
}

func (s *blService) ChgEstadoPuerto(ctx context.Context, req dto.ChgEstadoBlRequest) error {
	bl, err := s.findBl(ctx, req.NoBl)
	if err != nil {
		return err
	}
	return s.repo.UpdateEstadoPuerto(ctx, bl.ID, req.Estado)
}

func (s *blService) ListByPuertoID(ctx context.Context, puertoID string) ([]dto.BlResponse, error) {
	viaje, err := s.viajeRepo.FindByPuertoID(ctx, puertoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, wrap(ErrNoEncontrado, "viaje %s no existe", puertoID)
		}
		return nil, err
	}
	bls, err := s.repo.ListByViaje(ctx, viaje.ID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.BlResponse, 0, len(bls))
	for i := range bls {
		out = append(out, *blToResponse(&bls[i]))
	}
	return out, nil
}

func (s *blService) findBl(ctx context.Context, noBl string) (*model.Bl, error) {
	bl, err := s.repo.FindByNoBl(ctx, noBl)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, wrap(ErrNoEncontrado, "BL %s no existe", noBl)
		}
		return nil, err
	}
	return bl, nil
}

func blToResponse(b *model.Bl) *dto.BlResponse {
	resp := &dto.BlResponse{
		ID:             b.ID,
		NoBl:           b.NoBl,
		ViajeID:        b.ViajeID,
		MaterialID:     b.MaterialID,
		ClienteID:      b.ClienteID,
		EstadoPuerto:   b.EstadoPuerto,
		EstadoOperador: b.EstadoOperador,
	}
	if b.Peso != nil {
		resp.Peso = *b.Peso
	}
	return resp
}
