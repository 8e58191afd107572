package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/ItalcolColombia/miit-api-sub000/internal/dto"
	"github.com/ItalcolColombia/miit-api-sub000/internal/model"
	"github.com/ItalcolColombia/miit-api-sub000/internal/repository"
)

type MaterialService interface {
	CrearMaterial(ctx context.Context, req dto.CrearMaterialRequest) (*dto.MaterialResponse, error)
	ListMateriales(ctx context.Context) ([]dto.MaterialResponse, error)
}

type materialService struct {
	repo repository.MaterialRepository
}

func NewMaterialService(repo repository.MaterialRepository) MaterialService {
	return &materialService{repo: repo}
}

func (s *materialService) CrearMaterial(ctx context.Context, req dto.CrearMaterialRequest) (*dto.MaterialResponse, error) {
	if _, err := s.repo.FindByNombre(ctx, req.Nombre); err == nil {
		return nil, wrap(ErrYaRegistrado, "material %s ya existe", req.Nombre)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	m := model.Material{Nombre: req.Nombre, Tipo: req.Tipo, Densidad: req.Densidad}
	if err := s.repo.Create(ctx, &m); err != nil {
		return nil, err
	}
	return materialToResponse(&m), nil
}

func (s *materialService) ListMateriales(ctx context.Context) ([]dto.MaterialResponse, error) {
	materiales, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MaterialResponse, 0, len(materiales))
	for i := range materiales {
		out = append(out, *materialToResponse(&materiales[i]))
	}
	return out, nil
}

func materialToResponse(m *model.Material) *dto.MaterialResponse {
	return &dto.MaterialResponse{ID: m.ID, Nombre: m.Nombre, Tipo: m.Tipo, Densidad: m.Densidad}
}
