package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ItalcolColombia/miit-api-sub000/internal/dto"
	"github.com/ItalcolColombia/miit-api-sub000/internal/model"
	"github.com/ItalcolColombia/miit-api-sub000/internal/repository"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

type stubBlRepo struct {
	bls []model.Bl
	seq int64
}

func (r *stubBlRepo) CreateTx(_ context.Context, _ *gorm.DB, b *model.Bl) error {
	r.seq++
	b.ID = r.seq
	r.bls = append(r.bls, *b)
	return nil
}

func (r *stubBlRepo) FindByNoBl(_ context.Context, noBl string) (*model.Bl, error) {
	for i := range r.bls {
		if r.bls[i].NoBl == noBl {
			return &r.bls[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubBlRepo) ListByViaje(_ context.Context, viajeID int64) ([]model.Bl, error) {
	var out []model.Bl
	for i := range r.bls {
		if r.bls[i].ViajeID == viajeID {
			out = append(out, r.bls[i])
		}
	}
	return out, nil
}

func (r *stubBlRepo) UpdateEstadoOperador(_ context.Context, id int64, estado bool) error {
	for i := range r.bls {
		if r.bls[i].ID == id {
			r.bls[i].EstadoOperador = estado
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubBlRepo) UpdateEstadoPuerto(_ context.Context, id int64, estado bool) error {
	for i := range r.bls {
		if r.bls[i].ID == id {
			r.bls[i].EstadoPuerto = estado
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubBlRepo) DB() *gorm.DB { return nil }

var _ repository.BlRepository = (*stubBlRepo)(nil)

type stubMaterialRepo struct {
	materiales []model.Material
	seq        int64
}

func (r *stubMaterialRepo) Create(_ context.Context, m *model.Material) error {
	r.seq++
	m.ID = r.seq
	r.materiales = append(r.materiales, *m)
	return nil
}

func (r *stubMaterialRepo) FindByID(_ context.Context, id int64) (*model.Material, error) {
	for i := range r.materiales {
		if r.materiales[i].ID == id {
			return &r.materiales[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubMaterialRepo) FindByNombre(_ context.Context, nombre string) (*model.Material, error) {
	for i := range r.materiales {
		if r.materiales[i].Nombre == nombre {
			return &r.materiales[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubMaterialRepo) List(_ context.Context) ([]model.Material, error) {
	return r.materiales, nil
}

var _ repository.MaterialRepository = (*stubMaterialRepo)(nil)

type stubClienteRepo struct {
	clientes []model.Cliente
	seq      int64
}

func (r *stubClienteRepo) Create(_ context.Context, c *model.Cliente) error {
	r.seq++
	c.ID = r.seq
	r.clientes = append(r.clientes, *c)
	return nil
}

func (r *stubClienteRepo) FindByNombre(_ context.Context, nombre string) (*model.Cliente, error) {
	for i := range r.clientes {
		if r.clientes[i].Nombre == nombre {
			return &r.clientes[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubClienteRepo) FindByID(_ context.Context, id int64) (*model.Cliente, error) {
	for i := range r.clientes {
		if r.clientes[i].ID == id {
			return &r.clientes[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

var _ repository.ClienteRepository = (*stubClienteRepo)(nil)

func buildBlSvc() (BlService, *stubBlRepo, *stubViajeRepo, *stubMaterialRepo, *stubClienteRepo) {
	blRepo := &stubBlRepo{}
	viajeRepo := &stubViajeRepo{}
	materialRepo := &stubMaterialRepo{}
	clienteRepo := &stubClienteRepo{}
	svc := NewBlService(blRepo, viajeRepo, materialRepo, clienteRepo)
	return svc, blRepo, viajeRepo, materialRepo, clienteRepo
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestCrearBl_CreaClienteDesconocido(t *testing.T) {
	svc, blRepo, viajeRepo, materialRepo, clienteRepo := buildBlSvc()
	viajeRepo.viajes = []model.Viaje{{ID: 1, PuertoID: "VOY2026001", FlotaID: 7}}
	materialRepo.materiales = []model.Material{{ID: 2, Nombre: "Maíz"}}

	resp, err := svc.CrearBl(context.Background(), dto.CrearBlRequest{
		NoBl:     "BL-001",
		PuertoID: "VOY2026001",
		Material: "Maíz",
		Cliente:  "Agroindustrias SA",
		Peso:     decimal.NewFromInt(5000),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.ViajeID)
	assert.Equal(t, int64(2), resp.MaterialID)
	assert.Equal(t, "5000", resp.Peso.String())

	// El cliente desconocido se crea sobre la marcha.
	require.Len(t, clienteRepo.clientes, 1)
	assert.Equal(t, "Agroindustrias SA", clienteRepo.clientes[0].Nombre)
	assert.Equal(t, clienteRepo.clientes[0].ID, blRepo.bls[0].ClienteID)
}

func TestCrearBl_DuplicadoRechazado(t *testing.T) {
	svc, _, viajeRepo, materialRepo, _ := buildBlSvc()
	viajeRepo.viajes = []model.Viaje{{ID: 1, PuertoID: "VOY2026001", FlotaID: 7}}
	materialRepo.materiales = []model.Material{{ID: 2, Nombre: "Maíz"}}

	req := dto.CrearBlRequest{
		NoBl: "BL-001", PuertoID: "VOY2026001", Material: "Maíz",
		Cliente: "Agroindustrias SA", Peso: decimal.NewFromInt(5000),
	}
	_, err := svc.CrearBl(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.CrearBl(context.Background(), req)
	require.ErrorIs(t, err, ErrYaRegistrado)
}

func TestCrearBl_MaterialDesconocidoRechazado(t *testing.T) {
	svc, _, viajeRepo, _, _ := buildBlSvc()
	viajeRepo.viajes = []model.Viaje{{ID: 1, PuertoID: "VOY2026001", FlotaID: 7}}

	// El material, a diferencia del cliente, no se crea sobre la marcha.
	_, err := svc.CrearBl(context.Background(), dto.CrearBlRequest{
		NoBl: "BL-001", PuertoID: "VOY2026001", Material: "Azufre",
		Cliente: "Agroindustrias SA", Peso: decimal.NewFromInt(5000),
	})
	require.ErrorIs(t, err, ErrNoEncontrado)
}

func TestChgEstadoBl_Independientes(t *testing.T) {
	svc, blRepo, _, _, _ := buildBlSvc()
	blRepo.bls = []model.Bl{{ID: 1, NoBl: "BL-001", ViajeID: 1}}

	require.NoError(t, svc.ChgEstadoOperador(context.Background(), dto.ChgEstadoBlRequest{NoBl: "BL-001", Estado: true}))
	assert.True(t, blRepo.bls[0].EstadoOperador)
	assert.False(t, blRepo.bls[0].EstadoPuerto)

	require.NoError(t, svc.ChgEstadoPuerto(context.Background(), dto.ChgEstadoBlRequest{NoBl: "BL-001", Estado: true}))
	assert.True(t, blRepo.bls[0].EstadoPuerto)
}

func TestChgEstadoBl_NoExiste(t *testing.T) {
	svc, _, _, _, _ := buildBlSvc()

	err := svc.ChgEstadoOperador(context.Background(), dto.ChgEstadoBlRequest{NoBl: "BL-999", Estado: true})
	require.ErrorIs(t, err, ErrNoEncontrado)
}

func TestListBlsByPuertoID(t *testing.T) {
	svc, blRepo, viajeRepo, _, _ := buildBlSvc()
	viajeRepo.viajes = []model.Viaje{{ID: 1, PuertoID: "VOY2026001", FlotaID: 7}}
	blRepo.bls = []model.Bl{
		{ID: 1, NoBl: "BL-001", ViajeID: 1},
		{ID: 2, NoBl: "BL-002", ViajeID: 1},
		{ID: 3, NoBl: "BL-003", ViajeID: 2},
	}

	out, err := svc.ListByPuertoID(context.Background(), "VOY2026001")
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestCrearMaterial(t *testing.T) {
	materialRepo := &stubMaterialRepo{}
	svc := NewMaterialService(materialRepo)

	resp, err := svc.CrearMaterial(context.Background(), dto.CrearMaterialRequest{
		Nombre: "Maíz", Tipo: "granel",
	})
	require.NoError(t, err)
	assert.Equal(t, "Maíz", resp.Nombre)

	_, err = svc.CrearMaterial(context.Background(), dto.CrearMaterialRequest{
		Nombre: "Maíz", Tipo: "granel",
	})
	require.ErrorIs(t, err, ErrYaRegistrado)
}
