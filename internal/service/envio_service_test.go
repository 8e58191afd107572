package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ItalcolColombia/miit-api-sub000/internal/dto"
	"github.com/ItalcolColombia/miit-api-sub000/internal/infra"
	"github.com/ItalcolColombia/miit-api-sub000/internal/model"
	"github.com/ItalcolColombia/miit-api-sub000/internal/repository"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

type stubUsuarioRepo struct {
	usuarios []model.Usuario
	seq      int64
}

func (r *stubUsuarioRepo) Create(_ context.Context, u *model.Usuario) error {
	r.seq++
	u.ID = r.seq
	r.usuarios = append(r.usuarios, *u)
	return nil
}

func (r *stubUsuarioRepo) FindByID(_ context.Context, id int64) (*model.Usuario, error) {
	for i := range r.usuarios {
		if r.usuarios[i].ID == id {
			return &r.usuarios[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUsuarioRepo) FindByNickName(_ context.Context, nickName string) (*model.Usuario, error) {
	for i := range r.usuarios {
		if r.usuarios[i].NickName == nickName {
			return &r.usuarios[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUsuarioRepo) FindByEmail(_ context.Context, email string) (*model.Usuario, error) {
	for i := range r.usuarios {
		if r.usuarios[i].Email == email {
			return &r.usuarios[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUsuarioRepo) Update(_ context.Context, u *model.Usuario) error {
	for i := range r.usuarios {
		if r.usuarios[i].ID == u.ID {
			r.usuarios[i] = *u
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubUsuarioRepo) SetRecuperacion(_ context.Context, id int64, token *string) error {
	for i := range r.usuarios {
		if r.usuarios[i].ID == id {
			r.usuarios[i].Recuperacion = token
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubUsuarioRepo) UpdateClave(_ context.Context, id int64, hash string) error {
	for i := range r.usuarios {
		if r.usuarios[i].ID == id {
			r.usuarios[i].Clave = hash
			r.usuarios[i].Recuperacion = nil
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubUsuarioRepo) List(_ context.Context) ([]model.Usuario, error) {
	return r.usuarios, nil
}

var _ repository.UsuarioRepository = (*stubUsuarioRepo)(nil)

// operadorFake simulates the terminal operator API: login plus the delivery
// endpoints, recording every body it receives. rechazaRef rejects with 400
// any delivery whose body mentions that referencia.
type operadorFake struct {
	mu         sync.Mutex
	bodies     []string
	status     int
	rechazaRef string
	logins     int
	idemKeys   []string
	deliveryN  int
}

func newOperadorFake() *operadorFake { return &operadorFake{status: http.StatusOK} }

func (f *operadorFake) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/account/login", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.logins++
		f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{"accessToken": "tok-123", "expiresIn": 3600})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		var buf [16384]byte
		n, _ := r.Body.Read(buf[:])
		body := string(buf[:n])
		f.mu.Lock()
		f.deliveryN++
		f.bodies = append(f.bodies, body)
		f.idemKeys = append(f.idemKeys, r.Header.Get("Idempotency-Key"))
		status := f.status
		if f.rechazaRef != "" && strings.Contains(body, f.rechazaRef) {
			status = http.StatusBadRequest
		}
		f.mu.Unlock()
		w.WriteHeader(status)
	})
	return mux
}

func buildEnvioSvc(t *testing.T, fake *operadorFake) (EnvioService, *stubCorteRepo, *stubUsuarioRepo) {
	t.Helper()
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	client := infra.NewExternalClient(srv.URL, "miit", "secreto")
	cb := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	corteRepo := &stubCorteRepo{}
	usuarioRepo := &stubUsuarioRepo{}
	svc := NewEnvioService(client, cb, corteRepo, usuarioRepo, 2)
	return svc, corteRepo, usuarioRepo
}

func acumulada(ref string, tran int64, peso int64, fechaHora string) dto.PesadaAcumuladaResponse {
	return dto.PesadaAcumuladaResponse{
		Referencia:  ref,
		Transaccion: tran,
		Consecutivo: 1,
		Material:    "Maíz",
		Peso:        decimal.NewFromInt(peso),
		PuertoID:    "PTO-01",
		FechaHora:   fechaHora,
	}
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestNotifyEnvioFinal_ModoInvalido(t *testing.T) {
	fake := newOperadorFake()
	svc, _, _ := buildEnvioSvc(t, fake)

	_, err := svc.NotifyEnvioFinal(context.Background(), "PTO-01", nil, "batch")
	require.ErrorIs(t, err, ErrOperacionInvalida)
	assert.Zero(t, fake.deliveryN)
}

func TestNotifyEnvioFinal_ListaCompleta(t *testing.T) {
	fake := newOperadorFake()
	svc, corteRepo, _ := buildEnvioSvc(t, fake)
	corteRepo.cortes = []model.PesadaCorte{
		{ID: 1, Ref: "PTO-01-aaaa1111-1", Transaccion: 10},
		{ID: 2, Ref: "PTO-01-bbbb2222-2", Transaccion: 10},
	}

	items := []dto.PesadaAcumuladaResponse{
		acumulada("PTO-01-aaaa1111-1", 10, 100, "2026-08-24T10:00:00Z"),
		acumulada("PTO-01-bbbb2222-2", 10, 200, "2026-08-24T11:00:00Z"),
	}
	resp, err := svc.NotifyEnvioFinal(context.Background(), "PTO-01", items, ModoList)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Enviados)
	assert.Empty(t, resp.Errores)

	// Una sola entrega con la lista completa.
	assert.Equal(t, 1, fake.deliveryN)
	assert.Contains(t, fake.bodies[0], `"peso":"100.00"`)
	assert.Contains(t, fake.bodies[0], `"peso":"200.00"`)
	assert.ElementsMatch(t, []int64{1, 2}, corteRepo.enviados)
}

func TestNotifyEnvioFinal_SinPendientesEnviaLatido(t *testing.T) {
	fake := newOperadorFake()
	svc, corteRepo, _ := buildEnvioSvc(t, fake)

	resp, err := svc.NotifyEnvioFinal(context.Background(), "PTO-01", nil, ModoList)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Enviados)

	require.Equal(t, 1, fake.deliveryN)
	assert.Contains(t, fake.bodies[0], `"voyage":"PTO-01"`)
	assert.Contains(t, fake.bodies[0], `"peso":"0.00"`)
	// El latido no corresponde a ningún corte persistido.
	assert.Empty(t, corteRepo.enviados)
}

func TestNotifyEnvioFinal_ModoSingleEntregaCadaItem(t *testing.T) {
	fake := newOperadorFake()
	svc, corteRepo, _ := buildEnvioSvc(t, fake)
	corteRepo.cortes = []model.PesadaCorte{
		{ID: 1, Ref: "PTO-01-aaaa1111-1", Transaccion: 10},
		{ID: 2, Ref: "PTO-01-bbbb2222-2", Transaccion: 10},
		{ID: 3, Ref: "PTO-01-cccc3333-3", Transaccion: 10},
	}

	items := []dto.PesadaAcumuladaResponse{
		acumulada("PTO-01-aaaa1111-1", 10, 100, "2026-08-24T10:00:00Z"),
		acumulada("PTO-01-bbbb2222-2", 10, 200, "2026-08-24T11:00:00Z"),
		acumulada("PTO-01-cccc3333-3", 10, 300, "2026-08-24T12:00:00Z"),
	}
	resp, err := svc.NotifyEnvioFinal(context.Background(), "PTO-01", items, ModoSingle)
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Enviados)
	assert.Equal(t, 3, fake.deliveryN)
	// Clave de idempotencia estable por ítem: {ref}-{transaccion}.
	assert.ElementsMatch(t, []string{
		"PTO-01-aaaa1111-1-10",
		"PTO-01-bbbb2222-2-10",
		"PTO-01-cccc3333-3-10",
	}, fake.idemKeys)
	assert.ElementsMatch(t, []int64{1, 2, 3}, corteRepo.enviados)
}

func TestNotifyEnvioFinal_ModoLastEligeMasReciente(t *testing.T) {
	fake := newOperadorFake()
	svc, corteRepo, _ := buildEnvioSvc(t, fake)
	corteRepo.cortes = []model.PesadaCorte{
		{ID: 1, Ref: "PTO-01-aaaa1111-1", Transaccion: 10},
		{ID: 2, Ref: "PTO-01-bbbb2222-2", Transaccion: 10},
	}

	items := []dto.PesadaAcumuladaResponse{
		acumulada("PTO-01-bbbb2222-2", 10, 200, "2026-08-24T11:00:00Z"),
		acumulada("PTO-01-aaaa1111-1", 10, 100, "2026-08-24T10:00:00Z"),
	}
	resp, err := svc.NotifyEnvioFinal(context.Background(), "PTO-01", items, ModoLast)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Enviados)
	require.Equal(t, 1, fake.deliveryN)
	assert.Contains(t, fake.bodies[0], "PTO-01-bbbb2222-2")
	assert.Equal(t, []int64{2}, corteRepo.enviados)
}

func TestNotifyEnvioFinal_FalloParcialDevuelveErrorAgregado(t *testing.T) {
	fake := newOperadorFake()
	fake.rechazaRef = "PTO-01-bbbb2222-2"
	svc, corteRepo, _ := buildEnvioSvc(t, fake)
	corteRepo.cortes = []model.PesadaCorte{
		{ID: 1, Ref: "PTO-01-aaaa1111-1", Transaccion: 10},
		{ID: 2, Ref: "PTO-01-bbbb2222-2", Transaccion: 10},
	}

	items := []dto.PesadaAcumuladaResponse{
		acumulada("PTO-01-aaaa1111-1", 10, 100, "2026-08-24T10:00:00Z"),
		acumulada("PTO-01-bbbb2222-2", 10, 200, "2026-08-24T11:00:00Z"),
	}
	resp, err := svc.NotifyEnvioFinal(context.Background(), "PTO-01", items, ModoSingle)

	// El lote mixto termina en error agregado, no en éxito silencioso.
	require.ErrorIs(t, err, ErrEnvioExterno)
	assert.Contains(t, err.Error(), "1 de 2")
	assert.Equal(t, 1, resp.Enviados)
	require.Len(t, resp.Errores, 1)
	assert.Contains(t, resp.Errores[0], "PTO-01-bbbb2222-2")

	// El éxito queda marcado enviado; el rechazo permanente no se reagenda.
	assert.Equal(t, []int64{1}, corteRepo.enviados)
	assert.Empty(t, corteRepo.fallos)
}

func TestNotifyEnvioFinal_RechazoPermanenteSinReenvio(t *testing.T) {
	fake := newOperadorFake()
	fake.status = http.StatusBadRequest
	svc, corteRepo, _ := buildEnvioSvc(t, fake)
	corteRepo.cortes = []model.PesadaCorte{{ID: 1, Ref: "PTO-01-aaaa1111-1", Transaccion: 10}}

	items := []dto.PesadaAcumuladaResponse{
		acumulada("PTO-01-aaaa1111-1", 10, 100, "2026-08-24T10:00:00Z"),
	}
	resp, err := svc.NotifyEnvioFinal(context.Background(), "PTO-01", items, ModoList)
	require.ErrorIs(t, err, ErrEnvioExterno)
	assert.Equal(t, 0, resp.Enviados)
	require.Len(t, resp.Errores, 1)

	// 4xx no se reintenta ni en línea ni por cron.
	assert.Equal(t, 1, fake.deliveryN)
	assert.Empty(t, corteRepo.fallos)
	assert.Empty(t, corteRepo.enviados)
}

func TestNotifyEnvioFinal_FalloTransitorioProgramaReenvio(t *testing.T) {
	if testing.Short() {
		t.Skip("retries sleep between attempts")
	}
	fake := newOperadorFake()
	fake.status = http.StatusServiceUnavailable
	svc, corteRepo, _ := buildEnvioSvc(t, fake)
	corteRepo.cortes = []model.PesadaCorte{{ID: 1, Ref: "PTO-01-aaaa1111-1", Transaccion: 10}}

	items := []dto.PesadaAcumuladaResponse{
		acumulada("PTO-01-aaaa1111-1", 10, 100, "2026-08-24T10:00:00Z"),
	}
	antes := time.Now()
	_, err := svc.NotifyEnvioFinal(context.Background(), "PTO-01", items, ModoLast)
	require.ErrorIs(t, err, ErrEnvioExterno)

	// 5xx agota los 3 intentos del cliente y deja el corte agendado.
	assert.Equal(t, 3, fake.deliveryN)
	require.Len(t, corteRepo.fallos, 1)
	require.NotNil(t, corteRepo.fallos[0].proximo)
	assert.WithinDuration(t, antes.Add(time.Minute), *corteRepo.fallos[0].proximo, 10*time.Second)
}

func TestToWire_ResuelveUsuario(t *testing.T) {
	fake := newOperadorFake()
	svc, _, usuarioRepo := buildEnvioSvc(t, fake)
	usuarioRepo.usuarios = []model.Usuario{{ID: 9, NickName: "bascula1"}}

	item := acumulada("PTO-01-aaaa1111-1", 10, 100, "2026-08-24T10:00:00Z")
	uid := int64(9)
	item.UsuarioID = &uid

	_, err := svc.NotifyEnvioFinal(context.Background(), "PTO-01", []dto.PesadaAcumuladaResponse{item}, ModoLast)
	require.NoError(t, err)
	assert.Contains(t, fake.bodies[0], `"usuario":"bascula1"`)
}

func TestIdempotencyKey(t *testing.T) {
	withRef := dto.EnvioPesadaItem{Referencia: "PTO-01-aaaa1111-1", Transaccion: 10}
	assert.Equal(t, "PTO-01-aaaa1111-1-10", idempotencyKey("PTO-01", withRef))

	// El latido sin referencia cae al voyage + marca de tiempo.
	sinRef := dto.EnvioPesadaItem{}
	assert.Regexp(t, `^PTO-01-\d+$`, idempotencyKey("PTO-01", sinRef))
}

func TestUltimaPorFecha(t *testing.T) {
	items := []dto.EnvioPesadaItem{
		{Referencia: "a", FechaHora: "2026-08-24T10:00:00Z"},
		{Referencia: "b", FechaHora: "2026-08-24T12:00:00Z"},
		{Referencia: "c", FechaHora: "2026-08-24T11:00:00Z"},
	}
	assert.Equal(t, "b", ultimaPorFecha(items).Referencia)

	// Fechas no parseables valen época mínima: cualquier fecha válida gana.
	items = []dto.EnvioPesadaItem{
		{Referencia: "x", FechaHora: "no-es-fecha"},
		{Referencia: "y", FechaHora: "2026-08-24T09:00:00Z"},
	}
	assert.Equal(t, "y", ultimaPorFecha(items).Referencia)

	// Empate: se queda el primer máximo.
	items = []dto.EnvioPesadaItem{
		{Referencia: "p", FechaHora: "2026-08-24T10:00:00Z"},
		{Referencia: "q", FechaHora: "2026-08-24T10:00:00Z"},
	}
	assert.Equal(t, "p", ultimaPorFecha(items).Referencia)
}
