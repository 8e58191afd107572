//go:build integration

package router_test

// Pruebas de integración de punta a punta con Postgres + Redis reales vía
// testcontainers y un operador externo simulado con httptest.
// Ejecutar con: go test -tags integration ./internal/router/... -v
//
// Cubren:
//   - login y uso del JWT en rutas protegidas
//   - viaje de camión → transacción → pesadas → corte acumulado → envío final
//   - ajuste manual de saldo con movimiento espejo y auditoría

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"golang.org/x/crypto/bcrypt"

	"github.com/ItalcolColombia/miit-api-sub000/internal/config"
	"github.com/ItalcolColombia/miit-api-sub000/internal/infra"
	"github.com/ItalcolColombia/miit-api-sub000/internal/model"
	"github.com/ItalcolColombia/miit-api-sub000/internal/router"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// operadorFake acepta login y registra cada entrega recibida.
type operadorFake struct {
	mu       sync.Mutex
	entregas []string
}

func (f *operadorFake) server() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/account/login", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"accessToken": "tok-e2e", "expiresIn": 3600})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r.Body)
		f.mu.Lock()
		f.entregas = append(f.entregas, buf.String())
		f.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})
	return httptest.NewServer(mux)
}

// ── Setup ────────────────────────────────────────────────────────────────────

type testEnv struct {
	server   *httptest.Server
	token    string // JWT de administrador
	operador *operadorFake
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("miit_test"),
		tcPostgres.WithUsername("miit"),
		tcPostgres.WithPassword("miit"),
		testcontainers.WithWaitStrategy(
			tcPostgres.BasicWaitStrategies()...,
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	operador := &operadorFake{}
	opSrv := operador.server()
	t.Cleanup(opSrv.Close)

	cfg := &config.Config{
		Port:               8000,
		Env:                "test",
		JWTSecret:          "clave-secreta-e2e",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		TGAPIURL:           opSrv.URL,
		TGAPIUser:          "miit",
		TGAPIPass:          "secreto",
		EnvioConcurrencia:  2,
		WorkerPoolSize:     1,
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	// Semillas: rol administrador, usuario admin y datos maestros mínimos.
	hash, err := bcrypt.GenerateFromPassword([]byte("Cambiar.123"), bcrypt.MinCost)
	require.NoError(t, err)

	rol := model.Rol{Nombre: "administrador", Estado: true}
	require.NoError(t, db.Create(&rol).Error)
	require.NoError(t, db.Create(&model.Usuario{
		NickName: "admin",
		FullName: "Admin E2E",
		Cedula:   1,
		Email:    "admin@e2e.test",
		Clave:    string(hash),
		RolID:    rol.ID,
		Estado:   true,
	}).Error)
	require.NoError(t, db.Create(&model.Material{Nombre: "Maíz", Tipo: "granel"}).Error)
	require.NoError(t, db.Create(&model.Almacenamiento{
		Nombre:    "Silo 1",
		Capacidad: decimal.NewFromInt(100000),
	}).Error)

	gin.SetMode(gin.TestMode)
	extClient := infra.NewExternalClient(cfg.TGAPIURL, cfg.TGAPIUser, cfg.TGAPIPass)
	extCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	r := router.New(cfg, db, rdb, extClient, extCB)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	loginResp := do(t, srv, "POST", "/v1/auth/login",
		jsonBody(t, map[string]string{"nick_name": "admin", "clave": "Cambiar.123"}), "")
	require.Equal(t, http.StatusOK, loginResp.StatusCode)
	var loginBody struct {
		AccessToken string `json:"access_token"`
	}
	decodeJSON(t, loginResp, &loginBody)
	require.NotEmpty(t, loginBody.AccessToken)

	return &testEnv{server: srv, token: loginBody.AccessToken, operador: operador}
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestE2E_CicloPesadasYEnvioFinal(t *testing.T) {
	env := setupTestEnv(t)

	// 1. Viaje de camión
	viajeResp := do(t, env.server, "POST", "/v1/operador/viajes/camion",
		jsonBody(t, map[string]any{"puerto_id": "TRK-E2E-1", "placa": "XYZ987", "material_id": 1}),
		env.token)
	require.Equal(t, http.StatusCreated, viajeResp.StatusCode)
	viajeResp.Body.Close()

	// 2. Transacción de despacho
	tranResp := do(t, env.server, "POST", "/v1/transacciones",
		jsonBody(t, map[string]any{
			"puerto_id": "TRK-E2E-1", "material_id": 1, "tipo": "despacho", "ref1": "ORD-1",
		}),
		env.token)
	require.Equal(t, http.StatusCreated, tranResp.StatusCode)
	var tran struct {
		ID     int64  `json:"id"`
		Estado string `json:"estado"`
	}
	decodeJSON(t, tranResp, &tran)
	assert.Equal(t, "Registrada", tran.Estado)

	iniciar := do(t, env.server, "PUT", fmt.Sprintf("/v1/transacciones/%d/iniciar", tran.ID), nil, env.token)
	require.Equal(t, http.StatusNoContent, iniciar.StatusCode)
	iniciar.Body.Close()

	// 3. Pesadas de báscula
	for i := 1; i <= 3; i++ {
		pesadaResp := do(t, env.server, "POST", "/v1/pesadas",
			jsonBody(t, map[string]any{
				"transaccion_id": tran.ID, "consecutivo": i, "peso_real": "40.00",
			}),
			env.token)
		require.Equal(t, http.StatusCreated, pesadaResp.StatusCode)
		pesadaResp.Body.Close()
	}

	// Pesada duplicada rechazada
	dup := do(t, env.server, "POST", "/v1/pesadas",
		jsonBody(t, map[string]any{"transaccion_id": tran.ID, "consecutivo": 1, "peso_real": "40.00"}),
		env.token)
	require.Equal(t, http.StatusConflict, dup.StatusCode)
	dup.Body.Close()

	// 4. Corte acumulado, acotado a la transacción
	acumResp := do(t, env.server, "GET",
		fmt.Sprintf("/v1/pesadas/acumuladas/TRK-E2E-1?transaccion_id=%d", tran.ID), nil, env.token)
	require.Equal(t, http.StatusOK, acumResp.StatusCode)
	var cortes []struct {
		Referencia  string `json:"referencia"`
		Consecutivo int    `json:"consecutivo"`
		Peso        string `json:"peso"`
	}
	decodeJSON(t, acumResp, &cortes)
	require.Len(t, cortes, 1)
	assert.Equal(t, 1, cortes[0].Consecutivo)
	peso, err := decimal.NewFromString(cortes[0].Peso)
	require.NoError(t, err)
	assert.True(t, peso.Equal(decimal.NewFromInt(120)), "peso = %s", cortes[0].Peso)
	assert.Regexp(t, `^TRK-E2E-1-[0-9a-f]{8}-\d+$`, cortes[0].Referencia)

	// Segundo corte sin pesadas nuevas: 404
	vacio := do(t, env.server, "GET", "/v1/pesadas/acumuladas/TRK-E2E-1", nil, env.token)
	require.Equal(t, http.StatusNotFound, vacio.StatusCode)
	vacio.Body.Close()

	// 5. Último corte con sufijo de lote final
	ultimoResp := do(t, env.server, "GET",
		fmt.Sprintf("/v1/pesadas/ultimo-corte/TRK-E2E-1/%d", tran.ID), nil, env.token)
	require.Equal(t, http.StatusOK, ultimoResp.StatusCode)
	var ultimo struct {
		Referencia string `json:"referencia"`
	}
	decodeJSON(t, ultimoResp, &ultimo)
	assert.Equal(t, cortes[0].Referencia+"F", ultimo.Referencia)

	// 6. Una pesada más y envío final: el corte nuevo viaja al operador externo
	extra := do(t, env.server, "POST", "/v1/pesadas",
		jsonBody(t, map[string]any{"transaccion_id": tran.ID, "consecutivo": 4, "peso_real": "25.00"}),
		env.token)
	require.Equal(t, http.StatusCreated, extra.StatusCode)
	extra.Body.Close()

	envioResp := do(t, env.server, "POST", "/v1/pesadas/envio-final/TRK-E2E-1",
		jsonBody(t, map[string]string{"modo": "list"}), env.token)
	require.Equal(t, http.StatusOK, envioResp.StatusCode)
	var envio struct {
		Enviados int      `json:"enviados"`
		Modo     string   `json:"modo"`
		Errores  []string `json:"errores"`
	}
	decodeJSON(t, envioResp, &envio)
	assert.Equal(t, 1, envio.Enviados)
	assert.Equal(t, "list", envio.Modo)
	assert.Empty(t, envio.Errores)

	env.operador.mu.Lock()
	defer env.operador.mu.Unlock()
	require.NotEmpty(t, env.operador.entregas)
	assert.Contains(t, env.operador.entregas[0], `"voyage":"TRK-E2E-1"`)
	assert.Contains(t, env.operador.entregas[0], `"peso":"25.00"`)
}

func TestE2E_AjusteDeSaldoConAuditoria(t *testing.T) {
	env := setupTestEnv(t)

	// Ajuste sobre un par (silo, material) sin saldo previo
	ajusteResp := do(t, env.server, "POST", "/v1/ajustes",
		jsonBody(t, map[string]any{
			"almacenamiento_id": 1, "material_id": 1, "saldo_nuevo": "500", "motivo": "conteo inicial",
		}),
		env.token)
	require.Equal(t, http.StatusCreated, ajusteResp.StatusCode)
	var ajuste struct {
		Delta        string `json:"delta"`
		MovimientoID *int64 `json:"movimiento_id"`
	}
	decodeJSON(t, ajusteResp, &ajuste)
	delta, err := decimal.NewFromString(ajuste.Delta)
	require.NoError(t, err)
	assert.True(t, delta.Equal(decimal.NewFromInt(500)), "delta = %s", ajuste.Delta)
	require.NotNil(t, ajuste.MovimientoID)

	// El saldo queda consultable
	saldosResp := do(t, env.server, "GET", "/v1/saldos?almacenamiento_id=1", nil, env.token)
	require.Equal(t, http.StatusOK, saldosResp.StatusCode)
	var saldos []struct {
		Saldo string `json:"saldo"`
	}
	decodeJSON(t, saldosResp, &saldos)
	require.Len(t, saldos, 1)
	saldo, err := decimal.NewFromString(saldos[0].Saldo)
	require.NoError(t, err)
	assert.True(t, saldo.Equal(decimal.NewFromInt(500)), "saldo = %s", saldos[0].Saldo)

	// El movimiento espejo aparece en el libro mayor
	movResp := do(t, env.server, "GET", "/v1/movimientos?accion=Ajuste", nil, env.token)
	require.Equal(t, http.StatusOK, movResp.StatusCode)
	var movs struct {
		Data []struct {
			Tipo string `json:"tipo"`
			Peso string `json:"peso"`
		} `json:"data"`
	}
	decodeJSON(t, movResp, &movs)
	require.Len(t, movs.Data, 1)
	assert.Equal(t, "Entrada", movs.Data[0].Tipo)
	pesoMov, err := decimal.NewFromString(movs.Data[0].Peso)
	require.NoError(t, err)
	assert.True(t, pesoMov.Equal(decimal.NewFromInt(500)), "peso = %s", movs.Data[0].Peso)

	// La auditoría registró ajuste y movimiento
	audResp := do(t, env.server, "GET", "/v1/auditoria", nil, env.token)
	require.Equal(t, http.StatusOK, audResp.StatusCode)
	var aud struct {
		Total int64 `json:"total"`
	}
	decodeJSON(t, audResp, &aud)
	assert.GreaterOrEqual(t, aud.Total, int64(2))
}

func TestE2E_RutasProtegidas(t *testing.T) {
	env := setupTestEnv(t)

	// Sin token: 401
	resp := do(t, env.server, "GET", "/v1/pesadas", nil, "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// Token inválido: 401
	resp = do(t, env.server, "GET", "/v1/pesadas", nil, "no-es-un-jwt")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// Health siempre abierto
	resp = do(t, env.server, "GET", "/health", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var health struct {
		Ok       bool   `json:"ok"`
		Circuito string `json:"circuito"`
	}
	decodeJSON(t, resp, &health)
	assert.True(t, health.Ok)
	assert.Equal(t, "closed", health.Circuito)
}
