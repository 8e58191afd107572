package worker

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ItalcolColombia/miit-api-sub000/internal/model"
)

func TestComputeReenvioBackoff(t *testing.T) {
	cases := []struct {
		intentos int
		want     time.Duration
	}{
		{1, time.Minute},
		{2, 2 * time.Minute},
		{3, 4 * time.Minute},
		{4, 8 * time.Minute},
		{5, 16 * time.Minute},
		{6, 32 * time.Minute},
		// Fuera de rango se recorta a los extremos.
		{0, time.Minute},
		{-3, time.Minute},
		{7, 32 * time.Minute},
		{100, 32 * time.Minute},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, computeReenvioBackoff(c.intentos), "intentos=%d", c.intentos)
	}
}

func TestCorteToEnvioItem(t *testing.T) {
	pit := 3
	material := "Maíz"
	fecha := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	corte := &model.PesadaCorte{
		ID:          5,
		PuertoID:    "PTO-01",
		Transaccion: 10,
		Consecutivo: 2,
		Pit:         &pit,
		Material:    &material,
		Ref:         "PTO-01-aaaa1111-5",
		FechaHora:   fecha,
	}

	item := corteToEnvioItem(context.Background(), ReenvioCronConfig{}, corte)
	assert.Equal(t, "PTO-01", item.Voyage)
	assert.Equal(t, "PTO-01-aaaa1111-5", item.Referencia)
	assert.Equal(t, int64(10), item.Transaccion)
	assert.Equal(t, 3, item.Pit)
	assert.Equal(t, "Maíz", item.Material)
	// Sin peso registrado se reporta cero con dos decimales.
	assert.Equal(t, "0.00", item.Peso)
	assert.Equal(t, "2026-08-24T10:00:00Z", item.FechaHora)
	// Sin usuario no se consulta el repositorio.
	assert.Empty(t, item.Usuario)
	assert.Zero(t, item.UsuarioID)
}

func TestCorteToEnvioItem_PesoConDecimales(t *testing.T) {
	peso := decimal.NewFromFloat(1234.5)
	corte := &model.PesadaCorte{PuertoID: "PTO-01", Peso: &peso, FechaHora: time.Now()}

	item := corteToEnvioItem(context.Background(), ReenvioCronConfig{}, corte)
	require.Equal(t, "1234.50", item.Peso)
}
