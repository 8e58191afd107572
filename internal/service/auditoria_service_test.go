package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ItalcolColombia/miit-api-sub000/internal/model"
)

func TestSnapshot_SerializaEntidadCompleta(t *testing.T) {
	mov := model.Movimiento{ID: 7, Tipo: model.MovimientoEntrada}
	data := Snapshot(mov, mov.ID, "tipo", mov.Tipo)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.EqualValues(t, 7, decoded["ID"])
}

func TestSnapshot_DegradaAMinimoSiNoSerializa(t *testing.T) {
	// Un canal no es serializable: el snapshot cae al documento mínimo.
	data := Snapshot(make(chan int), int64(7), "peso", "42")

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.EqualValues(t, 7, decoded["id"])
	assert.Equal(t, "42", decoded["peso"])
}

func TestNuevaEntrada(t *testing.T) {
	uid := int64(3)
	entry := NuevaEntrada("ajustes", 15, []byte(`{"id":15}`), &uid)

	assert.Equal(t, "ajustes", entry.Entidad)
	assert.Equal(t, "15", entry.EntidadID)
	assert.Equal(t, model.AuditCreate, entry.Accion)
	assert.JSONEq(t, `{"id":15}`, string(entry.ValorNuevo))
	require.NotNil(t, entry.UsuarioID)
	assert.False(t, entry.FechaHora.IsZero())
}

func TestRegistrarTx_SinTransaccionSeDifiere(t *testing.T) {
	svc := NewAuditoriaService(nil, nil)

	entry := NuevaEntrada("ajustes", 1, []byte(`{}`), nil)
	pendiente := svc.RegistrarTx(context.Background(), nil, entry)
	require.NotNil(t, pendiente)
	assert.Equal(t, "ajustes", pendiente.Entidad)
}
