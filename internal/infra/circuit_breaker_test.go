package infra

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFallo = errors.New("operador caído")

func cbDePrueba() *CircuitBreaker {
	return NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 3,
		SuccessThreshold: 2,
		OpenTimeout:      50 * time.Millisecond,
	})
}

func fallar(cb *CircuitBreaker, n int) {
	for i := 0; i < n; i++ {
		_ = cb.Execute(func() error { return errFallo })
	}
}

func TestCB_AbreTrasUmbralDeFallos(t *testing.T) {
	cb := cbDePrueba()
	assert.Equal(t, CBClosed, cb.State())

	fallar(cb, 2)
	assert.Equal(t, CBClosed, cb.State())

	fallar(cb, 1)
	assert.Equal(t, CBOpen, cb.State())
}

func TestCB_AbiertoFallaRapido(t *testing.T) {
	cb := cbDePrueba()
	fallar(cb, 3)

	ejecutado := false
	err := cb.Execute(func() error {
		ejecutado = true
		return nil
	})
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, ejecutado)
}

func TestCB_ExitoReseteaContadorEnCerrado(t *testing.T) {
	cb := cbDePrueba()
	fallar(cb, 2)
	require.NoError(t, cb.Execute(func() error { return nil }))

	// El contador vuelve a cero: dos fallos más no abren el circuito.
	fallar(cb, 2)
	assert.Equal(t, CBClosed, cb.State())
}

func TestCB_MedioAbiertoTrasTimeout(t *testing.T) {
	cb := cbDePrueba()
	fallar(cb, 3)
	require.Equal(t, CBOpen, cb.State())

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, CBHalfOpen, cb.State())
}

func TestCB_SondaFallidaReabre(t *testing.T) {
	cb := cbDePrueba()
	fallar(cb, 3)
	time.Sleep(60 * time.Millisecond)
	require.Equal(t, CBHalfOpen, cb.State())

	fallar(cb, 1)
	assert.Equal(t, CBOpen, cb.State())
}

func TestCB_CierraTrasExitosConsecutivos(t *testing.T) {
	cb := cbDePrueba()
	fallar(cb, 3)
	time.Sleep(60 * time.Millisecond)
	require.Equal(t, CBHalfOpen, cb.State())

	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, CBHalfOpen, cb.State())

	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, CBClosed, cb.State())
}

func TestCB_ErrorOriginalSePropaga(t *testing.T) {
	cb := cbDePrueba()
	err := cb.Execute(func() error { return errFallo })
	require.ErrorIs(t, err, errFallo)
}

func TestCBState_String(t *testing.T) {
	assert.Equal(t, "closed", CBClosed.String())
	assert.Equal(t, "open", CBOpen.String())
	assert.Equal(t, "half-open", CBHalfOpen.String())
}
