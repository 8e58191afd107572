package infra

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// metalsoftFake simula la API del operador: login y un endpoint de entrega
// cuyo estado de respuesta es programable por intento.
type metalsoftFake struct {
	mu       sync.Mutex
	logins   int
	posts    int
	statuses []int // respuesta por intento; el último se repite
	idemKeys []string
	corrIDs  []string
	tokens   []string
}

func (f *metalsoftFake) server() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/account/login", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.logins++
		f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{"accessToken": "tok-abc", "expiresIn": 3600})
	})
	mux.HandleFunc("/entrega", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		idx := f.posts
		f.posts++
		f.idemKeys = append(f.idemKeys, r.Header.Get("Idempotency-Key"))
		f.corrIDs = append(f.corrIDs, r.Header.Get("X-Correlation-Id"))
		f.tokens = append(f.tokens, r.Header.Get("Authorization"))
		status := http.StatusOK
		if len(f.statuses) > 0 {
			if idx >= len(f.statuses) {
				idx = len(f.statuses) - 1
			}
			status = f.statuses[idx]
		}
		f.mu.Unlock()
		w.WriteHeader(status)
	})
	return httptest.NewServer(mux)
}

func newTestClient(t *testing.T, fake *metalsoftFake) *ExternalClient {
	t.Helper()
	srv := fake.server()
	t.Cleanup(srv.Close)
	c := NewExternalClient(srv.URL, "miit", "secreto")
	c.backoffBase = time.Millisecond
	return c
}

func TestPost_EnviaTokenYClaveIdempotencia(t *testing.T) {
	fake := &metalsoftFake{}
	c := newTestClient(t, fake)

	err := c.Post(context.Background(), "/entrega", map[string]string{"ref": "r1"}, "clave-1")
	require.NoError(t, err)

	assert.Equal(t, 1, fake.logins)
	require.Equal(t, 1, fake.posts)
	assert.Equal(t, "Bearer tok-abc", fake.tokens[0])
	assert.Equal(t, "clave-1", fake.idemKeys[0])
	assert.NotEmpty(t, fake.corrIDs[0])
}

func TestPost_TokenEnCache(t *testing.T) {
	fake := &metalsoftFake{}
	c := newTestClient(t, fake)

	require.NoError(t, c.Post(context.Background(), "/entrega", nil, "k1"))
	require.NoError(t, c.Post(context.Background(), "/entrega", nil, "k2"))

	// El segundo POST reutiliza el token cacheado.
	assert.Equal(t, 1, fake.logins)
	assert.Equal(t, 2, fake.posts)
}

func TestPost_Reintenta5xxYRecupera(t *testing.T) {
	fake := &metalsoftFake{statuses: []int{http.StatusBadGateway, http.StatusBadGateway, http.StatusOK}}
	c := newTestClient(t, fake)

	err := c.Post(context.Background(), "/entrega", nil, "clave-1")
	require.NoError(t, err)
	assert.Equal(t, 3, fake.posts)

	// La clave de idempotencia se mantiene entre intentos; la correlación no.
	assert.Equal(t, []string{"clave-1", "clave-1", "clave-1"}, fake.idemKeys)
	assert.NotEqual(t, fake.corrIDs[0], fake.corrIDs[1])
}

func TestPost_Agota3Intentos(t *testing.T) {
	fake := &metalsoftFake{statuses: []int{http.StatusInternalServerError}}
	c := newTestClient(t, fake)

	err := c.Post(context.Background(), "/entrega", nil, "clave-1")
	require.Error(t, err)
	assert.Equal(t, 3, fake.posts)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
	assert.True(t, se.Retryable())
}

func TestPost_4xxNoSeReintenta(t *testing.T) {
	fake := &metalsoftFake{statuses: []int{http.StatusUnprocessableEntity}}
	c := newTestClient(t, fake)

	err := c.Post(context.Background(), "/entrega", nil, "clave-1")
	require.Error(t, err)
	assert.Equal(t, 1, fake.posts)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.False(t, se.Retryable())
}

func TestPost_401InvalidaToken(t *testing.T) {
	fake := &metalsoftFake{statuses: []int{http.StatusUnauthorized, http.StatusOK}}
	c := newTestClient(t, fake)

	// 401 es 4xx: el intento no se repite, pero el token cacheado se descarta.
	err := c.Post(context.Background(), "/entrega", nil, "k1")
	require.Error(t, err)
	assert.Equal(t, 1, fake.logins)

	require.NoError(t, c.Post(context.Background(), "/entrega", nil, "k2"))
	assert.Equal(t, 2, fake.logins)
}

func TestPost_ContextoCancelado(t *testing.T) {
	fake := &metalsoftFake{statuses: []int{http.StatusInternalServerError}}
	srv := fake.server()
	t.Cleanup(srv.Close)
	c := NewExternalClient(srv.URL, "miit", "secreto")
	c.backoffBase = time.Minute // el backoff nunca debe completarse

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Post(ctx, "/entrega", nil, "k") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Post no respetó la cancelación del contexto")
	}
}

func TestStatusError_Mensaje(t *testing.T) {
	err := &StatusError{StatusCode: 503, Body: "mantenimiento"}
	assert.Equal(t, "external: status 503: mantenimiento", err.Error())
}
