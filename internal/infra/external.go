package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ── Cliente del integrador externo ────────────────────────────────────────────
// ExternalClient habla con la API REST del terminal portuario (Metalsoft).
// Maneja login + caché de token, y POST con reintentos acotados. Los errores
// del integrador nunca deben tumbar el backend: cada fallo se devuelve tipado
// para que el llamador decida si encola un reenvío.

// StatusError is a non-2xx response from the external API. 4xx responses are
// permanent and must not be retried; 5xx responses are transient.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("external: status %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether the failure is transient.
func (e *StatusError) Retryable() bool {
	return e.StatusCode >= 500
}

type loginRequest struct {
	User string `json:"user"`
	Pass string `json:"pass"`
}

type loginResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int    `json:"expiresIn"` // seconds
}

// ExternalClient is the HTTP client for the terminal operator API.
type ExternalClient struct {
	baseURL    string
	user       string
	pass       string
	httpClient *http.Client

	// backoffBase is the first retry delay; doubles per attempt.
	// Overridable in tests.
	backoffBase time.Duration

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewExternalClient(baseURL, user, pass string) *ExternalClient {
	return &ExternalClient{
		baseURL:     baseURL,
		user:        user,
		pass:        pass,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		backoffBase: 500 * time.Millisecond,
	}
}

// tokenMargin renews the cached token this long before its real expiry so a
// request never departs with a token about to die in flight.
const tokenMargin = 5 * time.Minute

// getToken returns a cached token or performs a login. The login request runs
// outside the lock: two goroutines that race past an expired cache may both
// log in, which the external API tolerates (last token wins the cache).
func (c *ExternalClient) getToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		tok := c.token
		c.mu.Unlock()
		return tok, nil
	}
	c.mu.Unlock()

	body, err := json.Marshal(loginRequest{User: c.user, Pass: c.pass})
	if err != nil {
		return "", fmt.Errorf("external: marshal login: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/account/login", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("external: create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("external: login unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{StatusCode: resp.StatusCode, Body: "login rechazado"}
	}

	var lr loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return "", fmt.Errorf("external: decode login: %w", err)
	}

	c.mu.Lock()
	c.token = lr.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(lr.ExpiresIn)*time.Second - tokenMargin)
	c.mu.Unlock()

	return lr.AccessToken, nil
}

// invalidateToken drops the cached token so the next call logs in again.
func (c *ExternalClient) invalidateToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

// Post sends payload as JSON to baseURL+path with up to 3 attempts.
// Only network errors and 5xx responses are retried; 4xx fails immediately.
// idempotencyKey is constant across attempts; each attempt carries a fresh
// X-Correlation-Id so server logs distinguish retries.
func (c *ExternalClient) Post(ctx context.Context, path string, payload any, idempotencyKey string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("external: marshal payload: %w", err)
	}

	return c.withRetry(ctx, 3, func(attempt int) error {
		token, err := c.getToken(ctx)
		if err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("external: create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("X-Correlation-Id", uuid.NewString())
		if idempotencyKey != "" {
			req.Header.Set("Idempotency-Key", idempotencyKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("external: unreachable: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}

		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		if resp.StatusCode == http.StatusUnauthorized {
			// Token revoked server-side; next login starts clean.
			c.invalidateToken()
		}
		return &StatusError{StatusCode: resp.StatusCode, Body: buf.String()}
	})
}

// withRetry runs fn up to maxAttempts times with exponential backoff
// (backoffBase, 2×backoffBase, …). A *StatusError that is not Retryable
// stops the loop immediately.
func (c *ExternalClient) withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 1; i <= maxAttempts; i++ {
		lastErr = fn(i)
		if lastErr == nil {
			return nil
		}
		if se, ok := lastErr.(*StatusError); ok && !se.Retryable() {
			return lastErr
		}
		if i == maxAttempts {
			break
		}
		backoff := c.backoffBase * (1 << (i - 1))
		log.Warn().Err(lastErr).Int("attempt", i).Dur("backoff", backoff).
			Msg("envío externo falló, reintentando")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return lastErr
}
