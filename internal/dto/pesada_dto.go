package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// PesadaFilter is bound from query string of GET /v1/pesadas.
type PesadaFilter struct {
	TransaccionID int64  `form:"transaccion_id"`
	Leido         *bool  `form:"leido"`
	Desde         string `form:"desde"` // YYYY-MM-DD
	Hasta         string `form:"hasta"`
	Page          int    `form:"page,default=1"   validate:"min=1"`
	Limit         int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type PesadaListResponse struct {
	Data  []PesadaResponse `json:"data"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearPesadaRequest struct {
	TransaccionID int64            `json:"transaccion_id" validate:"required"`
	Consecutivo   float64          `json:"consecutivo"    validate:"required"`
	PesoReal      decimal.Decimal  `json:"peso_real"      validate:"required"`
	BasculaID     *int64           `json:"bascula_id"`
	PesoMeta      *decimal.Decimal `json:"peso_meta"`
	PesoVuelo     *decimal.Decimal `json:"peso_vuelo"`
	PesoFino      *decimal.Decimal `json:"peso_fino"`
	FechaHora     *string          `json:"fecha_hora"` // ISO-8601; empty = now
}

// EnvioFinalRequest selects the delivery mode for the external notification.
type EnvioFinalRequest struct {
	Modo string `json:"modo" validate:"required,oneof=list single last"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PesadaResponse struct {
	ID            int64           `json:"id"`
	TransaccionID *int64          `json:"transaccion_id"`
	Consecutivo   float64         `json:"consecutivo"`
	PesoReal      decimal.Decimal `json:"peso_real"`
	Leido         bool            `json:"leido"`
	FechaHora     string          `json:"fecha_hora"`
}

// PesadaAcumuladaResponse is one cut: the unread range of a transacción
// collapsed into a single snapshot with its durable reference.
type PesadaAcumuladaResponse struct {
	Referencia  string          `json:"referencia"`
	Transaccion int64           `json:"transaccion"`
	Consecutivo int             `json:"consecutivo"`
	Primera     float64         `json:"primera"`
	Ultima      float64         `json:"ultima"`
	Pit         *int            `json:"pit"`
	Material    string          `json:"material"`
	Peso        decimal.Decimal `json:"peso"`
	PuertoID    string          `json:"puerto_id"`
	FechaHora   string          `json:"fecha_hora"`
	UsuarioID   *int64          `json:"usuario_id"`
}

// EnvioPesadaItem is the wire format the external operator API expects.
// Peso travels as a 2-decimal string.
type EnvioPesadaItem struct {
	Voyage      string `json:"voyage"`
	Referencia  string `json:"referencia"`
	Consecutivo int    `json:"consecutivo"`
	Transaccion int64  `json:"transaccion"`
	Pit         int    `json:"pit"`
	Material    string `json:"material"`
	Peso        string `json:"peso"`
	PuertoID    string `json:"puerto_id"`
	FechaHora   string `json:"fecha_hora"`
	UsuarioID   int64  `json:"usuario_id"`
	Usuario     string `json:"usuario"`
}

type EnvioFinalResponse struct {
	Enviados int      `json:"enviados"`
	Modo     string   `json:"modo"`
	Errores  []string `json:"errores,omitempty"`
}
