package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

type AjusteFilter struct {
	AlmacenamientoID int64  `form:"almacenamiento_id"`
	MaterialID       int64  `form:"material_id"`
	UsuarioID        int64  `form:"usuario_id"`
	Desde            string `form:"desde"`
	Hasta            string `form:"hasta"`
	Page             int    `form:"page,default=1"   validate:"min=1"`
	Limit            int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type MovimientoFilter struct {
	TransaccionID    int64  `form:"transaccion_id"`
	AlmacenamientoID int64  `form:"almacenamiento_id"`
	MaterialID       int64  `form:"material_id"`
	Tipo             string `form:"tipo"   validate:"omitempty,oneof=Entrada Salida"`
	Accion           string `form:"accion" validate:"omitempty,oneof=Automatico Ajuste"`
	Desde            string `form:"desde"`
	Hasta            string `form:"hasta"`
	Page             int    `form:"page,default=1"   validate:"min=1"`
	Limit            int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

// CrearAjusteRequest fixes the balance of (almacenamiento, material) to
// SaldoNuevo. Motivo is optional; an empty one gets a default.
type CrearAjusteRequest struct {
	AlmacenamientoID int64           `json:"almacenamiento_id" validate:"required"`
	MaterialID       int64           `json:"material_id"       validate:"required"`
	SaldoNuevo       decimal.Decimal `json:"saldo_nuevo"       validate:"min=0"`
	Motivo           string          `json:"motivo"            validate:"omitempty,max=255"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type AjusteResponse struct {
	ID               int64           `json:"id"`
	AlmacenamientoID int64           `json:"almacenamiento_id"`
	MaterialID       int64           `json:"material_id"`
	SaldoAnterior    decimal.Decimal `json:"saldo_anterior"`
	SaldoNuevo       decimal.Decimal `json:"saldo_nuevo"`
	Delta            decimal.Decimal `json:"delta"`
	Motivo           string          `json:"motivo"`
	MovimientoID     *int64          `json:"movimiento_id"`
	UsuarioID        int64           `json:"usuario_id"`
	FechaHora        string          `json:"fecha_hora"`
}

type AjusteListResponse struct {
	Data  []AjusteResponse `json:"data"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

// SaldoResponse is the current balance of one (almacenamiento, material) pair.
type SaldoResponse struct {
	AlmacenamientoID int64           `json:"almacenamiento_id"`
	MaterialID       int64           `json:"material_id"`
	Saldo            decimal.Decimal `json:"saldo"`
	FechaHora        string          `json:"fecha_hora"`
}

type MovimientoResponse struct {
	ID               int64            `json:"id"`
	TransaccionID    *int64           `json:"transaccion_id"`
	AlmacenamientoID int64            `json:"almacenamiento_id"`
	MaterialID       int64            `json:"material_id"`
	Tipo             string           `json:"tipo"`
	Accion           string           `json:"accion"`
	Observacion      *string          `json:"observacion"`
	Peso             decimal.Decimal  `json:"peso"`
	SaldoAnterior    decimal.Decimal  `json:"saldo_anterior"`
	SaldoNuevo       *decimal.Decimal `json:"saldo_nuevo"`
	FechaHora        string           `json:"fecha_hora"`
}

type MovimientoListResponse struct {
	Data  []MovimientoResponse `json:"data"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}
