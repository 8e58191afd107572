package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

type TransaccionFilter struct {
	ViajeID int64  `form:"viaje_id"`
	Estado  string `form:"estado" validate:"omitempty,oneof=Registrada Proceso Finalizada"`
	Tipo    string `form:"tipo"`
	Page    int    `form:"page,default=1"   validate:"min=1"`
	Limit   int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

// CrearViajeBuqueRequest registers a vessel visit. The buque and its flota
// row are created on the fly when unknown.
type CrearViajeBuqueRequest struct {
	PuertoID     string           `json:"puerto_id"     validate:"required,max=50"`
	NombreBuque  string           `json:"nombre_buque"  validate:"required,max=100"`
	MaterialID   *int64           `json:"material_id"`
	Peso         *decimal.Decimal `json:"peso"`
	FechaLlegada *string          `json:"fecha_llegada"` // ISO-8601
}

type CrearViajeCamionRequest struct {
	PuertoID   string           `json:"puerto_id" validate:"required,max=50"`
	Placa      string           `json:"placa"     validate:"required,max=6"`
	MaterialID *int64           `json:"material_id"`
	Peso       *decimal.Decimal `json:"peso"`
}

// IngresoSalidaRequest stamps a truck's gate-in / gate-out.
type IngresoSalidaRequest struct {
	FechaHora *string          `json:"fecha_hora"` // ISO-8601; empty = now
	PesoReal  *decimal.Decimal `json:"peso_real"`
}

// ChgEstadoFlotaRequest flips the operator-side release state of a fleet.
// Finalization (estado=false on an active fleet) notifies the external system.
type ChgEstadoFlotaRequest struct {
	Referencia string `json:"referencia" validate:"required,max=300"`
	Estado     bool   `json:"estado"`
}

type CrearBlRequest struct {
	NoBl     string          `json:"no_bl"    validate:"required,max=50"`
	PuertoID string          `json:"puerto_id" validate:"required,max=50"`
	Material string          `json:"material" validate:"required"`
	Cliente  string          `json:"cliente"  validate:"required"`
	Peso     decimal.Decimal `json:"peso"     validate:"required"`
}

type ChgEstadoBlRequest struct {
	NoBl   string `json:"no_bl" validate:"required,max=50"`
	Estado bool   `json:"estado"`
}

type CrearTransaccionRequest struct {
	PuertoID   string  `json:"puerto_id"  validate:"required,max=50"`
	MaterialID int64   `json:"material_id" validate:"required"`
	Tipo       string  `json:"tipo"        validate:"required,max=50"`
	Ref1       *string `json:"ref1"        validate:"omitempty,max=50"`
	Ref2       *string `json:"ref2"        validate:"omitempty,max=50"`
	OrigenID   *int64  `json:"origen_id"`
	DestinoID  *int64  `json:"destino_id"`
	Pit        *int    `json:"pit"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ViajeResponse struct {
	ID           int64            `json:"id"`
	PuertoID     string           `json:"puerto_id"`
	FlotaID      int64            `json:"flota_id"`
	Referencia   string           `json:"referencia"`
	MaterialID   *int64           `json:"material_id"`
	FechaLlegada *string          `json:"fecha_llegada"`
	FechaSalida  *string          `json:"fecha_salida"`
	PesoReal     *decimal.Decimal `json:"peso_real"`
}

type TransaccionResponse struct {
	ID         int64  `json:"id"`
	ViajeID    *int64 `json:"viaje_id"`
	MaterialID int64  `json:"material_id"`
	Material   string `json:"material"`
	Tipo       string `json:"tipo"`
	Estado     string `json:"estado"`
	Pit        *int   `json:"pit"`
	Leido      bool   `json:"leido"`
}

type TransaccionListResponse struct {
	Data  []TransaccionResponse `json:"data"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}

type BlResponse struct {
	ID             int64           `json:"id"`
	NoBl           string          `json:"no_bl"`
	ViajeID        int64           `json:"viaje_id"`
	MaterialID     int64           `json:"material_id"`
	ClienteID      int64           `json:"cliente_id"`
	Peso           decimal.Decimal `json:"peso"`
	EstadoPuerto   bool            `json:"estado_puerto"`
	EstadoOperador bool            `json:"estado_operador"`
}
