package dto

import "encoding/json"

// ─── Filter / List ──────────────────────────────────────────────────────────

type AuditoriaFilter struct {
	Entidad   string `form:"entidad"`
	EntidadID string `form:"entidad_id"`
	Accion    string `form:"accion" validate:"omitempty,oneof=crear actualizar eliminar"`
	Desde     string `form:"desde"`
	Hasta     string `form:"hasta"`
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type LogAuditoriaResponse struct {
	ID            int64           `json:"id"`
	Entidad       string          `json:"entidad"`
	EntidadID     string          `json:"entidad_id"`
	Accion        string          `json:"accion"`
	ValorAnterior json.RawMessage `json:"valor_anterior,omitempty"`
	ValorNuevo    json.RawMessage `json:"valor_nuevo,omitempty"`
	UsuarioID     *int64          `json:"usuario_id"`
	FechaHora     string          `json:"fecha_hora"`
}

type AuditoriaListResponse struct {
	Data  []LogAuditoriaResponse `json:"data"`
	Total int64                  `json:"total"`
	Page  int                    `json:"page"`
	Limit int                    `json:"limit"`
}
