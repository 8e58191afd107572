package dto

import "github.com/shopspring/decimal"

type CrearMaterialRequest struct {
	Nombre   string           `json:"nombre"   validate:"required,max=100"`
	Tipo     string           `json:"tipo"     validate:"required,max=50"`
	Densidad *decimal.Decimal `json:"densidad" validate:"omitempty,gt=0"`
}

type MaterialResponse struct {
	ID       int64            `json:"id"`
	Nombre   string           `json:"nombre"`
	Tipo     string           `json:"tipo"`
	Densidad *decimal.Decimal `json:"densidad"`
}
