package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Pesada es una lectura individual de báscula dentro de una transacción.
// Consecutivo es float para permitir inserciones intermedias (p. ej. 2.5
// entre la 2 y la 3). Leido pasa a true una única vez, cuando la pesada
// queda consumida por un corte; nunca se elimina físicamente.
type Pesada struct {
	ID            int64            `gorm:"primaryKey"`
	TransaccionID *int64           `gorm:"index"`
	Consecutivo   float64          `gorm:"not null"`
	BasculaID     *int64
	FechaHora     time.Time        `gorm:"not null"`
	PesoMeta      *decimal.Decimal `gorm:"type:decimal(10,2)"`
	PesoReal      decimal.Decimal  `gorm:"type:decimal(10,2);not null"`
	PesoVuelo     *decimal.Decimal `gorm:"type:decimal(10,2)"`
	PesoFino      *decimal.Decimal `gorm:"type:decimal(10,2)"`
	UsuarioID     *int64
	Leido         bool `gorm:"not null;default:false;index"`
}

func (Pesada) TableName() string { return "pesadas" }
