package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Viaje correlaciona la visita de una flota con el sistema de seguimiento
// del puerto mediante PuertoID (p. ej. "VOY2024001"). Es el identificador
// que el integrador externo usa en todas sus consultas.
type Viaje struct {
	ID           int64  `gorm:"primaryKey"`
	PuertoID     string `gorm:"type:varchar(50);uniqueIndex"`
	FlotaID      int64  `gorm:"not null"`
	MaterialID   *int64
	FechaLlegada *time.Time
	FechaSalida  *time.Time
	PesoReal     *decimal.Decimal `gorm:"type:decimal(10,2)"`

	Flota *Flota `gorm:"foreignKey:FlotaID"`
}

func (Viaje) TableName() string { return "viajes" }
