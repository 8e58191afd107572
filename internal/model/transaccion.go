package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del ciclo de vida de una transacción de cargue/descargue.
const (
	TransaccionRegistrada = "Registrada"
	TransaccionProceso    = "Proceso"
	TransaccionFinalizada = "Finalizada"
)

// Transaccion es una operación lógica de cargue o descargue (p. ej. el
// despacho de un camión) a la que se atribuyen pesadas y movimientos.
type Transaccion struct {
	ID            int64  `gorm:"primaryKey"`
	ViajeID       *int64 `gorm:"index"`
	MaterialID    int64  `gorm:"not null"`
	Tipo          string `gorm:"type:varchar(50);not null"`
	Ref1          *string `gorm:"type:varchar(50)"`
	Ref2          *string `gorm:"type:varchar(50)"`
	FechaCreacion *time.Time
	FechaInicio   *time.Time
	FechaFin      *time.Time
	OrigenID      *int64
	DestinoID     *int64
	Estado        string `gorm:"type:varchar(12);not null"`
	Leido         bool   `gorm:"not null;default:false"`
	BuqueID       *int64
	CamionID      *int64
	Pit           *int
	PesoReal      *decimal.Decimal `gorm:"type:decimal(14,2)"`

	Material *Material `gorm:"foreignKey:MaterialID"`
}

func (Transaccion) TableName() string { return "transacciones" }
