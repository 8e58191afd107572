package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Almacenamiento es un silo o bodega del puerto.
type Almacenamiento struct {
	ID           int64           `gorm:"primaryKey"`
	Nombre       string          `gorm:"type:varchar(50);uniqueIndex"`
	Capacidad    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PoliMaterial bool            `gorm:"not null"`
}

func (Almacenamiento) TableName() string { return "almacenamientos" }

// AlmacenamientoMaterial es el saldo vigente de un material en un
// almacenamiento. Se actualiza in situ (upsert) en cada ajuste/movimiento;
// la clave compuesta es el punto de serialización efectivo — dos ajustes
// concurrentes al mismo par dependen del aislamiento de la transacción.
type AlmacenamientoMaterial struct {
	AlmacenamientoID int64           `gorm:"primaryKey"`
	MaterialID       int64           `gorm:"primaryKey"`
	Saldo            decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	FechaHora        time.Time       `gorm:"not null"`
	UsuarioID        *int64
}

func (AlmacenamientoMaterial) TableName() string { return "almacenamientos_materiales" }
