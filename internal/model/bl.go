package model

import "github.com/shopspring/decimal"

// Bl es un Bill of Lading asociado al viaje de un buque. Los estados de
// liberación se actualizan de forma independiente por el puerto
// (EstadoPuerto) y por el operador (EstadoOperador).
type Bl struct {
	ID             int64  `gorm:"primaryKey"`
	NoBl           string `gorm:"type:varchar(50);uniqueIndex;column:no_bl"`
	ViajeID        int64  `gorm:"not null;index"`
	MaterialID     int64  `gorm:"not null"`
	ClienteID      int64  `gorm:"not null"`
	Peso           *decimal.Decimal `gorm:"type:decimal(10,2)"`
	EstadoPuerto   bool             `gorm:"not null;default:false"`
	EstadoOperador bool             `gorm:"not null;default:false"`
}

func (Bl) TableName() string { return "bls" }

// Cliente es el consignatario de un BL.
type Cliente struct {
	ID     int64  `gorm:"primaryKey"`
	Nombre string `gorm:"type:varchar(100);uniqueIndex"`
	Nit    *string `gorm:"type:varchar(20)"`
}

func (Cliente) TableName() string { return "clientes" }
