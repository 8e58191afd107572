package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de flota.
const (
	FlotaBuque  = "buque"
	FlotaCamion = "camion"
)

// Flota representa la visita de un buque o camión al puerto. Referencia es
// el identificador natural (nombre de buque o placa de camión).
type Flota struct {
	ID             int64           `gorm:"primaryKey"`
	Tipo           string          `gorm:"type:varchar(6);not null"`
	Referencia     string          `gorm:"type:varchar(300);uniqueIndex"`
	Consecutivo    float64         `gorm:"not null"`
	Peso           decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	FechaLlegada   *time.Time
	FechaSalida    *time.Time
	MaterialID     *int64
	EstadoPuerto   bool `gorm:"not null;default:true"`
	EstadoOperador bool `gorm:"not null;default:true"`
	UsuarioID      *int64
}

func (Flota) TableName() string { return "flotas" }

// Buque es el catálogo de buques conocidos.
type Buque struct {
	ID     int64  `gorm:"primaryKey"`
	Nombre string `gorm:"type:varchar(100);uniqueIndex"`
	Estado bool
}

func (Buque) TableName() string { return "buques" }

// Camion es el catálogo de camiones conocidos.
type Camion struct {
	ID     int64  `gorm:"primaryKey"`
	Placa  string `gorm:"type:varchar(6);uniqueIndex"`
	Puntos *int
}

func (Camion) TableName() string { return "camiones" }
