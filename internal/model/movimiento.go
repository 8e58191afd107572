package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos y acciones válidos para un movimiento de saldo.
const (
	MovimientoEntrada = "Entrada"
	MovimientoSalida  = "Salida"

	AccionAutomatico = "Automatico"
	AccionAjuste     = "Ajuste"
)

// Movimiento registra cada evento que afecta el saldo de un material en un
// almacenamiento. TransaccionID es nulo para ajustes manuales.
// Invariante: SaldoNuevo = SaldoAnterior ± Peso según Tipo. Inmutable una vez
// creado.
type Movimiento struct {
	ID               int64   `gorm:"primaryKey"`
	TransaccionID    *int64  `gorm:"index"`
	AlmacenamientoID int64   `gorm:"not null;index"`
	MaterialID       int64   `gorm:"not null;index"`
	Tipo             string  `gorm:"type:varchar(50);not null"`
	Accion           string  `gorm:"type:varchar(50);not null"`
	Observacion      *string `gorm:"type:varchar(50)"`
	FechaHora        time.Time        `gorm:"not null"`
	Peso             decimal.Decimal  `gorm:"type:decimal(14,2);not null"`
	SaldoAnterior    decimal.Decimal  `gorm:"type:decimal(14,2);not null"`
	SaldoNuevo       *decimal.Decimal `gorm:"type:decimal(14,2)"`
	UsuarioID        *int64
}

func (Movimiento) TableName() string { return "movimientos" }
