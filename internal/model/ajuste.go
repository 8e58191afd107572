package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ajuste es una corrección manual de saldo. Delta = SaldoNuevo − SaldoAnterior
// y nunca es cero (los ajustes sin efecto se rechazan antes de insertar).
// Cada ajuste genera exactamente un Movimiento, enlazado en MovimientoID.
type Ajuste struct {
	ID               int64           `gorm:"primaryKey"`
	AlmacenamientoID int64           `gorm:"not null;index"`
	MaterialID       int64           `gorm:"not null;index"`
	SaldoAnterior    decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	SaldoNuevo       decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Delta            decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Motivo           string          `gorm:"type:varchar(255);not null"`
	UsuarioID        int64           `gorm:"not null"`
	MovimientoID     *int64
	FechaHora        time.Time `gorm:"not null;autoCreateTime"`
}

func (Ajuste) TableName() string { return "ajustes" }
