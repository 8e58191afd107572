package model

import "github.com/shopspring/decimal"

// Material es un producto a granel manejado por el puerto.
type Material struct {
	ID       int64            `gorm:"primaryKey"`
	Nombre   string           `gorm:"type:varchar(100);uniqueIndex"`
	Tipo     string           `gorm:"type:varchar(50);not null"`
	Densidad *decimal.Decimal `gorm:"type:decimal(4,2)"`
}

func (Material) TableName() string { return "materiales" }
