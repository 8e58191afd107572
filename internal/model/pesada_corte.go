package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PesadaCorte es el snapshot inmutable de un grupo de pesadas acumuladas,
// listo para reporte externo. Ref se genera en dos fases: la fila se inserta
// con Ref vacío para obtener el id, y luego se actualiza con
// "{puerto_id}-{uuid8}-{id}". Una fila con Ref vacío es un estado intermedio
// recuperable, no un error.
// Estado de envío: Enviado=false hasta que el integrador confirma recepción.
type PesadaCorte struct {
	ID          int64            `gorm:"primaryKey"`
	PuertoID    string           `gorm:"type:varchar(50);not null;index:idx_cortes_puerto_tran"`
	Transaccion int64            `gorm:"not null;index:idx_cortes_puerto_tran"`
	Consecutivo int              `gorm:"not null"`
	Pit         *int
	Material    *string          `gorm:"type:varchar(100)"`
	Peso        *decimal.Decimal `gorm:"type:decimal(10,2)"`
	Ref         string           `gorm:"type:varchar(255);not null;default:''"`
	Enviado     bool             `gorm:"not null;default:false"`
	FechaHora   time.Time        `gorm:"not null"`
	UsuarioID   *int64

	// Campos de reintento usados por el cron de reenvío al integrador.
	ReintentosEnvio int        `gorm:"not null;default:0"`
	ProximoReenvio  *time.Time `gorm:"column:proximo_reenvio"`
	UltimoError     *string
}

func (PesadaCorte) TableName() string { return "pesadas_corte" }
