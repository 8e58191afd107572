package model

import "time"

// Acciones auditables.
const (
	AuditCreate = "CREATE"
	AuditUpdate = "UPDATE"
	AuditDelete = "DELETE"
)

// LogAuditoria registra cada mutación de entidad: quién, qué y los valores
// antes/después serializados como JSON. Se escribe dentro de la transacción
// que origina el cambio; si eso falla, el registro se reintenta fuera de
// banda (sesión fresca o cola de respaldo) — nunca se revierte la operación
// principal por un fallo de auditoría.
type LogAuditoria struct {
	ID            int64     `gorm:"primaryKey"`
	Entidad       string    `gorm:"type:varchar(100);not null;index"`
	EntidadID     string    `gorm:"type:varchar(50);not null"`
	Accion        string    `gorm:"type:varchar(30);not null"`
	ValorAnterior []byte    `gorm:"type:jsonb"`
	ValorNuevo    []byte    `gorm:"type:jsonb"`
	FechaHora     time.Time `gorm:"not null"`
	UsuarioID     *int64
}

func (LogAuditoria) TableName() string { return "logs_auditoria" }
