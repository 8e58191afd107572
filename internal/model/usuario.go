package model

import "time"

// Usuario es un operador del sistema. Clave guarda el hash bcrypt;
// Recuperacion el token vigente de restablecimiento, si existe.
type Usuario struct {
	ID              int64  `gorm:"primaryKey"`
	NickName        string `gorm:"type:varchar(10);not null;uniqueIndex"`
	FullName        string `gorm:"type:varchar(100);not null"`
	Cedula          int64  `gorm:"not null"`
	Email           string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Clave           string `gorm:"type:varchar(200);not null"`
	RolID           int64  `gorm:"not null"`
	Recuperacion    *string `gorm:"type:varchar(300)"`
	Foto            *string
	Estado          bool      `gorm:"not null"`
	FechaModificado time.Time `gorm:"autoUpdateTime"`

	Rol *Rol `gorm:"foreignKey:RolID"`
}

func (Usuario) TableName() string { return "usuarios" }

// Rol agrupa permisos de acceso. La administración fina de permisos por
// pantalla vive en el panel administrativo, fuera de este servicio.
type Rol struct {
	ID     int64  `gorm:"primaryKey"`
	Nombre string `gorm:"type:varchar(50);uniqueIndex"`
	Estado bool
}

func (Rol) TableName() string { return "roles" }
