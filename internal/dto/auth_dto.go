package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type LoginRequest struct {
	NickName string `json:"nick_name" validate:"required,min=1"`
	Clave    string `json:"clave"     validate:"required,min=4"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type CrearUsuarioRequest struct {
	NickName string `json:"nick_name" validate:"required,min=1,max=10"`
	FullName string `json:"full_name" validate:"required,min=2,max=100"`
	Cedula   int64  `json:"cedula"    validate:"required"`
	Email    string `json:"email"     validate:"required,email"`
	Clave    string `json:"clave"     validate:"required,min=8"`
	RolID    int64  `json:"rol_id"    validate:"required"`
}

type RecuperarClaveRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type RestablecerClaveRequest struct {
	Token string `json:"token" validate:"required"`
	Clave string `json:"clave" validate:"required,min=8"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type UsuarioResponse struct {
	ID       int64  `json:"id"`
	NickName string `json:"nick_name"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Rol      string `json:"rol"`
	Estado   bool   `json:"estado"`
}

type LoginResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	TokenType    string          `json:"token_type"`
	ExpiresIn    int             `json:"expires_in"` // seconds
	User         UsuarioResponse `json:"user"`
}
