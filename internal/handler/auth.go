package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ItalcolColombia/miit-api-sub000/internal/apierror"
	"github.com/ItalcolColombia/miit-api-sub000/internal/dto"
	"github.com/ItalcolColombia/miit-api-sub000/internal/service"
)

type AuthHandler struct{ svc service.AuthService }

func NewAuthHandler(svc service.AuthService) *AuthHandler { return &AuthHandler{svc: svc} }

// Login godoc
// @Summary      Iniciar sesión
// @Description  Autentica con nick_name y clave; retorna access y refresh token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body body dto.LoginRequest true "Credenciales"
// @Success      200  {object} dto.LoginResponse
// @Failure      401  {object} apierror.APIError
// @Router       /v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New(http.StatusUnauthorized, "Credenciales inválidas"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Refresh godoc
// @Summary      Renovar tokens
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body body dto.RefreshRequest true "Refresh token vigente"
// @Success      200  {object} dto.LoginResponse
// @Failure      401  {object} apierror.APIError
// @Router       /v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New(http.StatusUnauthorized, "Token inválido o expirado"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CrearUsuario godoc
// @Summary      Crear usuario
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearUsuarioRequest true "Datos del usuario"
// @Success      201  {object} dto.UsuarioResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/usuarios [post]
func (h *AuthHandler) CrearUsuario(c *gin.Context) {
	var req dto.CrearUsuarioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearUsuario(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListarUsuarios godoc
// @Summary      Listar usuarios
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} dto.UsuarioResponse
// @Router       /v1/usuarios [get]
func (h *AuthHandler) ListarUsuarios(c *gin.Context) {
	resp, err := h.svc.ListarUsuarios(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RecuperarClave godoc
// @Summary      Solicitar recuperación de clave
// @Description  Envía por correo un token de restablecimiento. Responde 202 exista o no el correo.
// @Tags         auth
// @Accept       json
// @Param        body body dto.RecuperarClaveRequest true "Correo registrado"
// @Success      202
// @Router       /v1/auth/recuperar [post]
func (h *AuthHandler) RecuperarClave(c *gin.Context) {
	var req dto.RecuperarClaveRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.RecuperarClave(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

// RestablecerClave godoc
// @Summary      Restablecer clave con token
// @Tags         auth
// @Accept       json
// @Param        body body dto.RestablecerClaveRequest true "Token y nueva clave"
// @Success      204
// @Failure      400 {object} apierror.APIError
// @Router       /v1/auth/restablecer [post]
func (h *AuthHandler) RestablecerClave(c *gin.Context) {
	var req dto.RestablecerClaveRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.RestablecerClave(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
