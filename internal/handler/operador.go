package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ItalcolColombia/miit-api-sub000/internal/dto"
	"github.com/ItalcolColombia/miit-api-sub000/internal/middleware"
	"github.com/ItalcolColombia/miit-api-sub000/internal/service"
)

// OperadorHandler agrupa los endpoints consumidos por el operador del
// terminal: viajes, flota y BLs.
type OperadorHandler struct {
	viajes service.ViajeService
	bls    service.BlService
}

func NewOperadorHandler(viajes service.ViajeService, bls service.BlService) *OperadorHandler {
	return &OperadorHandler{viajes: viajes, bls: bls}
}

// CrearViajeBuque godoc
// @Summary      Registrar visita de buque
// @Tags         operador
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearViajeBuqueRequest true "Datos del viaje"
// @Success      201  {object} dto.ViajeResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/operador/viajes/buque [post]
func (h *OperadorHandler) CrearViajeBuque(c *gin.Context) {
	var req dto.CrearViajeBuqueRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.viajes.CrearViajeBuque(c.Request.Context(), middleware.UsuarioID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// CrearViajeCamion godoc
// @Summary      Registrar visita de camión
// @Tags         operador
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearViajeCamionRequest true "Datos del viaje"
// @Success      201  {object} dto.ViajeResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/operador/viajes/camion [post]
func (h *OperadorHandler) CrearViajeCamion(c *gin.Context) {
	var req dto.CrearViajeCamionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.viajes.CrearViajeCamion(c.Request.Context(), middleware.UsuarioID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// RegistrarIngreso godoc
// @Summary      Registrar ingreso del viaje
// @Tags         operador
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        puerto_id path string                  true "Identificador del viaje en puerto"
// @Param        body      body dto.IngresoSalidaRequest true "Fecha y peso"
// @Success      200 {object} dto.ViajeResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/operador/viajes/{puerto_id}/ingreso [put]
func (h *OperadorHandler) RegistrarIngreso(c *gin.Context) {
	var req dto.IngresoSalidaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.viajes.RegistrarIngreso(c.Request.Context(), c.Param("puerto_id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RegistrarSalida godoc
// @Summary      Registrar salida del viaje
// @Tags         operador
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        puerto_id path string                  true "Identificador del viaje en puerto"
// @Param        body      body dto.IngresoSalidaRequest true "Fecha y peso"
// @Success      200 {object} dto.ViajeResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/operador/viajes/{puerto_id}/salida [put]
func (h *OperadorHandler) RegistrarSalida(c *gin.Context) {
	var req dto.IngresoSalidaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.viajes.RegistrarSalida(c.Request.Context(), c.Param("puerto_id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetViaje godoc
// @Summary      Consultar viaje por puerto_id
// @Tags         operador
// @Produce      json
// @Security     BearerAuth
// @Param        puerto_id path string true "Identificador del viaje en puerto"
// @Success      200 {object} dto.ViajeResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/operador/viajes/{puerto_id} [get]
func (h *OperadorHandler) GetViaje(c *gin.Context) {
	resp, err := h.viajes.GetViajeByPuertoID(c.Request.Context(), c.Param("puerto_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ChgEstadoFlota godoc
// @Summary      Cambiar estado de la flota
// @Description  La finalización (estado=false) dispara la notificación al sistema externo del terminal.
// @Tags         operador
// @Accept       json
// @Security     BearerAuth
// @Param        puerto_id path string                   true "Identificador del viaje en puerto"
// @Param        body      body dto.ChgEstadoFlotaRequest true "Nuevo estado"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Failure      502 {object} apierror.APIError
// @Router       /v1/operador/flota/{puerto_id}/estado [put]
func (h *OperadorHandler) ChgEstadoFlota(c *gin.Context) {
	var req dto.ChgEstadoFlotaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.viajes.ChgEstadoFlota(c.Request.Context(), c.Param("puerto_id"), req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CrearBl godoc
// @Summary      Registrar BL
// @Tags         operador
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearBlRequest true "Datos del BL"
// @Success      201  {object} dto.BlResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/operador/bls [post]
func (h *OperadorHandler) CrearBl(c *gin.Context) {
	var req dto.CrearBlRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.bls.CrearBl(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ChgEstadoBlOperador godoc
// @Summary      Cambiar estado operador de un BL
// @Tags         operador
// @Accept       json
// @Security     BearerAuth
// @Param        body body dto.ChgEstadoBlRequest true "Nuevo estado"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Router       /v1/operador/bls/estado-operador [put]
func (h *OperadorHandler) ChgEstadoBlOperador(c *gin.Context) {
	var req dto.ChgEstadoBlRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.bls.ChgEstadoOperador(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ChgEstadoBlPuerto godoc
// @Summary      Cambiar estado puerto de un BL
// @Tags         operador
// @Accept       json
// @Security     BearerAuth
// @Param        body body dto.ChgEstadoBlRequest true "Nuevo estado"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Router       /v1/operador/bls/estado-puerto [put]
func (h *OperadorHandler) ChgEstadoBlPuerto(c *gin.Context) {
	var req dto.ChgEstadoBlRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.bls.ChgEstadoPuerto(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListarBls godoc
// @Summary      Listar BLs de un viaje
// @Tags         operador
// @Produce      json
// @Security     BearerAuth
// @Param        puerto_id path string true "Identificador del viaje en puerto"
// @Success      200 {array} dto.BlResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/operador/bls/{puerto_id} [get]
func (h *OperadorHandler) ListarBls(c *gin.Context) {
	resp, err := h.bls.ListByPuertoID(c.Request.Context(), c.Param("puerto_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
