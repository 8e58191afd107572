package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ItalcolColombia/miit-api-sub000/internal/apierror"
	"github.com/ItalcolColombia/miit-api-sub000/internal/dto"
	"github.com/ItalcolColombia/miit-api-sub000/internal/service"
)

type TransaccionesHandler struct{ svc service.TransaccionService }

func NewTransaccionesHandler(svc service.TransaccionService) *TransaccionesHandler {
	return &TransaccionesHandler{svc: svc}
}

// CrearTransaccion godoc
// @Summary      Crear transacción de cargue/descargue
// @Tags         transacciones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearTransaccionRequest true "Datos de la transacción"
// @Success      201  {object} dto.TransaccionResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/transacciones [post]
func (h *TransaccionesHandler) CrearTransaccion(c *gin.Context) {
	var req dto.CrearTransaccionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearTransaccion(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// GetTransaccion godoc
// @Summary      Consultar transacción
// @Tags         transacciones
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "ID de la transacción"
// @Success      200 {object} dto.TransaccionResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/transacciones/{id} [get]
func (h *TransaccionesHandler) GetTransaccion(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.GetTransaccion(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// IniciarTransaccion godoc
// @Summary      Iniciar transacción (Registrada a Proceso)
// @Tags         transacciones
// @Security     BearerAuth
// @Param        id path int true "ID de la transacción"
// @Success      204
// @Failure      400 {object} apierror.APIError
// @Router       /v1/transacciones/{id}/iniciar [put]
func (h *TransaccionesHandler) IniciarTransaccion(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.IniciarTransaccion(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// FinalizarTransaccion godoc
// @Summary      Finalizar transacción (Proceso a Finalizada)
// @Tags         transacciones
// @Security     BearerAuth
// @Param        id path int true "ID de la transacción"
// @Success      204
// @Failure      400 {object} apierror.APIError
// @Router       /v1/transacciones/{id}/finalizar [put]
func (h *TransaccionesHandler) FinalizarTransaccion(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.FinalizarTransaccion(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListarTransacciones godoc
// @Summary      Listar transacciones
// @Tags         transacciones
// @Produce      json
// @Security     BearerAuth
// @Param        viaje_id query int    false "Filtrar por viaje"
// @Param        estado   query string false "Registrada | Proceso | Finalizada"
// @Param        tipo     query string false "Tipo de operación"
// @Success      200 {object} dto.TransaccionListResponse
// @Router       /v1/transacciones [get]
func (h *TransaccionesHandler) ListarTransacciones(c *gin.Context) {
	var filter dto.TransaccionFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	resp, err := h.svc.ListTransacciones(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(http.StatusBadRequest, "ID inválido"))
		return 0, false
	}
	return id, true
}
