package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ItalcolColombia/miit-api-sub000/internal/apierror"
	"github.com/ItalcolColombia/miit-api-sub000/internal/dto"
	"github.com/ItalcolColombia/miit-api-sub000/internal/middleware"
	"github.com/ItalcolColombia/miit-api-sub000/internal/service"
)

type AjustesHandler struct{ svc service.AjusteService }

func NewAjustesHandler(svc service.AjusteService) *AjustesHandler {
	return &AjustesHandler{svc: svc}
}

// CrearAjuste godoc
// @Summary      Ajustar saldo de almacenamiento
// @Description  Fija el saldo de (almacenamiento, material) al valor indicado y genera el movimiento espejo. Saldo igual al actual se rechaza.
// @Tags         ajustes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearAjusteRequest true "Saldo objetivo"
// @Success      201  {object} dto.AjusteResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/ajustes [post]
func (h *AjustesHandler) CrearAjuste(c *gin.Context) {
	var req dto.CrearAjusteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	uid := middleware.UsuarioID(c)
	if uid == nil {
		c.JSON(http.StatusUnauthorized, apierror.New(http.StatusUnauthorized, "Autenticación requerida"))
		return
	}
	resp, err := h.svc.CrearAjuste(c.Request.Context(), *uid, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListarAjustes godoc
// @Summary      Listar ajustes
// @Tags         ajustes
// @Produce      json
// @Security     BearerAuth
// @Param        almacenamiento_id query int    false "Filtrar por almacenamiento"
// @Param        material_id       query int    false "Filtrar por material"
// @Param        desde             query string false "Fecha YYYY-MM-DD"
// @Param        hasta             query string false "Fecha YYYY-MM-DD"
// @Success      200 {object} dto.AjusteListResponse
// @Router       /v1/ajustes [get]
func (h *AjustesHandler) ListarAjustes(c *gin.Context) {
	var filter dto.AjusteFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	resp, err := h.svc.ListAjustes(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarMovimientos godoc
// @Summary      Listar movimientos del libro mayor
// @Tags         ajustes
// @Produce      json
// @Security     BearerAuth
// @Param        transaccion_id    query int    false "Filtrar por transacción"
// @Param        almacenamiento_id query int    false "Filtrar por almacenamiento"
// @Param        tipo              query string false "Entrada | Salida"
// @Param        accion            query string false "Automatico | Ajuste"
// @Success      200 {object} dto.MovimientoListResponse
// @Router       /v1/movimientos [get]
func (h *AjustesHandler) ListarMovimientos(c *gin.Context) {
	var filter dto.MovimientoFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	resp, err := h.svc.ListMovimientos(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarSaldos godoc
// @Summary      Saldos vigentes por almacenamiento
// @Tags         ajustes
// @Produce      json
// @Security     BearerAuth
// @Param        almacenamiento_id query int false "Filtrar por almacenamiento"
// @Success      200 {array} dto.SaldoResponse
// @Router       /v1/saldos [get]
func (h *AjustesHandler) ListarSaldos(c *gin.Context) {
	var almacenamientoID int64
	if raw := c.Query("almacenamiento_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New(http.StatusBadRequest, "almacenamiento_id inválido"))
			return
		}
		almacenamientoID = id
	}
	resp, err := h.svc.ListSaldos(c.Request.Context(), almacenamientoID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
