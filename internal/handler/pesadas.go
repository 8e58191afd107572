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

type PesadasHandler struct {
	svc   service.PesadaService
	envio service.EnvioService
}

func NewPesadasHandler(svc service.PesadaService, envio service.EnvioService) *PesadasHandler {
	return &PesadasHandler{svc: svc, envio: envio}
}

// CrearPesada godoc
// @Summary      Registrar pesada
// @Description  Registra una lectura de báscula. Idempotente por (transaccion, consecutivo).
// @Tags         pesadas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearPesadaRequest true "Lectura de báscula"
// @Success      201  {object} dto.PesadaResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/pesadas [post]
func (h *PesadasHandler) CrearPesada(c *gin.Context) {
	var req dto.CrearPesadaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearPesadaSiNoExiste(c.Request.Context(), middleware.UsuarioID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListarPesadas godoc
// @Summary      Listar pesadas
// @Tags         pesadas
// @Produce      json
// @Security     BearerAuth
// @Param        transaccion_id query int    false "Filtrar por transacción"
// @Param        leido          query bool   false "Filtrar por leído"
// @Param        page           query int    false "Página (default 1)"
// @Param        limit          query int    false "Registros por página (default 50)"
// @Success      200 {object} dto.PesadaListResponse
// @Router       /v1/pesadas [get]
func (h *PesadasHandler) ListarPesadas(c *gin.Context) {
	var filter dto.PesadaFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	resp, err := h.svc.ListPesadas(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AcumularPesadas godoc
// @Summary      Generar cortes de pesadas acumuladas
// @Description  Colapsa las pesadas sin leer del viaje en cortes inmutables y marca los rangos como leídos.
// @Tags         pesadas
// @Produce      json
// @Security     BearerAuth
// @Param        puerto_id      path  string true  "Identificador del viaje en puerto"
// @Param        transaccion_id query int    false "Limitar el corte a una transacción"
// @Success      200 {array} dto.PesadaAcumuladaResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/pesadas/acumuladas/{puerto_id} [get]
func (h *PesadasHandler) AcumularPesadas(c *gin.Context) {
	var tranID *int64
	if raw := c.Query("transaccion_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New(http.StatusBadRequest, "transaccion_id inválido"))
			return
		}
		tranID = &id
	}
	resp, err := h.svc.GetPesadasAcumuladas(c.Request.Context(), c.Param("puerto_id"), tranID, middleware.UsuarioID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// EnvioFinal godoc
// @Summary      Acumular y notificar al operador externo
// @Description  Genera los cortes pendientes y los entrega al operador en el modo solicitado (list, single o last). Sin pendientes envía un latido.
// @Tags         pesadas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        puerto_id path string               true "Identificador del viaje en puerto"
// @Param        body      body dto.EnvioFinalRequest true "Modo de entrega"
// @Success      200 {object} dto.EnvioFinalResponse
// @Failure      502 {object} apierror.APIError
// @Router       /v1/pesadas/envio-final/{puerto_id} [post]
func (h *PesadasHandler) EnvioFinal(c *gin.Context) {
	puertoID := c.Param("puerto_id")
	var req dto.EnvioFinalRequest
	if !bindAndValidate(c, &req) {
		return
	}

	items, err := h.svc.GetPesadasAcumuladas(c.Request.Context(), puertoID, nil, middleware.UsuarioID(c))
	if err != nil && !esNoEncontrado(err) {
		respondError(c, err)
		return
	}

	resp, err := h.envio.NotifyEnvioFinal(c.Request.Context(), puertoID, items, req.Modo)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PesadasParciales godoc
// @Summary      Cortes pendientes de la última transacción
// @Tags         pesadas
// @Produce      json
// @Security     BearerAuth
// @Param        puerto_id path string true "Identificador del viaje en puerto"
// @Success      200 {array} dto.PesadaAcumuladaResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/pesadas/pendientes/{puerto_id} [get]
func (h *PesadasHandler) PesadasParciales(c *gin.Context) {
	resp, err := h.svc.GetPendientesUltimaTransaccion(c.Request.Context(), c.Param("puerto_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UltimoCorte godoc
// @Summary      Referencia del último corte (lote final)
// @Tags         pesadas
// @Produce      json
// @Security     BearerAuth
// @Param        puerto_id   path string true "Identificador del viaje en puerto"
// @Param        transaccion path int    true "ID de la transacción"
// @Success      200 {object} map[string]string
// @Failure      404 {object} apierror.APIError
// @Router       /v1/pesadas/ultimo-corte/{puerto_id}/{transaccion} [get]
func (h *PesadasHandler) UltimoCorte(c *gin.Context) {
	tran, err := strconv.ParseInt(c.Param("transaccion"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(http.StatusBadRequest, "Transacción inválida"))
		return
	}
	ref, err := h.svc.GetLastCorteForTransaccion(c.Request.Context(), c.Param("puerto_id"), tran)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"referencia": ref})
}

// GenIdentificador godoc
// @Summary      Generar identificador provisional de pesada
// @Tags         pesadas
// @Produce      json
// @Security     BearerAuth
// @Param        puerto_id   path  string true  "Identificador del viaje en puerto"
// @Param        transaccion path  int    true  "ID de la transacción"
// @Param        prefix      query string false "Prefijo (default puerto_id)"
// @Success      200 {object} map[string]string
// @Router       /v1/pesadas/identificador/{puerto_id}/{transaccion} [get]
func (h *PesadasHandler) GenIdentificador(c *gin.Context) {
	puertoID := c.Param("puerto_id")
	tran, err := strconv.ParseInt(c.Param("transaccion"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(http.StatusBadRequest, "Transacción inválida"))
		return
	}
	prefix := c.DefaultQuery("prefix", puertoID)
	id, err := h.svc.GenPesadaIdentificador(c.Request.Context(), prefix, puertoID, tran)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"identificador": id})
}
