package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ItalcolColombia/miit-api-sub000/internal/dto"
	"github.com/ItalcolColombia/miit-api-sub000/internal/service"
)

type AuditoriaHandler struct{ svc service.AuditoriaService }

func NewAuditoriaHandler(svc service.AuditoriaService) *AuditoriaHandler {
	return &AuditoriaHandler{svc: svc}
}

// ListarAuditoria godoc
// @Summary      Consultar logs de auditoría
// @Tags         auditoria
// @Produce      json
// @Security     BearerAuth
// @Param        entidad    query string false "Entidad (ajustes, movimientos, ...)"
// @Param        entidad_id query string false "ID de la entidad"
// @Param        accion     query string false "crear | actualizar | eliminar"
// @Param        desde      query string false "Fecha YYYY-MM-DD"
// @Param        hasta      query string false "Fecha YYYY-MM-DD"
// @Success      200 {object} dto.AuditoriaListResponse
// @Router       /v1/auditoria [get]
func (h *AuditoriaHandler) ListarAuditoria(c *gin.Context) {
	var filter dto.AuditoriaFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
