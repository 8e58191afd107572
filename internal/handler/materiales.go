package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ItalcolColombia/miit-api-sub000/internal/dto"
	"github.com/ItalcolColombia/miit-api-sub000/internal/service"
)

type MaterialesHandler struct{ svc service.MaterialService }

func NewMaterialesHandler(svc service.MaterialService) *MaterialesHandler {
	return &MaterialesHandler{svc: svc}
}

// CrearMaterial godoc
// @Summary      Crear material
// @Tags         materiales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearMaterialRequest true "Datos del material"
// @Success      201  {object} dto.MaterialResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/materiales [post]
func (h *MaterialesHandler) CrearMaterial(c *gin.Context) {
	var req dto.CrearMaterialRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearMaterial(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListarMateriales godoc
// @Summary      Listar materiales
// @Tags         materiales
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} dto.MaterialResponse
// @Router       /v1/materiales [get]
func (h *MaterialesHandler) ListarMateriales(c *gin.Context) {
	resp, err := h.svc.ListMateriales(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
