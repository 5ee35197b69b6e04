package handler

import (
	"github.com/bitforja/solped/internal/solped/service"
	"github.com/gin-gonic/gin"
)

// CatalogHandler serves the area and unit lookup tables. Reads are open to
// every authenticated user; writes are mounted behind the supervisor check.
type CatalogHandler struct {
	catalog *service.CatalogService
}

func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// ListAreas GET /areas
func (h *CatalogHandler) ListAreas(c *gin.Context) {
	areas, err := h.catalog.ListAreas(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, areas)
}

type createAreaRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// CreateArea POST /areas
func (h *CatalogHandler) CreateArea(c *gin.Context) {
	var body createAreaRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		BadRequest(c, err.Error())
		return
	}
	area, err := h.catalog.CreateArea(c.Request.Context(), body.Name, body.Description)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, area)
}

// DeleteArea DELETE /areas/:id deactivates the area.
func (h *CatalogHandler) DeleteArea(c *gin.Context) {
	if err := h.catalog.DeactivateArea(c.Request.Context(), c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, nil)
}

// ListUnits GET /units
func (h *CatalogHandler) ListUnits(c *gin.Context) {
	units, err := h.catalog.ListUnits(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, units)
}

type createUnitRequest struct {
	Name   string `json:"name" binding:"required"`
	Symbol string `json:"symbol"`
}

// CreateUnit POST /units
func (h *CatalogHandler) CreateUnit(c *gin.Context) {
	var body createUnitRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		BadRequest(c, err.Error())
		return
	}
	unit, err := h.catalog.CreateUnit(c.Request.Context(), body.Name, body.Symbol)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, unit)
}

// DeleteUnit DELETE /units/:id deactivates the unit.
func (h *CatalogHandler) DeleteUnit(c *gin.Context) {
	if err := h.catalog.DeactivateUnit(c.Request.Context(), c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, nil)
}
