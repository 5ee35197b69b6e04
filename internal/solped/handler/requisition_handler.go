package handler

import (
	"fmt"
	"net/http"

	"github.com/bitforja/solped/internal/solped/service"
	"github.com/gin-gonic/gin"
)

// RequisitionHandler exposes the requisition lifecycle over HTTP.
type RequisitionHandler struct {
	lifecycle     *service.LifecycleService
	notifications *service.NotificationService
	export        *service.ExportService
}

func NewRequisitionHandler(lifecycle *service.LifecycleService, notifications *service.NotificationService, export *service.ExportService) *RequisitionHandler {
	return &RequisitionHandler{
		lifecycle:     lifecycle,
		notifications: notifications,
		export:        export,
	}
}

func listFilters(c *gin.Context) map[string]string {
	filters := map[string]string{}
	for _, key := range []string{"status", "priority", "area_id", "created_by_id", "search"} {
		if v := c.Query(key); v != "" {
			filters[key] = v
		}
	}
	return filters
}

// List GET /requisitions
func (h *RequisitionHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	items, total, err := h.lifecycle.List(c.Request.Context(), GetActor(c), page, pageSize, listFilters(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	Success(c, ListResponse{
		Items: items,
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      int(total),
			TotalPages: totalPages,
		},
	})
}

// Get GET /requisitions/:id
func (h *RequisitionHandler) Get(c *gin.Context) {
	req, err := h.lifecycle.Get(c.Request.Context(), GetActor(c), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, req)
}

// Create POST /requisitions
func (h *RequisitionHandler) Create(c *gin.Context) {
	var req service.CreateRequisitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	created, err := h.lifecycle.Create(c.Request.Context(), GetActor(c), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, created)
}

// Update PUT /requisitions/:id
func (h *RequisitionHandler) Update(c *gin.Context) {
	var patch service.UpdateRequisitionRequest
	if err := c.ShouldBindJSON(&patch); err != nil {
		BadRequest(c, err.Error())
		return
	}
	updated, err := h.lifecycle.Edit(c.Request.Context(), GetActor(c), c.Param("id"), &patch)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, updated)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

// UpdateStatus PATCH /requisitions/:id/status
func (h *RequisitionHandler) UpdateStatus(c *gin.Context) {
	var body updateStatusRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		BadRequest(c, err.Error())
		return
	}

	actor := GetActor(c)
	updated, plan, err := h.lifecycle.ChangeStatus(c.Request.Context(), actor, c.Param("id"), body.Status, body.Notes)
	if err != nil {
		HandleError(c, err)
		return
	}

	h.notifications.Dispatch(c.Request.Context(), updated.ID, actor.ID, plan)
	Success(c, updated)
}

type updateItemsRequest struct {
	Items []service.ItemInput `json:"items" binding:"required"`
}

// UpdateItems PUT /requisitions/:id/items
func (h *RequisitionHandler) UpdateItems(c *gin.Context) {
	var body updateItemsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		BadRequest(c, err.Error())
		return
	}
	updated, err := h.lifecycle.ReplaceItems(c.Request.Context(), GetActor(c), c.Param("id"), body.Items)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, updated)
}

// Delete DELETE /requisitions/:id
func (h *RequisitionHandler) Delete(c *gin.Context) {
	if err := h.lifecycle.Delete(c.Request.Context(), GetActor(c), c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, nil)
}

// Statistics GET /requisitions/statistics
func (h *RequisitionHandler) Statistics(c *gin.Context) {
	counts, err := h.lifecycle.Statistics(c.Request.Context(), GetActor(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, counts)
}

// Export GET /requisitions/export
func (h *RequisitionHandler) Export(c *gin.Context) {
	f, fileName, err := h.export.ExportRequisitions(c.Request.Context(), GetActor(c), listFilters(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, fileName))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}
