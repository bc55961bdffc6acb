package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sisacad/sisacad-api/internal/models"
	"github.com/sisacad/sisacad-api/internal/service"
	appErrors "github.com/sisacad/sisacad-api/pkg/errors"
	"github.com/sisacad/sisacad-api/pkg/response"
)

// PrerequisiteHandler manages prerequisite edge endpoints.
type PrerequisiteHandler struct {
	service *service.PrerequisiteService
}

// NewPrerequisiteHandler constructs handler.
func NewPrerequisiteHandler(svc *service.PrerequisiteService) *PrerequisiteHandler {
	return &PrerequisiteHandler{service: svc}
}

// ListForCourse godoc
// @Summary List a course's prerequisites
// @Tags Prerequisites
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /catalog/courses/{id}/prerequisites [get]
func (h *PrerequisiteHandler) ListForCourse(c *gin.Context) {
	edges, err := h.service.ListForCourse(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, edges, nil)
}

// ListWithPrerequisites godoc
// @Summary List courses that have prerequisites
// @Tags Prerequisites
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /catalog/courses/with-prerequisites [get]
func (h *PrerequisiteHandler) ListWithPrerequisites(c *gin.Context) {
	grouped, err := h.service.ListWithPrerequisites(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grouped, nil)
}

// DeleteForCourse godoc
// @Summary Delete all prerequisites of a course
// @Tags Prerequisites
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /catalog/courses/{id}/prerequisites [delete]
func (h *PrerequisiteHandler) DeleteForCourse(c *gin.Context) {
	removed, err := h.service.DeleteForCourse(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"removed": removed}, nil)
}

// Create godoc
// @Summary Register a prerequisite edge
// @Tags Prerequisites
// @Accept json
// @Produce json
// @Param payload body models.CreatePrerequisiteRequest true "Edge definition"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /prerequisites [post]
func (h *PrerequisiteHandler) Create(c *gin.Context) {
	var req models.CreatePrerequisiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	edge, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, edge)
}

// Delete godoc
// @Summary Delete a prerequisite edge
// @Tags Prerequisites
// @Produce json
// @Param id path string true "Prerequisite ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /prerequisites/{id} [delete]
func (h *PrerequisiteHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
