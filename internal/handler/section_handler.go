package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sisacad/sisacad-api/internal/models"
	"github.com/sisacad/sisacad-api/internal/service"
	"github.com/sisacad/sisacad-api/pkg/response"
)

// SectionHandler manages section cascade deletion endpoints.
type SectionHandler struct {
	cascade *service.CascadeService
}

// NewSectionHandler constructs handler.
func NewSectionHandler(cascade *service.CascadeService) *SectionHandler {
	return &SectionHandler{cascade: cascade}
}

// CascadePlan godoc
// @Summary Preview what deleting a section would remove
// @Tags Sections
// @Produce json
// @Param id path string true "Section ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sections/{id}/cascade [get]
func (h *SectionHandler) CascadePlan(c *gin.Context) {
	scope := models.CascadeScope{Kind: models.CascadeSection, RootID: c.Param("id")}
	plan, err := h.cascade.Plan(c.Request.Context(), scope)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plan, nil)
}

// Delete godoc
// @Summary Delete a section and all its dependent records
// @Tags Sections
// @Produce json
// @Param id path string true "Section ID"
// @Param confirm query bool false "Confirm deletion of dependents"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /sections/{id} [delete]
func (h *SectionHandler) Delete(c *gin.Context) {
	scope := models.CascadeScope{Kind: models.CascadeSection, RootID: c.Param("id")}
	confirmed := c.Query("confirm") == "true"

	result, plan, err := h.cascade.Execute(c.Request.Context(), scope, confirmed)
	if err != nil {
		if plan != nil {
			response.ErrorWithData(c, err, plan)
			return
		}
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
