package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sisacad/sisacad-api/internal/models"
	"github.com/sisacad/sisacad-api/internal/service"
	appErrors "github.com/sisacad/sisacad-api/pkg/errors"
	"github.com/sisacad/sisacad-api/pkg/response"
)

// BlockHandler manages the schedule slot catalog endpoints.
type BlockHandler struct {
	service *service.BlockService
	cascade *service.CascadeService
}

// NewBlockHandler constructs handler.
func NewBlockHandler(svc *service.BlockService, cascade *service.CascadeService) *BlockHandler {
	return &BlockHandler{service: svc, cascade: cascade}
}

// List godoc
// @Summary List schedule blocks
// @Tags Blocks
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /blocks [get]
func (h *BlockHandler) List(c *gin.Context) {
	blocks, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, blocks, nil)
}

// Create godoc
// @Summary Register a schedule block
// @Tags Blocks
// @Accept json
// @Produce json
// @Param payload body models.CreateScheduleBlockRequest true "Block definition"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /blocks [post]
func (h *BlockHandler) Create(c *gin.Context) {
	var req models.CreateScheduleBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	block, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, block)
}

// NextCode godoc
// @Summary Preview the code a new schedule block would receive
// @Tags Blocks
// @Produce json
// @Param day query string true "Weekday"
// @Param start query string true "Start time HH:MM"
// @Param hours query int true "Teaching hours"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /blocks/next-code [get]
func (h *BlockHandler) NextCode(c *gin.Context) {
	hours, err := strconv.Atoi(c.Query("hours"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "hours must be an integer"))
		return
	}
	code, err := h.service.NextCode(c.Request.Context(), c.Query("day"), c.Query("start"), hours)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"code": code}, nil)
}

// Update godoc
// @Summary Move a schedule block to a new placement
// @Tags Blocks
// @Accept json
// @Produce json
// @Param id path string true "Block ID"
// @Param payload body models.EditScheduleBlockRequest true "New placement"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /blocks/{id} [put]
func (h *BlockHandler) Update(c *gin.Context) {
	var req models.EditScheduleBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	block, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, block, nil)
}

// CascadePlan godoc
// @Summary Preview what deleting a schedule block would remove
// @Tags Blocks
// @Produce json
// @Param id path string true "Block ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /blocks/{id}/cascade [get]
func (h *BlockHandler) CascadePlan(c *gin.Context) {
	scope := models.CascadeScope{Kind: models.CascadeScheduleBlock, RootID: c.Param("id")}
	plan, err := h.cascade.Plan(c.Request.Context(), scope)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plan, nil)
}

// Delete godoc
// @Summary Delete a schedule block and its dependents
// @Tags Blocks
// @Produce json
// @Param id path string true "Block ID"
// @Param confirm query bool false "Confirm deletion of dependents"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /blocks/{id} [delete]
func (h *BlockHandler) Delete(c *gin.Context) {
	scope := models.CascadeScope{Kind: models.CascadeScheduleBlock, RootID: c.Param("id")}
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
