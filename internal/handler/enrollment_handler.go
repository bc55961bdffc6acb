package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sisacad/sisacad-api/internal/models"
	"github.com/sisacad/sisacad-api/internal/service"
	appErrors "github.com/sisacad/sisacad-api/pkg/errors"
	"github.com/sisacad/sisacad-api/pkg/response"
)

// EnrollmentHandler manages enrollment endpoints.
type EnrollmentHandler struct {
	service *service.EnrollmentService
	exports *service.ScheduleExportService
}

// NewEnrollmentHandler constructs handler.
func NewEnrollmentHandler(svc *service.EnrollmentService, exports *service.ScheduleExportService) *EnrollmentHandler {
	return &EnrollmentHandler{service: svc, exports: exports}
}

// Enroll godoc
// @Summary Enroll a student into an assignment
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body models.EnrollRequest true "Enrollment request"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /enrollments [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	var req models.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	enrollment, err := h.service.Enroll(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

// Withdraw godoc
// @Summary Withdraw an enrollment, keeping its history
// @Tags Enrollments
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /enrollments/{id}/withdraw [post]
func (h *EnrollmentHandler) Withdraw(c *gin.Context) {
	if err := h.service.Withdraw(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Unenroll godoc
// @Summary Remove an enrollment and its attendance records
// @Tags Enrollments
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /enrollments/{id} [delete]
func (h *EnrollmentHandler) Unenroll(c *gin.Context) {
	if err := h.service.Unenroll(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// EligibleSections godoc
// @Summary List sections a student may enroll in
// @Tags Enrollments
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/eligible-sections [get]
func (h *EnrollmentHandler) EligibleSections(c *gin.Context) {
	result, err := h.service.ListEligibleSections(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Schedule godoc
// @Summary Get a student's weekly schedule
// @Tags Enrollments
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/schedule [get]
func (h *EnrollmentHandler) Schedule(c *gin.Context) {
	schedule, err := h.service.ListStudentSchedule(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// ExportSchedule godoc
// @Summary Export a student's schedule as CSV or PDF
// @Tags Enrollments
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Student ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/schedule/export [get]
func (h *EnrollmentHandler) ExportSchedule(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	payload, contentType, err := h.exports.Export(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := fmt.Sprintf("schedule-%s-%s.%s", c.Param("id"), time.Now().Format("20060102"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}

// CurrentCycle godoc
// @Summary Compute the current cycle for a start label
// @Tags Cycles
// @Produce json
// @Param startLabel query string true "Start label, e.g. 2023-I"
// @Success 200 {object} response.Envelope
// @Router /cycles/current [get]
func (h *EnrollmentHandler) CurrentCycle(c *gin.Context) {
	label := c.Query("startLabel")
	cycle, roman, warning := h.service.CurrentCycle(label)
	payload := gin.H{"cycle": cycle, "label": roman}
	if warning != "" {
		payload["warning"] = warning
	}
	response.JSON(c, http.StatusOK, payload, nil)
}
