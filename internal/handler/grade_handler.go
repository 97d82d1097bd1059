package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gradeflow-api/internal/service"
	appErrors "github.com/noah-isme/gradeflow-api/pkg/errors"
	"github.com/noah-isme/gradeflow-api/pkg/export"
	"github.com/noah-isme/gradeflow-api/pkg/response"
)

// GradeHandler exposes grade ledger and summary endpoints.
type GradeHandler struct {
	grades *service.GradeService
	csv    *export.CSVExporter
}

// NewGradeHandler constructs handler.
func NewGradeHandler(grades *service.GradeService) *GradeHandler {
	return &GradeHandler{grades: grades, csv: export.NewCSVExporter()}
}

// SubmitBulk godoc
// @Summary Bulk submit assessment scores for a section
// @Tags Grades
// @Accept json
// @Produce json
// @Param id path string true "Section ID"
// @Param payload body service.BulkGradesRequest true "Bulk payload"
// @Success 200 {object} response.Envelope
// @Router /sections/{id}/grades/bulk [post]
func (h *GradeHandler) SubmitBulk(c *gin.Context) {
	var req service.BulkGradesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.grades.SubmitBulkGrades(c.Request.Context(), c.Param("id"), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// ListLedger godoc
// @Summary List raw ledger rows for a section
// @Tags Grades
// @Produce json
// @Param id path string true "Section ID"
// @Success 200 {object} response.Envelope
// @Router /sections/{id}/grades [get]
func (h *GradeHandler) ListLedger(c *gin.Context) {
	scores, err := h.grades.ListLedger(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, scores, nil)
}

// Summary godoc
// @Summary Aggregated grade summaries for a section
// @Tags Grades
// @Produce json
// @Param id path string true "Section ID"
// @Success 200 {object} response.Envelope
// @Router /sections/{id}/grades/summary [get]
func (h *GradeHandler) Summary(c *gin.Context) {
	summary, err := h.grades.GetSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// ExportSummary godoc
// @Summary Export section grade summaries as CSV
// @Tags Grades
// @Produce text/csv
// @Param id path string true "Section ID"
// @Success 200 {string} string "CSV payload"
// @Router /sections/{id}/grades/summary/export [get]
func (h *GradeHandler) ExportSummary(c *gin.Context) {
	summary, err := h.grades.GetSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	dataset := export.Dataset{
		Headers: []string{"student", "course", "section", "percentage", "letter", "gpa_points", "status"},
	}
	for _, row := range summary.Summaries {
		record := map[string]string{
			"student":    row.StudentName,
			"course":     row.CourseCode,
			"section":    row.SectionCode,
			"percentage": "",
			"letter":     "",
			"gpa_points": "",
			"status":     string(row.Status),
		}
		if row.Percentage != nil {
			record["percentage"] = fmt.Sprintf("%.2f", *row.Percentage)
			record["letter"] = *row.Letter
			record["gpa_points"] = fmt.Sprintf("%.1f", *row.GPAPoints)
		}
		dataset.Rows = append(dataset.Rows, record)
	}
	payload, err := h.csv.Render(dataset)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv"))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=grades-%s.csv", summary.SectionID))
	c.Data(http.StatusOK, "text/csv", payload)
}
