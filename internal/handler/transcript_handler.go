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

// TranscriptHandler exposes the student transcript endpoints.
type TranscriptHandler struct {
	transcripts *service.TranscriptService
	pdf         *export.PDFExporter
}

// NewTranscriptHandler constructs handler.
func NewTranscriptHandler(transcripts *service.TranscriptService) *TranscriptHandler {
	return &TranscriptHandler{transcripts: transcripts, pdf: export.NewPDFExporter()}
}

// Get godoc
// @Summary Multi-semester transcript for a student
// @Tags Transcripts
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/transcript [get]
func (h *TranscriptHandler) Get(c *gin.Context) {
	transcript, err := h.transcripts.GetTranscript(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, transcript, nil)
}

// Export godoc
// @Summary Export a student transcript as PDF
// @Tags Transcripts
// @Produce application/pdf
// @Param id path string true "Student ID"
// @Success 200 {string} string "PDF payload"
// @Router /students/{id}/transcript/export [get]
func (h *TranscriptHandler) Export(c *gin.Context) {
	transcript, err := h.transcripts.GetTranscript(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	dataset := export.Dataset{
		Headers: []string{"semester", "course", "title", "credits", "letter", "gpa_points", "cumulative_gpa"},
	}
	for _, semester := range transcript.Semesters {
		for i, course := range semester.Courses {
			record := map[string]string{
				"semester":       semester.SemesterName,
				"course":         course.CourseCode,
				"title":          course.CourseTitle,
				"credits":        fmt.Sprintf("%d", course.Credits),
				"letter":         course.Letter,
				"gpa_points":     fmt.Sprintf("%.1f", course.GPAPoints),
				"cumulative_gpa": "",
			}
			if i == len(semester.Courses)-1 {
				record["cumulative_gpa"] = fmt.Sprintf("%.2f", semester.CumulativeGPA)
			}
			dataset.Rows = append(dataset.Rows, record)
		}
	}
	payload, err := h.pdf.Render(dataset, fmt.Sprintf("Transcript %s", transcript.StudentID))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf"))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=transcript-%s.pdf", transcript.StudentID))
	c.Data(http.StatusOK, "application/pdf", payload)
}
