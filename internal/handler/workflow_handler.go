package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gradeflow-api/internal/service"
	appErrors "github.com/noah-isme/gradeflow-api/pkg/errors"
	"github.com/noah-isme/gradeflow-api/pkg/response"
)

// WorkflowHandler exposes the grade approval workflow endpoints.
type WorkflowHandler struct {
	workflow *service.WorkflowService
}

// NewWorkflowHandler constructs handler.
func NewWorkflowHandler(workflow *service.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{workflow: workflow}
}

// Transition godoc
// @Summary Apply a workflow action to a section's grade sheet
// @Tags Workflow
// @Accept json
// @Produce json
// @Param id path string true "Section ID"
// @Param payload body service.TransitionRequest true "Action payload"
// @Success 200 {object} response.Envelope
// @Router /sections/{id}/workflow [post]
func (h *WorkflowHandler) Transition(c *gin.Context) {
	var req service.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	state, err := h.workflow.Transition(c.Request.Context(), c.Param("id"), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state, nil)
}

// Get godoc
// @Summary Current workflow state with full audit history
// @Tags Workflow
// @Produce json
// @Param id path string true "Section ID"
// @Success 200 {object} response.Envelope
// @Router /sections/{id}/workflow [get]
func (h *WorkflowHandler) Get(c *gin.Context) {
	workflow, err := h.workflow.GetWorkflow(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, workflow, nil)
}
