package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"examforge/internal/app"
	"examforge/internal/transport/http/response"
)

type ExamHandler struct {
	examService *app.ExamService
}

type RecordAttemptRequest struct {
	Topic   string `json:"topic" binding:"required,max=64"`
	Correct bool   `json:"correct"`
}

func NewExamHandler(examService *app.ExamService) *ExamHandler {
	return &ExamHandler{examService: examService}
}

func (h *ExamHandler) Generate(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	exam, err := h.examService.GeneratePersonalizedExam(c.Request.Context(), userID)
	if err != nil {
		var workflowErr *app.WorkflowError
		if errors.As(err, &workflowErr) {
			response.Error(c, http.StatusBadGateway, response.CodeUpstreamFailure,
				"exam generation failed at "+workflowErr.Stage+" stage")
			return
		}
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "exam generation failed")
		return
	}

	response.OK(c, gin.H{"exam": exam})
}

func (h *ExamHandler) RecordAttempt(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	var req RecordAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	if err := h.examService.RecordAttempt(c.Request.Context(), userID, req.Topic, req.Correct); err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "record attempt failed")
		return
	}

	response.OK(c, gin.H{"recorded": true})
}
