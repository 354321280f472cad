package handler

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"examforge/internal/app"
	"examforge/internal/pkg/pdfextract"
	"examforge/internal/transport/http/response"
)

const maxPDFSize = 10 << 20 // 10 MB

type IngestHandler struct {
	ingestService *app.IngestService
}

type IngestRequest struct {
	URL        string `json:"url"`
	SourceType string `json:"source_type"`
	RawContent string `json:"raw_content" binding:"required"`
}

func NewIngestHandler(ingestService *app.IngestService) *IngestHandler {
	return &IngestHandler{ingestService: ingestService}
}

// Ingest accepts raw material, stores it, and queues extraction. The response
// only acknowledges the hand-off; it never reflects extraction outcome.
func (h *IngestHandler) Ingest(c *gin.Context) {
	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	material, err := h.ingestService.Ingest(c.Request.Context(), app.IngestInput{
		URL:        req.URL,
		SourceType: req.SourceType,
		Content:    req.RawContent,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "ingest failed")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": material.ID, "status": "queued"})
}

// IngestPDF accepts a multipart form with "file" (PDF) plus optional "url" and
// "source_type", extracts the text, and feeds it through the same intake path.
func (h *IngestHandler) IngestPDF(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing file")
		return
	}
	if file.Size > maxPDFSize {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "file too large (max 10MB)")
		return
	}
	if ext := strings.ToLower(filepath.Ext(file.Filename)); ext != ".pdf" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "only PDF files are allowed")
		return
	}

	f, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to read file")
		return
	}
	defer f.Close()

	text, err := pdfextract.ExtractText(f)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "failed to extract text from PDF: "+err.Error())
		return
	}
	if strings.TrimSpace(text) == "" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "PDF contains no extractable text")
		return
	}

	sourceType := strings.TrimSpace(c.PostForm("source_type"))
	if sourceType == "" {
		sourceType = "pdf"
	}

	material, err := h.ingestService.Ingest(c.Request.Context(), app.IngestInput{
		URL:        c.PostForm("url"),
		SourceType: sourceType,
		Content:    text,
	})
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "ingest failed")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": material.ID, "status": "queued"})
}

// Reprocess re-queues unprocessed materials. Operator surface, not user-facing.
func (h *IngestHandler) Reprocess(c *gin.Context) {
	limit := 0
	if s := c.Query("limit"); s != "" {
		if parsed, err := strconv.Atoi(s); err == nil {
			limit = parsed
		}
	}

	dispatched, err := h.ingestService.ReprocessPending(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "reprocess failed")
		return
	}
	response.OK(c, gin.H{"dispatched": dispatched})
}
