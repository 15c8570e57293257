package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eduspark/edu-platform-api/internal/service"
	appErrors "github.com/eduspark/edu-platform-api/pkg/errors"
	"github.com/eduspark/edu-platform-api/pkg/response"
)

// exportService renders downloadable reports.
type exportService interface {
	AttendanceSummary(ctx context.Context, teacherID int64, format service.ExportFormat) (*service.ExportResult, error)
}

// ExportHandler exposes report downloads.
type ExportHandler struct {
	service exportService
}

// NewExportHandler creates a new handler.
func NewExportHandler(svc exportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// AttendanceSummary godoc
// @Summary Download an attendance summary
// @Description Attendance per student over 30 days as CSV or PDF
// @Tags Exports
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param format query string false "Output format, csv or pdf (default csv)"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /teacher/exports/attendance [get]
func (h *ExportHandler) AttendanceSummary(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	claims, ok := currentClaims(c)
	if !ok {
		return
	}

	format := service.ExportFormat(c.DefaultQuery("format", string(service.FormatCSV)))
	result, err := h.service.AttendanceSummary(c.Request.Context(), claims.UserID, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+result.FileName+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Payload)
}
