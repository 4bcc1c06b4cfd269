package handler

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LeskaProgrammer/KPO/internal/api_gateway/service"
	"github.com/LeskaProgrammer/KPO/internal/impexp"
)

// ArchiveHandler exports and imports the whole ledger
type ArchiveHandler struct {
	archiveService service.ArchiveService
	logger         *slog.Logger
}

func NewArchiveHandler(logger *slog.Logger, archiveService service.ArchiveService) *ArchiveHandler {
	return &ArchiveHandler{
		archiveService: archiveService,
		logger:         logger,
	}
}

func (h *ArchiveHandler) format(c *gin.Context) (impexp.Format, bool) {
	format, err := impexp.ParseFormat(c.DefaultQuery("format", string(impexp.FormatJSON)))
	if err != nil {
		RespondBadRequest(c, err.Error())
		return "", false
	}
	return format, true
}

// Export writes the snapshot raw, without the response envelope
func (h *ArchiveHandler) Export(c *gin.Context) {
	format, ok := h.format(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.archiveService.Export(c.Request.Context(), &buf, format); err != nil {
		respondServiceError(c, h.logger, err, "Failed to export ledger")
		return
	}
	c.Header("Content-Disposition", "attachment; filename=ledger."+string(format))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

// Import reads the request body in the given format
func (h *ArchiveHandler) Import(c *gin.Context) {
	format, ok := h.format(c)
	if !ok {
		return
	}

	result, err := h.archiveService.Import(c.Request.Context(), c.Request.Body, format)
	if err != nil {
		respondServiceError(c, h.logger, err, "Failed to import ledger")
		return
	}
	RespondOK(c, result)
}
