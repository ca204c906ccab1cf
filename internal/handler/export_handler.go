package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teacher-directory/internal/middleware"
	"github.com/noah-isme/teacher-directory/internal/models"
	"github.com/noah-isme/teacher-directory/internal/service"
	appErrors "github.com/noah-isme/teacher-directory/pkg/errors"
	"github.com/noah-isme/teacher-directory/pkg/export"
)

// ExportHandler downloads the visitor's directory as CSV or PDF.
type ExportHandler struct {
	directory *service.DirectoryService
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	now       func() time.Time
}

// NewExportHandler constructs an ExportHandler.
func NewExportHandler(directory *service.DirectoryService) *ExportHandler {
	return &ExportHandler{
		directory: directory,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		now:       time.Now,
	}
}

// Register mounts the download routes.
func (h *ExportHandler) Register(r gin.IRouter) {
	r.GET("/export.csv", h.CSV)
	r.GET("/export.pdf", h.PDF)
}

// CSV streams the collection as CSV.
func (h *ExportHandler) CSV(c *gin.Context) {
	data, ok := h.dataset(c)
	if !ok {
		return
	}
	body, err := h.csv.Render(data)
	if err != nil {
		h.fail(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv"), "")
		return
	}
	h.attach(c, "csv", h.csv.ContentType(), body)
}

// PDF renders the collection as a PDF table.
func (h *ExportHandler) PDF(c *gin.Context) {
	data, ok := h.dataset(c)
	if !ok {
		return
	}
	body, err := h.pdf.Render(data, middleware.Translator(c).T("teacher.title"))
	if err != nil {
		h.fail(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf"), "")
		return
	}
	h.attach(c, "pdf", h.pdf.ContentType(), body)
}

func (h *ExportHandler) dataset(c *gin.Context) (export.Dataset, bool) {
	state, err := h.directory.Load(c.Request.Context(), middleware.SessionID(c), false)
	if state == nil || state.Status != models.LoadLoaded {
		if err == nil {
			err = appErrors.ErrFetch
		}
		h.fail(c, err, middleware.Translator(c).T(service.MessageLoadFailed))
		return export.Dataset{}, false
	}
	tr := middleware.Translator(c)
	return export.TeacherDataset(state.Teachers, tr.T), true
}

func (h *ExportHandler) attach(c *gin.Context, ext, contentType string, body []byte) {
	filename := fmt.Sprintf("teachers-%s.%s", h.now().UTC().Format("20060102"), ext)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, contentType, body)
}

func (h *ExportHandler) fail(c *gin.Context, err error, message string) {
	appErr := appErrors.FromError(err)
	_ = c.Error(err)
	if message == "" {
		message = appErr.Message
	}
	c.String(appErr.Status, message)
}
