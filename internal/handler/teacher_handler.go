package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teacher-directory/internal/i18n"
	"github.com/noah-isme/teacher-directory/internal/middleware"
	"github.com/noah-isme/teacher-directory/internal/models"
	"github.com/noah-isme/teacher-directory/internal/pagination"
	"github.com/noah-isme/teacher-directory/internal/service"
	appErrors "github.com/noah-isme/teacher-directory/pkg/errors"
	"github.com/noah-isme/teacher-directory/pkg/response"
)

const maxPageSize = 100

// jsonText accepts a JSON string or number and keeps its text, so clients may send rating and fee either way.
type jsonText string

func (t *jsonText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = jsonText(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*t = jsonText(n.String())
	return nil
}

// TeacherPayload is the create/update body. Fee is the hourly amount, e.g. 42.5.
type TeacherPayload struct {
	Name     string   `json:"name" example:"Al"`
	Subject  string   `json:"subject" example:"Physics"`
	Location string   `json:"location" example:"NY"`
	Rating   jsonText `json:"rating" swaggertype:"number" example:"3.7"`
	Fee      jsonText `json:"fee" swaggertype:"number" example:"20"`
}

func (p TeacherPayload) form() models.TeacherForm {
	return models.TeacherForm{
		Name:     p.Name,
		Subject:  p.Subject,
		Location: p.Location,
		Rating:   string(p.Rating),
		Fee:      string(p.Fee),
	}
}

// TeacherHandler exposes the directory as a JSON API.
type TeacherHandler struct {
	directory *service.DirectoryService
	bundle    *i18n.Bundle
}

// NewTeacherHandler constructs a new TeacherHandler.
func NewTeacherHandler(directory *service.DirectoryService, bundle *i18n.Bundle) *TeacherHandler {
	return &TeacherHandler{directory: directory, bundle: bundle}
}

// Register mounts the API routes.
func (h *TeacherHandler) Register(r gin.IRouter) {
	r.GET("/teachers", h.List)
	r.POST("/teachers", h.Create)
	r.PUT("/teachers/:id", h.Update)
	r.DELETE("/teachers/:id", h.Delete)
	r.GET("/i18n/:lang", h.Dictionary)
}

// List godoc
// @Summary List teachers
// @Tags Teachers
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /api/v1/teachers [get]
func (h *TeacherHandler) List(c *gin.Context) {
	page := 1
	if v, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		page = v
	}
	limit := h.directory.ItemsPerPage()
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		limit = min(v, maxPageSize)
	}

	teachers, err := h.directory.List(c.Request.Context())
	if err != nil {
		response.Error(c, err, middleware.ExtractMeta(c))
		return
	}

	p := pagination.Paginate(teachers, page, limit)
	meta := &models.Pagination{
		Page:       p.CurrentPage,
		PageSize:   p.ItemsPerPage,
		TotalCount: p.TotalItems,
		TotalPages: p.TotalPages,
		StartIndex: p.StartIndex,
		EndIndex:   min(p.EndIndex, p.TotalItems),
		Window:     p.Window(),
	}
	response.JSON(c, http.StatusOK, p.Items, meta, middleware.ExtractMeta(c))
}

// Create godoc
// @Summary Create teacher
// @Tags Teachers
// @Accept json
// @Produce json
// @Param payload body TeacherPayload true "Teacher payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /api/v1/teachers [post]
func (h *TeacherHandler) Create(c *gin.Context) {
	var payload TeacherPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload"), middleware.ExtractMeta(c))
		return
	}
	tr := middleware.Translator(c)
	middleware.SetLanguageMeta(c, tr.Language())

	created, err := h.directory.Create(c.Request.Context(), middleware.SessionID(c), payload.form(), tr)
	if err != nil {
		response.Error(c, err, middleware.ExtractMeta(c))
		return
	}
	response.Created(c, created, middleware.ExtractMeta(c))
}

// Update godoc
// @Summary Update teacher
// @Tags Teachers
// @Accept json
// @Produce json
// @Param id path string true "Teacher ID"
// @Param payload body TeacherPayload true "Teacher payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /api/v1/teachers/{id} [put]
func (h *TeacherHandler) Update(c *gin.Context) {
	var payload TeacherPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload"), middleware.ExtractMeta(c))
		return
	}
	tr := middleware.Translator(c)
	middleware.SetLanguageMeta(c, tr.Language())

	updated, err := h.directory.Update(c.Request.Context(), middleware.SessionID(c), c.Param("id"), payload.form(), tr)
	if err != nil {
		response.Error(c, err, middleware.ExtractMeta(c))
		return
	}
	response.JSON(c, http.StatusOK, updated, nil, middleware.ExtractMeta(c))
}

// Delete godoc
// @Summary Delete teacher
// @Tags Teachers
// @Param id path string true "Teacher ID"
// @Success 204
// @Failure 502 {object} response.Envelope
// @Router /api/v1/teachers/{id} [delete]
func (h *TeacherHandler) Delete(c *gin.Context) {
	if err := h.directory.Remove(c.Request.Context(), middleware.SessionID(c), c.Param("id")); err != nil {
		response.Error(c, err, middleware.ExtractMeta(c))
		return
	}
	response.NoContent(c)
}

// Dictionary godoc
// @Summary Get the display dictionary for a language
// @Tags I18n
// @Produce json
// @Param lang path string true "Language code (en, vi)"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /api/v1/i18n/{lang} [get]
func (h *TeacherHandler) Dictionary(c *gin.Context) {
	code := c.Param("lang")
	if !h.bundle.Has(code) {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "language not found"), middleware.ExtractMeta(c))
		return
	}
	response.JSON(c, http.StatusOK, h.bundle.Dictionary(code), nil, middleware.ExtractMeta(c))
}
