package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teacher-directory/internal/form"
	"github.com/noah-isme/teacher-directory/internal/i18n"
	"github.com/noah-isme/teacher-directory/internal/middleware"
	"github.com/noah-isme/teacher-directory/internal/models"
	"github.com/noah-isme/teacher-directory/internal/pagination"
	"github.com/noah-isme/teacher-directory/internal/service"
	appErrors "github.com/noah-isme/teacher-directory/pkg/errors"
)

const (
	directoryTemplate = "directory"
	languageCookieAge = 365 * 24 * 60 * 60
	directoryLocation = "/"
)

// directoryView is the data handed to the directory template.
type directoryView struct {
	tr        *i18n.Translator
	Lang      string
	Languages []i18n.Language
	State     *models.DirectoryState
	Page      pagination.Page[models.Teacher]
	Subjects  []form.Subject
}

// T resolves a dictionary key for the active language.
func (v directoryView) T(key string) string {
	return v.tr.T(key)
}

func (v directoryView) Failed() bool {
	return v.State.Status == models.LoadFailed
}

func (v directoryView) Loading() bool {
	return v.State.Status == models.LoadIdle || v.State.Status == models.LoadLoading
}

func (v directoryView) IsEditing() bool {
	return v.State.Modal == models.ModalEditing
}

// CountLabel renders "N teachers available", singular for one.
func (v directoryView) CountLabel() string {
	n := len(v.State.Teachers)
	key := "teacher.teachersAvailable"
	if n == 1 {
		key = "teacher.teacherAvailable"
	}
	return fmt.Sprintf("%d %s", n, v.T(key))
}

// CustomSubject reports a subject outside the enumerated choices, which the select must still offer.
func (v directoryView) CustomSubject() bool {
	subject := v.State.Form.Values.Subject
	return subject != "" && !form.IsListedSubject(subject)
}

func (v directoryView) FormAction() string {
	if v.IsEditing() {
		return "/teachers/" + url.PathEscape(v.State.EditingID)
	}
	return "/teachers"
}

func (v directoryView) FieldError(field string) string {
	return v.State.Form.Errors[field]
}

// PageHandler serves the server-rendered directory page and its form actions.
type PageHandler struct {
	directory *service.DirectoryService
	bundle    *i18n.Bundle
}

// NewPageHandler constructs a PageHandler.
func NewPageHandler(directory *service.DirectoryService, bundle *i18n.Bundle) *PageHandler {
	return &PageHandler{directory: directory, bundle: bundle}
}

// Register mounts the page routes.
func (h *PageHandler) Register(r gin.IRouter) {
	r.GET("/", h.Index)
	r.GET("/teachers/new", h.New)
	r.GET("/teachers/:id/edit", h.Edit)
	r.POST("/teachers", h.Create)
	r.POST("/teachers/:id", h.Update)
	r.POST("/modal/close", h.Close)
	r.GET("/page/prev", h.Previous)
	r.GET("/page/next", h.Next)
	r.POST("/language", h.SwitchLanguage)
}

// Index renders the directory. ?reload=1 starts the session over; ?page=N jumps to a page.
func (h *PageHandler) Index(c *gin.Context) {
	ctx := c.Request.Context()
	sid := middleware.SessionID(c)

	state, err := h.directory.Load(ctx, sid, c.Query("reload") == "1")
	if state == nil {
		h.fail(c, err)
		return
	}
	if raw := c.Query("page"); raw != "" && state.Status == models.LoadLoaded {
		if page, convErr := strconv.Atoi(raw); convErr == nil {
			if state, err = h.directory.GoToPage(ctx, sid, page); state == nil {
				h.fail(c, err)
				return
			}
		}
	}
	h.render(c, http.StatusOK, state)
}

// New opens the add modal.
func (h *PageHandler) New(c *gin.Context) {
	h.openModal(c, func(sid string) (*models.DirectoryState, error) {
		return h.directory.OpenAdd(c.Request.Context(), sid)
	})
}

// Edit opens the edit modal pre-filled from the record.
func (h *PageHandler) Edit(c *gin.Context) {
	id := c.Param("id")
	h.openModal(c, func(sid string) (*models.DirectoryState, error) {
		return h.directory.OpenEdit(c.Request.Context(), sid, id)
	})
}

// Create submits the add form. Success redirects back to the directory.
func (h *PageHandler) Create(c *gin.Context) {
	h.submit(c, func(sid string, raw models.TeacherForm) (*models.DirectoryState, error) {
		return h.directory.SubmitAdd(c.Request.Context(), sid, raw, middleware.Translator(c))
	})
}

// Update submits the edit form.
func (h *PageHandler) Update(c *gin.Context) {
	id := c.Param("id")
	h.submit(c, func(sid string, raw models.TeacherForm) (*models.DirectoryState, error) {
		return h.directory.SubmitEdit(c.Request.Context(), sid, id, raw, middleware.Translator(c))
	})
}

// Close dismisses the open modal.
func (h *PageHandler) Close(c *gin.Context) {
	if _, err := h.directory.Dismiss(c.Request.Context(), middleware.SessionID(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, directoryLocation)
}

// Previous moves to the previous page.
func (h *PageHandler) Previous(c *gin.Context) {
	if _, err := h.directory.PreviousPage(c.Request.Context(), middleware.SessionID(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, directoryLocation)
}

// Next moves to the next page.
func (h *PageHandler) Next(c *gin.Context) {
	if _, err := h.directory.NextPage(c.Request.Context(), middleware.SessionID(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, directoryLocation)
}

// SwitchLanguage stores the chosen language for a year. Unknown codes are ignored.
func (h *PageHandler) SwitchLanguage(c *gin.Context) {
	if code := c.PostForm("lang"); h.bundle.Has(code) {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(i18n.CookieName, code, languageCookieAge, "/", "", false, false)
	}
	c.Redirect(http.StatusSeeOther, directoryLocation)
}

func (h *PageHandler) openModal(c *gin.Context, open func(sid string) (*models.DirectoryState, error)) {
	sid := middleware.SessionID(c)
	state, err := h.directory.Load(c.Request.Context(), sid, false)
	if state == nil {
		h.fail(c, err)
		return
	}
	if state.Status != models.LoadLoaded {
		h.render(c, http.StatusOK, state)
		return
	}

	opened, err := open(sid)
	if err != nil {
		if opened == nil {
			h.fail(c, err)
			return
		}
		h.render(c, appErrors.FromError(err).Status, opened)
		return
	}
	h.render(c, http.StatusOK, opened)
}

func (h *PageHandler) submit(c *gin.Context, send func(sid string, raw models.TeacherForm) (*models.DirectoryState, error)) {
	var raw models.TeacherForm
	if err := c.ShouldBind(&raw); err != nil {
		h.fail(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid form"))
		return
	}

	state, err := send(middleware.SessionID(c), raw)
	switch {
	case state == nil:
		h.fail(c, err)
	case err == nil:
		c.Redirect(http.StatusSeeOther, directoryLocation)
	case errors.Is(err, appErrors.ErrInvalidState):
		c.Redirect(http.StatusSeeOther, directoryLocation)
	default:
		_ = c.Error(err)
		h.render(c, appErrors.FromError(err).Status, state)
	}
}

func (h *PageHandler) render(c *gin.Context, status int, state *models.DirectoryState) {
	lang := c.GetString(middleware.ContextLanguageKey)
	view := directoryView{
		tr:        middleware.Translator(c),
		Lang:      lang,
		Languages: h.bundle.Languages(),
		State:     state,
		Page:      h.directory.Page(state),
		Subjects:  form.Subjects,
	}
	c.Header("Cache-Control", "no-store")
	c.HTML(status, directoryTemplate, view)
}

func (h *PageHandler) fail(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	if appErr == nil {
		appErr = appErrors.ErrInternal
	} else {
		_ = c.Error(err)
	}
	c.String(appErr.Status, appErr.Message)
}
