package service

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/teacher-directory/internal/form"
	"github.com/noah-isme/teacher-directory/internal/models"
	"github.com/noah-isme/teacher-directory/internal/pagination"
	appErrors "github.com/noah-isme/teacher-directory/pkg/errors"
	"github.com/noah-isme/teacher-directory/pkg/logger"
)

// Dictionary keys rendered for load and submit failures.
const (
	MessageLoadFailed   = "errors.load"
	MessageAddFailed    = "errors.add"
	MessageUpdateFailed = "errors.update"
	MessageDeleteFailed = "errors.delete"
)

const lockStripes = 64

type teacherClient interface {
	FetchAll(ctx context.Context) ([]models.Teacher, error)
	Create(ctx context.Context, input models.TeacherInput) (*models.Teacher, error)
	Update(ctx context.Context, id string, input models.TeacherInput) (*models.Teacher, error)
	Delete(ctx context.Context, id string) error
}

type sessionRepository interface {
	Get(ctx context.Context, id string) (*models.DirectoryState, error)
	Save(ctx context.Context, id string, state *models.DirectoryState) error
	Delete(ctx context.Context, id string) error
}

type sessionObserver interface {
	RecordSessionLookup(hit bool)
}

// DirectoryService coordinates the directory page: loading, the add/edit modal, and pagination.
// State is kept per session; read-modify-write cycles on one session are serialized,
// backend calls run outside the lock.
type DirectoryService struct {
	client   teacherClient
	sessions sessionRepository
	forms    *form.Controller
	perPage  int
	metrics  sessionObserver
	logger   *zap.Logger

	locks [lockStripes]sync.Mutex
}

// NewDirectoryService constructs a DirectoryService.
func NewDirectoryService(client teacherClient, sessions sessionRepository, forms *form.Controller, itemsPerPage int, metrics sessionObserver, logger *zap.Logger) *DirectoryService {
	if forms == nil {
		forms = form.MustNew()
	}
	if itemsPerPage <= 0 {
		itemsPerPage = pagination.DefaultItemsPerPage
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirectoryService{
		client:   client,
		sessions: sessions,
		forms:    forms,
		perPage:  itemsPerPage,
		metrics:  metrics,
		logger:   logger,
	}
}

// ItemsPerPage returns the configured page size.
func (s *DirectoryService) ItemsPerPage() int {
	return s.perPage
}

// Page computes the visible slice for state.
func (s *DirectoryService) Page(state *models.DirectoryState) pagination.Page[models.Teacher] {
	return pagination.Paginate(state.Teachers, state.CurrentPage, s.perPage)
}

// State returns the current session state without modifying it.
func (s *DirectoryService) State(ctx context.Context, sid string) (*models.DirectoryState, error) {
	unlock := s.lock(sid)
	defer unlock()
	return s.state(ctx, sid)
}

// Load fetches the collection once per session. A load that already finished, successfully
// or not, is reused unless reload is set, which starts the session over.
func (s *DirectoryService) Load(ctx context.Context, sid string, reload bool) (*models.DirectoryState, error) {
	needFetch := false
	state, err := s.update(ctx, sid, func(st *models.DirectoryState) error {
		if reload {
			*st = *models.NewDirectoryState()
		}
		if st.Status == models.LoadIdle || st.Status == models.LoadLoading {
			st.Status = models.LoadLoading
			needFetch = true
		}
		return nil
	})
	if err != nil || !needFetch {
		return state, err
	}

	teachers, fetchErr := s.client.FetchAll(ctx)
	return s.update(ctx, sid, func(st *models.DirectoryState) error {
		if fetchErr != nil {
			logger.FromContext(ctx, s.logger).Error("failed to load teachers", zap.String("session_id", sid), zap.Error(fetchErr))
			st.Status = models.LoadFailed
			st.LoadError = MessageLoadFailed
			st.Teachers = []models.Teacher{}
			return fetchErr
		}
		st.Status = models.LoadLoaded
		st.LoadError = ""
		st.Teachers = teachers
		s.clampPage(st)
		return nil
	})
}

// OpenAdd opens the empty add form.
func (s *DirectoryService) OpenAdd(ctx context.Context, sid string) (*models.DirectoryState, error) {
	return s.update(ctx, sid, func(st *models.DirectoryState) error {
		if err := requireLoaded(st); err != nil {
			return err
		}
		st.Modal = models.ModalAdding
		st.EditingID = ""
		st.Form = models.FormState{}
		st.SubmitError = ""
		return nil
	})
}

// OpenEdit opens the edit form pre-filled from the record identified by id.
func (s *DirectoryService) OpenEdit(ctx context.Context, sid, id string) (*models.DirectoryState, error) {
	return s.update(ctx, sid, func(st *models.DirectoryState) error {
		if err := requireLoaded(st); err != nil {
			return err
		}
		idx := indexOf(st.Teachers, id)
		if idx < 0 {
			return appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		st.Modal = models.ModalEditing
		st.EditingID = id
		st.Form = models.FormState{Values: form.Prefill(st.Teachers[idx])}
		st.SubmitError = ""
		return nil
	})
}

// Dismiss closes whichever modal is open and discards its input.
func (s *DirectoryService) Dismiss(ctx context.Context, sid string) (*models.DirectoryState, error) {
	return s.update(ctx, sid, func(st *models.DirectoryState) error {
		closeModal(st)
		return nil
	})
}

// SubmitAdd validates the add form and creates the record. Validation or backend failures
// keep the modal open with the submitted values.
func (s *DirectoryService) SubmitAdd(ctx context.Context, sid string, raw models.TeacherForm, tr form.Translator) (*models.DirectoryState, error) {
	var (
		input  models.TeacherInput
		values models.TeacherForm
	)
	state, err := s.update(ctx, sid, func(st *models.DirectoryState) error {
		if err := requireLoaded(st); err != nil {
			return err
		}
		var errs models.FieldErrors
		input, values, errs = s.forms.Submit(raw, tr)
		st.Modal = models.ModalAdding
		st.EditingID = ""
		st.Form = models.FormState{Values: values, Errors: errs}
		st.SubmitError = ""
		if errs != nil {
			return appErrors.Validation(errs)
		}
		return nil
	})
	if err != nil {
		return state, err
	}

	created, createErr := s.client.Create(ctx, input)
	return s.update(ctx, sid, func(st *models.DirectoryState) error {
		if createErr != nil {
			logger.FromContext(ctx, s.logger).Error("failed to add teacher", zap.String("session_id", sid), zap.Error(createErr))
			if st.Status != models.LoadLoaded {
				return createErr
			}
			st.Modal = models.ModalAdding
			st.Form = models.FormState{Values: values}
			st.SubmitError = MessageAddFailed
			return createErr
		}
		if st.Status != models.LoadLoaded {
			return nil
		}
		upsert(st, *created)
		s.clampPage(st)
		closeModal(st)
		return nil
	})
}

// SubmitEdit validates the edit form and replaces the record identified by id.
func (s *DirectoryService) SubmitEdit(ctx context.Context, sid, id string, raw models.TeacherForm, tr form.Translator) (*models.DirectoryState, error) {
	var (
		input  models.TeacherInput
		values models.TeacherForm
	)
	state, err := s.update(ctx, sid, func(st *models.DirectoryState) error {
		if err := requireLoaded(st); err != nil {
			return err
		}
		if indexOf(st.Teachers, id) < 0 {
			return appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		var errs models.FieldErrors
		input, values, errs = s.forms.Submit(raw, tr)
		st.Modal = models.ModalEditing
		st.EditingID = id
		st.Form = models.FormState{Values: values, Errors: errs}
		st.SubmitError = ""
		if errs != nil {
			return appErrors.Validation(errs)
		}
		return nil
	})
	if err != nil {
		return state, err
	}

	updated, updateErr := s.client.Update(ctx, id, input)
	return s.update(ctx, sid, func(st *models.DirectoryState) error {
		if updateErr != nil {
			logger.FromContext(ctx, s.logger).Error("failed to update teacher", zap.String("session_id", sid), zap.String("teacher_id", id), zap.Error(updateErr))
			if st.Status != models.LoadLoaded {
				return updateErr
			}
			st.Modal = models.ModalEditing
			st.EditingID = id
			st.Form = models.FormState{Values: values}
			st.SubmitError = MessageUpdateFailed
			return updateErr
		}
		if st.Status != models.LoadLoaded {
			return nil
		}
		replace(st, id, *updated)
		closeModal(st)
		return nil
	})
}

// GoToPage sets the current page unconditionally.
func (s *DirectoryService) GoToPage(ctx context.Context, sid string, page int) (*models.DirectoryState, error) {
	return s.navigate(ctx, sid, func(c *pagination.Controller) { c.GoTo(page) })
}

// PreviousPage moves back one page unless already on the first.
func (s *DirectoryService) PreviousPage(ctx context.Context, sid string) (*models.DirectoryState, error) {
	return s.navigate(ctx, sid, func(c *pagination.Controller) { c.Previous() })
}

// NextPage moves forward one page unless already on the last.
func (s *DirectoryService) NextPage(ctx context.Context, sid string) (*models.DirectoryState, error) {
	return s.navigate(ctx, sid, func(c *pagination.Controller) { c.Next() })
}

// List returns the backend collection without touching any session.
func (s *DirectoryService) List(ctx context.Context) ([]models.Teacher, error) {
	teachers, err := s.client.FetchAll(ctx)
	if err != nil {
		logger.FromContext(ctx, s.logger).Error("failed to list teachers", zap.Error(err))
		return nil, err
	}
	return teachers, nil
}

// Create validates raw input and creates a record. A loaded session sees the new record.
func (s *DirectoryService) Create(ctx context.Context, sid string, raw models.TeacherForm, tr form.Translator) (*models.Teacher, error) {
	input, _, errs := s.forms.Submit(raw, tr)
	if errs != nil {
		return nil, appErrors.Validation(errs)
	}
	created, err := s.client.Create(ctx, input)
	if err != nil {
		logger.FromContext(ctx, s.logger).Error("failed to add teacher", zap.Error(err))
		return nil, err
	}
	s.syncSession(ctx, sid, func(st *models.DirectoryState) { upsert(st, *created) })
	return created, nil
}

// Update validates raw input and replaces the record identified by id.
func (s *DirectoryService) Update(ctx context.Context, sid, id string, raw models.TeacherForm, tr form.Translator) (*models.Teacher, error) {
	input, _, errs := s.forms.Submit(raw, tr)
	if errs != nil {
		return nil, appErrors.Validation(errs)
	}
	updated, err := s.client.Update(ctx, id, input)
	if err != nil {
		logger.FromContext(ctx, s.logger).Error("failed to update teacher", zap.String("teacher_id", id), zap.Error(err))
		return nil, err
	}
	s.syncSession(ctx, sid, func(st *models.DirectoryState) { replace(st, id, *updated) })
	return updated, nil
}

// Remove deletes the record and drops it from a loaded session, clamping the current page.
func (s *DirectoryService) Remove(ctx context.Context, sid, id string) error {
	if err := s.client.Delete(ctx, id); err != nil {
		logger.FromContext(ctx, s.logger).Error("failed to delete teacher", zap.String("teacher_id", id), zap.Error(err))
		return err
	}
	s.syncSession(ctx, sid, func(st *models.DirectoryState) {
		if idx := indexOf(st.Teachers, id); idx >= 0 {
			st.Teachers = append(st.Teachers[:idx:idx], st.Teachers[idx+1:]...)
		}
		if st.Modal == models.ModalEditing && st.EditingID == id {
			closeModal(st)
		}
	})
	return nil
}

func (s *DirectoryService) navigate(ctx context.Context, sid string, move func(*pagination.Controller)) (*models.DirectoryState, error) {
	return s.update(ctx, sid, func(st *models.DirectoryState) error {
		c := pagination.Restore(st.CurrentPage, s.perPage, len(st.Teachers))
		move(c)
		st.CurrentPage = c.Current()
		return nil
	})
}

func (s *DirectoryService) syncSession(ctx context.Context, sid string, apply func(*models.DirectoryState)) {
	if sid == "" {
		return
	}
	_, err := s.update(ctx, sid, func(st *models.DirectoryState) error {
		if st.Status != models.LoadLoaded {
			return nil
		}
		apply(st)
		s.clampPage(st)
		return nil
	})
	if err != nil {
		logger.FromContext(ctx, s.logger).Warn("failed to sync session", zap.String("session_id", sid), zap.Error(err))
	}
}

func (s *DirectoryService) clampPage(st *models.DirectoryState) {
	c := pagination.Restore(st.CurrentPage, s.perPage, len(st.Teachers))
	c.SetTotal(len(st.Teachers))
	st.CurrentPage = c.Current()
}

// update runs fn against the session state under the session lock and persists the result.
// The state is saved even when fn returns an error so failures can be rendered.
func (s *DirectoryService) update(ctx context.Context, sid string, fn func(*models.DirectoryState) error) (*models.DirectoryState, error) {
	unlock := s.lock(sid)
	defer unlock()

	state, err := s.state(ctx, sid)
	if err != nil {
		return nil, err
	}
	fnErr := fn(state)
	if err := s.sessions.Save(ctx, sid, state); err != nil {
		logger.FromContext(ctx, s.logger).Error("failed to save session", zap.String("session_id", sid), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save session")
	}
	return state, fnErr
}

func (s *DirectoryService) state(ctx context.Context, sid string) (*models.DirectoryState, error) {
	state, err := s.sessions.Get(ctx, sid)
	switch {
	case err == nil:
		s.recordLookup(true)
		if state.Teachers == nil {
			state.Teachers = []models.Teacher{}
		}
		return state, nil
	case errors.Is(err, appErrors.ErrCacheMiss):
		s.recordLookup(false)
		return models.NewDirectoryState(), nil
	default:
		logger.FromContext(ctx, s.logger).Error("failed to read session", zap.String("session_id", sid), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read session")
	}
}

func (s *DirectoryService) recordLookup(hit bool) {
	if s.metrics != nil {
		s.metrics.RecordSessionLookup(hit)
	}
}

func (s *DirectoryService) lock(sid string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sid))
	mu := &s.locks[h.Sum32()%lockStripes]
	mu.Lock()
	return mu.Unlock
}

func requireLoaded(st *models.DirectoryState) error {
	if st.Status != models.LoadLoaded {
		return appErrors.Clone(appErrors.ErrInvalidState, "directory is not loaded")
	}
	return nil
}

func closeModal(st *models.DirectoryState) {
	st.Modal = models.ModalNone
	st.EditingID = ""
	st.Form = models.FormState{}
	st.SubmitError = ""
}

func indexOf(teachers []models.Teacher, id string) int {
	for i := range teachers {
		if teachers[i].ID == id {
			return i
		}
	}
	return -1
}

func upsert(st *models.DirectoryState, t models.Teacher) {
	if idx := indexOf(st.Teachers, t.ID); idx >= 0 && t.ID != "" {
		st.Teachers[idx] = t
		return
	}
	st.Teachers = append(st.Teachers, t)
}

func replace(st *models.DirectoryState, id string, t models.Teacher) {
	if idx := indexOf(st.Teachers, id); idx >= 0 {
		st.Teachers[idx] = t
	}
}
