package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/teacher-directory/internal/i18n"
	"github.com/noah-isme/teacher-directory/internal/models"
	"github.com/noah-isme/teacher-directory/internal/repository"
	appErrors "github.com/noah-isme/teacher-directory/pkg/errors"
)

type mockTeacherClient struct {
	teachers  []models.Teacher
	fetchErr  error
	createErr error
	updateErr error
	deleteErr error
	fetches   int
	created   []models.TeacherInput
	updated   map[string]models.TeacherInput
	deleted   []string
	nextID    int
	// onCall runs when Create or Update is invoked, before the stubbed result.
	onCall func()
}

func (m *mockTeacherClient) FetchAll(ctx context.Context) ([]models.Teacher, error) {
	m.fetches++
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	out := make([]models.Teacher, len(m.teachers))
	copy(out, m.teachers)
	return out, nil
}

func (m *mockTeacherClient) Create(ctx context.Context, input models.TeacherInput) (*models.Teacher, error) {
	if m.onCall != nil {
		m.onCall()
	}
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.created = append(m.created, input)
	m.nextID++
	t := models.Teacher{ID: fmt.Sprintf("new-%d", m.nextID), Name: input.Name, Subject: input.Subject, Location: input.Location, Rating: input.Rating, Fee: input.Fee}
	return &t, nil
}

func (m *mockTeacherClient) Update(ctx context.Context, id string, input models.TeacherInput) (*models.Teacher, error) {
	if m.onCall != nil {
		m.onCall()
	}
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	if m.updated == nil {
		m.updated = make(map[string]models.TeacherInput)
	}
	m.updated[id] = input
	t := models.Teacher{ID: id, Name: input.Name, Subject: input.Subject, Location: input.Location, Rating: input.Rating, Fee: input.Fee}
	return &t, nil
}

func (m *mockTeacherClient) Delete(ctx context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, id)
	return nil
}

type countingObserver struct {
	hits, misses int
}

func (o *countingObserver) RecordSessionLookup(hit bool) {
	if hit {
		o.hits++
		return
	}
	o.misses++
}

func makeTeachers(n int) []models.Teacher {
	out := make([]models.Teacher, n)
	for i := range out {
		out[i] = models.Teacher{
			ID:       fmt.Sprintf("%d", i+1),
			Name:     fmt.Sprintf("Teacher %d", i+1),
			Subject:  "Mathematics",
			Location: "Hanoi",
			Rating:   4,
			Fee:      models.NewFee(float64(10 + i)),
		}
	}
	return out
}

func newDirectoryService(t *testing.T, client *mockTeacherClient) (*DirectoryService, *i18n.Translator) {
	t.Helper()
	bundle, err := i18n.LoadEmbedded()
	require.NoError(t, err)
	svc := NewDirectoryService(client, repository.NewMemorySessionRepository(0), nil, 5, nil, zap.NewNop())
	return svc, bundle.Translator("en")
}

func validForm() models.TeacherForm {
	return models.TeacherForm{Name: "Al", Subject: "Physics", Location: "NY", Rating: "3.7", Fee: "20"}
}

func TestDirectoryServiceLoad(t *testing.T) {
	client := &mockTeacherClient{teachers: makeTeachers(3)}
	svc, _ := newDirectoryService(t, client)
	ctx := context.Background()

	state, err := svc.Load(ctx, "sid", false)
	require.NoError(t, err)
	assert.Equal(t, models.LoadLoaded, state.Status)
	assert.Len(t, state.Teachers, 3)

	// Subsequent loads reuse the collection.
	_, err = svc.Load(ctx, "sid", false)
	require.NoError(t, err)
	assert.Equal(t, 1, client.fetches)

	_, err = svc.Load(ctx, "sid", true)
	require.NoError(t, err)
	assert.Equal(t, 2, client.fetches)
}

func TestDirectoryServiceLoadFailure(t *testing.T) {
	client := &mockTeacherClient{fetchErr: appErrors.ErrFetch}
	svc, _ := newDirectoryService(t, client)
	ctx := context.Background()

	state, err := svc.Load(ctx, "sid", false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrFetch))
	assert.Equal(t, models.LoadFailed, state.Status)
	assert.Equal(t, MessageLoadFailed, state.LoadError)

	// The banner stays until a reload is requested.
	state, err = svc.Load(ctx, "sid", false)
	require.NoError(t, err)
	assert.Equal(t, models.LoadFailed, state.Status)
	assert.Equal(t, 1, client.fetches)

	client.fetchErr = nil
	client.teachers = makeTeachers(1)
	state, err = svc.Load(ctx, "sid", true)
	require.NoError(t, err)
	assert.Equal(t, models.LoadLoaded, state.Status)
	assert.Empty(t, state.LoadError)
}

func TestDirectoryServiceModalRequiresLoad(t *testing.T) {
	svc, _ := newDirectoryService(t, &mockTeacherClient{})
	_, err := svc.OpenAdd(context.Background(), "sid")
	assert.True(t, errors.Is(err, appErrors.ErrInvalidState))
}

func TestDirectoryServiceSubmitAdd(t *testing.T) {
	client := &mockTeacherClient{teachers: makeTeachers(5)}
	svc, tr := newDirectoryService(t, client)
	ctx := context.Background()

	_, err := svc.Load(ctx, "sid", false)
	require.NoError(t, err)
	state, err := svc.OpenAdd(ctx, "sid")
	require.NoError(t, err)
	assert.True(t, state.ModalOpen())

	state, err = svc.SubmitAdd(ctx, "sid", validForm(), tr)
	require.NoError(t, err)
	assert.False(t, state.ModalOpen())
	require.Len(t, state.Teachers, 6)
	added := state.Teachers[5]
	assert.Equal(t, "Al", added.Name)
	assert.Equal(t, models.Rating(3.7), added.Rating)
	assert.Equal(t, "$20.00/hour", added.Fee.String())
	require.Len(t, client.created, 1)
}

func TestDirectoryServiceSubmitAddValidation(t *testing.T) {
	client := &mockTeacherClient{teachers: makeTeachers(1)}
	svc, tr := newDirectoryService(t, client)
	ctx := context.Background()
	_, _ = svc.Load(ctx, "sid", false)
	_, _ = svc.OpenAdd(ctx, "sid")

	raw := validForm()
	raw.Name = "A"
	state, err := svc.SubmitAdd(ctx, "sid", raw, tr)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Equal(t, models.ModalAdding, state.Modal)
	assert.Equal(t, "Name must be at least 2 characters", state.Form.Errors["name"])
	assert.Equal(t, "A", state.Form.Values.Name)
	assert.Empty(t, client.created)
}

func TestDirectoryServiceSubmitAddBackendFailureKeepsInput(t *testing.T) {
	client := &mockTeacherClient{teachers: makeTeachers(1), createErr: appErrors.ErrCreate}
	svc, tr := newDirectoryService(t, client)
	ctx := context.Background()
	_, _ = svc.Load(ctx, "sid", false)
	_, _ = svc.OpenAdd(ctx, "sid")

	raw := validForm()
	raw.Rating = "9"
	state, err := svc.SubmitAdd(ctx, "sid", raw, tr)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrCreate))
	assert.Equal(t, models.ModalAdding, state.Modal)
	assert.Equal(t, MessageAddFailed, state.SubmitError)
	assert.Equal(t, "Al", state.Form.Values.Name)
	assert.Equal(t, "5", state.Form.Values.Rating)
	assert.Len(t, state.Teachers, 1)
}

func TestDirectoryServiceEdit(t *testing.T) {
	client := &mockTeacherClient{teachers: makeTeachers(2)}
	svc, tr := newDirectoryService(t, client)
	ctx := context.Background()
	_, _ = svc.Load(ctx, "sid", false)

	_, err := svc.OpenEdit(ctx, "sid", "missing")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	state, err := svc.OpenEdit(ctx, "sid", "2")
	require.NoError(t, err)
	assert.Equal(t, models.ModalEditing, state.Modal)
	assert.Equal(t, "Teacher 2", state.Form.Values.Name)
	assert.Equal(t, "11.00", state.Form.Values.Fee)
	assert.Equal(t, "4", state.Form.Values.Rating)

	raw := state.Form.Values
	raw.Location = "Da Nang"
	state, err = svc.SubmitEdit(ctx, "sid", "2", raw, tr)
	require.NoError(t, err)
	assert.False(t, state.ModalOpen())
	assert.Equal(t, "Da Nang", state.Teachers[1].Location)
	assert.Equal(t, "$11.00/hour", client.updated["2"].Fee.String())
}

func TestDirectoryServiceSubmitEditFailure(t *testing.T) {
	client := &mockTeacherClient{teachers: makeTeachers(2), updateErr: appErrors.ErrUpdate}
	svc, tr := newDirectoryService(t, client)
	ctx := context.Background()
	_, _ = svc.Load(ctx, "sid", false)
	_, _ = svc.OpenEdit(ctx, "sid", "1")

	state, err := svc.SubmitEdit(ctx, "sid", "1", validForm(), tr)
	assert.True(t, errors.Is(err, appErrors.ErrUpdate))
	assert.Equal(t, models.ModalEditing, state.Modal)
	assert.Equal(t, "1", state.EditingID)
	assert.Equal(t, MessageUpdateFailed, state.SubmitError)
	assert.Equal(t, "Teacher 1", state.Teachers[0].Name)
}

func TestDirectoryServiceSubmitFailureAfterFailedReloadKeepsModalClosed(t *testing.T) {
	client := &mockTeacherClient{teachers: makeTeachers(2), createErr: appErrors.ErrCreate, updateErr: appErrors.ErrUpdate}
	svc, tr := newDirectoryService(t, client)
	ctx := context.Background()
	_, _ = svc.Load(ctx, "sid", false)
	client.onCall = func() {
		client.fetchErr = appErrors.ErrFetch
		_, _ = svc.Load(ctx, "sid", true)
	}

	_, _ = svc.OpenAdd(ctx, "sid")
	state, err := svc.SubmitAdd(ctx, "sid", validForm(), tr)
	assert.True(t, errors.Is(err, appErrors.ErrCreate))
	assert.Equal(t, models.LoadFailed, state.Status)
	assert.False(t, state.ModalOpen())
	assert.Empty(t, state.SubmitError)
	assert.Equal(t, MessageLoadFailed, state.LoadError)
}

func TestDirectoryServiceSubmitSuccessAfterFailedReloadLeavesSessionAlone(t *testing.T) {
	client := &mockTeacherClient{teachers: makeTeachers(2)}
	svc, tr := newDirectoryService(t, client)
	ctx := context.Background()
	_, _ = svc.Load(ctx, "sid", false)
	_, _ = svc.OpenEdit(ctx, "sid", "1")
	client.onCall = func() {
		client.fetchErr = appErrors.ErrFetch
		_, _ = svc.Load(ctx, "sid", true)
	}

	state, err := svc.SubmitEdit(ctx, "sid", "1", validForm(), tr)
	require.NoError(t, err)
	assert.Equal(t, models.LoadFailed, state.Status)
	assert.False(t, state.ModalOpen())
	assert.Empty(t, state.Teachers)
	assert.Contains(t, client.updated, "1")
}

func TestDirectoryServiceDismiss(t *testing.T) {
	svc, _ := newDirectoryService(t, &mockTeacherClient{teachers: makeTeachers(1)})
	ctx := context.Background()
	_, _ = svc.Load(ctx, "sid", false)
	_, _ = svc.OpenEdit(ctx, "sid", "1")

	state, err := svc.Dismiss(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, models.ModalNone, state.Modal)
	assert.Empty(t, state.EditingID)
	assert.Empty(t, state.Form.Values.Name)

	// Dismissing with nothing open is a no-op.
	state, err = svc.Dismiss(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, models.ModalNone, state.Modal)
}

func TestDirectoryServiceNavigation(t *testing.T) {
	svc, _ := newDirectoryService(t, &mockTeacherClient{teachers: makeTeachers(12)})
	ctx := context.Background()
	_, _ = svc.Load(ctx, "sid", false)

	state, _ := svc.PreviousPage(ctx, "sid")
	assert.Equal(t, 1, state.CurrentPage)

	state, _ = svc.NextPage(ctx, "sid")
	assert.Equal(t, 2, state.CurrentPage)
	page := svc.Page(state)
	assert.Equal(t, 5, page.StartIndex)
	assert.Equal(t, 10, page.EndIndex)
	assert.Equal(t, "6", page.Items[0].ID)

	_, _ = svc.NextPage(ctx, "sid")
	state, _ = svc.NextPage(ctx, "sid")
	assert.Equal(t, 3, state.CurrentPage)

	state, _ = svc.GoToPage(ctx, "sid", 7)
	assert.Equal(t, 7, state.CurrentPage)
	assert.Empty(t, svc.Page(state).Items)
}

func TestDirectoryServiceRemoveClampsPage(t *testing.T) {
	client := &mockTeacherClient{teachers: makeTeachers(6)}
	svc, _ := newDirectoryService(t, client)
	ctx := context.Background()
	_, _ = svc.Load(ctx, "sid", false)
	_, _ = svc.GoToPage(ctx, "sid", 2)

	require.NoError(t, svc.Remove(ctx, "sid", "6"))
	state, err := svc.State(ctx, "sid")
	require.NoError(t, err)
	assert.Len(t, state.Teachers, 5)
	assert.Equal(t, 1, state.CurrentPage)
	assert.Equal(t, []string{"6"}, client.deleted)
}

func TestDirectoryServiceRemoveFailure(t *testing.T) {
	client := &mockTeacherClient{teachers: makeTeachers(2), deleteErr: appErrors.ErrDelete}
	svc, _ := newDirectoryService(t, client)
	ctx := context.Background()
	_, _ = svc.Load(ctx, "sid", false)

	err := svc.Remove(ctx, "sid", "1")
	assert.True(t, errors.Is(err, appErrors.ErrDelete))
	state, _ := svc.State(ctx, "sid")
	assert.Len(t, state.Teachers, 2)
}

func TestDirectoryServiceCreateSyncsLoadedSession(t *testing.T) {
	client := &mockTeacherClient{teachers: makeTeachers(1)}
	svc, tr := newDirectoryService(t, client)
	ctx := context.Background()
	_, _ = svc.Load(ctx, "sid", false)

	created, err := svc.Create(ctx, "sid", validForm(), tr)
	require.NoError(t, err)
	assert.Equal(t, "new-1", created.ID)

	state, _ := svc.State(ctx, "sid")
	assert.Len(t, state.Teachers, 2)

	// Sessions that never loaded are left alone.
	_, err = svc.Create(ctx, "other", validForm(), tr)
	require.NoError(t, err)
	other, _ := svc.State(ctx, "other")
	assert.Equal(t, models.LoadIdle, other.Status)
}

func TestDirectoryServiceCreateValidation(t *testing.T) {
	svc, tr := newDirectoryService(t, &mockTeacherClient{})
	_, err := svc.Create(context.Background(), "", models.TeacherForm{}, tr)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, "Name is required", appErr.Fields["name"])
}

func TestDirectoryServiceRecordsSessionLookups(t *testing.T) {
	obs := &countingObserver{}
	svc := NewDirectoryService(&mockTeacherClient{}, repository.NewMemorySessionRepository(0), nil, 0, obs, nil)
	ctx := context.Background()

	_, _ = svc.State(ctx, "sid")
	_, _ = svc.Dismiss(ctx, "sid")
	_, _ = svc.State(ctx, "sid")

	assert.Equal(t, 2, obs.misses)
	assert.Equal(t, 1, obs.hits)
	assert.Equal(t, 5, svc.ItemsPerPage())
}
