package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/teacher-directory/internal/models"
	appErrors "github.com/noah-isme/teacher-directory/pkg/errors"
	"github.com/noah-isme/teacher-directory/pkg/logger"
	"github.com/noah-isme/teacher-directory/pkg/middleware/requestid"
)

const teacherResource = "/teacher"

// UpstreamObserver records backend call outcomes.
type UpstreamObserver interface {
	ObserveUpstream(operation string, status int, duration time.Duration)
}

// TeacherAPIRepository talks to the hosted mock REST backend.
type TeacherAPIRepository struct {
	baseURL  string
	client   *http.Client
	logger   *zap.Logger
	observer UpstreamObserver
}

// NewTeacherAPIRepository constructs the data client. A nil http client uses a 10s timeout.
func NewTeacherAPIRepository(baseURL string, client *http.Client, logger *zap.Logger, observer UpstreamObserver) *TeacherAPIRepository {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherAPIRepository{baseURL: baseURL, client: client, logger: logger, observer: observer}
}

// FetchAll returns every teacher in backend order.
func (r *TeacherAPIRepository) FetchAll(ctx context.Context) ([]models.Teacher, error) {
	var teachers []models.Teacher
	if err := r.do(ctx, "fetch", http.MethodGet, teacherResource, nil, &teachers); err != nil {
		return nil, appErrors.WrapAs(appErrors.ErrFetch, err, "")
	}
	if teachers == nil {
		teachers = []models.Teacher{}
	}
	return teachers, nil
}

// Create posts a new record; the backend assigns the id.
func (r *TeacherAPIRepository) Create(ctx context.Context, input models.TeacherInput) (*models.Teacher, error) {
	var created models.Teacher
	if err := r.do(ctx, "create", http.MethodPost, teacherResource, input, &created); err != nil {
		return nil, appErrors.WrapAs(appErrors.ErrCreate, err, "")
	}
	return &created, nil
}

// Update replaces the record identified by id.
func (r *TeacherAPIRepository) Update(ctx context.Context, id string, input models.TeacherInput) (*models.Teacher, error) {
	var updated models.Teacher
	if err := r.do(ctx, "update", http.MethodPut, teacherResource+"/"+url.PathEscape(id), input, &updated); err != nil {
		return nil, appErrors.WrapAs(appErrors.ErrUpdate, err, "")
	}
	return &updated, nil
}

// Delete removes the record identified by id.
func (r *TeacherAPIRepository) Delete(ctx context.Context, id string) error {
	if err := r.do(ctx, "delete", http.MethodDelete, teacherResource+"/"+url.PathEscape(id), nil, nil); err != nil {
		return appErrors.WrapAs(appErrors.ErrDelete, err, "")
	}
	return nil
}

func (r *TeacherAPIRepository) do(ctx context.Context, op, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s payload: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := requestid.FromContext(ctx); id != "" {
		req.Header.Set(requestid.HeaderKey, id)
	}

	log := logger.FromContext(ctx, r.logger).With(zap.String("operation", op), zap.String("method", method), zap.String("path", path))

	start := time.Now()
	resp, err := r.client.Do(req)
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	if r.observer != nil {
		r.observer.ObserveUpstream(op, status, time.Since(start))
	}
	if err != nil {
		log.Error("teacher api call failed", zap.Error(err))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		log.Error("teacher api returned non-2xx", zap.Int("status", resp.StatusCode))
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.Error("teacher api response undecodable", zap.Error(err))
		return fmt.Errorf("decode %s response: %w", op, err)
	}
	return nil
}
