package errors

import (
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrappedErrorsMatchSentinels(t *testing.T) {
	cause := stderrors.New("dial tcp: connection refused")
	err := WrapAs(ErrFetch, cause, "")

	assert.True(t, stderrors.Is(err, ErrFetch))
	assert.False(t, stderrors.Is(err, ErrCreate))
	assert.True(t, stderrors.Is(err, cause))
	assert.Equal(t, "failed to fetch teachers: dial tcp: connection refused", err.Error())
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	err := FromError(stderrors.New("boom"))
	assert.Equal(t, ErrInternal.Code, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.Nil(t, FromError(nil))
}

func TestValidationCarriesFields(t *testing.T) {
	err := Validation(map[string]string{"name": "Name is required"})
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Equal(t, "Name is required", err.Fields["name"])
	assert.Nil(t, ErrValidation.Fields)
}
