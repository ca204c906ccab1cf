package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/teacher-directory/internal/models"
)

func TestCompare(t *testing.T) {
	a := models.Teacher{ID: "1", Name: "Ada", Subject: "Art", Location: "Hue", Rating: 4, Fee: models.NewFee(10)}
	b := models.Teacher{ID: "2", Name: "Bea", Subject: "Art", Location: "Hue", Rating: 3, Fee: models.NewFee(12)}

	assert.Empty(t, compare([]models.Teacher{a, b}, []models.Teacher{a, b}))

	changed := b
	changed.Fee = models.NewFee(13)
	diffs := compare([]models.Teacher{a, b}, []models.Teacher{a, changed})
	require.Len(t, diffs, 1)
	assert.Equal(t, "2", diffs[0].ID)

	diffs = compare([]models.Teacher{a}, []models.Teacher{a, b})
	require.Len(t, diffs, 1)
	assert.Equal(t, "not present in backend", diffs[0].Reason)

	diffs = compare([]models.Teacher{a, b}, []models.Teacher{b, a})
	assert.Len(t, diffs, 2)
}

func TestFetchAPIWalksPages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		env := envelope{Pagination: &models.Pagination{TotalPages: 2}}
		env.Data = []models.Teacher{{ID: page}}
		_ = json.NewEncoder(w).Encode(env)
	}))
	defer srv.Close()

	got, err := fetchAPI(srv.Client(), srv.URL, 1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "2", got[1].ID)
}
