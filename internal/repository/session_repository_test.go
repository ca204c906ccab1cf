package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/teacher-directory/internal/models"
	appErrors "github.com/noah-isme/teacher-directory/pkg/errors"
)

func sampleState() *models.DirectoryState {
	state := models.NewDirectoryState()
	state.Status = models.LoadLoaded
	state.CurrentPage = 2
	state.Modal = models.ModalEditing
	state.EditingID = "3"
	state.Teachers = []models.Teacher{{ID: "3", Name: "Ada", Subject: "Mathematics", Location: "London", Rating: 4.5, Fee: models.NewFee(30)}}
	state.Form.Values = models.TeacherForm{Name: "Ada"}
	return state
}

func TestMemorySessionRepositoryRoundTrip(t *testing.T) {
	repo := NewMemorySessionRepository(0)
	ctx := context.Background()

	_, err := repo.Get(ctx, "sid")
	assert.True(t, errors.Is(err, appErrors.ErrCacheMiss))

	require.NoError(t, repo.Save(ctx, "sid", sampleState()))
	got, err := repo.Get(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, 2, got.CurrentPage)
	assert.Equal(t, models.ModalEditing, got.Modal)
	require.Len(t, got.Teachers, 1)
	assert.Equal(t, "$30.00/hour", got.Teachers[0].Fee.String())

	// Returned state is a copy.
	got.CurrentPage = 9
	again, _ := repo.Get(ctx, "sid")
	assert.Equal(t, 2, again.CurrentPage)

	require.NoError(t, repo.Delete(ctx, "sid"))
	assert.Equal(t, 0, repo.Len())
}

func TestMemorySessionRepositoryExpiry(t *testing.T) {
	repo := NewMemorySessionRepository(time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }

	require.NoError(t, repo.Save(context.Background(), "sid", sampleState()))
	now = now.Add(2 * time.Minute)

	_, err := repo.Get(context.Background(), "sid")
	assert.True(t, errors.Is(err, appErrors.ErrCacheMiss))
	assert.Equal(t, 0, repo.Len())
}

func TestMemorySessionRepositoryExpiryKeepsRefreshedEntry(t *testing.T) {
	repo := NewMemorySessionRepository(time.Minute)
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }
	require.NoError(t, repo.Save(ctx, "sid", models.NewDirectoryState()))
	now = now.Add(2 * time.Minute)

	// The entry is refreshed between the expiry check and the eviction.
	refreshed := false
	repo.now = func() time.Time {
		if !refreshed {
			refreshed = true
			require.NoError(t, repo.Save(ctx, "sid", sampleState()))
		}
		return now
	}

	_, err := repo.Get(ctx, "sid")
	assert.True(t, errors.Is(err, appErrors.ErrCacheMiss))
	assert.Equal(t, 1, repo.Len())

	got, err := repo.Get(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, 2, got.CurrentPage)
}

func TestRedisSessionRepository(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	defer client.Close()

	repo := NewRedisSessionRepository(client, time.Hour, nil)
	ctx := context.Background()

	_, err := repo.Get(ctx, "sid")
	assert.True(t, errors.Is(err, appErrors.ErrCacheMiss))

	require.NoError(t, repo.Save(ctx, "sid", sampleState()))
	assert.True(t, srv.Exists(sessionKeyPrefix+"sid"))
	assert.Equal(t, time.Hour, srv.TTL(sessionKeyPrefix+"sid"))

	got, err := repo.Get(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, "3", got.EditingID)
	assert.Equal(t, models.Rating(4.5), got.Teachers[0].Rating)

	require.NoError(t, repo.Ping(ctx))
	require.NoError(t, repo.Delete(ctx, "sid"))
	assert.False(t, srv.Exists(sessionKeyPrefix+"sid"))
}

func TestRedisSessionRepositoryCorruptPayload(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	defer client.Close()

	require.NoError(t, srv.Set(sessionKeyPrefix+"sid", "{not json"))
	repo := NewRedisSessionRepository(client, time.Hour, nil)

	_, err := repo.Get(context.Background(), "sid")
	assert.True(t, errors.Is(err, appErrors.ErrCacheMiss))
}

func TestRedisSessionRepositoryWithoutClient(t *testing.T) {
	repo := NewRedisSessionRepository(nil, time.Hour, nil)
	_, err := repo.Get(context.Background(), "sid")
	assert.True(t, errors.Is(err, appErrors.ErrCacheMiss))
	assert.NoError(t, repo.Save(context.Background(), "sid", sampleState()))
}
