package catalog

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_HandleList(t *testing.T) {
	now := time.Now()
	repo := NewRepoMock(
		Exercise{ID: 1, Name: "Barbell Bench Press", MuscleGroup: "chest", Equipment: "barbell", CreatedAt: now},
		Exercise{ID: 2, Name: "Push-Up", MuscleGroup: "chest", Equipment: "bodyweight", CreatedAt: now},
		Exercise{ID: 3, Name: "Barbell Row", MuscleGroup: "back", Equipment: "barbell", CreatedAt: now},
	)
	handler := NewHandler(repo)

	t.Run("all", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/exercises", nil)
		rr := httptest.NewRecorder()
		handler.HandleList(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"total": 3`)
		assert.Contains(t, rr.Body.String(), "Barbell Row")
	})

	t.Run("filter muscle group", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/exercises?muscleGroup=chest", nil)
		rr := httptest.NewRecorder()
		handler.HandleList(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"total": 2`)
		assert.NotContains(t, rr.Body.String(), "Barbell Row")
	})

	t.Run("filter equipment", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/exercises?equipment=bodyweight", nil)
		rr := httptest.NewRecorder()
		handler.HandleList(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"total": 1`)
		assert.Contains(t, rr.Body.String(), "Push-Up")
	})
}
