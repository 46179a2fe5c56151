package admin

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"pantry-chef/internal/core/feedback"
	"pantry-chef/internal/infrastructure/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*gin.Engine, *storage.Store) {
	t.Helper()
	store, err := storage.NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewHandler(feedback.NewAggregator(store.DB()))
	router.POST("/api/v1/admin/aggregate", handler.HandleRunAggregation)
	return router, store
}

func TestHandleRunAggregationWritesPreferences(t *testing.T) {
	router, store := newTestRouter(t)

	_, err := store.DB().Exec(`
		INSERT INTO user_ratings
			(user_id, recipe_id, rating, review_text, effort_tag, sentiment,
			 sweetness, saltiness, sourness, bitterness, savoriness, fattiness)
		VALUES ('alyssa', '101', 5, 'review', 'easy', 'positive',
			 30, 70, 10, 0, 85, 40)`)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/aggregate", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "success")

	var effort string
	err = store.DB().QueryRow(`
		SELECT effort_tolerance FROM user_preferences WHERE user_id = 'alyssa'`).
		Scan(&effort)
	require.NoError(t, err)
	assert.Equal(t, "easy", effort)
}

func TestHandleRunAggregationEmptyDatabase(t *testing.T) {
	router, store := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/aggregate", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var count int
	err := store.DB().QueryRow(`SELECT COUNT(*) FROM user_preferences`).Scan(&count)
	require.NoError(t, err)
	assert.Zero(t, count)
}
