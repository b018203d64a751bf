package participants

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/coffeebreak-api/api/types"
	"github.com/killallgit/coffeebreak-api/internal/database"
	"github.com/killallgit/coffeebreak-api/internal/names"
	"github.com/killallgit/coffeebreak-api/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)

	db, err := database.Initialize(":memory:", false)
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { db.Close() })

	repo := registry.NewRepository(db.DB)
	reg := registry.New()
	normalizer := names.NewNormalizer(reg)
	for _, raw := range []string{"Héctor Socas", "Sara Robisco", "Hector Socas"} {
		_, err := normalizer.Normalize(raw)
		require.NoError(t, err)
	}
	_, err = repo.Flush(context.Background(), reg)
	require.NoError(t, err)

	router := gin.New()
	RegisterRoutes(router.Group("/api/v1/participants"), &types.Dependencies{DB: db, Participants: repo})
	return router
}

func TestGetAll(t *testing.T) {
	router := setupRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/participants", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp types.ParticipantsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "Héctor Socas", resp.Participants[0].Canonical)
	assert.Equal(t, "Sara Robisco", resp.Participants[1].Canonical)
}

func TestGetDecisions(t *testing.T) {
	router := setupRouter(t)

	tests := []struct {
		name           string
		query          string
		expectedStatus int
		expectedCount  int
	}{
		{"all", "", http.StatusOK, 2},
		{"minted only", "?outcome=minted", http.StatusOK, 2},
		{"ambiguous only", "?outcome=ambiguous", http.StatusOK, 0},
		{"limited", "?limit=1", http.StatusOK, 1},
		{"unknown outcome", "?outcome=guessed", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/participants/decisions"+tt.query, nil))
			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus != http.StatusOK {
				return
			}

			var resp types.DecisionsResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.expectedCount, resp.Count)
		})
	}
}

func TestHandlers_ServiceUnavailable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	RegisterRoutes(router.Group("/api/v1/participants"), &types.Dependencies{})

	for _, target := range []string{"/api/v1/participants", "/api/v1/participants/decisions"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, target)
	}
}
