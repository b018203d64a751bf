package episodes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/coffeebreak-api/api/types"
	"github.com/killallgit/coffeebreak-api/internal/database"
	"github.com/killallgit/coffeebreak-api/internal/models"
	"github.com/killallgit/coffeebreak-api/internal/pipeline"
	"github.com/killallgit/coffeebreak-api/internal/services/workers"
	apperrors "github.com/killallgit/coffeebreak-api/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const episode042 = `{
  "number": "42",
  "publication_date": "12/02/2016",
  "parts": [{
    "episode_id": "Ep042",
    "duration": "1:02:05",
    "info": "Ep042: Ondas gravitacionales\n-LIGO detecta la fusión (1:05)\n-Preguntas de los oyentes (45:10)\nContertulios: Héctor Socas, Sara Robisco."
  }]
}`

func setupRouter(t *testing.T) (*gin.Engine, *types.Dependencies) {
	gin.SetMode(gin.TestMode)

	db, err := database.Initialize(":memory:", false)
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { db.Close() })

	p, err := pipeline.New(db.DB, pipeline.Options{
		Threshold:        0.88,
		MarkerPosition:   "after",
		StripTitlePrefix: true,
		Workers:          2,
	})
	require.NoError(t, err)

	deps := &types.Dependencies{
		DB:             db,
		EpisodeService: p.Episodes(),
		Runner:         p,
		Participants:   p.Registry(),
	}
	router := gin.New()
	RegisterRoutes(router.Group("/api/v1/episodes"), deps)
	return router, deps
}

func doRequest(router *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	router.ServeHTTP(w, req)
	return w
}

func TestPostIngest(t *testing.T) {
	router, _ := setupRouter(t)

	w := doRequest(router, http.MethodPost, "/api/v1/episodes/ingest", episode042)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp types.IngestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, types.StatusOK, resp.Status)
	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, 1, resp.Created)
	assert.Equal(t, 0, resp.Failed)
	require.Len(t, resp.Episodes, 1)
	assert.Equal(t, "042", resp.Episodes[0].Number)
	assert.Equal(t, "created", resp.Episodes[0].Status)

	// a second ingest of the same episode merges into it
	w = doRequest(router, http.MethodPost, "/api/v1/episodes/ingest", "["+episode042+"]")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Updated)
}

func TestPostIngest_PartialAndTotalFailure(t *testing.T) {
	router, _ := setupRouter(t)
	empty := `{"number": "43", "parts": [{"episode_id": "Ep043"}]}`

	w := doRequest(router, http.MethodPost, "/api/v1/episodes/ingest", "["+episode042+","+empty+"]")
	assert.Equal(t, http.StatusMultiStatus, w.Code)

	var resp types.IngestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, types.StatusPartial, resp.Status)
	assert.Equal(t, 1, resp.Created)
	assert.Equal(t, 1, resp.Failed)
	assert.NotEmpty(t, resp.Episodes[1].Error)

	w = doRequest(router, http.MethodPost, "/api/v1/episodes/ingest", empty)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, types.StatusError, resp.Status)
}

type stubRunner struct {
	result *workers.BatchResult
	err    error
}

func (s *stubRunner) Run(context.Context, []models.Bundle, ...workers.PoolOption) (*workers.BatchResult, error) {
	return s.result, s.err
}

func TestPostIngest_RegistryNotSaved(t *testing.T) {
	gin.SetMode(gin.TestMode)
	runner := &stubRunner{
		result: &workers.BatchResult{
			RunID: "run-1",
			Episodes: []workers.EpisodeSummary{
				{Number: "042", Status: workers.StatusCreated, Bundles: 1},
				{Number: "043", Status: workers.StatusUpdated, Bundles: 1},
			},
		},
		err: apperrors.Wrap(errors.New("disk I/O error"), apperrors.ErrCodeDatabaseQuery, "run finished but the registry was not saved"),
	}
	router := gin.New()
	RegisterRoutes(router.Group("/api/v1/episodes"), &types.Dependencies{Runner: runner})

	w := doRequest(router, http.MethodPost, "/api/v1/episodes/ingest", episode042)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp types.IngestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, types.StatusError, resp.Status)
	assert.Contains(t, resp.Message, "registry was not saved")
	assert.Equal(t, 1, resp.Created)
	assert.Equal(t, 1, resp.Updated)
	assert.Equal(t, 0, resp.Failed)

	runner.result.Episodes = []workers.EpisodeSummary{{Number: "042", Status: workers.StatusFailed, Err: errors.New("no text")}}
	runner.err = apperrors.New(apperrors.ErrCodeInternal, "all 1 episodes failed in run run-1")
	w = doRequest(router, http.MethodPost, "/api/v1/episodes/ingest", episode042)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestPostIngest_BadRequest(t *testing.T) {
	router, _ := setupRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"empty array", "[]"},
		{"malformed json", `{"number": `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, http.MethodPost, "/api/v1/episodes/ingest", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestGetByNumber(t *testing.T) {
	router, _ := setupRouter(t)
	require.Equal(t, http.StatusOK, doRequest(router, http.MethodPost, "/api/v1/episodes/ingest", episode042).Code)

	tests := []struct {
		name           string
		number         string
		expectedStatus int
	}{
		{"padded", "042", http.StatusOK},
		{"bare", "42", http.StatusOK},
		{"episode id", "Ep042", http.StatusOK},
		{"unknown", "999", http.StatusNotFound},
		{"not a number", "abc", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, http.MethodGet, "/api/v1/episodes/"+tt.number, "")
			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus != http.StatusOK {
				return
			}

			var resp map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			episode := resp["episode"].(map[string]interface{})
			assert.Equal(t, "042", episode["Episode number"])
			assert.Equal(t, "Ondas gravitacionales", episode["Title"])
			assert.Equal(t, "12/02/2016", episode["publication_date"])

			part := episode["Parts"].([]interface{})[0].(map[string]interface{})
			assert.Equal(t, "1:02:05", part["Duration"])
			assert.Len(t, part["Topics"], 2)
			assert.Equal(t, []interface{}{"Héctor Socas", "Sara Robisco"}, part["Contertulios"])
		})
	}
}

func TestGetAll(t *testing.T) {
	router, _ := setupRouter(t)
	second := strings.Replace(strings.Replace(episode042, `"42"`, `"7"`, 1), "Ep042", "Ep007", 2)
	w := doRequest(router, http.MethodPost, "/api/v1/episodes/ingest", "["+episode042+","+second+"]")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doRequest(router, http.MethodGet, "/api/v1/episodes?limit=1", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp types.EpisodesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(2), resp.Total)
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, "007", resp.Episodes[0].Number)

	w = doRequest(router, http.MethodGet, "/api/v1/episodes?page=2&limit=1", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "042", resp.Episodes[0].Number)

	w = doRequest(router, http.MethodGet, "/api/v1/episodes?limit=500", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlers_ServiceUnavailable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	RegisterRoutes(router.Group("/api/v1/episodes"), &types.Dependencies{})

	tests := []struct {
		name   string
		method string
		target string
		body   string
	}{
		{"list", http.MethodGet, "/api/v1/episodes", ""},
		{"get", http.MethodGet, "/api/v1/episodes/042", ""},
		{"ingest", http.MethodPost, "/api/v1/episodes/ingest", episode042},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, tt.method, tt.target, tt.body)
			assert.Equal(t, http.StatusServiceUnavailable, w.Code)

			var response map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, "error", response["status"])
		})
	}
}
