package types

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	apperrors "github.com/killallgit/coffeebreak-api/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDependencies(t *testing.T) {
	deps := &Dependencies{}

	// Test that we can create empty dependencies
	assert.NotNil(t, deps)
	assert.Nil(t, deps.DB)
	assert.Nil(t, deps.EpisodeService)
	assert.Nil(t, deps.Runner)
	assert.Nil(t, deps.Participants)
}

func newContext(method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	return c, w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestSendError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
	}{
		{"locked", apperrors.New(apperrors.ErrCodeLocked, "held"), http.StatusConflict, "LOCKED"},
		{"incomplete bundle", apperrors.IncompleteBundle("042"), http.StatusUnprocessableEntity, "INCOMPLETE_EPISODE_BUNDLE"},
		{"plain error", assert.AnError, http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newContext(http.MethodGet, "/", "")
			SendError(c, "failed", tt.err)

			assert.Equal(t, tt.wantCode, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, StatusError, resp.Status)
			assert.Equal(t, "failed", resp.Message)
			assert.Equal(t, tt.wantErr, resp.Error)
		})
	}
}

func TestBindBundlesOrError(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantOK  bool
		wantLen int
	}{
		{"single bundle", `{"number":"042","parts":[{"episode_id":"Ep042","info":"Ep042: x"}]}`, true, 1},
		{"array", `[{"number":"1"},{"number":"2"}]`, true, 2},
		{"empty array", `[]`, false, 0},
		{"invalid json", `{"number":`, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newContext(http.MethodPost, "/", tt.body)
			bundles, ok := BindBundlesOrError(c)

			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				assert.Equal(t, http.StatusBadRequest, w.Code)
				return
			}
			assert.Len(t, bundles, tt.wantLen)
		})
	}
}

func TestBindQueryOrError(t *testing.T) {
	c, w := newContext(http.MethodGet, "/?page=-1", "")
	var q ListQuery
	assert.False(t, BindQueryOrError(c, &q))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	c, _ = newContext(http.MethodGet, "/?page=2&limit=50", "")
	q = ListQuery{}
	require.True(t, BindQueryOrError(c, &q))
	assert.Equal(t, 2, q.Page)
	assert.Equal(t, 50, q.Limit)

	c, w = newContext(http.MethodGet, "/?outcome=guessed", "")
	var d DecisionQuery
	assert.False(t, BindQueryOrError(c, &d))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
