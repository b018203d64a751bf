package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/coffeebreak-api/api/types"
	"github.com/killallgit/coffeebreak-api/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		setupDeps      func() *types.Dependencies
		expectedStatus int
		expectedBody   map[string]interface{}
	}{
		{
			name: "healthy with database",
			setupDeps: func() *types.Dependencies {
				db, err := database.Initialize(":memory:", false)
				require.NoError(t, err)
				return &types.Dependencies{DB: db}
			},
			expectedStatus: http.StatusOK,
			expectedBody: map[string]interface{}{
				"status": "healthy",
				"database": map[string]interface{}{
					"status":    "connected",
					"connected": true,
				},
			},
		},
		{
			name: "healthy without database",
			setupDeps: func() *types.Dependencies {
				return &types.Dependencies{}
			},
			expectedStatus: http.StatusOK,
			expectedBody: map[string]interface{}{
				"status": "healthy",
				"database": map[string]interface{}{
					"status":    "not configured",
					"connected": false,
				},
			},
		},
		{
			name: "unhealthy with closed database",
			setupDeps: func() *types.Dependencies {
				db, err := database.Initialize(":memory:", false)
				require.NoError(t, err)

				// Close the database connection
				sqlDB, _ := db.DB.DB()
				sqlDB.Close()

				return &types.Dependencies{DB: db}
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody: map[string]interface{}{
				"status": "unhealthy",
				"database": map[string]interface{}{
					"status":    "error",
					"connected": false,
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			deps := tt.setupDeps()
			Get(deps)(c)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var response map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tt.expectedBody["status"], response["status"])
			assert.Equal(t, "dev", response["version"])

			services := response["services"].(map[string]interface{})
			dbStatus := services["database"].(map[string]interface{})
			expectedDB := tt.expectedBody["database"].(map[string]interface{})
			assert.Equal(t, expectedDB["connected"], dbStatus["connected"])
			assert.Equal(t, expectedDB["status"], dbStatus["status"])
			assert.Equal(t, "not configured", services["ingest"].(map[string]interface{})["status"])

			// Cleanup
			if deps.DB != nil && deps.DB.DB != nil {
				if sqlDB, err := deps.DB.DB.DB(); err == nil {
					sqlDB.Close()
				}
			}
		})
	}
}

func TestGet_NilDependencies(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Get(nil)(c)
	assert.Equal(t, http.StatusOK, w.Code)
}
