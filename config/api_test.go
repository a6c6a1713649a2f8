package config

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pevans/ytexport/video"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Test helper: router with the config routes under /api/v1
func setupTestRouter(t *testing.T) (*gin.Engine, *Store) {
	store := createTestStore(t)
	router := gin.New()
	NewAPIServer(store).Register(router.Group("/api/v1"))
	return router, store
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleGetOptions_Default(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := doRequest(router, http.MethodGet, "/api/v1/options", "")
	require.Equal(t, http.StatusOK, w.Code)

	var opts video.Options
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &opts))
	assert.Equal(t, video.DefaultOptions(), opts)
}

// TestHandleUpdateOptions_Partial verifies absent fields keep saved values
func TestHandleUpdateOptions_Partial(t *testing.T) {
	router, store := setupTestRouter(t)

	w := doRequest(router, http.MethodPut, "/api/v1/options", `{"includeThumbnails": true, "scrollToLoadMore": false}`)
	require.Equal(t, http.StatusOK, w.Code)

	saved, err := store.GetOptions()
	require.NoError(t, err)
	assert.Equal(t, video.Options{IncludeThumbnails: true, IncludeViewCounts: true}, saved)

	w = doRequest(router, http.MethodPut, "/api/v1/options", `{"includeViewCounts": false}`)
	require.Equal(t, http.StatusOK, w.Code)

	saved, err = store.GetOptions()
	require.NoError(t, err)
	assert.Equal(t, video.Options{IncludeThumbnails: true}, saved)
}

func TestHandleUpdateOptions_BadJSON(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := doRequest(router, http.MethodPut, "/api/v1/options", `{"includeThumbnails": "yes"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "bad_request")
}

func TestHandleListExports(t *testing.T) {
	router, store := setupTestRouter(t)
	for _, path := range []string{"a.csv", "b.csv"} {
		require.NoError(t, store.RecordExport(&Export{Path: path, Source: "s", PageType: video.PageSearch, VideoCount: 1}))
	}

	w := doRequest(router, http.MethodGet, "/api/v1/exports?limit=1", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Exports []Export `json:"exports"`
		Total   int      `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Total)
	require.Len(t, body.Exports, 1)

	w = doRequest(router, http.MethodGet, "/api/v1/exports?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
