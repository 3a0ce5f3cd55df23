package docs

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dummyapi/internal/platform/config"
)

func TestHandleDocs(t *testing.T) {
	app := config.AppInfo{
		Name:     "dummy-api",
		Desc:     "records",
		Version:  "v2",
		URL:      "http://localhost:8080",
		DevName:  "Dev",
		DevEmail: "dev@x.com",
	}
	r := chi.NewRouter()
	New(app).Register(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api-docs", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))

	assert.Equal(t, "3.0.1", got["openapi"])
	info := got["info"].(map[string]any)
	assert.Equal(t, "dummy-api", info["title"])
	assert.Equal(t, "v2", info["version"])
	assert.Equal(t, map[string]any{"name": "Dev", "email": "dev@x.com"}, info["contact"])

	servers := got["servers"].([]any)
	require.Len(t, servers, 1)
	assert.Equal(t, "http://localhost:8080", servers[0].(map[string]any)["url"])

	paths := got["paths"].(map[string]any)
	assert.Contains(t, paths, "/dummy/{id}")
	assert.Contains(t, paths, "/dummy/dni/{dni}")
}

func TestBuildCoversEveryRoute(t *testing.T) {
	doc := Build(config.AppInfo{})
	ops := 0
	for _, item := range doc.Paths {
		ops += len(item)
	}
	assert.Equal(t, 10, ops)
}
