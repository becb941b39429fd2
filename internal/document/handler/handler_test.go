package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gogotex/nodedoc/internal/document/service"
	"github.com/stretchr/testify/require"
)

func do(g *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	g.ServeHTTP(w, req)
	return w
}

func TestDocumentHandler_CRUD(t *testing.T) {
	gin.SetMode(gin.TestMode)
	g := gin.New()
	RegisterDocumentRoutes(g, service.NewMemoryService())

	// create with generated id
	w := do(g, http.MethodPost, "/api/documents", "")
	require.Equal(t, http.StatusCreated, w.Code)
	var cr map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cr))
	id, _ := cr["id"].(string)
	require.NotEmpty(t, id)

	// create with explicit id, then conflict
	w = do(g, http.MethodPost, "/api/documents", `{"id":"doc1"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	w = do(g, http.MethodPost, "/api/documents", `{"id":"doc1"}`)
	require.Equal(t, http.StatusConflict, w.Code)

	// get
	w = do(g, http.MethodGet, "/api/documents/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)

	// list
	w = do(g, http.MethodGet, "/api/documents", "")
	require.Equal(t, http.StatusOK, w.Code)
	var lr struct {
		IDs []string `json:"ids"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &lr))
	require.Len(t, lr.IDs, 2)

	// delete
	w = do(g, http.MethodDelete, "/api/documents/"+id, "")
	require.Equal(t, http.StatusNoContent, w.Code)
	w = do(g, http.MethodGet, "/api/documents/"+id, "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestNodeHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	g := gin.New()
	RegisterDocumentRoutes(g, service.NewMemoryService())
	require.Equal(t, http.StatusCreated, do(g, http.MethodPost, "/api/documents", `{"id":"d"}`).Code)

	w := do(g, http.MethodPut, "/api/documents/d/nodes/Foo", `{"flag":true}`)
	require.Equal(t, http.StatusCreated, w.Code)
	require.JSONEq(t, `{"name":"foo","flag":true}`, w.Body.String())

	w = do(g, http.MethodPut, "/api/documents/d/nodes/FOO", `{"flag":false}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(g, http.MethodPut, "/api/documents/d/nodes/bar", `{}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = do(g, http.MethodGet, "/api/documents/d/nodes/foo", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"name":"foo","flag":false}`, w.Body.String())

	require.Equal(t, http.StatusCreated, do(g, http.MethodPut, "/api/documents/d/nodes/a", `{"flag":true}`).Code)
	w = do(g, http.MethodGet, "/api/documents/d/nodes", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `[{"name":"a","flag":true},{"name":"foo","flag":false}]`, w.Body.String())

	w = do(g, http.MethodDelete, "/api/documents/d/nodes/Foo", "")
	require.Equal(t, http.StatusNoContent, w.Code)
	w = do(g, http.MethodDelete, "/api/documents/d/nodes/foo", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	w = do(g, http.MethodGet, "/api/documents/d/nodes/foo", "")
	require.Equal(t, http.StatusNotFound, w.Code)

	w = do(g, http.MethodPut, "/api/documents/missing/nodes/x", `{"flag":true}`)
	require.Equal(t, http.StatusNotFound, w.Code)
}
