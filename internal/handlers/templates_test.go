package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sceneforge/rigkit/internal/services"
	"github.com/sceneforge/rigkit/pkg/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplatesHandler_List(t *testing.T) {
	storage := services.NewMockStorage()
	storage.AddTemplate(grabbableTemplate("Crate", "crate.json"))
	storage.AddTemplate(grabbableTemplate("Training Dummy", "dummy.json"))
	handler := NewTemplatesHandler(testLogger(), storage)

	req := httptest.NewRequest(http.MethodGet, "/v1/templates", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var templates map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &templates))
	assert.Len(t, templates, 2)
	assert.Equal(t, "crate.json", templates["Crate"])
	assert.Equal(t, "dummy.json", templates["Training Dummy"])
}

func TestTemplatesHandler_Get(t *testing.T) {
	storage := services.NewMockStorage()
	storage.AddTemplate(grabbableTemplate("Crate", "crate.json"))
	handler := NewTemplatesHandler(testLogger(), storage)

	tests := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{"existing template", http.MethodGet, "/v1/templates/crate.json", http.StatusOK},
		{"missing template", http.MethodGet, "/v1/templates/ghost.json", http.StatusNotFound},
		{"path traversal rejected", http.MethodGet, "/v1/templates/..%2Fsecrets.json", http.StatusBadRequest},
		{"method not allowed", http.MethodPost, "/v1/templates", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}

func TestTemplatesHandler_GetBody(t *testing.T) {
	storage := services.NewMockStorage()
	storage.AddTemplate(grabbableTemplate("Crate", "crate.json"))
	handler := NewTemplatesHandler(testLogger(), storage)

	req := httptest.NewRequest(http.MethodGet, "/v1/templates/crate.json", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var tpl scene.Template
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tpl))
	assert.Equal(t, "Crate", tpl.Name)
	require.NotNil(t, tpl.Root)
	tpl.Normalize()
	assert.True(t, tpl.Root.HasCapability(scene.KindGrabbable))
}
