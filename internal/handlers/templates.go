package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sceneforge/rigkit/internal/services"
)

// TemplatesHandler serves the template catalog: a name-to-filename map at
// /v1/templates and single templates at /v1/templates/{file}.
type TemplatesHandler struct {
	log     *slog.Logger
	storage services.Storage
}

func NewTemplatesHandler(log *slog.Logger, storage services.Storage) *TemplatesHandler {
	return &TemplatesHandler{
		log:     log,
		storage: storage,
	}
}

func (h *TemplatesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	filename := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, "/v1/templates"))
	filename = strings.TrimPrefix(filename, "/")
	if filename == "" {
		h.handleList(w, r)
		return
	}
	h.handleGet(w, r, filename)
}

func (h *TemplatesHandler) handleList(w http.ResponseWriter, r *http.Request) {
	templates, err := h.storage.ListTemplates(r.Context())
	if err != nil {
		h.log.Error("Failed to list templates", "error", err)
		http.Error(w, "Failed to list templates", http.StatusInternalServerError)
		return
	}

	writeJSON(w, h.log, http.StatusOK, templates)
}

func (h *TemplatesHandler) handleGet(w http.ResponseWriter, r *http.Request, filename string) {
	if strings.Contains(filename, "..") || strings.Contains(filename, "/") {
		http.Error(w, "Invalid filename", http.StatusBadRequest)
		return
	}

	tpl, err := h.storage.GetTemplate(r.Context(), filename)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			http.Error(w, "Template not found", http.StatusNotFound)
			return
		}
		h.log.Error("Failed to get template", "error", err, "filename", filename)
		http.Error(w, "Failed to retrieve template", http.StatusInternalServerError)
		return
	}

	writeJSON(w, h.log, http.StatusOK, tpl)
}

func writeJSON(w http.ResponseWriter, log *slog.Logger, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error("Failed to marshal response", "error", err)
		http.Error(w, "Failed to process response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		log.Error("Failed to write response", "error", err)
	}
}
