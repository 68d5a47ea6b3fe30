package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sceneforge/rigkit/internal/services"
	"github.com/sceneforge/rigkit/pkg/rig"
	"github.com/sceneforge/rigkit/pkg/scene"
)

// BuildRequest triggers a build pass: grab rigs are derived from the
// physics-bearing nodes of the named template.
type BuildRequest struct {
	Template string `json:"template"`
	Parent   string `json:"parent,omitempty"`
}

// BuildResponse carries the report plus the mutated graph. The build pass
// never persists; the caller decides what to do with the result.
type BuildResponse struct {
	Report   *rig.Report     `json:"report"`
	Template *scene.Template `json:"template"`
}

type BuildHandler struct {
	reconciler *rig.Reconciler
	storage    services.Storage
	log        *slog.Logger
}

func NewBuildHandler(reconciler *rig.Reconciler, storage services.Storage, log *slog.Logger) *BuildHandler {
	return &BuildHandler{
		reconciler: reconciler,
		storage:    storage,
		log:        log,
	}
}

func (h *BuildHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Only POST is supported at /v1/build.", http.StatusMethodNotAllowed)
		return
	}

	var req BuildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Template) == "" {
		http.Error(w, "template is required", http.StatusBadRequest)
		return
	}

	tpl, err := h.storage.GetTemplate(r.Context(), req.Template)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			http.Error(w, "Template not found", http.StatusNotFound)
			return
		}
		h.log.Error("Failed to get template", "template", req.Template, "error", err)
		http.Error(w, "Failed to retrieve template", http.StatusInternalServerError)
		return
	}
	if tpl.Root == nil {
		http.Error(w, "Template has no root node", http.StatusBadRequest)
		return
	}

	var parent scene.NodeRef
	if req.Parent != "" {
		parent = scene.RefNamed(req.Parent)
	}

	report, _, err := h.reconciler.Build(tpl.Root, parent)
	if err != nil {
		h.log.Error("Build pass failed", "template", req.Template, "error", err)
		http.Error(w, "Build pass failed", http.StatusInternalServerError)
		return
	}
	report.Template = tpl.FileName

	writeJSON(w, h.log, http.StatusOK, BuildResponse{
		Report:   report,
		Template: tpl,
	})
}
