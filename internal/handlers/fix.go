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

// FixRequest triggers a fix pass over a stored template. Parent is an
// optional node name resolved against the template root; callers outside the
// editable context only ever have a name to offer.
type FixRequest struct {
	Template string `json:"template"`
	Parent   string `json:"parent,omitempty"`
}

type FixHandler struct {
	reconciler *rig.Reconciler
	storage    services.Storage
	log        *slog.Logger
}

func NewFixHandler(reconciler *rig.Reconciler, storage services.Storage, log *slog.Logger) *FixHandler {
	return &FixHandler{
		reconciler: reconciler,
		storage:    storage,
		log:        log,
	}
}

func (h *FixHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Only POST is supported at /v1/fix.", http.StatusMethodNotAllowed)
		return
	}

	var req FixRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Template) == "" {
		http.Error(w, "template is required", http.StatusBadRequest)
		return
	}

	var parent scene.NodeRef
	if req.Parent != "" {
		parent = scene.RefNamed(req.Parent)
	}

	report, editLog, err := h.reconciler.Fix(r.Context(), req.Template, parent)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			http.Error(w, "Template not found", http.StatusNotFound)
			return
		}
		if strings.Contains(err.Error(), "no root node") {
			http.Error(w, "Template has no root node", http.StatusBadRequest)
			return
		}
		h.log.Error("Fix pass failed", "template", req.Template, "error", err)
		http.Error(w, "Fix pass failed", http.StatusInternalServerError)
		return
	}

	// Persist the undo record only for runs that changed anything.
	if editLog.Len() > 0 {
		if err := h.storage.SaveEditSession(r.Context(), editLog); err != nil {
			// The template is already written; a lost undo record is not
			// worth failing the request over.
			h.log.Warn("Failed to save edit session", "run_id", editLog.RunID, "error", err)
		}
	}

	writeJSON(w, h.log, http.StatusOK, report)
}
