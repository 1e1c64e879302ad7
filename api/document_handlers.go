package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/reconflow/invoice-recon-service/internal/storage"
)

// GetDocumentURL returns a time-limited download link for an archived
// document. The path variable is the full object path reported by the
// reconcile response (archiveUrl).
func (h *Handler) GetDocumentURL(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if storage.Client == nil {
		h.sendError(w, http.StatusServiceUnavailable, "storage not available")
		return
	}

	url, err := storage.GetPresignedURL(r.Context(), mux.Vars(r)["path"])
	if err != nil {
		h.sendError(w, http.StatusNotFound, fmt.Sprintf("failed to generate download URL: %v", err))
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"url":     url,
	})
}

// DeleteDocument removes an archived document.
func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if storage.Client == nil {
		h.sendError(w, http.StatusServiceUnavailable, "storage not available")
		return
	}

	if err := storage.DeleteDocument(r.Context(), mux.Vars(r)["path"]); err != nil {
		h.sendError(w, http.StatusInternalServerError, fmt.Sprintf("failed to delete document: %v", err))
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"message": "document deleted",
	})
}
