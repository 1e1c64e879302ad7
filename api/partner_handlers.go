package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/reconflow/invoice-recon-service/internal/db"
)

// GetPartners returns the active channel partners
func (h *Handler) GetPartners(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if db.Pool == nil {
		h.sendError(w, http.StatusServiceUnavailable, "database not available")
		return
	}

	partners, err := db.ListPartners(r.Context(), 100)
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list partners: %v", err))
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":  true,
		"partners": partners,
		"count":    len(partners),
	})
}

// GetPartner returns a single channel partner
func (h *Handler) GetPartner(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if db.Pool == nil {
		h.sendError(w, http.StatusServiceUnavailable, "database not available")
		return
	}

	partner, err := db.GetPartner(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.sendError(w, http.StatusNotFound, fmt.Sprintf("partner not found: %v", err))
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"partner": partner,
	})
}

// CreatePartner registers a channel partner
func (h *Handler) CreatePartner(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if db.Pool == nil {
		h.sendError(w, http.StatusServiceUnavailable, "database not available")
		return
	}

	var partner db.ChannelPartner
	if err := json.NewDecoder(r.Body).Decode(&partner); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if partner.Name == "" {
		h.sendError(w, http.StatusBadRequest, "name is required")
		return
	}

	if err := db.CreatePartner(r.Context(), &partner); err != nil {
		h.sendError(w, http.StatusInternalServerError, fmt.Sprintf("failed to create partner: %v", err))
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"partner": partner,
	})
}

// DeletePartner deactivates a channel partner
func (h *Handler) DeletePartner(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if db.Pool == nil {
		h.sendError(w, http.StatusServiceUnavailable, "database not available")
		return
	}

	if err := db.DeactivatePartner(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.sendError(w, http.StatusNotFound, fmt.Sprintf("failed to deactivate partner: %v", err))
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"message": "partner deactivated",
	})
}
