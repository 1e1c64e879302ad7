package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/reconflow/invoice-recon-service/internal/db"
	"github.com/reconflow/invoice-recon-service/internal/models"
	"github.com/reconflow/invoice-recon-service/internal/services"
	"github.com/reconflow/invoice-recon-service/internal/storage"
)

const (
	MaxUploadSize = 10 * 1024 * 1024 // 10MB
	Version       = "1.0.0"
)

// Handler handles HTTP requests for invoice reconciliation
type Handler struct {
	config     *models.Config
	reconciler *services.Reconciler
}

// NewHandler creates a new API handler
func NewHandler(config *models.Config, reconciler *services.Reconciler) *Handler {
	return &Handler{
		config:     config,
		reconciler: reconciler,
	}
}

// SetupRoutes configures the HTTP routes
func (h *Handler) SetupRoutes() *mux.Router {
	router := mux.NewRouter()

	// Reconciliation
	router.HandleFunc("/api/reconcile-invoice", h.ReconcileInvoice).Methods("POST")

	// Channel partner registry
	router.HandleFunc("/api/partners", h.GetPartners).Methods("GET")
	router.HandleFunc("/api/partners", h.CreatePartner).Methods("POST")
	router.HandleFunc("/api/partners/{id}", h.GetPartner).Methods("GET")
	router.HandleFunc("/api/partners/{id}", h.DeletePartner).Methods("DELETE")

	// Archived document access
	router.HandleFunc("/api/documents/{path:.+}", h.GetDocumentURL).Methods("GET")
	router.HandleFunc("/api/documents/{path:.+}", h.DeleteDocument).Methods("DELETE")

	// Health check
	router.HandleFunc("/health", h.Health).Methods("GET")

	return router
}

// HealthResponse represents the health check response structure
type HealthResponse struct {
	Status    string        `json:"status"`
	Version   string        `json:"version"`
	Timestamp string        `json:"timestamp"`
	Uptime    string        `json:"uptime"`
	Memory    MemoryStats   `json:"memory"`
	Tesseract ServiceStatus `json:"tesseract"`
	Pdftoppm  ServiceStatus `json:"pdftoppm"`
	Database  ServiceStatus `json:"database"`
	Storage   ServiceStatus `json:"storage"`
}

// MemoryStats represents memory usage statistics
type MemoryStats struct {
	Allocated string `json:"allocated"`
	Total     string `json:"total"`
	System    string `json:"system"`
}

// ServiceStatus represents the status of a service dependency
type ServiceStatus struct {
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
	Error     string `json:"error,omitempty"`
}

var startTime = time.Now()

// Health endpoint - enhanced for monitoring
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	tesseractStatus := checkCommand(h.config.OCR.TesseractBin, "tesseract", "--version")
	pdftoppmStatus := checkCommand(h.config.OCR.PdftoppmBin, "pdftoppm", "-v")
	databaseStatus := checkDatabase()
	storageStatus := checkStorage()

	response := HealthResponse{
		Status:    "healthy",
		Version:   Version,
		Timestamp: time.Now().Format(time.RFC3339),
		Uptime:    time.Since(startTime).String(),
		Memory: MemoryStats{
			Allocated: fmt.Sprintf("%.2f MB", float64(m.Alloc)/1024/1024),
			Total:     fmt.Sprintf("%.2f MB", float64(m.TotalAlloc)/1024/1024),
			System:    fmt.Sprintf("%.2f MB", float64(m.Sys)/1024/1024),
		},
		Tesseract: tesseractStatus,
		Pdftoppm:  pdftoppmStatus,
		Database:  databaseStatus,
		Storage:   storageStatus,
	}

	// Without the OCR toolchain, scanned documents cannot be processed
	if !tesseractStatus.Available || !pdftoppmStatus.Available {
		response.Status = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	json.NewEncoder(w).Encode(response)
}

// checkCommand verifies an external binary responds to its version flag
func checkCommand(bin, fallback string, versionArg string) ServiceStatus {
	if bin == "" {
		bin = fallback
	}
	cmd := exec.Command(bin, versionArg)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return ServiceStatus{
			Available: false,
			Error:     fmt.Sprintf("%s not found or not executable", bin),
		}
	}

	version := "unknown"
	lines := strings.Split(string(output), "\n")
	if len(lines) > 0 && strings.TrimSpace(lines[0]) != "" {
		version = strings.TrimSpace(lines[0])
	}

	return ServiceStatus{
		Available: true,
		Version:   version,
	}
}

// checkDatabase verifies PostgreSQL connection
func checkDatabase() ServiceStatus {
	if db.Pool == nil {
		return ServiceStatus{
			Available: false,
			Error:     "database pool not initialized",
		}
	}

	return ServiceStatus{
		Available: true,
		Version:   "PostgreSQL",
	}
}

// checkStorage verifies MinIO connection
func checkStorage() ServiceStatus {
	if storage.Client == nil {
		return ServiceStatus{
			Available: false,
			Error:     "storage client not initialized",
		}
	}

	return ServiceStatus{
		Available: true,
		Version:   "MinIO S3",
	}
}

// ReconcileInvoice processes a submitted invoice document and scores it
// against the claimed values.
func (h *Handler) ReconcileInvoice(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	var req models.ReconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Blob64 == "" {
		h.sendError(w, http.StatusBadRequest, "blob_64 is required")
		return
	}

	// Fill missing expected identifiers from the partner registry
	if req.PartnerID != "" && db.Pool != nil {
		partner, err := db.GetPartner(ctx, req.PartnerID)
		if err != nil {
			h.sendError(w, http.StatusBadRequest, fmt.Sprintf("unknown partner: %v", err))
			return
		}
		if req.CPName == nil && partner.Name != "" {
			req.CPName = &partner.Name
		}
		if req.PAN == nil && partner.PAN != "" {
			req.PAN = &partner.PAN
		}
		if req.GSTIN == nil && partner.GSTIN != "" {
			req.GSTIN = &partner.GSTIN
		}
	}

	result, err := h.reconciler.Process(ctx, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidPayload):
			h.sendError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrExtractionFailed):
			h.sendError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			h.sendError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(result)
}

// sendError sends an error response
func (h *Handler) sendError(w http.ResponseWriter, statusCode int, message string) {
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}
