package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/reconflow/invoice-recon-service/api"
	"github.com/reconflow/invoice-recon-service/internal/auth"
	"github.com/reconflow/invoice-recon-service/internal/db"
	"github.com/reconflow/invoice-recon-service/internal/extract"
	"github.com/reconflow/invoice-recon-service/internal/fields"
	"github.com/reconflow/invoice-recon-service/internal/models"
	"github.com/reconflow/invoice-recon-service/internal/ocr"
	"github.com/reconflow/invoice-recon-service/internal/scoring"
	"github.com/reconflow/invoice-recon-service/internal/services"
	"github.com/reconflow/invoice-recon-service/internal/storage"
)

func main() {
	// Load .env if present; real env vars win
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	// Initialize JWT
	if err := auth.Init(); err != nil {
		log.Fatalf("Failed to initialize auth: %v", err)
	}
	log.Println("JWT authentication initialized")

	// Initialize database connection pool
	if err := db.Init(); err != nil {
		log.Printf("Warning: Database not available: %v", err)
		log.Println("Running without partner registry and login")
	} else {
		defer db.Close()
		log.Println("Database connection pool initialized")
	}

	// Initialize MinIO storage
	if err := storage.Init(); err != nil {
		log.Printf("Warning: MinIO storage not available: %v", err)
		log.Println("Submitted documents will not be archived")
	} else {
		log.Println("MinIO storage initialized")
	}

	// Load configuration
	config, err := loadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Assemble the reconciliation pipeline
	ocrEngine := ocr.NewEngine(ocr.Config{
		DPI:          config.OCR.DPI,
		Language:     config.OCR.Language,
		MaxPages:     config.OCR.MaxPages,
		TesseractBin: config.OCR.TesseractBin,
		PdftoppmBin:  config.OCR.PdftoppmBin,
	})
	textExtractor := extract.New(ocrEngine, config.OCR.ScannedTextThreshold)

	fieldExtractor, err := fields.NewExtractor(config.Extraction.Patterns)
	if err != nil {
		log.Fatalf("Failed to compile extraction patterns: %v", err)
	}

	engine := scoring.NewEngine(scoring.PolicyFromConfig(config.Scoring))

	reconciler, err := services.NewReconciler(textExtractor, fieldExtractor, engine, config.InputDir)
	if err != nil {
		log.Fatalf("Failed to create reconciler: %v", err)
	}

	// Create API handler
	handler := api.NewHandler(config, reconciler)
	router := handler.SetupRoutes()

	// Add login endpoint
	router.HandleFunc("/api/login", auth.LoginHandler).Methods("POST")

	// Wrap router with JWT middleware (skips /health and /api/login)
	protectedRouter := auth.JWTMiddleware(router)

	// Start server
	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)
	log.Printf("Starting Invoice Reconciliation Service v%s on %s", api.Version, addr)
	log.Printf("OCR DPI: %d, scanned-text threshold: %d", config.OCR.DPI, config.OCR.ScannedTextThreshold)
	log.Printf("Database: %v", db.Pool != nil)
	log.Printf("Storage: %v", storage.Client != nil)
	log.Printf("Endpoints:")
	log.Printf("  POST http://%s/api/login              - Authenticate", addr)
	log.Printf("  POST http://%s/api/reconcile-invoice  - Reconcile invoice (requires JWT)", addr)
	log.Printf("  GET  http://%s/api/partners           - List channel partners (requires JWT)", addr)
	log.Printf("  GET  http://%s/api/partners/{id}      - Get channel partner (requires JWT)", addr)
	log.Printf("  GET  http://%s/api/documents/{path}   - Archived document URL (requires JWT)", addr)
	log.Printf("  GET  http://%s/health                 - Health check", addr)

	if err := http.ListenAndServe(addr, protectedRouter); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func loadConfig(path string) (*models.Config, error) {
	config := &models.Config{
		Host: "0.0.0.0",
		Port: 8080,
	}

	// The config file is optional; compiled-in defaults cover everything
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Override with environment variables if present
	if port := os.Getenv("PORT"); port != "" {
		fmt.Sscanf(port, "%d", &config.Port)
	}
	if host := os.Getenv("HOST"); host != "" {
		config.Host = host
	}
	if dir := os.Getenv("INPUT_DIR"); dir != "" {
		config.InputDir = dir
	}
	if dpi := os.Getenv("OCR_DPI"); dpi != "" {
		fmt.Sscanf(dpi, "%d", &config.OCR.DPI)
	}
	if threshold := os.Getenv("SCANNED_TEXT_THRESHOLD"); threshold != "" {
		fmt.Sscanf(threshold, "%d", &config.OCR.ScannedTextThreshold)
	}
	if lang := os.Getenv("OCR_LANGUAGE"); lang != "" {
		config.OCR.Language = lang
	}

	return config, nil
}
