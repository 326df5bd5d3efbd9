package chatcore

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// BusinessesResponse lists the loaded business types and their categories.
type BusinessesResponse struct {
	Businesses []BusinessInfo `json:"businesses"`
}

// BusinessInfo describes one loaded business type.
type BusinessInfo struct {
	Type       string   `json:"type"`
	Categories []string `json:"categories,omitempty"`
}

// ErrorResponse is the HTTP error response body.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// NewHTTPHandler returns the HTTP surface of a Core: resolution, feedback,
// health, and business listing.
func NewHTTPHandler(core *Core) http.Handler {
	cfg := core.cfg
	logger := cfg.Logger

	r := chi.NewRouter()

	// Middleware stack
	r.Use(withRequestID)
	r.Use(withRecovery(logger))
	r.Use(withAccessLog(logger))
	r.Use(chimiddleware.RealIP)
	r.Use(withTimeout(cfg.RequestTimeout))
	r.Use(withBodyLimit(cfg.MaxRequestBodySize))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Routes
	r.Get("/health", newHealthHandler())
	r.Get("/businesses", newBusinessesHandler(core))
	r.Post("/resolve", newResolveHandler(core, cfg.MaxMessageLength, logger))
	r.Post("/feedback", newFeedbackHandler(core, logger))

	return r
}

// newHealthHandler returns a handler for health check requests.
func newHealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
	}
}

// newBusinessesHandler returns a handler listing loaded business types.
func newBusinessesHandler(core *Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		types := core.BusinessTypes()
		businesses := make([]BusinessInfo, 0, len(types))
		for _, t := range types {
			businesses = append(businesses, BusinessInfo{
				Type:       t,
				Categories: core.Categories(t),
			})
		}
		respondJSON(w, http.StatusOK, BusinessesResponse{Businesses: businesses})
	}
}

// newResolveHandler returns a handler for POST /resolve requests.
func newResolveHandler(core *Core, maxMessageLength int, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body", ErrCodeValidation)
			return
		}

		if req.Query == "" {
			respondError(w, http.StatusBadRequest, "Query cannot be empty", ErrCodeValidation)
			return
		}
		// MaxMessageLength is a character limit, so count runes rather than
		// bytes; Czech queries are routinely multi-byte in UTF-8.
		if utf8.RuneCountInString(req.Query) > maxMessageLength {
			respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Query exceeds maximum length of %d characters", maxMessageLength),
				ErrCodeValidation)
			return
		}

		resolved, err := core.Resolve(r.Context(), req)
		if err != nil {
			if errors.Is(err, ErrConversationNotFound) {
				respondError(w, http.StatusNotFound, "Conversation not found", ErrCodeNotFound)
				return
			}
			logger.Error("failed to resolve query",
				"request_id", getRequestID(r.Context()),
				"error", err,
			)
			respondError(w, http.StatusInternalServerError,
				"An error occurred while processing your message", ErrCodeInternal)
			return
		}

		respondJSON(w, http.StatusOK, resolved)
	}
}

// newFeedbackHandler returns a handler for POST /feedback requests.
func newFeedbackHandler(core *Core, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var fb Feedback
		if err := json.NewDecoder(r.Body).Decode(&fb); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body", ErrCodeValidation)
			return
		}
		if fb.MessageID == "" {
			respondError(w, http.StatusBadRequest, "messageId is required", ErrCodeValidation)
			return
		}

		if err := core.AddFeedback(r.Context(), fb); err != nil {
			logger.Error("failed to record feedback", "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to record feedback", ErrCodeInternal)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message, code string) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}
