package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"storefront-workers/internal/common/database"
	"storefront-workers/internal/common/errors"
)

type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *apiError   `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("failed to encode response", map[string]interface{}{"error": err})
	}
}

// respondError writes err as an envelope, choosing the status from its code.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	stdErr := errors.AsStandardError(err)
	status := errors.HTTPStatus(stdErr.Code)

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", map[string]interface{}{
			"errorCode": stdErr.Code,
			"error":     err,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Error: &apiError{
			Code:    string(stdErr.Code),
			Message: stdErr.Message,
			Details: stdErr.Details,
		},
	}
	if encErr := json.NewEncoder(w).Encode(resp); encErr != nil {
		s.logger.Error("failed to encode error response", map[string]interface{}{"error": encErr})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	failures := database.CheckAll(r.Context(), 2*time.Second, s.stores...)
	if s.source == nil {
		failures["snapshot"] = fmt.Errorf("no snapshot source configured")
	}

	if len(failures) > 0 {
		checks := make(map[string]string, len(failures))
		for name, err := range failures {
			checks[name] = err.Error()
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(apiResponse{
			Data:  map[string]interface{}{"status": "not_ready", "checks": checks},
			Error: &apiError{Code: "NOT_READY", Message: "backing stores unreachable"},
		})
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
