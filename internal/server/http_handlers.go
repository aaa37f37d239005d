package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"careermatch/internal/ai"
	careermatchErrors "careermatch/internal/errors"
)

// getHealthCheckTimeout returns the configured health check timeout
func (s *Server) getHealthCheckTimeout() time.Duration {
	return s.AppConfig.Observability.HealthCheck.Timeout
}

// healthHandler provides a comprehensive health check endpoint including AI model status
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status":  "healthy",
		"service": "careermatch",
		"version": s.Version,
	}

	// Check AI model availability for both pipeline stages
	aiStatus := s.checkAIModelsHealth()
	response["ai_models"] = aiStatus

	// Check circuit breaker status
	circuitBreakerStatus := s.checkCircuitBreakerHealth()
	response["circuit_breakers"] = circuitBreakerStatus

	// Determine overall health status
	overallHealthy := true
	for _, modelStatus := range aiStatus {
		if modelInfo, ok := modelStatus.(map[string]any); ok {
			if available, exists := modelInfo["available"]; exists {
				if avail, ok := available.(bool); ok && !avail {
					overallHealthy = false
					break
				}
			}
		}
	}

	if !overallHealthy {
		response["status"] = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		log.Printf("Failed to encode health response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// checkAIModelsHealth checks the health of the models backing both pipeline stages
func (s *Server) checkAIModelsHealth() map[string]any {
	// Use configurable health check timeout
	timeout := s.getHealthCheckTimeout()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	aiStatus := make(map[string]any)

	fitConfig := s.AppConfig.GetFitConfig()
	if fitService, err := ai.NewService(&fitConfig, ai.OpFitAnalysis, s.Logger); err == nil {
		aiStatus["fit_analysis"] = fitService.GetModelInfo(ctx)
	} else {
		aiStatus["fit_analysis"] = map[string]any{
			"available": false,
			"error":     fmt.Sprintf("Failed to create fit analysis service: %v", err),
		}
	}

	suggestConfig := s.AppConfig.GetSuggestConfig()
	if suggestService, err := ai.NewService(&suggestConfig, ai.OpSuggestions, s.Logger); err == nil {
		aiStatus["suggestions"] = suggestService.GetModelInfo(ctx)
	} else {
		aiStatus["suggestions"] = map[string]any{
			"available": false,
			"error":     fmt.Sprintf("Failed to create suggestions service: %v", err),
		}
	}

	return aiStatus
}

// checkCircuitBreakerHealth checks the health of circuit breakers for both stages
func (s *Server) checkCircuitBreakerHealth() map[string]any {
	circuitBreakerStatus := make(map[string]any)

	fitConfig := s.AppConfig.GetFitConfig()
	if _, err := ai.NewService(&fitConfig, ai.OpFitAnalysis, s.Logger); err == nil {
		circuitBreakerStatus["fit_analysis"] = map[string]any{
			"available": true,
			"message":   "Circuit breaker integrated with fit analysis service",
		}
	} else {
		circuitBreakerStatus["fit_analysis"] = map[string]any{
			"available": false,
			"error":     fmt.Sprintf("Failed to create fit analysis service: %v", err),
		}
	}

	suggestConfig := s.AppConfig.GetSuggestConfig()
	if _, err := ai.NewService(&suggestConfig, ai.OpSuggestions, s.Logger); err == nil {
		circuitBreakerStatus["suggestions"] = map[string]any{
			"available": true,
			"message":   "Circuit breaker integrated with suggestions service",
		}
	} else {
		circuitBreakerStatus["suggestions"] = map[string]any{
			"available": false,
			"error":     fmt.Sprintf("Failed to create suggestions service: %v", err),
		}
	}

	return circuitBreakerStatus
}

// statsHandler provides server statistics including job counts and rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"service": "careermatch",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
		},
	}

	// Job queue breakdown by status
	jobCounts := make(map[string]int)
	for status, count := range s.Store.CountByStatus() {
		jobCounts[string(status)] = count
	}
	response["jobs"] = jobCounts

	// Add rate limiting stats if enabled
	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{
			"enabled": false,
		}
	}

	// Add configuration info
	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
			"by_api_key":       s.RateLimit.ByAPIKey,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		log.Printf("Failed to encode stats response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// parseJSONRequest parses JSON request body into the provided struct
func parseJSONRequest(r *http.Request, v any) error {
	if r.Header.Get("Content-Type") != "application/json" {
		return fmt.Errorf("content-type must be application/json")
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return fmt.Errorf("request body too large (limit is %d bytes)", maxBytesErr.Limit)
		}
		return fmt.Errorf("failed to read request body: %w", err)
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			log.Printf("Failed to close request body: %v", err)
		}
	}()

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	return nil
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, error, message string, statusCode int) {
	writeErrorWithCode(w, error, "", message, statusCode)
}

// writeErrorWithCode writes an error response carrying a machine-readable code
func writeErrorWithCode(w http.ResponseWriter, error, code, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error:   error,
		Code:    code,
		Message: message,
	}

	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		log.Printf("Failed to encode error response: %v", err)
		http.Error(w, "Failed to encode error response", http.StatusInternalServerError)
	}
}

// writeAppError maps a pipeline error to an HTTP status by its failure kind:
// input errors to 400, contract violations to 502, transport failures to 503.
func writeAppError(w http.ResponseWriter, err error) {
	code := ""
	var appErr *careermatchErrors.AppError
	if errors.As(err, &appErr) {
		code = appErr.Code
	}

	switch careermatchErrors.KindOf(err) {
	case careermatchErrors.KindInputInvalid:
		writeErrorWithCode(w, "Invalid input", code, err.Error(), http.StatusBadRequest)
	case careermatchErrors.KindSchemaViolation:
		writeErrorWithCode(w, "Model output rejected", code, err.Error(), http.StatusBadGateway)
	case careermatchErrors.KindUpstreamUnavailable:
		writeErrorWithCode(w, "Upstream AI service unavailable", code, err.Error(), http.StatusServiceUnavailable)
	default:
		writeErrorWithCode(w, "Internal error", code, err.Error(), http.StatusInternalServerError)
	}
}
