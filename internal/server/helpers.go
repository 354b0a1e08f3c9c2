package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"NiftySignal/internal/collector"
	"NiftySignal/internal/service"
)

// WriteJSON writes a JSON response with the specified status code and data.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteError writes a standard error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, map[string]string{
		"status": "error",
		"error":  message,
	})
}

// statusFor maps service and collector errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, collector.ErrInvalidSymbol):
		return http.StatusBadRequest
	case errors.Is(err, collector.ErrAllSourcesFailed), errors.Is(err, collector.ErrCircuitOpen):
		return http.StatusBadGateway
	case errors.Is(err, collector.ErrNoData):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNoSnapshot):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
