package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

type errorResponse struct {
	Error    string            `json:"error"`
	Kind     string            `json:"kind,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`
	Attempts []attemptResponse `json:"attempts,omitempty"`
}

type attemptResponse struct {
	Provider string `json:"provider"`
	Kind     string `json:"kind"`
	Message  string `json:"message"`
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.ErrorContext(r.Context(), "Failed to encode response",
			"error", err,
			"path", r.URL.Path,
			"status", status)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, kind string, message string) {
	s.writeJSON(w, r, status, errorResponse{Error: message, Kind: kind})
}

func (s *Server) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) (map[string]string, error) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}

	if err := s.validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return validationFields(validationErrors), nil
		}

		return nil, fmt.Errorf("validate body: %w", err)
	}

	return nil, nil
}

func validationFields(errs validator.ValidationErrors) map[string]string {
	fields := make(map[string]string, len(errs))

	for _, err := range errs {
		field := err.Field()

		switch err.Tag() {
		case "required", "required_without":
			fields[field] = field + " is required"
		case "url":
			fields[field] = field + " must be a valid URL (including http:// or https://)"
		case "min":
			fields[field] = fmt.Sprintf("%s must be at least %s characters", field, err.Param())
		case "max":
			fields[field] = fmt.Sprintf("%s must be at most %s characters", field, err.Param())
		case "oneof":
			fields[field] = fmt.Sprintf("%s must be one of: %s", field, err.Param())
		default:
			fields[field] = fmt.Sprintf("%s validation failed on '%s' tag", field, err.Tag())
		}
	}

	return fields
}
