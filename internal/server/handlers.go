package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Sumatoshi-tech/sharechart/internal/controller"
	"github.com/Sumatoshi-tech/sharechart/pkg/summary"
	"github.com/Sumatoshi-tech/sharechart/pkg/uistate"
)

// Request validation errors. They map to 400.
var (
	ErrMissingCountry = errors.New("country is required")
	ErrInvalidYear    = errors.New("year must be positive")
	ErrInvalidBody    = errors.New("invalid request body")
	ErrInvalidIndex   = errors.New("index out of range")
)

// CountryRequest is the body of POST /country.
type CountryRequest struct {
	Country string `json:"country"`
}

// YearRequest is the body of POST /year/drag.
type YearRequest struct {
	Year int `json:"year"`
}

// StateResponse is returned by every transition.
type StateResponse struct {
	Mode      string          `json:"mode"`
	Theme     string          `json:"theme"`
	Country   string          `json:"country"`
	Year      int             `json:"year"`
	ModeLabel string          `json:"modeLabel"`
	Source    string          `json:"source"`
	Summary   summary.Summary `json:"summary"`
	Toast     string          `json:"toast,omitempty"`
}

func stateResponse(f controller.Frame) StateResponse {
	resp := StateResponse{
		Mode:      string(f.State.Mode),
		Theme:     string(f.State.Theme),
		Country:   f.State.Country,
		Year:      f.State.Year,
		ModeLabel: f.ModeLabel,
		Source:    f.SourceLabel,
		Summary:   f.Summary,
	}

	if f.Toast != nil {
		resp.Toast = f.Toast.Message
	}

	return resp
}

func (s *Server) handleMode(rw http.ResponseWriter, hr *http.Request) {
	mode, err := uistate.ParseMode(hr.PathValue("mode"))
	if err != nil {
		s.writeError(rw, hr, http.StatusBadRequest, err)

		return
	}

	frame, err := s.ctrl.SetMode(hr.Context(), mode)
	if err != nil {
		s.writeError(rw, hr, http.StatusInternalServerError, err)

		return
	}

	s.writeJSON(rw, hr, http.StatusOK, stateResponse(frame))
}

func (s *Server) handleCountry(rw http.ResponseWriter, hr *http.Request) {
	var req CountryRequest

	err := decodeBody(rw, hr, &req)
	if err != nil {
		s.writeError(rw, hr, http.StatusBadRequest, err)

		return
	}

	if req.Country == "" {
		s.writeError(rw, hr, http.StatusBadRequest, ErrMissingCountry)

		return
	}

	frame, err := s.ctrl.SetCountry(hr.Context(), req.Country)
	if err != nil {
		s.writeError(rw, hr, http.StatusInternalServerError, err)

		return
	}

	s.writeJSON(rw, hr, http.StatusOK, stateResponse(frame))
}

func (s *Server) handleYearDrag(rw http.ResponseWriter, hr *http.Request) {
	var req YearRequest

	err := decodeBody(rw, hr, &req)
	if err != nil {
		s.writeError(rw, hr, http.StatusBadRequest, err)

		return
	}

	if req.Year <= 0 {
		s.writeError(rw, hr, http.StatusBadRequest, fmt.Errorf("%w: %d", ErrInvalidYear, req.Year))

		return
	}

	s.ctrl.DragYear(req.Year)

	s.writeJSON(rw, hr, http.StatusOK, stateResponse(s.ctrl.Describe()))
}

func (s *Server) handleYearCommit(rw http.ResponseWriter, hr *http.Request) {
	frame, err := s.ctrl.CommitYear(hr.Context())
	if err != nil {
		s.writeError(rw, hr, http.StatusInternalServerError, err)

		return
	}

	s.writeJSON(rw, hr, http.StatusOK, stateResponse(frame))
}

func (s *Server) handleThemeToggle(rw http.ResponseWriter, hr *http.Request) {
	theme := s.ctrl.ToggleTheme(hr.Context())

	s.writeJSON(rw, hr, http.StatusOK, map[string]string{"theme": string(theme)})
}

func (s *Server) handleTeardown(rw http.ResponseWriter, hr *http.Request) {
	err := s.ctrl.Teardown(hr.Context())
	if err != nil {
		s.writeError(rw, hr, http.StatusInternalServerError, err)

		return
	}

	rw.WriteHeader(http.StatusNoContent)
}

func decodeBody(rw http.ResponseWriter, hr *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(rw, hr.Body, maxBodyBytes))

	err := dec.Decode(dst)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidBody, err)
	}

	return nil
}

// writeJSON encodes value as the response body.
func (s *Server) writeJSON(rw http.ResponseWriter, hr *http.Request, status int, value any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)

	encodeErr := json.NewEncoder(rw).Encode(value)
	if encodeErr != nil {
		s.logger.ErrorContext(hr.Context(), "failed to encode JSON response", "error", encodeErr)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError answers with a JSON error. Server errors are logged and their
// detail is not exposed.
func (s *Server) writeError(rw http.ResponseWriter, hr *http.Request, status int, err error) {
	msg := err.Error()

	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(hr.Context(), "request failed",
			"method", hr.Method, "path", hr.URL.Path, "error", err)

		msg = http.StatusText(status)
	}

	s.writeJSON(rw, hr, status, errorResponse{Error: msg})
}
