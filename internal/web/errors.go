package web

// errors.go provides unified error response handling for the web layer.
//
// It ensures all errors are:
//   - Logged with full technical details for debugging (server-side)
//   - Returned to clients as user-friendly messages with action suggestions
//   - Formatted as JSON for API and script requests, as a flash
//     notification followed by a redirect for page actions, or as an
//     error page when there is no session to hold a flash
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err)
//  3. Error is mapped via core.NotificationFor to get the user message
//  4. Technical error + context is logged with request ID for correlation
//  5. User message is rendered in the format the client expects

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/JonMunkholm/ShuffleRoster/internal/core"
	"github.com/JonMunkholm/ShuffleRoster/internal/logging"
	"github.com/JonMunkholm/ShuffleRoster/internal/web/templates"
)

var errRateLimited = errors.New("rate limit exceeded")

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Action  string            `json:"action,omitempty"`
	Code    string            `json:"code"`
	Level   core.Level        `json:"level"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// statusFor returns the HTTP status for an error kind.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrUnsupportedExtension):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, core.ErrEmptyInput),
		errors.Is(err, core.ErrFileRead),
		errors.Is(err, core.ErrInvalidGroupSize):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrNoDataLoaded), errors.Is(err, core.ErrNoDataToExport):
		return http.StatusConflict
	case errors.Is(err, core.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrTooManyDecodes):
		return http.StatusServiceUnavailable
	case errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests
	case strings.Contains(err.Error(), "request body too large"):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// respondError handles error responses with user-friendly messages,
// choosing the status from the error kind.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	respondStatus(w, r, err, statusFor(err))
}

// respondStatus logs err and writes the mapped user message with the given
// status: JSON for API clients, an HTML error page otherwise.
func respondStatus(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := core.MapError(err)
	note := core.NotificationFor(err)

	logError(r, err, statusCode, userMsg.Code)

	if !wantsJSON(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(statusCode)
		page := templates.Layout("Student Group Maker", templates.ErrorAlert(note.Message, userMsg.Action, userMsg.Code))
		if err := page.Render(r.Context(), w); err != nil {
			logging.FromContext(r.Context()).Error("render error page", "error", err)
		}
		return
	}

	render.Status(r, statusCode)
	render.JSON(w, r, ErrorResponse{
		Error:   note.Message,
		Message: note.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
		Level:   note.Level,
	})
}

// logError records the technical error. Client mistakes log at warn,
// everything else at error.
func logError(r *http.Request, err error, statusCode int, code string) {
	level := slog.LevelWarn
	if statusCode >= http.StatusInternalServerError && statusCode != http.StatusServiceUnavailable {
		level = slog.LevelError
	}

	logging.FromContext(r.Context()).Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", code,
		"request_id", middleware.GetReqID(r.Context()),
	)
}

// wantsJSON checks if the client prefers JSON response.
func wantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	contentType := r.Header.Get("Content-Type")

	// Check Accept header
	if strings.Contains(accept, "application/json") {
		return true
	}

	// Check if request is sending JSON
	if strings.Contains(contentType, "application/json") {
		return true
	}

	// API routes default to JSON
	return strings.HasPrefix(r.URL.Path, "/api/")
}
