package web

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/JonMunkholm/ShuffleRoster/internal/core"
)

// StateResponse is the JSON view of a session.
type StateResponse struct {
	File         string             `json:"file,omitempty"`
	Students     int                `json:"students"`
	Status       string             `json:"status,omitempty"`
	GroupSize    int                `json:"group_size"`
	MaxGroupSize int                `json:"max_group_size"`
	Shuffle      bool               `json:"shuffle"`
	Format       core.Format        `json:"format"`
	Grouped      bool               `json:"grouped"`
	Groups       int                `json:"groups"`
	Grid         core.Grid          `json:"grid"`
	Notice       *core.Notification `json:"notice,omitempty"`
}

// GroupRequest is the body of POST /api/groups. Shuffle defaults to the
// session's current setting. The size range depends on the roster and is
// checked by the grouping itself.
type GroupRequest struct {
	GroupSize *int  `json:"group_size" validate:"required"`
	Shuffle   *bool `json:"shuffle,omitempty"`
}

// FormatRequest is the body of POST /api/format.
type FormatRequest struct {
	Format string `json:"format" validate:"required,export_format"`
}

func stateOf(sess *core.Session) StateResponse {
	return StateResponse{
		File:         sess.FileName,
		Students:     sess.Data.Len(),
		Status:       sess.Status,
		GroupSize:    sess.GroupSize,
		MaxGroupSize: sess.MaxGroupSize,
		Shuffle:      sess.Shuffle,
		Format:       sess.Format,
		Grouped:      sess.Grouped != nil,
		Groups:       sess.Grouped.GroupCount(),
		Grid:         sess.View(),
	}
}

// respondState writes the session state with an optional success notice.
func (s *Server) respondState(w http.ResponseWriter, r *http.Request, msg string) {
	var state StateResponse
	err := s.service.With(sessionID(r.Context()), func(sess *core.Session) error {
		state = stateOf(sess)
		return nil
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if msg != "" {
		n := s.withTTL(core.Success(msg))
		state.Notice = &n
	}
	render.JSON(w, r, state)
}

// handleAPIState returns the session state.
func (s *Server) handleAPIState(w http.ResponseWriter, r *http.Request) {
	s.respondState(w, r, "")
}

// handleAPILoadFile loads a multipart "file" upload.
func (s *Server) handleAPILoadFile(w http.ResponseWriter, r *http.Request) {
	err := s.loadUpload(w, r)
	if errors.Is(err, errNoFileSelected) {
		s.respondInvalid(w, r, &ValidationError{Fields: map[string]string{"file": "is required"}})
		return
	}
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondState(w, r, "")
}

// handleAPIClear drops the loaded roster.
func (s *Server) handleAPIClear(w http.ResponseWriter, r *http.Request) {
	err := s.service.With(sessionID(r.Context()), func(sess *core.Session) error {
		sess.Clear()
		return nil
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondState(w, r, core.MsgFileCleared)
}

// handleAPICreateGroups groups the loaded roster.
func (s *Server) handleAPICreateGroups(w http.ResponseWriter, r *http.Request) {
	var req GroupRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		s.respondInvalid(w, r, err)
		return
	}
	if err := s.validateStruct(req); err != nil {
		s.respondInvalid(w, r, err)
		return
	}

	if err := s.createGroups(r, *req.GroupSize, req.Shuffle); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondState(w, r, core.MsgGroupsCreated)
}

// handleAPISelectFormat changes the export format.
func (s *Server) handleAPISelectFormat(w http.ResponseWriter, r *http.Request) {
	var req FormatRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		s.respondInvalid(w, r, err)
		return
	}
	if err := s.validateStruct(req); err != nil {
		s.respondInvalid(w, r, err)
		return
	}

	format, err := core.ParseFormat(req.Format)
	if err == nil {
		err = s.selectFormat(r, format)
	}
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondState(w, r, core.FormatChangedMessage(format))
}

// respondInvalid writes a 400 for malformed or invalid request bodies.
func (s *Server) respondInvalid(w http.ResponseWriter, r *http.Request, err error) {
	logError(r, err, http.StatusBadRequest, "REQ000")

	resp := ErrorResponse{
		Error:   "Invalid request",
		Message: "Invalid request",
		Action:  "Check the request body and try again",
		Code:    "REQ000",
		Level:   core.LevelError,
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		resp.Fields = verr.Fields
	}

	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, resp)
}
