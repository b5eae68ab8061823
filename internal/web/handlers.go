package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/ShuffleRoster/internal/core"
	"github.com/JonMunkholm/ShuffleRoster/internal/logging"
	"github.com/JonMunkholm/ShuffleRoster/internal/web/templates"
)

// errNoFileSelected means the upload form was sent without a file.
var errNoFileSelected = errors.New("no file selected")

// multipartOverhead is the allowance for form boundaries and headers on
// top of the file size limit.
const multipartOverhead = 1 << 20

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, "ok")
}

// handleIndex renders the roster page and consumes the pending notification.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var params templates.PageParams
	err := s.service.With(sessionID(r.Context()), func(sess *core.Session) error {
		params = pageParams(sess, sess.TakeFlash())
		return nil
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := templates.Page(params).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render page", "error", err)
	}
}

// handleLoadFile reads the uploaded roster into the session. Submitting
// without a file changes nothing.
func (s *Server) handleLoadFile(w http.ResponseWriter, r *http.Request) {
	err := s.loadUpload(w, r)
	if errors.Is(err, errNoFileSelected) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.finish(w, r, err, nil)
}

// handleClear drops the loaded roster.
func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	err := s.service.With(sessionID(r.Context()), func(sess *core.Session) error {
		sess.Clear()
		return nil
	})
	s.finish(w, r, err, notice(core.MsgFileCleared))
}

// handleCreateGroups groups the loaded roster. A group size that is not a
// number is treated as out of range.
func (s *Server) handleCreateGroups(w http.ResponseWriter, r *http.Request) {
	size, convErr := strconv.Atoi(r.FormValue("group_size"))
	if convErr != nil {
		size = 0
	}
	shuffle := r.FormValue("shuffle") == "true"

	err := s.createGroups(r, size, &shuffle)
	s.finish(w, r, err, notice(core.MsgGroupsCreated))
}

// handleStepGroupSize moves the group size by the "delta" field, kept
// within the roster's bound.
func (s *Server) handleStepGroupSize(w http.ResponseWriter, r *http.Request) {
	delta, err := strconv.Atoi(r.FormValue("delta"))
	if err != nil {
		delta = 0
	}

	err = s.service.With(sessionID(r.Context()), func(sess *core.Session) error {
		sess.StepGroupSize(delta)
		return nil
	})
	s.finish(w, r, err, nil)
}

// handleSelectFormat changes the export format.
func (s *Server) handleSelectFormat(w http.ResponseWriter, r *http.Request) {
	format := core.Format(r.FormValue("format"))
	err := s.selectFormat(r, format)
	s.finish(w, r, err, func(sess *core.Session) string {
		return core.FormatChangedMessage(sess.Format)
	})
}

// handleExport downloads the grouped roster in the session's format. The
// success message travels in X-Roster-Notice for the page script.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var exp *core.Export
	var format core.Format
	err := s.service.With(sessionID(r.Context()), func(sess *core.Session) error {
		format = sess.Format
		var err error
		exp, err = sess.Save(s.now())
		return err
	})
	s.metrics.observeExport(format, err)
	if err != nil {
		if wantsJSON(r) {
			s.respondError(w, r, err)
			return
		}
		s.finish(w, r, err, nil)
		return
	}

	logging.FromContext(r.Context()).Info("roster exported",
		"session", sessionID(r.Context()),
		"format", format,
		"file", exp.Filename,
		"bytes", len(exp.Data),
	)

	w.Header().Set("Content-Type", exp.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exp.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(exp.Data)))
	w.Header().Set("X-Roster-Notice", core.SavedMessage(format))
	w.Write(exp.Data)
}

// loadUpload parses the multipart "file" field into the session.
func (s *Server) loadUpload(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize+multipartOverhead)

	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return errNoFileSelected
		}
		return fmt.Errorf("read upload: %w", err)
	}
	defer file.Close()
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	id := sessionID(r.Context())
	log := logging.WithFields(r.Context(), "session", id, "file", header.Filename)
	err = s.service.Load(r.Context(), id, header.Filename, file)

	students := 0
	if err == nil {
		s.service.With(id, func(sess *core.Session) error {
			students = sess.Data.Len()
			return nil
		})
		log.Info("roster loaded", "students", students)
	}
	s.metrics.observeLoad(header.Filename, students, err)
	return err
}

func (s *Server) createGroups(r *http.Request, size int, shuffle *bool) error {
	var used bool
	err := s.service.With(sessionID(r.Context()), func(sess *core.Session) error {
		used = sess.Shuffle
		if shuffle != nil {
			used = *shuffle
		}
		return sess.CreateGroups(size, used)
	})
	s.metrics.observeGrouping(used, err)
	return err
}

func (s *Server) selectFormat(r *http.Request, format core.Format) error {
	return s.service.With(sessionID(r.Context()), func(sess *core.Session) error {
		return sess.SelectFormat(format)
	})
}

// notice returns a fixed success message.
func notice(msg string) func(*core.Session) string {
	return func(*core.Session) string { return msg }
}

// finish stores the outcome of a page action as the session's flash and
// redirects back to the page (post/redirect/get). success may be nil for
// actions that report nothing on success.
func (s *Server) finish(w http.ResponseWriter, r *http.Request, err error, success func(*core.Session) string) {
	if errors.Is(err, core.ErrSessionNotFound) {
		s.respondError(w, r, err)
		return
	}
	if err != nil {
		logError(r, err, statusFor(err), core.MapError(err).Code)
	}

	s.service.With(sessionID(r.Context()), func(sess *core.Session) error {
		switch {
		case err != nil:
			sess.Notify(s.withTTL(core.NotificationFor(err)))
		case success != nil:
			sess.Notify(s.withTTL(core.Success(success(sess))))
		}
		return nil
	})

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// withTTL applies the configured display time.
func (s *Server) withTTL(n core.Notification) core.Notification {
	n.TTL = s.cfg.Grouping.NotifyTTL
	return n
}

// pageParams projects a session into the page view.
func pageParams(sess *core.Session, flash *core.Notification) templates.PageParams {
	return templates.PageParams{
		FileName:     sess.FileName,
		Status:       sess.Status,
		Loaded:       sess.Loaded(),
		Grouped:      sess.Grouped != nil,
		Groups:       sess.Grouped.GroupCount(),
		GroupSize:    sess.GroupSize,
		MaxGroupSize: sess.MaxGroupSize,
		Shuffle:      sess.Shuffle,
		Format:       sess.Format,
		Formats:      core.Formats,
		Grid:         sess.View(),
		Flash:        flash,
	}
}
