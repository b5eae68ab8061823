package core

import (
	"fmt"
	"io"
	"time"
)

const (
	// DefaultGroupSize is the group size a new session starts with.
	DefaultGroupSize = 4

	// DefaultGroupSizeLimit caps the group size regardless of roster size.
	DefaultGroupSizeLimit = 100
)

// SessionOptions configures a new Session.
type SessionOptions struct {
	GroupSize      int      // initial group size (default 4)
	GroupSizeLimit int      // upper bound for the group size (default 100)
	Format         Format   // initial export format (default xlsx)
	MaxFileSize    int64    // largest accepted file in bytes; 0 = unlimited
	Grouper        *Grouper // nil uses the global random source
}

// Session is the state one user acts on: the loaded roster, the grouped
// roster and the current selections. It is not safe for concurrent use;
// Service serializes access per session.
type Session struct {
	ID           string
	FileName     string
	Data         *Dataset
	Grouped      *Dataset
	Format       Format
	GroupSize    int
	Shuffle      bool
	MaxGroupSize int
	Status       string

	// Flash is the pending notification, consumed by TakeFlash.
	Flash *Notification

	limit       int
	maxFileSize int64
	grouper     *Grouper
}

// NewSession returns an empty session.
func NewSession(opts SessionOptions) *Session {
	if opts.GroupSizeLimit <= 0 {
		opts.GroupSizeLimit = DefaultGroupSizeLimit
	}
	if opts.GroupSize <= 0 {
		opts.GroupSize = DefaultGroupSize
	}
	if opts.Format == "" {
		opts.Format = DefaultFormat
	}
	if opts.Grouper == nil {
		opts.Grouper = NewGrouper(nil)
	}

	return &Session{
		Format:       opts.Format,
		GroupSize:    min(opts.GroupSize, opts.GroupSizeLimit),
		Shuffle:      true,
		MaxGroupSize: opts.GroupSizeLimit,
		limit:        opts.GroupSizeLimit,
		maxFileSize:  opts.MaxFileSize,
		grouper:      opts.Grouper,
	}
}

// Load parses the file and makes it the current roster, discarding any
// groups. On failure the session is left unchanged.
func (s *Session) Load(name string, r io.Reader) error {
	ds, err := ParseFile(name, newSizeLimitedReader(r, s.maxFileSize))
	if err != nil {
		return fmt.Errorf("load %s: %w", name, err)
	}

	s.FileName = name
	s.Data = ds
	s.Grouped = nil
	s.MaxGroupSize = min(s.limit, ds.Len())
	s.GroupSize = clamp(s.GroupSize, 1, s.MaxGroupSize)
	s.Status = fmt.Sprintf("Loaded %d students", ds.Len())
	return nil
}

// Clear drops the loaded and grouped rosters and resets the size bound.
func (s *Session) Clear() {
	s.FileName = ""
	s.Data = nil
	s.Grouped = nil
	s.Status = ""
	s.MaxGroupSize = s.limit
}

// Loaded reports whether a roster is loaded.
func (s *Session) Loaded() bool {
	return s.Data != nil
}

// CreateGroups groups the loaded roster. The size must be within
// 1..MaxGroupSize. On failure the loaded roster and any earlier groups are
// kept.
func (s *Session) CreateGroups(size int, shuffle bool) error {
	if s.Data == nil {
		return ErrNoDataLoaded
	}

	if size > s.MaxGroupSize {
		return &GroupSizeError{Size: size, Max: s.MaxGroupSize}
	}

	grouped, err := s.grouper.Group(s.Data, size, shuffle)
	if err != nil {
		return err
	}

	s.Grouped = grouped
	s.GroupSize = size
	s.Shuffle = shuffle
	s.Status = fmt.Sprintf("Created %d groups", grouped.MaxGroup())
	return nil
}

// StepGroupSize moves the group size by delta, kept within 1..MaxGroupSize.
func (s *Session) StepGroupSize(delta int) int {
	s.GroupSize = clamp(s.GroupSize+delta, 1, s.MaxGroupSize)
	return s.GroupSize
}

// SelectFormat sets the export format.
func (s *Session) SelectFormat(f Format) error {
	parsed, err := ParseFormat(string(f))
	if err != nil {
		return err
	}
	s.Format = parsed
	return nil
}

// Save exports the grouped roster in the selected format.
func (s *Session) Save(now time.Time) (*Export, error) {
	return ExportDataset(s.Grouped, s.Format, now)
}

// View returns the grid to display: the groups if any, else the roster.
func (s *Session) View() Grid {
	if s.Grouped != nil {
		return Render(s.Grouped)
	}
	return Render(s.Data)
}

// Notify sets the pending notification.
func (s *Session) Notify(n Notification) {
	s.Flash = &n
}

// TakeFlash returns and clears the pending notification.
func (s *Session) TakeFlash() *Notification {
	n := s.Flash
	s.Flash = nil
	return n
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
