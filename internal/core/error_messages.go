package core

// error_messages.go maps errors to user-facing messages with codes for
// support reference.
//
// Codes are grouped by category:
//
//	FILE001 - File too large        Split the roster or raise UPLOAD_MAX_FILE_SIZE
//	FILE002 - Unsupported format    Select a CSV or Excel file
//	FILE003 - Read failure          Check the file opens in a spreadsheet program
//	FILE004 - Empty file            Select a file with at least one data row
//	GRP001  - Invalid group size    Pick a size between 1 and the roster size
//	GRP002  - No file loaded        Select a file first
//	EXP001  - Nothing to export     Create groups first
//	SES001  - Session expired       Reload the page
//	SYS001  - System busy           Try again in a moment
//	REQ001  - Request cancelled
//	REQ002  - Request timed out
//	RATE001 - Rate limited
//	ERR000  - Anything else; check the logs for the technical error
//
// Sentinel errors are matched with errors.Is in table order, so wrapped
// kinds (a too-large file is also a read failure) must come first. Errors
// from outside this package fall back to case-insensitive substring
// patterns.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorKind struct {
	target error
	msg    UserMessage
}

var errorKinds = []errorKind{
	{
		target: ErrFileTooLarge,
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Split the roster into smaller files",
			Code:    "FILE001",
		},
	},
	{
		target: ErrUnsupportedExtension,
		msg: UserMessage{
			Message: "Please select a CSV or Excel file",
			Action:  "Supported formats are .csv, .xlsx and .xls",
			Code:    "FILE002",
		},
	},
	{
		target: ErrEmptyInput,
		msg: UserMessage{
			Message: "File is empty or has no data",
			Action:  "Select a file with a header row and at least one student",
			Code:    "FILE004",
		},
	},
	{
		target: ErrFileRead,
		msg: UserMessage{
			Message: "Error reading file",
			Action:  "Check that the file opens in a spreadsheet program",
			Code:    "FILE003",
		},
	},
	{
		target: ErrInvalidGroupSize,
		msg: UserMessage{
			Message: "Group size must be between 1 and the number of students",
			Action:  "Choose a smaller group size",
			Code:    "GRP001",
		},
	},
	{
		target: ErrNoDataLoaded,
		msg: UserMessage{
			Message: "Please select a file first",
			Action:  "Load a roster before creating groups",
			Code:    "GRP002",
		},
	},
	{
		target: ErrNoDataToExport,
		msg: UserMessage{
			Message: "Please create groups first",
			Action:  "Create groups before saving",
			Code:    "EXP001",
		},
	},
	{
		target: ErrSessionNotFound,
		msg: UserMessage{
			Message: "Your session has expired",
			Action:  "Reload the page and load the file again",
			Code:    "SES001",
		},
	},
	{
		target: ErrTooManyDecodes,
		msg: UserMessage{
			Message: "System is busy reading other files",
			Action:  "Please wait a moment and try again",
			Code:    "SYS001",
		},
	},
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "REQ002",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Split the roster into smaller files",
			Code:    "FILE001",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again",
	Code:    "ERR000",
}

// MapError converts an error to a user-friendly message.
//
// Example:
//
//	msg := MapError(fmt.Errorf("load roster: %w", ErrEmptyInput))
//	// msg.Code == "FILE004"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, k := range errorKinds {
		if errors.Is(err, k.target) {
			return k.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// IsUserFacing reports whether err maps to a specific message rather than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// GroupSizeError reports a group size outside 1..Max.
type GroupSizeError struct {
	Size int
	Max  int
}

func (e *GroupSizeError) Error() string {
	return fmt.Sprintf("%v %d: must be between 1 and %d", ErrInvalidGroupSize, e.Size, e.Max)
}

// Is makes errors.Is(err, ErrInvalidGroupSize) match.
func (e *GroupSizeError) Is(target error) bool {
	return target == ErrInvalidGroupSize
}
