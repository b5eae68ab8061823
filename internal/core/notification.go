package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Level classifies a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// DefaultNotificationTTL is how long a notification stays on screen.
const DefaultNotificationTTL = 3 * time.Second

// Notification is a short-lived status message for the user.
type Notification struct {
	Level   Level         `json:"level"`
	Message string        `json:"message"`
	Code    string        `json:"code,omitempty"`
	TTL     time.Duration `json:"-"`
}

// Success returns a success notification.
func Success(msg string) Notification {
	return Notification{Level: LevelSuccess, Message: msg, TTL: DefaultNotificationTTL}
}

// NotificationFor turns an error into the notification shown to the user.
// Acting before loading a file or before grouping is a warning; anything
// else is an error.
func NotificationFor(err error) Notification {
	um := MapError(err)
	n := Notification{
		Level:   LevelError,
		Message: um.Message,
		Code:    um.Code,
		TTL:     DefaultNotificationTTL,
	}

	var sizeErr *GroupSizeError
	switch {
	case errors.Is(err, ErrNoDataLoaded), errors.Is(err, ErrNoDataToExport):
		n.Level = LevelWarning
	case errors.As(err, &sizeErr):
		n.Message = fmt.Sprintf("Group size must be between 1 and %d", sizeErr.Max)
	case errors.Is(err, ErrFileRead) && !errors.Is(err, ErrFileTooLarge):
		if cause := readFailureCause(err); cause != "" {
			n.Message += ": " + cause
		}
	}
	return n
}

// readFailureCause returns the text after "error reading file: ".
func readFailureCause(err error) string {
	_, cause, ok := strings.Cut(err.Error(), ErrFileRead.Error()+": ")
	if !ok {
		return ""
	}
	return cause
}

// Success messages.
const (
	MsgFileCleared   = "File cleared successfully!"
	MsgGroupsCreated = "Groups created successfully!"
)

// FormatChangedMessage is shown after picking an export format.
func FormatChangedMessage(f Format) string {
	return "Format changed to " + strings.ToUpper(string(f))
}

// SavedMessage is shown after a successful export.
func SavedMessage(f Format) string {
	switch f {
	case FormatXLSX, FormatXLS:
		return "Excel file downloaded successfully!"
	default:
		return strings.ToUpper(string(f)) + " file downloaded successfully!"
	}
}
