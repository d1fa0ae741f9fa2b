// Package core orchestrates start-list imports, result processing and
// schedule generation.
//
// # Error Codes Reference
//
// This file defines user-facing error messages with codes for support
// reference. Officials quote the code when an import or submission fails.
//
// Error codes are grouped by category:
//
// # Encoding (ENC001)
//
//	ENC001 - Encoding ambiguous: file decoded with replacement characters
//	         Action: Save the file as UTF-8 and import again
//	         Informational; never fails an import
//
// # Row Errors (ROW001-ROW099)
//
//	ROW001 - Malformed row: unexpected number of columns
//	         Action: Check the row for stray delimiters
//	         Sentinel: rows.ErrColumnCount
//
//	ROW002 - Required field empty
//	         Action: Fill in the athlete name, event and result columns
//	         Sentinel: rows.ErrMissingField
//
//	ROW003 - Required column missing from the header
//	         Action: Check the header row against the import template
//	         Sentinel: rows.ErrMissingColumn
//
//	ROW004 - Unknown event: the row names an event the competition lacks
//	         Action: Create the event or correct the event column
//	         Sentinel: reconcile.ErrUnknownEvent
//
// # Reconciliation (REC001-REC099)
//
//	REC001 - Athlete not found and creation disabled
//	         Action: Enable athlete creation or add the athlete first
//	         Sentinel: reconcile.ErrUnmatched
//
//	REC002 - Several athletes match the row
//	         Action: Add the license number to the row
//	         Sentinel: reconcile.ErrAmbiguous
//
//	REC003 - No registration for the result row
//	         Action: Import the start list before the results
//	         Sentinel: ErrNotRegistered
//
// # Marks (MARK001)
//
//	MARK001 - Malformed mark
//	          Action: Use M:SS.cc, SS.cc or a distance such as 7.45
//	          Sentinels: results.ErrMalformedMark, reconcile.ErrMalformedMark, mark.ErrMalformed
//
// # Duplicates (DUP001)
//
//	DUP001 - Record already exists; nothing was changed
//	         Sentinel: store.ErrConflict, Patterns: "duplicate key"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - Empty file: no header line
//	          Sentinel: rows.ErrEmptyInput
//
//	FILE002 - File too large
//	          Sentinel: ErrFileTooLarge
//
// # Import Errors (IMP001-IMP099)
//
//	IMP001 - System busy: too many imports in progress
//	         Sentinel: ErrTooManyImports
//
// # Schedule Errors (SCH001-SCH099)
//
//	SCH001 - Invalid schedule input (no events, bad start)
//	         Sentinels: schedule.ErrNoEvents, schedule.ErrInvalidStart
//
//	SCH002 - Event listed twice or not part of the competition
//	         Sentinels: schedule.ErrDuplicateEvent, ErrForeignEvent
//
//	SCH003 - Schedule already published
//	         Sentinel: model.ErrInvalidTransition
//
// # Relay Errors (RLY001-RLY099)
//
//	RLY001 - Relay position taken or invalid
//	         Sentinels: model.ErrSlotTaken, model.ErrInvalidPosition, model.ErrAlreadyInTeam
//
// # Database Errors (DB004-DB007)
//
//	DB004 - Connection refused      Patterns: "connection refused"
//	DB005 - Connection reset        Patterns: "connection reset"
//	DB006 - Timeout                 Patterns: "timeout", "context deadline exceeded"
//	DB007 - Deadlock                Patterns: "deadlock"
//
// # Validation (VAL001)
//
//	VAL001 - Request field missing or out of range
//	         Sentinel: ErrInvalidInput
//
// # Not Found (NF001)
//
//	NF001 - Record not found
//	        Sentinel: store.ErrNotFound
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// # Matching
//
// Sentinels are checked first with errors.Is in table order. Errors that
// carry no sentinel (driver errors) fall back to case-insensitive
// strings.Contains patterns; the first match wins.
package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/athletix/internal/mark"
	"github.com/JonMunkholm/athletix/internal/model"
	"github.com/JonMunkholm/athletix/internal/reconcile"
	"github.com/JonMunkholm/athletix/internal/results"
	"github.com/JonMunkholm/athletix/internal/rows"
	"github.com/JonMunkholm/athletix/internal/schedule"
	"github.com/JonMunkholm/athletix/internal/store"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Support reference
}

// MessageEncodingAmbiguous is attached to imports whose bytes decoded only
// with replacement characters.
var MessageEncodingAmbiguous = UserMessage{
	Message: "The file encoding could not be detected reliably; some characters were replaced",
	Action:  "Save the file as UTF-8 and import again",
	Code:    "ENC001",
}

type sentinelMessage struct {
	errs []error
	msg  UserMessage
}

var (
	msgMalformedMark = UserMessage{
		Message: "The mark is not valid for this event",
		Action:  "Use M:SS.cc, SS.cc or a distance such as 7.45",
		Code:    "MARK001",
	}
	msgDuplicate = UserMessage{
		Message: "The record already exists; nothing was changed",
		Action:  "No action needed",
		Code:    "DUP001",
	}
)

// sentinelMessages is checked before errorPatterns. Order matters where an
// error wraps several sentinels: the first listed wins.
var sentinelMessages = []sentinelMessage{
	{
		errs: []error{rows.ErrEmptyInput},
		msg: UserMessage{
			Message: "The file is empty",
			Action:  "Upload a file with a header line and data rows",
			Code:    "FILE001",
		},
	},
	{
		errs: []error{ErrFileTooLarge},
		msg: UserMessage{
			Message: "File exceeds the maximum size limit",
			Action:  "Split the file into smaller parts",
			Code:    "FILE002",
		},
	},
	{
		errs: []error{ErrTooManyImports},
		msg: UserMessage{
			Message: "System is busy processing other imports",
			Action:  "Please wait a moment and try again",
			Code:    "IMP001",
		},
	},
	{
		errs: []error{rows.ErrColumnCount},
		msg: UserMessage{
			Message: "The row has an unexpected number of columns",
			Action:  "Check the row for stray delimiters",
			Code:    "ROW001",
		},
	},
	{
		errs: []error{rows.ErrMissingField},
		msg: UserMessage{
			Message: "A required field is empty",
			Action:  "Fill in the athlete name, event and result columns",
			Code:    "ROW002",
		},
	},
	{
		errs: []error{rows.ErrMissingColumn},
		msg: UserMessage{
			Message: "A required column is missing from the header",
			Action:  "Check the header row against the import template",
			Code:    "ROW003",
		},
	},
	{
		errs: []error{reconcile.ErrUnknownEvent},
		msg: UserMessage{
			Message: "The event is not part of this competition",
			Action:  "Create the event or correct the event column",
			Code:    "ROW004",
		},
	},
	{
		errs: []error{reconcile.ErrUnmatched},
		msg: UserMessage{
			Message: "Athlete not found and creation is disabled",
			Action:  "Enable athlete creation or add the athlete first",
			Code:    "REC001",
		},
	},
	{
		errs: []error{reconcile.ErrAmbiguous},
		msg: UserMessage{
			Message: "Several athletes match this row",
			Action:  "Add the license number to the row",
			Code:    "REC002",
		},
	},
	{
		errs: []error{ErrNotRegistered},
		msg: UserMessage{
			Message: "The athlete is not registered for this event",
			Action:  "Import the start list before the results",
			Code:    "REC003",
		},
	},
	{
		errs: []error{results.ErrMalformedMark, reconcile.ErrMalformedMark, mark.ErrMalformed},
		msg:  msgMalformedMark,
	},
	{
		errs: []error{results.ErrMissingCompetitor},
		msg: UserMessage{
			Message: "The result has no athlete or relay team",
			Action:  "Select the competitor before saving",
			Code:    "MARK002",
		},
	},
	{
		errs: []error{schedule.ErrNoEvents, schedule.ErrInvalidStart},
		msg: UserMessage{
			Message: "The schedule request is incomplete",
			Action:  "Pick at least one event and a valid start date and time",
			Code:    "SCH001",
		},
	},
	{
		errs: []error{schedule.ErrDuplicateEvent, ErrForeignEvent},
		msg: UserMessage{
			Message: "An event is listed twice or belongs to another competition",
			Action:  "Review the track and field event lists",
			Code:    "SCH002",
		},
	},
	{
		errs: []error{model.ErrInvalidTransition},
		msg: UserMessage{
			Message: "The schedule is already published",
			Action:  "Generate a new version to make changes",
			Code:    "SCH003",
		},
	},
	{
		errs: []error{model.ErrSlotTaken, model.ErrInvalidPosition, model.ErrAlreadyInTeam},
		msg: UserMessage{
			Message: "The relay position cannot be assigned",
			Action:  "Choose a free position between 1 and 6",
			Code:    "RLY001",
		},
	},
	{
		errs: []error{ErrInvalidInput},
		msg: UserMessage{
			Message: "The request is incomplete or invalid",
			Action:  "Check the highlighted fields and try again",
			Code:    "VAL001",
		},
	},
	{
		errs: []error{store.ErrConflict},
		msg:  msgDuplicate,
	},
	{
		errs: []error{store.ErrNotFound},
		msg: UserMessage{
			Message: "Record not found",
			Action:  "Check the identifier and try again",
			Code:    "NF001",
		},
	},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps driver-level errors (case-insensitive) to user messages.
// Specific patterns come before general ones.
var errorPatterns = []errorPattern{
	{pattern: "duplicate key", msg: msgDuplicate},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB007",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000). Check the logs
// for the technical error.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
// Example:
//
//	msg := MapError(fmt.Errorf("line 4: %w", rows.ErrColumnCount))
//	// msg.Code == "ROW001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, sm := range sentinelMessages {
		for _, target := range sm.errs {
			if errors.Is(err, target) {
				return sm.msg
			}
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

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific code rather than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
