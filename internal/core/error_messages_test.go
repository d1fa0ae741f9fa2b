package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/JonMunkholm/athletix/internal/model"
	"github.com/JonMunkholm/athletix/internal/reconcile"
	"github.com/JonMunkholm/athletix/internal/results"
	"github.com/JonMunkholm/athletix/internal/rows"
	"github.com/JonMunkholm/athletix/internal/schedule"
	"github.com/JonMunkholm/athletix/internal/store"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{name: "nil error returns empty", err: nil, wantCode: ""},
		{name: "empty input", err: fmt.Errorf("parse: %w", rows.ErrEmptyInput), wantCode: "FILE001"},
		{name: "file too large", err: ErrFileTooLarge, wantCode: "FILE002"},
		{name: "busy", err: ErrTooManyImports, wantCode: "IMP001"},
		{name: "row error wraps sentinel", err: &rows.RowError{Line: 4, Reason: "x", Err: rows.ErrColumnCount}, wantCode: "ROW001"},
		{name: "missing field", err: rows.ErrMissingField, wantCode: "ROW002"},
		{name: "missing column", err: rows.ErrMissingColumn, wantCode: "ROW003"},
		{name: "unknown event", err: fmt.Errorf("%w: \"200m\"", reconcile.ErrUnknownEvent), wantCode: "ROW004"},
		{name: "unmatched", err: reconcile.ErrUnmatched, wantCode: "REC001"},
		{name: "ambiguous", err: reconcile.ErrAmbiguous, wantCode: "REC002"},
		{name: "not registered", err: ErrNotRegistered, wantCode: "REC003"},
		{name: "result mark", err: fmt.Errorf("%w: \"abc\"", results.ErrMalformedMark), wantCode: "MARK001"},
		{name: "seed mark", err: reconcile.ErrMalformedMark, wantCode: "MARK001"},
		{name: "schedule input", err: schedule.ErrNoEvents, wantCode: "SCH001"},
		{name: "schedule duplicate", err: schedule.ErrDuplicateEvent, wantCode: "SCH002"},
		{name: "published", err: model.ErrInvalidTransition, wantCode: "SCH003"},
		{name: "relay slot", err: model.ErrSlotTaken, wantCode: "RLY001"},
		{name: "conflict", err: store.ErrConflict, wantCode: "DUP001"},
		{name: "driver duplicate key", err: errors.New("ERROR: DUPLICATE KEY value violates unique constraint"), wantCode: "DUP001"},
		{name: "not found", err: fmt.Errorf("event: %w", store.ErrNotFound), wantCode: "NF001"},
		{name: "connection refused", err: errors.New("dial tcp: connection refused"), wantCode: "DB004"},
		{name: "unknown error returns default", err: errors.New("some random internal error"), wantCode: "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	got := FormatUserError(reconcile.ErrAmbiguous)
	want := "Several athletes match this row (Code: REC002). Add the license number to the row"
	if got != want {
		t.Errorf("FormatUserError() = %q, want %q", got, want)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil error is not user facing", err: nil, want: false},
		{name: "known error is user facing", err: rows.ErrMissingField, want: true},
		{name: "unknown error is not user facing", err: errors.New("random internal error xyz"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewUserError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		if got := NewUserError(nil); got != nil {
			t.Errorf("NewUserError(nil) = %v, want nil", got)
		}
	})

	t.Run("wraps technical error with user message", func(t *testing.T) {
		techErr := fmt.Errorf("line 3: %w", rows.ErrMissingField)
		userErr := NewUserError(techErr)

		if userErr.Error() != "A required field is empty" {
			t.Errorf("Error() = %q, want user message", userErr.Error())
		}
		if !errors.Is(userErr, rows.ErrMissingField) {
			t.Error("Unwrap() should expose the original sentinel")
		}
	})
}
