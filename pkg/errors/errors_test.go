package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeCorruptTree, "parent group %d does not exist", 7)

	if err.Code != ErrCodeCorruptTree {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeCorruptTree)
	}

	expected := "CORRUPT_TREE: parent group 7 does not exist"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(ErrCodeIO, cause, "write %q", "a.png")

	if err.Error() != `IO: write "a.png": disk full` {
		t.Errorf("Error() = %v", err.Error())
	}
	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{name: "matching code", err: New(ErrCodeEncode, "x"), code: ErrCodeEncode, expected: true},
		{name: "different code", err: New(ErrCodeEncode, "x"), code: ErrCodeIO, expected: false},
		{name: "wrapped by fmt", err: fmt.Errorf("layer: %w", New(ErrCodeCropFailed, "x")), code: ErrCodeCropFailed, expected: true},
		{name: "plain error", err: errors.New("x"), code: ErrCodeInternal, expected: false},
		{name: "nil", err: nil, code: ErrCodeInternal, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCodeAndUserMessage(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    Code
		message string
	}{
		{name: "structured", err: Wrap(ErrCodePixels, errors.New("eof"), "decode pixels"), code: ErrCodePixels, message: "decode pixels"},
		{name: "plain", err: errors.New("boom"), code: "", message: "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.code {
				t.Errorf("GetCode() = %q, want %q", got, tt.code)
			}
			if got := UserMessage(tt.err); got != tt.message {
				t.Errorf("UserMessage() = %q, want %q", got, tt.message)
			}
		})
	}
}
