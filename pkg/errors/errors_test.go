package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNewAndWrap(t *testing.T) {
	err := New(ErrCodeMalformedVersion, "invalid version %q", "v1")
	if got, want := err.Error(), `MALFORMED_VERSION: invalid version "v1"`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	cause := errors.New("connection reset")
	wrapped := Wrap(ErrCodeArtifactFetch, cause, "download %s", "org.testng:testng:7.1.0")
	if got, want := wrapped.Error(), "ARTIFACT_FETCH: download org.testng:testng:7.1.0: connection reset"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(wrapped, cause) {
		t.Error("errors.Is(wrapped, cause) = false, want true")
	}
	if got := UserMessage(wrapped); got != "download org.testng:testng:7.1.0" {
		t.Errorf("UserMessage() = %q", got)
	}
	if got := UserMessage(cause); got != "connection reset" {
		t.Errorf("UserMessage(plain) = %q", got)
	}
}

func TestIsAndGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code Code
		is   bool
		get  Code
	}{
		{"direct", New(ErrCodeMissingDirectory, "backends"), ErrCodeMissingDirectory, true, ErrCodeMissingDirectory},
		{"other code", New(ErrCodeMissingDirectory, "backends"), ErrCodeNetwork, false, ErrCodeMissingDirectory},
		{"outer wins", Wrap(ErrCodeArtifactFetch, New(ErrCodeNotFound, "404"), "download"), ErrCodeArtifactFetch, true, ErrCodeArtifactFetch},
		{"inner found", Wrap(ErrCodeArtifactFetch, New(ErrCodeNotFound, "404"), "download"), ErrCodeNotFound, true, ErrCodeArtifactFetch},
		{"std wrapped", fmt.Errorf("module core: %w", New(ErrCodeCompilation, "1 error")), ErrCodeCompilation, true, ErrCodeCompilation},
		{"plain", errors.New("plain"), ErrCodeInvalidInput, false, ""},
		{"nil", nil, ErrCodeInvalidInput, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.is {
				t.Errorf("Is(%v, %s) = %v, want %v", tt.err, tt.code, got, tt.is)
			}
			if got := GetCode(tt.err); got != tt.get {
				t.Errorf("GetCode(%v) = %q, want %q", tt.err, got, tt.get)
			}
		})
	}
}

func TestIsJoined(t *testing.T) {
	err := Join(
		New(ErrCodeCompilation, "module a"),
		Wrap(ErrCodeExternalTool, &ExitError{Tool: "cmake", ExitCode: 2}, "module b"),
	)

	if !Is(err, ErrCodeCompilation) {
		t.Error("Is(joined, COMPILATION) = false, want true")
	}
	if !Is(err, ErrCodeExternalTool) {
		t.Error("Is(joined, EXTERNAL_TOOL) = false, want true")
	}
	if Is(err, ErrCodeNetwork) {
		t.Error("Is(joined, NETWORK_ERROR) = true, want false")
	}
	if Join() != nil {
		t.Error("Join() = non-nil, want nil")
	}
}

func TestExitError(t *testing.T) {
	err := &ExitError{Tool: "javac", ExitCode: 1}
	expected := "javac exited with status 1"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
	if err.Code() != ErrCodeExternalTool {
		t.Errorf("Code() = %v, want %v", err.Code(), ErrCodeExternalTool)
	}

	var target *ExitError
	wrapped := Wrap(ErrCodeExternalTool, err, "build backends")
	if !errors.As(wrapped, &target) || target.ExitCode != 1 {
		t.Errorf("errors.As(wrapped) = %v, want exit code 1", target)
	}
}
