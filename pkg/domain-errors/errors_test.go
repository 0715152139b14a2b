package dErrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHasCode(t *testing.T) {
	err := New(CodeInvalidInput, "income month 3 is negative")
	if !HasCode(err, CodeInvalidInput) {
		t.Fatalf("expected CodeInvalidInput")
	}
	if HasCode(err, CodeNotFound) {
		t.Fatalf("did not expect CodeNotFound")
	}
	if HasCode(nil, CodeInvalidInput) {
		t.Fatalf("nil error should carry no code")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeInternal, "failed to load threshold")

	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause to be reachable")
	}
	if !HasCode(err, CodeInternal) {
		t.Fatalf("expected CodeInternal")
	}
	if Wrap(nil, CodeInternal, "noop") != nil {
		t.Fatalf("wrapping nil should return nil")
	}
}

func TestCodeOfFallsBackToInternal(t *testing.T) {
	if got := CodeOf(errors.New("raw")); got != CodeInternal {
		t.Fatalf("expected CodeInternal for untagged error, got %s", got)
	}
	if got := CodeOf(fmt.Errorf("wrapped: %w", New(CodeConflict, "dup"))); got != CodeConflict {
		t.Fatalf("expected CodeConflict through fmt wrapping, got %s", got)
	}
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeInvalidInput:         http.StatusBadRequest,
		CodeBadRequest:           http.StatusBadRequest,
		CodeValidation:           http.StatusBadRequest,
		CodeMissingReferenceData: http.StatusUnprocessableEntity,
		CodeNotFound:             http.StatusNotFound,
		CodeConflict:             http.StatusConflict,
		CodeInternal:             http.StatusInternalServerError,
	}
	for code, want := range cases {
		if got := ToHTTPStatus(code); got != want {
			t.Errorf("ToHTTPStatus(%s) = %d, want %d", code, got, want)
		}
	}
}
