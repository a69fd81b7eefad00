package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_MessageWinsOverWrapped(t *testing.T) {
	err := &Error{Kind: KindValidation, Msg: "passengers must be at least 1", Err: errors.New("strconv")}
	if err.Error() != "passengers must be at least 1" {
		t.Fatalf("expected message, got %q", err.Error())
	}
}

func TestError_FallsBackToWrapped(t *testing.T) {
	err := &Error{Kind: KindConfiguration, Err: errors.New("yaml: line 3")}
	if err.Error() != "yaml: line 3" {
		t.Fatalf("expected wrapped text, got %q", err.Error())
	}
}

func TestError_FallsBackToKind(t *testing.T) {
	err := &Error{Kind: KindNotFound}
	if err.Error() != string(KindNotFound) {
		t.Fatalf("expected kind string, got %q", err.Error())
	}
}

func TestError_NilReceiver(t *testing.T) {
	var err *Error
	if err.Error() != "" || err.Unwrap() != nil {
		t.Fatalf("nil error should be empty")
	}
}

func TestError_Unwrap(t *testing.T) {
	base := errors.New("base")
	err := Configuration("catalog invalid", base)
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to be reachable via errors.Is")
	}
}

func TestIs_MatchesWrappedKind(t *testing.T) {
	err := Configuration("category has both routes and fares", nil)
	wrapped := fmt.Errorf("load catalog: %w", err)
	if !Is(wrapped, KindConfiguration) {
		t.Fatalf("expected Is to match wrapped kind")
	}
	if Is(wrapped, KindValidation) {
		t.Fatalf("expected Is to be false for different kind")
	}
	if Is(errors.New("plain"), KindNotFound) {
		t.Fatalf("plain errors carry no kind")
	}
}
