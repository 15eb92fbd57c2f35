package apperrors

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"unicode/utf8"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"input", &InputError{Field: "name", Reason: "empty"}, KindInput},
		{"configuration", &ConfigurationError{Reason: "missing key"}, KindConfiguration},
		{"transport", &TransportError{Cause: context.DeadlineExceeded}, KindTransport},
		{"upstream", &UpstreamError{StatusCode: 500}, KindUpstream},
		{"protocol", &ProtocolError{Raw: "{}"}, KindProtocol},
		{"validation", &ValidationError{Kind: MalformedJSON}, KindValidation},
		{"not found", &NotFoundError{Name: "x"}, KindNotFound},
		{"wrapped upstream", fmt.Errorf("lookup: %w", &UpstreamError{StatusCode: 429}), KindUpstream},
		{"foreign", errors.New("boom"), KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestTransportErrorUnwraps(t *testing.T) {
	err := &TransportError{Cause: context.Canceled}
	if !errors.Is(err, context.Canceled) {
		t.Error("TransportError should unwrap to its cause")
	}
}

func TestNotFoundMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &NotFoundError{Name: "آسپرین"})
	if !errors.Is(err, ErrNotFound) {
		t.Error("NotFoundError should match ErrNotFound")
	}
}

func TestUpstreamErrorMessage(t *testing.T) {
	withMsg := &UpstreamError{StatusCode: 401, ProviderMessage: "invalid api key"}
	if withMsg.Error() != "provider returned status 401: invalid api key" {
		t.Errorf("unexpected message: %s", withMsg.Error())
	}

	bare := &UpstreamError{StatusCode: 502}
	if bare.Error() != "provider returned status 502" {
		t.Errorf("unexpected message: %s", bare.Error())
	}
}

func TestValidationKindString(t *testing.T) {
	if MalformedJSON.String() != "MalformedJson" {
		t.Errorf("got %s", MalformedJSON)
	}
	if ShapeMismatch.String() != "ShapeMismatch" {
		t.Errorf("got %s", ShapeMismatch)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("Truncate should not touch short strings, got %q", got)
	}

	got := Truncate("سرماخوردگی", 5)
	if !utf8.ValidString(got) {
		t.Errorf("Truncate produced invalid UTF-8: %q", got)
	}
}
