package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseResolve,
				Kind:   KindMetadataParsing,
				Path:   []string{"mint", "witness"},
				Detail: "malformed Option",
			},
			contains: []string{"[resolve]", "metadata_parsing", "mint.witness", "malformed Option"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseDecode,
				Kind:  KindInvalidData,
			},
			contains: []string{"[decode]", "invalid_data"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseFetch,
				Kind:   KindInvalidData,
				Detail: "state_getMetadata",
				Cause:  errors.New("connection reset"),
			},
			contains: []string{"[fetch]", "state_getMetadata", "caused by: connection reset"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, want := range tt.contains {
				if !strings.Contains(msg, want) {
					t.Errorf("Error() = %q, want it to contain %q", msg, want)
				}
			}
		})
	}
}

func TestError_Is(t *testing.T) {
	err := UnsupportedExtrinsic("batch")

	if !errors.Is(err, &Error{Phase: PhaseResolve, Kind: KindUnsupportedExtrinsic}) {
		t.Error("expected match on phase+kind")
	}
	if errors.Is(err, &Error{Phase: PhaseResolve, Kind: KindUnknownType}) {
		t.Error("unexpected match on different kind")
	}
	if errors.Is(err, &Error{Phase: PhaseDecode, Kind: KindUnsupportedExtrinsic}) {
		t.Error("unexpected match on different phase")
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(PhaseBench, KindInvalidData, cause, "parse csv")

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find wrapped cause")
	}
	if errors.Unwrap(err) != cause {
		t.Error("expected Unwrap to return cause")
	}
}

func TestBuilder(t *testing.T) {
	err := New(PhaseResolve, KindUnknownType).
		Path("transfer", "dest").
		Detail("type id %d missing", 99).
		Build()

	if err.Phase != PhaseResolve || err.Kind != KindUnknownType {
		t.Errorf("unexpected phase/kind: %s/%s", err.Phase, err.Kind)
	}
	if len(err.Path) != 2 || err.Path[1] != "dest" {
		t.Errorf("unexpected path: %v", err.Path)
	}
	if err.Detail != "type id 99 missing" {
		t.Errorf("unexpected detail: %q", err.Detail)
	}
}

func TestIsKind(t *testing.T) {
	inner := UnsupportedExtrinsic("sudo")
	wrapped := fmt.Errorf("resolving pallet: %w", inner)

	if !IsKind(wrapped, KindUnsupportedExtrinsic) {
		t.Error("expected IsKind to see through fmt wrapping")
	}
	if IsKind(wrapped, KindUnknownType) {
		t.Error("unexpected kind match")
	}
	if IsKind(nil, KindUnknownType) {
		t.Error("nil error must not match")
	}
	if IsKind(errors.New("plain"), KindUnknownType) {
		t.Error("plain error must not match")
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		err   *Error
		phase Phase
		kind  Kind
	}{
		{UnknownType("now", 7), PhaseResolve, KindUnknownType},
		{UnsupportedExtrinsic("batch_all"), PhaseResolve, KindUnsupportedExtrinsic},
		{MetadataParsing("reason", "no rule for shape"), PhaseResolve, KindMetadataParsing},
		{NotFound(PhaseResolve, "pallet", "Balances"), PhaseResolve, KindNotFound},
		{InvalidData(PhaseDecode, nil, "bad magic"), PhaseDecode, KindInvalidData},
		{InvalidInput(PhaseBench, "empty pallet list"), PhaseBench, KindInvalidInput},
		{Unsupported(PhaseDecode, "metadata v12"), PhaseDecode, KindUnsupported},
	}

	for _, tt := range tests {
		if tt.err.Phase != tt.phase {
			t.Errorf("%v: phase = %s, want %s", tt.err, tt.err.Phase, tt.phase)
		}
		if tt.err.Kind != tt.kind {
			t.Errorf("%v: kind = %s, want %s", tt.err, tt.err.Kind, tt.kind)
		}
	}
}
