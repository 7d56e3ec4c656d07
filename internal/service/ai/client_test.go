package ai

import (
	"context"
	"errors"
	"testing"
)

func TestDecodeStructuredExtractsWrappedJSON(t *testing.T) {
	out := struct {
		Summary string `json:"summary"`
	}{}

	content := "Sure! Here is the assessment you asked for:\n```json\n{\"summary\": \"steady under pressure\"}\n```\nLet me know if you need more."
	if err := DecodeStructured(content, &out); err != nil {
		t.Fatalf("DecodeStructured err: %v", err)
	}
	if out.Summary != "steady under pressure" {
		t.Fatalf("unexpected summary: %q", out.Summary)
	}
}

func TestDecodeStructuredMissingObject(t *testing.T) {
	out := map[string]any{}
	err := DecodeStructured("no json here, just prose", &out)
	if err == nil {
		t.Fatal("expected error for output without a JSON object")
	}

	var be *BackendError
	if !errors.As(err, &be) {
		t.Fatalf("expected *BackendError, got %T", err)
	}
	if be.Reason != FailureMalformed {
		t.Fatalf("expected reason %q, got %q", FailureMalformed, be.Reason)
	}
}

func TestDecodeStructuredInvalidJSON(t *testing.T) {
	out := map[string]any{}
	err := DecodeStructured(`{"summary": `+"truncated", &out)
	if err == nil {
		t.Fatal("expected error for truncated JSON")
	}
	if !IsBackendFailure(err) {
		t.Fatalf("expected a backend failure, got %v", err)
	}
}

func TestUnavailableAlwaysFailsTyped(t *testing.T) {
	gen := Unavailable{}

	if _, err := gen.Generate(context.Background(), "sys", "q"); !IsBackendFailure(err) {
		t.Fatalf("Generate: expected backend failure, got %v", err)
	}

	out := map[string]any{}
	err := gen.GenerateStructured(context.Background(), "sys", "q", &out)
	var be *BackendError
	if !errors.As(err, &be) || be.Reason != FailureUnavailable {
		t.Fatalf("GenerateStructured: expected unavailable failure, got %v", err)
	}
}
