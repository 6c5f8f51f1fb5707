package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStringFieldsSkipsBlank(t *testing.T) {
	fields := StringFields(
		StringField{Key: "  provider  ", Value: "  Anthropic  "},
		StringField{Key: "ignored", Value: "   "},
		StringField{Key: "   ", Value: "empty key"},
	)

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}

	if fields[0].Key != "provider" || fields[0].String != "Anthropic" {
		t.Fatalf("unexpected provider field: %+v", fields[0])
	}

	if len(StringFields()) != 0 {
		t.Fatal("expected no fields for empty input")
	}
}

func TestWithCommonFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	WithCommonFields(zap.New(core), "gemini", "model-x").Info("test log")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx[FieldProvider] != "gemini" {
		t.Fatalf("expected provider field to be gemini, got %q", ctx[FieldProvider])
	}
	if ctx[FieldModel] != "model-x" {
		t.Fatalf("expected model field to be model-x, got %q", ctx[FieldModel])
	}

	// nil loggers fall back to a no-op logger.
	WithCommonFields(nil, "gemini", "model-x").Info("another log")
}

func TestCallFields(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)

	WithFields(zap.New(core), CallFields("session-1", "questions", 2)...).Debug("call")

	ctx := observed.All()[0].ContextMap()
	if ctx[FieldSession] != "session-1" {
		t.Fatalf("unexpected session field: %v", ctx[FieldSession])
	}
	if ctx[FieldCallSite] != "questions" {
		t.Fatalf("unexpected call site field: %v", ctx[FieldCallSite])
	}
	if ctx["attempt"] != int64(2) {
		t.Fatalf("unexpected attempt field: %v", ctx["attempt"])
	}

	if got := CallFields("", "", 0); len(got) != 0 {
		t.Fatalf("expected no fields, got %d", len(got))
	}
}

func TestNewBuildsLogger(t *testing.T) {
	for _, opts := range []Options{{}, {JSON: true, Debug: true}} {
		l, err := New(opts)
		if err != nil {
			t.Fatalf("unexpected error for %+v: %v", opts, err)
		}
		if opts.Debug && !l.Core().Enabled(zapcore.DebugLevel) {
			t.Fatal("expected debug level to be enabled")
		}
		if !opts.Debug && l.Core().Enabled(zapcore.DebugLevel) {
			t.Fatal("expected debug level to be disabled")
		}
	}
}
