package apm

import (
	"context"
	"errors"
	"testing"
)

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...any)       {}
func (nopLogger) Info(context.Context, string, ...any)        {}
func (nopLogger) Warn(context.Context, string, ...any)        {}
func (nopLogger) Error(context.Context, string, ...any)       {}
func (nopLogger) Debugc(context.Context, int, string, ...any) {}
func (nopLogger) Infoc(context.Context, int, string, ...any)  {}
func (nopLogger) Warnc(context.Context, int, string, ...any)  {}
func (nopLogger) Errorc(context.Context, int, string, ...any) {}

func TestParseHeaders(t *testing.T) {
	got := parseHeaders("x-honeycomb-team=abc, api-key=k=v ,broken,=empty")

	if len(got) != 2 {
		t.Fatalf("headers = %v", got)
	}
	if got["x-honeycomb-team"] != "abc" {
		t.Errorf("team = %q", got["x-honeycomb-team"])
	}
	if got["api-key"] != "k=v" {
		t.Errorf("api-key = %q", got["api-key"])
	}
}

func TestNewTraceProvider_Empty(t *testing.T) {
	tp, err := NewTraceProvider(nopLogger{}, Config{Provider: EmptyProvider})
	if err != nil {
		t.Fatal(err)
	}
	if err := tp.Stop(); err != nil {
		t.Errorf("Stop: %v", err)
	}
}

func TestNewTraceProvider_Console(t *testing.T) {
	tp, err := NewTraceProvider(nopLogger{}, Config{Provider: ConsoleProvider, ServiceName: "test"})
	if err != nil {
		t.Fatal(err)
	}
	defer tp.Stop()

	ctx, span := NewTracer("test").StartSpanFromContext(context.Background(), "scan")
	span.NoticeError(context.Canceled)
	span.NoticeError(errors.New("boom"))
	span.End()

	if NewTracer("test").SpanFromContext(ctx) == nil {
		t.Error("expected span in context")
	}
}
