package gologger

import (
	"context"
	"testing"

	glog "github.com/goliatone/go-logger/glog"
)

func TestNewProviderFormats(t *testing.T) {
	for _, format := range []string{"", "json", "console", "PRETTY"} {
		if _, err := NewProvider(Config{Level: "debug", Format: format}); err != nil {
			t.Fatalf("format %q: %v", format, err)
		}
	}
	if _, err := NewProvider(Config{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestGetLoggerCachesChildren(t *testing.T) {
	p, err := NewProvider(Config{
		Level:  "warning",
		Format: "console",
		Focus:  []string{" manual.catalog ", ""},
		Fields: map[string]any{"service": "manual"},
	})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}

	first := p.GetLogger("manual.catalog")
	if first != p.GetLogger(" manual.catalog ") {
		t.Fatal("expected the same child for the same name")
	}
	if first == p.GetLogger("manual.files") {
		t.Fatal("expected distinct children for distinct names")
	}
	if p.GetLogger("") == nil {
		t.Fatal("expected root logger for blank name")
	}
	first.Warn("provider.cached")
}

func TestNilProviderReturnsNoOp(t *testing.T) {
	var p *Provider
	p.GetLogger("manual").Info("ignored")
}

func TestAdapterForwardsCallsAndClonesFields(t *testing.T) {
	stub := &stubLogger{}
	adapted := wrap(stub).(*adapter)

	for _, log := range []func(string, ...any){adapted.Trace, adapted.Debug, adapted.Info, adapted.Warn, adapted.Error, adapted.Fatal} {
		log("message", "key", "value")
	}
	want := []string{"trace", "debug", "info", "warn", "error", "fatal"}
	if len(stub.calls) != len(want) {
		t.Fatalf("expected %d calls, got %v", len(want), stub.calls)
	}
	for i := range want {
		if stub.calls[i] != want[i] {
			t.Fatalf("call %d: expected %q, got %q", i, want[i], stub.calls[i])
		}
	}

	fields := map[string]any{"item": "install"}
	adapted.WithFields(fields)
	fields["item"] = "changed"
	if got := stub.fields[0]["item"]; got != "install" {
		t.Fatalf("expected cloned fields, got %v", got)
	}
	if adapted.WithFields(nil) != adapted {
		t.Fatal("expected empty fields to return the same logger")
	}

	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "request")
	adapted.WithContext(ctx)
	if len(stub.contexts) != 1 || stub.contexts[0] != ctx {
		t.Fatalf("expected context to be forwarded, got %#v", stub.contexts)
	}
}

type stubLogger struct {
	calls    []string
	fields   []map[string]any
	contexts []context.Context
}

var (
	_ glog.Logger       = (*stubLogger)(nil)
	_ glog.FieldsLogger = (*stubLogger)(nil)
)

func (s *stubLogger) Trace(string, ...any) { s.calls = append(s.calls, "trace") }
func (s *stubLogger) Debug(string, ...any) { s.calls = append(s.calls, "debug") }
func (s *stubLogger) Info(string, ...any)  { s.calls = append(s.calls, "info") }
func (s *stubLogger) Warn(string, ...any)  { s.calls = append(s.calls, "warn") }
func (s *stubLogger) Error(string, ...any) { s.calls = append(s.calls, "error") }
func (s *stubLogger) Fatal(string, ...any) { s.calls = append(s.calls, "fatal") }

func (s *stubLogger) WithContext(ctx context.Context) glog.Logger {
	s.contexts = append(s.contexts, ctx)
	return s
}

func (s *stubLogger) WithFields(fields map[string]any) glog.Logger {
	s.fields = append(s.fields, fields)
	return s
}
