package tracing

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
)

func TestNewProviderDisabledHasNoExporter(t *testing.T) {
	provider, err := NewProvider(nil, Config{Enabled: false, ServiceName: "netbill", SamplingRatio: 1}, nil)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	defer provider.Shutdown(context.Background())

	_, span := provider.Tracer("test").Start(context.Background(), "op")
	if !span.SpanContext().IsValid() {
		t.Fatalf("expected a valid span context")
	}
	span.End()
}

func TestSafeAttributes(t *testing.T) {
	attrs := SafeAttributes(
		attribute.String("http.route", "/healthz"),
		attribute.String("customer.phone", "+380501112233"),
	)
	if len(attrs) != 1 || attrs[0].Key != "http.route" {
		t.Fatalf("unexpected attrs %v", attrs)
	}
	if SafeError(nil) != nil {
		t.Fatalf("nil error must stay nil")
	}
	if SafeError(errors.New("phone +380501112233")).Error() != "request failed" {
		t.Fatalf("expected redacted error")
	}
}

func TestNewExporterRejectsUnknownProtocol(t *testing.T) {
	if _, err := newExporter("carrier-pigeon", ""); err == nil {
		t.Fatalf("expected error")
	}
}
