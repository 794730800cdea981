package telemetry

import (
	"context"
	"slices"
	"testing"

	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/domain"
	"go.opentelemetry.io/otel"
)

func TestSetupDisabled(t *testing.T) {
	tests := []struct {
		name string
		cfg  domain.TracingConfig
	}{
		{"Disabled", domain.TracingConfig{Enabled: false, Endpoint: "localhost:4317"}},
		{"NoEndpoint", domain.TracingConfig{Enabled: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shutdown := Setup(context.Background(), tt.cfg)
			if err := shutdown(context.Background()); err != nil {
				t.Errorf("noop shutdown returned %v", err)
			}
		})
	}
}

func TestSetupInstallsPropagator(t *testing.T) {
	Setup(context.Background(), domain.TracingConfig{})

	fields := otel.GetTextMapPropagator().Fields()
	if !slices.Contains(fields, "traceparent") || !slices.Contains(fields, "baggage") {
		t.Errorf("expected trace context and baggage fields, got %v", fields)
	}
}
