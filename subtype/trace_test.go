// Copyright © 2024 The ELPS authors

package subtype

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTracing(t *testing.T) *tracetest.InMemoryExporter {
	exporter := tracetest.NewInMemoryExporter()
	tp := trace.NewTracerProvider(
		trace.WithSyncer(exporter),
		trace.WithSampler(trace.AlwaysSample()),
	)
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})
	return exporter
}

func TestRunSpans(t *testing.T) {
	exporter := setupTracing(t)
	f := parse(t, `class C {
    void a(@Subtyping("X") int x) { @Subtyping("Y") int y; y = x; }
    void b() {}
}`)
	ctx := context.WithValue(context.Background(), ContextTracerKey, "subcheck-test")
	_, err := Run(ctx, f, Config{})
	require.NoError(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 3)
	// children end before their parent
	assert.Equal(t, "subtype.CheckMethod", spans[0].Name)
	assert.Equal(t, "subtype.CheckMethod", spans[1].Name)
	assert.Equal(t, "subtype.Run", spans[2].Name)
	assert.Equal(t, spans[2].SpanContext.SpanID(), spans[0].Parent.SpanID())
	assert.Equal(t, "subcheck-test", spans[2].InstrumentationLibrary.Name)

	var findings int64 = -1
	for _, kv := range spans[0].Attributes {
		if kv.Key == "subtype.findings" {
			findings = kv.Value.AsInt64()
		}
	}
	assert.Equal(t, int64(1), findings)
}

func TestRunSpanError(t *testing.T) {
	exporter := setupTracing(t)
	f := parse(t, `class C { void m() { int x; x = get(); } }`)
	_, err := Run(context.Background(), f, Config{Strict: true})
	require.ErrorIs(t, err, ErrUnsupportedOperand)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	for _, s := range spans {
		assert.Equal(t, codes.Error, s.Status.Code, s.Name)
	}
	assert.Equal(t, "subcheck", spans[1].InstrumentationLibrary.Name)
}
