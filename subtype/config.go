// Copyright © 2024 The ELPS authors

package subtype

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Config controls assignment checking.  The zero Config reproduces the
// classic behavior except that unsupported operands are reported as
// Unanalyzed findings instead of failing the run.
type Config struct {
	// Scopes is the order in which operand names are resolved.  Nil means
	// DefaultScopes.
	Scopes []ScopeKind

	// CheckInitializers treats a local declaration initializer such as
	// T x = y as an assignment of y to x.
	CheckInitializers bool

	// Strict makes any assignment operand other than a plain name a fatal
	// error wrapping ErrUnsupportedOperand.
	Strict bool

	// Log receives progress and per-method table dumps at debug level.  Nil
	// discards them.
	Log logrus.FieldLogger
}

func (c *Config) scopes() []ScopeKind {
	if len(c.Scopes) == 0 {
		return DefaultScopes
	}
	return c.Scopes
}

func (c *Config) logger() logrus.FieldLogger {
	if c.Log != nil {
		return c.Log
	}
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// ContextTracerKey is a context key whose string value overrides the
// tracer name used for spans.
const ContextTracerKey = "subcheckTracer"

func contextTracer(ctx context.Context) trace.Tracer {
	tracerName, ok := ctx.Value(ContextTracerKey).(string)
	if !ok {
		tracerName = "subcheck"
	}
	return otel.GetTracerProvider().Tracer(tracerName)
}
